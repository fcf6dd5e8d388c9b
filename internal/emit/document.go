// Package emit renders translation results: a column-aligned text listing
// for people and a JSON document for tools. Document is also the form the
// driver caches on disk.
package emit

import (
	"modgen/internal/diag"
	"modgen/internal/source"
	"modgen/internal/translate"
	"modgen/internal/types"
)

// Document is the rendered, interner-free form of a translate.Result.
type Document struct {
	Unit        string          `json:"unit" msgpack:"unit"`
	Target      string          `json:"target" msgpack:"target"`
	CharSigned  bool            `json:"char_signed" msgpack:"char_signed"`
	Decls       []DeclDoc       `json:"decls" msgpack:"decls"`
	Diagnostics []DiagnosticDoc `json:"diagnostics,omitempty" msgpack:"diagnostics"`
}

type DeclDoc struct {
	Kind    string `json:"kind" msgpack:"kind"`
	Name    string `json:"name" msgpack:"name"`
	Type    string `json:"type" msgpack:"type"`
	Value   string `json:"value,omitempty" msgpack:"value"`
	Literal string `json:"literal,omitempty" msgpack:"literal"`
	Base    uint8  `json:"base,omitempty" msgpack:"base"`
	Linkage string `json:"linkage,omitempty" msgpack:"linkage"`
	// ReadOnly variables are exported as constants, without a setter.
	ReadOnly bool `json:"readonly,omitempty" msgpack:"readonly"`

	Params []ParamDoc `json:"params,omitempty" msgpack:"params"`
	Result string     `json:"result,omitempty" msgpack:"result"`

	Size  int `json:"size,omitempty" msgpack:"size"`
	Align int `json:"align,omitempty" msgpack:"align"`
	// Fields lists struct fields, or union accessors (all at offset 0).
	Fields []FieldDoc `json:"fields,omitempty" msgpack:"fields"`
	Union  bool       `json:"union,omitempty" msgpack:"union"`

	Line uint32 `json:"line,omitempty" msgpack:"line"`
}

type ParamDoc struct {
	Name string `json:"name" msgpack:"name"`
	Type string `json:"type" msgpack:"type"`
}

type FieldDoc struct {
	Name   string `json:"name" msgpack:"name"`
	Type   string `json:"type" msgpack:"type"`
	Offset int    `json:"offset" msgpack:"offset"`
}

// DiagnosticDoc keeps diagnostics with cached documents.
type DiagnosticDoc struct {
	Severity string `json:"severity" msgpack:"severity"`
	Code     string `json:"code" msgpack:"code"`
	Subject  string `json:"subject" msgpack:"subject"`
	Message  string `json:"message" msgpack:"message"`
	Line     uint32 `json:"line,omitempty" msgpack:"line"`
	Col      uint32 `json:"col,omitempty" msgpack:"col"`
}

// Build renders res.
func Build(res *translate.Result) Document {
	doc := Document{
		Unit:       res.Unit.Name,
		Target:     res.Target.Triple,
		CharSigned: res.Target.CharSigned,
		Decls:      make([]DeclDoc, 0, len(res.Decls)),
	}
	in := res.Types
	for _, d := range res.Decls {
		dd := DeclDoc{
			Kind:     d.Kind.String(),
			Name:     d.Name,
			Type:     types.Label(in, d.Type),
			Linkage:  d.Linkage.String(),
			ReadOnly: d.ReadOnly,
			Line:     d.Pos.Line,
		}
		if d.Value != nil {
			dd.Value = d.Value.String()
			dd.Literal = d.Value.Text
			dd.Base = d.Value.Base
		}
		switch d.Kind {
		case translate.KindFunc:
			dd.Params = make([]ParamDoc, len(d.Params))
			for i, p := range d.Params {
				dd.Params[i] = ParamDoc{Name: p.Name, Type: types.Label(in, p.Type)}
			}
			dd.Result = types.Label(in, d.Result)
		case translate.KindAlias:
			dd.Type = describe(in, in.Resolve(d.Type))
		}
		if d.Layout != nil {
			dd.Size, dd.Align = d.Layout.Size, d.Layout.Align
			if d.Kind == translate.KindAlias {
				dd.Fields, dd.Union = fields(in, in.Resolve(d.Type), d.Layout.FieldOffsets)
			}
		}
		doc.Decls = append(doc.Decls, dd)
	}
	for _, d := range res.Bag.Items() {
		doc.Diagnostics = append(doc.Diagnostics, DiagnosticDoc{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Subject:  d.Subject,
			Message:  d.Message,
			Line:     d.Pos.Line,
			Col:      d.Pos.Col,
		})
	}
	return doc
}

// DiagnosticsInto restores the diagnostics of a cached document into bag.
func (doc Document) DiagnosticsInto(bag *diag.Bag) {
	for _, d := range doc.Diagnostics {
		sev := diag.SevError
		switch d.Severity {
		case diag.SevWarning.String():
			sev = diag.SevWarning
		case diag.SevInfo.String():
			sev = diag.SevInfo
		}
		code, _ := diag.ParseCode(d.Code)
		bag.Add(diag.New(sev, code, d.Subject, source.Pos{Line: d.Line, Col: d.Col}, d.Message))
	}
}

// describe is the right-hand side of a type alias.
func describe(in *types.Interner, id types.TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case types.KindStruct:
		return "struct"
	case types.KindUnion:
		return "union"
	case types.KindEnum:
		if info, ok := in.EnumInfo(id); ok {
			return "enum(" + types.Label(in, info.BaseType) + ")"
		}
	}
	return types.Label(in, id)
}

func fields(in *types.Interner, id types.TypeID, offsets []int) ([]FieldDoc, bool) {
	offset := func(i int) int {
		if i < len(offsets) {
			return offsets[i]
		}
		return 0
	}
	if sf := in.StructFields(id); len(sf) > 0 {
		out := make([]FieldDoc, len(sf))
		for i, f := range sf {
			out[i] = FieldDoc{Name: in.Strings.MustLookup(f.Name), Type: types.Label(in, f.Type), Offset: offset(i)}
		}
		return out, false
	}
	if info, ok := in.UnionInfo(id); ok {
		out := make([]FieldDoc, len(info.Members))
		for i, m := range info.Members {
			out[i] = FieldDoc{Name: in.Strings.MustLookup(m.Name), Type: types.Label(in, m.Type)}
		}
		return out, true
	}
	return nil, false
}
