package unitfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"modgen/internal/cdecl"
	"modgen/internal/source"
)

// Format is a unit file encoding.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownFormat = errors.New("unknown unit file format")
	ErrInvalid       = errors.New("invalid unit file")
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// Decode parses content as a unit file. The unit name defaults to the file
// name without extension. Positions point into file.
func Decode(path string, content []byte, file source.FileID) (*cdecl.Unit, error) {
	format := DetectFormat(path)
	var doc unitDoc
	var err error
	switch format {
	case FormatTOML:
		var meta toml.MetaData
		meta, err = toml.Decode(string(content), &doc)
		if err == nil {
			err = undecodedKeys(meta)
		}
	case FormatYAML:
		err = yaml.UnmarshalStrict(content, &doc)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		// the codecs mostly prefix their own name already
		if prefix := format.String() + ":"; !strings.HasPrefix(err.Error(), prefix) {
			return nil, fmt.Errorf("%s: %s %w", path, prefix, err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	b := &builder{unit: cdecl.NewUnit(doc.Name), file: file}
	b.unit.File = file
	if err := b.build(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b.unit, nil
}

func undecodedKeys(meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return fmt.Errorf("toml: %w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
}

type builder struct {
	unit *cdecl.Unit
	file source.FileID
}

func (b *builder) pos(line, col uint32) source.Pos {
	return source.Pos{File: b.file, Line: line, Col: col}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (b *builder) build(doc unitDoc) error {
	for _, m := range doc.Macros {
		if m.Name == "" {
			return invalid("macro without a name")
		}
		if err := b.unit.AddMacro(cdecl.MacroDef{Name: m.Name, Body: m.Body, Pos: b.pos(m.Line, m.Col)}); err != nil {
			return err
		}
	}

	// tags are declared before any body so aggregates can refer to each
	// other and to themselves through pointers
	shells := make([]cdecl.TypeRef, len(doc.Types))
	for i, td := range doc.Types {
		if td.Tag == "" {
			return invalid("file-scope %s without a tag", td.Kind)
		}
		t, err := shell(td)
		if err != nil {
			return err
		}
		if err := b.unit.DefineType(td.Kind+" "+td.Tag, t); err != nil {
			return err
		}
		shells[i] = t
	}
	for i, td := range doc.Types {
		if err := b.fill(shells[i], td); err != nil {
			return fmt.Errorf("%s %s: %w", td.Kind, td.Tag, err)
		}
	}

	for _, d := range doc.Decls {
		if d.Name == "" {
			return invalid("%s declaration without a name", d.Kind)
		}
		if err := b.decl(d); err != nil {
			return fmt.Errorf("%s %s: %w", d.Kind, d.Name, err)
		}
	}
	return nil
}

func shell(td typeDoc) (cdecl.TypeRef, error) {
	switch td.Kind {
	case "struct":
		return &cdecl.Struct{Name: td.Tag}, nil
	case "union":
		return &cdecl.Union{Name: td.Tag}, nil
	case "enum":
		return &cdecl.Enum{Name: td.Tag}, nil
	}
	return nil, invalid("unknown type kind %q (expected struct, union or enum)", td.Kind)
}

func (b *builder) fill(t cdecl.TypeRef, td typeDoc) error {
	switch tt := t.(type) {
	case *cdecl.Struct:
		fields, err := b.fields(td.Fields)
		if err != nil {
			return err
		}
		tt.Fields = fields
	case *cdecl.Union:
		fields, err := b.fields(td.Fields)
		if err != nil {
			return err
		}
		tt.Members = fields
	case *cdecl.Enum:
		for _, m := range td.Members {
			if m.Name == "" {
				return invalid("enumerator without a name")
			}
			tt.Members = append(tt.Members, cdecl.EnumMember{Name: m.Name, Value: m.Value})
		}
	}
	return nil
}

func (b *builder) fields(docs []fieldDoc) ([]cdecl.Field, error) {
	out := make([]cdecl.Field, 0, len(docs))
	for _, f := range docs {
		t, err := b.unit.ParseSpelling(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out = append(out, cdecl.Field{Name: f.Name, Type: t})
	}
	return out, nil
}

func (b *builder) signature(d declDoc) (*cdecl.Func, error) {
	ret := d.Returns
	if ret == "" {
		ret = "void"
	}
	rt, err := b.unit.ParseSpelling(ret)
	if err != nil {
		return nil, fmt.Errorf("result: %w", err)
	}
	fn := &cdecl.Func{Returns: rt, Variadic: d.Variadic}
	for i, p := range d.Params {
		pt, err := b.unit.ParseSpelling(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		fn.Params = append(fn.Params, pt)
	}
	return fn, nil
}

func (b *builder) decl(d declDoc) error {
	pos := b.pos(d.Line, d.Col)
	if d.Const && d.Kind != "var" {
		return invalid("const applies to variables only")
	}
	switch d.Kind {
	case "var":
		t, err := b.unit.ParseSpelling(d.Type)
		if err != nil {
			return err
		}
		external := d.Extern == nil || *d.Extern
		return b.unit.AddDecl(cdecl.Declaration{Kind: cdecl.DeclVariable, Name: d.Name, Type: t, External: external, Const: d.Const, Pos: pos})

	case "func":
		fn, err := b.signature(d)
		if err != nil {
			return err
		}
		if len(d.ParamNames) > len(fn.Params) {
			return invalid("%d parameter names for %d parameters", len(d.ParamNames), len(fn.Params))
		}
		return b.unit.AddDecl(cdecl.Declaration{
			Kind:       cdecl.DeclFunction,
			Name:       d.Name,
			Type:       fn,
			External:   true,
			Pos:        pos,
			ParamNames: d.ParamNames,
		})

	case "typedef":
		var target cdecl.TypeRef
		switch {
		case d.Aggregate != nil:
			t, err := shell(*d.Aggregate)
			if err != nil {
				return err
			}
			if d.Aggregate.Tag != "" {
				if err := b.unit.DefineType(d.Aggregate.Kind+" "+d.Aggregate.Tag, t); err != nil {
					return err
				}
			}
			if err := b.fill(t, *d.Aggregate); err != nil {
				return err
			}
			target = t
		case d.isSignature():
			fn, err := b.signature(d)
			if err != nil {
				return err
			}
			target = fn
			if d.Pointer {
				target = &cdecl.Pointer{To: fn}
			}
		default:
			t, err := b.unit.ParseSpelling(d.Type)
			if err != nil {
				return err
			}
			target = t
		}
		_, err := b.unit.AddTypedef(d.Name, target, pos)
		return err
	}
	return invalid("unknown declaration kind %q (expected var, func or typedef)", d.Kind)
}
