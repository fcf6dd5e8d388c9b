package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"modgen/internal/cdecl"
	"modgen/internal/diag"
	"modgen/internal/testkit"
	"modgen/internal/translate"
)

func fixtureDoc(t *testing.T) Document {
	t.Helper()
	res := translate.Translate(context.Background(), testkit.MustFixture(), translate.Options{})
	return Build(res)
}

func findDecl(t *testing.T, doc Document, name string) DeclDoc {
	t.Helper()
	for _, d := range doc.Decls {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("%s not in document", name)
	return DeclDoc{}
}

func TestBuildDocument(t *testing.T) {
	doc := fixtureDoc(t)
	if doc.Target != "x86_64-linux-gnu" || !doc.CharSigned {
		t.Fatalf("target %q signed=%v", doc.Target, doc.CharSigned)
	}
	hex := findDecl(t, doc, "HEX")
	if hex.Value != "255" || hex.Base != 16 || hex.Type != "int32" {
		t.Fatalf("HEX: %+v", hex)
	}
	s := findDecl(t, doc, "S")
	if s.Type != "struct" || len(s.Fields) != 2 || s.Fields[1].Offset != 4 || s.Union {
		t.Fatalf("S: %+v", s)
	}
	u := findDecl(t, doc, "U")
	if !u.Union || u.Fields[0].Offset != 0 || u.Fields[1].Offset != 0 || u.Size != 4 {
		t.Fatalf("U: %+v", u)
	}
	arr := findDecl(t, doc, "f_char_arr")
	if arr.Params[0].Type != "*char" || arr.Result != "*char" {
		t.Fatalf("f_char_arr: %+v", arr)
	}
	if len(doc.Diagnostics) != 1 || doc.Diagnostics[0].Code != diag.LitEmptyMacro.ID() {
		t.Fatalf("diagnostics: %+v", doc.Diagnostics)
	}
}

func TestTextListing(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, fixtureDoc(t)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"// unit test (x86_64-linux-gnu, char is signed)",
		"    field i : int32 @0\n    field c : char @4\n",
		"    accessor i : int32 @0\n    accessor c : char @0\n",
		"// 0xFF",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing misses %q:\n%s", want, out)
		}
	}
	// every declaration line aligns its ':' or '=' at the same column
	lines := strings.Split(strings.TrimSpace(out), "\n")[1:]
	col := -1
	for _, line := range lines {
		if strings.HasPrefix(line, "    ") {
			continue
		}
		idx := strings.IndexAny(line, ":=")
		if col < 0 {
			col = idx
		} else if idx != col {
			t.Fatalf("misaligned line %q (col %d, want %d)", line, idx, col)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, []Document{fixtureDoc(t)}); err != nil {
		t.Fatal(err)
	}
	var docs []Document
	if err := json.Unmarshal(buf.Bytes(), &docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || findDecl(t, docs[0], "PI").Value != "3.14159" {
		t.Fatalf("unexpected decoded documents: %+v", docs)
	}
}

func TestDiagnosticsInto(t *testing.T) {
	doc := fixtureDoc(t)
	bag := diag.NewBag(0)
	doc.DiagnosticsInto(bag)
	if bag.Count(diag.LitEmptyMacro) != 1 || bag.HasErrors() {
		t.Fatalf("restored diagnostics: %+v", bag.Items())
	}
}

func TestReadOnlyVariableListing(t *testing.T) {
	u := cdecl.NewUnit("ro")
	if err := u.AddDecl(cdecl.Declaration{Kind: cdecl.DeclVariable, Name: "limit", Type: cdecl.CInt, External: true, Const: true}); err != nil {
		t.Fatal(err)
	}
	doc := Build(translate.Translate(context.Background(), u, translate.Options{}))
	if !findDecl(t, doc, "limit").ReadOnly {
		t.Fatalf("limit must be read-only in the document")
	}
	var buf bytes.Buffer
	if err := Text(&buf, doc); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "extern  readonly  size=4") {
		t.Fatalf("listing:\n%s", buf.String())
	}
}
