package cdecl

import (
	"errors"
	"testing"
)

func TestUnitMacrosKeepOrderAndRejectDuplicates(t *testing.T) {
	u := NewUnit("test")
	for _, m := range []MacroDef{{Name: "ONE", Body: "1"}, {Name: "TWO", Body: "ONE + 1"}} {
		if err := u.AddMacro(m); err != nil {
			t.Fatalf("AddMacro(%s): %v", m.Name, err)
		}
	}
	if err := u.AddMacro(MacroDef{Name: "ONE", Body: "2"}); !errors.Is(err, ErrDuplicateMacro) {
		t.Fatalf("expected ErrDuplicateMacro, got %v", err)
	}
	got := u.Macros()
	if len(got) != 2 || got[0].Name != "ONE" || got[1].Name != "TWO" {
		t.Fatalf("unexpected macros: %+v", got)
	}
	if m, ok := u.Macro("TWO"); !ok || m.Body != "ONE + 1" {
		t.Fatalf("lookup TWO: %+v %v", m, ok)
	}
	if _, ok := u.Macro("two"); ok {
		t.Fatalf("macro names are case-sensitive")
	}
}

func TestTypedefSharesTypeRef(t *testing.T) {
	u := NewUnit("test")
	s := &Struct{Fields: []Field{{Name: "i", Type: CInt}, {Name: "c", Type: CChar}}}
	td, err := u.AddTypedef("S", s, zeroPos)
	if err != nil {
		t.Fatal(err)
	}
	got, err := u.ParseSpelling("S")
	if err != nil {
		t.Fatal(err)
	}
	if got != TypeRef(td) {
		t.Fatalf("spelling must resolve to the shared *Typedef")
	}
	if Resolve(got) != TypeRef(s) {
		t.Fatalf("Resolve must reach the struct")
	}
	decls := u.Decls()
	if len(decls) != 1 || decls[0].Kind != DeclTypedef || decls[0].Name != "S" {
		t.Fatalf("typedef decl missing: %+v", decls)
	}
}

func TestParseSpelling(t *testing.T) {
	u := NewUnit("test")
	cases := []struct {
		in   string
		want string
	}{
		{"char*", "char*"},
		{"char [5]", "char[5]"},
		{"unsigned   int", "unsigned int"},
		{"int*[3]", "int*[3]"},
		{"char[]", "char[]"},
		{"_Bool", "_Bool"},
	}
	for _, tc := range cases {
		got, err := u.ParseSpelling(tc.in)
		if err != nil {
			t.Fatalf("ParseSpelling(%q): %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Errorf("ParseSpelling(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if _, err := u.ParseSpelling("mystery_t"); err == nil {
		t.Fatalf("unknown base must fail")
	}
	if _, err := u.ParseSpelling("int[5"); err == nil {
		t.Fatalf("unclosed bracket must fail")
	}
}

func TestFuncString(t *testing.T) {
	f := &Func{Returns: CInt}
	if got := f.String(); got != "int (void)" {
		t.Fatalf("got %q", got)
	}
	if !IsFunc(&Typedef{Alias: "func", Underlying: f}) {
		t.Fatalf("typedef of func must report IsFunc")
	}
}
