package source

import "testing"

func TestInternerBasic(t *testing.T) {
	in := NewInterner()

	if s, ok := in.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to empty string, got %q ok=%v", s, ok)
	}
	a := in.Intern("f_char_ptr")
	b := in.Intern("f_char_ptr")
	if a != b {
		t.Fatalf("same string interned twice: %d != %d", a, b)
	}
	if c := in.Intern("F_CHAR_PTR"); c == a {
		t.Fatalf("interner must be case-sensitive")
	}
	if in.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", in.Len())
	}
	if got := in.MustLookup(a); got != "f_char_ptr" {
		t.Fatalf("lookup mismatch: %q", got)
	}
	if _, ok := in.Lookup(StringID(42)); ok {
		t.Fatalf("unknown id must not resolve")
	}
}

func TestFileSetAddAndLookup(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("testdata/./unit.toml", []byte("name = \"test\""))
	if id == NoFileID {
		t.Fatalf("first file must not reuse NoFileID")
	}
	if got := fs.Path(id); got != "testdata/unit.toml" {
		t.Fatalf("path not cleaned: %q", got)
	}
	if found, ok := fs.Lookup("testdata/unit.toml"); !ok || found != id {
		t.Fatalf("lookup failed: %d %v", found, ok)
	}
	if fs.Get(FileID(99)) != nil {
		t.Fatalf("out of range id must return nil")
	}
}

func TestPosOrdering(t *testing.T) {
	a := Pos{File: 1, Line: 3, Col: 1}
	b := Pos{File: 1, Line: 3, Col: 9}
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("column ordering broken")
	}
	if (Pos{}).Known() {
		t.Fatalf("zero pos must be unknown")
	}
	if got := b.String(); got != "1:3:9" {
		t.Fatalf("unexpected String(): %q", got)
	}
}
