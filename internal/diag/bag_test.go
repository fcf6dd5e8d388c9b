package diag

import (
	"testing"

	"modgen/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	b := NewBag(2)
	if !b.Add(New(SevWarning, LitEmptyMacro, "TEST_H", source.Pos{}, "empty")) {
		t.Fatalf("first add must succeed")
	}
	if b.HasErrors() {
		t.Fatalf("warning must not count as error")
	}
	b.Add(NewError(UnsupportedType, "ld", source.Pos{}, "long double"))
	if b.Add(NewError(UnsupportedType, "x", source.Pos{}, "over limit")) {
		t.Fatalf("limit must be enforced")
	}
	if !b.HasErrors() || b.Len() != 2 {
		t.Fatalf("unexpected bag state: %+v", b.Items())
	}
}

func TestBagSortByPosThenSeverity(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, LitEmptyMacro, "B", source.Pos{File: 1, Line: 5}, ""))
	b.Add(NewError(CyclicMacroReference, "A", source.Pos{File: 1, Line: 2}, ""))
	b.Add(NewError(UnsupportedType, "C", source.Pos{File: 1, Line: 5}, ""))
	b.Sort()
	got := []string{b.Items()[0].Subject, b.Items()[1].Subject, b.Items()[2].Subject}
	want := []string{"A", "C", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestBagDedupAndSubjectQueries(t *testing.T) {
	b := NewBag(0)
	d := NewError(DuplicateDeclaration, "foo", source.Pos{Line: 1}, "dup")
	b.Add(d)
	b.Add(d)
	b.Add(NewError(DuplicateDeclaration, "bar", source.Pos{Line: 1}, "dup"))
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("expected 2 after dedup, got %d", b.Len())
	}
	if n := b.Count(DuplicateDeclaration); n != 2 {
		t.Fatalf("Count = %d", n)
	}
	if got := b.BySubject("foo"); len(got) != 1 {
		t.Fatalf("BySubject(foo) = %+v", got)
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		UnclassifiableLiteral:    "LIT1001",
		CyclicMacroReference:     "MAC2001",
		UnresolvedMacroReference: "MAC2002",
		UnsupportedType:          "TYP3001",
		DuplicateDeclaration:     "DCL4001",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if UnresolvedMacroReference.Title() != "Unresolved macro reference" {
		t.Errorf("unexpected title %q", UnresolvedMacroReference.Title())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	rb := ReportError(BagReporter{Bag: b}, CyclicMacroReference, "A", source.Pos{}, "cycle").
		WithNote(source.Pos{}, "A -> B -> A")
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 || len(b.Items()[0].Notes) != 1 {
		t.Fatalf("builder must emit exactly once with notes: %+v", b.Items())
	}
}
