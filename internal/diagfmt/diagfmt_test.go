package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"modgen/internal/diag"
	"modgen/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("units/api.toml", []byte("name = \"api\"\n\n[[macros]]\nname = \"X\"\nbody = \"X\"\n"))
	bag := diag.NewBag(0)
	r := diag.BagReporter{Bag: bag}
	diag.ReportError(r, diag.CyclicMacroReference, "X", source.Pos{File: id, Line: 5, Col: 8},
		"macro X: cyclic reference X -> X").
		WithNote(source.Pos{File: id, Line: 4, Col: 1}, "X defined here").
		Emit()
	diag.ReportWarning(r, diag.LitEmptyMacro, "GUARD", source.Pos{}, "macro GUARD has no value and is not translated").Emit()
	return bag, fs
}

func TestPretty(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Context: true, ShowNotes: true, PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"api.toml:5:8: ERROR MAC2001: macro X: cyclic reference X -> X\n",
		"    5 | body = \"X\"\n",
		"      |        ^\n",
		"  note: api.toml:4:1: X defined here\n",
		"<memory>: WARNING LIT1002: macro GUARD has no value and is not translated\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colour codes without Color option")
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Color: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI colour codes")
	}
}

func TestJSON(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || out.Errors != 1 {
		t.Fatalf("count=%d errors=%d", out.Count, out.Errors)
	}
	first := out.Diagnostics[0]
	if first.Code != "MAC2001" || first.Location.Line != 5 || first.Location.File != "units/api.toml" || len(first.Notes) != 1 {
		t.Fatalf("first diagnostic %+v", first)
	}

	limited := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if limited.Count != 1 || limited.Diagnostics[0].Location.Line != 0 {
		t.Fatalf("Max and IncludePositions not honoured: %+v", limited)
	}
}
