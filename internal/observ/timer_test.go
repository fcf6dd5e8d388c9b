package observ

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.Time("load", func() string { return "2 units" })
	idx := tm.Begin("translate")
	tm.End(idx, "")
	tm.End(99, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(rep.Phases))
	}
	if rep.Phases[0].Name != "load" || rep.Phases[0].Note != "2 units" {
		t.Fatalf("unexpected first phase %+v", rep.Phases[0])
	}
	if !strings.Contains(tm.Summary(), "total") {
		t.Fatalf("summary misses total line")
	}

	var buf bytes.Buffer
	if err := tm.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var back Report
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil || len(back.Phases) != 2 {
		t.Fatalf("bad JSON %q: %v", buf.String(), err)
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Time("unit", func() string { return "" })
		}()
	}
	wg.Wait()
	if n := len(tm.Report().Phases); n != 8 {
		t.Fatalf("got %d phases, want 8", n)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer must report nothing")
	}
}
