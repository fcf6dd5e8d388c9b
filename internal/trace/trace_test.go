package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeUnit, false},
		{LevelDetail, ScopeUnit, true},
		{LevelDetail, ScopeEntry, false},
		{LevelDebug, ScopeEntry, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestStartNestsSpansThroughContext(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, outer := Start(ctx, ScopePass, "translate")
	_, inner := Start(ctx, ScopeUnit, "unit:api")
	Point(ring, ScopeEntry, "macro:X", "failed", inner.ID())
	inner.End("")
	outer.WithExtra("decls", "3").End("done")

	events := ring.Snapshot()
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}
	if events[1].ParentID != outer.ID() {
		t.Fatalf("inner span must be parented to outer")
	}
	if events[2].Kind != KindPoint || events[2].ParentID != inner.ID() {
		t.Fatalf("point event: %+v", events[2])
	}
	last := events[4]
	if last.Kind != KindSpanEnd || last.Extra["decls"] != "3" || last.Detail != "done" {
		t.Fatalf("end event: %+v", last)
	}
}

func TestStreamTracerFormats(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Begin(tr, ScopePass, "emit", 0).End("ok")
	Begin(tr, ScopeUnit, "unit:skipped", 0).End("")
	out := buf.String()
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected 2 NDJSON lines, got %q", out)
	}
	if !strings.Contains(out, `"name":"emit"`) || strings.Contains(out, "skipped") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	if s := Begin(tr, ScopeDriver, "x", 0); s.ID() != 0 || s.End("") != 0 {
		t.Fatalf("nop span must be inert")
	}
}

func TestHeartbeatStops(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	h.Stop()
	h.Stop()
	n := len(ring.Snapshot())
	time.Sleep(5 * time.Millisecond)
	if len(ring.Snapshot()) != n {
		t.Fatalf("heartbeat kept running after Stop")
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("heartbeat must not start for a disabled tracer")
	}
}

func TestFindRingInBothMode(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf, RingSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	ring := FindRing(tr)
	if ring == nil {
		t.Fatalf("both mode must keep a ring")
	}
	for range 6 {
		Point(tr, ScopeEntry, "p", "", 0)
	}
	if got := len(ring.Snapshot()); got != 4 {
		t.Fatalf("ring holds %d events, want 4", got)
	}
	if FindRing(Nop) != nil {
		t.Fatalf("nop tracer has no ring")
	}
}

func TestFailurePassesErrorLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	Point(ring, ScopeEntry, "entry:ok", "", 0)
	Begin(ring, ScopeDriver, "run", 0).End("")
	Failure(ring, ScopeEntry, "entry:bad", "MAC2001", 0)
	events := ring.Snapshot()
	if len(events) != 1 || events[0].Name != "entry:bad" || events[0].Kind != KindFailure {
		t.Fatalf("want only the failure, got %+v", events)
	}
	Failure(Nop, ScopeEntry, "x", "", 0)
}
