package trace

import (
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Heartbeat periodically emits liveness events carrying the goroutine
// count. Heartbeats without span ends mean a run is stuck on one unit.
type Heartbeat struct {
	tracer Tracer
	done   chan struct{}
	stop   sync.Once
	exited chan struct{}
}

// StartHeartbeat starts emitting heartbeats; nil when tracing is off or the
// interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{tracer: tracer, done: make(chan struct{}), exited: make(chan struct{})}
	go h.loop(interval)
	return h
}

func (h *Heartbeat) loop(interval time.Duration) {
	defer close(h.exited)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case <-h.done:
			return
		case now := <-ticker.C:
			h.tracer.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    goroutineID(),
				Name:   "heartbeat",
				Detail: "#" + strconv.Itoa(beat),
				Extra:  map[string]string{"goroutines": strconv.Itoa(runtime.NumGoroutine())},
			})
		}
	}
}

// Stop ends the heartbeat goroutine and waits for it. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.stop.Do(func() { close(h.done) })
	<-h.exited
}
