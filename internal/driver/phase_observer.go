package driver

import "time"

// UnitStatus reports how a unit finished.
type UnitStatus int

const (
	UnitTranslated UnitStatus = iota
	UnitCached
	UnitFailed
)

func (s UnitStatus) String() string {
	switch s {
	case UnitTranslated:
		return "translated"
	case UnitCached:
		return "cached"
	default:
		return "failed"
	}
}

// UnitEvent describes one finished unit.
type UnitEvent struct {
	Path    string
	Status  UnitStatus
	Elapsed time.Duration
}

// UnitObserver receives an event per finished unit. Called from worker
// goroutines; implementations must be goroutine-safe.
type UnitObserver func(UnitEvent)
