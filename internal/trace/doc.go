// Package trace records what a modgen run is doing: driver setup, one span
// per pass over a unit, and point events for individual entries that failed.
//
// Enable it from the command line:
//
//	modgen translate --trace=- --trace-level=detail api.toml
//
// Implementations:
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events in memory
//   - MultiTracer: fans out to several tracers
//
// Levels map to scopes: LevelPhase shows driver and pass spans, LevelDetail
// adds per-unit spans and LevelDebug adds per-entry events.
package trace
