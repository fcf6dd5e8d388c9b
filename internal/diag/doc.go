// Package diag defines the diagnostic model shared by every translation pass.
//
// # Purpose
//
//   - Provide deterministic data structures that capture per-entry failures
//     produced while classifying macros, mapping types and translating
//     declarations.
//   - Offer light-weight utilities (Reporter, Bag) that let passes emit
//     diagnostics without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – compact numeric identifier (codes.go) with a stable ID such as
//     LIT1001.
//   - Subject – the macro or declaration name the failure belongs to. Every
//     translation diagnostic carries one so callers can trace a failure back
//     to the header construct.
//   - Pos – front-end position of the subject, when known.
//   - Notes – optional secondary messages ("depends on ONE").
//
// Translation is best effort: passes report one diagnostic per failing entry
// and continue. Whether any diagnostic aborts emission is the caller's call;
// Bag.HasErrors is the usual gate.
//
// Rendering lives in internal/diagfmt.
package diag
