// Package translate turns a cdecl.Unit into target declarations.
//
// Macros come first, in definition order, as typed constants. Declarations
// follow in source order; the constants of an enum are emitted right after
// the declaration that first uses the enum. Every failing entry yields one
// diagnostic and translation continues with the next entry.
package translate
