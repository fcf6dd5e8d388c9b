// Package cdecl models the C side of a translation: the declarations and
// macros a front end extracted from one header.
//
// A Unit is built once by the front end (or decoded by internal/unitfile) and
// is read-only afterwards. TypeRef values for named aggregates and typedefs
// are shared by pointer: every declaration that uses struct S refers to the
// same *Struct, which is what lets the type mapper translate it exactly once.
package cdecl
