// Package macro resolves object-like macros whose bodies are not plain
// literals: aliases of other macros and constant expressions over them.
//
// Resolution is lazy and memoized per unit. Bodies are tokenized, referenced
// names are replaced by their already-typed values and the expression is
// folded with C's usual arithmetic conversions, so a derived macro keeps the
// kind (int, unsigned long, double ...) C would give it.
package macro
