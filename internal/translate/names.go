package translate

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"modgen/internal/source"
)

// NameRules describes the target's identifier rules.
type NameRules struct {
	// CaseInsensitive targets treat names differing only in case as equal.
	CaseInsensitive bool
}

// NameTable is the unit-wide table of emitted names.
type NameTable struct {
	rules NameRules
	fold  cases.Caser
	seen  map[string]nameEntry
}

type nameEntry struct {
	name string
	pos  source.Pos
}

// NewNameTable creates an empty table for rules.
func NewNameTable(rules NameRules) *NameTable {
	return &NameTable{
		rules: rules,
		fold:  cases.Fold(),
		seen:  make(map[string]nameEntry),
	}
}

// Key is the identity of name under the table's rules: NFC-normalised,
// case-folded when the target is case-insensitive.
func (t *NameTable) Key(name string) string {
	key := norm.NFC.String(name)
	if t.rules.CaseInsensitive {
		key = t.fold.String(key)
	}
	return key
}

// Declare records name. When an equal name exists it returns that name and
// its position with ok=false.
func (t *NameTable) Declare(name string, pos source.Pos) (prev string, prevPos source.Pos, ok bool) {
	key := t.Key(name)
	if e, dup := t.seen[key]; dup {
		return e.name, e.pos, false
	}
	t.seen[key] = nameEntry{name: name, pos: pos}
	return "", source.Pos{}, true
}

// Len reports the number of declared names.
func (t *NameTable) Len() int { return len(t.seen) }
