package cdecl

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSpelling resolves a compact type spelling used by unit files:
// a base name followed by any number of "*" and "[N]" suffixes, applied left
// to right ("char*", "int[5]", "struct node*", "func_ptr"). Base names are
// builtins, typedef names or tags defined in u.
func (u *Unit) ParseSpelling(spelling string) (TypeRef, error) {
	s := strings.TrimSpace(spelling)
	if s == "" {
		return nil, fmt.Errorf("empty type spelling")
	}
	cut := strings.IndexAny(s, "*[")
	base := s
	suffix := ""
	if cut >= 0 {
		base = strings.TrimSpace(s[:cut])
		suffix = s[cut:]
	}
	t, err := u.lookupBase(base)
	if err != nil {
		return nil, err
	}
	for suffix != "" {
		switch suffix[0] {
		case ' ', '\t':
			suffix = suffix[1:]
		case '*':
			t = &Pointer{To: t}
			suffix = suffix[1:]
		case '[':
			end := strings.IndexByte(suffix, ']')
			if end < 0 {
				return nil, fmt.Errorf("%q: unclosed '['", spelling)
			}
			lenText := strings.TrimSpace(suffix[1:end])
			var n uint64
			if lenText != "" {
				n, err = strconv.ParseUint(lenText, 0, 64)
				if err != nil {
					return nil, fmt.Errorf("%q: bad array length: %w", spelling, err)
				}
			}
			t = &Array{Of: t, Len: n}
			suffix = suffix[end+1:]
		default:
			return nil, fmt.Errorf("%q: unexpected %q", spelling, suffix[0])
		}
	}
	return t, nil
}

func (u *Unit) lookupBase(base string) (TypeRef, error) {
	norm := strings.Join(strings.Fields(base), " ")
	if t, ok := Builtin(norm); ok {
		return t, nil
	}
	if t, ok := u.types[norm]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type %q", norm)
}
