package translate

import (
	"fmt"
	"strings"
)

// Category is a set of entry classes, used to switch parts of a unit off.
type Category uint8

const (
	CategoryFunctions Category = 1 << iota
	CategoryVariables
	CategoryEnums
	CategoryMacros
)

var categoryNames = []struct {
	cat  Category
	name string
}{
	{CategoryFunctions, "functions"},
	{CategoryVariables, "variables"},
	{CategoryEnums, "enums"},
	{CategoryMacros, "macros"},
}

// Has reports whether every class in x is in c.
func (c Category) Has(x Category) bool { return x != 0 && c&x == x }

func (c Category) String() string {
	var parts []string
	for _, cn := range categoryNames {
		if c.Has(cn.cat) {
			parts = append(parts, cn.name)
		}
	}
	return strings.Join(parts, ",")
}

// ParseCategories folds names such as "functions" or "macros" into a set.
func ParseCategories(names []string) (Category, error) {
	var c Category
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		found := false
		for _, cn := range categoryNames {
			if cn.name == name {
				c |= cn.cat
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown category %q (expected functions, variables, enums or macros)", raw)
		}
	}
	return c, nil
}
