package layout

import (
	"fmt"
	"strings"

	"modgen/internal/types"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized indicates an aggregate that contains itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	// LayoutErrUnsized indicates a value of a type without storage (void, fn).
	LayoutErrUnsized
	LayoutErrLengthConversion
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.TypeID
	Cycle []types.TypeID // for LayoutErrRecursiveUnsized
	Err   error          // for LayoutErrLengthConversion
	label func(types.TypeID) string
}

func (e *LayoutError) name(id types.TypeID) string {
	if e.label != nil {
		return e.label(id)
	}
	return fmt.Sprintf("type#%d", id)
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive value type has infinite size (%s)", e.name(e.Type))
		}
		parts := make([]string, 0, len(e.Cycle))
		for _, id := range e.Cycle {
			parts = append(parts, e.name(id))
		}
		return fmt.Sprintf("recursive value type has infinite size (cycle: %s)", strings.Join(parts, " -> "))
	case LayoutErrUnsized:
		return fmt.Sprintf("%s has no storage size", e.name(e.Type))
	case LayoutErrLengthConversion:
		return fmt.Sprintf("array length conversion error (%s): %v", e.name(e.Type), e.Err)
	default:
		return fmt.Sprintf("layout error kind=%d %s", e.Kind, e.name(e.Type))
	}
}

func (e *LayoutError) Unwrap() error { return e.Err }
