package macro

import (
	"errors"
	"fmt"
	"strings"

	"modgen/internal/diag"
)

// ErrorKind classifies resolution failures.
type ErrorKind uint8

const (
	// ErrKindLiteral: the body is neither a literal nor a foldable expression.
	ErrKindLiteral ErrorKind = iota + 1
	// ErrKindCycle: the macro is part of a reference cycle.
	ErrKindCycle
	// ErrKindUnresolved: a referenced name is undefined, or a dependency failed.
	ErrKindUnresolved
)

var (
	ErrCycle      = errors.New("cyclic macro reference")
	ErrUnresolved = errors.New("unresolved macro reference")
)

// Error is a failed macro resolution.
type Error struct {
	Kind  ErrorKind
	Macro string
	// Ref is the undefined name or the failed dependency (ErrKindUnresolved).
	Ref string
	// Cycle lists the macros of the cycle, first one repeated at the end.
	Cycle []string
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrKindCycle:
		return fmt.Sprintf("macro %s: cyclic reference %s", e.Macro, strings.Join(e.Cycle, " -> "))
	case ErrKindUnresolved:
		if e.Err != nil {
			return fmt.Sprintf("macro %s: depends on failed macro %s", e.Macro, e.Ref)
		}
		if e.Ref == e.Macro {
			return fmt.Sprintf("macro %s is not defined", e.Macro)
		}
		return fmt.Sprintf("macro %s: reference to undefined name %s", e.Macro, e.Ref)
	default:
		return fmt.Sprintf("macro %s: %v", e.Macro, e.Err)
	}
}

// Unwrap exposes the underlying literal error. A failed dependency stays in
// Err but is not unwrapped: the dependent is unresolved, not cyclic.
func (e *Error) Unwrap() error {
	if e.Kind == ErrKindUnresolved {
		return nil
	}
	return e.Err
}

// Is matches ErrCycle and ErrUnresolved by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrCycle:
		return e.Kind == ErrKindCycle
	case ErrUnresolved:
		return e.Kind == ErrKindUnresolved
	}
	return false
}

// Code maps the failure to its diagnostic code.
func (e *Error) Code() diag.Code {
	switch e.Kind {
	case ErrKindCycle:
		return diag.CyclicMacroReference
	case ErrKindUnresolved:
		return diag.UnresolvedMacroReference
	default:
		return diag.UnclassifiableLiteral
	}
}
