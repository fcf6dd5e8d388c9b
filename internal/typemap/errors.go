package typemap

import (
	"errors"
	"fmt"
)

// ErrUnsupported is wrapped by every mapping failure.
var ErrUnsupported = errors.New("unsupported type")

// Error reports a C type the target cannot express.
type Error struct {
	// Type is the C spelling of the offending type.
	Type   string
	Reason string
	// Cause is set when the failure comes from a nested type.
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrUnsupported, e.Cause}
	}
	return []error{ErrUnsupported}
}

func unsupported(t fmt.Stringer, format string, args ...any) *Error {
	return &Error{Type: spelling(t), Reason: fmt.Sprintf(format, args...)}
}

func nested(t fmt.Stringer, what string, cause error) *Error {
	return &Error{Type: spelling(t), Reason: what, Cause: cause}
}

func spelling(t fmt.Stringer) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
