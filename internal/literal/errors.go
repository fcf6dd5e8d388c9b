package literal

import (
	"errors"
	"fmt"
)

var (
	// ErrUnclassifiable means the body is not a literal the classifier knows.
	ErrUnclassifiable = errors.New("unclassifiable literal")
	// ErrDeferred means the body names other macros or is an expression; the
	// macro resolver has to evaluate it.
	ErrDeferred = errors.New("literal references other macros")
	// ErrEmpty is returned for an empty body (an include guard, typically).
	ErrEmpty = fmt.Errorf("empty macro body: %w", ErrUnclassifiable)
)

// SyntaxError describes why a body could not be classified.
type SyntaxError struct {
	Body   string
	Reason string
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%q: %s: %v", e.Body, e.Reason, e.Err)
	}
	return fmt.Sprintf("%q: %s", e.Body, e.Reason)
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnclassifiable, e.Err}
	}
	return []error{ErrUnclassifiable}
}

func syntaxErr(body, reason string) error {
	return &SyntaxError{Body: body, Reason: reason}
}
