package collection

import (
	"errors"
	"fmt"

	"github.com/roach88/dimu/internal/hist"
)

// Sentinel errors. Error values unwrap to one of these, so callers can use
// errors.Is without inspecting codes.
var (
	// ErrUnknownObject is returned when the factory does not know a name.
	ErrUnknownObject = errors.New("unknown object")

	// ErrKindMismatch is returned when a histogram meets a counter.
	ErrKindMismatch = errors.New("object kind mismatch")

	// ErrAxisMismatch is returned when two histograms under the same key
	// have different templates.
	ErrAxisMismatch = hist.ErrAxisMismatch
)

// ErrorCode categorizes collection errors.
type ErrorCode string

const (
	// ErrCodeUnknownObject indicates a name with no factory entry.
	ErrCodeUnknownObject ErrorCode = "UNKNOWN_OBJECT"

	// ErrCodeAxisMismatch indicates incompatible histogram templates.
	ErrCodeAxisMismatch ErrorCode = "AXIS_MISMATCH"

	// ErrCodeKindMismatch indicates incompatible object kinds.
	ErrCodeKindMismatch ErrorCode = "KIND_MISMATCH"
)

// Error describes a failure affecting one key of a collection.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Key is the rendered key of the affected object.
	Key string

	// Message is a human-readable description.
	Message string

	err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key=%s)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the sentinel for the error's code.
func (e *Error) Unwrap() error {
	return e.err
}

func newError(code ErrorCode, key, message string) *Error {
	e := &Error{Code: code, Key: key, Message: message}
	switch code {
	case ErrCodeUnknownObject:
		e.err = ErrUnknownObject
	case ErrCodeAxisMismatch:
		e.err = ErrAxisMismatch
	case ErrCodeKindMismatch:
		e.err = ErrKindMismatch
	}
	return e
}

// IsUnknownObject returns true if err is or wraps an unknown-object error.
func IsUnknownObject(err error) bool {
	return errors.Is(err, ErrUnknownObject)
}

// IsAxisMismatch returns true if err is or wraps an axis mismatch.
func IsAxisMismatch(err error) bool {
	return errors.Is(err, ErrAxisMismatch)
}

// IsKindMismatch returns true if err is or wraps a kind mismatch.
func IsKindMismatch(err error) bool {
	return errors.Is(err, ErrKindMismatch)
}
