package exceptions

import (
	"errors"
	"fmt"
	goRuntime "runtime"
	"strings"
)

// Create classifies an arbitrary failure into the exception tree.
//
// Exceptions pass through unchanged. Go runtime faults map onto their managed
// counterparts (nil dereference to null-reference, bounds faults to
// argument-out-of-range, failed type assertions to invalid-cast, integer
// division by zero to divide-by-zero) with the fault kept as the inner cause.
// Any other error becomes an ErrorException; non-error values become a base
// exception carrying their printed form.
func Create(v any) *Exception {
	switch val := v.(type) {
	case nil:
		return New("", nil)
	case *Exception:
		return val
	case error:
		var ex *Exception
		if errors.As(val, &ex) {
			return ex
		}
		return classifyError(val)
	default:
		return New(fmt.Sprint(val), nil)
	}
}

// FromPanic converts a recovered panic value. It is meant for use inside a
// deferred recover.
func FromPanic(r any) *Exception {
	return Create(r)
}

func classifyError(err error) *Exception {
	var assertion *goRuntime.TypeAssertionError
	if errors.As(err, &assertion) {
		return NewInvalidCast(err.Error(), Wrap(err))
	}
	var fault goRuntime.Error
	if !errors.As(err, &fault) {
		return Wrap(err)
	}
	msg := fault.Error()
	switch {
	case strings.Contains(msg, "nil pointer dereference"),
		strings.Contains(msg, "invalid memory address"),
		strings.Contains(msg, "nil map"):
		return NewNullReference(msg, Wrap(err))
	case strings.Contains(msg, "index out of range"),
		strings.Contains(msg, "slice bounds out of range"),
		strings.Contains(msg, "out of range"):
		return NewArgumentOutOfRange("", msg, Wrap(err), nil)
	case strings.Contains(msg, "integer divide by zero"):
		return NewDivideByZero(msg, Wrap(err))
	default:
		return Wrap(err)
	}
}
