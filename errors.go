package byref

import (
	"errors"
	"fmt"

	"github.com/oliverbestmann/byref/internal/assert"
)

// ErrInvalidCast is returned when an erased reference is narrowed
// to a type that does not exactly match its descriptor.
var ErrInvalidCast = errors.New("invalid cast")

// CastError describes a failed narrowing. It matches ErrInvalidCast
// using errors.Is.
type CastError struct {
	// From is nil if the erased reference did not carry a type.
	From *Descriptor
	To   *Descriptor
}

func (e *CastError) Error() string {
	from := "<untyped>"
	if e.From != nil {
		from = e.From.Name
	}

	return fmt.Sprintf("byref: %s from %s to %s", ErrInvalidCast, from, e.To.Name)
}

func (e *CastError) Unwrap() error {
	return ErrInvalidCast
}

// PreconditionError is the panic value raised when the target
// of a reference without a target is accessed.
type PreconditionError = assert.Violation
