package assert

import (
	"fmt"
	"reflect"
)

// Violation is raised as a panic value if a caller breaks the precondition
// of an operation, e.g. by dereferencing a null reference.
type Violation struct {
	Op   string
	Type reflect.Type
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: null reference of type %s", v.Op, v.Type)
}

func NotNull[T any](ptr *T, op string) {
	if ptr == nil {
		panic(&Violation{Op: op, Type: reflect.TypeFor[T]()})
	}
}
