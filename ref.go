package byref

import (
	"unsafe"

	"github.com/oliverbestmann/byref/internal/assert"
)

// Ref is a borrowed reference to a single existing slot of type T.
// It does not own the slot and must not outlive it. A Ref must not be stored
// in long living structures or captured by goroutines or closures
// that outlive the slot.
//
// A Ref is not comparable: use Same to compare identity.
type Ref[T any] struct {
	_   [0]func()
	ptr *T
}

// New borrows the slot target points to. A nil target yields a null reference.
func New[T any](target *T) Ref[T] {
	return Ref[T]{ptr: target}
}

// Null returns a reference without a target.
func Null[T any]() Ref[T] {
	return Ref[T]{}
}

func (r Ref[T]) IsNull() bool {
	return r.ptr == nil
}

func (r Ref[T]) HasTarget() bool {
	return r.ptr != nil
}

// Target gives mutable access to the referenced slot.
// It panics with a *PreconditionError if the reference is null.
func (r Ref[T]) Target() *T {
	assert.NotNull(r.ptr, "Ref.Target")
	return r.ptr
}

// Same reports whether both references are null or point to the same slot.
func (r Ref[T]) Same(other Ref[T]) bool {
	return r.ptr == other.ptr
}

// ReadOnly returns a read only view of the same slot.
func (r Ref[T]) ReadOnly() RefReadOnly[T] {
	return RefReadOnly[T]{ptr: r.ptr}
}

// Erase pairs the reference with the descriptor of T.
// Erasing a null reference yields a typed null, not the untyped default.
func (r Ref[T]) Erase() Erased {
	return Erased{desc: DescriptorOf[T](), ptr: unsafe.Pointer(r.ptr)}
}

func (r Ref[T]) EraseReadOnly() ErasedReadOnly {
	return ErasedReadOnly{desc: DescriptorOf[T](), ptr: unsafe.Pointer(r.ptr)}
}

func (r Ref[T]) String() string {
	return DescriptorOf[T]().Stringify(unsafe.Pointer(r.ptr))
}

// RefReadOnly is the read only counterpart of Ref.
type RefReadOnly[T any] struct {
	_   [0]func()
	ptr *T
}

func NewReadOnly[T any](target *T) RefReadOnly[T] {
	return RefReadOnly[T]{ptr: target}
}

func NullReadOnly[T any]() RefReadOnly[T] {
	return RefReadOnly[T]{}
}

func (r RefReadOnly[T]) IsNull() bool {
	return r.ptr == nil
}

func (r RefReadOnly[T]) HasTarget() bool {
	return r.ptr != nil
}

// Target returns a copy of the current value of the referenced slot.
// It panics with a *PreconditionError if the reference is null.
func (r RefReadOnly[T]) Target() T {
	assert.NotNull(r.ptr, "RefReadOnly.Target")
	return *r.ptr
}

// Addr returns the address of the referenced slot, or nil.
func (r RefReadOnly[T]) Addr() unsafe.Pointer {
	return unsafe.Pointer(r.ptr)
}

func (r RefReadOnly[T]) Same(other RefReadOnly[T]) bool {
	return r.ptr == other.ptr
}

func (r RefReadOnly[T]) Erase() ErasedReadOnly {
	return ErasedReadOnly{desc: DescriptorOf[T](), ptr: unsafe.Pointer(r.ptr)}
}

func (r RefReadOnly[T]) String() string {
	return DescriptorOf[T]().Stringify(unsafe.Pointer(r.ptr))
}

// Narrow recovers a typed reference from an erased one. It fails with
// a *CastError if e was not erased from exactly type T.
func Narrow[T any](e Erased) (Ref[T], error) {
	desc := DescriptorOf[T]()
	if e.desc != desc {
		return Ref[T]{}, &CastError{From: e.desc, To: desc}
	}

	return Ref[T]{ptr: (*T)(e.ptr)}, nil
}

// NarrowReadOnly recovers a typed read only reference from either
// a mutable or a read only erased reference.
func NarrowReadOnly[T any, E ErasedHandle](e E) (RefReadOnly[T], error) {
	desc := DescriptorOf[T]()

	actual, ptr := e.parts()
	if actual != desc {
		return RefReadOnly[T]{}, &CastError{From: actual, To: desc}
	}

	return RefReadOnly[T]{ptr: (*T)(ptr)}, nil
}
