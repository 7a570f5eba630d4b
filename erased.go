package byref

import (
	"log/slog"
	"reflect"
	"unsafe"
)

// ErasedHandle is satisfied by both erased reference types.
type ErasedHandle interface {
	Erased | ErasedReadOnly
	parts() (*Descriptor, unsafe.Pointer)
}

// Erased is a borrowed reference to a slot whose type is only known at runtime.
// It pairs the address of the slot with the descriptor of its type.
//
// The zero value is the default reference: it carries neither a type nor a
// target. A null reference carries a type but no target, see ErasedNull.
//
// Like Ref, an Erased must not outlive the slot it references,
// and it is not comparable: use Same to compare identity.
type Erased struct {
	_    [0]func()
	desc *Descriptor
	ptr  unsafe.Pointer
}

// Erase borrows the slot target points to and tags it with the descriptor of T.
func Erase[T any](target *T) Erased {
	return Erased{desc: DescriptorOf[T](), ptr: unsafe.Pointer(target)}
}

// ErasedNull returns a reference of type T without a target.
func ErasedNull[T any]() Erased {
	return Erased{desc: DescriptorOf[T]()}
}

func (e Erased) parts() (*Descriptor, unsafe.Pointer) {
	return e.desc, e.ptr
}

func (e Erased) IsDefault() bool {
	return e.desc == nil
}

func (e Erased) HasType() bool {
	return e.desc != nil
}

func (e Erased) IsNull() bool {
	return e.ptr == nil
}

func (e Erased) HasTarget() bool {
	return e.ptr != nil
}

// Descriptor returns the type tag, or nil for the default reference.
func (e Erased) Descriptor() *Descriptor {
	return e.desc
}

// Type returns the type of the referenced slot, or nil for the default reference.
func (e Erased) Type() reflect.Type {
	if e.desc == nil {
		return nil
	}

	return e.desc.Type
}

// Same reports whether both references carry the same type and address.
func (e Erased) Same(other Erased) bool {
	return e.desc == other.desc && e.ptr == other.ptr
}

// ReadOnly returns a read only view sharing descriptor and address.
func (e Erased) ReadOnly() ErasedReadOnly {
	return ErasedReadOnly{desc: e.desc, ptr: e.ptr}
}

// ToObject returns a copy of the referenced value, or nil without a target.
func (e Erased) ToObject() any {
	if e.ptr == nil {
		return nil
	}

	return e.desc.Box(e.ptr)
}

func (e Erased) String() string {
	if e.ptr == nil {
		return ""
	}

	return e.desc.Stringify(e.ptr)
}

func (e Erased) LogValue() slog.Value {
	return logValueOf(e.desc, e.ptr)
}

// ErasedReadOnly is the read only counterpart of Erased.
type ErasedReadOnly struct {
	_    [0]func()
	desc *Descriptor
	ptr  unsafe.Pointer
}

func EraseReadOnly[T any](target *T) ErasedReadOnly {
	return ErasedReadOnly{desc: DescriptorOf[T](), ptr: unsafe.Pointer(target)}
}

func ErasedReadOnlyNull[T any]() ErasedReadOnly {
	return ErasedReadOnly{desc: DescriptorOf[T]()}
}

func (e ErasedReadOnly) parts() (*Descriptor, unsafe.Pointer) {
	return e.desc, e.ptr
}

func (e ErasedReadOnly) IsDefault() bool {
	return e.desc == nil
}

func (e ErasedReadOnly) HasType() bool {
	return e.desc != nil
}

func (e ErasedReadOnly) IsNull() bool {
	return e.ptr == nil
}

func (e ErasedReadOnly) HasTarget() bool {
	return e.ptr != nil
}

func (e ErasedReadOnly) Descriptor() *Descriptor {
	return e.desc
}

func (e ErasedReadOnly) Type() reflect.Type {
	if e.desc == nil {
		return nil
	}

	return e.desc.Type
}

func (e ErasedReadOnly) Same(other ErasedReadOnly) bool {
	return e.desc == other.desc && e.ptr == other.ptr
}

// UnsafeMutable regains mutable access to the referenced slot.
// Only use this if the slot was originally borrowed as mutable.
func (e ErasedReadOnly) UnsafeMutable() Erased {
	return Erased{desc: e.desc, ptr: e.ptr}
}

func (e ErasedReadOnly) ToObject() any {
	if e.ptr == nil {
		return nil
	}

	return e.desc.Box(e.ptr)
}

func (e ErasedReadOnly) String() string {
	if e.ptr == nil {
		return ""
	}

	return e.desc.Stringify(e.ptr)
}

func (e ErasedReadOnly) LogValue() slog.Value {
	return logValueOf(e.desc, e.ptr)
}

// Is reports whether e was erased from exactly type T. Named types
// never match their underlying type.
func Is[T any, E ErasedHandle](e E) bool {
	desc, _ := e.parts()
	return desc != nil && desc == DescriptorOf[T]()
}

// TargetAs gives mutable access to the referenced slot as a T. It fails with
// a *CastError on a type mismatch and panics with a *PreconditionError if
// the reference has the right type but no target.
func TargetAs[T any](e Erased) (*T, error) {
	ref, err := Narrow[T](e)
	if err != nil {
		return nil, err
	}

	return ref.Target(), nil
}

// ReadTargetAs returns a copy of the referenced value as a T. It behaves
// like TargetAs but accepts read only references.
func ReadTargetAs[T any, E ErasedHandle](e E) (T, error) {
	ref, err := NarrowReadOnly[T](e)
	if err != nil {
		var zero T
		return zero, err
	}

	return ref.Target(), nil
}

// TryGetTarget returns a copy of the referenced value if e has type T
// and a target. Otherwise it returns the zero value of T and false.
func TryGetTarget[T any, E ErasedHandle](e E) (T, bool) {
	if !Is[T](e) {
		var zero T
		return zero, false
	}

	_, ptr := e.parts()
	if ptr == nil {
		var zero T
		return zero, false
	}

	return *(*T)(ptr), true
}

// MustTargetAs is like TargetAs but panics on a type mismatch.
func MustTargetAs[T any](e Erased) *T {
	target, err := TargetAs[T](e)
	if err != nil {
		panic(err)
	}

	return target
}

func logValueOf(desc *Descriptor, ptr unsafe.Pointer) slog.Value {
	if desc == nil {
		return slog.StringValue("<default>")
	}

	if ptr == nil {
		return slog.GroupValue(slog.String("type", desc.Name), slog.Bool("null", true))
	}

	return slog.GroupValue(
		slog.String("type", desc.Name),
		slog.String("value", desc.Stringify(ptr)),
	)
}
