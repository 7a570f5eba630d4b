package byref

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"sync/atomic"
	"unsafe"
)

type DescriptorId uint32

// Descriptor is the runtime type tag of an erased reference. There is exactly
// one Descriptor per Go type, so two descriptors describe the same type
// if and only if they are the same pointer.
type Descriptor struct {
	Name string
	Type reflect.Type

	// The Id of the type, dense and starting at one
	Id DescriptorId

	// Nilable indicates that the zero value of the type is a nil value,
	// e.g. for pointers, interfaces, maps, slices, channels and functions.
	Nilable bool

	stringify func(ptr unsafe.Pointer) string
	box       func(ptr unsafe.Pointer) any
}

// Stringify formats the value that ptr points to. A nil ptr or
// a nil value behind ptr formats as the empty string.
func (d *Descriptor) Stringify(ptr unsafe.Pointer) string {
	if ptr == nil {
		return ""
	}

	return d.stringify(ptr)
}

// Box returns a copy of the value that ptr points to, or nil if ptr is nil.
func (d *Descriptor) Box(ptr unsafe.Pointer) any {
	if ptr == nil {
		return nil
	}

	return d.box(ptr)
}

func (d *Descriptor) String() string {
	return d.Name
}

var descriptors atomic.Pointer[map[unsafe.Pointer]*Descriptor]

func init() {
	// initialize the lookup table
	descriptors.Store(&map[unsafe.Pointer]*Descriptor{})
}

// DescriptorOf returns the descriptor of type T, registering it on first use.
func DescriptorOf[T any]() *Descriptor {
	reflectType := reflect.TypeFor[T]()
	ptrToType := abiTypePointerTo(reflectType)

	if cached, ok := (*descriptors.Load())[ptrToType]; ok {
		return cached
	}

	return ensureDescriptor(ptrToType, makeDescriptor[T])
}

// Lookup returns the descriptor of an already registered type.
// It never registers a new descriptor.
func Lookup(ty reflect.Type) (*Descriptor, bool) {
	if ty == nil {
		return nil, false
	}

	desc, ok := (*descriptors.Load())[abiTypePointerTo(ty)]
	return desc, ok
}

// Descriptors returns a snapshot of all registered descriptors, ordered by id.
func Descriptors() []*Descriptor {
	result := slices.Collect(maps.Values(*descriptors.Load()))

	slices.SortFunc(result, func(a, b *Descriptor) int {
		return int(a.Id) - int(b.Id)
	})

	return result
}

func ensureDescriptor(ptrToType unsafe.Pointer, makeDescriptor func(id DescriptorId) *Descriptor) *Descriptor {
	for {
		previous := descriptors.Load()
		if cached, ok := (*previous)[ptrToType]; ok {
			return cached
		}

		newDescriptor := makeDescriptor(DescriptorId(len(*previous) + 1))

		updated := maps.Clone(*previous)
		updated[ptrToType] = newDescriptor

		if descriptors.CompareAndSwap(previous, &updated) {
			slog.Debug(
				"New reference type registered",
				slog.String("name", newDescriptor.Name),
				slog.Int("id", int(newDescriptor.Id)),
			)

			return newDescriptor
		}
	}
}

func abiTypePointerTo(t reflect.Type) unsafe.Pointer {
	type eface struct {
		typ, val unsafe.Pointer
	}

	// a reflect.Type is backed by an *rType. The rType contains a abi.Type as
	// its first value. This means, that a *rType can be re-interpreted as *abi.Type
	return (*eface)(unsafe.Pointer(&t)).val
}

var stringerType = reflect.TypeFor[fmt.Stringer]()

func makeDescriptor[T any](id DescriptorId) *Descriptor {
	reflectType := reflect.TypeFor[T]()

	return &Descriptor{
		Id:        id,
		Name:      reflectType.String(),
		Type:      reflectType,
		Nilable:   isNilableKind(reflectType.Kind()),
		stringify: makeStringify[T](reflectType),
		box:       boxValue[T],
	}
}

func makeStringify[T any](reflectType reflect.Type) func(ptr unsafe.Pointer) string {
	nilable := isNilableKind(reflectType.Kind())

	// String() might only be defined on *T, in which case we call it
	// on the referenced slot directly.
	if !reflectType.Implements(stringerType) && reflect.PointerTo(reflectType).Implements(stringerType) {
		return func(ptr unsafe.Pointer) string {
			return any((*T)(ptr)).(fmt.Stringer).String()
		}
	}

	return func(ptr unsafe.Pointer) string {
		value := any(*(*T)(ptr))
		if nilable && isNil(value) {
			return ""
		}

		return fmt.Sprint(value)
	}
}

func boxValue[T any](ptr unsafe.Pointer) any {
	return *(*T)(ptr)
}

func isNilableKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	// an interface typed slot may hold a non nil interface value
	// with a nil pointer inside
	rValue := reflect.ValueOf(value)
	return isNilableKind(rValue.Kind()) && rValue.IsNil()
}
