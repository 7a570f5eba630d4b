// Package byref provides non owning references to a single existing slot.
//
// References come in two layers. Ref and RefReadOnly are statically typed
// and wrap a *T. Erased and ErasedReadOnly carry an untyped pointer together
// with a Descriptor, the runtime type tag of the slot. They can be stored
// side by side and narrowed back to a typed reference later:
//
//	value := 5
//
//	erased := byref.New(&value).Erase()
//
//	byref.Is[int](erased)    // true
//	byref.Is[string](erased) // false
//
//	target, err := byref.TargetAs[int](erased)
//	// *target == 5, err == nil
//
//	_, err = byref.TargetAs[string](erased)
//	// errors.Is(err, byref.ErrInvalidCast)
//
// Narrowing requires the exact type: a named type never matches its underlying
// type, and an interface type never matches the types implementing it.
//
// References are borrows. They must not outlive the slot they point to and
// should only be passed down the call stack, never stored in long living
// structures. They are intentionally not comparable, neither using == nor as
// map keys. Compare identity using the Same methods instead.
package byref
