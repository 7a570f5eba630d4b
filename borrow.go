package byref

// Borrow calls fn with a reference to target. The reference is only valid
// for the duration of the call and must not be retained by fn.
func Borrow[T any](target *T, fn func(Ref[T])) {
	fn(New(target))
}

// BorrowErased calls fn with an erased reference to target. The reference is
// only valid for the duration of the call and must not be retained by fn.
func BorrowErased[T any](target *T, fn func(Erased)) {
	fn(Erase(target))
}
