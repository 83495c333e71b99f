package internal

// FirstNonNilPtr returns a if it is not nil, b otherwise.
//
// Commands use it to let a flag override the matching .xzip setting.
func FirstNonNilPtr[T any](a *T, b *T) *T {
	if a != nil {
		return a
	}
	return b
}
