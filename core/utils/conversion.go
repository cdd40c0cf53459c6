package utils

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the value behind p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// NonEmpty returns nil for an empty string, otherwise a pointer to s.
// It maps optional CLI flags and query parameters onto absent values.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
