package advice

// Result is either Ok with a payload or Unavailable with the reason. Callers
// branch on Get instead of probing payload fields.
type Result[T any] struct {
	value  T
	ok     bool
	reason error
}

// Ok wraps a payload from the service
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Unavailable records why no payload could be produced
func Unavailable[T any](reason error) Result[T] {
	return Result[T]{reason: reason}
}

// Get returns the payload and whether it is present
func (r Result[T]) Get() (T, bool) {
	return r.value, r.ok
}

// OK reports whether the result carries a payload
func (r Result[T]) OK() bool {
	return r.ok
}

// Reason is nil for Ok results
func (r Result[T]) Reason() error {
	return r.reason
}

// OrElse returns the payload, or fallback when unavailable
func (r Result[T]) OrElse(fallback T) T {
	if r.ok {
		return r.value
	}
	return fallback
}
