package generic

// Result holds the outcome of a (T, error) call, so it can be passed around as one value, e.g. over a channel.
type Result[T any] struct {
	Value T
	Error error
}

func NewResult[T any](value T, err error) Result[T] {
	return Result[T]{Value: value, Error: err}
}

// Parts splits the Result back into (T, error).
func (r Result[T]) Parts() (T, error) {
	return r.Value, r.Error
}

// Unwrap returns the value, panicking if there is an error.
func (r Result[T]) Unwrap() T {
	if r.Error != nil {
		panic(r.Error)
	}
	return r.Value
}

// Unwrap is for calls that can only fail through programming errors: Unwrap(f()) panics if f returns an error.
func Unwrap[T any](value T, err error) T {
	return NewResult(value, err).Unwrap()
}

// Unwrap_ is Unwrap for calls that only return an error.
func Unwrap_(err error) {
	if err != nil {
		panic(err)
	}
}
