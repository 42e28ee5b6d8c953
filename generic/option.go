package generic

// Option holds either a Value (Some) or nothing (None).
type Option[T any] struct {
	Value T
	ok    bool
}

func Some[T any](value T) Option[T] {
	return Option[T]{Value: value, ok: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

func (o *Option[T]) IsSome() bool {
	return o.ok
}
