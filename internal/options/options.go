// Package options implements the functional options shared by the buffer,
// message, capture, transport and hostsim constructors.
package options

// Option configures a value of type T. Options are applied in order and the
// first error stops the constructor.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a plain function to Option.
type Func[T any] func(T) error

func (f Func[T]) apply(target T) error {
	return f(target)
}

// New returns an option that may reject its argument.
func New[T any](fn func(T) error) Func[T] {
	return Func[T](fn)
}

// NoError returns an option that cannot fail.
func NoError[T any](fn func(T)) Func[T] {
	return func(target T) error {
		fn(target)
		return nil
	}
}

// Apply applies opts to target in order and returns the first error. Nil
// options are skipped so callers can build option lists conditionally.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
