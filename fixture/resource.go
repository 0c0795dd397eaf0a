package fixture

import "errors"

// ErrResourceNotOpen is returned when a resource handle is requested before
// SetUp has run or after TearDown released it.
var ErrResourceNotOpen = errors.New("resource not open")

// Resource adapts an external open/close collaborator (an in-memory
// database, an HTTP server, a temp directory) into a setUp/tearDown pair.
// The core never owns such collaborators; it only scopes their lifetime.
type Resource[T any] struct {
	open  func() (T, error)
	close func(T) error

	handle T
	ok     bool
}

func NewResource[T any](open func() (T, error), close func(T) error) *Resource[T] {
	return &Resource[T]{open: open, close: close}
}

func (r *Resource[T]) SetUp() error {
	h, err := r.open()
	if err != nil {
		return err
	}
	r.handle = h
	r.ok = true
	return nil
}

func (r *Resource[T]) TearDown() error {
	if !r.ok {
		return ErrResourceNotOpen
	}
	r.ok = false
	h := r.handle
	var zero T
	r.handle = zero
	if r.close == nil {
		return nil
	}
	return r.close(h)
}

// Handle returns the open handle. Valid only between SetUp and TearDown,
// which is exactly the window in which a test body runs.
func (r *Resource[T]) Handle() (T, error) {
	if !r.ok {
		var zero T
		return zero, ErrResourceNotOpen
	}
	return r.handle, nil
}

// MustHandle is Handle for use inside test bodies, where an unopened
// resource is a programming error in the fixture wiring.
func (r *Resource[T]) MustHandle() T {
	h, err := r.Handle()
	if err != nil {
		panic(err)
	}
	return h
}
