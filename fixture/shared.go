package fixture

import (
	"errors"
	"sync"
)

// ErrNotAcquired is returned when Release is called on a Shared fixture with
// no outstanding acquisitions.
var ErrNotAcquired = errors.New("shared fixture released without acquire")

// Shared is a fixture scoped to a class-like grouping instead of a single
// test case: setUp runs once on the first acquisition and tearDown once
// after the last release. Sharing reintroduces cross-test coupling, so it
// is strictly opt-in; per-case scopes stay the default.
type Shared struct {
	setUp    func() error
	tearDown func() error

	mu       sync.Mutex
	started  bool
	setupErr error
	active   int
	retained int
}

func NewShared(setUp, tearDown func() error) *Shared {
	return &Shared{setUp: setUp, tearDown: tearDown}
}

// Retain tells the fixture how many acquisitions to expect beyond those
// currently outstanding. The runner retains once per unit bound to the
// fixture before the run starts, so that teardown cannot fire early when
// units finish before their siblings have started.
func (s *Shared) Retain(n int) {
	s.mu.Lock()
	s.retained += n
	s.mu.Unlock()
}

// Acquire runs setUp on first use. A setup fault is remembered and returned
// to every subsequent acquirer for the lifetime of the grouping.
func (s *Shared) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.started = true
		if s.setUp != nil {
			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = &Fault{Phase: "setup", Err: errPanic(r)}
					}
				}()
				if e := s.setUp(); e != nil {
					return &Fault{Phase: "setup", Err: e}
				}
				return nil
			}()
			s.setupErr = err
		}
	}
	s.active++
	return s.setupErr
}

// Forfeit gives up one retained acquisition that will never happen (the
// unit was skipped after retention was counted). If that was the last
// expected holder and the fixture is live, teardown runs now.
func (s *Shared) Forfeit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retained > 0 {
		s.retained--
	}
	if s.active > 0 || s.retained > 0 || !s.started {
		return nil
	}
	return s.teardownLocked()
}

// Release balances one Acquire. When the last expected holder releases,
// tearDown runs exactly once and its fault, if any, is returned to that
// last caller.
func (s *Shared) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == 0 {
		return ErrNotAcquired
	}
	s.active--
	if s.retained > 0 {
		s.retained--
	}
	if s.active > 0 || s.retained > 0 || !s.started {
		return nil
	}
	return s.teardownLocked()
}

func (s *Shared) teardownLocked() error {
	s.started = false
	if s.tearDown == nil || s.setupErr != nil {
		s.setupErr = nil
		return nil
	}
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &Fault{Phase: "teardown", Err: errPanic(r)}
			}
		}()
		if e := s.tearDown(); e != nil {
			return &Fault{Phase: "teardown", Err: e}
		}
		return nil
	}()
}
