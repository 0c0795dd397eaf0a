// Package fixture manages the setUp/tearDown lifecycle around a test body.
// The one guarantee that everything else here exists to keep: tearDown runs
// exactly once per scope, on every exit path.
package fixture

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Fault is the error recorded when setUp or tearDown raises.
type Fault struct {
	Phase string // "setup" or "teardown"
	Err   error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fixture %s fault: %s", f.Phase, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

func errPanic(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

// Outcome reports what happened inside one fixture scope. Setup, body, and
// teardown faults are tracked independently so that none of them can mask
// another; the body fault is the primary one.
type Outcome struct {
	SetupFault    error
	BodyPanic     interface{}
	BodyStack     string
	TeardownFault error
}

// Scope pairs one setUp with one tearDown. The runner keeps a handle on the
// scope so it can still force teardown if the body is abandoned on timeout.
type Scope struct {
	setUp    func() error
	tearDown func() error

	once sync.Once
	mu   sync.Mutex
	tdf  error
}

func NewScope(setUp, tearDown func() error) *Scope {
	return &Scope{setUp: setUp, tearDown: tearDown}
}

// SetUp runs the setup callable. A panic inside setup is converted to a
// *Fault rather than propagating.
func (s *Scope) SetUp() (err error) {
	if s.setUp == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &Fault{Phase: "setup", Err: errPanic(r)}
		}
	}()
	if e := s.setUp(); e != nil {
		return &Fault{Phase: "setup", Err: e}
	}
	return nil
}

// TearDown runs the teardown callable at most once, no matter how many
// callers race to invoke it. Later calls return the fault recorded by the
// one execution, if any.
func (s *Scope) TearDown() error {
	s.once.Do(func() {
		if s.tearDown == nil {
			return
		}
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errPanic(r)
				}
			}()
			return s.tearDown()
		}()
		if err != nil {
			s.mu.Lock()
			s.tdf = &Fault{Phase: "teardown", Err: err}
			s.mu.Unlock()
		}
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tdf
}

// Run executes setUp, body, tearDown with the scoped-acquisition guarantees:
// setUp completes before body; tearDown runs exactly once afterward whether
// the body returned, failed an assertion, or panicked. If setUp faults the
// body never runs, but the paired tearDown is still invoked.
func (s *Scope) Run(body func()) Outcome {
	var out Outcome
	if err := s.SetUp(); err != nil {
		out.SetupFault = err
		out.TeardownFault = s.TearDown()
		return out
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				out.BodyPanic = r
				out.BodyStack = string(debug.Stack())
			}
		}()
		body()
	}()
	out.TeardownFault = s.TearDown()
	return out
}

// Run is the package-level convenience for a one-shot scope.
func Run(setUp, tearDown func() error, body func()) Outcome {
	return NewScope(setUp, tearDown).Run(body)
}
