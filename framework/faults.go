package framework

import (
	"errors"
	"fmt"
)

// ErrTimeout is the fault attached to a unit that exceeded its deadline.
// It is fatal to that unit only, never to the run.
var ErrTimeout = errors.New("test timed out")

// UncaughtFault records a propagating fault from a test body that was
// neither an assertion failure nor an expected fault. It is captured at the
// unit boundary and surfaced in the result.
type UncaughtFault struct {
	Value interface{}
	Stack string
}

func (u *UncaughtFault) Error() string {
	if u.Stack == "" {
		return fmt.Sprintf("unexpected fault in test: %+v", u.Value)
	}
	return fmt.Sprintf("unexpected fault in test: %+v\n%s", u.Value, u.Stack)
}

func (u *UncaughtFault) Unwrap() error {
	if err, ok := u.Value.(error); ok {
		return err
	}
	return nil
}
