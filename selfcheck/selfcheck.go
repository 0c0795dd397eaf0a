// Package selfcheck registers a small suite that exercises the engine
// end to end: assertions, fixtures, and mocks working against each other.
// Every unit here is expected to pass; the crucible binary runs this suite
// so that an installation can verify itself.
package selfcheck

import (
	"errors"
	"fmt"

	"github.com/crucible-tests/crucible/assertion"
	"github.com/crucible-tests/crucible/fixture"
	"github.com/crucible-tests/crucible/framework"
	"github.com/crucible-tests/crucible/mock"
)

var errFlaky = errors.New("flaky collaborator fault")

// Register adds the self-check units to the registry.
func Register(r *framework.Registry) error {
	for _, u := range Sources() {
		if err := r.Register(u); err != nil {
			return fmt.Errorf("registering self-check suite: %w", err)
		}
	}
	return nil
}

// Sources returns the suite as a resolved source list. Each call builds
// fresh fixture state, so a list is only good for one run.
func Sources() []framework.Source {
	var units []framework.Source
	units = append(units, assertionUnits()...)
	units = append(units, fixtureUnits()...)
	units = append(units, mockUnits()...)
	return units
}

func assertionUnits() []framework.Source {
	return []framework.Source{
		{
			Group: "Assertions",
			Case:  "structural equality",
			Body: func(t *assertion.Context) {
				type point struct{ X, Y int }
				t.Equal(point{1, 2}, point{1, 2})
				t.NotEqual(point{1, 2}, point{2, 1})
			},
		},
		{
			Group: "Assertions",
			Case:  "expected faults",
			Body: func(t *assertion.Context) {
				t.Throws(errFlaky, func() {
					panic(fmt.Errorf("wrapped: %w", errFlaky))
				})
			},
		},
	}
}

func fixtureUnits() []framework.Source {
	counter := 0
	sharedCount := 0
	shared := fixture.NewShared(
		func() error { sharedCount++; return nil },
		func() error { sharedCount--; return nil },
	)
	return []framework.Source{
		{
			Group: "Fixtures",
			Case:  "setup runs before body",
			SetUp: func() error {
				counter = 1
				return nil
			},
			TearDown: func() error {
				counter = 0
				return nil
			},
			Body: func(t *assertion.Context) {
				t.Equal(1, counter)
			},
		},
		{
			Group:  "Fixtures",
			Case:   "shared fixture set up once",
			Shared: shared,
			Body: func(t *assertion.Context) {
				t.Equal(1, sharedCount)
			},
		},
		{
			Group:  "Fixtures",
			Case:   "shared fixture still live for sibling",
			Shared: shared,
			Body: func(t *assertion.Context) {
				t.Equal(1, sharedCount)
			},
		},
	}
}

func mockUnits() []framework.Source {
	capability := mock.NewCapability("Store",
		mock.Member{Name: "Get", Arity: 1},
		mock.Member{Name: "Put", Arity: 2},
	)
	return []framework.Source{
		{
			Group: "Mocks",
			Case:  "configured member returns value",
			Body: func(t *assertion.Context) {
				m := mock.New(capability)
				m.Setup("Get", "answer").Returns(42)
				t.Equal(42, m.Invoke("Get", "answer"))
				m.Verify(t, "Get", nil, 1)
			},
		},
		{
			Group: "Mocks",
			Case:  "strict mock faults on unconfigured member",
			Body: func(t *assertion.Context) {
				m := mock.New(capability, mock.Strict())
				t.Throws(mock.ErrUnconfiguredInvocation, func() {
					m.Invoke("Put", "k", "v")
				})
			},
		},
		{
			Group: "Mocks",
			Case:  "lenient mock returns default",
			Body: func(t *assertion.Context) {
				m := mock.New(capability, mock.Lenient())
				t.Nil(m.Invoke("Get", "missing"))
				m.Verify(t, "Get", nil, 1)
			},
		},
	}
}
