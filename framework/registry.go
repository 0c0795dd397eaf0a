package framework

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/crucible-tests/crucible/assertion"
	"github.com/crucible-tests/crucible/fixture"
)

// Source is what the discovery collaborator supplies for one test case: an
// already-resolved callable with its grouping and case names and optional
// fixture bindings. The engine never parses source code to find tests.
type Source struct {
	Group string
	Case  string
	Body  func(*assertion.Context)

	// SetUp and TearDown are the per-case fixture pair.
	SetUp    func() error
	TearDown func() error

	// Shared, when set, binds the case to a group-scoped fixture. Opt-in
	// only; see the fixture package for the coupling caveats.
	Shared *fixture.Shared

	// TimeoutMS overrides the runner's default per-unit timeout.
	TimeoutMS ldvalue.OptionalInt
}

// Registry collects discovered sources into test units and enforces that
// fully qualified names are unique within the run.
type Registry struct {
	units []*TestUnit
	seen  map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]bool)}
}

func (r *Registry) Register(s Source) error {
	if s.Group == "" || s.Case == "" {
		return fmt.Errorf("test unit must have both a group and a case name, got %q/%q", s.Group, s.Case)
	}
	if s.Body == nil {
		return fmt.Errorf("test unit %s/%s has no body", s.Group, s.Case)
	}
	u := &TestUnit{
		group:     s.Group,
		caseName:  s.Case,
		body:      s.Body,
		setUp:     s.SetUp,
		tearDown:  s.TearDown,
		shared:    s.Shared,
		timeoutMS: s.TimeoutMS,
	}
	if r.seen[u.Name()] {
		return fmt.Errorf("duplicate test unit name %q", u.Name())
	}
	r.seen[u.Name()] = true
	r.units = append(r.units, u)
	return nil
}

// MustRegister is Register for static suite definitions, where a bad
// registration is a defect in the suite itself.
func (r *Registry) MustRegister(s Source) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Units returns the registered units in registration order, which is the
// discovery order that results are reported in.
func (r *Registry) Units() []*TestUnit {
	return append([]*TestUnit(nil), r.units...)
}

// Discover converts a resolved source list into test units in one step.
func Discover(sources []Source) ([]*TestUnit, error) {
	r := NewRegistry()
	for _, s := range sources {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r.Units(), nil
}
