// Package mock creates substitute implementations of capability interfaces.
// A mock never forwards to a real implementation: every invocation is
// resolved against configured expectations, in registration order, and
// recorded in an append-only log that verification reads back.
package mock

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUnconfiguredInvocation is the fault raised by a strict mock when an
// invocation matches no expectation.
var ErrUnconfiguredInvocation = errors.New("unconfigured invocation")

// Member describes one callable member of a capability: its name, how many
// arguments it takes, and an optional value that lenient mocks return when
// no expectation matches. Capability specs carry no richer type
// information, so without a declared default the lenient fallback is nil.
type Member struct {
	Name    string
	Arity   int
	Default interface{}
}

// Capability is an abstract interface description supplied by calling code.
// The engine does not derive these from concrete implementation types.
type Capability struct {
	Name    string
	members map[string]Member
}

func NewCapability(name string, members ...Member) Capability {
	c := Capability{Name: name, members: make(map[string]Member, len(members))}
	for _, m := range members {
		c.members[m.Name] = m
	}
	return c
}

// Invocation is one logged call: member, arguments, and when it happened.
// Log append order equals call order.
type Invocation struct {
	Member string
	Args   []interface{}
	Time   time.Time
}

// Expectation is a configured response rule: a member, one matcher per
// argument position, and either a return value or a fault to raise. The
// call counter is a convenience cache; verification never trusts it and
// recomputes counts from the invocation log.
type Expectation struct {
	owner   *Mock
	member  string
	args    []interface{}
	returns interface{}
	raises  error
	calls   int
}

// Returns configures the value produced when this expectation matches.
func (e *Expectation) Returns(value interface{}) *Expectation {
	e.returns = value
	return e
}

// Raises configures a fault to raise instead of returning.
func (e *Expectation) Raises(fault error) *Expectation {
	e.raises = fault
	return e
}

// Calls reports the cached invocation counter. The log is the source of
// truth; this exists for cheap introspection only.
func (e *Expectation) Calls() int {
	e.owner.lock()
	defer e.owner.unlock()
	return e.calls
}

// Mock is a substitute implementation of one capability. A mock belongs to
// a single test unit unless it is shared through a group fixture, in which
// case it must be created with WithSynchronizedLog.
type Mock struct {
	capability   Capability
	strict       bool
	synchronized bool

	mu           sync.Mutex
	expectations []*Expectation
	log          []Invocation
}

// Option configures a Mock at creation time.
type Option func(*Mock)

// Strict makes unmatched invocations raise ErrUnconfiguredInvocation.
// This is the default.
func Strict() Option {
	return func(m *Mock) { m.strict = true }
}

// Lenient makes unmatched invocations return the member's declared default
// (nil when none is declared) and log the call without failing anything.
func Lenient() Option {
	return func(m *Mock) { m.strict = false }
}

// WithSynchronizedLog guards the invocation log with a single writer lock,
// making the mock safe to share across parallel test workers. Without it,
// concurrent invocation of one mock is undefined.
func WithSynchronizedLog() Option {
	return func(m *Mock) { m.synchronized = true }
}

func New(capability Capability, opts ...Option) *Mock {
	m := &Mock{capability: capability, strict: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mock) lock() {
	if m.synchronized {
		m.mu.Lock()
	}
}

func (m *Mock) unlock() {
	if m.synchronized {
		m.mu.Unlock()
	}
}

// Setup registers an expectation for a member with one matcher per argument
// position. Plain values are exact matchers; Any() is the wildcard.
// Expectations resolve in registration order and the first match wins, so a
// later, narrower matcher never overrides an earlier broader one. Setup
// panics on members or arities the capability does not declare; that is a
// defect in the test, not a modeled failure.
func (m *Mock) Setup(member string, args ...interface{}) *Expectation {
	decl, ok := m.capability.members[member]
	if !ok {
		panic(fmt.Sprintf("mock %s: setup of undeclared member %q", m.capability.Name, member))
	}
	if len(args) != decl.Arity {
		panic(fmt.Sprintf("mock %s: setup of %q with %d matchers, member takes %d arguments",
			m.capability.Name, member, len(args), decl.Arity))
	}
	e := &Expectation{owner: m, member: member, args: args}
	m.lock()
	m.expectations = append(m.expectations, e)
	m.unlock()
	return e
}

// Invoke calls a member of the mocked capability. The invocation is always
// logged, then resolved against the expectations. A matching expectation
// either returns its configured value or raises its configured fault. With
// no match, a strict mock raises ErrUnconfiguredInvocation and a lenient
// mock returns the member's default.
func (m *Mock) Invoke(member string, args ...interface{}) interface{} {
	decl, ok := m.capability.members[member]
	if !ok {
		panic(fmt.Sprintf("mock %s: invocation of undeclared member %q", m.capability.Name, member))
	}
	if len(args) != decl.Arity {
		panic(fmt.Sprintf("mock %s: %q invoked with %d arguments, member takes %d",
			m.capability.Name, member, len(args), decl.Arity))
	}

	m.lock()
	m.log = append(m.log, Invocation{Member: member, Args: args, Time: time.Now()})
	var matched *Expectation
	for _, e := range m.expectations {
		if e.member == member && argsMatch(e.args, args) {
			e.calls++
			matched = e
			break
		}
	}
	m.unlock()

	if matched != nil {
		if matched.raises != nil {
			panic(matched.raises)
		}
		return matched.returns
	}
	if m.strict {
		panic(fmt.Errorf("%w: %s.%s(%s)", ErrUnconfiguredInvocation,
			m.capability.Name, member, describeArgs(args)))
	}
	return decl.Default
}

// Invocations returns a copy of the log in call order.
func (m *Mock) Invocations() []Invocation {
	m.lock()
	defer m.unlock()
	return append([]Invocation(nil), m.log...)
}

// CountMatching recomputes, from the log, how many invocations of member
// match the given argument matchers. A nil args slice matches any
// arguments for that member.
func (m *Mock) CountMatching(member string, args []interface{}) int {
	m.lock()
	defer m.unlock()
	n := 0
	for _, inv := range m.log {
		if inv.Member != member {
			continue
		}
		if args == nil || argsMatch(args, inv.Args) {
			n++
		}
	}
	return n
}
