// Package framework discovers, executes, and reports test units. It owns
// the per-unit state machine and the boundary at which every fault stops:
// nothing raised inside a unit may abort the run.
package framework

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/crucible-tests/crucible/assertion"
	"github.com/crucible-tests/crucible/fixture"
)

// Status is the execution state of a test unit.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusPassed
	StatusFailed
	// StatusInconclusive marks a unit that completed normally without
	// evaluating a single assertion. An assertion-free test proves
	// nothing, so it is flagged instead of silently passing.
	StatusInconclusive
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// TestUnit is one discoverable, independently executable test case. Its
// identity is fixed at discovery time; only the runner mutates its status
// during execution.
type TestUnit struct {
	group     string
	caseName  string
	body      func(*assertion.Context)
	setUp     func() error
	tearDown  func() error
	shared    *fixture.Shared
	timeoutMS ldvalue.OptionalInt

	status Status
}

// Name returns the fully qualified name, unique within a run.
func (u *TestUnit) Name() string {
	return u.group + "/" + u.caseName
}

func (u *TestUnit) Group() string { return u.group }

func (u *TestUnit) Case() string { return u.caseName }

func (u *TestUnit) Status() Status { return u.status }
