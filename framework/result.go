package framework

import (
	"fmt"
	"time"

	"github.com/crucible-tests/crucible/assertion"
)

// TestResult is the record of one unit's execution. It is created once when
// the unit finishes and never mutated afterward.
type TestResult struct {
	Unit    *TestUnit
	Status  Status
	Elapsed time.Duration

	// Failures are the assertion failures in the order they occurred.
	Failures []assertion.Failure

	// Fault is the primary non-assertion fault, if any: a setup fault, an
	// uncaught fault from the body, or a timeout.
	Fault error

	// TeardownFault is preserved independently so a teardown fault can
	// never be discarded when a body fault also occurred.
	TeardownFault error

	Skipped    bool
	SkipReason string
}

// Errors flattens everything that went wrong, failures first, then the
// primary fault, then the teardown fault.
func (r TestResult) Errors() []error {
	var out []error
	for _, f := range r.Failures {
		out = append(out, f)
	}
	if r.Fault != nil {
		out = append(out, r.Fault)
	}
	if r.TeardownFault != nil {
		out = append(out, r.TeardownFault)
	}
	return out
}

// Results is the ordered outcome of a run: one entry per discovered unit,
// in discovery order, regardless of how execution was parallelized.
type Results struct {
	Tests   []TestResult
	Elapsed time.Duration
}

func (r Results) OK() bool {
	for _, t := range r.Tests {
		if t.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Summary is the aggregate view of a run. It is computed from the results
// on demand, never stored redundantly per unit.
type Summary struct {
	Passed       int
	Failed       int
	Inconclusive int
	Skipped      int
	Elapsed      time.Duration
	Failures     []TestResult
}

func Summarize(results Results) Summary {
	s := Summary{Elapsed: results.Elapsed}
	for _, t := range results.Tests {
		switch {
		case t.Skipped:
			s.Skipped++
		case t.Status == StatusPassed:
			s.Passed++
		case t.Status == StatusInconclusive:
			s.Inconclusive++
		case t.Status == StatusFailed:
			s.Failed++
			s.Failures = append(s.Failures, t)
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d passed, %d failed, %d inconclusive, %d skipped in %s",
		s.Passed, s.Failed, s.Inconclusive, s.Skipped, s.Elapsed.Round(time.Millisecond))
}
