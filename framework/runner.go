package framework

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/crucible-tests/crucible/assertion"
	"github.com/crucible-tests/crucible/fixture"
)

const defaultGracePeriod = 5 * time.Second

// RunOptions configures a run. The zero value means: sequential execution,
// no per-unit timeout, no filter, no progress output.
type RunOptions struct {
	// Concurrency is the maximum number of parallel workers. Values below
	// 1 degrade to fully sequential execution.
	Concurrency int

	// Timeout is the default per-unit deadline; 0 disables it. A unit may
	// override it through its source's TimeoutMS.
	Timeout time.Duration

	// GracePeriod bounds the best-effort teardown attempt after a unit
	// times out, so an abandoned fixture cannot wedge a worker forever.
	GracePeriod time.Duration

	Filter     Filter
	TestLogger TestLogger
}

type Runner struct {
	opts RunOptions
}

func NewRunner(opts RunOptions) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = defaultGracePeriod
	}
	if opts.TestLogger == nil {
		opts.TestLogger = nullTestLogger{}
	}
	return &Runner{opts: opts}
}

// Run executes the units and returns one result per unit, in discovery
// order regardless of parallelism. All faults are caught at the unit
// boundary; a failing unit never aborts the run. The context carries the
// global deadline: units not yet started when it expires are reported as
// skipped, units already running are failed with a timeout fault.
func (r *Runner) Run(ctx context.Context, units []*TestUnit) Results {
	start := time.Now()

	included := make([]bool, len(units))
	sharedCounts := make(map[*fixture.Shared]int)
	for i, u := range units {
		included[i] = r.opts.Filter == nil || r.opts.Filter(u)
		if included[i] && u.shared != nil {
			sharedCounts[u.shared]++
		}
	}
	for s, n := range sharedCounts {
		s.Retain(n)
	}

	type job struct {
		index    int
		unit     *TestUnit
		included bool
	}

	queue := NewResultSortingQueue(len(units))
	jobs := make(chan job)
	var wg sync.WaitGroup
	for w := 0; w < r.opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				queue.Accept(j.index, r.execute(ctx, j.unit, j.included))
			}
		}()
	}
	go func() {
		for i, u := range units {
			jobs <- job{index: i + 1, unit: u, included: included[i]}
		}
		close(jobs)
	}()

	var results Results
	for range units {
		results.Tests = append(results.Tests, <-queue.C)
	}
	wg.Wait()
	queue.Close()
	results.Elapsed = time.Since(start)
	return results
}

func (r *Runner) execute(ctx context.Context, u *TestUnit, included bool) TestResult {
	name := u.Name()
	log := r.opts.TestLogger

	if !included {
		res := TestResult{Unit: u, Skipped: true, SkipReason: "excluded by filter parameters"}
		log.TestSkipped(name, res.SkipReason)
		return res
	}

	log.TestStarted(name)
	if ctx.Err() != nil {
		if u.shared != nil {
			u.shared.Forfeit()
		}
		res := TestResult{Unit: u, Skipped: true, SkipReason: "run deadline exceeded"}
		log.TestSkipped(name, res.SkipReason)
		return res
	}

	u.status = StatusRunning
	started := time.Now()
	debugLog := &CapturingLogger{}
	tc := assertion.NewContext(name, debugLog)

	var res TestResult
	if u.shared != nil {
		if err := u.shared.Acquire(); err != nil {
			res = TestResult{Unit: u, Status: StatusFailed, Fault: err}
		} else {
			res = r.executeScoped(ctx, u, tc)
		}
		if err := u.shared.Release(); err != nil && !errors.Is(err, fixture.ErrNotAcquired) {
			res.Status = StatusFailed
			if res.TeardownFault == nil {
				res.TeardownFault = err
			} else {
				res.TeardownFault = fmt.Errorf("%s; also: %w", res.TeardownFault, err)
			}
		}
	} else {
		res = r.executeScoped(ctx, u, tc)
	}

	res.Elapsed = time.Since(started)
	if !res.Skipped {
		u.status = res.Status
	}

	for _, e := range res.Errors() {
		log.TestError(name, e)
	}
	if res.Skipped {
		log.TestSkipped(name, res.SkipReason)
	} else {
		log.TestFinished(res, debugLog.Output())
	}
	return res
}

func (r *Runner) executeScoped(ctx context.Context, u *TestUnit, tc *assertion.Context) TestResult {
	scope := fixture.NewScope(u.setUp, u.tearDown)

	timeout := r.opts.Timeout
	if u.timeoutMS.IsDefined() {
		timeout = time.Duration(u.timeoutMS.IntValue()) * time.Millisecond
	}

	done := make(chan fixture.Outcome, 1)
	go func() {
		done <- scope.Run(func() { u.body(tc) })
	}()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case out := <-done:
		return r.interpret(u, tc, out)
	case <-timer:
		return r.timedOut(u, scope, fmt.Errorf("%w after %s", ErrTimeout, timeout))
	case <-ctx.Done():
		return r.timedOut(u, scope, fmt.Errorf("%w: %s", ErrTimeout, ctx.Err()))
	}
}

// timedOut marks a unit failed with a timeout fault and still attempts its
// teardown, bounded by the grace period, to avoid leaking resources held by
// the abandoned body.
func (r *Runner) timedOut(u *TestUnit, scope *fixture.Scope, fault error) TestResult {
	td := make(chan error, 1)
	go func() {
		td <- scope.TearDown()
	}()
	var teardownFault error
	select {
	case teardownFault = <-td:
	case <-time.After(r.opts.GracePeriod):
		teardownFault = fmt.Errorf("teardown abandoned after %s grace period", r.opts.GracePeriod)
	}
	return TestResult{
		Unit:          u,
		Status:        StatusFailed,
		Fault:         fault,
		TeardownFault: teardownFault,
	}
}

func (r *Runner) interpret(u *TestUnit, tc *assertion.Context, out fixture.Outcome) TestResult {
	res := TestResult{
		Unit:          u,
		Failures:      tc.Failures(),
		TeardownFault: out.TeardownFault,
	}

	switch {
	case out.SetupFault != nil:
		res.Status = StatusFailed
		res.Fault = out.SetupFault
	case out.BodyPanic != nil:
		if other, ok := out.BodyPanic.(*assertion.Context); ok && other == tc {
			if tc.Skipped() {
				res.Skipped = true
				res.SkipReason = tc.SkipReason()
			} else {
				res.Status = StatusFailed
				if len(res.Failures) == 0 {
					res.Failures = append(res.Failures, assertion.Failure{Message: "test failed with no failure message"})
				}
			}
		} else {
			res.Status = StatusFailed
			res.Fault = &UncaughtFault{Value: out.BodyPanic, Stack: out.BodyStack}
		}
	case tc.Failed():
		res.Status = StatusFailed
	case tc.Checks() == 0:
		res.Status = StatusInconclusive
	default:
		res.Status = StatusPassed
	}

	// A teardown fault alone is still a failure; it must never be
	// silently dropped just because the body was fine.
	if res.TeardownFault != nil && !res.Skipped {
		res.Status = StatusFailed
	}
	return res
}
