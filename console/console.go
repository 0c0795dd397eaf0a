// Package console renders run progress and results for a terminal. It is a
// reporting collaborator: it consumes results and summaries, the engine
// never depends on it.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/crucible-tests/crucible/framework"
)

// TestLogger prints one block per unit as the run progresses.
type TestLogger struct {
	Output               io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	mu sync.Mutex
}

func (c *TestLogger) TestStarted(name string) {
	c.mu.Lock()
	fmt.Fprintf(c.Output, "[%s]\n", name)
	c.mu.Unlock()
}

func (c *TestLogger) TestError(name string, err error) {
	c.mu.Lock()
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Output, "  %s\n", line)
	}
	c.mu.Unlock()
}

func (c *TestLogger) TestFinished(result framework.TestResult, debugOutput framework.CapturedOutput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := result.Unit.Name()
	switch result.Status {
	case framework.StatusFailed:
		fmt.Fprintf(c.Output, "  %s %s\n", color.RedString("FAILED:"), name)
	case framework.StatusInconclusive:
		fmt.Fprintf(c.Output, "  %s %s (no assertions executed)\n", color.YellowString("INCONCLUSIVE:"), name)
	}
	failed := result.Status == framework.StatusFailed
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Output, "    DEBUG ")
	}
}

func (c *TestLogger) TestSkipped(name string, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reason == "" {
		fmt.Fprintf(c.Output, "  %s %s\n", color.YellowString("SKIPPED:"), name)
	} else {
		fmt.Fprintf(c.Output, "  %s %s (%s)\n", color.YellowString("SKIPPED:"), name, reason)
	}
}

// PrintSummary writes the aggregate outcome, then the details of every
// failed unit so a failing run still reads as a complete report.
func PrintSummary(dest io.Writer, summary framework.Summary) {
	fmt.Fprintln(dest)
	if summary.Failed == 0 {
		fmt.Fprintln(dest, color.GreenString("✓ %s", summary.String()))
	} else {
		fmt.Fprintln(dest, color.RedString("✗ %s", summary.String()))
	}
	if summary.Inconclusive > 0 {
		fmt.Fprintln(dest, color.YellowString("  %d test(s) executed no assertions and prove nothing", summary.Inconclusive))
	}
	for _, f := range summary.Failures {
		fmt.Fprintf(dest, "\n%s\n", color.RedString("FAILED: %s", f.Unit.Name()))
		for _, err := range f.Errors() {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(dest, "  %s\n", line)
			}
		}
	}
}

// PrintFilterDescription explains up front which tests the filter flags
// will exclude from the run.
func PrintFilterDescription(dest io.Writer, filters framework.RegexFilters) {
	if !filters.IsDefined() {
		return
	}
	fmt.Fprintln(dest, "Some tests will be skipped based on the filter criteria for this test run:")
	if filters.MustMatch.IsDefined() {
		fmt.Fprintf(dest, "  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Fprintf(dest, "  skip any matching %s\n", filters.MustNotMatch)
	}
	fmt.Fprintln(dest)
}
