package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/crucible-tests/crucible/framework"
)

// Progress is a framework.TestLogger that renders a live bar with running
// pass/fail counts instead of per-test output.
type Progress struct {
	bar    *progressbar.ProgressBar
	mu     sync.Mutex
	passed int
	failed int
}

func NewProgress(total int, dest io.Writer) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(describeCounts(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(dest),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(dest, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Progress{bar: bar}
}

func describeCounts(passed, failed int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

func (p *Progress) TestStarted(name string) {}

func (p *Progress) TestError(name string, err error) {}

func (p *Progress) TestFinished(result framework.TestResult, debugOutput framework.CapturedOutput) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch result.Status {
	case framework.StatusFailed:
		p.failed++
	case framework.StatusPassed:
		p.passed++
	}
	p.bar.Describe(describeCounts(p.passed, p.failed))
	p.bar.Add(1)
}

func (p *Progress) TestSkipped(name string, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Add(1)
}

func (p *Progress) Finish() {
	p.bar.Finish()
}
