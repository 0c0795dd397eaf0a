// Package report writes a structured run artifact for tooling to consume.
// The document format is the only contract; how it is rendered further
// downstream is out of the engine's hands.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/crucible-tests/crucible/framework"
)

// Build assembles the JSON document for one run: a unique run identifier,
// the aggregate counts, and one entry per unit in discovery order.
func Build(results framework.Results, summary framework.Summary) ldvalue.Value {
	tests := ldvalue.ArrayBuild()
	for _, t := range results.Tests {
		entry := ldvalue.ObjectBuild().
			Set("name", ldvalue.String(t.Unit.Name())).
			Set("status", ldvalue.String(statusString(t))).
			Set("elapsedMs", ldvalue.Int(int(t.Elapsed/time.Millisecond)))
		if len(t.Errors()) > 0 {
			errs := ldvalue.ArrayBuild()
			for _, e := range t.Errors() {
				errs.Add(ldvalue.String(e.Error()))
			}
			entry.Set("errors", errs.Build())
		}
		if t.SkipReason != "" {
			entry.Set("skipReason", ldvalue.String(t.SkipReason))
		}
		tests.Add(entry.Build())
	}

	return ldvalue.ObjectBuild().
		Set("runId", ldvalue.String(uuid.NewString())).
		Set("timestamp", ldvalue.String(time.Now().UTC().Format(time.RFC3339))).
		Set("passed", ldvalue.Int(summary.Passed)).
		Set("failed", ldvalue.Int(summary.Failed)).
		Set("inconclusive", ldvalue.Int(summary.Inconclusive)).
		Set("skipped", ldvalue.Int(summary.Skipped)).
		Set("elapsedMs", ldvalue.Int(int(summary.Elapsed/time.Millisecond))).
		Set("ok", ldvalue.Bool(summary.Failed == 0)).
		Set("tests", tests.Build()).
		Build()
}

func statusString(t framework.TestResult) string {
	if t.Skipped {
		return "skipped"
	}
	return t.Status.String()
}

// Write emits the document to dest.
func Write(dest io.Writer, results framework.Results, summary framework.Summary) error {
	if _, err := io.WriteString(dest, Build(results, summary).JSONString()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	_, err := io.WriteString(dest, "\n")
	return err
}

// WriteFile emits the document to a file path.
func WriteFile(path string, results framework.Results, summary framework.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()
	return Write(f, results, summary)
}
