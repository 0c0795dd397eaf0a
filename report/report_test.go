package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucible-tests/crucible/assertion"
	"github.com/crucible-tests/crucible/framework"
)

func sampleRun(t *testing.T) (framework.Results, framework.Summary) {
	t.Helper()
	units, err := framework.Discover([]framework.Source{
		{Group: "Store", Case: "get", Body: func(*assertion.Context) {}},
		{Group: "Store", Case: "put", Body: func(*assertion.Context) {}},
	})
	require.NoError(t, err)

	results := framework.Results{
		Tests: []framework.TestResult{
			{Unit: units[0], Status: framework.StatusPassed, Elapsed: 12 * time.Millisecond},
			{
				Unit:     units[1],
				Status:   framework.StatusFailed,
				Elapsed:  5 * time.Millisecond,
				Failures: []assertion.Failure{{Message: "expected 1, got 2"}},
				Fault:    errors.New("collaborator exploded"),
			},
		},
		Elapsed: 20 * time.Millisecond,
	}
	return results, framework.Summarize(results)
}

func TestReportDocumentShape(t *testing.T) {
	results, summary := sampleRun(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, results, summary))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.NotEmpty(t, doc["runId"])
	assert.Equal(t, float64(1), doc["passed"])
	assert.Equal(t, float64(1), doc["failed"])
	assert.Equal(t, false, doc["ok"])
	assert.Equal(t, float64(20), doc["elapsedMs"])

	tests, ok := doc["tests"].([]interface{})
	require.True(t, ok)
	require.Len(t, tests, 2)

	first := tests[0].(map[string]interface{})
	assert.Equal(t, "Store/get", first["name"])
	assert.Equal(t, "passed", first["status"])
	_, hasErrors := first["errors"]
	assert.False(t, hasErrors, "passing units carry no error list")

	second := tests[1].(map[string]interface{})
	assert.Equal(t, "failed", second["status"])
	errList := second["errors"].([]interface{})
	require.Len(t, errList, 2)
	assert.Equal(t, "expected 1, got 2", errList[0])
	assert.Equal(t, "collaborator exploded", errList[1])
}

func TestReportMarksSkippedUnits(t *testing.T) {
	units, err := framework.Discover([]framework.Source{
		{Group: "G", Case: "c", Body: func(*assertion.Context) {}},
	})
	require.NoError(t, err)
	results := framework.Results{Tests: []framework.TestResult{
		{Unit: units[0], Skipped: true, SkipReason: "excluded by filter parameters"},
	}}

	doc := Build(results, framework.Summarize(results))
	entry := doc.GetByKey("tests").GetByIndex(0)
	assert.Equal(t, "skipped", entry.GetByKey("status").StringValue())
	assert.Equal(t, "excluded by filter parameters", entry.GetByKey("skipReason").StringValue())
}
