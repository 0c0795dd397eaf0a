package framework

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeResult(index int) TestResult {
	return TestResult{SkipReason: fmt.Sprintf("result-%d", index)}
}

func acceptResults(q *ResultSortingQueue, indexes ...int) {
	for _, i := range indexes {
		q.Accept(i, fakeResult(i))
	}
}

func expectResults(t *testing.T, q *ResultSortingQueue, indexes ...int) {
	t.Helper()
	for _, i := range indexes {
		select {
		case r := <-q.C:
			assert.Equal(t, fakeResult(i).SkipReason, r.SkipReason)
		case <-time.After(time.Second):
			require.Fail(t, "timed out waiting for result from queue",
				"was waiting for result %d", i)
		}
	}
}

func expectDeferredResults(t *testing.T, q *ResultSortingQueue, indexes ...int) {
	t.Helper()
	var expected, actual []string
	for _, i := range indexes {
		expected = append(expected, fakeResult(i).SkipReason)
	}
	for _, d := range q.Deferred() {
		actual = append(actual, d.SkipReason)
	}
	assert.Equal(t, expected, actual, "did not see expected results in deferred list")
}

func TestResultQueueInOrder(t *testing.T) {
	q := NewResultSortingQueue(10)
	acceptResults(q, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	expectDeferredResults(t, q) // should be empty
	expectResults(t, q, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
}

func TestResultQueueOutOfOrder(t *testing.T) {
	q := NewResultSortingQueue(10)

	acceptResults(q, 3)
	expectDeferredResults(t, q, 3)

	acceptResults(q, 2)
	expectDeferredResults(t, q, 2, 3)

	acceptResults(q, 6)
	expectDeferredResults(t, q, 2, 3, 6)

	acceptResults(q, 1)
	expectResults(t, q, 1, 2, 3)
	expectDeferredResults(t, q, 6)

	acceptResults(q, 5)
	expectDeferredResults(t, q, 5, 6)

	acceptResults(q, 4)
	expectResults(t, q, 4, 5, 6)
	expectDeferredResults(t, q) // empty
}
