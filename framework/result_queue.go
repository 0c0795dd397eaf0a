package framework

import (
	"sort"
	"sync"
)

// ResultSortingQueue re-emits test results in discovery order even when
// parallel workers finish them out of order. Results are keyed by a 1-based
// discovery index; an index arriving ahead of its predecessors is deferred
// until the gap fills, so reading from C always observes the input order.
type ResultSortingQueue struct {
	C         chan TestResult
	lastIndex int
	deferred  []deferredResult
	lock      sync.Mutex
	closeOnce sync.Once
}

type deferredResult struct {
	index  int
	result TestResult
}

func NewResultSortingQueue(channelSize int) *ResultSortingQueue {
	return &ResultSortingQueue{C: make(chan TestResult, channelSize)}
}

// Accept hands the queue the result for the given discovery index. Indexes
// must be unique and start at 1.
func (q *ResultSortingQueue) Accept(index int, result TestResult) {
	q.lock.Lock()
	if index > q.lastIndex+1 {
		q.deferred = append(q.deferred, deferredResult{index: index, result: result})
		sort.Slice(q.deferred, func(i, j int) bool { return q.deferred[i].index < q.deferred[j].index })
		q.lock.Unlock()
		return
	}
	q.lastIndex = index
	q.C <- result
	for len(q.deferred) > 0 {
		next := q.deferred[0]
		if next.index != q.lastIndex+1 {
			break
		}
		q.deferred = q.deferred[1:]
		q.lastIndex++
		q.C <- next.result
	}
	q.lock.Unlock()
}

// Deferred returns the results currently held back waiting for a gap to
// fill, in index order.
func (q *ResultSortingQueue) Deferred() []TestResult {
	q.lock.Lock()
	ret := make([]TestResult, 0, len(q.deferred))
	for _, d := range q.deferred {
		ret = append(ret, d.result)
	}
	q.lock.Unlock()
	return ret
}

func (q *ResultSortingQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.C)
	})
}
