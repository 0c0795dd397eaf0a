package mock

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("dependency down")

func storeCapability() Capability {
	return NewCapability("Store",
		Member{Name: "Get", Arity: 1},
		Member{Name: "Put", Arity: 2},
		Member{Name: "Count", Arity: 0, Default: 0},
	)
}

// recordingT captures verification failures instead of aborting the test.
type recordingT struct {
	errors  []string
	stopped bool
	checks  int
}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) FailNow()     { r.stopped = true }
func (r *recordingT) RecordCheck() { r.checks++ }

func TestConfiguredExpectationReturnsValue(t *testing.T) {
	m := New(storeCapability())
	e := m.Setup("Get", "k1").Returns("v1")

	assert.Equal(t, "v1", m.Invoke("Get", "k1"))
	assert.Equal(t, 1, e.Calls())
}

func TestExpectationRaisesFault(t *testing.T) {
	m := New(storeCapability())
	m.Setup("Get", "k1").Raises(errDown)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, errDown)
	}()
	m.Invoke("Get", "k1")
}

func TestStrictModeFaultsOnUnconfiguredInvocation(t *testing.T) {
	m := New(storeCapability(), Strict())
	m.Setup("Get", "known").Returns(1)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrUnconfiguredInvocation)
		assert.Contains(t, err.Error(), "Store.Put")
	}()
	m.Invoke("Put", "k", "v")
}

func TestLenientModeReturnsDefaultAndLogs(t *testing.T) {
	m := New(storeCapability(), Lenient())

	assert.Nil(t, m.Invoke("Get", "anything"))
	assert.Equal(t, 0, m.Invoke("Count"), "declared default is returned")

	// the unmatched calls are still in the log
	assert.Equal(t, 1, m.CountMatching("Get", nil))
	assert.Equal(t, 1, m.CountMatching("Count", nil))
}

func TestRegistrationOrderPrecedence(t *testing.T) {
	m := New(storeCapability())
	m.Setup("Get", Any()).Returns("broad")
	m.Setup("Get", "exact").Returns("narrow")

	// the earlier, broader matcher wins even for the exact value
	assert.Equal(t, "broad", m.Invoke("Get", "exact"))
}

func TestAllArgumentPositionsMustMatch(t *testing.T) {
	m := New(storeCapability(), Lenient())
	m.Setup("Put", "k1", Any()).Returns("stored")

	assert.Equal(t, "stored", m.Invoke("Put", "k1", "anything"))
	assert.Nil(t, m.Invoke("Put", "other", "anything"))
}

func TestVerifyRecountsFromLog(t *testing.T) {
	m := New(storeCapability(), Lenient())

	rt := &recordingT{}
	m.Verify(rt, "Get", nil, 0)
	assert.Empty(t, rt.errors, "zero calls verifies against zero")

	m.Invoke("Get", "a")
	rt = &recordingT{}
	m.Verify(rt, "Get", nil, 1)
	assert.Empty(t, rt.errors)

	// invocations outside any configured matcher still count, because
	// the count comes from the log, not from expectation counters
	m.Invoke("Get", "b")
	m.Invoke("Get", "c")
	rt = &recordingT{}
	m.Verify(rt, "Get", nil, 3)
	assert.Empty(t, rt.errors)
}

func TestVerifyMismatchIsDescriptive(t *testing.T) {
	m := New(storeCapability(), Lenient())
	m.Invoke("Get", "a")

	rt := &recordingT{}
	m.Verify(rt, "Get", nil, 2)
	require.Len(t, rt.errors, 1)
	assert.Contains(t, rt.errors[0], "expected 2 invocation(s) of Get, got 1")
	assert.True(t, rt.stopped)
	assert.Equal(t, 1, rt.checks, "verification counts as an assertion")
}

func TestVerifyWithArgumentMatchers(t *testing.T) {
	m := New(storeCapability(), Lenient())
	m.Invoke("Put", "k1", "v1")
	m.Invoke("Put", "k1", "v2")
	m.Invoke("Put", "k2", "v3")

	rt := &recordingT{}
	m.Verify(rt, "Put", []interface{}{"k1", Any()}, 2)
	assert.Empty(t, rt.errors)

	rt = &recordingT{}
	m.Verify(rt, "Put", []interface{}{"k2", Any()}, 1)
	assert.Empty(t, rt.errors)
}

func TestExpectationCounterStaysConsistentWithLog(t *testing.T) {
	m := New(storeCapability(), Lenient())
	e := m.Setup("Get", "hit").Returns(1)

	m.Invoke("Get", "hit")
	m.Invoke("Get", "miss")
	m.Invoke("Get", "hit")

	assert.Equal(t, 2, e.Calls())
	assert.Equal(t, 2, m.CountMatching("Get", []interface{}{"hit"}))
	assert.Equal(t, 3, m.CountMatching("Get", nil))
}

func TestInvocationLogPreservesCallOrder(t *testing.T) {
	m := New(storeCapability(), Lenient())
	m.Invoke("Get", "first")
	m.Invoke("Put", "k", "v")
	m.Invoke("Get", "last")

	log := m.Invocations()
	require.Len(t, log, 3)
	assert.Equal(t, "Get", log[0].Member)
	assert.Equal(t, []interface{}{"first"}, log[0].Args)
	assert.Equal(t, "Put", log[1].Member)
	assert.Equal(t, "Get", log[2].Member)
	assert.False(t, log[1].Time.Before(log[0].Time))
}

func TestSetupMisuseIsADefectNotAFault(t *testing.T) {
	m := New(storeCapability())
	assert.Panics(t, func() { m.Setup("Nope") })
	assert.Panics(t, func() { m.Setup("Get", "a", "b") })
	assert.Panics(t, func() { m.Invoke("Nope") })
	assert.Panics(t, func() { m.Invoke("Get") })
}

func TestSynchronizedLogUnderConcurrentInvocation(t *testing.T) {
	m := New(storeCapability(), Lenient(), WithSynchronizedLog())

	var wg sync.WaitGroup
	const workers = 8
	const perWorker = 50
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m.Invoke("Get", "k")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, m.CountMatching("Get", nil))
}
