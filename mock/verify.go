package mock

// TestingT is the slice of the test context that verification needs. Both
// *testing.T and the engine's own assertion context satisfy it.
type TestingT interface {
	Errorf(format string, args ...interface{})
	FailNow()
}

type checkRecorder interface {
	RecordCheck()
}

// Verify asserts that exactly expectedCount logged invocations of member
// match args (nil args matches all invocations of the member). The count is
// re-derived from the invocation log, never read from an expectation's
// cached counter, so calls that happened outside any configured matcher
// still count.
func (m *Mock) Verify(t TestingT, member string, args []interface{}, expectedCount int) {
	if cr, ok := t.(checkRecorder); ok {
		cr.RecordCheck()
	}
	actual := m.CountMatching(member, args)
	if actual == expectedCount {
		return
	}
	if args == nil {
		t.Errorf("mock %s: expected %d invocation(s) of %s, got %d",
			m.capability.Name, expectedCount, member, actual)
	} else {
		t.Errorf("mock %s: expected %d invocation(s) of %s(%s), got %d",
			m.capability.Name, expectedCount, member, describeArgs(args), actual)
	}
	t.FailNow()
}
