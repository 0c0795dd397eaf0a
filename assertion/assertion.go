// Package assertion implements the comparison predicates used inside test
// bodies. A failing assertion halts the rest of the test body but never the
// overall run; the runner recovers the signal at the unit boundary.
package assertion

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"

	"github.com/google/go-cmp/cmp"
)

// ErrAssertionFailed is the fault kind for any assertion that did not hold.
var ErrAssertionFailed = errors.New("assertion failed")

// Failure describes one assertion that did not hold. Failures are immutable
// once created and are attached to the unit's result in the order they
// occurred.
type Failure struct {
	Message  string
	Expected interface{}
	Actual   interface{}
	File     string
	Line     int
}

func (f Failure) Error() string {
	if f.File == "" {
		return f.Message
	}
	return fmt.Sprintf("%s (at %s:%d)", f.Message, f.File, f.Line)
}

// Is makes every Failure match ErrAssertionFailed under errors.Is, so
// callers can classify a fault without knowing the concrete type.
func (f Failure) Is(target error) bool {
	return target == ErrAssertionFailed
}

// Logger is the minimal sink for per-test debug output. The runner's
// capturing logger satisfies it.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

// Context is the execution context handed to a test body, used similarly to
// *testing.T. It implements Errorf/FailNow so standard assertion helpers can
// drive it. The first failing assertion panics with the context itself;
// callers outside the runner must not recover that value.
type Context struct {
	name       string
	debug      Logger
	failed     bool
	skipped    bool
	skipReason string
	checks     int
	failures   []Failure
}

func NewContext(name string, debug Logger) *Context {
	if debug == nil {
		debug = nullLogger{}
	}
	return &Context{name: name, debug: debug}
}

// Name returns the fully qualified name of the unit this context belongs to.
func (c *Context) Name() string { return c.name }

// Checks reports how many assertions were evaluated. A test body that
// finishes with zero checks proves nothing and is reported Inconclusive.
func (c *Context) Checks() int { return c.checks }

func (c *Context) Failed() bool { return c.failed }

func (c *Context) Skipped() bool { return c.skipped }

func (c *Context) SkipReason() string { return c.skipReason }

// Failures returns the recorded failures in the order they occurred.
func (c *Context) Failures() []Failure {
	return append([]Failure(nil), c.failures...)
}

// RecordCheck counts an externally evaluated assertion (for example a mock
// verification) toward this context's assertion count.
func (c *Context) RecordCheck() { c.checks++ }

// Errorf records a failure without halting the test body. Halting is done
// separately by FailNow, which lets this double as the error half of the
// testify TestingT contract.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	c.failures = append(c.failures, Failure{Message: fmt.Sprintf(format, args...)})
}

func (c *Context) FailNow() {
	c.failed = true
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug writes a message to the unit's captured debug log.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debug.Printf(message, args...)
}

func (c *Context) fail(f Failure) {
	if f.File == "" {
		// two frames up: fail -> assertion method -> test body
		if _, file, line, ok := runtime.Caller(2); ok {
			f.File, f.Line = file, line
		}
	}
	c.failed = true
	c.failures = append(c.failures, f)
	panic(c)
}

// Equal asserts that actual equals expected. Comparison is structural for
// composite values and value-based for primitives; values of incompatible
// types fail rather than coerce.
func (c *Context) Equal(expected, actual interface{}, msgAndArgs ...interface{}) {
	c.checks++
	ok, detail := equalValues(expected, actual)
	if ok {
		return
	}
	c.fail(Failure{
		Message:  withPrefix(msgAndArgs, detail),
		Expected: expected,
		Actual:   actual,
	})
}

func (c *Context) NotEqual(expected, actual interface{}, msgAndArgs ...interface{}) {
	c.checks++
	if ok, _ := equalValues(expected, actual); !ok {
		return
	}
	c.fail(Failure{
		Message:  withPrefix(msgAndArgs, fmt.Sprintf("expected value to differ from %v", expected)),
		Expected: expected,
		Actual:   actual,
	})
}

func (c *Context) True(predicate bool, msgAndArgs ...interface{}) {
	c.checks++
	if predicate {
		return
	}
	c.fail(Failure{
		Message:  withPrefix(msgAndArgs, "expected condition to be true"),
		Expected: true,
		Actual:   false,
	})
}

func (c *Context) Nil(value interface{}, msgAndArgs ...interface{}) {
	c.checks++
	if isNil(value) {
		return
	}
	c.fail(Failure{
		Message:  withPrefix(msgAndArgs, fmt.Sprintf("expected nil, got %v", value)),
		Expected: nil,
		Actual:   value,
	})
}

// Throws asserts that fn raises a fault of exactly the given kind. Any other
// fault, or no fault at all, is recorded as a failure with a message that
// says which of the two happened.
func (c *Context) Throws(kind error, fn func(), msgAndArgs ...interface{}) {
	c.checks++
	raised := c.capture(fn)
	switch {
	case raised == nil:
		c.fail(Failure{
			Message:  withPrefix(msgAndArgs, fmt.Sprintf("expected fault %q, no fault raised", kind)),
			Expected: kind,
		})
	case errors.Is(raised, kind):
		return
	default:
		c.fail(Failure{
			Message:  withPrefix(msgAndArgs, fmt.Sprintf("expected fault %q, got fault %q", kind, raised)),
			Expected: kind,
			Actual:   raised,
		})
	}
}

// capture runs fn and returns the fault it raised, if any. A failing
// assertion inside fn is not a fault; it is re-raised so the fail-fast
// behavior of the enclosing test body is preserved.
func (c *Context) capture(fn func()) (raised error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if other, ok := r.(*Context); ok {
			panic(other)
		}
		if err, ok := r.(error); ok {
			raised = err
			return
		}
		raised = fmt.Errorf("panic: %v", r)
	}()
	fn()
	return nil
}

func withPrefix(msgAndArgs []interface{}, detail string) string {
	if len(msgAndArgs) == 0 {
		return detail
	}
	format, ok := msgAndArgs[0].(string)
	if !ok {
		return fmt.Sprintf("%v: %s", msgAndArgs[0], detail)
	}
	return fmt.Sprintf(format, msgAndArgs[1:]...) + ": " + detail
}

func equalValues(expected, actual interface{}) (bool, string) {
	if expected == nil || actual == nil {
		if expected == nil && actual == nil {
			return true, ""
		}
		return false, fmt.Sprintf("expected %v, got %v", expected, actual)
	}
	et, at := reflect.TypeOf(expected), reflect.TypeOf(actual)
	if et != at {
		return false, fmt.Sprintf("mismatched types: expected %T, got %T", expected, actual)
	}
	if reflect.DeepEqual(expected, actual) {
		return true, ""
	}
	if d := renderDiff(expected, actual); d != "" {
		return false, fmt.Sprintf("values differ (-expected +actual):\n%s", d)
	}
	return false, fmt.Sprintf("expected %v, got %v", expected, actual)
}

// renderDiff produces a readable diff for composite values. go-cmp panics on
// types with unexported fields when no options are given, in which case the
// caller falls back to a plain expected/got message.
func renderDiff(expected, actual interface{}) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()
	return cmp.Diff(expected, actual)
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
