package mock

import (
	"fmt"
	"reflect"
)

// Matcher is the interface for flexible argument matching. It is duck-type
// compatible with gomega matchers: any type with Match and FailureMessage
// methods of these shapes works as an argument matcher.
type Matcher interface {
	Match(actual interface{}) (success bool, err error)
	FailureMessage(actual interface{}) string
}

// MatchValue checks actual against expected. If expected implements Matcher
// it is consulted; otherwise the comparison is a structural deep-equal.
func MatchValue(actual, expected interface{}) (bool, string) {
	if matcher, ok := expected.(Matcher); ok {
		success, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}
		if !success {
			return false, matcher.FailureMessage(actual)
		}
		return true, ""
	}
	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %v, got %v", expected, actual)
}

// Any returns the wildcard matcher for one argument position.
func Any() Matcher {
	return anyMatcher{}
}

type anyMatcher struct{}

func (anyMatcher) Match(interface{}) (bool, error) {
	return true, nil
}

func (anyMatcher) FailureMessage(interface{}) string {
	return ""
}

// argsMatch evaluates the matchers left to right; every position must match
// for the set to apply.
func argsMatch(expected, actual []interface{}) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i, e := range expected {
		if ok, _ := MatchValue(actual[i], e); !ok {
			return false
		}
	}
	return true
}

func describeArgs(args []interface{}) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		if _, ok := a.(Matcher); ok {
			out += "<matcher>"
		} else {
			out += fmt.Sprintf("%v", a)
		}
	}
	return out
}
