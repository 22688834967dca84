// Package invariant provides contract assertions for the lexer action runtime.
//
// Assertions guard programming errors: a nil tokenizer handed to an executor, an
// action kind outside the closed set, a mode stack that lost its bottom entry.
// Grammar data is trusted input and is never checked here.
//
// All functions panic on violation - these are programming errors, not user errors.
package invariant

import (
	"fmt"
	"reflect"
	"runtime"
)

// Precondition checks an input contract at function entry.
// Panics with PRECONDITION VIOLATION if condition is false.
//
// Example:
//
//	func (t *Table) Action(i int) lexaction.Action {
//	    invariant.Precondition(i >= 0 && i < len(t.actions), "action index %d out of range", i)
//	    return t.actions[i]
//	}
func Precondition(condition bool, format string, args ...any) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before function return.
// Panics with POSTCONDITION VIOLATION if condition is false.
func Postcondition(condition bool, format string, args ...any) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks internal consistency during execution.
// Panics with INVARIANT VIOLATION if condition is false.
//
// Example:
//
//	invariant.Invariant(len(s.modes) > 0, "mode stack must never be empty")
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil, including typed nils such as (*Tokenizer)(nil).
func NotNil(value any, name string) {
	if isNilValue(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

func isNilValue(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// Unreachable panics unconditionally. Use it as the default branch of a switch over
// a closed set of values.
func Unreachable(format string, args ...any) {
	fail("INVARIANT", "unreachable: "+format, args...)
}

// fail panics with a formatted message including the caller's location.
func fail(kind, format string, args ...any) {
	// Skip runtime.Callers, fail and the exported wrapper
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]any{kind}, args...)...)

	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}

	panic(msg)
}
