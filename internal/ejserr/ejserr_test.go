package ejserr

import (
	"errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(TypeError, "expected %s, got %s", "Number", "String")
	want := "TypeError: expected Number, got String"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorWithoutMessage(t *testing.T) {
	err := &Error{Class: StateError}
	if got := err.Error(); got != "StateError" {
		t.Errorf("Error() = %q, want %q", got, "StateError")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("file not found")
	err := Wrap(IOError, cause)
	if !errors.Is(err, cause) {
		t.Error("Wrap: errors.Is does not find the wrapped cause")
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
}

func TestIsMatchesClassAcrossWrapping(t *testing.T) {
	inner := New(ArithmeticError, "divide by zero")
	outer := Wrap(InternalError, inner)

	if !Is(outer, InternalError) {
		t.Error("Is: outer class InternalError not matched")
	}
	if !Is(outer, ArithmeticError) {
		t.Error("Is: should walk Cause chain to find the wrapped ArithmeticError")
	}
	if Is(outer, TypeError) {
		t.Error("Is: matched a class that isn't anywhere in the chain")
	}
}

func TestStopIterationIsDistinctSentinel(t *testing.T) {
	if StopIteration.Class != "StopIteration" {
		t.Errorf("StopIteration.Class = %q, want %q", StopIteration.Class, "StopIteration")
	}
	if Is(StopIteration, TypeError) {
		t.Error("StopIteration should not match an unrelated class")
	}
}
