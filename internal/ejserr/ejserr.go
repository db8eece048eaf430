// Package ejserr implements the exception taxonomy every runtime error
// and every script-level throw target maps onto (§7).
package ejserr

import "fmt"

// Class names an exception category. Each one corresponds to a built-in
// Error subtype the class library would define (Array/String/etc. are
// out of scope; only the taxonomy itself is this package's concern).
type Class string

const (
	ArgError        Class = "ArgError"
	ArithmeticError Class = "ArithmeticError"
	AssertError     Class = "AssertError"
	InstructionError Class = "InstructionError"
	IOError         Class = "IOError"
	InternalError   Class = "InternalError"
	MemoryError     Class = "MemoryError"
	OutOfBoundsError Class = "OutOfBoundsError"
	ReferenceError  Class = "ReferenceError"
	ResourceError   Class = "ResourceError"
	SecurityError   Class = "SecurityError"
	StateError      Class = "StateError"
	SyntaxError     Class = "SyntaxError"
	TypeError       Class = "TypeError"
	URIError        Class = "URIError"
)

// StopIteration is the sentinel "exception" a for..in/for each loop's
// iterator throws to signal exhaustion (§4.6, §8 scenario 4). The VM's
// handler search gives HandlerIteration rows no special treatment: a
// StopIteration is matched by catch rows like any other error.
var StopIteration = &Error{Class: "StopIteration", Message: "no more elements"}

// Error is the Go-level representation of a raised exception: enough to
// format a "Class: message" string (the convention every ejsval.fnErr
// call already follows) and to be matched against a handler table's
// CatchType by class name.
type Error struct {
	Class   Class
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Class)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(class Class, format string, args ...interface{}) *Error {
	return &Error{Class: class, Message: fmt.Sprintf(format, args...)}
}

func Wrap(class Class, cause error) *Error {
	return &Error{Class: class, Message: cause.Error(), Cause: cause}
}

// Is reports whether err is (or wraps) an *Error of the given class,
// supporting errors.Is-style matching from calling code.
func Is(err error, class Class) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Class == class {
				return true
			}
			err = e.Cause
			continue
		}
		break
	}
	return false
}
