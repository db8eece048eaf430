package ejsval

import "fmt"

// fnErr is a small formatting helper used throughout the value model so
// error text consistently carries the §7 "ClassName: message" shape even
// before the interpreter wraps it in a typed exception.
func fnErr(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
