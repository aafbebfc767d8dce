package errors

import (
	"fmt"
	"io"
)

// CoreError is the interface implemented by all errors raised by the object model.
type CoreError interface {
	error
	// Kind returns the error category, e.g. "Coercion" or "Call".
	Kind() string
	// Message returns the specific error message without the operation prefix.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// CoercionError is raised when an abstract conversion cannot produce a result,
// e.g. ToObject applied to undefined or null.
type CoercionError struct {
	Op      string // abstract operation that failed, e.g. "ToObject"
	Operand string // type name of the offending value
	Msg     string
	Cause   error // Underlying cause, if any
}

func (e *CoercionError) Error() string {
	if e.Operand == "" {
		return fmt.Sprintf("Coercion Error in %s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("Coercion Error in %s (%s): %s", e.Op, e.Operand, e.Msg)
}
func (e *CoercionError) Kind() string    { return "Coercion" }
func (e *CoercionError) Message() string { return e.Msg }
func (e *CoercionError) Unwrap() error   { return e.Cause }
func (e *CoercionError) CausedBy(cause error) *CoercionError {
	e.Cause = cause
	return e
}

// NewCoercionError builds a CoercionError for op applied to a value of type operand.
func NewCoercionError(op, operand, format string, args ...any) *CoercionError {
	return &CoercionError{Op: op, Operand: operand, Msg: fmt.Sprintf(format, args...)}
}

// CallError is raised when a value that is not callable is invoked.
type CallError struct {
	Callee string // property name or description of the callee
	Msg    string
	Cause  error
}

func (e *CallError) Error() string {
	if e.Callee == "" {
		return fmt.Sprintf("Call Error: %s", e.Msg)
	}
	return fmt.Sprintf("Call Error in %s: %s", e.Callee, e.Msg)
}
func (e *CallError) Kind() string    { return "Call" }
func (e *CallError) Message() string { return e.Msg }
func (e *CallError) Unwrap() error   { return e.Cause }
func (e *CallError) CausedBy(cause error) *CallError {
	e.Cause = cause
	return e
}

// NewCallError builds a CallError for the named callee.
func NewCallError(callee, format string, args ...any) *CallError {
	return &CallError{Callee: callee, Msg: fmt.Sprintf(format, args...)}
}

// ValueError is raised when an argument has the right type but an unusable
// value: a malformed pattern, an invalid time value, or a refused prototype or
// property change.
type ValueError struct {
	Op    string
	Msg   string
	Cause error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("Value Error in %s: %s", e.Op, e.Msg)
}
func (e *ValueError) Kind() string    { return "Value" }
func (e *ValueError) Message() string { return e.Msg }
func (e *ValueError) Unwrap() error   { return e.Cause }
func (e *ValueError) CausedBy(cause error) *ValueError {
	e.Cause = cause
	return e
}

// NewValueError builds a ValueError for op.
func NewValueError(op, format string, args ...any) *ValueError {
	return &ValueError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// --- Error Reporting ---

// DisplayErrors writes a list of errors in a user-friendly format, one per line.
func DisplayErrors(w io.Writer, errs []CoreError) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		fmt.Fprintf(w, "%s Error: %s\n", err.Kind(), err.Message())
		if cause := err.Unwrap(); cause != nil {
			fmt.Fprintf(w, "  caused by: %v\n", cause)
		}
	}
}
