package vm

import "fmt"

type CompletionType uint8

const (
	CompletionNormal CompletionType = iota
	CompletionThrow
)

// Completion is the outcome of every fallible core operation: either a normal
// value or an abrupt throw carrying the thrown value. Callers propagate an
// abrupt completion by returning it unchanged.
type Completion struct {
	typ   CompletionType
	value Value
	cause error // Go-side origin of a throw raised by the core, if any
}

func NormalCompletion(v Value) Completion {
	return Completion{typ: CompletionNormal, value: v}
}

// ThrowCompletion builds an abrupt completion for a thrown value.
func ThrowCompletion(v Value) Completion {
	return Completion{typ: CompletionThrow, value: v}
}

func (c Completion) Type() CompletionType { return c.typ }
func (c Completion) IsAbrupt() bool       { return c.typ == CompletionThrow }
func (c Completion) IsNormal() bool       { return c.typ == CompletionNormal }

// Value returns the normal result, or the thrown value for abrupt completions.
func (c Completion) Value() Value { return c.value }

// Err converts an abrupt completion into a Go error for host code; normal
// completions yield nil.
func (c Completion) Err() error {
	if c.typ != CompletionThrow {
		return nil
	}
	return &ExceptionError{Exception: c.value, Cause: c.cause}
}

// ExceptionError carries a thrown value across the host boundary. It unwraps
// to the Go error that made the core throw, when there is one.
type ExceptionError struct {
	Exception Value
	Cause     error
}

func (e *ExceptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("uncaught exception: %v", e.Cause)
	}
	if s, ok := primitiveString(e.Exception); ok {
		return "uncaught exception: " + s
	}
	return fmt.Sprintf("uncaught exception: <%s>", e.Exception.TypeName())
}

func (e *ExceptionError) Unwrap() error { return e.Cause }
