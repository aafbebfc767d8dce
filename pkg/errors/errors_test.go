package errors

import (
	"bytes"
	stderrors "errors"
	"io"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name    string
		err     CoreError
		kind    string
		message string
		text    string
	}{
		{
			name:    "coercion",
			err:     NewCoercionError("ToObject", "undefined", "Cannot convert %s to object", "undefined"),
			kind:    "Coercion",
			message: "Cannot convert undefined to object",
			text:    "Coercion Error in ToObject (undefined): Cannot convert undefined to object",
		},
		{
			name:    "coercion without operand",
			err:     NewCoercionError("ToPrimitive", "", "Cannot convert object to primitive value"),
			kind:    "Coercion",
			message: "Cannot convert object to primitive value",
			text:    "Coercion Error in ToPrimitive: Cannot convert object to primitive value",
		},
		{
			name:    "call with callee",
			err:     NewCallError("toString", "toString is not a function"),
			kind:    "Call",
			message: "toString is not a function",
			text:    "Call Error in toString: toString is not a function",
		},
		{
			name:    "call without callee",
			err:     NewCallError("", "%d is not a function", 5),
			kind:    "Call",
			message: "5 is not a function",
			text:    "Call Error: 5 is not a function",
		},
		{
			name:    "value",
			err:     NewValueError("Date.prototype.toISOString", "Invalid time value"),
			kind:    "Value",
			message: "Invalid time value",
			text:    "Value Error in Date.prototype.toISOString: Invalid time value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind() != tt.kind {
				t.Errorf("Kind() = %q, want %q", tt.err.Kind(), tt.kind)
			}
			if tt.err.Message() != tt.message {
				t.Errorf("Message() = %q, want %q", tt.err.Message(), tt.message)
			}
			if tt.err.Error() != tt.text {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.text)
			}
		})
	}
}

func TestErrorCauses(t *testing.T) {
	root := io.ErrUnexpectedEOF
	err := NewValueError("RegExp", "bad pattern").CausedBy(root)
	if !stderrors.Is(err, root) {
		t.Errorf("ValueError should unwrap to its cause")
	}

	var wrapped error = NewCoercionError("ToString", "symbol", "nope").CausedBy(err)
	var valueErr *ValueError
	if !stderrors.As(wrapped, &valueErr) || valueErr.Op != "RegExp" {
		t.Errorf("errors.As should find the nested ValueError")
	}
	if NewCallError("f", "x").Unwrap() != nil {
		t.Errorf("fresh errors have no cause")
	}
}

func TestDisplayErrors(t *testing.T) {
	var buf bytes.Buffer
	DisplayErrors(&buf, []CoreError{
		NewCoercionError("ToObject", "null", "Cannot convert null to object"),
		nil,
		NewValueError("RegExp", "invalid flag").CausedBy(io.EOF),
	})
	want := "Coercion Error: Cannot convert null to object\n" +
		"Value Error: invalid flag\n" +
		"  caused by: EOF\n"
	if buf.String() != want {
		t.Errorf("DisplayErrors wrote %q, want %q", buf.String(), want)
	}
}
