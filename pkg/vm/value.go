package vm

import (
	"fmt"
	"math"
	"strconv"
)

// cleanExponentialFormat removes leading zeros from exponent to match JS format
// e.g., "1e-07" -> "1e-7", "1e+25" -> "1e+25"
func cleanExponentialFormat(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 'e' || s[i] == 'E' {
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				sign := s[i+1]
				expStart := i + 2
				j := expStart
				for j < len(s) && s[j] == '0' {
					j++
				}
				// If all zeros or no digits after sign, keep one zero
				if j >= len(s) {
					return s[:i+2] + "0"
				}
				return s[:i+1] + string(sign) + s[j:]
			}
			break
		}
	}
	return s
}

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeSymbol
	TypeObject
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Symbol is a unique identity token. Two symbols are the same value only if
// they are the same *Symbol.
type Symbol struct {
	description    string
	hasDescription bool
}

// NewSymbol creates a fresh symbol with the given description.
func NewSymbol(description string) *Symbol {
	return &Symbol{description: description, hasDescription: true}
}

// NewAnonymousSymbol creates a fresh symbol without a description.
func NewAnonymousSymbol() *Symbol {
	return &Symbol{}
}

// Description returns the symbol description and whether one was given.
func (s *Symbol) Description() (string, bool) {
	return s.description, s.hasDescription
}

func (s *Symbol) String() string {
	return fmt.Sprintf("Symbol(%s)", s.description)
}

// Value is an immutable tagged union over the language's value types.
// Objects are carried as heap handles; the referenced object is mutable.
type Value struct {
	typ ValueType
	num float64 // number payload, 1/0 for booleans
	str string
	sym *Symbol
	ref ObjectRef
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, num: 1}
	False     = Value{typ: TypeBoolean, num: 0}
	NaN       = Value{typ: TypeNumber, num: math.NaN()}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, num: value}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, str: value}
}

func SymbolValue(sym *Symbol) Value {
	if sym == nil {
		panic("nil symbol")
	}
	return Value{typ: TypeSymbol, sym: sym}
}

func ObjectValue(ref ObjectRef) Value {
	if ref == NullRef {
		return Null
	}
	return Value{typ: TypeObject, ref: ref}
}

func (v Value) Type() ValueType {
	return v.typ
}

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsSymbol() bool    { return v.typ == TypeSymbol }
func (v Value) IsObject() bool    { return v.typ == TypeObject }

// IsNullish reports whether the value is undefined or null.
func (v Value) IsNullish() bool {
	return v.typ == TypeUndefined || v.typ == TypeNull
}

// IsPrimitive reports whether the value is anything but an object.
func (v Value) IsPrimitive() bool {
	return v.typ != TypeObject
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.num == 1
}

func (v Value) AsNumber() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return v.num
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return v.str
}

func (v Value) AsSymbol() *Symbol {
	if v.typ != TypeSymbol {
		panic("value is not a symbol")
	}
	return v.sym
}

func (v Value) AsObject() ObjectRef {
	if v.typ != TypeObject {
		panic("value is not an object")
	}
	return v.ref
}

// TypeName returns the typeof-style name. Callable objects report "object" here;
// Realm.TypeOf distinguishes functions because it can see the heap.
func (v Value) TypeName() string {
	return v.typ.String()
}

// numberToString implements Number::toString for radix 10.
func numberToString(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	// -0 prints as 0
	if f == 0 {
		return "0"
	}
	absF := math.Abs(f)
	if absF < 1e-6 || absF >= 1e21 {
		return cleanExponentialFormat(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// primitiveString converts a non-symbol primitive to its string form.
// It reports false for symbols and objects, which need the realm.
func primitiveString(v Value) (string, bool) {
	switch v.typ {
	case TypeUndefined:
		return "undefined", true
	case TypeNull:
		return "null", true
	case TypeBoolean:
		if v.AsBoolean() {
			return "true", true
		}
		return "false", true
	case TypeNumber:
		return numberToString(v.num), true
	case TypeString:
		return v.str, true
	default:
		return "", false
	}
}

// IsFalsey checks if the value is considered falsey according to ECMAScript rules.
func (v Value) IsFalsey() bool {
	switch v.typ {
	case TypeNull, TypeUndefined:
		return true
	case TypeBoolean:
		return !v.AsBoolean()
	case TypeNumber:
		return v.num == 0 || math.IsNaN(v.num)
	case TypeString:
		return v.str == ""
	default:
		return false
	}
}

// IsTruthy checks if the value is considered truthy (opposite of IsFalsey).
func (v Value) IsTruthy() bool {
	return !v.IsFalsey()
}
