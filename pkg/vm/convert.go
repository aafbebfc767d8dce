package vm

import (
	"math"
	"strconv"
	"strings"

	"objcore/pkg/errors"
)

// PrimitiveHint is the preferred type passed to ToPrimitive.
type PrimitiveHint uint8

const (
	HintDefault PrimitiveHint = iota
	HintString
	HintNumber
)

func (h PrimitiveHint) String() string {
	switch h {
	case HintString:
		return "string"
	case HintNumber:
		return "number"
	default:
		return "default"
	}
}

// ToObject converts v to an object. Primitives are boxed into a fresh wrapper
// whose prototype is the realm's matching prototype; undefined and null throw.
func (r *Realm) ToObject(v Value) Completion {
	switch v.typ {
	case TypeObject:
		return NormalCompletion(v)
	case TypeUndefined, TypeNull:
		return r.ThrowTypeError(errors.NewCoercionError("ToObject", v.TypeName(),
			"Cannot convert %s to object", v.TypeName()))
	case TypeBoolean:
		return NormalCompletion(ObjectValue(r.NewBooleanObject(v.AsBoolean())))
	case TypeNumber:
		return NormalCompletion(ObjectValue(r.NewNumberObject(v.num)))
	case TypeString:
		return NormalCompletion(ObjectValue(r.NewStringObject(v.str)))
	case TypeSymbol:
		return NormalCompletion(ObjectValue(r.NewSymbolObject(v.sym)))
	}
	panic("unreachable value type in ToObject")
}

// ToPrimitive converts v to a primitive. Objects consult @@toPrimitive first
// and then fall back to toString/valueOf in hint order.
func (r *Realm) ToPrimitive(v Value, hint PrimitiveHint) Completion {
	if v.IsPrimitive() {
		return NormalCompletion(v)
	}
	obj := v.ref
	exotic := r.GetProperty(obj, SymbolKey(r.SymbolToPrimitive))
	if exotic.IsAbrupt() {
		return exotic
	}
	if !exotic.value.IsNullish() {
		if !r.IsCallable(exotic.value) {
			return r.ThrowTypeError(errors.NewCallError("[Symbol.toPrimitive]", "%s is not a function", r.Inspect(exotic.value)))
		}
		result := r.CallNative(exotic.value, v, []Value{NewString(hint.String())})
		if result.IsAbrupt() {
			return result
		}
		if result.value.IsObject() {
			return r.ThrowTypeError(errors.NewCoercionError("ToPrimitive", "object",
				"Cannot convert object to primitive value"))
		}
		return result
	}
	if hint == HintDefault {
		hint = HintNumber
	}
	return r.ordinaryToPrimitive(obj, hint)
}

func (r *Realm) ordinaryToPrimitive(obj ObjectRef, hint PrimitiveHint) Completion {
	order := [2]string{"valueOf", "toString"}
	if hint == HintString {
		order = [2]string{"toString", "valueOf"}
	}
	for _, name := range order {
		method := r.GetProperty(obj, r.InternString(name))
		if method.IsAbrupt() {
			return method
		}
		if !r.IsCallable(method.value) {
			continue
		}
		result := r.CallNative(method.value, ObjectValue(obj), nil)
		if result.IsAbrupt() || result.value.IsPrimitive() {
			return result
		}
	}
	return r.ThrowTypeError(errors.NewCoercionError("ToPrimitive", "object",
		"Cannot convert object to primitive value"))
}

// ToString converts v to a string. The completion is abrupt when the
// conversion throws; the string is then empty.
func (r *Realm) ToString(v Value) (string, Completion) {
	if s, ok := primitiveString(v); ok {
		return s, NormalCompletion(NewString(s))
	}
	if v.IsSymbol() {
		return "", r.ThrowTypeError(errors.NewCoercionError("ToString", "symbol",
			"Cannot convert a Symbol value to a string"))
	}
	prim := r.ToPrimitive(v, HintString)
	if prim.IsAbrupt() {
		return "", prim
	}
	return r.ToString(prim.value)
}

// ToPropertyKey converts v to a property key. Symbols are used as-is, objects
// go through ToPrimitive with a string hint, everything else through ToString.
func (r *Realm) ToPropertyKey(v Value) (PropertyKey, Completion) {
	if v.IsObject() {
		prim := r.ToPrimitive(v, HintString)
		if prim.IsAbrupt() {
			return PropertyKey{}, prim
		}
		v = prim.value
	}
	if v.IsSymbol() {
		return SymbolKey(v.sym), NormalCompletion(v)
	}
	s, c := r.ToString(v)
	if c.IsAbrupt() {
		return PropertyKey{}, c
	}
	return r.InternString(s), c
}

// ToNumber converts v to a number.
func (r *Realm) ToNumber(v Value) (float64, Completion) {
	switch v.typ {
	case TypeUndefined:
		return math.NaN(), NormalCompletion(NaN)
	case TypeNull:
		return 0, NormalCompletion(NumberValue(0))
	case TypeBoolean, TypeNumber:
		return v.num, NormalCompletion(NumberValue(v.num))
	case TypeString:
		f := parseStringToNumber(v.str)
		return f, NormalCompletion(NumberValue(f))
	case TypeSymbol:
		return math.NaN(), r.ThrowTypeError(errors.NewCoercionError("ToNumber", "symbol",
			"Cannot convert a Symbol value to a number"))
	}
	prim := r.ToPrimitive(v, HintNumber)
	if prim.IsAbrupt() {
		return math.NaN(), prim
	}
	return r.ToNumber(prim.value)
}

// parseStringToNumber converts a string to a number following ECMAScript rules
// Handles hex (0x), octal (0o), binary (0b), and decimal (including scientific notation)
func parseStringToNumber(s string) float64 {
	str := strings.TrimSpace(s)
	if str == "" {
		return 0
	}

	if len(str) >= 2 && str[0] == '0' {
		base := 0
		switch str[1] {
		case 'x', 'X':
			base = 16
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		}
		if base != 0 {
			if i, err := strconv.ParseUint(str[2:], base, 64); err == nil {
				return float64(i)
			}
			return math.NaN()
		}
	}

	// "Infinity" is case-sensitive, unlike Go's ParseFloat
	switch str {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(str)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.ContainsAny(str, "_xXpP") {
		return math.NaN()
	}

	if f, err := strconv.ParseFloat(str, 64); err == nil {
		return f
	}
	return math.NaN()
}
