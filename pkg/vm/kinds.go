package vm

// ExoticKind is the fixed category of an object. It selects the object's
// internal behaviour and its fallback Object.prototype.toString tag.
type ExoticKind uint8

const (
	KindOrdinary ExoticKind = iota
	KindArray
	KindFunction
	KindError
	KindBooleanWrapper
	KindNumberWrapper
	KindStringWrapper
	KindDate
	KindRegExp
	KindSymbolWrapper
)

func (k ExoticKind) String() string {
	switch k {
	case KindOrdinary:
		return "ordinary"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindError:
		return "error"
	case KindBooleanWrapper:
		return "boolean"
	case KindNumberWrapper:
		return "number"
	case KindStringWrapper:
		return "string"
	case KindDate:
		return "date"
	case KindRegExp:
		return "regexp"
	case KindSymbolWrapper:
		return "symbol"
	default:
		return "unknown"
	}
}

// ParseExoticKind is the inverse of ExoticKind.String.
func ParseExoticKind(name string) (ExoticKind, bool) {
	for k := KindOrdinary; k <= KindSymbolWrapper; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return KindOrdinary, false
}

// BuiltinTag returns the tag Object.prototype.toString falls back to when no
// string @@toStringTag is found. The case order is the resolution priority:
// Array, Function, Error, Boolean, Number, String, Date, RegExp, then Object.
// New kinds must be slotted into this switch, never resolved elsewhere.
func (k ExoticKind) BuiltinTag() string {
	switch k {
	case KindArray:
		return "Array"
	case KindFunction:
		return "Function"
	case KindError:
		return "Error"
	case KindBooleanWrapper:
		return "Boolean"
	case KindNumberWrapper:
		return "Number"
	case KindStringWrapper:
		return "String"
	case KindDate:
		return "Date"
	case KindRegExp:
		return "RegExp"
	case KindOrdinary, KindSymbolWrapper:
		return "Object"
	default:
		return "Object"
	}
}

// IsPrimitiveWrapper reports whether objects of this kind box a primitive.
func (k ExoticKind) IsPrimitiveWrapper() bool {
	switch k {
	case KindBooleanWrapper, KindNumberWrapper, KindStringWrapper, KindSymbolWrapper:
		return true
	default:
		return false
	}
}
