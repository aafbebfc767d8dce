package vm

import "math"

// SameValue implements the SameValue algorithm. Objects are the same value only
// when they are the same heap allocation; no structural comparison is done.
// NaN is the same as NaN, and +0 differs from -0.
func SameValue(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	if a.typ == TypeNumber {
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		if a.num == 0 && b.num == 0 {
			return math.Signbit(a.num) == math.Signbit(b.num)
		}
		return a.num == b.num
	}
	return sameNonNumber(a, b)
}

// SameValueZero is SameValue except that +0 and -0 are equal. Useful for collections.
func SameValueZero(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	if a.typ == TypeNumber {
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		return a.num == b.num
	}
	return sameNonNumber(a, b)
}

func sameNonNumber(a, b Value) bool {
	switch a.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return a.num == b.num
	case TypeString:
		return a.str == b.str
	case TypeSymbol:
		return a.sym == b.sym
	case TypeObject:
		return a.ref == b.ref
	default:
		return false
	}
}
