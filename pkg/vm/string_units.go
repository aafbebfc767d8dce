package vm

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// utf16CodeUnits returns the UTF-16 code units of s. Invalid UTF-8 sequences
// are encoded as U+FFFD.
func utf16CodeUnits(s string) []uint16 {
	encoded, err := utf16BE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		encoded, _ = utf16BE.NewEncoder().Bytes([]byte(strings.ToValidUTF8(s, "\uFFFD")))
	}
	units := make([]uint16, len(encoded)/2)
	for i := range units {
		units[i] = uint16(encoded[2*i])<<8 | uint16(encoded[2*i+1])
	}
	return units
}

// UTF16Length returns the length of s in UTF-16 code units.
func UTF16Length(s string) int {
	return len(utf16CodeUnits(s))
}

// installStringCodeUnits lays out the own properties of a String wrapper:
// one read-only enumerable property per code unit and a read-only length.
// Surrogate halves surface as U+FFFD.
func installStringCodeUnits(obj *Object, s string) {
	units := utf16CodeUnits(s)
	for i, u := range units {
		// string(rune) maps surrogate halves to U+FFFD
		obj.putOwn(IndexKey(i), DataDescriptor(NewString(string(rune(u))), Enumerable))
	}
	obj.putOwn(StringKey("length"), DataDescriptor(NumberValue(float64(len(units))), AttrNone))
}
