package vm

import "strconv"

type KeyKind uint8

const (
	KeyKindString KeyKind = iota
	KeyKindSymbol
)

// PropertyKey identifies a property slot: an interned string or a symbol identity.
// It is comparable and can be used directly as a map key.
type PropertyKey struct {
	kind KeyKind
	name string  // for string keys
	sym  *Symbol // for symbol keys
}

// StringKey constructs a PropertyKey for a string-named property.
func StringKey(name string) PropertyKey { return PropertyKey{kind: KeyKindString, name: name} }

// SymbolKey constructs a PropertyKey for a symbol-named property.
func SymbolKey(sym *Symbol) PropertyKey {
	if sym == nil {
		panic("nil symbol key")
	}
	return PropertyKey{kind: KeyKindSymbol, sym: sym}
}

func (k PropertyKey) Kind() KeyKind   { return k.kind }
func (k PropertyKey) IsString() bool  { return k.kind == KeyKindString }
func (k PropertyKey) IsSymbol() bool  { return k.kind == KeyKindSymbol }
func (k PropertyKey) Name() string    { return k.name }
func (k PropertyKey) Symbol() *Symbol { return k.sym }

// ToValue returns the key as a language value (String or Symbol).
func (k PropertyKey) ToValue() Value {
	if k.kind == KeyKindSymbol {
		return SymbolValue(k.sym)
	}
	return NewString(k.name)
}

func (k PropertyKey) String() string {
	if k.kind == KeyKindSymbol {
		return "[" + k.sym.String() + "]"
	}
	return k.name
}

// ArrayIndex reports whether the key is a canonical array index and returns it.
func (k PropertyKey) ArrayIndex() (uint32, bool) {
	if k.kind != KeyKindString {
		return 0, false
	}
	return tryParseArrayIndex(k.name)
}

// tryParseArrayIndex checks if a string represents a valid array index.
// Valid array indices are non-negative integers in range [0, 2^32-1) without leading zeros.
func tryParseArrayIndex(key string) (uint32, bool) {
	if key == "" {
		return 0, false
	}
	// Leading zeros not allowed (except "0" itself)
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	var idx uint64
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if ch < '0' || ch > '9' {
			return 0, false
		}
		idx = idx*10 + uint64(ch-'0')
		if idx > 4294967294 {
			return 0, false
		}
	}
	return uint32(idx), true
}

// IndexKey returns the canonical string key for an array index.
func IndexKey(i int) PropertyKey {
	return StringKey(strconv.Itoa(i))
}

// Attributes is the {writable, enumerable, configurable} flag triple.
// The zero value has every flag cleared.
type Attributes uint8

const (
	Writable Attributes = 1 << iota
	Enumerable
	Configurable
)

const (
	AttrNone Attributes = 0
	// AttrAll is what ordinary assignment and object literals produce.
	AttrAll = Writable | Enumerable | Configurable
	// AttrBuiltin is used for built-in methods: writable, configurable, not enumerable.
	AttrBuiltin = Writable | Configurable
)

func (a Attributes) IsWritable() bool     { return a&Writable != 0 }
func (a Attributes) IsEnumerable() bool   { return a&Enumerable != 0 }
func (a Attributes) IsConfigurable() bool { return a&Configurable != 0 }

func (a Attributes) String() string {
	b := []byte("---")
	if a.IsWritable() {
		b[0] = 'w'
	}
	if a.IsEnumerable() {
		b[1] = 'e'
	}
	if a.IsConfigurable() {
		b[2] = 'c'
	}
	return string(b)
}

// PropertyDescriptor is a data descriptor {Value} or an accessor descriptor
// {Get, Set}, together with the attribute flags. For accessors the Writable
// flag is ignored.
type PropertyDescriptor struct {
	Value      Value
	Get        Value // Undefined or a callable object
	Set        Value // Undefined or a callable object
	Accessor   bool
	Attributes Attributes
}

// DataDescriptor builds a data property descriptor.
func DataDescriptor(v Value, attrs Attributes) PropertyDescriptor {
	return PropertyDescriptor{Value: v, Get: Undefined, Set: Undefined, Attributes: attrs}
}

// AccessorDescriptor builds an accessor property descriptor. Writable is dropped.
func AccessorDescriptor(get, set Value, attrs Attributes) PropertyDescriptor {
	return PropertyDescriptor{Value: Undefined, Get: get, Set: set, Accessor: true, Attributes: attrs &^ Writable}
}

func (d PropertyDescriptor) IsAccessor() bool   { return d.Accessor }
func (d PropertyDescriptor) IsData() bool       { return !d.Accessor }
func (d PropertyDescriptor) Writable() bool     { return !d.Accessor && d.Attributes.IsWritable() }
func (d PropertyDescriptor) Enumerable() bool   { return d.Attributes.IsEnumerable() }
func (d PropertyDescriptor) Configurable() bool { return d.Attributes.IsConfigurable() }
