package vm

import (
	"slices"

	"github.com/dlclark/regexp2"
)

// ObjectRef is a stable handle to an object owned by a Heap. The zero value
// is NullRef and designates the null prototype.
type ObjectRef uint32

const NullRef ObjectRef = 0

// NativeFunc is the call hook of a callable object. It receives the realm it
// runs in, the this-binding and the argument list, and reports its outcome as
// a Completion.
type NativeFunc func(r *Realm, this Value, args []Value) Completion

// NativeFunctionObject is the payload of KindFunction objects. Ctor, when
// set, is the construct hook used by Realm.Construct; it runs with an
// undefined this.
type NativeFunctionObject struct {
	Name  string
	Arity int
	Fn    NativeFunc
	Ctor  NativeFunc
}

// RegExpObject is the payload of KindRegExp objects, backed by regexp2 in
// ECMAScript mode.
type RegExpObject struct {
	source   string
	flags    string
	compiled *regexp2.Regexp
}

func (re *RegExpObject) Source() string            { return re.source }
func (re *RegExpObject) Flags() string             { return re.flags }
func (re *RegExpObject) Compiled() *regexp2.Regexp { return re.compiled }

// Object is the single concrete object type. Exotic behaviour is selected by
// kind; the kind-specific payload lives in the fields below it.
type Object struct {
	ref        ObjectRef
	kind       ExoticKind
	proto      ObjectRef
	shape      *Shape
	slots      []PropertyDescriptor // parallel to shape.keys
	extensible bool

	primitive Value                 // wrapper kinds
	function  *NativeFunctionObject // KindFunction
	regexp    *RegExpObject         // KindRegExp
	timeValue float64               // KindDate
}

func (o *Object) Ref() ObjectRef        { return o.ref }
func (o *Object) Kind() ExoticKind      { return o.kind }
func (o *Object) Prototype() ObjectRef  { return o.proto }
func (o *Object) Shape() *Shape         { return o.shape }
func (o *Object) IsCallable() bool      { return o.kind == KindFunction && o.function != nil }
func (o *Object) IsConstructor() bool   { return o.IsCallable() && o.function.Ctor != nil }
func (o *Object) IsExtensible() bool    { return o.extensible }
func (o *Object) PrimitiveValue() Value { return o.primitive }
func (o *Object) TimeValue() float64    { return o.timeValue }

// Function returns the call payload, or nil for non-callable objects.
func (o *Object) Function() *NativeFunctionObject { return o.function }

// RegExp returns the RegExp payload, or nil for other kinds.
func (o *Object) RegExp() *RegExpObject { return o.regexp }

// PreventExtensions clears the extensible flag. It cannot be set back.
func (o *Object) PreventExtensions() {
	o.extensible = false
}

// ValueOf is the value-of hook: the wrapped primitive for wrapper kinds,
// otherwise the object itself.
func (o *Object) ValueOf() Value {
	if o.kind.IsPrimitiveWrapper() {
		return o.primitive
	}
	return ObjectValue(o.ref)
}

// GetOwnProperty looks up an own property. No prototype walk.
func (o *Object) GetOwnProperty(key PropertyKey) (PropertyDescriptor, bool) {
	off, ok := o.shape.lookup(key)
	if !ok {
		return PropertyDescriptor{}, false
	}
	return o.slots[off], true
}

// HasOwnProperty reports whether key is an own property, ignoring attributes.
func (o *Object) HasOwnProperty(key PropertyKey) bool {
	_, ok := o.shape.lookup(key)
	return ok
}

// DefineOwnProperty inserts or overwrites an own property with a complete
// descriptor. It returns false when the object is not extensible and key is
// new, or when an existing non-configurable property forbids the change.
func (o *Object) DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) bool {
	if o.kind == KindArray {
		if idx, ok := key.ArrayIndex(); ok {
			return o.defineArrayIndex(idx, key, desc)
		}
	}
	return o.ordinaryDefineOwnProperty(key, desc)
}

// defineArrayIndex keeps an Array's length above its highest index. Indices
// at or past a read-only length are refused.
func (o *Object) defineArrayIndex(idx uint32, key PropertyKey, desc PropertyDescriptor) bool {
	lengthOff, ok := o.shape.lookup(StringKey("length"))
	if !ok {
		return o.ordinaryDefineOwnProperty(key, desc)
	}
	length := o.slots[lengthOff].Value.num
	if float64(idx) >= length && !o.slots[lengthOff].Writable() {
		return false
	}
	if !o.ordinaryDefineOwnProperty(key, desc) {
		return false
	}
	if float64(idx) >= length {
		o.slots[lengthOff].Value = NumberValue(float64(idx) + 1)
	}
	return true
}

func (o *Object) ordinaryDefineOwnProperty(key PropertyKey, desc PropertyDescriptor) bool {
	if desc.Accessor {
		desc.Attributes &^= Writable
	}
	off, exists := o.shape.lookup(key)
	if !exists {
		if !o.extensible {
			return false
		}
		o.putOwn(key, desc)
		return true
	}
	current := o.slots[off]
	if !current.Configurable() {
		if desc.Configurable() {
			return false
		}
		if desc.Enumerable() != current.Enumerable() {
			return false
		}
		if desc.Accessor != current.Accessor {
			return false
		}
		if current.Accessor {
			if !SameValue(desc.Get, current.Get) || !SameValue(desc.Set, current.Set) {
				return false
			}
		} else if !current.Writable() {
			if desc.Writable() || !SameValue(desc.Value, current.Value) {
				return false
			}
		}
	}
	o.slots[off] = desc
	return true
}

// putOwn stores a property without validation. Built-in construction paths use
// it to lay out properties on fresh objects.
func (o *Object) putOwn(key PropertyKey, desc PropertyDescriptor) {
	if off, ok := o.shape.lookup(key); ok {
		o.slots[off] = desc
		return
	}
	o.shape = o.shape.withKey(key)
	o.slots = append(o.slots, desc)
}

// setOwnValue replaces the value of an existing writable data property.
func (o *Object) setOwnValue(key PropertyKey, v Value) bool {
	off, ok := o.shape.lookup(key)
	if !ok {
		return false
	}
	if !o.slots[off].Writable() {
		return false
	}
	o.slots[off].Value = v
	return true
}

// DeleteOwnProperty removes an own property. Missing keys count as deleted;
// non-configurable properties are kept and false is returned.
func (o *Object) DeleteOwnProperty(key PropertyKey) bool {
	off, ok := o.shape.lookup(key)
	if !ok {
		return true
	}
	if !o.slots[off].Configurable() {
		return false
	}
	o.shape = o.shape.withoutKey(key)
	o.slots = append(o.slots[:off], o.slots[off+1:]...)
	return true
}

// OwnKeys returns the own keys in raw insertion order.
func (o *Object) OwnKeys() []PropertyKey {
	keys := make([]PropertyKey, len(o.shape.keys))
	copy(keys, o.shape.keys)
	return keys
}

// OrderedOwnKeys returns own keys in enumeration order: array indices
// ascending, then string keys in insertion order, then symbols in insertion order.
func (o *Object) OrderedOwnKeys() []PropertyKey {
	var indices []uint32
	var strs, syms []PropertyKey
	for _, k := range o.shape.keys {
		if idx, ok := k.ArrayIndex(); ok {
			indices = append(indices, idx)
			continue
		}
		if k.IsSymbol() {
			syms = append(syms, k)
		} else {
			strs = append(strs, k)
		}
	}
	slices.Sort(indices)
	result := make([]PropertyKey, 0, len(o.shape.keys))
	for _, idx := range indices {
		result = append(result, IndexKey(int(idx)))
	}
	result = append(result, strs...)
	return append(result, syms...)
}
