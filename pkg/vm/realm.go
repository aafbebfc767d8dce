package vm

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"

	"objcore/pkg/errors"
)

const debugRealm = false

// Realm is one runtime instance: it owns the heap, the built-in prototype
// graph, the global object and the well-known-symbol registry. It is created
// once and threaded explicitly through every operation that needs it.
// A realm and its object graph belong to a single goroutine.
type Realm struct {
	// Identity
	id int

	Heap         *Heap
	GlobalObject ObjectRef

	// Built-in prototypes
	ObjectPrototype    ObjectRef
	FunctionPrototype  ObjectRef
	ArrayPrototype     ObjectRef
	ErrorPrototype     ObjectRef
	TypeErrorPrototype ObjectRef
	BooleanPrototype   ObjectRef
	NumberPrototype    ObjectRef
	StringPrototype    ObjectRef
	SymbolPrototype    ObjectRef
	DatePrototype      ObjectRef
	RegExpPrototype    ObjectRef

	// Well-known symbols
	SymbolAsyncIterator      *Symbol
	SymbolHasInstance        *Symbol
	SymbolIsConcatSpreadable *Symbol
	SymbolIterator           *Symbol
	SymbolMatch              *Symbol
	SymbolMatchAll           *Symbol
	SymbolReplace            *Symbol
	SymbolSearch             *Symbol
	SymbolSpecies            *Symbol
	SymbolSplit              *Symbol
	SymbolToPrimitive        *Symbol
	SymbolToStringTag        *Symbol
	SymbolUnscopables        *Symbol
	wellKnown                map[string]*Symbol

	// Symbol registry for Symbol.for()
	SymbolRegistry map[string]*Symbol

	interned map[string]PropertyKey

	// Initialization state
	initialized bool
}

// NewRealm creates a realm with its prototype graph and well-known symbols in
// place. Built-in methods are installed afterwards by the builtins package.
func NewRealm(id int) *Realm {
	r := &Realm{
		id:             id,
		Heap:           NewHeap(256),
		SymbolRegistry: make(map[string]*Symbol),
		interned:       make(map[string]PropertyKey),
		wellKnown:      make(map[string]*Symbol),
	}
	r.InitializeSymbols()
	r.InitializePrototypes()
	return r
}

// ID returns the unique identifier for this realm.
func (r *Realm) ID() int {
	return r.id
}

// InitializePrototypes creates the prototype graph for this realm.
func (r *Realm) InitializePrototypes() {
	h := r.Heap

	// Object.prototype is the root (inherits from null)
	r.ObjectPrototype = h.Allocate(NullRef, KindOrdinary)

	// Function.prototype is itself callable and returns undefined
	r.FunctionPrototype = h.Allocate(r.ObjectPrototype, KindFunction)
	h.Object(r.FunctionPrototype).function = &NativeFunctionObject{
		Fn: func(*Realm, Value, []Value) Completion { return NormalCompletion(Undefined) },
	}
	r.setFunctionMetadata(r.FunctionPrototype, "", 0)

	// Array.prototype is an Array exotic object
	r.ArrayPrototype = h.Allocate(r.ObjectPrototype, KindArray)
	h.Object(r.ArrayPrototype).putOwn(StringKey("length"), DataDescriptor(NumberValue(0), Writable))

	r.ErrorPrototype = h.Allocate(r.ObjectPrototype, KindOrdinary)
	r.TypeErrorPrototype = h.Allocate(r.ErrorPrototype, KindOrdinary)

	// Boolean, Number and String prototypes are wrappers around false, 0 and ""
	r.BooleanPrototype = r.allocateWrapper(r.ObjectPrototype, KindBooleanWrapper, False)
	r.NumberPrototype = r.allocateWrapper(r.ObjectPrototype, KindNumberWrapper, NumberValue(0))
	r.StringPrototype = r.allocateWrapper(r.ObjectPrototype, KindStringWrapper, NewString(""))
	r.SymbolPrototype = h.Allocate(r.ObjectPrototype, KindOrdinary)
	r.DatePrototype = h.Allocate(r.ObjectPrototype, KindOrdinary)
	r.RegExpPrototype = h.Allocate(r.ObjectPrototype, KindOrdinary)

	r.GlobalObject = h.Allocate(r.ObjectPrototype, KindOrdinary)

	if debugRealm {
		fmt.Printf("[DEBUG realm.go] realm %d: %d prototype objects allocated\n", r.id, h.Size())
	}
}

// InitializeSymbols creates well-known symbols for this realm.
func (r *Realm) InitializeSymbols() {
	mk := func(name string) *Symbol {
		sym := NewSymbol("Symbol." + name)
		r.wellKnown[name] = sym
		return sym
	}
	r.SymbolAsyncIterator = mk("asyncIterator")
	r.SymbolHasInstance = mk("hasInstance")
	r.SymbolIsConcatSpreadable = mk("isConcatSpreadable")
	r.SymbolIterator = mk("iterator")
	r.SymbolMatch = mk("match")
	r.SymbolMatchAll = mk("matchAll")
	r.SymbolReplace = mk("replace")
	r.SymbolSearch = mk("search")
	r.SymbolSpecies = mk("species")
	r.SymbolSplit = mk("split")
	r.SymbolToPrimitive = mk("toPrimitive")
	r.SymbolToStringTag = mk("toStringTag")
	r.SymbolUnscopables = mk("unscopables")
}

// WellKnownSymbol looks up a well-known symbol by name, with or without the
// "Symbol." prefix.
func (r *Realm) WellKnownSymbol(name string) (*Symbol, bool) {
	sym, ok := r.wellKnown[strings.TrimPrefix(name, "Symbol.")]
	return sym, ok
}

// WellKnownSymbolNames returns the registry names, sorted.
func (r *Realm) WellKnownSymbolNames() []string {
	names := make([]string, 0, len(r.wellKnown))
	for name := range r.wellKnown {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SymbolFor implements the Symbol.for registry.
func (r *Realm) SymbolFor(key string) *Symbol {
	if sym, ok := r.SymbolRegistry[key]; ok {
		return sym
	}
	sym := NewSymbol(key)
	r.SymbolRegistry[key] = sym
	return sym
}

// InternString returns the canonical string key for text.
func (r *Realm) InternString(text string) PropertyKey {
	if key, ok := r.interned[text]; ok {
		return key
	}
	key := StringKey(strings.Clone(text))
	r.interned[key.name] = key
	return key
}

// MarkInitialized marks this realm as fully initialized.
func (r *Realm) MarkInitialized() {
	r.initialized = true
}

// IsInitialized returns true if this realm has been fully initialized.
func (r *Realm) IsInitialized() bool {
	return r.initialized
}

// Object dereferences a handle owned by this realm's heap.
func (r *Realm) Object(ref ObjectRef) *Object {
	return r.Heap.Object(ref)
}

// IsCallable reports whether v is a callable object.
func (r *Realm) IsCallable(v Value) bool {
	if !v.IsObject() {
		return false
	}
	return r.Heap.Object(v.ref).IsCallable()
}

// TypeOf implements the typeof operator.
func (r *Realm) TypeOf(v Value) string {
	if r.IsCallable(v) {
		return "function"
	}
	return v.TypeName()
}

// --- Allocation helpers ---

// NewObject allocates an ordinary object with the given prototype.
func (r *Realm) NewObject(proto ObjectRef) ObjectRef {
	return r.Heap.Allocate(proto, KindOrdinary)
}

// NewPlainObject allocates an ordinary object inheriting from Object.prototype.
func (r *Realm) NewPlainObject() ObjectRef {
	return r.Heap.Allocate(r.ObjectPrototype, KindOrdinary)
}

func (r *Realm) allocateWrapper(proto ObjectRef, kind ExoticKind, primitive Value) ObjectRef {
	ref := r.Heap.Allocate(proto, kind)
	obj := r.Heap.Object(ref)
	obj.primitive = primitive
	if kind == KindStringWrapper {
		installStringCodeUnits(obj, primitive.AsString())
	}
	return ref
}

// NewBooleanObject boxes a boolean.
func (r *Realm) NewBooleanObject(b bool) ObjectRef {
	return r.allocateWrapper(r.BooleanPrototype, KindBooleanWrapper, BooleanValue(b))
}

// NewNumberObject boxes a number.
func (r *Realm) NewNumberObject(f float64) ObjectRef {
	return r.allocateWrapper(r.NumberPrototype, KindNumberWrapper, NumberValue(f))
}

// NewStringObject boxes a string, exposing its UTF-16 length and code units.
func (r *Realm) NewStringObject(s string) ObjectRef {
	return r.allocateWrapper(r.StringPrototype, KindStringWrapper, NewString(s))
}

// NewSymbolObject boxes a symbol.
func (r *Realm) NewSymbolObject(sym *Symbol) ObjectRef {
	return r.allocateWrapper(r.SymbolPrototype, KindSymbolWrapper, SymbolValue(sym))
}

// NewNativeFunction allocates a callable object with own length and name.
func (r *Realm) NewNativeFunction(name string, arity int, fn NativeFunc) ObjectRef {
	ref := r.Heap.Allocate(r.FunctionPrototype, KindFunction)
	r.Heap.Object(ref).function = &NativeFunctionObject{Name: name, Arity: arity, Fn: fn}
	r.setFunctionMetadata(ref, name, arity)
	return ref
}

// NewNativeConstructor is NewNativeFunction with a construct hook.
func (r *Realm) NewNativeConstructor(name string, arity int, call, construct NativeFunc) ObjectRef {
	ref := r.NewNativeFunction(name, arity, call)
	r.Heap.Object(ref).function.Ctor = construct
	return ref
}

func (r *Realm) setFunctionMetadata(ref ObjectRef, name string, arity int) {
	obj := r.Heap.Object(ref)
	obj.putOwn(StringKey("length"), DataDescriptor(NumberValue(float64(arity)), Configurable))
	obj.putOwn(StringKey("name"), DataDescriptor(NewString(name), Configurable))
}

// DefineNativeFunction creates a native function and installs it on target
// under name with the given attributes.
func (r *Realm) DefineNativeFunction(target ObjectRef, name string, arity int, fn NativeFunc, attrs Attributes) ObjectRef {
	return r.DefineNativeFunctionByKey(target, r.InternString(name), name, arity, fn, attrs)
}

// DefineNativeFunctionByKey is DefineNativeFunction for arbitrary keys; name is
// the function's own name property.
func (r *Realm) DefineNativeFunctionByKey(target ObjectRef, key PropertyKey, name string, arity int, fn NativeFunc, attrs Attributes) ObjectRef {
	fnRef := r.NewNativeFunction(name, arity, fn)
	r.Heap.Object(target).putOwn(key, DataDescriptor(ObjectValue(fnRef), attrs))
	return fnRef
}

// DefineNativeAccessor installs a getter-only accessor on target.
func (r *Realm) DefineNativeAccessor(target ObjectRef, key PropertyKey, getter NativeFunc, attrs Attributes) {
	getterRef := r.NewNativeFunction("get "+keyFunctionName(key), 0, getter)
	r.Heap.Object(target).putOwn(key, AccessorDescriptor(ObjectValue(getterRef), Undefined, attrs))
}

// DefineValue installs a data property on target without validation.
func (r *Realm) DefineValue(target ObjectRef, key PropertyKey, v Value, attrs Attributes) {
	r.Heap.Object(target).putOwn(key, DataDescriptor(v, attrs))
}

func keyFunctionName(key PropertyKey) string {
	if key.IsSymbol() {
		desc, _ := key.Symbol().Description()
		return "[" + desc + "]"
	}
	return key.Name()
}

// NewArray allocates an Array exotic object holding elems.
func (r *Realm) NewArray(elems []Value) ObjectRef {
	ref := r.Heap.Allocate(r.ArrayPrototype, KindArray)
	obj := r.Heap.Object(ref)
	for i, el := range elems {
		obj.putOwn(IndexKey(i), DataDescriptor(el, AttrAll))
	}
	obj.putOwn(StringKey("length"), DataDescriptor(NumberValue(float64(len(elems))), Writable))
	return ref
}

// NewError allocates an Error object with the given prototype and message.
func (r *Realm) NewError(proto ObjectRef, message string) ObjectRef {
	ref := r.Heap.Allocate(proto, KindError)
	if message != "" {
		r.Heap.Object(ref).putOwn(StringKey("message"), DataDescriptor(NewString(message), AttrBuiltin))
	}
	return ref
}

// NewDate allocates a Date object for a time value in milliseconds since the
// epoch. Out-of-range and non-finite values become NaN.
func (r *Realm) NewDate(ms float64) ObjectRef {
	ref := r.Heap.Allocate(r.DatePrototype, KindDate)
	r.Heap.Object(ref).timeValue = timeClip(ms)
	return ref
}

func timeClip(ms float64) float64 {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > 8.64e15 {
		return math.NaN()
	}
	return math.Trunc(ms) + 0 // +0 normalises -0
}

// NewRegExp compiles source with the given flags and allocates a RegExp object.
func (r *Realm) NewRegExp(source, flags string) (ObjectRef, error) {
	opts, err := regExpOptions(flags)
	if err != nil {
		return NullRef, err
	}
	compiled, err := regexp2.Compile(source, opts)
	if err != nil {
		return NullRef, fmt.Errorf("invalid regular expression /%s/: %w", source, err)
	}
	ref := r.Heap.Allocate(r.RegExpPrototype, KindRegExp)
	obj := r.Heap.Object(ref)
	obj.regexp = &RegExpObject{source: source, flags: flags, compiled: compiled}
	obj.putOwn(StringKey("lastIndex"), DataDescriptor(NumberValue(0), Writable))
	return ref, nil
}

func regExpOptions(flags string) (regexp2.RegexOptions, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	seen := make(map[rune]bool, len(flags))
	for _, f := range flags {
		if seen[f] {
			return 0, fmt.Errorf("duplicate regular expression flag %q", f)
		}
		seen[f] = true
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'u':
			opts |= regexp2.Unicode
		case 'g', 'y':
			// matching state flags; handled by callers through lastIndex
		default:
			return 0, fmt.Errorf("invalid regular expression flag %q", f)
		}
	}
	// regexp2 rejects ECMAScript combined with some options; drop it when they are present
	if opts&(regexp2.Singleline|regexp2.Unicode) != 0 {
		opts &^= regexp2.ECMAScript
	}
	return opts, nil
}

// ThrowTypeError allocates a TypeError carrying cause's message and returns
// the abrupt completion that throws it.
func (r *Realm) ThrowTypeError(cause errors.CoreError) Completion {
	errRef := r.NewError(r.TypeErrorPrototype, cause.Message())
	if debugRealm {
		fmt.Printf("[DEBUG realm.go] throwing TypeError: %v\n", cause)
	}
	return Completion{typ: CompletionThrow, value: ObjectValue(errRef), cause: cause}
}
