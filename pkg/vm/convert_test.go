package vm

import (
	stderrors "errors"
	"math"
	"testing"

	"objcore/pkg/errors"
)

func TestToObjectBoxing(t *testing.T) {
	r := NewRealm(1)
	testCases := []struct {
		name  string
		in    Value
		kind  ExoticKind
		proto ObjectRef
	}{
		{"boolean", True, KindBooleanWrapper, r.BooleanPrototype},
		{"number", NumberValue(42), KindNumberWrapper, r.NumberPrototype},
		{"string", NewString("abc"), KindStringWrapper, r.StringPrototype},
		{"symbol", SymbolValue(NewSymbol("s")), KindSymbolWrapper, r.SymbolPrototype},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := r.ToObject(tc.in)
			if c.IsAbrupt() {
				t.Fatalf("ToObject threw")
			}
			obj := r.Object(c.Value().AsObject())
			if obj.Kind() != tc.kind {
				t.Errorf("kind = %v, want %v", obj.Kind(), tc.kind)
			}
			if obj.Prototype() != tc.proto {
				t.Errorf("prototype = %d, want %d", obj.Prototype(), tc.proto)
			}
			if !SameValue(obj.ValueOf(), tc.in) {
				t.Errorf("wrapped primitive mismatch")
			}
		})
	}

	// Each boxing allocates a fresh wrapper
	a := r.ToObject(NumberValue(1)).Value()
	b := r.ToObject(NumberValue(1)).Value()
	if SameValue(a, b) {
		t.Errorf("boxing twice must yield distinct objects")
	}

	plain := ObjectValue(r.NewPlainObject())
	if c := r.ToObject(plain); !SameValue(c.Value(), plain) {
		t.Errorf("ToObject on an object must return it unchanged")
	}
}

func TestToObjectNullish(t *testing.T) {
	r := NewRealm(1)
	for _, v := range []Value{Undefined, Null} {
		c := r.ToObject(v)
		if !c.IsAbrupt() {
			t.Fatalf("ToObject(%s) should throw", v.TypeName())
		}
		errObj := r.Object(c.Value().AsObject())
		if errObj.Kind() != KindError || errObj.Prototype() != r.TypeErrorPrototype {
			t.Errorf("thrown value is not a TypeError: %s", r.Inspect(c.Value()))
		}
		var coerce *errors.CoercionError
		if !stderrors.As(c.Err(), &coerce) || coerce.Op != "ToObject" {
			t.Errorf("Err() should unwrap to a ToObject CoercionError, got %v", c.Err())
		}
	}
}

func TestToStringPrimitives(t *testing.T) {
	r := NewRealm(1)
	testCases := []struct {
		in   Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "null"},
		{True, "true"},
		{NumberValue(1.5), "1.5"},
		{NumberValue(math.Copysign(0, -1)), "0"},
		{NewString("x"), "x"},
	}
	for _, tc := range testCases {
		got, c := r.ToString(tc.in)
		if c.IsAbrupt() || got != tc.want {
			t.Errorf("ToString(%s) = %q, want %q", r.Inspect(tc.in), got, tc.want)
		}
	}
	if _, c := r.ToString(SymbolValue(NewSymbol("s"))); !c.IsAbrupt() {
		t.Errorf("ToString(symbol) must throw")
	}
}

func TestToPrimitiveOrder(t *testing.T) {
	r := NewRealm(1)
	obj := r.NewPlainObject()
	r.DefineNativeFunction(obj, "toString", 0, func(*Realm, Value, []Value) Completion {
		return NormalCompletion(NewString("from toString"))
	}, AttrBuiltin)
	r.DefineNativeFunction(obj, "valueOf", 0, func(*Realm, Value, []Value) Completion {
		return NormalCompletion(NumberValue(7))
	}, AttrBuiltin)

	if c := r.ToPrimitive(ObjectValue(obj), HintString); c.Value().AsString() != "from toString" {
		t.Errorf("string hint should prefer toString")
	}
	if c := r.ToPrimitive(ObjectValue(obj), HintDefault); c.Value().AsNumber() != 7 {
		t.Errorf("default hint should prefer valueOf")
	}

	var gotHint string
	r.DefineNativeFunctionByKey(obj, SymbolKey(r.SymbolToPrimitive), "[Symbol.toPrimitive]", 1,
		func(_ *Realm, _ Value, args []Value) Completion {
			gotHint = Arg(args, 0).AsString()
			return NormalCompletion(NewString("exotic"))
		}, AttrBuiltin)
	if c := r.ToPrimitive(ObjectValue(obj), HintNumber); c.Value().AsString() != "exotic" || gotHint != "number" {
		t.Errorf("@@toPrimitive should win, got %s with hint %q", r.Inspect(c.Value()), gotHint)
	}
}

func TestToPrimitiveNoConversion(t *testing.T) {
	r := NewRealm(1)
	bare := r.NewObject(NullRef)
	c := r.ToPrimitive(ObjectValue(bare), HintString)
	if !c.IsAbrupt() {
		t.Fatalf("object without toString/valueOf must not convert")
	}
	var coerce *errors.CoercionError
	if !stderrors.As(c.Err(), &coerce) || coerce.Op != "ToPrimitive" {
		t.Errorf("unexpected error %v", c.Err())
	}
}

func TestToPropertyKey(t *testing.T) {
	r := NewRealm(1)
	sym := NewSymbol("k")
	if key, c := r.ToPropertyKey(SymbolValue(sym)); c.IsAbrupt() || key != SymbolKey(sym) {
		t.Errorf("symbols must be used as keys directly")
	}
	if key, _ := r.ToPropertyKey(NumberValue(1)); key != StringKey("1") {
		t.Errorf("ToPropertyKey(1) = %s", key)
	}
	if key, _ := r.ToPropertyKey(Undefined); key != StringKey("undefined") {
		t.Errorf("ToPropertyKey(undefined) = %s", key)
	}

	obj := r.NewPlainObject()
	r.DefineNativeFunction(obj, "toString", 0, func(*Realm, Value, []Value) Completion {
		return NormalCompletion(NewString("computed"))
	}, AttrBuiltin)
	if key, _ := r.ToPropertyKey(ObjectValue(obj)); key != StringKey("computed") {
		t.Errorf("object key should go through toString, got %s", key)
	}

	thrower := r.NewPlainObject()
	r.DefineNativeFunction(thrower, "toString", 0, func(*Realm, Value, []Value) Completion {
		return ThrowCompletion(NewString("nope"))
	}, AttrBuiltin)
	if _, c := r.ToPropertyKey(ObjectValue(thrower)); !c.IsAbrupt() || c.Value().AsString() != "nope" {
		t.Errorf("abrupt toString must propagate from ToPropertyKey")
	}
}

func TestToNumber(t *testing.T) {
	r := NewRealm(1)
	testCases := []struct {
		in   Value
		want float64
	}{
		{Null, 0},
		{True, 1},
		{NewString("  12.5 "), 12.5},
		{NewString(""), 0},
		{NewString("0x1f"), 31},
		{NewString("0b101"), 5},
		{NewString("-Infinity"), math.Inf(-1)},
	}
	for _, tc := range testCases {
		if got, _ := r.ToNumber(tc.in); got != tc.want {
			t.Errorf("ToNumber(%s) = %v, want %v", r.InspectNested(tc.in), got, tc.want)
		}
	}
	for _, s := range []string{"abc", "infinity", "NaN", "1_000", "-0x10"} {
		if got, _ := r.ToNumber(NewString(s)); !math.IsNaN(got) {
			t.Errorf("ToNumber(%q) = %v, want NaN", s, got)
		}
	}
	boxed := r.NewNumberObject(4)
	r.DefineNativeFunction(boxed, "valueOf", 0, func(r *Realm, this Value, _ []Value) Completion {
		return NormalCompletion(r.Object(this.AsObject()).ValueOf())
	}, AttrBuiltin)
	if got, _ := r.ToNumber(ObjectValue(boxed)); got != 4 {
		t.Errorf("ToNumber(boxed 4) = %v", got)
	}
}
