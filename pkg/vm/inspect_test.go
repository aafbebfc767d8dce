package vm

import (
	"math"
	"testing"
)

func TestInspect(t *testing.T) {
	r := NewRealm(1)

	obj := r.NewPlainObject()
	r.DefineValue(obj, StringKey("b"), NewString("x"), AttrAll)
	r.DefineValue(obj, IndexKey(1), True, AttrAll)
	r.DefineValue(obj, StringKey("hidden"), True, AttrNone)
	r.DefineValue(obj, StringKey("self"), ObjectValue(obj), AttrAll)

	errRef := r.NewError(r.TypeErrorPrototype, "bad thing")
	r.DefineValue(r.TypeErrorPrototype, StringKey("name"), NewString("TypeError"), AttrBuiltin)

	re, err := r.NewRegExp("a.c", "gi")
	if err != nil {
		t.Fatalf("NewRegExp: %v", err)
	}

	testCases := []struct {
		name string
		v    Value
		want string
	}{
		{"undefined", Undefined, "undefined"},
		{"negative zero", NumberValue(math.Copysign(0, -1)), "-0"},
		{"string", NewString("plain"), "plain"},
		{"symbol", SymbolValue(NewSymbol("k")), "Symbol(k)"},
		{"object", ObjectValue(obj), `{1: true, b: "x", self: [Circular]}`},
		{"array", ObjectValue(r.NewArray([]Value{NumberValue(1), NewString("two")})), `[1, "two"]`},
		{"function", ObjectValue(r.NewNativeFunction("f", 0, nil)), "[Function: f]"},
		{"wrapper", ObjectValue(r.NewNumberObject(5)), "[Number: 5]"},
		{"error", ObjectValue(errRef), "TypeError: bad thing"},
		{"regexp", ObjectValue(re), "/a.c/gi"},
		{"date", ObjectValue(r.NewDate(0)), "1970-01-01T00:00:00.000Z"},
		{"invalid date", ObjectValue(r.NewDate(math.NaN())), "Invalid Date"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Inspect(tc.v); got != tc.want {
				t.Errorf("Inspect() = %q, want %q", got, tc.want)
			}
		})
	}

	if got := r.InspectNested(NewString("q")); got != `"q"` {
		t.Errorf("InspectNested(string) = %s", got)
	}
}
