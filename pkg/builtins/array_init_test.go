package builtins

import (
	"testing"

	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

func TestArrayConstructor(t *testing.T) {
	r := newTestRealm(t)
	ctorRef := global(t, r, "Array")
	ctor := vm.ObjectValue(ctorRef)

	sized := mustNormal(t, r.Construct(ctor, []vm.Value{vm.NumberValue(3)}))
	if n := mustNormal(t, r.GetProperty(sized.AsObject(), r.InternString("length"))); n.AsNumber() != 3 {
		t.Errorf("new Array(3).length = %v", n.AsNumber())
	}
	if r.HasOwnProperty(sized.AsObject(), vm.IndexKey(0)) {
		t.Errorf("new Array(3) should have no elements")
	}

	listed := mustNormal(t, r.CallNative(ctor, vm.Undefined, []vm.Value{vm.NumberValue(1), vm.NewString("b")}))
	expectString(t, callMethod(t, r, r.ArrayPrototype, "join", listed), "1,b")

	for _, bad := range []float64{-1, 1.5} {
		c := r.Construct(ctor, []vm.Value{vm.NumberValue(bad)})
		expectTypeError[*errors.ValueError](t, r, c)
	}

	expectBool(t, callMethod(t, r, ctorRef, "isArray", vm.Undefined, listed), true)
	expectBool(t, callMethod(t, r, ctorRef, "isArray", vm.Undefined, vm.ObjectValue(r.NewPlainObject())), false)
	expectBool(t, callMethod(t, r, ctorRef, "isArray", vm.Undefined, vm.ObjectValue(r.ArrayPrototype)), true)

	of := mustNormal(t, callMethod(t, r, ctorRef, "of", vm.Undefined, vm.NumberValue(7)))
	expectString(t, callMethod(t, r, r.ArrayPrototype, "toString", of), "7")
}

func TestArrayJoinAndPush(t *testing.T) {
	r := newTestRealm(t)

	arr := r.NewArray([]vm.Value{vm.NumberValue(1), vm.Undefined, vm.Null, vm.NewString("x")})
	expectString(t, callMethod(t, r, r.ArrayPrototype, "join", vm.ObjectValue(arr)), "1,,,x")
	expectString(t, callMethod(t, r, r.ArrayPrototype, "join", vm.ObjectValue(arr), vm.NewString("-")), "1---x")

	length := mustNormal(t, callMethod(t, r, r.ArrayPrototype, "push", vm.ObjectValue(arr), vm.True, vm.False))
	if length.AsNumber() != 6 {
		t.Errorf("push returned %v, want 6", length.AsNumber())
	}
	expectString(t, callMethod(t, r, r.ArrayPrototype, "toString", vm.ObjectValue(arr)), "1,,,x,true,false")

	// Generic over array-likes
	like := r.NewPlainObject()
	r.DefineValue(like, r.InternString("length"), vm.NumberValue(2), vm.AttrAll)
	r.DefineValue(like, r.InternString("0"), vm.NewString("a"), vm.AttrAll)
	r.DefineValue(like, r.InternString("1"), vm.NewString("b"), vm.AttrAll)
	expectString(t, callMethod(t, r, r.ArrayPrototype, "join", vm.ObjectValue(like), vm.NewString("+")), "a+b")
	mustNormal(t, callMethod(t, r, r.ArrayPrototype, "push", vm.ObjectValue(like), vm.NewString("c")))
	if n := mustNormal(t, r.GetProperty(like, r.InternString("length"))); n.AsNumber() != 3 {
		t.Errorf("push on an array-like did not update length: %v", n.AsNumber())
	}

	// Pushing onto a non-extensible array fails
	frozen := r.NewArray(nil)
	r.Object(frozen).PreventExtensions()
	expectTypeError[*errors.ValueError](t, r, callMethod(t, r, r.ArrayPrototype, "push", vm.ObjectValue(frozen), vm.NumberValue(1)))

	expectTypeError[*errors.CoercionError](t, r, callMethod(t, r, r.ArrayPrototype, "join", vm.Undefined))
}

func TestArrayIndexExtendsLength(t *testing.T) {
	r := newTestRealm(t)
	arr := r.NewArray(nil)

	set := mustNormal(t, r.Set(arr, vm.IndexKey(4), vm.NewString("e")))
	if !set.AsBoolean() {
		t.Fatalf("index assignment failed")
	}
	if n := mustNormal(t, r.GetProperty(arr, r.InternString("length"))); n.AsNumber() != 5 {
		t.Errorf("length = %v, want 5", n.AsNumber())
	}
	expectString(t, callMethod(t, r, r.ArrayPrototype, "join", vm.ObjectValue(arr)), ",,,,e")
}
