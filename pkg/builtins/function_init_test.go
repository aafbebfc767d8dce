package builtins

import (
	"testing"

	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

func TestFunctionPrototypeCallAndApply(t *testing.T) {
	r := newTestRealm(t)

	var gotThis vm.Value
	var gotArgs []vm.Value
	fn := vm.ObjectValue(r.NewNativeFunction("probe", 2, func(_ *vm.Realm, this vm.Value, args []vm.Value) vm.Completion {
		gotThis = this
		gotArgs = append([]vm.Value(nil), args...)
		return vm.NormalCompletion(vm.NumberValue(float64(len(args))))
	}))
	receiver := vm.ObjectValue(r.NewPlainObject())

	mustNormal(t, callMethod(t, r, r.FunctionPrototype, "call", fn, receiver, vm.NumberValue(1), vm.NumberValue(2)))
	if !vm.SameValue(gotThis, receiver) || len(gotArgs) != 2 {
		t.Errorf("call passed this=%s and %d args", r.Inspect(gotThis), len(gotArgs))
	}

	list := vm.ObjectValue(r.NewArray([]vm.Value{vm.NewString("a"), vm.NewString("b"), vm.NewString("c")}))
	mustNormal(t, callMethod(t, r, r.FunctionPrototype, "apply", fn, receiver, list))
	if len(gotArgs) != 3 || gotArgs[2].AsString() != "c" {
		t.Errorf("apply did not spread the array: %d args", len(gotArgs))
	}
	mustNormal(t, callMethod(t, r, r.FunctionPrototype, "apply", fn, vm.Undefined, vm.Null))
	if len(gotArgs) != 0 {
		t.Errorf("apply with null should pass no arguments")
	}

	expectTypeError[*errors.ValueError](t, r, callMethod(t, r, r.FunctionPrototype, "apply", fn, vm.Undefined, vm.NumberValue(1)))
	expectTypeError[*errors.CallError](t, r, callMethod(t, r, r.FunctionPrototype, "apply", vm.NumberValue(1), vm.Undefined))
	expectTypeError[*errors.CallError](t, r, callMethod(t, r, r.FunctionPrototype, "call", vm.ObjectValue(r.NewPlainObject())))
}

func TestFunctionToStringAndConstructor(t *testing.T) {
	r := newTestRealm(t)

	expectString(t, callMethod(t, r, r.FunctionPrototype, "toString", vm.ObjectValue(global(t, r, "Object"))),
		"function Object() { [native code] }")
	expectTypeError[*errors.CallError](t, r, callMethod(t, r, r.FunctionPrototype, "toString", vm.ObjectValue(r.NewPlainObject())))

	ctor := vm.ObjectValue(global(t, r, "Function"))
	expectTypeError[*errors.ValueError](t, r, r.CallNative(ctor, vm.Undefined, nil))
	expectTypeError[*errors.ValueError](t, r, r.Construct(ctor, nil))

	// Functions get their own metadata and inherit call/apply
	if !r.HasProperty(global(t, r, "Array"), r.InternString("apply")) {
		t.Errorf("functions should inherit Function.prototype.apply")
	}
	expectString(t, objectProtoCall(t, r, "toString", vm.ObjectValue(r.FunctionPrototype)), "[object Function]")
}
