package builtins

import (
	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

// FunctionInitializer implements Function.prototype. Functions can only be
// created natively, so the Function constructor refuses to build new ones.
type FunctionInitializer struct{}

func (f *FunctionInitializer) Name() string {
	return "Function"
}

func (f *FunctionInitializer) Priority() int {
	return PriorityFunction
}

func (f *FunctionInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	functionProto := r.FunctionPrototype

	r.DefineNativeFunction(functionProto, "call", 1, functionCallImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(functionProto, "apply", 2, functionApplyImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(functionProto, "toString", 0, functionToStringImpl, vm.AttrBuiltin)

	refuse := func(r *vm.Realm, _ vm.Value, _ []vm.Value) vm.Completion {
		return r.ThrowTypeError(errors.NewValueError("Function", "dynamic function creation is not supported"))
	}
	ctor := r.NewNativeConstructor("Function", 1, refuse, refuse)
	return installConstructor(ctx, "Function", ctor, functionProto)
}

func functionCallImpl(r *vm.Realm, this vm.Value, args []vm.Value) vm.Completion {
	var rest []vm.Value
	if len(args) > 1 {
		rest = args[1:]
	}
	return r.CallNative(this, vm.Arg(args, 0), rest)
}

func functionApplyImpl(r *vm.Realm, this vm.Value, args []vm.Value) vm.Completion {
	if !r.IsCallable(this) {
		return r.ThrowTypeError(errors.NewCallError("Function.prototype.apply", "%s is not a function", r.Inspect(this)))
	}
	list := vm.Arg(args, 1)
	if list.IsNullish() {
		return r.CallNative(this, vm.Arg(args, 0), nil)
	}
	if !list.IsObject() {
		return r.ThrowTypeError(errors.NewValueError("Function.prototype.apply",
			"CreateListFromArrayLike called on non-object"))
	}
	elems, c := arrayLikeToList(r, list.AsObject())
	if c.IsAbrupt() {
		return c
	}
	return r.CallNative(this, vm.Arg(args, 0), elems)
}

func functionToStringImpl(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
	if !r.IsCallable(this) {
		return r.ThrowTypeError(errors.NewCallError("Function.prototype.toString",
			"Function.prototype.toString requires that 'this' be a Function"))
	}
	name := r.Object(this.AsObject()).Function().Name
	return vm.NormalCompletion(vm.NewString("function " + name + "() { [native code] }"))
}
