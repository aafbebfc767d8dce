package builtins

import (
	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

// BooleanInitializer implements the Boolean builtin
type BooleanInitializer struct{}

func (b *BooleanInitializer) Name() string {
	return "Boolean"
}

func (b *BooleanInitializer) Priority() int {
	return PriorityBoolean
}

func (b *BooleanInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	booleanProto := r.BooleanPrototype

	r.DefineNativeFunction(booleanProto, "toString", 0, func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		v, c := thisPrimitiveValue(r, this, vm.TypeBoolean, vm.KindBooleanWrapper, "Boolean.prototype.toString")
		if c.IsAbrupt() {
			return c
		}
		if v.AsBoolean() {
			return vm.NormalCompletion(vm.NewString("true"))
		}
		return vm.NormalCompletion(vm.NewString("false"))
	}, vm.AttrBuiltin)
	r.DefineNativeFunction(booleanProto, "valueOf", 0, func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		_, c := thisPrimitiveValue(r, this, vm.TypeBoolean, vm.KindBooleanWrapper, "Boolean.prototype.valueOf")
		return c
	}, vm.AttrBuiltin)

	ctor := r.NewNativeConstructor("Boolean", 1,
		func(_ *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
			return vm.NormalCompletion(vm.BooleanValue(vm.Arg(args, 0).IsTruthy()))
		},
		func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
			return vm.NormalCompletion(vm.ObjectValue(r.NewBooleanObject(vm.Arg(args, 0).IsTruthy())))
		})
	return installConstructor(ctx, "Boolean", ctor, booleanProto)
}

// thisPrimitiveValue unwraps this for the primitive prototype methods: a
// primitive of type typ is returned as-is, a wrapper of kind yields its
// primitive, anything else throws. The completion carries the primitive.
func thisPrimitiveValue(r *vm.Realm, this vm.Value, typ vm.ValueType, kind vm.ExoticKind, op string) (vm.Value, vm.Completion) {
	if this.Type() == typ {
		return this, vm.NormalCompletion(this)
	}
	if this.IsObject() {
		if obj := r.Object(this.AsObject()); obj.Kind() == kind {
			return obj.PrimitiveValue(), vm.NormalCompletion(obj.PrimitiveValue())
		}
	}
	return vm.Undefined, r.ThrowTypeError(errors.NewCoercionError(op, this.TypeName(),
		"%s requires that 'this' be a %s", op, typ))
}
