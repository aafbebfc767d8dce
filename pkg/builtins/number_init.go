package builtins

import (
	"math"

	"objcore/pkg/vm"
)

// NumberInitializer implements the Number builtin
type NumberInitializer struct{}

func (n *NumberInitializer) Name() string {
	return "Number"
}

func (n *NumberInitializer) Priority() int {
	return PriorityNumber
}

func (n *NumberInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	numberProto := r.NumberPrototype

	r.DefineNativeFunction(numberProto, "toString", 0, func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		v, c := thisPrimitiveValue(r, this, vm.TypeNumber, vm.KindNumberWrapper, "Number.prototype.toString")
		if c.IsAbrupt() {
			return c
		}
		s, c := r.ToString(v)
		if c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.NewString(s))
	}, vm.AttrBuiltin)
	r.DefineNativeFunction(numberProto, "valueOf", 0, func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		_, c := thisPrimitiveValue(r, this, vm.TypeNumber, vm.KindNumberWrapper, "Number.prototype.valueOf")
		return c
	}, vm.AttrBuiltin)

	toNumber := func(r *vm.Realm, args []vm.Value) (float64, vm.Completion) {
		if len(args) == 0 {
			return 0, vm.NormalCompletion(vm.NumberValue(0))
		}
		return r.ToNumber(args[0])
	}
	ctor := r.NewNativeConstructor("Number", 1,
		func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
			_, c := toNumber(r, args)
			return c
		},
		func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
			f, c := toNumber(r, args)
			if c.IsAbrupt() {
				return c
			}
			return vm.NormalCompletion(vm.ObjectValue(r.NewNumberObject(f)))
		})

	// Static constants
	r.DefineValue(ctor, r.InternString("NaN"), vm.NaN, vm.AttrNone)
	r.DefineValue(ctor, r.InternString("POSITIVE_INFINITY"), vm.NumberValue(math.Inf(1)), vm.AttrNone)
	r.DefineValue(ctor, r.InternString("NEGATIVE_INFINITY"), vm.NumberValue(math.Inf(-1)), vm.AttrNone)
	r.DefineValue(ctor, r.InternString("MAX_SAFE_INTEGER"), vm.NumberValue(9007199254740991), vm.AttrNone)
	r.DefineValue(ctor, r.InternString("MIN_SAFE_INTEGER"), vm.NumberValue(-9007199254740991), vm.AttrNone)
	r.DefineValue(ctor, r.InternString("EPSILON"), vm.NumberValue(math.Nextafter(1, 2)-1), vm.AttrNone)

	return installConstructor(ctx, "Number", ctor, numberProto)
}
