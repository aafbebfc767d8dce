package builtins

import (
	"objcore/pkg/vm"
)

// StringInitializer implements the String builtin
type StringInitializer struct{}

func (s *StringInitializer) Name() string {
	return "String"
}

func (s *StringInitializer) Priority() int {
	return PriorityString
}

func (s *StringInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	stringProto := r.StringPrototype

	thisString := func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		_, c := thisPrimitiveValue(r, this, vm.TypeString, vm.KindStringWrapper, "String.prototype.valueOf")
		return c
	}
	r.DefineNativeFunction(stringProto, "toString", 0, thisString, vm.AttrBuiltin)
	r.DefineNativeFunction(stringProto, "valueOf", 0, thisString, vm.AttrBuiltin)

	toStringArg := func(r *vm.Realm, args []vm.Value, call bool) (string, vm.Completion) {
		if len(args) == 0 {
			return "", vm.NormalCompletion(vm.NewString(""))
		}
		// String(sym) describes the symbol instead of throwing
		if call && args[0].IsSymbol() {
			desc := args[0].AsSymbol().String()
			return desc, vm.NormalCompletion(vm.NewString(desc))
		}
		return r.ToString(args[0])
	}
	ctor := r.NewNativeConstructor("String", 1,
		func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
			s, c := toStringArg(r, args, true)
			if c.IsAbrupt() {
				return c
			}
			return vm.NormalCompletion(vm.NewString(s))
		},
		func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
			s, c := toStringArg(r, args, false)
			if c.IsAbrupt() {
				return c
			}
			return vm.NormalCompletion(vm.ObjectValue(r.NewStringObject(s)))
		})
	return installConstructor(ctx, "String", ctor, stringProto)
}
