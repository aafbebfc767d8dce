package builtins

import (
	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

// SymbolInitializer implements the Symbol builtin and exposes the realm's
// well-known symbols as Symbol statics.
type SymbolInitializer struct{}

func (s *SymbolInitializer) Name() string {
	return "Symbol"
}

func (s *SymbolInitializer) Priority() int {
	return PrioritySymbol
}

func (s *SymbolInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	symbolProto := r.SymbolPrototype

	r.DefineNativeFunction(symbolProto, "toString", 0, func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		v, c := thisPrimitiveValue(r, this, vm.TypeSymbol, vm.KindSymbolWrapper, "Symbol.prototype.toString")
		if c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.NewString(v.AsSymbol().String()))
	}, vm.AttrBuiltin)
	r.DefineNativeFunction(symbolProto, "valueOf", 0, func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		_, c := thisPrimitiveValue(r, this, vm.TypeSymbol, vm.KindSymbolWrapper, "Symbol.prototype.valueOf")
		return c
	}, vm.AttrBuiltin)
	r.DefineNativeAccessor(symbolProto, r.InternString("description"), func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		v, c := thisPrimitiveValue(r, this, vm.TypeSymbol, vm.KindSymbolWrapper, "Symbol.prototype.description")
		if c.IsAbrupt() {
			return c
		}
		if desc, ok := v.AsSymbol().Description(); ok {
			return vm.NormalCompletion(vm.NewString(desc))
		}
		return vm.NormalCompletion(vm.Undefined)
	}, vm.Configurable)
	r.DefineNativeFunctionByKey(symbolProto, vm.SymbolKey(r.SymbolToPrimitive), "[Symbol.toPrimitive]", 1,
		func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
			_, c := thisPrimitiveValue(r, this, vm.TypeSymbol, vm.KindSymbolWrapper, "Symbol.prototype[@@toPrimitive]")
			return c
		}, vm.Configurable)
	r.DefineValue(symbolProto, vm.SymbolKey(r.SymbolToStringTag), vm.NewString("Symbol"), vm.Configurable)

	ctor := r.NewNativeFunction("Symbol", 0, func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
		desc := vm.Arg(args, 0)
		if desc.IsUndefined() {
			return vm.NormalCompletion(vm.SymbolValue(vm.NewAnonymousSymbol()))
		}
		s, c := r.ToString(desc)
		if c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.SymbolValue(vm.NewSymbol(s)))
	})

	r.DefineNativeFunction(ctor, "for", 1, func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
		key, c := r.ToString(vm.Arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.SymbolValue(r.SymbolFor(key)))
	}, vm.AttrBuiltin)
	r.DefineNativeFunction(ctor, "keyFor", 1, func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
		sym := vm.Arg(args, 0)
		if !sym.IsSymbol() {
			return r.ThrowTypeError(errors.NewCoercionError("Symbol.keyFor", sym.TypeName(),
				"%s is not a symbol", r.Inspect(sym)))
		}
		for key, registered := range r.SymbolRegistry {
			if registered == sym.AsSymbol() {
				return vm.NormalCompletion(vm.NewString(key))
			}
		}
		return vm.NormalCompletion(vm.Undefined)
	}, vm.AttrBuiltin)

	// Well-known symbols
	for _, name := range r.WellKnownSymbolNames() {
		sym, _ := r.WellKnownSymbol(name)
		r.DefineValue(ctor, r.InternString(name), vm.SymbolValue(sym), vm.AttrNone)
	}

	return installConstructor(ctx, "Symbol", ctor, symbolProto)
}
