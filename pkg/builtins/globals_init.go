package builtins

import (
	"math"

	"objcore/pkg/vm"
)

// GlobalsInitializer installs the value properties of the global object.
type GlobalsInitializer struct{}

func (g *GlobalsInitializer) Name() string {
	return "Globals"
}

func (g *GlobalsInitializer) Priority() int {
	return PriorityGlobals
}

func (g *GlobalsInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	global := r.GlobalObject

	// Non-writable, non-enumerable, non-configurable
	r.DefineValue(global, r.InternString("undefined"), vm.Undefined, vm.AttrNone)
	r.DefineValue(global, r.InternString("NaN"), vm.NaN, vm.AttrNone)
	r.DefineValue(global, r.InternString("Infinity"), vm.NumberValue(math.Inf(1)), vm.AttrNone)

	return ctx.DefineGlobal("globalThis", vm.ObjectValue(global))
}
