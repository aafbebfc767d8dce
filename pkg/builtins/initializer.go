package builtins

import (
	"fmt"

	"objcore/pkg/vm"
)

const debugInit = false

// BuiltinInitializer is implemented by each builtin module
type BuiltinInitializer interface {
	// Name returns the module name (e.g., "Object", "Array", "RegExp")
	Name() string

	// Priority returns initialization order (lower = earlier)
	Priority() int

	// InitRuntime installs the module's constructors and prototype methods
	InitRuntime(ctx *RuntimeContext) error
}

// RuntimeContext provides everything needed for runtime initialization
type RuntimeContext struct {
	// The realm being populated
	Realm *vm.Realm

	// Define a global value
	DefineGlobal func(name string, value vm.Value) error
}

// Priority constants for initialization order
const (
	PriorityObject   = 0   // Object must be first (base prototype)
	PriorityFunction = 1   // Function second (inherits from Object)
	PriorityError    = 2   // Error types (thrown by everything after)
	PriorityArray    = 3   // Array (inherits from Object)
	PrioritySymbol   = 9   // Symbol statics and prototype
	PriorityString   = 10  // String primitives
	PriorityNumber   = 11  // Number primitives
	PriorityBoolean  = 12  // Boolean primitives
	PriorityRegExp   = 13  // RegExp constructor
	PriorityDate     = 103 // Date constructor
	PriorityGlobals  = 200 // globalThis and value properties
)

// NewRealm creates a realm and runs the standard initializers on it.
func NewRealm(id int) (*vm.Realm, error) {
	r := vm.NewRealm(id)
	if err := Initialize(r, GetStandardInitializers()); err != nil {
		return nil, err
	}
	return r, nil
}

// Initialize runs initializers against r in the given order and marks the
// realm initialized.
func Initialize(r *vm.Realm, initializers []BuiltinInitializer) error {
	if r.IsInitialized() {
		return fmt.Errorf("realm %d is already initialized", r.ID())
	}
	ctx := &RuntimeContext{
		Realm: r,
		DefineGlobal: func(name string, value vm.Value) error {
			key := r.InternString(name)
			if r.HasOwnProperty(r.GlobalObject, key) {
				return fmt.Errorf("global %q already defined", name)
			}
			r.DefineValue(r.GlobalObject, key, value, vm.AttrBuiltin)
			return nil
		},
	}
	for _, initializer := range initializers {
		if debugInit {
			fmt.Printf("[DEBUG initializer.go] init %s (priority %d)\n", initializer.Name(), initializer.Priority())
		}
		if err := initializer.InitRuntime(ctx); err != nil {
			return fmt.Errorf("initializing %s: %w", initializer.Name(), err)
		}
	}
	r.MarkInitialized()
	return nil
}

// installConstructor links ctor and proto through the prototype and
// constructor properties and registers ctor as a global.
func installConstructor(ctx *RuntimeContext, name string, ctor, proto vm.ObjectRef) error {
	r := ctx.Realm
	r.DefineValue(ctor, r.InternString("prototype"), vm.ObjectValue(proto), vm.AttrNone)
	r.DefineValue(proto, r.InternString("constructor"), vm.ObjectValue(ctor), vm.AttrBuiltin)
	return ctx.DefineGlobal(name, vm.ObjectValue(ctor))
}
