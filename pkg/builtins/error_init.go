package builtins

import (
	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

// ErrorInitializer implements Error and TypeError. TypeError is what the core
// throws for every failed coercion or call.
type ErrorInitializer struct{}

func (e *ErrorInitializer) Name() string {
	return "Error"
}

func (e *ErrorInitializer) Priority() int {
	return PriorityError
}

func (e *ErrorInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm

	errorProto := r.ErrorPrototype
	r.DefineValue(errorProto, r.InternString("name"), vm.NewString("Error"), vm.AttrBuiltin)
	r.DefineValue(errorProto, r.InternString("message"), vm.NewString(""), vm.AttrBuiltin)
	r.DefineNativeFunction(errorProto, "toString", 0, errorToStringImpl, vm.AttrBuiltin)

	errorCtor := newErrorConstructor(r, "Error", errorProto)
	if err := installConstructor(ctx, "Error", errorCtor, errorProto); err != nil {
		return err
	}

	typeErrorProto := r.TypeErrorPrototype
	r.DefineValue(typeErrorProto, r.InternString("name"), vm.NewString("TypeError"), vm.AttrBuiltin)
	r.DefineValue(typeErrorProto, r.InternString("message"), vm.NewString(""), vm.AttrBuiltin)

	typeErrorCtor := newErrorConstructor(r, "TypeError", typeErrorProto)
	// TypeError inherits its statics from Error
	r.Heap.SetPrototype(typeErrorCtor, errorCtor)
	return installConstructor(ctx, "TypeError", typeErrorCtor, typeErrorProto)
}

func newErrorConstructor(r *vm.Realm, name string, proto vm.ObjectRef) vm.ObjectRef {
	construct := func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
		message := ""
		if msg := vm.Arg(args, 0); !msg.IsUndefined() {
			s, c := r.ToString(msg)
			if c.IsAbrupt() {
				return c
			}
			message = s
		}
		errRef := r.NewError(proto, message)
		if message == "" && !vm.Arg(args, 0).IsUndefined() {
			// An explicitly empty message is still an own property
			r.DefineValue(errRef, r.InternString("message"), vm.NewString(""), vm.AttrBuiltin)
		}
		return vm.NormalCompletion(vm.ObjectValue(errRef))
	}
	return r.NewNativeConstructor(name, 1, construct, construct)
}

func errorToStringImpl(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
	if !this.IsObject() {
		return r.ThrowTypeError(errors.NewCoercionError("Error.prototype.toString", this.TypeName(),
			"Error.prototype.toString called on non-object"))
	}
	obj := this.AsObject()

	read := func(key string, fallback string) (string, vm.Completion) {
		c := r.GetProperty(obj, r.InternString(key))
		if c.IsAbrupt() {
			return "", c
		}
		if c.Value().IsUndefined() {
			return fallback, c
		}
		return r.ToString(c.Value())
	}
	name, c := read("name", "Error")
	if c.IsAbrupt() {
		return c
	}
	message, c := read("message", "")
	if c.IsAbrupt() {
		return c
	}
	switch {
	case name == "":
		return vm.NormalCompletion(vm.NewString(message))
	case message == "":
		return vm.NormalCompletion(vm.NewString(name))
	default:
		return vm.NormalCompletion(vm.NewString(name + ": " + message))
	}
}
