package builtins

import (
	"math"
	"strings"

	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

// ArrayInitializer implements the Array builtin
type ArrayInitializer struct{}

func (a *ArrayInitializer) Name() string {
	return "Array"
}

func (a *ArrayInitializer) Priority() int {
	return PriorityArray
}

func (a *ArrayInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	arrayProto := r.ArrayPrototype

	r.DefineNativeFunction(arrayProto, "join", 1, arrayJoinImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(arrayProto, "push", 1, arrayPushImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(arrayProto, "toString", 0, func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		return arrayJoinImpl(r, this, nil)
	}, vm.AttrBuiltin)

	ctor := r.NewNativeConstructor("Array", 1, arrayConstructImpl, arrayConstructImpl)
	r.DefineNativeFunction(ctor, "isArray", 1, func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
		v := vm.Arg(args, 0)
		return vm.NormalCompletion(vm.BooleanValue(v.IsObject() && r.Object(v.AsObject()).Kind() == vm.KindArray))
	}, vm.AttrBuiltin)
	r.DefineNativeFunction(ctor, "of", 0, func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
		return vm.NormalCompletion(vm.ObjectValue(r.NewArray(args)))
	}, vm.AttrBuiltin)

	return installConstructor(ctx, "Array", ctor, arrayProto)
}

func arrayConstructImpl(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
	if len(args) != 1 || !args[0].IsNumber() {
		return vm.NormalCompletion(vm.ObjectValue(r.NewArray(args)))
	}
	n := args[0].AsNumber()
	if n < 0 || n != math.Trunc(n) || n > math.MaxUint32 {
		return r.ThrowTypeError(errors.NewValueError("Array", "Invalid array length: %s", r.Inspect(args[0])))
	}
	arr := r.NewArray(nil)
	r.DefineOwnProperty(arr, r.InternString("length"), vm.DataDescriptor(vm.NumberValue(n), vm.Writable))
	return vm.NormalCompletion(vm.ObjectValue(arr))
}

// lengthOf reads obj.length and clamps it to a usable element count.
func lengthOf(r *vm.Realm, obj vm.ObjectRef) (int, vm.Completion) {
	c := r.GetProperty(obj, r.InternString("length"))
	if c.IsAbrupt() {
		return 0, c
	}
	f, c := r.ToNumber(c.Value())
	if c.IsAbrupt() {
		return 0, c
	}
	if math.IsNaN(f) || f <= 0 {
		return 0, c
	}
	return int(math.Min(math.Trunc(f), math.MaxUint32)), c
}

// arrayLikeToList reads elements 0..length-1 of an array-like object.
func arrayLikeToList(r *vm.Realm, obj vm.ObjectRef) ([]vm.Value, vm.Completion) {
	n, c := lengthOf(r, obj)
	if c.IsAbrupt() {
		return nil, c
	}
	elems := make([]vm.Value, 0, n)
	for i := 0; i < n; i++ {
		el := r.GetProperty(obj, vm.IndexKey(i))
		if el.IsAbrupt() {
			return nil, el
		}
		elems = append(elems, el.Value())
	}
	return elems, vm.NormalCompletion(vm.Undefined)
}

func arrayJoinImpl(r *vm.Realm, this vm.Value, args []vm.Value) vm.Completion {
	boxed := r.ToObject(this)
	if boxed.IsAbrupt() {
		return boxed
	}
	sep := ","
	if s := vm.Arg(args, 0); !s.IsUndefined() {
		str, c := r.ToString(s)
		if c.IsAbrupt() {
			return c
		}
		sep = str
	}
	elems, c := arrayLikeToList(r, boxed.Value().AsObject())
	if c.IsAbrupt() {
		return c
	}
	parts := make([]string, len(elems))
	for i, el := range elems {
		if el.IsNullish() {
			continue
		}
		str, c := r.ToString(el)
		if c.IsAbrupt() {
			return c
		}
		parts[i] = str
	}
	return vm.NormalCompletion(vm.NewString(strings.Join(parts, sep)))
}

func arrayPushImpl(r *vm.Realm, this vm.Value, args []vm.Value) vm.Completion {
	boxed := r.ToObject(this)
	if boxed.IsAbrupt() {
		return boxed
	}
	obj := boxed.Value().AsObject()
	n, c := lengthOf(r, obj)
	if c.IsAbrupt() {
		return c
	}
	for _, arg := range args {
		set := r.Set(obj, vm.IndexKey(n), arg)
		if set.IsAbrupt() {
			return set
		}
		if !set.Value().AsBoolean() {
			return r.ThrowTypeError(errors.NewValueError("Array.prototype.push", "Cannot add property %d, object is not extensible", n))
		}
		n++
	}
	newLength := vm.NumberValue(float64(n))
	if set := r.Set(obj, r.InternString("length"), newLength); set.IsAbrupt() {
		return set
	}
	return vm.NormalCompletion(newLength)
}
