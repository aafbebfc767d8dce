package builtins

import (
	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

// ObjectInitializer implements the Object builtin
type ObjectInitializer struct{}

func (o *ObjectInitializer) Name() string {
	return "Object"
}

func (o *ObjectInitializer) Priority() int {
	return PriorityObject // Must be first (base prototype)
}

func (o *ObjectInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	objectProto := r.ObjectPrototype

	// Add prototype methods
	r.DefineNativeFunction(objectProto, "hasOwnProperty", 1, objectHasOwnPropertyImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(objectProto, "toString", 0, objectToStringImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(objectProto, "toLocaleString", 0, objectToLocaleStringImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(objectProto, "valueOf", 0, objectValueOfImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(objectProto, "propertyIsEnumerable", 1, objectPropertyIsEnumerableImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(objectProto, "isPrototypeOf", 1, objectIsPrototypeOfImpl, vm.AttrBuiltin)

	// Create Object constructor; calling and constructing behave the same
	ctor := r.NewNativeConstructor("Object", 1, objectConstructImpl, func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
		return objectConstructImpl(r, vm.Undefined, args)
	})

	// Static methods
	r.DefineNativeFunction(ctor, "create", 2, objectCreateImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(ctor, "defineProperty", 3, objectDefinePropertyImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(ctor, "getOwnPropertyDescriptor", 2, objectGetOwnPropertyDescriptorImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(ctor, "getPrototypeOf", 1, objectGetPrototypeOfImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(ctor, "setPrototypeOf", 2, objectSetPrototypeOfImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(ctor, "keys", 1, objectKeysImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(ctor, "preventExtensions", 1, objectPreventExtensionsImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(ctor, "isExtensible", 1, objectIsExtensibleImpl, vm.AttrBuiltin)

	return installConstructor(ctx, "Object", ctor, objectProto)
}

// --- Object.prototype ---

// hasOwnProperty converts this before the key.
func objectHasOwnPropertyImpl(r *vm.Realm, this vm.Value, args []vm.Value) vm.Completion {
	boxed := r.ToObject(this)
	if boxed.IsAbrupt() {
		return boxed
	}
	key, c := r.ToPropertyKey(vm.Arg(args, 0))
	if c.IsAbrupt() {
		return c
	}
	return vm.NormalCompletion(vm.BooleanValue(r.HasOwnProperty(boxed.Value().AsObject(), key)))
}

func objectToStringImpl(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
	if this.IsUndefined() {
		return vm.NormalCompletion(vm.NewString("[object Undefined]"))
	}
	if this.IsNull() {
		return vm.NormalCompletion(vm.NewString("[object Null]"))
	}
	boxed := r.ToObject(this)
	if boxed.IsAbrupt() {
		return boxed
	}
	obj := boxed.Value().AsObject()

	tag := r.GetProperty(obj, vm.SymbolKey(r.SymbolToStringTag))
	if tag.IsAbrupt() {
		return tag
	}
	name := r.Object(obj).Kind().BuiltinTag()
	if tag.Value().IsString() {
		name = tag.Value().AsString()
	}
	return vm.NormalCompletion(vm.NewString("[object " + name + "]"))
}

// toLocaleString has no locale behaviour of its own; it defers to toString.
func objectToLocaleStringImpl(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
	boxed := r.ToObject(this)
	if boxed.IsAbrupt() {
		return boxed
	}
	return r.Invoke(boxed.Value().AsObject(), r.InternString("toString"), nil)
}

func objectValueOfImpl(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
	boxed := r.ToObject(this)
	if boxed.IsAbrupt() {
		return boxed
	}
	return vm.NormalCompletion(r.Object(boxed.Value().AsObject()).ValueOf())
}

// propertyIsEnumerable converts the key before this.
func objectPropertyIsEnumerableImpl(r *vm.Realm, this vm.Value, args []vm.Value) vm.Completion {
	key, c := r.ToPropertyKey(vm.Arg(args, 0))
	if c.IsAbrupt() {
		return c
	}
	boxed := r.ToObject(this)
	if boxed.IsAbrupt() {
		return boxed
	}
	desc, ok := r.GetOwnProperty(boxed.Value().AsObject(), key)
	if !ok {
		return vm.NormalCompletion(vm.False)
	}
	return vm.NormalCompletion(vm.BooleanValue(desc.Enumerable()))
}

func objectIsPrototypeOfImpl(r *vm.Realm, this vm.Value, args []vm.Value) vm.Completion {
	target := vm.Arg(args, 0)
	if !target.IsObject() {
		return vm.NormalCompletion(vm.False)
	}
	boxed := r.ToObject(this)
	if boxed.IsAbrupt() {
		return boxed
	}
	self := boxed.Value()
	for proto := r.Object(target.AsObject()).Prototype(); proto != vm.NullRef; proto = r.Object(proto).Prototype() {
		if vm.SameValue(vm.ObjectValue(proto), self) {
			return vm.NormalCompletion(vm.True)
		}
	}
	return vm.NormalCompletion(vm.False)
}

// --- Object constructor and statics ---

func objectConstructImpl(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
	value := vm.Arg(args, 0)
	if value.IsNullish() {
		return vm.NormalCompletion(vm.ObjectValue(r.NewPlainObject()))
	}
	return r.ToObject(value)
}

func objectCreateImpl(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
	protoArg := vm.Arg(args, 0)
	var proto vm.ObjectRef
	switch {
	case protoArg.IsNull():
		proto = vm.NullRef
	case protoArg.IsObject():
		proto = protoArg.AsObject()
	default:
		return r.ThrowTypeError(errors.NewValueError("Object.create",
			"Object prototype may only be an Object or null: %s", r.Inspect(protoArg)))
	}
	obj := r.NewObject(proto)
	if props := vm.Arg(args, 1); !props.IsUndefined() {
		if c := defineProperties(r, obj, props); c.IsAbrupt() {
			return c
		}
	}
	return vm.NormalCompletion(vm.ObjectValue(obj))
}

func defineProperties(r *vm.Realm, obj vm.ObjectRef, props vm.Value) vm.Completion {
	boxed := r.ToObject(props)
	if boxed.IsAbrupt() {
		return boxed
	}
	source := boxed.Value().AsObject()
	for _, key := range r.OrderedOwnKeys(source) {
		if desc, _ := r.GetOwnProperty(source, key); !desc.Enumerable() {
			continue
		}
		attributes := r.GetProperty(source, key)
		if attributes.IsAbrupt() {
			return attributes
		}
		if c := definePropertyFromObject(r, "Object.create", obj, key, attributes.Value()); c.IsAbrupt() {
			return c
		}
	}
	return vm.NormalCompletion(vm.Undefined)
}

func objectDefinePropertyImpl(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
	target := vm.Arg(args, 0)
	if !target.IsObject() {
		return r.ThrowTypeError(errors.NewValueError("Object.defineProperty",
			"Object.defineProperty called on non-object"))
	}
	key, c := r.ToPropertyKey(vm.Arg(args, 1))
	if c.IsAbrupt() {
		return c
	}
	if c := definePropertyFromObject(r, "Object.defineProperty", target.AsObject(), key, vm.Arg(args, 2)); c.IsAbrupt() {
		return c
	}
	return vm.NormalCompletion(target)
}

// descriptorFields is a descriptor object as read from script: every field
// may be absent.
type descriptorFields struct {
	present map[string]bool
	values  map[string]vm.Value
}

var descriptorFieldNames = []string{"enumerable", "configurable", "value", "writable", "get", "set"}

func readDescriptorFields(r *vm.Realm, descObj vm.ObjectRef) (descriptorFields, vm.Completion) {
	fields := descriptorFields{present: map[string]bool{}, values: map[string]vm.Value{}}
	for _, name := range descriptorFieldNames {
		key := r.InternString(name)
		if !r.HasProperty(descObj, key) {
			continue
		}
		c := r.GetProperty(descObj, key)
		if c.IsAbrupt() {
			return fields, c
		}
		fields.present[name] = true
		fields.values[name] = c.Value()
	}
	return fields, vm.NormalCompletion(vm.Undefined)
}

func (f descriptorFields) flag(attrs vm.Attributes, name string, bit vm.Attributes) vm.Attributes {
	if !f.present[name] {
		return attrs
	}
	if f.values[name].IsTruthy() {
		return attrs | bit
	}
	return attrs &^ bit
}

// definePropertyFromObject reads a descriptor object and applies it. Fields
// the descriptor leaves out keep their current value, or default to
// false/undefined for a new property.
func definePropertyFromObject(r *vm.Realm, op string, obj vm.ObjectRef, key vm.PropertyKey, attributes vm.Value) vm.Completion {
	if !attributes.IsObject() {
		return r.ThrowTypeError(errors.NewValueError(op, "Property description must be an object: %s", r.Inspect(attributes)))
	}
	f, c := readDescriptorFields(r, attributes.AsObject())
	if c.IsAbrupt() {
		return c
	}
	isAccessor := f.present["get"] || f.present["set"]
	if isAccessor && (f.present["value"] || f.present["writable"]) {
		return r.ThrowTypeError(errors.NewValueError(op,
			"Invalid property descriptor. Cannot both specify accessors and a value or writable attribute"))
	}
	for _, name := range []string{"get", "set"} {
		if fn := f.values[name]; f.present[name] && !fn.IsUndefined() && !r.IsCallable(fn) {
			return r.ThrowTypeError(errors.NewCallError(name, "%s must be a function: %s", name, r.Inspect(fn)))
		}
	}

	desc, exists := r.GetOwnProperty(obj, key)
	if !exists {
		desc = vm.DataDescriptor(vm.Undefined, vm.AttrNone)
	}
	switch {
	case isAccessor && !desc.Accessor:
		desc = vm.AccessorDescriptor(vm.Undefined, vm.Undefined, desc.Attributes)
	case (f.present["value"] || f.present["writable"]) && desc.Accessor:
		desc = vm.DataDescriptor(vm.Undefined, desc.Attributes&^vm.Writable)
	}
	desc.Attributes = f.flag(desc.Attributes, "enumerable", vm.Enumerable)
	desc.Attributes = f.flag(desc.Attributes, "configurable", vm.Configurable)
	if desc.Accessor {
		if f.present["get"] {
			desc.Get = f.values["get"]
		}
		if f.present["set"] {
			desc.Set = f.values["set"]
		}
	} else {
		desc.Attributes = f.flag(desc.Attributes, "writable", vm.Writable)
		if f.present["value"] {
			desc.Value = f.values["value"]
		}
	}

	if !r.DefineOwnProperty(obj, key, desc) {
		return r.ThrowTypeError(errors.NewValueError(op, "Cannot redefine property: %s", key))
	}
	return vm.NormalCompletion(vm.True)
}

func objectGetOwnPropertyDescriptorImpl(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
	boxed := r.ToObject(vm.Arg(args, 0))
	if boxed.IsAbrupt() {
		return boxed
	}
	key, c := r.ToPropertyKey(vm.Arg(args, 1))
	if c.IsAbrupt() {
		return c
	}
	desc, ok := r.GetOwnProperty(boxed.Value().AsObject(), key)
	if !ok {
		return vm.NormalCompletion(vm.Undefined)
	}
	result := r.NewPlainObject()
	if desc.Accessor {
		r.DefineValue(result, r.InternString("get"), desc.Get, vm.AttrAll)
		r.DefineValue(result, r.InternString("set"), desc.Set, vm.AttrAll)
	} else {
		r.DefineValue(result, r.InternString("value"), desc.Value, vm.AttrAll)
		r.DefineValue(result, r.InternString("writable"), vm.BooleanValue(desc.Writable()), vm.AttrAll)
	}
	r.DefineValue(result, r.InternString("enumerable"), vm.BooleanValue(desc.Enumerable()), vm.AttrAll)
	r.DefineValue(result, r.InternString("configurable"), vm.BooleanValue(desc.Configurable()), vm.AttrAll)
	return vm.NormalCompletion(vm.ObjectValue(result))
}

func objectGetPrototypeOfImpl(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
	boxed := r.ToObject(vm.Arg(args, 0))
	if boxed.IsAbrupt() {
		return boxed
	}
	return vm.NormalCompletion(vm.ObjectValue(r.Object(boxed.Value().AsObject()).Prototype()))
}

func objectSetPrototypeOfImpl(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
	target := vm.Arg(args, 0)
	protoArg := vm.Arg(args, 1)
	if target.IsNullish() {
		return r.ThrowTypeError(errors.NewCoercionError("Object.setPrototypeOf", target.TypeName(),
			"Object.setPrototypeOf called on null or undefined"))
	}
	if !protoArg.IsObject() && !protoArg.IsNull() {
		return r.ThrowTypeError(errors.NewValueError("Object.setPrototypeOf",
			"Object prototype may only be an Object or null: %s", r.Inspect(protoArg)))
	}
	if !target.IsObject() {
		return vm.NormalCompletion(target)
	}
	proto := vm.NullRef
	if protoArg.IsObject() {
		proto = protoArg.AsObject()
	}
	if !r.Heap.SetPrototype(target.AsObject(), proto) {
		return r.ThrowTypeError(errors.NewValueError("Object.setPrototypeOf",
			"Cyclic __proto__ value or non-extensible object"))
	}
	return vm.NormalCompletion(target)
}

func objectKeysImpl(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
	boxed := r.ToObject(vm.Arg(args, 0))
	if boxed.IsAbrupt() {
		return boxed
	}
	obj := boxed.Value().AsObject()
	var names []vm.Value
	for _, key := range r.OrderedOwnKeys(obj) {
		if key.IsSymbol() {
			continue
		}
		if desc, _ := r.GetOwnProperty(obj, key); desc.Enumerable() {
			names = append(names, vm.NewString(key.Name()))
		}
	}
	return vm.NormalCompletion(vm.ObjectValue(r.NewArray(names)))
}

func objectPreventExtensionsImpl(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
	target := vm.Arg(args, 0)
	if target.IsObject() {
		r.Object(target.AsObject()).PreventExtensions()
	}
	return vm.NormalCompletion(target)
}

func objectIsExtensibleImpl(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
	target := vm.Arg(args, 0)
	if !target.IsObject() {
		return vm.NormalCompletion(vm.False)
	}
	return vm.NormalCompletion(vm.BooleanValue(r.Object(target.AsObject()).IsExtensible()))
}
