package vm

import (
	"fmt"

	"objcore/pkg/errors"
)

const debugCalls = false

// CallNative invokes a callable value with the given this-binding and
// arguments. Calling anything that is not callable throws a TypeError.
//
// Parameters:
//   - fn: the function object to call
//   - this: the this-binding (Undefined for plain calls)
//   - args: argument list; callees must not retain it
func (r *Realm) CallNative(fn Value, this Value, args []Value) Completion {
	if !r.IsCallable(fn) {
		return r.ThrowTypeError(errors.NewCallError("", "%s is not a function", r.Inspect(fn)))
	}
	callee := r.Heap.Object(fn.ref).function
	if debugCalls {
		fmt.Printf("[DEBUG call.go] calling %q (arity %d) with %d args\n", callee.Name, callee.Arity, len(args))
	}
	return callee.Fn(r, this, args)
}

// Construct runs the construct hook of fn. Values without one throw a
// TypeError.
func (r *Realm) Construct(fn Value, args []Value) Completion {
	if !fn.IsObject() || !r.Heap.Object(fn.ref).IsConstructor() {
		return r.ThrowTypeError(errors.NewCallError("", "%s is not a constructor", r.Inspect(fn)))
	}
	return r.Heap.Object(fn.ref).function.Ctor(r, Undefined, args)
}

// Invoke looks up key on target (through the prototype chain) and calls the
// result with target as this. A missing or non-callable method throws a
// TypeError naming the key.
func (r *Realm) Invoke(target ObjectRef, key PropertyKey, args []Value) Completion {
	method := r.GetProperty(target, key)
	if method.IsAbrupt() {
		return method
	}
	if !r.IsCallable(method.value) {
		return r.ThrowTypeError(errors.NewCallError(key.String(), "%s is not a function (got %s)", key.String(), r.TypeOf(method.value)))
	}
	return r.CallNative(method.value, ObjectValue(target), args)
}

// Arg returns args[i], or undefined when fewer arguments were passed.
func Arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}
