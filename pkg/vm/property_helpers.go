package vm

import "fmt"

const debugProps = false

// GetOwnProperty returns the own descriptor of key on obj. No prototype walk.
func (r *Realm) GetOwnProperty(obj ObjectRef, key PropertyKey) (PropertyDescriptor, bool) {
	return r.Heap.Object(obj).GetOwnProperty(key)
}

// HasOwnProperty reports whether obj has key as an own property.
func (r *Realm) HasOwnProperty(obj ObjectRef, key PropertyKey) bool {
	return r.Heap.Object(obj).HasOwnProperty(key)
}

// DefineOwnProperty defines or redefines an own property of obj.
func (r *Realm) DefineOwnProperty(obj ObjectRef, key PropertyKey, desc PropertyDescriptor) bool {
	ok := r.Heap.Object(obj).DefineOwnProperty(key, desc)
	if debugProps {
		fmt.Printf("[DEBUG property_helpers.go] define %s on #%d (%s) -> %v\n", key, obj, desc.Attributes, ok)
	}
	return ok
}

// DeleteOwnProperty removes an own property of obj.
func (r *Realm) DeleteOwnProperty(obj ObjectRef, key PropertyKey) bool {
	return r.Heap.Object(obj).DeleteOwnProperty(key)
}

// OwnKeys returns the own keys of obj in raw insertion order.
func (r *Realm) OwnKeys(obj ObjectRef) []PropertyKey {
	return r.Heap.Object(obj).OwnKeys()
}

// OrderedOwnKeys returns the own keys of obj in enumeration order.
func (r *Realm) OrderedOwnKeys(obj ObjectRef) []PropertyKey {
	return r.Heap.Object(obj).OrderedOwnKeys()
}

// FindProperty walks the prototype chain starting at obj and returns the first
// descriptor found for key together with the object that holds it.
func (r *Realm) FindProperty(obj ObjectRef, key PropertyKey) (PropertyDescriptor, ObjectRef, bool) {
	for current := obj; current != NullRef; {
		o := r.Heap.Object(current)
		if desc, ok := o.GetOwnProperty(key); ok {
			return desc, current, true
		}
		current = o.proto
	}
	return PropertyDescriptor{}, NullRef, false
}

// HasProperty reports whether key is found on obj or its prototype chain.
func (r *Realm) HasProperty(obj ObjectRef, key PropertyKey) bool {
	_, _, ok := r.FindProperty(obj, key)
	return ok
}

// GetProperty looks key up on obj and then along its prototype chain. A missing
// property yields undefined. Getters run with obj as the receiver.
func (r *Realm) GetProperty(obj ObjectRef, key PropertyKey) Completion {
	return r.GetPropertyWithReceiver(obj, key, ObjectValue(obj))
}

// GetPropertyWithReceiver is GetProperty with an explicit this for getters.
func (r *Realm) GetPropertyWithReceiver(obj ObjectRef, key PropertyKey, receiver Value) Completion {
	desc, holder, ok := r.FindProperty(obj, key)
	if debugProps {
		fmt.Printf("[DEBUG property_helpers.go] get %s on #%d: found=%v holder=#%d\n", key, obj, ok, holder)
	}
	if !ok {
		return NormalCompletion(Undefined)
	}
	if !desc.Accessor {
		return NormalCompletion(desc.Value)
	}
	if desc.Get.IsUndefined() {
		return NormalCompletion(Undefined)
	}
	return r.CallNative(desc.Get, receiver, nil)
}

// Set performs an ordinary property assignment obj[key] = v. The normal result
// is a boolean telling whether the assignment took effect; setter throws
// propagate.
func (r *Realm) Set(obj ObjectRef, key PropertyKey, v Value) Completion {
	desc, holder, found := r.FindProperty(obj, key)
	if found && desc.Accessor {
		if desc.Set.IsUndefined() {
			return NormalCompletion(False)
		}
		if c := r.CallNative(desc.Set, ObjectValue(obj), []Value{v}); c.IsAbrupt() {
			return c
		}
		return NormalCompletion(True)
	}
	if found && !desc.Writable() {
		return NormalCompletion(False)
	}
	target := r.Heap.Object(obj)
	if found && holder == obj {
		return NormalCompletion(BooleanValue(target.setOwnValue(key, v)))
	}
	// New own property shadowing an inherited writable one, or a fresh key
	return NormalCompletion(BooleanValue(target.DefineOwnProperty(key, DataDescriptor(v, AttrAll))))
}
