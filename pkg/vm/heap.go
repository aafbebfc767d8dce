package vm

import (
	"fmt"
)

// Heap owns every object of a realm. Objects are addressed by ObjectRef
// handles that stay valid for the heap's lifetime; slot 0 is reserved for
// NullRef. Reclamation is not implemented here.
type Heap struct {
	objects   []*Object
	rootShape *Shape
}

// NewHeap creates a new heap with the specified initial capacity
func NewHeap(initialCapacity int) *Heap {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	objects := make([]*Object, 1, initialCapacity+1)
	return &Heap{
		objects:   objects,
		rootShape: newRootShape(),
	}
}

// Allocate creates an empty, extensible object of the given kind whose
// prototype is proto (NullRef for none). A fresh object can never close a
// prototype cycle.
func (h *Heap) Allocate(proto ObjectRef, kind ExoticKind) ObjectRef {
	if proto != NullRef && !h.Contains(proto) {
		panic(fmt.Sprintf("heap: allocate with dangling prototype %d", proto))
	}
	ref := ObjectRef(len(h.objects))
	h.objects = append(h.objects, &Object{
		ref:        ref,
		kind:       kind,
		proto:      proto,
		shape:      h.rootShape,
		extensible: true,
		primitive:  Undefined,
	})
	return ref
}

// Contains reports whether ref designates a live object of this heap.
func (h *Heap) Contains(ref ObjectRef) bool {
	return ref != NullRef && int(ref) < len(h.objects)
}

// Get retrieves the object for ref.
func (h *Heap) Get(ref ObjectRef) (*Object, bool) {
	if !h.Contains(ref) {
		return nil, false
	}
	return h.objects[ref], true
}

// Object retrieves the object for ref and panics on an invalid handle. Handles
// reachable from values are always valid, so a failure here is a heap bug.
func (h *Heap) Object(ref ObjectRef) *Object {
	obj, ok := h.Get(ref)
	if !ok {
		panic(fmt.Sprintf("heap: invalid object handle %d", ref))
	}
	return obj
}

// Size returns the number of allocated objects
func (h *Heap) Size() int {
	return len(h.objects) - 1
}

// SetPrototype replaces the prototype of ref. It refuses (returns false) when
// the object is not extensible or when the change would close a cycle.
func (h *Heap) SetPrototype(ref, proto ObjectRef) bool {
	obj := h.Object(ref)
	if obj.proto == proto {
		return true
	}
	if !obj.extensible {
		return false
	}
	for p := proto; p != NullRef; p = h.Object(p).proto {
		if p == ref {
			return false
		}
	}
	obj.proto = proto
	return true
}
