package vm

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const maxInspectDepth = 8

// Inspect renders v for developers. It never runs user code: accessors are
// shown as [Getter]/[Setter] instead of being invoked.
func (r *Realm) Inspect(v Value) string {
	return r.inspectWithDepth(v, false, 0, map[ObjectRef]bool{})
}

// InspectNested is used for nested contexts where strings should be quoted
func (r *Realm) InspectNested(v Value) string {
	return r.inspectWithDepth(v, true, 0, map[ObjectRef]bool{})
}

func (r *Realm) inspectWithDepth(v Value, nested bool, depth int, seen map[ObjectRef]bool) string {
	switch v.typ {
	case TypeString:
		if nested {
			return fmt.Sprintf("%q", v.str)
		}
		return v.str
	case TypeSymbol:
		return v.sym.String()
	case TypeObject:
	default:
		s, _ := primitiveString(v)
		if v.IsNumber() && v.num == 0 && math.Signbit(v.num) {
			return "-0"
		}
		return s
	}

	obj, ok := r.Heap.Get(v.ref)
	if !ok {
		return fmt.Sprintf("<dangling #%d>", v.ref)
	}
	if seen[obj.ref] {
		return "[Circular]"
	}
	if depth >= maxInspectDepth {
		return "[Object]"
	}
	seen[obj.ref] = true
	defer delete(seen, obj.ref)

	switch obj.kind {
	case KindFunction:
		if obj.function != nil && obj.function.Name != "" {
			return fmt.Sprintf("[Function: %s]", obj.function.Name)
		}
		return "[Function (anonymous)]"
	case KindBooleanWrapper, KindNumberWrapper, KindStringWrapper, KindSymbolWrapper:
		tag := strings.ToUpper(obj.kind.String()[:1]) + obj.kind.String()[1:]
		return fmt.Sprintf("[%s: %s]", tag, r.inspectWithDepth(obj.primitive, true, depth+1, seen))
	case KindDate:
		return formatTimeValue(obj.timeValue)
	case KindRegExp:
		if obj.regexp != nil {
			return "/" + obj.regexp.source + "/" + obj.regexp.flags
		}
	case KindError:
		name := "Error"
		if desc, _, found := r.FindProperty(obj.ref, StringKey("name")); found && desc.IsData() && desc.Value.IsString() {
			name = desc.Value.str
		}
		if desc, _, found := r.FindProperty(obj.ref, StringKey("message")); found && desc.IsData() && desc.Value.IsString() && desc.Value.str != "" {
			return name + ": " + desc.Value.str
		}
		return name
	case KindArray:
		return r.inspectArray(obj, depth, seen)
	}

	var b strings.Builder
	b.WriteString("{")
	first := true
	for _, key := range obj.OrderedOwnKeys() {
		desc, _ := obj.GetOwnProperty(key)
		if !desc.Enumerable() {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(key.String())
		b.WriteString(": ")
		b.WriteString(r.inspectSlot(desc, depth, seen))
	}
	b.WriteString("}")
	return b.String()
}

func (r *Realm) inspectArray(obj *Object, depth int, seen map[ObjectRef]bool) string {
	length := 0
	if desc, ok := obj.GetOwnProperty(StringKey("length")); ok && desc.Value.IsNumber() {
		length = int(desc.Value.num)
	}
	elems := make([]string, 0, length)
	for i := 0; i < length; i++ {
		desc, ok := obj.GetOwnProperty(IndexKey(i))
		if !ok {
			elems = append(elems, "<empty>")
			continue
		}
		elems = append(elems, r.inspectSlot(desc, depth, seen))
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

func (r *Realm) inspectSlot(desc PropertyDescriptor, depth int, seen map[ObjectRef]bool) string {
	if !desc.Accessor {
		return r.inspectWithDepth(desc.Value, true, depth+1, seen)
	}
	switch {
	case !desc.Get.IsUndefined() && !desc.Set.IsUndefined():
		return "[Getter/Setter]"
	case !desc.Get.IsUndefined():
		return "[Getter]"
	default:
		return "[Setter]"
	}
}

// formatTimeValue renders a Date time value in ISO form.
func formatTimeValue(ms float64) string {
	if math.IsNaN(ms) {
		return "Invalid Date"
	}
	return time.UnixMilli(int64(ms)).UTC().Format("2006-01-02T15:04:05.000Z")
}
