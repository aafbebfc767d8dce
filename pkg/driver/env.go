package driver

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"objcore/pkg/vm"
)

const debugDriver = false

func debugPrintf(format string, args ...interface{}) {
	if debugDriver {
		fmt.Printf(format, args...)
	}
}

// env binds host-chosen names to objects in one realm and turns YAML nodes
// into values. It is shared by scenario files and the interactive session.
//
// Value notation (YAML scalars unless noted):
//   - quoted scalars are always string literals
//   - null, booleans and numbers (including .nan and .inf) map directly
//   - plain `undefined` is Undefined
//   - plain `$path` names an object: a bound name or a global, followed by
//     dotted property reads (`$Object.prototype`, `$arr.length`)
//   - plain `Symbol.<name>` is the realm's well-known symbol
//   - a sequence builds a fresh Array, a mapping a fresh plain object
type env struct {
	realm *vm.Realm
	names map[string]vm.ObjectRef
	order []string
}

func newEnv(r *vm.Realm) *env {
	return &env{realm: r, names: make(map[string]vm.ObjectRef)}
}

func (e *env) bind(name string, ref vm.ObjectRef) error {
	if name == "" || strings.ContainsAny(name, ". \t$") {
		return fmt.Errorf("invalid object name %q", name)
	}
	if _, exists := e.names[name]; exists {
		return fmt.Errorf("object %q already defined", name)
	}
	e.names[name] = ref
	e.order = append(e.order, name)
	return nil
}

// resolve converts node to a value. The zero node (an absent field) is
// undefined.
func (e *env) resolve(node *yaml.Node) (vm.Value, error) {
	if node == nil || node.Kind == 0 {
		return vm.Undefined, nil
	}
	switch node.Kind {
	case yaml.AliasNode:
		return e.resolve(node.Alias)
	case yaml.SequenceNode:
		elems := make([]vm.Value, len(node.Content))
		for i, child := range node.Content {
			v, err := e.resolve(child)
			if err != nil {
				return vm.Undefined, err
			}
			elems[i] = v
		}
		return vm.ObjectValue(e.realm.NewArray(elems)), nil
	case yaml.MappingNode:
		obj := e.realm.NewPlainObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, err := e.resolveKey(node.Content[i])
			if err != nil {
				return vm.Undefined, err
			}
			v, err := e.resolve(node.Content[i+1])
			if err != nil {
				return vm.Undefined, err
			}
			e.realm.DefineValue(obj, key, v, vm.AttrAll)
		}
		return vm.ObjectValue(obj), nil
	case yaml.ScalarNode:
		return e.resolveScalar(node)
	}
	return vm.Undefined, fmt.Errorf("line %d: unsupported value node", node.Line)
}

func (e *env) resolveScalar(node *yaml.Node) (vm.Value, error) {
	if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		return vm.NewString(node.Value), nil
	}
	switch node.ShortTag() {
	case "!!null":
		return vm.Null, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(b), nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return vm.Undefined, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return vm.NumberValue(f), nil
	}

	text := node.Value
	switch {
	case text == "undefined":
		return vm.Undefined, nil
	case strings.HasPrefix(text, "$"):
		v, err := e.lookupPath(text[1:])
		if err != nil {
			return vm.Undefined, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return v, nil
	case strings.HasPrefix(text, "Symbol."):
		if sym, ok := e.realm.WellKnownSymbol(text); ok {
			return vm.SymbolValue(sym), nil
		}
	}
	return vm.NewString(text), nil
}

// resolveKey converts node to a property key the way a computed member
// access would.
func (e *env) resolveKey(node *yaml.Node) (vm.PropertyKey, error) {
	v, err := e.resolve(node)
	if err != nil {
		return vm.PropertyKey{}, err
	}
	key, c := e.realm.ToPropertyKey(v)
	if c.IsAbrupt() {
		return vm.PropertyKey{}, fmt.Errorf("line %d: invalid property key: %w", node.Line, c.Err())
	}
	return key, nil
}

// lookupPath resolves "name.prop.prop". The head is a bound name or else a
// property of the global object.
func (e *env) lookupPath(path string) (vm.Value, error) {
	r := e.realm
	segments := strings.Split(path, ".")
	var current vm.Value
	if ref, ok := e.names[segments[0]]; ok {
		current = vm.ObjectValue(ref)
	} else {
		head := r.InternString(segments[0])
		if !r.HasProperty(r.GlobalObject, head) {
			return vm.Undefined, fmt.Errorf("unknown object %q", segments[0])
		}
		c := r.GetProperty(r.GlobalObject, head)
		if c.IsAbrupt() {
			return vm.Undefined, c.Err()
		}
		current = c.Value()
	}
	for i, seg := range segments[1:] {
		if !current.IsObject() {
			return vm.Undefined, fmt.Errorf("%s is not an object", strings.Join(segments[:i+1], "."))
		}
		c := r.GetProperty(current.AsObject(), r.InternString(seg))
		if c.IsAbrupt() {
			return vm.Undefined, c.Err()
		}
		current = c.Value()
	}
	debugPrintf("// [Driver] $%s -> %s\n", path, r.Inspect(current))
	return current, nil
}

func (e *env) resolveObject(node *yaml.Node, what string) (vm.ObjectRef, error) {
	v, err := e.resolve(node)
	if err != nil {
		return vm.NullRef, err
	}
	if !v.IsObject() {
		return vm.NullRef, fmt.Errorf("line %d: %s must be an object, got %s", node.Line, what, e.realm.Inspect(v))
	}
	return v.AsObject(), nil
}

// allocate creates an object of the given kind. primitive supplies the
// wrapped value for wrappers, the time value for dates, the pattern for
// regexps, the message for errors and the return value for functions.
func (e *env) allocate(name, kindName string, primitive *yaml.Node, flags string) (vm.ObjectRef, error) {
	r := e.realm
	kind := vm.KindOrdinary
	if kindName != "" {
		k, ok := vm.ParseExoticKind(strings.ToLower(kindName))
		if !ok {
			return vm.NullRef, fmt.Errorf("object %q: unknown kind %q", name, kindName)
		}
		kind = k
	}
	value, err := e.resolve(primitive)
	if err != nil {
		return vm.NullRef, fmt.Errorf("object %q: %w", name, err)
	}
	expect := func(ok bool, want string) error {
		if ok {
			return nil
		}
		return fmt.Errorf("object %q: %s object needs a %s primitive, got %s", name, kind, want, r.Inspect(value))
	}

	switch kind {
	case vm.KindOrdinary:
		return r.NewPlainObject(), nil
	case vm.KindArray:
		// Elements come from the properties list
		return r.NewArray(nil), nil
	case vm.KindFunction:
		result := value
		return r.NewNativeFunction(name, 0, func(*vm.Realm, vm.Value, []vm.Value) vm.Completion {
			return vm.NormalCompletion(result)
		}), nil
	case vm.KindError:
		if err := expect(value.IsUndefined() || value.IsString(), "string"); err != nil {
			return vm.NullRef, err
		}
		msg := ""
		if value.IsString() {
			msg = value.AsString()
		}
		return r.NewError(r.ErrorPrototype, msg), nil
	case vm.KindBooleanWrapper:
		if err := expect(value.IsBoolean(), "boolean"); err != nil {
			return vm.NullRef, err
		}
		return r.NewBooleanObject(value.AsBoolean()), nil
	case vm.KindNumberWrapper:
		if err := expect(value.IsNumber(), "number"); err != nil {
			return vm.NullRef, err
		}
		return r.NewNumberObject(value.AsNumber()), nil
	case vm.KindStringWrapper:
		if err := expect(value.IsString(), "string"); err != nil {
			return vm.NullRef, err
		}
		return r.NewStringObject(value.AsString()), nil
	case vm.KindSymbolWrapper:
		if value.IsSymbol() {
			return r.NewSymbolObject(value.AsSymbol()), nil
		}
		if err := expect(value.IsString(), "symbol or string"); err != nil {
			return vm.NullRef, err
		}
		return r.NewSymbolObject(vm.NewSymbol(value.AsString())), nil
	case vm.KindDate:
		if err := expect(value.IsNumber(), "number"); err != nil {
			return vm.NullRef, err
		}
		return r.NewDate(value.AsNumber()), nil
	case vm.KindRegExp:
		if err := expect(value.IsString(), "string"); err != nil {
			return vm.NullRef, err
		}
		ref, err := r.NewRegExp(value.AsString(), flags)
		if err != nil {
			return vm.NullRef, fmt.Errorf("object %q: %w", name, err)
		}
		return ref, nil
	}
	return vm.NullRef, fmt.Errorf("object %q: cannot allocate %s objects", name, kind)
}

// setPrototype applies a prototype given as an object or null.
func (e *env) setPrototype(obj vm.ObjectRef, node *yaml.Node) error {
	v, err := e.resolve(node)
	if err != nil {
		return err
	}
	proto := vm.NullRef
	switch {
	case v.IsObject():
		proto = v.AsObject()
	case !v.IsNull():
		return fmt.Errorf("prototype must be an object or null, got %s", e.realm.Inspect(v))
	}
	if !e.realm.Heap.SetPrototype(obj, proto) {
		return fmt.Errorf("cannot set prototype to %s: cyclic chain or non-extensible object", e.realm.Inspect(v))
	}
	return nil
}

// parseAttributes reads attribute names. A nil list means all attributes.
func parseAttributes(names []string) (vm.Attributes, error) {
	if names == nil {
		return vm.AttrAll, nil
	}
	attrs := vm.AttrNone
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "writable", "w":
			attrs |= vm.Writable
		case "enumerable", "e":
			attrs |= vm.Enumerable
		case "configurable", "c":
			attrs |= vm.Configurable
		case "all":
			attrs |= vm.AttrAll
		case "none", "":
		default:
			return vm.AttrNone, fmt.Errorf("unknown attribute %q", name)
		}
	}
	return attrs, nil
}

// defineData defines key on obj as a data property, failing when the object
// model refuses the definition.
func (e *env) defineData(obj vm.ObjectRef, key vm.PropertyKey, v vm.Value, attrs vm.Attributes) error {
	if !e.realm.DefineOwnProperty(obj, key, vm.DataDescriptor(v, attrs)) {
		return fmt.Errorf("cannot define property %s on %s", key, e.realm.Inspect(vm.ObjectValue(obj)))
	}
	return nil
}

// defineGetter defines key as an accessor whose getter returns v, or throws
// v when throws is set.
func (e *env) defineGetter(obj vm.ObjectRef, key vm.PropertyKey, v vm.Value, throws bool, attrs vm.Attributes) error {
	getter := e.realm.NewNativeFunction("get "+key.String(), 0, func(*vm.Realm, vm.Value, []vm.Value) vm.Completion {
		if throws {
			return vm.ThrowCompletion(v)
		}
		return vm.NormalCompletion(v)
	})
	desc := vm.AccessorDescriptor(vm.ObjectValue(getter), vm.Undefined, attrs)
	if !e.realm.DefineOwnProperty(obj, key, desc) {
		return fmt.Errorf("cannot define accessor %s on %s", key, e.realm.Inspect(vm.ObjectValue(obj)))
	}
	return nil
}

// call looks method up on holder and calls it with this and args.
func (e *env) call(holder vm.ObjectRef, method string, this vm.Value, args []vm.Value) vm.Completion {
	r := e.realm
	fn := r.GetProperty(holder, r.InternString(method))
	if fn.IsAbrupt() {
		return fn
	}
	debugPrintf("// [Driver] call %s with this=%s, %d args\n", method, r.Inspect(this), len(args))
	return r.CallNative(fn.Value(), this, args)
}

// describe renders a completion the way the CLI prints it.
func (e *env) describe(c vm.Completion) string {
	if c.IsAbrupt() {
		return "Uncaught " + e.realm.Inspect(c.Value())
	}
	return e.realm.Inspect(c.Value())
}
