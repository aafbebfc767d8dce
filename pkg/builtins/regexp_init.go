package builtins

import (
	"strings"

	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

// RegExpInitializer implements the RegExp builtin on top of the regexp2
// payload carried by RegExp objects.
type RegExpInitializer struct{}

func (ri *RegExpInitializer) Name() string {
	return "RegExp"
}

func (ri *RegExpInitializer) Priority() int {
	return PriorityRegExp
}

func (ri *RegExpInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	regexpProto := r.RegExpPrototype

	// source and flags are accessors so RegExp.prototype itself answers them
	r.DefineNativeAccessor(regexpProto, r.InternString("source"), func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		if isRegExpPrototype(r, this) {
			return vm.NormalCompletion(vm.NewString("(?:)"))
		}
		re, c := thisRegExp(r, this, "RegExp.prototype.source")
		if c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.NewString(re.Source()))
	}, vm.Configurable)
	r.DefineNativeAccessor(regexpProto, r.InternString("flags"), func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		if isRegExpPrototype(r, this) {
			return vm.NormalCompletion(vm.NewString(""))
		}
		re, c := thisRegExp(r, this, "RegExp.prototype.flags")
		if c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.NewString(re.Flags()))
	}, vm.Configurable)

	r.DefineNativeFunction(regexpProto, "exec", 1, regexpExecImpl, vm.AttrBuiltin)
	r.DefineNativeFunction(regexpProto, "test", 1, func(r *vm.Realm, this vm.Value, args []vm.Value) vm.Completion {
		c := regexpExecImpl(r, this, args)
		if c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.BooleanValue(!c.Value().IsNull()))
	}, vm.AttrBuiltin)
	r.DefineNativeFunction(regexpProto, "toString", 0, func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		if !this.IsObject() {
			return r.ThrowTypeError(errors.NewCoercionError("RegExp.prototype.toString", this.TypeName(),
				"RegExp.prototype.toString called on non-object"))
		}
		source := r.GetProperty(this.AsObject(), r.InternString("source"))
		if source.IsAbrupt() {
			return source
		}
		flags := r.GetProperty(this.AsObject(), r.InternString("flags"))
		if flags.IsAbrupt() {
			return flags
		}
		src, c := r.ToString(source.Value())
		if c.IsAbrupt() {
			return c
		}
		fl, c := r.ToString(flags.Value())
		if c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.NewString("/" + src + "/" + fl))
	}, vm.AttrBuiltin)

	construct := func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
		pattern := vm.Arg(args, 0)
		source := "(?:)"
		if pattern.IsObject() && r.Object(pattern.AsObject()).Kind() == vm.KindRegExp && vm.Arg(args, 1).IsUndefined() {
			re := r.Object(pattern.AsObject()).RegExp()
			ref, err := r.NewRegExp(re.Source(), re.Flags())
			if err != nil {
				return r.ThrowTypeError(errors.NewValueError("RegExp", "%v", err).CausedBy(err))
			}
			return vm.NormalCompletion(vm.ObjectValue(ref))
		}
		if !pattern.IsUndefined() {
			s, c := r.ToString(pattern)
			if c.IsAbrupt() {
				return c
			}
			if s != "" {
				source = s
			}
		}
		flags := ""
		if f := vm.Arg(args, 1); !f.IsUndefined() {
			s, c := r.ToString(f)
			if c.IsAbrupt() {
				return c
			}
			flags = s
		}
		ref, err := r.NewRegExp(source, flags)
		if err != nil {
			return r.ThrowTypeError(errors.NewValueError("RegExp", "%v", err).CausedBy(err))
		}
		return vm.NormalCompletion(vm.ObjectValue(ref))
	}
	ctor := r.NewNativeConstructor("RegExp", 2, construct, construct)
	return installConstructor(ctx, "RegExp", ctor, regexpProto)
}

func isRegExpPrototype(r *vm.Realm, this vm.Value) bool {
	return this.IsObject() && this.AsObject() == r.RegExpPrototype
}

func thisRegExp(r *vm.Realm, this vm.Value, op string) (*vm.RegExpObject, vm.Completion) {
	if this.IsObject() {
		if re := r.Object(this.AsObject()).RegExp(); re != nil {
			return re, vm.NormalCompletion(this)
		}
	}
	return nil, r.ThrowTypeError(errors.NewCoercionError(op, this.TypeName(),
		"%s requires that 'this' be a RegExp object", op))
}

// regexpExecImpl matches from lastIndex for global and sticky expressions
// and from the start otherwise. Indices count runes.
func regexpExecImpl(r *vm.Realm, this vm.Value, args []vm.Value) vm.Completion {
	re, c := thisRegExp(r, this, "RegExp.prototype.exec")
	if c.IsAbrupt() {
		return c
	}
	input, c := r.ToString(vm.Arg(args, 0))
	if c.IsAbrupt() {
		return c
	}
	obj := this.AsObject()
	lastIndexKey := r.InternString("lastIndex")
	global, sticky := strings.ContainsRune(re.Flags(), 'g'), strings.ContainsRune(re.Flags(), 'y')

	runes := []rune(input)
	resetLastIndex := func() vm.Completion {
		if global || sticky {
			if set := r.Set(obj, lastIndexKey, vm.NumberValue(0)); set.IsAbrupt() {
				return set
			}
		}
		return vm.NormalCompletion(vm.Null)
	}

	start := 0
	if global || sticky {
		li := r.GetProperty(obj, lastIndexKey)
		if li.IsAbrupt() {
			return li
		}
		f, c := r.ToNumber(li.Value())
		if c.IsAbrupt() {
			return c
		}
		// Compare before converting: huge or infinite indices do not fit an int
		if f > float64(len(runes)) {
			return resetLastIndex()
		}
		if f > 0 {
			start = int(f)
		}
	}

	m, err := re.Compiled().FindRunesMatchStartingAt(runes, start)
	if err != nil {
		return r.ThrowTypeError(errors.NewValueError("RegExp.prototype.exec", "%v", err).CausedBy(err))
	}
	if m == nil || (sticky && m.Index != start) {
		return resetLastIndex()
	}
	if global || sticky {
		if set := r.Set(obj, lastIndexKey, vm.NumberValue(float64(m.Index+m.Length))); set.IsAbrupt() {
			return set
		}
	}

	groups := m.Groups()
	elems := make([]vm.Value, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 {
			elems[i] = vm.Undefined
			continue
		}
		elems[i] = vm.NewString(g.String())
	}
	result := r.NewArray(elems)
	r.DefineValue(result, r.InternString("index"), vm.NumberValue(float64(m.Index)), vm.AttrAll)
	r.DefineValue(result, r.InternString("input"), vm.NewString(input), vm.AttrAll)
	return vm.NormalCompletion(vm.ObjectValue(result))
}
