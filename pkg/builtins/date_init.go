package builtins

import (
	"math"
	"time"

	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

// DateInitializer implements the Date builtin. Only the time value is
// modelled; calendar and locale formatting are left to the host.
type DateInitializer struct{}

func (d *DateInitializer) Name() string {
	return "Date"
}

func (d *DateInitializer) Priority() int {
	return PriorityDate
}

// now is swapped out by tests
var now = time.Now

func (d *DateInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	dateProto := r.DatePrototype

	getTime := func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		tv, c := thisTimeValue(r, this, "Date.prototype.getTime")
		if c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.NumberValue(tv))
	}
	r.DefineNativeFunction(dateProto, "getTime", 0, getTime, vm.AttrBuiltin)
	r.DefineNativeFunction(dateProto, "valueOf", 0, getTime, vm.AttrBuiltin)
	r.DefineNativeFunction(dateProto, "toISOString", 0, func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		tv, c := thisTimeValue(r, this, "Date.prototype.toISOString")
		if c.IsAbrupt() {
			return c
		}
		if math.IsNaN(tv) {
			return r.ThrowTypeError(errors.NewValueError("Date.prototype.toISOString", "Invalid time value"))
		}
		return vm.NormalCompletion(vm.NewString(r.Inspect(this)))
	}, vm.AttrBuiltin)
	r.DefineNativeFunction(dateProto, "toString", 0, func(r *vm.Realm, this vm.Value, _ []vm.Value) vm.Completion {
		if _, c := thisTimeValue(r, this, "Date.prototype.toString"); c.IsAbrupt() {
			return c
		}
		return vm.NormalCompletion(vm.NewString(r.Inspect(this)))
	}, vm.AttrBuiltin)

	ctor := r.NewNativeConstructor("Date", 7,
		func(r *vm.Realm, _ vm.Value, _ []vm.Value) vm.Completion {
			// Called as a function: the current time as a string
			return vm.NormalCompletion(vm.NewString(r.Inspect(vm.ObjectValue(r.NewDate(nowMillis())))))
		},
		func(r *vm.Realm, _ vm.Value, args []vm.Value) vm.Completion {
			if len(args) == 0 {
				return vm.NormalCompletion(vm.ObjectValue(r.NewDate(nowMillis())))
			}
			arg := args[0]
			if arg.IsObject() && r.Object(arg.AsObject()).Kind() == vm.KindDate {
				return vm.NormalCompletion(vm.ObjectValue(r.NewDate(r.Object(arg.AsObject()).TimeValue())))
			}
			prim := r.ToPrimitive(arg, vm.HintDefault)
			if prim.IsAbrupt() {
				return prim
			}
			if prim.Value().IsString() {
				return vm.NormalCompletion(vm.ObjectValue(r.NewDate(parseDateString(prim.Value().AsString()))))
			}
			ms, c := r.ToNumber(prim.Value())
			if c.IsAbrupt() {
				return c
			}
			return vm.NormalCompletion(vm.ObjectValue(r.NewDate(ms)))
		})
	r.DefineNativeFunction(ctor, "now", 0, func(*vm.Realm, vm.Value, []vm.Value) vm.Completion {
		return vm.NormalCompletion(vm.NumberValue(nowMillis()))
	}, vm.AttrBuiltin)

	return installConstructor(ctx, "Date", ctor, dateProto)
}

func nowMillis() float64 {
	return float64(now().UnixMilli())
}

// parseDateString accepts the ISO forms; anything else is NaN.
func parseDateString(s string) float64 {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixMilli())
		}
	}
	return math.NaN()
}

func thisTimeValue(r *vm.Realm, this vm.Value, op string) (float64, vm.Completion) {
	if this.IsObject() {
		if obj := r.Object(this.AsObject()); obj.Kind() == vm.KindDate {
			return obj.TimeValue(), vm.NormalCompletion(vm.NumberValue(obj.TimeValue()))
		}
	}
	return math.NaN(), r.ThrowTypeError(errors.NewCoercionError(op, this.TypeName(), "this is not a Date object."))
}
