package builtins

import (
	"time"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// DateObject stores the instant as milliseconds since the epoch.
type DateObject struct {
	*runtime.BaseObject
	ms float64
}

// Time converts to a Go time in the local zone.
func (d *DateObject) Time() time.Time {
	return time.UnixMilli(int64(d.ms)).Local()
}

func (d *DateObject) ToDisplay() string {
	return d.Time().Format("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)")
}

func thisDate(cx *runtime.Context, this runtime.Value, method string) (*DateObject, error) {
	d, ok := this.(*DateObject)
	if !ok {
		return nil, runtime.NewTypeError(cx, "Date.prototype.%s called on a non-Date receiver", method)
	}
	return d, nil
}

func initDate(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	proto := runtime.NewObject("Date", realm.ObjectProto)
	realm.DateProto = proto

	construct := func(cx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
		d := &DateObject{BaseObject: runtime.NewObject("Date", proto)}
		switch len(args) {
		case 0:
			d.ms = float64(time.Now().UnixMilli())
		case 1:
			switch n := args[0].(type) {
			case *runtime.NumberValue:
				d.ms = n.Value
			case *runtime.StringValue:
				t, err := parseDateString(n.Value)
				if err != nil {
					return nil, runtime.NewTypeError(cx, "invalid date %q", n.Value)
				}
				d.ms = float64(t.UnixMilli())
			case *DateObject:
				d.ms = n.ms
			default:
				f, err := runtime.ToNumber(cx, args[0])
				if err != nil {
					return nil, err
				}
				d.ms = f
			}
		default:
			parts := make([]int, 7)
			for i := 0; i < len(args) && i < 7; i++ {
				f, err := runtime.ToNumber(cx, args[i])
				if err != nil {
					return nil, err
				}
				parts[i] = int(f)
			}
			if len(args) < 3 {
				parts[2] = 1
			}
			t := time.Date(parts[0], time.Month(parts[1]+1), parts[2], parts[3], parts[4], parts[5], parts[6]*1e6, time.Local)
			d.ms = float64(t.UnixMilli())
		}
		return d, nil
	}

	ctor := runtime.NewNativeFunction("Date", 7, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			// Called without new: the current time as a string.
			d := &DateObject{BaseObject: runtime.NewObject("Date", proto), ms: float64(time.Now().UnixMilli())}
			return runtime.String(d.ToDisplay()), nil
		})
	ctor.SetConstruct(construct)
	ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
	proto.DefineOwn(cx, "constructor", &runtime.Property{Value: ctor, Writable: true, Configurable: true})
	global.SetOwn(cx, "Date", ctor)

	fn(cx, realm, ctor, "now", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Number(float64(time.Now().UnixMilli())), nil
	})

	fn(cx, realm, ctor, "parse", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		t, err := parseDateString(s)
		if err != nil {
			return runtime.Number(nan()), nil
		}
		return runtime.Number(float64(t.UnixMilli())), nil
	})

	getters := map[string]func(t time.Time) float64{
		"getFullYear":     func(t time.Time) float64 { return float64(t.Year()) },
		"getMonth":        func(t time.Time) float64 { return float64(int(t.Month()) - 1) },
		"getDate":         func(t time.Time) float64 { return float64(t.Day()) },
		"getDay":          func(t time.Time) float64 { return float64(int(t.Weekday())) },
		"getHours":        func(t time.Time) float64 { return float64(t.Hour()) },
		"getMinutes":      func(t time.Time) float64 { return float64(t.Minute()) },
		"getSeconds":      func(t time.Time) float64 { return float64(t.Second()) },
		"getMilliseconds": func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) },
	}
	for name, impl := range getters {
		name, impl := name, impl
		fn(cx, realm, proto, name, 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			d, err := thisDate(cx, this, name)
			if err != nil {
				return nil, err
			}
			return runtime.Number(impl(d.Time())), nil
		})
	}

	fn(cx, realm, proto, "getTime", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		d, err := thisDate(cx, this, "getTime")
		if err != nil {
			return nil, err
		}
		return runtime.Number(d.ms), nil
	})

	fn(cx, realm, proto, "valueOf", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		d, err := thisDate(cx, this, "valueOf")
		if err != nil {
			return nil, err
		}
		return runtime.Number(d.ms), nil
	})

	fn(cx, realm, proto, "toISOString", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		d, err := thisDate(cx, this, "toISOString")
		if err != nil {
			return nil, err
		}
		return runtime.String(d.Time().UTC().Format("2006-01-02T15:04:05.000Z")), nil
	})

	fn(cx, realm, proto, "toJSON", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		d, err := thisDate(cx, this, "toJSON")
		if err != nil {
			return nil, err
		}
		return runtime.String(d.Time().UTC().Format("2006-01-02T15:04:05.000Z")), nil
	})

	fn(cx, realm, proto, "toString", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		d, err := thisDate(cx, this, "toString")
		if err != nil {
			return nil, err
		}
		return runtime.String(d.ToDisplay()), nil
	})
}

// dateFormats lists accepted textual forms, tried in order.
var dateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
	time.RFC1123,
	time.ANSIC,
	"Jan 2, 2006",
	"January 2, 2006",
}

func parseDateString(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
