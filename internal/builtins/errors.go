package builtins

import (
	"github.com/gigaherz/rhinogo/internal/runtime"
)

// errorKinds lists the standard constructors and the error kind they
// materialize.
var errorKinds = []struct {
	name string
	kind runtime.ErrorKind
}{
	{"Error", runtime.ThrownErr},
	{"TypeError", runtime.TypeErr},
	{"ReferenceError", runtime.ReferenceErr},
	{"RangeError", runtime.RangeErr},
	{"SyntaxError", runtime.SyntaxErr},
	{"URIError", runtime.URIErr},
	{"EvalError", runtime.EvaluatorErr},
}

func initErrors(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	base := runtime.NewObject("Error", realm.ObjectProto)
	realm.ErrorProto = base

	fn(cx, realm, base, "toString", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := thisObject(cx, this, "Error.prototype.toString")
		if err != nil {
			return nil, err
		}
		nameV, _ := runtime.GetProperty(cx, obj, "name")
		msgV, _ := runtime.GetProperty(cx, obj, "message")
		name, _ := runtime.ToString(cx, nameV)
		msg, _ := runtime.ToString(cx, msgV)
		if msg == "" {
			return runtime.String(name), nil
		}
		return runtime.String(name + ": " + msg), nil
	})

	for _, ek := range errorKinds {
		ek := ek
		proto := base
		if ek.name != "Error" {
			proto = runtime.NewObject(ek.name, base)
			proto.SetOwn(cx, "name", runtime.String(ek.name))
		} else {
			proto.SetOwn(cx, "name", runtime.String("Error"))
		}
		realm.ErrorProtos[errorProtoKey(ek.kind)] = proto

		construct := func(cx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
			msg := ""
			if len(args) > 0 && !runtime.IsNullish(args[0]) {
				s, err := runtime.ToString(cx, args[0])
				if err != nil {
					return nil, err
				}
				msg = s
			}
			se := &runtime.ScriptError{
				Kind:       ek.kind,
				Message:    msg,
				SourceName: cx.SourceName(),
				LineNumber: cx.CurrentLine(),
			}
			obj := runtime.NewErrorObject(proto, se)
			if ek.name == "Error" {
				obj.SetOwn(cx, "name", runtime.String("Error"))
			}
			se.Value = obj
			return obj, nil
		}
		ctor := runtime.NewNativeFunction(ek.name, 1, realm.FunctionProto,
			func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
				return construct(cx, args)
			})
		ctor.SetConstruct(construct)
		ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
		proto.DefineOwn(cx, "constructor", &runtime.Property{Value: ctor, Writable: true, Configurable: true})
		global.SetOwn(cx, ek.name, ctor)
	}
}

// errorProtoKey maps a kind to the realm lookup key used when an engine
// error is materialized for catch.
func errorProtoKey(kind runtime.ErrorKind) string {
	return kind.String()
}
