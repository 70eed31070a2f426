package ffi

import (
	"reflect"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// HostObject is a Scriptable whose properties are synthesized from the
// reflection cache of the underlying host type: public fields become data
// properties, public methods become function-valued properties, and
// getX/isX/setX accessor pairs collapse into a single bean property.
type HostObject struct {
	*runtime.BaseObject
	factory *Factory
	value   reflect.Value
	members *Members

	// boundMethods memoizes method wrappers so repeated reads of the same
	// member preserve identity.
	boundMethods map[string]*runtime.NativeFunction
}

func newHostObject(f *Factory, rv reflect.Value) *HostObject {
	return &HostObject{
		BaseObject: runtime.NewObject("JavaObject", f.ObjectProto),
		factory:    f,
		value:      rv,
		members:    membersOf(rv.Type(), f.Mapper),
	}
}

// Unwrap returns the underlying host value.
func (h *HostObject) Unwrap() any { return h.value.Interface() }

func (h *HostObject) ToDisplay() string {
	return "[object " + h.value.Type().String() + "]"
}

// structValue digs through the pointer to the addressable struct.
func (h *HostObject) structValue() reflect.Value {
	v := h.value
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return v
}

func (h *HostObject) GetOwn(cx *runtime.Context, key string) (*runtime.Property, bool) {
	// Bean properties synthesize as accessor descriptors so `in`,
	// enumeration, and delete behave per the object protocol. They are
	// never configurable: delete must fail.
	if bean, ok := h.members.beans[key]; ok {
		getter := h.beanGetter(key, bean)
		var setter runtime.Callable
		if bean.setter != nil {
			setter = h.beanSetter(key, bean)
		}
		return &runtime.Property{Getter: getter, Setter: setter, Enumerable: true}, true
	}
	if field, ok := h.members.fields[key]; ok {
		sv := h.structValue()
		if sv.Kind() == reflect.Struct {
			fv := sv.FieldByIndex(field.index)
			wrapped, err := h.factory.wrap(cx, fv.Interface())
			if err != nil {
				return nil, false
			}
			return &runtime.Property{Value: wrapped, Writable: fv.CanSet(), Enumerable: true}, true
		}
	}
	if method, ok := h.members.methods[key]; ok {
		return &runtime.Property{Value: h.boundMethod(key, method), Enumerable: true}, true
	}
	if static, ok := h.members.statics[key]; ok {
		return &runtime.Property{Value: static, Enumerable: true}, true
	}
	return h.BaseObject.GetOwn(cx, key)
}

func (h *HostObject) beanGetter(key string, bean *beanMember) runtime.Callable {
	return runtime.NewNativeFunction("get "+key, 0, h.factory.FuncProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return callReflected(cx, h.factory, bean.getter.Name, h.value.Method(bean.getter.Index), nil)
		})
}

func (h *HostObject) beanSetter(key string, bean *beanMember) runtime.Callable {
	return runtime.NewNativeFunction("set "+key, 1, h.factory.FuncProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			_, err := callReflected(cx, h.factory, bean.setter.Name, h.value.Method(bean.setter.Index), args[:min(len(args), 1)])
			return runtime.Undefined, err
		})
}

// boundMethod returns the memoized function wrapper for an overload set,
// bound to this receiver.
func (h *HostObject) boundMethod(key string, member *methodMember) *runtime.NativeFunction {
	if h.boundMethods == nil {
		h.boundMethods = make(map[string]*runtime.NativeFunction)
	}
	if fn, ok := h.boundMethods[key]; ok {
		return fn
	}
	fn := runtime.NewNativeFunction(key, 0, h.factory.FuncProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			method := &member.methods[0]
			if len(member.methods) > 1 {
				resolved, err := resolveOverload(cx, key, member.methods, true, args)
				if err != nil {
					return nil, err
				}
				method = resolved
			} else if candidateWeight(cx, method.Type, true, args) == conversionNone {
				return nil, runtime.NewTypeError(cx, "no applicable overload of %s for arguments (%s)", key, describeArgs(args))
			}
			return callReflected(cx, h.factory, key, h.value.Method(method.Index), args)
		})
	h.boundMethods[key] = fn
	return fn
}

func (h *HostObject) SetOwn(cx *runtime.Context, key string, v runtime.Value) bool {
	if bean, ok := h.members.beans[key]; ok {
		if bean.setter == nil {
			return false
		}
		_, err := callReflected(cx, h.factory, bean.setter.Name, h.value.Method(bean.setter.Index), []runtime.Value{v})
		return err == nil
	}
	if field, ok := h.members.fields[key]; ok {
		sv := h.structValue()
		if sv.Kind() == reflect.Struct {
			fv := sv.FieldByIndex(field.index)
			if !fv.CanSet() {
				return false
			}
			gv, err := ScriptToGo(cx, v, fv.Type())
			if err != nil {
				return false
			}
			fv.Set(gv)
			return true
		}
	}
	if _, ok := h.members.methods[key]; ok {
		return false // methods are not assignable
	}
	return h.BaseObject.SetOwn(cx, key, v)
}

// Delete refuses for synthesized members: they are not configurable.
func (h *HostObject) Delete(cx *runtime.Context, key string) bool {
	if h.members.Has(key) {
		return false
	}
	return h.BaseObject.Delete(cx, key)
}

func (h *HostObject) OwnKeys(cx *runtime.Context, enumOnly bool) []string {
	keys := h.members.Names()
	return append(keys, h.BaseObject.OwnKeys(cx, enumOnly)...)
}
