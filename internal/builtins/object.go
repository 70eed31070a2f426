package builtins

import (
	"github.com/gigaherz/rhinogo/internal/runtime"
)

func initObject(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	proto := realm.ObjectProto

	ctor := runtime.NewNativeFunction("Object", 1, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			arg := runtime.Arg(args, 0)
			if obj, ok := arg.(runtime.Scriptable); ok {
				return obj, nil
			}
			return realm.NewPlainObject(), nil
		})
	ctor.SetConstruct(func(cx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
		return ctor.Call(cx, runtime.Undefined, args)
	})
	ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
	proto.DefineOwn(cx, "constructor", &runtime.Property{Value: ctor, Writable: true, Configurable: true})
	global.SetOwn(cx, "Object", ctor)

	fn(cx, realm, ctor, "keys", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := argObject(cx, args, "Object.keys")
		if err != nil {
			return nil, err
		}
		keys := obj.OwnKeys(cx, true)
		els := make([]runtime.Value, len(keys))
		for i, k := range keys {
			els[i] = runtime.String(k)
		}
		return realm.NewRealmArray(els), nil
	})

	fn(cx, realm, ctor, "values", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := argObject(cx, args, "Object.values")
		if err != nil {
			return nil, err
		}
		var els []runtime.Value
		for _, k := range obj.OwnKeys(cx, true) {
			v, err := runtime.GetProperty(cx, obj, k)
			if err != nil {
				return nil, err
			}
			els = append(els, v)
		}
		return realm.NewRealmArray(els), nil
	})

	fn(cx, realm, ctor, "entries", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := argObject(cx, args, "Object.entries")
		if err != nil {
			return nil, err
		}
		var els []runtime.Value
		for _, k := range obj.OwnKeys(cx, true) {
			v, err := runtime.GetProperty(cx, obj, k)
			if err != nil {
				return nil, err
			}
			els = append(els, realm.NewRealmArray([]runtime.Value{runtime.String(k), v}))
		}
		return realm.NewRealmArray(els), nil
	})

	fn(cx, realm, ctor, "assign", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		target, err := argObject(cx, args, "Object.assign")
		if err != nil {
			return nil, err
		}
		for _, src := range args[1:] {
			obj, ok := src.(runtime.Scriptable)
			if !ok {
				continue
			}
			for _, k := range obj.OwnKeys(cx, true) {
				v, err := runtime.GetProperty(cx, obj, k)
				if err != nil {
					return nil, err
				}
				if err := runtime.PutProperty(cx, target, k, v); err != nil {
					return nil, err
				}
			}
		}
		return target, nil
	})

	fn(cx, realm, ctor, "freeze", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if obj, ok := runtime.Arg(args, 0).(runtime.Scriptable); ok {
			runtime.SealObject(cx, obj, true)
		}
		return runtime.Arg(args, 0), nil
	})

	fn(cx, realm, ctor, "isFrozen", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if obj, ok := runtime.Arg(args, 0).(runtime.Scriptable); ok {
			return runtime.Bool(runtime.IsSealed(cx, obj, true)), nil
		}
		return runtime.True, nil
	})

	fn(cx, realm, ctor, "seal", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if obj, ok := runtime.Arg(args, 0).(runtime.Scriptable); ok {
			runtime.SealObject(cx, obj, false)
		}
		return runtime.Arg(args, 0), nil
	})

	fn(cx, realm, ctor, "isSealed", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if obj, ok := runtime.Arg(args, 0).(runtime.Scriptable); ok {
			return runtime.Bool(runtime.IsSealed(cx, obj, false)), nil
		}
		return runtime.True, nil
	})

	fn(cx, realm, ctor, "getPrototypeOf", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := argObject(cx, args, "Object.getPrototypeOf")
		if err != nil {
			return nil, err
		}
		if p := obj.Prototype(); p != nil {
			return p, nil
		}
		return runtime.Null, nil
	})

	fn(cx, realm, ctor, "setPrototypeOf", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := argObject(cx, args, "Object.setPrototypeOf")
		if err != nil {
			return nil, err
		}
		var proto runtime.Scriptable
		if p, ok := runtime.Arg(args, 1).(runtime.Scriptable); ok {
			proto = p
		}
		if err := runtime.SetPrototypeChecked(cx, obj, proto); err != nil {
			return nil, err
		}
		return obj, nil
	})

	fn(cx, realm, ctor, "create", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		var proto runtime.Scriptable
		if p, ok := runtime.Arg(args, 0).(runtime.Scriptable); ok {
			proto = p
		}
		return runtime.NewObject("Object", proto), nil
	})

	fn(cx, realm, ctor, "defineProperty", 3, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := argObject(cx, args, "Object.defineProperty")
		if err != nil {
			return nil, err
		}
		key, err := runtime.ToString(cx, runtime.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		descObj, ok := runtime.Arg(args, 2).(runtime.Scriptable)
		if !ok {
			return nil, runtime.NewTypeError(cx, "property descriptor must be an object")
		}
		desc := &runtime.Property{}
		read := func(name string) (runtime.Value, bool) {
			if runtime.HasProperty(cx, descObj, name) {
				v, _ := runtime.GetProperty(cx, descObj, name)
				return v, true
			}
			return nil, false
		}
		if v, ok := read("value"); ok {
			desc.Value = v
		}
		if v, ok := read("get"); ok {
			if g, ok := v.(runtime.Callable); ok {
				desc.Getter = g
			}
		}
		if v, ok := read("set"); ok {
			if s, ok := v.(runtime.Callable); ok {
				desc.Setter = s
			}
		}
		if v, ok := read("writable"); ok {
			desc.Writable = runtime.ToBoolean(v)
		}
		if v, ok := read("enumerable"); ok {
			desc.Enumerable = runtime.ToBoolean(v)
		}
		if v, ok := read("configurable"); ok {
			desc.Configurable = runtime.ToBoolean(v)
		}
		if err := obj.DefineOwn(cx, key, desc); err != nil {
			return nil, err
		}
		return obj, nil
	})

	fn(cx, realm, proto, "hasOwnProperty", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := thisObject(cx, this, "hasOwnProperty")
		if err != nil {
			return nil, err
		}
		key, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		_, ok := obj.GetOwn(cx, key)
		return runtime.Bool(ok), nil
	})

	fn(cx, realm, proto, "isPrototypeOf", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := thisObject(cx, this, "isPrototypeOf")
		if err != nil {
			return nil, err
		}
		target, ok := runtime.Arg(args, 0).(runtime.Scriptable)
		if !ok {
			return runtime.False, nil
		}
		for cur := target.Prototype(); cur != nil; cur = cur.Prototype() {
			if cur == obj {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	})

	fn(cx, realm, proto, "toString", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if obj, ok := this.(runtime.Scriptable); ok {
			return runtime.String("[object " + obj.ClassName() + "]"), nil
		}
		return runtime.String("[object Object]"), nil
	})

	fn(cx, realm, proto, "valueOf", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return this, nil
	})
}

func argObject(cx *runtime.Context, args []runtime.Value, method string) (runtime.Scriptable, error) {
	obj, ok := runtime.Arg(args, 0).(runtime.Scriptable)
	if !ok {
		return nil, runtime.NewTypeError(cx, "%s called on a non-object", method)
	}
	return obj, nil
}
