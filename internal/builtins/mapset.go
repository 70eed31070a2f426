package builtins

import (
	"github.com/gigaherz/rhinogo/internal/runtime"
)

// MapObject is the script Map over the insertion-ordered hash table.
type MapObject struct {
	*runtime.BaseObject
	table *runtime.OrderedMap
}

// SetObject is the script Set; it shares the same table keyed by value.
type SetObject struct {
	*runtime.BaseObject
	table *runtime.OrderedMap
}

func (m *MapObject) GetOwn(cx *runtime.Context, key string) (*runtime.Property, bool) {
	if key == "size" {
		return &runtime.Property{Value: runtime.Number(float64(m.table.Size()))}, true
	}
	return m.BaseObject.GetOwn(cx, key)
}

func (s *SetObject) GetOwn(cx *runtime.Context, key string) (*runtime.Property, bool) {
	if key == "size" {
		return &runtime.Property{Value: runtime.Number(float64(s.table.Size()))}, true
	}
	return s.BaseObject.GetOwn(cx, key)
}

func thisMap(cx *runtime.Context, this runtime.Value, method string) (*MapObject, error) {
	m, ok := this.(*MapObject)
	if !ok {
		return nil, runtime.NewTypeError(cx, "Map.prototype.%s called on a non-Map receiver", method)
	}
	return m, nil
}

func thisSet(cx *runtime.Context, this runtime.Value, method string) (*SetObject, error) {
	s, ok := this.(*SetObject)
	if !ok {
		return nil, runtime.NewTypeError(cx, "Set.prototype.%s called on a non-Set receiver", method)
	}
	return s, nil
}

// tableIterator adapts an OrderedMap iterator to the script protocol. The
// iterators are deliberately tolerant of concurrent deletion and clearing.
func tableIterator(cx *runtime.Context, realm *runtime.Realm, table *runtime.OrderedMap, mode string) runtime.Scriptable {
	it := table.Iterate()
	return newNativeIterator(cx, realm, func() (runtime.Value, bool) {
		k, v, ok := it.Next()
		if !ok {
			return nil, false
		}
		switch mode {
		case "keys":
			return k, true
		case "values":
			return v, true
		default:
			return realm.NewRealmArray([]runtime.Value{k, v}), true
		}
	})
}

func initMapSet(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	mapProto := runtime.NewObject("Map", realm.ObjectProto)
	realm.MapProto = mapProto
	setProto := runtime.NewObject("Set", realm.ObjectProto)
	realm.SetProto = setProto

	mapCtor := runtime.NewNativeFunction("Map", 0, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return nil, runtime.NewTypeError(cx, "constructor Map requires 'new'")
		})
	mapCtor.SetConstruct(func(cx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
		m := &MapObject{
			BaseObject: runtime.NewObject("Map", mapProto),
			table:      runtime.NewOrderedMap(),
		}
		// An iterable of [key, value] pairs seeds the map.
		if arr, ok := runtime.Arg(args, 0).(*runtime.ArrayObject); ok {
			for i := 0; i < arr.Len(); i++ {
				if pair, ok := arr.At(i).(*runtime.ArrayObject); ok {
					m.table.Set(pair.At(0), pair.At(1))
				}
			}
		}
		return m, nil
	})
	mapCtor.DefineOwn(cx, "prototype", &runtime.Property{Value: mapProto})
	mapProto.DefineOwn(cx, "constructor", &runtime.Property{Value: mapCtor, Writable: true, Configurable: true})
	global.SetOwn(cx, "Map", mapCtor)

	fn(cx, realm, mapProto, "get", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		m, err := thisMap(cx, this, "get")
		if err != nil {
			return nil, err
		}
		if v, ok := m.table.Get(runtime.Arg(args, 0)); ok {
			return v, nil
		}
		return runtime.Undefined, nil
	})

	fn(cx, realm, mapProto, "set", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		m, err := thisMap(cx, this, "set")
		if err != nil {
			return nil, err
		}
		m.table.Set(runtime.Arg(args, 0), runtime.Arg(args, 1))
		return m, nil
	})

	fn(cx, realm, mapProto, "has", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		m, err := thisMap(cx, this, "has")
		if err != nil {
			return nil, err
		}
		return runtime.Bool(m.table.Has(runtime.Arg(args, 0))), nil
	})

	fn(cx, realm, mapProto, "delete", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		m, err := thisMap(cx, this, "delete")
		if err != nil {
			return nil, err
		}
		return runtime.Bool(m.table.Delete(runtime.Arg(args, 0))), nil
	})

	fn(cx, realm, mapProto, "clear", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		m, err := thisMap(cx, this, "clear")
		if err != nil {
			return nil, err
		}
		m.table.Clear()
		return runtime.Undefined, nil
	})

	fn(cx, realm, mapProto, "forEach", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		m, err := thisMap(cx, this, "forEach")
		if err != nil {
			return nil, err
		}
		cb, err := callbackArg(cx, args, "Map.prototype.forEach")
		if err != nil {
			return nil, err
		}
		err = m.table.ForEach(func(k, v runtime.Value) error {
			_, err := cb.Call(cx, runtime.Undefined, []runtime.Value{v, k, m})
			return err
		})
		return runtime.Undefined, err
	})

	for _, mode := range []string{"keys", "values", "entries"} {
		mode := mode
		fn(cx, realm, mapProto, mode, 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			m, err := thisMap(cx, this, mode)
			if err != nil {
				return nil, err
			}
			return tableIterator(cx, realm, m.table, mode), nil
		})
	}
	mapIter := runtime.NewNativeFunction("[Symbol.iterator]", 0, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			m, err := thisMap(cx, this, "[Symbol.iterator]")
			if err != nil {
				return nil, err
			}
			return tableIterator(cx, realm, m.table, "entries"), nil
		})
	mapProto.SetOwnSymbol(cx, runtime.SymIterator, &runtime.Property{Value: mapIter})

	setCtor := runtime.NewNativeFunction("Set", 0, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return nil, runtime.NewTypeError(cx, "constructor Set requires 'new'")
		})
	setCtor.SetConstruct(func(cx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
		s := &SetObject{
			BaseObject: runtime.NewObject("Set", setProto),
			table:      runtime.NewOrderedMap(),
		}
		if arr, ok := runtime.Arg(args, 0).(*runtime.ArrayObject); ok {
			for i := 0; i < arr.Len(); i++ {
				s.table.Set(arr.At(i), arr.At(i))
			}
		}
		return s, nil
	})
	setCtor.DefineOwn(cx, "prototype", &runtime.Property{Value: setProto})
	setProto.DefineOwn(cx, "constructor", &runtime.Property{Value: setCtor, Writable: true, Configurable: true})
	global.SetOwn(cx, "Set", setCtor)

	fn(cx, realm, setProto, "add", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisSet(cx, this, "add")
		if err != nil {
			return nil, err
		}
		s.table.Set(runtime.Arg(args, 0), runtime.Arg(args, 0))
		return s, nil
	})

	fn(cx, realm, setProto, "has", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisSet(cx, this, "has")
		if err != nil {
			return nil, err
		}
		return runtime.Bool(s.table.Has(runtime.Arg(args, 0))), nil
	})

	fn(cx, realm, setProto, "delete", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisSet(cx, this, "delete")
		if err != nil {
			return nil, err
		}
		return runtime.Bool(s.table.Delete(runtime.Arg(args, 0))), nil
	})

	fn(cx, realm, setProto, "clear", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisSet(cx, this, "clear")
		if err != nil {
			return nil, err
		}
		s.table.Clear()
		return runtime.Undefined, nil
	})

	fn(cx, realm, setProto, "forEach", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisSet(cx, this, "forEach")
		if err != nil {
			return nil, err
		}
		cb, err := callbackArg(cx, args, "Set.prototype.forEach")
		if err != nil {
			return nil, err
		}
		err = s.table.ForEach(func(k, v runtime.Value) error {
			_, err := cb.Call(cx, runtime.Undefined, []runtime.Value{v, k, s})
			return err
		})
		return runtime.Undefined, err
	})

	for _, mode := range []string{"keys", "values"} {
		mode := mode
		fn(cx, realm, setProto, mode, 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			s, err := thisSet(cx, this, mode)
			if err != nil {
				return nil, err
			}
			return tableIterator(cx, realm, s.table, "values"), nil
		})
	}
	setIter := runtime.NewNativeFunction("[Symbol.iterator]", 0, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			s, err := thisSet(cx, this, "[Symbol.iterator]")
			if err != nil {
				return nil, err
			}
			return tableIterator(cx, realm, s.table, "values"), nil
		})
	setProto.SetOwnSymbol(cx, runtime.SymIterator, &runtime.Property{Value: setIter})
}
