package ffi

import (
	"reflect"
	"sort"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// HostMap exposes a Go map with string-convertible keys as a keyed script
// object.
type HostMap struct {
	*runtime.BaseObject
	factory *Factory
	value   reflect.Value
}

func newHostMap(f *Factory, rv reflect.Value) *HostMap {
	return &HostMap{
		BaseObject: runtime.NewObject("JavaMap", f.ObjectProto),
		factory:    f,
		value:      rv,
	}
}

// Unwrap returns the underlying host map.
func (h *HostMap) Unwrap() any { return h.value.Interface() }

func (h *HostMap) ToDisplay() string {
	return "[object " + h.value.Type().String() + "]"
}

// keyFor converts a script property key to the map's key type.
func (h *HostMap) keyFor(key string) (reflect.Value, bool) {
	kt := h.value.Type().Key()
	switch {
	case kt.Kind() == reflect.String:
		return reflect.ValueOf(key).Convert(kt), true
	case isNumericKind(kt.Kind()):
		if idx, ok := runtime.IsArrayIndex(key); ok {
			return reflect.ValueOf(float64(idx)).Convert(kt), true
		}
	}
	return reflect.Value{}, false
}

func (h *HostMap) GetOwn(cx *runtime.Context, key string) (*runtime.Property, bool) {
	if key == "size" || key == "length" {
		return &runtime.Property{Value: runtime.Number(float64(h.value.Len()))}, true
	}
	mk, ok := h.keyFor(key)
	if ok {
		mv := h.value.MapIndex(mk)
		if mv.IsValid() {
			w, err := h.factory.wrap(cx, mv.Interface())
			if err != nil {
				return nil, false
			}
			return &runtime.Property{Value: w, Writable: true, Enumerable: true, Configurable: true}, true
		}
	}
	return h.BaseObject.GetOwn(cx, key)
}

func (h *HostMap) SetOwn(cx *runtime.Context, key string, v runtime.Value) bool {
	mk, ok := h.keyFor(key)
	if !ok {
		return h.BaseObject.SetOwn(cx, key, v)
	}
	gv, err := ScriptToGo(cx, v, h.value.Type().Elem())
	if err != nil {
		return false
	}
	h.value.SetMapIndex(mk, gv)
	return true
}

func (h *HostMap) Delete(cx *runtime.Context, key string) bool {
	if mk, ok := h.keyFor(key); ok && h.value.MapIndex(mk).IsValid() {
		h.value.SetMapIndex(mk, reflect.Value{})
		return true
	}
	return h.BaseObject.Delete(cx, key)
}

func (h *HostMap) OwnKeys(cx *runtime.Context, enumOnly bool) []string {
	var keys []string
	mr := h.value.MapRange()
	for mr.Next() {
		k := mr.Key()
		switch {
		case k.Kind() == reflect.String:
			keys = append(keys, k.String())
		case isNumericKind(k.Kind()):
			keys = append(keys, runtime.FormatNumber(toFloat(k)))
		}
	}
	// Go map iteration order is random; sort for deterministic
	// enumeration.
	sort.Strings(keys)
	return append(keys, h.BaseObject.OwnKeys(cx, enumOnly)...)
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return 0
}
