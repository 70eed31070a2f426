package runtime

import (
	"math"
	"sort"
	"strconv"
)

// Property is a property descriptor: either a data property (Value,
// Writable) or an accessor (Getter/Setter).
type Property struct {
	Value        Value
	Getter       Callable
	Setter       Callable
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// IsAccessor reports whether the descriptor is accessor-style.
func (p *Property) IsAccessor() bool { return p.Getter != nil || p.Setter != nil }

// Callable is a value that can be invoked.
type Callable interface {
	Value
	Call(cx *Context, this Value, args []Value) (Value, error)
}

// Constructable is a value that can be used with `new`.
type Constructable interface {
	Callable
	Construct(cx *Context, args []Value) (Value, error)
}

// Scriptable is a runtime object participating in the script's object
// protocol. Plain script objects, arrays, functions, and host wrappers all
// implement it.
type Scriptable interface {
	Value

	// ClassName is a short diagnostic tag: "Object", "Array", "Function",
	// "JavaObject", …
	ClassName() string

	Prototype() Scriptable
	SetPrototype(p Scriptable)
	ParentScope() Scriptable
	SetParentScope(s Scriptable)

	// GetOwn returns the own property descriptor for key, without
	// consulting the prototype chain.
	GetOwn(cx *Context, key string) (*Property, bool)
	// SetOwn creates or updates an own data property. It returns false if
	// the object refuses (non-writable property, non-extensible object).
	SetOwn(cx *Context, key string, v Value) bool
	// DefineOwn installs a full descriptor, subject to the ECMA
	// redefinition rules.
	DefineOwn(cx *Context, key string, desc *Property) error
	// Delete removes an own property; it returns false when the property
	// exists but is non-configurable.
	Delete(cx *Context, key string) bool
	// OwnKeys returns own string keys in insertion order. When enumOnly
	// is set, non-enumerable keys are skipped.
	OwnKeys(cx *Context, enumOnly bool) []string

	// Symbol-keyed properties live beside the string map.
	GetOwnSymbol(cx *Context, sym *SymbolValue) (*Property, bool)
	SetOwnSymbol(cx *Context, sym *SymbolValue, desc *Property)

	Extensible() bool
	PreventExtensions()
}

// BaseObject is the standard Scriptable implementation: an insertion-
// ordered property map, a symbol map, and a prototype link. Other object
// kinds embed it.
type BaseObject struct {
	class  string
	proto  Scriptable
	parent Scriptable

	props    map[string]*Property
	keyOrder []string

	symProps map[*SymbolValue]*Property
	symOrder []*SymbolValue

	extensible bool
}

// NewObject creates an empty object with the given class name and
// prototype.
func NewObject(class string, proto Scriptable) *BaseObject {
	return &BaseObject{
		class:      class,
		proto:      proto,
		props:      make(map[string]*Property),
		extensible: true,
	}
}

func (o *BaseObject) TypeOf() string    { return "object" }
func (o *BaseObject) ToDisplay() string { return "[object " + o.class + "]" }

func (o *BaseObject) ClassName() string            { return o.class }
func (o *BaseObject) Prototype() Scriptable        { return o.proto }
func (o *BaseObject) SetPrototype(p Scriptable)    { o.proto = p }
func (o *BaseObject) ParentScope() Scriptable      { return o.parent }
func (o *BaseObject) SetParentScope(s Scriptable)  { o.parent = s }
func (o *BaseObject) Extensible() bool             { return o.extensible }
func (o *BaseObject) PreventExtensions()           { o.extensible = false }

func (o *BaseObject) GetOwn(cx *Context, key string) (*Property, bool) {
	p, ok := o.props[key]
	return p, ok
}

func (o *BaseObject) SetOwn(cx *Context, key string, v Value) bool {
	if p, ok := o.props[key]; ok {
		if p.IsAccessor() || !p.Writable {
			return false
		}
		p.Value = v
		return true
	}
	if !o.extensible {
		return false
	}
	o.props[key] = &Property{Value: v, Writable: true, Enumerable: true, Configurable: true}
	o.keyOrder = append(o.keyOrder, key)
	return true
}

func (o *BaseObject) DefineOwn(cx *Context, key string, desc *Property) error {
	existing, ok := o.props[key]
	if !ok {
		if !o.extensible {
			return NewTypeError(cx, "cannot define property %q on a non-extensible object", key)
		}
		o.props[key] = desc
		o.keyOrder = append(o.keyOrder, key)
		return nil
	}
	if !existing.Configurable {
		// A non-configurable data property still allows a value change
		// while it remains writable.
		if !existing.IsAccessor() && !desc.IsAccessor() && existing.Writable &&
			existing.Enumerable == desc.Enumerable {
			existing.Value = desc.Value
			existing.Writable = desc.Writable
			return nil
		}
		return NewTypeError(cx, "cannot redefine non-configurable property %q", key)
	}
	*existing = *desc
	return nil
}

func (o *BaseObject) Delete(cx *Context, key string) bool {
	p, ok := o.props[key]
	if !ok {
		return true
	}
	if !p.Configurable {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keyOrder {
		if k == key {
			o.keyOrder = append(o.keyOrder[:i], o.keyOrder[i+1:]...)
			break
		}
	}
	return true
}

func (o *BaseObject) OwnKeys(cx *Context, enumOnly bool) []string {
	keys := make([]string, 0, len(o.keyOrder))
	for _, k := range o.keyOrder {
		p, ok := o.props[k]
		if !ok {
			continue
		}
		if enumOnly && !p.Enumerable {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

func (o *BaseObject) GetOwnSymbol(cx *Context, sym *SymbolValue) (*Property, bool) {
	if o.symProps == nil {
		return nil, false
	}
	p, ok := o.symProps[sym]
	return p, ok
}

func (o *BaseObject) SetOwnSymbol(cx *Context, sym *SymbolValue, desc *Property) {
	if o.symProps == nil {
		o.symProps = make(map[*SymbolValue]*Property)
	}
	if _, ok := o.symProps[sym]; !ok {
		o.symOrder = append(o.symOrder, sym)
	}
	o.symProps[sym] = desc
}

// IsArrayIndex reports whether key is a canonical array index ("0", "17")
// and returns its numeric value.
func IsArrayIndex(key string) (uint32, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// GetProperty walks the prototype chain starting at o and returns key's
// value, invoking an accessor's getter against the original receiver.
// Returns Undefined when the property is absent.
func GetProperty(cx *Context, o Scriptable, key string) (Value, error) {
	return GetPropertyReceiver(cx, o, key, o)
}

// GetPropertyReceiver is GetProperty with an explicit receiver for getter
// dispatch; it backs property access on primitive values, where the chain
// starts at a wrapper prototype but `this` must stay the primitive.
func GetPropertyReceiver(cx *Context, o Scriptable, key string, receiver Value) (Value, error) {
	for cur := o; cur != nil; cur = cur.Prototype() {
		if p, ok := cur.GetOwn(cx, key); ok {
			if p.IsAccessor() {
				if p.Getter == nil {
					return Undefined, nil
				}
				return p.Getter.Call(cx, receiver, nil)
			}
			return p.Value, nil
		}
	}
	return Undefined, nil
}

// GetPropertySymbol is GetProperty for symbol keys.
func GetPropertySymbol(cx *Context, o Scriptable, sym *SymbolValue) (Value, error) {
	for cur := o; cur != nil; cur = cur.Prototype() {
		if p, ok := cur.GetOwnSymbol(cx, sym); ok {
			if p.IsAccessor() {
				if p.Getter == nil {
					return Undefined, nil
				}
				return p.Getter.Call(cx, o, nil)
			}
			return p.Value, nil
		}
	}
	return Undefined, nil
}

// HasProperty reports whether key is reachable on o or its prototypes.
func HasProperty(cx *Context, o Scriptable, key string) bool {
	for cur := o; cur != nil; cur = cur.Prototype() {
		if _, ok := cur.GetOwn(cx, key); ok {
			return true
		}
	}
	return false
}

// PutProperty implements Put: an own writable data property is updated in
// place; an accessor anywhere on the chain dispatches to its setter; a
// non-writable property anywhere on the chain blocks the write; otherwise
// a new own property is created on an extensible receiver. A blocked write
// raises TypeError in strict mode and is silently dropped otherwise.
func PutProperty(cx *Context, o Scriptable, key string, v Value) error {
	for cur := o; cur != nil; cur = cur.Prototype() {
		p, ok := cur.GetOwn(cx, key)
		if !ok {
			continue
		}
		if p.IsAccessor() {
			if p.Setter == nil {
				return putRefused(cx, key)
			}
			_, err := p.Setter.Call(cx, o, []Value{v})
			return err
		}
		if cur == Scriptable(o) {
			if !o.SetOwn(cx, key, v) {
				return putRefused(cx, key)
			}
			return nil
		}
		// A data property on a prototype: writable shadows, read-only
		// blocks.
		if !p.Writable {
			return putRefused(cx, key)
		}
		break
	}
	if !o.SetOwn(cx, key, v) {
		return putRefused(cx, key)
	}
	return nil
}

func putRefused(cx *Context, key string) error {
	if cx != nil && cx.Strict {
		return NewTypeError(cx, "cannot assign to read-only property %q", key)
	}
	return nil
}

// SetPrototypeChecked sets o's prototype, rejecting cycles and frozen
// receivers.
func SetPrototypeChecked(cx *Context, o Scriptable, proto Scriptable) error {
	if !o.Extensible() {
		return NewTypeError(cx, "cannot set prototype of a non-extensible object")
	}
	for cur := proto; cur != nil; cur = cur.Prototype() {
		if cur == Scriptable(o) {
			return NewTypeError(cx, "cyclic prototype chain is not allowed")
		}
	}
	o.SetPrototype(proto)
	return nil
}

// SealObject marks every own property non-configurable and the object
// non-extensible. When freeze is set, data properties also become
// read-only.
func SealObject(cx *Context, o Scriptable, freeze bool) {
	for _, key := range o.OwnKeys(cx, false) {
		if p, ok := o.GetOwn(cx, key); ok {
			p.Configurable = false
			if freeze && !p.IsAccessor() {
				p.Writable = false
			}
		}
	}
	o.PreventExtensions()
}

// IsSealed reports whether every own property is non-configurable and the
// object is non-extensible; IsFrozen additionally requires data properties
// to be read-only.
func IsSealed(cx *Context, o Scriptable, frozen bool) bool {
	if o.Extensible() {
		return false
	}
	for _, key := range o.OwnKeys(cx, false) {
		p, ok := o.GetOwn(cx, key)
		if !ok {
			continue
		}
		if p.Configurable {
			return false
		}
		if frozen && !p.IsAccessor() && p.Writable {
			return false
		}
	}
	return true
}

// SortedOwnKeys returns own enumerable keys with integer indices first in
// numeric order, then the rest in insertion order, matching for…in.
func SortedOwnKeys(cx *Context, o Scriptable) []string {
	keys := o.OwnKeys(cx, true)
	var indices []string
	var names []string
	for _, k := range keys {
		if _, ok := IsArrayIndex(k); ok {
			indices = append(indices, k)
		} else {
			names = append(names, k)
		}
	}
	sort.Slice(indices, func(i, j int) bool {
		a, _ := IsArrayIndex(indices[i])
		b, _ := IsArrayIndex(indices[j])
		return a < b
	})
	return append(indices, names...)
}
