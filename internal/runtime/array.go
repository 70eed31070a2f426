package runtime

import (
	"math"
	"strconv"
)

// ArrayObject is the script array: dense element storage plus the usual
// property map for non-index keys. Index-looking string keys are
// normalized onto the element storage.
type ArrayObject struct {
	*BaseObject
	elements []Value
}

// NewArray creates an array over the given elements. proto is normally the
// realm's Array.prototype.
func NewArray(proto Scriptable, elements []Value) *ArrayObject {
	return &ArrayObject{
		BaseObject: NewObject("Array", proto),
		elements:   elements,
	}
}

// Elements exposes the dense storage; holes are nil.
func (a *ArrayObject) Elements() []Value { return a.elements }

// SetElements replaces the dense storage.
func (a *ArrayObject) SetElements(els []Value) { a.elements = els }

// Len returns the array length.
func (a *ArrayObject) Len() int { return len(a.elements) }

// At returns the element at i, Undefined for holes and out-of-range.
func (a *ArrayObject) At(i int) Value {
	if i < 0 || i >= len(a.elements) || a.elements[i] == nil {
		return Undefined
	}
	return a.elements[i]
}

// SetAt stores v at i, growing the array as needed.
func (a *ArrayObject) SetAt(i int, v Value) {
	for len(a.elements) <= i {
		a.elements = append(a.elements, nil)
	}
	a.elements[i] = v
}

// Append pushes values onto the end.
func (a *ArrayObject) Append(vs ...Value) {
	a.elements = append(a.elements, vs...)
}

func (a *ArrayObject) ToDisplay() string {
	s := ""
	for i, el := range a.elements {
		if i > 0 {
			s += ","
		}
		if el != nil && !IsNullish(el) {
			s += el.ToDisplay()
		}
	}
	return s
}

func (a *ArrayObject) GetOwn(cx *Context, key string) (*Property, bool) {
	if key == "length" {
		return &Property{Value: Number(float64(len(a.elements))), Writable: true}, true
	}
	if idx, ok := IsArrayIndex(key); ok {
		if int(idx) < len(a.elements) && a.elements[idx] != nil {
			return &Property{Value: a.elements[idx], Writable: true, Enumerable: true, Configurable: true}, true
		}
		return nil, false
	}
	return a.BaseObject.GetOwn(cx, key)
}

func (a *ArrayObject) SetOwn(cx *Context, key string, v Value) bool {
	if key == "length" {
		f, err := ToNumber(cx, v)
		if err != nil || f < 0 || math.Trunc(f) != f {
			return false
		}
		a.setLength(int(f))
		return true
	}
	if idx, ok := IsArrayIndex(key); ok {
		a.SetAt(int(idx), v)
		return true
	}
	return a.BaseObject.SetOwn(cx, key, v)
}

func (a *ArrayObject) setLength(n int) {
	if n < len(a.elements) {
		a.elements = a.elements[:n]
		return
	}
	for len(a.elements) < n {
		a.elements = append(a.elements, nil)
	}
}

func (a *ArrayObject) Delete(cx *Context, key string) bool {
	if idx, ok := IsArrayIndex(key); ok {
		if int(idx) < len(a.elements) {
			a.elements[idx] = nil // leaves a hole
		}
		return true
	}
	return a.BaseObject.Delete(cx, key)
}

func (a *ArrayObject) OwnKeys(cx *Context, enumOnly bool) []string {
	keys := make([]string, 0, len(a.elements))
	for i, el := range a.elements {
		if el != nil {
			keys = append(keys, strconv.Itoa(i))
		}
	}
	return append(keys, a.BaseObject.OwnKeys(cx, enumOnly)...)
}
