package runtime

import "testing"

func TestPrototypeChainLookup(t *testing.T) {
	cx := NewContext()
	proto := NewObject("Object", nil)
	proto.SetOwn(cx, "inherited", Number(1))
	obj := NewObject("Object", proto)
	obj.SetOwn(cx, "own", Number(2))

	if v, _ := GetProperty(cx, obj, "own"); v.(*NumberValue).Value != 2 {
		t.Error("own property lookup failed")
	}
	if v, _ := GetProperty(cx, obj, "inherited"); v.(*NumberValue).Value != 1 {
		t.Error("prototype lookup failed")
	}
	if v, _ := GetProperty(cx, obj, "missing"); v != Value(Undefined) {
		t.Error("missing property should be undefined")
	}
}

func TestShadowingWrite(t *testing.T) {
	cx := NewContext()
	proto := NewObject("Object", nil)
	proto.SetOwn(cx, "x", Number(1))
	obj := NewObject("Object", proto)

	if err := PutProperty(cx, obj, "x", Number(2)); err != nil {
		t.Fatal(err)
	}
	if v, _ := GetProperty(cx, obj, "x"); v.(*NumberValue).Value != 2 {
		t.Error("write did not shadow")
	}
	if v, _ := GetProperty(cx, proto, "x"); v.(*NumberValue).Value != 1 {
		t.Error("prototype value changed")
	}
}

func TestAccessorDispatch(t *testing.T) {
	cx := NewContext()
	var stored Value = Number(0)
	obj := NewObject("Object", nil)
	getter := NewNativeFunction("get x", 0, nil, func(cx *Context, this Value, args []Value) (Value, error) {
		return stored, nil
	})
	setter := NewNativeFunction("set x", 1, nil, func(cx *Context, this Value, args []Value) (Value, error) {
		stored = Arg(args, 0)
		return Undefined, nil
	})
	obj.DefineOwn(cx, "x", &Property{Getter: getter, Setter: setter, Enumerable: true, Configurable: true})

	if err := PutProperty(cx, obj, "x", Number(42)); err != nil {
		t.Fatal(err)
	}
	v, err := GetProperty(cx, obj, "x")
	if err != nil {
		t.Fatal(err)
	}
	if v.(*NumberValue).Value != 42 {
		t.Errorf("got %v", v.ToDisplay())
	}
}

func TestAccessorOnPrototype(t *testing.T) {
	cx := NewContext()
	proto := NewObject("Object", nil)
	var captured Value
	setter := NewNativeFunction("set y", 1, nil, func(cx *Context, this Value, args []Value) (Value, error) {
		captured = Arg(args, 0)
		return Undefined, nil
	})
	proto.DefineOwn(cx, "y", &Property{Setter: setter, Configurable: true})
	obj := NewObject("Object", proto)

	if err := PutProperty(cx, obj, "y", String("hi")); err != nil {
		t.Fatal(err)
	}
	if captured == nil || captured.(*StringValue).Value != "hi" {
		t.Error("prototype setter not invoked")
	}
	if _, ok := obj.GetOwn(cx, "y"); ok {
		t.Error("setter write must not create an own property")
	}
}

func TestNonConfigurableDelete(t *testing.T) {
	cx := NewContext()
	obj := NewObject("Object", nil)
	obj.DefineOwn(cx, "pinned", &Property{Value: Number(1), Writable: true, Enumerable: true})

	if obj.Delete(cx, "pinned") {
		t.Error("non-configurable property must not delete")
	}
	if !HasProperty(cx, obj, "pinned") {
		t.Error("property vanished")
	}
}

func TestPrototypeCycleRejected(t *testing.T) {
	cx := NewContext()
	a := NewObject("Object", nil)
	b := NewObject("Object", a)
	err := SetPrototypeChecked(cx, a, b)
	if err == nil {
		t.Fatal("cycle not rejected")
	}
	se, ok := err.(*ScriptError)
	if !ok || se.Kind != TypeErr {
		t.Errorf("got %v, want TypeError", err)
	}
}

func TestInsertionOrderIteration(t *testing.T) {
	cx := NewContext()
	obj := NewObject("Object", nil)
	for _, k := range []string{"z", "a", "m"} {
		obj.SetOwn(cx, k, Number(1))
	}
	keys := obj.OwnKeys(cx, true)
	want := []string{"z", "a", "m"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}

func TestForInKeyOrderIndicesFirst(t *testing.T) {
	cx := NewContext()
	obj := NewObject("Object", nil)
	obj.SetOwn(cx, "b", Number(1))
	obj.SetOwn(cx, "2", Number(1))
	obj.SetOwn(cx, "0", Number(1))
	obj.SetOwn(cx, "a", Number(1))
	keys := SortedOwnKeys(cx, obj)
	want := []string{"0", "2", "b", "a"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}

func TestFreezeAndSeal(t *testing.T) {
	cx := NewContext()
	obj := NewObject("Object", nil)
	obj.SetOwn(cx, "x", Number(1))
	SealObject(cx, obj, false)
	if !IsSealed(cx, obj, false) || IsSealed(cx, obj, true) {
		t.Error("seal state wrong")
	}
	if obj.SetOwn(cx, "new", Number(2)) {
		t.Error("sealed object accepted a new property")
	}
	if !obj.SetOwn(cx, "x", Number(3)) {
		t.Error("sealed object should still allow writes")
	}

	SealObject(cx, obj, true)
	if !IsSealed(cx, obj, true) {
		t.Error("not frozen")
	}
	if obj.SetOwn(cx, "x", Number(4)) {
		t.Error("frozen object accepted a write")
	}
}

func TestArrayIndexNormalization(t *testing.T) {
	cx := NewContext()
	arr := NewArray(nil, nil)
	arr.SetOwn(cx, "0", String("first"))
	arr.SetOwn(cx, "2", String("third"))

	if arr.Len() != 3 {
		t.Fatalf("length %d", arr.Len())
	}
	if arr.At(0).(*StringValue).Value != "first" {
		t.Error("index 0 wrong")
	}
	if arr.At(1) != Value(Undefined) {
		t.Error("hole should read undefined")
	}
	if p, ok := arr.GetOwn(cx, "length"); !ok || p.Value.(*NumberValue).Value != 3 {
		t.Error("length property wrong")
	}
	// "02" is not a canonical index and lands in the property map.
	arr.SetOwn(cx, "02", String("odd"))
	if arr.Len() != 3 {
		t.Error("non-canonical index changed length")
	}
}

func TestStrictModeReadOnlyWrite(t *testing.T) {
	cx := NewContext()
	cx.Strict = true
	obj := NewObject("Object", nil)
	obj.DefineOwn(cx, "ro", &Property{Value: Number(1)})
	err := PutProperty(cx, obj, "ro", Number(2))
	if err == nil {
		t.Fatal("strict mode write to read-only should fail")
	}
	cx.Strict = false
	if err := PutProperty(cx, obj, "ro", Number(2)); err != nil {
		t.Error("sloppy mode write should be silently dropped")
	}
}
