package ffi

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

type overloadHost struct {
	lastCall string
}

func (o *overloadHost) F(i int)    { o.lastCall = "int" }
func (o *overloadHost) G(s string) { o.lastCall = "string" }

type beanHost struct {
	name string
}

func (b *beanHost) GetName() string     { return b.name }
func (b *beanHost) SetName(name string) { b.name = name }
func (b *beanHost) IsEmpty() bool       { return b.name == "" }

func wrapHost(t *testing.T, cx *runtime.Context, v any) runtime.Scriptable {
	t.Helper()
	w, err := WrapGoValue(cx, v)
	require.NoError(t, err)
	s, ok := w.(runtime.Scriptable)
	require.True(t, ok, "wrapped value is not a Scriptable: %T", w)
	return s
}

func TestOverloadWeights(t *testing.T) {
	cx := runtime.NewContext()
	intType := typeOf[int]()
	float64Type := typeOf[float64]()
	stringType := typeOf[string]()
	boolType := typeOf[bool]()
	anyT := anyType

	// number → numeric primitives: double is exact, narrower types rank
	// by size.
	assert.Equal(t, 1, conversionWeight(cx, runtime.Number(1), float64Type))
	assert.Equal(t, 4, conversionWeight(cx, runtime.Number(1), intType))
	assert.Equal(t, 9, conversionWeight(cx, runtime.Number(1), stringType))
	assert.Equal(t, 10, conversionWeight(cx, runtime.Number(1), anyT))
	assert.Equal(t, conversionNone, conversionWeight(cx, runtime.Number(1), boolType))

	// string
	assert.Equal(t, 1, conversionWeight(cx, runtime.String("x"), stringType))
	assert.Equal(t, 4, conversionWeight(cx, runtime.String("12"), intType))
	assert.Equal(t, 2, conversionWeight(cx, runtime.String("x"), anyT))

	// boolean
	assert.Equal(t, 1, conversionWeight(cx, runtime.True, boolType))
	assert.Equal(t, 3, conversionWeight(cx, runtime.True, anyT))
	assert.Equal(t, conversionNone, conversionWeight(cx, runtime.True, stringType))
	assert.Equal(t, conversionNone, conversionWeight(cx, runtime.True, intType))

	// null fits any non-primitive at weight 1; undefined only
	// String/Object.
	ptrType := typeOf[*beanHost]()
	assert.Equal(t, 1, conversionWeight(cx, runtime.Null, ptrType))
	assert.Equal(t, conversionNone, conversionWeight(cx, runtime.Null, intType))
	assert.Equal(t, 1, conversionWeight(cx, runtime.Undefined, stringType))
	assert.Equal(t, 1, conversionWeight(cx, runtime.Undefined, anyT))
	assert.Equal(t, conversionNone, conversionWeight(cx, runtime.Undefined, ptrType))
}

// S3 — f(int) vs f(String): 1.0 dispatches to int, '1' to String, true to
// neither.
func TestOverloadDispatch(t *testing.T) {
	cx := runtime.NewContext()

	fn, err := NewHostFunction(nil, "f",
		func(i int) string { return "int" },
		func(s string) string { return "string" },
	)
	require.NoError(t, err)

	res, err := fn.Call(cx, runtime.Undefined, []runtime.Value{runtime.Number(1.0)})
	require.NoError(t, err)
	assert.Equal(t, "int", res.ToDisplay())

	res, err = fn.Call(cx, runtime.Undefined, []runtime.Value{runtime.String("1")})
	require.NoError(t, err)
	assert.Equal(t, "string", res.ToDisplay())

	_, err = fn.Call(cx, runtime.Undefined, []runtime.Value{runtime.True})
	require.Error(t, err)
	se, ok := err.(*runtime.ScriptError)
	require.True(t, ok)
	assert.Equal(t, runtime.TypeErr, se.Kind)
}

func TestAmbiguousOverload(t *testing.T) {
	cx := runtime.NewContext()
	fn, err := NewHostFunction(nil, "g",
		func(a int, b float64) {},
		func(a float64, b int) {},
	)
	require.NoError(t, err)
	_, err = fn.Call(cx, runtime.Undefined, []runtime.Value{runtime.Number(1), runtime.Number(2)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

// S4 — getName/setName collapse into a bean property `name`.
func TestBeanProperty(t *testing.T) {
	cx := runtime.NewContext()
	host := &beanHost{name: "initial"}
	obj := wrapHost(t, cx, host)

	v, err := runtime.GetProperty(cx, obj, "name")
	require.NoError(t, err)
	assert.Equal(t, "initial", v.ToDisplay())

	require.NoError(t, runtime.PutProperty(cx, obj, "name", runtime.String("x")))
	assert.Equal(t, "x", host.name, "setter must write through to the host")

	// 'name' in host → true.
	assert.True(t, runtime.HasProperty(cx, obj, "name"))

	// delete host.name → false: synthesized members are not
	// configurable.
	assert.False(t, obj.Delete(cx, "name"))
	assert.True(t, runtime.HasProperty(cx, obj, "name"))

	// isX getters work as read-only bean properties.
	empty, err := runtime.GetProperty(cx, obj, "empty")
	require.NoError(t, err)
	assert.Equal(t, "false", empty.ToDisplay())
}

func TestFieldAccess(t *testing.T) {
	type pair struct {
		First  int
		Second string
	}
	cx := runtime.NewContext()
	host := &pair{First: 7, Second: "seven"}
	obj := wrapHost(t, cx, host)

	v, err := runtime.GetProperty(cx, obj, "first")
	require.NoError(t, err)
	assert.Equal(t, "7", v.ToDisplay())

	require.NoError(t, runtime.PutProperty(cx, obj, "second", runtime.String("6")))
	assert.Equal(t, "6", host.Second)
}

func TestMethodCall(t *testing.T) {
	cx := runtime.NewContext()
	host := &overloadHost{}
	obj := wrapHost(t, cx, host)

	m, err := runtime.GetProperty(cx, obj, "f")
	require.NoError(t, err)
	fn, ok := m.(runtime.Callable)
	require.True(t, ok)
	_, err = fn.Call(cx, obj, []runtime.Value{runtime.Number(3)})
	require.NoError(t, err)
	assert.Equal(t, "int", host.lastCall)
}

func TestWrapperIdentityMemoized(t *testing.T) {
	cx := runtime.NewContext()
	host := &beanHost{}
	a := wrapHost(t, cx, host)
	b := wrapHost(t, cx, host)
	assert.Same(t, a, b, "the same host object must wrap to the same Scriptable")

	other := wrapHost(t, cx, &beanHost{})
	assert.NotSame(t, a, other)
}

func TestHostSliceBasics(t *testing.T) {
	cx := runtime.NewContext()
	list := []int{10, 20, 30}
	obj := wrapHost(t, cx, &list)

	l, err := runtime.GetProperty(cx, obj, "length")
	require.NoError(t, err)
	assert.Equal(t, "3", l.ToDisplay())

	el, err := runtime.GetProperty(cx, obj, "1")
	require.NoError(t, err)
	assert.Equal(t, "20", el.ToDisplay())

	push, _ := runtime.GetProperty(cx, obj, "push")
	_, err = push.(runtime.Callable).Call(cx, obj, []runtime.Value{runtime.Number(40)})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40}, list, "push must write back through the pointer")

	join, _ := runtime.GetProperty(cx, obj, "join")
	res, err := join.(runtime.Callable).Call(cx, obj, []runtime.Value{runtime.String("-")})
	require.NoError(t, err)
	assert.Equal(t, "10-20-30-40", res.ToDisplay())
}

func TestHostSliceHigherOrder(t *testing.T) {
	cx := runtime.NewContext()
	list := []int{1, 2, 3, 4}
	obj := wrapHost(t, cx, list)

	double := runtime.NewNativeFunction("double", 1, nil,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			n := args[0].(*runtime.NumberValue).Value
			return runtime.Number(n * 2), nil
		})
	mp, _ := runtime.GetProperty(cx, obj, "map")
	res, err := mp.(runtime.Callable).Call(cx, obj, []runtime.Value{double})
	require.NoError(t, err)
	arr := res.(*runtime.ArrayObject)
	assert.Equal(t, 4, arr.Len())
	assert.Equal(t, "8", arr.At(3).ToDisplay())

	isEven := runtime.NewNativeFunction("isEven", 1, nil,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			n := args[0].(*runtime.NumberValue).Value
			return runtime.Bool(int(n)%2 == 0), nil
		})
	filter, _ := runtime.GetProperty(cx, obj, "filter")
	res, err = filter.(runtime.Callable).Call(cx, obj, []runtime.Value{isEven})
	require.NoError(t, err)
	hs := res.(*HostSlice)
	assert.Equal(t, []int{2, 4}, hs.Unwrap())

	add := runtime.NewNativeFunction("add", 2, nil,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			a := args[0].(*runtime.NumberValue).Value
			b := args[1].(*runtime.NumberValue).Value
			return runtime.Number(a + b), nil
		})
	reduce, _ := runtime.GetProperty(cx, obj, "reduce")
	res, err = reduce.(runtime.Callable).Call(cx, obj, []runtime.Value{add})
	require.NoError(t, err)
	assert.Equal(t, "10", res.ToDisplay())
}

func TestHostSliceSpliceNotImplemented(t *testing.T) {
	cx := runtime.NewContext()
	obj := wrapHost(t, cx, []int{1})
	for _, name := range []string{"slice", "splice"} {
		m, _ := runtime.GetProperty(cx, obj, name)
		_, err := m.(runtime.Callable).Call(cx, obj, nil)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "not implemented")
	}
}

func TestHostMapAccess(t *testing.T) {
	cx := runtime.NewContext()
	m := map[string]int{"a": 1}
	obj := wrapHost(t, cx, m)

	v, err := runtime.GetProperty(cx, obj, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v.ToDisplay())

	require.NoError(t, runtime.PutProperty(cx, obj, "b", runtime.Number(2)))
	assert.Equal(t, 2, m["b"])

	assert.True(t, obj.Delete(cx, "a"))
	_, present := m["a"]
	assert.False(t, present)
}

func TestHostErrorWrapped(t *testing.T) {
	cx := runtime.NewContext()
	boom := errors.New("division by zero")
	fn, err := NewHostFunction(nil, "divide", func(a, b int) (int, error) {
		if b == 0 {
			return 0, boom
		}
		return a / b, nil
	})
	require.NoError(t, err)

	res, err := fn.Call(cx, runtime.Undefined, []runtime.Value{runtime.Number(10), runtime.Number(2)})
	require.NoError(t, err)
	assert.Equal(t, "5", res.ToDisplay())

	_, err = fn.Call(cx, runtime.Undefined, []runtime.Value{runtime.Number(10), runtime.Number(0)})
	require.Error(t, err)
	se, ok := err.(*runtime.ScriptError)
	require.True(t, ok)
	assert.Equal(t, runtime.WrappedErr, se.Kind)
	assert.Contains(t, se.Message, "division by zero", "message must preserve the host message")
	assert.ErrorIs(t, se, boom, "cause must retain the original")
}

func TestFuncAdapterDispatchesBack(t *testing.T) {
	cx := runtime.NewContext()
	script := runtime.NewNativeFunction("triple", 1, nil,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			n := args[0].(*runtime.NumberValue).Value
			return runtime.Number(n * 3), nil
		})

	fn, err := NewHostFunction(nil, "apply", func(f func(int) int, x int) int {
		return f(x)
	})
	require.NoError(t, err)

	res, err := fn.Call(cx, runtime.Undefined, []runtime.Value{script, runtime.Number(5)})
	require.NoError(t, err)
	assert.Equal(t, "15", res.ToDisplay())
}

func TestScriptArrayToHostSlice(t *testing.T) {
	cx := runtime.NewContext()
	arr := runtime.NewArray(nil, []runtime.Value{runtime.Number(1), runtime.Number(2)})
	fn, err := NewHostFunction(nil, "sum", func(xs []int) int {
		total := 0
		for _, x := range xs {
			total += x
		}
		return total
	})
	require.NoError(t, err)
	res, err := fn.Call(cx, runtime.Undefined, []runtime.Value{arr})
	require.NoError(t, err)
	assert.Equal(t, "3", res.ToDisplay())
}

func TestTypeWrapperShortCircuit(t *testing.T) {
	cx := runtime.NewContext()
	cx.TypeWrappers().Register(stubWrapper{})
	// The wrapper claims string→int conversions, beating the default
	// weight of 4 with a nontrivial 0.
	assert.Equal(t, weightNontrivial, conversionWeight(cx, runtime.String("zz"), typeOf[int]()))
}

type stubWrapper struct{}

func (stubWrapper) Supports(v runtime.Value, tag string) bool {
	_, isString := v.(*runtime.StringValue)
	return isString && tag == "int"
}

func (stubWrapper) Convert(cx *runtime.Context, v runtime.Value, tag string) (any, error) {
	return 42, nil
}

func TestNameMapping(t *testing.T) {
	cx := runtime.NewContext()
	host := &beanHost{}
	obj := wrapHost(t, cx, host)
	// Methods keep their lower-first names alongside the bean property.
	assert.True(t, runtime.HasProperty(cx, obj, "getName"))
	assert.True(t, runtime.HasProperty(cx, obj, "name"))
}
