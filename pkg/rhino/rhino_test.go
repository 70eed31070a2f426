package rhino_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigaherz/rhinogo/internal/runtime"
	"github.com/gigaherz/rhinogo/pkg/rhino"
)

type greeter struct {
	name string
}

func (g *greeter) GetName() string  { return g.name }
func (g *greeter) SetName(n string) { g.name = n }
func (g *greeter) Greet(who string) string {
	return "hello " + who + ", from " + g.name
}

func TestEvaluateString(t *testing.T) {
	ctx := rhino.Enter()
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()
	v, err := ctx.EvaluateString(scope, "6 * 7", "calc", 1)
	require.NoError(t, err)
	assert.Equal(t, "42", v.ToDisplay())
}

func TestCompileOnceRunTwice(t *testing.T) {
	ctx := rhino.Enter()
	defer ctx.Exit()

	script, err := ctx.CompileString(
		"counter = (typeof counter === 'undefined' ? 0 : counter) + 1", "inc", 1)
	require.NoError(t, err)

	scope := ctx.InitStandardObjects()
	_, err = script.Exec(ctx, scope)
	require.NoError(t, err)
	v, err := script.Exec(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "2", v.ToDisplay())
}

func TestSyntaxErrorSurfacesToEmbedder(t *testing.T) {
	ctx := rhino.Enter()
	defer ctx.Exit()
	_, err := ctx.CompileString("let = ;", "bad.js", 1)
	require.Error(t, err)
	var se *rhino.ScriptError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, runtime.SyntaxErr, se.Kind)
	assert.Equal(t, "bad.js", se.SourceName)
}

func TestErrorMessageFormat(t *testing.T) {
	ctx := rhino.Enter()
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()
	_, err := ctx.EvaluateString(scope, "\nundefinedName()", "app.js", 1)
	require.Error(t, err)
	var se *rhino.ScriptError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "(app.js#2)")
}

// S4 — bean property synthesis through the public API.
func TestHostBeanProperty(t *testing.T) {
	var buf bytes.Buffer
	ctx := rhino.Enter(rhino.WithOutput(&buf))
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()

	host := &greeter{name: "initial"}
	require.NoError(t, ctx.AddToScope(scope, "host", host))

	_, err := ctx.EvaluateString(scope, `
console.info(host.name);
host.name = 'x';
console.info('name' in host, delete host.name);
console.info(host.greet('world'));
`, "bean", 1)
	require.NoError(t, err)
	assert.Equal(t, "initial\ntrue false\nhello world, from x\n", buf.String())
	assert.Equal(t, "x", host.name)
}

// S3 — overload resolution through the public API.
func TestHostOverloads(t *testing.T) {
	var buf bytes.Buffer
	ctx := rhino.Enter(rhino.WithOutput(&buf))
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()

	require.NoError(t, ctx.AddFunction(scope, "f",
		func(i int) string { return "f(int)" },
		func(s string) string { return "f(String)" },
	))

	_, err := ctx.EvaluateString(scope, `
console.info(f(1.0));
console.info(f('1'));
try { f(true); } catch (e) { console.info(e instanceof TypeError); }
`, "overload", 1)
	require.NoError(t, err)
	assert.Equal(t, "f(int)\nf(String)\ntrue\n", buf.String())
}

// S5 — for…of over a host list.
func TestForOfOverHostList(t *testing.T) {
	var buf bytes.Buffer
	ctx := rhino.Enter(rhino.WithOutput(&buf))
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()

	require.NoError(t, ctx.AddToScope(scope, "xs", []int{10, 20, 30}))

	_, err := ctx.EvaluateString(scope, "let s=0; for (let v of xs) s+=v; console.info(s);", "sum", 1)
	require.NoError(t, err)
	assert.Equal(t, "60\n", buf.String())
}

func TestHostListMethods(t *testing.T) {
	var buf bytes.Buffer
	ctx := rhino.Enter(rhino.WithOutput(&buf))
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()

	list := []string{"b", "a"}
	require.NoError(t, ctx.AddToScope(scope, "xs", &list))

	_, err := ctx.EvaluateString(scope, `
xs.push('c');
console.info(xs.length, xs.join('-'));
console.info(xs.map(s => s.toUpperCase()).join(''));
`, "list", 1)
	require.NoError(t, err)
	assert.Equal(t, "3 b-a-c\nBAC\n", buf.String())
	assert.Equal(t, []string{"b", "a", "c"}, list)
}

func TestHostCallbackIntoScript(t *testing.T) {
	ctx := rhino.Enter()
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()

	require.NoError(t, ctx.AddFunction(scope, "apply", func(f func(int) int, x int) int {
		return f(x)
	}))
	v, err := ctx.EvaluateString(scope, "apply(n => n * n, 9)", "cb", 1)
	require.NoError(t, err)
	assert.Equal(t, "81", v.ToDisplay())
}

func TestWrappedHostErrorRetainsCause(t *testing.T) {
	ctx := rhino.Enter()
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()

	boom := errors.New("disk on fire")
	require.NoError(t, ctx.AddFunction(scope, "explode", func() error { return boom }))

	_, err := ctx.EvaluateString(scope, "explode()", "host", 1)
	require.Error(t, err)
	var se *rhino.ScriptError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, runtime.WrappedErr, se.Kind)
	assert.ErrorIs(t, se, boom)
}

func TestHostErrorCatchableInScript(t *testing.T) {
	var buf bytes.Buffer
	ctx := rhino.Enter(rhino.WithOutput(&buf))
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()

	require.NoError(t, ctx.AddFunction(scope, "explode", func() error {
		return errors.New("kaboom")
	}))
	_, err := ctx.EvaluateString(scope, `
try { explode(); } catch (e) { console.info('caught:', e.message); }
`, "host", 1)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "caught: kaboom")
}

func TestStrictMode(t *testing.T) {
	ctx := rhino.Enter(rhino.WithStrictMode(true))
	defer ctx.Exit()
	_, err := ctx.CompileString("with (o) {}", "strict.js", 1)
	require.Error(t, err, "with must be rejected in strict mode")
}

func TestWrapperIdentityAcrossRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	ctx := rhino.Enter(rhino.WithOutput(&buf))
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()

	host := &greeter{name: "same"}
	require.NoError(t, ctx.AddToScope(scope, "a", host))
	require.NoError(t, ctx.AddToScope(scope, "b", host))

	_, err := ctx.EvaluateString(scope, "console.info(a === b);", "ident", 1)
	require.NoError(t, err)
	assert.Equal(t, "true\n", buf.String())
}
