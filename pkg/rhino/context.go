// Package rhino is the embedder API: scoped contexts, standard-object
// scopes, script compilation and evaluation, and host-value wrapping.
//
// The usual shape of an embedding:
//
//	ctx := rhino.Enter()
//	defer ctx.Exit()
//	scope := ctx.InitStandardObjects()
//	ctx.AddToScope(scope, "host", myService)
//	result, err := ctx.EvaluateString(scope, source, "init.js", 1)
//
// A Context is single-threaded: it owns the script call stack and caches
// and must not be shared between goroutines. Reflection member tables are
// shared process-wide and are safe for concurrent reads.
package rhino

import (
	"fmt"
	"io"
	"os"

	"github.com/gigaherz/rhinogo/internal/builtins"
	"github.com/gigaherz/rhinogo/internal/ffi"
	"github.com/gigaherz/rhinogo/internal/interp"
	"github.com/gigaherz/rhinogo/internal/parser"
	"github.com/gigaherz/rhinogo/internal/runtime"
	"github.com/gigaherz/rhinogo/pkg/ast"
)

// Value is a script value.
type Value = runtime.Value

// Scriptable is a script object.
type Scriptable = runtime.Scriptable

// ScriptError is the structured error surfaced to embedders.
type ScriptError = runtime.ScriptError

// Context is the unit of execution. Enter creates one; Exit releases it.
type Context struct {
	cx      *runtime.Context
	ev      *interp.Evaluator
	factory *ffi.Factory
	strict  bool
	entered bool
}

// Scope is a root scope: a global object plus the frame the evaluator
// resolves top-level names in.
type Scope struct {
	Global Scriptable
	env    *runtime.Environment
}

// Option configures a Context at Enter time.
type Option func(*Context)

// WithStrictMode enables strict parsing and evaluation.
func WithStrictMode(strict bool) Option {
	return func(c *Context) {
		c.strict = strict
		c.cx.Strict = strict
	}
}

// WithOutput directs console output; default is stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Context) { c.cx.Output = w }
}

// WithInterruptCheck installs the cancellation hook consulted before each
// statement. Returning true terminates the script with an error that
// script catch clauses cannot observe.
func WithInterruptCheck(hook func() bool) Option {
	return func(c *Context) { c.cx.Interrupt = hook }
}

// WithMaxStackDepth bounds script recursion.
func WithMaxStackDepth(depth int) Option {
	return func(c *Context) { c.cx.MaxStackDepth = depth }
}

// Enter acquires a context. Pair every Enter with Exit, on every path.
func Enter(opts ...Option) *Context {
	cx := runtime.NewContext()
	cx.Output = os.Stdout
	c := &Context{
		cx:      cx,
		ev:      interp.New(cx),
		factory: &ffi.Factory{},
		entered: true,
	}
	cx.SetWrapFactory(c.factory)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exit releases the context. Wrapper caches are dropped so host
// references become collectible.
func (c *Context) Exit() {
	if !c.entered {
		return
	}
	c.entered = false
	c.cx.ReleaseWrappers()
}

// Runtime exposes the low-level context for advanced embedders.
func (c *Context) Runtime() *runtime.Context { return c.cx }

// InitStandardObjects populates a fresh root scope with the built-ins.
func (c *Context) InitStandardObjects() *Scope {
	global := builtins.Init(c.cx)
	c.factory.ObjectProto = c.cx.Realm.ObjectProto
	c.factory.FuncProto = c.cx.Realm.FunctionProto
	c.factory.ArrayProto = c.cx.Realm.ArrayProto

	env := runtime.NewEnvironment()
	env.BindThis(global)
	return &Scope{Global: global, env: env}
}

// AddToScope installs a host value into a scope under the given name,
// wrapping it through the context's wrap factory.
func (c *Context) AddToScope(scope *Scope, name string, value any) error {
	wrapped, err := ffi.WrapGoValue(c.cx, value)
	if err != nil {
		return err
	}
	scope.Global.SetOwn(c.cx, name, wrapped)
	return nil
}

// AddFunction exposes one or more Go functions (an overload set) to
// scripts under the given name.
func (c *Context) AddFunction(scope *Scope, name string, fns ...any) error {
	fn, err := ffi.NewHostFunction(c.factory, name, fns...)
	if err != nil {
		return err
	}
	scope.Global.SetOwn(c.cx, name, fn)
	return nil
}

// Script is a compiled program, reusable across scopes within its
// context.
type Script struct {
	program *ast.Program
}

// CompileString parses source into a reusable Script. Parse errors are
// reported as a SyntaxError carrying the first error's position.
func (c *Context) CompileString(source, sourceName string, startLine int) (*Script, error) {
	p := parser.New(source,
		parser.WithSourceName(sourceName),
		parser.WithStrictMode(c.strict),
	)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		first := errs[0]
		se := &runtime.ScriptError{
			Kind:       runtime.SyntaxErr,
			Message:    first.Msg,
			SourceName: sourceName,
			LineNumber: first.Pos.Line + startLine - 1,
			Column:     first.Pos.Column,
		}
		return nil, se
	}
	return &Script{program: program}, nil
}

// Exec runs the compiled script against a scope and returns its
// completion value.
func (s *Script) Exec(c *Context, scope *Scope) (Value, error) {
	if !c.entered {
		return nil, fmt.Errorf("context has been exited")
	}
	return c.ev.Run(s.program, scope.env)
}

// EvaluateString parses and runs source, returning the completion value.
func (c *Context) EvaluateString(scope *Scope, source, sourceName string, startLine int) (Value, error) {
	script, err := c.CompileString(source, sourceName, startLine)
	if err != nil {
		return nil, err
	}
	return script.Exec(c, scope)
}

// SetWrapFactory customizes host-to-script wrapping.
func (c *Context) SetWrapFactory(f runtime.WrapFactory) { c.cx.SetWrapFactory(f) }

// WrapFactory returns the active wrap factory.
func (c *Context) WrapFactory() runtime.WrapFactory { return c.cx.WrapFactory() }

// TypeWrappers returns the registry of custom coercions consulted during
// overload resolution.
func (c *Context) TypeWrappers() *runtime.TypeWrapperRegistry { return c.cx.TypeWrappers() }
