package interp

import (
	"github.com/gigaherz/rhinogo/internal/runtime"
	"github.com/gigaherz/rhinogo/pkg/ast"
)

// Function is a script-defined function: the AST node plus the captured
// frame chain. Arrows are the same object with lexical `this`.
type Function struct {
	*runtime.BaseObject
	ev   *Evaluator
	node *ast.FunctionNode
	env  *runtime.Environment
	name string
}

// newFunction creates a closure over env.
func (ev *Evaluator) newFunction(n *ast.FunctionNode, env *runtime.Environment) *Function {
	name := ""
	if n.Name != nil {
		name = n.Name.Name
	}
	var proto runtime.Scriptable
	if ev.cx.Realm != nil {
		proto = ev.cx.Realm.FunctionProto
	}
	fn := &Function{
		BaseObject: runtime.NewObject("Function", proto),
		ev:         ev,
		node:       n,
		env:        env,
		name:       name,
	}
	fn.DefineOwn(ev.cx, "name", &runtime.Property{Value: runtime.String(name), Configurable: true})
	fn.DefineOwn(ev.cx, "length", &runtime.Property{Value: runtime.Number(float64(len(n.Params))), Configurable: true})
	if !n.Arrow {
		// Every ordinary function carries a fresh prototype object for
		// `new`, with a constructor back-reference.
		protoObj := ev.newObject()
		protoObj.SetOwn(ev.cx, "constructor", fn)
		fn.DefineOwn(ev.cx, "prototype", &runtime.Property{Value: protoObj, Writable: true})
	}
	return fn
}

func (f *Function) TypeOf() string { return "function" }

func (f *Function) ToDisplay() string {
	name := f.name
	if name == "" {
		name = "anonymous"
	}
	return "function " + name + "() { ... }"
}

// Name returns the function's diagnostic name.
func (f *Function) Name() string { return f.name }

// Call runs the function body in a fresh activation.
func (f *Function) Call(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	ev := f.ev
	if err := cx.PushFrame(cx.SourceName(), f.name, f.node.Line()); err != nil {
		return nil, err
	}
	defer cx.PopFrame()

	fnEnv := runtime.NewEnclosedEnvironment(f.env)
	if !f.node.Arrow {
		if runtime.IsNullish(this) && !cx.Strict {
			this = ev.defaultThis()
		}
		fnEnv.BindThis(this)
		fnEnv.Declare("arguments", runtime.BindVar, ev.newArray(append([]runtime.Value{}, args...)))
	}

	ev.hoistScope(f.node.Scope, fnEnv)
	if err := f.bindParams(fnEnv, args); err != nil {
		return nil, err
	}

	if f.node.Concise != nil {
		return ev.eval(f.node.Concise, fnEnv)
	}

	if err := ev.hoistFunctions(f.node.Body.Body, fnEnv); err != nil {
		return nil, err
	}
	cf := runtime.NewControlFlow()
	for _, stmt := range f.node.Body.Body {
		if _, err := ev.execStatement(stmt, fnEnv, cf); err != nil {
			return nil, err
		}
		if cf.IsActive() {
			break
		}
	}
	if cf.Kind() == runtime.ReturnCompletion {
		return cf.Value(), nil
	}
	return runtime.Undefined, nil
}

func (f *Function) bindParams(fnEnv *runtime.Environment, args []runtime.Value) error {
	ev := f.ev
	for i, param := range f.node.Params {
		if rest, ok := param.(*ast.RestElement); ok {
			var remaining []runtime.Value
			if i < len(args) {
				remaining = append(remaining, args[i:]...)
			}
			return ev.bindPattern(rest.Target, ev.newArray(remaining), fnEnv, runtime.BindParam, true)
		}
		v := runtime.Arg(args, i)
		if err := ev.bindPattern(param, v, fnEnv, runtime.BindParam, true); err != nil {
			return err
		}
	}
	return nil
}

// Construct implements `new fn(...)`: allocate, link the prototype, invoke
// with the new object as `this`, and return the object unless the body
// returned another object.
func (f *Function) Construct(cx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
	if f.node.Arrow {
		return nil, runtime.NewTypeError(cx, "%s is not a constructor", f.name)
	}
	protoV, err := runtime.GetProperty(cx, f, "prototype")
	if err != nil {
		return nil, err
	}
	proto, _ := protoV.(runtime.Scriptable)
	if proto == nil && cx.Realm != nil {
		proto = cx.Realm.ObjectProto
	}
	obj := runtime.NewObject("Object", proto)
	res, err := f.Call(cx, obj, args)
	if err != nil {
		return nil, err
	}
	if out, ok := res.(runtime.Scriptable); ok {
		return out, nil
	}
	return obj, nil
}

// bindPattern binds a destructuring pattern. With declare set, names are
// created (or TDZ-initialized) in env under kind; otherwise each name is
// assigned through the normal resolution rules and member targets are
// written in place.
func (ev *Evaluator) bindPattern(pat ast.Pattern, v runtime.Value, env *runtime.Environment, kind runtime.BindingKind, declare bool) error {
	switch n := pat.(type) {
	case *ast.Identifier:
		if !declare {
			return ev.assignName(env, n.Name, v)
		}
		switch {
		case kind.IsLexical():
			if env.HasLocal(n.Name) {
				env.Initialize(n.Name, v)
			} else {
				env.Declare(n.Name, kind, v)
			}
		case kind == runtime.BindVar:
			// The hoisted binding lives in the enclosing function frame.
			return ev.assignName(env, n.Name, v)
		default:
			env.Declare(n.Name, kind, v)
		}
		return nil

	case *ast.MemberExpression:
		if declare {
			return runtime.NewSyntaxError(ev.cx, "member expression is not a valid binding target")
		}
		return ev.setMemberExpr(n, v, env)

	case *ast.AssignPattern:
		if _, isUndef := v.(*runtime.UndefinedValue); isUndef {
			def, err := ev.eval(n.Default, env)
			if err != nil {
				return err
			}
			v = def
		}
		return ev.bindPattern(n.Target, v, env, kind, declare)

	case *ast.RestElement:
		return ev.bindPattern(n.Target, v, env, kind, declare)

	case *ast.ArrayPattern:
		var items []runtime.Value
		if err := ev.iterate(v, func(el runtime.Value) error {
			items = append(items, el)
			return nil
		}); err != nil {
			return err
		}
		for i, el := range n.Elements {
			if el == nil {
				continue
			}
			if err := ev.bindPattern(el, runtime.Arg(items, i), env, kind, declare); err != nil {
				return err
			}
		}
		if n.Rest != nil {
			var rest []runtime.Value
			if len(items) > len(n.Elements) {
				rest = append(rest, items[len(n.Elements):]...)
			}
			return ev.bindPattern(n.Rest, ev.newArray(rest), env, kind, declare)
		}
		return nil

	case *ast.ObjectPattern:
		if runtime.IsNullish(v) {
			return runtime.NewTypeError(ev.cx, "cannot destructure %s", v.TypeOf())
		}
		taken := make(map[string]bool)
		for _, prop := range n.Properties {
			key, err := ev.patternKey(prop, env)
			if err != nil {
				return err
			}
			taken[key] = true
			pv, err := ev.getMember(v, key)
			if err != nil {
				return err
			}
			if err := ev.bindPattern(prop.Value, pv, env, kind, declare); err != nil {
				return err
			}
		}
		if n.Rest != nil {
			rest := ev.newObject()
			if src, ok := v.(runtime.Scriptable); ok {
				for _, key := range src.OwnKeys(ev.cx, true) {
					if taken[key] {
						continue
					}
					pv, err := runtime.GetProperty(ev.cx, src, key)
					if err != nil {
						return err
					}
					rest.SetOwn(ev.cx, key, pv)
				}
			}
			return ev.bindPattern(n.Rest, rest, env, kind, declare)
		}
		return nil
	}
	return runtime.NewEvaluatorError(ev.cx, "unhandled pattern node %T", pat)
}

func (ev *Evaluator) patternKey(prop *ast.PatternProperty, env *runtime.Environment) (string, error) {
	if prop.Computed {
		v, err := ev.eval(prop.Key, env)
		if err != nil {
			return "", err
		}
		return runtime.ToString(ev.cx, v)
	}
	switch k := prop.Key.(type) {
	case *ast.Identifier:
		return k.Name, nil
	case *ast.StringLiteral:
		return k.Value, nil
	case *ast.NumberLiteral:
		return runtime.FormatNumber(k.Value), nil
	}
	return "", runtime.NewEvaluatorError(ev.cx, "invalid pattern key node %T", prop.Key)
}

// assignTarget writes to a simple target (identifier or member).
func (ev *Evaluator) assignTarget(target ast.Pattern, v runtime.Value, env *runtime.Environment) error {
	switch n := target.(type) {
	case *ast.Identifier:
		return ev.assignName(env, n.Name, v)
	case *ast.MemberExpression:
		return ev.setMemberExpr(n, v, env)
	}
	return runtime.NewTypeError(ev.cx, "invalid assignment target")
}
