package interp

import (
	"strings"
	"unicode/utf16"

	"github.com/gigaherz/rhinogo/internal/runtime"
	"github.com/gigaherz/rhinogo/pkg/ast"
)

// newRegexp compiles a regular expression literal against the realm's
// RegExp.prototype.
func (ev *Evaluator) newRegexp(pattern, flags string) (runtime.Value, error) {
	var proto runtime.Scriptable
	if ev.cx.Realm != nil {
		proto = ev.cx.Realm.RegExpProto
	}
	return runtime.NewRegExp(ev.cx, proto, pattern, flags)
}

// eval evaluates an expression to a value.
func (ev *Evaluator) eval(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		return runtime.Number(n.Value), nil
	case *ast.StringLiteral:
		return runtime.String(n.Value), nil
	case *ast.BooleanLiteral:
		return runtime.Bool(n.Value), nil
	case *ast.NullLiteral:
		return runtime.Null, nil
	case *ast.BigIntLiteral:
		return ev.evalBigIntLiteral(n)
	case *ast.Identifier:
		return ev.resolveName(env, n.Name)
	case *ast.ThisExpression:
		return env.This(), nil
	case *ast.RegexpLiteral:
		return ev.newRegexp(n.Pattern, n.Flags)
	case *ast.TemplateLiteral:
		return ev.evalTemplate(n, env)
	case *ast.ArrayLiteral:
		return ev.evalArrayLiteral(n, env)
	case *ast.ObjectLiteral:
		return ev.evalObjectLiteral(n, env)
	case *ast.FunctionNode:
		return ev.newFunction(n, env), nil
	case *ast.UnaryExpression:
		return ev.evalUnary(n, env)
	case *ast.UpdateExpression:
		return ev.evalUpdate(n, env)
	case *ast.BinaryExpression:
		return ev.evalBinary(n, env)
	case *ast.ConditionalExpression:
		test, err := ev.eval(n.Test, env)
		if err != nil {
			return nil, err
		}
		if runtime.ToBoolean(test) {
			return ev.eval(n.Consequent, env)
		}
		return ev.eval(n.Alternate, env)
	case *ast.SequenceExpression:
		var last runtime.Value = runtime.Undefined
		for _, e := range n.Expressions {
			v, err := ev.eval(e, env)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	case *ast.AssignExpression:
		return ev.evalAssign(n, env)
	case *ast.MemberExpression:
		obj, err := ev.eval(n.Object, env)
		if err != nil {
			return nil, err
		}
		return ev.getMemberExpr(obj, n, env)
	case *ast.CallExpression:
		fn, this, err := ev.evalCallee(n.Callee, env)
		if err != nil {
			return nil, err
		}
		return ev.callValue(fn, this, n, env)
	case *ast.NewExpression:
		return ev.evalNew(n, env)
	case *ast.ChainExpression:
		v, aborted, err := ev.evalChainSpine(n.Expression, env)
		if err != nil {
			return nil, err
		}
		if aborted {
			return runtime.Undefined, nil
		}
		return v, nil
	case *ast.SpreadElement:
		return nil, runtime.NewSyntaxError(ev.cx, "unexpected spread element")
	}
	return nil, runtime.NewEvaluatorError(ev.cx, "unhandled expression node %T", expr)
}

// evalChainSpine evaluates the member/call spine inside a ChainExpression,
// short-circuiting the remaining tail as soon as a `?.` target is null or
// undefined. The target expression is evaluated exactly once.
func (ev *Evaluator) evalChainSpine(expr ast.Expression, env *runtime.Environment) (runtime.Value, bool, error) {
	switch n := expr.(type) {
	case *ast.MemberExpression:
		obj, aborted, err := ev.evalChainSpine(n.Object, env)
		if err != nil || aborted {
			return nil, aborted, err
		}
		if n.Optional && runtime.IsNullish(obj) {
			return nil, true, nil
		}
		v, err := ev.getMemberExpr(obj, n, env)
		return v, false, err

	case *ast.CallExpression:
		fn, this, aborted, err := ev.evalCalleeChain(n.Callee, env)
		if err != nil || aborted {
			return nil, aborted, err
		}
		if n.Optional && runtime.IsNullish(fn) {
			return nil, true, nil
		}
		v, err := ev.callValue(fn, this, n, env)
		return v, false, err

	default:
		v, err := ev.eval(expr, env)
		return v, false, err
	}
}

// evalCallee evaluates a call's callee, producing the function and its
// `this` receiver.
func (ev *Evaluator) evalCallee(callee ast.Expression, env *runtime.Environment) (fn, this runtime.Value, err error) {
	if member, ok := callee.(*ast.MemberExpression); ok {
		obj, err := ev.eval(member.Object, env)
		if err != nil {
			return nil, nil, err
		}
		fn, err := ev.getMemberExpr(obj, member, env)
		if err != nil {
			return nil, nil, err
		}
		return fn, obj, nil
	}
	// A name found on a with-object binds the object as the receiver.
	if id, ok := callee.(*ast.Identifier); ok {
		if fn, this, found, err := ev.lookupWithReceiver(env, id.Name); found || err != nil {
			return fn, this, err
		}
	}
	v, err := ev.eval(callee, env)
	if err != nil {
		return nil, nil, err
	}
	return v, ev.defaultThis(), nil
}

// evalCalleeChain is evalCallee inside an optional chain.
func (ev *Evaluator) evalCalleeChain(callee ast.Expression, env *runtime.Environment) (fn, this runtime.Value, aborted bool, err error) {
	if member, ok := callee.(*ast.MemberExpression); ok {
		obj, aborted, err := ev.evalChainSpine(member.Object, env)
		if err != nil || aborted {
			return nil, nil, aborted, err
		}
		if member.Optional && runtime.IsNullish(obj) {
			return nil, nil, true, nil
		}
		fn, err := ev.getMemberExpr(obj, member, env)
		if err != nil {
			return nil, nil, false, err
		}
		return fn, obj, false, nil
	}
	v, aborted, err := ev.evalChainSpine(callee, env)
	if err != nil || aborted {
		return nil, nil, aborted, err
	}
	return v, ev.defaultThis(), false, nil
}

// defaultThis is the receiver of a plain function call: undefined in
// strict mode, the global object otherwise.
func (ev *Evaluator) defaultThis() runtime.Value {
	if ev.cx.Strict {
		return runtime.Undefined
	}
	if ev.cx.Realm != nil && ev.cx.Realm.Global != nil {
		return ev.cx.Realm.Global
	}
	return runtime.Undefined
}

// callValue invokes fn with evaluated arguments.
func (ev *Evaluator) callValue(fn, this runtime.Value, call *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callable, ok := fn.(runtime.Callable)
	if !ok {
		return nil, runtime.NewTypeError(ev.cx, "%s is not a function", calleeName(call.Callee))
	}
	args, err := ev.evalArguments(call.Arguments, env)
	if err != nil {
		return nil, err
	}
	return callable.Call(ev.cx, this, args)
}

func calleeName(callee ast.Expression) string {
	switch n := callee.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.MemberExpression:
		if id, ok := n.Property.(*ast.Identifier); ok && !n.Computed {
			return calleeName(n.Object) + "." + id.Name
		}
	}
	return "expression"
}

func (ev *Evaluator) evalArguments(argNodes []ast.Expression, env *runtime.Environment) ([]runtime.Value, error) {
	var args []runtime.Value
	for _, a := range argNodes {
		if spread, ok := a.(*ast.SpreadElement); ok {
			target, err := ev.eval(spread.Argument, env)
			if err != nil {
				return nil, err
			}
			err = ev.iterate(target, func(v runtime.Value) error {
				args = append(args, v)
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}
		v, err := ev.eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (ev *Evaluator) evalNew(n *ast.NewExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, err := ev.eval(n.Callee, env)
	if err != nil {
		return nil, err
	}
	ctor, ok := callee.(runtime.Constructable)
	if !ok {
		return nil, runtime.NewTypeError(ev.cx, "%s is not a constructor", calleeName(n.Callee))
	}
	args, err := ev.evalArguments(n.Arguments, env)
	if err != nil {
		return nil, err
	}
	return ctor.Construct(ev.cx, args)
}

// lookupWithReceiver finds a name on a with-frame, returning the with
// object as the call receiver. found is false when the name resolves
// normally.
func (ev *Evaluator) lookupWithReceiver(env *runtime.Environment, name string) (fn, this runtime.Value, found bool, err error) {
	for f := env; f != nil; f = f.Outer() {
		if w := f.WithObject(); w != nil {
			if runtime.HasProperty(ev.cx, w, name) {
				v, err := runtime.GetProperty(ev.cx, w, name)
				return v, w, true, err
			}
			continue
		}
		if f.HasLocal(name) {
			return nil, nil, false, nil
		}
	}
	return nil, nil, false, nil
}

// resolveName looks a name up through the frame chain, honoring dynamic
// with-frames and falling back to the global object.
func (ev *Evaluator) resolveName(env *runtime.Environment, name string) (runtime.Value, error) {
	for f := env; f != nil; f = f.Outer() {
		if w := f.WithObject(); w != nil {
			if runtime.HasProperty(ev.cx, w, name) {
				return runtime.GetProperty(ev.cx, w, name)
			}
			continue
		}
		if f.HasLocal(name) {
			return f.GetLocal(ev.cx, name)
		}
	}
	if g := ev.globalObject(); g != nil && runtime.HasProperty(ev.cx, g, name) {
		return runtime.GetProperty(ev.cx, g, name)
	}
	return nil, runtime.NewReferenceError(ev.cx, "%q is not defined", name)
}

// nameBound reports whether a name resolves at all (used by typeof).
func (ev *Evaluator) nameBound(env *runtime.Environment, name string) bool {
	for f := env; f != nil; f = f.Outer() {
		if w := f.WithObject(); w != nil {
			if runtime.HasProperty(ev.cx, w, name) {
				return true
			}
			continue
		}
		if f.HasLocal(name) {
			return true
		}
	}
	g := ev.globalObject()
	return g != nil && runtime.HasProperty(ev.cx, g, name)
}

func (ev *Evaluator) globalObject() runtime.Scriptable {
	if ev.cx.Realm != nil {
		return ev.cx.Realm.Global
	}
	return nil
}

// assignName writes a name through the frame chain. An unresolved name is
// a ReferenceError in strict mode and an implicit global otherwise.
func (ev *Evaluator) assignName(env *runtime.Environment, name string, v runtime.Value) error {
	for f := env; f != nil; f = f.Outer() {
		if w := f.WithObject(); w != nil {
			if runtime.HasProperty(ev.cx, w, name) {
				return runtime.PutProperty(ev.cx, w, name, v)
			}
			continue
		}
		if f.HasLocal(name) {
			return f.SetLocal(ev.cx, name, v)
		}
	}
	if g := ev.globalObject(); g != nil {
		if runtime.HasProperty(ev.cx, g, name) || !ev.cx.Strict {
			return runtime.PutProperty(ev.cx, g, name, v)
		}
	}
	if ev.cx.Strict {
		return runtime.NewReferenceError(ev.cx, "%q is not defined", name)
	}
	env.Declare(name, runtime.BindVar, v)
	return nil
}

func (ev *Evaluator) evalBigIntLiteral(n *ast.BigIntLiteral) (runtime.Value, error) {
	i, ok := runtime.ParseBigInt(n.Literal)
	if !ok {
		return nil, runtime.NewSyntaxError(ev.cx, "invalid BigInt literal %q", n.Literal)
	}
	return runtime.BigInt(i), nil
}

func (ev *Evaluator) evalTemplate(n *ast.TemplateLiteral, env *runtime.Environment) (runtime.Value, error) {
	var sb strings.Builder
	sb.WriteString(n.Quasis[0])
	for i, e := range n.Expressions {
		v, err := ev.eval(e, env)
		if err != nil {
			return nil, err
		}
		s, err := runtime.ToString(ev.cx, v)
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
		if i+1 < len(n.Quasis) {
			sb.WriteString(n.Quasis[i+1])
		}
	}
	return runtime.String(sb.String()), nil
}

func (ev *Evaluator) evalArrayLiteral(n *ast.ArrayLiteral, env *runtime.Environment) (runtime.Value, error) {
	var els []runtime.Value
	for _, e := range n.Elements {
		if e == nil {
			els = append(els, nil) // hole
			continue
		}
		if spread, ok := e.(*ast.SpreadElement); ok {
			target, err := ev.eval(spread.Argument, env)
			if err != nil {
				return nil, err
			}
			err = ev.iterate(target, func(v runtime.Value) error {
				els = append(els, v)
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}
		v, err := ev.eval(e, env)
		if err != nil {
			return nil, err
		}
		els = append(els, v)
	}
	return ev.newArray(els), nil
}

func (ev *Evaluator) newArray(els []runtime.Value) *runtime.ArrayObject {
	var proto runtime.Scriptable
	if ev.cx.Realm != nil {
		proto = ev.cx.Realm.ArrayProto
	}
	return runtime.NewArray(proto, els)
}

func (ev *Evaluator) newObject() *runtime.BaseObject {
	var proto runtime.Scriptable
	if ev.cx.Realm != nil {
		proto = ev.cx.Realm.ObjectProto
	}
	return runtime.NewObject("Object", proto)
}

func (ev *Evaluator) evalObjectLiteral(n *ast.ObjectLiteral, env *runtime.Environment) (runtime.Value, error) {
	obj := ev.newObject()
	for _, prop := range n.Properties {
		if prop.Kind == ast.PropertySpread {
			source, err := ev.eval(prop.Value, env)
			if err != nil {
				return nil, err
			}
			if src, ok := source.(runtime.Scriptable); ok {
				for _, key := range src.OwnKeys(ev.cx, true) {
					v, err := runtime.GetProperty(ev.cx, src, key)
					if err != nil {
						return nil, err
					}
					obj.SetOwn(ev.cx, key, v)
				}
			}
			continue
		}

		key, sym, err := ev.propertyKey(prop, env)
		if err != nil {
			return nil, err
		}

		switch prop.Kind {
		case ast.PropertyGet, ast.PropertySet:
			fn := ev.newFunction(prop.Value.(*ast.FunctionNode), env)
			existing, _ := obj.GetOwn(ev.cx, key)
			desc := &runtime.Property{Enumerable: true, Configurable: true}
			if existing != nil && existing.IsAccessor() {
				desc.Getter, desc.Setter = existing.Getter, existing.Setter
			}
			if prop.Kind == ast.PropertyGet {
				desc.Getter = fn
			} else {
				desc.Setter = fn
			}
			if err := obj.DefineOwn(ev.cx, key, desc); err != nil {
				return nil, err
			}
		default:
			v, err := ev.eval(prop.Value, env)
			if err != nil {
				return nil, err
			}
			if sym != nil {
				obj.SetOwnSymbol(ev.cx, sym, &runtime.Property{Value: v, Writable: true, Enumerable: true, Configurable: true})
			} else {
				obj.SetOwn(ev.cx, key, v)
			}
		}
	}
	return obj, nil
}

// propertyKey evaluates an object-literal key to a string, or to a symbol
// for computed symbol keys.
func (ev *Evaluator) propertyKey(prop *ast.ObjectProperty, env *runtime.Environment) (string, *runtime.SymbolValue, error) {
	if prop.Computed {
		v, err := ev.eval(prop.Key, env)
		if err != nil {
			return "", nil, err
		}
		if sym, ok := v.(*runtime.SymbolValue); ok {
			return "", sym, nil
		}
		s, err := runtime.ToString(ev.cx, v)
		return s, nil, err
	}
	switch k := prop.Key.(type) {
	case *ast.Identifier:
		return k.Name, nil, nil
	case *ast.StringLiteral:
		return k.Value, nil, nil
	case *ast.NumberLiteral:
		return runtime.FormatNumber(k.Value), nil, nil
	}
	return "", nil, runtime.NewEvaluatorError(ev.cx, "invalid property key node %T", prop.Key)
}

// getMemberExpr reads obj.prop / obj[prop].
func (ev *Evaluator) getMemberExpr(obj runtime.Value, n *ast.MemberExpression, env *runtime.Environment) (runtime.Value, error) {
	if n.Computed {
		keyV, err := ev.eval(n.Property, env)
		if err != nil {
			return nil, err
		}
		if sym, ok := keyV.(*runtime.SymbolValue); ok {
			target, ok := obj.(runtime.Scriptable)
			if !ok {
				return runtime.Undefined, nil
			}
			return runtime.GetPropertySymbol(ev.cx, target, sym)
		}
		key, err := runtime.ToString(ev.cx, keyV)
		if err != nil {
			return nil, err
		}
		return ev.getMember(obj, key)
	}
	return ev.getMember(obj, n.Property.(*ast.Identifier).Name)
}

// getMember reads a named property from any value, routing primitives
// through their wrapper prototypes.
func (ev *Evaluator) getMember(base runtime.Value, key string) (runtime.Value, error) {
	switch n := base.(type) {
	case *runtime.UndefinedValue:
		return nil, runtime.NewTypeError(ev.cx, "Cannot read property %q from undefined", key)
	case *runtime.NullValue:
		return nil, runtime.NewTypeError(ev.cx, "Cannot read property %q from null", key)
	case runtime.Scriptable:
		return runtime.GetProperty(ev.cx, n, key)
	case *runtime.StringValue:
		units := utf16.Encode([]rune(n.Value))
		if key == "length" {
			return runtime.Number(float64(len(units))), nil
		}
		if idx, ok := runtime.IsArrayIndex(key); ok {
			if int(idx) < len(units) {
				return runtime.String(string(utf16.Decode(units[idx : idx+1]))), nil
			}
			return runtime.Undefined, nil
		}
		return ev.protoMember(ev.realmProto("String"), key, base)
	case *runtime.NumberValue:
		return ev.protoMember(ev.realmProto("Number"), key, base)
	case *runtime.BooleanValue:
		return ev.protoMember(ev.realmProto("Boolean"), key, base)
	case *runtime.BigIntValue:
		return ev.protoMember(ev.realmProto("BigInt"), key, base)
	case *runtime.SymbolValue:
		if key == "description" {
			return runtime.String(n.Description), nil
		}
		return ev.protoMember(ev.realmProto("Symbol"), key, base)
	}
	return runtime.Undefined, nil
}

func (ev *Evaluator) realmProto(name string) runtime.Scriptable {
	r := ev.cx.Realm
	if r == nil {
		return nil
	}
	switch name {
	case "String":
		return r.StringProto
	case "Number":
		return r.NumberProto
	case "Boolean":
		return r.BooleanProto
	case "BigInt":
		return r.BigIntProto
	case "Symbol":
		return r.SymbolProto
	}
	return nil
}

func (ev *Evaluator) protoMember(proto runtime.Scriptable, key string, receiver runtime.Value) (runtime.Value, error) {
	if proto == nil {
		return runtime.Undefined, nil
	}
	return runtime.GetPropertyReceiver(ev.cx, proto, key, receiver)
}

// setMemberExpr writes obj.prop / obj[prop].
func (ev *Evaluator) setMemberExpr(n *ast.MemberExpression, v runtime.Value, env *runtime.Environment) error {
	obj, err := ev.eval(n.Object, env)
	if err != nil {
		return err
	}
	switch base := obj.(type) {
	case *runtime.UndefinedValue:
		return runtime.NewTypeError(ev.cx, "Cannot set property on undefined")
	case *runtime.NullValue:
		return runtime.NewTypeError(ev.cx, "Cannot set property on null")
	case runtime.Scriptable:
		if n.Computed {
			keyV, err := ev.eval(n.Property, env)
			if err != nil {
				return err
			}
			if sym, ok := keyV.(*runtime.SymbolValue); ok {
				base.SetOwnSymbol(ev.cx, sym, &runtime.Property{Value: v, Writable: true, Enumerable: true, Configurable: true})
				return nil
			}
			key, err := runtime.ToString(ev.cx, keyV)
			if err != nil {
				return err
			}
			return runtime.PutProperty(ev.cx, base, key, v)
		}
		return runtime.PutProperty(ev.cx, base, n.Property.(*ast.Identifier).Name, v)
	default:
		// Writes to primitive members are dropped (sloppy) or raise
		// (strict).
		if ev.cx.Strict {
			return runtime.NewTypeError(ev.cx, "cannot create property on primitive value")
		}
		return nil
	}
}

// toObject coerces a value to an object for `with` and similar contexts.
func (ev *Evaluator) toObject(v runtime.Value) (runtime.Scriptable, error) {
	if obj, ok := v.(runtime.Scriptable); ok {
		return obj, nil
	}
	if runtime.IsNullish(v) {
		return nil, runtime.NewTypeError(ev.cx, "cannot convert %s to an object", v.TypeOf())
	}
	// A thin wrapper: the primitive's members remain reachable through
	// the realm prototype at member-access time.
	obj := ev.newObject()
	obj.SetOwn(ev.cx, "valueOf", runtime.NewNativeFunction("valueOf", 0, nil,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return v, nil
		}))
	return obj, nil
}
