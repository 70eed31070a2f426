// Package interp is the tree-walking evaluator. It executes the AST
// directly, modeling non-local exits (break, continue, return) as a
// ControlFlow signal per activation and throw as a Go error carrying a
// ScriptError.
package interp

import (
	"github.com/gigaherz/rhinogo/internal/runtime"
	"github.com/gigaherz/rhinogo/pkg/ast"
)

// Evaluator executes parsed programs against a context and environment.
type Evaluator struct {
	cx *runtime.Context
}

// New creates an evaluator bound to a context.
func New(cx *runtime.Context) *Evaluator {
	return &Evaluator{cx: cx}
}

// Context returns the bound context.
func (ev *Evaluator) Context() *runtime.Context { return ev.cx }

// Run executes a program in the given environment and returns the
// completion value: the value of the last expression statement.
func (ev *Evaluator) Run(program *ast.Program, env *runtime.Environment) (runtime.Value, error) {
	ev.cx.SetPosition(program.Source, 1)
	ev.hoistScope(program.Scope, env)
	if err := ev.hoistFunctions(program.Body, env); err != nil {
		return nil, err
	}

	cf := runtime.NewControlFlow()
	var last runtime.Value = runtime.Undefined
	for _, stmt := range program.Body {
		v, err := ev.execStatement(stmt, env, cf)
		if err != nil {
			return nil, err
		}
		if v != nil {
			last = v
		}
		if cf.IsActive() {
			break
		}
	}
	return last, nil
}

// hoistScope declares every symbol the parser collected for a scope:
// var/function bindings start as undefined, let/const enter their temporal
// dead zone. Parameters are bound separately at call time.
func (ev *Evaluator) hoistScope(scope *ast.ScopeInfo, env *runtime.Environment) {
	if scope == nil {
		return
	}
	for _, sym := range scope.Order {
		switch sym.Kind {
		case ast.DeclVar, ast.DeclFunction:
			if !env.HasLocal(sym.Name) {
				env.Declare(sym.Name, runtime.BindVar, runtime.Undefined)
			}
		case ast.DeclLet:
			env.Declare(sym.Name, runtime.BindLet, nil)
		case ast.DeclConst:
			env.Declare(sym.Name, runtime.BindConst, nil)
		case ast.DeclCatch:
			// Bound when the catch clause binds its parameter.
		}
	}
}

// hoistFunctions pre-evaluates function declarations in a statement list
// so they are callable before their textual position.
func (ev *Evaluator) hoistFunctions(body []ast.Statement, env *runtime.Environment) error {
	for _, stmt := range body {
		fn, ok := stmt.(*ast.FunctionNode)
		if !ok || fn.Name == nil {
			continue
		}
		closure := ev.newFunction(fn, env)
		env.Declare(fn.Name.Name, runtime.BindVar, closure)
	}
	return nil
}

// execStatement executes one statement. The returned value is non-nil only
// for expression statements (the program completion value protocol).
func (ev *Evaluator) execStatement(stmt ast.Statement, env *runtime.Environment, cf *runtime.ControlFlow) (runtime.Value, error) {
	if err := ev.cx.CheckInterrupt(); err != nil {
		return nil, err
	}
	ev.cx.SetPosition("", stmt.Line())

	switch n := stmt.(type) {
	case *ast.ExpressionStatement:
		v, err := ev.eval(n.Expression, env)
		if err != nil {
			return nil, err
		}
		return v, nil

	case *ast.VariableDeclaration:
		return nil, ev.execVariableDeclaration(n, env)

	case *ast.FunctionNode:
		// Declarations were hoisted; nothing left to do here.
		return nil, nil

	case *ast.BlockStatement:
		return nil, ev.execBlock(n, runtime.NewEnclosedEnvironment(env), cf)

	case *ast.IfStatement:
		test, err := ev.eval(n.Test, env)
		if err != nil {
			return nil, err
		}
		if runtime.ToBoolean(test) {
			_, err = ev.execStatement(n.Consequent, env, cf)
		} else if n.Alternate != nil {
			_, err = ev.execStatement(n.Alternate, env, cf)
		}
		return nil, err

	case *ast.WhileStatement:
		return nil, ev.execWhile(n, env, cf, "")

	case *ast.DoWhileStatement:
		return nil, ev.execDoWhile(n, env, cf, "")

	case *ast.ForStatement:
		return nil, ev.execFor(n, env, cf, "")

	case *ast.ForInStatement:
		return nil, ev.execForInOf(n, env, cf, "")

	case *ast.ReturnStatement:
		var v runtime.Value = runtime.Undefined
		if n.Argument != nil {
			var err error
			v, err = ev.eval(n.Argument, env)
			if err != nil {
				return nil, err
			}
		}
		cf.SetReturn(v)
		return nil, nil

	case *ast.BreakStatement:
		cf.SetBreak(n.Label)
		return nil, nil

	case *ast.ContinueStatement:
		cf.SetContinue(n.Label)
		return nil, nil

	case *ast.LabeledStatement:
		return nil, ev.execLabeled(n, env, cf)

	case *ast.SwitchStatement:
		return nil, ev.execSwitch(n, env, cf)

	case *ast.ThrowStatement:
		v, err := ev.eval(n.Argument, env)
		if err != nil {
			return nil, err
		}
		return nil, ev.throwValue(v)

	case *ast.TryStatement:
		return nil, ev.execTry(n, env, cf)

	case *ast.WithStatement:
		obj, err := ev.eval(n.Object, env)
		if err != nil {
			return nil, err
		}
		target, err := ev.toObject(obj)
		if err != nil {
			return nil, err
		}
		withEnv := runtime.NewWithEnvironment(env, target)
		_, err = ev.execStatement(n.Body, withEnv, cf)
		return nil, err

	case *ast.EmptyStatement, *ast.DebuggerStatement:
		return nil, nil
	}
	return nil, runtime.NewEvaluatorError(ev.cx, "unhandled statement node %T", stmt)
}

// execBlock runs a block in an already-created environment, hoisting the
// block's lexical declarations and function statements first.
func (ev *Evaluator) execBlock(block *ast.BlockStatement, env *runtime.Environment, cf *runtime.ControlFlow) error {
	if block.Scope != nil && block.Scope.Node == ast.Node(block) {
		ev.hoistScope(block.Scope, env)
	}
	if err := ev.hoistFunctions(block.Body, env); err != nil {
		return err
	}
	for _, stmt := range block.Body {
		if _, err := ev.execStatement(stmt, env, cf); err != nil {
			return err
		}
		if cf.IsActive() {
			return nil
		}
	}
	return nil
}

func (ev *Evaluator) execVariableDeclaration(decl *ast.VariableDeclaration, env *runtime.Environment) error {
	kind := runtime.BindVar
	switch decl.Kind {
	case ast.DeclLet:
		kind = runtime.BindLet
	case ast.DeclConst:
		kind = runtime.BindConst
	}
	for _, d := range decl.Declarators {
		var init runtime.Value
		if d.Init != nil {
			v, err := ev.eval(d.Init, env)
			if err != nil {
				return err
			}
			init = v
		} else if kind == runtime.BindVar {
			// `var x;` with no initializer: hoisting already bound the
			// name; re-declaration must not clobber an assigned value.
			continue
		} else {
			init = runtime.Undefined
		}
		if err := ev.bindPattern(d.Target, init, env, kind, true); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) execLabeled(n *ast.LabeledStatement, env *runtime.Environment, cf *runtime.ControlFlow) error {
	var err error
	switch body := n.Body.(type) {
	case *ast.WhileStatement:
		err = ev.execWhile(body, env, cf, n.Label)
	case *ast.DoWhileStatement:
		err = ev.execDoWhile(body, env, cf, n.Label)
	case *ast.ForStatement:
		err = ev.execFor(body, env, cf, n.Label)
	case *ast.ForInStatement:
		err = ev.execForInOf(body, env, cf, n.Label)
	default:
		_, err = ev.execStatement(n.Body, env, cf)
	}
	if err != nil {
		return err
	}
	// A labeled break targeting this statement is absorbed here.
	if cf.Kind() == runtime.BreakCompletion && cf.Label() == n.Label {
		cf.Clear()
	}
	return nil
}

// absorbLoopSignal handles break/continue after one loop iteration.
// It reports whether the loop stops; a signal aimed at an outer construct
// (another label, or a return) is left set for that construct.
func absorbLoopSignal(cf *runtime.ControlFlow, label string) (stop bool) {
	switch cf.Kind() {
	case runtime.BreakCompletion:
		if cf.Label() == "" || cf.Label() == label {
			cf.Clear()
		}
		return true
	case runtime.ContinueCompletion:
		if cf.Label() == "" || cf.Label() == label {
			cf.Clear()
			return false
		}
		return true
	case runtime.ReturnCompletion:
		return true
	}
	return false
}

func (ev *Evaluator) execWhile(n *ast.WhileStatement, env *runtime.Environment, cf *runtime.ControlFlow, label string) error {
	for {
		test, err := ev.eval(n.Test, env)
		if err != nil {
			return err
		}
		if !runtime.ToBoolean(test) {
			return nil
		}
		if _, err := ev.execStatement(n.Body, env, cf); err != nil {
			return err
		}
		if cf.IsActive() && absorbLoopSignal(cf, label) {
			return nil
		}
	}
}

func (ev *Evaluator) execDoWhile(n *ast.DoWhileStatement, env *runtime.Environment, cf *runtime.ControlFlow, label string) error {
	for {
		if _, err := ev.execStatement(n.Body, env, cf); err != nil {
			return err
		}
		if cf.IsActive() && absorbLoopSignal(cf, label) {
			return nil
		}
		test, err := ev.eval(n.Test, env)
		if err != nil {
			return err
		}
		if !runtime.ToBoolean(test) {
			return nil
		}
	}
}

func (ev *Evaluator) execFor(n *ast.ForStatement, env *runtime.Environment, cf *runtime.ControlFlow, label string) error {
	loopEnv := runtime.NewEnclosedEnvironment(env)
	if n.Scope != nil {
		ev.hoistScope(n.Scope, loopEnv)
	}
	if n.Init != nil {
		if _, err := ev.execStatement(n.Init, loopEnv, cf); err != nil {
			return err
		}
	}
	for {
		if n.Test != nil {
			test, err := ev.eval(n.Test, loopEnv)
			if err != nil {
				return err
			}
			if !runtime.ToBoolean(test) {
				return nil
			}
		}
		if _, err := ev.execStatement(n.Body, loopEnv, cf); err != nil {
			return err
		}
		if cf.IsActive() && absorbLoopSignal(cf, label) {
			return nil
		}
		if n.Update != nil {
			if _, err := ev.eval(n.Update, loopEnv); err != nil {
				return err
			}
		}
	}
}

func (ev *Evaluator) execSwitch(n *ast.SwitchStatement, env *runtime.Environment, cf *runtime.ControlFlow) error {
	disc, err := ev.eval(n.Discriminant, env)
	if err != nil {
		return err
	}
	switchEnv := runtime.NewEnclosedEnvironment(env)
	if n.Scope != nil {
		ev.hoistScope(n.Scope, switchEnv)
	}

	match := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			continue
		}
		test, err := ev.eval(c.Test, switchEnv)
		if err != nil {
			return err
		}
		if runtime.StrictEquals(disc, test) {
			match = i
			break
		}
	}
	if match < 0 {
		for i, c := range n.Cases {
			if c.Test == nil {
				match = i
				break
			}
		}
	}
	if match < 0 {
		return nil
	}

	for _, c := range n.Cases[match:] {
		for _, stmt := range c.Body {
			if _, err := ev.execStatement(stmt, switchEnv, cf); err != nil {
				return err
			}
			if cf.IsActive() {
				if cf.Kind() == runtime.BreakCompletion && cf.Label() == "" {
					cf.Clear()
				}
				return nil
			}
		}
	}
	return nil
}

// execTry implements try/catch/finally. finally executes on every path,
// and a non-normal completion (or throw) from finally overrides whatever
// was pending.
func (ev *Evaluator) execTry(n *ast.TryStatement, env *runtime.Environment, cf *runtime.ControlFlow) error {
	tryErr := ev.execBlock(n.Block, runtime.NewEnclosedEnvironment(env), cf)

	if tryErr != nil && n.Catch != nil && runtime.IsCatchable(tryErr) {
		catchEnv := runtime.NewEnclosedEnvironment(env)
		if n.CatchParam != nil {
			caught := ev.errorToValue(tryErr)
			if err := ev.bindPattern(n.CatchParam, caught, catchEnv, runtime.BindCatch, true); err != nil {
				tryErr = err
			} else {
				tryErr = nil
			}
		} else {
			tryErr = nil
		}
		if tryErr == nil {
			tryErr = ev.execBlock(n.Catch, catchEnv, cf)
		}
	}

	if n.Finally != nil {
		// Stash the pending completion; finally runs with a fresh signal.
		pendingKind := cf.Kind()
		pendingLabel := cf.Label()
		pendingValue := cf.Value()
		cf.Clear()

		finErr := ev.execBlock(n.Finally, runtime.NewEnclosedEnvironment(env), cf)
		switch {
		case finErr != nil:
			// finally threw: it overrides everything.
			return finErr
		case cf.IsActive():
			// finally completed abruptly (return/break/continue): the
			// pending completion is discarded.
			return nil
		default:
			// finally completed normally: restore the pending state.
			switch pendingKind {
			case runtime.ReturnCompletion:
				cf.SetReturn(pendingValue)
			case runtime.BreakCompletion:
				cf.SetBreak(pendingLabel)
			case runtime.ContinueCompletion:
				cf.SetContinue(pendingLabel)
			}
			return tryErr
		}
	}
	return tryErr
}

// errorToValue converts a thrown error into the value seen by a catch
// clause.
func (ev *Evaluator) errorToValue(err error) runtime.Value {
	se, ok := err.(*runtime.ScriptError)
	if !ok {
		se = runtime.WrapHostError(ev.cx, err)
	}
	if se.Value != nil {
		return se.Value
	}
	if ev.cx.ErrorToValue != nil {
		v := ev.cx.ErrorToValue(ev.cx, se)
		se.Value = v
		return v
	}
	return runtime.String(se.Error())
}

// throwValue raises a script value as an error, keeping Error objects'
// association with their ScriptError.
func (ev *Evaluator) throwValue(v runtime.Value) error {
	if errObj, ok := v.(*runtime.ErrorObject); ok && errObj.Err != nil {
		return errObj.Err
	}
	display, derr := runtime.ToString(ev.cx, v)
	if derr != nil {
		display = v.TypeOf()
	}
	return runtime.NewThrownValue(ev.cx, v, display)
}
