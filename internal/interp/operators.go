package interp

import (
	"math"
	"math/big"
	"strings"

	"github.com/gigaherz/rhinogo/internal/runtime"
	"github.com/gigaherz/rhinogo/pkg/ast"
	"github.com/gigaherz/rhinogo/pkg/token"
)

func (ev *Evaluator) evalUnary(n *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	switch n.Op {
	case token.TYPEOF:
		// typeof on an unresolvable name yields "undefined" instead of a
		// ReferenceError.
		if id, ok := n.Operand.(*ast.Identifier); ok && !ev.nameBound(env, id.Name) {
			return runtime.String("undefined"), nil
		}
		v, err := ev.eval(n.Operand, env)
		if err != nil {
			return nil, err
		}
		return runtime.String(v.TypeOf()), nil

	case token.DELETE:
		return ev.evalDelete(n.Operand, env)
	}

	v, err := ev.eval(n.Operand, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case token.NOT:
		return runtime.Bool(!runtime.ToBoolean(v)), nil
	case token.VOID:
		return runtime.Undefined, nil
	case token.MINUS:
		if b, ok := v.(*runtime.BigIntValue); ok {
			return runtime.BigInt(new(big.Int).Neg(b.Value)), nil
		}
		f, err := runtime.ToNumber(ev.cx, v)
		if err != nil {
			return nil, err
		}
		return runtime.Number(-f), nil
	case token.PLUS:
		f, err := runtime.ToNumber(ev.cx, v)
		if err != nil {
			return nil, err
		}
		return runtime.Number(f), nil
	case token.BITNOT:
		if b, ok := v.(*runtime.BigIntValue); ok {
			return runtime.BigInt(new(big.Int).Not(b.Value)), nil
		}
		i, err := runtime.ToInt32(ev.cx, v)
		if err != nil {
			return nil, err
		}
		return runtime.Number(float64(^i)), nil
	}
	return nil, runtime.NewEvaluatorError(ev.cx, "unhandled unary operator %s", n.Op)
}

func (ev *Evaluator) evalDelete(target ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	member, ok := target.(*ast.MemberExpression)
	if !ok {
		// delete of a name is refused (false); any other non-member
		// expression is evaluated and the result is true.
		if _, isIdent := target.(*ast.Identifier); isIdent {
			return runtime.False, nil
		}
		if _, err := ev.eval(target, env); err != nil {
			return nil, err
		}
		return runtime.True, nil
	}
	objV, err := ev.eval(member.Object, env)
	if err != nil {
		return nil, err
	}
	obj, ok := objV.(runtime.Scriptable)
	if !ok {
		return runtime.True, nil
	}
	var key string
	if member.Computed {
		keyV, err := ev.eval(member.Property, env)
		if err != nil {
			return nil, err
		}
		key, err = runtime.ToString(ev.cx, keyV)
		if err != nil {
			return nil, err
		}
	} else {
		key = member.Property.(*ast.Identifier).Name
	}
	return runtime.Bool(obj.Delete(ev.cx, key)), nil
}

func (ev *Evaluator) evalUpdate(n *ast.UpdateExpression, env *runtime.Environment) (runtime.Value, error) {
	old, err := ev.eval(n.Operand, env)
	if err != nil {
		return nil, err
	}

	var newVal runtime.Value
	if b, ok := old.(*runtime.BigIntValue); ok {
		one := big.NewInt(1)
		if n.Op == token.INC {
			newVal = runtime.BigInt(new(big.Int).Add(b.Value, one))
		} else {
			newVal = runtime.BigInt(new(big.Int).Sub(b.Value, one))
		}
	} else {
		f, err := runtime.ToNumber(ev.cx, old)
		if err != nil {
			return nil, err
		}
		old = runtime.Number(f)
		if n.Op == token.INC {
			newVal = runtime.Number(f + 1)
		} else {
			newVal = runtime.Number(f - 1)
		}
	}

	if err := ev.assignTarget(n.Operand.(ast.Pattern), newVal, env); err != nil {
		return nil, err
	}
	if n.Prefix {
		return newVal, nil
	}
	return old, nil
}

func (ev *Evaluator) evalBinary(n *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	// Short-circuit operators evaluate the right side conditionally.
	switch n.Op {
	case token.AND:
		left, err := ev.eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if !runtime.ToBoolean(left) {
			return left, nil
		}
		return ev.eval(n.Right, env)
	case token.OR:
		left, err := ev.eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if runtime.ToBoolean(left) {
			return left, nil
		}
		return ev.eval(n.Right, env)
	case token.NULLISH:
		left, err := ev.eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if !runtime.IsNullish(left) {
			return left, nil
		}
		return ev.eval(n.Right, env)
	}

	left, err := ev.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := ev.eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	return ev.applyBinary(n.Op, left, right)
}

func (ev *Evaluator) applyBinary(op token.Type, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case token.PLUS:
		return ev.addValues(left, right)
	case token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT, token.POWER:
		return ev.arithmetic(op, left, right)
	case token.EQ:
		eq, err := runtime.LooseEquals(ev.cx, left, right)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(eq), nil
	case token.NOT_EQ:
		eq, err := runtime.LooseEquals(ev.cx, left, right)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(!eq), nil
	case token.STRICT_EQ:
		return runtime.Bool(runtime.StrictEquals(left, right)), nil
	case token.STRICT_NOT_EQ:
		return runtime.Bool(!runtime.StrictEquals(left, right)), nil
	case token.LESS, token.GREATER, token.LESS_EQ, token.GREATER_EQ:
		return ev.compare(op, left, right)
	case token.BITAND, token.BITOR, token.BITXOR, token.SHL, token.SHR:
		return ev.bitwise(op, left, right)
	case token.USHR:
		a, err := runtime.ToUint32(ev.cx, left)
		if err != nil {
			return nil, err
		}
		shift, err := runtime.ToUint32(ev.cx, right)
		if err != nil {
			return nil, err
		}
		return runtime.Number(float64(a >> (shift & 31))), nil
	case token.IN:
		return ev.evalIn(left, right)
	case token.INSTANCEOF:
		return ev.evalInstanceof(left, right)
	}
	return nil, runtime.NewEvaluatorError(ev.cx, "unhandled binary operator %s", op)
}

func (ev *Evaluator) addValues(left, right runtime.Value) (runtime.Value, error) {
	lp, err := runtime.ToPrimitive(ev.cx, left, runtime.HintDefault)
	if err != nil {
		return nil, err
	}
	rp, err := runtime.ToPrimitive(ev.cx, right, runtime.HintDefault)
	if err != nil {
		return nil, err
	}

	_, ls := lp.(*runtime.StringValue)
	_, rs := rp.(*runtime.StringValue)
	if ls || rs {
		a, err := runtime.ToString(ev.cx, lp)
		if err != nil {
			return nil, err
		}
		b, err := runtime.ToString(ev.cx, rp)
		if err != nil {
			return nil, err
		}
		return runtime.String(a + b), nil
	}

	lb, lok := lp.(*runtime.BigIntValue)
	rb, rok := rp.(*runtime.BigIntValue)
	if lok || rok {
		if !lok || !rok {
			return nil, runtime.NewTypeError(ev.cx, "cannot mix BigInt and other types in addition")
		}
		return runtime.BigInt(new(big.Int).Add(lb.Value, rb.Value)), nil
	}

	a, err := runtime.ToNumber(ev.cx, lp)
	if err != nil {
		return nil, err
	}
	b, err := runtime.ToNumber(ev.cx, rp)
	if err != nil {
		return nil, err
	}
	return runtime.Number(a + b), nil
}

func (ev *Evaluator) arithmetic(op token.Type, left, right runtime.Value) (runtime.Value, error) {
	lb, lok := left.(*runtime.BigIntValue)
	rb, rok := right.(*runtime.BigIntValue)
	if lok || rok {
		if !lok || !rok {
			return nil, runtime.NewTypeError(ev.cx, "cannot mix BigInt and other types; use explicit conversions")
		}
		out := new(big.Int)
		switch op {
		case token.MINUS:
			out.Sub(lb.Value, rb.Value)
		case token.ASTERISK:
			out.Mul(lb.Value, rb.Value)
		case token.SLASH:
			if rb.Value.Sign() == 0 {
				return nil, runtime.NewRangeError(ev.cx, "division by zero")
			}
			out.Quo(lb.Value, rb.Value)
		case token.PERCENT:
			if rb.Value.Sign() == 0 {
				return nil, runtime.NewRangeError(ev.cx, "division by zero")
			}
			out.Rem(lb.Value, rb.Value)
		case token.POWER:
			if rb.Value.Sign() < 0 {
				return nil, runtime.NewRangeError(ev.cx, "exponent must be non-negative")
			}
			out.Exp(lb.Value, rb.Value, nil)
		}
		return runtime.BigInt(out), nil
	}

	a, err := runtime.ToNumber(ev.cx, left)
	if err != nil {
		return nil, err
	}
	b, err := runtime.ToNumber(ev.cx, right)
	if err != nil {
		return nil, err
	}
	switch op {
	case token.MINUS:
		return runtime.Number(a - b), nil
	case token.ASTERISK:
		return runtime.Number(a * b), nil
	case token.SLASH:
		return runtime.Number(a / b), nil
	case token.PERCENT:
		return runtime.Number(math.Mod(a, b)), nil
	case token.POWER:
		return runtime.Number(math.Pow(a, b)), nil
	}
	return nil, runtime.NewEvaluatorError(ev.cx, "unhandled arithmetic operator %s", op)
}

func (ev *Evaluator) compare(op token.Type, left, right runtime.Value) (runtime.Value, error) {
	lp, err := runtime.ToPrimitive(ev.cx, left, runtime.HintNumber)
	if err != nil {
		return nil, err
	}
	rp, err := runtime.ToPrimitive(ev.cx, right, runtime.HintNumber)
	if err != nil {
		return nil, err
	}

	if ls, ok := lp.(*runtime.StringValue); ok {
		if rs, ok := rp.(*runtime.StringValue); ok {
			cmp := strings.Compare(ls.Value, rs.Value)
			return runtime.Bool(compareResult(op, float64(cmp), 0)), nil
		}
	}

	lb, lok := lp.(*runtime.BigIntValue)
	rb, rok := rp.(*runtime.BigIntValue)
	if lok && rok {
		return runtime.Bool(compareResult(op, float64(lb.Value.Cmp(rb.Value)), 0)), nil
	}

	a, err := runtime.ToNumber(ev.cx, lp)
	if err != nil {
		return nil, err
	}
	b, err := runtime.ToNumber(ev.cx, rp)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return runtime.False, nil
	}
	return runtime.Bool(compareResult(op, a, b)), nil
}

func compareResult(op token.Type, a, b float64) bool {
	switch op {
	case token.LESS:
		return a < b
	case token.GREATER:
		return a > b
	case token.LESS_EQ:
		return a <= b
	case token.GREATER_EQ:
		return a >= b
	}
	return false
}

func (ev *Evaluator) bitwise(op token.Type, left, right runtime.Value) (runtime.Value, error) {
	a, err := runtime.ToInt32(ev.cx, left)
	if err != nil {
		return nil, err
	}
	b, err := runtime.ToInt32(ev.cx, right)
	if err != nil {
		return nil, err
	}
	switch op {
	case token.BITAND:
		return runtime.Number(float64(a & b)), nil
	case token.BITOR:
		return runtime.Number(float64(a | b)), nil
	case token.BITXOR:
		return runtime.Number(float64(a ^ b)), nil
	case token.SHL:
		return runtime.Number(float64(a << (uint32(b) & 31))), nil
	case token.SHR:
		return runtime.Number(float64(a >> (uint32(b) & 31))), nil
	}
	return nil, runtime.NewEvaluatorError(ev.cx, "unhandled bitwise operator %s", op)
}

func (ev *Evaluator) evalIn(left, right runtime.Value) (runtime.Value, error) {
	obj, ok := right.(runtime.Scriptable)
	if !ok {
		return nil, runtime.NewTypeError(ev.cx, "cannot use 'in' operator on %s", right.TypeOf())
	}
	if sym, ok := left.(*runtime.SymbolValue); ok {
		for cur := obj; cur != nil; cur = cur.Prototype() {
			if _, found := cur.GetOwnSymbol(ev.cx, sym); found {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	}
	key, err := runtime.ToString(ev.cx, left)
	if err != nil {
		return nil, err
	}
	return runtime.Bool(runtime.HasProperty(ev.cx, obj, key)), nil
}

func (ev *Evaluator) evalInstanceof(left, right runtime.Value) (runtime.Value, error) {
	ctor, ok := right.(runtime.Scriptable)
	if !ok {
		return nil, runtime.NewTypeError(ev.cx, "right-hand side of instanceof is not an object")
	}
	if _, callable := right.(runtime.Callable); !callable {
		return nil, runtime.NewTypeError(ev.cx, "right-hand side of instanceof is not callable")
	}
	protoV, err := runtime.GetProperty(ev.cx, ctor, "prototype")
	if err != nil {
		return nil, err
	}
	proto, ok := protoV.(runtime.Scriptable)
	if !ok {
		return nil, runtime.NewTypeError(ev.cx, "constructor has no prototype object")
	}
	obj, ok := left.(runtime.Scriptable)
	if !ok {
		return runtime.False, nil
	}
	for cur := obj.Prototype(); cur != nil; cur = cur.Prototype() {
		if cur == proto {
			return runtime.True, nil
		}
	}
	return runtime.False, nil
}

// compoundOps maps compound assignment tokens to their base operator.
var compoundOps = map[token.Type]token.Type{
	token.PLUS_ASSIGN:   token.PLUS,
	token.MINUS_ASSIGN:  token.MINUS,
	token.MUL_ASSIGN:    token.ASTERISK,
	token.DIV_ASSIGN:    token.SLASH,
	token.MOD_ASSIGN:    token.PERCENT,
	token.POWER_ASSIGN:  token.POWER,
	token.SHL_ASSIGN:    token.SHL,
	token.SHR_ASSIGN:    token.SHR,
	token.USHR_ASSIGN:   token.USHR,
	token.BITAND_ASSIGN: token.BITAND,
	token.BITOR_ASSIGN:  token.BITOR,
	token.BITXOR_ASSIGN: token.BITXOR,
}

func (ev *Evaluator) evalAssign(n *ast.AssignExpression, env *runtime.Environment) (runtime.Value, error) {
	switch n.Op {
	case token.ASSIGN:
		v, err := ev.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		if err := ev.bindPattern(n.Target, v, env, 0, false); err != nil {
			return nil, err
		}
		return v, nil

	case token.AND_ASSIGN, token.OR_ASSIGN, token.NULLISH_ASSIGN:
		old, err := ev.eval(n.Target.(ast.Expression), env)
		if err != nil {
			return nil, err
		}
		var assign bool
		switch n.Op {
		case token.AND_ASSIGN:
			assign = runtime.ToBoolean(old)
		case token.OR_ASSIGN:
			assign = !runtime.ToBoolean(old)
		case token.NULLISH_ASSIGN:
			assign = runtime.IsNullish(old)
		}
		if !assign {
			return old, nil
		}
		v, err := ev.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		if err := ev.assignTarget(n.Target, v, env); err != nil {
			return nil, err
		}
		return v, nil

	default:
		baseOp, ok := compoundOps[n.Op]
		if !ok {
			return nil, runtime.NewEvaluatorError(ev.cx, "unhandled assignment operator %s", n.Op)
		}
		old, err := ev.eval(n.Target.(ast.Expression), env)
		if err != nil {
			return nil, err
		}
		rhs, err := ev.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		v, err := ev.applyBinary(baseOp, old, rhs)
		if err != nil {
			return nil, err
		}
		if err := ev.assignTarget(n.Target, v, env); err != nil {
			return nil, err
		}
		return v, nil
	}
}
