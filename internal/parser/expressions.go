package parser

import (
	"fmt"
	"strings"

	"github.com/gigaherz/rhinogo/pkg/ast"
	"github.com/gigaherz/rhinogo/pkg/token"
)

// parseExpression is the Pratt core: parse a prefix expression, then fold
// infix operators while their precedence exceeds the caller's.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.cur().Type]
	if prefix == nil {
		p.addError(fmt.Sprintf("unexpected token %s", p.cur().Type))
		return nil
	}
	left := prefix()

	for left != nil {
		peek := p.peek()
		if p.noIn && peek.Type == token.IN {
			break
		}
		// Restricted production: a line terminator before ++/-- ends the
		// expression; the operator belongs to the next statement.
		if (peek.Type == token.INC || peek.Type == token.DEC) && peek.NewlineBefore {
			break
		}
		prec := p.peekPrecedence()
		if precedence >= prec {
			break
		}
		infix := p.infixParseFns[peek.Type]
		if infix == nil {
			break
		}
		// An operator that does not extend a member/call chain closes any
		// pending optional chain: wrap it so the short-circuit boundary is
		// explicit in the tree.
		if !isChainToken(peek.Type) {
			left = p.wrapChain(left)
		}
		p.nextToken()
		left = infix(left)
	}
	return p.wrapChain(left)
}

func isChainToken(t token.Type) bool {
	return t == token.DOT || t == token.LBRACK || t == token.LPAREN || t == token.OPTCHAIN
}

// wrapChain wraps e in a ChainExpression if its member/call spine contains
// an optional link. The wrapper marks where `?.` short-circuiting stops.
func (p *Parser) wrapChain(e ast.Expression) ast.Expression {
	if e == nil || !hasOptionalSpine(e) {
		return e
	}
	w := &ast.ChainExpression{Expression: e}
	ast.SetSpan(w, e.Position(), e.Length(), e.Line())
	return w
}

func hasOptionalSpine(e ast.Expression) bool {
	for {
		switch n := e.(type) {
		case *ast.MemberExpression:
			if n.Optional {
				return true
			}
			e = n.Object
		case *ast.CallExpression:
			if n.Optional {
				return true
			}
			e = n.Callee
		default:
			return false
		}
	}
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.cur()
	// `ident => body` is an arrow function with a single parameter.
	if p.peekIs(token.ARROW) && !p.peek().NewlineBefore {
		return p.parseArrowFunction(false)
	}
	ident := &ast.Identifier{Name: tok.Literal}
	p.finishSpan(ident, tok)
	return ident
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.cur()
	lit := &ast.NumberLiteral{Value: tok.NumValue, Literal: tok.Literal}
	p.finishSpan(lit, tok)
	return lit
}

func (p *Parser) parseBigIntLiteral() ast.Expression {
	tok := p.cur()
	lit := &ast.BigIntLiteral{Literal: tok.Literal}
	p.finishSpan(lit, tok)
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.cur()
	lit := &ast.StringLiteral{Value: tok.Literal}
	p.finishSpan(lit, tok)
	return lit
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	tok := p.cur()
	lit := &ast.BooleanLiteral{Value: tok.Type == token.TRUE}
	p.finishSpan(lit, tok)
	return lit
}

func (p *Parser) parseNullLiteral() ast.Expression {
	tok := p.cur()
	lit := &ast.NullLiteral{}
	p.finishSpan(lit, tok)
	return lit
}

func (p *Parser) parseThisExpression() ast.Expression {
	tok := p.cur()
	e := &ast.ThisExpression{}
	p.finishSpan(e, tok)
	return e
}

func (p *Parser) parseRegexpLiteral() ast.Expression {
	tok := p.cur()
	src := tok.Literal
	// Split /pattern/flags on the last unescaped slash.
	end := strings.LastIndexByte(src, '/')
	lit := &ast.RegexpLiteral{}
	if end > 0 {
		lit.Pattern = src[1:end]
		lit.Flags = src[end+1:]
	}
	p.finishSpan(lit, tok)
	return lit
}

func (p *Parser) parseTemplateLiteral() ast.Expression {
	start := p.cur()
	lit := &ast.TemplateLiteral{Quasis: []string{p.cur().Literal}}
	if p.curIs(token.NOSUBTMP) {
		p.finishSpan(lit, start)
		return lit
	}
	for {
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr != nil {
			lit.Expressions = append(lit.Expressions, expr)
		}
		if p.peekIs(token.TMPMID) {
			p.nextToken()
			lit.Quasis = append(lit.Quasis, p.cur().Literal)
			continue
		}
		if p.peekIs(token.TMPTAIL) {
			p.nextToken()
			lit.Quasis = append(lit.Quasis, p.cur().Literal)
			break
		}
		p.addErrorAt(p.peek().Pos, "unterminated template substitution")
		break
	}
	p.finishSpan(lit, start)
	return lit
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.cur()
	expr := &ast.UnaryExpression{Op: tok.Type}
	p.nextToken()
	expr.Operand = p.parseExpression(UNARY - 1)
	if expr.Operand == nil {
		return nil
	}
	if tok.Type == token.DELETE && p.strict {
		if _, ok := expr.Operand.(*ast.Identifier); ok {
			p.addErrorAt(tok.Pos, "delete of an unqualified identifier in strict mode")
		}
	}
	p.finishSpan(expr, tok)
	return expr
}

func (p *Parser) parsePrefixUpdate() ast.Expression {
	tok := p.cur()
	expr := &ast.UpdateExpression{Op: tok.Type, Prefix: true}
	p.nextToken()
	expr.Operand = p.parseExpression(UNARY - 1)
	if expr.Operand == nil {
		return nil
	}
	if !isAssignTarget(expr.Operand) {
		p.addErrorAt(tok.Pos, "invalid operand for update operator")
	}
	p.finishSpan(expr, tok)
	return expr
}

func (p *Parser) parsePostfixUpdate(left ast.Expression) ast.Expression {
	tok := p.cur()
	if !isAssignTarget(left) {
		p.addErrorAt(tok.Pos, "invalid operand for update operator")
	}
	expr := &ast.UpdateExpression{Op: tok.Type, Operand: left, Prefix: false}
	ast.SetSpan(expr, left.Position(), p.cur().Pos.Offset+p.cur().Length-left.Position(), left.Line())
	return expr
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	prec := precedences[tok.Type]
	expr := &ast.BinaryExpression{Op: tok.Type, Left: left}
	p.nextToken()
	expr.Right = p.parseExpression(prec)
	if expr.Right == nil {
		return nil
	}
	p.spanAcross(expr, left)
	return expr
}

// parseExponentExpression handles `**`, which is right-associative.
func (p *Parser) parseExponentExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	expr := &ast.BinaryExpression{Op: tok.Type, Left: left}
	p.nextToken()
	expr.Right = p.parseExpression(EXPONENT - 1)
	if expr.Right == nil {
		return nil
	}
	p.spanAcross(expr, left)
	return expr
}

func (p *Parser) parseConditionalExpression(left ast.Expression) ast.Expression {
	expr := &ast.ConditionalExpression{Test: left}
	p.nextToken()
	expr.Consequent = p.parseExpression(COMMA)
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	expr.Alternate = p.parseExpression(COMMA)
	if expr.Consequent == nil || expr.Alternate == nil {
		return nil
	}
	p.spanAcross(expr, left)
	return expr
}

func (p *Parser) parseSequenceExpression(left ast.Expression) ast.Expression {
	expr := &ast.SequenceExpression{}
	if seq, ok := left.(*ast.SequenceExpression); ok {
		expr.Expressions = seq.Expressions
	} else {
		expr.Expressions = []ast.Expression{left}
	}
	p.nextToken()
	next := p.parseExpression(COMMA)
	if next == nil {
		return nil
	}
	expr.Expressions = append(expr.Expressions, next)
	p.spanAcross(expr, left)
	return expr
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	expr := &ast.AssignExpression{Op: tok.Type}
	if tok.Type == token.ASSIGN {
		pat, ok := p.toPattern(left)
		if !ok {
			p.addErrorAt(tok.Pos, "invalid assignment target")
			return nil
		}
		expr.Target = pat
	} else {
		if !isAssignTarget(left) {
			p.addErrorAt(tok.Pos, "invalid assignment target")
			return nil
		}
		expr.Target = left.(ast.Pattern)
	}
	p.nextToken()
	expr.Value = p.parseExpression(ASSIGN - 1)
	if expr.Value == nil {
		return nil
	}
	p.spanAcross(expr, left)
	return expr
}

// isAssignTarget reports whether e is a simple assignable expression: an
// identifier or a non-optional member access.
func isAssignTarget(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Identifier:
		return true
	case *ast.MemberExpression:
		return !n.Optional
	}
	return false
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	expr := &ast.CallExpression{Callee: callee}
	expr.Arguments = p.parseArguments()
	p.spanAcross(expr, callee)
	return expr
}

// parseArguments parses `(a, b, ...c)`; the current token is the LPAREN on
// entry and the RPAREN on exit.
func (p *Parser) parseArguments() []ast.Expression {
	var args []ast.Expression
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return args
	}
	for {
		p.nextToken()
		if p.curIs(token.ELLIPSIS) {
			spread := &ast.SpreadElement{}
			tok := p.cur()
			p.nextToken()
			spread.Argument = p.parseExpression(COMMA)
			if spread.Argument == nil {
				return args
			}
			p.finishSpan(spread, tok)
			args = append(args, spread)
		} else {
			arg := p.parseExpression(COMMA)
			if arg == nil {
				return args
			}
			args = append(args, arg)
		}
		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(token.RPAREN)
	return args
}

func (p *Parser) parseMemberExpression(obj ast.Expression) ast.Expression {
	expr := &ast.MemberExpression{Object: obj}
	if !p.peekPropertyName() {
		return nil
	}
	name := &ast.Identifier{Name: p.cur().Literal}
	p.finishSpan(name, p.cur())
	expr.Property = name
	p.spanAcross(expr, obj)
	return expr
}

// peekPropertyName advances onto a property name after `.` or `?.`.
// Keywords are valid property names.
func (p *Parser) peekPropertyName() bool {
	next := p.peek()
	if next.Type == token.IDENT || next.Type.IsKeyword() {
		p.nextToken()
		return true
	}
	p.addErrorAt(next.Pos, fmt.Sprintf("expected property name, got %s", next.Type))
	return false
}

func (p *Parser) parseIndexExpression(obj ast.Expression) ast.Expression {
	expr := &ast.MemberExpression{Object: obj, Computed: true}
	p.nextToken()
	expr.Property = p.parseExpression(LOWEST)
	if expr.Property == nil || !p.expectPeek(token.RBRACK) {
		return nil
	}
	p.spanAcross(expr, obj)
	return expr
}

// parseOptionalExpression handles the three `?.` forms: `a?.b`, `a?.[x]`,
// and `a?.(args)`.
func (p *Parser) parseOptionalExpression(obj ast.Expression) ast.Expression {
	switch p.peek().Type {
	case token.LBRACK:
		p.nextToken()
		expr := &ast.MemberExpression{Object: obj, Computed: true, Optional: true}
		p.nextToken()
		expr.Property = p.parseExpression(LOWEST)
		if expr.Property == nil || !p.expectPeek(token.RBRACK) {
			return nil
		}
		p.spanAcross(expr, obj)
		return expr
	case token.LPAREN:
		p.nextToken()
		expr := &ast.CallExpression{Callee: obj, Optional: true}
		expr.Arguments = p.parseArguments()
		p.spanAcross(expr, obj)
		return expr
	default:
		expr := &ast.MemberExpression{Object: obj, Optional: true}
		if !p.peekPropertyName() {
			return nil
		}
		name := &ast.Identifier{Name: p.cur().Literal}
		p.finishSpan(name, p.cur())
		expr.Property = name
		p.spanAcross(expr, obj)
		return expr
	}
}

func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.cur()
	expr := &ast.NewExpression{}
	p.nextToken()
	// Parse the callee with CALL precedence so member accesses fold in but
	// the argument list stays ours.
	expr.Callee = p.parseExpression(CALL)
	if expr.Callee == nil {
		return nil
	}
	if p.peekIs(token.LPAREN) {
		p.nextToken()
		expr.Arguments = p.parseArguments()
	}
	p.finishSpan(expr, tok)
	return expr
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.cur()
	arr := &ast.ArrayLiteral{}
	for !p.peekIs(token.RBRACK) && !p.peekIs(token.EOF) {
		if p.peekIs(token.COMMA) {
			// Elision: a hole in the array.
			arr.Elements = append(arr.Elements, nil)
			p.nextToken()
			continue
		}
		p.nextToken()
		var el ast.Expression
		if p.curIs(token.ELLIPSIS) {
			spread := &ast.SpreadElement{}
			stok := p.cur()
			p.nextToken()
			spread.Argument = p.parseExpression(COMMA)
			if spread.Argument == nil {
				return nil
			}
			p.finishSpan(spread, stok)
			el = spread
		} else {
			el = p.parseExpression(COMMA)
			if el == nil {
				return nil
			}
		}
		arr.Elements = append(arr.Elements, el)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			if p.peekIs(token.RBRACK) {
				break // trailing comma
			}
		} else {
			break
		}
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}
	p.finishSpan(arr, tok)
	return arr
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.cur()
	obj := &ast.ObjectLiteral{}
	for !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) {
		p.nextToken()
		prop := p.parseObjectProperty()
		if prop == nil {
			return nil
		}
		obj.Properties = append(obj.Properties, prop)
		if p.peekIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	p.finishSpan(obj, tok)
	return obj
}

func (p *Parser) parseObjectProperty() *ast.ObjectProperty {
	start := p.cur()
	prop := &ast.ObjectProperty{}

	if p.curIs(token.ELLIPSIS) {
		prop.Kind = ast.PropertySpread
		p.nextToken()
		prop.Value = p.parseExpression(COMMA)
		if prop.Value == nil {
			return nil
		}
		p.finishSpan(prop, start)
		return prop
	}

	// get/set accessors: `get name() { ... }`. A `get` followed by a
	// property-position token is an accessor; otherwise it is a plain key.
	if p.curIs(token.IDENT) && (p.cur().Literal == "get" || p.cur().Literal == "set") &&
		!p.peekIs(token.COLON) && !p.peekIs(token.COMMA) && !p.peekIs(token.RBRACE) && !p.peekIs(token.LPAREN) {
		kind := ast.PropertyGet
		if p.cur().Literal == "set" {
			kind = ast.PropertySet
		}
		p.nextToken()
		if !p.parsePropertyKey(prop) {
			return nil
		}
		prop.Kind = kind
		fn := p.parseMethodTail(start)
		if fn == nil {
			return nil
		}
		prop.Value = fn
		p.finishSpan(prop, start)
		return prop
	}

	if !p.parsePropertyKey(prop) {
		return nil
	}

	switch {
	case p.peekIs(token.COLON):
		p.nextToken()
		p.nextToken()
		prop.Value = p.parseExpression(COMMA)
	case p.peekIs(token.LPAREN):
		// Shorthand method: `name() { ... }`.
		fn := p.parseMethodTail(start)
		if fn == nil {
			return nil
		}
		prop.Value = fn
	case p.peekIs(token.ASSIGN):
		// Shorthand with default, only meaningful when the literal is
		// reinterpreted as a destructuring pattern.
		key, ok := prop.Key.(*ast.Identifier)
		if !ok {
			p.addError("unexpected '=' in object literal")
			return nil
		}
		p.nextToken()
		p.nextToken()
		def := p.parseExpression(COMMA)
		if def == nil {
			return nil
		}
		target := &ast.Identifier{Name: key.Name}
		ast.SetSpan(target, key.Position(), key.Length(), key.Line())
		assign := &ast.AssignExpression{Op: token.ASSIGN, Target: target, Value: def}
		p.spanAcross(assign, key)
		prop.Value = assign
		prop.Shorthand = true
	default:
		// Plain shorthand `{a}`.
		key, ok := prop.Key.(*ast.Identifier)
		if !ok {
			p.addError("expected ':' after property key")
			return nil
		}
		val := &ast.Identifier{Name: key.Name}
		ast.SetSpan(val, key.Position(), key.Length(), key.Line())
		prop.Value = val
		prop.Shorthand = true
	}
	if prop.Value == nil {
		return nil
	}
	p.finishSpan(prop, start)
	return prop
}

// parsePropertyKey parses the key of an object-literal entry; the current
// token is the first key token.
func (p *Parser) parsePropertyKey(prop *ast.ObjectProperty) bool {
	tok := p.cur()
	switch {
	case tok.Type == token.IDENT || tok.Type.IsKeyword():
		key := &ast.Identifier{Name: tok.Literal}
		p.finishSpan(key, tok)
		prop.Key = key
	case tok.Type == token.STRING:
		key := &ast.StringLiteral{Value: tok.Literal}
		p.finishSpan(key, tok)
		prop.Key = key
	case tok.Type == token.NUMBER:
		key := &ast.NumberLiteral{Value: tok.NumValue, Literal: tok.Literal}
		p.finishSpan(key, tok)
		prop.Key = key
	case tok.Type == token.LBRACK:
		prop.Computed = true
		p.nextToken()
		prop.Key = p.parseExpression(COMMA)
		if prop.Key == nil || !p.expectPeek(token.RBRACK) {
			return false
		}
	default:
		p.addErrorAt(tok.Pos, fmt.Sprintf("invalid property key %s", tok.Type))
		return false
	}
	return true
}

// parseMethodTail parses the parameter list and body of a shorthand method
// or accessor; the current token is the key's last token, with `(` next.
func (p *Parser) parseMethodTail(start token.Token) *ast.FunctionNode {
	fn := &ast.FunctionNode{}
	fn.Scope = p.pushScope(fn, true)
	defer p.popScope()
	p.funcDepth++
	defer func() { p.funcDepth-- }()

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn.Params = p.parseFunctionParams()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseFunctionBody()
	p.finishSpan(fn, start)
	return fn
}

func (p *Parser) parseFunctionExpression() ast.Expression {
	return p.parseFunctionNode(false)
}

// parseFunctionNode parses `function [name](params) { body }`. When
// declaration is true the name is required and declared in the enclosing
// scope.
func (p *Parser) parseFunctionNode(declaration bool) ast.Expression {
	start := p.cur()
	fn := &ast.FunctionNode{}

	if p.peekIs(token.IDENT) {
		p.nextToken()
		name := &ast.Identifier{Name: p.cur().Literal}
		p.finishSpan(name, p.cur())
		fn.Name = name
		if declaration {
			p.declare(name.Name, ast.DeclFunction, p.cur().Pos)
		}
	} else if declaration {
		p.addErrorAt(p.peek().Pos, "function declaration requires a name")
	}

	fn.Scope = p.pushScope(fn, true)
	defer p.popScope()
	p.funcDepth++
	defer func() { p.funcDepth-- }()
	savedLabels, savedLoops, savedSwitches := p.labels, p.loopDepth, p.switchDepth
	p.labels, p.loopDepth, p.switchDepth = nil, 0, 0
	defer func() { p.labels, p.loopDepth, p.switchDepth = savedLabels, savedLoops, savedSwitches }()

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn.Params = p.parseFunctionParams()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseFunctionBody()
	p.finishSpan(fn, start)
	return fn
}

// parseFunctionParams parses the parameter patterns; the current token is
// the LPAREN on entry and the RPAREN on exit. Parameter names are declared
// into the current (function) scope.
func (p *Parser) parseFunctionParams() []ast.Pattern {
	var params []ast.Pattern
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	for {
		p.nextToken()
		var param ast.Pattern
		if p.curIs(token.ELLIPSIS) {
			rest := &ast.RestElement{}
			tok := p.cur()
			p.nextToken()
			rest.Target = p.parsePattern()
			if rest.Target == nil {
				return params
			}
			p.finishSpan(rest, tok)
			param = rest
		} else {
			param = p.parsePatternWithDefault()
			if param == nil {
				return params
			}
		}
		p.declarePatternNames(param, ast.DeclParam)
		params = append(params, param)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(token.RPAREN)
	return params
}

// parseFunctionBody parses a `{ ... }` function body; the current token is
// the LBRACE. The body shares the function scope (parameters and top-level
// vars live together).
func (p *Parser) parseFunctionBody() *ast.BlockStatement {
	start := p.cur()
	block := &ast.BlockStatement{Scope: p.scope}
	for !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) {
		p.nextToken()
		stmt := p.parseStatement()
		if stmt != nil {
			block.Body = append(block.Body, stmt)
		}
	}
	p.expectPeek(token.RBRACE)
	p.finishSpan(block, start)
	return block
}

// parseGroupedOrArrow disambiguates `(expr)` from `(params) => body` by
// scanning ahead for `=>` after the matching close paren.
func (p *Parser) parseGroupedOrArrow() ast.Expression {
	if p.isArrowAhead() {
		return p.parseArrowFunction(true)
	}
	p.nextToken()
	if p.curIs(token.RPAREN) {
		p.addError("missing expression in parentheses")
		return nil
	}
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

// isArrowAhead reports whether the parenthesized group starting at the
// current LPAREN is followed by `=>` on the same line.
func (p *Parser) isArrowAhead() bool {
	depth := 1 // the current LPAREN
	for i := 1; ; i++ {
		tok := p.peekAt(i)
		switch tok.Type {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
			if depth == 0 {
				after := p.peekAt(i + 1)
				return after.Type == token.ARROW && !after.NewlineBefore
			}
		case token.EOF:
			return false
		}
		if i > 1<<16 {
			return false
		}
	}
}

// parseArrowFunction parses `(a, b = 1, ...rest) => body` or `x => body`.
// The current token is the LPAREN (paren form) or the sole parameter
// identifier.
func (p *Parser) parseArrowFunction(paren bool) ast.Expression {
	start := p.cur()
	fn := &ast.FunctionNode{Arrow: true}
	fn.Scope = p.pushScope(fn, true)
	defer p.popScope()
	p.funcDepth++
	defer func() { p.funcDepth-- }()

	if paren {
		fn.Params = p.parseFunctionParams()
	} else {
		param := &ast.Identifier{Name: p.cur().Literal}
		p.finishSpan(param, p.cur())
		p.declare(param.Name, ast.DeclParam, p.cur().Pos)
		fn.Params = []ast.Pattern{param}
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	if p.peekIs(token.LBRACE) {
		p.nextToken()
		fn.Body = p.parseFunctionBody()
	} else {
		p.nextToken()
		fn.Concise = p.parseExpression(COMMA)
		if fn.Concise == nil {
			return nil
		}
	}
	p.finishSpan(fn, start)
	return fn
}

// spanAcross records an absolute span on a node from the start of `from`
// to the end of the current token.
func (p *Parser) spanAcross(n ast.Node, from ast.Expression) {
	end := p.cur().Pos.Offset + p.cur().Length
	ast.SetSpan(n, from.Position(), end-from.Position(), from.Line())
}
