package parser

import (
	"fmt"

	"github.com/gigaherz/rhinogo/pkg/ast"
	"github.com/gigaherz/rhinogo/pkg/token"
)

// parseStatement dispatches on the current token. It leaves the current
// token on the last token of the statement; the caller advances.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.VAR, token.LET, token.CONST:
		return p.parseVariableStatement()
	case token.FUNCTION:
		fn := p.parseFunctionNode(true)
		if fn == nil {
			p.synchronize()
			return nil
		}
		return fn.(*ast.FunctionNode)
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.WITH:
		return p.parseWithStatement()
	case token.SEMICOLON:
		stmt := &ast.EmptyStatement{}
		p.finishSpan(stmt, p.cur())
		return stmt
	case token.DEBUGGER:
		stmt := &ast.DebuggerStatement{}
		p.finishSpan(stmt, p.cur())
		p.expectSemicolon()
		return stmt
	case token.IDENT:
		if p.peekIs(token.COLON) {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	start := p.cur()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		p.synchronize()
		return nil
	}
	stmt := &ast.ExpressionStatement{Expression: expr}
	p.finishSpan(stmt, start)
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	start := p.cur()
	block := &ast.BlockStatement{}
	block.Scope = p.pushScope(block, false)
	defer p.popScope()

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

func declKindOf(t token.Type) ast.DeclKind {
	switch t {
	case token.LET:
		return ast.DeclLet
	case token.CONST:
		return ast.DeclConst
	}
	return ast.DeclVar
}

func (p *Parser) parseVariableStatement() ast.Statement {
	stmt := p.parseVariableDeclaration(true)
	if stmt == nil {
		p.synchronize()
		return nil
	}
	p.expectSemicolon()
	return stmt
}

// parseVariableDeclaration parses `var/let/const target [= init], ...`.
// When requireInit is true a const declarator without an initializer is an
// error (for-in/of heads pass false).
func (p *Parser) parseVariableDeclaration(requireInit bool) *ast.VariableDeclaration {
	start := p.cur()
	decl := &ast.VariableDeclaration{Kind: declKindOf(start.Type)}
	for {
		p.nextToken()
		dtor := p.parseVariableDeclarator(decl.Kind, requireInit)
		if dtor == nil {
			return nil
		}
		decl.Declarators = append(decl.Declarators, dtor)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.finishSpan(decl, start)
	return decl
}

func (p *Parser) parseVariableDeclarator(kind ast.DeclKind, requireInit bool) *ast.VariableDeclarator {
	start := p.cur()
	dtor := &ast.VariableDeclarator{}
	dtor.Target = p.parsePattern()
	if dtor.Target == nil {
		return nil
	}
	p.declarePatternNames(dtor.Target, kind)

	if p.peekIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		dtor.Init = p.parseExpression(COMMA)
		if dtor.Init == nil {
			return nil
		}
	} else if requireInit {
		if kind == ast.DeclConst {
			p.addErrorAt(start.Pos, "missing initializer in const declaration")
		}
		if _, ok := dtor.Target.(*ast.Identifier); !ok {
			p.addErrorAt(start.Pos, "missing initializer in destructuring declaration")
		}
	}
	p.finishSpan(dtor, start)
	return dtor
}

func (p *Parser) parseIfStatement() ast.Statement {
	start := p.cur()
	stmt := &ast.IfStatement{}
	if !p.expectPeek(token.LPAREN) {
		p.synchronize()
		return nil
	}
	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if stmt.Test == nil || !p.expectPeek(token.RPAREN) {
		p.synchronize()
		return nil
	}
	p.nextToken()
	stmt.Consequent = p.parseStatement()
	if stmt.Consequent == nil {
		return nil
	}
	if p.peekIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Alternate = p.parseStatement()
	}
	p.finishSpan(stmt, start)
	return stmt
}

// parseForStatement parses all three `for` forms, disambiguating after the
// init clause by looking for `in`/`of`.
func (p *Parser) parseForStatement() ast.Statement {
	start := p.cur()
	if !p.expectPeek(token.LPAREN) {
		p.synchronize()
		return nil
	}

	// A scope for let/const loop variables.
	scope := p.pushScope(nil, false)
	defer p.popScope()
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	var init ast.Statement
	var initExpr ast.Expression

	switch p.peek().Type {
	case token.SEMICOLON:
		p.nextToken() // empty init; cur is the `;`
	case token.VAR, token.LET, token.CONST:
		p.nextToken()
		p.noIn = true
		decl := p.parseVariableDeclaration(false)
		p.noIn = false
		if decl == nil {
			p.synchronize()
			return nil
		}
		if p.peekIs(token.IN) || p.peekIs(token.OF) {
			if len(decl.Declarators) != 1 || decl.Declarators[0].Init != nil {
				p.addError("invalid left-hand side in for-in/of loop")
			}
			return p.parseForInOf(start, scope, decl, nil)
		}
		init = decl
		p.expectPeek(token.SEMICOLON)
	default:
		p.nextToken()
		p.noIn = true
		initExpr = p.parseExpression(LOWEST)
		p.noIn = false
		if initExpr == nil {
			p.synchronize()
			return nil
		}
		if p.peekIs(token.IN) || p.peekIs(token.OF) {
			pat, ok := p.toPattern(initExpr)
			if !ok {
				p.addError("invalid left-hand side in for-in/of loop")
				p.synchronize()
				return nil
			}
			return p.parseForInOf(start, scope, nil, pat)
		}
		es := &ast.ExpressionStatement{Expression: initExpr}
		ast.SetSpan(es, initExpr.Position(), initExpr.Length(), initExpr.Line())
		init = es
		p.expectPeek(token.SEMICOLON)
	}

	stmt := &ast.ForStatement{Init: init, Scope: scope}
	if scope.Node == nil {
		scope.Node = stmt
	}

	if !p.peekIs(token.SEMICOLON) {
		p.nextToken()
		stmt.Test = p.parseExpression(LOWEST)
		if stmt.Test == nil {
			p.synchronize()
			return nil
		}
	}
	p.expectPeek(token.SEMICOLON)

	if !p.peekIs(token.RPAREN) {
		p.nextToken()
		stmt.Update = p.parseExpression(LOWEST)
		if stmt.Update == nil {
			p.synchronize()
			return nil
		}
	}
	if !p.expectPeek(token.RPAREN) {
		p.synchronize()
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	p.finishSpan(stmt, start)
	return stmt
}

// parseForInOf finishes a for-in/for-of once the `in`/`of` keyword has been
// seen as the peek token.
func (p *Parser) parseForInOf(start token.Token, scope *ast.ScopeInfo, decl *ast.VariableDeclaration, pat ast.Pattern) ast.Statement {
	p.nextToken() // onto in/of
	of := p.curIs(token.OF)

	stmt := &ast.ForInStatement{Of: of, Scope: scope}
	if scope.Node == nil {
		scope.Node = stmt
	}
	if decl != nil {
		stmt.Left = decl
	} else {
		stmt.Left = pat
	}

	p.nextToken()
	stmt.Right = p.parseExpression(LOWEST)
	if stmt.Right == nil || !p.expectPeek(token.RPAREN) {
		p.synchronize()
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	p.finishSpan(stmt, start)
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	start := p.cur()
	stmt := &ast.WhileStatement{}
	if !p.expectPeek(token.LPAREN) {
		p.synchronize()
		return nil
	}
	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if stmt.Test == nil || !p.expectPeek(token.RPAREN) {
		p.synchronize()
		return nil
	}
	p.loopDepth++
	p.nextToken()
	stmt.Body = p.parseStatement()
	p.loopDepth--
	if stmt.Body == nil {
		return nil
	}
	p.finishSpan(stmt, start)
	return stmt
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	start := p.cur()
	stmt := &ast.DoWhileStatement{}
	p.loopDepth++
	p.nextToken()
	stmt.Body = p.parseStatement()
	p.loopDepth--
	if stmt.Body == nil {
		return nil
	}
	if !p.expectPeek(token.WHILE) || !p.expectPeek(token.LPAREN) {
		p.synchronize()
		return nil
	}
	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if stmt.Test == nil || !p.expectPeek(token.RPAREN) {
		p.synchronize()
		return nil
	}
	p.finishSpan(stmt, start)
	// The trailing semicolon after do/while is optional even without ASI.
	if p.peekIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseReturnStatement honors the restricted production: a line terminator
// after `return` ends the statement.
func (p *Parser) parseReturnStatement() ast.Statement {
	start := p.cur()
	stmt := &ast.ReturnStatement{}
	if p.funcDepth == 0 {
		p.addErrorAt(start.Pos, "return outside of function")
	}
	if !p.peekIs(token.SEMICOLON) && !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) && !p.peek().NewlineBefore {
		p.nextToken()
		stmt.Argument = p.parseExpression(LOWEST)
		if stmt.Argument == nil {
			p.synchronize()
			return nil
		}
	}
	p.finishSpan(stmt, start)
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	start := p.cur()
	if p.peek().NewlineBefore || p.peekIs(token.SEMICOLON) || p.peekIs(token.RBRACE) || p.peekIs(token.EOF) {
		p.addErrorAt(start.Pos, "newline not allowed after throw")
		p.synchronize()
		return nil
	}
	p.nextToken()
	stmt := &ast.ThrowStatement{}
	stmt.Argument = p.parseExpression(LOWEST)
	if stmt.Argument == nil {
		p.synchronize()
		return nil
	}
	p.finishSpan(stmt, start)
	p.expectSemicolon()
	return stmt
}

// parseBreakStatement honors the restricted production: the optional label
// must be on the same line.
func (p *Parser) parseBreakStatement() ast.Statement {
	start := p.cur()
	stmt := &ast.BreakStatement{}
	if p.peekIs(token.IDENT) && !p.peek().NewlineBefore {
		p.nextToken()
		stmt.Label = p.cur().Literal
		if !p.hasLabel(stmt.Label, false) {
			p.addError(fmt.Sprintf("undefined label %q", stmt.Label))
		}
	} else if p.loopDepth == 0 && p.switchDepth == 0 {
		p.addErrorAt(start.Pos, "break outside of loop or switch")
	}
	p.finishSpan(stmt, start)
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseContinueStatement() ast.Statement {
	start := p.cur()
	stmt := &ast.ContinueStatement{}
	if p.peekIs(token.IDENT) && !p.peek().NewlineBefore {
		p.nextToken()
		stmt.Label = p.cur().Literal
		if !p.hasLabel(stmt.Label, true) {
			p.addError(fmt.Sprintf("continue target %q is not a loop label", stmt.Label))
		}
	} else if p.loopDepth == 0 {
		p.addErrorAt(start.Pos, "continue outside of loop")
	}
	p.finishSpan(stmt, start)
	p.expectSemicolon()
	return stmt
}

func (p *Parser) hasLabel(name string, needLoop bool) bool {
	for _, l := range p.labels {
		if l.name == name {
			return !needLoop || l.isLoop
		}
	}
	return false
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	start := p.cur()
	name := p.cur().Literal
	for _, l := range p.labels {
		if l.name == name {
			p.addError(fmt.Sprintf("duplicate label %q", name))
		}
	}
	p.nextToken() // onto the colon
	p.nextToken() // onto the statement
	isLoop := p.curIs(token.FOR) || p.curIs(token.WHILE) || p.curIs(token.DO)
	p.labels = append(p.labels, labelInfo{name: name, isLoop: isLoop})
	body := p.parseStatement()
	p.labels = p.labels[:len(p.labels)-1]
	if body == nil {
		return nil
	}
	stmt := &ast.LabeledStatement{Label: name, Body: body}
	p.finishSpan(stmt, start)
	return stmt
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	start := p.cur()
	stmt := &ast.SwitchStatement{}
	if !p.expectPeek(token.LPAREN) {
		p.synchronize()
		return nil
	}
	p.nextToken()
	stmt.Discriminant = p.parseExpression(LOWEST)
	if stmt.Discriminant == nil || !p.expectPeek(token.RPAREN) || !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return nil
	}

	// All cases share one block scope for lexical declarations.
	stmt.Scope = p.pushScope(stmt, false)
	defer p.popScope()
	p.switchDepth++
	defer func() { p.switchDepth-- }()

	sawDefault := false
	for !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) {
		p.nextToken()
		c := &ast.SwitchCase{}
		cstart := p.cur()
		switch p.cur().Type {
		case token.CASE:
			p.nextToken()
			c.Test = p.parseExpression(LOWEST)
			if c.Test == nil || !p.expectPeek(token.COLON) {
				p.synchronize()
				return nil
			}
		case token.DEFAULT:
			if sawDefault {
				p.addError("multiple default clauses in switch")
			}
			sawDefault = true
			if !p.expectPeek(token.COLON) {
				p.synchronize()
				return nil
			}
		default:
			p.addError(fmt.Sprintf("expected case or default, got %s", p.cur().Type))
			p.synchronize()
			return nil
		}
		for !p.peekIs(token.CASE) && !p.peekIs(token.DEFAULT) && !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) {
			p.nextToken()
			s := p.parseStatement()
			if s != nil {
				c.Body = append(c.Body, s)
			}
		}
		p.finishSpan(c, cstart)
		stmt.Cases = append(stmt.Cases, c)
	}
	p.expectPeek(token.RBRACE)
	p.finishSpan(stmt, start)
	return stmt
}

func (p *Parser) parseTryStatement() ast.Statement {
	start := p.cur()
	stmt := &ast.TryStatement{}
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return nil
	}
	stmt.Block = p.parseBlockStatement()

	if p.peekIs(token.CATCH) {
		p.nextToken()
		// The catch parameter binds in the catch block's scope.
		catchScope := p.pushScope(nil, false)
		if p.peekIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			stmt.CatchParam = p.parsePattern()
			if stmt.CatchParam == nil || !p.expectPeek(token.RPAREN) {
				p.popScope()
				p.synchronize()
				return nil
			}
			p.declarePatternNames(stmt.CatchParam, ast.DeclCatch)
		}
		if !p.expectPeek(token.LBRACE) {
			p.popScope()
			p.synchronize()
			return nil
		}
		// Parse the catch body sharing the parameter's scope.
		cstart := p.cur()
		block := &ast.BlockStatement{Scope: catchScope}
		catchScope.Node = block
		for !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) {
			p.nextToken()
			s := p.parseStatement()
			if s != nil {
				block.Body = append(block.Body, s)
			}
		}
		p.expectPeek(token.RBRACE)
		p.finishSpan(block, cstart)
		p.popScope()
		stmt.Catch = block
	}

	if p.peekIs(token.FINALLY) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			p.synchronize()
			return nil
		}
		stmt.Finally = p.parseBlockStatement()
	}

	if stmt.Catch == nil && stmt.Finally == nil {
		p.addErrorAt(start.Pos, "missing catch or finally after try")
	}
	p.finishSpan(stmt, start)
	return stmt
}

func (p *Parser) parseWithStatement() ast.Statement {
	start := p.cur()
	if p.strict {
		p.addErrorAt(start.Pos, "with statements are not allowed in strict mode")
	}
	stmt := &ast.WithStatement{}
	if !p.expectPeek(token.LPAREN) {
		p.synchronize()
		return nil
	}
	p.nextToken()
	stmt.Object = p.parseExpression(LOWEST)
	if stmt.Object == nil || !p.expectPeek(token.RPAREN) {
		p.synchronize()
		return nil
	}

	// Everything lexically inside a with is dynamic: names must be looked
	// up at runtime because the with object can shadow them.
	withScope := p.pushScope(stmt, false)
	withScope.Dynamic = true
	p.nextToken()
	stmt.Body = p.parseStatement()
	p.popScope()
	if stmt.Body == nil {
		return nil
	}
	p.finishSpan(stmt, start)
	return stmt
}
