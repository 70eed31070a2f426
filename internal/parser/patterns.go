package parser

import (
	"fmt"

	"github.com/gigaherz/rhinogo/pkg/ast"
	"github.com/gigaherz/rhinogo/pkg/token"
)

// parsePattern parses a binding pattern: an identifier, an array pattern,
// or an object pattern. The current token is the pattern's first token.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.cur().Type {
	case token.IDENT:
		ident := &ast.Identifier{Name: p.cur().Literal}
		p.finishSpan(ident, p.cur())
		return ident
	case token.LBRACK:
		return p.parseArrayPattern()
	case token.LBRACE:
		return p.parseObjectPattern()
	default:
		p.addError(fmt.Sprintf("invalid binding target %s", p.cur().Type))
		return nil
	}
}

// parsePatternWithDefault parses `pattern [= default]`.
func (p *Parser) parsePatternWithDefault() ast.Pattern {
	start := p.cur()
	pat := p.parsePattern()
	if pat == nil {
		return nil
	}
	if p.peekIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		def := p.parseExpression(COMMA)
		if def == nil {
			return nil
		}
		ap := &ast.AssignPattern{Target: pat, Default: def}
		p.finishSpan(ap, start)
		return ap
	}
	return pat
}

func (p *Parser) parseArrayPattern() ast.Pattern {
	start := p.cur()
	pat := &ast.ArrayPattern{}
	for !p.peekIs(token.RBRACK) && !p.peekIs(token.EOF) {
		if p.peekIs(token.COMMA) {
			pat.Elements = append(pat.Elements, nil) // hole
			p.nextToken()
			continue
		}
		p.nextToken()
		if p.curIs(token.ELLIPSIS) {
			p.nextToken()
			rest := p.parsePattern()
			if rest == nil {
				return nil
			}
			pat.Rest = rest
			break
		}
		el := p.parsePatternWithDefault()
		if el == nil {
			return nil
		}
		pat.Elements = append(pat.Elements, el)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}
	p.finishSpan(pat, start)
	return pat
}

func (p *Parser) parseObjectPattern() ast.Pattern {
	start := p.cur()
	pat := &ast.ObjectPattern{}
	for !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) {
		p.nextToken()
		if p.curIs(token.ELLIPSIS) {
			p.nextToken()
			if !p.curIs(token.IDENT) {
				p.addError("rest target in object pattern must be an identifier")
				return nil
			}
			rest := &ast.Identifier{Name: p.cur().Literal}
			p.finishSpan(rest, p.cur())
			pat.Rest = rest
			break
		}
		prop := p.parsePatternProperty()
		if prop == nil {
			return nil
		}
		pat.Properties = append(pat.Properties, prop)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	p.finishSpan(pat, start)
	return pat
}

// parsePatternProperty parses one `key`, `key: target`, `key = default`,
// or `key: target = default` entry of an object pattern.
func (p *Parser) parsePatternProperty() *ast.PatternProperty {
	start := p.cur()
	prop := &ast.PatternProperty{}

	switch {
	case p.curIs(token.IDENT) || p.cur().Type.IsKeyword():
		key := &ast.Identifier{Name: p.cur().Literal}
		p.finishSpan(key, p.cur())
		prop.Key = key
	case p.curIs(token.STRING):
		key := &ast.StringLiteral{Value: p.cur().Literal}
		p.finishSpan(key, p.cur())
		prop.Key = key
	case p.curIs(token.NUMBER):
		key := &ast.NumberLiteral{Value: p.cur().NumValue, Literal: p.cur().Literal}
		p.finishSpan(key, p.cur())
		prop.Key = key
	case p.curIs(token.LBRACK):
		prop.Computed = true
		p.nextToken()
		prop.Key = p.parseExpression(COMMA)
		if prop.Key == nil || !p.expectPeek(token.RBRACK) {
			return nil
		}
	default:
		p.addError(fmt.Sprintf("invalid property key %s", p.cur().Type))
		return nil
	}

	if p.peekIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		prop.Value = p.parsePatternWithDefault()
		if prop.Value == nil {
			return nil
		}
	} else {
		key, ok := prop.Key.(*ast.Identifier)
		if !ok || prop.Computed {
			p.addError("shorthand pattern property must be an identifier")
			return nil
		}
		target := &ast.Identifier{Name: key.Name}
		ast.SetSpan(target, key.Position(), key.Length(), key.Line())
		if p.peekIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			def := p.parseExpression(COMMA)
			if def == nil {
				return nil
			}
			ap := &ast.AssignPattern{Target: target, Default: def}
			p.finishSpan(ap, start)
			prop.Value = ap
		} else {
			prop.Value = target
		}
	}
	p.finishSpan(prop, start)
	return prop
}

// declarePatternNames declares every name bound by a pattern with the
// given kind.
func (p *Parser) declarePatternNames(pat ast.Pattern, kind ast.DeclKind) {
	switch n := pat.(type) {
	case *ast.Identifier:
		p.declare(n.Name, kind, p.cur().Pos)
	case *ast.ArrayPattern:
		for _, el := range n.Elements {
			if el != nil {
				p.declarePatternNames(el, kind)
			}
		}
		if n.Rest != nil {
			p.declarePatternNames(n.Rest, kind)
		}
	case *ast.ObjectPattern:
		for _, prop := range n.Properties {
			p.declarePatternNames(prop.Value, kind)
		}
		if n.Rest != nil {
			p.declarePatternNames(n.Rest, kind)
		}
	case *ast.AssignPattern:
		p.declarePatternNames(n.Target, kind)
	case *ast.RestElement:
		p.declarePatternNames(n.Target, kind)
	}
}

// toPattern reinterprets an expression as an assignment target, converting
// literal forms into destructuring patterns. Used for plain `=` and for
// the left side of for-in/of.
func (p *Parser) toPattern(e ast.Expression) (ast.Pattern, bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		return n, true
	case *ast.MemberExpression:
		if n.Optional {
			return nil, false
		}
		return n, true
	case *ast.ArrayLiteral:
		pat := &ast.ArrayPattern{}
		ast.SetSpan(pat, n.Position(), n.Length(), n.Line())
		for i, el := range n.Elements {
			if el == nil {
				pat.Elements = append(pat.Elements, nil)
				continue
			}
			if spread, ok := el.(*ast.SpreadElement); ok {
				if i != len(n.Elements)-1 {
					return nil, false
				}
				target, ok := p.toPattern(spread.Argument)
				if !ok {
					return nil, false
				}
				pat.Rest = target
				continue
			}
			sub, ok := p.toPattern(el)
			if !ok {
				return nil, false
			}
			pat.Elements = append(pat.Elements, sub)
		}
		return pat, true
	case *ast.ObjectLiteral:
		pat := &ast.ObjectPattern{}
		ast.SetSpan(pat, n.Position(), n.Length(), n.Line())
		for i, prop := range n.Properties {
			if prop.Kind == ast.PropertySpread {
				if i != len(n.Properties)-1 {
					return nil, false
				}
				target, ok := p.toPattern(prop.Value)
				if !ok {
					return nil, false
				}
				pat.Rest = target
				continue
			}
			if prop.Kind != ast.PropertyInit {
				return nil, false
			}
			target, ok := p.toPattern(prop.Value)
			if !ok {
				return nil, false
			}
			pp := &ast.PatternProperty{Key: prop.Key, Value: target, Computed: prop.Computed}
			ast.SetSpan(pp, prop.Position(), prop.Length(), prop.Line())
			pat.Properties = append(pat.Properties, pp)
		}
		return pat, true
	case *ast.AssignExpression:
		if n.Op != token.ASSIGN {
			return nil, false
		}
		ap := &ast.AssignPattern{Target: n.Target, Default: n.Value}
		ast.SetSpan(ap, n.Position(), n.Length(), n.Line())
		return ap, true
	case *ast.SpreadElement:
		target, ok := p.toPattern(n.Argument)
		if !ok {
			return nil, false
		}
		rest := &ast.RestElement{Target: target}
		ast.SetSpan(rest, n.Position(), n.Length(), n.Line())
		return rest, true
	}
	return nil, false
}
