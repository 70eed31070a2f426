// Package parser implements the recursive-descent/Pratt parser.
//
// Key patterns:
//   - One-token lookahead over a pre-lexed token slice; arrow-function
//     detection scans further ahead with peekAt without moving the cursor.
//   - Automatic semicolon insertion in expectSemicolon: a missing `;` is
//     legal before `}`, at end of input, or when the next token starts on a
//     new line.
//   - Error recovery: errors are recorded and synchronize() skips to the
//     next statement boundary so one mistake does not hide the rest.
//   - Scope building: declarations are entered into ast.ScopeInfo symbol
//     tables as they are parsed; var/function hoist to the nearest function
//     scope, let/const bind at the nearest block.
package parser

import (
	"fmt"

	"github.com/gigaherz/rhinogo/internal/lexer"
	"github.com/gigaherz/rhinogo/pkg/ast"
	"github.com/gigaherz/rhinogo/pkg/token"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	COMMA       // ,
	ASSIGN      // = += -= …
	CONDITIONAL // ?:
	NULLISH     // ??
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	EQUALITY    // == != === !==
	RELATIONAL  // < > <= >= in instanceof
	SHIFT       // << >> >>>
	SUM         // + -
	PRODUCT     // * / %
	EXPONENT    // **
	UNARY       // !x -x typeof x …
	POSTFIX     // x++ x--
	CALL        // f(args), new f(args)
	MEMBER      // obj.x obj[x] x?.y
)

// precedences maps token types to infix precedence levels.
var precedences = map[token.Type]int{
	token.COMMA:          COMMA,
	token.ASSIGN:         ASSIGN,
	token.PLUS_ASSIGN:    ASSIGN,
	token.MINUS_ASSIGN:   ASSIGN,
	token.MUL_ASSIGN:     ASSIGN,
	token.DIV_ASSIGN:     ASSIGN,
	token.MOD_ASSIGN:     ASSIGN,
	token.POWER_ASSIGN:   ASSIGN,
	token.SHL_ASSIGN:     ASSIGN,
	token.SHR_ASSIGN:     ASSIGN,
	token.USHR_ASSIGN:    ASSIGN,
	token.BITAND_ASSIGN:  ASSIGN,
	token.BITOR_ASSIGN:   ASSIGN,
	token.BITXOR_ASSIGN:  ASSIGN,
	token.AND_ASSIGN:     ASSIGN,
	token.OR_ASSIGN:      ASSIGN,
	token.NULLISH_ASSIGN: ASSIGN,
	token.QUESTION:       CONDITIONAL,
	token.NULLISH:        NULLISH,
	token.OR:             LOGIC_OR,
	token.AND:            LOGIC_AND,
	token.BITOR:          BIT_OR,
	token.BITXOR:         BIT_XOR,
	token.BITAND:         BIT_AND,
	token.EQ:             EQUALITY,
	token.NOT_EQ:         EQUALITY,
	token.STRICT_EQ:      EQUALITY,
	token.STRICT_NOT_EQ:  EQUALITY,
	token.LESS:           RELATIONAL,
	token.GREATER:        RELATIONAL,
	token.LESS_EQ:        RELATIONAL,
	token.GREATER_EQ:     RELATIONAL,
	token.IN:             RELATIONAL,
	token.INSTANCEOF:     RELATIONAL,
	token.SHL:            SHIFT,
	token.SHR:            SHIFT,
	token.USHR:           SHIFT,
	token.PLUS:           SUM,
	token.MINUS:          SUM,
	token.ASTERISK:       PRODUCT,
	token.SLASH:          PRODUCT,
	token.PERCENT:        PRODUCT,
	token.POWER:          EXPONENT,
	token.INC:            POSTFIX,
	token.DEC:            POSTFIX,
	token.LPAREN:         CALL,
	token.DOT:            MEMBER,
	token.LBRACK:         MEMBER,
	token.OPTCHAIN:       MEMBER,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// Error is a parse error with its source position.
type Error struct {
	Pos    token.Position
	Msg    string
	Source string // source name
}

// Error implements the error interface, rendering the position the same way
// runtime errors do.
func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s (%s#%d)", e.Msg, e.Source, e.Pos.Line)
	}
	return fmt.Sprintf("%s (line %d)", e.Msg, e.Pos.Line)
}

// ErrorReporter receives parse and lex errors as they are found. The
// default reporter collects them on the parser.
type ErrorReporter interface {
	ReportError(pos token.Position, msg string)
}

// labelInfo tracks one active statement label for break/continue targeting.
type labelInfo struct {
	name   string
	isLoop bool
}

// Parser parses a token stream into an AST.
type Parser struct {
	tokens []token.Token
	pos    int // index of the current token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn

	errors   []*Error
	reporter ErrorReporter
	source   string
	strict   bool

	scope    *ast.ScopeInfo
	comments []*ast.Comment

	labels      []labelInfo
	loopDepth   int
	switchDepth int
	funcDepth   int

	// noIn suppresses the `in` infix operator while the init clause of a
	// `for` head is being parsed.
	noIn bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithStrictMode enables strict-mode parsing.
func WithStrictMode(strict bool) Option {
	return func(p *Parser) { p.strict = strict }
}

// WithSourceName sets the source name used in error messages.
func WithSourceName(name string) Option {
	return func(p *Parser) { p.source = name }
}

// WithErrorReporter routes errors to a custom reporter in addition to the
// parser's own list.
func WithErrorReporter(r ErrorReporter) Option {
	return func(p *Parser) { p.reporter = r }
}

// New creates a Parser over the given source text. The whole input is
// lexed up front; the scanner's context-sensitive state (regex vs division,
// template modes) behaves identically to interleaved scanning because it
// depends only on the token stream itself.
func New(src string, opts ...Option) *Parser {
	p := &Parser{
		prefixParseFns: make(map[token.Type]prefixParseFn),
		infixParseFns:  make(map[token.Type]infixParseFn),
	}
	for _, opt := range opts {
		opt(p)
	}

	l := lexer.New(src, lexer.WithStrictMode(p.strict), lexer.WithPreserveComments(true))
	for {
		tok := l.NextToken()
		if tok.Type == token.COMMENT {
			p.comments = append(p.comments, &ast.Comment{
				Text:  tok.Literal,
				Pos:   tok.Pos.Offset,
				Line:  tok.Pos.Line,
				Block: len(tok.Literal) > 1 && tok.Literal[1] == '*',
			})
			continue
		}
		p.tokens = append(p.tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	for _, le := range l.Errors() {
		p.addErrorAt(le.Pos, le.Msg)
	}

	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.BIGINT, p.parseBigIntLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.REGEXP, p.parseRegexpLiteral)
	p.registerPrefix(token.NOSUBTMP, p.parseTemplateLiteral)
	p.registerPrefix(token.TMPHEAD, p.parseTemplateLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.NULL, p.parseNullLiteral)
	p.registerPrefix(token.THIS, p.parseThisExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedOrArrow)
	p.registerPrefix(token.LBRACK, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(token.FUNCTION, p.parseFunctionExpression)
	p.registerPrefix(token.NEW, p.parseNewExpression)
	p.registerPrefix(token.NOT, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.PLUS, p.parsePrefixExpression)
	p.registerPrefix(token.BITNOT, p.parsePrefixExpression)
	p.registerPrefix(token.TYPEOF, p.parsePrefixExpression)
	p.registerPrefix(token.VOID, p.parsePrefixExpression)
	p.registerPrefix(token.DELETE, p.parsePrefixExpression)
	p.registerPrefix(token.INC, p.parsePrefixUpdate)
	p.registerPrefix(token.DEC, p.parsePrefixUpdate)

	p.registerInfix(token.PLUS, p.parseBinaryExpression)
	p.registerInfix(token.MINUS, p.parseBinaryExpression)
	p.registerInfix(token.ASTERISK, p.parseBinaryExpression)
	p.registerInfix(token.SLASH, p.parseBinaryExpression)
	p.registerInfix(token.PERCENT, p.parseBinaryExpression)
	p.registerInfix(token.POWER, p.parseExponentExpression)
	p.registerInfix(token.EQ, p.parseBinaryExpression)
	p.registerInfix(token.NOT_EQ, p.parseBinaryExpression)
	p.registerInfix(token.STRICT_EQ, p.parseBinaryExpression)
	p.registerInfix(token.STRICT_NOT_EQ, p.parseBinaryExpression)
	p.registerInfix(token.LESS, p.parseBinaryExpression)
	p.registerInfix(token.GREATER, p.parseBinaryExpression)
	p.registerInfix(token.LESS_EQ, p.parseBinaryExpression)
	p.registerInfix(token.GREATER_EQ, p.parseBinaryExpression)
	p.registerInfix(token.IN, p.parseBinaryExpression)
	p.registerInfix(token.INSTANCEOF, p.parseBinaryExpression)
	p.registerInfix(token.SHL, p.parseBinaryExpression)
	p.registerInfix(token.SHR, p.parseBinaryExpression)
	p.registerInfix(token.USHR, p.parseBinaryExpression)
	p.registerInfix(token.BITAND, p.parseBinaryExpression)
	p.registerInfix(token.BITOR, p.parseBinaryExpression)
	p.registerInfix(token.BITXOR, p.parseBinaryExpression)
	p.registerInfix(token.AND, p.parseBinaryExpression)
	p.registerInfix(token.OR, p.parseBinaryExpression)
	p.registerInfix(token.NULLISH, p.parseBinaryExpression)
	p.registerInfix(token.QUESTION, p.parseConditionalExpression)
	p.registerInfix(token.COMMA, p.parseSequenceExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.DOT, p.parseMemberExpression)
	p.registerInfix(token.LBRACK, p.parseIndexExpression)
	p.registerInfix(token.OPTCHAIN, p.parseOptionalExpression)
	p.registerInfix(token.INC, p.parsePostfixUpdate)
	p.registerInfix(token.DEC, p.parsePostfixUpdate)
	for _, t := range []token.Type{
		token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.MUL_ASSIGN,
		token.DIV_ASSIGN, token.MOD_ASSIGN, token.POWER_ASSIGN,
		token.SHL_ASSIGN, token.SHR_ASSIGN, token.USHR_ASSIGN,
		token.BITAND_ASSIGN, token.BITOR_ASSIGN, token.BITXOR_ASSIGN,
		token.AND_ASSIGN, token.OR_ASSIGN, token.NULLISH_ASSIGN,
	} {
		p.registerInfix(t, p.parseAssignExpression)
	}

	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

// Errors returns the parse (and lex) errors recorded so far.
func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) cur() token.Token { return p.tokens[p.pos] }

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

// peekAt returns the token n positions after the current one.
func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur().Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek().Type == t }

// mark/resetTo support speculative parsing. Errors recorded after the mark
// are discarded on reset.
type parserMark struct {
	pos    int
	errors int
}

func (p *Parser) mark() parserMark { return parserMark{pos: p.pos, errors: len(p.errors)} }
func (p *Parser) resetTo(m parserMark) {
	p.pos = m.pos
	p.errors = p.errors[:m.errors]
}

func (p *Parser) addError(msg string) { p.addErrorAt(p.cur().Pos, msg) }

func (p *Parser) addErrorAt(pos token.Position, msg string) {
	err := &Error{Pos: pos, Msg: msg, Source: p.source}
	p.errors = append(p.errors, err)
	if p.reporter != nil {
		p.reporter.ReportError(pos, msg)
	}
}

// expectPeek advances if the next token has the wanted type, otherwise
// records an error and stays put.
func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.addErrorAt(p.peek().Pos, fmt.Sprintf("expected %s, got %s", t, p.peek().Type))
	return false
}

// expectSemicolon consumes a statement terminator, applying automatic
// semicolon insertion: a `;` may be omitted before `}`, at end of input, or
// when the next token begins on a new line.
func (p *Parser) expectSemicolon() {
	if p.peekIs(token.SEMICOLON) {
		p.nextToken()
		return
	}
	if p.peekIs(token.RBRACE) || p.peekIs(token.EOF) {
		return
	}
	if p.peek().NewlineBefore {
		return
	}
	p.addErrorAt(p.peek().Pos, fmt.Sprintf("unexpected token %s (missing semicolon?)", p.peek().Type))
}

// synchronize advances to the next statement boundary after a parse error.
// It leaves the current token on the boundary (`;`, or just before a `}` or
// end of input) so the caller's usual advance lands on the next statement.
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			return
		}
		if p.peekIs(token.RBRACE) || p.peekIs(token.EOF) {
			return
		}
		p.nextToken()
	}
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peek().Type]; ok {
		return prec
	}
	return LOWEST
}

// pushScope enters a new symbol-table scope.
func (p *Parser) pushScope(node ast.Node, isFunction bool) *ast.ScopeInfo {
	p.scope = ast.NewScopeInfo(p.scope, node, isFunction)
	return p.scope
}

func (p *Parser) popScope() {
	p.scope = p.scope.Parent
}

// declare enters a name into the appropriate scope for its kind and
// enforces the redeclaration rules: duplicate let/const (or a lexical
// name colliding with any existing binding in the same scope) is a parse
// error, var and function merge silently.
func (p *Parser) declare(name string, kind ast.DeclKind, pos token.Position) {
	target := p.scope
	if kind == ast.DeclVar || kind == ast.DeclFunction {
		target = p.scope.FunctionScope()
	}
	if existing, ok := target.Lookup(name); ok {
		if kind.IsLexical() || existing.Kind.IsLexical() {
			p.addErrorAt(pos, fmt.Sprintf("identifier %q has already been declared", name))
			return
		}
	}
	target.Declare(name, kind)
}

// ParseProgram parses the whole input and returns the root node. The tree
// is finalized (parent links set, positions made parent-relative) before
// returning.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Source: p.source, Strict: p.strict}
	ast.SetSpan(program, 0, p.endOffset(), 1)
	program.Scope = p.pushScope(program, true)
	defer p.popScope()

	for !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Body = append(program.Body, stmt)
		}
		p.nextToken()
	}
	program.Comments = p.comments

	ast.Finalize(program)
	return program
}

// endOffset returns the offset just past the last significant token.
func (p *Parser) endOffset() int {
	last := p.tokens[len(p.tokens)-1]
	return last.Pos.Offset
}

// finishSpan records an absolute span on a node: from startTok's offset to
// the end of the current token.
func (p *Parser) finishSpan(n ast.Node, startTok token.Token) {
	end := p.cur().Pos.Offset + p.cur().Length
	ast.SetSpan(n, startTok.Pos.Offset, end-startTok.Pos.Offset, startTok.Pos.Line)
}
