package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gigaherz/rhinogo/pkg/ast"
	"github.com/gigaherz/rhinogo/pkg/token"
)

// parse is the test helper: parse src and fail the test on any error.
func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(src, WithSourceName("test"))
	prog := p.ParseProgram()
	for _, err := range p.Errors() {
		t.Errorf("parse error: %v", err)
	}
	return prog
}

// parseBad parses src and requires at least one error.
func parseBad(t *testing.T, src string) []*Error {
	t.Helper()
	p := New(src)
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Errorf("expected parse errors for %q", src)
	}
	return p.Errors()
}

func firstExpr(t *testing.T, prog *ast.Program) ast.Expression {
	t.Helper()
	if len(prog.Body) == 0 {
		t.Fatal("empty program body")
	}
	es, ok := prog.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T, not expression statement", prog.Body[0])
	}
	return es.Expression
}

func TestVariableDeclarations(t *testing.T) {
	prog := parse(t, "var a = 1; let b = 'x'; const c = true;")
	if len(prog.Body) != 3 {
		t.Fatalf("got %d statements", len(prog.Body))
	}
	kinds := []ast.DeclKind{ast.DeclVar, ast.DeclLet, ast.DeclConst}
	for i, want := range kinds {
		decl, ok := prog.Body[i].(*ast.VariableDeclaration)
		if !ok {
			t.Fatalf("statement %d is %T", i, prog.Body[i])
		}
		if decl.Kind != want {
			t.Errorf("statement %d kind %s, want %s", i, decl.Kind, want)
		}
	}
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3)
	expr := firstExpr(t, parse(t, "1 + 2 * 3"))
	add, ok := expr.(*ast.BinaryExpression)
	if !ok || add.Op != token.PLUS {
		t.Fatalf("got %T", expr)
	}
	mul, ok := add.Right.(*ast.BinaryExpression)
	if !ok || mul.Op != token.ASTERISK {
		t.Fatalf("right is %T", add.Right)
	}
}

func TestExponentRightAssociative(t *testing.T) {
	expr := firstExpr(t, parse(t, "2 ** 3 ** 2"))
	pow := expr.(*ast.BinaryExpression)
	if _, ok := pow.Right.(*ast.BinaryExpression); !ok {
		t.Fatal("** should be right-associative")
	}
}

func TestAssignmentChain(t *testing.T) {
	expr := firstExpr(t, parse(t, "a = b = 1"))
	outer := expr.(*ast.AssignExpression)
	if _, ok := outer.Value.(*ast.AssignExpression); !ok {
		t.Fatal("= should be right-associative")
	}
}

func TestOptionalChainWrapped(t *testing.T) {
	expr := firstExpr(t, parse(t, "a?.b.c"))
	chain, ok := expr.(*ast.ChainExpression)
	if !ok {
		t.Fatalf("got %T, want ChainExpression", expr)
	}
	outer, ok := chain.Expression.(*ast.MemberExpression)
	if !ok || outer.Optional {
		t.Fatalf("outer member wrong: %#v", chain.Expression)
	}
	inner, ok := outer.Object.(*ast.MemberExpression)
	if !ok || !inner.Optional {
		t.Fatal("inner member should be optional")
	}
}

func TestOptionalChainInBinary(t *testing.T) {
	expr := firstExpr(t, parse(t, "a?.b + 1"))
	bin, ok := expr.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if _, ok := bin.Left.(*ast.ChainExpression); !ok {
		t.Fatalf("left is %T, want ChainExpression", bin.Left)
	}
}

func TestOptionalCall(t *testing.T) {
	expr := firstExpr(t, parse(t, "f?.(1, 2)"))
	chain := expr.(*ast.ChainExpression)
	call, ok := chain.Expression.(*ast.CallExpression)
	if !ok || !call.Optional || len(call.Arguments) != 2 {
		t.Fatalf("got %#v", chain.Expression)
	}
}

func TestNewExpression(t *testing.T) {
	expr := firstExpr(t, parse(t, "new a.b(1)"))
	n, ok := expr.(*ast.NewExpression)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if _, ok := n.Callee.(*ast.MemberExpression); !ok {
		t.Fatalf("callee is %T", n.Callee)
	}
	if len(n.Arguments) != 1 {
		t.Fatalf("got %d args", len(n.Arguments))
	}
}

func TestArrowFunctions(t *testing.T) {
	tests := []struct {
		src       string
		numParams int
		concise   bool
	}{
		{"x => x + 1", 1, true},
		{"() => 42", 0, true},
		{"(a, b) => { return a; }", 2, false},
		{"(a = 1, ...rest) => a", 2, true},
	}
	for _, tt := range tests {
		expr := firstExpr(t, parse(t, tt.src))
		fn, ok := expr.(*ast.FunctionNode)
		if !ok || !fn.Arrow {
			t.Errorf("%q: got %T", tt.src, expr)
			continue
		}
		if len(fn.Params) != tt.numParams {
			t.Errorf("%q: %d params, want %d", tt.src, len(fn.Params), tt.numParams)
		}
		if (fn.Concise != nil) != tt.concise {
			t.Errorf("%q: concise mismatch", tt.src)
		}
	}
}

func TestParenthesizedIsNotArrow(t *testing.T) {
	expr := firstExpr(t, parse(t, "(a + b)"))
	if _, ok := expr.(*ast.BinaryExpression); !ok {
		t.Fatalf("got %T", expr)
	}
}

func TestTemplateLiteral(t *testing.T) {
	expr := firstExpr(t, parse(t, "`a${x}b`"))
	tpl, ok := expr.(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if diff := cmp.Diff([]string{"a", "b"}, tpl.Quasis); diff != "" {
		t.Errorf("quasis (-want +got):\n%s", diff)
	}
	if len(tpl.Expressions) != 1 {
		t.Errorf("got %d expressions", len(tpl.Expressions))
	}
}

func TestDestructuringDeclaration(t *testing.T) {
	prog := parse(t, "let {a, b: {c}, d = 1} = obj; let [x, , y, ...rest] = arr;")
	objDecl := prog.Body[0].(*ast.VariableDeclaration)
	op, ok := objDecl.Declarators[0].Target.(*ast.ObjectPattern)
	if !ok {
		t.Fatalf("target is %T", objDecl.Declarators[0].Target)
	}
	if len(op.Properties) != 3 {
		t.Fatalf("got %d properties", len(op.Properties))
	}
	arrDecl := prog.Body[1].(*ast.VariableDeclaration)
	apat, ok := arrDecl.Declarators[0].Target.(*ast.ArrayPattern)
	if !ok {
		t.Fatalf("target is %T", arrDecl.Declarators[0].Target)
	}
	if len(apat.Elements) != 3 || apat.Elements[1] != nil || apat.Rest == nil {
		t.Fatalf("array pattern shape wrong: %#v", apat)
	}
}

func TestDestructuringAssignment(t *testing.T) {
	expr := firstExpr(t, parse(t, "[a, b] = pair"))
	assign := expr.(*ast.AssignExpression)
	if _, ok := assign.Target.(*ast.ArrayPattern); !ok {
		t.Fatalf("target is %T", assign.Target)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	parseBad(t, "1 = x")
	parseBad(t, "a + b = c")
	parseBad(t, "a?.b = c")
}

func TestForVariants(t *testing.T) {
	prog := parse(t, `
for (let i = 0; i < 3; i++) {}
for (let k in obj) {}
for (const v of xs) {}
for (;;) break
`)
	if _, ok := prog.Body[0].(*ast.ForStatement); !ok {
		t.Errorf("statement 0 is %T", prog.Body[0])
	}
	fin, ok := prog.Body[1].(*ast.ForInStatement)
	if !ok || fin.Of {
		t.Errorf("statement 1 is %T of=%v", prog.Body[1], fin != nil && fin.Of)
	}
	fof, ok := prog.Body[2].(*ast.ForInStatement)
	if !ok || !fof.Of {
		t.Errorf("statement 2 is %T", prog.Body[2])
	}
	if _, ok := prog.Body[3].(*ast.ForStatement); !ok {
		t.Errorf("statement 3 is %T", prog.Body[3])
	}
}

func TestForInOperatorStillWorks(t *testing.T) {
	// `in` as an operator outside a for head.
	expr := firstExpr(t, parse(t, "'a' in b"))
	bin := expr.(*ast.BinaryExpression)
	if bin.Op != token.IN {
		t.Fatalf("op %s", bin.Op)
	}
}

func TestAutomaticSemicolonInsertion(t *testing.T) {
	// Newlines terminate statements where a semicolon is required.
	prog := parse(t, "let a = 1\nlet b = 2\na + b")
	if len(prog.Body) != 3 {
		t.Fatalf("got %d statements", len(prog.Body))
	}
}

func TestASIRequiredError(t *testing.T) {
	parseBad(t, "let a = 1 let b = 2")
}

func TestRestrictedReturn(t *testing.T) {
	// A newline after return ends the statement: the function returns
	// undefined and the literal is a separate statement.
	prog := parse(t, "function f() { return\n1 }")
	fn := prog.Body[0].(*ast.FunctionNode)
	ret := fn.Body.Body[0].(*ast.ReturnStatement)
	if ret.Argument != nil {
		t.Error("return should have no argument after a newline")
	}
	if len(fn.Body.Body) != 2 {
		t.Errorf("got %d body statements", len(fn.Body.Body))
	}
}

func TestRestrictedPostfix(t *testing.T) {
	// A newline before ++ ends the previous statement.
	prog := parse(t, "a\n++b")
	if len(prog.Body) != 2 {
		t.Fatalf("got %d statements", len(prog.Body))
	}
	es := prog.Body[1].(*ast.ExpressionStatement)
	upd, ok := es.Expression.(*ast.UpdateExpression)
	if !ok || !upd.Prefix {
		t.Fatalf("got %#v", es.Expression)
	}
}

func TestRestrictedThrow(t *testing.T) {
	parseBad(t, "throw\nnew Error('x')")
}

func TestLabels(t *testing.T) {
	parse(t, "outer: for (;;) { inner: for (;;) { continue outer; break inner; } }")
	parseBad(t, "continue missing")
	parseBad(t, "x: { continue x; }") // continue target must be a loop
	parseBad(t, "break nowhere")
}

func TestDuplicateLexicalDeclaration(t *testing.T) {
	parseBad(t, "let a = 1; let a = 2;")
	parseBad(t, "let a = 1; var a = 2;")
	parse(t, "var a = 1; var a = 2;") // var merges silently
	// Shadowing in an inner block is fine.
	parse(t, "let a = 1; { let a = 2; }")
}

func TestConstRequiresInitializer(t *testing.T) {
	parseBad(t, "const c;")
}

func TestSwitch(t *testing.T) {
	prog := parse(t, `switch (x) { case 1: a(); break; default: b(); }`)
	sw := prog.Body[0].(*ast.SwitchStatement)
	if len(sw.Cases) != 2 {
		t.Fatalf("got %d cases", len(sw.Cases))
	}
	if sw.Cases[1].Test != nil {
		t.Error("default case should have nil test")
	}
	parseBad(t, "switch (x) { default: a(); default: b(); }")
}

func TestTryCatchFinally(t *testing.T) {
	prog := parse(t, "try { f(); } catch (e) { g(e); } finally { h(); }")
	try := prog.Body[0].(*ast.TryStatement)
	if try.CatchParam == nil || try.Catch == nil || try.Finally == nil {
		t.Fatal("try statement incomplete")
	}
	// Parameterless catch.
	parse(t, "try { f(); } catch { g(); }")
	parseBad(t, "try { f(); }")
}

func TestWithStatement(t *testing.T) {
	prog := parse(t, "with (o) { x = 1; }")
	ws := prog.Body[0].(*ast.WithStatement)
	body := ws.Body.(*ast.BlockStatement)
	if !body.Scope.Dynamic {
		t.Error("scope inside with must be dynamic")
	}
	// Strict mode rejects with.
	p := New("with (o) {}", WithStrictMode(true))
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Error("with should be rejected in strict mode")
	}
}

func TestObjectLiteralForms(t *testing.T) {
	expr := firstExpr(t, parse(t, "({a: 1, b, 'c': 2, 3: 'x', [k]: v, get p() { return 1; }, m() {}, ...rest})"))
	obj := expr.(*ast.ObjectLiteral)
	if len(obj.Properties) != 8 {
		t.Fatalf("got %d properties", len(obj.Properties))
	}
	if !obj.Properties[1].Shorthand {
		t.Error("property b should be shorthand")
	}
	if !obj.Properties[4].Computed {
		t.Error("property [k] should be computed")
	}
	if obj.Properties[5].Kind != ast.PropertyGet {
		t.Error("property p should be a getter")
	}
	if obj.Properties[7].Kind != ast.PropertySpread {
		t.Error("last property should be a spread")
	}
}

func TestScopeSymbolTables(t *testing.T) {
	prog := parse(t, `
var g = 1;
function f(p) { var v; let l; }
{ let blockLocal; }
`)
	if _, ok := prog.Scope.Lookup("g"); !ok {
		t.Error("g should be in program scope")
	}
	if _, ok := prog.Scope.Lookup("f"); !ok {
		t.Error("f should be in program scope")
	}
	fn := prog.Body[1].(*ast.FunctionNode)
	for _, name := range []string{"p", "v", "l"} {
		if _, ok := fn.Scope.Lookup(name); !ok {
			t.Errorf("%s should be in function scope", name)
		}
	}
	if sym, _ := fn.Scope.Lookup("p"); sym.Kind != ast.DeclParam {
		t.Error("p should be a param")
	}
	block := prog.Body[2].(*ast.BlockStatement)
	if _, ok := block.Scope.Lookup("blockLocal"); !ok {
		t.Error("blockLocal should be in block scope")
	}
	if _, ok := prog.Scope.Lookup("blockLocal"); ok {
		t.Error("blockLocal must not leak to program scope")
	}
}

func TestVarHoistsToFunctionScope(t *testing.T) {
	prog := parse(t, "function f() { { var hoisted; } }")
	fn := prog.Body[0].(*ast.FunctionNode)
	if _, ok := fn.Scope.Lookup("hoisted"); !ok {
		t.Error("var in a block should hoist to the function scope")
	}
}

func TestPositionInvariant(t *testing.T) {
	src := `
let a = { b: [1, 2, 3] };
function f(x, y) { return x?.b + y; }
for (let i = 0; i < 10; i++) { f(a, i); }
`
	prog := parse(t, src)
	ast.Walk(prog, func(n ast.Node) bool {
		if n.Position() < 0 {
			t.Errorf("%T has negative position %d", n, n.Position())
		}
		if parent := n.Parent(); parent != nil {
			if n.Position()+n.Length() > parent.Length() {
				t.Errorf("%T span [%d,%d) exceeds parent %T length %d",
					n, n.Position(), n.Position()+n.Length(), parent, parent.Length())
			}
		}
		return true
	})
}

func TestAbsolutePositionRecovery(t *testing.T) {
	src := "let a = 42;"
	prog := parse(t, src)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	lit := decl.Declarators[0].Init.(*ast.NumberLiteral)
	abs := ast.AbsolutePosition(lit)
	if src[abs:abs+lit.Length()] != "42" {
		t.Errorf("absolute position %d does not point at the literal", abs)
	}
}

func TestErrorRecovery(t *testing.T) {
	p := New("let = 1; let ok = 2;")
	prog := p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected an error")
	}
	// The second statement still parses.
	found := false
	for _, stmt := range prog.Body {
		if decl, ok := stmt.(*ast.VariableDeclaration); ok {
			for _, d := range decl.Declarators {
				if id, ok := d.Target.(*ast.Identifier); ok && id.Name == "ok" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("parser did not recover to parse the following statement")
	}
}

func TestComments(t *testing.T) {
	p := New("// leading\nlet a = 1; /* block */ let b = 2;")
	prog := p.ParseProgram()
	if len(prog.Comments) != 2 {
		t.Fatalf("got %d comments", len(prog.Comments))
	}
	if !prog.Comments[1].Block {
		t.Error("second comment should be a block comment")
	}
}

func TestReturnOutsideFunction(t *testing.T) {
	parseBad(t, "return 1;")
}

func TestSequenceExpression(t *testing.T) {
	expr := firstExpr(t, parse(t, "a, b, c"))
	seq := expr.(*ast.SequenceExpression)
	if len(seq.Expressions) != 3 {
		t.Fatalf("got %d expressions", len(seq.Expressions))
	}
}

func TestConditional(t *testing.T) {
	expr := firstExpr(t, parse(t, "a ? b : c ? d : e"))
	cond := expr.(*ast.ConditionalExpression)
	if _, ok := cond.Alternate.(*ast.ConditionalExpression); !ok {
		t.Fatal("conditional should nest in the alternate")
	}
}

func TestRegexLiteralExpr(t *testing.T) {
	expr := firstExpr(t, parse(t, "/ab+c/gi"))
	re := expr.(*ast.RegexpLiteral)
	if re.Pattern != "ab+c" || re.Flags != "gi" {
		t.Fatalf("got %q %q", re.Pattern, re.Flags)
	}
}
