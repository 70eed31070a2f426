package ast

// BlockStatement is `{ ... }`. Every block statement gets its own
// ScopeInfo; a function body shares its function's scope and a catch body
// shares the scope of the catch parameter.
type BlockStatement struct {
	span
	Body  []Statement
	Scope *ScopeInfo
}

func (b *BlockStatement) stmtNode() {}
func (b *BlockStatement) forEachChild(fn func(Node)) {
	for _, s := range b.Body {
		fn(s)
	}
}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	span
	Expression Expression
}

func (e *ExpressionStatement) stmtNode()                  {}
func (e *ExpressionStatement) forEachChild(fn func(Node)) { fn(e.Expression) }

// EmptyStatement is a lone `;`.
type EmptyStatement struct {
	span
}

func (e *EmptyStatement) stmtNode()               {}
func (e *EmptyStatement) forEachChild(func(Node)) {}

// DebuggerStatement is `debugger;`. The evaluator treats it as a no-op.
type DebuggerStatement struct {
	span
}

func (d *DebuggerStatement) stmtNode()               {}
func (d *DebuggerStatement) forEachChild(func(Node)) {}

// VariableDeclarator is one `target = init` entry of a declaration.
type VariableDeclarator struct {
	span
	Target Pattern
	Init   Expression // nil when absent
}

func (v *VariableDeclarator) forEachChild(fn func(Node)) {
	fn(v.Target)
	if v.Init != nil {
		fn(v.Init)
	}
}

// VariableDeclaration is `var`/`let`/`const` with one or more declarators.
type VariableDeclaration struct {
	span
	Kind        DeclKind // DeclVar, DeclLet, or DeclConst
	Declarators []*VariableDeclarator
}

func (v *VariableDeclaration) stmtNode() {}
func (v *VariableDeclaration) forEachChild(fn func(Node)) {
	for _, d := range v.Declarators {
		fn(d)
	}
}

// IfStatement is `if (test) consequent else alternate`.
type IfStatement struct {
	span
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil when absent
}

func (i *IfStatement) stmtNode() {}
func (i *IfStatement) forEachChild(fn func(Node)) {
	fn(i.Test)
	fn(i.Consequent)
	if i.Alternate != nil {
		fn(i.Alternate)
	}
}

// ForStatement is the classic three-clause loop. Init is either a
// VariableDeclaration or an ExpressionStatement; any clause may be nil.
type ForStatement struct {
	span
	Init   Statement
	Test   Expression
	Update Expression
	Body   Statement
	Scope  *ScopeInfo // scope for let/const loop variables
}

func (f *ForStatement) stmtNode() {}
func (f *ForStatement) forEachChild(fn func(Node)) {
	if f.Init != nil {
		fn(f.Init)
	}
	if f.Test != nil {
		fn(f.Test)
	}
	if f.Update != nil {
		fn(f.Update)
	}
	fn(f.Body)
}

// ForInStatement covers both `for (x in y)` and `for (x of y)`; Of selects
// which. Left is either a VariableDeclaration with a single declarator or a
// bare assignment target.
type ForInStatement struct {
	span
	Left  Node // *VariableDeclaration or Pattern
	Right Expression
	Body  Statement
	Of    bool
	Scope *ScopeInfo
}

func (f *ForInStatement) stmtNode() {}
func (f *ForInStatement) forEachChild(fn func(Node)) {
	fn(f.Left)
	fn(f.Right)
	fn(f.Body)
}

// WhileStatement is `while (test) body`.
type WhileStatement struct {
	span
	Test Expression
	Body Statement
}

func (w *WhileStatement) stmtNode() {}
func (w *WhileStatement) forEachChild(fn func(Node)) {
	fn(w.Test)
	fn(w.Body)
}

// DoWhileStatement is `do body while (test)`.
type DoWhileStatement struct {
	span
	Body Statement
	Test Expression
}

func (d *DoWhileStatement) stmtNode() {}
func (d *DoWhileStatement) forEachChild(fn func(Node)) {
	fn(d.Body)
	fn(d.Test)
}

// ReturnStatement is `return [argument]`.
type ReturnStatement struct {
	span
	Argument Expression // nil for a bare return
}

func (r *ReturnStatement) stmtNode() {}
func (r *ReturnStatement) forEachChild(fn func(Node)) {
	if r.Argument != nil {
		fn(r.Argument)
	}
}

// BreakStatement is `break [label]`.
type BreakStatement struct {
	span
	Label string // empty when unlabeled
}

func (b *BreakStatement) stmtNode()               {}
func (b *BreakStatement) forEachChild(func(Node)) {}

// ContinueStatement is `continue [label]`.
type ContinueStatement struct {
	span
	Label string
}

func (c *ContinueStatement) stmtNode()               {}
func (c *ContinueStatement) forEachChild(func(Node)) {}

// LabeledStatement is `label: body`.
type LabeledStatement struct {
	span
	Label string
	Body  Statement
}

func (l *LabeledStatement) stmtNode()                  {}
func (l *LabeledStatement) forEachChild(fn func(Node)) { fn(l.Body) }

// SwitchCase is one `case test:` or `default:` arm.
type SwitchCase struct {
	span
	Test Expression // nil for default
	Body []Statement
}

func (s *SwitchCase) forEachChild(fn func(Node)) {
	if s.Test != nil {
		fn(s.Test)
	}
	for _, st := range s.Body {
		fn(st)
	}
}

// SwitchStatement is `switch (disc) { cases }`.
type SwitchStatement struct {
	span
	Discriminant Expression
	Cases        []*SwitchCase
	Scope        *ScopeInfo
}

func (s *SwitchStatement) stmtNode() {}
func (s *SwitchStatement) forEachChild(fn func(Node)) {
	fn(s.Discriminant)
	for _, c := range s.Cases {
		fn(c)
	}
}

// ThrowStatement is `throw argument`.
type ThrowStatement struct {
	span
	Argument Expression
}

func (t *ThrowStatement) stmtNode()                  {}
func (t *ThrowStatement) forEachChild(fn func(Node)) { fn(t.Argument) }

// TryStatement is `try { } catch (param) { } finally { }`. CatchParam may
// be nil for a parameterless catch, and either handler or finalizer (but
// not both) may be absent.
type TryStatement struct {
	span
	Block      *BlockStatement
	CatchParam Pattern
	Catch      *BlockStatement
	Finally    *BlockStatement
}

func (t *TryStatement) stmtNode() {}
func (t *TryStatement) forEachChild(fn func(Node)) {
	fn(t.Block)
	if t.CatchParam != nil {
		fn(t.CatchParam)
	}
	if t.Catch != nil {
		fn(t.Catch)
	}
	if t.Finally != nil {
		fn(t.Finally)
	}
}

// WithStatement is `with (object) body`. It pushes a dynamic scope layer at
// evaluation time; the parser marks everything lexically inside as dynamic.
type WithStatement struct {
	span
	Object Expression
	Body   Statement
}

func (w *WithStatement) stmtNode() {}
func (w *WithStatement) forEachChild(fn func(Node)) {
	fn(w.Object)
	fn(w.Body)
}
