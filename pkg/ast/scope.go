package ast

// DeclKind classifies how a name was declared.
type DeclKind int

const (
	DeclFunction DeclKind = iota // function declaration
	DeclParam                    // function parameter
	DeclVar                      // var
	DeclLet                      // let
	DeclConst                    // const
	DeclCatch                    // catch clause parameter
)

var declKindNames = [...]string{"function", "param", "var", "let", "const", "catch"}

func (k DeclKind) String() string { return declKindNames[k] }

// IsLexical reports whether the kind binds at block scope rather than
// hoisting to the enclosing function.
func (k DeclKind) IsLexical() bool {
	return k == DeclLet || k == DeclConst || k == DeclCatch
}

// Symbol is one declared name in a scope.
type Symbol struct {
	Name  string
	Kind  DeclKind
	Index int // slot index within the owning scope's frame
}

// ScopeInfo is the parser-side symbol table attached to scope-introducing
// nodes (Program, FunctionNode, BlockStatement, catch blocks). It is
// distinct from the runtime environment: the parser resolves declaration
// kinds and slot indices here; the evaluator builds frames from it.
type ScopeInfo struct {
	Symbols map[string]*Symbol
	Order   []*Symbol // declaration order, for deterministic frame layout
	Parent  *ScopeInfo
	Node    Node

	// IsFunction marks function/program scopes, the hoist targets for
	// var and function declarations.
	IsFunction bool

	// Dynamic marks scopes lexically inside a `with` statement. Names in
	// dynamic scopes cannot be slot-addressed and fall back to runtime
	// lookup.
	Dynamic bool
}

// NewScopeInfo creates an empty symbol table chained to parent.
func NewScopeInfo(parent *ScopeInfo, node Node, isFunction bool) *ScopeInfo {
	dynamic := false
	if parent != nil {
		dynamic = parent.Dynamic
	}
	return &ScopeInfo{
		Symbols:    make(map[string]*Symbol),
		Parent:     parent,
		Node:       node,
		IsFunction: isFunction,
		Dynamic:    dynamic,
	}
}

// Declare adds a name to the scope and assigns it the next slot index.
// Redeclaration handling is the parser's job; Declare overwrites silently.
func (s *ScopeInfo) Declare(name string, kind DeclKind) *Symbol {
	if sym, ok := s.Symbols[name]; ok {
		// var/function merge keeps the original slot.
		sym.Kind = kind
		return sym
	}
	sym := &Symbol{Name: name, Kind: kind, Index: len(s.Order)}
	s.Symbols[name] = sym
	s.Order = append(s.Order, sym)
	return sym
}

// Lookup finds a name in this scope only.
func (s *ScopeInfo) Lookup(name string) (*Symbol, bool) {
	sym, ok := s.Symbols[name]
	return sym, ok
}

// Resolve finds a name in this scope or any enclosing scope.
func (s *ScopeInfo) Resolve(name string) (*Symbol, *ScopeInfo, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.Symbols[name]; ok {
			return sym, sc, true
		}
	}
	return nil, nil, false
}

// FunctionScope returns the nearest enclosing function (or program) scope,
// the hoist target for var and function declarations.
func (s *ScopeInfo) FunctionScope() *ScopeInfo {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.IsFunction {
			return sc
		}
	}
	return s
}
