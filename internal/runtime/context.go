package runtime

import (
	"io"
)

// WrapFactory converts host Go values into script values. The default
// implementation lives in the ffi package; embedders may substitute their
// own.
type WrapFactory interface {
	Wrap(cx *Context, v any) (Value, error)
}

// TypeWrapper is a custom coercion hook: it may claim a (value, target
// type) pair during overload resolution and perform the conversion itself.
type TypeWrapper interface {
	// Supports reports whether this wrapper converts v to the target
	// type named by tag. A supporting wrapper short-circuits overload
	// weighting with a nontrivial (best) match.
	Supports(v Value, tag string) bool
	// Convert performs the conversion.
	Convert(cx *Context, v Value, tag string) (any, error)
}

// TypeWrapperRegistry holds the per-context custom coercions.
type TypeWrapperRegistry struct {
	wrappers []TypeWrapper
}

// Register puts a wrapper ahead of the existing ones, so later
// registrations take priority.
func (r *TypeWrapperRegistry) Register(w TypeWrapper) {
	r.wrappers = append([]TypeWrapper{w}, r.wrappers...)
}

// Find returns the first wrapper supporting the pair, or nil.
func (r *TypeWrapperRegistry) Find(v Value, tag string) TypeWrapper {
	for _, w := range r.wrappers {
		if w.Supports(v, tag) {
			return w
		}
	}
	return nil
}

// Context is the unit of execution: it owns the current call stack, the
// output writer, the wrap factory, the type-wrapper registry, and the
// identity-memoized wrapper cache. All evaluator operations for a script
// run on one goroutine between context enter and exit.
type Context struct {
	// Strict toggles the strict-mode behavioral differences.
	Strict bool

	// Interrupt, when non-nil, is consulted before each statement.
	// Returning true raises a Terminated error that script catch clauses
	// cannot observe.
	Interrupt func() bool

	// Output receives console text.
	Output io.Writer

	// MaxStackDepth bounds script recursion; 0 means the default.
	MaxStackDepth int

	// ErrorToValue materializes a ScriptError as a script Error object
	// for catch clauses. The builtins install it.
	ErrorToValue func(cx *Context, err *ScriptError) Value

	// Realm holds the intrinsics of the current global scope, installed
	// by initStandardObjects.
	Realm *Realm

	wrapFactory  WrapFactory
	typeWrappers *TypeWrapperRegistry

	// wrapperCache memoizes host-object wrappers by host identity so the
	// same host object wraps to the same Scriptable within the context.
	wrapperCache map[any]Scriptable

	// symbolRegistry interns Symbol.for symbols.
	symbolRegistry map[string]*SymbolValue

	frames      []StackFrame
	sourceName  string
	currentLine int
}

// NewContext creates a fresh context.
func NewContext() *Context {
	return &Context{
		typeWrappers:   &TypeWrapperRegistry{},
		wrapperCache:   make(map[any]Scriptable),
		symbolRegistry: make(map[string]*SymbolValue),
		MaxStackDepth:  512,
	}
}

// WrapFactory returns the context's wrap factory.
func (cx *Context) WrapFactory() WrapFactory { return cx.wrapFactory }

// SetWrapFactory replaces the host-to-script wrapping strategy.
func (cx *Context) SetWrapFactory(f WrapFactory) { cx.wrapFactory = f }

// TypeWrappers returns the custom coercion registry.
func (cx *Context) TypeWrappers() *TypeWrapperRegistry { return cx.typeWrappers }

// CachedWrapper returns the memoized wrapper for a host object, if any.
func (cx *Context) CachedWrapper(host any) (Scriptable, bool) {
	w, ok := cx.wrapperCache[host]
	return w, ok
}

// CacheWrapper memoizes a wrapper under the host object's identity.
func (cx *Context) CacheWrapper(host any, w Scriptable) {
	cx.wrapperCache[host] = w
}

// ReleaseWrappers drops the wrapper cache, releasing host references.
func (cx *Context) ReleaseWrappers() {
	cx.wrapperCache = make(map[any]Scriptable)
}

// InternSymbol returns the registry symbol for key, creating it on first
// use (Symbol.for semantics).
func (cx *Context) InternSymbol(key string) *SymbolValue {
	if s, ok := cx.symbolRegistry[key]; ok {
		return s
	}
	s := &SymbolValue{Description: key, registryKey: key}
	cx.symbolRegistry[key] = s
	return s
}

// SymbolKeyFor returns the registry key of an interned symbol.
func (cx *Context) SymbolKeyFor(sym *SymbolValue) (string, bool) {
	if sym.registryKey == "" {
		return "", false
	}
	return sym.registryKey, true
}

// PushFrame records a script activation for stack capture. It fails with
// a RangeError when the recursion bound is exceeded.
func (cx *Context) PushFrame(fileName, functionName string, line int) error {
	limit := cx.MaxStackDepth
	if limit <= 0 {
		limit = 512
	}
	if len(cx.frames) >= limit {
		return NewRangeError(cx, "maximum call stack size exceeded")
	}
	cx.frames = append(cx.frames, StackFrame{FileName: fileName, FunctionName: functionName, LineNumber: line})
	return nil
}

// PopFrame removes the innermost activation.
func (cx *Context) PopFrame() {
	if len(cx.frames) > 0 {
		cx.frames = cx.frames[:len(cx.frames)-1]
	}
}

// SetPosition updates the current statement position used for error
// attribution and keeps the innermost stack frame's line current.
func (cx *Context) SetPosition(sourceName string, line int) {
	if sourceName != "" {
		cx.sourceName = sourceName
	}
	cx.currentLine = line
	if len(cx.frames) > 0 {
		cx.frames[len(cx.frames)-1].LineNumber = line
	}
}

// SourceName returns the current source name.
func (cx *Context) SourceName() string { return cx.sourceName }

// CurrentLine returns the current statement line.
func (cx *Context) CurrentLine() int { return cx.currentLine }

// CheckInterrupt consults the embedder's interrupt hook.
func (cx *Context) CheckInterrupt() error {
	if cx.Interrupt != nil && cx.Interrupt() {
		return NewTerminatedError(cx)
	}
	return nil
}
