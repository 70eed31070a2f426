package runtime

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a script error.
type ErrorKind int

const (
	SyntaxErr ErrorKind = iota
	TypeErr
	ReferenceErr
	RangeErr
	URIErr
	EvaluatorErr // engine self-check
	WrappedErr   // a host error escaping through a bridged call
	ThrownErr    // a script `throw` of an arbitrary value
	TerminatedErr
)

var errorKindNames = [...]string{
	"SyntaxError", "TypeError", "ReferenceError", "RangeError", "URIError",
	"EvaluatorError", "WrappedError", "Error", "Terminated",
}

func (k ErrorKind) String() string { return errorKindNames[k] }

// StackFrame is one captured script activation.
type StackFrame struct {
	FileName     string
	FunctionName string
	LineNumber   int
}

// ScriptError is the structured error produced by the engine. It carries
// the script stack captured at throw time from the evaluator's activation
// chain, not the host stack.
type ScriptError struct {
	Kind       ErrorKind
	Message    string
	SourceName string
	LineNumber int
	Column     int
	LineSource string
	Stack      []StackFrame

	// Value is the thrown script value for ThrownErr, or the script
	// Error object materialized for this error.
	Value Value

	// Cause is the original host error for WrappedErr.
	Cause error
}

// Error renders "<details> (<source>#<line>)".
func (e *ScriptError) Error() string {
	details := e.Message
	if e.Kind != ThrownErr {
		details = e.Kind.String() + ": " + e.Message
	}
	if e.SourceName != "" && e.LineNumber > 0 {
		return fmt.Sprintf("%s (%s#%d)", details, e.SourceName, e.LineNumber)
	}
	return details
}

// Unwrap exposes the host cause of a wrapped error.
func (e *ScriptError) Unwrap() error { return e.Cause }

// RenderStack renders the captured script stack one frame per line as
// "\tat <functionName> (<sourceName>:<line>)". limit truncates the output
// when positive; hideBelow drops every frame below (and including) the
// first frame with the given function name.
func (e *ScriptError) RenderStack(limit int, hideBelow string) string {
	frames := e.Stack
	if hideBelow != "" {
		for i, f := range frames {
			if f.FunctionName == hideBelow {
				frames = frames[:i]
				break
			}
		}
	}
	if limit > 0 && len(frames) > limit {
		frames = frames[:limit]
	}
	var sb strings.Builder
	for _, f := range frames {
		name := f.FunctionName
		if name == "" {
			name = "<anonymous>"
		}
		fmt.Fprintf(&sb, "\tat %s (%s:%d)\n", name, f.FileName, f.LineNumber)
	}
	return sb.String()
}

// captureStack snapshots the context's activation chain, innermost first.
func captureStack(cx *Context) []StackFrame {
	if cx == nil {
		return nil
	}
	frames := make([]StackFrame, len(cx.frames))
	for i := range cx.frames {
		frames[len(cx.frames)-1-i] = cx.frames[i]
	}
	return frames
}

// newError creates a ScriptError positioned at the context's current
// statement.
func newError(cx *Context, kind ErrorKind, format string, args ...any) *ScriptError {
	e := &ScriptError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(cx),
	}
	if cx != nil {
		e.SourceName = cx.sourceName
		e.LineNumber = cx.currentLine
	}
	return e
}

// NewTypeError, NewReferenceError, NewRangeError, NewURIError,
// NewSyntaxError, and NewEvaluatorError create the standard error kinds at
// the current source position.
func NewTypeError(cx *Context, format string, args ...any) *ScriptError {
	return newError(cx, TypeErr, format, args...)
}

func NewReferenceError(cx *Context, format string, args ...any) *ScriptError {
	return newError(cx, ReferenceErr, format, args...)
}

func NewRangeError(cx *Context, format string, args ...any) *ScriptError {
	return newError(cx, RangeErr, format, args...)
}

func NewURIError(cx *Context, format string, args ...any) *ScriptError {
	return newError(cx, URIErr, format, args...)
}

func NewSyntaxError(cx *Context, format string, args ...any) *ScriptError {
	return newError(cx, SyntaxErr, format, args...)
}

func NewEvaluatorError(cx *Context, format string, args ...any) *ScriptError {
	return newError(cx, EvaluatorErr, format, args...)
}

// NewTerminatedError is raised when the embedder's interrupt hook fires.
// It is not catchable by script code.
func NewTerminatedError(cx *Context) *ScriptError {
	return newError(cx, TerminatedErr, "script execution terminated")
}

// NewThrownValue wraps a script value thrown by a `throw` statement.
func NewThrownValue(cx *Context, v Value, display string) *ScriptError {
	e := newError(cx, ThrownErr, "%s", display)
	e.Value = v
	return e
}

// WrapHostError wraps an error escaping from a bridged host call. The
// message preserves the host message and Cause retains the original.
func WrapHostError(cx *Context, err error) *ScriptError {
	if se, ok := err.(*ScriptError); ok {
		return se
	}
	e := newError(cx, WrappedErr, "%s", err.Error())
	e.Cause = err
	return e
}

// IsCatchable reports whether script catch clauses may observe the error.
// Termination and engine self-check failures pass through.
func IsCatchable(err error) bool {
	se, ok := err.(*ScriptError)
	if !ok {
		return false
	}
	return se.Kind != TerminatedErr && se.Kind != EvaluatorErr
}
