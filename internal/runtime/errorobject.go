package runtime

// ErrorObject is a script Error instance tied to its underlying
// ScriptError, so a rethrow preserves identity and the captured stack.
type ErrorObject struct {
	*BaseObject
	Err *ScriptError
}

// NewErrorObject wraps a ScriptError in a script-visible Error object.
func NewErrorObject(proto Scriptable, err *ScriptError) *ErrorObject {
	obj := &ErrorObject{BaseObject: NewObject("Error", proto), Err: err}
	obj.SetOwn(nil, "name", String(err.Kind.String()))
	obj.SetOwn(nil, "message", String(err.Message))
	obj.SetOwn(nil, "stack", String(err.RenderStack(0, "")))
	if err.LineNumber > 0 {
		obj.SetOwn(nil, "lineNumber", Number(float64(err.LineNumber)))
	}
	if err.SourceName != "" {
		obj.SetOwn(nil, "fileName", String(err.SourceName))
	}
	return obj
}

func (e *ErrorObject) ToDisplay() string {
	if e.Err.Kind == ThrownErr {
		return e.Err.Message
	}
	return e.Err.Kind.String() + ": " + e.Err.Message
}
