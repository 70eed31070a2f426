package builtins

import (
	"math"
	"net/url"
	"strings"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

func initGlobalFunctions(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	fn(cx, realm, global, "parseInt", 2, globalParseInt)
	fn(cx, realm, global, "parseFloat", 1, globalParseFloat)

	fn(cx, realm, global, "isNaN", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		f, err := runtime.ToNumber(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.Bool(math.IsNaN(f)), nil
	})

	fn(cx, realm, global, "isFinite", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		f, err := runtime.ToNumber(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	})

	fn(cx, realm, global, "encodeURIComponent", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.String(encodeURIComponent(s)), nil
	})

	fn(cx, realm, global, "decodeURIComponent", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		out, uerr := url.QueryUnescape(strings.ReplaceAll(s, "+", "%2B"))
		if uerr != nil {
			return nil, runtime.NewURIError(cx, "malformed URI sequence")
		}
		return runtime.String(out), nil
	})

	fn(cx, realm, global, "encodeURI", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		// Reserved URI characters stay intact.
		var sb strings.Builder
		for _, r := range s {
			if strings.ContainsRune(";,/?:@&=+$#-_.!~*'()", r) || isURIUnreserved(r) {
				sb.WriteRune(r)
			} else {
				sb.WriteString(encodeURIComponent(string(r)))
			}
		}
		return runtime.String(sb.String()), nil
	})

	fn(cx, realm, global, "decodeURI", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		out, uerr := url.PathUnescape(s)
		if uerr != nil {
			return nil, runtime.NewURIError(cx, "malformed URI sequence")
		}
		return runtime.String(out), nil
	})
}

func isURIUnreserved(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// encodeURIComponent percent-encodes everything outside the unreserved
// set.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	// QueryEscape space handling and the extra characters it escapes
	// differ from the URI functions.
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	for _, keep := range []struct{ from, to string }{
		{"%21", "!"}, {"%27", "'"}, {"%28", "("}, {"%29", ")"}, {"%2A", "*"},
		{"%7E", "~"}, {"%2D", "-"}, {"%2E", "."}, {"%5F", "_"},
	} {
		escaped = strings.ReplaceAll(escaped, keep.from, keep.to)
	}
	return escaped
}
