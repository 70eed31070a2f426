package builtins

import (
	"fmt"
	"strings"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// initConsole installs console.log/info/warn/error/debug, all writing to
// the context's configured output.
func initConsole(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	console := runtime.NewObject("Console", realm.ObjectProto)
	global.SetOwn(cx, "console", console)

	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		fn(cx, realm, console, level, 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			if cx.Output == nil {
				return runtime.Undefined, nil
			}
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = displayValue(cx, a)
			}
			fmt.Fprintln(cx.Output, strings.Join(parts, " "))
			return runtime.Undefined, nil
		})
	}
}

// displayValue renders a value for console output: strings bare, objects
// through toString when available.
func displayValue(cx *runtime.Context, v runtime.Value) string {
	if s, err := runtime.ToString(cx, v); err == nil {
		return s
	}
	return v.ToDisplay()
}
