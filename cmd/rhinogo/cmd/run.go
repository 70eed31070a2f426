package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gigaherz/rhinogo/internal/runtime"
	"github.com/gigaherz/rhinogo/pkg/rhino"
)

var (
	runExpr   string
	runStrict bool
)

var runCmd = &cobra.Command{
	Use:   "run [script.js]",
	Short: "Execute a script file or inline expression",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source := runExpr
		name := "<eval>"
		if len(args) > 0 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				exitWithError("cannot read %s: %v", args[0], err)
			}
			source = string(data)
			name = args[0]
		} else if source == "" {
			exitWithError("no script given; pass a file or -e 'expression'")
		}

		ctx := rhino.Enter(rhino.WithStrictMode(runStrict))
		defer ctx.Exit()
		scope := ctx.InitStandardObjects()

		_, err := ctx.EvaluateString(scope, source, name, 1)
		if err != nil {
			var se *runtime.ScriptError
			if errors.As(err, &se) {
				fmt.Fprintln(os.Stderr, se.Error())
				if stack := se.RenderStack(0, ""); stack != "" {
					fmt.Fprint(os.Stderr, stack)
				}
				os.Exit(3)
			}
			exitWithError("%v", err)
		}
	},
}

func init() {
	runCmd.Flags().StringVarP(&runExpr, "eval", "e", "", "evaluate an inline expression")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "enable strict mode")
	rootCmd.AddCommand(runCmd)
}
