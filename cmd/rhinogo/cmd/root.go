package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "rhinogo",
	Short: "Embeddable script interpreter",
	Long: `rhinogo is an embeddable interpreter for an ECMAScript-family
scripting language, designed for deep two-way interop with Go hosts:

  - Host objects are exposed to scripts as live reflective proxies
  - Script values coerce back to Go types with overload resolution
  - Full lexer/parser with position-preserving AST
  - Tree-walking evaluator with proper scopes, closures, and exceptions`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
