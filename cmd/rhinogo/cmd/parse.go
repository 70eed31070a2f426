package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gigaherz/rhinogo/internal/parser"
	"github.com/gigaherz/rhinogo/pkg/ast"
)

var parseCmd = &cobra.Command{
	Use:   "parse <script.js>",
	Short: "Parse a script and dump its AST",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			exitWithError("cannot read %s: %v", args[0], err)
		}
		p := parser.New(string(data), parser.WithSourceName(args[0]))
		program := p.ParseProgram()
		for _, perr := range p.Errors() {
			fmt.Fprintln(os.Stderr, perr.Error())
		}

		ast.Walk(program, func(n ast.Node) bool {
			fmt.Printf("%s%T pos=%d len=%d line=%d\n",
				strings.Repeat("  ", nodeDepth(n)), n, n.Position(), n.Length(), n.Line())
			return true
		})
		if len(p.Errors()) > 0 {
			os.Exit(2)
		}
	},
}

func nodeDepth(n ast.Node) int {
	d := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
