package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gigaherz/rhinogo/internal/lexer"
	"github.com/gigaherz/rhinogo/pkg/token"
)

var lexCmd = &cobra.Command{
	Use:   "lex <script.js>",
	Short: "Tokenize a script and dump the token stream",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			exitWithError("cannot read %s: %v", args[0], err)
		}
		l := lexer.New(string(data))
		for {
			tok := l.NextToken()
			fmt.Println(tok.String())
			if tok.Type == token.EOF {
				break
			}
		}
		for _, lerr := range l.Errors() {
			fmt.Fprintln(os.Stderr, lerr.Error())
		}
		if len(l.Errors()) > 0 {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(lexCmd)
}
