package main

import (
	"os"

	"github.com/gigaherz/rhinogo/cmd/rhinogo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
