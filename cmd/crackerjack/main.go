// Command crackerjack runs a Python project's quality hooks, routes the
// issues they find to autofix agents, and optionally loops until the
// workspace converges.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crackerjack",
	Short: "Quality hook orchestrator and autofix loop for Python projects",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
