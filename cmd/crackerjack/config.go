package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crackerjack-go/crackerjack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [workspace]",
	Short: "Print the resolved configuration (file + environment overrides)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		workspaceRoot := "."
		if len(args) > 0 {
			workspaceRoot = args[0]
		}

		cfg, err := config.Load(workspaceRoot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Printf("max_iterations:        %d\n", cfg.MaxIterations)
		fmt.Printf("convergence_threshold: %d\n", cfg.ConvergenceThreshold)
		fmt.Printf("parallelism:           %d\n", cfg.Parallelism)
		fmt.Printf("cache_ttl_seconds:     %d\n", cfg.CacheTTLSeconds)
		fmt.Printf("cache_max_entries:     %d\n", cfg.CacheMaxEntries)
		fmt.Printf("ai_fix_enabled:        %t\n", cfg.AIFixEnabled)
		fmt.Printf("workspace_root:        %s\n", cfg.WorkspaceRoot)
		fmt.Printf("%s %s\n", gray("source file:"), filepath.Join(workspaceRoot, ".crackerjack.yaml"))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
