package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crackerjack-go/crackerjack/internal/autofix"
	"github.com/crackerjack-go/crackerjack/internal/clog"
)

var autofixCatalogPath string

var autofixCmd = &cobra.Command{
	Use:   "autofix [workspace]",
	Short: "Run the comprehensive stage and dispatch fixes until the workspace converges",
	Long: `Autofix repeatedly runs the comprehensive hook stage, routes its issues to
registered fixer agents, and stops when the workspace is clean, no further
progress is being made for convergence_threshold consecutive iterations, or
max_iterations is reached.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		workspaceRoot := "."
		if len(args) > 0 {
			workspaceRoot = args[0]
		}

		log := clog.FromEnv()
		s, err := buildStack(workspaceRoot, autofixCatalogPath, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		loop, err := newAutofixLoop(s, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		result, err := loop.Run(context.Background(), workspaceRoot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printAutofixResult(result)
		if result.Status != autofix.StatusSuccess {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(autofixCmd)
	autofixCmd.Flags().StringVar(&autofixCatalogPath, "catalog", "", "path to a hook catalog YAML file (default: built-in)")
}

func printAutofixResult(result autofix.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	label := string(result.Status)
	switch result.Status {
	case autofix.StatusSuccess:
		label = green(label)
	case autofix.StatusConverged:
		label = yellow(label)
	case autofix.StatusExhausted:
		label = red(label)
	}

	fmt.Printf("\n%s after %d iteration(s)\n", label, result.Iterations)
	fmt.Printf("  fixes_applied=%d final_issue_count=%d\n", result.TotalFixesApplied, result.FinalIssueCount)
	if len(result.ModifiedFiles) > 0 {
		fmt.Printf("  %s\n", gray("modified files:"))
		for _, f := range result.ModifiedFiles {
			fmt.Printf("    %s\n", f)
		}
	}
	fmt.Println()
}
