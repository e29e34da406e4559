package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crackerjack-go/crackerjack/internal/clog"
	"github.com/crackerjack-go/crackerjack/internal/issue"
	"github.com/crackerjack-go/crackerjack/internal/orchestrator"
)

var (
	runCatalogPath   string
	runComprehensive bool
)

var runCmd = &cobra.Command{
	Use:   "run [workspace]",
	Short: "Run the fast (or --comprehensive) hook stage once",
	Long: `Run runs every hook registered for a stage against workspace (default: the
current directory), respecting hook dependencies, security-level isolation,
and the result cache, then prints a summary.

By default the fast stage runs. Pass --comprehensive for the full stage.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		workspaceRoot := "."
		if len(args) > 0 {
			workspaceRoot = args[0]
		}

		log := clog.FromEnv()
		s, err := buildStack(workspaceRoot, runCatalogPath, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		stage := issue.StageFast
		if runComprehensive {
			stage = issue.StageComprehensive
		}

		result, err := s.runner.RunStage(context.Background(), stage, workspaceRoot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printStageSummary(result)
		if !result.Passed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runCatalogPath, "catalog", "", "path to a hook catalog YAML file (default: built-in)")
	runCmd.Flags().BoolVar(&runComprehensive, "comprehensive", false, "run the comprehensive stage instead of fast")
}

func printStageSummary(result orchestrator.StageResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	status := green("PASSED")
	if !result.Passed {
		status = red("FAILED")
	}

	fmt.Printf("\n%s %s  %s\n", status, string(result.Stage), gray(result.Duration.String()))
	fmt.Printf("  total=%d passed=%d failed=%d skipped=%d cache_hits=%d\n",
		result.Summary.Total, result.Summary.Passed, result.Summary.Failed,
		result.Summary.Skipped, result.Summary.CacheHits)

	for _, iss := range result.Issues {
		loc := iss.FilePath
		if iss.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, iss.Line)
		}
		fmt.Printf("  %s %s: %s\n", gray(loc), iss.Tool, iss.Message)
	}
	fmt.Println()
}
