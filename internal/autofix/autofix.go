// Package autofix drives the convergence loop: repeatedly running the
// comprehensive hook stage and submitting its issues to the agent
// coordinator until the workspace is clean, no further progress is being
// made, or the iteration budget is exhausted.
package autofix

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/crackerjack-go/crackerjack/internal/coordinator"
	"github.com/crackerjack-go/crackerjack/internal/issue"
	"github.com/crackerjack-go/crackerjack/internal/orchestrator"
)

// defaultMaxIterations bounds the loop when nothing else terminates it.
const defaultMaxIterations = 20

// defaultConvergenceThreshold is how many consecutive no-progress
// iterations are tolerated before declaring the loop stuck. Deliberately
// patient: a single quiet iteration must never end the loop.
const defaultConvergenceThreshold = 5

// Status is the terminal outcome of a convergence run.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusConverged Status = "converged"
	StatusExhausted Status = "exhausted"
)

// Result is the autofix loop's return value.
type Result struct {
	Status            Status   `json:"status"`
	Iterations        int      `json:"iterations"`
	TotalFixesApplied int      `json:"total_fixes_applied"`
	FinalIssueCount   int      `json:"final_issue_count"`
	ModifiedFiles     []string `json:"modified_files"`
}

// StageRunner runs a hook stage against a workspace. Satisfied by
// *orchestrator.Runner.
type StageRunner interface {
	RunStage(ctx context.Context, stage issue.Stage, workspaceRoot string) (orchestrator.StageResult, error)
}

// Dispatcher routes issues to agents and applies fixes. Satisfied by
// *coordinator.Coordinator.
type Dispatcher interface {
	Dispatch(ctx context.Context, workspaceRoot string, issues []issue.Issue) coordinator.Result
}

// Config holds the convergence loop's dependencies and tunables.
type Config struct {
	StageRunner          StageRunner
	Dispatcher           Dispatcher
	MaxIterations        int // <= 0 defaults to defaultMaxIterations
	ConvergenceThreshold int // <= 0 defaults to defaultConvergenceThreshold
	Log                  *slog.Logger
}

// Loop drives one workspace toward convergence.
type Loop struct {
	cfg Config
	log *slog.Logger
}

// New validates cfg and builds a Loop.
func New(cfg Config) (*Loop, error) {
	if cfg.StageRunner == nil {
		return nil, fmt.Errorf("autofix: stage runner is required")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("autofix: dispatcher is required")
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.ConvergenceThreshold <= 0 {
		cfg.ConvergenceThreshold = defaultConvergenceThreshold
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Loop{cfg: cfg, log: log}, nil
}

// Run executes the convergence loop against workspaceRoot. Progress is
// defined strictly by agent-applied fixes (coordinator.Result.FixesApplied),
// never by a numerical drop in issue count: an agent can fix five issues
// while the next hook run surfaces three unrelated new ones, and that is
// still progress.
func (l *Loop) Run(ctx context.Context, workspaceRoot string) (Result, error) {
	modified := make(map[string]bool)
	totalFixes := 0
	noProgressCount := 0
	iterationsRun := 0
	var finalIssueCount int

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("autofix: cancelled after %d iteration(s): %w", iterationsRun, err)
		}

		iterationsRun++

		stageResult, err := l.cfg.StageRunner.RunStage(ctx, issue.StageComprehensive, workspaceRoot)
		if err != nil {
			return Result{}, fmt.Errorf("autofix: stage run failed on iteration %d: %w", iterationsRun, err)
		}

		finalIssueCount = len(stageResult.Issues)

		l.log.Info("autofix iteration measured issues",
			"iteration", iterationsRun, "issue_count", finalIssueCount)

		if finalIssueCount == 0 {
			return Result{
				Status:            StatusSuccess,
				Iterations:        iterationsRun,
				TotalFixesApplied: totalFixes,
				FinalIssueCount:   0,
				ModifiedFiles:     sortedFiles(modified),
			}, nil
		}

		dispatchResult := l.cfg.Dispatcher.Dispatch(ctx, workspaceRoot, stageResult.Issues)
		totalFixes += dispatchResult.FixesApplied
		for _, r := range dispatchResult.Results {
			for _, f := range r.FilesModified {
				modified[f] = true
			}
		}

		// Progress is defined strictly by agent-applied fixes, never by a
		// drop in issue count: a re-analysis pass against a cold cache can
		// report fewer issues than the previous iteration even when the
		// coordinator fixed nothing, and that must still count as no
		// progress — only an applied fix resets the counter.
		if dispatchResult.FixesApplied > 0 {
			noProgressCount = 0
		} else {
			noProgressCount++
		}

		l.log.Info("autofix iteration applied fixes",
			"iteration", iterationsRun, "fixes_applied", dispatchResult.FixesApplied,
			"no_progress_count", noProgressCount)

		if noProgressCount >= l.cfg.ConvergenceThreshold {
			return Result{
				Status:            StatusConverged,
				Iterations:        iterationsRun,
				TotalFixesApplied: totalFixes,
				FinalIssueCount:   finalIssueCount,
				ModifiedFiles:     sortedFiles(modified),
			}, nil
		}
		if iterationsRun >= l.cfg.MaxIterations {
			return Result{
				Status:            StatusExhausted,
				Iterations:        iterationsRun,
				TotalFixesApplied: totalFixes,
				FinalIssueCount:   finalIssueCount,
				ModifiedFiles:     sortedFiles(modified),
			}, nil
		}
	}
}

func sortedFiles(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
