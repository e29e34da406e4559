package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/crackerjack-go/crackerjack/internal/hookcache"
	"github.com/crackerjack-go/crackerjack/internal/issue"
	"github.com/crackerjack-go/crackerjack/internal/parser"
	"github.com/crackerjack-go/crackerjack/internal/toolrunner"
)

// ProgressCallback is invoked as hooks resolve, so a caller (CLI, agent
// coordinator) can render a live status line without polling StageResult.
type ProgressCallback func(hookName string, status issue.Status, completed, total int)

// Config holds the Hook Orchestrator's dependencies and tunables.
type Config struct {
	Catalog      *Catalog
	Cache        *hookcache.Cache
	Runner       *toolrunner.Runner
	Parsers      *parser.Registry
	Log          *slog.Logger
	ToolVersions map[string]string // hook name -> version string, for cache keys

	// MaxParallelSafe bounds concurrently-running Safe hooks within a wave.
	// <= 0 defaults to runtime.NumCPU().
	MaxParallelSafe int
	// DispatchRate, if > 0, throttles how fast new hook processes are
	// started (protects a resource-constrained CI runner from a burst of
	// simultaneous subprocess spawns); 0 disables throttling.
	DispatchRate rate.Limit

	ProgressCallback ProgressCallback
}

// Runner schedules and executes one stage's hooks against a workspace.
type Runner struct {
	cfg Config
	log *slog.Logger
}

// NewRunner validates cfg and builds a Runner.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("orchestrator: catalog is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("orchestrator: cache is required")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("orchestrator: tool runner is required")
	}
	if cfg.Parsers == nil {
		return nil, fmt.Errorf("orchestrator: parser registry is required")
	}
	if cfg.MaxParallelSafe <= 0 {
		cfg.MaxParallelSafe = runtime.NumCPU()
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	cfg.Cache.WithLogger(log)
	return &Runner{cfg: cfg, log: log}, nil
}

// StageSummary totals a stage's outcome.
type StageSummary struct {
	Total     int `json:"total"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	CacheHits int `json:"cache_hits"`
}

// StageResult is the Hook Orchestrator's output for one run_stage call.
type StageResult struct {
	Stage    issue.Stage        `json:"stage"`
	Passed   bool               `json:"passed"`
	Results  []issue.HookResult `json:"results"`
	Issues   []issue.Issue      `json:"issues"`
	Summary  StageSummary       `json:"summary"`
	Duration time.Duration      `json:"duration"`
}

// RunStage executes every hook registered for stage against workspaceRoot,
// in dependency order, Safe hooks bounded-parallel and Isolated hooks
// strictly exclusive, consulting the cache before any execution.
func (r *Runner) RunStage(ctx context.Context, stage issue.Stage, workspaceRoot string) (StageResult, error) {
	started := time.Now()
	hooks := r.cfg.Catalog.ForStage(stage)

	result := StageResult{Stage: stage, Passed: true}
	if len(hooks) == 0 {
		result.Duration = time.Since(started)
		return result, nil
	}

	resolved := make(map[string]bool, len(hooks))
	failed := make(map[string]bool, len(hooks))
	var mu sync.Mutex // guards result.Results / result.Issues / result.Summary / resolved / failed

	completed := 0
	total := len(hooks)
	report := func(h issue.HookDefinition, res issue.HookResult, underlyingFailed bool) {
		mu.Lock()
		result.Results = append(result.Results, res)
		result.Issues = append(result.Issues, res.Issues...)
		resolved[h.Name] = true
		if underlyingFailed {
			failed[h.Name] = true
		}
		switch res.Status {
		case issue.StatusCacheHit:
			result.Summary.CacheHits++
		case issue.StatusSkipped:
			result.Summary.Skipped++
		case issue.StatusPassed:
			result.Summary.Passed++
		default:
			result.Summary.Failed++
		}
		if underlyingFailed {
			result.Passed = false
		}
		completed++
		n := completed
		mu.Unlock()

		if r.cfg.ProgressCallback != nil {
			r.cfg.ProgressCallback(h.Name, res.Status, n, total)
		}
	}

	// Cache consultation happens up front, before the DAG walk: a cache hit
	// is immediately "resolved" so dependents don't wait for it to run.
	var queued []issue.HookDefinition
	for _, h := range hooks {
		key, keyErr := hookcache.Key(h, workspaceRoot, hookcache.KeyInputs{
			ToolVersion: r.cfg.ToolVersions[h.Name],
		})
		if keyErr != nil {
			r.log.Warn("cache key computation failed, running uncached", "hook", h.Name, "error", keyErr)
			queued = append(queued, h)
			continue
		}

		cached, hit := r.cfg.Cache.Get(ctx, key)
		if !hit {
			queued = append(queued, h)
			continue
		}

		wasPassed := cached.Status == issue.StatusPassed
		asHit := cached
		asHit.Status = issue.StatusCacheHit
		asHit.CacheKey = key
		report(h, asHit, !wasPassed)
	}

	result.Summary.Total = total
	if len(queued) == 0 {
		result.Duration = time.Since(started)
		return result, nil
	}

	sem := semaphore.NewWeighted(int64(r.cfg.MaxParallelSafe))
	var limiter *rate.Limiter
	if r.cfg.DispatchRate > 0 {
		limiter = rate.NewLimiter(r.cfg.DispatchRate, 1)
	}

	runHook := func(h issue.HookDefinition) (issue.HookResult, bool) {
		if limiter != nil {
			_ = limiter.Wait(ctx)
		}

		res, err := r.cfg.Runner.Run(ctx, h, workspaceRoot)
		if err != nil {
			r.log.Error("hook execution error", "hook", h.Name, "error", err)
		}

		issues, diag := r.cfg.Parsers.Parse(h.ParserID, []byte(res.Stdout), res.ExitCode, []byte(res.Stderr))
		res.Issues = issues
		if diag != "" {
			r.log.Warn("parser diagnostic", "hook", h.Name, "parser", h.ParserID, "diag", diag)
			res.Status = issue.StatusFailed
			res.FailureReason = "parse_error"
		}

		underlyingFailed := res.Status != issue.StatusPassed

		if diag == "" && !res.Status.IsTerminalFailure() {
			key, keyErr := hookcache.Key(h, workspaceRoot, hookcache.KeyInputs{
				ToolVersion: r.cfg.ToolVersions[h.Name],
			})
			if keyErr == nil {
				res.CacheKey = key
				r.cfg.Cache.Put(ctx, key, h.Name, res, 0)
			}
		}

		return res, underlyingFailed
	}

	planner := planWaves(queued)
	for {
		toSkip, w, done := planner.next(resolved, failed)
		if done {
			break
		}

		for _, h := range toSkip {
			report(h, issue.HookResult{
				HookName:   h.Name,
				Status:     issue.StatusSkipped,
				SkipReason: "dependency_failed",
			}, true)
		}

		for _, h := range w.isolated {
			res, underlyingFailed := runHook(h)
			report(h, res, underlyingFailed)
		}

		if len(w.safe) > 0 {
			var wg sync.WaitGroup
			for _, h := range w.safe {
				if err := sem.Acquire(ctx, 1); err != nil {
					report(h, issue.HookResult{HookName: h.Name, Status: issue.StatusSkipped, SkipReason: "context_cancelled"}, true)
					continue
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer sem.Release(1)
					res, underlyingFailed := runHook(h)
					report(h, res, underlyingFailed)
				}()
			}
			wg.Wait()
		}
	}

	result.Duration = time.Since(started)
	return result, nil
}
