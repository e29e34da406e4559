package coordinator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/crackerjack-go/crackerjack/internal/agent"
	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// defaultGlobalConcurrency bounds how many files may be under active Apply
// calls at once, across the whole coordinator (spec.md §4.4).
const defaultGlobalConcurrency = 10

// defaultBatchSize is how many issues are submitted to one agent's Apply
// call at a time, bounding memory and letting the loop observe partial
// progress (spec.md §4.4).
const defaultBatchSize = 10

// Config holds the Agent Coordinator's dependencies and tunables.
type Config struct {
	Agents            *agent.Registry
	MinConfidence     map[issue.Kind]float64 // per-kind override of the routine/risky default
	GlobalConcurrency int                    // <= 0 defaults to defaultGlobalConcurrency
	BatchSize         int                    // <= 0 defaults to defaultBatchSize
	Log               *slog.Logger
}

// Coordinator routes issues to capability-matched agents and aggregates
// their fixes.
type Coordinator struct {
	cfg Config
	log *slog.Logger
}

// New validates cfg and builds a Coordinator.
func New(cfg Config) *Coordinator {
	if cfg.Agents == nil {
		cfg.Agents = agent.NewRegistry()
	}
	if cfg.GlobalConcurrency <= 0 {
		cfg.GlobalConcurrency = defaultGlobalConcurrency
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{cfg: cfg, log: log}
}

// Result aggregates a Dispatch call's outcome.
type Result struct {
	FixesApplied int               `json:"fixes_applied"`
	Results      []issue.FixResult `json:"results"`
	Unhandled    []issue.Issue     `json:"unhandled"`
}

// routedIssue is an issue paired with its chosen agent, computed once up
// front since CanHandle is required to be pure and side-effect-free.
type routedIssue struct {
	iss   issue.Issue
	agent agent.Agent
}

// Dispatch routes issues to their best-matched agent and applies fixes,
// partitioned by target file (project-level issues — empty FilePath —
// form their own partition), with per-file mutual exclusion, bounded
// global concurrency across files, and batched submission per agent.
func (c *Coordinator) Dispatch(ctx context.Context, workspaceRoot string, issues []issue.Issue) Result {
	registrations := c.cfg.Agents.All()

	var result Result
	var mu sync.Mutex // guards result

	partitions := make(map[string][]routedIssue)
	for _, iss := range issues {
		reg, confidence, unhandled := route(iss, registrations, c.cfg.MinConfidence)
		if unhandled {
			c.log.Debug("issue unhandled: no agent cleared confidence threshold", "issue_id", iss.ID, "kind", iss.Kind)
			mu.Lock()
			result.Unhandled = append(result.Unhandled, iss)
			mu.Unlock()
			continue
		}
		c.log.Debug("routed issue", "issue_id", iss.ID, "agent", reg.Agent.Name(), "confidence", confidence)
		partitions[iss.FilePath] = append(partitions[iss.FilePath], routedIssue{iss: iss, agent: reg.Agent})
	}

	sem := semaphore.NewWeighted(int64(c.cfg.GlobalConcurrency))
	var wg sync.WaitGroup

	for file, routed := range partitions {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled before this partition got a slot: its issues
			// stay unrouted-but-not-unhandled is wrong — they were handled by
			// an agent choice, just never applied. Surface them as failed
			// results so callers don't lose track of them.
			mu.Lock()
			for _, r := range routed {
				result.Results = append(result.Results, issue.FixResult{Success: false, RemainingIssues: []issue.Issue{r.iss}})
			}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(file string, routed []routedIssue) {
			defer wg.Done()
			defer sem.Release(1)

			fixResults := c.applyFilePartition(ctx, workspaceRoot, routed)

			mu.Lock()
			result.Results = append(result.Results, fixResults...)
			for _, fr := range fixResults {
				result.FixesApplied += len(fr.FixesApplied)
			}
			mu.Unlock()
		}(file, routed)
	}

	wg.Wait()
	return result
}

// applyFilePartition serializes every agent's Apply call against one file
// (or the project-level partition), grouping consecutive issues routed to
// the same agent and submitting them in batches of Config.BatchSize.
func (c *Coordinator) applyFilePartition(ctx context.Context, workspaceRoot string, routed []routedIssue) []issue.FixResult {
	var results []issue.FixResult

	for _, group := range groupConsecutiveByAgent(routed) {
		for start := 0; start < len(group.issues); start += c.cfg.BatchSize {
			end := min(start+c.cfg.BatchSize, len(group.issues))
			batch := group.issues[start:end]

			// batchID correlates one Apply call's log lines; it is not part
			// of the returned FixResult, which stays exactly the spec shape.
			batchID := uuid.NewString()
			c.log.Debug("dispatching batch", "batch_id", batchID, "agent", group.agent.Name(), "size", len(batch))

			result, err := c.applyWithRecovery(ctx, group.agent, workspaceRoot, batch)
			if err != nil {
				c.log.Error("agent apply failed", "batch_id", batchID, "agent", group.agent.Name(), "error", err)
				result = issue.FixResult{
					Success:         false,
					Confidence:      0,
					FixesApplied:    nil,
					RemainingIssues: batch,
					AgentName:       group.agent.Name(),
				}
			}
			results = append(results, result)
		}
	}

	return results
}

// applyWithRecovery calls agent.Apply, converting a panic into the same
// failed-FixResult shape as a returned error so one misbehaving agent can
// never take down the coordinator.
func (c *Coordinator) applyWithRecovery(ctx context.Context, a agent.Agent, workspaceRoot string, batch []issue.Issue) (result issue.FixResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = panicAsError(rec)
		}
	}()
	return a.Apply(ctx, workspaceRoot, batch)
}

// agentGroup is a run of consecutive routedIssues sharing the same agent.
type agentGroup struct {
	agent  agent.Agent
	issues []issue.Issue
}

// groupConsecutiveByAgent splits routed into maximal consecutive runs
// handled by the same agent, preserving relative order.
func groupConsecutiveByAgent(routed []routedIssue) []agentGroup {
	var groups []agentGroup
	for _, r := range routed {
		if n := len(groups); n > 0 && groups[n-1].agent == r.agent {
			groups[n-1].issues = append(groups[n-1].issues, r.iss)
			continue
		}
		groups = append(groups, agentGroup{agent: r.agent, issues: []issue.Issue{r.iss}})
	}
	return groups
}
