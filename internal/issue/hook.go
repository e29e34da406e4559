package issue

import (
	"fmt"
	"time"
)

// Stage groups hooks that run together.
type Stage string

const (
	StageFast          Stage = "fast"
	StageComprehensive Stage = "comprehensive"
)

// IsValid reports whether s is a defined stage.
func (s Stage) IsValid() bool {
	return s == StageFast || s == StageComprehensive
}

// SecurityLevel controls whether a hook may run alongside others.
type SecurityLevel string

const (
	// SecuritySafe hooks may run concurrently with other Safe hooks.
	SecuritySafe SecurityLevel = "safe"
	// SecurityIsolated hooks run strictly alone, with no overlap with any
	// other hook in the wave (Safe or Isolated).
	SecurityIsolated SecurityLevel = "isolated"
)

// IsValid reports whether l is a defined security level.
func (l SecurityLevel) IsValid() bool {
	return l == SecuritySafe || l == SecurityIsolated
}

// HookDefinition statically describes one external quality tool.
type HookDefinition struct {
	Name string `json:"name" yaml:"name"`
	// Command is an argv template: literal tokens, never a shell string.
	// No element is expanded by a shell; callers wanting a workspace-root
	// substitution use the literal token "{workspace}".
	Command        []string      `json:"command" yaml:"command"`
	Stage          Stage         `json:"stage" yaml:"stage"`
	TimeoutSeconds int           `json:"timeout_seconds" yaml:"timeout_seconds"`
	SecurityLevel  SecurityLevel `json:"security_level" yaml:"security_level"`
	ParserID       string        `json:"parser_id" yaml:"parser_id"`
	// CacheKeyInputs names files/dirs/config paths whose content hash feeds
	// the cache key; a change to any of them invalidates the cached result.
	CacheKeyInputs []string `json:"cache_key_inputs,omitempty" yaml:"cache_key_inputs,omitempty"`
	DependsOn      []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Validate checks the invariants spec'd for a hook definition in isolation.
// DAG acyclicity and parser_id resolution are catalog-wide checks performed
// by the orchestrator at load time, not here.
func (h *HookDefinition) Validate() error {
	if h.Name == "" {
		return fmt.Errorf("hook name is required")
	}
	if len(h.Command) == 0 {
		return fmt.Errorf("hook %q: command must have at least one argv element", h.Name)
	}
	if !h.Stage.IsValid() {
		return fmt.Errorf("hook %q: invalid stage %q", h.Name, h.Stage)
	}
	if h.TimeoutSeconds <= 0 {
		return fmt.Errorf("hook %q: timeout_seconds must be > 0 (got %d)", h.Name, h.TimeoutSeconds)
	}
	if !h.SecurityLevel.IsValid() {
		return fmt.Errorf("hook %q: invalid security_level %q", h.Name, h.SecurityLevel)
	}
	if h.ParserID == "" {
		return fmt.Errorf("hook %q: parser_id is required", h.Name)
	}
	return nil
}

// Status is the outcome of one hook execution.
type Status string

const (
	StatusPassed     Status = "passed"
	StatusFailed     Status = "failed"
	StatusTimeout    Status = "timeout"
	StatusHungKilled Status = "hung_killed"
	StatusSkipped    Status = "skipped"
	StatusCacheHit   Status = "cache_hit"
)

// IsValid reports whether s is a defined hook status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusTimeout, StatusHungKilled, StatusSkipped, StatusCacheHit:
		return true
	}
	return false
}

// IsTerminalFailure reports whether s represents a failed or skipped run
// that must not be cached (spec.md §4.3: timeouts and hangs are never
// cached; skips have nothing worth caching).
func (s Status) IsTerminalFailure() bool {
	return s == StatusTimeout || s == StatusHungKilled || s == StatusSkipped
}

// HookResult is the outcome of one hook execution, cached or fresh.
type HookResult struct {
	HookName string `json:"hook_name"`
	Status   Status `json:"status"`
	// SkipReason explains a Skipped status (e.g. "dependency_failed").
	SkipReason string `json:"skip_reason,omitempty"`
	// FailureReason explains a Failed status (e.g. "parse_error").
	FailureReason string        `json:"failure_reason,omitempty"`
	Duration      time.Duration `json:"duration"`
	ExitCode      int           `json:"exit_code"`
	Stdout        string        `json:"stdout,omitempty"`
	Stderr        string        `json:"stderr,omitempty"`
	Issues        []Issue       `json:"issues"`
	CacheKey      string        `json:"cache_key,omitempty"`
}

// Passed reports whether the result counts toward a Passed stage: an actual
// Passed run, or a CacheHit that snapshot a Passed run.
func (r *HookResult) Passed(cachedWasPassed bool) bool {
	if r.Status == StatusPassed {
		return true
	}
	if r.Status == StatusCacheHit {
		return cachedWasPassed
	}
	return false
}

// FixPlan is an optional, structured change set a two-stage agent may
// produce before applying it. The coordinator treats planning agents and
// direct-fix agents uniformly via FixResult; FixPlan exists purely so an
// agent can separate "what I intend to do" from "doing it".
type FixPlan struct {
	Edits []PlannedEdit `json:"edits"`
}

// PlannedEdit describes one atomic edit within a FixPlan.
type PlannedEdit struct {
	File      string `json:"file"`
	LineRange [2]int `json:"line_range"`
	Rationale string `json:"rationale"`
	Risk      string `json:"risk"`
}

// FixResult is the outcome of one agent invocation against one issue or
// batch of issues.
type FixResult struct {
	Success         bool     `json:"success"`
	Confidence      float64  `json:"confidence"`
	FixesApplied    []string `json:"fixes_applied"`
	FilesModified   []string `json:"files_modified"`
	RemainingIssues []Issue  `json:"remaining_issues"`
	AgentName       string   `json:"agent_name,omitempty"`
}

// CacheEntry is a content-addressed, TTL-bounded snapshot of a HookResult.
type CacheEntry struct {
	Key string `json:"key"`
	Hook string `json:"hook"`
	// KeyInputsHash is an optional debug label summarizing the
	// cache_key_inputs hashes folded into Key; Key itself is authoritative.
	KeyInputsHash string        `json:"key_inputs_hash,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	TTL           time.Duration `json:"ttl"`
	Result        HookResult    `json:"result"`
}

// Expired reports whether the entry has outlived its TTL as of now.
func (e *CacheEntry) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.After(e.CreatedAt.Add(e.TTL))
}

// IterationState tracks one run of the autofix convergence loop.
type IterationState struct {
	IterationNumber          int      `json:"iteration_number"`
	IssueCountStart          int      `json:"issue_count_start"`
	IssueCountEnd            int      `json:"issue_count_end"`
	FixesAppliedThisIteration int     `json:"fixes_applied_this_iteration"`
	NoProgressCount          int      `json:"no_progress_count"`
	ModifiedFiles            []string `json:"modified_files"`
}
