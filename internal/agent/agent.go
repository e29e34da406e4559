// Package agent defines the fix-agent contract and a handful of small
// deterministic reference agents. An agent is polymorphic purely over the
// capability set {can_handle, plan, apply} — a list of registered values,
// never a class hierarchy.
package agent

import (
	"context"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// Agent fixes issues it recognizes. CanHandle must be pure and fast: no
// file I/O, no subprocess calls, no mutation. Plan may read files but must
// not mutate them. Apply may mutate files and must be idempotent per issue
// id: applying the same issue twice leaves the workspace in the same
// terminal state as applying it once.
//
// Plan/Apply take the batch of issues routed to this agent for one file (or,
// for project-level issues, the whole project-level batch) rather than a
// single issue: a fixer naturally wants to see every issue on a file at
// once (e.g. one formatter pass, not one per line), and FixResult's
// plural fields (fixes_applied, files_modified) are shaped for a batch
// response.
type Agent interface {
	// Name identifies the agent in logs and in FixResult.AgentName.
	Name() string
	// Specialist reports whether this agent targets a narrow issue kind
	// (true) or handles a broad sweep of kinds (false). Used only to break
	// a confidence tie during routing: a specialist outranks a generalist.
	Specialist() bool
	// CanHandle scores this agent's confidence in fixing iss, in [0, 1].
	// A 0 means "cannot handle". Must never panic on valid input.
	CanHandle(iss issue.Issue) float64
	// Plan optionally previews the edits Apply would make, without
	// mutating anything. Agents that have no meaningful preview step may
	// return (nil, nil).
	Plan(ctx context.Context, workspaceRoot string, issues []issue.Issue) (*issue.FixPlan, error)
	// Apply attempts to fix issues, mutating files under workspaceRoot as
	// needed, and reports what it did.
	Apply(ctx context.Context, workspaceRoot string, issues []issue.Issue) (issue.FixResult, error)
}

// Registration pairs an agent with its registration index, the final
// routing tie-break after confidence and specialist/generalist.
type Registration struct {
	Agent Agent
	Index int
}

// Registry is an immutable-after-construction, ordered list of agents.
type Registry struct {
	agents []Registration
}

// NewRegistry builds a Registry, assigning each agent a stable index in
// registration order.
func NewRegistry(agents ...Agent) *Registry {
	regs := make([]Registration, len(agents))
	for i, a := range agents {
		regs[i] = Registration{Agent: a, Index: i}
	}
	return &Registry{agents: regs}
}

// All returns every registered agent, in registration order.
func (r *Registry) All() []Registration {
	return r.agents
}
