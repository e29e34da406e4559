package orchestrator

import "github.com/crackerjack-go/crackerjack/internal/issue"

// wave is one batch of hooks that may legally run at the same time: none of
// them depends, directly or transitively, on another hook in the batch.
type wave struct {
	safe     []issue.HookDefinition
	isolated []issue.HookDefinition
}

// planWaves partitions hooks into dependency-respecting waves. resolved
// reports whether a hook name outside this batch has already finished
// (whether via cache hit, a prior wave, or a load-time skip) — its zero
// value (false) means "still pending". The returned order interleaves
// wave-internal skips (computed from failed) with runnable hooks; callers
// drain wave-by-wave, feeding newly resolved names back in via resolved
// and failed before asking for the next wave.
func planWaves(hooks []issue.HookDefinition) *wavePlanner {
	m := make(map[string]issue.HookDefinition, len(hooks))
	pending := make(map[string]bool, len(hooks))
	for _, h := range hooks {
		m[h.Name] = h
		pending[h.Name] = true
	}
	return &wavePlanner{hooks: m, pending: pending}
}

// wavePlanner walks the dependency graph one wave at a time, as hooks
// outside the batch (cache hits, already-skipped) resolve.
type wavePlanner struct {
	hooks   map[string]issue.HookDefinition
	pending map[string]bool
}

func newWaveState() (map[string]bool, map[string]bool) {
	return make(map[string]bool), make(map[string]bool)
}

// next returns the next set of hooks whose dependencies are all resolved,
// split into those to skip immediately (a dependency failed) and those
// ready to actually run, grouped by security level. Returns done=true once
// no pending hooks remain.
func (p *wavePlanner) next(resolved, failed map[string]bool) (toSkip []issue.HookDefinition, run wave, done bool) {
	if len(p.pending) == 0 {
		return nil, wave{}, true
	}

	var ready []issue.HookDefinition
	for name := range p.pending {
		h := p.hooks[name]
		allResolved := true
		for _, dep := range h.DependsOn {
			if !resolved[dep] {
				allResolved = false
				break
			}
		}
		if allResolved {
			ready = append(ready, h)
		}
	}

	if len(ready) == 0 {
		// Every remaining hook depends on something still pending that isn't
		// in this batch and never will resolve; treat as blocked forever.
		// The catalog's cycle check rules out a true cycle within the batch,
		// so this only happens if a caller forgot to resolve an external dep.
		return nil, wave{}, true
	}

	for _, h := range ready {
		delete(p.pending, h.Name)

		blocked := false
		for _, dep := range h.DependsOn {
			if failed[dep] {
				blocked = true
				break
			}
		}

		if blocked {
			toSkip = append(toSkip, h)
			continue
		}

		if h.SecurityLevel == issue.SecurityIsolated {
			run.isolated = append(run.isolated, h)
		} else {
			run.safe = append(run.safe, h)
		}
	}

	return toSkip, run, false
}
