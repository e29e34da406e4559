// Package coordinator routes issues to capability-matched agents under
// strict concurrency discipline: per-file mutual exclusion, bounded global
// concurrency, and batched submission.
package coordinator

import (
	"github.com/crackerjack-go/crackerjack/internal/agent"
	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// defaultMinConfidence is the routine-kind confidence floor (spec.md §4.4).
const defaultMinConfidence = 0.5

// defaultRiskyMinConfidence is the floor for kinds judged higher-stakes: a
// wrong automatic fix to a security finding or a live dependency bump is
// more costly than a wrong formatting fix, so routing demands more
// confidence before acting unsupervised.
const defaultRiskyMinConfidence = 0.7

// defaultRiskyKinds are risky unless a caller's MinConfidence override says
// otherwise.
var defaultRiskyKinds = map[issue.Kind]bool{
	issue.KindSecurityVuln:    true,
	issue.KindDependencyIssue: true,
}

// thresholdFor resolves the minimum routing confidence for kind, honoring
// an explicit per-kind override before falling back to the routine/risky
// default split.
func thresholdFor(kind issue.Kind, overrides map[issue.Kind]float64) float64 {
	if overrides != nil {
		if t, ok := overrides[kind]; ok {
			return t
		}
	}
	if defaultRiskyKinds[kind] {
		return defaultRiskyMinConfidence
	}
	return defaultMinConfidence
}

// route selects the single best agent for iss, or reports unhandled=true
// if no registered agent clears its kind's confidence threshold.
//
// Tie-break order (spec.md §4.4 step 4): highest confidence first; among
// ties, a specialist agent beats a generalist; among remaining ties,
// stable registration order (earliest registered wins).
func route(iss issue.Issue, registrations []agent.Registration, overrides map[issue.Kind]float64) (best agent.Registration, confidence float64, unhandled bool) {
	threshold := thresholdFor(iss.Kind, overrides)

	bestIdx := -1
	bestConfidence := -1.0
	bestSpecialist := false

	for _, reg := range registrations {
		c := reg.Agent.CanHandle(iss)
		if c < threshold {
			continue
		}

		switch {
		case c > bestConfidence:
			bestIdx, bestConfidence, bestSpecialist = reg.Index, c, reg.Agent.Specialist()
		case c == bestConfidence:
			if reg.Agent.Specialist() && !bestSpecialist {
				bestIdx, bestConfidence, bestSpecialist = reg.Index, c, true
			}
			// Otherwise the earlier-registered agent already in bestIdx wins;
			// registrations are walked in registration order, so the
			// incumbent is always the earliest of any further tie.
		}
	}

	if bestIdx == -1 {
		return agent.Registration{}, 0, true
	}
	return registrations[bestIdx], bestConfidence, false
}
