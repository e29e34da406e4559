// Package orchestrator schedules a stage's hooks against the workspace:
// consults the cache, groups queued hooks into dependency waves, splits
// each wave by security level, runs hooks via the Tool Runner, parses
// their output via the Parser Registry, and aggregates a StageResult.
package orchestrator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// Catalog is a validated, immutable-after-load set of hook definitions.
// Validation happens once, here, rather than on every run_stage call:
// cycle detection, unknown depends_on references, and unknown parser_id
// are all load-time errors.
type Catalog struct {
	hooks map[string]issue.HookDefinition
	order []string // registration order, for stable iteration in tests/logs
}

// parserResolver reports whether a parser id is registered; satisfied by
// *parser.Registry without this package importing it, to keep the catalog
// usable in tests without constructing a real registry.
type parserResolver interface {
	Has(parserID string) bool
}

// NewCatalog validates and wraps a fixed set of hook definitions.
func NewCatalog(hooks []issue.HookDefinition, parsers parserResolver) (*Catalog, error) {
	m := make(map[string]issue.HookDefinition, len(hooks))
	order := make([]string, 0, len(hooks))

	for _, h := range hooks {
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, exists := m[h.Name]; exists {
			return nil, fmt.Errorf("catalog: duplicate hook name %q", h.Name)
		}
		m[h.Name] = h
		order = append(order, h.Name)
	}

	for _, h := range m {
		for _, dep := range h.DependsOn {
			if _, ok := m[dep]; !ok {
				return nil, fmt.Errorf("catalog: hook %q depends_on unknown hook %q", h.Name, dep)
			}
		}
		if parsers != nil && !parsers.Has(h.ParserID) {
			return nil, fmt.Errorf("catalog: hook %q references unregistered parser_id %q", h.Name, h.ParserID)
		}
	}

	if cycle := findCycle(m); cycle != "" {
		return nil, fmt.Errorf("catalog: dependency cycle detected: %s", cycle)
	}

	return &Catalog{hooks: m, order: order}, nil
}

// LoadCatalogFile loads and validates a YAML hook catalog, matching the
// workspace-config YAML-with-validation pattern used elsewhere in this
// repo's configuration loading.
func LoadCatalogFile(path string, parsers parserResolver) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var file struct {
		Hooks []issue.HookDefinition `yaml:"hooks"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	return NewCatalog(file.Hooks, parsers)
}

// ForStage returns every hook definition whose Stage matches, in stable
// registration order.
func (c *Catalog) ForStage(stage issue.Stage) []issue.HookDefinition {
	var out []issue.HookDefinition
	for _, name := range c.order {
		if h := c.hooks[name]; h.Stage == stage {
			out = append(out, h)
		}
	}
	return out
}

// Get returns one hook definition by name.
func (c *Catalog) Get(name string) (issue.HookDefinition, bool) {
	h, ok := c.hooks[name]
	return h, ok
}

// findCycle performs a depth-first search for a cycle in the depends_on
// graph and returns a human-readable description of the first one found,
// or "" if the graph is a DAG.
func findCycle(hooks map[string]issue.HookDefinition) string {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(hooks))
	var path []string

	var visit func(name string) string
	visit = func(name string) string {
		state[name] = visiting
		path = append(path, name)

		for _, dep := range hooks[name].DependsOn {
			switch state[dep] {
			case visiting:
				return fmt.Sprintf("%v -> %s", append(append([]string{}, path...), dep), dep)
			case unvisited:
				if cyc := visit(dep); cyc != "" {
					return cyc
				}
			}
		}

		path = path[:len(path)-1]
		state[name] = visited
		return ""
	}

	for name := range hooks {
		if state[name] == unvisited {
			if cyc := visit(name); cyc != "" {
				return cyc
			}
		}
	}
	return ""
}
