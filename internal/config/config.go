package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// fileName is the per-project config file crackerjack looks for at the
// workspace root, analogous to .vc/discovery.yaml.
const fileName = ".crackerjack.yaml"

// Config is the orchestrator/coordinator/autofix run configuration.
type Config struct {
	MaxIterations        int                    `yaml:"max_iterations"`
	ConvergenceThreshold int                    `yaml:"convergence_threshold"`
	Parallelism          int                    `yaml:"parallelism"`
	CacheTTLSeconds      int                    `yaml:"cache_ttl_seconds"`
	CacheMaxEntries      int                    `yaml:"cache_max_entries"`
	HookTimeouts         map[string]int         `yaml:"hook_timeouts"`
	AIFixEnabled         bool                   `yaml:"ai_fix_enabled"`
	MinAgentConfidence   map[issue.Kind]float64 `yaml:"min_agent_confidence"`
	WorkspaceRoot        string                 `yaml:"workspace_root"`
}

// DefaultConfig returns the configuration every field default names.
func DefaultConfig() *Config {
	return &Config{
		MaxIterations:        20,
		ConvergenceThreshold: 5,
		Parallelism:          runtime.NumCPU(),
		CacheTTLSeconds:      3600,
		CacheMaxEntries:      1000,
		HookTimeouts:         map[string]int{},
		AIFixEnabled:         false,
		MinAgentConfidence:   map[issue.Kind]float64{},
		WorkspaceRoot:        ".",
	}
}

// LoadConfigFile loads .crackerjack.yaml from workspaceRoot, falling back to
// DefaultConfig if the file is absent. Fields present in the file override
// their default; fields omitted keep the default, since Unmarshal only
// writes what it finds.
func LoadConfigFile(workspaceRoot string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.WorkspaceRoot = workspaceRoot

	data, err := os.ReadFile(filepath.Join(workspaceRoot, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// FieldError names one offending configuration field.
type FieldError struct {
	Field string
	Err   error
}

// ConfigError aggregates every offending field from a single Validate or
// ApplyEnvOverrides pass, rather than surfacing only the first problem.
type ConfigError struct {
	Fields []FieldError
}

func (e *ConfigError) add(field string, err error) {
	e.Fields = append(e.Fields, FieldError{Field: field, Err: err})
}

// Empty reports whether no field errors were recorded.
func (e *ConfigError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ConfigError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %v", f.Field, f.Err)
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Validate checks every field's range in one pass and returns a single
// ConfigError naming all of them, or nil if the configuration is sound.
func (c *Config) Validate() error {
	cerr := &ConfigError{}

	if c.MaxIterations < 1 {
		cerr.add("max_iterations", fmt.Errorf("must be >= 1 (got %d)", c.MaxIterations))
	}
	if c.ConvergenceThreshold < 1 {
		cerr.add("convergence_threshold", fmt.Errorf("must be >= 1 (got %d)", c.ConvergenceThreshold))
	}
	if c.Parallelism < 1 {
		cerr.add("parallelism", fmt.Errorf("must be >= 1 (got %d)", c.Parallelism))
	}
	if c.CacheTTLSeconds < 0 {
		cerr.add("cache_ttl_seconds", fmt.Errorf("cannot be negative (got %d)", c.CacheTTLSeconds))
	}
	if c.CacheMaxEntries < 0 {
		cerr.add("cache_max_entries", fmt.Errorf("cannot be negative (got %d)", c.CacheMaxEntries))
	}
	for hook, seconds := range c.HookTimeouts {
		if seconds <= 0 {
			cerr.add("hook_timeouts["+hook+"]", fmt.Errorf("must be > 0 (got %d)", seconds))
		}
	}
	for kind, conf := range c.MinAgentConfidence {
		if conf < 0 || conf > 1 {
			cerr.add("min_agent_confidence["+string(kind)+"]", fmt.Errorf("must be in [0, 1] (got %v)", conf))
		}
	}
	if strings.TrimSpace(c.WorkspaceRoot) == "" {
		cerr.add("workspace_root", fmt.Errorf("must not be empty"))
	}

	if cerr.Empty() {
		return nil
	}
	return cerr
}

// ApplyEnvOverrides overlays CRACKERJACK_* environment variables onto cfg,
// following PreFlightConfigFromEnv's parse-then-validate shape but
// collecting every bad variable into one ConfigError instead of returning
// on the first.
//
// Environment variables:
//   - CRACKERJACK_MAX_ITERATIONS
//   - CRACKERJACK_CONVERGENCE_THRESHOLD
//   - CRACKERJACK_PARALLELISM
//   - CRACKERJACK_CACHE_TTL_SECONDS
//   - CRACKERJACK_CACHE_MAX_ENTRIES
//   - CRACKERJACK_AI_FIX_ENABLED
//   - CRACKERJACK_WORKSPACE_ROOT
//
// hook_timeouts and min_agent_confidence are map-valued and only
// configurable via the file, not environment variables.
func ApplyEnvOverrides(cfg *Config) error {
	cerr := &ConfigError{}

	if err := parseEnvInt("CRACKERJACK_MAX_ITERATIONS", &cfg.MaxIterations); err != nil {
		cerr.add("max_iterations", err)
	}
	if err := parseEnvInt("CRACKERJACK_CONVERGENCE_THRESHOLD", &cfg.ConvergenceThreshold); err != nil {
		cerr.add("convergence_threshold", err)
	}
	if err := parseEnvInt("CRACKERJACK_PARALLELISM", &cfg.Parallelism); err != nil {
		cerr.add("parallelism", err)
	}
	if err := parseEnvInt("CRACKERJACK_CACHE_TTL_SECONDS", &cfg.CacheTTLSeconds); err != nil {
		cerr.add("cache_ttl_seconds", err)
	}
	if err := parseEnvInt("CRACKERJACK_CACHE_MAX_ENTRIES", &cfg.CacheMaxEntries); err != nil {
		cerr.add("cache_max_entries", err)
	}
	if err := parseEnvBool("CRACKERJACK_AI_FIX_ENABLED", &cfg.AIFixEnabled); err != nil {
		cerr.add("ai_fix_enabled", err)
	}
	if err := parseEnvString("CRACKERJACK_WORKSPACE_ROOT", &cfg.WorkspaceRoot); err != nil {
		cerr.add("workspace_root", err)
	}

	if cerr.Empty() {
		return nil
	}
	return cerr
}

// Load is the one-call entry point cmd/crackerjack uses: file defaults,
// environment overrides, then a single validation pass.
func Load(workspaceRoot string) (*Config, error) {
	cfg, err := LoadConfigFile(workspaceRoot)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
