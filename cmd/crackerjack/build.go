package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/crackerjack-go/crackerjack/internal/agent"
	"github.com/crackerjack-go/crackerjack/internal/autofix"
	"github.com/crackerjack-go/crackerjack/internal/config"
	"github.com/crackerjack-go/crackerjack/internal/coordinator"
	"github.com/crackerjack-go/crackerjack/internal/hookcache"
	"github.com/crackerjack-go/crackerjack/internal/orchestrator"
	"github.com/crackerjack-go/crackerjack/internal/parser"
	"github.com/crackerjack-go/crackerjack/internal/toolrunner"
)

// stack bundles the wired components one CLI invocation needs, built once
// from a workspace's resolved configuration.
type stack struct {
	cfg    *config.Config
	runner *orchestrator.Runner
	coord  *coordinator.Coordinator
	closer func() error
}

func (s *stack) Close() {
	if s.closer != nil {
		_ = s.closer()
	}
}

// buildStack loads configuration for workspaceRoot and constructs every
// downstream component: parser registry, tool runner, cache, hook catalog,
// orchestrator, and agent coordinator. catalogPath == "" uses the built-in
// default hook catalog.
func buildStack(workspaceRoot, catalogPath string, log *slog.Logger) (*stack, error) {
	cfg, err := config.Load(workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	readWorkspaceFile := func(path string) ([]byte, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(workspaceRoot, path)
		}
		return os.ReadFile(path)
	}
	parsers, err := parser.NewBuiltinRegistry(log, parser.BuiltinOptions{Reader: readWorkspaceFile})
	if err != nil {
		return nil, fmt.Errorf("building parser registry: %w", err)
	}

	var catalog *orchestrator.Catalog
	if catalogPath != "" {
		catalog, err = orchestrator.LoadCatalogFile(catalogPath, parsers)
	} else {
		catalog, err = orchestrator.NewCatalog(orchestrator.DefaultHooks(), parsers)
	}
	if err != nil {
		return nil, fmt.Errorf("building hook catalog: %w", err)
	}

	s := &stack{cfg: cfg}

	var store hookcache.Store
	cachePath := filepath.Join(workspaceRoot, ".crackerjack", "cache.db")
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
		if sqliteStore, err := hookcache.OpenSQLiteStore(cachePath); err != nil {
			log.Warn("cache persistence disabled", "error", err)
		} else {
			store = sqliteStore
			s.closer = sqliteStore.Close
		}
	}

	cache := hookcache.New(cfg.CacheMaxEntries, time.Duration(cfg.CacheTTLSeconds)*time.Second, store)

	runner, err := orchestrator.NewRunner(orchestrator.Config{
		Catalog:         catalog,
		Cache:           cache,
		Runner:          toolrunner.New(log),
		Parsers:         parsers,
		Log:             log,
		MaxParallelSafe: cfg.Parallelism,
	})
	if err != nil {
		return nil, fmt.Errorf("building orchestrator: %w", err)
	}
	s.runner = runner

	s.coord = coordinator.New(coordinator.Config{
		Agents:        agent.NewRegistry(agent.NewFormatter(), agent.NewImportCleaner()),
		MinConfidence: cfg.MinAgentConfidence,
		Log:           log,
	})

	return s, nil
}

// newAutofixLoop wires a stack's runner and coordinator into a convergence
// loop using the same configuration's iteration tunables.
func newAutofixLoop(s *stack, log *slog.Logger) (*autofix.Loop, error) {
	return autofix.New(autofix.Config{
		StageRunner:          s.runner,
		Dispatcher:           s.coord,
		MaxIterations:        s.cfg.MaxIterations,
		ConvergenceThreshold: s.cfg.ConvergenceThreshold,
		Log:                  log,
	})
}
