package orchestrator

import "github.com/crackerjack-go/crackerjack/internal/issue"

// DefaultHooks returns the built-in hook catalog covering every parser this
// repo ships (internal/parser.NewBuiltinRegistry), split into a fast stage
// (lint/type-check, run on every save) and a comprehensive stage (the full
// quality gate). A catalog file passed with --catalog and loaded via
// LoadCatalogFile replaces this entirely rather than merging with it.
func DefaultHooks() []issue.HookDefinition {
	return []issue.HookDefinition{
		{
			Name:           "ruff",
			Command:        []string{"ruff", "check", "--output-format=json", "{workspace}"},
			Stage:          issue.StageFast,
			TimeoutSeconds: 30,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "ruff",
			CacheKeyInputs: []string{"pyproject.toml", "ruff.toml"},
		},
		{
			Name:           "mypy",
			Command:        []string{"mypy", "--output", "json", "{workspace}"},
			Stage:          issue.StageFast,
			TimeoutSeconds: 60,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "mypy",
			CacheKeyInputs: []string{"pyproject.toml", "mypy.ini"},
			DependsOn:      []string{"ruff"},
		},
		{
			Name:           "bandit",
			Command:        []string{"bandit", "-r", "-f", "json", "{workspace}"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 90,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "bandit",
			CacheKeyInputs: []string{"pyproject.toml"},
		},
		{
			Name:           "complexipy",
			Command:        []string{"complexipy", "--output-json", "{workspace}"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 90,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "complexipy",
		},
		{
			Name:           "semgrep",
			Command:        []string{"semgrep", "--config=auto", "--json", "{workspace}"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 120,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "semgrep",
		},
		{
			Name:           "pip-audit",
			Command:        []string{"pip-audit", "--format=json"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 60,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "pip-audit",
			CacheKeyInputs: []string{"requirements.txt", "pyproject.toml"},
		},
		{
			Name:           "gitleaks",
			Command:        []string{"gitleaks", "detect", "--report-format=json", "--report-path=.crackerjack/gitleaks-report.json", "--source", "{workspace}"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 60,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "gitleaks",
		},
		{
			Name:           "refurb",
			Command:        []string{"refurb", "{workspace}"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 60,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "refurb",
		},
		{
			Name:           "skylos",
			Command:        []string{"skylos", "{workspace}"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 60,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "skylos",
		},
		{
			Name:           "creosote",
			Command:        []string{"creosote", "--json"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 60,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "creosote",
			CacheKeyInputs: []string{"pyproject.toml"},
			DependsOn:      []string{"pip-audit"},
		},
		{
			Name:           "pytest",
			Command:        []string{"pytest", "--json-report", "--json-report-file=.crackerjack/pytest-report.json", "{workspace}"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 300,
			SecurityLevel:  issue.SecurityIsolated,
			ParserID:       "pytest",
		},
	}
}
