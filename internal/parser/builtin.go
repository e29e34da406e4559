package parser

import "log/slog"

// BuiltinOptions configures the few parsers that need more than raw
// stdout/stderr: file-based reports and tunable thresholds.
type BuiltinOptions struct {
	Reader              FileReader
	ComplexipyThreshold int
	GitleaksReportPath  string
}

// NewBuiltinRegistry registers one parser per tool named in the required
// parsers list, plus the generic text fallback under id "text".
func NewBuiltinRegistry(log *slog.Logger, opts BuiltinOptions) (*Registry, error) {
	if opts.ComplexipyThreshold <= 0 {
		opts.ComplexipyThreshold = 15
	}
	if opts.GitleaksReportPath == "" {
		opts.GitleaksReportPath = ".crackerjack/gitleaks-report.json"
	}

	return NewRegistry(log,
		Entry{ID: "ruff", Format: FormatJSON, Parse: Ruff},
		Entry{ID: "mypy", Format: FormatJSON, Parse: MypyFamily},
		Entry{ID: "bandit", Format: FormatJSON, Parse: Bandit},
		Entry{ID: "complexipy", Format: FormatJSON, Parse: ComplexipyParser(opts.Reader, opts.ComplexipyThreshold)},
		Entry{ID: "semgrep", Format: FormatJSON, Parse: Semgrep},
		Entry{ID: "pip-audit", Format: FormatJSON, Parse: PipAudit},
		Entry{ID: "gitleaks", Format: FormatJSON, Parse: GitleaksParser(opts.Reader, opts.GitleaksReportPath)},
		Entry{ID: "refurb", Format: FormatText, Parse: Refurb},
		Entry{ID: "skylos", Format: FormatJSON, Parse: Skylos},
		Entry{ID: "creosote", Format: FormatJSON, Parse: Creosote},
		Entry{ID: "pytest", Format: FormatJSON, Parse: Pytest},
		Entry{ID: "text", Format: FormatText, Parse: TextFallback("text")},
	)
}
