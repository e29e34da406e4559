package parser

import "github.com/crackerjack-go/crackerjack/internal/issue"

// skylosFinding mirrors one dead-code finding from `skylos --json`.
type skylosFinding struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Name       string `json:"name"`
	Kind       string `json:"kind"` // "function", "class", "import", "variable"
	Confidence float64 `json:"confidence"`
}

// Skylos parses skylos' JSON dead-code-detection report.
func Skylos(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
	res := decodeJSON[[]skylosFinding](raw)
	if !res.ok {
		return nil, res.diag
	}

	issues := make([]issue.Issue, 0, len(res.data))
	for _, f := range res.data {
		issues = append(issues, issue.Issue{
			ID:       issue.NewID("skylos", f.File, f.Line, f.Name),
			Kind:     issue.KindDeadCode,
			Severity: skylosSeverity(f.Confidence),
			FilePath: f.File,
			Line:     f.Line,
			Message:  "unused " + f.Kind + " " + f.Name,
			Tool:     "skylos",
			Raw:      map[string]any{"confidence": f.Confidence},
		})
	}
	return issues, ""
}

func skylosSeverity(confidence float64) issue.Severity {
	if confidence >= 0.9 {
		return issue.SeverityMedium
	}
	return issue.SeverityLow
}
