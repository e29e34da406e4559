package parser

import "github.com/crackerjack-go/crackerjack/internal/issue"

// semgrepReport mirrors `semgrep --json`'s top-level envelope.
type semgrepReport struct {
	Results []semgrepResult `json:"results"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type semgrepResult struct {
	CheckID string `json:"check_id"`
	Path    string `json:"path"`
	Start   struct {
		Line int `json:"line"`
		Col  int `json:"col"`
	} `json:"start"`
	Extra struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
	} `json:"extra"`
}

// Semgrep parses semgrep's JSON scan report.
func Semgrep(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
	res := decodeJSON[semgrepReport](raw)
	if !res.ok {
		return nil, res.diag
	}

	issues := make([]issue.Issue, 0, len(res.data.Results))
	for _, r := range res.data.Results {
		issues = append(issues, issue.Issue{
			ID:       issue.NewID("semgrep", r.Path, r.Start.Line, r.CheckID),
			Kind:     issue.KindSecurityVuln,
			Severity: semgrepSeverity(r.Extra.Severity),
			FilePath: r.Path,
			Line:     r.Start.Line,
			Column:   r.Start.Col,
			Code:     r.CheckID,
			Message:  r.Extra.Message,
			Tool:     "semgrep",
		})
	}
	return issues, ""
}

func semgrepSeverity(s string) issue.Severity {
	switch s {
	case "ERROR":
		return issue.SeverityHigh
	case "WARNING":
		return issue.SeverityMedium
	default:
		return issue.SeverityLow
	}
}
