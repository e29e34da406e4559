package parser

import "github.com/crackerjack-go/crackerjack/internal/issue"

// banditReport mirrors `bandit -f json`'s top-level envelope.
type banditReport struct {
	Results []banditResult `json:"results"`
	Errors  []struct {
		Filename string `json:"filename"`
		Reason   string `json:"reason"`
	} `json:"errors"`
}

type banditResult struct {
	Filename        string `json:"filename"`
	LineNumber      int    `json:"line_number"`
	ColOffset       int    `json:"col_offset"`
	IssueSeverity   string `json:"issue_severity"`
	IssueConfidence string `json:"issue_confidence"`
	IssueText       string `json:"issue_text"`
	TestID          string `json:"test_id"`
}

// Bandit parses bandit's JSON security-scan report. A non-empty top-level
// "errors" array (bandit failed to scan one or more files) does not by
// itself make the run a parse failure — bandit still reports what it could.
func Bandit(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
	res := decodeJSON[banditReport](raw)
	if !res.ok {
		return nil, res.diag
	}

	issues := make([]issue.Issue, 0, len(res.data.Results))
	for _, r := range res.data.Results {
		issues = append(issues, issue.Issue{
			ID:       issue.NewID("bandit", r.Filename, r.LineNumber, r.TestID),
			Kind:     issue.KindSecurityVuln,
			Severity: banditSeverity(r.IssueSeverity),
			FilePath: r.Filename,
			Line:     r.LineNumber,
			Column:   r.ColOffset,
			Code:     r.TestID,
			Message:  r.IssueText,
			Tool:     "bandit",
			Raw:      map[string]any{"confidence": r.IssueConfidence},
		})
	}
	return issues, ""
}

func banditSeverity(s string) issue.Severity {
	switch s {
	case "HIGH":
		return issue.SeverityHigh
	case "MEDIUM":
		return issue.SeverityMedium
	case "LOW":
		return issue.SeverityLow
	default:
		return issue.SeverityMedium
	}
}
