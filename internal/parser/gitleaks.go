package parser

import "github.com/crackerjack-go/crackerjack/internal/issue"

// gitleaksFinding mirrors one entry of gitleaks' JSON report.
type gitleaksFinding struct {
	File        string `json:"File"`
	StartLine   int    `json:"StartLine"`
	RuleID      string `json:"RuleID"`
	Description string `json:"Description"`
	Secret      string `json:"Secret"`
}

// GitleaksParser returns a parser for gitleaks, which (like complexipy)
// writes its JSON report to a fixed path rather than stdout.
func GitleaksParser(reader FileReader, reportPath string) Func {
	return func(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
		content, err := reader(reportPath)
		if err != nil {
			if exitCode == 0 {
				// No findings: gitleaks may not write a report file at all.
				return nil, ""
			}
			return nil, "failed to read gitleaks report: " + err.Error()
		}

		res := decodeJSON[[]gitleaksFinding](content)
		if !res.ok {
			return nil, res.diag
		}

		issues := make([]issue.Issue, 0, len(res.data))
		for _, f := range res.data {
			issues = append(issues, issue.Issue{
				ID:       issue.NewID("gitleaks", f.File, f.StartLine, f.RuleID),
				Kind:     issue.KindSecurityVuln,
				Severity: issue.SeverityCritical,
				FilePath: f.File,
				Line:     f.StartLine,
				Code:     f.RuleID,
				Message:  f.Description,
				Tool:     "gitleaks",
			})
		}
		return issues, ""
	}
}
