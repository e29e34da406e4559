package parser

import "github.com/crackerjack-go/crackerjack/internal/issue"

// creosoteFinding mirrors one entry of creosote's unused-dependency report.
type creosoteFinding struct {
	PackageName string `json:"package_name"`
	ModuleName  string `json:"module_name"`
}

// Creosote parses creosote's JSON report of dependencies declared but never
// imported. Findings are project-level: they describe a pyproject.toml
// entry, not a source line.
func Creosote(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
	res := decodeJSON[[]creosoteFinding](raw)
	if !res.ok {
		return nil, res.diag
	}

	issues := make([]issue.Issue, 0, len(res.data))
	for _, f := range res.data {
		issues = append(issues, issue.Issue{
			ID:       issue.NewID("creosote", "", 0, f.PackageName),
			Kind:     issue.KindDependencyIssue,
			Severity: issue.SeverityLow,
			Code:     f.PackageName,
			Message:  "declared dependency " + f.PackageName + " (module " + f.ModuleName + ") appears unused",
			Tool:     "creosote",
		})
	}
	return issues, ""
}
