package parser

import (
	"regexp"
	"strconv"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// refurbLineRegex matches refurb's text output: "path:line:col [FURB123]: message".
var refurbLineRegex = regexp.MustCompile(`(?m)^(.+):(\d+):(\d+)\s+\[(FURB\d+)\]:\s*(.+)$`)

// Refurb has no JSON mode; its plain-text output is stable enough to parse
// directly rather than falling through to the generic text fallback.
func Refurb(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
	matches := refurbLineRegex.FindAllStringSubmatch(string(raw), -1)
	if len(matches) == 0 {
		return nil, "no refurb findings matched expected format"
	}

	issues := make([]issue.Issue, 0, len(matches))
	for _, m := range matches {
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		issues = append(issues, issue.Issue{
			ID:       issue.NewID("refurb", m[1], line, m[4]),
			Kind:     issue.KindRefactorSuggestion,
			Severity: issue.SeverityLow,
			FilePath: m[1],
			Line:     line,
			Column:   col,
			Code:     m[4],
			Message:  m[5],
			Tool:     "refurb",
		})
	}
	return issues, ""
}
