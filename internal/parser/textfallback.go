package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// textLineRegex matches the common `path:line:col: CODE message` or
// `path:line: message` lint-output shape shared by tools with no JSON mode
// at all, or whose JSON mode failed and fell back to plain text on stderr.
var textLineRegex = regexp.MustCompile(`(?m)^([^\s:][^:]*):(\d+)(?::(\d+))?:\s*(?:([A-Z][A-Z0-9]{1,9})\s+)?(.+)$`)

// TextFallback extracts `path:line:col: code message` findings from
// arbitrary text (stdout, or stderr when stdout is blank). It is registered
// under parser id "text" and runs only for hooks whose parser_id names it;
// the registry does not fall back to it when another parser fails.
func TextFallback(tool string) Func {
	return func(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
		text := string(raw)
		if strings.TrimSpace(text) == "" {
			text = string(stderr)
		}
		if strings.TrimSpace(text) == "" {
			return nil, "empty output"
		}

		matches := textLineRegex.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			return nil, "no recognizable path:line:col pattern found"
		}

		issues := make([]issue.Issue, 0, len(matches))
		for _, m := range matches {
			line, _ := strconv.Atoi(m[2])
			col := 0
			if m[3] != "" {
				col, _ = strconv.Atoi(m[3])
			}
			code := m[4]
			message := strings.TrimSpace(m[5])

			issues = append(issues, issue.Issue{
				ID:       issue.NewID(tool, m[1], line, code),
				Kind:     issue.KindOther,
				Severity: issue.SeverityMedium,
				FilePath: m[1],
				Line:     line,
				Column:   col,
				Code:     code,
				Message:  message,
				Tool:     tool,
			})
		}
		return issues, ""
	}
}
