package parser

import (
	"bufio"
	"encoding/json"
	"strings"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// mypyDiagnostic mirrors one line of `mypy --output json`'s newline-delimited
// JSON report (mypy emits one JSON object per diagnostic, not a single
// enclosing array, unlike most of the other tools in this registry).
type mypyDiagnostic struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	Column       int    `json:"column"`
	Severity     string `json:"severity"`
	Message      string `json:"message"`
	ErrorCode    string `json:"code"`
}

// MypyFamily parses mypy's (and pyright's, which shares a near-identical
// newline-delimited-JSON shape when invoked with a compatible flag) output.
func MypyFamily(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, "empty output"
	}

	var issues []issue.Issue
	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	decodedAny := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var d mypyDiagnostic
		if err := json.Unmarshal([]byte(line), &d); err != nil {
			continue
		}
		decodedAny = true
		issues = append(issues, issue.Issue{
			ID:       issue.NewID("mypy", d.File, d.Line, d.ErrorCode),
			Kind:     issue.KindTypeError,
			Severity: mypySeverity(d.Severity),
			FilePath: d.File,
			Line:     d.Line,
			Column:   d.Column,
			Code:     d.ErrorCode,
			Message:  d.Message,
			Tool:     "mypy",
		})
	}

	if !decodedAny {
		return nil, "no decodable mypy JSON lines found"
	}
	return issues, ""
}

func mypySeverity(s string) issue.Severity {
	switch s {
	case "error":
		return issue.SeverityHigh
	case "note":
		return issue.SeverityInfo
	default:
		return issue.SeverityMedium
	}
}
