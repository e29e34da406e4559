package parser

import (
	"regexp"
	"strings"
)

// FileReader reads the content of a report file the tool wrote to disk
// rather than stdout. cmd/crackerjack supplies a workspace-rooted
// implementation; tests supply an in-memory fake.
type FileReader func(path string) ([]byte, error)

// reportPathRegex extracts a plausible report file path from a tool's
// stdout banner line, e.g. "Report written to .complexipy/report.json" or
// "Results written to: /tmp/gitleaks-report.json".
var reportPathRegex = regexp.MustCompile(`(?i)(?:written|saved)\s+(?:to:?\s*)?([^\s]+\.(?:json|csv))`)

// findReportPath locates the report file path a tool announced on stdout.
func findReportPath(stdout string) string {
	m := reportPathRegex.FindStringSubmatch(stdout)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
