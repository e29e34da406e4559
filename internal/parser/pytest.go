package parser

import "github.com/crackerjack-go/crackerjack/internal/issue"

// pytestReport mirrors the pytest-json-report plugin's summary shape.
type pytestReport struct {
	Tests []pytestTest `json:"tests"`
}

type pytestTest struct {
	NodeID   string `json:"nodeid"`
	Outcome  string `json:"outcome"` // passed, failed, skipped, error
	Lineno   int    `json:"lineno"`
	Keywords []string `json:"keywords"`
	CallLongRepr string `json:"longrepr"`
}

// Pytest parses pytest-json-report output into Issues, one per failing or
// erroring test. Passed and skipped tests produce no issue.
func Pytest(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
	res := decodeJSON[pytestReport](raw)
	if !res.ok {
		return nil, res.diag
	}

	var issues []issue.Issue
	for _, t := range res.data.Tests {
		if t.Outcome != "failed" && t.Outcome != "error" {
			continue
		}
		file := pytestFileFromNodeID(t.NodeID)
		issues = append(issues, issue.Issue{
			ID:       issue.NewID("pytest", file, t.Lineno, t.NodeID),
			Kind:     issue.KindTestFailure,
			Severity: issue.SeverityHigh,
			FilePath: file,
			Line:     t.Lineno,
			Message:  t.CallLongRepr,
			Tool:     "pytest",
			Raw:      map[string]any{"nodeid": t.NodeID, "outcome": t.Outcome},
		})
	}
	return issues, ""
}

// pytestFileFromNodeID extracts the file portion of a pytest node id, e.g.
// "tests/test_foo.py::test_bar" -> "tests/test_foo.py".
func pytestFileFromNodeID(nodeID string) string {
	for i := 0; i < len(nodeID); i++ {
		if nodeID[i] == ':' && i+1 < len(nodeID) && nodeID[i+1] == ':' {
			return nodeID[:i]
		}
	}
	return nodeID
}
