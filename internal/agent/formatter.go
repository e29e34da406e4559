package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// Formatter fixes whitespace-only format findings: trailing whitespace on a
// line. It never touches semantic content, so it is safe to run at high
// confidence and idempotent by construction (a second pass finds nothing to
// strip).
type Formatter struct{}

// NewFormatter builds a Formatter agent.
func NewFormatter() *Formatter { return &Formatter{} }

func (f *Formatter) Name() string     { return "formatter" }
func (f *Formatter) Specialist() bool { return true }

func (f *Formatter) CanHandle(iss issue.Issue) float64 {
	if iss.Kind != issue.KindFormatError {
		return 0
	}
	if iss.FilePath == "" {
		return 0
	}
	return 0.9
}

func (f *Formatter) Plan(_ context.Context, workspaceRoot string, issues []issue.Issue) (*issue.FixPlan, error) {
	if len(issues) == 0 {
		return nil, nil
	}
	path := issues[0].FilePath
	lines, _, err := readLines(workspaceRoot, path)
	if err != nil {
		return nil, err
	}

	var edits []issue.PlannedEdit
	for i, l := range lines {
		if strings.TrimRight(l, " \t") != l {
			edits = append(edits, issue.PlannedEdit{
				File:      path,
				LineRange: [2]int{i + 1, i + 1},
				Rationale: "strip trailing whitespace",
				Risk:      "low",
			})
		}
	}
	return &issue.FixPlan{Edits: edits}, nil
}

func (f *Formatter) Apply(_ context.Context, workspaceRoot string, issues []issue.Issue) (issue.FixResult, error) {
	result := issue.FixResult{AgentName: f.Name()}
	if len(issues) == 0 {
		result.Success = true
		result.Confidence = 1
		return result, nil
	}

	path := issues[0].FilePath
	lines, trailingNewline, err := readLines(workspaceRoot, path)
	if err != nil {
		return issue.FixResult{AgentName: f.Name()}, err
	}

	changed := 0
	for i, l := range lines {
		trimmed := strings.TrimRight(l, " \t")
		if trimmed != l {
			lines[i] = trimmed
			changed++
		}
	}

	if changed == 0 {
		result.Success = true
		result.Confidence = 0.9
		result.RemainingIssues = issues
		return result, nil
	}

	if err := writeLines(workspaceRoot, path, lines, trailingNewline); err != nil {
		return issue.FixResult{AgentName: f.Name()}, err
	}

	result.Success = true
	result.Confidence = 0.9
	result.FixesApplied = []string{fmt.Sprintf("stripped trailing whitespace on %d line(s) in %s", changed, path)}
	result.FilesModified = []string{path}
	return result, nil
}
