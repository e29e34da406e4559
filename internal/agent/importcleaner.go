package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// pythonImportLine matches a bare "import x" or "from x import y" statement,
// the shape an unused-import finding (ruff F401, skylos) points at.
var pythonImportLine = regexp.MustCompile(`^\s*(import\s+\S|from\s+\S+\s+import\b)`)

// ImportCleaner removes lines a dead-code finding flags as an unused
// import, when the flagged line is unambiguously an import statement. It
// declines anything else, including unused-but-not-import dead code, which
// needs real reachability analysis a text-level agent cannot safely do.
type ImportCleaner struct{}

// NewImportCleaner builds an ImportCleaner agent.
func NewImportCleaner() *ImportCleaner { return &ImportCleaner{} }

func (c *ImportCleaner) Name() string     { return "import_cleaner" }
func (c *ImportCleaner) Specialist() bool { return true }

func (c *ImportCleaner) CanHandle(iss issue.Issue) float64 {
	if iss.Kind != issue.KindDeadCode {
		return 0
	}
	if iss.FilePath == "" || iss.Line <= 0 {
		return 0
	}
	msg := strings.ToLower(iss.Message)
	if strings.Contains(msg, "unused import") || strings.Contains(iss.Code, "F401") {
		return 0.85
	}
	return 0
}

func (c *ImportCleaner) Plan(_ context.Context, workspaceRoot string, issues []issue.Issue) (*issue.FixPlan, error) {
	path := targetFile(issues)
	if path == "" {
		return nil, nil
	}
	lines, _, err := readLines(workspaceRoot, path)
	if err != nil {
		return nil, err
	}

	var edits []issue.PlannedEdit
	for _, iss := range issues {
		if iss.Line <= 0 || iss.Line > len(lines) {
			continue
		}
		if pythonImportLine.MatchString(lines[iss.Line-1]) {
			edits = append(edits, issue.PlannedEdit{
				File:      path,
				LineRange: [2]int{iss.Line, iss.Line},
				Rationale: "remove unused import",
				Risk:      "low",
			})
		}
	}
	return &issue.FixPlan{Edits: edits}, nil
}

func (c *ImportCleaner) Apply(_ context.Context, workspaceRoot string, issues []issue.Issue) (issue.FixResult, error) {
	result := issue.FixResult{AgentName: c.Name()}
	path := targetFile(issues)
	if path == "" {
		result.Success = true
		result.Confidence = 1
		return result, nil
	}

	lines, trailingNewline, err := readLines(workspaceRoot, path)
	if err != nil {
		return issue.FixResult{AgentName: c.Name()}, err
	}

	toRemove := make(map[int]bool) // 0-indexed line numbers
	var remaining []issue.Issue
	for _, iss := range issues {
		if iss.Line > 0 && iss.Line <= len(lines) && pythonImportLine.MatchString(lines[iss.Line-1]) {
			toRemove[iss.Line-1] = true
		} else {
			remaining = append(remaining, iss)
		}
	}

	if len(toRemove) == 0 {
		result.Success = true
		result.Confidence = 0.85
		result.RemainingIssues = issues
		return result, nil
	}

	kept := make([]string, 0, len(lines)-len(toRemove))
	for i, l := range lines {
		if !toRemove[i] {
			kept = append(kept, l)
		}
	}

	if err := writeLines(workspaceRoot, path, kept, trailingNewline); err != nil {
		return issue.FixResult{AgentName: c.Name()}, err
	}

	result.Success = true
	result.Confidence = 0.85
	result.FixesApplied = []string{fmt.Sprintf("removed %d unused import line(s) from %s", len(toRemove), path)}
	result.FilesModified = []string{path}
	result.RemainingIssues = remaining
	return result, nil
}

// targetFile returns the common file path of a batch of issues, or "" if
// the batch is empty or project-level (ImportCleaner never handles
// project-level findings).
func targetFile(issues []issue.Issue) string {
	for _, iss := range issues {
		if iss.FilePath != "" {
			return iss.FilePath
		}
	}
	return ""
}
