package parser

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// pipAuditReport mirrors `pip-audit -f json`'s dependency-vulnerability report.
type pipAuditReport struct {
	Dependencies []pipAuditDependency `json:"dependencies"`
}

type pipAuditDependency struct {
	Name    string              `json:"name"`
	Version string              `json:"version"`
	Vulns   []pipAuditVulnerable `json:"vulns"`
}

type pipAuditVulnerable struct {
	ID       string   `json:"id"`
	FixVersions []string `json:"fix_versions"`
	Description string `json:"description"`
}

// PipAudit parses pip-audit's JSON dependency-vulnerability report. Each
// finding is project-level (no file_path): it names a dependency, not a
// line of source.
func PipAudit(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
	res := decodeJSON[pipAuditReport](raw)
	if !res.ok {
		return nil, res.diag
	}

	var issues []issue.Issue
	for _, dep := range res.data.Dependencies {
		for _, v := range dep.Vulns {
			msg := v.Description
			if len(v.FixVersions) > 0 {
				msg += " (fix available: " + dep.Name + " " + normalizedFixVersion(v.FixVersions) + ")"
			}
			issues = append(issues, issue.Issue{
				ID:       issue.NewID("pip-audit", "", 0, v.ID),
				Kind:     issue.KindDependencyIssue,
				Severity: issue.SeverityHigh,
				Code:     v.ID,
				Message:  msg,
				Tool:     "pip-audit",
				Raw:      map[string]any{"dependency": dep.Name, "installed_version": dep.Version},
			})
		}
	}
	return issues, ""
}

// normalizedFixVersion picks the lowest available fix version using
// semver comparison (pip-audit's fix_versions aren't guaranteed sorted).
func normalizedFixVersion(versions []string) string {
	best := versions[0]
	for _, v := range versions[1:] {
		if semver.Compare(toSemver(v), toSemver(best)) < 0 {
			best = v
		}
	}
	return best
}

// toSemver prefixes a bare PEP 440-ish version with "v" since
// golang.org/x/mod/semver requires the leading "v".
func toSemver(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
