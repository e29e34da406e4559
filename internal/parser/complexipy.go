package parser

import (
	"strconv"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// complexipyEntry mirrors one function/method entry in complexipy's JSON
// report file.
type complexipyEntry struct {
	FilePath        string `json:"file_path"`
	FunctionName    string `json:"function_name"`
	LineStart       int    `json:"line_start"`
	Complexity      int    `json:"complexity"`
}

// ComplexipyParser returns a parser for complexipy, which writes its report
// to a file named on stdout rather than printing JSON directly; reader
// fetches that file's content from the workspace.
func ComplexipyParser(reader FileReader, threshold int) Func {
	return func(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
		path := findReportPath(string(raw))
		if path == "" {
			return nil, "no report path found in complexipy stdout"
		}

		content, err := reader(path)
		if err != nil {
			return nil, "failed to read complexipy report: " + err.Error()
		}

		res := decodeJSON[[]complexipyEntry](content)
		if !res.ok {
			return nil, res.diag
		}

		var issues []issue.Issue
		for _, e := range res.data {
			if e.Complexity < threshold {
				continue
			}
			issues = append(issues, issue.Issue{
				ID:       issue.NewID("complexipy", e.FilePath, e.LineStart, e.FunctionName),
				Kind:     issue.KindComplexity,
				Severity: complexipySeverity(e.Complexity, threshold),
				FilePath: e.FilePath,
				Line:     e.LineStart,
				Message:  "function " + e.FunctionName + " has cognitive complexity " + strconv.Itoa(e.Complexity),
				Tool:     "complexipy",
				Raw:      map[string]any{"complexity": e.Complexity, "function": e.FunctionName},
			})
		}
		return issues, ""
	}
}

func complexipySeverity(complexity, threshold int) issue.Severity {
	switch {
	case complexity >= threshold*3:
		return issue.SeverityCritical
	case complexity >= threshold*2:
		return issue.SeverityHigh
	default:
		return issue.SeverityMedium
	}
}

