package parser

import (
	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// ruffFinding mirrors `ruff check --output-format json`'s per-violation shape.
type ruffFinding struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Location struct {
		Row    int `json:"row"`
		Column int `json:"column"`
	} `json:"location"`
	Fix *struct {
		Applicability string `json:"applicability"`
	} `json:"fix"`
}

// Ruff parses ruff's JSON lint report into Issues. Ruff's exit code is
// nonzero whenever it reports any violation, so exit code alone cannot
// distinguish "found issues" from "crashed"; an empty, well-formed JSON
// array is the success signal either way.
func Ruff(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
	res := decodeJSON[[]ruffFinding](raw)
	if !res.ok {
		return nil, res.diag
	}

	issues := make([]issue.Issue, 0, len(res.data))
	for _, f := range res.data {
		issues = append(issues, issue.Issue{
			ID:       issue.NewID("ruff", f.Filename, f.Location.Row, f.Code),
			Kind:     ruffKind(f.Code),
			Severity: issue.SeverityLow,
			FilePath: f.Filename,
			Line:     f.Location.Row,
			Column:   f.Location.Column,
			Code:     f.Code,
			Message:  f.Message,
			Tool:     "ruff",
			Raw:      map[string]any{"fixable": f.Fix != nil},
		})
	}
	return issues, ""
}

// ruffKind maps a ruff rule code prefix to an Issue kind. Ruff's `F` codes
// are pyflakes-derived (mostly dead code/unused-import); `E`/`W` are
// formatting/style; `S` is security, `C` complexity and `D` docstrings; an
// empty code is Other; everything else defaults to a refactor suggestion.
func ruffKind(code string) issue.Kind {
	if len(code) == 0 {
		return issue.KindOther
	}
	switch code[0] {
	case 'F':
		return issue.KindDeadCode
	case 'E', 'W':
		return issue.KindFormatError
	case 'S':
		return issue.KindSecurityVuln
	case 'C':
		return issue.KindComplexity
	case 'D':
		return issue.KindDocIssue
	default:
		return issue.KindRefactorSuggestion
	}
}
