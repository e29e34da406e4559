package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

func TestRuffParsesValidJSON(t *testing.T) {
	raw := []byte(`[
		{"code": "F401", "message": "unused import", "filename": "/repo/a.py", "location": {"row": 3, "column": 1}},
		{"code": "E501", "message": "line too long", "filename": "/repo/b.py", "location": {"row": 10, "column": 89}}
	]`)

	issues, diag := Ruff(raw, 1, nil)
	require.Empty(t, diag)
	require.Len(t, issues, 2)
	assert.Equal(t, "F401", issues[0].Code)
	assert.NotEmpty(t, issues[0].ID)
	assert.NotEqual(t, issues[0].ID, issues[1].ID)
}

func TestRuffMalformedJSONNeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		issues, diag := Ruff([]byte(`not json at all {{{`), 1, nil)
		assert.Empty(t, issues)
		assert.NotEmpty(t, diag)
	})
}

func TestBanditParsesResults(t *testing.T) {
	raw := []byte(`{
		"results": [
			{"filename": "/repo/app.py", "line_number": 42, "col_offset": 0,
			 "issue_severity": "HIGH", "issue_confidence": "HIGH",
			 "issue_text": "hardcoded password", "test_id": "B105"}
		],
		"errors": []
	}`)

	issues, diag := Bandit(raw, 1, nil)
	require.Empty(t, diag)
	require.Len(t, issues, 1)
	assert.Equal(t, "B105", issues[0].Code)
}

func TestPipAuditProducesProjectLevelIssues(t *testing.T) {
	raw := []byte(`{
		"dependencies": [
			{"name": "requests", "version": "2.25.0", "vulns": [
				{"id": "PYSEC-2023-74", "fix_versions": ["2.31.0", "2.28.0"], "description": "CVE in requests"}
			]}
		]
	}`)

	issues, diag := PipAudit(raw, 0, nil)
	require.Empty(t, diag)
	require.Len(t, issues, 1)
	assert.True(t, issues[0].IsProjectLevel())
	assert.Contains(t, issues[0].Message, "2.28.0")
}

func TestComplexipyParserReadsReportedFile(t *testing.T) {
	stdout := []byte("Analysis complete. Report written to .complexipy/report.json\n")
	fakeReader := func(path string) ([]byte, error) {
		assert.Equal(t, ".complexipy/report.json", path)
		return []byte(`[{"file_path": "/repo/big.py", "function_name": "do_everything", "line_start": 10, "complexity": 40}]`), nil
	}

	parse := ComplexipyParser(fakeReader, 15)
	issues, diag := parse(stdout, 0, nil)
	require.Empty(t, diag)
	require.Len(t, issues, 1)
	assert.Equal(t, issues[0].Severity.IsValid(), true)
}

func TestComplexipyParserMissingReportPath(t *testing.T) {
	parse := ComplexipyParser(func(string) ([]byte, error) { return nil, errors.New("not reached") }, 15)
	issues, diag := parse([]byte("no report info here"), 0, nil)
	assert.Empty(t, issues)
	assert.NotEmpty(t, diag)
}

func TestTextFallbackExtractsFindings(t *testing.T) {
	raw := []byte("src/app.py:12:4: C901 function is too complex\nsrc/other.py:5: missing docstring\n")
	parse := TextFallback("generic-tool")
	issues, diag := parse(raw, 1, nil)
	require.Empty(t, diag)
	require.Len(t, issues, 2)
	assert.Equal(t, "C901", issues[0].Code)
}

func TestRegistryUnknownParserID(t *testing.T) {
	reg, err := NewRegistry(nil, Entry{ID: "ruff", Format: FormatJSON, Parse: Ruff})
	require.NoError(t, err)

	issues, diag := reg.Parse("nonexistent", []byte("x"), 1, nil)
	assert.Empty(t, issues)
	assert.NotEmpty(t, diag)
}

func TestRegistryRecoversFromPanickingParser(t *testing.T) {
	reg, err := NewRegistry(nil, Entry{ID: "boom", Format: FormatText, Parse: func(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
		panic("simulated parser bug")
	}})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		issues, diag := reg.Parse("boom", []byte("x"), 1, nil)
		assert.Empty(t, issues)
		assert.Contains(t, diag, "panicked")
	})
}

func TestRegistryRejectsDuplicateIDs(t *testing.T) {
	_, err := NewRegistry(nil,
		Entry{ID: "ruff", Format: FormatJSON, Parse: Ruff},
		Entry{ID: "ruff", Format: FormatJSON, Parse: Ruff},
	)
	require.Error(t, err)
}

func TestNewBuiltinRegistryRegistersAllRequiredParsers(t *testing.T) {
	reg, err := NewBuiltinRegistry(nil, BuiltinOptions{
		Reader: func(string) ([]byte, error) { return nil, errors.New("unused") },
	})
	require.NoError(t, err)

	for _, id := range []string{"ruff", "mypy", "bandit", "complexipy", "semgrep", "pip-audit", "gitleaks", "refurb", "skylos", "creosote", "pytest", "text"} {
		assert.True(t, reg.Has(id), "expected parser %q to be registered", id)
	}
}
