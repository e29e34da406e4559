package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFormatterCanHandle(t *testing.T) {
	f := NewFormatter()
	assert.Greater(t, f.CanHandle(issue.Issue{Kind: issue.KindFormatError, FilePath: "a.py"}), 0.0)
	assert.Equal(t, 0.0, f.CanHandle(issue.Issue{Kind: issue.KindTypeError, FilePath: "a.py"}))
	assert.Equal(t, 0.0, f.CanHandle(issue.Issue{Kind: issue.KindFormatError}))
}

func TestFormatterApplyStripsTrailingWhitespace(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.py", "x = 1   \ny = 2\n")

	f := NewFormatter()
	iss := issue.Issue{ID: "1", Kind: issue.KindFormatError, FilePath: "a.py", Tool: "ruff", Message: "trailing whitespace"}
	result, err := f.Apply(context.Background(), dir, []issue.Issue{iss})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.FixesApplied, 1)
	assert.Equal(t, []string{"a.py"}, result.FilesModified)

	data, err := os.ReadFile(filepath.Join(dir, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\ny = 2\n", string(data))
}

func TestFormatterApplyIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.py", "x = 1   \n")

	f := NewFormatter()
	iss := issue.Issue{ID: "1", Kind: issue.KindFormatError, FilePath: "a.py", Tool: "ruff", Message: "trailing whitespace"}

	_, err := f.Apply(context.Background(), dir, []issue.Issue{iss})
	require.NoError(t, err)

	second, err := f.Apply(context.Background(), dir, []issue.Issue{iss})
	require.NoError(t, err)
	assert.Empty(t, second.FixesApplied)
	assert.True(t, second.Success)
}

func TestImportCleanerRemovesUnusedImportLine(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.py", "import os\nimport sys\n\nprint(sys.argv)\n")

	c := NewImportCleaner()
	iss := issue.Issue{ID: "1", Kind: issue.KindDeadCode, FilePath: "a.py", Line: 1, Code: "F401", Tool: "ruff", Message: "unused import os"}

	assert.Greater(t, c.CanHandle(iss), 0.0)

	result, err := c.Apply(context.Background(), dir, []issue.Issue{iss})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.FixesApplied, 1)

	data, err := os.ReadFile(filepath.Join(dir, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "import sys\n\nprint(sys.argv)\n", string(data))
}

func TestImportCleanerDeclinesNonImportLine(t *testing.T) {
	c := NewImportCleaner()
	iss := issue.Issue{Kind: issue.KindDeadCode, FilePath: "a.py", Line: 3, Message: "unused variable x"}
	assert.Equal(t, 0.0, c.CanHandle(iss))
}

func TestRegistryPreservesOrder(t *testing.T) {
	reg := NewRegistry(NewFormatter(), NewImportCleaner())
	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, 0, all[0].Index)
	assert.Equal(t, 1, all[1].Index)
	assert.Equal(t, "formatter", all[0].Agent.Name())
}
