package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

type fakeParsers map[string]bool

func (f fakeParsers) Has(id string) bool { return f[id] }

func TestNewCatalogRejectsUnknownDependency(t *testing.T) {
	_, err := NewCatalog([]issue.HookDefinition{
		hookDef("a", []string{"true"}, "missing"),
	}, fakeParsers{"noop": true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown hook")
}

func TestNewCatalogRejectsUnknownParser(t *testing.T) {
	_, err := NewCatalog([]issue.HookDefinition{
		hookDef("a", []string{"true"}),
	}, fakeParsers{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parser_id")
}

func TestNewCatalogDetectsCycle(t *testing.T) {
	_, err := NewCatalog([]issue.HookDefinition{
		hookDef("a", []string{"true"}, "b"),
		hookDef("b", []string{"true"}, "a"),
	}, fakeParsers{"noop": true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestNewCatalogRejectsDuplicateNames(t *testing.T) {
	_, err := NewCatalog([]issue.HookDefinition{
		hookDef("a", []string{"true"}),
		hookDef("a", []string{"false"}),
	}, fakeParsers{"noop": true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestCatalogForStage(t *testing.T) {
	cat, err := NewCatalog([]issue.HookDefinition{
		hookDef("fast1", []string{"true"}),
		{
			Name:           "comp1",
			Command:        []string{"true"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 5,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "noop",
		},
	}, fakeParsers{"noop": true})
	require.NoError(t, err)

	assert.Len(t, cat.ForStage(issue.StageFast), 1)
	assert.Len(t, cat.ForStage(issue.StageComprehensive), 1)
}
