package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackerjack-go/crackerjack/internal/hookcache"
	"github.com/crackerjack-go/crackerjack/internal/issue"
	"github.com/crackerjack-go/crackerjack/internal/parser"
	"github.com/crackerjack-go/crackerjack/internal/toolrunner"
)

func testParsers(t *testing.T) *parser.Registry {
	t.Helper()
	reg, err := parser.NewRegistry(nil,
		parser.Entry{ID: "noop", Format: parser.FormatText, Parse: func(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
			return nil, ""
		}},
	)
	require.NoError(t, err)
	return reg
}

func hookDef(name string, cmd []string, deps ...string) issue.HookDefinition {
	return issue.HookDefinition{
		Name:           name,
		Command:        cmd,
		Stage:          issue.StageFast,
		TimeoutSeconds: 5,
		SecurityLevel:  issue.SecuritySafe,
		ParserID:       "noop",
		DependsOn:      deps,
	}
}

func newTestRunner(t *testing.T, hooks []issue.HookDefinition) *Runner {
	t.Helper()
	parsers := testParsers(t)
	catalog, err := NewCatalog(hooks, parsers)
	require.NoError(t, err)

	r, err := NewRunner(Config{
		Catalog: catalog,
		Cache:   hookcache.New(100, time.Hour, nil),
		Runner:  toolrunner.New(nil),
		Parsers: parsers,
	})
	require.NoError(t, err)
	return r
}

func TestRunStagePassingHooks(t *testing.T) {
	hooks := []issue.HookDefinition{
		hookDef("a", []string{"true"}),
		hookDef("b", []string{"true"}, "a"),
	}
	r := newTestRunner(t, hooks)

	result, err := r.RunStage(context.Background(), issue.StageFast, t.TempDir())
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 2, result.Summary.Total)
	assert.Equal(t, 2, result.Summary.Passed)
}

func TestRunStageSkipsDependentsOfFailure(t *testing.T) {
	hooks := []issue.HookDefinition{
		hookDef("a", []string{"false"}),
		hookDef("b", []string{"true"}, "a"),
	}
	r := newTestRunner(t, hooks)

	result, err := r.RunStage(context.Background(), issue.StageFast, t.TempDir())
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, 1, result.Summary.Skipped)

	var bResult *issue.HookResult
	for i := range result.Results {
		if result.Results[i].HookName == "b" {
			bResult = &result.Results[i]
		}
	}
	require.NotNil(t, bResult)
	assert.Equal(t, issue.StatusSkipped, bResult.Status)
	assert.Equal(t, "dependency_failed", bResult.SkipReason)
}

func TestRunStageCompletesWaveWithIsolatedAndSafeHooks(t *testing.T) {
	hooks := []issue.HookDefinition{
		hookDef("safe1", []string{"true"}),
		hookDef("safe2", []string{"true"}),
		{
			Name:           "lockdown",
			Command:        []string{"true"},
			Stage:          issue.StageFast,
			TimeoutSeconds: 5,
			SecurityLevel:  issue.SecurityIsolated,
			ParserID:       "noop",
		},
	}
	r := newTestRunner(t, hooks)

	result, err := r.RunStage(context.Background(), issue.StageFast, t.TempDir())
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 3, result.Summary.Passed)
}

func TestRunStageUsesCacheOnSecondRun(t *testing.T) {
	hooks := []issue.HookDefinition{hookDef("a", []string{"true"})}
	r := newTestRunner(t, hooks)
	dir := t.TempDir()
	ctx := context.Background()

	first, err := r.RunStage(ctx, issue.StageFast, dir)
	require.NoError(t, err)
	assert.Equal(t, issue.StatusPassed, first.Results[0].Status)

	second, err := r.RunStage(ctx, issue.StageFast, dir)
	require.NoError(t, err)
	assert.Equal(t, issue.StatusCacheHit, second.Results[0].Status)
	assert.Equal(t, 1, second.Summary.CacheHits)
}

func TestRunStageMarksParseFailureAndSkipsCache(t *testing.T) {
	reg, err := parser.NewRegistry(nil,
		parser.Entry{ID: "broken", Format: parser.FormatText, Parse: func(raw []byte, exitCode int, stderr []byte) ([]issue.Issue, string) {
			return nil, "malformed output"
		}},
	)
	require.NoError(t, err)

	hooks := []issue.HookDefinition{
		{
			Name:           "a",
			Command:        []string{"true"},
			Stage:          issue.StageFast,
			TimeoutSeconds: 5,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "broken",
		},
	}
	catalog, err := NewCatalog(hooks, reg)
	require.NoError(t, err)

	cache := hookcache.New(100, time.Hour, nil)
	r, err := NewRunner(Config{
		Catalog: catalog,
		Cache:   cache,
		Runner:  toolrunner.New(nil),
		Parsers: reg,
	})
	require.NoError(t, err)

	dir := t.TempDir()
	result, err := r.RunStage(context.Background(), issue.StageFast, dir)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	require.Len(t, result.Results, 1)
	assert.Equal(t, issue.StatusFailed, result.Results[0].Status)
	assert.Equal(t, "parse_error", result.Results[0].FailureReason)

	key, keyErr := hookcache.Key(hooks[0], dir, hookcache.KeyInputs{})
	require.NoError(t, keyErr)
	_, hit := cache.Get(context.Background(), key)
	assert.False(t, hit, "a parse-failed result must not be cached")
}

func TestRunStageEmptyStageIsPassedTrivially(t *testing.T) {
	hooks := []issue.HookDefinition{
		{
			Name:           "comprehensive-only",
			Command:        []string{"true"},
			Stage:          issue.StageComprehensive,
			TimeoutSeconds: 5,
			SecurityLevel:  issue.SecuritySafe,
			ParserID:       "noop",
		},
	}
	r := newTestRunner(t, hooks)

	result, err := r.RunStage(context.Background(), issue.StageFast, t.TempDir())
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 0, result.Summary.Total)
}
