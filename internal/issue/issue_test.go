package issue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDDeterministic(t *testing.T) {
	a := NewID("ruff", "/repo/pkg/mod.py", 12, "F401")
	b := NewID("ruff", "/repo/pkg/mod.py", 12, "F401")
	assert.Equal(t, a, b)

	c := NewID("ruff", "/repo/pkg/mod.py", 13, "F401")
	assert.NotEqual(t, a, c)
}

func TestIssueValidate(t *testing.T) {
	cases := []struct {
		name    string
		issue   Issue
		wantErr bool
	}{
		{
			name: "valid project-level issue",
			issue: Issue{
				ID:       NewID("bandit", "", 0, "B108"),
				Kind:     KindSecurityVuln,
				Severity: SeverityHigh,
				Message:  "insecure temp file usage",
				Tool:     "bandit",
			},
			wantErr: false,
		},
		{
			name:    "missing id",
			issue:   Issue{Kind: KindOther, Severity: SeverityLow, Message: "x", Tool: "ruff"},
			wantErr: true,
		},
		{
			name:    "invalid kind",
			issue:   Issue{ID: "x", Kind: "bogus", Severity: SeverityLow, Message: "x", Tool: "ruff"},
			wantErr: true,
		},
		{
			name:    "invalid severity",
			issue:   Issue{ID: "x", Kind: KindOther, Severity: "bogus", Message: "x", Tool: "ruff"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.issue.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIssueIsProjectLevel(t *testing.T) {
	withFile := Issue{FilePath: "/repo/a.py"}
	withoutFile := Issue{}
	assert.False(t, withFile.IsProjectLevel())
	assert.True(t, withoutFile.IsProjectLevel())
}

func TestHookDefinitionValidate(t *testing.T) {
	valid := HookDefinition{
		Name:           "ruff",
		Command:        []string{"ruff", "check", "--output-format", "json"},
		Stage:          StageFast,
		TimeoutSeconds: 30,
		SecurityLevel:  SecuritySafe,
		ParserID:       "ruff",
	}
	require.NoError(t, valid.Validate())

	missingTimeout := valid
	missingTimeout.TimeoutSeconds = 0
	require.Error(t, missingTimeout.Validate())

	badStage := valid
	badStage.Stage = "urgent"
	require.Error(t, badStage.Validate())
}

func TestHookResultPassed(t *testing.T) {
	passed := HookResult{Status: StatusPassed}
	assert.True(t, passed.Passed(false))

	cacheHitOfPassed := HookResult{Status: StatusCacheHit}
	assert.True(t, cacheHitOfPassed.Passed(true))
	assert.False(t, cacheHitOfPassed.Passed(false))

	failed := HookResult{Status: StatusFailed}
	assert.False(t, failed.Passed(true))
}

func TestCacheEntryExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := CacheEntry{CreatedAt: now, TTL: time.Hour}

	assert.False(t, entry.Expired(now.Add(30*time.Minute)))
	assert.True(t, entry.Expired(now.Add(2*time.Hour)))

	noTTL := CacheEntry{CreatedAt: now, TTL: 0}
	assert.False(t, noTTL.Expired(now.Add(24*time.Hour)))
}

func TestStatusIsTerminalFailure(t *testing.T) {
	assert.True(t, StatusTimeout.IsTerminalFailure())
	assert.True(t, StatusHungKilled.IsTerminalFailure())
	assert.True(t, StatusSkipped.IsTerminalFailure())
	assert.False(t, StatusPassed.IsTerminalFailure())
	assert.False(t, StatusCacheHit.IsTerminalFailure())
}
