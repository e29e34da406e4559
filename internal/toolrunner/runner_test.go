package toolrunner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

func TestRunPassed(t *testing.T) {
	r := New(nil)
	hook := issue.HookDefinition{
		Name:           "echo",
		Command:        []string{"/bin/sh", "-c", "echo hello"},
		TimeoutSeconds: 5,
	}

	result, err := r.Run(context.Background(), hook, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, issue.StatusPassed, result.Status)
	assert.Contains(t, result.Stdout, "hello")
	assert.Equal(t, 0, result.ExitCode)
}

func TestRunFailedExitCode(t *testing.T) {
	r := New(nil)
	hook := issue.HookDefinition{
		Name:           "fail",
		Command:        []string{"/bin/sh", "-c", "exit 3"},
		TimeoutSeconds: 5,
	}

	result, err := r.Run(context.Background(), hook, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, issue.StatusFailed, result.Status)
	assert.Equal(t, 3, result.ExitCode)
}

func TestRunTimeout(t *testing.T) {
	r := New(nil)
	hook := issue.HookDefinition{
		Name:           "sleeper",
		Command:        []string{"/bin/sh", "-c", "sleep 10"},
		TimeoutSeconds: 1,
	}

	start := time.Now()
	result, err := r.Run(context.Background(), hook, t.TempDir())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, issue.StatusTimeout, result.Status)
	assert.Less(t, elapsed, 6*time.Second, "timeout + SIGTERM grace must resolve within 6s")
}

func TestRunRespectsContextCancellation(t *testing.T) {
	r := New(nil)
	hook := issue.HookDefinition{
		Name:           "sleeper",
		Command:        []string{"/bin/sh", "-c", "sleep 30"},
		TimeoutSeconds: 60,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	result, err := r.Run(ctx, hook, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, issue.StatusTimeout, result.Status)
}

func TestRunEmptyCommandErrors(t *testing.T) {
	r := New(nil)
	hook := issue.HookDefinition{Name: "empty", TimeoutSeconds: 5}

	_, err := r.Run(context.Background(), hook, t.TempDir())
	require.Error(t, err)
}

func TestBoundedBufferTruncates(t *testing.T) {
	var b boundedBuffer
	b.limit = 10
	n, err := b.Write([]byte("0123456789ABCDEF"))
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Contains(t, b.String(), "truncated")
	assert.True(t, b.truncated)
}
