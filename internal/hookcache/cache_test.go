package hookcache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

type fakeStore struct {
	mu      sync.Mutex
	entries map[string]*issue.CacheEntry
}

func newFakeStore() *fakeStore { return &fakeStore{entries: make(map[string]*issue.CacheEntry)} }

func (f *fakeStore) Get(_ context.Context, key string) (*issue.CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[key], nil
}

func (f *fakeStore) Put(_ context.Context, entry *issue.CacheEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entry.Key] = entry
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func TestCacheHitAndMiss(t *testing.T) {
	c := New(10, time.Hour, nil)
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Put(ctx, "k1", "ruff", issue.HookResult{HookName: "ruff", Status: issue.StatusPassed}, 0)
	result, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, issue.StatusPassed, result.Status)
}

func TestCacheTTLExpiry(t *testing.T) {
	c := New(10, time.Millisecond, nil)
	ctx := context.Background()

	c.Put(ctx, "k1", "ruff", issue.HookResult{Status: issue.StatusPassed}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "k1")
	assert.False(t, ok, "entry must expire once its TTL has elapsed")
}

func TestCacheLRUEviction(t *testing.T) {
	c := New(2, time.Hour, nil)
	ctx := context.Background()

	c.Put(ctx, "a", "h", issue.HookResult{}, 0)
	c.Put(ctx, "b", "h", issue.HookResult{}, 0)
	c.Put(ctx, "c", "h", issue.HookResult{}, 0) // evicts "a", the least recently used

	_, aOK := c.Get(ctx, "a")
	_, bOK := c.Get(ctx, "b")
	_, cOK := c.Get(ctx, "c")

	assert.False(t, aOK)
	assert.True(t, bOK)
	assert.True(t, cOK)
	assert.Equal(t, 2, c.Len())
}

func TestCacheFallsThroughToStore(t *testing.T) {
	store := newFakeStore()
	store.entries["persisted"] = &issue.CacheEntry{
		Key:       "persisted",
		Hook:      "mypy",
		CreatedAt: time.Now(),
		TTL:       time.Hour,
		Result:    issue.HookResult{Status: issue.StatusPassed, HookName: "mypy"},
	}

	c := New(10, time.Hour, store)
	result, ok := c.Get(context.Background(), "persisted")
	require.True(t, ok)
	assert.Equal(t, "mypy", result.HookName)
}

func TestCacheInvalidateClearsBothTiers(t *testing.T) {
	store := newFakeStore()
	c := New(10, time.Hour, store)
	ctx := context.Background()

	c.Put(ctx, "k", "ruff", issue.HookResult{Status: issue.StatusPassed}, 0)
	c.Invalidate(ctx, "k")

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Nil(t, store.entries["k"])
}

func TestKeyChangesWhenCacheKeyInputsFileChanges(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ruff.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("line-length = 88\n"), 0o644))

	hook := issue.HookDefinition{
		Name:           "ruff",
		Command:        []string{"ruff", "check"},
		CacheKeyInputs: []string{"ruff.toml"},
	}

	k1, err := Key(hook, dir, KeyInputs{ToolVersion: "0.8.0"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(cfgPath, []byte("line-length = 100\n"), 0o644))
	k2, err := Key(hook, dir, KeyInputs{ToolVersion: "0.8.0"})
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestKeyStableWithUnchangedInputs(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ruff.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("line-length = 88\n"), 0o644))

	hook := issue.HookDefinition{
		Name:           "ruff",
		Command:        []string{"ruff", "check"},
		CacheKeyInputs: []string{"ruff.toml"},
	}

	k1, err := Key(hook, dir, KeyInputs{ToolVersion: "0.8.0"})
	require.NoError(t, err)
	k2, err := Key(hook, dir, KeyInputs{ToolVersion: "0.8.0"})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	entry := &issue.CacheEntry{
		Key:       "abc123",
		Hook:      "bandit",
		CreatedAt: time.Now().Truncate(time.Second),
		TTL:       time.Hour,
		Result:    issue.HookResult{HookName: "bandit", Status: issue.StatusPassed, ExitCode: 0},
	}

	require.NoError(t, store.Put(ctx, entry))

	got, err := store.Get(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "bandit", got.Hook)
	assert.Equal(t, issue.StatusPassed, got.Result.Status)

	require.NoError(t, store.Delete(ctx, "abc123"))
	got, err = store.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Nil(t, got)
}
