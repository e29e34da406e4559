package hookcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key             TEXT PRIMARY KEY,
	hook            TEXT NOT NULL,
	key_inputs_hash TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL,
	ttl_seconds     INTEGER NOT NULL,
	version         INTEGER NOT NULL DEFAULT 1,
	result_json     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cache_entries_hook ON cache_entries(hook);
`

// cacheEntryVersion is bumped whenever the on-disk record shape changes in
// a way old readers can't tolerate; SQLiteStore treats a mismatched version
// as corruption (a miss), not a fatal error.
const cacheEntryVersion = 1

// maxStoredRawBytes bounds the raw stdout/stderr persisted per entry; the
// cache's value is the parsed issues, not the raw text, so a stream of this
// size or larger is dropped rather than stored (spec.md §6 cache file format).
const maxStoredRawBytes = 256 * 1024

// SQLiteStore persists CacheEntry records to a single-file sqlite database
// using the pure-Go, cgo-free driver, matching the on-disk cache file
// format described in spec.md §6.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) a sqlite-backed cache store at
// path, in WAL mode for concurrent readers alongside the writer.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("hookcache: create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("hookcache: open sqlite store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("hookcache: ping sqlite store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("hookcache: initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// storedResult wraps a HookResult for serialization. Put does not use it;
// Put applies the maxStoredRawBytes discard rule to raw stdout/stderr
// itself.
type storedResult struct {
	issue.HookResult
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*issue.CacheEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT hook, key_inputs_hash, created_at, ttl_seconds, version, result_json
		 FROM cache_entries WHERE key = ?`, key)

	var hook, keyInputsHash, resultJSON string
	var createdAt time.Time
	var ttlSeconds int64
	var version int

	if err := row.Scan(&hook, &keyInputsHash, &createdAt, &ttlSeconds, &version, &resultJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if version != cacheEntryVersion {
		// Schema drift: treat as corruption (a miss), per spec.md §7.
		return nil, nil
	}

	var result issue.HookResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, nil
	}

	return &issue.CacheEntry{
		Key:           key,
		Hook:          hook,
		KeyInputsHash: keyInputsHash,
		CreatedAt:     createdAt,
		TTL:           time.Duration(ttlSeconds) * time.Second,
		Result:        result,
	}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, entry *issue.CacheEntry) error {
	trimmed := entry.Result
	if len(trimmed.Stdout) >= maxStoredRawBytes {
		trimmed.Stdout = ""
	}
	if len(trimmed.Stderr) >= maxStoredRawBytes {
		trimmed.Stderr = ""
	}

	resultJSON, err := json.Marshal(trimmed)
	if err != nil {
		return fmt.Errorf("hookcache: marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, hook, key_inputs_hash, created_at, ttl_seconds, version, result_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   hook = excluded.hook,
		   key_inputs_hash = excluded.key_inputs_hash,
		   created_at = excluded.created_at,
		   ttl_seconds = excluded.ttl_seconds,
		   version = excluded.version,
		   result_json = excluded.result_json`,
		entry.Key, entry.Hook, entry.KeyInputsHash, entry.CreatedAt, int64(entry.TTL/time.Second), cacheEntryVersion, string(resultJSON))
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}
