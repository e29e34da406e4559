// Package hookcache implements the content-addressed HookResult cache: an
// in-memory TTL+LRU layer in front of optional sqlite-backed persistence,
// consulted in that order (memory first, then database) by the Hook
// Orchestrator.
package hookcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// KeyInputs are the values that feed a cache key, per spec.md §3: hook
// name, tool version, command argv, hashes of cache_key_inputs files, and
// relevant environment variables.
type KeyInputs struct {
	ToolVersion string
	Env         map[string]string
}

// Key computes the content-addressed cache key for one hook invocation
// against one workspace. Two invocations produce the same key iff the hook
// name, argv, tool version, declared env, and the content of every file
// named in CacheKeyInputs are all identical — a change to any one of them
// is a cache miss.
func Key(hook issue.HookDefinition, workspaceRoot string, inputs KeyInputs) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "hook\x00%s\x00", hook.Name)
	fmt.Fprintf(h, "version\x00%s\x00", inputs.ToolVersion)
	fmt.Fprintf(h, "argv\x00%s\x00", strings.Join(hook.Command, "\x1f"))

	for _, k := range sortedKeys(inputs.Env) {
		fmt.Fprintf(h, "env\x00%s=%s\x00", k, inputs.Env[k])
	}

	for _, rel := range hook.CacheKeyInputs {
		digest, err := hashPath(filepath.Join(workspaceRoot, rel))
		if err != nil {
			return "", fmt.Errorf("hashing cache_key_inputs entry %q: %w", rel, err)
		}
		fmt.Fprintf(h, "input\x00%s\x00%s\x00", rel, digest)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashPath hashes a single file's content, or — for a directory — every
// regular file beneath it in a deterministic walk order, so the same tree
// always hashes the same way regardless of directory-read ordering.
func hashPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if !info.IsDir() {
		return hashFile(path)
	}

	var names []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(names)

	h := sha256.New()
	for _, n := range names {
		digest, err := hashFile(n)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\x00%s\x00", n, digest)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
