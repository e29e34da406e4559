// Package parser turns raw tool output into the uniform Issue model. Each
// tool has exactly one parser, registered once at startup by id; the
// registry itself is populated at construction and never mutated afterward
// (no process-wide mutable singleton).
package parser

import (
	"fmt"
	"log/slog"

	"github.com/crackerjack-go/crackerjack/internal/issue"
)

// Format is the output shape a parser prefers from its tool.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Func is the contract every parser implements: a total function over raw
// tool output that must never panic, even on garbage input. On unparseable
// input it returns an empty slice and a non-empty diag describing why.
type Func func(raw []byte, exitCode int, stderr []byte) (issues []issue.Issue, diag string)

// Entry is one registered parser.
type Entry struct {
	ID     string
	Format Format
	Parse  Func
}

// Registry is an immutable-after-construction map from parser id to Func.
type Registry struct {
	entries map[string]Entry
	log     *slog.Logger
}

// NewRegistry builds a Registry from a fixed set of entries. Registration
// happens once, at startup; there is no Register-after-the-fact method, to
// keep the registry safe for concurrent read access without locking.
func NewRegistry(log *slog.Logger, entries ...Entry) (*Registry, error) {
	if log == nil {
		log = slog.Default()
	}
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("parser registry: entry with empty id")
		}
		if e.Parse == nil {
			return nil, fmt.Errorf("parser registry: entry %q has nil parse func", e.ID)
		}
		if _, exists := m[e.ID]; exists {
			return nil, fmt.Errorf("parser registry: duplicate parser id %q", e.ID)
		}
		m[e.ID] = e
	}
	return &Registry{entries: m, log: log}, nil
}

// Has reports whether parserID is registered.
func (r *Registry) Has(parserID string) bool {
	_, ok := r.entries[parserID]
	return ok
}

// Format returns the registered parser's preferred output format.
func (r *Registry) Format(parserID string) (Format, bool) {
	e, ok := r.entries[parserID]
	if !ok {
		return "", false
	}
	return e.Format, true
}

// Parse dispatches (parserID, raw, exitCode, stderr) to the matching
// registered parser. An unknown parserID is itself a parse failure (empty
// issue list, non-empty diag) rather than an error return, matching the
// "never crash the iteration" failure policy: the caller records this as a
// Failed HookResult with reason parse_error.
func (r *Registry) Parse(parserID string, raw []byte, exitCode int, stderr []byte) (issues []issue.Issue, diag string) {
	e, ok := r.entries[parserID]
	if !ok {
		diag = fmt.Sprintf("no parser registered for id %q", parserID)
		r.log.Warn("parser lookup failed", "parser_id", parserID)
		return nil, diag
	}

	issues, diag = safeParse(e.Parse, raw, exitCode, stderr)
	if diag != "" {
		r.log.Warn("parse failed, returning empty issue list",
			"parser_id", parserID, "diag", diag)
	}
	return issues, diag
}

// safeParse recovers from a panicking parser implementation so a single
// buggy or adversarial-input parser can never take down the orchestrator.
func safeParse(fn Func, raw []byte, exitCode int, stderr []byte) (issues []issue.Issue, diag string) {
	defer func() {
		if rec := recover(); rec != nil {
			issues = nil
			diag = fmt.Sprintf("parser panicked: %v", rec)
		}
	}()
	return fn(raw, exitCode, stderr)
}
