package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Pre-compiled: compiling on every parse call is wasteful when a stage runs
// dozens of hooks per iteration.
var (
	objectRegex = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	arrayRegex  = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// decodeResult mirrors the teacher's ParseResult[T] shape, scoped to this
// package: a total, non-panicking decode attempt with a diagnostic instead
// of an error, since parser.Func's contract forbids returning a Go error.
type decodeResult[T any] struct {
	ok   bool
	data T
	diag string
}

// decodeJSON attempts json.Unmarshal directly, then falls back to
// extracting the first top-level object/array from mixed stdout (some
// tools interleave a progress banner or a deprecation warning before their
// JSON payload on stdout).
func decodeJSON[T any](raw []byte) decodeResult[T] {
	var out T
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return decodeResult[T]{diag: "empty output"}
	}

	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return decodeResult[T]{ok: true, data: out}
	}

	if extracted := extractJSON(trimmed); extracted != "" {
		var fallback T
		if err := json.Unmarshal([]byte(extracted), &fallback); err == nil {
			return decodeResult[T]{ok: true, data: fallback}
		}
	}

	return decodeResult[T]{diag: "malformed JSON output"}
}

// extractJSON returns the first top-level JSON object or array found in
// text, or "" if none is found. The leading character decides which regex
// to try first, avoiding a common over-match (picking an inner object out
// of a top-level array).
func extractJSON(text string) string {
	if text == "" {
		return ""
	}
	switch text[0] {
	case '[':
		if m := arrayRegex.FindString(text); m != "" {
			return m
		}
	case '{':
		if m := objectRegex.FindString(text); m != "" {
			return m
		}
	}
	if m := objectRegex.FindString(text); m != "" {
		return m
	}
	if m := arrayRegex.FindString(text); m != "" {
		return m
	}
	return ""
}
