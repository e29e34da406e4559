package agent

import (
	"fmt"
	"os"
	"path/filepath"
)

// readLines loads path (resolved against workspaceRoot) and splits it into
// lines without their trailing newline, plus a flag recording whether the
// original file ended in a newline (so writeLines can restore it).
func readLines(workspaceRoot, path string) (lines []string, hadTrailingNewline bool, err error) {
	full := filepath.Join(workspaceRoot, path)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, true, nil
	}

	hadTrailingNewline = data[len(data)-1] == '\n'
	text := string(data)
	if hadTrailingNewline {
		text = text[:len(text)-1]
	}
	if text == "" {
		return nil, hadTrailingNewline, nil
	}

	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	lines = append(lines, text[start:])
	return lines, hadTrailingNewline, nil
}

// writeLines joins lines with '\n' and writes them back to path, restoring
// the original trailing-newline convention.
func writeLines(workspaceRoot, path string, lines []string, trailingNewline bool) error {
	full := filepath.Join(workspaceRoot, path)
	info, err := os.Stat(full)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}

	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	if trailingNewline && len(lines) > 0 {
		out += "\n"
	}

	// Write atomically using temp file + rename, so a crash or concurrent
	// read never observes a half-written file.
	tmpPath := full + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(out), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, full); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("commit %s: %w", path, err)
	}
	return nil
}
