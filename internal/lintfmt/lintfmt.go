// Package lintfmt renders scan results for humans and machines: pretty
// (code frames), short (one line per entry), json and sarif.
package lintfmt

import (
	"path/filepath"
	"strings"

	"sable/internal/diag"
	"sable/internal/linter"
)

// entry is one diagnostic paired with the file it belongs to; renderers
// work over a flat list.
type entry struct {
	path string
	d    linter.Diagnostic
}

// flatten lists diagnostics file by file (paths sorted, translator order
// inside a file: primaries first, hints after).
func flatten(res *linter.ScanResult) []entry {
	if res == nil {
		return nil
	}
	out := make([]entry, 0, res.Total())
	for _, path := range res.Paths() {
		for _, d := range res.Files[path] {
			out = append(out, entry{path: path, d: d})
		}
	}
	return out
}

// capEntries truncates the list to max and reports how many were cut.
// max <= 0 means no limit.
func capEntries(entries []entry, max int) ([]entry, int) {
	if max <= 0 || len(entries) <= max {
		return entries, 0
	}
	return entries[:max], len(entries) - max
}

// displayPath shows a path relative to root with forward slashes.
func displayPath(root, path string) string {
	p := path
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil {
			p = rel
		}
	}
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	case diag.SevHint:
		return "hint"
	default:
		return "info"
	}
}

// firstLine cuts a message at the first newline; short and sarif output
// keep the help text out of the headline.
func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
