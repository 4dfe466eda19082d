// Package fix applies the replacements proposed by findings to file content.
package fix

import (
	"fmt"
	"os"
	"sort"

	"sable/internal/diag"
	"sable/internal/source"
)

// Skipped records a fix that was not applied and why.
type Skipped struct {
	Code   string
	Reason string
}

// Outcome is the result of splicing fixes into one file's content.
type Outcome struct {
	Content []byte
	Applied int
	Skipped []Skipped

	// AppliedFindings indexes the findings whose fix was applied, so the
	// caller can drop them from the report: a fixed problem is gone.
	AppliedFindings []int
}

type candidate struct {
	fix   diag.Fix
	code  string
	src   int // index into the findings slice
	order int
}

// Apply splices the fixes carried by findings into content and returns the
// new content. Selection is deterministic: candidates sort by span position,
// the earliest fix wins a conflict, and later overlapping fixes are skipped.
// The splice itself runs in descending offset order, so applying one fix
// never invalidates the spans of those still pending.
func Apply(content []byte, findings []diag.Finding) Outcome {
	out := Outcome{Content: content}

	cands := make([]candidate, 0)
	for i := range findings {
		f := &findings[i]
		if f.Fix == nil {
			continue
		}
		cands = append(cands, candidate{fix: *f.Fix, code: f.DisplayCode(), src: i, order: len(cands)})
	}
	if len(cands) == 0 {
		return out
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i].fix.Span, cands[j].fix.Span
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return cands[i].order < cands[j].order
	})

	selected := make([]candidate, 0, len(cands))
	for _, c := range cands {
		sp := c.fix.Span
		if int(sp.End) > len(content) || sp.End < sp.Start {
			out.Skipped = append(out.Skipped, Skipped{Code: c.code, Reason: "fix span out of range"})
			continue
		}
		if n := len(selected); n > 0 && spansOverlap(selected[n-1].fix.Span, sp) {
			out.Skipped = append(out.Skipped, Skipped{Code: c.code, Reason: "overlaps an earlier fix"})
			continue
		}
		selected = append(selected, c)
	}
	if len(selected) == 0 {
		return out
	}

	// сплайсим с конца, чтобы не сдвигать ещё не применённые спаны
	working := append([]byte(nil), content...)
	for i := len(selected) - 1; i >= 0; i-- {
		sp := selected[i].fix.Span
		suffix := append([]byte(nil), working[sp.End:]...)
		working = append(append(working[:sp.Start], []byte(selected[i].fix.Replacement)...), suffix...)
	}

	out.Content = working
	out.Applied = len(selected)
	out.AppliedFindings = make([]int, len(selected))
	for i, c := range selected {
		out.AppliedFindings[i] = c.src
	}
	return out
}

// spansOverlap treats spans as half-open [Start, End). Two insertions at the
// same point never conflict; an insertion inside a replaced span does.
func spansOverlap(a, b source.Span) bool {
	return overlap(a.Start, a.End, b.Start, b.End)
}

func overlap(aStart, aEnd, bStart, bEnd uint32) bool {
	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart <= aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart <= bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

// WriteFile persists fixed content back to disk, keeping the file's mode.
func WriteFile(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("fix: write %s: %w", path, err)
	}
	return nil
}
