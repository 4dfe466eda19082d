// Package linter wires discovery, the per-file pipeline, position
// translation and the service façade into one engine.
package linter

import (
	"sort"

	"sable/internal/diag"
	"sable/internal/source"
)

// SourceTag marks every diagnostic this engine emits.
const SourceTag = "sable"

// RelatedInfo points at a supporting location of a diagnostic.
type RelatedInfo struct {
	Range   source.Range `json:"range"`
	Message string       `json:"message"`
}

// Fix is a positioned replacement proposal.
type Fix struct {
	Range source.Range `json:"range"`
	Text  string       `json:"text"`
}

// Diagnostic is the editor-ready form of a finding: display positions
// instead of byte offsets, one assembled message, supporting locations.
type Diagnostic struct {
	Range    source.Range  `json:"range"`
	Severity diag.Severity `json:"severity"`
	Code     string        `json:"code"`
	Source   string        `json:"source"`
	Message  string        `json:"message"`
	Related  []RelatedInfo `json:"related,omitempty"`
	Fix      *Fix          `json:"fix,omitempty"`
}

// ScanResult maps each path to its ordered diagnostics: primary diagnostics
// in emission order, inverted hints after them. Paths with nothing to report
// are absent.
type ScanResult struct {
	Files map[string][]Diagnostic

	// FixedCount is how many fixes were applied when the scan ran in apply
	// mode.
	FixedCount int
}

// NewScanResult returns an empty result.
func NewScanResult() *ScanResult {
	return &ScanResult{Files: make(map[string][]Diagnostic)}
}

// Paths returns the reported paths in sorted order for deterministic output.
func (r *ScanResult) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for p := range r.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Total counts diagnostics across all files.
func (r *ScanResult) Total() int {
	n := 0
	for _, ds := range r.Files {
		n += len(ds)
	}
	return n
}

// HasErrors reports whether any error-severity diagnostic remains.
func (r *ScanResult) HasErrors() bool {
	for _, ds := range r.Files {
		for i := range ds {
			if ds[i].Severity >= diag.SevError {
				return true
			}
		}
	}
	return false
}
