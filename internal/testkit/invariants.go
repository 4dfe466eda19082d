// Package testkit holds invariant checkers shared by tests across packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"sable/internal/diag"
	"sable/internal/source"
)

// CheckFindingInvariants runs the span invariants every raw finding must
// hold:
// 1) at least one label, and every label addresses the analyzed file
// 2) label spans are ordered (Start <= End) and within content bounds
// 3) a fix span, when present, obeys the same bounds
//
// Label ORDER is deliberately unconstrained: supporting labels may precede
// the anchor (a duplicate points back at the first occurrence). The display
// primary is picked during translation, not here.
func CheckFindingInvariants(f *diag.Finding, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil finding or file")
	}
	if len(f.Labels) == 0 {
		return fmt.Errorf("finding %s has no labels", f.DisplayCode())
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	for i, lb := range f.Labels {
		sp := lb.Span
		if sp.File != sf.ID {
			return fmt.Errorf("label %d file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if sp.End < sp.Start {
			return fmt.Errorf("label %d span inverted: %v", i, sp)
		}
		if sp.End > lenContent {
			return fmt.Errorf("label %d span end beyond content: %d > %d", i, sp.End, lenContent)
		}
	}

	if f.Fix != nil {
		sp := f.Fix.Span
		if sp.File != sf.ID {
			return fmt.Errorf("fix span file mismatch: got=%d want=%d", sp.File, sf.ID)
		}
		if sp.End < sp.Start {
			return fmt.Errorf("fix span inverted: %v", sp)
		}
		if sp.End > lenContent {
			return fmt.Errorf("fix span end beyond content: %d > %d", sp.End, lenContent)
		}
	}
	return nil
}

// CheckAll applies CheckFindingInvariants to a whole result set.
func CheckAll(findings []diag.Finding, sf *source.File) error {
	for i := range findings {
		if err := CheckFindingInvariants(&findings[i], sf); err != nil {
			return fmt.Errorf("finding %d: %w", i, err)
		}
	}
	return nil
}
