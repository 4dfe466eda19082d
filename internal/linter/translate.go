package linter

import (
	"sable/internal/diag"
	"sable/internal/source"
)

// relatedBackRef labels the pointer from an inverted hint to the diagnostic
// it was derived from.
const relatedBackRef = "original diagnostic"

// Translate converts one file's raw findings into positioned diagnostics.
//
// Every labeled span maps through the file's line index; an out-of-range
// offset degrades to position (0,0) for that endpoint and never fails the
// file. The displayed primary range is the lexicographic minimum over all
// label ranges on (start line, start col, end line, end col). Every label
// also becomes a related entry, and each related entry whose range differs
// from the primary spawns an inverted hint at that location pointing back at
// the primary. Primaries keep emission order; hints follow them.
func Translate(file *source.File, findings []diag.Finding) []Diagnostic {
	if len(findings) == 0 {
		return nil
	}

	out := make([]Diagnostic, 0, len(findings))
	var hints []Diagnostic

	for i := range findings {
		f := &findings[i]
		if len(f.Labels) == 0 {
			continue
		}

		ranges := make([]source.Range, len(f.Labels))
		for j, lb := range f.Labels {
			ranges[j] = mapSpan(file, lb.Span)
		}

		primary := ranges[0]
		for _, r := range ranges[1:] {
			if r.Compare(primary) < 0 {
				primary = r
			}
		}

		d := Diagnostic{
			Range:    primary,
			Severity: f.Severity,
			Code:     f.DisplayCode(),
			Source:   SourceTag,
			Message:  assembleMessage(f),
		}
		for j, lb := range f.Labels {
			d.Related = append(d.Related, RelatedInfo{Range: ranges[j], Message: lb.Message})
		}
		if f.Fix != nil {
			d.Fix = &Fix{Range: mapSpan(file, f.Fix.Span), Text: f.Fix.Replacement}
		}
		out = append(out, d)

		for j, lb := range f.Labels {
			if ranges[j] == primary {
				continue
			}
			msg := lb.Message
			if msg == "" {
				msg = f.Message
			}
			hints = append(hints, Diagnostic{
				Range:    ranges[j],
				Severity: diag.SevHint,
				Code:     f.DisplayCode(),
				Source:   SourceTag,
				Message:  msg,
				Related:  []RelatedInfo{{Range: primary, Message: relatedBackRef}},
			})
		}
	}

	return append(out, hints...)
}

// mapSpan maps both endpoints independently; a failing endpoint degrades to
// (0,0) rather than failing the whole file.
func mapSpan(file *source.File, sp source.Span) source.Range {
	var r source.Range
	if p, ok := file.Lines.Position(sp.Start); ok {
		r.Start = p
	}
	if p, ok := file.Lines.Position(sp.End); ok {
		r.End = p
	}
	return r
}

func assembleMessage(f *diag.Finding) string {
	if f.Help == "" {
		return f.Message
	}
	return f.Message + "\nhelp: " + f.Help
}
