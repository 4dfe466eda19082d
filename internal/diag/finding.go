package diag

import (
	"sable/internal/source"
)

// Label is a byte-offset span with an optional explanatory message.
type Label struct {
	Span    source.Span
	Message string
}

// Fix is a proposed replacement of one span with new text.
type Fix struct {
	Span        source.Span
	Replacement string
}

// Finding is a raw analysis result in byte-offset form. Parse errors,
// semantic errors, and rule violations all normalize to this shape before
// position translation.
//
// Labels carries at least one entry; Labels[0] anchors the finding where it
// was reported, further labels point at supporting context ("first defined
// here"). The displayed primary range is chosen downstream from all labels.
type Finding struct {
	Severity Severity
	Code     Code
	Rule     string // rule name when produced by the rule engine or a plugin
	Message  string
	Help     string
	Labels   []Label
	Fix      *Fix
}

// Primary returns the anchoring span (the first label).
func (f *Finding) Primary() source.Span {
	if len(f.Labels) == 0 {
		return source.Span{}
	}
	return f.Labels[0].Span
}

// DisplayCode returns the rule name for rule findings and the banded code ID
// for engine findings.
func (f *Finding) DisplayCode() string {
	if f.Rule != "" {
		return f.Rule
	}
	return f.Code.ID()
}
