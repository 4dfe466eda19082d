package diag

import "sable/internal/source"

func New(sev Severity, code Code, span source.Span, msg string) Finding {
	return Finding{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Labels:   []Label{{Span: span}},
	}
}

func NewError(code Code, span source.Span, msg string) Finding {
	return New(SevError, code, span, msg)
}

func NewWarning(code Code, span source.Span, msg string) Finding {
	return New(SevWarning, code, span, msg)
}

// WithLabel appends a context label.
func (f Finding) WithLabel(sp source.Span, msg string) Finding {
	f.Labels = append(f.Labels, Label{Span: sp, Message: msg})
	return f
}

// WithLabelMessage sets the message of the anchoring label.
func (f Finding) WithLabelMessage(msg string) Finding {
	if len(f.Labels) > 0 {
		f.Labels[0].Message = msg
	}
	return f
}

// WithHelp attaches a help string rendered on its own line after the message.
func (f Finding) WithHelp(help string) Finding {
	f.Help = help
	return f
}

// WithFix attaches a replacement for the given span.
func (f Finding) WithFix(sp source.Span, replacement string) Finding {
	f.Fix = &Fix{Span: sp, Replacement: replacement}
	return f
}

// WithRule tags the finding with a rule name.
func (f Finding) WithRule(name string) Finding {
	f.Rule = name
	return f
}

// WithSeverity overrides the severity (config-driven rule overrides).
func (f Finding) WithSeverity(sev Severity) Finding {
	f.Severity = sev
	return f
}
