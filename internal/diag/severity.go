package diag

// Severity defines the importance of a finding.
type Severity uint8

const (
	// SevHint marks synthesized context findings (inverted related info).
	SevHint Severity = iota
	// SevInfo is for informational findings.
	SevInfo
	// SevWarning is for warning findings.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevHint:
		return "HINT"
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity maps a config spelling to a Severity. Unknown spellings
// report ok=false.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "hint":
		return SevHint, true
	case "info":
		return SevInfo, true
	case "warn", "warning":
		return SevWarning, true
	case "error":
		return SevError, true
	}
	return SevInfo, false
}
