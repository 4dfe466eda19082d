package lintfmt

// PrettyOpts configures the human-readable renderer.
type PrettyOpts struct {
	Color   bool
	Root    string // paths render relative to this, "" keeps them as-is
	Context int8   // context lines around the primary line
	Width   int    // максимальная ширина строки кода, 0 - не ограничено
	Max     int    // обрезка вывода, 0 - без лимита
}

// ShortOpts configures the one-line-per-entry renderer.
type ShortOpts struct {
	Root string
	Max  int
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	Root string
	Max  int
}

// SarifOpts configures SARIF output.
type SarifOpts struct {
	Root string
	Max  int
}

// SarifRunMeta provides run metadata for SARIF output.
type SarifRunMeta struct {
	ToolName    string
	ToolVersion string
}
