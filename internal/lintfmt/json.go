package lintfmt

import (
	"encoding/json"
	"io"

	"sable/internal/linter"
	"sable/internal/source"
)

// rangeJSON держит 1-based позиции, как их печатают компиляторы, а не
// 0-based позиции редакторного протокола.
type rangeJSON struct {
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
	EndLine   uint32 `json:"end_line"`
	EndCol    uint32 `json:"end_col"`
}

type relatedJSON struct {
	Range   rangeJSON `json:"range"`
	Message string    `json:"message"`
}

type fixJSON struct {
	Range rangeJSON `json:"range"`
	Text  string    `json:"text"`
}

// DiagnosticJSON представляет одну диагностику в JSON выводе.
type DiagnosticJSON struct {
	File     string        `json:"file"`
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Range    rangeJSON     `json:"range"`
	Related  []relatedJSON `json:"related,omitempty"`
	Fix      *fixJSON      `json:"fix,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Fixed       int              `json:"fixed,omitempty"`
}

func makeRange(r source.Range) rangeJSON {
	return rangeJSON{
		StartLine: r.Start.Line + 1,
		StartCol:  r.Start.Character + 1,
		EndLine:   r.End.Line + 1,
		EndCol:    r.End.Character + 1,
	}
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(res *linter.ScanResult, opts JSONOpts) DiagnosticsOutput {
	entries := flatten(res)
	entries, _ = capEntries(entries, opts.Max)

	diagnostics := make([]DiagnosticJSON, 0, len(entries))
	for _, e := range entries {
		d := e.d
		dj := DiagnosticJSON{
			File:     displayPath(opts.Root, e.path),
			Severity: severityLabel(d.Severity),
			Code:     d.Code,
			Message:  d.Message,
			Range:    makeRange(d.Range),
		}
		if len(d.Related) > 0 {
			dj.Related = make([]relatedJSON, len(d.Related))
			for i, rel := range d.Related {
				dj.Related[i] = relatedJSON{Range: makeRange(rel.Range), Message: rel.Message}
			}
		}
		if d.Fix != nil {
			dj.Fix = &fixJSON{Range: makeRange(d.Fix.Range), Text: d.Fix.Text}
		}
		diagnostics = append(diagnostics, dj)
	}

	fixed := 0
	if res != nil {
		fixed = res.FixedCount
	}
	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Fixed:       fixed,
	}
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, res *linter.ScanResult, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(res, opts))
}
