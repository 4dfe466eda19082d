package lintfmt

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sable/internal/diag"
	"sable/internal/linter"
	"sable/internal/source"
)

var (
	errStyle    = color.New(color.FgRed, color.Bold)
	warnStyle   = color.New(color.FgYellow, color.Bold)
	infoStyle   = color.New(color.FgBlue, color.Bold)
	hintStyle   = color.New(color.FgCyan)
	pathStyle   = color.New(color.Bold)
	gutterStyle = color.New(color.FgHiBlack)
	delStyle    = color.New(color.FgRed)
	addStyle    = color.New(color.FgGreen)
)

func severityStyle(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errStyle
	case diag.SevWarning:
		return warnStyle
	case diag.SevHint:
		return hintStyle
	default:
		return infoStyle
	}
}

func paint(c *color.Color, on bool, s string) string {
	if !on {
		return s
	}
	return c.Sprint(s)
}

// Pretty renders diagnostics with code frames. For each diagnostic it
// prints a header line
//
//	<path>:<line>:<col>: <SEV> <code>: <message>
//
// then the offending source line with a ^~~~ underline, then any help
// text, related locations and a fix preview. Lines and columns display
// 1-based. File content is re-read from disk; a file that no longer
// reads keeps its header but loses the frame.
func Pretty(w io.Writer, res *linter.ScanResult, opts PrettyOpts) {
	entries := flatten(res)
	entries, more := capEntries(entries, opts.Max)

	var (
		cachePath  string
		cacheBytes []byte
		cacheIdx   *source.LineIndex
	)
	for _, e := range entries {
		if e.path != cachePath {
			cachePath = e.path
			cacheBytes, cacheIdx = nil, nil
			if content, err := os.ReadFile(e.path); err == nil {
				cacheBytes = content
				cacheIdx = source.NewLineIndex(content)
			}
		}
		prettyOne(w, e, cacheBytes, cacheIdx, opts)
	}

	if more > 0 {
		fmt.Fprintln(w, paint(gutterStyle, opts.Color, fmt.Sprintf("... and %d more diagnostics", more)))
	}
}

func prettyOne(w io.Writer, e entry, content []byte, ix *source.LineIndex, opts PrettyOpts) {
	d := e.d
	headline, rest := splitMessage(d.Message)

	loc := fmt.Sprintf("%s:%d:%d:", displayPath(opts.Root, e.path), d.Range.Start.Line+1, d.Range.Start.Character+1)
	sev := fmt.Sprintf("%s %s:", d.Severity.String(), d.Code)
	fmt.Fprintf(w, "%s %s %s\n", paint(pathStyle, opts.Color, loc), paint(severityStyle(d.Severity), opts.Color, sev), headline)

	if ix != nil {
		prettyFrame(w, d, content, ix, opts)
	}

	for _, line := range rest {
		fmt.Fprintf(w, "  %s\n", line)
	}

	for _, rel := range d.Related {
		if rel.Range == d.Range {
			continue
		}
		note := fmt.Sprintf("note: %s:%d:%d: %s",
			displayPath(opts.Root, e.path), rel.Range.Start.Line+1, rel.Range.Start.Character+1, rel.Message)
		fmt.Fprintf(w, "  %s\n", paint(gutterStyle, opts.Color, note))
	}

	if d.Fix != nil && ix != nil {
		prettyFixPreview(w, d.Fix, content, ix, opts)
	}

	fmt.Fprintln(w)
}

// splitMessage separates the headline from trailing lines (help text).
func splitMessage(msg string) (string, []string) {
	lines := strings.Split(msg, "\n")
	return lines[0], lines[1:]
}

func prettyFrame(w io.Writer, d linter.Diagnostic, content []byte, ix *source.LineIndex, opts PrettyOpts) {
	primary := d.Range
	startLine := primary.Start.Line
	if startLine >= ix.LineCount() {
		return
	}

	first, last := startLine, startLine
	ctx := uint32(0)
	if opts.Context > 0 {
		ctx = uint32(opts.Context)
	}
	if first > ctx {
		first -= ctx
	} else {
		first = 0
	}
	last += ctx
	if lastIdx := ix.LineCount() - 1; last > lastIdx {
		last = lastIdx
	}

	gutterW := len(fmt.Sprintf("%d", last+1))
	for line := first; line <= last; line++ {
		text := string(ix.LineSlice(content, line))
		shown := text
		if opts.Width > 3 && runewidth.StringWidth(shown) > opts.Width {
			shown = runewidth.Truncate(shown, opts.Width-3, "...")
		}
		gutter := fmt.Sprintf("%*d | ", gutterW, line+1)
		fmt.Fprintf(w, "%s%s\n", paint(gutterStyle, opts.Color, gutter), shown)

		if line != startLine {
			continue
		}
		prefix, carets := underline(text, primary)
		if carets == "" {
			continue
		}
		if opts.Width > 3 && runewidth.StringWidth(prefix) >= opts.Width-3 {
			continue
		}
		caretLine := paint(severityStyle(d.Severity), opts.Color, carets)
		if label := primaryLabel(d); label != "" {
			caretLine += " " + paint(severityStyle(d.Severity), opts.Color, label)
		}
		pad := fmt.Sprintf("%*s | ", gutterW, "")
		fmt.Fprintf(w, "%s%s%s\n", paint(gutterStyle, opts.Color, pad), prefix, caretLine)
	}
}

// underline builds the alignment prefix and the ^~~~ marker for the
// primary range on its first line. Tabs stay tabs so the marker lines up
// under the rendered source; everything else becomes spaces sized by
// display width.
func underline(line string, r source.Range) (string, string) {
	start := int(r.Start.Character)
	if start > len(line) {
		start = len(line)
	}
	var prefix strings.Builder
	for _, ru := range line[:start] {
		if ru == '\t' {
			prefix.WriteByte('\t')
		} else {
			prefix.WriteString(strings.Repeat(" ", runewidth.RuneWidth(ru)))
		}
	}

	end := len(line)
	if r.End.Line == r.Start.Line && int(r.End.Character) < end {
		end = int(r.End.Character)
	}
	if end < start {
		end = start
	}
	width := runewidth.StringWidth(line[start:end])
	if width < 1 {
		width = 1
	}
	return prefix.String(), "^" + strings.Repeat("~", width-1)
}

// primaryLabel finds the related entry that annotates the primary range
// itself; its message prints next to the caret.
func primaryLabel(d linter.Diagnostic) string {
	for _, rel := range d.Related {
		if rel.Range == d.Range && rel.Message != "" && rel.Message != d.Message {
			return rel.Message
		}
	}
	return ""
}

func prettyFixPreview(w io.Writer, fx *linter.Fix, content []byte, ix *source.LineIndex, opts PrettyOpts) {
	before, after, ok := fixPreview(content, ix, fx)
	if !ok {
		return
	}
	fmt.Fprintf(w, "  %s\n", paint(gutterStyle, opts.Color, "preview:"))
	for _, line := range before {
		fmt.Fprintf(w, "  %s\n", paint(delStyle, opts.Color, "- "+line))
	}
	for _, line := range after {
		fmt.Fprintf(w, "  %s\n", paint(addStyle, opts.Color, "+ "+line))
	}
}

// fixPreview cuts the whole lines covered by the fix range and splices
// the replacement in, so the caller can show a before/after diff.
func fixPreview(content []byte, ix *source.LineIndex, fx *linter.Fix) (before, after []string, ok bool) {
	blockStart, okStart := ix.LineStart(fx.Range.Start.Line)
	if !okStart {
		return nil, nil, false
	}
	blockEnd := ix.Size()
	if next, okNext := ix.LineStart(fx.Range.End.Line + 1); okNext {
		blockEnd = next
	}

	relStart, okS := ix.Offset(fx.Range.Start)
	relEnd, okE := ix.Offset(fx.Range.End)
	if !okS || !okE || relStart < blockStart || relEnd > blockEnd || relEnd < relStart {
		return nil, nil, false
	}

	original := content[blockStart:blockEnd]
	patched := make([]byte, 0, len(original)+len(fx.Text))
	patched = append(patched, original[:relStart-blockStart]...)
	patched = append(patched, fx.Text...)
	patched = append(patched, original[relEnd-blockStart:]...)

	return previewLines(original), previewLines(patched), true
}

func previewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimRight(string(content), "\n"), "\n")
}
