package lintfmt

import (
	"fmt"
	"io"
	"sort"

	"sable/internal/linter"
)

// Short renders one line per diagnostic in a stable order:
//
//	<path>:<line>:<col>: <severity>: <message> [<code>]
//
// sorted by path, line, column, severity, code, message. Lines and
// columns display 1-based; help text stays out.
func Short(w io.Writer, res *linter.ScanResult, opts ShortOpts) {
	entries := flatten(res)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.path != b.path {
			return a.path < b.path
		}
		if c := a.d.Range.Start.Compare(b.d.Range.Start); c != 0 {
			return c < 0
		}
		if a.d.Severity != b.d.Severity {
			return a.d.Severity > b.d.Severity
		}
		if a.d.Code != b.d.Code {
			return a.d.Code < b.d.Code
		}
		return a.d.Message < b.d.Message
	})
	entries, more := capEntries(entries, opts.Max)

	for _, e := range entries {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s [%s]\n",
			displayPath(opts.Root, e.path),
			e.d.Range.Start.Line+1, e.d.Range.Start.Character+1,
			severityLabel(e.d.Severity), firstLine(e.d.Message), e.d.Code)
	}
	if more > 0 {
		fmt.Fprintf(w, "... and %d more diagnostics\n", more)
	}
}
