package rules

import (
	"bytes"

	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
	"sable/internal/source"
)

var bomBytes = []byte{0xEF, 0xBB, 0xBF}

// UnicodeBOM flags a UTF-8 byte order mark at the start of the file.
// The fix deletes the three BOM bytes.
var UnicodeBOM = &Rule{
	Name:     "unicode-bom",
	Code:     diag.LintUnicodeBOM,
	Severity: diag.SevWarning,
	Fixable:  true,
	Doc:      "disallow the Unicode byte order mark",
	Check: func(c *Context, _ *sitter.Node) {
		if !bytes.HasPrefix(c.Content, bomBytes) {
			return
		}
		sp := source.Span{File: c.File, Start: 0, End: 3}
		c.Report(diag.New(diag.SevWarning, diag.LintUnicodeBOM, sp,
			"unexpected Unicode byte order mark").
			WithHelp("save the file without a BOM").
			WithFix(sp, ""))
	},
}
