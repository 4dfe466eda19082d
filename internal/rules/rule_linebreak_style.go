package rules

import (
	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
	"sable/internal/source"
)

// LinebreakStyle flags CRLF line endings. One finding per line, each with
// a fix deleting the carriage return.
var LinebreakStyle = &Rule{
	Name:     "linebreak-style",
	Code:     diag.LintLinebreakStyle,
	Severity: diag.SevWarning,
	Fixable:  true,
	Doc:      "enforce LF line endings",
	Check: func(c *Context, _ *sitter.Node) {
		for i := 0; i+1 < len(c.Content); i++ {
			if c.Content[i] != '\r' || c.Content[i+1] != '\n' {
				continue
			}
			cr, err := safecast.Conv[uint32](i)
			if err != nil {
				return
			}
			sp := source.Span{File: c.File, Start: cr, End: cr + 1}
			c.Report(diag.New(diag.SevWarning, diag.LintLinebreakStyle, sp,
				"expected linebreaks to be LF but found CRLF").
				WithFix(sp, ""))
			i++
		}
	},
}
