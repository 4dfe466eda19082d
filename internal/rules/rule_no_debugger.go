package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
)

// NoDebugger flags debugger statements. The fix deletes the statement.
var NoDebugger = &Rule{
	Name:      "no-debugger",
	Code:      diag.LintNoDebugger,
	Severity:  diag.SevError,
	Fixable:   true,
	Doc:       "disallow debugger statements",
	NodeTypes: []string{"debugger_statement"},
	Check: func(c *Context, n *sitter.Node) {
		sp := c.Span(n)
		c.Report(diag.New(diag.SevError, diag.LintNoDebugger, sp,
			"unexpected debugger statement").
			WithHelp("remove the debugger statement").
			WithFix(sp, ""))
	},
}
