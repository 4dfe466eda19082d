package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
)

// NoVar flags var declarations. The fix swaps the keyword for let, which
// is scope-narrowing but safe for the far majority of declarations.
var NoVar = &Rule{
	Name:      "no-var",
	Code:      diag.LintNoVar,
	Severity:  diag.SevWarning,
	Fixable:   true,
	Doc:       "require let or const instead of var",
	NodeTypes: []string{"variable_declaration"},
	Check: func(c *Context, n *sitter.Node) {
		kw := n.Child(0)
		if kw == nil || kw.Type() != "var" {
			return
		}
		sp := c.Span(kw)
		c.Report(diag.New(diag.SevWarning, diag.LintNoVar, sp,
			"unexpected var, use let or const instead").
			WithHelp("let scopes the binding to the enclosing block").
			WithFix(sp, "let"))
	},
}
