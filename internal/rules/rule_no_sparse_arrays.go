package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
)

// NoSparseArrays flags holes in array literals: [1, , 2]. A trailing
// comma before the closing bracket is not a hole.
var NoSparseArrays = &Rule{
	Name:      "no-sparse-arrays",
	Code:      diag.LintNoSparseArrays,
	Severity:  diag.SevWarning,
	Doc:       "disallow sparse array literals",
	NodeTypes: []string{"array"},
	Check:     checkNoSparseArrays,
}

func checkNoSparseArrays(c *Context, n *sitter.Node) {
	// дырка - это запятая сразу после [ или после другой запятой
	afterSeparator := false
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		switch child.Type() {
		case "[":
			afterSeparator = true
		case ",":
			if afterSeparator {
				c.Report(diag.New(diag.SevWarning, diag.LintNoSparseArrays, c.Span(child),
					"unexpected comma in middle of array").
					WithHelp("add the missing element or remove the extra comma"))
			}
			afterSeparator = true
		case "]", "comment":
			// конец литерала либо комментарий, дырку не закрывает
		default:
			afterSeparator = false
		}
	}
}
