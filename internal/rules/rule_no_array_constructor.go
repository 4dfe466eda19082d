package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
)

// NoArrayConstructor flags Array() and new Array() with zero or multiple
// arguments. The single-argument form preallocates a length and stays
// allowed.
var NoArrayConstructor = &Rule{
	Name:      "no-array-constructor",
	Code:      diag.LintNoArrayConstructor,
	Severity:  diag.SevWarning,
	Doc:       "disallow Array constructors in favor of array literals",
	NodeTypes: []string{"new_expression", "call_expression"},
	Check:     checkNoArrayConstructor,
}

func checkNoArrayConstructor(c *Context, n *sitter.Node) {
	var callee *sitter.Node
	if n.Type() == "new_expression" {
		callee = n.ChildByFieldName("constructor")
	} else {
		callee = n.ChildByFieldName("function")
	}
	if callee == nil || callee.Type() != "identifier" || c.Text(callee) != "Array" {
		return
	}
	if len(callArguments(n)) == 1 {
		return
	}
	c.Report(diag.New(diag.SevWarning, diag.LintNoArrayConstructor, c.Span(n),
		"the array literal notation [] is preferable").
		WithHelp("use [] or Array.from() instead of the Array constructor"))
}
