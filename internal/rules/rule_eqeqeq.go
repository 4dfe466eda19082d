package rules

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
)

// Eqeqeq requires strict equality operators.
//
// The fix upgrades == to === and != to !== except when one side is null:
// `x == null` deliberately matches both null and undefined, so rewriting
// it changes behavior.
var Eqeqeq = &Rule{
	Name:      "eqeqeq",
	Code:      diag.LintEqeqeq,
	Severity:  diag.SevWarning,
	Fixable:   true,
	Doc:       "require === and !== over == and !=",
	NodeTypes: []string{"binary_expression"},
	Check:     checkEqeqeq,
}

func checkEqeqeq(c *Context, n *sitter.Node) {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return
	}
	var want string
	switch c.Text(op) {
	case "==":
		want = "==="
	case "!=":
		want = "!=="
	default:
		return
	}

	f := diag.New(diag.SevWarning, diag.LintEqeqeq, c.Span(op),
		fmt.Sprintf("expected '%s' and instead saw '%s'", want, c.Text(op))).
		WithHelp("use strict equality to avoid implicit type coercion")

	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if !isNullLiteral(left) && !isNullLiteral(right) {
		f = f.WithFix(c.Span(op), want)
	}
	c.Report(f)
}

func isNullLiteral(n *sitter.Node) bool {
	return n != nil && n.Type() == "null"
}
