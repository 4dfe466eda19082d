package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
)

// NoEmpty flags empty block statements and empty switch bodies. A block
// holding only a comment is considered intentional and stays quiet.
// Function bodies are exempt: an empty callback is a common idiom.
var NoEmpty = &Rule{
	Name:      "no-empty",
	Code:      diag.LintNoEmpty,
	Severity:  diag.SevWarning,
	Doc:       "disallow empty block statements",
	NodeTypes: []string{"statement_block", "switch_body"},
	Check:     checkNoEmpty,
}

func checkNoEmpty(c *Context, n *sitter.Node) {
	// комментарии - именованные узлы, пустота означает и их отсутствие
	if n.NamedChildCount() != 0 {
		return
	}
	parent := n.Parent()
	if parent == nil || isFunctionLike(parent.Type()) {
		return
	}
	msg := "empty block statement"
	if n.Type() == "switch_body" {
		msg = "empty switch statement"
	}
	c.Report(diag.New(diag.SevWarning, diag.LintNoEmpty, c.Span(n), msg).
		WithHelp("add a comment inside if the empty block is intentional"))
}

func isFunctionLike(nodeType string) bool {
	switch nodeType {
	case "function_declaration", "function_expression", "function",
		"generator_function", "generator_function_declaration",
		"arrow_function", "method_definition", "class_static_block":
		return true
	default:
		return false
	}
}
