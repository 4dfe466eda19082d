package jsparse

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
	"sable/internal/source"
)

const (
	// maxSyntaxFindings bounds the harvest on heavily malformed input.
	maxSyntaxFindings = 50
	maxWalkDepth      = 1000
	maxExcerpt        = 40
)

// SyntaxFindings walks the tree and turns ERROR/MISSING nodes into findings.
// A clean tree yields nil. When the tree was parsed without
// AllowReturnOutsideFunction, top-level return statements are flagged too.
func SyntaxFindings(t *Tree, file source.FileID) []diag.Finding {
	var out []diag.Finding
	collectSyntax(t.Root(), t.content, file, &out, 0)
	if !t.opts.AllowReturnOutsideFunction {
		out = append(out, topLevelReturns(t.Root(), file)...)
	}
	return out
}

func collectSyntax(n *sitter.Node, content []byte, file source.FileID, out *[]diag.Finding, depth int) {
	if n == nil || depth > maxWalkDepth || len(*out) >= maxSyntaxFindings {
		return
	}
	switch {
	case n.IsMissing():
		f := diag.NewError(diag.ParseMissingToken, NodeSpan(n, file),
			fmt.Sprintf("missing %q", n.Type())).
			WithHelp(missingHelp(n.Type()))
		*out = append(*out, f)
		// у MISSING нет детей, дальше спускаться незачем
		return
	case n.IsError():
		f := diag.NewError(diag.ParseUnexpectedToken, NodeSpan(n, file),
			"unexpected token"+excerpt(n, content))
		*out = append(*out, f)
		// продолжаем обход: внутри ERROR бывают вложенные MISSING
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		collectSyntax(n.Child(i), content, file, out, depth+1)
	}
}

// topLevelReturns flags return statements that are direct children of the
// program node. The grammar parses them without error, so this is a policy
// check rather than a parse failure.
func topLevelReturns(root *sitter.Node, file source.FileID) []diag.Finding {
	var out []diag.Finding
	count := int(root.ChildCount())
	for i := 0; i < count; i++ {
		child := root.Child(i)
		if child.Type() != "return_statement" {
			continue
		}
		out = append(out, diag.NewError(diag.ParseTopLevelReturn, NodeSpan(child, file),
			"return statement outside of function").
			WithHelp("wrap the statement in a function, or treat the file as a script"))
	}
	return out
}

func excerpt(n *sitter.Node, content []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if end > uint32(len(content)) {
		end = uint32(len(content))
	}
	if end <= start || end-start > maxExcerpt {
		return ""
	}
	return fmt.Sprintf(" %q", content[start:end])
}

func missingHelp(tokenType string) string {
	switch tokenType {
	case "}", "]", ")":
		return fmt.Sprintf("add the missing closing %q", tokenType)
	case "{", "[", "(":
		return fmt.Sprintf("add the missing opening %q", tokenType)
	case ";":
		return "add the missing semicolon"
	default:
		return fmt.Sprintf("add the missing %q", tokenType)
	}
}
