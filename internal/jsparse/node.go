package jsparse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/source"
)

// NodeSpan maps a node onto the byte span of its file.
func NodeSpan(n *sitter.Node, file source.FileID) source.Span {
	return source.Span{File: file, Start: n.StartByte(), End: n.EndByte()}
}

// NodeText returns the source bytes the node covers, as a string.
func NodeText(n *sitter.Node, content []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if end > uint32(len(content)) || start > end {
		return ""
	}
	return string(content[start:end])
}

// Walk visits every node in preorder. Return false from fn to skip the
// node's subtree.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		Walk(n.Child(i), fn)
	}
}

// NamedChildren collects the named children of a node. Anonymous nodes
// (punctuation, keywords) are skipped.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	if count == 0 {
		return nil
	}
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// ChildrenOfType collects direct children (named and anonymous) whose
// grammar type matches.
func ChildrenOfType(n *sitter.Node, nodeType string) []*sitter.Node {
	var out []*sitter.Node
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if child := n.Child(i); child.Type() == nodeType {
			out = append(out, child)
		}
	}
	return out
}

// EnclosingOfType walks up the parents looking for a node of the given type.
func EnclosingOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == nodeType {
			return p
		}
	}
	return nil
}
