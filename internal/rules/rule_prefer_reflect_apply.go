package rules

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
)

// PreferReflectApply flags Function#apply() in favor of Reflect.apply().
//
// Matches both spellings:
//
//	foo.apply(null, args)
//	Function.prototype.apply.call(foo, null, args)
//
// and rewrites them to Reflect.apply(foo, null, args).
var PreferReflectApply = &Rule{
	Name:      "prefer-reflect-apply",
	Code:      diag.LintPreferReflectApply,
	Severity:  diag.SevWarning,
	Fixable:   true,
	Doc:       "prefer Reflect.apply() over Function#apply()",
	NodeTypes: []string{"call_expression"},
	Check:     checkPreferReflectApply,
}

func checkPreferReflectApply(c *Context, n *sitter.Node) {
	callee := n.ChildByFieldName("function")
	if callee == nil || callee.Type() != "member_expression" {
		return
	}
	obj := callee.ChildByFieldName("object")
	prop := callee.ChildByFieldName("property")
	if obj == nil || prop == nil || obj.Type() == "super" {
		return
	}
	args := callArguments(n)

	var replacement string
	switch c.Text(prop) {
	case "apply":
		if len(args) != 2 || !isNullOrUndefined(c, args[0]) || !isArrayOrIdentifier(args[1]) {
			return
		}
		replacement = fmt.Sprintf("Reflect.apply(%s, %s, %s)",
			c.Text(obj), c.Text(args[0]), c.Text(args[1]))
	case "call":
		if !isFunctionPrototypeApply(c, obj) {
			return
		}
		if len(args) != 3 || !isNullOrUndefined(c, args[1]) || !isArrayOrIdentifier(args[2]) {
			return
		}
		replacement = fmt.Sprintf("Reflect.apply(%s, %s, %s)",
			c.Text(args[0]), c.Text(args[1]), c.Text(args[2]))
	default:
		return
	}

	sp := c.Span(n)
	c.Report(diag.New(diag.SevWarning, diag.LintPreferReflectApply, sp,
		"prefer Reflect.apply() over Function#apply()").
		WithHelp("Reflect.apply() is less verbose and easier to understand").
		WithFix(sp, replacement))
}

func callArguments(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	count := int(args.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := args.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func isNullOrUndefined(c *Context, n *sitter.Node) bool {
	switch n.Type() {
	case "null", "undefined":
		return true
	case "identifier":
		return c.Text(n) == "undefined"
	default:
		return false
	}
}

func isArrayOrIdentifier(n *sitter.Node) bool {
	switch n.Type() {
	case "array", "identifier":
		return true
	default:
		return false
	}
}

// isFunctionPrototypeApply matches the Function.prototype.apply chain.
func isFunctionPrototypeApply(c *Context, n *sitter.Node) bool {
	if n.Type() != "member_expression" || c.Text(n.ChildByFieldName("property")) != "apply" {
		return false
	}
	inner := n.ChildByFieldName("object")
	if inner == nil || inner.Type() != "member_expression" {
		return false
	}
	if c.Text(inner.ChildByFieldName("property")) != "prototype" {
		return false
	}
	base := inner.ChildByFieldName("object")
	return base != nil && base.Type() == "identifier" && c.Text(base) == "Function"
}
