// Package rules hosts the built-in lint rules and the engine that runs them.
//
// A rule subscribes to grammar node types; the engine walks the tree once
// and dispatches every node to the rules that asked for its type. Rules
// with no subscription run once against the whole file. Findings carry the
// rule name and the severity resolved from configuration, plus a fix when
// the rule knows how to rewrite the offending bytes.
package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
	"sable/internal/dialect"
	"sable/internal/jsparse"
	"sable/internal/sema"
	"sable/internal/source"
)

// Rule is one lint check.
type Rule struct {
	Name     string        // stable kebab-case identifier
	Code     diag.Code
	Severity diag.Severity // default; configuration may override
	Fixable  bool
	Doc      string // one-line description for rule listings

	// NodeTypes are the grammar node types the rule wants to see.
	// An empty list means the rule runs once per file with the root node.
	NodeTypes []string

	Check func(*Context, *sitter.Node)
}

// Enabled pairs a rule with its resolved severity.
type Enabled struct {
	Rule     *Rule
	Severity diag.Severity
}

// Context is what a rule sees while checking one file.
type Context struct {
	File    source.FileID
	Content []byte
	Dialect dialect.Kind
	Sema    *sema.Result

	rule     *Rule
	severity diag.Severity
	sink     *[]diag.Finding
}

// Report records a finding, stamping it with the rule name and severity.
func (c *Context) Report(f diag.Finding) {
	f.Rule = c.rule.Name
	f.Severity = c.severity
	*c.sink = append(*c.sink, f)
}

// Text returns the source text of a node; nil nodes yield "".
func (c *Context) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return jsparse.NodeText(n, c.Content)
}

// Span maps a node onto this file's byte span.
func (c *Context) Span(n *sitter.Node) source.Span {
	return jsparse.NodeSpan(n, c.File)
}

// Run executes the enabled rules over the tree in one walk.
// Findings come out in emission order: whole-file rules first, then tree
// order, and within one node the order the rules were enabled in.
func Run(tree *jsparse.Tree, file source.FileID, semaRes *sema.Result, enabled []Enabled) []diag.Finding {
	if len(enabled) == 0 {
		return nil
	}
	var findings []diag.Finding
	ctxs := make([]Context, len(enabled))
	for i, en := range enabled {
		ctxs[i] = Context{
			File:     file,
			Content:  tree.Content(),
			Dialect:  tree.Dialect(),
			Sema:     semaRes,
			rule:     en.Rule,
			severity: en.Severity,
			sink:     &findings,
		}
	}

	byType := make(map[string][]int)
	for i, en := range enabled {
		if len(en.Rule.NodeTypes) == 0 {
			en.Rule.Check(&ctxs[i], tree.Root())
			continue
		}
		for _, t := range en.Rule.NodeTypes {
			byType[t] = append(byType[t], i)
		}
	}
	if len(byType) == 0 {
		return findings
	}

	jsparse.Walk(tree.Root(), func(n *sitter.Node) bool {
		for _, i := range byType[n.Type()] {
			enabled[i].Rule.Check(&ctxs[i], n)
		}
		return true
	})
	return findings
}

// StripFixes drops fixes from findings. The check pipeline calls this when
// fixing is off, so fixes only survive into results the caller asked for.
func StripFixes(findings []diag.Finding) {
	for i := range findings {
		findings[i].Fix = nil
	}
}
