package plugin

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
	"sable/internal/jsparse"
	"sable/internal/source"
)

const (
	// maxWholeFileMatches bounds file-level pattern findings per rule.
	maxWholeFileMatches = 100
	// cancelCheckStride is how many nodes pass between ctx checks.
	cancelCheckStride = 256
)

// Check runs the set over one parsed file. A plugin failure is fatal for
// this file and surfaces as the returned error; the caller decides what
// happens to the rest of the scan.
func (s *Set) Check(ctx context.Context, tree *jsparse.Tree, file source.FileID) (findings []diag.Finding, err error) {
	if s == nil || len(s.rules) == 0 {
		return nil, nil
	}
	defer func() {
		// паника в правиле валит только этот файл
		if r := recover(); r != nil {
			findings = nil
			err = fmt.Errorf("plugin: rule panicked: %v", r)
		}
	}()

	content := tree.Content()
	for _, rule := range s.whole {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, loc := range rule.re.FindAllIndex(content, maxWholeFileMatches) {
			findings = append(findings, rule.finding(file, uint32(loc[0]), uint32(loc[1])))
		}
	}
	if len(s.byNode) == 0 {
		return findings, nil
	}

	visited := 0
	canceled := false
	jsparse.Walk(tree.Root(), func(n *sitter.Node) bool {
		if canceled {
			return false
		}
		visited++
		if visited%cancelCheckStride == 0 && ctx.Err() != nil {
			canceled = true
			return false
		}
		rules := s.byNode[n.Type()]
		if len(rules) == 0 {
			return true
		}
		text := content[n.StartByte():n.EndByte()]
		for _, rule := range rules {
			loc := rule.re.FindIndex(text)
			if loc == nil {
				continue
			}
			start := n.StartByte() + uint32(loc[0])
			end := n.StartByte() + uint32(loc[1])
			findings = append(findings, rule.finding(file, start, end))
		}
		return true
	})
	if canceled {
		return nil, ctx.Err()
	}
	return findings, nil
}

func (r *Rule) finding(file source.FileID, start, end uint32) diag.Finding {
	f := diag.New(r.Severity, diag.PluginRuleMatch,
		source.Span{File: file, Start: start, End: end}, r.Message).
		WithRule(r.Name)
	if r.Help != "" {
		f = f.WithHelp(r.Help)
	}
	return f
}
