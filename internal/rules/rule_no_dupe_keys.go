package rules

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
	"sable/internal/jsparse"
	"sable/internal/source"
)

// NoDupeKeys flags duplicate keys in object literals. A getter and a
// setter under the same name are fine; two getters, two setters, or a
// plain property next to either are not.
var NoDupeKeys = &Rule{
	Name:      "no-dupe-keys",
	Code:      diag.LintNoDupeKeys,
	Severity:  diag.SevError,
	Doc:       "disallow duplicate keys in object literals",
	NodeTypes: []string{"object"},
	Check:     checkNoDupeKeys,
}

const (
	keyGetter uint8 = 1 << iota
	keySetter
	keyNormal = keyGetter | keySetter
)

func checkNoDupeKeys(c *Context, n *sitter.Node) {
	type seenKey struct {
		span  source.Span
		kinds uint8
	}
	seen := make(map[string]*seenKey)

	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)

		var keyNode *sitter.Node
		kind := keyNormal
		switch child.Type() {
		case "pair":
			keyNode = child.ChildByFieldName("key")
		case "shorthand_property_identifier":
			keyNode = child
		case "method_definition":
			keyNode = child.ChildByFieldName("name")
			switch {
			case len(jsparse.ChildrenOfType(child, "get")) > 0:
				kind = keyGetter
			case len(jsparse.ChildrenOfType(child, "set")) > 0:
				kind = keySetter
			}
		default:
			// spread_element, комментарии и пр.
			continue
		}

		name, ok := propertyKeyName(c, keyNode)
		if !ok {
			continue
		}
		prev := seen[name]
		if prev == nil {
			seen[name] = &seenKey{span: c.Span(keyNode), kinds: kind}
			continue
		}
		if prev.kinds&kind != 0 {
			c.Report(diag.New(diag.SevError, diag.LintNoDupeKeys, c.Span(keyNode),
				fmt.Sprintf("duplicate key %q", name)).
				WithLabel(prev.span, "first defined here").
				WithHelp("the later definition silently wins; remove or rename one of them"))
		}
		prev.kinds |= kind
	}
}

// propertyKeyName resolves a literal object key. Computed keys are skipped.
func propertyKeyName(c *Context, key *sitter.Node) (string, bool) {
	if key == nil {
		return "", false
	}
	switch key.Type() {
	case "property_identifier", "shorthand_property_identifier", "number":
		return c.Text(key), true
	case "string":
		// сравниваем по содержимому, '' и "" эквивалентны
		count := int(key.NamedChildCount())
		for i := 0; i < count; i++ {
			if frag := key.NamedChild(i); frag.Type() == "string_fragment" {
				return c.Text(frag), true
			}
		}
		return "", true // пустой строковый ключ
	default:
		return "", false
	}
}
