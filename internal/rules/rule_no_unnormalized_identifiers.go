package rules

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/text/unicode/norm"

	"sable/internal/diag"
)

// NoUnnormalizedIdentifiers flags identifiers that are not in Unicode NFC.
// Two visually identical names can differ in code points (é as one rune
// versus e plus a combining accent) and silently become two bindings.
// The fix rewrites the identifier to its NFC form.
var NoUnnormalizedIdentifiers = &Rule{
	Name:     "no-unnormalized-identifiers",
	Code:     diag.LintUnnormalizedIdent,
	Severity: diag.SevWarning,
	Fixable:  true,
	Doc:      "require identifiers to be in Unicode NFC form",
	NodeTypes: []string{
		"identifier",
		"property_identifier",
		"shorthand_property_identifier",
		"shorthand_property_identifier_pattern",
		"type_identifier",
	},
	Check: checkNoUnnormalizedIdentifiers,
}

func checkNoUnnormalizedIdentifiers(c *Context, n *sitter.Node) {
	text := c.Text(n)
	if norm.NFC.IsNormalString(text) {
		return
	}
	sp := c.Span(n)
	c.Report(diag.New(diag.SevWarning, diag.LintUnnormalizedIdent, sp,
		fmt.Sprintf("identifier %q is not in Unicode NFC form", text)).
		WithHelp("normalize the identifier so equal-looking names compare equal").
		WithFix(sp, norm.NFC.String(text)))
}
