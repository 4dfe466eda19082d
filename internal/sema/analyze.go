package sema

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"sable/internal/diag"
	"sable/internal/jsparse"
	"sable/internal/source"
)

// Result carries the scope tree and the early-error findings for one file.
type Result struct {
	Root     *Scope
	Interner *source.Interner
	Findings []diag.Finding
}

// Analyze builds scopes for the tree and reports early errors.
// The interner may be shared across files; nil allocates a private one.
func Analyze(tree *jsparse.Tree, file source.FileID, interner *source.Interner) *Result {
	if interner == nil {
		interner = source.NewInterner()
	}
	b := &builder{
		content:  tree.Content(),
		file:     file,
		interner: interner,
	}
	root := newScope(ScopeProgram, nil)
	b.walkChildren(tree.Root(), root)
	return &Result{Root: root, Interner: interner, Findings: b.findings}
}

type builder struct {
	content  []byte
	file     source.FileID
	interner *source.Interner
	findings []diag.Finding
}

func (b *builder) walkChildren(n *sitter.Node, sc *Scope) {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		b.walk(n.Child(i), sc)
	}
}

func (b *builder) walk(n *sitter.Node, sc *Scope) {
	switch n.Type() {
	case "function_declaration", "generator_function_declaration":
		if id := n.ChildByFieldName("name"); id != nil {
			b.declare(sc, id, BindFunction)
		}
		b.walkFunction(n, sc)

	// анонимные формы: имя (если есть) видно только внутри
	case "function", "function_expression", "generator_function", "arrow_function", "method_definition":
		b.walkFunction(n, sc)

	case "class_declaration":
		if id := n.ChildByFieldName("name"); id != nil {
			b.declare(sc, id, BindClass)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			b.walkChildren(body, sc)
		}

	case "statement_block", "switch_body":
		b.walkChildren(n, newScope(ScopeBlock, sc))

	case "for_statement", "for_in_statement":
		// заголовок цикла и тело живут в одной дочерней области
		b.walkChildren(n, newScope(ScopeBlock, sc))

	case "catch_clause":
		inner := newScope(ScopeBlock, sc)
		if param := n.ChildByFieldName("parameter"); param != nil {
			b.patternNames(param, func(id *sitter.Node) { b.declare(inner, id, BindCatch) })
		}
		if body := n.ChildByFieldName("body"); body != nil {
			// параметр catch делит область с телом
			b.walkChildren(body, inner)
		}

	case "variable_declaration":
		b.declarators(n, sc, BindVar)
		b.walkChildren(n, sc)

	case "lexical_declaration":
		kind := BindLet
		if first := n.Child(0); first != nil && first.Type() == "const" {
			kind = BindConst
		}
		b.declarators(n, sc, kind)
		b.walkChildren(n, sc)

	case "import_statement":
		b.importBindings(n, sc)

	default:
		b.walkChildren(n, sc)
	}
}

// walkFunction opens a function scope and walks parameters plus body.
// The body block shares the scope with the parameters, so `function f(a)
// { let a }` is a redeclaration while `function f(a) { { let a } }` is not.
func (b *builder) walkFunction(n *sitter.Node, sc *Scope) {
	inner := newScope(ScopeFunction, sc)
	if params := n.ChildByFieldName("parameters"); params != nil {
		b.params(params, inner)
	} else if p := n.ChildByFieldName("parameter"); p != nil {
		// x => ...
		b.patternNames(p, func(id *sitter.Node) { b.declare(inner, id, BindParam) })
	}
	if body := n.ChildByFieldName("body"); body != nil {
		if body.Type() == "statement_block" {
			b.walkChildren(body, inner)
		} else {
			b.walk(body, inner)
		}
	}
}

func (b *builder) params(params *sitter.Node, sc *Scope) {
	for _, p := range jsparse.NamedChildren(params) {
		node := p
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			// TS-грамматика оборачивает образец параметра
			if pat := p.ChildByFieldName("pattern"); pat != nil {
				node = pat
			}
		}
		b.patternNames(node, func(id *sitter.Node) { b.declare(sc, id, BindParam) })
	}
}

func (b *builder) declarators(n *sitter.Node, sc *Scope, kind BindKind) {
	for _, d := range jsparse.ChildrenOfType(n, "variable_declarator") {
		if name := d.ChildByFieldName("name"); name != nil {
			b.patternNames(name, func(id *sitter.Node) { b.declare(sc, id, kind) })
		}
	}
}

// patternNames extracts the bound identifiers of a binding pattern.
// Default-value expressions and computed keys are not bindings and are
// skipped.
func (b *builder) patternNames(n *sitter.Node, fn func(*sitter.Node)) {
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		fn(n)
	case "object_pattern", "array_pattern", "rest_pattern":
		for _, c := range jsparse.NamedChildren(n) {
			b.patternNames(c, fn)
		}
	case "pair_pattern":
		if v := n.ChildByFieldName("value"); v != nil {
			b.patternNames(v, fn)
		}
	case "assignment_pattern", "object_assignment_pattern":
		if l := n.ChildByFieldName("left"); l != nil {
			b.patternNames(l, fn)
		}
	}
}

func (b *builder) importBindings(n *sitter.Node, sc *Scope) {
	jsparse.Walk(n, func(c *sitter.Node) bool {
		switch c.Type() {
		case "import_statement", "import_clause", "named_imports", "namespace_import":
			return true
		case "import_specifier":
			id := c.ChildByFieldName("alias")
			if id == nil {
				id = c.ChildByFieldName("name")
			}
			if id != nil && id.Type() == "identifier" {
				b.declare(sc, id, BindImport)
			}
			return false
		case "identifier":
			// default import или псевдоним namespace-импорта
			b.declare(sc, c, BindImport)
			return false
		default:
			return false
		}
	})
}

func (b *builder) declare(sc *Scope, id *sitter.Node, kind BindKind) {
	text := b.content[id.StartByte():id.EndByte()]
	name := b.interner.InternBytes(text)
	span := jsparse.NodeSpan(id, b.file)

	target := sc
	if kind.hoisted() {
		target = sc.funcScope()
		// var пробивается сквозь блоки; лексическое имя на пути - ошибка
		for s := sc; s != nil; s = s.Parent {
			if prev := s.bindings[name]; prev != nil && prev.Kind.lexical() {
				b.redeclared(string(text), span, prev.Span)
				return
			}
			if s == target {
				break
			}
		}
	}

	prev := target.bindings[name]
	if prev == nil {
		target.bindings[name] = &Binding{Name: name, Kind: kind, Span: span}
		return
	}
	switch {
	case kind == BindParam && prev.Kind == BindParam:
		b.findings = append(b.findings, diag.NewError(diag.SemaDuplicateParam, span,
			fmt.Sprintf("duplicate parameter %q", text)).
			WithLabel(prev.Span, "first declared here"))
	case kind.lexical() || prev.Kind.lexical():
		b.redeclared(string(text), span, prev.Span)
	default:
		// var поверх var, функция поверх функции: допустимо, первое объявление остаётся
	}
}

func (b *builder) redeclared(name string, at, first source.Span) {
	b.findings = append(b.findings, diag.NewError(diag.SemaRedeclaration, at,
		fmt.Sprintf("identifier %q has already been declared", name)).
		WithLabel(first, "first declared here").
		WithHelp("rename the binding or remove the earlier declaration"))
}
