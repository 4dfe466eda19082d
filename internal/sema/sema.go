// Package sema builds lexical scopes over a parsed tree and reports the
// early errors a parser alone cannot see: redeclared lexical bindings and
// duplicated parameters.
//
// The model is deliberately shallow. It tracks declarations, not uses, and
// it knows just enough scoping to honor hoisting: var and function
// declarations land in the nearest function scope, let/const/class/import
// bind where they appear.
package sema

import (
	"sort"

	"sable/internal/source"
)

// ScopeKind classifies a scope by what opened it.
type ScopeKind uint8

const (
	ScopeProgram ScopeKind = iota
	ScopeFunction
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeProgram:
		return "program"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// BindKind classifies how a name was introduced.
type BindKind uint8

const (
	BindVar BindKind = iota
	BindLet
	BindConst
	BindFunction
	BindClass
	BindParam
	BindImport
	BindCatch
)

func (k BindKind) String() string {
	switch k {
	case BindVar:
		return "var"
	case BindLet:
		return "let"
	case BindConst:
		return "const"
	case BindFunction:
		return "function"
	case BindClass:
		return "class"
	case BindParam:
		return "parameter"
	case BindImport:
		return "import"
	case BindCatch:
		return "catch"
	default:
		return "unknown"
	}
}

// lexical reports whether the binding claims its scope exclusively.
// Redeclaring over a lexical binding is an early error; var over var and
// function over function are not.
func (k BindKind) lexical() bool {
	switch k {
	case BindLet, BindConst, BindClass, BindImport:
		return true
	default:
		return false
	}
}

// hoisted reports whether the declaration lands in the nearest function
// scope instead of the block it appears in.
func (k BindKind) hoisted() bool {
	return k == BindVar || k == BindFunction
}

// Binding is one declared name.
type Binding struct {
	Name source.StringID
	Kind BindKind
	Span source.Span // the identifier, not the whole declaration
}

// Scope is one lexical scope. Bindings are keyed by interned name.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope

	bindings map[source.StringID]*Binding
}

func newScope(kind ScopeKind, parent *Scope) *Scope {
	s := &Scope{Kind: kind, Parent: parent, bindings: make(map[source.StringID]*Binding)}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Own returns the binding declared directly in this scope, if any.
func (s *Scope) Own(name source.StringID) *Binding {
	return s.bindings[name]
}

// Lookup resolves a name through this scope and its ancestors.
func (s *Scope) Lookup(name source.StringID) *Binding {
	for sc := s; sc != nil; sc = sc.Parent {
		if b := sc.bindings[name]; b != nil {
			return b
		}
	}
	return nil
}

// Bindings lists this scope's own bindings in source order.
func (s *Scope) Bindings() []*Binding {
	out := make([]*Binding, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out
}

// funcScope returns the nearest enclosing function or program scope.
func (s *Scope) funcScope() *Scope {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.Kind == ScopeFunction || sc.Kind == ScopeProgram {
			return sc
		}
	}
	return s
}
