// Package jsparse wraps tree-sitter for the JS/TS dialect family.
//
// Parsing is permissive: malformed input still yields a tree, and the
// ERROR/MISSING nodes inside it are harvested into findings instead of
// failing the file. Every Parse call builds its own tree-sitter parser,
// so the package is safe for concurrent use across files.
package jsparse

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"sable/internal/dialect"
)

// MaxFileSize caps single-file input; larger files are reported, not parsed.
const MaxFileSize = 16 << 20

var (
	ErrNoGrammar       = errors.New("jsparse: no grammar for dialect")
	ErrInvalidEncoding = errors.New("jsparse: content is not valid UTF-8")
	ErrFileTooLarge    = errors.New("jsparse: file exceeds maximum size")
)

// Options tune the permissiveness of a parse.
type Options struct {
	// AllowReturnOutsideFunction suppresses the top-level return finding.
	// Script-like sources (CommonJS wrappers, extracted template blocks)
	// legitimately return at the top level.
	AllowReturnOutsideFunction bool
}

// Tree is a parsed file. It owns C-allocated tree-sitter memory scoped to
// this file; callers must Close it once analysis of the file completes.
type Tree struct {
	tree    *sitter.Tree
	content []byte
	kind    dialect.Kind
	opts    Options
}

// Parse runs the grammar for the dialect over content.
// The tree is built even when the input is malformed; use SyntaxFindings to
// turn the embedded error nodes into diagnostics.
func Parse(ctx context.Context, content []byte, kind dialect.Kind, opts Options) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lang := grammarFor(kind)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoGrammar, kind)
	}
	if len(content) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(content))
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}

	// новый парсер на каждый вызов, иначе гонки между воркерами
	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("jsparse: %w", err)
	}
	return &Tree{tree: tree, content: content, kind: kind, opts: opts}, nil
}

// Root returns the program node.
func (t *Tree) Root() *sitter.Node { return t.tree.RootNode() }

// Content returns the bytes the tree was parsed from.
func (t *Tree) Content() []byte { return t.content }

// Dialect returns the dialect the tree was parsed as.
func (t *Tree) Dialect() dialect.Kind { return t.kind }

// HasErrors reports whether the tree contains any ERROR or MISSING node.
func (t *Tree) HasErrors() bool { return t.tree.RootNode().HasError() }

// Close releases the tree's C memory. Safe to call more than once.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// grammarFor selects the tree-sitter language. The javascript grammar
// already understands JSX, mirroring how the dialects collapse upstream.
func grammarFor(kind dialect.Kind) *sitter.Language {
	switch kind {
	case dialect.JS, dialect.JSX:
		return javascript.GetLanguage()
	case dialect.TS:
		return typescript.GetLanguage()
	case dialect.TSX:
		return tsx.GetLanguage()
	default:
		return nil
	}
}
