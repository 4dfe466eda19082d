package jsparse

import (
	"context"
	"errors"
	"testing"

	"sable/internal/diag"
	"sable/internal/dialect"
)

func mustParse(t *testing.T, src string, kind dialect.Kind, opts Options) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), []byte(src), kind, opts)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	t.Cleanup(tree.Close)
	return tree
}

func TestParseCleanFile(t *testing.T) {
	tree := mustParse(t, "const x = 1\nconsole.log(x)\n", dialect.JS, Options{})
	if tree.Root().Type() != "program" {
		t.Errorf("Expected program root, got %q", tree.Root().Type())
	}
	if tree.HasErrors() {
		t.Error("Expected no errors in a clean file")
	}
	if findings := SyntaxFindings(tree, 1); len(findings) != 0 {
		t.Errorf("Expected no syntax findings, got %d", len(findings))
	}
}

func TestParseMalformed(t *testing.T) {
	// незакрытая скобка: дерево всё равно строится
	tree := mustParse(t, "function foo( {\n", dialect.JS, Options{})
	if !tree.HasErrors() {
		t.Fatal("Expected HasErrors for malformed input")
	}
	findings := SyntaxFindings(tree, 1)
	if len(findings) == 0 {
		t.Fatal("Expected at least one syntax finding")
	}
	for _, f := range findings {
		if f.Severity != diag.SevError {
			t.Errorf("Expected error severity, got %v", f.Severity)
		}
		if f.Code != diag.ParseUnexpectedToken && f.Code != diag.ParseMissingToken {
			t.Errorf("Expected a parse-band code, got %v", f.Code)
		}
	}
}

func TestParseMissingBrace(t *testing.T) {
	tree := mustParse(t, "if (a) { b\n", dialect.JS, Options{})
	findings := SyntaxFindings(tree, 1)
	if len(findings) == 0 {
		t.Fatal("Expected findings for an unterminated block")
	}
}

func TestTopLevelReturn(t *testing.T) {
	src := "return 1\n"

	strict := mustParse(t, src, dialect.JS, Options{})
	findings := SyntaxFindings(strict, 1)
	if len(findings) != 1 {
		t.Fatalf("Expected exactly 1 finding, got %d", len(findings))
	}
	if findings[0].Code != diag.ParseTopLevelReturn {
		t.Errorf("Expected ParseTopLevelReturn, got %v", findings[0].Code)
	}

	permissive := mustParse(t, src, dialect.JS, Options{AllowReturnOutsideFunction: true})
	if findings := SyntaxFindings(permissive, 1); len(findings) != 0 {
		t.Errorf("Expected no findings with AllowReturnOutsideFunction, got %d", len(findings))
	}
}

func TestReturnInsideFunctionIsFine(t *testing.T) {
	tree := mustParse(t, "function f() { return 1 }\n", dialect.JS, Options{})
	if findings := SyntaxFindings(tree, 1); len(findings) != 0 {
		t.Errorf("Expected no findings for a return inside a function, got %d", len(findings))
	}
}

func TestParseTypeScript(t *testing.T) {
	tree := mustParse(t, "const x: number = 1\ninterface P { name: string }\n", dialect.TS, Options{})
	if tree.HasErrors() {
		t.Error("Expected clean parse of TypeScript under the TS grammar")
	}
}

func TestParseTSX(t *testing.T) {
	tree := mustParse(t, "const el = <div id=\"a\">{x}</div>\n", dialect.TSX, Options{})
	if tree.HasErrors() {
		t.Error("Expected clean parse of TSX under the TSX grammar")
	}
}

func TestParseUnknownDialect(t *testing.T) {
	_, err := Parse(context.Background(), []byte("x"), dialect.Unknown, Options{})
	if !errors.Is(err, ErrNoGrammar) {
		t.Errorf("Expected ErrNoGrammar, got %v", err)
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	_, err := Parse(context.Background(), []byte{0xFF, 0xFE, 'a'}, dialect.JS, Options{})
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("Expected ErrInvalidEncoding, got %v", err)
	}
}

func TestParseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Parse(ctx, []byte("const x = 1"), dialect.JS, Options{}); err == nil {
		t.Error("Expected an error for a canceled context")
	}
}
