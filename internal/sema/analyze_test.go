package sema

import (
	"context"
	"testing"

	"sable/internal/diag"
	"sable/internal/dialect"
	"sable/internal/jsparse"
)

func analyze(t *testing.T, src string) *Result {
	t.Helper()
	tree, err := jsparse.Parse(context.Background(), []byte(src), dialect.JS, jsparse.Options{AllowReturnOutsideFunction: true})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	t.Cleanup(tree.Close)
	return Analyze(tree, 1, nil)
}

func analyzeTS(t *testing.T, src string) *Result {
	t.Helper()
	tree, err := jsparse.Parse(context.Background(), []byte(src), dialect.TS, jsparse.Options{AllowReturnOutsideFunction: true})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	t.Cleanup(tree.Close)
	return Analyze(tree, 1, nil)
}

func codesOf(res *Result) []diag.Code {
	out := make([]diag.Code, 0, len(res.Findings))
	for _, f := range res.Findings {
		out = append(out, f.Code)
	}
	return out
}

func TestAnalyzeClean(t *testing.T) {
	tests := []string{
		"let a = 1\nconst b = 2\nvar c = 3\n",
		"var a = 1\nvar a = 2\n",                    // var поверх var допустим
		"function f() {}\nfunction f() {}\n",        // функция поверх функции тоже
		"let a = 1\nfunction f() { let a = 2 }\n",   // разные области
		"let a = 1\n{ let a = 2 }\n",                // блок затеняет
		"function f(a) { { let a = 1 } }\n",         // вложенный блок затеняет параметр
		"function f(a) { var a }\n",                 // var поверх параметра допустим
		"for (let i = 0; i < 2; i++) { let i2 }\n",  // заголовок и тело не конфликтуют
		"try { f() } catch (e) { var e2 = e }\n",
		"const f = (x) => x + 1\nconst g = (x) => x - 1\n",
	}
	for _, src := range tests {
		res := analyze(t, src)
		if len(res.Findings) != 0 {
			t.Errorf("%q: expected no findings, got %v", src, codesOf(res))
		}
	}
}

func TestRedeclaration(t *testing.T) {
	tests := []string{
		"let a = 1\nlet a = 2\n",
		"const a = 1\nconst a = 2\n",
		"let a = 1\nvar a = 2\n",
		"var a = 1\nlet a = 2\n",
		"let f = 1\nfunction f() {}\n",
		"function f() {}\nlet f = 1\n",
		"class A {}\nclass A {}\n",
		"let a = 1\n{ var a = 2 }\n",         // var пробивается сквозь блок
		"function f(a) { let a = 1 }\n",      // тело делит область с параметрами
		"import { a } from 'm'\nlet a = 1\n",
		"try {} catch (e) { let e = 1 }\n",
	}
	for _, src := range tests {
		res := analyze(t, src)
		if len(res.Findings) != 1 {
			t.Errorf("%q: expected 1 finding, got %d (%v)", src, len(res.Findings), codesOf(res))
			continue
		}
		f := res.Findings[0]
		if f.Code != diag.SemaRedeclaration {
			t.Errorf("%q: expected SemaRedeclaration, got %v", src, f.Code)
		}
		if f.Severity != diag.SevError {
			t.Errorf("%q: expected error severity, got %v", src, f.Severity)
		}
		if len(f.Labels) != 2 {
			t.Errorf("%q: expected 2 labels, got %d", src, len(f.Labels))
			continue
		}
		if f.Labels[1].Message != "first declared here" {
			t.Errorf("%q: expected the second label to point at the first declaration, got %q", src, f.Labels[1].Message)
		}
		// первичная метка всегда позже первой декларации
		if f.Labels[0].Span.Start <= f.Labels[1].Span.Start {
			t.Errorf("%q: expected the primary label after the original declaration", src)
		}
	}
}

func TestDuplicateParams(t *testing.T) {
	res := analyze(t, "function f(a, b, a) {}\n")
	if len(res.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(res.Findings))
	}
	f := res.Findings[0]
	if f.Code != diag.SemaDuplicateParam {
		t.Errorf("Expected SemaDuplicateParam, got %v", f.Code)
	}
	if len(f.Labels) != 2 {
		t.Fatalf("Expected 2 labels, got %d", len(f.Labels))
	}
}

func TestDestructuredBindings(t *testing.T) {
	// деструктуризация объявляет только связываемые имена
	res := analyze(t, "const { a, b: c, d = 1 } = obj\nlet a = 2\n")
	if len(res.Findings) != 1 {
		t.Fatalf("Expected 1 finding (a redeclared), got %d: %v", len(res.Findings), codesOf(res))
	}
	if res.Findings[0].Code != diag.SemaRedeclaration {
		t.Errorf("Expected SemaRedeclaration, got %v", res.Findings[0].Code)
	}

	// b - ключ, не связывание; дефолтное значение тоже не связывание
	clean := analyze(t, "const { a, b: c, d = e } = obj\nlet b = 1\nlet e = 2\n")
	if len(clean.Findings) != 0 {
		t.Errorf("Expected no findings, got %v", codesOf(clean))
	}
}

func TestScopeLookup(t *testing.T) {
	res := analyze(t, "let outer = 1\nfunction f(p) { let inner = 2 }\n")

	outerID, ok := res.Interner.ID("outer")
	if !ok {
		t.Fatal("Expected outer to be interned")
	}
	if b := res.Root.Own(outerID); b == nil || b.Kind != BindLet {
		t.Fatalf("Expected a let binding for outer, got %+v", b)
	}

	if len(res.Root.Children) != 1 {
		t.Fatalf("Expected 1 child scope, got %d", len(res.Root.Children))
	}
	fn := res.Root.Children[0]
	if fn.Kind != ScopeFunction {
		t.Errorf("Expected a function scope, got %v", fn.Kind)
	}

	pID, _ := res.Interner.ID("p")
	if b := fn.Own(pID); b == nil || b.Kind != BindParam {
		t.Errorf("Expected a param binding for p, got %+v", b)
	}
	// из внутренней области внешнее имя достижимо через Lookup
	if b := fn.Lookup(outerID); b == nil {
		t.Error("Expected Lookup to resolve outer from the function scope")
	}
	if b := fn.Own(outerID); b != nil {
		t.Error("Expected Own to miss outer in the function scope")
	}
}

func TestBindingsSourceOrder(t *testing.T) {
	res := analyze(t, "let b = 1\nlet a = 2\nlet c = 3\n")
	bindings := res.Root.Bindings()
	if len(bindings) != 3 {
		t.Fatalf("Expected 3 bindings, got %d", len(bindings))
	}
	for i := 1; i < len(bindings); i++ {
		if bindings[i-1].Span.Start >= bindings[i].Span.Start {
			t.Fatal("Expected bindings in source order")
		}
	}
}

func TestTypeScriptParams(t *testing.T) {
	res := analyzeTS(t, "function f(a: number, a: string) {}\n")
	if len(res.Findings) != 1 {
		t.Fatalf("Expected 1 finding for duplicate TS params, got %d: %v", len(res.Findings), codesOf(res))
	}
	if res.Findings[0].Code != diag.SemaDuplicateParam {
		t.Errorf("Expected SemaDuplicateParam, got %v", res.Findings[0].Code)
	}
}

func TestImportBindings(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"import def from 'm'\nlet def = 1\n", 1},
		{"import * as ns from 'm'\nconst ns = 1\n", 1},
		{"import { x as y } from 'm'\nlet y = 1\n", 1},
		{"import { x as y } from 'm'\nlet x = 1\n", 0}, // исходное имя не связывается
	}
	for _, tt := range tests {
		res := analyze(t, tt.src)
		if len(res.Findings) != tt.want {
			t.Errorf("%q: expected %d findings, got %d (%v)", tt.src, tt.want, len(res.Findings), codesOf(res))
		}
	}
}
