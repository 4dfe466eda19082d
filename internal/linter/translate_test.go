package linter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sable/internal/diag"
	"sable/internal/source"
)

// virtFile кладёт контент в свежий FileSet и возвращает файл.
func virtFile(t *testing.T, content string) *source.File {
	t.Helper()
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("test.js", []byte(content)))
}

func span(start, end uint32) source.Span {
	return source.Span{File: 0, Start: start, End: end}
}

func rng(sl, sc, el, ec uint32) source.Range {
	return source.Range{
		Start: source.Position{Line: sl, Character: sc},
		End:   source.Position{Line: el, Character: ec},
	}
}

func TestTranslateSingleLabel(t *testing.T) {
	file := virtFile(t, "let x = 1;\nlet y = 2;\n")
	f := diag.NewWarning(diag.LintNoVar, span(11, 14), "unexpected var")

	got := Translate(file, []diag.Finding{f})
	if len(got) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(got))
	}
	want := Diagnostic{
		Range:    rng(1, 0, 1, 3),
		Severity: diag.SevWarning,
		Code:     "LNT4008",
		Source:   SourceTag,
		Message:  "unexpected var",
		Related:  []RelatedInfo{{Range: rng(1, 0, 1, 3)}},
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("Diagnostic mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslatePrimaryIsLexicographicMinimum(t *testing.T) {
	file := virtFile(t, "aaaa\nbbbb\ncccc\n")
	// якорная метка стоит позже по тексту, минимум должен победить
	f := diag.Finding{
		Severity: diag.SevError,
		Code:     diag.SemaRedeclaration,
		Message:  "identifier \"x\" has already been declared",
		Labels: []diag.Label{
			{Span: span(10, 12)}, // line 2
			{Span: span(5, 7), Message: "first declared here"}, // line 1
		},
	}

	got := Translate(file, []diag.Finding{f})
	if len(got) == 0 {
		t.Fatal("Expected diagnostics")
	}
	if want := rng(1, 0, 1, 2); got[0].Range != want {
		t.Errorf("Expected primary range %v, got %v", want, got[0].Range)
	}
}

func TestTranslateOutOfRangeDefaultsToZero(t *testing.T) {
	file := virtFile(t, "short\n")
	f := diag.NewError(diag.ParseUnexpectedToken, span(100, 200), "unexpected token")

	got := Translate(file, []diag.Finding{f})
	if len(got) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(got))
	}
	if want := rng(0, 0, 0, 0); got[0].Range != want {
		t.Errorf("Expected default range %v, got %v", want, got[0].Range)
	}
}

func TestTranslateMessageAssembly(t *testing.T) {
	file := virtFile(t, "debugger;\n")
	f := diag.NewError(diag.LintNoDebugger, span(0, 9), "unexpected debugger statement").
		WithHelp("remove the debugger statement")

	got := Translate(file, []diag.Finding{f})
	want := "unexpected debugger statement\nhelp: remove the debugger statement"
	if got[0].Message != want {
		t.Errorf("Expected message %q, got %q", want, got[0].Message)
	}
}

// Сценарий: у диагностики две связанные локации, отличные от первичной.
// Должно получиться ровно три диагностики: первичная и два хинта.
func TestTranslateInvertedHints(t *testing.T) {
	file := virtFile(t, "one\ntwo\nthree\nfour\n")
	f := diag.Finding{
		Severity: diag.SevError,
		Code:     diag.LintNoDupeKeys,
		Rule:     "no-dupe-keys",
		Message:  "duplicate key \"a\"",
		Labels: []diag.Label{
			{Span: span(0, 3)},
			{Span: span(4, 7), Message: "first defined here"},
			{Span: span(8, 13), Message: "also defined here"},
		},
	}

	got := Translate(file, []diag.Finding{f})
	if len(got) != 3 {
		t.Fatalf("Expected 3 diagnostics (1 primary + 2 hints), got %d", len(got))
	}

	primary := got[0]
	if primary.Range != rng(0, 0, 0, 3) {
		t.Errorf("Expected primary at %v, got %v", rng(0, 0, 0, 3), primary.Range)
	}
	if len(primary.Related) != 3 {
		t.Errorf("Expected 3 related entries on primary, got %d", len(primary.Related))
	}

	for i, hint := range got[1:] {
		if hint.Severity != diag.SevHint {
			t.Errorf("hint[%d]: Expected severity hint, got %v", i, hint.Severity)
		}
		if hint.Code != "no-dupe-keys" {
			t.Errorf("hint[%d]: Expected code no-dupe-keys, got %s", i, hint.Code)
		}
		if len(hint.Related) != 1 {
			t.Fatalf("hint[%d]: Expected 1 back-reference, got %d", i, len(hint.Related))
		}
		if hint.Related[0].Range != primary.Range {
			t.Errorf("hint[%d]: back-reference %v does not match primary %v", i, hint.Related[0].Range, primary.Range)
		}
		if hint.Related[0].Message != "original diagnostic" {
			t.Errorf("hint[%d]: Expected back-reference message %q, got %q", i, "original diagnostic", hint.Related[0].Message)
		}
	}
	if got[1].Range != rng(1, 0, 1, 3) || got[2].Range != rng(2, 0, 2, 5) {
		t.Errorf("Expected hints at label positions, got %v and %v", got[1].Range, got[2].Range)
	}
}

func TestTranslateNoHintForPrimaryEqualRange(t *testing.T) {
	file := virtFile(t, "aaaa\n")
	f := diag.Finding{
		Severity: diag.SevWarning,
		Code:     diag.LintEqeqeq,
		Message:  "msg",
		Labels: []diag.Label{
			{Span: span(0, 2)},
			{Span: span(0, 2), Message: "same place"},
		},
	}

	got := Translate(file, []diag.Finding{f})
	if len(got) != 1 {
		t.Fatalf("Expected no hints for an equal range, got %d diagnostics", len(got))
	}
}

// Сценарий: фикс заменяет байты [5,8) текстом "Reflect.apply(foo, null)".
func TestTranslateFixMapping(t *testing.T) {
	file := virtFile(t, "abcde\nfghij\nklmno\n")
	f := diag.NewWarning(diag.LintPreferReflectApply, span(5, 8), "prefer Reflect.apply() over Function#apply()").
		WithRule("prefer-reflect-apply").
		WithFix(span(5, 8), "Reflect.apply(foo, null)")

	got := Translate(file, []diag.Finding{f})
	if len(got) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(got))
	}
	if got[0].Fix == nil {
		t.Fatal("Expected fix to survive translation")
	}
	if want := rng(0, 5, 1, 2); got[0].Fix.Range != want {
		t.Errorf("Expected fix range %v, got %v", want, got[0].Fix.Range)
	}
	if got[0].Fix.Text != "Reflect.apply(foo, null)" {
		t.Errorf("Expected exact replacement text, got %q", got[0].Fix.Text)
	}
}

func TestTranslateOrderPrimariesThenHints(t *testing.T) {
	file := virtFile(t, "one\ntwo\nthree\n")
	f1 := diag.Finding{
		Severity: diag.SevError,
		Code:     diag.SemaRedeclaration,
		Message:  "first",
		Labels:   []diag.Label{{Span: span(0, 3)}, {Span: span(4, 7), Message: "ctx"}},
	}
	f2 := diag.NewWarning(diag.LintNoVar, span(8, 13), "second")

	got := Translate(file, []diag.Finding{f1, f2})
	if len(got) != 3 {
		t.Fatalf("Expected 3 diagnostics, got %d", len(got))
	}
	if got[0].Message != "first" || got[1].Message != "second" {
		t.Errorf("Expected primaries in emission order, got %q then %q", got[0].Message, got[1].Message)
	}
	if got[2].Severity != diag.SevHint {
		t.Errorf("Expected trailing hint, got severity %v", got[2].Severity)
	}
}

func TestTranslateIdempotent(t *testing.T) {
	file := virtFile(t, "var a = 1;\nvar a = 2;\n")
	findings := []diag.Finding{
		{
			Severity: diag.SevError,
			Code:     diag.SemaRedeclaration,
			Message:  "identifier \"a\" has already been declared",
			Labels:   []diag.Label{{Span: span(15, 16)}, {Span: span(4, 5), Message: "first declared here"}},
		},
	}

	first := Translate(file, findings)
	second := Translate(file, findings)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Expected identical output across runs (-first +second):\n%s", diff)
	}
}

func TestTranslateEmpty(t *testing.T) {
	file := virtFile(t, "clean\n")
	if got := Translate(file, nil); got != nil {
		t.Errorf("Expected nil for no findings, got %v", got)
	}
}
