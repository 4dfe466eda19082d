package diag

import (
	"testing"

	"sable/internal/source"
)

func span(start, end uint32) source.Span {
	return source.Span{File: 0, Start: start, End: end}
}

func TestBagCap(t *testing.T) {
	b := NewBag(2)

	if !b.Add(NewError(ParseUnexpectedToken, span(0, 1), "one")) {
		t.Error("Expected first Add to succeed")
	}
	if !b.Add(NewError(ParseUnexpectedToken, span(1, 2), "two")) {
		t.Error("Expected second Add to succeed")
	}
	if b.Add(NewError(ParseUnexpectedToken, span(2, 3), "three")) {
		t.Error("Expected Add past the cap to be rejected")
	}
	if b.Len() != 2 {
		t.Errorf("Expected Len 2, got %d", b.Len())
	}
	if b.Cap() != 2 {
		t.Errorf("Expected Cap 2, got %d", b.Cap())
	}
}

func TestBagHasErrorsAndWarnings(t *testing.T) {
	b := NewBag(10)

	b.Add(New(SevHint, LintInfo, span(0, 1), "hint"))
	if b.HasWarnings() || b.HasErrors() {
		t.Error("Expected no warnings or errors with only a hint")
	}

	b.Add(NewWarning(LintNoVar, span(0, 3), "var"))
	if !b.HasWarnings() {
		t.Error("Expected HasWarnings after a warning")
	}
	if b.HasErrors() {
		t.Error("Expected no errors yet")
	}

	b.Add(NewError(SemaRedeclaration, span(5, 6), "redeclared"))
	if !b.HasErrors() {
		t.Error("Expected HasErrors after an error")
	}
}

func TestBagMergeGrowsCap(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(ParseUnexpectedToken, span(0, 1), "a"))

	b := NewBag(2)
	b.Add(NewError(ParseMissingToken, span(1, 2), "b"))
	b.Add(NewWarning(LintNoEmpty, span(2, 3), "c"))

	a.Merge(b)
	if a.Len() != 3 {
		t.Errorf("Expected merged Len 3, got %d", a.Len())
	}
	if a.Cap() < 3 {
		t.Errorf("Expected cap to grow to fit items, got %d", a.Cap())
	}
}

// TestBagDedup: вложенные ERROR-узлы дерева дают повторы с одинаковым
// кодом и спаном — остаётся только первый.
func TestBagDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(ParseUnexpectedToken, span(4, 9), "unexpected token"))
	b.Add(NewError(ParseUnexpectedToken, span(4, 9), "unexpected token"))
	b.Add(NewError(ParseUnexpectedToken, span(10, 12), "unexpected token"))

	b.Dedup()
	if b.Len() != 2 {
		t.Errorf("Expected 2 findings after Dedup, got %d", b.Len())
	}
}

func TestBagDedupKeepsDistinctRules(t *testing.T) {
	b := NewBag(10)
	b.Add(NewWarning(LintNoVar, span(0, 3), "no-var").WithRule("no-var"))
	b.Add(NewWarning(LintNoDebugger, span(0, 3), "no-debugger").WithRule("no-debugger"))

	b.Dedup()
	if b.Len() != 2 {
		t.Errorf("Expected rule findings on the same span to survive Dedup, got %d", b.Len())
	}
}

func TestFindingBuilder(t *testing.T) {
	f := NewError(SemaRedeclaration, span(10, 15), "Identifier 'x' has already been declared").
		WithLabel(span(2, 7), "first declared here").
		WithHelp("rename one of the declarations").
		WithRule("")

	if f.Primary() != span(10, 15) {
		t.Errorf("Expected primary span %v, got %v", span(10, 15), f.Primary())
	}
	if len(f.Labels) != 2 {
		t.Fatalf("Expected 2 labels, got %d", len(f.Labels))
	}
	if f.Labels[1].Message != "first declared here" {
		t.Errorf("Unexpected context label message %q", f.Labels[1].Message)
	}
	if f.Help == "" {
		t.Error("Expected help to be set")
	}
	if f.DisplayCode() != "SEM3001" {
		t.Errorf("Expected display code SEM3001, got %q", f.DisplayCode())
	}

	f = f.WithRule("no-redeclare")
	if f.DisplayCode() != "no-redeclare" {
		t.Errorf("Expected rule name as display code, got %q", f.DisplayCode())
	}
}

func TestFindingWithFix(t *testing.T) {
	f := NewWarning(LintEqeqeq, span(5, 7), "Expected '===' and instead saw '=='").
		WithFix(span(5, 7), "===")

	if f.Fix == nil {
		t.Fatal("Expected fix to be attached")
	}
	if f.Fix.Replacement != "===" {
		t.Errorf("Expected replacement \"===\", got %q", f.Fix.Replacement)
	}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{IOReadFileError, "IO1001"},
		{ParseUnexpectedToken, "SYN2001"},
		{SemaRedeclaration, "SEM3001"},
		{LintPreferReflectApply, "LNT4001"},
		{PluginRuleMatch, "PLG5001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("Code(%d).ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
}
