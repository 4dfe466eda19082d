package linter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"sable/internal/baseline"
	"sable/internal/diag"
)

// Сценарий: проект из 100 файлов, нарушения ровно в трёх.
// В результате ровно три записи.
func TestRunScenarioHundredFiles(t *testing.T) {
	dir := t.TempDir()
	dirty := map[int]bool{7: true, 42: true, 93: true}
	for i := 0; i < 100; i++ {
		body := "const ok = 1;\n"
		if dirty[i] {
			body = "var bad = 1;\n"
		}
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%03d.js", i)), []byte(body), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	pipe := NewPipeline(defaultRules(t), nil, false)
	res, err := Run(context.Background(), pipe, Options{Root: dir, Jobs: 4})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Files) != 3 {
		t.Fatalf("Expected exactly 3 entries, got %d: %v", len(res.Files), res.Paths())
	}
	for _, path := range res.Paths() {
		base := filepath.Base(path)
		if base != "f007.js" && base != "f042.js" && base != "f093.js" {
			t.Errorf("Unexpected dirty file %s", base)
		}
	}
}

func TestRunIsolatesBadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "good.js"), []byte("var x = 1;\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// невалидный UTF-8 не должен уронить соседние файлы
	if err := os.WriteFile(filepath.Join(dir, "bad.js"), []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pipe := NewPipeline(defaultRules(t), nil, false)
	res, err := Run(context.Background(), pipe, Options{Root: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("Expected 2 entries (violation + encoding error), got %d", len(res.Files))
	}
}

func TestRunCanceledBeforeStart(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 50; i++ {
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%02d.js", i)), []byte("var a = 1;\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipe := NewPipeline(defaultRules(t), nil, false)
	res, err := Run(ctx, pipe, Options{Root: dir})
	if err != nil {
		// допустимо: отмена может всплыть и как ошибка
		return
	}
	if len(res.Files) != 0 {
		t.Errorf("Expected canceled scan to produce nothing, got %d entries", len(res.Files))
	}
}

func TestRunAppliesFixes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixme.js")
	if err := os.WriteFile(path, []byte("var a = 1;\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pipe := NewPipeline(defaultRules(t), nil, true)
	res, err := Run(context.Background(), pipe, Options{Root: dir, ApplyFixes: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.FixedCount != 1 {
		t.Errorf("Expected 1 applied fix, got %d", res.FixedCount)
	}
	if len(res.Files) != 0 {
		t.Errorf("Expected fixed problem to vanish from the report, got %v", res.Files)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "let a = 1;\n" {
		t.Errorf("Expected fixed content on disk, got %q", data)
	}
}

func TestRunBaselineSuppression(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old.js"), []byte("var legacy = 1;\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store := baseline.New(filepath.Join(dir, ".sable", "baseline.msgpack"))
	pipe := NewPipeline(defaultRules(t), nil, false)

	res1, err := Run(context.Background(), pipe, Options{Root: dir, Baseline: store, UpdateBaseline: true})
	if err != nil {
		t.Fatalf("update run: %v", err)
	}
	if len(res1.Files) != 1 {
		t.Fatalf("Expected the violation reported while recording, got %d entries", len(res1.Files))
	}
	if store.Len() == 0 {
		t.Fatal("Expected fingerprints recorded")
	}

	res2, err := Run(context.Background(), pipe, Options{Root: dir, Baseline: store})
	if err != nil {
		t.Fatalf("suppressed run: %v", err)
	}
	if len(res2.Files) != 0 {
		t.Errorf("Expected baselined findings suppressed, got %v", res2.Files)
	}

	// новый файл с новым нарушением всё равно репортится
	if err := os.WriteFile(filepath.Join(dir, "new.js"), []byte("debugger;\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	res3, err := Run(context.Background(), pipe, Options{Root: dir, Baseline: store})
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if len(res3.Files) != 1 {
		t.Errorf("Expected only the new violation, got %v", res3.Files)
	}
}

func TestRunPostsEvents(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%d.js", i)), []byte("const x = 1;\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	sink := make(ChannelSink, 64)
	pipe := NewPipeline(defaultRules(t), nil, false)
	if _, err := Run(context.Background(), pipe, Options{Root: dir, Sink: sink}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(sink)

	discovered, scanned := 0, 0
	for e := range sink {
		if e.Path == "" {
			t.Error("Expected every event to carry a path")
		}
		switch e.Stage {
		case StageDiscovered:
			discovered++
		case StageScanned:
			scanned++
		}
	}
	if discovered != 5 {
		t.Errorf("Expected 5 discovery events, got %d", discovered)
	}
	if scanned != 5 {
		t.Errorf("Expected 5 scan events, got %d", scanned)
	}
}

func TestRunRespectsIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "dist"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dist", "bundle.js"), []byte("var x = 1;\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("var y = 1;\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pipe := NewPipeline(defaultRules(t), nil, false)
	res, err := Run(context.Background(), pipe, Options{Root: dir, IgnorePatterns: []string{"dist"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Files) != 1 {
		t.Fatalf("Expected only app.js reported, got %v", res.Paths())
	}
	if filepath.Base(res.Paths()[0]) != "app.js" {
		t.Errorf("Expected app.js, got %s", res.Paths()[0])
	}
}

func TestRunSeverityThreshold(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "warn.js"), []byte("var a = 1;\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "err.js"), []byte("debugger;\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pipe := NewPipeline(defaultRules(t), nil, false)
	res, err := Run(context.Background(), pipe, Options{Root: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.HasErrors() {
		t.Error("Expected HasErrors for the debugger statement")
	}
	if got := res.Total(); got != 2 {
		t.Errorf("Expected 2 diagnostics total, got %d", got)
	}

	var sevs []diag.Severity
	for _, ds := range res.Files {
		for _, d := range ds {
			sevs = append(sevs, d.Severity)
		}
	}
	if len(sevs) != 2 {
		t.Fatalf("Expected 2 severities, got %v", sevs)
	}
}
