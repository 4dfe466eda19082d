package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep", "deeper")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	manifest := filepath.Join(root, ManifestName)
	if err := os.WriteFile(manifest, []byte("[lint]\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, ok, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if !ok {
		t.Fatal("Expected manifest to be found from nested dir")
	}
	if got != manifest {
		t.Errorf("Expected %s, got %s", manifest, got)
	}
}

func TestFindManifestAbsent(t *testing.T) {
	dir := t.TempDir()

	_, ok, err := FindManifest(dir)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if ok {
		t.Error("Expected no manifest under a bare temp dir")
	}
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ManifestName), []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	// сверяем через EvalSymlinks: на macOS TempDir ходит через /var -> /private/var
	wantResolved, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != wantResolved {
		t.Errorf("Expected root %s, got %s", wantResolved, gotResolved)
	}
}

func TestFindRootWithoutManifest(t *testing.T) {
	dir := t.TempDir()

	got, err := FindRoot(dir)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	wantResolved, _ := filepath.EvalSymlinks(dir)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != wantResolved {
		t.Errorf("Expected fallback to start dir %s, got %s", wantResolved, gotResolved)
	}
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("let x = 1\n"))
	b := HashBytes([]byte("let x = 1\n"))
	c := HashBytes([]byte("let x = 2\n"))

	if a != b {
		t.Error("Expected identical content to produce identical digests")
	}
	if a == c {
		t.Error("Expected different content to produce different digests")
	}
}
