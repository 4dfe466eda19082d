package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sable/internal/diag"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sable.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Jobs)
	assert.False(t, cfg.Lint.Fix)
	assert.Equal(t, "pretty", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, 100, cfg.Output.MaxDiagnostics)
	assert.Equal(t, ".sable/baseline.msgpack", cfg.Baseline.Path)
}

func TestLoadMissingManifest(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "sable.toml"))
	require.NoError(t, err)
	assert.Equal(t, "pretty", cfg.Output.Format)
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
jobs = 4

[lint]
fix = true
ignore = ["dist/**", "gen"]
ignore_file = ".sableignore"

[lint.rules]
no-var = "error"
no-debugger = "off"

[output]
format = "json"
max_diagnostics = 10

[baseline]
path = "ci/baseline.msgpack"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Jobs)
	assert.True(t, cfg.Lint.Fix)
	assert.Equal(t, []string{"dist/**", "gen"}, cfg.Lint.Ignore)
	assert.Equal(t, ".sableignore", cfg.Lint.IgnoreFile)
	assert.Equal(t, "error", cfg.Lint.Rules["no-var"])
	assert.Equal(t, "off", cfg.Lint.Rules["no-debugger"])
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 10, cfg.Output.MaxDiagnostics)
	assert.Equal(t, "ci/baseline.msgpack", cfg.Baseline.Path)
}

func TestEnvOverridesManifest(t *testing.T) {
	path := writeManifest(t, `
[output]
format = "short"
`)
	t.Setenv("SABLE_OUTPUT_FORMAT", "sarif")
	t.Setenv("SABLE_JOBS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sarif", cfg.Output.Format)
	assert.Equal(t, 2, cfg.Jobs)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad format", "[output]\nformat = \"xml\"\n"},
		{"bad color", "[output]\ncolor = \"maybe\"\n"},
		{"negative jobs", "jobs = -1\n"},
		{"negative cap", "[output]\nmax_diagnostics = -5\n"},
		{"bad rule level", "[lint.rules]\nno-var = \"loud\"\n"},
		{"broken toml", "jobs = [not toml\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, tc.body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	lv, ok := ParseLevel("off")
	require.True(t, ok)
	assert.True(t, lv.Off)

	lv, ok = ParseLevel("error")
	require.True(t, ok)
	assert.False(t, lv.Off)
	assert.Equal(t, diag.SevError, lv.Severity)

	lv, ok = ParseLevel("warn")
	require.True(t, ok)
	assert.Equal(t, diag.SevWarning, lv.Severity)

	lv, ok = ParseLevel("hint")
	require.True(t, ok)
	assert.Equal(t, diag.SevHint, lv.Severity)

	_, ok = ParseLevel("loud")
	assert.False(t, ok)
}
