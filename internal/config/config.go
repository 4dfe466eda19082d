// Package config loads runtime configuration for a scan.
//
// Three layers, later wins: built-in defaults, the project manifest
// (sable.toml), environment variables with the SABLE_ prefix. Flags are
// applied by the CLI on top of the loaded snapshot.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"sable/internal/baseline"
	"sable/internal/diag"
)

// EnvPrefix is the environment variable namespace: SABLE_OUTPUT_FORMAT=json
// overrides output.format.
const EnvPrefix = "SABLE_"

// Config is the merged configuration snapshot for one invocation.
type Config struct {
	Jobs int `koanf:"jobs"`

	Lint struct {
		// Rules maps a rule name to off|hint|info|warn|error.
		Rules      map[string]string `koanf:"rules"`
		Ignore     []string          `koanf:"ignore"`
		IgnoreFile string            `koanf:"ignore_file"`
		Fix        bool              `koanf:"fix"`
	} `koanf:"lint"`

	Output struct {
		Format         string `koanf:"format"`
		Color          string `koanf:"color"`
		MaxDiagnostics int    `koanf:"max_diagnostics"`
	} `koanf:"output"`

	Baseline struct {
		Path string `koanf:"path"`
	} `koanf:"baseline"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"jobs":                   0, // 0 = GOMAXPROCS
		"lint.fix":               false,
		"output.format":          "pretty",
		"output.color":           "auto",
		"output.max_diagnostics": 100,
		"baseline.path":          baseline.DefaultPath,
	}
}

// Load builds the snapshot. A missing manifest at path is fine: the manifest
// is optional and defaults plus environment still apply. path == "" skips
// the file layer entirely.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: defaults: %w", err)
	}

	if path != "" {
		err := k.Load(file.Provider(path), toml.Parser())
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no layer should have produced.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "pretty", "short", "json", "sarif":
	default:
		return fmt.Errorf("config: output.format must be pretty, short, json or sarif, got %q", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("config: output.color must be auto, on or off, got %q", c.Output.Color)
	}
	if c.Output.MaxDiagnostics < 0 {
		return fmt.Errorf("config: output.max_diagnostics must be >= 0, got %d", c.Output.MaxDiagnostics)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("config: jobs must be >= 0, got %d", c.Jobs)
	}
	for name, level := range c.Lint.Rules {
		if _, ok := ParseLevel(level); !ok {
			return fmt.Errorf("config: lint.rules.%s: unknown level %q", name, level)
		}
	}
	return nil
}

// Level is a rule's configured reporting level.
type Level struct {
	Off      bool
	Severity diag.Severity
}

// ParseLevel maps a config string to a Level. "off" disables the rule,
// everything else is a severity override.
func ParseLevel(s string) (Level, bool) {
	if strings.EqualFold(strings.TrimSpace(s), "off") {
		return Level{Off: true}, true
	}
	sev, ok := diag.ParseSeverity(s)
	if !ok {
		return Level{}, false
	}
	return Level{Severity: sev}, true
}
