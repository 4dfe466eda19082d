// Command sable is the lint engine CLI: tree scans, fix application, a
// language server and a watch mode share one engine underneath.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sable/internal/config"
	"sable/internal/project"
	"sable/internal/rules"
	"sable/internal/version"
)

// errFindings signals error-severity diagnostics after the report already
// went out: exit code 1 without a second error line.
var errFindings = errors.New("diagnostics at error severity")

var rootCmd = &cobra.Command{
	Use:               "sable",
	Short:             "Sable JavaScript/TypeScript lint engine",
	Long:              `Sable scans JavaScript and TypeScript trees, applies fixes and serves diagnostics to editors`,
	PersistentPreRunE: setupRun,
}

func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Number

	// Добавляем команды
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging to stderr")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFindings) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

// setupRun настраивает глобальный логгер и цвет до запуска любой команды.
// Логи всегда идут в stderr: stdout принадлежит отчёту или протоколу.
func setupRun(cmd *cobra.Command, _ []string) error {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	switch {
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		// fatih/color сам распознаёт терминал
	default:
		return fmt.Errorf("invalid color mode %q (must be auto, on or off)", colorFlag)
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// resolveProject locates the project around target and loads the layered
// configuration. Без манифеста корнем становится сама цель: движок обязан
// работать и в проектах, где sable.toml никогда не писали.
func resolveProject(target string) (root string, cfg *config.Config, err error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", nil, fmt.Errorf("cannot stat %s: %w", target, err)
	}
	startDir := target
	if !info.IsDir() {
		startDir = filepath.Dir(target)
	}

	manifest, found, err := project.FindManifest(startDir)
	if err != nil {
		return "", nil, err
	}
	var cfgPath string
	if found {
		cfgPath = manifest
		root = filepath.Dir(manifest)
	} else if root, err = filepath.Abs(startDir); err != nil {
		return "", nil, fmt.Errorf("cannot resolve %s: %w", startDir, err)
	}

	cfg, err = config.Load(cfgPath)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

// enabledRules resolves the built-in registry against lint.rules overrides.
func enabledRules(cfg *config.Config) []rules.Enabled {
	reg := rules.Default()
	known := make(map[string]bool, reg.Len())
	enabled := make([]rules.Enabled, 0, reg.Len())
	for _, rule := range reg.Rules() {
		known[rule.Name] = true
		severity := rule.Severity
		if raw, ok := cfg.Lint.Rules[rule.Name]; ok {
			// Validate уже отвергла неразборчивые уровни
			level, _ := config.ParseLevel(raw)
			if level.Off {
				continue
			}
			severity = level.Severity
		}
		enabled = append(enabled, rules.Enabled{Rule: rule, Severity: severity})
	}
	for name := range cfg.Lint.Rules {
		if !known[name] {
			log.Warn().Str("rule", name).Msg("configuration names an unknown rule")
		}
	}
	return enabled
}
