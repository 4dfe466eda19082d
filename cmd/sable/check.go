package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sable/internal/linter"
	"sable/internal/lintfmt"
	"sable/internal/observ"
	"sable/internal/plugin"
	"sable/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Scan a tree and report diagnostics",
	Long: `Check lints every analyzable file under the given path (default: the
current directory) and prints diagnostics in the chosen format.

The exit code is 0 for a clean run, 1 when error-severity diagnostics
remain and 2 when the scan itself failed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("fix", false, "apply safe fixes and report the count")
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().Int("jobs", 0, "parallel workers (0 = all cores)")
	checkCmd.Flags().String("ignore-path", "", "file with ignore patterns, one per line")
	checkCmd.Flags().StringArray("ignore-pattern", nil, "extra ignore pattern, repeatable")
	checkCmd.Flags().Bool("update-baseline", false, "record the current findings as the new baseline")
	checkCmd.Flags().Bool("no-baseline", false, "run without baseline suppression")
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("cannot resolve %s: %w", target, err)
	}

	root, cfg, err := resolveProject(absTarget)
	if err != nil {
		return err
	}

	// Флаги ложатся поверх слоёной конфигурации: явный флаг всегда побеждает.
	applyFixes, err := cmd.Flags().GetBool("fix")
	if err != nil {
		return fmt.Errorf("failed to get fix flag: %w", err)
	}
	if !cmd.Flags().Changed("fix") {
		applyFixes = cfg.Lint.Fix
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if !cmd.Flags().Changed("format") {
		format = cfg.Output.Format
	}
	switch format {
	case "pretty", "short", "json", "sarif":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !cmd.Flags().Changed("jobs") {
		jobs = cfg.Jobs
	}

	ignoreFile, err := cmd.Flags().GetString("ignore-path")
	if err != nil {
		return fmt.Errorf("failed to get ignore-path flag: %w", err)
	}
	if !cmd.Flags().Changed("ignore-path") {
		ignoreFile = cfg.Lint.IgnoreFile
		if ignoreFile != "" && !filepath.IsAbs(ignoreFile) {
			ignoreFile = filepath.Join(root, ignoreFile)
		}
	}

	flagPatterns, err := cmd.Flags().GetStringArray("ignore-pattern")
	if err != nil {
		return fmt.Errorf("failed to get ignore-pattern flag: %w", err)
	}
	patterns := append([]string(nil), cfg.Lint.Ignore...)
	patterns = append(patterns, flagPatterns...)

	updateBaseline, err := cmd.Flags().GetBool("update-baseline")
	if err != nil {
		return fmt.Errorf("failed to get update-baseline flag: %w", err)
	}
	noBaseline, err := cmd.Flags().GetBool("no-baseline")
	if err != nil {
		return fmt.Errorf("failed to get no-baseline flag: %w", err)
	}

	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if !cmd.Root().PersistentFlags().Changed("color") {
		colorMode = cfg.Output.Color
	}
	useColor := colorMode == "on" || (colorMode == "auto" && isTerminal(os.Stdout))

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !cmd.Root().PersistentFlags().Changed("max-diagnostics") {
		maxDiag = cfg.Output.MaxDiagnostics
	}

	store, err := checkBaseline(root, cfg, updateBaseline, noBaseline)
	if err != nil {
		return err
	}

	var tm *observ.Timer
	scanPhase := 0
	if timings {
		tm = observ.NewTimer()
		scanPhase = tm.Begin("scan")
	}

	pipe := linter.NewPipeline(enabledRules(cfg), loadPlugins(root), true)
	opts := linter.Options{
		Root:           root,
		Target:         absTarget,
		IgnoreFile:     ignoreFile,
		IgnorePatterns: patterns,
		ApplyFixes:     applyFixes,
		Jobs:           jobs,
		Baseline:       store,
		UpdateBaseline: updateBaseline,
	}

	// Прогресс-интерфейс только в живом терминале и только для людских
	// форматов: перенаправленный вывод должен остаться чистым.
	interactive := !quiet && isTerminal(os.Stdout) && (format == "pretty" || format == "short")
	var res *linter.ScanResult
	var scanErr error
	if interactive {
		res, scanErr = runScanWithUI(cmd.Context(), "checking "+displayTarget(root, absTarget), pipe, opts)
	} else {
		res, scanErr = linter.Run(cmd.Context(), pipe, opts)
	}
	if res == nil {
		return scanErr
	}
	if tm != nil {
		tm.End(scanPhase, fmt.Sprintf("%d diagnostics", res.Total()))
	}

	if updateBaseline && store != nil {
		if err := store.Save(); err != nil {
			return err
		}
		log.Info().Int("fingerprints", store.Len()).Str("path", store.Path()).Msg("baseline updated")
	}

	renderPhase := 0
	if tm != nil {
		renderPhase = tm.Begin("render")
	}
	if err := renderResult(os.Stdout, res, format, renderOpts{root: root, color: useColor, max: maxDiag}); err != nil {
		return err
	}
	if applyFixes && res.FixedCount > 0 && !quiet && (format == "pretty" || format == "short") {
		fmt.Printf("fixed %d issues\n", res.FixedCount)
	}
	if tm != nil {
		tm.End(renderPhase, format)
		fmt.Fprint(os.Stderr, tm.Summary())
	}

	if scanErr != nil {
		// частичные сбои уже в объединённой ошибке, отчёт при этом напечатан
		return scanErr
	}
	if res.HasErrors() {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errFindings
	}
	return nil
}

type renderOpts struct {
	root  string
	color bool
	max   int
}

func renderResult(w io.Writer, res *linter.ScanResult, format string, o renderOpts) error {
	switch format {
	case "pretty":
		lintfmt.Pretty(w, res, lintfmt.PrettyOpts{Color: o.color, Root: o.root, Context: 2, Max: o.max})
	case "short":
		lintfmt.Short(w, res, lintfmt.ShortOpts{Root: o.root, Max: o.max})
	case "json":
		return lintfmt.JSON(w, res, lintfmt.JSONOpts{Root: o.root, Max: o.max})
	case "sarif":
		meta := lintfmt.SarifRunMeta{ToolName: "sable", ToolVersion: version.Number}
		return lintfmt.Sarif(w, res, meta, lintfmt.SarifOpts{Root: o.root, Max: o.max})
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

// loadPlugins compiles the pack directory under root. Сломанный пак не
// валит скан: предупреждение и работа без паков.
func loadPlugins(root string) *plugin.Slot {
	slot := &plugin.Slot{}
	set, err := plugin.Load(filepath.Join(root, plugin.Dir))
	if err != nil {
		log.Warn().Err(err).Msg("plugin packs not loaded")
		return slot
	}
	if set.Len() > 0 {
		log.Debug().Strs("packs", set.Packs()).Int("rules", set.Len()).Msg("plugin packs loaded")
	}
	slot.Replace(set)
	return slot
}

// displayTarget names the scanned subtree for the progress title.
func displayTarget(root, target string) string {
	if rel, err := filepath.Rel(root, target); err == nil && rel != "." {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(root)
}
