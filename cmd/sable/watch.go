package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sable/internal/linter"
	"sable/internal/lintfmt"
	"sable/internal/walk"
	"sable/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Rescan files as they change",
	Long: `Watch monitors the project tree and rescans what changed: edited files
individually, the whole tree when configuration or plugin packs change.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !cmd.Root().PersistentFlags().Changed("max-diagnostics") {
		maxDiag = cfg.Output.MaxDiagnostics
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet && zerolog.GlobalLevel() > zerolog.InfoLevel {
		// статусные строки - основной вывод режима наблюдения
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	svc := linter.NewService(enabledRules(cfg))
	defer svc.Close()
	if err := svc.ConfigurePlugins(root); err != nil {
		log.Warn().Err(err).Msg("plugin packs not loaded")
	}

	patterns := append([]string(nil), walk.DefaultIgnores()...)
	patterns = append(patterns, cfg.Lint.Ignore...)
	if cfg.Lint.IgnoreFile != "" {
		ignorePath := cfg.Lint.IgnoreFile
		if !filepath.IsAbs(ignorePath) {
			ignorePath = filepath.Join(root, ignorePath)
		}
		loaded, err := walk.LoadIgnoreFile(ignorePath)
		if err != nil {
			return fmt.Errorf("watch: ignore file: %w", err)
		}
		patterns = append(patterns, loaded...)
	}

	w, err := watch.New(root, watch.Options{Ignore: patterns})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	log.Info().Str("root", root).Msg("watching")
	fullRescan(ctx, svc, root, maxDiag)

	batches := w.Batches()
	for {
		select {
		case <-sig:
			log.Info().Msg("stopping")
			cancel()
			<-runErr
			return nil
		case err := <-runErr:
			// наблюдатель остановился: сломанный корень или отменённый контекст
			return err
		case b, ok := <-batches:
			if !ok {
				batches = nil // канал закрыт, ждём завершения Run
				continue
			}
			if b.Rescan {
				if err := svc.ConfigurePlugins(root); err != nil {
					log.Warn().Err(err).Msg("plugin packs not reloaded")
				}
				fullRescan(ctx, svc, root, maxDiag)
				continue
			}
			for _, p := range b.Paths {
				rescanFile(ctx, svc, root, p, maxDiag)
			}
		}
	}
}

func fullRescan(ctx context.Context, svc *linter.Service, root string, maxDiag int) {
	res, err := svc.Scan(ctx, root)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("scan finished with errors")
	}
	if res == nil {
		return
	}
	lintfmt.Short(os.Stdout, res, lintfmt.ShortOpts{Root: root, Max: maxDiag})
	log.Info().Int("files", len(res.Files)).Int("diagnostics", res.Total()).Msg("full rescan")
}

func rescanFile(ctx context.Context, svc *linter.Service, root, path string, maxDiag int) {
	diags, err := svc.ScanFile(ctx, root, path, nil)
	if err != nil {
		if errors.Is(err, linter.ErrNotAnalyzable) || ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Str("path", path).Msg("rescan failed")
		return
	}

	res := linter.NewScanResult()
	if len(diags) > 0 {
		res.Files[path] = diags
	}
	lintfmt.Short(os.Stdout, res, lintfmt.ShortOpts{Root: root, Max: maxDiag})

	rel := path
	if r, err := filepath.Rel(root, path); err == nil {
		rel = filepath.ToSlash(r)
	}
	log.Info().Str("path", rel).Int("diagnostics", len(diags)).Msg("rescanned")
}
