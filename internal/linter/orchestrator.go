package linter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"sable/internal/baseline"
	"sable/internal/diag"
	"sable/internal/fix"
	"sable/internal/source"
	"sable/internal/walk"
)

// Options is the immutable per-scan snapshot. Workers read it, nobody
// writes it after the scan starts.
type Options struct {
	// Root anchors baseline fingerprints and relative display paths.
	Root string
	// Target narrows the walk to a subtree or a single file; "" scans Root.
	Target         string
	IgnoreFile     string
	IgnorePatterns []string
	ApplyFixes     bool // splice fixes into the files on disk
	Jobs           int  // 0 = GOMAXPROCS
	Baseline       *baseline.Store
	UpdateBaseline bool
	Sink           ProgressSink
}

type fileResult struct {
	path    string
	diags   []Diagnostic
	fixed   int
	err     error
	elapsed time.Duration
}

// Run executes a whole-project scan: one producer streams discovered paths,
// a bounded worker pool analyzes them, results aggregate as files complete.
// Completion order is arbitrary; renderers sort by path.
//
// A canceled context returns ctx's error with whatever aggregated so far.
// Per-file failures (plugin faults, fix write errors) never stop the other
// files; they come back joined in the error return next to the result.
func Run(ctx context.Context, pipe *Pipeline, opts Options) (*ScanResult, error) {
	patterns := append([]string(nil), walk.DefaultIgnores()...)
	patterns = append(patterns, opts.IgnorePatterns...)
	if opts.IgnoreFile != "" {
		loaded, err := walk.LoadIgnoreFile(opts.IgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("linter: ignore file: %w", err)
		}
		patterns = append(patterns, loaded...)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	sink := sinkOrDiscard(opts.Sink)

	start := opts.Target
	if start == "" {
		start = opts.Root
	}

	g, gctx := errgroup.WithContext(ctx)
	entries := walk.Stream(gctx, start, walk.Options{Ignore: patterns})
	results := make(chan fileResult, jobs)

	// ретранслятор объявляет файлы по мере обнаружения, чтобы прогресс
	// знал знаменатель раньше, чем воркеры доберутся до файла
	queue := make(chan walk.Entry)
	g.Go(func() error {
		defer close(queue)
		for e := range entries {
			if e.Path != "" {
				sink.Post(Event{Path: e.Path, Stage: StageDiscovered})
			}
			select {
			case queue <- e:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < jobs; i++ {
		g.Go(func() error {
			for e := range queue {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if e.Err != nil && e.Path == "" {
					// сломан сам обход - это конец скана, не файла
					return e.Err
				}
				r := processEntry(gctx, pipe, opts, e)
				sink.Post(Event{Path: r.path, Stage: StageScanned, Findings: len(r.diags), Err: r.err, Elapsed: r.elapsed})
				select {
				case results <- r:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- g.Wait()
		close(results)
	}()

	res := NewScanResult()
	var fileErrs []error
	for r := range results {
		if r.err != nil {
			fileErrs = append(fileErrs, fmt.Errorf("%s: %w", r.path, r.err))
		}
		if len(r.diags) > 0 {
			res.Files[r.path] = r.diags
		}
		res.FixedCount += r.fixed
	}

	if err := <-waitCh; err != nil {
		return res, err
	}
	return res, errors.Join(fileErrs...)
}

func processEntry(ctx context.Context, pipe *Pipeline, opts Options, e walk.Entry) (r fileResult) {
	start := time.Now()
	r.path = e.Path
	defer func() { r.elapsed = time.Since(start) }()

	var file *source.File
	var findings []diag.Finding
	if e.Err != nil {
		// нечитаемый элемент обхода отчитывается как файл с одной диагностикой
		fs := source.NewFileSet()
		file = fs.Get(fs.AddVirtual(e.Path, nil))
		findings = []diag.Finding{diag.NewError(diag.IOReadFileError, source.Span{File: file.ID},
			fmt.Sprintf("cannot read file: %v", e.Err))}
	} else {
		var err error
		file, findings, err = pipe.Analyze(ctx, e.Path, nil)
		if err != nil {
			if errors.Is(err, ErrNotAnalyzable) {
				return r
			}
			r.err = err
			return r
		}
	}

	findings = applyBaseline(opts, file, findings)

	if opts.ApplyFixes && file.Flags&source.FileVirtual == 0 {
		out := fix.Apply(file.Content, findings)
		if out.Applied > 0 {
			if err := fix.WriteFile(e.Path, out.Content); err != nil {
				r.err = err
			} else {
				findings = dropIndexes(findings, out.AppliedFindings)
				r.fixed = out.Applied
			}
		}
	}

	r.diags = Translate(file, findings)
	return r
}

// applyBaseline drops findings whose fingerprint the baseline already
// records, or records them all in update mode.
func applyBaseline(opts Options, file *source.File, findings []diag.Finding) []diag.Finding {
	if opts.Baseline == nil || len(findings) == 0 {
		return findings
	}
	rel := relToRoot(opts.Root, file.Path)

	kept := make([]diag.Finding, 0, len(findings))
	for i := range findings {
		f := &findings[i]
		var line uint32
		if pos, ok := file.Lines.Position(f.Primary().Start); ok {
			line = pos.Line
		}
		key := baseline.KeyOf(rel, f.DisplayCode(), line, f.Message)
		if opts.UpdateBaseline {
			opts.Baseline.Add(key)
			kept = append(kept, *f)
			continue
		}
		if !opts.Baseline.Has(key) {
			kept = append(kept, *f)
		}
	}
	return kept
}

func relToRoot(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

func dropIndexes(findings []diag.Finding, drop []int) []diag.Finding {
	if len(drop) == 0 {
		return findings
	}
	dropSet := make(map[int]bool, len(drop))
	for _, i := range drop {
		dropSet[i] = true
	}
	kept := make([]diag.Finding, 0, len(findings)-len(drop))
	for i := range findings {
		if !dropSet[i] {
			kept = append(kept, findings[i])
		}
	}
	return kept
}
