package linter

import (
	"context"
	"errors"
	"fmt"

	"sable/internal/diag"
	"sable/internal/dialect"
	"sable/internal/jsparse"
	"sable/internal/plugin"
	"sable/internal/rules"
	"sable/internal/sema"
	"sable/internal/source"
)

// ErrNotAnalyzable distinguishes "we do not handle this file" from
// "analyzed, nothing found" at the single-file entry point.
var ErrNotAnalyzable = errors.New("file is not analyzable")

// maxFindingsPerFile bounds one file's bag; a pathological file must not
// balloon the result set.
const maxFindingsPerFile = 500

// Pipeline runs the per-file stage sequence: resolve dialect, parse,
// semantic build, plugin, rules. Stages short-circuit: a stage that fails
// returns its findings and the rest never run.
type Pipeline struct {
	rules     []rules.Enabled
	plugins   *plugin.Slot
	keepFixes bool
}

// NewPipeline builds a pipeline over an immutable rule set. plugins may be
// nil when no pack is configured. keepFixes controls whether findings retain
// their fixes or have them stripped before translation.
func NewPipeline(enabled []rules.Enabled, plugins *plugin.Slot, keepFixes bool) *Pipeline {
	return &Pipeline{rules: enabled, plugins: plugins, keepFixes: keepFixes}
}

type unit struct {
	kind   dialect.Kind
	text   []byte
	offset uint32
}

// Analyze lints one path. override, when non-nil, takes precedence over disk
// content (editor buffers). The returned file carries the full original
// content; every finding span addresses its bytes.
//
// An unreadable file produces a single io-error finding, not an error: one
// bad file must never abort the files around it. The error return is
// reserved for cancellation, plugin failure and unsupported paths.
func (p *Pipeline) Analyze(ctx context.Context, path string, override []byte) (*source.File, []diag.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	kind, native := dialect.FromPath(path)
	partial := dialect.IsPartialPath(path)
	if !native && !partial {
		return nil, nil, ErrNotAnalyzable
	}

	// файловая арена на один вызов, между файлами ничего не шарится
	fs := source.NewFileSet()
	var file *source.File
	if override != nil {
		file = fs.Get(fs.AddVirtual(path, override))
	} else {
		id, err := fs.Load(path)
		if err != nil {
			file = fs.Get(fs.AddVirtual(path, nil))
			f := diag.NewError(diag.IOReadFileError, source.Span{File: file.ID},
				fmt.Sprintf("cannot read file: %v", err))
			return file, []diag.Finding{f}, nil
		}
		file = fs.Get(id)
	}

	var units []unit
	if native {
		units = []unit{{kind: kind, text: file.Content}}
	} else {
		for _, ex := range dialect.ExtractScripts(path, file.Content) {
			units = append(units, unit{kind: ex.Dialect, text: ex.Text, offset: ex.Offset})
		}
	}

	bag := diag.NewBag(maxFindingsPerFile)
	for _, u := range units {
		unitFindings, err := p.analyzeUnit(ctx, u.kind, u.text, file.ID)
		if err != nil {
			return file, nil, err
		}
		for _, f := range unitFindings {
			bag.Add(shiftFinding(f, u.offset))
		}
	}
	bag.Dedup()

	findings := append([]diag.Finding(nil), bag.Items()...)
	if !p.keepFixes {
		rules.StripFixes(findings)
	}
	return file, findings, nil
}

func (p *Pipeline) analyzeUnit(ctx context.Context, kind dialect.Kind, text []byte, id source.FileID) ([]diag.Finding, error) {
	tree, err := jsparse.Parse(ctx, text, kind, jsparse.Options{AllowReturnOutsideFunction: true})
	if err != nil {
		switch {
		case errors.Is(err, jsparse.ErrInvalidEncoding),
			errors.Is(err, jsparse.ErrFileTooLarge),
			errors.Is(err, jsparse.ErrNoGrammar):
			f := diag.NewError(diag.ParseUnsupportedSyntax, source.Span{File: id}, err.Error())
			return []diag.Finding{f}, nil
		default:
			return nil, err
		}
	}
	defer tree.Close()

	if syntax := jsparse.SyntaxFindings(tree, id); len(syntax) > 0 {
		return syntax, nil
	}

	semaRes := sema.Analyze(tree, id, nil)
	if len(semaRes.Findings) > 0 {
		return semaRes.Findings, nil
	}

	var findings []diag.Finding
	if p.plugins != nil && p.plugins.Len() > 0 {
		pluginFindings, err := p.plugins.Check(ctx, tree, id)
		if err != nil {
			// сбой плагина фатален для файла и обязан всплыть
			return nil, fmt.Errorf("plugin check: %w", err)
		}
		findings = append(findings, pluginFindings...)
	}

	findings = append(findings, rules.Run(tree, id, semaRes, p.rules)...)
	return findings, nil
}

// shiftFinding rebases an extracted block's finding onto the enclosing file.
func shiftFinding(f diag.Finding, off uint32) diag.Finding {
	if off == 0 {
		return f
	}
	labels := make([]diag.Label, len(f.Labels))
	for i, lb := range f.Labels {
		lb.Span = lb.Span.ShiftRight(off)
		labels[i] = lb
	}
	f.Labels = labels
	if f.Fix != nil {
		shifted := *f.Fix
		shifted.Span = shifted.Span.ShiftRight(off)
		f.Fix = &shifted
	}
	return f
}
