package linter

import (
	"context"
	"path/filepath"
	"sync"

	"sable/internal/plugin"
	"sable/internal/rules"
)

// Service is the long-lived façade shared by the CLI and the LSP server. It
// holds the immutable rule configuration and the plugin slot, and tracks
// in-flight scans per root so a newer scan supersedes an older one instead
// of racing it.
type Service struct {
	rules   []rules.Enabled
	plugins *plugin.Slot

	mu    sync.Mutex
	scans map[string]*scanHandle
}

type scanHandle struct {
	cancel context.CancelFunc
}

// NewService builds a service over a resolved rule set.
func NewService(enabled []rules.Enabled) *Service {
	return &Service{
		rules:   enabled,
		plugins: &plugin.Slot{},
		scans:   make(map[string]*scanHandle),
	}
}

// ConfigurePlugins loads the pack directory under root and swaps it into the
// slot. The new set replaces the old one wholesale; a root without packs
// yields an empty set, which also replaces.
func (s *Service) ConfigurePlugins(root string) error {
	set, err := plugin.Load(filepath.Join(root, plugin.Dir))
	if err != nil {
		return err
	}
	s.plugins.Replace(set)
	return nil
}

// PluginPacks lists the loaded pack names.
func (s *Service) PluginPacks() []string {
	return s.plugins.Packs()
}

// Plugins returns the slot for pipelines built outside the service.
func (s *Service) Plugins() *plugin.Slot {
	return s.plugins
}

// Scan lints every analyzable file under root with the service's implicit
// configuration: default ignores, fixes retained in the output, nothing
// written to disk. Starting a scan cancels a prior in-flight scan of the
// same root.
func (s *Service) Scan(ctx context.Context, root string) (*ScanResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	h := s.track(root, cancel)
	defer s.untrack(root, h)

	pipe := NewPipeline(s.rules, s.plugins, true)
	return Run(ctx, pipe, Options{Root: root})
}

// ScanFile lints one file, skipping discovery. override, when non-nil, is
// analyzed instead of disk content. Unrecognized extensions return
// ErrNotAnalyzable; an analyzable file with nothing to report returns an
// empty slice.
func (s *Service) ScanFile(ctx context.Context, root, path string, override []byte) ([]Diagnostic, error) {
	if root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	pipe := NewPipeline(s.rules, s.plugins, true)
	file, findings, err := pipe.Analyze(ctx, path, override)
	if err != nil {
		return nil, err
	}
	return Translate(file, findings), nil
}

// Close cancels every in-flight scan.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for root, h := range s.scans {
		h.cancel()
		delete(s.scans, root)
	}
}

func (s *Service) track(root string, cancel context.CancelFunc) *scanHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.scans[root]; ok {
		// новый скан того же корня вытесняет предыдущий
		prev.cancel()
	}
	h := &scanHandle{cancel: cancel}
	s.scans[root] = h
	return h
}

func (s *Service) untrack(root string, h *scanHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.scans[root]; ok && cur == h {
		delete(s.scans, root)
	}
	h.cancel()
}
