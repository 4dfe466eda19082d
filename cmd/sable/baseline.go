package main

import (
	"fmt"
	"path/filepath"

	"sable/internal/baseline"
	"sable/internal/config"
)

// checkBaseline picks the store a check run carries: the recorded set for
// suppression, a fresh one for --update-baseline, none for --no-baseline.
func checkBaseline(root string, cfg *config.Config, update, disabled bool) (*baseline.Store, error) {
	if disabled {
		if update {
			return nil, fmt.Errorf("--update-baseline conflicts with --no-baseline")
		}
		return nil, nil
	}

	path := cfg.Baseline.Path
	if path == "" {
		path = baseline.DefaultPath
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	if update {
		// перезапись с нуля: исправленные находки не живут в базе вечно
		return baseline.New(path), nil
	}
	return baseline.Load(path)
}
