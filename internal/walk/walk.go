// Package walk discovers analyzable files under a root directory.
//
// Discovery streams: paths are sent into a bounded channel while the
// filesystem walk is still running, so a large tree never materializes as
// one slice and the consumer applies backpressure through the channel.
package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"sable/internal/dialect"
)

// queueDepth bounds how far discovery runs ahead of the consumers.
const queueDepth = 64

// Entry is one discovery event: a path to analyze, or a walk error that
// should surface as a diagnostic without stopping the walk.
type Entry struct {
	Path string
	Err  error
}

// Options control what the walk skips.
type Options struct {
	// Ignore patterns use doublestar syntax and match root-relative
	// slash paths, both directories (pruned) and files.
	Ignore []string
}

// DefaultIgnores is what a scan ignores with no configuration at all.
func DefaultIgnores() []string {
	return []string{"**/node_modules"}
}

// Stream walks root and sends analyzable paths into the returned channel.
// The channel closes when discovery finishes or ctx is canceled.
func Stream(ctx context.Context, root string, opts Options) <-chan Entry {
	out := make(chan Entry, queueDepth)
	go func() {
		defer close(out)
		walkRoot(ctx, root, opts, out)
	}()
	return out
}

func walkRoot(ctx context.Context, root string, opts Options, out chan<- Entry) {
	for _, p := range opts.Ignore {
		if !doublestar.ValidatePattern(p) {
			send(ctx, out, Entry{Err: fmt.Errorf("walk: invalid ignore pattern %q", p)})
			return
		}
	}

	root = filepath.Clean(root)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			// нечитаемый элемент не валит обход
			if !send(ctx, out, Entry{Path: path, Err: err}) {
				return filepath.SkipAll
			}
			return nil
		}

		rel := relSlash(root, path)
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if hiddenName(d.Name()) || matchAny(opts.Ignore, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := dialect.FromPath(path); !ok && !dialect.IsPartialPath(path) {
			return nil
		}
		if matchAny(opts.Ignore, rel) {
			return nil
		}
		if !send(ctx, out, Entry{Path: path}) {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		send(ctx, out, Entry{Err: err})
	}
}

func send(ctx context.Context, out chan<- Entry, e Entry) bool {
	select {
	case out <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		// шаблоны валидированы на входе
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// hiddenName reports dot-named entries: .git, .cache and friends.
func hiddenName(name string) bool {
	return len(name) > 1 && name[0] == '.'
}

// LoadIgnoreFile reads one pattern per line; blank lines and # comments
// are skipped.
func LoadIgnoreFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}
