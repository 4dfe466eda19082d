// Package watch drives continuous linting: it follows filesystem events
// under a project root and emits debounced batches of work. Raw events are
// noisy (editors fire several writes per save, tools touch files without
// changing them), so batches are deduplicated and content-digested before
// they reach the consumer.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"sable/internal/dialect"
	"sable/internal/plugin"
	"sable/internal/project"
)

// Batch is one debounced group of changes. Rescan means the manifest or a
// plugin pack changed and per-file paths are not enough.
type Batch struct {
	Paths  []string
	Rescan bool
}

type change struct {
	path   string
	config bool
	remove bool
}

// Options tune the watcher.
type Options struct {
	// Debounce is how long a quiet period must last before a batch flushes.
	Debounce time.Duration
	// Ignore patterns use doublestar syntax over root-relative slash paths.
	Ignore []string
}

// Watcher follows one root. Create it with New, run it with Run, consume
// Batches until the channel closes.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	ignore   []string
	limiter  *rate.Limiter

	changes  chan change
	batches  chan Batch
	done     chan struct{}
	stopOnce sync.Once
}

func New(root string, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{
		root:     filepath.Clean(root),
		fsw:      fsw,
		debounce: debounce,
		ignore:   opts.Ignore,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1), // полный рескан не чаще раза в секунду
		changes:  make(chan change, 256),
		batches:  make(chan Batch, 8),
		done:     make(chan struct{}),
	}, nil
}

// Batches delivers debounced work. The channel closes when the watcher
// stops.
func (w *Watcher) Batches() <-chan Batch {
	return w.batches
}

// Run watches until ctx is canceled or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.processEvents(ctx)
	}()
	go func() {
		defer wg.Done()
		w.batchLoop(ctx)
	}()
	wg.Wait()
	close(w.batches)
	return nil
}

// Close stops the watcher; Run returns shortly after.
func (w *Watcher) Close() {
	w.stopOnce.Do(func() {
		close(w.done)
		if err := w.fsw.Close(); err != nil {
			log.Debug().Err(err).Msg("fsnotify close")
		}
	})
}

// addRecursive registers dir and everything below it, pruning ignored and
// hidden directories. The plugin pack directory stays watched despite being
// hidden. Unreadable subtrees are skipped, not fatal.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			if w.ignored(path) {
				return filepath.SkipDir
			}
			if hiddenName(d.Name()) && !pluginDirRelated(w.relSlash(path)) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			log.Warn().Err(err).Str("dir", path).Msg("failed to watch directory")
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if w.ignored(path) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if hiddenName(filepath.Base(path)) && !pluginDirRelated(w.relSlash(path)) {
				return
			}
			// новые каталоги подхватываются на лету
			if err := w.addRecursive(path); err != nil {
				log.Warn().Err(err).Str("dir", path).Msg("failed to watch new directory")
			}
			return
		}
	}
	if hiddenName(filepath.Base(path)) && !isConfigChange(w.root, path) {
		return
	}

	c := change{path: path, config: isConfigChange(w.root, path)}
	if !c.config {
		if _, native := dialect.FromPath(path); !native && !dialect.IsPartialPath(path) {
			return
		}
	}
	c.remove = ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)

	select {
	case w.changes <- c:
	default:
		log.Debug().Str("path", path).Msg("change buffer full, event dropped")
	}
}

// batchLoop collects changes while events keep arriving and flushes a batch
// once the debounce window passes in silence.
func (w *Watcher) batchLoop(ctx context.Context) {
	pending := make(map[string]change)
	digests := make(map[string]project.Digest)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
		batch, ok := reduce(pending, digests)
		pending = make(map[string]change)
		if !ok {
			return
		}
		if batch.Rescan {
			// конфигурация меняется пачками, ждём свой слот
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
		}
		select {
		case w.batches <- batch:
		case <-ctx.Done():
		case <-w.done:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case c := <-w.changes:
			pending[c.path] = c
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// reduce folds one debounced window into the batch to emit. Writes whose
// content digest did not change are dropped; config changes demand a rescan.
func reduce(pending map[string]change, digests map[string]project.Digest) (Batch, bool) {
	var batch Batch
	for _, c := range pending {
		if c.remove {
			delete(digests, c.path)
			if c.config {
				batch.Rescan = true
			}
			continue
		}
		data, err := os.ReadFile(c.path)
		if err != nil {
			// файл исчез между событием и чтением
			delete(digests, c.path)
			continue
		}
		digest := project.HashBytes(data)
		if prev, seen := digests[c.path]; seen && prev == digest {
			continue
		}
		digests[c.path] = digest
		if c.config {
			batch.Rescan = true
			continue
		}
		batch.Paths = append(batch.Paths, c.path)
	}
	if !batch.Rescan && len(batch.Paths) == 0 {
		return Batch{}, false
	}
	sort.Strings(batch.Paths)
	return batch, true
}

func (w *Watcher) ignored(path string) bool {
	rel := w.relSlash(path)
	for _, p := range w.ignore {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) relSlash(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// pluginDirRelated reports rel paths that must stay watched even though
// hidden: the pack directory, its ancestors and its contents.
func pluginDirRelated(rel string) bool {
	dir := plugin.Dir + "/"
	rel += "/"
	return strings.HasPrefix(dir, rel) || strings.HasPrefix(rel, dir)
}

func isConfigChange(root, path string) bool {
	if filepath.Base(path) == project.ManifestName {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(filepath.ToSlash(rel), plugin.Dir+"/")
}

func hiddenName(name string) bool {
	return len(name) > 1 && name[0] == '.'
}
