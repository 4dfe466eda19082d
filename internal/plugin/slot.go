package plugin

import (
	"context"
	"sync"

	"sable/internal/diag"
	"sable/internal/jsparse"
	"sable/internal/source"
)

// Slot holds the active plugin set for a linter instance. Replace swaps
// the whole set under the write lock; file analysis holds the read lock
// for its duration, so a swap never tears a file mid-check.
type Slot struct {
	mu  sync.RWMutex
	set *Set
}

// Replace installs a new set, discarding the previous one entirely.
func (s *Slot) Replace(set *Set) {
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
}

// Check runs the current set against one file under the read lock.
func (s *Slot) Check(ctx context.Context, tree *jsparse.Tree, file source.FileID) ([]diag.Finding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Check(ctx, tree, file)
}

// Len reports the number of active rules.
func (s *Slot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Len()
}

// Packs lists the active pack names.
func (s *Slot) Packs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return nil
	}
	return s.set.Packs()
}
