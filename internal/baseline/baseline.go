// Package baseline stores fingerprints of known findings so that an adopted
// codebase can gate on new problems without first fixing every old one.
//
// The store is a msgpack file under the project root. A fingerprint survives
// unrelated edits: it keys on the file, the display code, the primary start
// line, and a digest of the message, not on byte offsets.
package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Схема хранилища - инкрементировать при смене формата entry.
const schemaVersion uint16 = 1

// DefaultPath is where a project keeps its baseline, relative to the root.
const DefaultPath = ".sable/baseline.msgpack"

// Key identifies one finding stably across scans.
type Key struct {
	Path string // root-relative slash path
	Code string // display code: rule name or banded ID
	Line uint32 // 0-based primary start line
	Hash string // hex digest of the message
}

// KeyOf builds the fingerprint for a finding.
func KeyOf(path, code string, line uint32, message string) Key {
	sum := sha256.Sum256([]byte(message))
	return Key{Path: path, Code: code, Line: line, Hash: hex.EncodeToString(sum[:8])}
}

type payload struct {
	Schema  uint16
	Entries []Key
}

// Store is an in-memory fingerprint set bound to its file path.
// Thread-safe for concurrent access.
type Store struct {
	mu   sync.RWMutex
	path string
	keys map[Key]struct{}
}

// New returns an empty store bound to path.
func New(path string) *Store {
	return &Store{path: path, keys: make(map[Key]struct{})}
}

// Load reads the store at path. A missing file yields an empty store. A
// corrupt or schema-mismatched file is discarded the same way: the baseline
// is an optimization, never a reason to fail a scan.
func Load(path string) (*Store, error) {
	s := New(path)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("baseline: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var p payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return s, nil
	}
	if p.Schema != schemaVersion {
		return s, nil
	}
	for _, k := range p.Entries {
		s.keys[k] = struct{}{}
	}
	return s, nil
}

// Has reports whether the fingerprint is recorded.
func (s *Store) Has(k Key) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[k]
	return ok
}

// Add records a fingerprint.
func (s *Store) Add(k Key) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[k] = struct{}{}
}

// Len returns the number of recorded fingerprints.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Path returns the file the store saves to.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save writes the store to its path, creating parent directories as needed.
// Entries are sorted so the same set always produces the same bytes.
func (s *Store) Save() error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	entries := make([]Key, 0, len(s.keys))
	for k := range s.keys {
		entries = append(entries, k)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Hash < b.Hash
	})

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("baseline: mkdir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "baseline-*")
	if err != nil {
		return fmt.Errorf("baseline: temp file: %w", err)
	}
	defer func() { _ = os.Remove(f.Name()) }()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload{Schema: schemaVersion, Entries: entries}); err != nil {
		_ = f.Close()
		return fmt.Errorf("baseline: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("baseline: close temp: %w", err)
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), s.path); err != nil {
		return fmt.Errorf("baseline: rename: %w", err)
	}
	return nil
}
