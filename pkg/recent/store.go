// Package recent persists the most-recently-used notebook list.
//
// The list lives in a single JSON array file inside the application data
// directory and is rewritten in full on every change. Within one process all
// load-modify-store sequences are serialized by the Store's mutex, so
// concurrent Add calls never lose each other's update. Writers in other
// processes are not coordinated: the last write wins.
package recent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/entrhq/tangent/pkg/types"
)

const (
	// FileName is the name of the store file inside the data directory.
	FileName = "recent_files.json"

	// DefaultCapacity is the maximum number of entries kept.
	DefaultCapacity = 10
)

// ErrParse marks a store file that exists but does not hold a JSON array of entries.
var ErrParse = errors.New("malformed recent files store")

// ErrInvalidText marks a store file holding bytes that are not UTF-8. It is
// a read failure, not ErrParse, so Add never overwrites such a file.
var ErrInvalidText = errors.New("recent files store is not valid UTF-8")

// Options configures a Store.
type Options struct {
	// Capacity caps the list length. Zero or negative means DefaultCapacity.
	Capacity int

	// StrictLoad makes Add and Remove fail on a malformed store instead of
	// treating it as empty and overwriting it.
	StrictLoad bool
}

// Store reads and writes the recent-file list.
type Store struct {
	dir        string
	path       string
	capacity   int
	strictLoad bool
	mu         sync.Mutex
}

// NewStore creates a store whose file lives in dir. The directory is
// created lazily on the first write.
func NewStore(dir string, opts Options) *Store {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		dir:        dir,
		path:       filepath.Join(dir, FileName),
		capacity:   capacity,
		strictLoad: opts.StrictLoad,
	}
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Dir returns the directory holding the store file.
func (s *Store) Dir() string {
	return s.dir
}

// Capacity returns the maximum list length.
func (s *Store) Capacity() int {
	return s.capacity
}

// List returns the persisted entries, most recent first. A missing store is
// an empty list; a malformed one is an error wrapping ErrParse.
func (s *Store) List() ([]types.RecentFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.load()
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []types.RecentFile{}
	}
	return files, nil
}

// Add records path as the most recently opened notebook. An existing entry
// for the same path is replaced, and the list is cut to capacity.
func (s *Store) Add(entry types.RecentFile) error {
	return s.update(true, func(files []types.RecentFile) []types.RecentFile {
		files = without(files, entry.Path)
		files = append([]types.RecentFile{entry}, files...)
		if len(files) > s.capacity {
			files = files[:s.capacity]
		}
		return files
	})
}

// Remove drops the entry for path, if any. A missing store stays missing.
func (s *Store) Remove(path string) error {
	return s.update(false, func(files []types.RecentFile) []types.RecentFile {
		return without(files, path)
	})
}

// Clear empties the list. A missing store stays missing.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return s.save([]types.RecentFile{})
}

// update runs one load-modify-store cycle under the store lock. When create
// is false and no store file exists, nothing is written.
func (s *Store) update(create bool, mutate func([]types.RecentFile) []types.RecentFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !create {
		if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create app directory: %w", err)
	}

	files, err := s.load()
	if err != nil {
		if !errors.Is(err, ErrParse) || s.strictLoad {
			return err
		}
		// A malformed store is replaced rather than reported.
		files = nil
	}

	return s.save(mutate(files))
}

func (s *Store) load() ([]types.RecentFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read recent files: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("failed to read recent files: %w", ErrInvalidText)
	}

	var files []types.RecentFile
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("failed to parse recent files: %w: %w", ErrParse, err)
	}
	return files, nil
}

func (s *Store) save(files []types.RecentFile) error {
	if files == nil {
		files = []types.RecentFile{}
	}

	data, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to serialize recent files: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write recent files: %w", err)
	}
	return nil
}

func without(files []types.RecentFile, path string) []types.RecentFile {
	kept := files[:0:0]
	for _, f := range files {
		if f.Path != path {
			kept = append(kept, f)
		}
	}
	return kept
}
