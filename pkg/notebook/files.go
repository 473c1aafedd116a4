// Package notebook implements the notebook file operations of the bridge:
// whole-file text reads and writes at caller-chosen paths, and resolution of
// the default save folder.
//
// Content is opaque. The package imposes no schema and no size limit; the
// only check on read is that the bytes are valid UTF-8.
package notebook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

var (
	// ErrInvalidText is returned when a file's content is not valid UTF-8.
	ErrInvalidText = errors.New("stream did not contain valid UTF-8")

	// ErrPathDenied is returned when the path policy rejects a path.
	ErrPathDenied = errors.New("path is not allowed by notebook path policy")
)

const fileMode = 0o644

// Options configures Files.
type Options struct {
	// AllowedPatterns and DeniedPatterns restrict the paths Files accepts.
	// Both empty means every path is allowed.
	AllowedPatterns []string
	DeniedPatterns  []string

	// AtomicWrites makes Write go through a temporary file and a rename.
	// When false Write truncates the target in place, so a failure mid-write
	// can leave a truncated file behind.
	AtomicWrites bool
}

// Files reads and writes notebook files.
type Files struct {
	matcher      *PatternMatcher
	atomicWrites bool
}

// NewFiles creates a Files with the given options.
func NewFiles(opts Options) (*Files, error) {
	matcher, err := NewPatternMatcher(opts.AllowedPatterns, opts.DeniedPatterns)
	if err != nil {
		return nil, err
	}
	return &Files{
		matcher:      matcher,
		atomicWrites: opts.AtomicWrites,
	}, nil
}

// Read returns the full content of the file at path.
func (f *Files) Read(path string) (string, error) {
	if err := f.checkPath(path); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("failed to read file: %w", ErrInvalidText)
	}
	return string(data), nil
}

// Write replaces the file at path with content, creating it if needed.
// Parent directories are not created.
func (f *Files) Write(path, content string) error {
	if err := f.checkPath(path); err != nil {
		return err
	}

	if f.atomicWrites {
		return writeAtomic(path, content)
	}

	if err := os.WriteFile(path, []byte(content), fileMode); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (f *Files) checkPath(path string) error {
	if !f.matcher.IsAllowed(path) {
		return fmt.Errorf("%w: %s", ErrPathDenied, path)
	}
	return nil
}

// writeAtomic writes to a temporary file next to path and renames it over
// the target.
func writeAtomic(path, content string) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
