package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/entrhq/tangent/pkg/notebook"
)

// SectionIDNotebooks is the identifier for the notebooks section
const SectionIDNotebooks = "notebooks"

// NotebooksSection controls notebook file access.
type NotebooksSection struct {
	SaveFolderName  string   `json:"save_folder_name"`
	AtomicWrites    bool     `json:"atomic_writes"`
	AllowedPatterns []string `json:"allowed_patterns"`
	DeniedPatterns  []string `json:"denied_patterns"`
	mu              sync.RWMutex
}

// NewNotebooksSection creates a section with the default save folder,
// in-place writes and no path restrictions.
func NewNotebooksSection() *NotebooksSection {
	return &NotebooksSection{
		SaveFolderName:  notebook.DefaultSaveFolder,
		AllowedPatterns: []string{},
		DeniedPatterns:  []string{},
	}
}

// ID returns the section identifier.
func (s *NotebooksSection) ID() string {
	return SectionIDNotebooks
}

// Title returns the section title.
func (s *NotebooksSection) Title() string {
	return "Notebooks"
}

// Description returns the section description.
func (s *NotebooksSection) Description() string {
	return "Where new notebooks are saved, how they are written and which paths may be opened."
}

// Data returns the current configuration data.
func (s *NotebooksSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"save_folder_name": s.SaveFolderName,
		"atomic_writes":    s.AtomicWrites,
		"allowed_patterns": append([]string{}, s.AllowedPatterns...),
		"denied_patterns":  append([]string{}, s.DeniedPatterns...),
	}
}

// SetData updates the configuration from the provided data.
func (s *NotebooksSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "save_folder_name":
			name, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for save_folder_name: expected string, got %T", value)
			}
			s.SaveFolderName = name

		case "atomic_writes":
			atomic, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for atomic_writes: expected bool, got %T", value)
			}
			s.AtomicWrites = atomic

		case "allowed_patterns":
			patterns, err := toStringSlice(value)
			if err != nil {
				return fmt.Errorf("invalid value for allowed_patterns: %w", err)
			}
			s.AllowedPatterns = patterns

		case "denied_patterns":
			patterns, err := toStringSlice(value)
			if err != nil {
				return fmt.Errorf("invalid value for denied_patterns: %w", err)
			}
			s.DeniedPatterns = patterns
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *NotebooksSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name := strings.TrimSpace(s.SaveFolderName)
	if name == "" {
		return fmt.Errorf("save_folder_name cannot be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("save_folder_name must be a single folder name, got %q", s.SaveFolderName)
	}

	if _, err := notebook.NewPatternMatcher(s.AllowedPatterns, s.DeniedPatterns); err != nil {
		return err
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *NotebooksSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SaveFolderName = notebook.DefaultSaveFolder
	s.AtomicWrites = false
	s.AllowedPatterns = []string{}
	s.DeniedPatterns = []string{}
}

// FileOptions returns the options for notebook.NewFiles.
func (s *NotebooksSection) FileOptions() notebook.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return notebook.Options{
		AllowedPatterns: append([]string{}, s.AllowedPatterns...),
		DeniedPatterns:  append([]string{}, s.DeniedPatterns...),
		AtomicWrites:    s.AtomicWrites,
	}
}

// SaveFolder returns the folder name used under the documents directory.
func (s *NotebooksSection) SaveFolder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SaveFolderName
}

func toStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string{}, v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %T", i, item)
			}
			out = append(out, str)
		}
		return out, nil
	case nil:
		return []string{}, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", value)
	}
}
