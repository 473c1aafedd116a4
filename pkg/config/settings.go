package config

import (
	"fmt"
	"path/filepath"
)

// Settings bundles the persisted settings of the bridge.
type Settings struct {
	*Manager
	RecentFiles *RecentFilesSection
	Notebooks   *NotebooksSection
}

// DefaultSettingsPath returns the settings file inside appDataDir.
func DefaultSettingsPath(appDataDir string) string {
	return filepath.Join(appDataDir, SettingsFileName)
}

// OpenSettings loads the settings file at path, registering the default
// sections. A missing file yields defaults and is not written.
func OpenSettings(path string) (*Settings, error) {
	store, err := NewFileStore(path)
	if err != nil {
		return nil, err
	}
	return NewSettings(store)
}

// NewSettings registers the default sections on store and loads them.
func NewSettings(store Store) (*Settings, error) {
	s := &Settings{
		Manager:     NewManager(store),
		RecentFiles: NewRecentFilesSection(),
		Notebooks:   NewNotebooksSection(),
	}

	for _, section := range []Section{s.RecentFiles, s.Notebooks} {
		if err := s.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := s.LoadAll(); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}
