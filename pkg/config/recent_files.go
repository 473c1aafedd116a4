package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/tangent/pkg/recent"
)

const (
	// SectionIDRecentFiles is the identifier for the recent files section
	SectionIDRecentFiles = "recent_files"

	maxRecentCapacity = 1000
)

// RecentFilesSection controls the recent-file store.
type RecentFilesSection struct {
	Capacity   int  `json:"capacity"`
	StrictLoad bool `json:"strict_load"`
	mu         sync.RWMutex
}

// NewRecentFilesSection creates a section holding the default capacity and
// lenient loading.
func NewRecentFilesSection() *RecentFilesSection {
	return &RecentFilesSection{Capacity: recent.DefaultCapacity}
}

// ID returns the section identifier.
func (s *RecentFilesSection) ID() string {
	return SectionIDRecentFiles
}

// Title returns the section title.
func (s *RecentFilesSection) Title() string {
	return "Recent Files"
}

// Description returns the section description.
func (s *RecentFilesSection) Description() string {
	return "How many recently opened notebooks are remembered and how a damaged list is handled."
}

// Data returns the current configuration data.
func (s *RecentFilesSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"capacity":    s.Capacity,
		"strict_load": s.StrictLoad,
	}
}

// SetData updates the configuration from the provided data.
func (s *RecentFilesSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "capacity":
			n, err := toInt(value)
			if err != nil {
				return fmt.Errorf("invalid value for capacity: %w", err)
			}
			s.Capacity = n

		case "strict_load":
			strict, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for strict_load: expected bool, got %T", value)
			}
			s.StrictLoad = strict
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *RecentFilesSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Capacity < 1 || s.Capacity > maxRecentCapacity {
		return fmt.Errorf("capacity must be between 1 and %d, got %d", maxRecentCapacity, s.Capacity)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *RecentFilesSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Capacity = recent.DefaultCapacity
	s.StrictLoad = false
}

// StoreOptions returns the options for a recent.Store.
func (s *RecentFilesSection) StoreOptions() recent.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return recent.Options{Capacity: s.Capacity, StrictLoad: s.StrictLoad}
}

// toInt accepts the numeric shapes JSON decoding and Go callers produce.
func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
