package notebook

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// PatternMatcher decides which notebook paths the bridge may touch.
// With no patterns configured every path is allowed.
type PatternMatcher struct {
	allowedPatterns []glob.Glob
	deniedPatterns  []glob.Glob
}

// NewPatternMatcher compiles the allow and deny lists. Patterns use the
// platform path separator, so "*" stays within one path element and "**"
// spans several.
func NewPatternMatcher(allowed, denied []string) (*PatternMatcher, error) {
	pm := &PatternMatcher{}

	for _, pattern := range allowed {
		g, err := glob.Compile(pattern, filepath.Separator)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		pm.allowedPatterns = append(pm.allowedPatterns, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern, filepath.Separator)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		pm.deniedPatterns = append(pm.deniedPatterns, g)
	}

	return pm, nil
}

// IsAllowed reports whether path passes the configured rules.
// Denied patterns take precedence over allowed ones.
func (pm *PatternMatcher) IsAllowed(path string) bool {
	if pm == nil {
		return true
	}

	path = filepath.Clean(path)

	for _, pattern := range pm.deniedPatterns {
		if pattern.Match(path) {
			return false
		}
	}

	if len(pm.allowedPatterns) == 0 {
		return true
	}

	for _, pattern := range pm.allowedPatterns {
		if pattern.Match(path) {
			return true
		}
	}

	return false
}
