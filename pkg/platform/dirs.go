// Package platform resolves the per-user directories the bridge depends on:
// the application data directory (private storage for the recent-file list,
// settings and logs) and the user's documents directory.
package platform

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultIdentifier names the application data subdirectory.
const DefaultIdentifier = "com.tangent.notebook"

// ErrUnavailable is returned when the platform cannot supply a directory.
var ErrUnavailable = errors.New("platform directory unavailable")

// baseDirs are the platform locations the resolver builds on.
type baseDirs struct {
	Home      string
	DataHome  string
	Documents string
}

// xdgDirs reads the locations adrg/xdg resolved from the environment, the
// user-dirs.dirs file on Unix and the known folders on Windows.
func xdgDirs() baseDirs {
	return baseDirs{
		Home:      xdg.Home,
		DataHome:  xdg.DataHome,
		Documents: xdg.UserDirs.Documents,
	}
}

// Resolver resolves platform directories. The zero value is not usable;
// call NewResolver.
type Resolver struct {
	// Identifier is appended to the platform data directory to form the
	// application data directory.
	Identifier string

	// AppDataOverride, when set, is returned by AppDataDir verbatim.
	AppDataOverride string

	// DocumentsOverride, when set, is returned by DocumentsDir verbatim.
	DocumentsOverride string

	dirs func() baseDirs
}

// NewResolver creates a resolver for the running operating system.
func NewResolver(identifier string) *Resolver {
	if identifier == "" {
		identifier = DefaultIdentifier
	}
	return &Resolver{
		Identifier: identifier,
		dirs:       xdgDirs,
	}
}

// AppDataDir returns the application data directory. It does not create it.
func (r *Resolver) AppDataDir() (string, error) {
	if r.AppDataOverride != "" {
		return filepath.Abs(r.AppDataOverride)
	}

	base := r.dirs().DataHome
	if !filepath.IsAbs(base) {
		return "", fmt.Errorf("failed to get app data directory: %w: no data home", ErrUnavailable)
	}
	return filepath.Join(base, r.Identifier), nil
}

// DocumentsDir returns the user's documents directory. It does not create it.
//
// A documents location equal to the home directory is not accepted; the
// bridge falls back to <home>/Documents instead.
func (r *Resolver) DocumentsDir() (string, error) {
	if r.DocumentsOverride != "" {
		return filepath.Abs(r.DocumentsOverride)
	}

	dirs := r.dirs()
	if !filepath.IsAbs(dirs.Home) {
		return "", fmt.Errorf("failed to get documents directory: %w: cannot determine home directory", ErrUnavailable)
	}
	home := filepath.Clean(dirs.Home)

	if docs := dirs.Documents; filepath.IsAbs(docs) && filepath.Clean(docs) != home {
		return docs, nil
	}
	return filepath.Join(home, "Documents"), nil
}
