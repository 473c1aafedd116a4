package notebook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// DefaultSaveFolder is the folder created under the documents directory.
const DefaultSaveFolder = "Tangent Notebooks"

// ErrPathNotText is returned when the resolved directory is not valid UTF-8.
var ErrPathNotText = errors.New("failed to convert path to string")

// EnsureSaveDirectory creates <documentsDir>/<folder> if it does not exist and
// returns its absolute path. Calling it again is a no-op returning the same path.
func EnsureSaveDirectory(documentsDir, folder string) (string, error) {
	if folder == "" {
		folder = DefaultSaveFolder
	}

	dir, err := filepath.Abs(filepath.Join(documentsDir, folder))
	if err != nil {
		return "", fmt.Errorf("failed to resolve notebooks directory: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create notebooks directory: %w", err)
	}

	if !utf8.ValidString(dir) {
		return "", ErrPathNotText
	}
	return dir, nil
}
