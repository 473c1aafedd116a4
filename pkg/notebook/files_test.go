package notebook

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFiles(t *testing.T, opts Options) *Files {
	t.Helper()
	f, err := NewFiles(opts)
	require.NoError(t, err)
	return f
}

func TestReadWriteRoundTrip(t *testing.T) {
	contents := []string{
		"",
		"plain text",
		`{"cells":[{"type":"code","source":"print(1)"}]}`,
		"multi\nline\r\nwith unicode: héllo 世界 🚀",
		strings.Repeat("x", 1<<20),
	}

	for _, atomic := range []bool{false, true} {
		f := newFiles(t, Options{AtomicWrites: atomic})
		for i, content := range contents {
			path := filepath.Join(t.TempDir(), "notebook.tnb")
			require.NoError(t, f.Write(path, content), "case %d", i)

			got, err := f.Read(path)
			require.NoError(t, err, "case %d", i)
			assert.Equal(t, content, got, "case %d", i)
		}
	}
}

func TestWriteOverwrites(t *testing.T) {
	f := newFiles(t, Options{})
	path := filepath.Join(t.TempDir(), "nb.tnb")

	require.NoError(t, f.Write(path, "a much longer first version"))
	require.NoError(t, f.Write(path, "short"))

	got, err := f.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "short", got)
}

func TestReadMissingFile(t *testing.T) {
	f := newFiles(t, Options{})
	got, err := f.Read(filepath.Join(t.TempDir(), "missing.tnb"))
	require.Error(t, err)
	assert.Empty(t, got)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestReadInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binary.tnb")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0o644))

	f := newFiles(t, Options{})
	_, err := f.Read(path)
	assert.ErrorIs(t, err, ErrInvalidText)
}

func TestWriteMissingParent(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		f := newFiles(t, Options{AtomicWrites: atomic})
		path := filepath.Join(t.TempDir(), "no", "such", "dir", "nb.tnb")

		err := f.Write(path, "content")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write file")

		_, statErr := os.Stat(filepath.Dir(path))
		assert.True(t, os.IsNotExist(statErr), "parent directories must not be created")
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := newFiles(t, Options{AtomicWrites: true})
	require.NoError(t, f.Write(filepath.Join(dir, "nb.tnb"), "content"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "nb.tnb", entries[0].Name())
}

func TestPathPolicy(t *testing.T) {
	dir := t.TempDir()
	f := newFiles(t, Options{
		AllowedPatterns: []string{"**.tnb", "**.json"},
		DeniedPatterns:  []string{"**/secret/**"},
	})

	allowed := filepath.Join(dir, "ok.tnb")
	require.NoError(t, f.Write(allowed, "ok"))

	err := f.Write(filepath.Join(dir, "notes.txt"), "nope")
	assert.ErrorIs(t, err, ErrPathDenied)

	secretDir := filepath.Join(dir, "secret")
	require.NoError(t, os.MkdirAll(secretDir, 0o755))
	err = f.Write(filepath.Join(secretDir, "hidden.tnb"), "nope")
	assert.ErrorIs(t, err, ErrPathDenied)

	_, err = f.Read(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrPathDenied)
}

func TestNewFilesInvalidPattern(t *testing.T) {
	_, err := NewFiles(Options{AllowedPatterns: []string{"[unclosed"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid allowed pattern")
}
