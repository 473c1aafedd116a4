package recent

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tangent/pkg/types"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "appdata"), opts)
}

func TestListMissingStore(t *testing.T) {
	store := newTestStore(t, Options{})

	files, err := store.List()
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)

	_, statErr := os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(statErr), "List must not create the data directory")
}

func TestAddCreatesDirectoryAndFile(t *testing.T) {
	store := newTestStore(t, Options{})

	require.NoError(t, store.Add(types.RecentFile{Path: "/a/x.nb", Name: "x", Timestamp: 1000}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"path":"/a/x.nb","name":"x","timestamp":1000}]`, string(data))
}

func TestAddExampleScenario(t *testing.T) {
	store := newTestStore(t, Options{})

	require.NoError(t, store.Add(types.RecentFile{Path: "/a/x.nb", Name: "x", Timestamp: 1000}))
	require.NoError(t, store.Add(types.RecentFile{Path: "/a/y.nb", Name: "y", Timestamp: 2000}))
	require.NoError(t, store.Add(types.RecentFile{Path: "/a/x.nb", Name: "x2", Timestamp: 3000}))

	files, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []types.RecentFile{
		{Path: "/a/x.nb", Name: "x2", Timestamp: 3000},
		{Path: "/a/y.nb", Name: "y", Timestamp: 2000},
	}, files)
}

func TestAddTwiceKeepsOneEntry(t *testing.T) {
	store := newTestStore(t, Options{})

	require.NoError(t, store.Add(types.RecentFile{Path: "/p.nb", Name: "first", Timestamp: 1}))
	require.NoError(t, store.Add(types.RecentFile{Path: "/p.nb", Name: "second", Timestamp: 2}))

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "second", files[0].Name)
	assert.Equal(t, uint64(2), files[0].Timestamp)
}

func TestCapacityBound(t *testing.T) {
	store := newTestStore(t, Options{})

	for i := 0; i < 15; i++ {
		require.NoError(t, store.Add(types.RecentFile{
			Path:      fmt.Sprintf("/nb/%02d.nb", i),
			Name:      fmt.Sprintf("%02d", i),
			Timestamp: uint64(i),
		}))
	}

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, DefaultCapacity)
	for i, f := range files {
		assert.Equal(t, fmt.Sprintf("/nb/%02d.nb", 14-i), f.Path)
	}
}

func TestCustomCapacity(t *testing.T) {
	store := newTestStore(t, Options{Capacity: 3})
	assert.Equal(t, 3, store.Capacity())

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(types.RecentFile{Path: fmt.Sprintf("/%d", i)}))
	}

	files, err := store.List()
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.Equal(t, "/4", files[0].Path)
}

func TestListMalformedStore(t *testing.T) {
	store := newTestStore(t, Options{})
	require.NoError(t, os.MkdirAll(store.Dir(), 0o750))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"not":"an array"}`), 0o600))

	_, err := store.List()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "failed to parse recent files")
}

func TestAddOverwritesMalformedStore(t *testing.T) {
	store := newTestStore(t, Options{})
	require.NoError(t, os.MkdirAll(store.Dir(), 0o750))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`garbage`), 0o600))

	require.NoError(t, store.Add(types.RecentFile{Path: "/new.nb", Name: "new", Timestamp: 5}))

	files, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []types.RecentFile{{Path: "/new.nb", Name: "new", Timestamp: 5}}, files)
}

func TestStrictLoadSurfacesParseError(t *testing.T) {
	store := newTestStore(t, Options{StrictLoad: true})
	require.NoError(t, os.MkdirAll(store.Dir(), 0o750))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`garbage`), 0o600))

	err := store.Add(types.RecentFile{Path: "/new.nb"})
	assert.ErrorIs(t, err, ErrParse)

	data, readErr := os.ReadFile(store.Path())
	require.NoError(t, readErr)
	assert.Equal(t, "garbage", string(data), "strict mode must leave the store untouched")
}

func TestInvalidUTF8Store(t *testing.T) {
	store := newTestStore(t, Options{})
	require.NoError(t, os.MkdirAll(store.Dir(), 0o750))
	content := []byte("[{\"path\":\"/a/\xff.nb\",\"name\":\"x\",\"timestamp\":1}]")
	require.NoError(t, os.WriteFile(store.Path(), content, 0o600))

	_, err := store.List()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidText)
	assert.NotErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "failed to read recent files")

	err = store.Add(types.RecentFile{Path: "/b.nb", Name: "b", Timestamp: 2})
	assert.ErrorIs(t, err, ErrInvalidText)
	assert.ErrorIs(t, store.Remove("/b.nb"), ErrInvalidText)

	data, readErr := os.ReadFile(store.Path())
	require.NoError(t, readErr)
	assert.Equal(t, content, data, "a store that is not UTF-8 must be left untouched")
}

func TestRemove(t *testing.T) {
	store := newTestStore(t, Options{})

	require.NoError(t, store.Remove("/absent.nb"))
	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr), "Remove on a missing store must not create it")

	require.NoError(t, store.Add(types.RecentFile{Path: "/a.nb"}))
	require.NoError(t, store.Add(types.RecentFile{Path: "/b.nb"}))
	require.NoError(t, store.Remove("/a.nb"))
	require.NoError(t, store.Remove("/not-there.nb"))

	files, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []types.RecentFile{{Path: "/b.nb"}}, files)
}

func TestClear(t *testing.T) {
	store := newTestStore(t, Options{})

	require.NoError(t, store.Clear())
	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, store.Add(types.RecentFile{Path: "/a.nb"}))
	require.NoError(t, store.Clear())

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestAddFailsWhenDirectoryIsAFile(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "appdata")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	store := NewStore(blocker, Options{})
	err := store.Add(types.RecentFile{Path: "/a.nb"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create app directory")
}

func TestConcurrentAddsLoseNothing(t *testing.T) {
	store := newTestStore(t, Options{Capacity: 50})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Add(types.RecentFile{Path: fmt.Sprintf("/c/%d.nb", i), Timestamp: uint64(i)}))
		}(i)
	}
	wg.Wait()

	files, err := store.List()
	require.NoError(t, err)

	want := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		want = append(want, fmt.Sprintf("/c/%d.nb", i))
	}
	got := make([]string, 0, len(files))
	for _, f := range files {
		got = append(got, f.Path)
	}
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("recent paths mismatch (-want +got):\n%s", diff)
	}
}
