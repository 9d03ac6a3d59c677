package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state", "repositories.json")
}

func TestOpen_MissingFileIsFreshStart(t *testing.T) {
	path := statePath(t)

	store, err := Open(path)
	require.NoError(t, err)

	assert.DirExists(t, filepath.Dir(path))
	assert.NoFileExists(t, path)
	assert.False(t, store.Get("sample").Processed())
	assert.Empty(t, store.Names())
}

func TestSet_PersistsAndReloads(t *testing.T) {
	path := statePath(t)
	store, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, store.Set("sample", ProcessedAt("c1")))
	require.NoError(t, store.Set("alpha", NeverProcessed()))

	assert.Equal(t, "c1", store.Get("sample").Commit())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "c1", reopened.Get("sample").Commit())
	assert.False(t, reopened.Get("alpha").Processed())
	assert.Equal(t, []string{"alpha", "sample"}, reopened.Names())
}

func TestSet_FileFormat(t *testing.T) {
	path := statePath(t)
	store, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, store.Set("zeta", ProcessedAt("abc<>&")))
	require.NoError(t, store.Set("alpha", NeverProcessed()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected := "{\n" +
		"  \"alpha\": {\n" +
		"    \"last_synced_commit\": null\n" +
		"  },\n" +
		"  \"zeta\": {\n" +
		"    \"last_synced_commit\": \"abc<>&\"\n" +
		"  }\n" +
		"}\n"
	assert.Equal(t, expected, string(data))
}

func TestSet_LeavesNoTemporaryFiles(t *testing.T) {
	path := statePath(t)
	store, err := Open(path)
	require.NoError(t, err)

	for _, c := range []string{"c1", "c2", "c3"} {
		require.NoError(t, store.Set("sample", ProcessedAt(c)))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "repositories.json", entries[0].Name())
}

func TestSet_WriteFailureKeepsMemoryUpdate(t *testing.T) {
	path := statePath(t)
	store, err := Open(path)
	require.NoError(t, err)

	// Replace the state directory with a plain file so the temp file cannot be created.
	dir := filepath.Dir(path)
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0o600))

	err = store.Set("sample", ProcessedAt("c1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, path, ioErr.Path)

	assert.Equal(t, "c1", store.Get("sample").Commit())
}

func TestOpen_CorruptFiles(t *testing.T) {
	cases := map[string]string{
		"list":                "[]",
		"null":                "null",
		"empty":               "",
		"scalar":              "42",
		"invalid json":        "{\"sample\": ",
		"value not object":    "{\"sample\": \"c1\"}",
		"value list":          "{\"sample\": []}",
		"commit not a string": "{\"sample\": {\"last_synced_commit\": 7}}",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := statePath(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			store, err := Open(path)
			require.Error(t, err)
			assert.Nil(t, store)
			assert.True(t, errors.Is(err, ErrCorrupt))
			var corrupt *CorruptError
			assert.ErrorAs(t, err, &corrupt)
		})
	}
}

func TestOpen_AcceptsNullAndMissingCommit(t *testing.T) {
	path := statePath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	content := `{"a": {"last_synced_commit": null}, "b": {}, "c": {"last_synced_commit": "c3", "extra": 1}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store, err := Open(path)
	require.NoError(t, err)
	assert.False(t, store.Get("a").Processed())
	assert.False(t, store.Get("b").Processed())
	assert.Equal(t, "c3", store.Get("c").Commit())
}

func TestClear_IsIdempotent(t *testing.T) {
	path := statePath(t)
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("sample", ProcessedAt("c1")))
	require.FileExists(t, path)

	require.NoError(t, store.Clear())
	assert.NoFileExists(t, path)
	assert.False(t, store.Get("sample").Processed())

	require.NoError(t, store.Clear())
}

func TestGet_ReturnsCopies(t *testing.T) {
	store, err := Open(statePath(t))
	require.NoError(t, err)
	require.NoError(t, store.Set("sample", ProcessedAt("c1")))

	got := store.Get("sample")
	*got.LastSyncedCommit = "mutated"

	assert.Equal(t, "c1", store.Get("sample").Commit())
}
