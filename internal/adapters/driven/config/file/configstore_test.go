package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_UsesDataDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestOpenConfigFile_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "zenji.toml")

	store, err := OpenConfigFile(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestDefaultDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultDataDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".zenji"), dir)
}

func TestConfigStore_DottedKeysPersistAsTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("ingest.chunk_size", 1200))
	require.NoError(t, store.Set("llm.model", "gpt-5-nano"))
	require.NoError(t, store.Set("ingest.extensions", []string{".pdf", ".md"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[ingest]")
	assert.Contains(t, string(raw), "[llm]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 1200, reloaded.GetInt("ingest.chunk_size"))
	assert.Equal(t, "gpt-5-nano", reloaded.GetString("llm.model"))
	assert.Equal(t, []string{".pdf", ".md"}, reloaded.GetStringSlice("ingest.extensions"))
	assert.Equal(t, []string{"ingest.chunk_size", "ingest.extensions", "llm.model"}, reloaded.Keys())
}

func TestConfigStore_ReadsHandWrittenTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
[retrieval]
top_k = 5

[store]
vector_backend = "postgres"
session_ttl = "2h"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, store.GetInt("retrieval.top_k"))
	assert.Equal(t, "postgres", store.GetString("store.vector_backend"))
	assert.Equal(t, "2h", store.GetString("store.session_ttl"))
}

func TestConfigStore_Coercion(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name  string
		value any
		check func(t *testing.T)
	}{
		{"numeric string as int", "1800", func(t *testing.T) {
			assert.Equal(t, 1800, store.GetInt("k"))
		}},
		{"garbage string as int", "lots", func(t *testing.T) {
			assert.Equal(t, 0, store.GetInt("k"))
		}},
		{"int as string", 42, func(t *testing.T) {
			assert.Equal(t, "42", store.GetString("k"))
		}},
		{"bool string", "true", func(t *testing.T) {
			assert.True(t, store.GetBool("k"))
		}},
		{"comma list", ".pdf, .txt,", func(t *testing.T) {
			assert.Equal(t, []string{".pdf", ".txt"}, store.GetStringSlice("k"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, store.Set("k", tt.value))
			tt.check(t)
		})
	}
}

func TestConfigStore_MissingKey(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	val, ok := store.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Empty(t, store.GetString("nope"))
	assert.Zero(t, store.GetInt("nope"))
	assert.False(t, store.GetBool("nope"))
	assert.Nil(t, store.GetStringSlice("nope"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.api_key", "sk-test"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not toml {{[["), 0600))

	store, err := NewConfigStore(dir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_UncreatableDirectory(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_CommentOnlyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("# nothing\n"), 0600))

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_SetUnmarshallable(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := "section.key" + string(rune('0'+i))
			_ = store.Set(key, i)
			_ = store.GetInt(key)
			_ = store.GetString(key)
		}()
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestNestMap_ConflictingPrefixKeepsDottedKey(t *testing.T) {
	nested := nestMap(map[string]any{
		"a":   1,
		"a.b": 2,
	})

	assert.Equal(t, 1, nested["a"])
	assert.Equal(t, 2, nested["a.b"])
}
