package processor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": "hello"}`), 0o600))

	p := NewJSONProcessor()
	doc, err := Load(p, path)
	require.NoError(t, err)
	translateAll(t, doc, upper)

	written, err := Save(p, doc, path)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": \"HELLO\"\n}\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "mode should be kept")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(NewJSONProcessor(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSave_CleanDocumentNotWritten(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "done.po")
	input := "msgid \"Hello\"\r\nmsgstr \"Bonjour\"\r\n"
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	p := NewPOProcessor()
	doc, err := Load(p, path)
	require.NoError(t, err)

	written, err := Save(p, doc, path)
	require.NoError(t, err)
	assert.False(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, input, string(data), "clean catalogs keep their bytes")
}

func TestWriteFileAtomic_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	require.NoError(t, WriteFileAtomic(path, []byte("one\n")))
	require.NoError(t, WriteFileAtomic(path, []byte("two\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.txt", entries[0].Name())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(data))
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "out.txt"), []byte("x"))
	assert.Error(t, err)
}
