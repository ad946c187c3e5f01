package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupDirName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, ".backup_mods_20240309140507", BackupDirName(ts))
}

func TestBackup_MirrorsPaths(t *testing.T) {
	src := t.TempDir()
	a := filepath.Join(src, "mod1", "strings.json")
	b := filepath.Join(src, "mod2", "strings.json")
	writeFile(t, a, "one")
	writeFile(t, b, "two")

	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chmod(a, 0o600))
	require.NoError(t, os.Chtimes(a, mtime, mtime))

	dest := filepath.Join(t.TempDir(), BackupDirName(time.Now()))
	require.NoError(t, Backup([]string{a, b}, dest))

	copyA := filepath.Join(dest, mirrorPath(a))
	copyB := filepath.Join(dest, mirrorPath(b))
	assert.NotEqual(t, copyA, copyB, "same base names must not collide")
	assert.Equal(t, "one", readFile(t, copyA))
	assert.Equal(t, "two", readFile(t, copyB))

	info, err := os.Stat(copyA)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime), "mtime should be kept, got %v", info.ModTime())
}

func TestBackup_MissingSource(t *testing.T) {
	err := Backup([]string{filepath.Join(t.TempDir(), "missing.txt")}, t.TempDir())
	assert.Error(t, err)
}

func TestMirrorPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mods/a/strings.json", filepath.Join("mods", "a", "strings.json")},
		{"./strings.json", "strings.json"},
		{"/abs/dir/x.po", filepath.Join("abs", "dir", "x.po")},
		{"../up/x.txt", filepath.Join("_up", "up", "x.txt")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mirrorPath(tt.in), tt.in)
	}
}
