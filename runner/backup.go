package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BackupPrefix starts the name of every backup directory.
const BackupPrefix = ".backup_mods_"

// BackupDirName returns the backup directory name for t
// (.backup_mods_YYYYMMDDHHMMSS).
func BackupDirName(t time.Time) string {
	return BackupPrefix + t.Format("20060102150405")
}

// Backup copies files into dir, mirroring each file's path so that files
// with the same base name in different directories do not collide. Copies
// keep the source mode and modification time.
func Backup(files []string, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	for _, f := range files {
		dst := filepath.Join(dir, mirrorPath(f))
		if err := copyFile(f, dst); err != nil {
			return fmt.Errorf("backing up %s: %w", f, err)
		}
	}
	return nil
}

// mirrorPath maps a file path to a relative path inside the backup
// directory. Volume names and leading separators are dropped and ".."
// elements are renamed so the result never escapes the directory.
func mirrorPath(path string) string {
	path = filepath.Clean(path)
	path = strings.TrimPrefix(path, filepath.VolumeName(path))

	var parts []string
	for _, p := range strings.Split(filepath.ToSlash(path), "/") {
		switch p {
		case "", ".":
			continue
		case "..":
			parts = append(parts, "_up")
		default:
			parts = append(parts, p)
		}
	}
	return filepath.Join(parts...)
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src) // #nosec G304 - path comes from discovery
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
