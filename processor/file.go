package processor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaguanLabs/modtl"
)

// Load reads and parses the file at path.
func Load(p ContentProcessor, path string) (Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from discovery
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Parse(data)
}

// Save serializes doc and replaces the file at path. Documents that report
// themselves clean are not written; written is false in that case.
func Save(p ContentProcessor, doc Document, path string) (written bool, err error) {
	if d, ok := doc.(modtl.DirtyDocument); ok && !d.Dirty() {
		return false, nil
	}

	data, err := p.Marshal(doc)
	if err != nil {
		return false, err
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return false, err
	}
	return true, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so a failed write leaves the original intact. The original
// file mode is kept.
func WriteFileAtomic(path string, data []byte) (err error) {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
