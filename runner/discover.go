// Package runner walks translation targets, backs them up, and rewrites
// each file through its format processor and the string policy.
package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is wrapped by the errors Discover returns for missing targets.
var ErrNotFound = errors.New("not found")

// Matcher reports whether a path has a registered processor.
type Matcher interface {
	Extensions() []string
}

// Discover expands targets into a file list. Directories are walked
// recursively in lexical order and contribute files whose extension is
// registered with m; files are taken as given. Backup directories are not
// descended into. Duplicates are removed, keeping the first occurrence.
// Missing targets are omitted and reported in errs.
func Discover(targets []string, m Matcher) (files []string, errs []error) {
	exts := make(map[string]bool)
	for _, ext := range m.Extensions() {
		exts[strings.ToLower(ext)] = true
	}

	seen := make(map[string]bool)
	add := func(path string) {
		key := filepath.Clean(path)
		if !seen[key] {
			seen[key] = true
			files = append(files, path)
		}
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target, ErrNotFound))
			continue
		}
		if !info.IsDir() {
			add(target)
			continue
		}

		err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, fmt.Errorf("walking %s: %w", path, err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != target && strings.HasPrefix(d.Name(), BackupPrefix) {
					return fs.SkipDir
				}
				return nil
			}
			if exts[strings.ToLower(filepath.Ext(path))] {
				add(path)
			}
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("walking %s: %w", target, err))
		}
	}

	return files, errs
}
