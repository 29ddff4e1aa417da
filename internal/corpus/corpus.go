// Package corpus enumerates candidate plist files under a directory tree,
// the Go-side replacement for the original extractor's dfVFS-backed
// file_entry_lister: a plain filepath.WalkDir since volume-image scanning
// is explicitly out of scope here.
package corpus

import (
	"io/fs"
	"path/filepath"
	"strings"
)

const (
	// MinSize is the smallest file this package will hand back; anything
	// smaller cannot hold a valid plist header.
	MinSize = 8
	// MaxSize bounds how large a single candidate file may be, guarding
	// against runaway memory use when a corpus directory contains
	// unrelated multi-gigabyte files.
	MaxSize = 64 * 1024 * 1024
)

// Walk returns every regular file under root whose size falls within
// [MinSize, MaxSize], skipping files with a .nib extension (compiled
// Interface Builder archives, which the original extractor also excludes).
func Walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".nib") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size := info.Size()
		if size < MinSize || size > MaxSize {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// DisplayPath joins path segments with '/' for log and report output,
// independent of the host OS's path separator.
func DisplayPath(segments []string) string {
	return strings.Join(segments, "/")
}
