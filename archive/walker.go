// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/encoding"
)

// Entry is a regular file in archive. Name is entry path, decoded with forced
// code page when archive does not mark it as UTF-8.
type Entry struct {
	Name string
	File *zip.File
}

// WalkFunc is the type of the function called for each entry visited by
// Walk. The archive argument contains path to archive passed to Walk. If an
// error is returned, processing stops.
type WalkFunc func(archive string, entry Entry) error

// Walk visits all regular files in the archive which names start with
// pattern, in natural order of their names. Archives having entries with
// path traversal components ("..") or absolute paths are rejected as a
// whole to prevent Zip Slip attacks. When cp is not nil it is used to decode
// non UTF-8 names.
func Walk(archive, pattern string, cp encoding.Encoding, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if cp != nil && f.FileHeader.NonUTF8 {
			decoded, err := cp.NewDecoder().String(name)
			if err != nil {
				return fmt.Errorf("zip entry %q: unable to decode name: %w", name, err)
			}
			name = decoded
		}
		if strings.HasPrefix(name, pattern) {
			entries = append(entries, Entry{Name: name, File: f})
		}
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Name == b.Name:
			return 0
		case natural.Less(a.Name, b.Name):
			return -1
		}
		return 1
	})

	for _, e := range entries {
		if err := walkFn(archive, e); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
