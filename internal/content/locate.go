// Package content discovers source documents under a posts root.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotDirectory indicates the posts root exists but is a regular file.
var ErrNotDirectory = errors.New("posts root is not a directory")

// Document identifies a discovered source file. Immutable once located.
type Document struct {
	Path string // absolute path
	Rel  string // slash-separated path relative to the root
	Name string // base name without extension
}

// Locate walks root recursively and returns every regular file found,
// sorted lexicographically by relative path so builds are reproducible.
//
// Hidden entries (names starting with ".") are skipped along with their
// subtrees. An unreadable subtree aborts discovery: the returned error wraps
// fs.ErrPermission and names the offending path. A missing root wraps
// fs.ErrNotExist.
func Locate(root string) ([]Document, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving posts root %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("posts root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	var docs []Document
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if path != absRoot && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		docs = append(docs, Document{
			Path: path,
			Rel:  filepath.ToSlash(rel),
			Name: BaseName(path),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Rel < docs[j].Rel })
	return docs, nil
}

// BaseName returns the file name without directory and final extension.
// "posts/a/hello.world.md" yields "hello.world".
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Filter keeps documents whose extension matches one of exts
// (case-insensitive, with leading dot). An empty exts keeps everything.
func Filter(docs []Document, exts []string) []Document {
	if len(exts) == 0 {
		return docs
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		ext := strings.ToLower(filepath.Ext(d.Path))
		for _, want := range exts {
			if ext == strings.ToLower(want) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
