// Package archive builds Walk abstraction on top of "archive/zip" and exposes
// archive content as file system, so documents inside archive can include
// their siblings.
package archive

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Open. The file argument is the zip.File structure for file in archive which
// satisfies match condition. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Archive is opened zip file.
type Archive struct {
	path string
	rc   *zip.ReadCloser
}

// Open opens archive and checks all entry names, archive with entries which
// could escape extraction directory is rejected as a whole.
func Open(name string) (*Archive, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, err
	}
	for _, f := range rc.File {
		if !isSafePath(f.Name) {
			rc.Close()
			return nil, fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
	}
	return &Archive{path: name, rc: rc}, nil
}

func (a *Archive) Close() error {
	return a.rc.Close()
}

// Walk visits files with names starting with prefix in natural name order,
// directories are skipped.
func (a *Archive) Walk(prefix string, walkFn WalkFunc) error {
	files := slices.Clone(a.rc.File)
	slices.SortStableFunc(files, func(x, y *zip.File) int {
		switch {
		case x.Name == y.Name:
			return 0
		case natural.Less(x.Name, y.Name):
			return -1
		}
		return 1
	})
	for _, f := range files {
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		if err := walkFn(a.path, f); err != nil {
			return err
		}
	}
	return nil
}

// Sub returns archive content rooted at dir, which is a slash separated path
// inside archive; "." or empty string mean archive root.
func (a *Archive) Sub(dir string) (fs.FS, error) {
	if dir == "" || dir == "." {
		return &a.rc.Reader, nil
	}
	return fs.Sub(&a.rc.Reader, path.Clean(dir))
}

// Walk opens archive and walks files under prefix, see Archive.Walk.
func Walk(archive, prefix string, walkFn WalkFunc) error {
	a, err := Open(archive)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Walk(prefix, walkFn)
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !slices.Contains(strings.Split(strings.ReplaceAll(name, `\`, "/"), "/"), "..")
}
