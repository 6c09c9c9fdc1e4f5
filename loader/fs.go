package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"go.uber.org/zap"

	"mjmlc/parser"
)

// FS resolves include paths against the root of file system, which could be
// os.DirFS or opened zip archive. Parser hands over paths already joined with
// directory of the including file. Paths escaping the root are not found.
type FS struct {
	fsys   fs.FS
	budget *budget
	log    *zap.Logger
}

func NewFS(fsys fs.FS, maxIncludes int, log *zap.Logger) *FS {
	return &FS{fsys: fsys, budget: newBudget(maxIncludes), log: log.Named("loader")}
}

func (l *FS) Resolve(name string) (string, error) {
	if err := l.budget.take(name); err != nil {
		return "", err
	}
	clean, ok := cleanPath(name)
	if !ok {
		return "", fmt.Errorf("include %q: unsafe path: %w", name, parser.ErrNotFound)
	}
	data, err := fs.ReadFile(l.fsys, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("include %q: %w", name, parser.ErrNotFound)
		}
		return "", fmt.Errorf("include %q: %w", name, err)
	}
	l.log.Debug("Include loaded", zap.String("path", clean), zap.Int("size", len(data)))
	return string(data), nil
}

// Reset restores full include budget.
func (l *FS) Reset() {
	l.budget.reset()
}

func (l *FS) ResolveAsync(ctx context.Context, name string) <-chan parser.Result {
	return resolveAsync(ctx, name, l.Resolve)
}

// cleanPath converts include path to fs.FS form. Absolute paths are taken
// relative to the root, parent references which leave the root are rejected.
func cleanPath(name string) (string, bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", false
	}
	clean := path.Clean(name)
	if !fs.ValidPath(clean) || clean == "." {
		return "", false
	}
	return clean, true
}
