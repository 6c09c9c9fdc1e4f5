package loader

import (
	"context"
	"fmt"

	"mjmlc/parser"
)

// Memory resolves includes from a map of path to content.
type Memory struct {
	files  map[string]string
	budget *budget
}

// NewMemory creates loader over files. Map is not copied and must not be
// modified while loader is in use.
func NewMemory(files map[string]string, maxIncludes int) *Memory {
	return &Memory{files: files, budget: newBudget(maxIncludes)}
}

func (m *Memory) Resolve(path string) (string, error) {
	if err := m.budget.take(path); err != nil {
		return "", err
	}
	text, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("include %q: %w", path, parser.ErrNotFound)
	}
	return text, nil
}

// Reset restores full include budget, so loader could serve next document.
func (m *Memory) Reset() {
	m.budget.reset()
}

func (m *Memory) ResolveAsync(ctx context.Context, path string) <-chan parser.Result {
	return resolveAsync(ctx, path, m.Resolve)
}
