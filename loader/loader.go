// Package loader provides include loaders: in-memory map and fs.FS backed
// (directory or zip archive). Both bound total number of resolutions, which
// stops include cycles. The bound covers loader lifetime: create loader per
// document or call Reset before parsing the next one.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"mjmlc/parser"
)

// DefaultMaxIncludes is used when budget is not positive.
const DefaultMaxIncludes = 64

// ErrTooManyIncludes is returned when loader budget is exhausted.
var ErrTooManyIncludes = errors.New("too many includes")

// budget counts resolutions, safe for concurrent use.
type budget struct {
	limit int64
	used  atomic.Int64
}

func newBudget(limit int) *budget {
	if limit <= 0 {
		limit = DefaultMaxIncludes
	}
	return &budget{limit: int64(limit)}
}

func (b *budget) take(path string) error {
	if n := b.used.Add(1); n > b.limit {
		return fmt.Errorf("include %q: %w (limit %d)", path, ErrTooManyIncludes, b.limit)
	}
	return nil
}

func (b *budget) reset() {
	b.used.Store(0)
}

// resolveAsync runs resolve on separate goroutine.
func resolveAsync(ctx context.Context, path string, resolve func(string) (string, error)) <-chan parser.Result {
	ch := make(chan parser.Result, 1)
	go func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- parser.Result{Err: err}
			return
		}
		text, err := resolve(path)
		ch <- parser.Result{Text: text, Err: err}
	}()
	return ch
}
