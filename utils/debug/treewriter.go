// Package debug has helpers to print internal structures for diagnostics.
package debug

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented outline of a tree.
type TreeWriter struct {
	w      strings.Builder
	indent string
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{indent: "  "}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(tw.indent)
	}
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes label followed by quoted value.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Attrs writes name=value pairs on a single line, nothing when seq is empty.
func (tw *TreeWriter) Attrs(depth int, seq iter.Seq2[string, string]) {
	first := true
	for k, v := range seq {
		if first {
			tw.pad(depth)
			first = false
		} else {
			tw.w.WriteByte(' ')
		}
		tw.w.WriteString(k)
		tw.w.WriteByte('=')
		tw.w.WriteString(strconv.Quote(v))
	}
	if !first {
		tw.w.WriteByte('\n')
	}
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
