//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

func forbiddenInFileName(sym rune) bool {
	return sym == os.PathSeparator || sym == os.PathListSeparator
}

// trimFileName drops leading dots, output must not become hidden file.
func trimFileName(name string) string {
	return strings.TrimSpace(strings.TrimLeft(name, "."))
}

// EnableColorOutput reports whether log level colors could be used on stream.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
