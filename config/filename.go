package config

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxFileNameBytes leaves room for output extension under common 255 byte
// file name limit.
const maxFileNameBytes = 200

const badFileName = "_bad_file_name_"

// CleanFileName turns single path segment of output name, usually coming from
// document title, into something safe to create on this platform. Characters
// the platform rejects and control characters are dropped, whitespace runs
// become single space and long names are cut on rune boundary.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		switch {
		case unicode.IsSpace(sym):
			return ' '
		case unicode.IsControl(sym) || forbiddenInFileName(sym):
			return -1
		}
		return sym
	}, in)
	out = trimFileName(strings.Join(strings.Fields(out), " "))

	if len(out) > maxFileNameBytes {
		cut := maxFileNameBytes
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = trimFileName(out[:cut])
	}
	if len(out) == 0 {
		out = badFileName
	}
	return out
}
