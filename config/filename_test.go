package config

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Weekly news", "Weekly news"},
		{"line breaks in title", "Weekly\n\tnews  ", "Weekly news"},
		{"control characters", "a\x00b\x1bc", "abc"},
		{"separator", "a/b", "ab"},
		{"only dots", "...", badFileName},
		{"empty", "", badFileName},
		{"unicode", "Привет мир", "Привет мир"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFileName(tt.in); got != tt.want {
				t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanFileNameLong(t *testing.T) {
	got := CleanFileName(strings.Repeat("я", maxFileNameBytes))
	if len(got) > maxFileNameBytes || !utf8.ValidString(got) {
		t.Fatalf("name is not cut on rune boundary: %d bytes, valid=%v", len(got), utf8.ValidString(got))
	}
	if got != strings.Repeat("я", maxFileNameBytes/2) {
		t.Fatalf("unexpected cut: %q", got)
	}
}
