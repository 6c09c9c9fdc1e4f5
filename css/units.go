// Package css contains small CSS value helpers used by the renderer: lengths,
// directional shorthands, border widths and style block compaction.
package css

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Length is a single CSS dimension. Unit is lower case and empty for plain
// numbers.
type Length struct {
	Value float64
	Unit  string
}

func (l Length) String() string {
	return FormatNumber(l.Value) + l.Unit
}

// IsPercent reports percentage length.
func (l Length) IsPercent() bool {
	return l.Unit == "%"
}

// ParseLength parses exactly one numeric value ("10px", "50%", "0").
func ParseLength(s string) (Length, error) {
	values, err := ParseLengths(s)
	if err != nil {
		return Length{}, err
	}
	if len(values) != 1 {
		return Length{}, fmt.Errorf("expected single length, got %d values in %q", len(values), s)
	}
	return values[0], nil
}

// ParseLengths parses whitespace separated list of numeric values.
func ParseLengths(s string) ([]Length, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty length")
	}

	var res []Length
	lex := css.NewLexer(parse.NewInputString(s))
	for {
		tt, data := lex.Next()
		switch tt {
		case css.ErrorToken:
			return res, nil
		case css.WhitespaceToken:
			continue
		case css.NumberToken:
			v, err := strconv.ParseFloat(string(data), 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q: %w", data, err)
			}
			res = append(res, Length{Value: v})
		case css.PercentageToken:
			v, err := strconv.ParseFloat(strings.TrimSuffix(string(data), "%"), 64)
			if err != nil {
				return nil, fmt.Errorf("bad percentage %q: %w", data, err)
			}
			res = append(res, Length{Value: v, Unit: "%"})
		case css.DimensionToken:
			v, unit := parseDimension(string(data))
			if unit == "" {
				return nil, fmt.Errorf("bad dimension %q", data)
			}
			res = append(res, Length{Value: v, Unit: unit})
		default:
			return nil, fmt.Errorf("unexpected %q in length %q", data, s)
		}
	}
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, err := strconv.ParseFloat(s[:numEnd], 64)
	if err != nil {
		return 0, ""
	}
	return num, strings.ToLower(s[numEnd:])
}

// LeadingInt mimics parseInt semantics of e-mail templating tools: it reads
// optional sign and digits at the start of s and ignores the rest. ok is false
// when s does not start with a number.
func LeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for i, r := range s {
		if (r == '-' || r == '+') && i == 0 {
			continue
		}
		if r < '0' || r > '9' {
			break
		}
		end = i + 1
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatNumber prints number without trailing zeroes.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Unquote removes surrounding quotes from a string.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
