package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Compact removes comments and redundant whitespace from a stylesheet. Strings,
// urls and selectors are kept intact; whitespace that separates two selector
// parts or two values collapses to a single space.
func Compact(stylesheet string) string {
	var (
		b       strings.Builder
		pending bool // whitespace seen and not yet written
		prev    css.TokenType
		prevVal []byte
		// one entry per open brace, true for declaration blocks
		blocks []bool
		// current prelude starts with grouping at-rule
		grouping bool
		// at the start of a prelude
		start = true
	)

	inDecl := func() bool {
		return len(blocks) > 0 && blocks[len(blocks)-1]
	}

	b.Grow(len(stylesheet))
	lex := css.NewLexer(parse.NewInputString(stylesheet))
	for {
		tt, data := lex.Next()
		switch tt {
		case css.ErrorToken:
			return strings.TrimSpace(b.String())
		case css.CommentToken:
			continue
		case css.WhitespaceToken:
			pending = b.Len() > 0
			continue
		}

		if pending && !tightAfter(prev, prevVal) && !tightBefore(tt, data, inDecl()) {
			b.WriteByte(' ')
		}
		pending = false
		b.Write(data)
		prev, prevVal = tt, data

		switch tt {
		case css.AtKeywordToken:
			if start {
				grouping = isGroupingRule(data)
			}
		case css.LeftBraceToken:
			blocks = append(blocks, !grouping)
			grouping, start = false, true
			continue
		case css.RightBraceToken:
			if len(blocks) > 0 {
				blocks = blocks[:len(blocks)-1]
			}
			grouping, start = false, true
			continue
		case css.SemicolonToken:
			grouping, start = false, true
			continue
		}
		start = false
	}
}

func isGroupingRule(kw []byte) bool {
	for _, name := range []string{"@media", "@supports", "@document", "@layer", "@container"} {
		if bytes.EqualFold(kw, []byte(name)) {
			return true
		}
	}
	return false
}

// tightAfter reports tokens that never need whitespace after them.
func tightAfter(tt css.TokenType, data []byte) bool {
	switch tt {
	case css.LeftBraceToken, css.RightBraceToken, css.SemicolonToken,
		css.ColonToken, css.CommaToken:
		return true
	case css.DelimToken:
		return isChild(data)
	}
	return false
}

// tightBefore reports tokens that never need whitespace before them. Outside
// of declarations colon keeps its space: "a :hover" and "a:hover" select
// different things.
func tightBefore(tt css.TokenType, data []byte, decl bool) bool {
	switch tt {
	case css.LeftBraceToken, css.RightBraceToken, css.SemicolonToken,
		css.CommaToken, css.RightParenthesisToken:
		return true
	case css.ColonToken:
		return decl
	case css.DelimToken:
		return isChild(data)
	}
	return false
}

func isChild(data []byte) bool {
	return len(data) == 1 && data[0] == '>'
}
