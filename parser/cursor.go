package parser

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"

	"mjmlc/css"
	"mjmlc/mjml"
)

// token is a single lexer event with its position in the origin.
type token struct {
	kind xml.TokenType
	data string
	span mjml.Span
}

// eof reports end of input.
func (t token) eof() bool {
	return t.kind == xml.ErrorToken
}

// name returns tag name for start and end tag tokens.
func (t token) name() string {
	switch t.kind {
	case xml.StartTagToken, xml.StartTagPIToken:
		return strings.TrimSpace(strings.TrimLeft(t.data, "<?"))
	case xml.EndTagToken:
		s := strings.TrimPrefix(t.data, "</")
		return strings.TrimSpace(strings.TrimSuffix(s, ">"))
	}
	return ""
}

// nameSpan is span of tag name inside start tag token.
func (t token) nameSpan() mjml.Span {
	s := t.span
	if t.kind == xml.StartTagToken {
		s.Start++
	}
	return s
}

// attribute is a parsed name/value pair together with positions.
type attribute struct {
	name      string
	value     string
	span      mjml.Span // whole attribute
	valueSpan mjml.Span
}

// cursor wraps xml lexer of a single origin: the top level input or an
// included fragment. It keeps one token of lookahead.
type cursor struct {
	origin string
	// dir is where relative include paths of this unit start, empty for
	// top level input.
	dir    string
	in     *parse.Input
	lex    *xml.Lexer
	peeked *token
}

func newCursor(origin, text string) *cursor {
	in := parse.NewInputString(text)
	return &cursor{
		origin: origin,
		in:     in,
		lex:    xml.NewLexer(in),
	}
}

func (c *cursor) errorAt(kind mjml.ErrorKind, span mjml.Span, name, detail string) *mjml.ParseError {
	return &mjml.ParseError{Kind: kind, Span: span, Name: name, Detail: detail}
}

// read pulls next token from the lexer.
func (c *cursor) read() (token, error) {
	kind, data := c.lex.Next()
	end := c.in.Offset()
	tok := token{
		kind: kind,
		data: string(data),
		span: mjml.Span{Origin: c.origin, Start: end - len(data), End: end},
	}
	if kind == xml.ErrorToken {
		tok.span.Start = end
		if err := c.lex.Err(); err != nil && !errors.Is(err, io.EOF) {
			pe := c.errorAt(mjml.UnexpectedToken, tok.span, "", "malformed input")
			pe.Cause = err
			return tok, pe
		}
		return tok, nil
	}
	// attribute tokens carry separating whitespace
	if kind == xml.AttributeToken {
		trimmed := bytes.TrimLeft(data, " \t\r\n")
		tok.span.Start += len(data) - len(trimmed)
		tok.data = string(trimmed)
	}
	return tok, nil
}

// peek returns next token without consuming it.
func (c *cursor) peek() (token, error) {
	if c.peeked != nil {
		return *c.peeked, nil
	}
	tok, err := c.read()
	if err != nil {
		return tok, err
	}
	c.peeked = &tok
	return tok, nil
}

// next consumes next token.
func (c *cursor) next() (token, error) {
	if c.peeked != nil {
		tok := *c.peeked
		c.peeked = nil
		return tok, nil
	}
	return c.read()
}

// nextAttribute consumes attribute of currently open start tag. ok is false
// when there are no more attributes.
func (c *cursor) nextAttribute() (attr attribute, ok bool, err error) {
	tok, err := c.peek()
	if err != nil || tok.kind != xml.AttributeToken {
		return attribute{}, false, err
	}
	c.peeked = nil

	attr.span = tok.span
	name, value, hasValue := strings.Cut(tok.data, "=")
	attr.name = strings.TrimSpace(name)
	if !hasValue {
		attr.valueSpan = mjml.Span{Origin: c.origin, Start: tok.span.End, End: tok.span.End}
		return attr, true, nil
	}
	valueStart := tok.span.Start + len(name) + 1
	valueStart += len(value) - len(strings.TrimLeft(value, " \t\r\n"))
	value = strings.TrimSpace(value)
	attr.value = css.Unquote(value)
	attr.valueSpan = mjml.Span{Origin: c.origin, Start: valueStart, End: valueStart + len(value)}
	if len(attr.value) != len(value) {
		// without quotes
		attr.valueSpan.Start++
		attr.valueSpan.End--
	}
	return attr, true, nil
}

// assertElementEnd consumes end of start tag and reports whether element was
// self-closing.
func (c *cursor) assertElementEnd(name string) (selfClosing bool, err error) {
	tok, err := c.next()
	if err != nil {
		return false, err
	}
	switch tok.kind {
	case xml.StartTagCloseToken:
		return false, nil
	case xml.StartTagCloseVoidToken:
		return true, nil
	case xml.ErrorToken:
		return false, c.errorAt(mjml.EndOfStream, tok.span, name, "start tag is not terminated")
	}
	return false, c.errorAt(mjml.UnexpectedToken, tok.span, name, "expected end of start tag")
}

// assertElementClose consumes closing tag of an element which has no
// content. Whitespace and comments before it are skipped, other text is
// reported through ignored callback.
func (c *cursor) assertElementClose(name string, ignored func(mjml.Span)) error {
	for {
		tok, err := c.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case xml.EndTagToken:
			if tok.name() != name {
				return c.errorAt(mjml.UnexpectedToken, tok.span, tok.name(), "expected </"+name+">")
			}
			return nil
		case xml.TextToken:
			if strings.TrimSpace(tok.data) != "" {
				ignored(tok.span)
			}
		case xml.CommentToken:
		case xml.StartTagToken:
			return c.errorAt(mjml.UnexpectedElement, tok.nameSpan(), tok.name(), "element "+name+" has no children")
		case xml.ErrorToken:
			return c.errorAt(mjml.EndOfStream, tok.span, name, "missing </"+name+">")
		default:
			return c.errorAt(mjml.UnexpectedToken, tok.span, "", "unexpected "+tok.kind.String())
		}
	}
}

// nextText consumes text run or comment. ok is false when next token is
// something else, which is left in place.
func (c *cursor) nextText() (n mjml.Node, ok bool, err error) {
	tok, err := c.peek()
	if err != nil {
		return nil, false, err
	}
	switch tok.kind {
	case xml.TextToken:
		c.peeked = nil
		return &mjml.Text{Value: tok.data}, true, nil
	case xml.CDATAToken:
		c.peeked = nil
		return &mjml.Text{Value: cdataContent(tok.data)}, true, nil
	case xml.CommentToken:
		c.peeked = nil
		return &mjml.Comment{Value: commentContent(tok.data)}, true, nil
	}
	return nil, false, nil
}

// skipInstruction consumes remainder of <?...?> processing instruction.
func (c *cursor) skipInstruction() error {
	for {
		tok, err := c.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case xml.StartTagClosePIToken:
			return nil
		case xml.ErrorToken:
			return c.errorAt(mjml.EndOfStream, tok.span, "", "processing instruction is not terminated")
		}
	}
}

func commentContent(data string) string {
	data = strings.TrimPrefix(data, "<!--")
	return strings.TrimSuffix(data, "-->")
}

func cdataContent(data string) string {
	data = strings.TrimPrefix(data, "<![CDATA[")
	return strings.TrimSuffix(data, "]]>")
}
