// Package parser turns markup into mjml component tree. Single recursive
// descent implementation serves both synchronous and asynchronous modes, they
// differ only in how include directives are fetched.
package parser

import (
	"context"
	"strings"

	"github.com/tdewolff/parse/v2/xml"
	"go.uber.org/zap"
	"golang.org/x/net/html/atom"

	"mjmlc/mjml"
)

const (
	startTag = xml.StartTagToken
	endTag   = xml.EndTagToken
)

// Options controls include resolution. When both loaders are set Parse uses
// Loader and ParseContext uses AsyncLoader.
type Options struct {
	Loader      Loader
	AsyncLoader AsyncLoader
	// Origin names top level input in error positions.
	Origin string
}

type parser struct {
	ctx      context.Context
	fetch    fetchFunc
	log      *zap.Logger
	warnings []mjml.Warning
}

// Parse parses document synchronously.
func Parse(text string, opts Options, log *zap.Logger) (*mjml.Document, error) {
	fetch := noFetch
	switch {
	case opts.Loader != nil:
		fetch = syncFetch(opts.Loader)
	case opts.AsyncLoader != nil:
		fetch = asyncFetch(opts.AsyncLoader)
	}
	return run(context.Background(), text, opts.Origin, fetch, log)
}

// ParseContext parses document waiting for asynchronous loader on includes.
// Cancelling ctx abandons parsing while waiting for the loader.
func ParseContext(ctx context.Context, text string, opts Options, log *zap.Logger) (*mjml.Document, error) {
	fetch := noFetch
	switch {
	case opts.AsyncLoader != nil:
		fetch = asyncFetch(opts.AsyncLoader)
	case opts.Loader != nil:
		fetch = syncFetch(opts.Loader)
	}
	return run(ctx, text, opts.Origin, fetch, log)
}

func run(ctx context.Context, text, origin string, fetch fetchFunc, log *zap.Logger) (*mjml.Document, error) {
	p := &parser{
		ctx:   ctx,
		fetch: fetch,
		log:   log.Named("parser"),
	}
	root, err := p.document(newCursor(origin, text))
	if err != nil {
		return nil, err
	}
	return &mjml.Document{Root: root, Warnings: p.warnings}, nil
}

func (p *parser) warn(kind mjml.WarningKind, span mjml.Span, name string) {
	w := mjml.Warning{Kind: kind, Span: span, Name: name}
	p.log.Debug("Parse warning", zap.Stringer("kind", kind), zap.String("name", name), zap.Stringer("at", span))
	p.warnings = append(p.warnings, w)
}

// skipProlog consumes everything before the first element: whitespace,
// comments, xml declaration and doctype.
func (p *parser) skipProlog(c *cursor) error {
	for {
		tok, err := c.peek()
		if err != nil {
			return err
		}
		switch tok.kind {
		case xml.TextToken:
			if !isSpace(tok.data) {
				return nil
			}
		case xml.CommentToken:
		case xml.DOCTYPEToken:
			p.warn(mjml.IgnoredProlog, tok.span, "doctype")
		case xml.StartTagPIToken:
			c.peeked = nil
			p.warn(mjml.IgnoredProlog, tok.span, tok.name())
			if err := c.skipInstruction(); err != nil {
				return err
			}
			continue
		default:
			return nil
		}
		c.peeked = nil
	}
}

// trailer accepts only whitespace and comments after root element.
func (p *parser) trailer(c *cursor) error {
	for {
		tok, err := c.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case xml.ErrorToken:
			return nil
		case xml.CommentToken:
		case xml.TextToken:
			if !isSpace(tok.data) {
				p.warn(mjml.IgnoredText, tok.span, "")
			}
		default:
			return &mjml.ParseError{Kind: mjml.UnexpectedToken, Span: tok.span, Name: tok.name(), Detail: "content after root element"}
		}
	}
}

func (p *parser) document(c *cursor) (*mjml.Element, error) {
	if err := p.skipProlog(c); err != nil {
		return nil, err
	}
	tok, err := c.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case xml.ErrorToken:
		return nil, &mjml.ParseError{Kind: mjml.EndOfStream, Span: tok.span, Detail: "no root element"}
	case startTag:
	default:
		return nil, &mjml.ParseError{Kind: mjml.UnexpectedToken, Span: tok.span, Detail: "expected root element"}
	}
	if tag, ok := mjml.LookupTag(tok.name()); !ok || tag != mjml.TagRoot {
		return nil, &mjml.ParseError{Kind: mjml.UnexpectedElement, Span: tok.nameSpan(), Name: tok.name(), Detail: "expected root element"}
	}
	root, err := p.element(c, tok, mjml.TagRoot, false)
	if err != nil {
		return nil, err
	}
	if err := p.trailer(c); err != nil {
		return nil, err
	}
	return root, nil
}

// element parses dialect element after its start tag was consumed. Type
// defaults inside attributes block are parsed with defaults set: attributes
// are checked against target schema, required ones are not enforced and no
// content is allowed.
func (p *parser) element(c *cursor, start token, tag mjml.Tag, defaults bool) (*mjml.Element, error) {
	schema := mjml.SchemaFor(tag)
	name := start.name()
	el := &mjml.Element{Tag: tag, Attrs: mjml.NewAttributes(), Span: start.span}

	for {
		attr, ok, err := c.nextAttribute()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err := schema.CheckAttribute(attr.name, attr.value); err != nil {
			pe := err.(*mjml.ParseError)
			pe.Span = attr.span
			if pe.Kind == mjml.InvalidFormat {
				pe.Span = attr.valueSpan
			}
			return nil, pe
		}
		if el.Attrs.Set(attr.name, attr.value) {
			p.warn(mjml.DuplicateAttribute, attr.span, attr.name)
		}
	}

	if !defaults {
		for _, req := range schema.Required {
			if !el.Attrs.Has(req) {
				return nil, &mjml.ParseError{Kind: mjml.MissingAttribute, Span: start.span, Name: req, Detail: "required by " + name}
			}
		}
		if tag == mjml.TagSocialElement && !el.Attrs.Has("src") {
			network, _ := el.Attr("name")
			if _, known := mjml.LookupNetwork(network); !known {
				p.warn(mjml.UnknownNetwork, start.span, network)
			}
		}
	}

	selfClosing, err := c.assertElementEnd(name)
	if err != nil {
		return nil, err
	}
	if selfClosing {
		el.Span.End = c.in.Offset()
		return el, nil
	}

	shape := schema.Children
	if defaults {
		shape = mjml.ChildrenNone
	}
	switch shape {
	case mjml.ChildrenNone:
		err = c.assertElementClose(name, func(s mjml.Span) { p.warn(mjml.IgnoredText, s, name) })
	case mjml.ChildrenText:
		el.Children, err = p.text(c, name)
	case mjml.ChildrenHTML:
		el.Children, err = p.markup(c, name, true)
	case mjml.ChildrenAny:
		el.Children, err = p.markup(c, name, false)
	case mjml.ChildrenElements:
		el.Children, err = p.children(c, tag, name)
	}
	if err != nil {
		return nil, err
	}
	el.Span.End = c.in.Offset()
	return el, nil
}

// text collects text runs and comments up to closing tag.
func (p *parser) text(c *cursor, name string) ([]mjml.Node, error) {
	var res []mjml.Node
	for {
		n, ok, err := c.nextText()
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, n)
			continue
		}
		tok, err := c.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case endTag:
			if tok.name() != name {
				return nil, &mjml.ParseError{Kind: mjml.UnexpectedToken, Span: tok.span, Name: tok.name(), Detail: "expected </" + name + ">"}
			}
			return res, nil
		case startTag:
			return nil, &mjml.ParseError{Kind: mjml.UnexpectedElement, Span: tok.nameSpan(), Name: tok.name(), Detail: name + " accepts text only"}
		case xml.ErrorToken:
			return nil, &mjml.ParseError{Kind: mjml.EndOfStream, Span: tok.span, Name: name, Detail: "missing </" + name + ">"}
		default:
			return nil, &mjml.ParseError{Kind: mjml.UnexpectedToken, Span: tok.span, Detail: "unexpected " + tok.kind.String()}
		}
	}
}

// children parses dialect children of parent up to closing tag name. Empty
// name means included fragment, parsed up to the end of input.
func (p *parser) children(c *cursor, parent mjml.Tag, name string) ([]mjml.Node, error) {
	schema := mjml.SchemaFor(parent)
	var res []mjml.Node
	for {
		tok, err := c.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case xml.ErrorToken:
			if name == "" {
				return res, nil
			}
			return nil, &mjml.ParseError{Kind: mjml.EndOfStream, Span: tok.span, Name: name, Detail: "missing </" + name + ">"}
		case endTag:
			if name == "" || tok.name() != name {
				return nil, &mjml.ParseError{Kind: mjml.UnexpectedToken, Span: tok.span, Name: tok.name(), Detail: "unbalanced closing tag"}
			}
			return res, nil
		case xml.TextToken, xml.CDATAToken:
			if !isSpace(tok.data) {
				p.warn(mjml.IgnoredText, tok.span, string(parent))
			}
		case xml.CommentToken:
			res = append(res, &mjml.Comment{Value: commentContent(tok.data)})
		case startTag:
			tag, ok := mjml.LookupTag(tok.name())
			if !ok || !schema.Allows(tag) {
				return nil, &mjml.ParseError{
					Kind:   mjml.UnexpectedElement,
					Span:   tok.nameSpan(),
					Name:   tok.name(),
					Detail: "not allowed in " + string(parent),
				}
			}
			defaults := parent == mjml.TagAttributes && tag != mjml.TagAll && tag != mjml.TagClass
			el, err := p.element(c, tok, tag, defaults)
			if err != nil {
				return nil, err
			}
			if tag != mjml.TagInclude {
				res = append(res, el)
				continue
			}
			nodes, err := p.include(c, parent, el)
			if err != nil {
				return nil, err
			}
			res = append(res, nodes...)
		default:
			return nil, &mjml.ParseError{Kind: mjml.UnexpectedToken, Span: tok.span, Detail: "unexpected " + tok.kind.String()}
		}
	}
}

// markup parses passthrough HTML up to closing tag name. When strict is set
// only tags known to HTML are accepted.
func (p *parser) markup(c *cursor, name string, strict bool) ([]mjml.Node, error) {
	var res []mjml.Node
	for {
		n, ok, err := c.nextText()
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, n)
			continue
		}
		tok, err := c.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case endTag:
			if tok.name() != name {
				return nil, &mjml.ParseError{Kind: mjml.UnexpectedToken, Span: tok.span, Name: tok.name(), Detail: "expected </" + name + ">"}
			}
			return res, nil
		case startTag:
			raw, err := p.rawElement(c, tok, strict)
			if err != nil {
				return nil, err
			}
			res = append(res, raw)
		case xml.ErrorToken:
			return nil, &mjml.ParseError{Kind: mjml.EndOfStream, Span: tok.span, Name: name, Detail: "missing </" + name + ">"}
		default:
			return nil, &mjml.ParseError{Kind: mjml.UnexpectedToken, Span: tok.span, Detail: "unexpected " + tok.kind.String()}
		}
	}
}

func (p *parser) rawElement(c *cursor, start token, strict bool) (*mjml.Raw, error) {
	name := start.name()
	if strict && atom.Lookup([]byte(strings.ToLower(name))) == 0 {
		return nil, &mjml.ParseError{Kind: mjml.UnexpectedElement, Span: start.nameSpan(), Name: name, Detail: "unknown HTML element"}
	}

	raw := &mjml.Raw{Name: name, Attrs: mjml.NewAttributes()}
	for {
		attr, ok, err := c.nextAttribute()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if raw.Attrs.Set(attr.name, attr.value) {
			p.warn(mjml.DuplicateAttribute, attr.span, attr.name)
		}
	}

	selfClosing, err := c.assertElementEnd(name)
	if err != nil {
		return nil, err
	}
	if selfClosing {
		raw.SelfClosing = true
		return raw, nil
	}
	if mjml.IsVoid(name) {
		// tolerate explicit closing of void element
		if tok, err := c.peek(); err == nil && tok.kind == endTag && tok.name() == name {
			c.peeked = nil
		}
		return raw, nil
	}
	raw.Children, err = p.markup(c, name, strict)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
