package parser

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"mjmlc/mjml"
)

// ErrNotFound should be wrapped by loaders when path does not resolve.
var ErrNotFound = errors.New("not found")

// ErrNoLoader is reported for include directives when parser has no loader.
var ErrNoLoader = errors.New("no include loader configured")

// Loader resolves include paths synchronously.
type Loader interface {
	Resolve(path string) (string, error)
}

// LoaderFunc adapts function to Loader.
type LoaderFunc func(path string) (string, error)

func (f LoaderFunc) Resolve(path string) (string, error) {
	return f(path)
}

// Result is delivered by AsyncLoader.
type Result struct {
	Text string
	Err  error
}

// AsyncLoader resolves include paths asynchronously. Returned channel must
// deliver exactly one result, it may be closed afterwards.
type AsyncLoader interface {
	ResolveAsync(ctx context.Context, path string) <-chan Result
}

// fetchFunc is the only point where parsing may suspend.
type fetchFunc func(ctx context.Context, path string) (string, error)

func syncFetch(l Loader) fetchFunc {
	return func(_ context.Context, path string) (string, error) {
		return l.Resolve(path)
	}
}

func asyncFetch(l AsyncLoader) fetchFunc {
	return func(ctx context.Context, path string) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-l.ResolveAsync(ctx, path):
			if !ok {
				return "", fmt.Errorf("loader closed channel without result for %q", path)
			}
			return res.Text, res.Err
		}
	}
}

func noFetch(_ context.Context, _ string) (string, error) {
	return "", ErrNoLoader
}

// Include types.
const (
	includeMJML = "mjml"
	includeHTML = "html"
	includeCSS  = "css"
)

// includePath resolves include path against directory of the including
// unit. Paths starting with "/" are taken from the loader root.
func includePath(dir, name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(name, "/") {
		return strings.TrimLeft(name, "/")
	}
	if dir == "" || dir == "." {
		return name
	}
	return path.Join(dir, name)
}

// include resolves parsed include directive into nodes to be spliced into
// parent children.
func (p *parser) include(c *cursor, parent mjml.Tag, inc *mjml.Element) ([]mjml.Node, error) {
	name, _ := inc.Attr("path")
	target := includePath(c.dir, name)
	kind, ok := inc.Attr("type")
	if !ok {
		kind = includeMJML
	}

	if kind == includeCSS && parent != mjml.TagHead {
		return nil, &mjml.ParseError{
			Kind:   mjml.UnexpectedElement,
			Span:   inc.Span,
			Name:   string(mjml.TagInclude),
			Detail: "css could be included in head only",
		}
	}

	p.log.Debug("Resolving include", zap.String("path", target), zap.String("type", kind), zap.Stringer("at", inc.Span))
	text, err := p.fetch(p.ctx, target)
	if err != nil {
		if ctxErr := p.ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("include %q: %w", target, err)
		}
		return nil, &mjml.ParseError{Kind: mjml.NotFound, Span: inc.Span, Name: target, Cause: err}
	}

	switch kind {
	case includeCSS:
		attrs := mjml.NewAttributes()
		if v, ok := inc.Attr("css-inline"); ok && v == "inline" {
			attrs.Set("inline", "inline")
		}
		return []mjml.Node{&mjml.Element{
			Tag:      mjml.TagStyle,
			Attrs:    attrs,
			Children: []mjml.Node{&mjml.Text{Value: text}},
			Span:     inc.Span,
		}}, nil
	case includeHTML:
		return []mjml.Node{&mjml.Element{
			Tag:      mjml.TagRaw,
			Attrs:    mjml.NewAttributes(),
			Children: []mjml.Node{&mjml.Text{Value: text}},
			Span:     inc.Span,
		}}, nil
	}
	return p.fragment(target, text, parent)
}

// fragment parses included markup. Full document contributes children of its
// head or body, depending on where it was included, bare fragment contributes
// its top level elements which must be legal for the parent.
func (p *parser) fragment(origin, text string, parent mjml.Tag) ([]mjml.Node, error) {
	c := newCursor(origin, text)
	c.dir = path.Dir(origin)
	if err := p.skipProlog(c); err != nil {
		return nil, err
	}

	tok, err := c.peek()
	if err != nil {
		return nil, err
	}
	if tok.kind == startTag {
		if tag, ok := mjml.LookupTag(tok.name()); ok && tag == mjml.TagRoot {
			c.peeked = nil
			root, err := p.element(c, tok, tag, false)
			if err != nil {
				return nil, err
			}
			if err := p.trailer(c); err != nil {
				return nil, err
			}
			section := mjml.TagBody
			if parent == mjml.TagHead {
				section = mjml.TagHead
			}
			el := root.Child(section)
			if el == nil {
				return nil, nil
			}
			if err := checkContainment(parent, el.Children); err != nil {
				return nil, err
			}
			return el.Children, nil
		}
	}
	return p.children(c, parent, "")
}

// checkContainment makes sure every element taken from included document is
// legal for the element it is spliced into.
func checkContainment(parent mjml.Tag, nodes []mjml.Node) error {
	schema := mjml.SchemaFor(parent)
	for _, n := range nodes {
		el, ok := n.(*mjml.Element)
		if !ok || schema.Allows(el.Tag) {
			continue
		}
		return &mjml.ParseError{
			Kind:   mjml.UnexpectedElement,
			Span:   el.Span,
			Name:   string(el.Tag),
			Detail: "not allowed in " + string(parent),
		}
	}
	return nil
}

// isSpace reports whitespace only text.
func isSpace(s string) bool {
	return strings.TrimSpace(s) == ""
}
