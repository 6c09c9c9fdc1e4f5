// Package render turns parsed component tree into HTML e-mail markup.
package render

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"mjmlc/css"
	"mjmlc/mjml"
)

// Render produces HTML document. Output depends only on the document and
// options, the same input always renders to the same bytes.
func Render(doc *mjml.Document, opts Options, log *zap.Logger) (string, error) {
	if doc == nil || doc.Root == nil {
		return "", errors.New("nothing to render")
	}

	w := newWalker(opts, log)
	w.root(doc.Root)
	if head := doc.Head(); head != nil {
		w.head(head)
	}

	var body string
	if el := doc.Body(); el != nil {
		body = w.render(w.component(el, nil))
	}
	if w.err != nil {
		return "", w.err
	}

	out := mergeConditionals(w.document(body))
	w.log.Debug("Rendered",
		zap.Int("bytes", len(out)),
		zap.Int("media queries", len(w.ctx.mediaQueries)),
		zap.Int("component styles", len(w.ctx.componentStyles)))
	return out, nil
}

// slot is width assigned to column or group by its parent.
type slot struct {
	px  float64
	pct float64
	// class names width for media query
	class   string
	inGroup bool
}

// walker carries state of a single render call.
type walker struct {
	opts  Options
	ctx   *Context
	res   *resolver
	log   *zap.Logger
	slots map[*mjml.Element]slot
	// first render error, rendering continues with fallback values
	err error
}

func newWalker(opts Options, log *zap.Logger) *walker {
	return &walker{
		opts:  opts,
		ctx:   NewContext(opts),
		res:   newResolver(),
		log:   log.Named("render"),
		slots: make(map[*mjml.Element]slot),
	}
}

func (w *walker) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *walker) component(el *mjml.Element, inherited *mjml.Attributes) *component {
	return &component{
		el:     el,
		w:      w,
		schema: mjml.SchemaFor(el.Tag),
		probes: w.res.chain(el, inherited),
	}
}

func (w *walker) render(c *component) string {
	switch c.el.Tag {
	case mjml.TagBody:
		return c.body()
	case mjml.TagWrapper:
		return c.wrapper()
	case mjml.TagSection:
		return c.section()
	case mjml.TagGroup:
		return c.group()
	case mjml.TagColumn:
		return c.column()
	case mjml.TagHero:
		return c.hero()
	case mjml.TagText:
		return c.text()
	case mjml.TagImage:
		return c.image()
	case mjml.TagButton:
		return c.button()
	case mjml.TagDivider:
		return c.divider()
	case mjml.TagSpacer:
		return c.spacer()
	case mjml.TagTable:
		return c.table()
	case mjml.TagSocial:
		return c.social()
	case mjml.TagSocialElement:
		return c.socialElement()
	case mjml.TagNavbar:
		return c.navbar()
	case mjml.TagNavbarLink:
		return c.navbarLink()
	case mjml.TagAccordion:
		return c.accordion()
	case mjml.TagAccordionElement:
		return c.accordionElement()
	case mjml.TagAccordionTitle:
		return c.accordionTitle()
	case mjml.TagAccordionText:
		return c.accordionText()
	case mjml.TagCarousel:
		return c.carousel()
	case mjml.TagCarouselImage:
		return c.carouselImage()
	case mjml.TagRaw:
		return c.raw()
	default:
		// includes are spliced by the parser, head elements never get here
		w.log.Debug("Element is not rendered", zap.Stringer("tag", c.el.Tag), zap.Stringer("at", c.el.Span))
		return ""
	}
}

// component is element being rendered together with its attribute sources.
type component struct {
	el     *mjml.Element
	w      *walker
	schema *mjml.Schema
	probes []probe
}

func (c *component) ctx() *Context {
	return c.w.ctx
}

// lookup resolves attribute through the cascade. Values coming from "all"
// and "class" blocks are checked against element schema here, bad ones are
// reported and skipped.
func (c *component) lookup(name string) (string, bool) {
	return resolve(c.probes, name, func(src source, value string) bool {
		if !src.unchecked() || c.schema == nil {
			return true
		}
		t, known := c.schema.Attribute(name)
		if !known {
			return true
		}
		if err := t.Check(value); err != nil {
			c.w.fail(&Error{Tag: c.el.Tag, Attribute: name, Value: value, Span: c.el.Span, Cause: err})
			return false
		}
		return true
	})
}

func (c *component) attr(name string) string {
	v, _ := c.lookup(name)
	return v
}

func (c *component) has(name string) bool {
	v, ok := c.lookup(name)
	return ok && v != ""
}

// length parses attribute as single CSS length.
func (c *component) length(name string) (css.Length, bool) {
	v := c.attr(name)
	if v == "" {
		return css.Length{}, false
	}
	l, err := css.ParseLength(v)
	if err != nil {
		return css.Length{}, false
	}
	return l, true
}

// px returns attribute as pixels, percentages and keywords are rejected.
func (c *component) px(name string) (float64, bool) {
	l, ok := c.length(name)
	if !ok || l.IsPercent() {
		return 0, false
	}
	return l.Value, true
}

// sides expands shorthand attribute, per side attributes win.
func (c *component) sides(prefix string) css.Box {
	b := css.ParseBox(c.attr(prefix))
	for _, side := range []struct {
		name string
		v    *int
	}{
		{"top", &b.Top}, {"right", &b.Right}, {"bottom", &b.Bottom}, {"left", &b.Left},
	} {
		if v := c.attr(prefix + "-" + side.name); v != "" {
			*side.v, _ = css.LeadingInt(v)
		}
	}
	return b
}

// border returns width of border on one side.
func (c *component) border(side string) int {
	if v := c.attr("border-" + side); v != "" {
		return css.BorderWidth(v)
	}
	return css.BorderWidth(c.attr("border"))
}

// boxWidth returns container width and width left for content once
// horizontal paddings and borders are subtracted.
func (c *component) boxWidth() (container, box float64) {
	container, _ = c.ctx().ContainerWidth()
	pad := c.sides("padding")
	box = container - float64(pad.Horizontal()+c.border("left")+c.border("right"))
	return container, max(box, 0)
}

func (c *component) cssClass() string {
	return c.attr("css-class")
}

// paddingStyles renders padding shorthand followed by explicit sides.
func (c *component) paddingStyles(prefix, property string) []string {
	return []string{
		property, c.attr(prefix),
		property + "-top", c.attr(prefix + "-top"),
		property + "-right", c.attr(prefix + "-right"),
		property + "-bottom", c.attr(prefix + "-bottom"),
		property + "-left", c.attr(prefix + "-left"),
	}
}

// inherit collects non empty attributes of the component to be passed to
// children under the same or mapped names. Pairs are child name, own name.
func (c *component) inherit(pairs ...string) *mjml.Attributes {
	res := mjml.NewAttributes()
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := c.attr(pairs[i+1]); v != "" {
			res.Set(pairs[i], v)
		}
	}
	return res
}

// same is shortcut for inherit when names do not change.
func (c *component) same(names ...string) *mjml.Attributes {
	pairs := make([]string, 0, 2*len(names))
	for _, n := range names {
		pairs = append(pairs, n, n)
	}
	return c.inherit(pairs...)
}

// children renders child nodes in order. Element children are counted as
// siblings and passed through wrap, raw elements are emitted as is.
// Whitespace text between elements is dropped.
func (c *component) children(inherited *mjml.Attributes, wrap func(*component, string) string) string {
	var b strings.Builder
	count := 0
	for _, el := range c.el.ChildElements() {
		if el.Tag != mjml.TagRaw {
			count++
		}
	}
	index := 0
	for _, n := range c.el.Children {
		switch n := n.(type) {
		case *mjml.Comment:
			if c.w.opts.KeepComments {
				b.WriteString("<!--" + n.Value + "-->")
			}
		case *mjml.Element:
			child := c.w.component(n, inherited)
			if n.Tag == mjml.TagRaw {
				b.WriteString(c.w.render(child))
				continue
			}
			c.ctx().pushSiblings(count, index)
			html := c.w.render(child)
			c.ctx().popSiblings()
			index++
			if wrap != nil {
				html = wrap(child, html)
			}
			b.WriteString(html)
		}
	}
	return b.String()
}

// childElements returns components of non raw children in order.
func (c *component) childElements(inherited *mjml.Attributes) []*component {
	var res []*component
	for _, el := range c.el.ChildElements() {
		if el.Tag != mjml.TagRaw {
			res = append(res, c.w.component(el, inherited))
		}
	}
	return res
}

// content returns passthrough content of ending tag element.
func (c *component) content() string {
	return c.w.content(c.el.Children)
}
