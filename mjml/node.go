// Package mjml defines the component tree produced by the parser and consumed
// by the renderer, together with the per-element grammar and parse error
// taxonomy.
package mjml

import (
	"fmt"
	"strings"
)

// Span locates a node or token in its source. Origin is empty for the
// top-level input and holds the include path for included fragments. Start and
// End are byte offsets into that origin.
type Span struct {
	Origin string
	Start  int
	End    int
}

func (s Span) String() string {
	origin := s.Origin
	if origin == "" {
		origin = "<input>"
	}
	return fmt.Sprintf("%s:%d..%d", origin, s.Start, s.End)
}

// Node is a member of the component tree. The set of implementations is
// closed: *Element, *Text, *Comment and *Raw.
type Node interface {
	node()
}

// Element is a dialect element. Children shape is fixed per tag by the schema
// and enforced while parsing.
type Element struct {
	Tag      Tag
	Attrs    *Attributes
	Children []Node
	Span     Span
}

// Text is a text run, kept verbatim (entities are not decoded).
type Text struct {
	Value string
}

// Comment holds comment content without delimiters.
type Comment struct {
	Value string
}

// Raw is markup outside of the dialect vocabulary, passed through to the
// output. Children are *Text, *Comment and *Raw only.
type Raw struct {
	Name        string
	Attrs       *Attributes
	Children    []Node
	SelfClosing bool
}

func (*Element) node() {}
func (*Text) node()    {}
func (*Comment) node() {}
func (*Raw) node()     {}

// Attr returns local attribute value.
func (e *Element) Attr(name string) (string, bool) {
	if e == nil || e.Attrs == nil {
		return "", false
	}
	return e.Attrs.Get(name)
}

// ChildElements returns element children in document order, skipping text,
// comments and raw markup.
func (e *Element) ChildElements() []*Element {
	var res []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			res = append(res, el)
		}
	}
	return res
}

// Child returns first element child with requested tag.
func (e *Element) Child(tag Tag) *Element {
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Tag == tag {
			return el
		}
	}
	return nil
}

// Text concatenates text children with surrounding space trimmed.
func (e *Element) Text() string {
	var b strings.Builder
	for _, n := range e.Children {
		if t, ok := n.(*Text); ok {
			b.WriteString(t.Value)
		}
	}
	return strings.TrimSpace(b.String())
}

// Document is the result of a successful parse.
type Document struct {
	Root     *Element
	Warnings []Warning
}

// Head returns head element of the document, if any.
func (d *Document) Head() *Element {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.Child(TagHead)
}

// Body returns body element of the document, if any.
func (d *Document) Body() *Element {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.Child(TagBody)
}
