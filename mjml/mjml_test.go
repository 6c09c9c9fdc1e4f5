package mjml

import (
	"errors"
	"strings"
	"testing"
)

func TestLookupTag(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
		ok   bool
	}{
		{"root", TagRoot, true},
		{"mjml", TagRoot, true},
		{"section", TagSection, true},
		{"mj-section", TagSection, true},
		{"mj-accordion-title", TagAccordionTitle, true},
		{"mj-root", "", false},
		{"mj-", "", false},
		{"bogus-tag", "", false},
		{"div", "", false},
	}
	for _, tt := range tests {
		got, ok := LookupTag(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("LookupTag(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if n := TagSocialElement.LegacyName(); n != "mj-social-element" {
		t.Fatalf("LegacyName = %q", n)
	}
	if n := TagRoot.LegacyName(); n != "mjml" {
		t.Fatalf("LegacyName = %q", n)
	}
}

func TestAttributesOrder(t *testing.T) {
	a := NewAttributes("padding", "10px", "align", "left")
	if overwritten := a.Set("padding", "0"); !overwritten {
		t.Fatalf("Set on existing key should report overwrite")
	}
	if overwritten := a.Set("color", "red"); overwritten {
		t.Fatalf("Set on new key reported overwrite")
	}
	keys := strings.Join(a.Keys(), ",")
	if keys != "padding,align,color" {
		t.Fatalf("keys = %s", keys)
	}
	if v, _ := a.Get("padding"); v != "0" {
		t.Fatalf("padding = %q", v)
	}
	c := a.Clone()
	c.Set("align", "right")
	if v, _ := a.Get("align"); v != "left" {
		t.Fatalf("clone shares storage")
	}

	var nilAttrs *Attributes
	if nilAttrs.Len() != 0 || nilAttrs.Has("x") {
		t.Fatalf("nil attributes must be empty")
	}
}

func TestSchemaAllows(t *testing.T) {
	tests := []struct {
		parent, child Tag
		want          bool
	}{
		{TagRoot, TagBody, true},
		{TagBody, TagSection, true},
		{TagBody, TagColumn, false},
		{TagSection, TagColumn, true},
		{TagSection, TagText, false},
		{TagGroup, TagColumn, true},
		{TagGroup, TagInclude, false},
		{TagColumn, TagText, true},
		{TagHead, TagFont, true},
		{TagHead, TagSection, false},
		{TagAttributes, TagAll, true},
		{TagAttributes, TagText, true},
		{TagAttributes, TagFont, false},
		{TagText, TagText, false},
		{TagImage, TagText, false},
	}
	for _, tt := range tests {
		if got := SchemaFor(tt.parent).Allows(tt.child); got != tt.want {
			t.Fatalf("%s allows %s = %v, want %v", tt.parent, tt.child, got, tt.want)
		}
	}
}

func TestSchemaCheckAttribute(t *testing.T) {
	tests := []struct {
		tag         Tag
		name, value string
		kind        ErrorKind
	}{
		{TagColumn, "width", "50%", 0},
		{TagColumn, "width", "300px", 0},
		{TagColumn, "width", "wide", InvalidFormat},
		{TagColumn, "width", "10em", InvalidFormat},
		{TagSection, "padding", "10px 25px", 0},
		{TagSection, "padding", "1px 2px 3px 4px 5px", InvalidFormat},
		{TagSection, "full-width", "full-width", 0},
		{TagSection, "full-width", "yes", InvalidFormat},
		{TagText, "line-height", "1.5", 0},
		{TagText, "css-class", "hero", 0},
		{TagText, "bogus", "1", UnexpectedAttribute},
		{TagImage, "height", "auto", 0},
		{TagTable, "cellpadding", "4", 0},
		{TagTable, "cellpadding", "four", InvalidFormat},
		{TagRoot, "lang", "en-US", 0},
		{TagRoot, "lang", "not a language", InvalidFormat},
		{TagRoot, "css-class", "x", UnexpectedAttribute},
		{TagAll, "anything", "goes", 0},
		{TagFont, "weight", "400", UnexpectedAttribute},
	}
	for _, tt := range tests {
		err := SchemaFor(tt.tag).CheckAttribute(tt.name, tt.value)
		if got := KindOf(err); got != tt.kind {
			t.Fatalf("%s %s=%q: kind %v, want %v (err %v)", tt.tag, tt.name, tt.value, got, tt.kind, err)
		}
	}
}

func TestBodyTags(t *testing.T) {
	tags := BodyTags()
	for _, tag := range tags {
		if tag == TagHead || tag == TagFont || tag == TagRoot {
			t.Fatalf("%s must not be a body tag", tag)
		}
	}
	for i := 1; i < len(tags); i++ {
		if tags[i-1] >= tags[i] {
			t.Fatalf("body tags are not sorted: %v", tags)
		}
	}
}

func TestParseErrorIs(t *testing.T) {
	err := &ParseError{Kind: MissingAttribute, Name: "href", Span: Span{Start: 6, End: 30}}
	if !errors.Is(err, &ParseError{Kind: MissingAttribute}) {
		t.Fatalf("errors.Is by kind failed")
	}
	if errors.Is(err, &ParseError{Kind: EndOfStream}) {
		t.Fatalf("errors.Is matched wrong kind")
	}
	msg := err.Error()
	if !strings.Contains(msg, `"href"`) || !strings.Contains(msg, "<input>:6..30") {
		t.Fatalf("unexpected message %q", msg)
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Fatalf("plain error has kind")
	}
}

func TestDump(t *testing.T) {
	root := &Element{
		Tag:   TagRoot,
		Attrs: NewAttributes(),
		Children: []Node{
			&Element{
				Tag:   TagBody,
				Attrs: NewAttributes("width", "600px"),
				Children: []Node{
					&Comment{Value: " note "},
					&Raw{Name: "br", Attrs: NewAttributes(), SelfClosing: true},
					&Text{Value: "Hi"},
				},
			},
		},
	}
	want := "root\n" +
		"  body\n" +
		"    width=\"600px\"\n" +
		"    comment: \" note \"\n" +
		"    <br/>\n" +
		"    text: \"Hi\"\n"
	if got := Dump(root); got != want {
		t.Fatalf("Dump:\n%s\nwant:\n%s", got, want)
	}
	doc := &Document{Root: root}
	if doc.Body() == nil || doc.Head() != nil {
		t.Fatalf("Head/Body lookup failed")
	}
}
