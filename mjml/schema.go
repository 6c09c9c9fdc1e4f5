package mjml

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"mjmlc/css"
)

// ValueKind is the type of attribute value accepted by an element.
type ValueKind int

const (
	// KindString accepts anything.
	KindString ValueKind = iota
	// KindEnum accepts one of listed values.
	KindEnum
	// KindUnit accepts 1 to MaxCount lengths in the listed units, or one of
	// the keywords.
	KindUnit
	// KindInteger accepts non negative integer.
	KindInteger
	// KindLanguage accepts BCP 47 language tag.
	KindLanguage
)

// AttrType describes how attribute value is validated.
type AttrType struct {
	Kind     ValueKind
	Enum     []string
	Units    []string // "" allows unitless numbers
	MaxCount int
	Keywords []string
}

// Check validates value against the type.
func (t AttrType) Check(value string) error {
	switch t.Kind {
	case KindEnum:
		if !slices.Contains(t.Enum, value) {
			return fmt.Errorf("expected one of %s", strings.Join(t.Enum, ", "))
		}
	case KindInteger:
		if v, err := strconv.Atoi(strings.TrimSpace(value)); err != nil || v < 0 {
			return fmt.Errorf("expected integer")
		}
	case KindLanguage:
		if _, err := language.Parse(value); err != nil {
			return fmt.Errorf("expected language tag: %w", err)
		}
	case KindUnit:
		if slices.Contains(t.Keywords, strings.TrimSpace(value)) {
			return nil
		}
		values, err := css.ParseLengths(value)
		if err != nil {
			return err
		}
		if len(values) > t.MaxCount {
			return fmt.Errorf("expected at most %d values, got %d", t.MaxCount, len(values))
		}
		for _, v := range values {
			if v.Unit == "" && v.Value == 0 {
				continue
			}
			if !slices.Contains(t.Units, v.Unit) {
				return fmt.Errorf("unit %q is not allowed, expected %s", v.Unit, t.unitList())
			}
		}
	}
	return nil
}

func (t AttrType) unitList() string {
	names := make([]string, 0, len(t.Units))
	for _, u := range t.Units {
		if u == "" {
			u = "unitless"
		}
		names = append(names, u)
	}
	return strings.Join(names, ", ")
}

// ChildrenShape is the kind of content element may contain.
type ChildrenShape int

const (
	// ChildrenNone - element must be empty, usually self-closing.
	ChildrenNone ChildrenShape = iota
	// ChildrenText - text and comments only.
	ChildrenText
	// ChildrenHTML - text, comments and markup using known HTML tags.
	ChildrenHTML
	// ChildrenAny - text, comments and arbitrary markup.
	ChildrenAny
	// ChildrenElements - comments and listed dialect elements.
	ChildrenElements
)

// Schema is per tag grammar.
type Schema struct {
	Attributes map[string]AttrType
	Required   []string
	// AnyAttribute disables attribute name check.
	AnyAttribute bool
	Children     ChildrenShape
	Allowed      []Tag
	// BodyElement marks elements which could be targeted by type defaults and
	// accept css-class and mj-class.
	BodyElement bool
	// TypeDefaults allows any body element as child, used by attributes block.
	TypeDefaults bool
}

// SchemaFor returns grammar for the tag, nil for unknown tags.
func SchemaFor(tag Tag) *Schema {
	return schemas[tag]
}

// Allows reports whether child tag could appear inside element.
func (s *Schema) Allows(child Tag) bool {
	if s.Children != ChildrenElements {
		return false
	}
	if slices.Contains(s.Allowed, child) {
		return true
	}
	if s.TypeDefaults {
		if cs := schemas[child]; cs != nil && cs.BodyElement {
			return true
		}
	}
	return false
}

// Attribute returns type of the attribute and whether it is recognized.
func (s *Schema) Attribute(name string) (AttrType, bool) {
	if t, ok := s.Attributes[name]; ok {
		return t, true
	}
	if s.BodyElement && (name == "css-class" || name == "mj-class") {
		return AttrType{Kind: KindString}, true
	}
	if s.AnyAttribute {
		return AttrType{Kind: KindString}, true
	}
	return AttrType{}, false
}

// CheckAttribute validates single attribute. Returned error is *ParseError
// without span, caller fills position.
func (s *Schema) CheckAttribute(name, value string) error {
	t, ok := s.Attribute(name)
	if !ok {
		return &ParseError{Kind: UnexpectedAttribute, Name: name}
	}
	if err := t.Check(value); err != nil {
		return &ParseError{Kind: InvalidFormat, Name: name, Detail: fmt.Sprintf("%q", value), Cause: err}
	}
	return nil
}

// BodyTags lists every tag which could be used as type default in attributes
// block, in stable order.
func BodyTags() []Tag {
	var res []Tag
	for tag, s := range schemas {
		if s.BodyElement {
			res = append(res, tag)
		}
	}
	slices.Sort(res)
	return res
}

var (
	str     = AttrType{Kind: KindString}
	color   = str
	integer = AttrType{Kind: KindInteger}
	lang    = AttrType{Kind: KindLanguage}
	align   = enum("left", "center", "right")
	valign  = enum("top", "bottom", "middle")
	dir     = enum("ltr", "rtl")
	pxOnly  = unit(1, "px")
	pxPct   = unit(1, "px", "%")
	box     = unit(4, "px", "%")
	lineH   = unit(1, "px", "%", "")
)

func enum(values ...string) AttrType {
	return AttrType{Kind: KindEnum, Enum: values}
}

func unit(n int, units ...string) AttrType {
	return AttrType{Kind: KindUnit, Units: units, MaxCount: n}
}

func keywords(t AttrType, kw ...string) AttrType {
	t.Keywords = kw
	return t
}

type attrs = map[string]AttrType

// merge combines attribute groups, later groups win.
func merge(groups ...attrs) attrs {
	res := attrs{}
	for _, g := range groups {
		for k, v := range g {
			res[k] = v
		}
	}
	return res
}

// sides produces prefix with its directional variants.
func sides(prefix string, whole, side AttrType) attrs {
	return attrs{
		prefix:             whole,
		prefix + "-top":    side,
		prefix + "-right":  side,
		prefix + "-bottom": side,
		prefix + "-left":   side,
	}
}

var (
	padding = sides("padding", box, pxPct)
	borders = sides("border", str, str)
	font    = attrs{
		"color":           color,
		"font-family":     str,
		"font-size":       pxOnly,
		"font-style":      str,
		"font-weight":     str,
		"letter-spacing":  keywords(unit(1, "px", "em"), "normal"),
		"line-height":     lineH,
		"text-decoration": str,
		"text-transform":  str,
	}
	link = attrs{
		"href":   str,
		"rel":    str,
		"target": str,
		"title":  str,
	}
	iconSet = attrs{
		"icon-align":         valign,
		"icon-width":         pxPct,
		"icon-height":        pxPct,
		"icon-wrapped-url":   str,
		"icon-wrapped-alt":   str,
		"icon-unwrapped-url": str,
		"icon-unwrapped-alt": str,
		"icon-position":      enum("left", "right"),
	}
	background = attrs{
		"background-color":      color,
		"background-url":        str,
		"background-repeat":     enum("repeat", "no-repeat"),
		"background-size":       str,
		"background-position":   str,
		"background-position-x": str,
		"background-position-y": str,
	}
	sectionAttrs = merge(background, borders, padding, attrs{
		"border-radius": str,
		"direction":     dir,
		"full-width":    enum("full-width", "false"),
		"text-align":    align,
	})
	contentTags = []Tag{
		TagText, TagImage, TagButton, TagDivider, TagSpacer, TagTable,
		TagSocial, TagNavbar, TagAccordion, TagCarousel, TagRaw, TagInclude,
	}
)

var schemas = map[Tag]*Schema{
	TagRoot: {
		Attributes: attrs{"lang": lang, "dir": enum("ltr", "rtl", "auto"), "owa": enum("desktop")},
		Children:   ChildrenElements,
		Allowed:    []Tag{TagHead, TagBody},
	},
	TagHead: {
		Children: ChildrenElements,
		Allowed:  []Tag{TagAttributes, TagBreakpoint, TagFont, TagPreview, TagStyle, TagTitle, TagRaw, TagInclude},
	},
	TagAttributes: {
		Children:     ChildrenElements,
		Allowed:      []Tag{TagAll, TagClass},
		TypeDefaults: true,
	},
	TagAll:   {AnyAttribute: true},
	TagClass: {AnyAttribute: true, Required: []string{"name"}},
	TagBreakpoint: {
		Attributes: attrs{"width": pxOnly},
		Required:   []string{"width"},
	},
	TagFont: {
		Attributes: attrs{"name": str, "href": str},
		Required:   []string{"name", "href"},
	},
	TagPreview: {Children: ChildrenText},
	TagTitle:   {Children: ChildrenText},
	TagStyle: {
		Attributes: attrs{"inline": enum("inline")},
		Children:   ChildrenText,
	},
	TagRaw: {
		Attributes:  attrs{"position": enum("file-start")},
		Children:    ChildrenAny,
		BodyElement: true,
	},
	TagInclude: {
		Attributes: attrs{"path": str, "type": enum("mjml", "html", "css"), "css-inline": enum("inline")},
		Required:   []string{"path"},
	},

	TagBody: {
		Attributes:  attrs{"width": pxOnly, "background-color": color},
		Children:    ChildrenElements,
		Allowed:     []Tag{TagSection, TagWrapper, TagHero, TagRaw, TagInclude},
		BodyElement: true,
	},
	TagWrapper: {
		Attributes:  merge(sectionAttrs, attrs{"gap": pxOnly}),
		Children:    ChildrenElements,
		Allowed:     []Tag{TagSection, TagHero, TagRaw, TagInclude},
		BodyElement: true,
	},
	TagSection: {
		Attributes:  sectionAttrs,
		Children:    ChildrenElements,
		Allowed:     []Tag{TagColumn, TagGroup, TagRaw, TagInclude},
		BodyElement: true,
	},
	TagGroup: {
		Attributes: attrs{
			"background-color": color,
			"direction":        dir,
			"vertical-align":   valign,
			"width":            pxPct,
		},
		Children:    ChildrenElements,
		Allowed:     []Tag{TagColumn, TagRaw},
		BodyElement: true,
	},
	TagColumn: {
		Attributes: merge(borders, padding, sides("inner-border", str, str), attrs{
			"background-color":       color,
			"border-radius":          str,
			"direction":              dir,
			"inner-background-color": color,
			"inner-border-radius":    str,
			"vertical-align":         valign,
			"width":                  pxPct,
		}),
		Children:    ChildrenElements,
		Allowed:     contentTags,
		BodyElement: true,
	},
	TagHero: {
		Attributes: merge(padding, sides("inner-padding", box, pxPct), attrs{
			"mode":                       enum("fixed-height", "fluid-height"),
			"height":                     pxOnly,
			"width":                      pxOnly,
			"align":                      align,
			"background-url":             str,
			"background-width":           pxPct,
			"background-height":          pxPct,
			"background-position":        str,
			"background-color":           color,
			"border-radius":              str,
			"container-background-color": color,
			"inner-background-color":     color,
			"vertical-align":             valign,
		}),
		Children:    ChildrenElements,
		Allowed:     contentTags,
		BodyElement: true,
	},

	TagText: {
		Attributes: merge(font, padding, attrs{
			"align":                      enum("left", "right", "center", "justify"),
			"container-background-color": color,
			"height":                     pxOnly,
			"vertical-align":             valign,
		}),
		Children:    ChildrenHTML,
		BodyElement: true,
	},
	TagImage: {
		Attributes: merge(link, padding, borders, attrs{
			"alt":                        str,
			"name":                       str,
			"src":                        str,
			"srcset":                     str,
			"sizes":                      str,
			"usemap":                     str,
			"align":                      align,
			"border-radius":              str,
			"container-background-color": color,
			"fluid-on-mobile":            enum("true", "false"),
			"full-width":                 enum("full-width"),
			"font-size":                  pxOnly,
			"width":                      pxOnly,
			"height":                     keywords(pxOnly, "auto"),
			"max-height":                 pxPct,
		}),
		BodyElement: true,
	},
	TagButton: {
		Attributes: merge(font, link, padding, borders, attrs{
			"align":                      align,
			"background-color":           color,
			"border-radius":              str,
			"container-background-color": color,
			"height":                     pxPct,
			"inner-padding":              box,
			"name":                       str,
			"text-align":                 align,
			"vertical-align":             valign,
			"width":                      pxPct,
		}),
		Children:    ChildrenHTML,
		BodyElement: true,
	},
	TagDivider: {
		Attributes: merge(padding, attrs{
			"align":                      align,
			"border-color":               color,
			"border-style":               str,
			"border-width":               pxOnly,
			"container-background-color": color,
			"width":                      pxPct,
		}),
		BodyElement: true,
	},
	TagSpacer: {
		Attributes: merge(padding, borders, attrs{
			"container-background-color": color,
			"height":                     pxPct,
		}),
		BodyElement: true,
	},
	TagTable: {
		Attributes: merge(font, padding, attrs{
			"align":                      align,
			"border":                     str,
			"cellpadding":                integer,
			"cellspacing":                integer,
			"container-background-color": color,
			"role":                       enum("none", "presentation"),
			"table-layout":               enum("auto", "fixed", "initial", "inherit"),
			"vertical-align":             valign,
			"width":                      keywords(pxPct, "auto"),
		}),
		Children:    ChildrenHTML,
		BodyElement: true,
	},

	TagSocial: {
		Attributes: merge(font, padding, attrs{
			"align":                      align,
			"border-radius":              pxPct,
			"container-background-color": color,
			"icon-size":                  pxPct,
			"icon-height":                pxPct,
			"icon-padding":               box,
			"inner-padding":              box,
			"mode":                       enum("horizontal", "vertical"),
			"table-layout":               enum("auto", "fixed"),
			"text-padding":               box,
			"vertical-align":             valign,
		}),
		Children:    ChildrenElements,
		Allowed:     []Tag{TagSocialElement, TagRaw},
		BodyElement: true,
	},
	TagSocialElement: {
		Attributes: merge(font, link, padding, attrs{
			"align":            align,
			"alt":              str,
			"background-color": color,
			"border-radius":    pxPct,
			"icon-size":        pxPct,
			"icon-height":      pxPct,
			"icon-padding":     box,
			"name":             str,
			"src":              str,
			"srcset":           str,
			"sizes":            str,
			"text-padding":     box,
			"vertical-align":   valign,
		}),
		Children:    ChildrenHTML,
		BodyElement: true,
	},
	TagNavbar: {
		Attributes: merge(sides("ico-padding", box, pxPct), attrs{
			"align":               align,
			"base-url":            str,
			"hamburger":           enum("hamburger"),
			"icon-align":          align,
			"ico-open":            str,
			"ico-close":           str,
			"ico-color":           color,
			"ico-font-size":       pxPct,
			"ico-font-family":     str,
			"ico-text-transform":  str,
			"ico-text-decoration": str,
			"ico-line-height":     lineH,
		}),
		Children:    ChildrenElements,
		Allowed:     []Tag{TagNavbarLink, TagRaw},
		BodyElement: true,
	},
	TagNavbarLink: {
		Attributes:  merge(font, link, padding, attrs{"name": str}),
		Children:    ChildrenHTML,
		BodyElement: true,
	},
	TagAccordion: {
		Attributes: merge(iconSet, padding, attrs{
			"border":                     str,
			"container-background-color": color,
			"font-family":                str,
		}),
		Children:    ChildrenElements,
		Allowed:     []Tag{TagAccordionElement, TagRaw},
		BodyElement: true,
	},
	TagAccordionElement: {
		Attributes: merge(iconSet, attrs{
			"background-color": color,
			"border":           str,
			"font-family":      str,
		}),
		Children:    ChildrenElements,
		Allowed:     []Tag{TagAccordionTitle, TagAccordionText, TagRaw},
		BodyElement: true,
	},
	TagAccordionTitle: {
		Attributes: merge(padding, attrs{
			"background-color": color,
			"color":            color,
			"font-family":      str,
			"font-size":        pxOnly,
		}),
		Children:    ChildrenHTML,
		BodyElement: true,
	},
	TagAccordionText: {
		Attributes: merge(padding, attrs{
			"background-color": color,
			"color":            color,
			"font-family":      str,
			"font-size":        pxOnly,
			"font-weight":      str,
			"letter-spacing":   keywords(unit(1, "px", "em"), "normal"),
			"line-height":      lineH,
		}),
		Children:    ChildrenHTML,
		BodyElement: true,
	},
	TagCarousel: {
		Attributes: merge(padding, attrs{
			"align":                      align,
			"border-radius":              box,
			"container-background-color": color,
			"icon-width":                 pxOnly,
			"left-icon":                  str,
			"right-icon":                 str,
			"thumbnails":                 enum("visible", "hidden"),
			"tb-border":                  str,
			"tb-border-radius":           pxPct,
			"tb-hover-border-color":      color,
			"tb-selected-border-color":   color,
			"tb-width":                   pxOnly,
		}),
		Children:    ChildrenElements,
		Allowed:     []Tag{TagCarouselImage, TagRaw},
		BodyElement: true,
	},
	TagCarouselImage: {
		Attributes: merge(link, attrs{
			"alt":              str,
			"src":              str,
			"thumbnails-src":   str,
			"border-radius":    box,
			"tb-border":        str,
			"tb-border-radius": pxPct,
		}),
		Required:    []string{"src"},
		BodyElement: true,
	},
}
