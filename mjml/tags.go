package mjml

import "strings"

// Tag is the canonical name of a dialect element.
type Tag string

const (
	TagRoot       Tag = "root"
	TagHead       Tag = "head"
	TagBody       Tag = "body"
	TagAttributes Tag = "attributes"
	TagAll        Tag = "all"
	TagClass      Tag = "class"
	TagBreakpoint Tag = "breakpoint"
	TagFont       Tag = "font"
	TagPreview    Tag = "preview"
	TagStyle      Tag = "style"
	TagTitle      Tag = "title"
	TagRaw        Tag = "raw"
	TagInclude    Tag = "include"

	TagWrapper Tag = "wrapper"
	TagSection Tag = "section"
	TagGroup   Tag = "group"
	TagColumn  Tag = "column"
	TagHero    Tag = "hero"

	TagText    Tag = "text"
	TagImage   Tag = "image"
	TagButton  Tag = "button"
	TagDivider Tag = "divider"
	TagSpacer  Tag = "spacer"
	TagTable   Tag = "table"

	TagSocial        Tag = "social"
	TagSocialElement Tag = "social-element"
	TagNavbar        Tag = "navbar"
	TagNavbarLink    Tag = "navbar-link"

	TagAccordion        Tag = "accordion"
	TagAccordionElement Tag = "accordion-element"
	TagAccordionTitle   Tag = "accordion-title"
	TagAccordionText    Tag = "accordion-text"

	TagCarousel      Tag = "carousel"
	TagCarouselImage Tag = "carousel-image"
)

// MJML spelling of the root element, everything else uses "mj-" prefix.
const (
	legacyRoot   = "mjml"
	legacyPrefix = "mj-"
)

// LookupTag maps a source element name to its canonical tag. Both the short
// names and their MJML spellings ("mjml", "mj-section", ...) are recognized.
func LookupTag(name string) (Tag, bool) {
	if name == legacyRoot {
		return TagRoot, true
	}
	if short, ok := strings.CutPrefix(name, legacyPrefix); ok {
		name = short
		if name == "" || name == string(TagRoot) {
			return "", false
		}
	}
	tag := Tag(name)
	if _, ok := schemas[tag]; !ok {
		return "", false
	}
	return tag, true
}

// LegacyName returns the MJML spelling of the tag, used in generated class
// names and diagnostics.
func (t Tag) LegacyName() string {
	if t == TagRoot {
		return legacyRoot
	}
	return legacyPrefix + string(t)
}

func (t Tag) String() string {
	return string(t)
}
