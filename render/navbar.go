package render

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// id generates identifier stable across renders of the same document: it is
// derived from element position and render order, never from randomness.
func (c *component) id() string {
	name := fmt.Sprintf("%s:%d:%d", c.el.Span.Origin, c.el.Span.Start, c.ctx().nextID())
	u := uuid.NewSHA1(uuid.NameSpaceURL, []byte(name))
	return strings.ReplaceAll(u.String(), "-", "")[:16]
}

const hamburgerStyle = `      noinput.mj-menu-checkbox { display:block!important; max-height:none!important; visibility:visible!important; }
      @media only screen and (max-width:%s) {
        .mj-menu-checkbox[type="checkbox"] ~ .mj-inline-links { display:none!important; }
        .mj-menu-checkbox[type="checkbox"]:checked ~ .mj-inline-links,
        .mj-menu-checkbox[type="checkbox"] ~ .mj-menu-trigger { display:block!important; max-width:none!important; max-height:none!important; font-size:inherit!important; }
        .mj-menu-checkbox[type="checkbox"] ~ .mj-inline-links > a { display:block!important; }
        .mj-menu-checkbox[type="checkbox"]:checked ~ .mj-menu-trigger .mj-menu-icon-close { display:block!important; }
        .mj-menu-checkbox[type="checkbox"]:checked ~ .mj-menu-trigger .mj-menu-icon-open { display:none!important; }
      }`

func (c *component) hamburger() string {
	c.ctx().AddComponentStyle("navbar", fmt.Sprintf(hamburgerStyle, c.ctx().lowerBreakpoint()))
	id := c.id()
	return msoNegation(`<input`+attrs(
		"type", "checkbox",
		"id", id,
		"class", "mj-menu-checkbox",
		"style", "display:none !important; max-height:0; visibility:hidden;",
	)+` />`) +
		`<div class="mj-menu-trigger" style="display:none;max-height:0px;max-width:0px;font-size:0px;overflow:hidden;">` +
		`<label` + attrs(
		"for", id,
		"class", "mj-menu-label",
		"style", styles(append([]string{
			"display", "block",
			"cursor", "pointer",
			"mso-hide", "all",
			"-moz-user-select", "none",
			"user-select", "none",
			"color", c.attr("ico-color"),
			"font-size", c.attr("ico-font-size"),
			"font-family", c.attr("ico-font-family"),
			"text-transform", c.attr("ico-text-transform"),
			"text-decoration", c.attr("ico-text-decoration"),
			"line-height", c.attr("ico-line-height"),
		}, c.paddingStyles("ico-padding", "padding")...)...),
		"align", c.attr("icon-align"),
	) + `>` +
		`<span class="mj-menu-icon-open" style="mso-hide:all;">` + c.attr("ico-open") + `</span>` +
		`<span class="mj-menu-icon-close" style="display:none;mso-hide:all;">` + c.attr("ico-close") + `</span>` +
		`</label></div>`
}

func (c *component) navbar() string {
	var menu string
	if c.attr("hamburger") == "hamburger" {
		menu = c.hamburger()
	}
	links := c.children(c.same("base-url"), nil)
	return menu +
		`<div class="mj-inline-links">` +
		conditional(`<table role="presentation" border="0" cellpadding="0" cellspacing="0"`+attrs("align", c.attr("align"))+`><tr>`) +
		links +
		conditional(`</tr></table>`) +
		`</div>`
}

func (c *component) navbarLink() string {
	href := c.attr("href")
	if href != "" {
		href = c.attr("base-url") + href
	}
	link := `<a` + attrs(
		"class", classes("mj-link", c.cssClass()),
		"href", href,
		"rel", c.attr("rel"),
		"target", c.attr("target"),
		"name", c.attr("name"),
		"title", c.attr("title"),
		"style", styles(append([]string{
			"display", "inline-block",
			"color", c.attr("color"),
			"font-family", c.attr("font-family"),
			"font-size", c.attr("font-size"),
			"font-style", c.attr("font-style"),
			"font-weight", c.attr("font-weight"),
			"letter-spacing", c.attr("letter-spacing"),
			"line-height", c.attr("line-height"),
			"text-decoration", c.attr("text-decoration"),
			"text-transform", c.attr("text-transform"),
		}, c.paddingStyles("padding", "padding")...)...),
	) + `>` + c.content() + `</a>`

	return conditional(`<td`+attrs(
		"style", styles(c.paddingStyles("padding", "padding")...),
		"class", suffixClasses(c.cssClass(), "outlook"),
	)+`>`) + link + conditional(`</td>`)
}
