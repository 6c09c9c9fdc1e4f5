package render

import "mjmlc/mjml"

const accordionStyle = `      noinput.mj-accordion-checkbox { display:block!important; }
      @media yahoo, only screen and (min-width:0) {
        .mj-accordion-element { display:block; }
        input.mj-accordion-checkbox, .mj-accordion-less { display:none!important; }
        input.mj-accordion-checkbox + * .mj-accordion-title { cursor:pointer; touch-action:manipulation; -webkit-user-select:none; -moz-user-select:none; user-select:none; }
        input.mj-accordion-checkbox + * .mj-accordion-content { overflow:hidden; display:none; }
        input.mj-accordion-checkbox + * .mj-accordion-more { display:block!important; }
        input.mj-accordion-checkbox:checked + * .mj-accordion-content { display:block; }
        input.mj-accordion-checkbox:checked + * .mj-accordion-more { display:none!important; }
        input.mj-accordion-checkbox:checked + * .mj-accordion-less { display:block!important; }
      }
      .moz-text-html input.mj-accordion-checkbox + * .mj-accordion-title { cursor: auto; touch-action: auto; -webkit-user-select: auto; -moz-user-select: auto; user-select: auto; }
      .moz-text-html input.mj-accordion-checkbox + * .mj-accordion-content { overflow: hidden; display: block; }
      .moz-text-html input.mj-accordion-checkbox + * .mj-accordion-ico { display: none; }`

var accordionIcon = []string{
	"icon-align",
	"icon-width",
	"icon-height",
	"icon-position",
	"icon-wrapped-url",
	"icon-wrapped-alt",
	"icon-unwrapped-url",
	"icon-unwrapped-alt",
}

func (c *component) accordion() string {
	c.ctx().AddComponentStyle("accordion", accordionStyle)
	inherited := c.same(append([]string{"border", "font-family"}, accordionIcon...)...)
	return `<table` + attrs(
		"cellspacing", "0",
		"cellpadding", "0",
		"class", "mj-accordion",
		"style", styles(
			"width", "100%",
			"border-collapse", "collapse",
			"border", c.attr("border"),
			"border-bottom", "none",
			"font-family", c.attr("font-family"),
		),
	) + `><tbody>` + c.children(inherited, nil) + `</tbody></table>`
}

// accordionElement renders title and text in this order, missing parts are
// rendered empty.
func (c *component) accordionElement() string {
	inherited := c.same(append([]string{"border", "font-family", "background-color"}, accordionIcon...)...)
	part := func(tag mjml.Tag) string {
		el := c.el.Child(tag)
		if el == nil {
			el = &mjml.Element{Tag: tag, Attrs: mjml.NewAttributes(), Span: c.el.Span}
		}
		return c.w.render(c.w.component(el, inherited))
	}

	return `<tr` + attrs("class", c.cssClass()) + `><td` + attrs("style", styles(
		"padding", "0px",
		"background-color", c.attr("background-color"),
	)) + `><label` + attrs(
		"class", "mj-accordion-element",
		"style", styles("font-size", "13px", "font-family", c.attr("font-family")),
	) + `>` +
		msoNegation(`<input class="mj-accordion-checkbox" type="checkbox" style="display:none;" />`) +
		`<div>` + part(mjml.TagAccordionTitle) + part(mjml.TagAccordionText) + `</div>` +
		`</label></td></tr>`
}

func (c *component) accordionIcons() string {
	img := func(url, alt, class string) string {
		return `<img` + attrs(
			"src", url,
			"alt", alt,
			"class", class,
			"style", styles(
				"display", "none",
				"width", c.attr("icon-width"),
				"height", c.attr("icon-height"),
			),
		) + ` />`
	}
	return startNegation + `<td` + attrs(
		"class", "mj-accordion-ico",
		"style", styles(
			"padding", "16px",
			"background", c.attr("background-color"),
			"vertical-align", c.attr("icon-align"),
		),
	) + `>` +
		img(c.attr("icon-wrapped-url"), c.attr("icon-wrapped-alt"), "mj-accordion-more") +
		img(c.attr("icon-unwrapped-url"), c.attr("icon-unwrapped-alt"), "mj-accordion-less") +
		`</td>` + endNegation
}

func (c *component) accordionTitle() string {
	title := `<td` + attrs(
		"class", c.cssClass(),
		"style", styles(append([]string{
			"width", "100%",
			"background-color", c.attr("background-color"),
			"color", c.attr("color"),
			"font-size", c.attr("font-size"),
			"font-family", c.attr("font-family"),
		}, c.paddingStyles("padding", "padding")...)...),
	) + `>` + c.content() + `</td>`

	row := title + c.accordionIcons()
	if c.attr("icon-position") == "left" {
		row = c.accordionIcons() + title
	}
	return `<div class="mj-accordion-title"><table` + attrs(
		"cellspacing", "0",
		"cellpadding", "0",
		"style", styles("width", "100%", "border-bottom", c.attr("border")),
	) + `><tbody><tr>` + row + `</tr></tbody></table></div>`
}

func (c *component) accordionText() string {
	return `<div class="mj-accordion-content"><table` + attrs(
		"cellspacing", "0",
		"cellpadding", "0",
		"style", styles("width", "100%", "border-bottom", c.attr("border")),
	) + `><tbody><tr><td` + attrs(
		"class", c.cssClass(),
		"style", styles(append([]string{
			"background", c.attr("background-color"),
			"font-size", c.attr("font-size"),
			"font-family", c.attr("font-family"),
			"font-weight", c.attr("font-weight"),
			"letter-spacing", c.attr("letter-spacing"),
			"line-height", c.attr("line-height"),
			"color", c.attr("color"),
		}, c.paddingStyles("padding", "padding")...)...),
	) + `>` + c.content() + `</td></tr></tbody></table></div>`
}
