package render

import "mjmlc/mjml"

func (c *component) social() string {
	inherited := c.inherit(
		"border-radius", "border-radius",
		"color", "color",
		"font-family", "font-family",
		"font-size", "font-size",
		"font-weight", "font-weight",
		"font-style", "font-style",
		"icon-size", "icon-size",
		"icon-height", "icon-height",
		"icon-padding", "icon-padding",
		"text-padding", "text-padding",
		"line-height", "line-height",
		"text-decoration", "text-decoration",
		"padding", "inner-padding",
	)

	if c.attr("mode") == "vertical" {
		return `<table border="0" cellpadding="0" cellspacing="0" role="presentation" style="margin:0px;"><tbody>` +
			c.children(inherited, nil) +
			`</tbody></table>`
	}

	align := c.attr("align")
	inner := c.children(inherited, func(_ *component, html string) string {
		return conditional(`<td>`) +
			`<table` + attrs(
			"align", align,
			"border", "0",
			"cellpadding", "0",
			"cellspacing", "0",
			"role", "presentation",
			"style", styles("float", "none", "display", "inline-table"),
		) + `><tbody>` + html + `</tbody></table>` +
			conditional(`</td>`)
	})
	return conditional(`<table`+attrs(
		"align", align,
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"role", "presentation",
	)+`><tr>`) + inner + conditional(`</tr></table>`)
}

func (c *component) socialElement() string {
	network, known := mjml.LookupNetwork(c.attr("name"))
	href := c.attr("href")
	src := c.attr("src")
	bg := c.attr("background-color")
	if known {
		href = network.ShareURL(href)
		if src == "" {
			src = c.w.opts.iconOrigin() + network.Icon
		}
		if bg == "" {
			bg = network.Color
		}
	}

	iconSize := c.attr("icon-size")
	iconHeight := c.attr("icon-height")
	if iconHeight == "" {
		iconHeight = iconSize
	}

	img := `<img` + attrs(
		"alt", c.attr("alt"),
		"height", formatInt(float64(leadingInt(iconHeight))),
		"src", src,
		"srcset", c.attr("srcset"),
		"sizes", c.attr("sizes"),
		"style", styles("border-radius", c.attr("border-radius"), "display", "block"),
		"title", c.attr("title"),
		"width", formatInt(float64(leadingInt(iconSize))),
	) + ` />`
	if href != "" {
		img = `<a` + attrs("href", href, "rel", c.attr("rel"), "target", c.attr("target")) + `>` + img + `</a>`
	}

	valign := c.attr("vertical-align")
	icon := `<td` + attrs("style", styles(append(c.paddingStyles("padding", "padding"), "vertical-align", valign)...)) + `>` +
		`<table` + attrs(
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"role", "presentation",
		"style", styles("background", bg, "border-radius", c.attr("border-radius"), "width", iconSize),
	) + `><tbody><tr><td` + attrs("style", styles(
		"font-size", "0",
		"height", iconHeight,
		"padding", c.attr("icon-padding"),
		"vertical-align", "middle",
		"width", iconSize,
	)) + `>` + img + `</td></tr></tbody></table></td>`

	var text string
	if content := c.content(); content != "" {
		tag := "span"
		if href != "" {
			tag = "a"
		}
		text = `<td` + attrs("style", styles("vertical-align", valign, "padding", c.attr("text-padding"))) + `>` +
			`<` + tag + attrs(
			"href", href,
			"rel", c.attr("rel"),
			"target", ifSet(tag == "a", c.attr("target")),
			"style", styles(
				"color", c.attr("color"),
				"font-size", c.attr("font-size"),
				"font-weight", c.attr("font-weight"),
				"font-style", c.attr("font-style"),
				"font-family", c.attr("font-family"),
				"line-height", c.attr("line-height"),
				"text-decoration", c.attr("text-decoration"),
			),
		) + `>` + content + `</` + tag + `></td>`
	}

	return `<tr` + attrs("class", c.cssClass()) + `>` + icon + text + `</tr>`
}
