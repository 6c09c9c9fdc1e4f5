package render

import (
	"fmt"
	"math"

	"mjmlc/css"
)

func (c *component) text() string {
	div := `<div` + attrs("style", styles(
		"font-family", c.attr("font-family"),
		"font-size", c.attr("font-size"),
		"font-style", c.attr("font-style"),
		"font-weight", c.attr("font-weight"),
		"letter-spacing", c.attr("letter-spacing"),
		"line-height", c.attr("line-height"),
		"text-align", c.attr("align"),
		"text-decoration", c.attr("text-decoration"),
		"text-transform", c.attr("text-transform"),
		"color", c.attr("color"),
		"height", c.attr("height"),
	)) + `>` + c.content() + `</div>`

	height := c.attr("height")
	if height == "" {
		return div
	}
	return conditional(`<table role="presentation" border="0" cellpadding="0" cellspacing="0"><tr><td`+attrs(
		"height", formatInt(float64(leadingInt(height))),
		"style", styles("vertical-align", "top", "height", height),
	)+`>`) + div + conditional(`</td></tr></table>`)
}

func leadingInt(s string) int {
	v, _ := css.LeadingInt(s)
	return v
}

// imageWidth is rendered image width: requested width limited by the box.
func (c *component) imageWidth() float64 {
	_, box := c.boxWidth()
	if w, ok := c.px("width"); ok && w < box {
		return w
	}
	return box
}

const fullWidthMobileStyle = `      @media only screen and (max-width:%s) {
        table.mj-full-width-mobile { width: 100%% !important; }
        td.mj-full-width-mobile { width: auto !important; }
      }`

func (c *component) image() string {
	width := c.imageWidth()
	fullWidth := c.attr("full-width") == "full-width"
	fluid := c.attr("fluid-on-mobile") == "true"

	var mobileClass string
	if fluid {
		mobileClass = "mj-full-width-mobile"
		c.ctx().AddComponentStyle("image", fmt.Sprintf(fullWidthMobileStyle, c.ctx().lowerBreakpoint()))
	}

	height := c.attr("height")
	heightAttr := height
	if height != "auto" {
		heightAttr = formatInt(float64(leadingInt(height)))
	}
	img := `<img` + attrs(
		"alt", c.attr("alt"),
		"height", heightAttr,
		"src", c.attr("src"),
		"srcset", c.attr("srcset"),
		"sizes", c.attr("sizes"),
		"style", styles(
			"border", c.attr("border"),
			"border-left", c.attr("border-left"),
			"border-right", c.attr("border-right"),
			"border-top", c.attr("border-top"),
			"border-bottom", c.attr("border-bottom"),
			"border-radius", c.attr("border-radius"),
			"display", "block",
			"outline", "none",
			"text-decoration", "none",
			"height", height,
			"max-height", c.attr("max-height"),
			"min-width", ifSet(fullWidth, "100%"),
			"width", "100%",
			"max-width", ifSet(fullWidth, "100%"),
			"font-size", c.attr("font-size"),
		),
		"title", c.attr("title"),
		"width", formatInt(math.Floor(width)),
		"usemap", c.attr("usemap"),
	) + ` />`

	if href := c.attr("href"); href != "" {
		img = `<a` + attrs(
			"href", href,
			"target", c.attr("target"),
			"rel", c.attr("rel"),
			"name", c.attr("name"),
			"title", c.attr("title"),
		) + `>` + img + `</a>`
	}

	tdWidth := formatPx(math.Floor(width))
	if fullWidth {
		tdWidth = ""
	}
	return `<table` + attrs(
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"role", "presentation",
		"style", styles(
			"border-collapse", "collapse",
			"border-spacing", "0px",
			"min-width", ifSet(fullWidth, "100%"),
			"max-width", ifSet(fullWidth, "100%"),
			"width", ifSet(fullWidth, formatPx(math.Floor(width))),
		),
		"class", mobileClass,
	) + `><tbody><tr><td` + attrs(
		"style", styles("width", tdWidth),
		"class", mobileClass,
	) + `>` + img + `</td></tr></tbody></table>`
}

func ifSet(cond bool, v string) string {
	if cond {
		return v
	}
	return ""
}

// buttonContentWidth is width of the link inside button: explicit pixel width
// without inner padding and borders.
func (c *component) buttonContentWidth() string {
	w, ok := c.px("width")
	if !ok {
		return ""
	}
	inner := c.sides("inner-padding")
	w -= float64(inner.Horizontal() + c.border("left") + c.border("right"))
	return formatPx(max(w, 0))
}

func (c *component) button() string {
	tag := "p"
	if c.attr("href") != "" {
		tag = "a"
	}
	bg := c.attr("background-color")
	link := `<` + tag + attrs(
		"href", c.attr("href"),
		"name", c.attr("name"),
		"rel", c.attr("rel"),
		"title", c.attr("title"),
		"style", styles(
			"display", "inline-block",
			"width", c.buttonContentWidth(),
			"background", bg,
			"color", c.attr("color"),
			"font-family", c.attr("font-family"),
			"font-size", c.attr("font-size"),
			"font-style", c.attr("font-style"),
			"font-weight", c.attr("font-weight"),
			"line-height", c.attr("line-height"),
			"letter-spacing", c.attr("letter-spacing"),
			"margin", "0",
			"text-decoration", c.attr("text-decoration"),
			"text-transform", c.attr("text-transform"),
			"padding", c.attr("inner-padding"),
			"mso-padding-alt", "0px",
			"border-radius", c.attr("border-radius"),
		),
		"target", ifSet(tag == "a", c.attr("target")),
	) + `>` + c.content() + `</` + tag + `>`

	return `<table` + attrs(
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"role", "presentation",
		"style", styles(
			"border-collapse", "separate",
			"width", c.attr("width"),
			"line-height", "100%",
		),
	) + `><tbody><tr><td` + attrs(
		"align", "center",
		"bgcolor", ifSet(bg != "none", bg),
		"role", "presentation",
		"style", styles(
			"border", c.attr("border"),
			"border-bottom", c.attr("border-bottom"),
			"border-left", c.attr("border-left"),
			"border-radius", c.attr("border-radius"),
			"border-right", c.attr("border-right"),
			"border-top", c.attr("border-top"),
			"cursor", "auto",
			"font-style", c.attr("font-style"),
			"height", c.attr("height"),
			"mso-padding-alt", c.attr("inner-padding"),
			"text-align", c.attr("text-align"),
			"background", bg,
		),
		"valign", c.attr("vertical-align"),
	) + `>` + link + `</td></tr></tbody></table>`
}

func (c *component) dividerMargin() string {
	switch c.attr("align") {
	case "left":
		return "0px"
	case "right":
		return "0px 0px 0px auto"
	}
	return "0px auto"
}

// dividerOutlookWidth is pixel width of the Outlook fallback table.
func (c *component) dividerOutlookWidth() float64 {
	_, box := c.boxWidth()
	l, ok := c.length("width")
	switch {
	case !ok:
		return box
	case l.IsPercent():
		return box * l.Value / 100
	default:
		return l.Value
	}
}

func (c *component) divider() string {
	border := c.attr("border-style") + " " + c.attr("border-width") + " " + c.attr("border-color")
	p := `<p` + attrs("style", styles(
		"border-top", border,
		"font-size", "1px",
		"margin", c.dividerMargin(),
		"width", c.attr("width"),
	)) + `></p>`

	width := math.Floor(c.dividerOutlookWidth())
	return p + conditional(`<table`+attrs(
		"align", c.attr("align"),
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"style", styles(
			"border-top", border,
			"font-size", "1px",
			"margin", c.dividerMargin(),
			"width", formatPx(width),
		),
		"role", "presentation",
		"width", formatPx(width),
	)+`><tr><td style="height:0;line-height:0;"> &nbsp;
</td></tr></table>`)
}

func (c *component) spacer() string {
	height := c.attr("height")
	return `<div` + attrs("style", styles("height", height, "line-height", height)) + `>&#8202;</div>`
}

func (c *component) table() string {
	width := c.attr("width")
	widthAttr := width
	if l, err := css.ParseLength(width); err == nil && !l.IsPercent() {
		widthAttr = formatInt(l.Value)
	}
	return `<table` + attrs(
		"cellpadding", c.attr("cellpadding"),
		"cellspacing", c.attr("cellspacing"),
		"role", c.attr("role"),
		"width", widthAttr,
		"border", "0",
		"style", styles(
			"color", c.attr("color"),
			"font-family", c.attr("font-family"),
			"font-size", c.attr("font-size"),
			"line-height", c.attr("line-height"),
			"table-layout", c.attr("table-layout"),
			"width", width,
			"border", c.attr("border"),
		),
	) + `>` + c.content() + `</table>`
}

// raw passes content through. Content positioned at file start is moved in
// front of the doctype.
func (c *component) raw() string {
	html := c.content()
	if c.attr("position") == "file-start" {
		if html != "" {
			c.ctx().fileStart = append(c.ctx().fileStart, html)
		}
		return ""
	}
	return html
}
