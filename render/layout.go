package render

import (
	"fmt"
	"strings"

	"mjmlc/css"
)

const defaultBodyWidth = 600

func (c *component) body() string {
	width, ok := c.px("width")
	if !ok || width <= 0 {
		width = defaultBodyWidth
	}
	bg := c.attr("background-color")
	c.ctx().background = bg

	c.ctx().PushWidth(width)
	inner := c.children(nil, nil)
	c.ctx().PopWidth()

	return `<div` + attrs(
		"class", c.cssClass(),
		"style", styles("background-color", bg),
		"lang", c.ctx().lang,
		"dir", c.ctx().dir,
	) + `>` + inner + `</div>`
}

// distribute assigns widths to columns and groups sharing width. Explicit
// widths are honoured and whatever is left is split evenly among the rest,
// so slots always add up to the whole width unless explicit widths exceed it.
func (c *component) distribute(width float64, kids []*component, inGroup bool) {
	type claim struct {
		l        css.Length
		explicit bool
	}
	claims := make([]claim, len(kids))
	fixed, auto := 0.0, 0
	for i, k := range kids {
		l, ok := k.length("width")
		if !ok {
			auto++
			continue
		}
		claims[i] = claim{l: l, explicit: true}
		if l.IsPercent() {
			fixed += l.Value
		} else if width > 0 {
			fixed += l.Value * 100 / width
		}
	}
	share := 0.0
	if auto > 0 {
		share = max(100-fixed, 0) / float64(auto)
	}
	for i, k := range kids {
		var s slot
		switch cl := claims[i]; {
		case cl.explicit && !cl.l.IsPercent():
			s.px = cl.l.Value
			if width > 0 {
				s.pct = cl.l.Value * 100 / width
			}
			s.class = "mj-column-px-" + classNumber(cl.l.Value)
		case cl.explicit:
			s.pct = cl.l.Value
			s.px = width * s.pct / 100
			s.class = "mj-column-per-" + classNumber(s.pct)
		default:
			s.pct = share
			s.px = width * share / 100
			s.class = "mj-column-per-" + classNumber(share)
		}
		s.inGroup = inGroup
		c.w.slots[k.el] = s
	}
}

func classNumber(v float64) string {
	return strings.ReplaceAll(css.FormatNumber(v), ".", "-")
}

// slotOf returns width assigned by parent. Without one container is split
// evenly among siblings.
func (c *component) slotOf() slot {
	if s, ok := c.w.slots[c.el]; ok {
		return s
	}
	width, _ := c.ctx().ContainerWidth()
	pct := 100 / float64(c.ctx().SiblingCount())
	return slot{px: width * pct / 100, pct: pct, class: "mj-column-per-" + classNumber(pct)}
}

// registerSlot records media query making slot class take its width on
// wide screens.
func (c *component) registerSlot(s slot) {
	v := formatPct(s.pct)
	if strings.HasPrefix(s.class, "mj-column-px-") {
		v = formatPx(s.px)
	}
	c.ctx().AddMediaQuery(s.class, fmt.Sprintf("{ width:%s !important; max-width: %s; }", v, v))
}

func formatPct(v float64) string {
	return css.FormatNumber(v) + "%"
}

// backgroundPosition normalizes position keywords to "x y" order, explicit
// axis attributes win.
func (c *component) backgroundPosition() (x, y string) {
	parts := strings.Fields(c.attr("background-position"))
	switch len(parts) {
	case 0:
		x, y = "center", "top"
	case 1:
		if parts[0] == "top" || parts[0] == "bottom" {
			x, y = "center", parts[0]
		} else {
			x, y = parts[0], "center"
		}
	default:
		x, y = parts[0], parts[1]
		if x == "top" || x == "bottom" || y == "left" || y == "right" {
			x, y = y, x
		}
	}
	if v := c.attr("background-position-x"); v != "" {
		x = v
	}
	if v := c.attr("background-position-y"); v != "" {
		y = v
	}
	return x, y
}

// backgroundStyle is CSS background shorthand of section and wrapper.
func (c *component) backgroundStyle() string {
	color, url := c.attr("background-color"), c.attr("background-url")
	if url == "" {
		return color
	}
	x, y := c.backgroundPosition()
	parts := []string{
		"url('" + url + "')",
		x + " " + y + " / " + c.attr("background-size"),
		c.attr("background-repeat"),
	}
	if color != "" {
		parts = append([]string{color}, parts...)
	}
	return strings.Join(parts, " ")
}

func (c *component) backgroundStyles() []string {
	bg := c.backgroundStyle()
	if c.attr("background-url") == "" {
		return []string{"background", bg, "background-color", bg}
	}
	x, y := c.backgroundPosition()
	return []string{
		"background", bg,
		"background-position", x + " " + y,
		"background-repeat", c.attr("background-repeat"),
		"background-size", c.attr("background-size"),
	}
}

// vmlFraction converts position keyword or percentage to VML fraction.
func vmlFraction(v string) string {
	switch v {
	case "left", "top":
		return "0"
	case "center":
		return "0.5"
	case "right", "bottom":
		return "1"
	}
	if l, err := css.ParseLength(v); err == nil && l.IsPercent() {
		return css.FormatNumber(l.Value / 100)
	}
	return "0.5"
}

// vml wraps section content into Outlook background image shape.
func (c *component) vml(content string, width float64, fullWidth bool) string {
	x, y := c.backgroundPosition()
	pos := vmlFraction(x) + ", " + vmlFraction(y)
	kind := "tile"
	if c.attr("background-repeat") == "no-repeat" {
		kind = "frame"
	}
	var size, aspect string
	switch v := c.attr("background-size"); v {
	case "cover":
		size, aspect = "1,1", "atleast"
	case "contain":
		size, aspect = "1,1", "atmost"
	case "auto", "":
	default:
		size = strings.Join(strings.Fields(v), ",")
	}
	rect := styles("width", formatPx(width))
	if fullWidth {
		rect = styles("mso-width-percent", "1000")
	}
	return conditional(`<v:rect`+attrs("style", rect, "xmlns:v", "urn:schemas-microsoft-com:vml", "fill", "true", "stroke", "false")+`>`+
		`<v:fill`+attrs(
			"origin", pos,
			"position", pos,
			"src", c.attr("background-url"),
			"color", c.attr("background-color"),
			"type", kind,
			"size", size,
			"aspect", aspect,
		)+` />`+
		`<v:textbox style="mso-fit-shape-to-text:true" inset="0,0,0,0">`) +
		content +
		conditional(`</v:textbox></v:rect>`)
}

func (c *component) section() string {
	container, _ := c.ctx().ContainerWidth()
	_, box := c.boxWidth()

	kids := c.childElements(nil)
	c.distribute(box, kids, false)
	c.ctx().PushWidth(box)
	inner := c.children(nil, func(child *component, html string) string {
		return conditional(`<td`+attrs(
			"class", suffixClasses(child.cssClass(), "outlook"),
			"style", styles("vertical-align", child.attr("vertical-align"), "width", formatPx(c.w.slots[child.el].px)),
		)+`>`) + html + conditional(`</td>`)
	})
	c.ctx().PopWidth()

	inner = conditional(`<table role="presentation" border="0" cellpadding="0" cellspacing="0"><tr>`) +
		inner +
		conditional(`</tr></table>`)
	return c.frame(container, inner)
}

func (c *component) wrapper() string {
	container, _ := c.ctx().ContainerWidth()
	_, box := c.boxWidth()

	gap := c.attr("gap")
	index := 0
	c.ctx().PushWidth(box)
	inner := c.children(nil, func(child *component, html string) string {
		if index > 0 && gap != "" {
			html = `<div` + attrs("style", styles("height", gap, "line-height", gap, "font-size", "0px")) + `>&#8202;</div>` + html
		}
		index++
		return conditional(`<tr><td`+attrs(
			"class", suffixClasses(child.cssClass(), "outlook"),
			"width", formatInt(box),
		)+`>`) + html + conditional(`</td></tr>`)
	})
	c.ctx().PopWidth()

	inner = conditional(`<table role="presentation" border="0" cellpadding="0" cellspacing="0">`) +
		inner +
		conditional(`</table>`)
	return c.frame(container, inner)
}

// frame produces section or wrapper markup around inner table row content.
func (c *component) frame(container float64, inner string) string {
	fullWidth := c.attr("full-width") == "full-width"
	hasBackground := c.attr("background-url") != ""

	td := `<td` + attrs("style", styles(append([]string{
		"border", c.attr("border"),
		"border-bottom", c.attr("border-bottom"),
		"border-left", c.attr("border-left"),
		"border-right", c.attr("border-right"),
		"border-top", c.attr("border-top"),
		"direction", c.attr("direction"),
		"font-size", "0px",
	}, append(c.paddingStyles("padding", "padding"),
		"text-align", c.attr("text-align"),
	)...)...)) + `>`

	var tableStyle []string
	if !fullWidth {
		tableStyle = c.backgroundStyles()
	}
	tableStyle = append(tableStyle, "width", "100%", "border-radius", c.attr("border-radius"))
	table := `<table` + attrs(
		"align", "center",
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"role", "presentation",
		"style", styles(tableStyle...),
	) + `><tbody><tr>` + td + inner + `</td></tr></tbody></table>`
	if hasBackground {
		table = `<div style="line-height:0;font-size:0;">` + table + `</div>`
	}

	var divStyle []string
	if !fullWidth {
		divStyle = c.backgroundStyles()
	}
	divStyle = append(divStyle,
		"margin", "0px auto",
		"border-radius", c.attr("border-radius"),
		"max-width", formatPx(container),
	)
	class := c.cssClass()
	if fullWidth {
		class = ""
	}
	section := `<div` + attrs("class", class, "style", styles(divStyle...)) + `>` + table + `</div>`

	before := conditional(`<table` + attrs(
		"align", "center",
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"class", suffixClasses(c.cssClass(), "outlook"),
		"role", "presentation",
		"style", styles("width", formatPx(container)),
		"width", formatInt(container),
		"bgcolor", c.attr("background-color"),
	) + `><tr><td style="line-height:0px;font-size:0px;mso-line-height-rule:exactly;">`)
	after := conditional(`</td></tr></table>`)

	if !fullWidth {
		if hasBackground {
			section = c.vml(section, container, false)
		}
		return before + section + after
	}

	content := before + section + after
	if hasBackground {
		content = c.vml(content, container, true)
	}
	return `<table` + attrs(
		"align", "center",
		"class", c.cssClass(),
		"background", c.attr("background-url"),
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"role", "presentation",
		"style", styles(append(c.backgroundStyles(), "width", "100%", "border-radius", c.attr("border-radius"))...),
	) + `><tbody><tr><td>` + content + `</td></tr></tbody></table>`
}

func (c *component) group() string {
	s := c.slotOf()
	c.registerSlot(s)

	kids := c.childElements(nil)
	c.distribute(s.px, kids, true)
	c.ctx().PushWidth(s.px)
	inner := c.children(nil, func(child *component, html string) string {
		return conditional(`<td`+attrs(
			"style", styles("vertical-align", child.attr("vertical-align"), "width", formatPx(c.w.slots[child.el].px)),
		)+`>`) + html + conditional(`</td>`)
	})
	c.ctx().PopWidth()

	return `<div` + attrs(
		"class", classes(s.class, "mj-outlook-group-fix", c.cssClass()),
		"style", styles(
			"font-size", "0",
			"line-height", "0",
			"text-align", "left",
			"display", "inline-block",
			"width", "100%",
			"direction", c.attr("direction"),
			"vertical-align", c.attr("vertical-align"),
			"background-color", c.attr("background-color"),
		),
	) + `>` +
		conditional(`<table`+attrs(
			"bgcolor", c.attr("background-color"),
			"border", "0",
			"cellpadding", "0",
			"cellspacing", "0",
			"role", "presentation",
		)+`><tr>`) +
		inner +
		conditional(`</tr></table>`) +
		`</div>`
}

func (c *component) column() string {
	s := c.slotOf()
	c.registerSlot(s)

	pad := c.sides("padding")
	box := s.px - float64(pad.Horizontal()+c.border("left")+c.border("right"))
	box -= float64(css.BorderWidth(c.innerBorder("left")) + css.BorderWidth(c.innerBorder("right")))

	c.ctx().PushWidth(max(box, 0))
	rows := c.children(nil, c.contentRow)
	c.ctx().PopWidth()

	width := "100%"
	if s.inGroup {
		width = formatPct(s.pct)
	}
	return `<div` + attrs(
		"class", classes(s.class, "mj-outlook-group-fix", c.cssClass()),
		"style", styles(
			"font-size", "0px",
			"text-align", "left",
			"direction", c.attr("direction"),
			"display", "inline-block",
			"vertical-align", c.attr("vertical-align"),
			"width", width,
		),
	) + `>` + c.columnTable(rows) + `</div>`
}

func (c *component) innerBorder(side string) string {
	if v := c.attr("inner-border-" + side); v != "" {
		return v
	}
	return c.attr("inner-border")
}

func (c *component) hasGutter() bool {
	for _, name := range []string{"padding", "padding-top", "padding-right", "padding-bottom", "padding-left"} {
		if c.has(name) {
			return true
		}
	}
	return false
}

func (c *component) columnTable(rows string) string {
	decoration := []string{
		"background-color", c.attr("background-color"),
		"border", c.attr("border"),
		"border-bottom", c.attr("border-bottom"),
		"border-left", c.attr("border-left"),
		"border-radius", c.attr("border-radius"),
		"border-right", c.attr("border-right"),
		"border-top", c.attr("border-top"),
		"vertical-align", c.attr("vertical-align"),
	}
	if !c.hasGutter() {
		return `<table` + attrs(
			"border", "0",
			"cellpadding", "0",
			"cellspacing", "0",
			"role", "presentation",
			"style", styles(decoration...),
			"width", "100%",
		) + `><tbody>` + rows + `</tbody></table>`
	}

	inner := `<table` + attrs(
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"role", "presentation",
		"style", styles(
			"background-color", c.attr("inner-background-color"),
			"border", c.attr("inner-border"),
			"border-bottom", c.attr("inner-border-bottom"),
			"border-left", c.attr("inner-border-left"),
			"border-radius", c.attr("inner-border-radius"),
			"border-right", c.attr("inner-border-right"),
			"border-top", c.attr("inner-border-top"),
		),
		"width", "100%",
	) + `><tbody>` + rows + `</tbody></table>`
	return `<table border="0" cellpadding="0" cellspacing="0" role="presentation" width="100%"><tbody><tr><td` +
		attrs("style", styles(append(decoration, c.paddingStyles("padding", "padding")...)...)) + `>` +
		inner + `</td></tr></tbody></table>`
}

// contentRow places content element into its own table row.
func (c *component) contentRow(child *component, html string) string {
	return `<tr><td` + attrs(
		"align", child.attr("align"),
		"vertical-align", child.attr("vertical-align"),
		"class", child.cssClass(),
		"style", styles(append(append(
			[]string{"background", child.attr("container-background-color"), "font-size", "0px"},
			child.paddingStyles("padding", "padding")...),
			"word-break", "break-word",
		)...),
	) + `>` + html + `</td></tr>`
}

func (c *component) hero() string {
	container, _ := c.ctx().ContainerWidth()
	if w, ok := c.px("width"); ok && w > 0 {
		container = w
	}
	pad := c.sides("padding")
	box := container - float64(pad.Horizontal())
	inner := c.sides("inner-padding")

	c.ctx().PushWidth(max(box-float64(inner.Horizontal()), 0))
	rows := c.children(nil, c.contentRow)
	c.ctx().PopWidth()

	url, color := c.attr("background-url"), c.attr("background-color")
	bgWidth, _ := c.px("background-width")
	bgHeight, _ := c.px("background-height")
	position := c.attr("background-position")

	background := color
	if url != "" {
		background = strings.TrimSpace(color + " url('" + url + "') no-repeat " + position + " / cover")
	}

	tdStyles := []string{
		"background", background,
		"background-position", position,
		"background-repeat", "no-repeat",
	}
	tdStyles = append(tdStyles, c.paddingStyles("padding", "padding")...)
	tdStyles = append(tdStyles, "vertical-align", c.attr("vertical-align"))

	var height, magic string
	if c.attr("mode") == "fluid-height" {
		if bgWidth > 0 {
			magic = `<td` + attrs("style", styles(
				"width", "0.01%",
				"padding-bottom", formatPct(bgHeight/bgWidth*100),
				"mso-padding-bottom-alt", "0",
			)) + ` />`
		}
	} else {
		h, _ := c.px("height")
		if h = h - float64(pad.Vertical()); h > 0 {
			height = formatInt(h)
			tdStyles = append(tdStyles, "height", formatPx(h))
		}
	}

	content := conditional(`<table`+attrs(
		"align", c.attr("align"),
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"style", styles("width", formatPx(box)),
		"width", formatInt(box),
	)+`><tr><td`+attrs("style", styles(c.paddingStyles("inner-padding", "padding")...))+`>`) +
		`<div` + attrs("class", "mj-hero-content", "style", styles(
		"background-color", c.attr("inner-background-color"),
		"margin", "0px auto",
	)) + `>` +
		`<table border="0" cellpadding="0" cellspacing="0" role="presentation" style="width:100%;margin:0px;"><tbody><tr><td` +
		attrs("style", styles(c.paddingStyles("inner-padding", "padding")...)) + `>` +
		`<table border="0" cellpadding="0" cellspacing="0" role="presentation" style="width:100%;margin:0px;"><tbody>` +
		rows +
		`</tbody></table></td></tr></tbody></table></div>` +
		conditional(`</td></tr></table>`)

	var image string
	if url != "" {
		image = `<v:image` + attrs(
			"style", styles(
				"border", "0",
				"height", formatPx(bgHeight),
				"mso-position-horizontal", "center",
				"position", "absolute",
				"top", "0",
				"width", formatPx(container),
				"z-index", "-3",
			),
			"src", url,
			"xmlns:v", "urn:schemas-microsoft-com:vml",
		) + ` />`
	}

	return conditional(`<table`+attrs(
		"align", "center",
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"role", "presentation",
		"style", styles("width", formatPx(container)),
		"width", formatInt(container),
	)+`><tr><td style="line-height:0;font-size:0;mso-line-height-rule:exactly;">`+image) +
		`<div` + attrs("class", c.cssClass(), "style", styles(
		"margin", "0 auto",
		"max-width", formatPx(container),
	)) + `>` +
		`<table border="0" cellpadding="0" cellspacing="0" role="presentation" style="width:100%;"><tbody><tr` +
		attrs("style", styles("vertical-align", "top")) + `>` +
		magic +
		`<td` + attrs("background", url, "style", styles(tdStyles...), "height", height) + `>` + content + `</td>` +
		magic +
		`</tr></tbody></table></div>` +
		conditional(`</td></tr></table>`)
}
