package render

import (
	"fmt"
	"math"
	"strings"
)

const maxThumbnailWidth = 110

// carouselStyle builds per instance head style. Radio buttons precede
// content, selectors reach content through as many sibling hops as there
// are radios after the checked one.
func carouselStyle(id string, count int, iconWidth, hoverColor, selectedColor string) string {
	hops := func(i int) string {
		return strings.Repeat("+ * ", count-i) + "+ .mj-carousel-content"
	}
	radio := func(i int) string {
		return fmt.Sprintf(".mj-carousel-%s-radio-%d:checked %s", id, i, hops(i))
	}
	var images, hidden, next, previous, selected []string
	for i := 1; i <= count; i++ {
		hidden = append(hidden, radio(i)+" .mj-carousel-image")
		images = append(images, fmt.Sprintf("%s .mj-carousel-image-%d", radio(i), i))
		next = append(next, fmt.Sprintf("%s .mj-carousel-next-%d", radio(i), i%count+1))
		previous = append(previous, fmt.Sprintf("%s .mj-carousel-previous-%d", radio(i), (i-2+count)%count+1))
		selected = append(selected, fmt.Sprintf("%s .mj-carousel-%s-thumbnail-%d", radio(i), id, i))
	}
	join := func(list []string) string {
		return strings.Join(list, ",\n      ")
	}

	var b strings.Builder
	b.WriteString("      .mj-carousel { -webkit-user-select: none; -moz-user-select: none; user-select: none; }\n")
	fmt.Fprintf(&b, "      .mj-carousel-%s-icons-cell { display: table-cell !important; width: %s !important; }\n", id, iconWidth)
	b.WriteString("      .mj-carousel-radio, .mj-carousel-next, .mj-carousel-previous { display: none !important; }\n")
	b.WriteString("      .mj-carousel-thumbnail, .mj-carousel-next, .mj-carousel-previous { touch-action: manipulation; }\n")
	fmt.Fprintf(&b, "      %s { display: none !important; }\n", join(hidden))
	fmt.Fprintf(&b, "      %s { display: block !important; }\n", join(images))
	fmt.Fprintf(&b, "      .mj-carousel-previous-icons,\n      .mj-carousel-next-icons,\n      %s,\n      %s { display: block !important; }\n", join(next), join(previous))
	fmt.Fprintf(&b, "      %s { border-color: %s !important; }\n", join(selected), selectedColor)
	b.WriteString("      .mj-carousel-image img + div, .mj-carousel-thumbnail img + div { display: none !important; }\n")
	fmt.Fprintf(&b, "      .mj-carousel-thumbnail:hover { border-color: %s !important; }\n", hoverColor)
	b.WriteString("      .mj-carousel noinput { display:block !important; }\n")
	b.WriteString("      .mj-carousel noinput .mj-carousel-image-1 { display: block !important; }\n")
	b.WriteString("      .mj-carousel noinput .mj-carousel-arrows, .mj-carousel noinput .mj-carousel-thumbnails { display: none !important; }\n")
	b.WriteString("      [owa] .mj-carousel-thumbnail { display: none !important; }\n")
	fmt.Fprintf(&b, "      @media screen yahoo {\n        .mj-carousel-%s-icons-cell, .mj-carousel-previous-icons, .mj-carousel-next-icons { display: none !important; }\n", id)
	fmt.Fprintf(&b, "        .mj-carousel-%s-radio-1:checked %s .mj-carousel-%s-thumbnail-1 { border-color: transparent; }\n      }", id, hops(1), id)
	return b.String()
}

func (c *component) carousel() string {
	images := c.childElements(nil)
	if len(images) == 0 {
		return ""
	}
	id := c.id()
	count := len(images)
	c.ctx().AddComponentStyle("carousel-"+id, carouselStyle(id, count,
		c.attr("icon-width"), c.attr("tb-hover-border-color"), c.attr("tb-selected-border-color")))

	var radios strings.Builder
	for i := 1; i <= count; i++ {
		radios.WriteString(`<input` + attrs(
			"class", fmt.Sprintf("mj-carousel-radio mj-carousel-%s-radio mj-carousel-%s-radio-%d", id, id, i),
			"checked", ifSet(i == 1, "checked"),
			"type", "radio",
			"name", "mj-carousel-radio-"+id,
			"id", fmt.Sprintf("mj-carousel-%s-radio-%d", id, i),
			"style", "display:none;mso-hide:all;",
		) + ` />`)
	}

	container, _ := c.ctx().ContainerWidth()
	tbWidth := c.attr("tb-width")
	if tbWidth == "" {
		tbWidth = formatPx(math.Min(math.Floor(container/float64(count)), maxThumbnailWidth))
	}

	inherited := c.same("border-radius", "tb-border", "tb-border-radius")
	var thumbnails string
	if c.attr("thumbnails") == "visible" {
		var b strings.Builder
		for i, el := range images {
			img := c.w.component(el.el, inherited)
			b.WriteString(img.carouselThumbnail(id, i+1, tbWidth))
		}
		thumbnails = b.String()
	}

	main := `<table` + attrs(
		"style", "caption-side:top;display:table-caption;table-layout:fixed;width:100%;",
		"border", "0",
		"cellpadding", "0",
		"cellspacing", "0",
		"width", "100%",
		"role", "presentation",
		"class", "mj-carousel-main",
	) + `><tbody><tr>` +
		c.carouselIcons(id, "previous", c.attr("left-icon"), count) +
		`<td style="padding:0px;"><div class="mj-carousel-images">` +
		c.children(inherited, nil) +
		`</div></td>` +
		c.carouselIcons(id, "next", c.attr("right-icon"), count) +
		`</tr></tbody></table>`

	carousel := `<div class="mj-carousel">` +
		radios.String() +
		`<div` + attrs(
		"class", "mj-carousel-content mj-carousel-"+id+"-content",
		"style", "display:table;width:100%;table-layout:fixed;text-align:center;font-size:0px;",
	) + `>` + thumbnails + main + `</div></div>`

	first := c.w.component(images[0].el, inherited)
	return msoNegation(carousel) + msoConditional(first.carouselImageMarkup(1))
}

func (c *component) carouselIcons(id, direction, icon string, count int) string {
	width := c.attr("icon-width")
	var labels strings.Builder
	for i := 1; i <= count; i++ {
		labels.WriteString(`<label` + attrs(
			"for", fmt.Sprintf("mj-carousel-%s-radio-%d", id, i),
			"class", fmt.Sprintf("mj-carousel-%s mj-carousel-%s-%d", direction, direction, i),
		) + `><img` + attrs(
			"src", icon,
			"alt", direction,
			"style", styles("display", "block", "width", width, "height", "auto"),
			"width", formatInt(float64(leadingInt(width))),
		) + ` /></label>`)
	}
	return `<td` + attrs(
		"class", "mj-carousel-"+id+"-icons-cell",
		"style", "font-size:0px;display:none;mso-hide:all;padding:0px;",
	) + `><div` + attrs(
		"class", "mj-carousel-"+direction+"-icons",
		"style", "display:none;mso-hide:all;",
	) + `>` + labels.String() + `</div></td>`
}

func (c *component) carouselThumbnail(id string, index int, width string) string {
	src := c.attr("thumbnails-src")
	if src == "" {
		src = c.attr("src")
	}
	return `<a` + attrs(
		"style", styles(
			"border", c.attr("tb-border"),
			"border-radius", c.attr("tb-border-radius"),
			"display", "inline-block",
			"overflow", "hidden",
			"width", width,
		),
		"href", fmt.Sprintf("#%d", index),
		"target", "_self",
		"class", fmt.Sprintf("mj-carousel-thumbnail mj-carousel-%s-thumbnail mj-carousel-%s-thumbnail-%d", id, id, index),
	) + `><label` + attrs("for", fmt.Sprintf("mj-carousel-%s-radio-%d", id, index)) + `><img` + attrs(
		"style", "display:block;width:100%;height:auto;",
		"src", src,
		"alt", c.attr("alt"),
		"width", formatInt(float64(leadingInt(width))),
	) + ` /></label></a>`
}

// carouselImage renders image at its position among carousel siblings, only
// the first one is visible initially.
func (c *component) carouselImage() string {
	return c.carouselImageMarkup(c.ctx().IndexInParent() + 1)
}

func (c *component) carouselImageMarkup(index int) string {
	width, _ := c.ctx().ContainerWidth()
	img := `<img` + attrs(
		"title", c.attr("title"),
		"src", c.attr("src"),
		"alt", c.attr("alt"),
		"style", styles(
			"border-radius", c.attr("border-radius"),
			"display", "block",
			"width", formatPx(width),
			"max-width", "100%",
			"height", "auto",
		),
		"width", formatInt(width),
		"border", "0",
	) + ` />`
	if href := c.attr("href"); href != "" {
		img = `<a` + attrs("href", href, "rel", c.attr("rel"), "target", c.attr("target")) + `>` + img + `</a>`
	}

	var style string
	if index > 1 {
		style = "display:none;mso-hide:all;"
	}
	return `<div` + attrs(
		"class", classes("mj-carousel-image", fmt.Sprintf("mj-carousel-image-%d", index), c.cssClass()),
		"style", style,
	) + `>` + img + `</div>`
}
