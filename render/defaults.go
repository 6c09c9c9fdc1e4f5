package render

import "mjmlc/mjml"

const defaultFontFamily = "Ubuntu, Helvetica, Arial, sans-serif"

// defaults is built-in per tag attribute table, the last cascade step.
var defaults = map[mjml.Tag]*mjml.Attributes{
	mjml.TagBody: mjml.NewAttributes("width", "600px"),
	mjml.TagSection: mjml.NewAttributes(
		"background-repeat", "repeat",
		"background-size", "auto",
		"background-position", "top center",
		"direction", "ltr",
		"padding", "20px 0",
		"text-align", "center",
	),
	mjml.TagWrapper: mjml.NewAttributes(
		"background-repeat", "repeat",
		"background-size", "auto",
		"background-position", "top center",
		"direction", "ltr",
		"padding", "20px 0",
		"text-align", "center",
	),
	mjml.TagGroup:  mjml.NewAttributes("direction", "ltr"),
	mjml.TagColumn: mjml.NewAttributes("direction", "ltr", "vertical-align", "top"),
	mjml.TagHero: mjml.NewAttributes(
		"mode", "fixed-height",
		"height", "0px",
		"background-color", "#ffffff",
		"background-position", "center center",
		"padding", "0px",
		"vertical-align", "top",
	),
	mjml.TagText: mjml.NewAttributes(
		"align", "left",
		"color", "#000000",
		"font-family", defaultFontFamily,
		"font-size", "13px",
		"line-height", "1",
		"padding", "10px 25px",
	),
	mjml.TagImage: mjml.NewAttributes(
		"alt", "",
		"align", "center",
		"border", "0",
		"height", "auto",
		"padding", "10px 25px",
		"target", "_blank",
		"font-size", "13px",
	),
	mjml.TagButton: mjml.NewAttributes(
		"align", "center",
		"background-color", "#414141",
		"border", "none",
		"border-radius", "3px",
		"color", "#ffffff",
		"font-family", defaultFontFamily,
		"font-size", "13px",
		"font-weight", "normal",
		"inner-padding", "10px 25px",
		"line-height", "120%",
		"padding", "10px 25px",
		"target", "_blank",
		"text-decoration", "none",
		"text-transform", "none",
		"vertical-align", "middle",
	),
	mjml.TagDivider: mjml.NewAttributes(
		"align", "center",
		"border-color", "#000000",
		"border-style", "solid",
		"border-width", "4px",
		"padding", "10px 25px",
		"width", "100%",
	),
	mjml.TagSpacer: mjml.NewAttributes("height", "20px"),
	mjml.TagTable: mjml.NewAttributes(
		"align", "left",
		"border", "none",
		"cellpadding", "0",
		"cellspacing", "0",
		"color", "#000000",
		"font-family", defaultFontFamily,
		"font-size", "13px",
		"line-height", "22px",
		"padding", "10px 25px",
		"table-layout", "auto",
		"width", "100%",
	),
	mjml.TagSocial: mjml.NewAttributes(
		"align", "center",
		"border-radius", "3px",
		"color", "#333333",
		"font-family", defaultFontFamily,
		"font-size", "13px",
		"icon-size", "20px",
		"line-height", "22px",
		"mode", "horizontal",
		"padding", "10px 25px",
		"text-decoration", "none",
	),
	mjml.TagSocialElement: mjml.NewAttributes(
		"alt", "",
		"align", "left",
		"color", "#000",
		"border-radius", "3px",
		"font-family", defaultFontFamily,
		"font-size", "13px",
		"line-height", "1",
		"padding", "4px",
		"text-padding", "4px 4px 4px 0",
		"target", "_blank",
		"text-decoration", "none",
		"vertical-align", "middle",
	),
	mjml.TagNavbar: mjml.NewAttributes(
		"align", "center",
		"icon-align", "center",
		"ico-open", "&#9776;",
		"ico-close", "&#8855;",
		"ico-color", "#000000",
		"ico-font-size", "30px",
		"ico-font-family", defaultFontFamily,
		"ico-text-transform", "uppercase",
		"ico-padding", "10px",
		"ico-text-decoration", "none",
		"ico-line-height", "30px",
	),
	mjml.TagNavbarLink: mjml.NewAttributes(
		"color", "#000000",
		"font-family", defaultFontFamily,
		"font-size", "13px",
		"font-weight", "normal",
		"line-height", "22px",
		"padding", "15px 10px",
		"target", "_blank",
		"text-decoration", "none",
		"text-transform", "uppercase",
	),
	mjml.TagAccordion: mjml.NewAttributes(
		"border", "2px solid black",
		"font-family", defaultFontFamily,
		"icon-align", "middle",
		"icon-wrapped-url", "https://i.imgur.com/bIXv1bk.png",
		"icon-wrapped-alt", "+",
		"icon-unwrapped-url", "https://i.imgur.com/w4uTygT.png",
		"icon-unwrapped-alt", "-",
		"icon-position", "right",
		"icon-height", "32px",
		"icon-width", "32px",
		"padding", "10px 25px",
	),
	mjml.TagAccordionTitle: mjml.NewAttributes(
		"font-size", "13px",
		"padding", "16px",
	),
	mjml.TagAccordionText: mjml.NewAttributes(
		"font-size", "13px",
		"line-height", "1",
		"padding", "16px",
	),
	mjml.TagCarousel: mjml.NewAttributes(
		"align", "center",
		"border-radius", "6px",
		"icon-width", "44px",
		"left-icon", "https://i.imgur.com/xTh3hln.png",
		"right-icon", "https://i.imgur.com/os7o9kz.png",
		"thumbnails", "visible",
		"tb-border", "2px solid transparent",
		"tb-border-radius", "6px",
		"tb-hover-border-color", "#fead0d",
		"tb-selected-border-color", "#ccc",
	),
	mjml.TagCarouselImage: mjml.NewAttributes(
		"alt", "",
		"target", "_blank",
	),
}
