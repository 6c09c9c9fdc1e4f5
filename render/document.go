package render

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"mjmlc/css"
	"mjmlc/mjml"
)

func (w *walker) root(el *mjml.Element) {
	w.ctx.lang, w.ctx.dir = "und", "auto"
	if v, ok := el.Attr("lang"); ok {
		w.ctx.lang = v
	}
	if v, ok := el.Attr("dir"); ok {
		w.ctx.dir = v
	}
	if v, _ := el.Attr("owa"); v == "desktop" {
		w.ctx.forceOWA = true
	}
}

// head collects head declarations into context. Attribute blocks are merged
// in document order before anything in body is rendered.
func (w *walker) head(head *mjml.Element) {
	for _, el := range head.ChildElements() {
		switch el.Tag {
		case mjml.TagAttributes:
			w.res.collect(el)
		case mjml.TagBreakpoint:
			v, _ := el.Attr("width")
			if l, err := css.ParseLength(v); err == nil {
				w.ctx.SetBreakpoint(l.Value)
			}
		case mjml.TagFont:
			name, _ := el.Attr("name")
			href, _ := el.Attr("href")
			w.ctx.RegisterFont(name, href)
		case mjml.TagTitle:
			w.ctx.SetTitle(el.Text())
		case mjml.TagPreview:
			w.ctx.SetPreview(el.Text())
		case mjml.TagStyle:
			text := el.Text()
			if w.opts.MinifyStyles {
				text = css.Compact(text)
			}
			if _, inline := el.Attr("inline"); inline {
				w.log.Debug("Inline style is emitted as regular style block", zap.Stringer("at", el.Span))
			}
			w.ctx.RegisterStyleRule(text)
		case mjml.TagRaw:
			if html := w.content(el.Children); html != "" {
				w.ctx.headRaw = append(w.ctx.headRaw, html)
			}
		}
	}
}

const baseStyles = `
    <style type="text/css">
      #outlook a { padding:0; }
      body { margin:0;padding:0;-webkit-text-size-adjust:100%;-ms-text-size-adjust:100%; }
      table, td { border-collapse:collapse;mso-table-lspace:0pt;mso-table-rspace:0pt; }
      img { border:0;height:auto;line-height:100%; outline:none;text-decoration:none;-ms-interpolation-mode:bicubic; }
      p { display:block;margin:13px 0; }
    </style>
    <!--[if mso]>
    <noscript>
    <xml>
    <o:OfficeDocumentSettings>
      <o:AllowPNG/>
      <o:PixelsPerInch>96</o:PixelsPerInch>
    </o:OfficeDocumentSettings>
    </xml>
    </noscript>
    <![endif]-->
    <!--[if lte mso 11]>
    <style type="text/css">
      .mj-outlook-group-fix { width:100% !important; }
    </style>
    <![endif]-->`

// document assembles final page around rendered body.
func (w *walker) document(body string) string {
	ctx := w.ctx
	var b strings.Builder
	for _, s := range ctx.fileStart {
		b.WriteString(s + "\n")
	}
	b.WriteString("<!doctype html>\n")
	fmt.Fprintf(&b, `<html%s xmlns="http://www.w3.org/1999/xhtml" xmlns:v="urn:schemas-microsoft-com:vml" xmlns:o="urn:schemas-microsoft-com:office:office">`+"\n",
		attrs("lang", ctx.lang, "dir", ctx.dir))
	b.WriteString("  <head>\n")
	b.WriteString("    <title>" + ctx.title + "</title>\n")
	b.WriteString("    " + msoNegation(`<meta http-equiv="X-UA-Compatible" content="IE=edge">`) + "\n")
	b.WriteString(`    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">` + "\n")
	b.WriteString(`    <meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(baseStyles + "\n")
	b.WriteString(w.fonts(body))
	b.WriteString(w.mediaQueries())
	if len(ctx.componentStyles) > 0 {
		b.WriteString("    <style type=\"text/css\">\n" + strings.Join(ctx.componentStyles, "\n") + "\n    </style>\n")
	}
	for _, s := range ctx.styles {
		b.WriteString("    <style type=\"text/css\">" + s + "</style>\n")
	}
	for _, s := range ctx.headRaw {
		b.WriteString("    " + s + "\n")
	}
	b.WriteString("  </head>\n")
	fmt.Fprintf(&b, "  <body%s>\n", attrs("style", styles("word-spacing", "normal", "background-color", ctx.background)))
	if ctx.preview != "" {
		b.WriteString(`    <div style="display:none;font-size:1px;color:#ffffff;line-height:1px;max-height:0px;max-width:0px;opacity:0;overflow:hidden;">` + ctx.preview + "</div>\n")
	}
	b.WriteString(body + "\n")
	b.WriteString("  </body>\n</html>\n")
	return b.String()
}

var fontFamilyDecl = regexp.MustCompile(`(?i)font-family\s*:\s*([^;"}>]+)`)

// usedFonts scans rendered markup and user styles for font families.
func (w *walker) usedFonts(body string) map[string]bool {
	used := make(map[string]bool)
	scan := func(s string) {
		for _, m := range fontFamilyDecl.FindAllStringSubmatch(strings.ReplaceAll(s, "&quot;", `'`), -1) {
			for _, name := range strings.Split(m[1], ",") {
				name = strings.ToLower(css.Unquote(strings.TrimSpace(name)))
				if name != "" {
					used[name] = true
				}
			}
		}
	}
	scan(body)
	for _, s := range w.ctx.styles {
		scan(s)
	}
	return used
}

func (w *walker) fonts(body string) string {
	urls := w.ctx.fontURLs(w.usedFonts(body))
	if len(urls) == 0 {
		return ""
	}
	var links, imports strings.Builder
	for _, u := range urls {
		fmt.Fprintf(&links, "    <link href=\"%s\" rel=\"stylesheet\" type=\"text/css\">\n", u)
		fmt.Fprintf(&imports, "      @import url(%s);\n", u)
	}
	return "    " + msoNegation("\n"+links.String()+"    <style type=\"text/css\">\n"+imports.String()+"    </style>\n    ") + "\n"
}

func (w *walker) mediaQueries() string {
	ctx := w.ctx
	if len(ctx.mediaQueries) == 0 {
		return ""
	}
	rules := func(prefix string) string {
		var b strings.Builder
		for _, mq := range ctx.mediaQueries {
			fmt.Fprintf(&b, "      %s.%s %s\n", prefix, mq.class, mq.rule)
		}
		return b.String()
	}
	bp := formatPx(ctx.breakpoint)
	var b strings.Builder
	fmt.Fprintf(&b, "    <style type=\"text/css\">\n      @media only screen and (min-width:%s) {\n%s      }\n    </style>\n", bp, rules("  "))
	fmt.Fprintf(&b, "    <style media=\"screen and (min-width:%s)\">\n%s    </style>\n", bp, rules(".moz-text-html "))
	if ctx.forceOWA {
		fmt.Fprintf(&b, "    <style type=\"text/css\">\n%s    </style>\n", rules("[owa] "))
	}
	return b.String()
}
