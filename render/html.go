package render

import (
	"regexp"
	"strings"

	"mjmlc/css"
	"mjmlc/mjml"
)

// Outlook and IE conditional comment markers.
const (
	startConditional    = `<!--[if mso | IE]>`
	endConditional      = `<![endif]-->`
	startNegation       = `<!--[if !mso | IE]><!-->`
	endNegation         = `<!--<![endif]-->`
	startMsoConditional = `<!--[if mso]>`
	startMsoNegation    = `<!--[if !mso]><!-->`
)

func conditional(s string) string {
	return startConditional + s + endConditional
}

func msoConditional(s string) string {
	return startMsoConditional + s + endConditional
}

func msoNegation(s string) string {
	return startMsoNegation + s + endNegation
}

var attrEscaper = strings.NewReplacer(`"`, "&quot;")

// attrs renders name/value pairs as HTML attributes with leading space.
// Empty values are skipped except for alt, where empty text is meaningful.
func attrs(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		name, value := pairs[i], pairs[i+1]
		if value == "" && name != "alt" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(value))
		b.WriteByte('"')
	}
	return b.String()
}

// styles renders CSS declarations, empty values are skipped.
func styles(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		b.WriteString(pairs[i])
		b.WriteByte(':')
		b.WriteString(pairs[i+1])
		b.WriteByte(';')
	}
	return b.String()
}

// classes joins non empty class names.
func classes(names ...string) string {
	var res []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			res = append(res, n)
		}
	}
	return strings.Join(res, " ")
}

// suffixClasses appends suffix to every class in the list.
func suffixClasses(list, suffix string) string {
	fields := strings.Fields(list)
	for i, f := range fields {
		fields[i] = f + "-" + suffix
	}
	return strings.Join(fields, " ")
}

func formatPx(v float64) string {
	return css.FormatNumber(v) + "px"
}

func formatInt(v float64) string {
	return css.FormatNumber(v)
}

// content serializes children of ending tag elements, text is passed
// through verbatim.
func (w *walker) content(nodes []mjml.Node) string {
	var b strings.Builder
	w.writeContent(&b, nodes)
	return strings.TrimSpace(b.String())
}

func (w *walker) writeContent(b *strings.Builder, nodes []mjml.Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *mjml.Text:
			b.WriteString(n.Value)
		case *mjml.Comment:
			if w.opts.KeepComments {
				b.WriteString("<!--" + n.Value + "-->")
			}
		case *mjml.Raw:
			b.WriteString("<" + n.Name)
			for k, v := range n.Attrs.All() {
				b.WriteString(" " + k + `="` + attrEscaper.Replace(v) + `"`)
			}
			switch {
			case n.SelfClosing:
				b.WriteString(" />")
			case mjml.IsVoid(n.Name):
				b.WriteString(">")
			default:
				b.WriteString(">")
				w.writeContent(b, n.Children)
				b.WriteString("</" + n.Name + ">")
			}
		case *mjml.Element:
			// included html and css end up as elements holding text
			w.writeContent(b, n.Children)
		}
	}
}

var (
	adjacentConditionals = regexp.MustCompile(`<!\[endif]-->\s*<!--\[if mso \| IE]>`)
	conditionalBlock     = regexp.MustCompile(`(?s)(<!--\[if\s[^\]]+]>)(.*?)(<!\[endif]-->)`)
	spaceBetweenTags     = regexp.MustCompile(`(?m)(^|>)(\s+)(<|$)`)
	repeatedSpace        = regexp.MustCompile(`\s{2,}`)
)

// mergeConditionals joins adjacent Outlook blocks and removes whitespace
// between tags inside conditional comments.
func mergeConditionals(s string) string {
	s = adjacentConditionals.ReplaceAllString(s, "")
	return conditionalBlock.ReplaceAllStringFunc(s, func(m string) string {
		parts := conditionalBlock.FindStringSubmatch(m)
		body := spaceBetweenTags.ReplaceAllString(parts[2], "$1$3")
		body = repeatedSpace.ReplaceAllString(body, " ")
		return parts[1] + body + parts[3]
	})
}
