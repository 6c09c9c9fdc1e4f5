package render

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"

	"mjmlc/mjml"
	"mjmlc/parser"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func mustParse(t *testing.T, src string) *mjml.Document {
	t.Helper()
	doc, err := parser.Parse(src, parser.Options{}, testLogger(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func mustRender(t *testing.T, src string, opts Options) string {
	t.Helper()
	out, err := Render(mustParse(t, src), opts, testLogger(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

// findText returns element holding text node with exact (trimmed) content.
func findText(n *html.Node, text string) *html.Node {
	if n.Type == html.TextNode && strings.TrimSpace(n.Data) == text {
		return n.Parent
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findText(c, text); res != nil {
			return res
		}
	}
	return nil
}

func attrOf(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func TestRenderBreakpointScenario(t *testing.T) {
	src := `<root><head><breakpoint width="480px"/></head><body><section><column><text>Hi</text></column></section></body></root>`
	out := mustRender(t, src, DefaultOptions())

	if !strings.Contains(out, "@media only screen and (min-width:480px)") {
		t.Fatalf("media query for 480px is missing:\n%s", out)
	}
	if !strings.Contains(out, ".mj-column-per-100 { width:100% !important; max-width: 100%; }") {
		t.Fatalf("column media query is missing:\n%s", out)
	}

	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	div := findText(doc, "Hi")
	if div == nil || div.Data != "div" {
		t.Fatalf("text is not rendered inside div:\n%s", out)
	}
	depth := 0
	for p := div; p != nil; p = p.Parent {
		depth++
	}
	if depth < 10 {
		t.Fatalf("text is not nested in layout markup, depth %d", depth)
	}
}

func TestRenderCustomBreakpoint(t *testing.T) {
	src := `<root><head><breakpoint width="320px"/></head><body><section><column><navbar hamburger="hamburger"><navbar-link href="/a">A</navbar-link></navbar></column></section></body></root>`
	out := mustRender(t, src, DefaultOptions())
	if !strings.Contains(out, "(min-width:320px)") || !strings.Contains(out, "(max-width:319px)") {
		t.Fatalf("breakpoint override is not applied:\n%s", out)
	}
}

func TestRenderDeterministic(t *testing.T) {
	src := `<root lang="en">
<head>
  <title>Hello</title>
  <preview>Preview text</preview>
  <font name="Lato" href="https://fonts.example.com/lato.css"/>
  <style>.x { color: red; }</style>
</head>
<body background-color="#eeeeee">
  <wrapper gap="10px">
    <section background-url="https://example.com/bg.png">
      <group>
        <column><image src="https://example.com/a.png" fluid-on-mobile="true"/></column>
        <column><button href="https://example.com" width="200px">Go</button></column>
      </group>
    </section>
  </wrapper>
  <hero mode="fluid-height" background-url="https://example.com/h.png" background-width="600px" background-height="300px">
    <text font-family="Lato">Hero</text>
    <divider width="50%"/>
    <spacer/>
  </hero>
  <section full-width="full-width">
    <column>
      <table><tr><td>cell</td></tr></table>
      <social><social-element name="github" href="https://github.com">GitHub</social-element></social>
      <accordion><accordion-element><accordion-title>Q</accordion-title><accordion-text>A</accordion-text></accordion-element></accordion>
      <carousel><carousel-image src="https://example.com/1.png"/><carousel-image src="https://example.com/2.png"/></carousel>
    </column>
  </section>
</body>
</root>`
	first := mustRender(t, src, DefaultOptions())
	second := mustRender(t, src, DefaultOptions())
	if first != second {
		t.Fatalf("rendering is not deterministic")
	}
	for _, want := range []string{
		"<title>Hello</title>",
		"Preview text",
		`lang="en"`,
		"background-color:#eeeeee;",
		"mj-full-width-mobile",
		"v:rect",
		"mj-hero-content",
		"padding-bottom:50%;",
		"mj-accordion-title",
		"mj-carousel-images",
		"https://fonts.example.com/lato.css",
	} {
		if !strings.Contains(first, want) {
			t.Fatalf("output does not contain %q:\n%s", want, first)
		}
	}
}

func TestColumnWidthsSumToContainer(t *testing.T) {
	src := `<root><body width="600px"><section padding="0 50px">
  <column width="50%"></column>
  <column width="100px"></column>
  <column></column>
  <column></column>
</section></body></root>`
	doc := mustParse(t, src)
	w := newWalker(DefaultOptions(), testLogger(t))
	w.render(w.component(doc.Body(), nil))
	if w.err != nil {
		t.Fatalf("render: %v", w.err)
	}

	const box = 500.0
	wantClasses := []string{"mj-column-per-50", "mj-column-px-100", "mj-column-per-15", "mj-column-per-15"}
	sum := 0.0
	for i, col := range doc.Body().Child(mjml.TagSection).ChildElements() {
		s, ok := w.slots[col]
		if !ok {
			t.Fatalf("column %d has no width", i)
		}
		if s.class != wantClasses[i] {
			t.Fatalf("column %d class = %q, want %q", i, s.class, wantClasses[i])
		}
		if math.Abs(s.px/box*100-s.pct) > 0.01 {
			t.Fatalf("column %d: %vpx is not %v%% of %v", i, s.px, s.pct, box)
		}
		sum += s.px
	}
	if math.Abs(sum-box) > 1 {
		t.Fatalf("widths sum to %v, want %v", sum, box)
	}
}

func TestGroupColumnsShareGroupWidth(t *testing.T) {
	src := `<root><body><section><group width="400px"><column></column><column></column></group><column></column></section></body></root>`
	out := mustRender(t, src, DefaultOptions())
	for _, want := range []string{
		"mj-column-px-400 { width:400px !important; max-width: 400px; }",
		"width:200px;",
		"mj-column-per-50",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestLocalAttributeWinsOverClass(t *testing.T) {
	src := `<root>
<head><attributes><class name="red" color="#ff0000"/></attributes></head>
<body><section><column>
  <text mj-class="red" color="#0000ff">Hi</text>
  <text mj-class="red">Ho</text>
</column></section></body>
</root>`
	doc, err := html.Parse(strings.NewReader(mustRender(t, src, DefaultOptions())))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	if style := attrOf(findText(doc, "Hi"), "style"); !strings.Contains(style, "color:#0000ff;") || strings.Contains(style, "#ff0000") {
		t.Fatalf("local value must win, style %q", style)
	}
	if style := attrOf(findText(doc, "Ho"), "style"); !strings.Contains(style, "color:#ff0000;") {
		t.Fatalf("class value must apply, style %q", style)
	}
}

func TestCascadeOrder(t *testing.T) {
	src := `<root>
<head><attributes>
  <all font-size="20px" color="#111111"/>
  <text color="#222222"/>
  <class name="a" color="#333333"/>
  <class name="b" color="#444444"/>
</attributes></head>
<body><section><column>
  <text>type</text>
  <text mj-class="a b">class</text>
  <button>all</button>
</column></section></body>
</root>`
	doc, err := html.Parse(strings.NewReader(mustRender(t, src, DefaultOptions())))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	for text, want := range map[string]string{
		"type":  "color:#222222;",
		"class": "color:#444444;",
		"all":   "color:#111111;",
	} {
		n := findText(doc, text)
		if n == nil {
			t.Fatalf("%q is not rendered", text)
		}
		if style := attrOf(n, "style"); !strings.Contains(style, want) || !strings.Contains(style, "font-size:20px;") {
			t.Fatalf("%q style = %q, want %q", text, style, want)
		}
	}
}

func TestFontsLinkedOnce(t *testing.T) {
	src := `<root>
<head>
  <font name="Lato" href="https://a.example.com/lato.css"/>
  <font name="Lato" href="https://b.example.com/lato.css"/>
</head>
<body><section><column><text font-family="Lato, Arial">x</text></column></section></body>
</root>`
	out := mustRender(t, src, DefaultOptions())
	if n := strings.Count(out, "<link "); n != 1 {
		t.Fatalf("expected single font link, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, `<link href="https://b.example.com/lato.css"`) {
		t.Fatalf("last declaration must win:\n%s", out)
	}
}

func TestFontNamesAreCaseInsensitive(t *testing.T) {
	src := `<root>
<head><font name="lato" href="https://x.example.com/lato.css"/></head>
<body><section><column><text font-family="Lato, sans-serif">x</text></column></section></body>
</root>`
	out := mustRender(t, src, DefaultOptions())
	if n := strings.Count(out, "<link "); n != 1 {
		t.Fatalf("expected single font link, got %d:\n%s", n, out)
	}
	if strings.Contains(out, "fonts.googleapis.com/css?family=Lato") {
		t.Fatalf("built-in font linked next to declared one:\n%s", out)
	}
	if !strings.Contains(out, `<link href="https://x.example.com/lato.css"`) {
		t.Fatalf("declared font is not linked:\n%s", out)
	}
}

func TestUnusedFontsAreNotLinked(t *testing.T) {
	src := `<root><body><section><column><text font-family="Arial">x</text></column></section></body></root>`
	out := mustRender(t, src, DefaultOptions())
	if strings.Contains(out, "<link ") {
		t.Fatalf("no font should be linked:\n%s", out)
	}

	opts := DefaultOptions()
	opts.Fonts = map[string]string{"Arial": "https://fonts.example.com/arial.css"}
	out = mustRender(t, src, opts)
	if !strings.Contains(out, "https://fonts.example.com/arial.css") {
		t.Fatalf("option font is not linked:\n%s", out)
	}
}

func TestDefaultFontLinkedWhenUsed(t *testing.T) {
	out := mustRender(t, `<root><body><section><column><text>x</text></column></section></body></root>`, DefaultOptions())
	if !strings.Contains(out, "https://fonts.googleapis.com/css?family=Ubuntu:300,400,500,700") {
		t.Fatalf("default font is not linked:\n%s", out)
	}
}

func TestKeepComments(t *testing.T) {
	src := `<root><body><section><column><!-- note --><text>Hi<!-- inner --></text></column></section></body></root>`

	out := mustRender(t, src, DefaultOptions())
	if !strings.Contains(out, "<!-- note -->") || !strings.Contains(out, "<!-- inner -->") {
		t.Fatalf("comments are dropped:\n%s", out)
	}

	opts := DefaultOptions()
	opts.KeepComments = false
	out = mustRender(t, src, opts)
	if strings.Contains(out, "note") || strings.Contains(out, "inner") {
		t.Fatalf("comments are kept:\n%s", out)
	}
}

func TestRenderErrorForBadDefault(t *testing.T) {
	src := `<root><head><attributes><all padding="abc"/></attributes></head><body><section><column><text>Hi</text></column></section></body></root>`
	_, err := Render(mustParse(t, src), DefaultOptions(), testLogger(t))
	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("expected render error, got %v", err)
	}
	if re.Attribute != "padding" || re.Value != "abc" {
		t.Fatalf("unexpected error %v", re)
	}
}

func TestCarouselIDsAreStable(t *testing.T) {
	src := `<root><body><section><column>
  <carousel><carousel-image src="a.png"/><carousel-image src="b.png"/></carousel>
  <carousel thumbnails="hidden"><carousel-image src="c.png"/></carousel>
</column></section></body></root>`
	first := mustRender(t, src, DefaultOptions())
	second := mustRender(t, src, DefaultOptions())
	if first != second {
		t.Fatalf("carousel output differs between renders")
	}

	ids := map[string]bool{}
	for _, m := range regexp.MustCompile(`mj-carousel-([0-9a-f]{16})-content`).FindAllStringSubmatch(first, -1) {
		ids[m[1]] = true
	}
	if len(ids) != 2 {
		t.Fatalf("expected two distinct carousel ids, got %v", ids)
	}
	if !strings.Contains(first, "mj-carousel-image-2") || !strings.Contains(first, "display:none;mso-hide:all;") {
		t.Fatalf("second image must be hidden:\n%s", first)
	}
}

func TestSocialShareURL(t *testing.T) {
	src := `<root><body><section><column><social>
  <social-element name="facebook" href="https://example.com">Share</social-element>
  <social-element name="twitter-noshare" href="https://twitter.com/me"/>
</social></column></section></body></root>`
	opts := DefaultOptions()
	opts.SocialIconOrigin = "https://icons.example.com/"
	out := mustRender(t, src, opts)
	for _, want := range []string{
		`href="https://www.facebook.com/sharer/sharer.php?u=https://example.com"`,
		`src="https://icons.example.com/facebook.png"`,
		`href="https://twitter.com/me"`,
		"background:#3b5998;",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestRawPositions(t *testing.T) {
	src := `<root><head><raw><meta name="x-head" content="1"/></raw></head><body>
<raw position="file-start">{{ template }}</raw>
<section><column><raw><p class="raw">raw</p></raw></column></section>
</body></root>`
	out := mustRender(t, src, DefaultOptions())
	if !strings.HasPrefix(out, "{{ template }}\n<!doctype html>") {
		t.Fatalf("file start content misplaced:\n%s", out)
	}
	if !strings.Contains(out, `<meta name="x-head" content="1" />`) {
		t.Fatalf("head raw content is missing:\n%s", out)
	}
	if !strings.Contains(out, `<p class="raw">raw</p>`) {
		t.Fatalf("body raw content is missing:\n%s", out)
	}
}

func TestMinifyStyles(t *testing.T) {
	src := `<root><head><style>
  .a  { color : red ; }
  /* gone */
</style></head><body></body></root>`
	opts := DefaultOptions()
	opts.MinifyStyles = true
	out := mustRender(t, src, opts)
	if !strings.Contains(out, `<style type="text/css">.a{color:red;}</style>`) {
		t.Fatalf("style is not compacted:\n%s", out)
	}
}

func TestMergeConditionals(t *testing.T) {
	in := "<!--[if mso | IE]><table><tr><![endif]-->\n  <!--[if mso | IE]><td>\n  </td><![endif]-->"
	want := "<!--[if mso | IE]><table><tr><td></td><![endif]-->"
	if got := mergeConditionals(in); got != want {
		t.Fatalf("mergeConditionals = %q, want %q", got, want)
	}
}

func TestContextWidthStack(t *testing.T) {
	ctx := NewContext(DefaultOptions())
	if _, ok := ctx.ContainerWidth(); ok {
		t.Fatalf("empty stack must have no width")
	}
	ctx.PushWidth(600)
	ctx.PushWidth(300)
	if w, _ := ctx.ContainerWidth(); w != 300 {
		t.Fatalf("width = %v", w)
	}
	ctx.PopWidth()
	if w, _ := ctx.ContainerWidth(); w != 600 {
		t.Fatalf("width after pop = %v", w)
	}
	if ctx.Breakpoint() != DefaultBreakpoint {
		t.Fatalf("breakpoint = %v", ctx.Breakpoint())
	}
	ctx.SetBreakpoint(0)
	if ctx.Breakpoint() != DefaultBreakpoint {
		t.Fatalf("zero breakpoint must be ignored")
	}
}
