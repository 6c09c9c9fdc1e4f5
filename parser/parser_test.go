package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"mjmlc/mjml"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func mapLoader(files map[string]string) LoaderFunc {
	return func(path string) (string, error) {
		text, ok := files[path]
		if !ok {
			return "", fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return text, nil
	}
}

// chanLoader answers asynchronously after short delay.
type chanLoader struct {
	files map[string]string
	delay time.Duration
}

func (l chanLoader) ResolveAsync(ctx context.Context, path string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		select {
		case <-ctx.Done():
			ch <- Result{Err: ctx.Err()}
		case <-time.After(l.delay):
			text, err := mapLoader(l.files).Resolve(path)
			ch <- Result{Text: text, Err: err}
		}
	}()
	return ch
}

func mustParse(t *testing.T, src string, opts Options) *mjml.Document {
	t.Helper()
	doc, err := Parse(src, opts, testLogger(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func parseErr(t *testing.T, src string, opts Options) *mjml.ParseError {
	t.Helper()
	_, err := Parse(src, opts, testLogger(t))
	if err == nil {
		t.Fatalf("expected error for %q", src)
	}
	var pe *mjml.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *mjml.ParseError, got %T: %v", err, err)
	}
	return pe
}

func TestParseSimpleDocument(t *testing.T) {
	src := `<root><head><breakpoint width="480px"/></head><body><section><column><text>Hi</text></column></section></body></root>`
	doc := mustParse(t, src, Options{})

	if doc.Root.Tag != mjml.TagRoot {
		t.Fatalf("root tag = %s", doc.Root.Tag)
	}
	bp := doc.Head().Child(mjml.TagBreakpoint)
	if w, _ := bp.Attr("width"); w != "480px" {
		t.Fatalf("breakpoint width = %q", w)
	}
	text := doc.Body().Child(mjml.TagSection).Child(mjml.TagColumn).Child(mjml.TagText)
	if text == nil || len(text.Children) != 1 {
		t.Fatalf("text element not parsed: %s", mjml.Dump(doc.Root))
	}
	if v := text.Children[0].(*mjml.Text).Value; v != "Hi" {
		t.Fatalf("text = %q", v)
	}
	if len(doc.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", doc.Warnings)
	}
	if doc.Root.Span.Start != 0 || doc.Root.Span.End != len(src) {
		t.Fatalf("root span = %v", doc.Root.Span)
	}
}

func TestParseAliasesProduceSameTree(t *testing.T) {
	short := `<root><body><section padding="0"><column><text>Hi</text></column></section></body></root>`
	legacy := `<mjml><mj-body><mj-section padding="0"><mj-column><mj-text>Hi</mj-text></mj-column></mj-section></mj-body></mjml>`
	a := mjml.Dump(mustParse(t, short, Options{}).Root)
	b := mjml.Dump(mustParse(t, legacy, Options{}).Root)
	if a != b {
		t.Fatalf("trees differ:\n%s\n%s", a, b)
	}
}

func TestParseUnknownChildInText(t *testing.T) {
	src := `<root><body><section><column><text><bogus-tag/></text></column></section></body></root>`
	pe := parseErr(t, src, Options{})
	if pe.Kind != mjml.UnexpectedElement {
		t.Fatalf("kind = %v", pe.Kind)
	}
	if pe.Name != "bogus-tag" {
		t.Fatalf("name = %q", pe.Name)
	}
	want := strings.Index(src, "bogus-tag")
	if pe.Span.Start != want {
		t.Fatalf("span start = %d, want %d", pe.Span.Start, want)
	}
}

func TestParseHTMLContent(t *testing.T) {
	src := `<root><body><section><column><text>Hello<br>world <b class="x">bold</b><img src="a.png"/></text></column></section></body></root>`
	doc := mustParse(t, src, Options{})
	text := doc.Body().Child(mjml.TagSection).Child(mjml.TagColumn).Child(mjml.TagText)
	if len(text.Children) != 5 {
		t.Fatalf("children:\n%s", mjml.Dump(text))
	}
	br := text.Children[1].(*mjml.Raw)
	if br.Name != "br" || br.SelfClosing || len(br.Children) != 0 {
		t.Fatalf("br = %+v", br)
	}
	b := text.Children[3].(*mjml.Raw)
	if v, _ := b.Attrs.Get("class"); v != "x" {
		t.Fatalf("class = %q", v)
	}
	if !text.Children[4].(*mjml.Raw).SelfClosing {
		t.Fatalf("img should be self-closing")
	}
}

func TestParseRawIsPermissive(t *testing.T) {
	src := `<root><body><raw><custom-widget a="1"><x-y/></custom-widget></raw></body></root>`
	doc := mustParse(t, src, Options{})
	raw := doc.Body().Child(mjml.TagRaw)
	w := raw.Children[0].(*mjml.Raw)
	if w.Name != "custom-widget" || len(w.Children) != 1 {
		t.Fatalf("raw content:\n%s", mjml.Dump(raw))
	}
}

func TestParseUnexpectedAttributePosition(t *testing.T) {
	src := `<root><body><section><column><image src="a.png" bogus="1"/></column></section></body></root>`
	pe := parseErr(t, src, Options{})
	if pe.Kind != mjml.UnexpectedAttribute || pe.Name != "bogus" {
		t.Fatalf("unexpected error %v", pe)
	}
	if want := strings.Index(src, `bogus="1"`); pe.Span.Start != want || pe.Span.End != want+len(`bogus="1"`) {
		t.Fatalf("span = %v, want start %d", pe.Span, want)
	}
}

func TestParseInvalidFormatPosition(t *testing.T) {
	src := `<root><body><section><column width="wide"></column></section></body></root>`
	pe := parseErr(t, src, Options{})
	if pe.Kind != mjml.InvalidFormat {
		t.Fatalf("kind = %v", pe.Kind)
	}
	if want := strings.Index(src, "wide"); pe.Span.Start != want || pe.Span.End != want+4 {
		t.Fatalf("span = %v, want start %d", pe.Span, want)
	}
}

func TestParseFontRequiresBothAttributes(t *testing.T) {
	for _, font := range []string{
		`<font name="Raleway"/>`,
		`<font href="https://fonts.example.com/raleway.css"/>`,
	} {
		pe := parseErr(t, `<root><head>`+font+`</head><body></body></root>`, Options{})
		if pe.Kind != mjml.MissingAttribute {
			t.Fatalf("%s: kind = %v", font, pe.Kind)
		}
	}
	mustParse(t, `<root><head><font name="Raleway" href="https://fonts.example.com/raleway.css"/></head><body></body></root>`, Options{})
}

func TestParseEndOfStream(t *testing.T) {
	for _, src := range []string{
		`<root><body><section>`,
		`<root><body><section><column><text>Hi`,
		`<root><body`,
		``,
	} {
		pe := parseErr(t, src, Options{})
		if pe.Kind != mjml.EndOfStream {
			t.Fatalf("%q: kind = %v (%v)", src, pe.Kind, pe)
		}
	}
}

func TestParseSelfClosingHasNoChildren(t *testing.T) {
	doc := mustParse(t, `<root><body><section/><wrapper/></body></root>`, Options{})
	for _, el := range doc.Body().ChildElements() {
		if len(el.Children) != 0 {
			t.Fatalf("%s has children", el.Tag)
		}
	}
}

func TestParseMismatchedClose(t *testing.T) {
	pe := parseErr(t, `<root><body><section></column></body></root>`, Options{})
	if pe.Kind != mjml.UnexpectedToken {
		t.Fatalf("kind = %v", pe.Kind)
	}
}

func TestParseDisallowedChild(t *testing.T) {
	pe := parseErr(t, `<root><body><column></column></body></root>`, Options{})
	if pe.Kind != mjml.UnexpectedElement || pe.Name != "column" {
		t.Fatalf("unexpected error %v", pe)
	}
}

func TestParseWarnings(t *testing.T) {
	src := `<?xml version="1.0"?>
<root>
  <body>
    stray text
    <section padding="1px" padding="2px"></section>
  </body>
</root>`
	doc := mustParse(t, src, Options{})
	kinds := map[mjml.WarningKind]int{}
	for _, w := range doc.Warnings {
		kinds[w.Kind]++
	}
	if kinds[mjml.IgnoredProlog] != 1 || kinds[mjml.IgnoredText] != 1 || kinds[mjml.DuplicateAttribute] != 1 {
		t.Fatalf("warnings = %v", doc.Warnings)
	}
	if v, _ := doc.Body().Child(mjml.TagSection).Attr("padding"); v != "2px" {
		t.Fatalf("last duplicate must win, got %q", v)
	}
}

func TestParseUnknownNetworkWarning(t *testing.T) {
	src := `<root><body><section><column><social>
  <social-element name="facebook-noshare" href="#"/>
  <social-element name="myspace" href="#">M</social-element>
  <social-element name="friendster" src="f.png"/>
</social></column></section></body></root>`
	doc := mustParse(t, src, Options{})
	if len(doc.Warnings) != 1 {
		t.Fatalf("warnings = %v", doc.Warnings)
	}
	if w := doc.Warnings[0]; w.Kind != mjml.UnknownNetwork || w.Name != "myspace" {
		t.Fatalf("unexpected warning %v", w)
	}
}

func TestParseTypeDefaults(t *testing.T) {
	src := `<root><head><attributes>
  <all font-family="Arial"/>
  <class name="blue" color="blue"/>
  <text padding="0"/>
  <image src="default.png"/>
</attributes></head><body></body></root>`
	doc := mustParse(t, src, Options{})
	attrs := doc.Head().Child(mjml.TagAttributes)
	if n := len(attrs.ChildElements()); n != 4 {
		t.Fatalf("attributes children = %d", n)
	}

	pe := parseErr(t, `<root><head><attributes><text bogus="1"/></attributes></head><body></body></root>`, Options{})
	if pe.Kind != mjml.UnexpectedAttribute {
		t.Fatalf("type defaults must be validated, got %v", pe)
	}
	pe = parseErr(t, `<root><head><attributes><class color="red"/></attributes></head><body></body></root>`, Options{})
	if pe.Kind != mjml.MissingAttribute {
		t.Fatalf("class requires name, got %v", pe)
	}
}

func TestParseIncludes(t *testing.T) {
	files := map[string]string{
		"header.mjml":  `<section><column><text>Header</text></column></section>`,
		"full.mjml":    `<mjml><mj-head><mj-title>T</mj-title></mj-head><mj-body><mj-section/></mj-body></mjml>`,
		"snippet.html": `<p>raw html</p>`,
		"base.css":     `.a { color: red }`,
		"nested.mjml":  `<include path="header.mjml"/>`,
		"bad.mjml":     `<column/>`,
	}
	opts := Options{Loader: mapLoader(files)}

	src := `<root>
<head><include path="base.css" type="css"/><include path="full.mjml"/></head>
<body>
  <include path="header.mjml"/>
  <include path="full.mjml"/>
  <include path="snippet.html" type="html"/>
  <include path="nested.mjml"/>
</body>
</root>`
	doc := mustParse(t, src, opts)

	head := doc.Head().ChildElements()
	if len(head) != 2 || head[0].Tag != mjml.TagStyle || head[1].Tag != mjml.TagTitle {
		t.Fatalf("head:\n%s", mjml.Dump(doc.Head()))
	}
	body := doc.Body().ChildElements()
	wantTags := []mjml.Tag{mjml.TagSection, mjml.TagSection, mjml.TagRaw, mjml.TagSection}
	if len(body) != len(wantTags) {
		t.Fatalf("body:\n%s", mjml.Dump(doc.Body()))
	}
	for i, tag := range wantTags {
		if body[i].Tag != tag {
			t.Fatalf("body child %d = %s, want %s", i, body[i].Tag, tag)
		}
	}
	if body[0].Span.Origin != "header.mjml" {
		t.Fatalf("included node origin = %q", body[0].Span.Origin)
	}

	pe := parseErr(t, `<root><body><include path="missing.mjml"/></body></root>`, opts)
	if pe.Kind != mjml.NotFound || !errors.Is(pe, ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", pe)
	}
	pe = parseErr(t, `<root><body><include path="bad.mjml"/></body></root>`, opts)
	if pe.Kind != mjml.UnexpectedElement || pe.Span.Origin != "bad.mjml" {
		t.Fatalf("expected UnexpectedElement in bad.mjml, got %v", pe)
	}
	pe = parseErr(t, `<root><body><include path="base.css" type="css"/></body></root>`, opts)
	if pe.Kind != mjml.UnexpectedElement {
		t.Fatalf("css include outside head must fail, got %v", pe)
	}
	pe = parseErr(t, `<root><body><include path="x.mjml"/></body></root>`, Options{})
	if pe.Kind != mjml.NotFound || !errors.Is(pe, ErrNoLoader) {
		t.Fatalf("expected missing loader error, got %v", pe)
	}
}

func TestParseFullDocumentIncludeContainment(t *testing.T) {
	files := map[string]string{
		"part.mjml": `<mjml><mj-body><mj-section><mj-column><mj-text>Hi</mj-text></mj-column></mj-section></mj-body></mjml>`,
		"wrap.mjml": `<root><body><wrapper><section/></wrapper></body></root>`,
		"text.mjml": `<root><body><text>Hi</text></body></root>`,
	}
	opts := Options{Loader: mapLoader(files)}

	tests := []struct {
		name string
		src  string
		tag  string
		into mjml.Tag
	}{
		{"section into column", `<root><body><section><column><include path="part.mjml"/></column></section></body></root>`, "section", mjml.TagColumn},
		{"section into section", `<root><body><section><include path="part.mjml"/></section></body></root>`, "section", mjml.TagSection},
		{"wrapper into wrapper", `<root><body><wrapper><include path="wrap.mjml"/></wrapper></body></root>`, "wrapper", mjml.TagWrapper},
		{"text into body", `<root><body><include path="text.mjml"/></body></root>`, "text", mjml.TagBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := parseErr(t, tt.src, opts)
			if pe.Kind != mjml.UnexpectedElement || pe.Name != tt.tag {
				t.Fatalf("expected UnexpectedElement for %s, got %v", tt.tag, pe)
			}
			if !strings.HasSuffix(pe.Detail, string(tt.into)) {
				t.Errorf("detail = %q, want mention of %s", pe.Detail, tt.into)
			}
			if !strings.HasSuffix(pe.Span.Origin, ".mjml") {
				t.Errorf("error must point into included file, got %v", pe.Span)
			}
		})
	}

	doc := mustParse(t, `<root><body><include path="part.mjml"/><wrapper><include path="part.mjml"/></wrapper></body></root>`, opts)
	body := doc.Body().ChildElements()
	if len(body) != 2 || body[0].Tag != mjml.TagSection || body[1].Tag != mjml.TagWrapper {
		t.Fatalf("body:\n%s", mjml.Dump(doc.Body()))
	}
}

func TestParseNestedIncludesAreRelative(t *testing.T) {
	files := map[string]string{
		"mail/parts/row.mjml":     `<section><column><include path="text.mjml"/><include path="../shared/footer.mjml"/><include path="/top.mjml"/></column></section>`,
		"mail/parts/text.mjml":    `<text>Near</text>`,
		"mail/shared/footer.mjml": `<text>Footer</text>`,
		"top.mjml":                `<text>Top</text>`,
		"text.mjml":               `<text>Root</text>`,
	}
	doc := mustParse(t, `<root><body><include path="mail/parts/row.mjml"/></body></root>`, Options{Loader: mapLoader(files)})

	column := doc.Body().ChildElements()[0].ChildElements()[0]
	var got []string
	for _, el := range column.ChildElements() {
		got = append(got, el.Text()+"@"+el.Span.Origin)
	}
	want := []string{"Near@mail/parts/text.mjml", "Footer@mail/shared/footer.mjml", "Top@top.mjml"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("column texts = %v, want %v", got, want)
	}

	tests := []struct{ dir, name, want string }{
		{"", "a.mjml", "a.mjml"},
		{".", "a.mjml", "a.mjml"},
		{"x/y", "a.mjml", "x/y/a.mjml"},
		{"x/y", "../a.mjml", "x/a.mjml"},
		{"x/y", "/a.mjml", "a.mjml"},
		{"x", `sub\a.mjml`, "x/sub/a.mjml"},
	}
	for _, tt := range tests {
		if got := includePath(tt.dir, tt.name); got != tt.want {
			t.Errorf("includePath(%q, %q) = %q, want %q", tt.dir, tt.name, got, tt.want)
		}
	}
}

func TestParseSyncAndAsyncAgree(t *testing.T) {
	files := map[string]string{
		"a.mjml": `<section><column><include path="b.mjml"/></column></section>`,
		"b.mjml": `<text>B</text><button href="#">Go</button>`,
	}
	src := `<root><body><include path="a.mjml"/><section><column><include path="b.mjml"/></column></section></body></root>`

	syncDoc := mustParse(t, src, Options{Loader: mapLoader(files)})
	asyncDoc, err := ParseContext(context.Background(), src, Options{AsyncLoader: chanLoader{files: files, delay: time.Millisecond}}, testLogger(t))
	if err != nil {
		t.Fatalf("ParseContext: %v", err)
	}
	if a, b := mjml.Dump(syncDoc.Root), mjml.Dump(asyncDoc.Root); a != b {
		t.Fatalf("sync and async trees differ:\n%s\n%s", a, b)
	}
}

func TestParseContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := `<root><body><include path="a.mjml"/></body></root>`
	_, err := ParseContext(ctx, src, Options{AsyncLoader: chanLoader{files: map[string]string{"a.mjml": "<section/>"}, delay: time.Second}}, testLogger(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
