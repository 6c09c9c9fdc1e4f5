package render

import (
	"maps"
	"slices"
	"strings"
)

// DefaultBreakpoint is used unless document declares its own.
const DefaultBreakpoint = 480

// builtinFonts are linked when some rendered font-family mentions them.
var builtinFonts = map[string]string{
	"Open Sans":  "https://fonts.googleapis.com/css?family=Open+Sans:300,400,500,700",
	"Droid Sans": "https://fonts.googleapis.com/css?family=Droid+Sans:300,400,500,700",
	"Lato":       "https://fonts.googleapis.com/css?family=Lato:300,400,500,700",
	"Roboto":     "https://fonts.googleapis.com/css?family=Roboto:300,400,500,700",
	"Ubuntu":     "https://fonts.googleapis.com/css?family=Ubuntu:300,400,500,700",
}

type font struct {
	name     string
	url      string
	explicit bool
}

// siblings describes position of the element being rendered among element
// children of its parent. Raw elements are not counted.
type siblings struct {
	count int
	index int
}

type mediaQuery struct {
	class string
	rule  string
}

// Context is the header aggregator of a single render call. It is created
// fresh for every call and is never shared.
type Context struct {
	widths     []float64
	siblings   []siblings
	breakpoint float64

	fonts     []font
	fontIndex map[string]int // lower case name -> fonts index

	mediaQueries    []mediaQuery
	componentStyles []string
	seenStyles      map[string]bool
	styles          []string

	title      string
	preview    string
	headRaw    []string
	fileStart  []string
	background string
	lang       string
	dir        string
	forceOWA   bool

	// ordinal of generated ids, keeps them unique within document
	ids int
}

// NewContext creates context with option fonts registered as candidates.
func NewContext(opts Options) *Context {
	ctx := &Context{
		breakpoint: DefaultBreakpoint,
		fontIndex:  make(map[string]int),
		seenStyles: make(map[string]bool),
	}
	candidates := maps.Clone(builtinFonts)
	maps.Copy(candidates, opts.Fonts)
	for _, name := range slices.Sorted(maps.Keys(candidates)) {
		ctx.addFont(name, candidates[name], false)
	}
	return ctx
}

// ContainerWidth returns pixel width available to the element being
// rendered.
func (ctx *Context) ContainerWidth() (float64, bool) {
	if len(ctx.widths) == 0 {
		return 0, false
	}
	return ctx.widths[len(ctx.widths)-1], true
}

// PushWidth opens a container scope.
func (ctx *Context) PushWidth(w float64) {
	ctx.widths = append(ctx.widths, w)
}

// PopWidth closes container scope opened by PushWidth.
func (ctx *Context) PopWidth() {
	if len(ctx.widths) > 0 {
		ctx.widths = ctx.widths[:len(ctx.widths)-1]
	}
}

func (ctx *Context) pushSiblings(count, index int) {
	ctx.siblings = append(ctx.siblings, siblings{count: count, index: index})
}

func (ctx *Context) popSiblings() {
	if len(ctx.siblings) > 0 {
		ctx.siblings = ctx.siblings[:len(ctx.siblings)-1]
	}
}

// SiblingCount returns number of non raw elements in the parent of element
// being rendered, at least 1.
func (ctx *Context) SiblingCount() int {
	if len(ctx.siblings) == 0 || ctx.siblings[len(ctx.siblings)-1].count == 0 {
		return 1
	}
	return ctx.siblings[len(ctx.siblings)-1].count
}

// IndexInParent returns position of element being rendered among its non raw
// siblings.
func (ctx *Context) IndexInParent() int {
	if len(ctx.siblings) == 0 {
		return 0
	}
	return ctx.siblings[len(ctx.siblings)-1].index
}

// Breakpoint returns breakpoint in pixels.
func (ctx *Context) Breakpoint() float64 {
	return ctx.breakpoint
}

// SetBreakpoint overrides default breakpoint.
func (ctx *Context) SetBreakpoint(px float64) {
	if px > 0 {
		ctx.breakpoint = px
	}
}

// addFont registers font, names differing only in case are the same font.
func (ctx *Context) addFont(name, url string, explicit bool) {
	key := strings.ToLower(name)
	if i, ok := ctx.fontIndex[key]; ok {
		ctx.fonts[i].url = url
		ctx.fonts[i].explicit = ctx.fonts[i].explicit || explicit
		return
	}
	ctx.fontIndex[key] = len(ctx.fonts)
	ctx.fonts = append(ctx.fonts, font{name: name, url: url, explicit: explicit})
}

// RegisterFont records font declared by the document. Registering the same
// name again replaces its URL, every name is linked at most once.
func (ctx *Context) RegisterFont(name, url string) {
	ctx.addFont(name, url, true)
}

// fontURLs returns URLs to link: explicitly registered fonts and candidates
// mentioned by used font families.
func (ctx *Context) fontURLs(used map[string]bool) []string {
	var res []string
	seen := make(map[string]bool)
	for _, f := range ctx.fonts {
		if !f.explicit && !used[strings.ToLower(f.name)] {
			continue
		}
		if seen[f.url] {
			continue
		}
		seen[f.url] = true
		res = append(res, f.url)
	}
	return res
}

// AddMediaQuery records responsive width rule for a column class, first
// registration of a class wins.
func (ctx *Context) AddMediaQuery(class, rule string) {
	for _, mq := range ctx.mediaQueries {
		if mq.class == class {
			return
		}
	}
	ctx.mediaQueries = append(ctx.mediaQueries, mediaQuery{class: class, rule: rule})
}

// AddComponentStyle records head style of a component kind under key, every
// key is emitted once.
func (ctx *Context) AddComponentStyle(key, css string) {
	if ctx.seenStyles[key] {
		return
	}
	ctx.seenStyles[key] = true
	ctx.componentStyles = append(ctx.componentStyles, css)
}

// RegisterStyleRule records user style block.
func (ctx *Context) RegisterStyleRule(css string) {
	ctx.styles = append(ctx.styles, css)
}

// SetTitle sets document title.
func (ctx *Context) SetTitle(text string) {
	ctx.title = text
}

// SetPreview sets preview text shown by mail clients in message lists.
func (ctx *Context) SetPreview(text string) {
	ctx.preview = text
}

// nextID returns ordinal for generated identifiers.
func (ctx *Context) nextID() int {
	ctx.ids++
	return ctx.ids
}

// lowerBreakpoint is the largest width considered mobile.
func (ctx *Context) lowerBreakpoint() string {
	return formatPx(ctx.breakpoint - 1)
}
