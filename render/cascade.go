package render

import (
	"strings"

	"mjmlc/mjml"
)

// probe looks attribute up in a single source.
type probe func(name string) (string, bool)

// source names where resolved value came from.
type source int

const (
	fromLocal source = iota
	fromClass
	fromType
	fromParent
	fromAll
	fromDefault
)

// unchecked reports sources whose values were not validated by the parser.
func (s source) unchecked() bool {
	return s == fromClass || s == fromAll
}

// resolver holds head attribute defaults: "all" block, named classes and
// per tag type defaults.
type resolver struct {
	all     *mjml.Attributes
	classes map[string]*mjml.Attributes
	types   map[mjml.Tag]*mjml.Attributes
}

func newResolver() *resolver {
	return &resolver{
		all:     mjml.NewAttributes(),
		classes: make(map[string]*mjml.Attributes),
		types:   make(map[mjml.Tag]*mjml.Attributes),
	}
}

// collect merges attributes block into resolver, later declarations win.
func (r *resolver) collect(block *mjml.Element) {
	for _, el := range block.ChildElements() {
		switch el.Tag {
		case mjml.TagAll:
			for k, v := range el.Attrs.All() {
				r.all.Set(k, v)
			}
		case mjml.TagClass:
			name, _ := el.Attr("name")
			attrs, ok := r.classes[name]
			if !ok {
				attrs = mjml.NewAttributes()
				r.classes[name] = attrs
			}
			for k, v := range el.Attrs.All() {
				if k != "name" {
					attrs.Set(k, v)
				}
			}
		default:
			attrs, ok := r.types[el.Tag]
			if !ok {
				attrs = mjml.NewAttributes()
				r.types[el.Tag] = attrs
			}
			for k, v := range el.Attrs.All() {
				attrs.Set(k, v)
			}
		}
	}
}

func fromAttributes(a *mjml.Attributes) probe {
	return func(name string) (string, bool) {
		return a.Get(name)
	}
}

// classProbe looks through classes listed in mj-class, later class wins.
func (r *resolver) classProbe(el *mjml.Element) probe {
	list, _ := el.Attr("mj-class")
	names := strings.Fields(list)
	return func(name string) (string, bool) {
		for i := len(names) - 1; i >= 0; i-- {
			if v, ok := r.classes[names[i]].Get(name); ok {
				return v, true
			}
		}
		return "", false
	}
}

// chain returns probe list of an element, most specific source first.
// Inherited holds attributes supplied by parent component.
func (r *resolver) chain(el *mjml.Element, inherited *mjml.Attributes) []probe {
	return []probe{
		fromLocal:   fromAttributes(el.Attrs),
		fromClass:   r.classProbe(el),
		fromType:    fromAttributes(r.types[el.Tag]),
		fromParent:  fromAttributes(inherited),
		fromAll:     fromAttributes(r.all),
		fromDefault: fromAttributes(defaults[el.Tag]),
	}
}

// resolve walks probe list and stops at the first accepted hit. Rejected
// values are skipped and lookup continues with less specific sources.
func resolve(probes []probe, name string, accept func(source, string) bool) (string, bool) {
	for i, p := range probes {
		v, ok := p(name)
		if !ok {
			continue
		}
		if accept != nil && !accept(source(i), v) {
			continue
		}
		return v, true
	}
	return "", false
}
