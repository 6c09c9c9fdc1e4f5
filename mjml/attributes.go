package mjml

import "iter"

// Attributes is a uniquely keyed map of string attributes which remembers
// insertion order. Zero value is ready to use.
type Attributes struct {
	keys   []string
	values map[string]string
}

// NewAttributes creates attributes from name/value pairs.
func NewAttributes(pairs ...string) *Attributes {
	a := &Attributes{}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Set(pairs[i], pairs[i+1])
	}
	return a
}

// Set stores value under name. Overwriting keeps original position and
// reports true.
func (a *Attributes) Set(name, value string) bool {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	_, exists := a.values[name]
	if !exists {
		a.keys = append(a.keys, name)
	}
	a.values[name] = value
	return exists
}

// Get returns value stored under name.
func (a *Attributes) Get(name string) (string, bool) {
	if a == nil || a.values == nil {
		return "", false
	}
	v, ok := a.values[name]
	return v, ok
}

// Has checks presence of name.
func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Keys returns attribute names in insertion order.
func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.keys...)
}

// All iterates over attributes in insertion order.
func (a *Attributes) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if a == nil {
			return
		}
		for _, k := range a.keys {
			if !yield(k, a.values[k]) {
				return
			}
		}
	}
}

// Clone returns independent copy.
func (a *Attributes) Clone() *Attributes {
	c := &Attributes{}
	for k, v := range a.All() {
		c.Set(k, v)
	}
	return c
}
