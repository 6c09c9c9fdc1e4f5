package css

import "strings"

// Box holds four sided integer pixel values, as produced by padding and
// margin shorthands.
type Box struct {
	Top, Right, Bottom, Left int
}

// Horizontal returns sum of left and right sides.
func (b Box) Horizontal() int {
	return b.Left + b.Right
}

// Vertical returns sum of top and bottom sides.
func (b Box) Vertical() int {
	return b.Top + b.Bottom
}

// ParseBox expands 1 to 4 value shorthand the way browsers do. Each value is
// read as leading integer, non numeric values (auto, inherit) count as 0.
func ParseBox(s string) Box {
	parts := strings.Fields(s)
	v := make([]int, len(parts))
	for i, p := range parts {
		v[i], _ = LeadingInt(p)
	}
	switch len(v) {
	case 0:
		return Box{}
	case 1:
		return Box{v[0], v[0], v[0], v[0]}
	case 2:
		return Box{v[0], v[1], v[0], v[1]}
	case 3:
		return Box{v[0], v[1], v[2], v[1]}
	default:
		return Box{v[0], v[1], v[2], v[3]}
	}
}

// Side returns value of shorthand for a single direction: "top", "right",
// "bottom" or "left". Unknown direction yields 0.
func Side(s, direction string) int {
	b := ParseBox(s)
	switch direction {
	case "top":
		return b.Top
	case "right":
		return b.Right
	case "bottom":
		return b.Bottom
	case "left":
		return b.Left
	}
	return 0
}

// BorderWidth extracts width from border shorthand ("2px solid #000"). The
// first whitespace separated word that starts with digit is taken, everything
// else ("none", "solid") yields 0.
func BorderWidth(s string) int {
	for _, p := range strings.Fields(s) {
		if p[0] < '0' || p[0] > '9' {
			continue
		}
		if v, ok := LeadingInt(p); ok {
			return v
		}
	}
	return 0
}
