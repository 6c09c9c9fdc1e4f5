package render

import (
	"fmt"

	"mjmlc/mjml"
)

// Error reports attribute value which could not be coerced to the type its
// element requires. Values set locally or through type defaults are checked
// while parsing, so this happens for values coming from "all" and "class"
// blocks.
type Error struct {
	Tag       mjml.Tag
	Attribute string
	Value     string
	Span      mjml.Span
	Cause     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: bad value %q of attribute %q at %s", e.Tag, e.Value, e.Attribute, e.Span)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }
