package mjml

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fatal parse errors.
type ErrorKind int

const (
	// UnexpectedElement - child tag is not legal for its parent.
	UnexpectedElement ErrorKind = iota + 1
	// UnexpectedAttribute - attribute is not recognized by the element.
	UnexpectedAttribute
	// MissingAttribute - required attribute is absent.
	MissingAttribute
	// InvalidFormat - attribute value is malformed.
	InvalidFormat
	// EndOfStream - input ended while element was still open.
	EndOfStream
	// UnexpectedToken - malformed or stray token in the input.
	UnexpectedToken
	// NotFound - include loader could not resolve a path.
	NotFound
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedElement:
		return "unexpected element"
	case UnexpectedAttribute:
		return "unexpected attribute"
	case MissingAttribute:
		return "missing attribute"
	case InvalidFormat:
		return "invalid format"
	case EndOfStream:
		return "unexpected end of stream"
	case UnexpectedToken:
		return "unexpected token"
	case NotFound:
		return "include not found"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError is returned by the parser for every fatal problem. Name is the
// offending element or attribute name when applicable.
type ParseError struct {
	Kind   ErrorKind
	Span   Span
	Name   string
	Detail string
	Cause  error
}

func (e *ParseError) Error() string {
	msg := e.Kind.String()
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	msg += " at " + e.Span.String()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, &ParseError{Kind: ...}) checks by kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Span == (Span{}) && t.Name == ""
}

// KindOf returns kind of parse error or 0 when err is not a parse error.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// WarningKind classifies recoverable problems found while parsing.
type WarningKind int

const (
	// DuplicateAttribute - attribute was set more than once, last value wins.
	DuplicateAttribute WarningKind = iota + 1
	// IgnoredText - text in element-only container was dropped.
	IgnoredText
	// IgnoredProlog - xml declaration, doctype or processing instruction skipped.
	IgnoredProlog
	// UnknownNetwork - social element names a network without built-in icon.
	UnknownNetwork
)

func (k WarningKind) String() string {
	switch k {
	case DuplicateAttribute:
		return "duplicate attribute"
	case IgnoredText:
		return "ignored text"
	case IgnoredProlog:
		return "ignored prolog"
	case UnknownNetwork:
		return "unknown social network"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is a non fatal parse diagnostic.
type Warning struct {
	Kind WarningKind
	Span Span
	Name string
}

func (w Warning) String() string {
	if w.Name != "" {
		return fmt.Sprintf("%s %q at %s", w.Kind, w.Name, w.Span)
	}
	return fmt.Sprintf("%s at %s", w.Kind, w.Span)
}
