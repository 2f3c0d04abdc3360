// Package ooxerr defines the error taxonomy shared by the container,
// format detector, parsers, and renderers.
package ooxerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// UnsupportedFormat means the input is not a ZIP package or its main
	// content type is unrecognized. Fatal.
	UnsupportedFormat Kind = iota + 1
	// IoError means the file is missing, unreadable, or truncated. Fatal.
	IoError
	// MalformedPackage means the ZIP structure is corrupt or a required
	// part is missing. Fatal.
	MalformedPackage
	// MalformedXml means an XML part failed to parse. Fatal in strict
	// mode; in lenient mode the affected section is dropped.
	MalformedXml
	// UnknownResource means a referenced relationship id has no entry in
	// the owning part's rels. Non-fatal: the reference is omitted.
	UnknownResource
	// RenderError is reserved for renderer failures.
	RenderError
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case UnsupportedFormat:
		return "unsupported format"
	case IoError:
		return "io error"
	case MalformedPackage:
		return "malformed package"
	case MalformedXml:
		return "malformed xml"
	case UnknownResource:
		return "unknown resource"
	case RenderError:
		return "render error"
	default:
		return "unknown error"
	}
}

// Error is a classified failure. Matching is by Kind via errors.Is against
// the kind sentinels below, or via errors.As.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// Kind sentinels for errors.Is checks.
var (
	ErrUnsupportedFormat = &Error{Kind: UnsupportedFormat}
	ErrIo                = &Error{Kind: IoError}
	ErrMalformedPackage  = &Error{Kind: MalformedPackage}
	ErrMalformedXml      = &Error{Kind: MalformedXml}
	ErrUnknownResource   = &Error{Kind: UnknownResource}
	ErrRender            = &Error{Kind: RenderError}
)

// Unsupported builds an UnsupportedFormat error with the given message.
func Unsupported(msg string) error {
	return &Error{Kind: UnsupportedFormat, Err: errors.New(msg)}
}

// IO wraps err as an IoError.
func IO(err error) error { return &Error{Kind: IoError, Err: err} }

// Package wraps err as a MalformedPackage error.
func Package(err error) error { return &Error{Kind: MalformedPackage, Err: err} }

// XML wraps err as a MalformedXml error.
func XML(err error) error { return &Error{Kind: MalformedXml, Err: err} }

// Resource wraps err as an UnknownResource error.
func Resource(err error) error { return &Error{Kind: UnknownResource, Err: err} }

// Render wraps err as a RenderError.
func Render(err error) error { return &Error{Kind: RenderError, Err: err} }

// KindOf returns the Kind of err, or 0 when err carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
