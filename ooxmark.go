// Package ooxmark provides a fluent API for extracting the logical content
// of OOXML documents (DOCX, XLSX, PPTX) into a unified model and rendering
// it as Markdown, plain text, or JSON.
//
// Basic usage:
//
//	md, err := ooxmark.Open("report.docx").Markdown(render.DefaultOptions())
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	doc, err := ooxmark.Open("deck.pptx").
//	    Lenient().
//	    Workers(4).
//	    Parse()
//
// For lower-level access, the container, format, and per-format parser
// packages are also available.
package ooxmark

import (
	"io"
	"os"

	"github.com/tsawler/ooxmark/model"
	"github.com/tsawler/ooxmark/ooxerr"
)

// Open prepares an Extractor for the file at the given path.
//
// Example:
//
//	doc, err := ooxmark.Open("document.docx").Parse()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes prepares an Extractor for an in-memory document.
func FromBytes(data []byte) *Extractor {
	return &Extractor{
		data:    data,
		options: defaultOptions(),
	}
}

// FromReader prepares an Extractor that reads the whole document from r.
func FromReader(r io.Reader) *Extractor {
	data, err := io.ReadAll(r)
	if err != nil {
		return &Extractor{err: ooxerr.IO(err), options: defaultOptions()}
	}
	return FromBytes(data)
}

// ParseFile parses an OOXML file into a Document.
func ParseFile(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ooxerr.IO(err)
	}
	return parse(data, path, defaultOptions())
}

// ParseBytes parses an in-memory OOXML package into a Document.
func ParseBytes(data []byte) (*model.Document, error) {
	return parse(data, "", defaultOptions())
}

// Must wraps a call returning (T, error) and panics on error. Intended for
// scripts and tests where error handling would be cumbersome.
//
// Example:
//
//	doc := ooxmark.Must(ooxmark.ParseFile("report.docx"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
