package ooxmark

import (
	"os"

	"github.com/tsawler/ooxmark/container"
	"github.com/tsawler/ooxmark/docx"
	"github.com/tsawler/ooxmark/format"
	"github.com/tsawler/ooxmark/model"
	"github.com/tsawler/ooxmark/ooxerr"
	"github.com/tsawler/ooxmark/pptx"
	"github.com/tsawler/ooxmark/render"
	"github.com/tsawler/ooxmark/xlsx"
)

// Extractor provides fluent configuration for parsing a single document.
// Configuration methods return the Extractor for chaining; terminal
// methods (Parse, Markdown, Text, JSON) perform the work.
type Extractor struct {
	filename string
	data     []byte
	options  ParseOptions
	err      error
}

// Lenient makes parsing drop malformed sheets or slides with a diagnostic
// instead of failing.
func (e *Extractor) Lenient() *Extractor {
	e.options.lenient = true
	return e
}

// IncludeHiddenSheets parses worksheets marked hidden as well.
func (e *Extractor) IncludeHiddenSheets() *Extractor {
	e.options.includeHidden = true
	return e
}

// Workers bounds the goroutines used for parallel section parsing.
func (e *Extractor) Workers(n int) *Extractor {
	e.options.workers = n
	return e
}

// Parse detects the format and parses the document into the unified model.
func (e *Extractor) Parse() (*model.Document, error) {
	if e.err != nil {
		return nil, e.err
	}
	data := e.data
	if data == nil {
		var err error
		data, err = os.ReadFile(e.filename)
		if err != nil {
			return nil, ooxerr.IO(err)
		}
	}
	return parse(data, e.filename, e.options)
}

// Markdown parses the document and renders it as Markdown.
func (e *Extractor) Markdown(opts render.Options) (string, error) {
	doc, err := e.Parse()
	if err != nil {
		return "", err
	}
	return render.ToMarkdown(doc, opts)
}

// MarkdownFlags renders Markdown using the binary option-flag contract:
// FlagFrontMatter | FlagEscapeSpecial | FlagParagraphSpacing.
func (e *Extractor) MarkdownFlags(flags int) (string, error) {
	return e.Markdown(render.OptionsFromFlags(flags))
}

// Text parses the document and renders it as plain text.
func (e *Extractor) Text() (string, error) {
	doc, err := e.Parse()
	if err != nil {
		return "", err
	}
	return render.ToText(doc), nil
}

// JSON parses the document and serializes the model. Pass render.JSONPretty
// or render.JSONCompact.
func (e *Extractor) JSON(mode int) (string, error) {
	doc, err := e.Parse()
	if err != nil {
		return "", err
	}
	return render.ToJSON(doc, mode)
}

// parse runs detection, opens the container, and dispatches to the parser
// for the detected format.
func parse(data []byte, filename string, opts ParseOptions) (*model.Document, error) {
	f, err := format.Detect(data, filename)
	if err != nil {
		return nil, err
	}

	c, err := container.OpenBytes(data)
	if err != nil {
		return nil, err
	}

	switch f {
	case format.DOCX:
		return docx.Parse(c, docx.Options{
			Lenient: opts.lenient,
		})
	case format.XLSX:
		return xlsx.Parse(c, xlsx.Options{
			Lenient:       opts.lenient,
			IncludeHidden: opts.includeHidden,
			Workers:       opts.workers,
		})
	case format.PPTX:
		return pptx.Parse(c, pptx.Options{
			Lenient: opts.lenient,
			Workers: opts.workers,
		})
	default:
		return nil, ooxerr.Unsupported("unrecognized file format")
	}
}
