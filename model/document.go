package model

import (
	"sort"
	"strings"
)

// Format identifies the source document format.
type Format int

const (
	// FormatUnknown indicates an unrecognized format.
	FormatUnknown Format = iota
	// FormatDocx indicates a Microsoft Word (.docx) document.
	FormatDocx
	// FormatXlsx indicates a Microsoft Excel (.xlsx) workbook.
	FormatXlsx
	// FormatPptx indicates a Microsoft PowerPoint (.pptx) presentation.
	FormatPptx
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatDocx:
		return "docx"
	case FormatXlsx:
		return "xlsx"
	case FormatPptx:
		return "pptx"
	default:
		return "unknown"
	}
}

// Metadata holds document properties from docProps/core.xml and
// docProps/app.xml. Absent fields are empty strings or nil, never
// placeholder values.
type Metadata struct {
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	Subject     string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Created     string   `json:"created,omitempty" yaml:"created,omitempty"`
	Modified    string   `json:"modified,omitempty" yaml:"modified,omitempty"`
	Application string   `json:"application,omitempty" yaml:"application,omitempty"`
}

// IsEmpty reports whether no metadata field is set.
func (m *Metadata) IsEmpty() bool {
	return m.Title == "" && m.Author == "" && m.Subject == "" &&
		m.Description == "" && len(m.Keywords) == 0 &&
		m.Created == "" && m.Modified == "" && m.Application == ""
}

// Section is a top-level unit of the document: a logical section group for
// DOCX, one sheet for XLSX, one slide for PPTX. Name holds the sheet name or
// slide title when one exists.
type Section struct {
	Name   string  `json:"name,omitempty"`
	Blocks []Block `json:"blocks"`
}

// Diagnostic records a non-fatal anomaly encountered during parsing, such as
// a slide dropped in lenient mode or an unresolvable image reference.
type Diagnostic struct {
	Section int    `json:"section"`
	Message string `json:"message"`
}

// Document is the unified in-memory representation of a parsed OOXML file.
type Document struct {
	Format      Format               `json:"format"`
	Meta        Metadata             `json:"metadata"`
	Sections    []Section            `json:"sections"`
	Resources   map[string]*Resource `json:"resources,omitempty"`
	Diagnostics []Diagnostic         `json:"diagnostics,omitempty"`
}

// SectionCount returns the number of sections in the document.
func (d *Document) SectionCount() int {
	return len(d.Sections)
}

// Resource returns the embedded resource with the given id, or nil.
func (d *Document) Resource(id string) *Resource {
	return d.Resources[id]
}

// ResourceIDs returns the resource ids in sorted order, so iteration over
// resources is deterministic.
func (d *Document) ResourceIDs() []string {
	ids := make([]string, 0, len(d.Resources))
	for id := range d.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PlainText concatenates the visible run text of every paragraph, one
// paragraph per line, with a blank line between sections. It applies no
// markup and no table layout.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for i := range d.Sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeSectionText(&sb, &d.Sections[i])
	}
	return sb.String()
}

func writeSectionText(sb *strings.Builder, s *Section) {
	for _, b := range s.Blocks {
		writeBlockText(sb, b)
	}
}

func writeBlockText(sb *strings.Builder, b Block) {
	switch v := b.(type) {
	case *Paragraph:
		sb.WriteString(RunText(v.Runs))
		sb.WriteString("\n")
	case *Table:
		for _, row := range v.Rows {
			for ci, cell := range row {
				if ci > 0 {
					sb.WriteString("\t")
				}
				var inner strings.Builder
				for _, cb := range cell.Blocks {
					writeBlockText(&inner, cb)
				}
				sb.WriteString(strings.TrimRight(inner.String(), "\n"))
			}
			sb.WriteString("\n")
		}
	case *SpeakerNotes:
		sb.WriteString(RunText(v.Runs))
		sb.WriteString("\n")
	}
}
