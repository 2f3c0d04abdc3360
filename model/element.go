package model

import "encoding/json"

// Block is the closed set of block-level elements a Section may contain.
// The variant set is sealed so renderers can match exhaustively.
type Block interface {
	blockNode()
}

// ListInfo describes the list context of a paragraph that is a list item.
type ListInfo struct {
	Ordered bool `json:"ordered"`
	// Level is the nesting depth, 0-8.
	Level int `json:"level"`
	// Start is the numbering start index for ordered lists.
	Start int `json:"start,omitempty"`
}

// ImageRef is an inline reference from a paragraph to an embedded resource.
type ImageRef struct {
	ResourceID string `json:"resource_id"`
	Alt        string `json:"alt,omitempty"`
}

// Paragraph is a run of body text or a heading. Outline 0 is body text;
// 1-9 are heading levels (1-6 render as Markdown headings).
type Paragraph struct {
	Outline int        `json:"outline"`
	Runs    []Run      `json:"runs"`
	Images  []ImageRef `json:"images,omitempty"`
	List    *ListInfo  `json:"list,omitempty"`
}

// TableCell holds a rectangular grid cell. Spans below 1 are treated as 1.
// Blocks is recursive: a cell may contain paragraphs and nested tables.
// Covered marks a placeholder cell absorbed by a row span from the row
// above; it keeps the grid rectangular and is skipped by renderers that
// honor spans.
type TableCell struct {
	RowSpan int     `json:"row_span,omitempty"`
	ColSpan int     `json:"col_span,omitempty"`
	Covered bool    `json:"covered,omitempty"`
	Blocks  []Block `json:"blocks"`
}

// Table is a 2-D grid of cells. The grid is rectangular: in every row the
// column spans sum to Width().
type Table struct {
	HeaderRow bool          `json:"header_row"`
	Rows      [][]TableCell `json:"rows"`
}

// Image is a standalone image block referencing an entry in
// Document.Resources.
type Image struct {
	ResourceID string `json:"resource_id"`
	Alt        string `json:"alt,omitempty"`
}

// SpeakerNotes carries the notes attached to a PPTX slide. It is always the
// last block of its section.
type SpeakerNotes struct {
	Runs []Run `json:"runs"`
}

// PageBreak is an explicit page break.
type PageBreak struct{}

// Separator is a thematic break (horizontal rule).
type Separator struct{}

func (*Paragraph) blockNode()    {}
func (*Table) blockNode()        {}
func (*Image) blockNode()        {}
func (*SpeakerNotes) blockNode() {}
func (*PageBreak) blockNode()    {}
func (*Separator) blockNode()    {}

// Width returns the grid width of the table: the maximum over rows of the
// sum of column spans.
func (t *Table) Width() int {
	width := 0
	for _, row := range t.Rows {
		w := 0
		for _, c := range row {
			w += c.EffectiveColSpan()
		}
		if w > width {
			width = w
		}
	}
	return width
}

// HasSpans reports whether any cell spans more than one row or column.
func (t *Table) HasSpans() bool {
	for _, row := range t.Rows {
		for _, c := range row {
			if c.EffectiveColSpan() > 1 || c.EffectiveRowSpan() > 1 {
				return true
			}
		}
	}
	return false
}

// EffectiveColSpan returns the cell's column span, never less than 1.
func (c *TableCell) EffectiveColSpan() int {
	if c.ColSpan < 1 {
		return 1
	}
	return c.ColSpan
}

// EffectiveRowSpan returns the cell's row span, never less than 1.
func (c *TableCell) EffectiveRowSpan() int {
	if c.RowSpan < 1 {
		return 1
	}
	return c.RowSpan
}

// Block type tags used in JSON output.
const (
	typeParagraph    = "paragraph"
	typeTable        = "table"
	typeImage        = "image"
	typeSpeakerNotes = "speaker_notes"
	typePageBreak    = "page_break"
	typeSeparator    = "separator"
)

type taggedParagraph struct {
	Type string `json:"type"`
	*paragraphAlias
}

type paragraphAlias Paragraph

// MarshalJSON tags the block with its variant name.
func (p *Paragraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedParagraph{typeParagraph, (*paragraphAlias)(p)})
}

type tableAlias Table

func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		*tableAlias
	}{typeTable, (*tableAlias)(t)})
}

type imageAlias Image

func (i *Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		*imageAlias
	}{typeImage, (*imageAlias)(i)})
}

type notesAlias SpeakerNotes

func (n *SpeakerNotes) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		*notesAlias
	}{typeSpeakerNotes, (*notesAlias)(n)})
}

func (*PageBreak) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
	}{typePageBreak})
}

func (*Separator) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
	}{typeSeparator})
}
