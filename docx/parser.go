// Package docx parses DOCX (Office Open XML wordprocessing) packages into
// the unified document model.
package docx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/ooxmark/container"
	"github.com/tsawler/ooxmark/model"
	"github.com/tsawler/ooxmark/ooxerr"
)

const documentPart = "word/document.xml"

// Options configures DOCX parsing.
type Options struct {
	// Lenient absorbs recoverable anomalies as diagnostics instead of
	// failing the parse.
	Lenient bool
}

// parser carries per-parse state.
type parser struct {
	c         *container.Container
	opts      Options
	rels      *container.Relationships
	styles    *styleResolver
	numbering *numbering
	doc       *model.Document
}

// Parse decodes a DOCX container into a Document.
func Parse(c *container.Container, opts Options) (*model.Document, error) {
	p := &parser{
		c:    c,
		opts: opts,
		doc: &model.Document{
			Format:    model.FormatDocx,
			Meta:      c.ReadMetadata(),
			Resources: make(map[string]*model.Resource),
		},
	}

	rels, err := c.RelationshipsFor(documentPart)
	if err != nil {
		return nil, err
	}
	p.rels = rels

	// Styles and numbering are optional parts. A present but malformed one
	// fails a strict parse; lenient mode falls back to the built-in
	// defaults with a diagnostic.
	stylesData, _ := c.ReadXMLPart("word/styles.xml")
	if p.styles, err = newStyleResolver(stylesData); err != nil {
		if !opts.Lenient {
			return nil, ooxerr.XML(fmt.Errorf("parsing word/styles.xml: %w", err))
		}
		p.diagnostic("malformed styles part: %v", err)
	}
	numData, _ := c.ReadXMLPart("word/numbering.xml")
	if p.numbering, err = newNumbering(numData); err != nil {
		if !opts.Lenient {
			return nil, ooxerr.XML(fmt.Errorf("parsing word/numbering.xml: %w", err))
		}
		p.diagnostic("malformed numbering part: %v", err)
	}

	docData, err := c.ReadXMLPart(documentPart)
	if err != nil {
		return nil, ooxerr.Package(fmt.Errorf("missing main part %s", documentPart))
	}
	var docXML documentXML
	if err := xml.Unmarshal(docData, &docXML); err != nil {
		return nil, ooxerr.XML(fmt.Errorf("parsing %s: %w", documentPart, err))
	}

	p.buildSections(docXML.Body.Blocks)
	return p.doc, nil
}

// buildSections walks body blocks in flow order, closing a section at each
// paragraph-level sectPr. The trailing body-level sectPr closes the final
// section without opening a new one.
func (p *parser) buildSections(blocks []bodyBlock) {
	current := model.Section{}
	flush := func() {
		p.doc.Sections = append(p.doc.Sections, current)
		current = model.Section{}
	}

	for _, b := range blocks {
		switch {
		case b.Paragraph != nil:
			current.Blocks = append(current.Blocks, p.buildParagraphBlocks(b.Paragraph)...)
			if b.Paragraph.Props != nil && b.Paragraph.Props.SectPr != nil {
				flush()
			}
		case b.Table != nil:
			current.Blocks = append(current.Blocks, p.buildTable(b.Table))
		case b.SectPr:
			// Body-level sectPr closes the document's last section.
		}
	}
	if len(current.Blocks) > 0 || len(p.doc.Sections) == 0 {
		flush()
	}
}

// buildParagraphBlocks converts one w:p element. It usually yields a single
// Paragraph; explicit line breaks split the paragraph, page breaks insert a
// PageBreak block, and image-only paragraphs yield standalone Image blocks.
func (p *parser) buildParagraphBlocks(par *paragraphXML) []model.Block {
	outline := 0
	var list *model.ListInfo
	if par.Props != nil {
		if par.Props.PStyle != nil {
			outline = p.styles.outlineFor(par.Props.PStyle.Val)
		}
		if par.Props.NumPr != nil && par.Props.NumPr.NumID != nil {
			ilvl := 0
			if par.Props.NumPr.Ilvl != nil {
				if n, err := strconv.Atoi(par.Props.NumPr.Ilvl.Val); err == nil {
					ilvl = n
				}
			}
			if ilvl > 8 {
				ilvl = 8
			}
			def := p.numbering.level(par.Props.NumPr.NumID.Val, ilvl)
			list = &model.ListInfo{Ordered: def.Ordered, Level: ilvl, Start: def.Start}
		}
	}

	b := &parBuilder{outline: outline, list: list}
	b.cur = &model.Paragraph{Outline: outline, List: list}

	for _, item := range par.Items {
		switch {
		case item.Run != nil:
			p.appendRun(item.Run, "", b)
		case item.Hyperlink != nil:
			url := p.resolveHyperlink(item.Hyperlink)
			for i := range item.Hyperlink.Runs {
				p.appendRun(&item.Hyperlink.Runs[i], url, b)
			}
		}
	}

	if len(b.cur.Runs) > 0 || len(b.cur.Images) > 0 || len(b.blocks) == 0 {
		b.flush()
	}

	// A paragraph carrying only images becomes standalone Image blocks.
	out := make([]model.Block, 0, len(b.blocks))
	for _, blk := range b.blocks {
		pg, ok := blk.(*model.Paragraph)
		if ok && len(pg.Images) > 0 && strings.TrimSpace(model.RunText(pg.Runs)) == "" {
			for _, img := range pg.Images {
				out = append(out, &model.Image{ResourceID: img.ResourceID, Alt: img.Alt})
			}
			continue
		}
		out = append(out, blk)
	}
	return out
}

// parBuilder accumulates the blocks produced by a single w:p element,
// since line and page breaks split one source paragraph into several.
type parBuilder struct {
	outline int
	list    *model.ListInfo
	cur     *model.Paragraph
	blocks  []model.Block
}

func (b *parBuilder) flush() {
	b.cur.Runs = model.MergeRuns(b.cur.Runs)
	b.blocks = append(b.blocks, b.cur)
	b.cur = &model.Paragraph{Outline: b.outline, List: b.list}
}

// appendRun converts one w:r element into model runs on the current
// paragraph, splitting the paragraph at line breaks.
func (p *parser) appendRun(r *runXML, hyperlink string, b *parBuilder) {
	style := runStyle(r.Props)
	var text strings.Builder

	emit := func() {
		if text.Len() == 0 {
			return
		}
		b.cur.Runs = append(b.cur.Runs, model.Run{
			Text:      text.String(),
			Style:     style,
			Hyperlink: hyperlink,
		})
		text.Reset()
	}

	for _, item := range r.Items {
		switch item.Kind {
		case runItemText:
			text.WriteString(item.Text)
		case runItemTab:
			text.WriteString("\t")
		case runItemBreak:
			emit()
			b.flush()
		case runItemPageBreak:
			emit()
			if len(b.cur.Runs) > 0 || len(b.cur.Images) > 0 {
				b.flush()
			}
			b.blocks = append(b.blocks, &model.PageBreak{})
		case runItemDrawing:
			if ref, ok := p.resolveDrawing(item.Drawing); ok {
				b.cur.Images = append(b.cur.Images, ref)
			}
		}
	}
	emit()
}

func runStyle(props *rPrXML) model.RunStyle {
	var s model.RunStyle
	if props == nil {
		return s
	}
	s.Bold = props.Bold.on()
	s.Italic = props.Italic.on()
	s.Strike = props.Strike.on()
	if props.Underline != nil && props.Underline.Val != "none" {
		s.Underline = true
	}
	if props.VertAlign != nil {
		switch props.VertAlign.Val {
		case "subscript":
			s.Subscript = true
		case "superscript":
			s.Superscript = true
		}
	}
	return s
}

// resolveHyperlink maps a w:hyperlink to its URL. External targets come
// from the rels table; internal anchors become fragment links.
func (p *parser) resolveHyperlink(h *hyperlinkXML) string {
	if h.ID != "" {
		if rel, ok := p.rels.Get(h.ID); ok {
			return rel.Target
		}
		p.diagnostic("unresolved hyperlink relationship %q", h.ID)
		return ""
	}
	if h.Anchor != "" {
		return "#" + h.Anchor
	}
	return ""
}

// resolveDrawing maps an embedded drawing to a loaded resource reference.
func (p *parser) resolveDrawing(d *drawingXML) (model.ImageRef, bool) {
	content := d.content()
	if content == nil || content.Blip == nil || content.Blip.Embed == "" {
		return model.ImageRef{}, false
	}
	rel, ok := p.rels.Get(content.Blip.Embed)
	if !ok {
		p.diagnostic("unresolved image relationship %q", content.Blip.Embed)
		return model.ImageRef{}, false
	}
	if err := p.loadResource(rel); err != nil {
		p.diagnostic("loading image %s: %v", rel.Target, err)
		return model.ImageRef{}, false
	}
	return model.ImageRef{ResourceID: rel.Target, Alt: content.DocPr.Descr}, true
}

// loadResource reads the resource part eagerly, once per target.
func (p *parser) loadResource(rel container.Relationship) error {
	if _, ok := p.doc.Resources[rel.Target]; ok {
		return nil
	}
	data, err := p.c.ReadPart(rel.Target)
	if err != nil {
		return err
	}
	res := &model.Resource{
		ID:   rel.Target,
		Mime: model.MimeFromPart(rel.Target),
		Part: rel.Target,
		Data: data,
	}
	res.Filename = res.FilenameHint()
	p.doc.Resources[rel.Target] = res
	return nil
}

// buildTable converts a w:tbl element, honoring gridSpan and vMerge so the
// resulting grid is rectangular.
func (p *parser) buildTable(t *tableXML) model.Block {
	table := &model.Table{}
	// Track the owning grid position of open vertical merges per column.
	type openMerge struct{ row, col int }
	open := make(map[int]openMerge)

	for ri, tr := range t.Rows {
		if ri == 0 && tr.Props != nil && tr.Props.TblHeader.on() {
			table.HeaderRow = true
		}
		var row []model.TableCell
		gridCol := 0
		for _, tc := range tr.Cells {
			span := 1
			var vmerge *vMergeXML
			if tc.Props != nil {
				if tc.Props.GridSpan != nil {
					if n, err := strconv.Atoi(tc.Props.GridSpan.Val); err == nil && n > 1 {
						span = n
					}
				}
				vmerge = tc.Props.VMerge
			}

			cell := model.TableCell{ColSpan: span}
			switch {
			case vmerge != nil && vmerge.Val != "restart":
				// Continuation: extend the owning cell's span upward.
				if owner, ok := open[gridCol]; ok {
					oc := &table.Rows[owner.row][owner.col]
					if oc.RowSpan < 1 {
						oc.RowSpan = 1
					}
					oc.RowSpan++
				}
				cell.Covered = true
			case vmerge != nil:
				open[gridCol] = openMerge{row: ri, col: len(row)}
				cell.Blocks = p.cellBlocks(&tc)
			default:
				delete(open, gridCol)
				cell.Blocks = p.cellBlocks(&tc)
			}
			row = append(row, cell)
			gridCol += span
		}
		table.Rows = append(table.Rows, row)
	}

	padToRectangle(table, len(t.Grid.Cols))
	return table
}

func (p *parser) cellBlocks(tc *tcXML) []model.Block {
	var blocks []model.Block
	for _, b := range tc.Blocks {
		switch {
		case b.Paragraph != nil:
			blocks = append(blocks, p.buildParagraphBlocks(b.Paragraph)...)
		case b.Table != nil:
			blocks = append(blocks, p.buildTable(b.Table))
		}
	}
	return blocks
}

// padToRectangle pads short rows with empty cells so every row's column
// spans sum to the table width.
func padToRectangle(t *model.Table, gridCols int) {
	width := t.Width()
	if gridCols > width {
		width = gridCols
	}
	for ri := range t.Rows {
		w := 0
		for ci := range t.Rows[ri] {
			w += t.Rows[ri][ci].EffectiveColSpan()
		}
		for w < width {
			t.Rows[ri] = append(t.Rows[ri], model.TableCell{})
			w++
		}
	}
}

func (p *parser) diagnostic(format string, args ...any) {
	p.doc.Diagnostics = append(p.doc.Diagnostics, model.Diagnostic{
		Section: len(p.doc.Sections),
		Message: fmt.Sprintf(format, args...),
	})
}
