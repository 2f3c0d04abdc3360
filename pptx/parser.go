// Package pptx parses PPTX (Office Open XML presentation) packages into
// the unified document model. Each slide becomes one section: title first,
// then body text in shape order, tables, images, and finally speaker notes.
package pptx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/ooxmark/container"
	"github.com/tsawler/ooxmark/internal/pool"
	"github.com/tsawler/ooxmark/model"
	"github.com/tsawler/ooxmark/ooxerr"
)

const presentationPart = "ppt/presentation.xml"

// Options configures PPTX parsing.
type Options struct {
	// Lenient drops slides whose XML fails to parse, recording a
	// diagnostic, instead of failing the whole parse.
	Lenient bool
	// Workers bounds the slide-parsing goroutines; 0 means GOMAXPROCS.
	Workers int
}

// slideResult carries one parsed slide plus the resources it loaded, so
// parallel slide parsing never shares mutable state.
type slideResult struct {
	section   model.Section
	resources map[string]*model.Resource
	notes     []model.Diagnostic
}

type parser struct {
	c    *container.Container
	opts Options
}

// Parse decodes a PPTX container into a Document.
func Parse(c *container.Container, opts Options) (*model.Document, error) {
	p := &parser{c: c, opts: opts}

	presData, err := c.ReadXMLPart(presentationPart)
	if err != nil {
		return nil, ooxerr.Package(fmt.Errorf("missing main part %s", presentationPart))
	}
	var pres presentationXML
	if err := xml.Unmarshal(presData, &pres); err != nil {
		return nil, ooxerr.XML(fmt.Errorf("parsing %s: %w", presentationPart, err))
	}

	presRels, err := c.RelationshipsFor(presentationPart)
	if err != nil {
		return nil, err
	}

	// Slide order comes from sldIdLst, not from part names.
	var slideParts []string
	for _, id := range pres.SldIdLst.Ids {
		rel, ok := presRels.Get(id.RID)
		if !ok || rel.External {
			continue
		}
		slideParts = append(slideParts, rel.Target)
	}

	doc := &model.Document{
		Format:    model.FormatPptx,
		Meta:      c.ReadMetadata(),
		Resources: make(map[string]*model.Resource),
	}

	results, errs := pool.Map(len(slideParts), p.opts.Workers, func(i int) (slideResult, error) {
		return p.parseSlide(slideParts[i])
	})
	for i, err := range errs {
		if err != nil {
			if !p.opts.Lenient {
				return nil, err
			}
			doc.Diagnostics = append(doc.Diagnostics, model.Diagnostic{
				Section: i,
				Message: fmt.Sprintf("dropped slide %s: %v", slideParts[i], err),
			})
			continue
		}
		doc.Sections = append(doc.Sections, results[i].section)
		for id, res := range results[i].resources {
			if _, ok := doc.Resources[id]; !ok {
				doc.Resources[id] = res
			}
		}
		for _, d := range results[i].notes {
			d.Section = i
			doc.Diagnostics = append(doc.Diagnostics, d)
		}
	}
	return doc, nil
}

// parseSlide converts one slide part into a section.
func (p *parser) parseSlide(part string) (slideResult, error) {
	res := slideResult{resources: make(map[string]*model.Resource)}

	data, err := p.c.ReadXMLPart(part)
	if err != nil {
		return res, err
	}
	var slide slideXML
	if err := xml.Unmarshal(data, &slide); err != nil {
		return res, ooxerr.XML(fmt.Errorf("parsing %s: %w", part, err))
	}

	rels, err := p.c.RelationshipsFor(part)
	if err != nil {
		return res, err
	}

	b := &slideBuilder{parser: p, part: part, rels: rels, result: &res}
	b.walkTree(&slide.CSld.SpTree)

	section := model.Section{Name: b.title}
	if b.title != "" {
		section.Blocks = append(section.Blocks, &model.Paragraph{
			Outline: 1,
			Runs:    []model.Run{{Text: b.title}},
		})
	}
	section.Blocks = append(section.Blocks, b.text...)
	section.Blocks = append(section.Blocks, b.tables...)
	section.Blocks = append(section.Blocks, b.images...)

	if notes := p.parseNotes(rels, &res); notes != nil {
		section.Blocks = append(section.Blocks, notes)
	}
	res.section = section
	return res, nil
}

// slideBuilder accumulates one slide's blocks grouped by kind: text shapes
// first, then tables, then images.
type slideBuilder struct {
	parser *parser
	part   string
	rels   *container.Relationships
	result *slideResult

	title  string
	text   []model.Block
	tables []model.Block
	images []model.Block
}

// walkTree processes a shape tree, recursing into grouped shapes.
func (b *slideBuilder) walkTree(tree *spTreeXML) {
	for i := range tree.Shapes {
		b.addShape(&tree.Shapes[i])
	}
	for i := range tree.GraphicFrames {
		b.addGraphicFrame(&tree.GraphicFrames[i])
	}
	for i := range tree.Pics {
		b.addPic(&tree.Pics[i])
	}
	for i := range tree.Groups {
		b.walkTree(&tree.Groups[i])
	}
}

func (b *slideBuilder) addShape(sp *spXML) {
	if sp.TxBody == nil || sp.isMetaPlaceholder() {
		return
	}
	if sp.isTitle() {
		if b.title == "" {
			b.title = strings.TrimSpace(shapeText(sp.TxBody))
		}
		return
	}
	for i := range sp.TxBody.Paragraphs {
		if par := b.buildParagraph(&sp.TxBody.Paragraphs[i], true); par != nil {
			b.text = append(b.text, par)
		}
	}
}

// buildParagraph converts an a:p element. Body placeholder paragraphs are
// bulleted by default in PowerPoint; buNone switches the bullet off and
// buAutoNum makes the item ordered.
func (b *slideBuilder) buildParagraph(par *aParXML, bulleted bool) *model.Paragraph {
	var runs []model.Run
	for i := range par.Runs {
		r := &par.Runs[i]
		if r.T == "" {
			continue
		}
		runs = append(runs, model.Run{
			Text:      r.T,
			Style:     drawingRunStyle(r.RPr),
			Hyperlink: b.resolveHyperlink(r.RPr),
		})
	}
	if len(runs) == 0 {
		return nil
	}

	p := &model.Paragraph{Runs: model.MergeRuns(runs)}
	lvl := 0
	if par.PPr != nil {
		if n, err := strconv.Atoi(par.PPr.Lvl); err == nil && n >= 0 && n <= 8 {
			lvl = n
		}
	}
	switch {
	case par.PPr != nil && par.PPr.BuAutoNum != nil:
		start := 1
		if s, err := strconv.Atoi(par.PPr.BuAutoNum.StartAt); err == nil && s > 0 {
			start = s
		}
		p.List = &model.ListInfo{Ordered: true, Level: lvl, Start: start}
	case par.PPr != nil && par.PPr.BuNone != nil:
		// Explicitly unbulleted.
	case bulleted:
		p.List = &model.ListInfo{Ordered: false, Level: lvl}
	}
	return p
}

func (b *slideBuilder) resolveHyperlink(rpr *aRPrXML) string {
	if rpr == nil || rpr.Hlink == nil || rpr.Hlink.RID == "" {
		return ""
	}
	rel, ok := b.rels.Get(rpr.Hlink.RID)
	if !ok {
		b.result.notes = append(b.result.notes, model.Diagnostic{
			Message: fmt.Sprintf("unresolved hyperlink relationship %q in %s", rpr.Hlink.RID, b.part),
		})
		return ""
	}
	return rel.Target
}

func drawingRunStyle(rpr *aRPrXML) model.RunStyle {
	var s model.RunStyle
	if rpr == nil {
		return s
	}
	s.Bold = rpr.B == "1" || rpr.B == "true"
	s.Italic = rpr.I == "1" || rpr.I == "true"
	s.Underline = rpr.U != "" && rpr.U != "none"
	s.Strike = rpr.Strike != "" && rpr.Strike != "noStrike"
	if n, err := strconv.Atoi(rpr.Baseline); err == nil {
		if n < 0 {
			s.Subscript = true
		} else if n > 0 {
			s.Superscript = true
		}
	}
	return s
}

func (b *slideBuilder) addGraphicFrame(gf *graphicFrameXML) {
	if gf.Graphic.Data.Tbl != nil {
		b.tables = append(b.tables, b.buildTable(gf.Graphic.Data.Tbl))
		return
	}
	if gf.Graphic.Data.Chart != nil {
		if tbl := b.chartTable(gf.Graphic.Data.Chart.RID); tbl != nil {
			b.tables = append(b.tables, tbl)
			return
		}
		// No usable chart part; fall back to a named placeholder.
		name := strings.TrimSpace(gf.NvPr.CNvPr.Name)
		if name == "" {
			name = "chart"
		}
		b.tables = append(b.tables, &model.Paragraph{
			Runs: []model.Run{{Text: fmt.Sprintf("[Chart: %s]", name)}},
		})
	}
}

// chartTable reads the chart part behind a graphicFrame reference and
// converts its cached series data to a table. It returns nil when the part
// is missing, malformed, or holds no data.
func (b *slideBuilder) chartTable(rid string) model.Block {
	if rid == "" {
		return nil
	}
	rel, ok := b.rels.Get(rid)
	if !ok || rel.External {
		return nil
	}
	data, err := b.parser.c.ReadXMLPart(rel.Target)
	if err != nil {
		return nil
	}
	var cs chartSpaceXML
	if err := xml.Unmarshal(data, &cs); err != nil {
		b.result.notes = append(b.result.notes, model.Diagnostic{
			Message: fmt.Sprintf("malformed chart part %s: %v", rel.Target, err),
		})
		return nil
	}
	cd := newChartData(&cs)
	if cd.empty() {
		return nil
	}
	return cd.table()
}

// buildTable converts an a:tbl element using the same grid rules as DOCX:
// span attrs on the top-left cell, horizontally absorbed cells omitted, and
// vertical continuation cells kept as covered so rows stay rectangular.
func (b *slideBuilder) buildTable(t *aTblXML) model.Block {
	table := &model.Table{}
	if t.TblPr != nil {
		table.HeaderRow = t.TblPr.FirstRow == "1" || t.TblPr.FirstRow == "true"
	}
	for _, tr := range t.Rows {
		var row []model.TableCell
		for i := range tr.Cells {
			tc := &tr.Cells[i]
			if tc.HMerge == "1" || tc.HMerge == "true" {
				continue
			}
			cell := model.TableCell{}
			if n, err := strconv.Atoi(tc.GridSpan); err == nil && n > 1 {
				cell.ColSpan = n
			}
			if tc.VMerge == "1" || tc.VMerge == "true" {
				cell.Covered = true
			} else {
				if n, err := strconv.Atoi(tc.RowSpan); err == nil && n > 1 {
					cell.RowSpan = n
				}
				cell.Blocks = b.cellBlocks(tc.TxBody)
			}
			row = append(row, cell)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func (b *slideBuilder) cellBlocks(body *txBodyXML) []model.Block {
	if body == nil {
		return nil
	}
	var blocks []model.Block
	for i := range body.Paragraphs {
		if par := b.buildParagraph(&body.Paragraphs[i], false); par != nil {
			blocks = append(blocks, par)
		}
	}
	return blocks
}

func (b *slideBuilder) addPic(pic *picXML) {
	if pic.BlipFill.Blip == nil || pic.BlipFill.Blip.Embed == "" {
		return
	}
	rel, ok := b.rels.Get(pic.BlipFill.Blip.Embed)
	if !ok {
		b.result.notes = append(b.result.notes, model.Diagnostic{
			Message: fmt.Sprintf("unresolved image relationship %q in %s", pic.BlipFill.Blip.Embed, b.part),
		})
		return
	}
	data, err := b.parser.c.ReadPart(rel.Target)
	if err != nil {
		b.result.notes = append(b.result.notes, model.Diagnostic{
			Message: fmt.Sprintf("loading image %s: %v", rel.Target, err),
		})
		return
	}
	if _, ok := b.result.resources[rel.Target]; !ok {
		res := &model.Resource{
			ID:   rel.Target,
			Mime: model.MimeFromPart(rel.Target),
			Part: rel.Target,
			Data: data,
		}
		res.Filename = res.FilenameHint()
		b.result.resources[rel.Target] = res
	}
	alt := pic.NvPicPr.CNvPr.Descr
	b.images = append(b.images, &model.Image{ResourceID: rel.Target, Alt: alt})
}

// parseNotes loads the slide's notes part, if any, and flattens its text
// into a SpeakerNotes block.
func (p *parser) parseNotes(rels *container.Relationships, res *slideResult) *model.SpeakerNotes {
	rel, ok := rels.FirstOfKind(container.RelNotes)
	if !ok {
		return nil
	}
	data, err := p.c.ReadXMLPart(rel.Target)
	if err != nil {
		return nil
	}
	var notes notesSlideXML
	if err := xml.Unmarshal(data, &notes); err != nil {
		res.notes = append(res.notes, model.Diagnostic{
			Message: fmt.Sprintf("malformed notes part %s: %v", rel.Target, err),
		})
		return nil
	}

	var runs []model.Run
	collectNotesText(&notes.CSld.SpTree, &runs)
	if len(runs) == 0 {
		return nil
	}
	return &model.SpeakerNotes{Runs: model.MergeRuns(runs)}
}

func collectNotesText(tree *spTreeXML, runs *[]model.Run) {
	for i := range tree.Shapes {
		sp := &tree.Shapes[i]
		if sp.TxBody == nil || sp.isMetaPlaceholder() {
			continue
		}
		for _, par := range sp.TxBody.Paragraphs {
			atParStart := true
			for _, r := range par.Runs {
				if r.T == "" {
					continue
				}
				if atParStart && len(*runs) > 0 {
					// Paragraph boundaries inside notes collapse to spaces.
					last := &(*runs)[len(*runs)-1]
					if !strings.HasSuffix(last.Text, " ") && !strings.HasPrefix(r.T, " ") {
						last.Text += " "
					}
				}
				atParStart = false
				*runs = append(*runs, model.Run{Text: r.T, Style: drawingRunStyle(r.RPr)})
			}
		}
	}
	for i := range tree.Groups {
		collectNotesText(&tree.Groups[i], runs)
	}
}

func shapeText(body *txBodyXML) string {
	var sb strings.Builder
	for pi, par := range body.Paragraphs {
		if pi > 0 {
			sb.WriteString(" ")
		}
		for _, r := range par.Runs {
			sb.WriteString(r.T)
		}
	}
	return sb.String()
}
