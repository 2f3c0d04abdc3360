// Package xlsx parses XLSX (Office Open XML spreadsheet) packages into the
// unified document model. Each visible sheet becomes one section holding a
// single table.
package xlsx

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

const workbookPart = "xl/workbook.xml"

// Options configures XLSX parsing.
type Options struct {
	// Lenient drops sheets whose XML fails to parse, recording a
	// diagnostic, instead of failing the whole parse.
	Lenient bool
	// IncludeHidden parses sheets marked state="hidden" as well.
	IncludeHidden bool
	// Workers bounds the sheet-parsing goroutines; 0 means GOMAXPROCS.
	Workers int
}

type workbookXML struct {
	XMLName xml.Name `xml:"workbook"`
	Sheets  struct {
		Sheet []struct {
			Name    string `xml:"name,attr"`
			SheetID string `xml:"sheetId,attr"`
			RID     string `xml:"id,attr"`
			State   string `xml:"state,attr"`
		} `xml:"sheet"`
	} `xml:"sheets"`
}

type sstXML struct {
	XMLName xml.Name `xml:"sst"`
	Items   []siXML  `xml:"si"`
}

type siXML struct {
	T *string `xml:"t"`
	R []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

// text flattens a shared-string item, concatenating rich-text runs.
func (si *siXML) text() string {
	if si.T != nil {
		return *si.T
	}
	var sb strings.Builder
	for _, r := range si.R {
		sb.WriteString(r.T)
	}
	return sb.String()
}

type worksheetXML struct {
	XMLName   xml.Name `xml:"worksheet"`
	Dimension *struct {
		Ref string `xml:"ref,attr"`
	} `xml:"dimension"`
	SheetData struct {
		Rows []rowXML `xml:"row"`
	} `xml:"sheetData"`
	MergeCells *struct {
		Merges []struct {
			Ref string `xml:"ref,attr"`
		} `xml:"mergeCell"`
	} `xml:"mergeCells"`
	TableParts *struct {
		Count string `xml:"count,attr"`
	} `xml:"tableParts"`
}

type rowXML struct {
	R     string    `xml:"r,attr"`
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string  `xml:"r,attr"`
	T  string  `xml:"t,attr"`
	S  string  `xml:"s,attr"`
	V  string  `xml:"v"`
	Is *siXML  `xml:"is"`
	F  *string `xml:"f"`
}

type parser struct {
	c      *container.Container
	opts   Options
	shared []string
	styles *styles
	wbRels *container.Relationships
}

// Parse decodes an XLSX container into a Document.
func Parse(c *container.Container, opts Options) (*model.Document, error) {
	p := &parser{c: c, opts: opts}

	wbData, err := c.ReadXMLPart(workbookPart)
	if err != nil {
		return nil, ooxerr.Package(fmt.Errorf("missing main part %s", workbookPart))
	}
	var wb workbookXML
	if err := xml.Unmarshal(wbData, &wb); err != nil {
		return nil, ooxerr.XML(fmt.Errorf("parsing %s: %w", workbookPart, err))
	}

	p.wbRels, err = c.RelationshipsFor(workbookPart)
	if err != nil {
		return nil, err
	}
	p.loadSharedStrings()
	stylesData, _ := c.ReadXMLPart("xl/styles.xml")
	p.styles = newStyles(stylesData)

	doc := &model.Document{
		Format:    model.FormatXlsx,
		Meta:      c.ReadMetadata(),
		Resources: make(map[string]*model.Resource),
	}

	// Collect the sheets to parse, preserving workbook order.
	type sheetRef struct {
		name string
		part string
	}
	var sheets []sheetRef
	for i, s := range wb.Sheets.Sheet {
		if s.State == "hidden" || s.State == "veryHidden" {
			if !p.opts.IncludeHidden {
				continue
			}
		}
		part := ""
		if rel, ok := p.wbRels.Get(s.RID); ok && !rel.External {
			part = rel.Target
		}
		if part == "" {
			part = fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)
		}
		sheets = append(sheets, sheetRef{name: s.Name, part: part})
	}

	// Sheets are independent once shared tables are loaded; parse them in
	// parallel and keep workbook order.
	sections, errs := pool.Map(len(sheets), p.opts.Workers, func(i int) (model.Section, error) {
		return p.parseSheet(sheets[i].name, sheets[i].part)
	})
	for i, err := range errs {
		if err == nil {
			doc.Sections = append(doc.Sections, sections[i])
			continue
		}
		if !p.opts.Lenient {
			return nil, err
		}
		doc.Diagnostics = append(doc.Diagnostics, model.Diagnostic{
			Section: i,
			Message: fmt.Sprintf("dropped sheet %q: %v", sheets[i].name, err),
		})
	}
	return doc, nil
}

// loadSharedStrings reads the shared-string table up front so cells index
// into a single loaded table.
func (p *parser) loadSharedStrings() {
	part := "xl/sharedStrings.xml"
	if rel, found := p.wbRels.FirstOfKind(container.RelSharedStrings); found {
		part = rel.Target
	}
	data, err := p.c.ReadXMLPart(part)
	if err != nil {
		return
	}
	var sst sstXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return
	}
	p.shared = make([]string, len(sst.Items))
	for i := range sst.Items {
		p.shared[i] = sst.Items[i].text()
	}
}

// parseSheet converts one worksheet part into a section holding a single
// table.
func (p *parser) parseSheet(name, part string) (model.Section, error) {
	section := model.Section{Name: name}

	data, err := p.c.ReadXMLPart(part)
	if err != nil {
		return section, err
	}
	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return section, ooxerr.XML(fmt.Errorf("parsing %s: %w", part, err))
	}

	rows, cols := p.sheetBounds(&ws)
	if rows == 0 || cols == 0 {
		return section, nil
	}

	// Materialize the bounding rectangle.
	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
	}
	rowIdx := -1
	for _, row := range ws.SheetData.Rows {
		rowIdx = nextIndex(row.R, rowIdx)
		colIdx := -1
		for _, cell := range row.Cells {
			if cell.R != "" {
				if c, r, err := ParseCellRef(cell.R); err == nil {
					colIdx, rowIdx = c, r
				} else {
					colIdx++
				}
			} else {
				colIdx++
			}
			if rowIdx < rows && colIdx < cols {
				grid[rowIdx][colIdx] = p.cellValue(&cell)
			}
		}
	}

	table := &model.Table{HeaderRow: ws.TableParts != nil}
	table.Rows = make([][]model.TableCell, rows)
	for r := 0; r < rows; r++ {
		table.Rows[r] = make([]model.TableCell, cols)
		for c := 0; c < cols; c++ {
			table.Rows[r][c] = makeCell(grid[r][c])
		}
	}
	p.applyMerges(&ws, table)

	section.Blocks = append(section.Blocks, table)
	return section, nil
}

// sheetBounds computes the bounding rectangle. The dimension ref is a hint
// only: some producers leave it stale at "A1", so the maximum cell reference
// actually seen wins when it is larger.
func (p *parser) sheetBounds(ws *worksheetXML) (rows, cols int) {
	if ws.Dimension != nil && ws.Dimension.Ref != "" {
		if _, _, endCol, endRow, err := ParseRangeRef(ws.Dimension.Ref); err == nil {
			rows, cols = endRow+1, endCol+1
		}
	}
	rowIdx := -1
	for _, row := range ws.SheetData.Rows {
		rowIdx = nextIndex(row.R, rowIdx)
		colIdx := -1
		for _, cell := range row.Cells {
			if cell.R != "" {
				if c, r, err := ParseCellRef(cell.R); err == nil {
					colIdx, rowIdx = c, r
				} else {
					colIdx++
				}
			} else {
				colIdx++
			}
			if rowIdx+1 > rows {
				rows = rowIdx + 1
			}
			if colIdx+1 > cols {
				cols = colIdx + 1
			}
		}
	}
	return rows, cols
}

// nextIndex returns the 0-indexed row for a row's r attribute, or the
// previous index plus one when the attribute is absent.
func nextIndex(attr string, prev int) int {
	if attr != "" {
		if n, err := strconv.Atoi(attr); err == nil && n >= 1 {
			return n - 1
		}
	}
	return prev + 1
}

func makeCell(value string) model.TableCell {
	if value == "" {
		return model.TableCell{}
	}
	return model.TableCell{
		Blocks: []model.Block{
			&model.Paragraph{Runs: []model.Run{{Text: value}}},
		},
	}
}

// applyMerges folds each merged region into its top-left cell. Positions
// absorbed horizontally are removed from their row; continuation rows keep a
// single covered cell carrying the region's column span, so every row's
// spans still sum to the table width.
func (p *parser) applyMerges(ws *worksheetXML, table *model.Table) {
	if ws.MergeCells == nil {
		return
	}
	type pos struct{ r, c int }
	absorbed := make(map[pos]bool)
	for _, m := range ws.MergeCells.Merges {
		sc, sr, ec, er, err := ParseRangeRef(m.Ref)
		if err != nil || sr >= len(table.Rows) || sc >= len(table.Rows[sr]) {
			continue
		}
		if er >= len(table.Rows) {
			er = len(table.Rows) - 1
		}
		if ec >= len(table.Rows[sr]) {
			ec = len(table.Rows[sr]) - 1
		}
		if ec > sc {
			table.Rows[sr][sc].ColSpan = ec - sc + 1
		}
		if er > sr {
			table.Rows[sr][sc].RowSpan = er - sr + 1
		}
		for r := sr; r <= er; r++ {
			for c := sc; c <= ec; c++ {
				switch {
				case r == sr && c == sc:
				case c == sc:
					table.Rows[r][c] = model.TableCell{
						Covered: true,
						ColSpan: table.Rows[sr][sc].ColSpan,
					}
				default:
					absorbed[pos{r, c}] = true
				}
			}
		}
	}
	if len(absorbed) == 0 {
		return
	}
	for r := range table.Rows {
		kept := table.Rows[r][:0]
		for c := range table.Rows[r] {
			if !absorbed[pos{r, c}] {
				kept = append(kept, table.Rows[r][c])
			}
		}
		table.Rows[r] = kept
	}
}

// cellValue renders a cell to its display string per the cell type.
func (p *parser) cellValue(c *cellXML) string {
	switch c.T {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.V))
		if err != nil || idx < 0 || idx >= len(p.shared) {
			return ""
		}
		return p.shared[idx]
	case "str":
		return c.V
	case "inlineStr":
		if c.Is == nil {
			return ""
		}
		return c.Is.text()
	case "b":
		if strings.TrimSpace(c.V) == "1" {
			return "true"
		}
		return "false"
	case "e":
		return c.V
	default:
		// Numeric. A date-formatted style renders as an ISO date.
		v := strings.TrimSpace(c.V)
		if v == "" {
			return ""
		}
		if styleIdx, err := strconv.Atoi(c.S); err == nil && p.styles.isDateStyle(styleIdx) {
			if serial, err := strconv.ParseFloat(v, 64); err == nil {
				if date, ok := serialToDate(serial); ok {
					return date
				}
			}
		}
		return v
	}
}
