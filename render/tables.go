package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/ooxmark/model"
)

// renderTable renders a table as a Markdown pipe table, falling back to
// HTML or an ASCII grid when merged cells make a pipe table lossy and the
// options ask for a fallback.
func renderTable(t *model.Table, opts Options) string {
	if len(t.Rows) == 0 {
		return ""
	}
	if t.HasSpans() {
		switch opts.TableMode {
		case TableHTML:
			return renderTableHTML(t)
		case TableASCII:
			return renderTableASCII(t)
		}
	}
	return renderTablePipes(t, opts)
}

// renderTablePipes emits a Markdown pipe table. The first row is rendered
// as the header row; Markdown requires a header separator after it either
// way. Merged cells flatten: covered cells render empty.
func renderTablePipes(t *model.Table, opts Options) string {
	width := t.Width()
	if width == 0 {
		return ""
	}
	var out strings.Builder
	for ri, row := range t.Rows {
		out.WriteString("|")
		cells := 0
		for ci := range row {
			text := cellInline(&row[ci], opts)
			out.WriteString(" " + text + " |")
			cells++
		}
		for ; cells < width; cells++ {
			out.WriteString("  |")
		}
		out.WriteString("\n")
		if ri == 0 {
			out.WriteString("|")
			for i := 0; i < width; i++ {
				out.WriteString(" --- |")
			}
			out.WriteString("\n")
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

// cellInline flattens a cell's blocks to a single line. Paragraphs join
// with <br>; nested table content flattens in row order; pipes are always
// escaped so the table structure survives.
func cellInline(cell *model.TableCell, opts Options) string {
	if cell.Covered {
		return ""
	}
	var parts []string
	for _, block := range cell.Blocks {
		switch v := block.(type) {
		case *model.Paragraph:
			if text := renderRuns(v.Runs, opts); text != "" {
				parts = append(parts, text)
			}
		case *model.Table:
			for ri := range v.Rows {
				for ci := range v.Rows[ri] {
					if text := cellInline(&v.Rows[ri][ci], opts); text != "" {
						parts = append(parts, text)
					}
				}
			}
		}
	}
	text := strings.Join(parts, "<br>")
	text = strings.ReplaceAll(text, "\n", " ")
	if !opts.EscapeSpecial {
		// EscapeMarkdown already handled pipes when escaping is on.
		text = strings.ReplaceAll(text, "|", "\\|")
	}
	return text
}

// renderTableHTML emits a <table> subtree carrying colspan and rowspan
// attributes. Covered cells are omitted; the spans express them.
func renderTableHTML(t *model.Table) string {
	var out strings.Builder
	out.WriteString("<table>\n")
	for ri, row := range t.Rows {
		out.WriteString("  <tr>\n")
		tag := "td"
		if t.HeaderRow && ri == 0 {
			tag = "th"
		}
		for ci := range row {
			cell := &row[ci]
			if cell.Covered {
				continue
			}
			var attrs strings.Builder
			if cell.EffectiveColSpan() > 1 {
				fmt.Fprintf(&attrs, " colspan=\"%d\"", cell.EffectiveColSpan())
			}
			if cell.EffectiveRowSpan() > 1 {
				fmt.Fprintf(&attrs, " rowspan=\"%d\"", cell.EffectiveRowSpan())
			}
			text := html.EscapeString(cellPlain(cell))
			fmt.Fprintf(&out, "    <%s%s>%s</%s>\n", tag, attrs.String(), text, tag)
		}
		out.WriteString("  </tr>\n")
	}
	out.WriteString("</table>")
	return out.String()
}

// cellPlain flattens a cell to unstyled text.
func cellPlain(cell *model.TableCell) string {
	var parts []string
	for _, block := range cell.Blocks {
		switch v := block.(type) {
		case *model.Paragraph:
			if text := model.RunText(v.Runs); text != "" {
				parts = append(parts, text)
			}
		case *model.Table:
			for ri := range v.Rows {
				for ci := range v.Rows[ri] {
					if text := cellPlain(&v.Rows[ri][ci]); text != "" {
						parts = append(parts, text)
					}
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

// renderTableASCII emits a box-drawn grid: + corners, - row borders, =
// under the header row. Merged content appears in its top-left cell.
func renderTableASCII(t *model.Table) string {
	width := t.Width()
	if width == 0 {
		return ""
	}

	// Expand to a full grid of display strings, repeating nothing into
	// covered positions.
	grid := make([][]string, len(t.Rows))
	colWidths := make([]int, width)
	for ri, row := range t.Rows {
		grid[ri] = make([]string, width)
		col := 0
		for ci := range row {
			cell := &row[ci]
			text := ""
			if !cell.Covered {
				text = cellPlain(cell)
			}
			if col < width {
				grid[ri][col] = text
				if len(text) > colWidths[col] {
					colWidths[col] = len(text)
				}
			}
			col += cell.EffectiveColSpan()
		}
	}

	border := func(fill string) string {
		var b strings.Builder
		b.WriteString("+")
		for _, w := range colWidths {
			b.WriteString(strings.Repeat(fill, w+2))
			b.WriteString("+")
		}
		return b.String()
	}

	var out strings.Builder
	out.WriteString(border("-"))
	out.WriteString("\n")
	for ri, row := range grid {
		out.WriteString("|")
		for ci, text := range row {
			fmt.Fprintf(&out, " %-*s |", colWidths[ci], text)
		}
		out.WriteString("\n")
		if ri == 0 && t.HeaderRow {
			out.WriteString(border("="))
		} else {
			out.WriteString(border("-"))
		}
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}
