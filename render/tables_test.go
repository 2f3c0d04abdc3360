package render

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/tsawler/ooxmark/model"
)

func cellOf(text string) model.TableCell {
	return model.TableCell{
		Blocks: []model.Block{&model.Paragraph{Runs: []model.Run{{Text: text}}}},
	}
}

// spanTable holds a header cell spanning both columns; the absorbed grid
// position is omitted, so each row's spans sum to the width.
func spanTable() *model.Table {
	return &model.Table{
		Rows: [][]model.TableCell{
			{{ColSpan: 2, Blocks: []model.Block{para("H")}}},
			{cellOf("a"), cellOf("b")},
		},
	}
}

func TestRenderTablePipes(t *testing.T) {
	table := &model.Table{
		Rows: [][]model.TableCell{
			{cellOf("name"), cellOf("age")},
			{cellOf("kim"), cellOf("37")},
		},
	}
	want := "| name | age |\n| --- | --- |\n| kim | 37 |"
	if got := renderTable(table, DefaultOptions()); got != want {
		t.Errorf("renderTable() = %q, want %q", got, want)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	table := &model.Table{
		Rows: [][]model.TableCell{
			{cellOf("a"), cellOf("b")},
			{cellOf("only")},
		},
	}
	got := renderTable(table, DefaultOptions())
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %v", lines)
	}
	if strings.Count(lines[2], "|") != 3 {
		t.Errorf("short row not padded: %q", lines[2])
	}
}

func TestRenderTableSpansFlattened(t *testing.T) {
	// Markdown mode flattens merges: the covered cell renders empty.
	got := renderTable(spanTable(), DefaultOptions())
	want := "| H |  |\n| --- | --- |\n| a | b |"
	if got != want {
		t.Errorf("renderTable() = %q, want %q", got, want)
	}
}

func TestRenderTableHTMLFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.TableMode = TableHTML
	got := renderTable(spanTable(), opts)

	if !strings.Contains(got, `<td colspan="2">H</td>`) {
		t.Errorf("renderTable() = %q, missing colspan cell", got)
	}
	if strings.Count(got, "<tr>") != 2 {
		t.Errorf("renderTable() = %q, want 2 rows", got)
	}
	// The colspan expresses the merge; no empty filler cell appears.
	if strings.Count(got, "<td") != 3 {
		t.Errorf("renderTable() = %q, want 3 td cells", got)
	}
	// The subtree must be well-formed HTML.
	if _, err := html.Parse(strings.NewReader(got)); err != nil {
		t.Errorf("html.Parse() failed: %v", err)
	}
}

func TestRenderTableHTMLEscapes(t *testing.T) {
	table := &model.Table{
		HeaderRow: true,
		Rows: [][]model.TableCell{
			{{RowSpan: 2, Blocks: []model.Block{para("<b>&</b>")}}},
			{{Covered: true}},
		},
	}
	opts := DefaultOptions()
	opts.TableMode = TableHTML
	got := renderTable(table, opts)
	if !strings.Contains(got, `<th rowspan="2">&lt;b&gt;&amp;&lt;/b&gt;</th>`) {
		t.Errorf("renderTable() = %q, want escaped th with rowspan", got)
	}
}

func TestRenderTableASCIIFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.TableMode = TableASCII
	table := spanTable()
	table.HeaderRow = true
	got := renderTable(table, opts)

	lines := strings.Split(got, "\n")
	if !strings.HasPrefix(lines[0], "+-") {
		t.Errorf("first line = %q, want border", lines[0])
	}
	if !strings.Contains(got, "=") {
		t.Errorf("renderTable() = %q, want = border under header", got)
	}
	if !strings.Contains(got, "| H") {
		t.Errorf("renderTable() = %q, missing merged content", got)
	}
}

func TestCellInlineJoinsParagraphs(t *testing.T) {
	cell := model.TableCell{
		Blocks: []model.Block{para("first"), para("second")},
	}
	if got := cellInline(&cell, DefaultOptions()); got != "first<br>second" {
		t.Errorf("cellInline() = %q", got)
	}
}

func TestCellInlineEscapesPipes(t *testing.T) {
	cell := cellOf("a|b")
	if got := cellInline(&cell, DefaultOptions()); got != `a\|b` {
		t.Errorf("cellInline() = %q, want pipe escaped", got)
	}
	// With global escaping on, EscapeMarkdown already handled the pipe.
	if got := cellInline(&cell, OptionsFromFlags(FlagEscapeSpecial)); got != `a\|b` {
		t.Errorf("cellInline(escape) = %q, want single escape", got)
	}
}

func TestCellInlineFlattensNestedTable(t *testing.T) {
	cell := model.TableCell{
		Blocks: []model.Block{
			para("outer"),
			&model.Table{Rows: [][]model.TableCell{{cellOf("inner")}}},
		},
	}
	if got := cellInline(&cell, DefaultOptions()); got != "outer<br>inner" {
		t.Errorf("cellInline() = %q", got)
	}
}
