package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/tsawler/ooxmark/container"
	"github.com/tsawler/ooxmark/model"
	"github.com/tsawler/ooxmark/ooxerr"
)

const testContentTypes = `<?xml version="1.0"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const testStyles = `<?xml version="1.0"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="heading 1"/>
    <w:pPr><w:outlineLvl w:val="0"/></w:pPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading2">
    <w:name w:val="heading 2"/>
    <w:pPr><w:outlineLvl w:val="1"/></w:pPr>
  </w:style>
</w:styles>`

// buildDOCX wraps document body XML into a complete in-memory package.
func buildDOCX(t *testing.T, body string, extra map[string]string) *container.Container {
	t.Helper()
	parts := map[string]string{
		"[Content_Types].xml": testContentTypes,
		"word/styles.xml":     testStyles,
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
            xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
            xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
            xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
            xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">
  <w:body>` + body + `</w:body>
</w:document>`,
	}
	for name, content := range extra {
		parts[name] = content
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	c, err := container.OpenBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	return c
}

func parseBody(t *testing.T, body string) *model.Document {
	t.Helper()
	doc, err := Parse(buildDOCX(t, body, nil), Options{})
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return doc
}

func firstParagraph(t *testing.T, doc *model.Document, i int) *model.Paragraph {
	t.Helper()
	if len(doc.Sections) == 0 || i >= len(doc.Sections[0].Blocks) {
		t.Fatalf("no block %d in first section", i)
	}
	p, ok := doc.Sections[0].Blocks[i].(*model.Paragraph)
	if !ok {
		t.Fatalf("block %d is %T, want *model.Paragraph", i, doc.Sections[0].Blocks[i])
	}
	return p
}

func TestParseHeadingAndText(t *testing.T) {
	doc := parseBody(t, `
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>
<w:p><w:r><w:t>Hello</w:t></w:r></w:p>`)

	if len(doc.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(doc.Sections))
	}
	h := firstParagraph(t, doc, 0)
	if h.Outline != 1 || model.RunText(h.Runs) != "Intro" {
		t.Errorf("heading = outline %d, text %q", h.Outline, model.RunText(h.Runs))
	}
	body := firstParagraph(t, doc, 1)
	if body.Outline != 0 || model.RunText(body.Runs) != "Hello" {
		t.Errorf("body = outline %d, text %q", body.Outline, model.RunText(body.Runs))
	}
}

func TestParseRunStyles(t *testing.T) {
	doc := parseBody(t, `
<w:p>
  <w:r><w:rPr><w:b/></w:rPr><w:t>Bold</w:t></w:r>
  <w:r><w:t xml:space="preserve"> then plain</w:t></w:r>
</w:p>`)

	p := firstParagraph(t, doc, 0)
	if len(p.Runs) != 2 {
		t.Fatalf("runs = %+v, want 2", p.Runs)
	}
	if !p.Runs[0].Style.Bold || p.Runs[0].Text != "Bold" {
		t.Errorf("run 0 = %+v", p.Runs[0])
	}
	if p.Runs[1].Style.Bold || p.Runs[1].Text != " then plain" {
		t.Errorf("run 1 = %+v", p.Runs[1])
	}
}

func TestParseToggleValues(t *testing.T) {
	// b with val="0" or "false" is off; bare b is on.
	doc := parseBody(t, `
<w:p>
  <w:r><w:rPr><w:b w:val="0"/></w:rPr><w:t>off</w:t></w:r>
  <w:r><w:rPr><w:b w:val="false"/><w:i/></w:rPr><w:t>italic</w:t></w:r>
</w:p>`)

	p := firstParagraph(t, doc, 0)
	if p.Runs[0].Style.Bold {
		t.Error(`b val="0" parsed as bold`)
	}
	if p.Runs[1].Style.Bold || !p.Runs[1].Style.Italic {
		t.Errorf("run 1 style = %+v", p.Runs[1].Style)
	}
}

func TestParseAdjacentRunsMerge(t *testing.T) {
	doc := parseBody(t, `
<w:p><w:r><w:t>Hel</w:t></w:r><w:r><w:t>lo</w:t></w:r></w:p>`)

	p := firstParagraph(t, doc, 0)
	if len(p.Runs) != 1 || p.Runs[0].Text != "Hello" {
		t.Errorf("runs = %+v, want single merged run", p.Runs)
	}
}

func TestParseLineAndPageBreaks(t *testing.T) {
	doc := parseBody(t, `
<w:p><w:r><w:t>one</w:t><w:br/><w:t>two</w:t></w:r></w:p>
<w:p><w:r><w:br w:type="page"/><w:t>three</w:t></w:r></w:p>`)

	blocks := doc.Sections[0].Blocks
	// one, two, PageBreak, three
	if len(blocks) != 4 {
		t.Fatalf("blocks = %d, want 4", len(blocks))
	}
	if model.RunText(blocks[0].(*model.Paragraph).Runs) != "one" {
		t.Errorf("block 0 = %+v", blocks[0])
	}
	if model.RunText(blocks[1].(*model.Paragraph).Runs) != "two" {
		t.Errorf("block 1 = %+v", blocks[1])
	}
	if _, ok := blocks[2].(*model.PageBreak); !ok {
		t.Errorf("block 2 = %T, want *model.PageBreak", blocks[2])
	}
}

func TestParseHyperlinks(t *testing.T) {
	rels := `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com" TargetMode="External"/>
</Relationships>`
	c := buildDOCX(t, `
<w:p><w:hyperlink r:id="rId5"><w:r><w:t>link</w:t></w:r></w:hyperlink></w:p>
<w:p><w:hyperlink w:anchor="sec1"><w:r><w:t>internal</w:t></w:r></w:hyperlink></w:p>
<w:p><w:hyperlink r:id="rId99"><w:r><w:t>dangling</w:t></w:r></w:hyperlink></w:p>`,
		map[string]string{"word/_rels/document.xml.rels": rels})

	doc, err := Parse(c, Options{})
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if got := firstParagraph(t, doc, 0).Runs[0].Hyperlink; got != "https://example.com" {
		t.Errorf("external hyperlink = %q", got)
	}
	if got := firstParagraph(t, doc, 1).Runs[0].Hyperlink; got != "#sec1" {
		t.Errorf("anchor hyperlink = %q", got)
	}
	// Unresolvable id keeps the text, drops the link, records a diagnostic.
	p := firstParagraph(t, doc, 2)
	if p.Runs[0].Hyperlink != "" || p.Runs[0].Text != "dangling" {
		t.Errorf("dangling hyperlink run = %+v", p.Runs[0])
	}
	if len(doc.Diagnostics) != 1 {
		t.Errorf("diagnostics = %+v, want 1 entry", doc.Diagnostics)
	}
}

func TestParseLists(t *testing.T) {
	numbering := `<?xml version="1.0"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:abstractNum w:abstractNumId="0">
    <w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/></w:lvl>
    <w:lvl w:ilvl="1"><w:start w:val="1"/><w:numFmt w:val="bullet"/></w:lvl>
  </w:abstractNum>
  <w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`
	c := buildDOCX(t, `
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>first</w:t></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="1"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>nested</w:t></w:r></w:p>`,
		map[string]string{"word/numbering.xml": numbering})

	doc, err := Parse(c, Options{})
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	first := firstParagraph(t, doc, 0)
	if first.List == nil || !first.List.Ordered || first.List.Level != 0 {
		t.Errorf("first list = %+v", first.List)
	}
	nested := firstParagraph(t, doc, 1)
	if nested.List == nil || nested.List.Ordered || nested.List.Level != 1 {
		t.Errorf("nested list = %+v", nested.List)
	}
}

func TestParseSectionSplit(t *testing.T) {
	doc := parseBody(t, `
<w:p><w:r><w:t>first part</w:t></w:r><w:pPr><w:sectPr/></w:pPr></w:p>
<w:p><w:r><w:t>second part</w:t></w:r></w:p>
<w:sectPr/>`)

	if len(doc.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(doc.Sections))
	}
	if model.RunText(doc.Sections[1].Blocks[0].(*model.Paragraph).Runs) != "second part" {
		t.Errorf("second section = %+v", doc.Sections[1])
	}
}

func TestParseTable(t *testing.T) {
	doc := parseBody(t, `
<w:tbl>
  <w:tblGrid><w:gridCol/><w:gridCol/></w:tblGrid>
  <w:tr><w:trPr><w:tblHeader/></w:trPr><w:tc><w:p><w:r><w:t>name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>age</w:t></w:r></w:p></w:tc></w:tr>
  <w:tr><w:tc><w:p><w:r><w:t>kim</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>37</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>`)

	table, ok := doc.Sections[0].Blocks[0].(*model.Table)
	if !ok {
		t.Fatalf("block 0 is %T", doc.Sections[0].Blocks[0])
	}
	if !table.HeaderRow {
		t.Error("HeaderRow = false")
	}
	if len(table.Rows) != 2 || table.Width() != 2 {
		t.Fatalf("table is %dx%d, want 2x2", len(table.Rows), table.Width())
	}
}

func TestParseTableSpans(t *testing.T) {
	doc := parseBody(t, `
<w:tbl>
  <w:tblGrid><w:gridCol/><w:gridCol/></w:tblGrid>
  <w:tr><w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p><w:r><w:t>H</w:t></w:r></w:p></w:tc></w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr><w:p><w:r><w:t>tall</w:t></w:r></w:p></w:tc>
    <w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>
    <w:tc><w:p><w:r><w:t>b</w:t></w:r></w:p></w:tc>
  </w:tr>
</w:tbl>`)

	table := doc.Sections[0].Blocks[0].(*model.Table)
	if !table.HasSpans() {
		t.Fatal("HasSpans() = false")
	}
	if table.Rows[0][0].ColSpan != 2 {
		t.Errorf("header ColSpan = %d, want 2", table.Rows[0][0].ColSpan)
	}
	if table.Rows[1][0].RowSpan != 2 {
		t.Errorf("merged RowSpan = %d, want 2", table.Rows[1][0].RowSpan)
	}
	if !table.Rows[2][0].Covered {
		t.Error("continuation cell not covered")
	}
	// Every row still spans the full grid width.
	for ri, row := range table.Rows {
		w := 0
		for _, c := range row {
			w += c.EffectiveColSpan()
		}
		if w != 2 {
			t.Errorf("row %d width = %d, want 2", ri, w)
		}
	}
}

func TestParseNestedTable(t *testing.T) {
	doc := parseBody(t, `
<w:tbl>
  <w:tblGrid><w:gridCol/></w:tblGrid>
  <w:tr><w:tc>
    <w:p><w:r><w:t>outer</w:t></w:r></w:p>
    <w:tbl><w:tblGrid><w:gridCol/></w:tblGrid><w:tr><w:tc><w:p><w:r><w:t>inner</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
  </w:tc></w:tr>
</w:tbl>`)

	table := doc.Sections[0].Blocks[0].(*model.Table)
	cell := table.Rows[0][0]
	if len(cell.Blocks) != 2 {
		t.Fatalf("cell blocks = %d, want paragraph and nested table", len(cell.Blocks))
	}
	if _, ok := cell.Blocks[1].(*model.Table); !ok {
		t.Errorf("cell block 1 is %T, want *model.Table", cell.Blocks[1])
	}
}

func TestParseImages(t *testing.T) {
	rels := `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId7" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image1.png"/>
</Relationships>`
	c := buildDOCX(t, `
<w:p><w:r><w:drawing><wp:inline>
  <wp:docPr id="1" name="pic" descr="a diagram"/>
  <a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="rId7"/></pic:blipFill></pic:pic></a:graphicData></a:graphic>
</wp:inline></w:drawing></w:r></w:p>`,
		map[string]string{
			"word/_rels/document.xml.rels": rels,
			"word/media/image1.png":        "\x89PNG fake bytes",
		})

	doc, err := Parse(c, Options{})
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	// An image-only paragraph becomes a standalone Image block.
	img, ok := doc.Sections[0].Blocks[0].(*model.Image)
	if !ok {
		t.Fatalf("block 0 is %T, want *model.Image", doc.Sections[0].Blocks[0])
	}
	if img.ResourceID != "word/media/image1.png" || img.Alt != "a diagram" {
		t.Errorf("image = %+v", img)
	}
	res, ok := doc.Resources["word/media/image1.png"]
	if !ok {
		t.Fatal("resource not loaded")
	}
	if res.Mime != "image/png" || len(res.Data) == 0 {
		t.Errorf("resource = %+v", res)
	}
}

func TestParseFieldInstructionsSkipped(t *testing.T) {
	doc := parseBody(t, `
<w:p><w:r><w:instrText>PAGEREF _Toc1</w:instrText><w:t>visible</w:t></w:r></w:p>`)

	p := firstParagraph(t, doc, 0)
	if got := model.RunText(p.Runs); got != "visible" {
		t.Errorf("text = %q, want field instruction dropped", got)
	}
}

func TestParseMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("[Content_Types].xml")
	w.Write([]byte(testContentTypes))
	zw.Close()
	c, err := container.OpenBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("OpenBytes() failed: %v", err)
	}

	_, err = Parse(c, Options{})
	if !errors.Is(err, ooxerr.ErrMalformedPackage) {
		t.Fatalf("Parse() error = %v, want MalformedPackage", err)
	}
}

func TestParseMalformedDocumentXML(t *testing.T) {
	c := buildDOCX(t, "", map[string]string{
		"word/document.xml": "<w:document><w:body><w:p>",
	})
	_, err := Parse(c, Options{})
	if !errors.Is(err, ooxerr.ErrMalformedXml) {
		t.Fatalf("Parse() error = %v, want MalformedXml", err)
	}
}

func TestParseMalformedStylesPart(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>`
	build := func() *container.Container {
		return buildDOCX(t, body, map[string]string{
			"word/styles.xml": "<w:styles><w:style>",
		})
	}

	_, err := Parse(build(), Options{})
	if !errors.Is(err, ooxerr.ErrMalformedXml) {
		t.Fatalf("strict Parse() error = %v, want MalformedXml", err)
	}

	doc, err := Parse(build(), Options{Lenient: true})
	if err != nil {
		t.Fatalf("lenient Parse() failed: %v", err)
	}
	if len(doc.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v, want 1 entry", doc.Diagnostics)
	}
	// The built-in style names still resolve without styles.xml.
	p := firstParagraph(t, doc, 0)
	if p.Outline != 1 || model.RunText(p.Runs) != "Intro" {
		t.Errorf("heading = outline %d, text %q", p.Outline, model.RunText(p.Runs))
	}
}

func TestBuiltInHeadingLevel(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"Heading1", 1},
		{"heading 3", 3},
		{"Heading9", 9},
		{"Title", 1},
		{"Heading10", 0},
		{"Normal", 0},
	}
	for _, tt := range tests {
		if got := builtInHeadingLevel(tt.name); got != tt.want {
			t.Errorf("builtInHeadingLevel(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
