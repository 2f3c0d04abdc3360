package ooxmark

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/ooxmark/model"
	"github.com/tsawler/ooxmark/ooxerr"
	"github.com/tsawler/ooxmark/render"
)

func zipParts(t *testing.T, parts map[string]string) []byte {
	t.Helper()
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
	return buf.Bytes()
}

func docxBytes(t *testing.T, body string) []byte {
	t.Helper()
	return zipParts(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"word/styles.xml": `<?xml version="1.0"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:pPr><w:outlineLvl w:val="0"/></w:pPr></w:style>
</w:styles>`,
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>` + body + `</w:body>
</w:document>`,
	})
}

func xlsxBytes(t *testing.T) []byte {
	t.Helper()
	return zipParts(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
</Types>`,
		"xl/workbook.xml": `<?xml version="1.0"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"
          xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets><sheet name="Data" sheetId="1" r:id="rId1"/></sheets>
</workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
</Relationships>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1"><c r="A1" t="inlineStr"><is><t>name</t></is></c><c r="B1" t="inlineStr"><is><t>age</t></is></c></row>
    <row r="2"><c r="A2" t="inlineStr"><is><t>kim</t></is></c><c r="B2"><v>37</v></c></row>
  </sheetData>
</worksheet>`,
	})
}

func pptxBytes(t *testing.T, titles ...string) []byte {
	t.Helper()
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
</Types>`,
	}
	var ids, rels string
	for i, title := range titles {
		ids += fmt.Sprintf(`<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+1)
		rels += fmt.Sprintf(`<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, i+1)
		parts[fmt.Sprintf("ppt/slides/slide%d.xml", i+1)] = `<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
       xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree>
    <p:sp><p:nvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
      <p:txBody><a:p><a:r><a:t>` + title + `</a:t></a:r></a:p></p:txBody></p:sp>
    <p:sp><p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr>
      <p:txBody><a:p><a:r><a:t>x</a:t></a:r></a:p></p:txBody></p:sp>
  </p:spTree></p:cSld>
</p:sld>`
	}
	parts["ppt/presentation.xml"] = `<?xml version="1.0"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
                xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:sldIdLst>` + ids + `</p:sldIdLst>
</p:presentation>`
	parts["ppt/_rels/presentation.xml.rels"] = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + rels + `</Relationships>`
	return zipParts(t, parts)
}

func TestMarkdownDocxHeading(t *testing.T) {
	data := docxBytes(t, `
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>
<w:p><w:r><w:t>Hello</w:t></w:r></w:p>`)

	got, err := FromBytes(data).Markdown(render.DefaultOptions())
	if err != nil {
		t.Fatalf("Markdown() failed: %v", err)
	}
	if got != "# Intro\n\nHello\n" {
		t.Errorf("Markdown() = %q", got)
	}
}

func TestMarkdownXlsxSheet(t *testing.T) {
	got, err := FromBytes(xlsxBytes(t)).Markdown(render.DefaultOptions())
	if err != nil {
		t.Fatalf("Markdown() failed: %v", err)
	}
	want := "## Data\n\n| name | age |\n| --- | --- |\n| kim | 37 |\n"
	if got != want {
		t.Errorf("Markdown() = %q, want %q", got, want)
	}
}

func TestMarkdownPptxSlides(t *testing.T) {
	got, err := FromBytes(pptxBytes(t, "A", "B")).Markdown(render.DefaultOptions())
	if err != nil {
		t.Fatalf("Markdown() failed: %v", err)
	}
	want := "# A\n\n- x\n\n---\n\n# B\n\n- x\n"
	if got != want {
		t.Errorf("Markdown() = %q, want %q", got, want)
	}
}

func TestMarkdownBoldRun(t *testing.T) {
	data := docxBytes(t, `
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Bold</w:t></w:r><w:r><w:t xml:space="preserve"> then plain</w:t></w:r></w:p>`)

	got, err := FromBytes(data).Markdown(render.DefaultOptions())
	if err != nil {
		t.Fatalf("Markdown() failed: %v", err)
	}
	if got != "**Bold** then plain\n" {
		t.Errorf("Markdown() = %q", got)
	}
}

func TestMarkdownMergedTableHTMLFallback(t *testing.T) {
	data := docxBytes(t, `
<w:tbl>
  <w:tblGrid><w:gridCol/><w:gridCol/></w:tblGrid>
  <w:tr><w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p><w:r><w:t>H</w:t></w:r></w:p></w:tc></w:tr>
  <w:tr><w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>b</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>`)

	opts := render.DefaultOptions()
	opts.TableMode = render.TableHTML
	got, err := FromBytes(data).Markdown(opts)
	if err != nil {
		t.Fatalf("Markdown() failed: %v", err)
	}
	if !strings.Contains(got, `<td colspan="2">H</td>`) {
		t.Errorf("Markdown() = %q, missing colspan cell", got)
	}
}

func TestUnsupportedInput(t *testing.T) {
	_, err := ParseBytes([]byte("not an office document at all"))
	if !errors.Is(err, ooxerr.ErrUnsupportedFormat) {
		t.Fatalf("ParseBytes() error = %v, want UnsupportedFormat", err)
	}
	if !strings.Contains(err.Error(), "format") {
		t.Errorf("error %q does not mention format", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	if err := os.WriteFile(path, docxBytes(t, `<w:p><w:r><w:t>from disk</w:t></w:r></w:p>`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	doc, err := Open(path).Parse()
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if doc.Format != model.FormatDocx || doc.SectionCount() != 1 {
		t.Errorf("doc = %+v", doc)
	}

	_, err = Open(filepath.Join(t.TempDir(), "missing.docx")).Parse()
	if !errors.Is(err, ooxerr.ErrIo) {
		t.Errorf("missing file error = %v, want IoError", err)
	}
}

func TestFromReader(t *testing.T) {
	data := docxBytes(t, `<w:p><w:r><w:t>streamed</w:t></w:r></w:p>`)
	text, err := FromReader(bytes.NewReader(data)).Text()
	if err != nil {
		t.Fatalf("Text() failed: %v", err)
	}
	if text != "streamed\n" {
		t.Errorf("Text() = %q", text)
	}
}

func TestMarkdownFlags(t *testing.T) {
	data := docxBytes(t, `<w:p><w:r><w:t>a*b</w:t></w:r></w:p>`)

	got, err := FromBytes(data).MarkdownFlags(render.FlagEscapeSpecial)
	if err != nil {
		t.Fatalf("MarkdownFlags() failed: %v", err)
	}
	if got != "a\\*b\n" {
		t.Errorf("MarkdownFlags() = %q", got)
	}
}

func TestJSONOutput(t *testing.T) {
	out, err := FromBytes(xlsxBytes(t)).JSON(render.JSONCompact)
	if err != nil {
		t.Fatalf("JSON() failed: %v", err)
	}
	if !strings.Contains(out, `"name":"Data"`) || !strings.Contains(out, `"type":"table"`) {
		t.Errorf("JSON() = %q", out)
	}
}

func TestMust(t *testing.T) {
	doc := Must(ParseBytes(docxBytes(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`)))
	if doc.SectionCount() != 1 {
		t.Errorf("SectionCount() = %d", doc.SectionCount())
	}

	defer func() {
		if recover() == nil {
			t.Error("Must() did not panic on error")
		}
	}()
	Must(ParseBytes([]byte("garbage")))
}
