package render

import (
	"strings"

	"github.com/tsawler/ooxmark/model"
)

// ToText renders a document as plain text: run text paragraph by
// paragraph, tables as tab-separated rows, sections separated by a blank
// line. No markup characters are produced.
func ToText(doc *model.Document) string {
	var sections []string
	for i := range doc.Sections {
		if s := textSection(&doc.Sections[i]); s != "" {
			sections = append(sections, s)
		}
	}
	out := strings.Join(sections, "\n\n")
	if out != "" {
		out += "\n"
	}
	return out
}

func textSection(sec *model.Section) string {
	var lines []string
	if sec.Name != "" && !nameRepeatedInBlocks(sec) {
		lines = append(lines, sec.Name)
	}
	for _, block := range sec.Blocks {
		switch v := block.(type) {
		case *model.Paragraph:
			text := model.RunText(v.Runs)
			if strings.TrimSpace(text) == "" {
				continue
			}
			if v.List != nil {
				text = strings.Repeat("  ", v.List.Level) + "- " + text
			}
			lines = append(lines, text)
		case *model.Table:
			for _, row := range v.Rows {
				var cells []string
				for ci := range row {
					cells = append(cells, strings.ReplaceAll(cellPlain(&row[ci]), "\t", " "))
				}
				lines = append(lines, strings.Join(cells, "\t"))
			}
		case *model.Image:
			// Images carry no visible text.
		case *model.SpeakerNotes:
			if text := model.RunText(v.Runs); strings.TrimSpace(text) != "" {
				lines = append(lines, text)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// nameRepeatedInBlocks reports whether the section's first block already
// carries the section name, as PPTX slide titles do.
func nameRepeatedInBlocks(sec *model.Section) bool {
	if len(sec.Blocks) == 0 {
		return false
	}
	p, ok := sec.Blocks[0].(*model.Paragraph)
	return ok && strings.TrimSpace(model.RunText(p.Runs)) == strings.TrimSpace(sec.Name)
}
