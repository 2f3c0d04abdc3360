package render

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/ooxmark/model"
)

// Clean applies the cleanup preset's stages to rendered text, in order:
// string normalization, line cleaning, structure filtering, and final
// whitespace normalization.
//
//	Minimal:    normalize strings, final normalize
//	Standard:   + clean lines
//	Aggressive: + filter structure
func Clean(text string, preset CleanupPreset) string {
	if preset == CleanupNone {
		return text
	}
	text = normalizeStrings(text)
	if preset == CleanupStandard || preset == CleanupAggressive {
		text = cleanLines(text)
	}
	if preset == CleanupAggressive {
		text = filterStructure(text)
	}
	return finalNormalize(text)
}

// CleanDocument applies stage 1 and stage 3 semantics to the model itself:
// run text normalization and, for aggressive presets, removal of empty
// paragraphs and all-whitespace tables.
func CleanDocument(doc *model.Document, preset CleanupPreset) {
	if preset == CleanupNone {
		return
	}
	for si := range doc.Sections {
		sec := &doc.Sections[si]
		for _, block := range sec.Blocks {
			normalizeBlockStrings(block)
		}
		if preset == CleanupAggressive {
			sec.Blocks = filterBlocks(sec.Blocks)
		}
	}
}

func normalizeBlockStrings(block model.Block) {
	switch v := block.(type) {
	case *model.Paragraph:
		for i := range v.Runs {
			v.Runs[i].Text = normalizeStrings(v.Runs[i].Text)
		}
	case *model.SpeakerNotes:
		for i := range v.Runs {
			v.Runs[i].Text = normalizeStrings(v.Runs[i].Text)
		}
	case *model.Table:
		for ri := range v.Rows {
			for ci := range v.Rows[ri] {
				for _, b := range v.Rows[ri][ci].Blocks {
					normalizeBlockStrings(b)
				}
			}
		}
	}
}

func filterBlocks(blocks []model.Block) []model.Block {
	var out []model.Block
	for _, block := range blocks {
		switch v := block.(type) {
		case *model.Paragraph:
			if strings.TrimSpace(model.RunText(v.Runs)) == "" && len(v.Images) == 0 {
				continue
			}
		case *model.Table:
			if tableIsBlank(v) {
				continue
			}
		}
		out = append(out, block)
	}
	return out
}

func tableIsBlank(t *model.Table) bool {
	for _, row := range t.Rows {
		for ci := range row {
			if strings.TrimSpace(cellPlain(&row[ci])) != "" {
				return false
			}
		}
	}
	return true
}

// bulletGlyphs are list glyphs replaced with a plain hyphen.
var bulletGlyphs = map[rune]bool{
	'•': true, '▪': true, '●': true, '◦': true, '‣': true, '·': true,
}

// smartQuotes maps typographic quotes to their ASCII forms.
var smartQuotes = map[rune]rune{
	'“': '"', '”': '"', '„': '"',
	'‘': '\'', '’': '\'', '‚': '\'',
}

// normalizeStrings is cleanup stage 1: NFC normalization, bullet glyph and
// smart quote standardization, and removal of zero-width and private-use
// characters.
func normalizeStrings(text string) string {
	text = norm.NFC.String(text)
	var out strings.Builder
	out.Grow(len(text))
	for _, r := range text {
		switch {
		case bulletGlyphs[r]:
			out.WriteRune('-')
		case smartQuotes[r] != 0:
			out.WriteRune(smartQuotes[r])
		case r >= 0x200B && r <= 0x200D, r == 0xFEFF:
			// Zero-width characters.
		case r >= 0xE000 && r <= 0xF8FF:
			// Private-use area, usually symbol-font bullet remnants.
		case r == '\u00A0':
			// Non-breaking space becomes a regular space.
			out.WriteRune(' ')
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}

var (
	pageNumberRe = regexp.MustCompile(`^\s*\d+\s*$`)
	pageOfRe     = regexp.MustCompile(`(?i)^\s*page\s+\d+\s+of\s+\d+\s*$`)
	tocLeaderRe  = regexp.MustCompile(`\.{4,}\s*\d+\s*$`)
)

// cleanLines is cleanup stage 2: drops page-number lines, running header
// and footer lines (short lines repeating three or more times), and
// table-of-contents dot leaders. A leading frontmatter block passes
// through untouched.
func cleanLines(text string) string {
	lines := strings.Split(text, "\n")

	fmEnd := frontmatterEnd(lines)

	// Count short-line repetitions to spot running headers and footers.
	repeats := make(map[string]int)
	for i, line := range lines {
		if i < fmEnd {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && len(trimmed) <= 60 && !strings.HasPrefix(trimmed, "|") && !strings.HasPrefix(trimmed, "#") {
			repeats[trimmed]++
		}
	}

	var out []string
	for i, line := range lines {
		if i < fmEnd {
			out = append(out, line)
			continue
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			out = append(out, line)
		case pageNumberRe.MatchString(line), pageOfRe.MatchString(line):
			// Dropped.
		case tocLeaderRe.MatchString(trimmed):
			// Dropped.
		case repeats[trimmed] >= 3 && !strings.HasPrefix(trimmed, "|") && !strings.HasPrefix(trimmed, "#"):
			// Dropped as a running header or footer.
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// frontmatterEnd returns the index one past the closing --- of a leading
// frontmatter block, or 0 when there is none.
func frontmatterEnd(lines []string) int {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return i + 1
		}
	}
	return 0
}

var (
	emptyTableRowRe = regexp.MustCompile(`^\s*\|[\s|]*\|\s*$`)
	emptyHeadingRe  = regexp.MustCompile(`^\s*#+\s*$`)
)

// filterStructure is cleanup stage 3: drops table rows whose cells are all
// empty and headings with no text.
func filterStructure(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && trimmed != "| --- |" {
			if emptyTableRowRe.MatchString(line) && !strings.Contains(line, "---") {
				continue
			}
			if emptyHeadingRe.MatchString(line) {
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

var excessBlankRe = regexp.MustCompile(`\n{4,}`)

// finalNormalize is cleanup stage 4: collapses runs of three or more blank
// lines to two, strips trailing whitespace per line, and ends the text
// with exactly one newline.
func finalNormalize(text string) string {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	text = strings.Join(lines, "\n")
	text = excessBlankRe.ReplaceAllString(text, "\n\n\n")
	text = strings.TrimLeft(text, "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}
	return text + "\n"
}
