package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/ooxmark/model"
	"github.com/tsawler/ooxmark/ooxerr"
)

// ToMarkdown renders a document to Markdown per the given options. Output
// is UTF-8 with LF line endings and a single trailing newline (empty
// documents yield an empty string, or just the frontmatter block).
func ToMarkdown(doc *model.Document, opts Options) (string, error) {
	opts = opts.normalized()
	var out strings.Builder

	if opts.FrontMatter && !doc.Meta.IsEmpty() {
		fm, err := frontmatter(&doc.Meta)
		if err != nil {
			return "", ooxerr.Render(fmt.Errorf("rendering frontmatter: %w", err))
		}
		out.WriteString(fm)
	}

	sep := "\n\n"
	if doc.Format == model.FormatPptx {
		sep = "\n\n---\n\n"
	}

	var sections []string
	for i := range doc.Sections {
		s := renderSection(doc, &doc.Sections[i], opts)
		if s != "" {
			sections = append(sections, s)
		}
	}
	body := strings.Join(sections, sep)

	if opts.Cleanup != CleanupNone {
		body = Clean(body, opts.Cleanup)
	} else {
		body = strings.TrimRight(body, " \t\n")
		if body != "" {
			body += "\n"
		}
	}
	out.WriteString(body)
	return out.String(), nil
}

// frontmatter renders document metadata as a YAML block. Field order is
// fixed by the Metadata struct.
func frontmatter(meta *model.Metadata) (string, error) {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return "", err
	}
	return "---\n" + string(data) + "---\n\n", nil
}

// renderSection renders one section without the inter-section separator.
// XLSX sheet names become ## headings; PPTX slide titles are already
// present as outline-1 paragraphs.
func renderSection(doc *model.Document, sec *model.Section, opts Options) string {
	var parts []string
	if sec.Name != "" && doc.Format == model.FormatXlsx {
		parts = append(parts, "## "+sec.Name)
	}

	lists := newListNumbering()
	prevList := false
	for _, block := range sec.Blocks {
		text, isList := renderBlock(block, opts, lists)
		if text == "" {
			prevList = isList
			continue
		}
		if isList && prevList && len(parts) > 0 {
			// Consecutive list items stay on adjacent lines.
			parts[len(parts)-1] += "\n" + text
		} else {
			parts = append(parts, text)
		}
		prevList = isList
	}

	gap := "\n\n"
	if opts.ParagraphSpacing {
		gap = "\n\n\n"
	}
	return strings.Join(parts, gap)
}

// listNumbering tracks ordered-list counters per nesting level across
// consecutive list items.
type listNumbering struct {
	counters map[int]int
}

func newListNumbering() *listNumbering {
	return &listNumbering{counters: make(map[int]int)}
}

// next returns the number for an ordered item at the given level, starting
// from start when the run begins and incrementing thereafter.
func (l *listNumbering) next(level, start int) int {
	if _, ok := l.counters[level]; !ok {
		l.counters[level] = start
	} else {
		l.counters[level]++
	}
	return l.counters[level]
}

// reset forgets counters when a non-list block interrupts the list.
func (l *listNumbering) reset() {
	l.counters = make(map[int]int)
}

func renderBlock(block model.Block, opts Options, lists *listNumbering) (text string, isList bool) {
	switch v := block.(type) {
	case *model.Paragraph:
		if v.List == nil {
			lists.reset()
			return renderParagraph(v, opts), false
		}
		return renderListItem(v, opts, lists), true
	case *model.Table:
		lists.reset()
		return renderTable(v, opts), false
	case *model.Image:
		lists.reset()
		return renderImage(v.ResourceID, v.Alt), false
	case *model.SpeakerNotes:
		lists.reset()
		return renderNotes(v, opts), false
	case *model.PageBreak, *model.Separator:
		lists.reset()
		return "---", false
	default:
		return "", false
	}
}

func renderParagraph(p *model.Paragraph, opts Options) string {
	var out strings.Builder
	if p.Outline > 0 {
		level := p.Outline
		if level > opts.MaxHeading {
			level = opts.MaxHeading
		}
		out.WriteString(strings.Repeat("#", level))
		out.WriteString(" ")
	}
	out.WriteString(renderRuns(p.Runs, opts))

	for _, img := range p.Images {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(renderImage(img.ResourceID, img.Alt))
	}
	return strings.TrimRight(out.String(), " \t")
}

func renderListItem(p *model.Paragraph, opts Options, lists *listNumbering) string {
	indent := strings.Repeat("  ", p.List.Level)
	marker := "- "
	if p.List.Ordered {
		start := p.List.Start
		if start < 1 {
			start = 1
		}
		marker = fmt.Sprintf("%d. ", lists.next(p.List.Level, start))
	}
	return indent + marker + renderRuns(p.Runs, opts)
}

// renderRuns renders merged runs with smart spacing at run boundaries.
func renderRuns(runs []model.Run, opts Options) string {
	runs = model.MergeRuns(runs)
	var out string
	for _, run := range runs {
		text := renderRun(&run, opts)
		if text == "" {
			continue
		}
		if out != "" {
			last, _ := utf8.DecodeLastRuneInString(out)
			first, _ := utf8.DecodeRuneInString(text)
			if !isSpaceRune(last) && !isSpaceRune(first) && !noSpaceBefore(first) {
				out += " "
			}
		}
		out += text
	}
	return out
}

// renderRun applies styling innermost-first: code, then strike, then
// bold/italic, with any hyperlink wrapping the result.
func renderRun(run *model.Run, opts Options) string {
	if run.Text == "" {
		return ""
	}
	text := run.Text
	if opts.EscapeSpecial {
		text = EscapeMarkdown(text)
	}
	if run.Style.Code {
		text = "`" + strings.ReplaceAll(text, "`", "\\`") + "`"
	}
	if run.Style.Strike {
		text = "~~" + text + "~~"
	}
	switch {
	case run.Style.Bold && run.Style.Italic:
		text = "***" + text + "***"
	case run.Style.Bold:
		text = "**" + text + "**"
	case run.Style.Italic:
		text = "*" + text + "*"
	}
	if run.Style.Underline {
		text = "<u>" + text + "</u>"
	}
	switch {
	case run.Style.Subscript:
		text = "<sub>" + text + "</sub>"
	case run.Style.Superscript:
		text = "<sup>" + text + "</sup>"
	}
	if run.Hyperlink != "" {
		text = "[" + text + "](" + run.Hyperlink + ")"
	}
	return text
}

// noSpaceBefore reports whether a space never belongs before c.
func noSpaceBefore(c rune) bool {
	switch c {
	case '.', ',', ':', ';', '!', '?', ')', ']', '}', '"', '\'', '…':
		return true
	}
	return false
}

func isSpaceRune(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

func renderImage(resourceID, alt string) string {
	if alt == "" {
		alt = "image"
	}
	return "![" + alt + "](" + resourceID + ")"
}

// renderNotes emits speaker notes as a quoted block.
func renderNotes(n *model.SpeakerNotes, opts Options) string {
	text := renderRuns(n.Runs, opts)
	if text == "" {
		return ""
	}
	return "> **Notes:**\n> " + text
}

// EscapeMarkdown backslash-escapes characters that could trigger Markdown
// formatting. Backslash, backtick, and pipe are always escaped. Emphasis
// markers * and _ are escaped only where they could open or close
// emphasis: a marker adjacent to whitespace, brackets, or similar openers
// and closers on its outer side cannot form a pair, so patterns like
// (*note) and *TAG: survive unescaped.
func EscapeMarkdown(s string) string {
	chars := []rune(s)
	var out strings.Builder
	out.Grow(len(s) + 8)

	for i, c := range chars {
		switch c {
		case '\\', '`', '|':
			out.WriteRune('\\')
			out.WriteRune(c)
		case '*', '_':
			afterOpener := i == 0 || isEmphasisBoundary(chars[i-1])
			beforeCloser := i == len(chars)-1 || isEmphasisBoundary(chars[i+1])
			if afterOpener || beforeCloser {
				out.WriteRune(c)
			} else {
				out.WriteRune('\\')
				out.WriteRune(c)
			}
		default:
			out.WriteRune(c)
		}
	}
	return out.String()
}

func isEmphasisBoundary(c rune) bool {
	switch c {
	case '(', ')', '[', ']', '{', '}', ':', '-', '/', '\\':
		return true
	}
	return c == ' ' || c == '\t' || c == '\n'
}
