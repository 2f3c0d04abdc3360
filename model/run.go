package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// RunStyle is the set of character styles applied to a run.
type RunStyle struct {
	Bold        bool `json:"bold,omitempty"`
	Italic      bool `json:"italic,omitempty"`
	Underline   bool `json:"underline,omitempty"`
	Strike      bool `json:"strike,omitempty"`
	Code        bool `json:"code,omitempty"`
	Subscript   bool `json:"subscript,omitempty"`
	Superscript bool `json:"superscript,omitempty"`
}

// IsPlain reports whether no style flag is set.
func (s RunStyle) IsPlain() bool {
	return s == RunStyle{}
}

// Run is a span of text with uniform styling. Text never contains newline
// characters; a line break within a paragraph splits its run list.
type Run struct {
	Text      string   `json:"text"`
	Style     RunStyle `json:"style,omitempty"`
	Hyperlink string   `json:"hyperlink,omitempty"`
}

// RunText concatenates the text of the given runs.
func RunText(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// MergeRuns concatenates adjacent runs with identical style and hyperlink,
// left to right. When a CJK character meets an ASCII letter or digit at a
// merge boundary a single space is inserted, unless either side already
// supplies whitespace.
func MergeRuns(runs []Run) []Run {
	if len(runs) < 2 {
		return runs
	}
	merged := make([]Run, 0, len(runs))
	for _, r := range runs {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Style == r.Style && last.Hyperlink == r.Hyperlink {
				if needsCJKSpace(last.Text, r.Text) {
					last.Text += " "
				}
				last.Text += r.Text
				continue
			}
		}
		merged = append(merged, r)
	}
	return merged
}

// needsCJKSpace reports whether a space belongs between a and b: one side
// ends or starts with a CJK character and the other with an ASCII letter or
// digit, and neither side supplies whitespace at the boundary.
func needsCJKSpace(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(a)
	first, _ := utf8.DecodeRuneInString(b)
	if unicode.IsSpace(last) || unicode.IsSpace(first) {
		return false
	}
	return (isCJK(last) && isASCIIWord(first)) || (isASCIIWord(last) && isCJK(first))
}

func isASCIIWord(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// isCJK reports whether r belongs to the CJK Unified Ideographs, Hiragana,
// Katakana, or Hangul blocks.
func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK Extension A
		return true
	case r >= 0x3040 && r <= 0x309F: // Hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // Katakana
		return true
	case r >= 0xAC00 && r <= 0xD7AF: // Hangul Syllables
		return true
	case r >= 0x1100 && r <= 0x11FF: // Hangul Jamo
		return true
	}
	return false
}
