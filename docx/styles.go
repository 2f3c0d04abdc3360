package docx

import (
	"encoding/xml"
	"strconv"
	"strings"
)

type stylesXML struct {
	XMLName xml.Name   `xml:"styles"`
	Styles  []styleXML `xml:"style"`
}

type styleXML struct {
	Type    string  `xml:"type,attr"`
	StyleID string  `xml:"styleId,attr"`
	Name    *valXML `xml:"name"`
	BasedOn *valXML `xml:"basedOn"`
	PPr     *struct {
		OutlineLvl *valXML `xml:"outlineLvl"`
	} `xml:"pPr"`
}

// styleResolver maps paragraph style ids to outline levels.
type styleResolver struct {
	outline map[string]int
}

// newStyleResolver builds the style lookup from word/styles.xml content.
// Pass nil data when the part is absent; built-in style ids still resolve.
// Malformed data returns the empty lookup plus the decode error so the
// caller can choose between failing and recording a diagnostic.
func newStyleResolver(data []byte) (*styleResolver, error) {
	r := &styleResolver{outline: make(map[string]int)}
	if len(data) == 0 {
		return r, nil
	}
	var styles stylesXML
	if err := xml.Unmarshal(data, &styles); err != nil {
		return r, err
	}
	for _, s := range styles.Styles {
		if s.Type != "" && s.Type != "paragraph" {
			continue
		}
		lvl := 0
		if s.PPr != nil && s.PPr.OutlineLvl != nil {
			// outlineLvl is 0-based; heading level is 1-based.
			if n, err := strconv.Atoi(s.PPr.OutlineLvl.Val); err == nil && n >= 0 && n <= 8 {
				lvl = n + 1
			}
		}
		if lvl == 0 && s.Name != nil {
			lvl = builtInHeadingLevel(s.Name.Val)
		}
		if lvl == 0 {
			lvl = builtInHeadingLevel(s.StyleID)
		}
		if lvl > 0 {
			r.outline[s.StyleID] = lvl
		}
	}
	return r, nil
}

// outlineFor returns the outline level for a paragraph style id, falling
// back to built-in heading naming when styles.xml did not define it.
func (r *styleResolver) outlineFor(styleID string) int {
	if styleID == "" {
		return 0
	}
	if lvl, ok := r.outline[styleID]; ok {
		return lvl
	}
	return builtInHeadingLevel(styleID)
}

// builtInHeadingLevel recognizes the stock Word heading styles: "Heading1"
// through "Heading9" (and "heading 1" style names), plus "Title" which is
// treated as level 1 for predictable output.
func builtInHeadingLevel(name string) int {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "title" {
		return 1
	}
	rest, ok := strings.CutPrefix(lower, "heading")
	if !ok {
		return 0
	}
	rest = strings.TrimSpace(rest)
	if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 9 {
		return n
	}
	return 0
}
