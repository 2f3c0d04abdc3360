package docx

import (
	"encoding/xml"
	"strconv"
)

type numberingXML struct {
	XMLName      xml.Name         `xml:"numbering"`
	AbstractNums []abstractNumXML `xml:"abstractNum"`
	Nums         []numDefXML      `xml:"num"`
}

type abstractNumXML struct {
	ID     string   `xml:"abstractNumId,attr"`
	Levels []lvlXML `xml:"lvl"`
}

type lvlXML struct {
	Ilvl   string  `xml:"ilvl,attr"`
	Start  *valXML `xml:"start"`
	NumFmt *valXML `xml:"numFmt"`
}

type numDefXML struct {
	ID          string  `xml:"numId,attr"`
	AbstractRef *valXML `xml:"abstractNumId"`
}

// listLevel describes one level of a numbering definition.
type listLevel struct {
	Ordered bool
	Start   int
}

// numbering resolves numId+ilvl pairs from word/numbering.xml.
type numbering struct {
	// levels maps numId to per-ilvl definitions.
	levels map[string]map[int]listLevel
}

// newNumbering parses numbering definitions. Nil data yields an empty
// lookup; list paragraphs then default to unordered. Malformed data returns
// the empty lookup plus the decode error.
func newNumbering(data []byte) (*numbering, error) {
	n := &numbering{levels: make(map[string]map[int]listLevel)}
	if len(data) == 0 {
		return n, nil
	}
	var parsed numberingXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return n, err
	}

	abstract := make(map[string]map[int]listLevel, len(parsed.AbstractNums))
	for _, a := range parsed.AbstractNums {
		levels := make(map[int]listLevel, len(a.Levels))
		for _, l := range a.Levels {
			ilvl, err := strconv.Atoi(l.Ilvl)
			if err != nil {
				continue
			}
			def := listLevel{Start: 1}
			if l.NumFmt != nil && l.NumFmt.Val != "bullet" && l.NumFmt.Val != "none" {
				def.Ordered = true
			}
			if l.Start != nil {
				if s, err := strconv.Atoi(l.Start.Val); err == nil {
					def.Start = s
				}
			}
			levels[ilvl] = def
		}
		abstract[a.ID] = levels
	}
	for _, num := range parsed.Nums {
		if num.AbstractRef == nil {
			continue
		}
		if levels, ok := abstract[num.AbstractRef.Val]; ok {
			n.levels[num.ID] = levels
		}
	}
	return n, nil
}

// level returns the definition for a numId and indent level, defaulting to
// an unordered level when undefined.
func (n *numbering) level(numID string, ilvl int) listLevel {
	if levels, ok := n.levels[numID]; ok {
		if def, ok := levels[ilvl]; ok {
			return def
		}
	}
	return listLevel{Ordered: false, Start: 1}
}
