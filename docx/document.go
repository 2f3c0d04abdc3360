package docx

import (
	"encoding/xml"
	"io"
)

// XML types mirroring the WordprocessingML surface consumed by the parser.
// encoding/xml matches on local element names, so the w: prefixes are
// omitted from the tags.

type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    bodyXML  `xml:"body"`
}

// bodyBlock is one ordered body-level element: exactly one field is set.
type bodyBlock struct {
	Paragraph *paragraphXML
	Table     *tableXML
	SectPr    bool
}

type bodyXML struct {
	Blocks []bodyBlock
}

// UnmarshalXML walks body children in order. Struct-tag decoding of
// separate p and tbl slices would lose the interleaving.
func (b *bodyXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return err
				}
				b.Blocks = append(b.Blocks, bodyBlock{Paragraph: &p})
			case "tbl":
				var tbl tableXML
				if err := d.DecodeElement(&tbl, &t); err != nil {
					return err
				}
				b.Blocks = append(b.Blocks, bodyBlock{Table: &tbl})
			case "sectPr":
				if err := d.Skip(); err != nil {
					return err
				}
				b.Blocks = append(b.Blocks, bodyBlock{SectPr: true})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

type paragraphXML struct {
	Props *pPrXML
	Items []parItem
}

// parItem is one ordered paragraph child: a run or a hyperlink group.
type parItem struct {
	Run       *runXML
	Hyperlink *hyperlinkXML
}

func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				var props pPrXML
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				p.Props = &props
			case "r":
				var r runXML
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Items = append(p.Items, parItem{Run: &r})
			case "hyperlink":
				var h hyperlinkXML
				if err := d.DecodeElement(&h, &t); err != nil {
					return err
				}
				p.Items = append(p.Items, parItem{Hyperlink: &h})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

type pPrXML struct {
	PStyle *valXML   `xml:"pStyle"`
	NumPr  *numPrXML `xml:"numPr"`
	SectPr *struct{} `xml:"sectPr"`
}

type numPrXML struct {
	Ilvl  *valXML `xml:"ilvl"`
	NumID *valXML `xml:"numId"`
}

type valXML struct {
	Val string `xml:"val,attr"`
}

type hyperlinkXML struct {
	ID     string   `xml:"id,attr"`
	Anchor string   `xml:"anchor,attr"`
	Runs   []runXML `xml:"r"`
}

// runItemKind discriminates ordered run children.
type runItemKind int

const (
	runItemText runItemKind = iota
	runItemTab
	runItemBreak
	runItemPageBreak
	runItemDrawing
)

type runItem struct {
	Kind    runItemKind
	Text    string
	Drawing *drawingXML
}

type runXML struct {
	Props *rPrXML
	Items []runItem
}

func (r *runXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				var props rPrXML
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				r.Props = &props
			case "t":
				var text string
				if err := d.DecodeElement(&text, &t); err != nil {
					return err
				}
				r.Items = append(r.Items, runItem{Kind: runItemText, Text: text})
			case "tab":
				if err := d.Skip(); err != nil {
					return err
				}
				r.Items = append(r.Items, runItem{Kind: runItemTab})
			case "br":
				kind := runItemBreak
				for _, a := range t.Attr {
					if a.Name.Local == "type" && a.Value == "page" {
						kind = runItemPageBreak
					}
				}
				if err := d.Skip(); err != nil {
					return err
				}
				r.Items = append(r.Items, runItem{Kind: kind})
			case "cr":
				if err := d.Skip(); err != nil {
					return err
				}
				r.Items = append(r.Items, runItem{Kind: runItemBreak})
			case "drawing":
				var dr drawingXML
				if err := d.DecodeElement(&dr, &t); err != nil {
					return err
				}
				r.Items = append(r.Items, runItem{Kind: runItemDrawing, Drawing: &dr})
			case "instrText":
				// Field instructions are not display text.
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

type rPrXML struct {
	Bold      *toggleXML `xml:"b"`
	Italic    *toggleXML `xml:"i"`
	Underline *valXML    `xml:"u"`
	Strike    *toggleXML `xml:"strike"`
	RStyle    *valXML    `xml:"rStyle"`
	VertAlign *valXML    `xml:"vertAlign"`
}

// toggleXML models on/off run properties where presence means on unless
// val is "0" or "false".
type toggleXML struct {
	Val string `xml:"val,attr"`
}

// on reports whether the toggle is set. A nil receiver means the property
// is absent.
func (t *toggleXML) on() bool {
	if t == nil {
		return false
	}
	return t.Val != "0" && t.Val != "false"
}

type drawingXML struct {
	Inline *drawingContentXML `xml:"inline"`
	Anchor *drawingContentXML `xml:"anchor"`
}

type drawingContentXML struct {
	DocPr docPrXML `xml:"docPr"`
	Blip  *blipXML `xml:"graphic>graphicData>pic>blipFill>blip"`
}

type docPrXML struct {
	Descr string `xml:"descr,attr"`
}

type blipXML struct {
	Embed string `xml:"embed,attr"`
}

// content returns whichever of inline or anchor is present.
func (d *drawingXML) content() *drawingContentXML {
	if d.Inline != nil {
		return d.Inline
	}
	return d.Anchor
}

type tableXML struct {
	Grid tblGridXML `xml:"tblGrid"`
	Rows []trXML    `xml:"tr"`
}

type tblGridXML struct {
	Cols []struct{} `xml:"gridCol"`
}

type trXML struct {
	Props *trPrXML `xml:"trPr"`
	Cells []tcXML  `xml:"tc"`
}

type trPrXML struct {
	TblHeader *toggleXML `xml:"tblHeader"`
}

type tcXML struct {
	Props  *tcPrXML
	Blocks []bodyBlock
}

// UnmarshalXML keeps cell content (paragraphs and nested tables) in order.
func (c *tcXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tcPr":
				var props tcPrXML
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				c.Props = &props
			case "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return err
				}
				c.Blocks = append(c.Blocks, bodyBlock{Paragraph: &p})
			case "tbl":
				var tbl tableXML
				if err := d.DecodeElement(&tbl, &t); err != nil {
					return err
				}
				c.Blocks = append(c.Blocks, bodyBlock{Table: &tbl})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

type tcPrXML struct {
	GridSpan *valXML    `xml:"gridSpan"`
	VMerge   *vMergeXML `xml:"vMerge"`
}

// vMergeXML: val="restart" starts a vertical span; an absent val marks a
// continuation cell that merges upward.
type vMergeXML struct {
	Val string `xml:"val,attr"`
}
