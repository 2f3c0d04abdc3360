package pptx

import "encoding/xml"

type presentationXML struct {
	XMLName  xml.Name `xml:"presentation"`
	SldIdLst struct {
		Ids []struct {
			// r:id is matched fully qualified because sldId also
			// carries a plain id attr.
			RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldId"`
	} `xml:"sldIdLst"`
}

type slideXML struct {
	XMLName xml.Name `xml:"sld"`
	CSld    cSldXML  `xml:"cSld"`
}

type notesSlideXML struct {
	XMLName xml.Name `xml:"notes"`
	CSld    cSldXML  `xml:"cSld"`
}

type cSldXML struct {
	SpTree spTreeXML `xml:"spTree"`
}

type spTreeXML struct {
	Shapes        []spXML           `xml:"sp"`
	GraphicFrames []graphicFrameXML `xml:"graphicFrame"`
	Pics          []picXML          `xml:"pic"`
	Groups        []spTreeXML       `xml:"grpSp"`
}

type spXML struct {
	NvSpPr struct {
		NvPr struct {
			Ph *struct {
				Type string `xml:"type,attr"`
			} `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

// isTitle reports whether the shape is a title placeholder.
func (sp *spXML) isTitle() bool {
	ph := sp.NvSpPr.NvPr.Ph
	return ph != nil && (ph.Type == "title" || ph.Type == "ctrTitle")
}

// isMetaPlaceholder reports whether the shape holds slide furniture (slide
// number, date, footer) rather than content.
func (sp *spXML) isMetaPlaceholder() bool {
	ph := sp.NvSpPr.NvPr.Ph
	if ph == nil {
		return false
	}
	switch ph.Type {
	case "sldNum", "dt", "ftr", "hdr":
		return true
	}
	return false
}

type txBodyXML struct {
	Paragraphs []aParXML `xml:"p"`
}

type aParXML struct {
	PPr  *aPPrXML  `xml:"pPr"`
	Runs []aRunXML `xml:"r"`
}

type aPPrXML struct {
	Lvl    string    `xml:"lvl,attr"`
	BuNone *struct{} `xml:"buNone"`
	BuChar *struct {
		Char string `xml:"char,attr"`
	} `xml:"buChar"`
	BuAutoNum *struct {
		Type    string `xml:"type,attr"`
		StartAt string `xml:"startAt,attr"`
	} `xml:"buAutoNum"`
}

type aRunXML struct {
	RPr *aRPrXML `xml:"rPr"`
	T   string   `xml:"t"`
}

type aRPrXML struct {
	B        string `xml:"b,attr"`
	I        string `xml:"i,attr"`
	U        string `xml:"u,attr"`
	Strike   string `xml:"strike,attr"`
	Baseline string `xml:"baseline,attr"`
	Hlink    *struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"hlinkClick"`
}

type graphicFrameXML struct {
	NvPr struct {
		CNvPr struct {
			Name string `xml:"name,attr"`
		} `xml:"cNvPr"`
	} `xml:"nvGraphicFramePr"`
	Graphic struct {
		Data struct {
			URI   string   `xml:"uri,attr"`
			Tbl   *aTblXML `xml:"tbl"`
			Chart *struct {
				RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
			} `xml:"chart"`
		} `xml:"graphicData"`
	} `xml:"graphic"`
}

type aTblXML struct {
	TblPr *struct {
		FirstRow string `xml:"firstRow,attr"`
	} `xml:"tblPr"`
	Grid struct {
		Cols []struct{} `xml:"gridCol"`
	} `xml:"tblGrid"`
	Rows []aTrXML `xml:"tr"`
}

type aTrXML struct {
	Cells []aTcXML `xml:"tc"`
}

// aTcXML: gridSpan/rowSpan mark the top-left of a merged region; hMerge and
// vMerge mark the covered continuation cells.
type aTcXML struct {
	GridSpan string     `xml:"gridSpan,attr"`
	RowSpan  string     `xml:"rowSpan,attr"`
	HMerge   string     `xml:"hMerge,attr"`
	VMerge   string     `xml:"vMerge,attr"`
	TxBody   *txBodyXML `xml:"txBody"`
}

type picXML struct {
	NvPicPr struct {
		CNvPr struct {
			Name  string `xml:"name,attr"`
			Descr string `xml:"descr,attr"`
		} `xml:"cNvPr"`
	} `xml:"nvPicPr"`
	BlipFill struct {
		Blip *struct {
			Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
		} `xml:"blip"`
	} `xml:"blipFill"`
}
