// Package format detects which OOXML document format a byte stream holds.
package format

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"path/filepath"
	"strings"

	"github.com/richardlehane/mscfb"

	"github.com/tsawler/ooxmark/ooxerr"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// XLSX indicates a Microsoft Excel (.xlsx) workbook.
	XLSX
	// PPTX indicates a Microsoft PowerPoint (.pptx) presentation.
	PPTX
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case XLSX:
		return ".xlsx"
	case PPTX:
		return ".pptx"
	default:
		return ""
	}
}

// Main-document content types from the OOXML spec.
const (
	contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	contentTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	contentTypePptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
)

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFromExtension determines the format from a filename extension.
func DetectFromExtension(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return DOCX
	case ".xlsx":
		return XLSX
	case ".pptx":
		return PPTX
	default:
		return Unknown
	}
}

// Detect determines the document format of the given bytes. The filename is
// optional and used only as a fallback when the package declares no main
// part; pass "" for pure byte inputs.
//
// Legacy binary Office files (.doc/.xls/.ppt, OLE compound documents) are
// recognized and rejected with a specific message.
func Detect(data []byte, filename string) (Format, error) {
	if bytes.HasPrefix(data, oleMagic) {
		// Confirm it really is a compound file before naming it one.
		if _, err := mscfb.New(bytes.NewReader(data)); err == nil {
			return Unknown, ooxerr.Unsupported("legacy binary Office format (.doc/.xls/.ppt); unrecognized file format")
		}
		return Unknown, ooxerr.Unsupported("input is not a ZIP archive; unrecognized file format")
	}
	if !bytes.HasPrefix(data, zipMagic) {
		return Unknown, ooxerr.Unsupported("input is not a ZIP archive; unrecognized file format")
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown, ooxerr.Package(err)
	}
	if f := detectFromContentTypes(zr); f != Unknown {
		return f, nil
	}
	if filename != "" {
		if f := DetectFromExtension(filename); f != Unknown {
			return f, nil
		}
	}
	return Unknown, ooxerr.Unsupported("ZIP package has no recognized OOXML main part; unrecognized file format")
}

type contentTypesXML struct {
	XMLName   xml.Name `xml:"Types"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// detectFromContentTypes finds the main-document Override in
// [Content_Types].xml.
func detectFromContentTypes(zr *zip.Reader) Format {
	f, err := zr.Open("[Content_Types].xml")
	if err != nil {
		return Unknown
	}
	defer f.Close()

	var types contentTypesXML
	if err := xml.NewDecoder(f).Decode(&types); err != nil {
		return Unknown
	}
	for _, o := range types.Overrides {
		switch o.ContentType {
		case contentTypeDocx:
			return DOCX
		case contentTypeXlsx:
			return XLSX
		case contentTypePptx:
			return PPTX
		}
	}
	return Unknown
}
