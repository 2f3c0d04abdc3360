package model

import (
	"bytes"
	"image"
	"path"
	"strings"

	// Register decoders so Dimensions can probe the common embedded formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Resource is an embedded binary asset (image, media) addressable by id.
// The id is the normalized relationship target, unique across the document.
type Resource struct {
	ID       string `json:"id"`
	Mime     string `json:"mime"`
	Filename string `json:"filename"`
	// Part is the package part the bytes came from, e.g. "word/media/image1.png".
	Part string `json:"part"`
	Data []byte `json:"-"`
}

// Dimensions decodes the resource header and returns pixel width and height.
// Returns ok=false for vector formats and anything the registered decoders
// cannot identify.
func (r *Resource) Dimensions() (width, height int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(r.Data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// MimeFromPart guesses a mime type from a part name's extension.
func MimeFromPart(part string) string {
	switch strings.ToLower(path.Ext(part)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".emf":
		return "image/x-emf"
	case ".wmf":
		return "image/x-wmf"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// FilenameHint returns the last path segment of the part name with its
// extension corrected to match the mime type when they disagree.
func (r *Resource) FilenameHint() string {
	name := path.Base(r.Part)
	want := extForMime(r.Mime)
	if want == "" {
		return name
	}
	ext := strings.ToLower(path.Ext(name))
	if ext == want || (want == ".jpg" && ext == ".jpeg") {
		return name
	}
	return strings.TrimSuffix(name, path.Ext(name)) + want
}

func extForMime(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tiff"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}
