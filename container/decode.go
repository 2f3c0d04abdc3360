package container

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/tsawler/ooxmark/ooxerr"
)

// DecodeXMLBytes converts an XML part to UTF-8. Word and some third-party
// producers occasionally write UTF-16 parts; the BOM decides the encoding.
// A UTF-8 BOM is stripped. Anything without a BOM is assumed UTF-8.
func DecodeXMLBytes(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeUTF16(data, unicode.LittleEndian)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeUTF16(data, unicode.BigEndian)
	default:
		return data, nil
	}
}

func decodeUTF16(data []byte, endian unicode.Endianness) ([]byte, error) {
	dec := unicode.UTF16(endian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return nil, ooxerr.XML(fmt.Errorf("decoding UTF-16 part: %w", err))
	}
	return out, nil
}
