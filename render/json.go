package render

import (
	"encoding/json"
	"fmt"

	"github.com/tsawler/ooxmark/model"
	"github.com/tsawler/ooxmark/ooxerr"
)

// ToJSON serializes the document model. Pretty mode indents with two
// spaces and ends with a trailing newline; compact mode minifies. Output
// is deterministic: map keys marshal in sorted order.
func ToJSON(doc *model.Document, mode int) (string, error) {
	var (
		data []byte
		err  error
	)
	if mode == JSONCompact {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return "", ooxerr.Render(fmt.Errorf("encoding document: %w", err))
	}
	if mode != JSONCompact {
		data = append(data, '\n')
	}
	return string(data), nil
}
