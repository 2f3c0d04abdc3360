package container

import (
	"encoding/xml"
	"strings"

	"github.com/tsawler/ooxmark/model"
)

type corePropertiesXML struct {
	XMLName     xml.Name `xml:"coreProperties"`
	Title       string   `xml:"title"`
	Creator     string   `xml:"creator"`
	Subject     string   `xml:"subject"`
	Description string   `xml:"description"`
	Keywords    string   `xml:"keywords"`
	Created     string   `xml:"created"`
	Modified    string   `xml:"modified"`
}

type appPropertiesXML struct {
	XMLName     xml.Name `xml:"Properties"`
	Application string   `xml:"Application"`
	AppVersion  string   `xml:"AppVersion"`
}

// ReadMetadata parses docProps/core.xml and docProps/app.xml into document
// metadata. Both parts are optional; malformed property parts are ignored
// rather than failing the parse.
func (c *Container) ReadMetadata() model.Metadata {
	var meta model.Metadata

	if data, err := c.ReadXMLPart("docProps/core.xml"); err == nil {
		var core corePropertiesXML
		if xml.Unmarshal(data, &core) == nil {
			meta.Title = strings.TrimSpace(core.Title)
			meta.Author = strings.TrimSpace(core.Creator)
			meta.Subject = strings.TrimSpace(core.Subject)
			meta.Description = strings.TrimSpace(core.Description)
			meta.Created = strings.TrimSpace(core.Created)
			meta.Modified = strings.TrimSpace(core.Modified)
			meta.Keywords = splitKeywords(core.Keywords)
		}
	}

	if data, err := c.ReadXMLPart("docProps/app.xml"); err == nil {
		var app appPropertiesXML
		if xml.Unmarshal(data, &app) == nil {
			meta.Application = strings.TrimSpace(app.Application)
			if meta.Application != "" && app.AppVersion != "" {
				meta.Application += " " + strings.TrimSpace(app.AppVersion)
			}
		}
	}

	return meta
}

// splitKeywords splits the core-properties keyword string on commas and
// semicolons, the separators Word and PowerPoint emit.
func splitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
