package container

import (
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/tsawler/ooxmark/ooxerr"
)

// RelKind classifies a relationship by its schema type URI.
type RelKind int

const (
	// RelOther covers relationship types the extractor does not consume.
	RelOther RelKind = iota
	// RelImage is an embedded image part.
	RelImage
	// RelHyperlink is an external hyperlink target.
	RelHyperlink
	// RelSheet is an XLSX worksheet part.
	RelSheet
	// RelSlide is a PPTX slide part.
	RelSlide
	// RelNotes is a PPTX notes-slide part.
	RelNotes
	// RelStyle is a styles part.
	RelStyle
	// RelTheme is a theme part.
	RelTheme
	// RelSharedStrings is the XLSX shared-string table.
	RelSharedStrings
	// RelChart is a DrawingML chart part.
	RelChart
)

// Relationship is one resolved entry from a _rels file.
type Relationship struct {
	ID string
	// Target is the absolute part name for internal targets, or the URL
	// verbatim for external ones.
	Target   string
	Kind     RelKind
	External bool
}

// Relationships is the rId lookup for one owning part.
type Relationships struct {
	byID map[string]Relationship
}

// Get returns the relationship with the given id.
func (r *Relationships) Get(id string) (Relationship, bool) {
	if r == nil {
		return Relationship{}, false
	}
	rel, ok := r.byID[id]
	return rel, ok
}

// Len returns the number of relationships.
func (r *Relationships) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byID)
}

// FirstOfKind returns the relationship of the given kind with the lowest
// id, so lookups that want "the" part of a kind are deterministic.
func (r *Relationships) FirstOfKind(kind RelKind) (Relationship, bool) {
	if r == nil {
		return Relationship{}, false
	}
	var best Relationship
	found := false
	for _, rel := range r.byID {
		if rel.Kind != kind {
			continue
		}
		if !found || rel.ID < best.ID {
			best = rel
			found = true
		}
	}
	return best, found
}

// OfKind returns all relationships of the given kind sorted by id.
func (r *Relationships) OfKind(kind RelKind) []Relationship {
	if r == nil {
		return nil
	}
	var out []Relationship
	for _, rel := range r.byID {
		if rel.Kind == kind {
			out = append(out, rel)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type relationshipsXML struct {
	XMLName       xml.Name `xml:"Relationships"`
	Relationships []struct {
		ID         string `xml:"Id,attr"`
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// RelationshipsFor loads and resolves the relationships of the owning part.
// For a part at dir/part.ext the rels live at dir/_rels/part.ext.rels. A
// missing rels part yields an empty lookup, not an error.
func (c *Container) RelationshipsFor(ownerPart string) (*Relationships, error) {
	ownerPart = normalizePartName(ownerPart)
	dir := path.Dir(ownerPart)
	base := path.Base(ownerPart)
	relsPart := path.Join(dir, "_rels", base+".rels")
	if dir == "." {
		relsPart = path.Join("_rels", base+".rels")
	}

	rels := &Relationships{byID: make(map[string]Relationship)}
	if !c.HasPart(relsPart) {
		return rels, nil
	}
	data, err := c.ReadXMLPart(relsPart)
	if err != nil {
		return nil, err
	}
	var parsed relationshipsXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, ooxerr.XML(fmt.Errorf("parsing %s: %w", relsPart, err))
	}

	for _, r := range parsed.Relationships {
		rel := Relationship{
			ID:       r.ID,
			Kind:     kindOfRelType(r.Type),
			External: strings.EqualFold(r.TargetMode, "External"),
		}
		if rel.External {
			rel.Target = r.Target
		} else {
			rel.Target = ResolveTarget(dir, r.Target)
		}
		rels.byID[r.ID] = rel
	}
	return rels, nil
}

// ResolveTarget resolves a relationship target relative to the owning
// part's directory into an absolute part name with no leading slash.
// "." and ".." segments are collapsed.
func ResolveTarget(ownerDir, target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return path.Clean(target)[1:]
	}
	if ownerDir == "." || ownerDir == "" {
		return path.Clean(target)
	}
	return path.Clean(path.Join(ownerDir, target))
}

func kindOfRelType(relType string) RelKind {
	// Schema type URIs end with a stable final segment.
	switch {
	case strings.HasSuffix(relType, "/image"):
		return RelImage
	case strings.HasSuffix(relType, "/hyperlink"):
		return RelHyperlink
	case strings.HasSuffix(relType, "/worksheet"):
		return RelSheet
	case strings.HasSuffix(relType, "/slide"):
		return RelSlide
	case strings.HasSuffix(relType, "/notesSlide"):
		return RelNotes
	case strings.HasSuffix(relType, "/styles"):
		return RelStyle
	case strings.HasSuffix(relType, "/theme"):
		return RelTheme
	case strings.HasSuffix(relType, "/sharedStrings"):
		return RelSharedStrings
	case strings.HasSuffix(relType, "/chart"):
		return RelChart
	default:
		return RelOther
	}
}
