// Package container provides read access to an OOXML package: the ZIP
// archive, its relationship files, and the document property parts.
package container

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tsawler/ooxmark/ooxerr"
)

// zipMagic is the ZIP local-file-header signature every OOXML package
// starts with.
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// Container wraps a ZIP package and exposes named-part access. It is
// read-only after construction; a mutex guards the archive so parts can be
// read from multiple goroutines.
type Container struct {
	mu sync.Mutex
	zr *zip.Reader
	// parts maps normalized part names to their ZIP entries.
	parts map[string]*zip.File
}

// OpenFile opens an OOXML package from the filesystem.
func OpenFile(filename string) (*Container, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, ooxerr.IO(fmt.Errorf("reading %s: %w", filename, err))
	}
	return OpenBytes(data)
}

// OpenBytes opens an OOXML package held in memory.
func OpenBytes(data []byte) (*Container, error) {
	if !bytes.HasPrefix(data, zipMagic) {
		return nil, ooxerr.Unsupported("input is not a ZIP archive; unrecognized file format")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, ooxerr.Package(fmt.Errorf("opening ZIP archive: %w", err))
	}
	c := &Container{
		zr:    zr,
		parts: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		c.parts[normalizePartName(f.Name)] = f
	}
	if _, ok := c.parts["[Content_Types].xml"]; !ok {
		return nil, ooxerr.Package(fmt.Errorf("missing required part [Content_Types].xml"))
	}
	return c, nil
}

// normalizePartName converts backslashes to forward slashes and strips a
// leading slash. Part names stay case-sensitive.
func normalizePartName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(name, "/")
}

// HasPart reports whether the named part exists.
func (c *Container) HasPart(name string) bool {
	_, ok := c.parts[normalizePartName(name)]
	return ok
}

// ListParts returns all part names in sorted order.
func (c *Container) ListParts() []string {
	names := make([]string, 0, len(c.parts))
	for n := range c.parts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ReadPart returns the raw bytes of the named part.
func (c *Container) ReadPart(name string) ([]byte, error) {
	f, ok := c.parts[normalizePartName(name)]
	if !ok {
		return nil, ooxerr.Package(fmt.Errorf("part not found: %s", name))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rc, err := f.Open()
	if err != nil {
		return nil, ooxerr.Package(fmt.Errorf("opening part %s: %w", name, err))
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, ooxerr.IO(fmt.Errorf("reading part %s: %w", name, err))
	}
	return data, nil
}

// ReadXMLPart returns the named part decoded to UTF-8, handling UTF-16
// encoded XML parts.
func (c *Container) ReadXMLPart(name string) ([]byte, error) {
	data, err := c.ReadPart(name)
	if err != nil {
		return nil, err
	}
	return DecodeXMLBytes(data)
}

// PartsWithPrefix returns the sorted part names beginning with prefix.
func (c *Container) PartsWithPrefix(prefix string) []string {
	var names []string
	for n := range c.parts {
		if strings.HasPrefix(n, prefix) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
