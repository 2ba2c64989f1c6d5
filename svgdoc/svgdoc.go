// Package svgdoc loads Inkscape-flavoured SVG documents and provides the
// tree operations the rule engines share: group lookup by label, label
// read/write, and recursive element iteration. The document is held as an
// etree so unknown markup round-trips untouched.
package svgdoc

import (
	"fmt"

	"github.com/beevik/etree"
)

// Namespace URIs used by Inkscape SVG files.
const (
	NSSVG      = "http://www.w3.org/2000/svg"
	NSInkscape = "http://www.inkscape.org/namespaces/inkscape"
	NSSodipodi = "http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd"
	NSXlink    = "http://www.w3.org/1999/xlink"
)

// Prefixed attribute names as they appear in the document.
const (
	AttrLabel   = "inkscape:label"
	AttrArcType = "sodipodi:type"
)

// drawingTags are the element tags counted as drawing content.
var drawingTags = map[string]bool{
	"rect":     true,
	"circle":   true,
	"ellipse":  true,
	"line":     true,
	"polyline": true,
	"polygon":  true,
	"path":     true,
	"text":     true,
	"tspan":    true,
	"image":    true,
	"use":      true,
}

// Document wraps a parsed SVG tree together with its source path.
type Document struct {
	tree *etree.Document
	path string
}

// Load reads and parses an SVG file.
func Load(path string) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to read SVG %s: %w", path, err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("SVG %s has no root element", path)
	}
	return &Document{tree: tree, path: path}, nil
}

// Parse parses SVG content from memory.
func Parse(data []byte) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("SVG has no root element")
	}
	return &Document{tree: tree}, nil
}

// Path returns the file the document was loaded from, if any.
func (d *Document) Path() string { return d.path }

// Root returns the root SVG element.
func (d *Document) Root() *etree.Element { return d.tree.Root() }

// WriteFile serializes the document to path.
func (d *Document) WriteFile(path string) error {
	d.tree.Indent(etree.NoIndent)
	if err := d.tree.WriteToFile(path); err != nil {
		return fmt.Errorf("failed to write SVG %s: %w", path, err)
	}
	return nil
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	return d.tree.WriteToBytes()
}

// Walk visits el and every descendant element in document order.
func Walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, child := range el.ChildElements() {
		Walk(child, fn)
	}
}

// FindGroupByLabel returns the first <g> element (document order) whose
// inkscape:label equals label, or nil.
func FindGroupByLabel(root *etree.Element, label string) *etree.Element {
	var found *etree.Element
	Walk(root, func(el *etree.Element) {
		if found != nil {
			return
		}
		if el.Tag == "g" && el.SelectAttrValue(AttrLabel, "") == label {
			found = el
		}
	})
	return found
}

// Label returns the inkscape:label of an element, or "".
func Label(el *etree.Element) string {
	return el.SelectAttrValue(AttrLabel, "")
}

// SetLabel sets the inkscape:label of an element.
func SetLabel(el *etree.Element, label string) {
	el.CreateAttr(AttrLabel, label)
}

// GroupName returns the display name of a group element: the
// inkscape:label when present, otherwise the id. Returns "" for
// non-group elements and anonymous groups.
func GroupName(el *etree.Element) string {
	if el.Tag != "g" {
		return ""
	}
	if label := Label(el); label != "" {
		return label
	}
	return el.SelectAttrValue("id", "")
}

// IsDrawingElement reports whether el is a drawing element.
func IsDrawingElement(el *etree.Element) bool {
	return drawingTags[el.Tag]
}
