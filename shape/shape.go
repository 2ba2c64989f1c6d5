// Package shape parses the three shape kinds the rule engines understand
// (rectangles, Inkscape arcs, and straight path segments) from SVG
// elements and writes corrected geometry back. It also provides the
// tolerance arithmetic shared by the alignment and relabeling engines.
package shape

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/gridplate/gridplate/svgdoc"
)

// Kind identifies a shape variant.
type Kind string

const (
	KindRect Kind = "rect"
	KindArc  Kind = "arc"
	KindPath Kind = "path"
)

// coincidentTol is the tolerance for treating two coordinates as equal
// when classifying a segment as horizontal or vertical.
const coincidentTol = 0.001

// BBox is an axis-aligned bounding box.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// CenterX returns the x coordinate of the box center.
func (b BBox) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the y coordinate of the box center.
func (b BBox) CenterY() float64 { return b.Y + b.Height/2 }

// Center returns the box center.
func (b BBox) Center() (float64, float64) { return b.CenterX(), b.CenterY() }

// Shape is one parsed drawing element. Each variant keeps a handle to its
// underlying document element so fixes mutate the tree in place.
type Shape interface {
	ID() string
	Kind() Kind
	Element() *etree.Element
	BBox() BBox
	Center() (x, y float64)
}

// Rect is a parsed <rect> element.
type Rect struct {
	el     *etree.Element
	id     string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r *Rect) ID() string              { return r.id }
func (r *Rect) Kind() Kind              { return KindRect }
func (r *Rect) Element() *etree.Element { return r.el }

func (r *Rect) BBox() BBox {
	return BBox{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func (r *Rect) Center() (float64, float64) { return r.BBox().Center() }

// SetX updates the rect's x attribute and the parsed value.
func (r *Rect) SetX(v float64) { r.X = v; setFloatAttr(r.el, "x", v) }

// SetY updates the rect's y attribute and the parsed value.
func (r *Rect) SetY(v float64) { r.Y = v; setFloatAttr(r.el, "y", v) }

// SetWidth updates the rect's width attribute and the parsed value.
func (r *Rect) SetWidth(v float64) { r.Width = v; setFloatAttr(r.el, "width", v) }

// SetHeight updates the rect's height attribute and the parsed value.
func (r *Rect) SetHeight(v float64) { r.Height = v; setFloatAttr(r.el, "height", v) }

// Arc is a parsed <path sodipodi:type="arc"> element. Geometry lives in
// the sodipodi attributes; Inkscape regenerates the d attribute on load.
type Arc struct {
	el    *etree.Element
	id    string
	CX    float64
	CY    float64
	RX    float64
	RY    float64
	Start float64
	End   float64
}

func (a *Arc) ID() string              { return a.id }
func (a *Arc) Kind() Kind              { return KindArc }
func (a *Arc) Element() *etree.Element { return a.el }

func (a *Arc) BBox() BBox {
	return BBox{X: a.CX - a.RX, Y: a.CY - a.RY, Width: a.RX * 2, Height: a.RY * 2}
}

func (a *Arc) Center() (float64, float64) { return a.CX, a.CY }

// Span returns the absolute arc span in radians.
func (a *Arc) Span() float64 {
	if a.End >= a.Start {
		return a.End - a.Start
	}
	return a.Start - a.End
}

func (a *Arc) SetCX(v float64)    { a.CX = v; setFloatAttr(a.el, "sodipodi:cx", v) }
func (a *Arc) SetCY(v float64)    { a.CY = v; setFloatAttr(a.el, "sodipodi:cy", v) }
func (a *Arc) SetRX(v float64)    { a.RX = v; setFloatAttr(a.el, "sodipodi:rx", v) }
func (a *Arc) SetRY(v float64)    { a.RY = v; setFloatAttr(a.el, "sodipodi:ry", v) }
func (a *Arc) SetStart(v float64) { a.Start = v; setFloatAttr(a.el, "sodipodi:start", v) }
func (a *Arc) SetEnd(v float64)   { a.End = v; setFloatAttr(a.el, "sodipodi:end", v) }

// Segment is a straight line extracted from a <path> d attribute. Only
// the first move and the last drawn point are kept.
type Segment struct {
	el     *etree.Element
	id     string
	StartX float64
	StartY float64
	EndX   float64
	EndY   float64
}

func (s *Segment) ID() string              { return s.id }
func (s *Segment) Kind() Kind              { return KindPath }
func (s *Segment) Element() *etree.Element { return s.el }

func (s *Segment) BBox() BBox {
	minX, width := s.StartX, s.EndX-s.StartX
	if width < 0 {
		minX, width = s.EndX, -width
	}
	minY, height := s.StartY, s.EndY-s.StartY
	if height < 0 {
		minY, height = s.EndY, -height
	}
	return BBox{X: minX, Y: minY, Width: width, Height: height}
}

func (s *Segment) Center() (float64, float64) { return s.BBox().Center() }

// IsVertical reports whether the segment is a vertical line.
func (s *Segment) IsVertical() bool {
	d := s.StartX - s.EndX
	return d < coincidentTol && d > -coincidentTol
}

// IsHorizontal reports whether the segment is a horizontal line.
func (s *Segment) IsHorizontal() bool {
	d := s.StartY - s.EndY
	return d < coincidentTol && d > -coincidentTol
}

// SetPoints updates the segment endpoints and regenerates the d
// attribute, using V/H shorthand for axis-aligned lines.
func (s *Segment) SetPoints(startX, startY, endX, endY float64) {
	s.StartX, s.StartY = startX, startY
	s.EndX, s.EndY = endX, endY

	var d string
	switch {
	case s.IsVertical():
		d = "M " + fmtFloat(startX) + "," + fmtFloat(startY) + " V " + fmtFloat(endY)
	case s.IsHorizontal():
		d = "M " + fmtFloat(startX) + "," + fmtFloat(startY) + " H " + fmtFloat(endX)
	default:
		d = "M " + fmtFloat(startX) + "," + fmtFloat(startY) + " L " + fmtFloat(endX) + "," + fmtFloat(endY)
	}
	s.el.CreateAttr("d", d)
}

// Parse parses el as the given kind. Returns nil when the element is not
// of that kind or a present numeric attribute fails to parse.
func Parse(el *etree.Element, kind Kind) Shape {
	switch kind {
	case KindRect:
		if r := ParseRect(el); r != nil {
			return r
		}
	case KindArc:
		if a := ParseArc(el); a != nil {
			return a
		}
	case KindPath:
		if s := ParseSegment(el); s != nil {
			return s
		}
	}
	return nil
}

// ParseRect parses a <rect> element. Missing attributes default to 0.
func ParseRect(el *etree.Element) *Rect {
	if el.Tag != "rect" {
		return nil
	}
	ok := true
	r := &Rect{
		el:     el,
		id:     el.SelectAttrValue("id", ""),
		X:      floatAttr(el, "x", &ok),
		Y:      floatAttr(el, "y", &ok),
		Width:  floatAttr(el, "width", &ok),
		Height: floatAttr(el, "height", &ok),
	}
	if !ok {
		return nil
	}
	return r
}

// ParseArc parses a <path> element marked sodipodi:type="arc".
func ParseArc(el *etree.Element) *Arc {
	if el.Tag != "path" {
		return nil
	}
	if el.SelectAttrValue(svgdoc.AttrArcType, "") != "arc" {
		return nil
	}
	ok := true
	a := &Arc{
		el:    el,
		id:    el.SelectAttrValue("id", ""),
		CX:    floatAttr(el, "sodipodi:cx", &ok),
		CY:    floatAttr(el, "sodipodi:cy", &ok),
		RX:    floatAttr(el, "sodipodi:rx", &ok),
		RY:    floatAttr(el, "sodipodi:ry", &ok),
		Start: floatAttr(el, "sodipodi:start", &ok),
		End:   floatAttr(el, "sodipodi:end", &ok),
	}
	if !ok {
		return nil
	}
	return a
}

// floatAttr reads a numeric attribute. A missing attribute yields 0; a
// present but unparseable value clears *ok.
func floatAttr(el *etree.Element, key string, ok *bool) float64 {
	attr := el.SelectAttr(key)
	if attr == nil {
		return 0
	}
	v, err := strconv.ParseFloat(attr.Value, 64)
	if err != nil {
		*ok = false
		return 0
	}
	return v
}

func setFloatAttr(el *etree.Element, key string, v float64) {
	el.CreateAttr(key, fmtFloat(v))
}

// fmtFloat keeps attribute values in plain decimal form; some SVG
// consumers reject exponent notation.
func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
