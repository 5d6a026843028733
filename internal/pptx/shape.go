package pptx

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
)

// Kind is the closed set of shape kinds the engine distinguishes
type Kind int

const (
	KindOther Kind = iota
	KindTextFrame
	KindPicture
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindTextFrame:
		return "text"
	case KindPicture:
		return "picture"
	case KindTable:
		return "table"
	default:
		return "other"
	}
}

// ErrNoTextFrame is returned when text is written to a shape without one
var ErrNoTextFrame = errors.New("shape has no text frame")

// ErrRemoved is returned when a removed shape is used
var ErrRemoved = errors.New("shape was removed")

// EMU conversions
const (
	EMUPerInch  = 914400
	EMUPerPoint = 12700
)

// Inches converts inches to EMU
func Inches(v float64) int64 {
	return int64(v * EMUPerInch)
}

// Geometry is a shape's bounding box in EMU
type Geometry struct {
	Left   int64
	Top    int64
	Width  int64
	Height int64
}

// Resize returns the geometry with the same origin and a new size
func (g Geometry) Resize(width, height int64) Geometry {
	g.Width, g.Height = width, height
	return g
}

// Shape is one top-level element of a slide's shape tree
type Shape struct {
	slide   *Slide
	el      *etree.Element
	kind    Kind
	removed bool
}

// shapeKind classifies a shape tree child once, at traversal time
func shapeKind(el *etree.Element) (Kind, bool) {
	switch {
	case el.Space == "p" && el.Tag == "sp":
		if firstChild(el, "p:txBody") != nil {
			return KindTextFrame, true
		}
		return KindOther, true
	case el.Space == "p" && el.Tag == "pic":
		return KindPicture, true
	case el.Space == "p" && el.Tag == "graphicFrame":
		if descend(el, "a:graphic", "a:graphicData", "a:tbl") != nil {
			return KindTable, true
		}
		return KindOther, true
	case el.Space == "p" && (el.Tag == "grpSp" || el.Tag == "cxnSp" || el.Tag == "contentPart"):
		return KindOther, true
	case el.Space == "mc" && el.Tag == "AlternateContent":
		return KindOther, true
	}
	return KindOther, false
}

// Kind returns the shape kind
func (s *Shape) Kind() Kind {
	return s.kind
}

// Slide returns the slide holding the shape
func (s *Shape) Slide() *Slide {
	return s.slide
}

// HasTextFrame reports whether the shape carries editable text
func (s *Shape) HasTextFrame() bool {
	return s.kind == KindTextFrame && !s.removed
}

// Removed reports whether Remove was called
func (s *Shape) Removed() bool {
	return s.removed
}

// ID returns the shape id, or 0 when absent
func (s *Shape) ID() int {
	n, _ := attrInt64(firstChild(firstNv(s.el), "p:cNvPr"), "id")
	return int(n)
}

// Name returns the shape name from its non-visual properties
func (s *Shape) Name() string {
	if c := firstChild(firstNv(s.el), "p:cNvPr"); c != nil {
		return c.SelectAttrValue("name", "")
	}
	return ""
}

// Text returns the text of the shape, one line per paragraph
func (s *Shape) Text() string {
	if s.kind != KindTextFrame {
		return ""
	}
	return bodyText(firstChild(s.el, "p:txBody"))
}

func bodyText(body *etree.Element) string {
	var lines []string
	for _, p := range children(body, "a:p") {
		var b strings.Builder
		for _, c := range p.ChildElements() {
			switch c.Tag {
			case "r", "fld":
				if t := firstChild(c, "a:t"); t != nil {
					b.WriteString(t.Text())
				}
			case "br":
				b.WriteString("\n")
			}
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// xfrm returns the element holding the shape's own offset and extent
func (s *Shape) xfrm() *etree.Element {
	if s.el.Tag == "graphicFrame" {
		return firstChild(s.el, "p:xfrm")
	}
	if s.el.Tag == "grpSp" {
		return descend(s.el, "p:grpSpPr", "a:xfrm")
	}
	return descend(s.el, "p:spPr", "a:xfrm")
}

// Geometry returns the shape bounds. Placeholders without their own
// transform inherit it from the slide layout, then the slide master.
func (s *Shape) Geometry() (Geometry, bool) {
	if g, ok := readXfrm(s.xfrm()); ok {
		return g, true
	}
	ph := descend(firstNv(s.el), "p:nvPr", "p:ph")
	if ph == nil {
		return Geometry{}, false
	}
	return s.slide.inheritedGeometry(ph)
}

func readXfrm(xfrm *etree.Element) (Geometry, bool) {
	off := firstChild(xfrm, "a:off")
	ext := firstChild(xfrm, "a:ext")
	if off == nil || ext == nil {
		return Geometry{}, false
	}
	x, _ := attrInt64(off, "x")
	y, _ := attrInt64(off, "y")
	cx, okW := attrInt64(ext, "cx")
	cy, okH := attrInt64(ext, "cy")
	if !okW || !okH {
		return Geometry{}, false
	}
	return Geometry{Left: x, Top: y, Width: cx, Height: cy}, true
}

// Remove deletes the shape from its slide
func (s *Shape) Remove() error {
	if s.removed {
		return ErrRemoved
	}
	if parent := s.el.Parent(); parent != nil {
		parent.RemoveChild(s.el)
	}
	s.removed = true
	s.slide.forget(s)
	return nil
}

// inheritedGeometry resolves a placeholder's bounds from the layout, then
// from the master
func (s *Slide) inheritedGeometry(ph *etree.Element) (Geometry, bool) {
	layout, ok := s.layoutPart()
	if !ok {
		return Geometry{}, false
	}
	if g, ok := s.pres.placeholderGeometry(layout, ph, true); ok {
		return g, true
	}

	layoutRels, err := s.pres.pkg.loadRels(layout)
	if err != nil {
		return Geometry{}, false
	}
	master, ok := layoutRels.firstOfType(relSlideMaster)
	if !ok {
		return Geometry{}, false
	}
	return s.pres.placeholderGeometry(master, ph, false)
}

// placeholderGeometry finds the matching placeholder in a layout or master
// part. Layouts match on idx first; masters only carry types.
func (p *Presentation) placeholderGeometry(part string, ph *etree.Element, byIdx bool) (Geometry, bool) {
	doc, err := p.pkg.xml(part)
	if err != nil {
		return Geometry{}, false
	}
	tree := descend(doc.Root(), "p:cSld", "p:spTree")
	if tree == nil {
		return Geometry{}, false
	}

	idx := ph.SelectAttrValue("idx", "")
	typ := placeholderType(ph)

	var byType *etree.Element
	for _, el := range tree.ChildElements() {
		cand := descend(firstNv(el), "p:nvPr", "p:ph")
		if cand == nil {
			continue
		}
		if byIdx && idx != "" && cand.SelectAttrValue("idx", "") == idx {
			return readXfrm(descend(el, "p:spPr", "a:xfrm"))
		}
		if byType == nil && placeholderType(cand) == typ {
			byType = el
		}
	}
	if byType == nil {
		return Geometry{}, false
	}
	return readXfrm(descend(byType, "p:spPr", "a:xfrm"))
}

// firstNv returns the non-visual properties element (nvSpPr, nvPicPr, ...)
func firstNv(el *etree.Element) *etree.Element {
	for _, c := range el.ChildElements() {
		if strings.HasPrefix(c.Tag, "nv") {
			return c
		}
	}
	return nil
}

// placeholderType normalizes the ph type: absent means body content, and
// centered titles share the title slot
func placeholderType(ph *etree.Element) string {
	switch t := ph.SelectAttrValue("type", ""); t {
	case "", "obj":
		return "body"
	case "ctrTitle":
		return "title"
	case "subTitle":
		return "body"
	default:
		return t
	}
}
