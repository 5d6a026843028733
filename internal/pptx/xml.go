package pptx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Namespaces used when new elements are created
const (
	nsA     = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP     = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsC     = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	nsRels  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsTypes = "http://schemas.openxmlformats.org/package/2006/content-types"

	uriChart = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	uriTable = "http://schemas.openxmlformats.org/drawingml/2006/table"
)

// Relationship types
const (
	relSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relChart       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart"
	relPackage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/package"
	relOfficeDoc   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
)

// Content types of parts this package creates
const (
	ctChart = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
	ctXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ctRels  = "application/vnd.openxmlformats-package.relationships+xml"
)

// sub appends a child element with attributes given as key, value pairs
func sub(parent *etree.Element, tag string, attrs ...string) *etree.Element {
	el := parent.CreateElement(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		el.CreateAttr(attrs[i], attrs[i+1])
	}
	return el
}

// val appends an element carrying a single val attribute, the common
// DrawingML pattern for scalar properties
func val(parent *etree.Element, tag, v string) *etree.Element {
	return sub(parent, tag, "val", v)
}

// firstChild returns the first direct child with the given prefixed tag
func firstChild(parent *etree.Element, tag string) *etree.Element {
	if parent == nil {
		return nil
	}
	space, local := splitTag(tag)
	for _, c := range parent.ChildElements() {
		if c.Space == space && c.Tag == local {
			return c
		}
	}
	return nil
}

// children returns the direct children with the given prefixed tag
func children(parent *etree.Element, tag string) []*etree.Element {
	if parent == nil {
		return nil
	}
	space, local := splitTag(tag)
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		if c.Space == space && c.Tag == local {
			out = append(out, c)
		}
	}
	return out
}

// descend walks nested direct children, returning nil when any step is absent
func descend(el *etree.Element, tags ...string) *etree.Element {
	for _, t := range tags {
		el = firstChild(el, t)
		if el == nil {
			return nil
		}
	}
	return el
}

func splitTag(tag string) (space, local string) {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[:i], tag[i+1:]
	}
	return "", tag
}

func attrInt64(el *etree.Element, key string) (int64, bool) {
	if el == nil {
		return 0, false
	}
	v := el.SelectAttrValue(key, "")
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// cleanText drops characters XML 1.0 cannot carry
func cleanText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20, r == 0xFFFE, r == 0xFFFF:
			return -1
		}
		return r
	}, s)
}
