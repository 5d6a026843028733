package pptx

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// Slide is one slide of a deck
type Slide struct {
	pres   *Presentation
	index  int
	part   string
	doc    *etree.Document
	rels   *relationships
	spTree *etree.Element
	shapes []*Shape
}

func loadSlide(pres *Presentation, index int, part string) (*Slide, error) {
	doc, err := pres.pkg.xml(part)
	if err != nil {
		return nil, err
	}
	rels, err := pres.pkg.loadRels(part)
	if err != nil {
		return nil, err
	}
	tree := descend(doc.Root(), "p:cSld", "p:spTree")
	if tree == nil {
		return nil, fmt.Errorf("slide %s has no shape tree", part)
	}

	s := &Slide{pres: pres, index: index, part: part, doc: doc, rels: rels, spTree: tree}
	for _, el := range tree.ChildElements() {
		if kind, ok := shapeKind(el); ok {
			s.shapes = append(s.shapes, &Shape{slide: s, el: el, kind: kind})
		}
	}
	return s, nil
}

// Index is the zero-based position of the slide in the deck
func (s *Slide) Index() int {
	return s.index
}

// Shapes returns the top-level shapes in document order
func (s *Slide) Shapes() []*Shape {
	return s.shapes
}

// nextShapeID returns one more than the largest shape id on the slide
func (s *Slide) nextShapeID() int {
	maxID := 0
	for _, el := range s.spTree.FindElements(".//p:cNvPr") {
		if n, err := strconv.Atoi(el.SelectAttrValue("id", "")); err == nil && n > maxID {
			maxID = n
		}
	}
	return maxID + 1
}

// appendShape adds a new top-level element to the shape tree
func (s *Slide) appendShape(el *etree.Element, kind Kind) *Shape {
	s.spTree.AddChild(el)
	sh := &Shape{slide: s, el: el, kind: kind}
	s.shapes = append(s.shapes, sh)
	return sh
}

func (s *Slide) forget(target *Shape) {
	for i, sh := range s.shapes {
		if sh == target {
			s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
			return
		}
	}
}

// layoutPart returns the slide layout the slide is based on
func (s *Slide) layoutPart() (string, bool) {
	return s.rels.firstOfType(relSlideLayout)
}
