// Package pptx edits PowerPoint (OOXML) decks in place: it reads a template,
// exposes its slides and top-level shapes, and adds pictures, native charts
// and native tables. Parts that are never parsed are copied through as-is.
package pptx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrNotPresentation is returned for archives without a presentation part
var ErrNotPresentation = errors.New("not a presentation")

// Presentation is an opened deck
type Presentation struct {
	pkg    *opcPackage
	types  *contentTypes
	slides []*Slide
}

// Open reads a deck from disk
func Open(path string) (*Presentation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read parses a deck from a random-access reader
func Read(r io.ReaderAt, size int64) (*Presentation, error) {
	pkg, err := readPackage(r, size)
	if err != nil {
		return nil, err
	}

	types, err := pkg.contentTypes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPresentation, err)
	}

	pres := &Presentation{pkg: pkg, types: types}
	if err := pres.loadSlides(); err != nil {
		return nil, err
	}
	return pres, nil
}

// presentationPart finds the main part through the package relationships
func (p *Presentation) presentationPart() (string, error) {
	if p.pkg.has("_rels/.rels") {
		rels, err := p.pkg.loadRels("")
		if err != nil {
			return "", err
		}
		if part, ok := rels.firstOfType(relOfficeDoc); ok && p.pkg.has(part) {
			return part, nil
		}
	}
	if p.pkg.has("ppt/presentation.xml") {
		return "ppt/presentation.xml", nil
	}
	return "", ErrNotPresentation
}

func (p *Presentation) loadSlides() error {
	part, err := p.presentationPart()
	if err != nil {
		return err
	}
	doc, err := p.pkg.xml(part)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotPresentation, err)
	}
	rels, err := p.pkg.loadRels(part)
	if err != nil {
		return err
	}

	list := descend(doc.Root(), "p:sldIdLst")
	for _, id := range children(list, "p:sldId") {
		rid := id.SelectAttrValue("r:id", "")
		target, ok := rels.target(rid)
		if !ok {
			return fmt.Errorf("slide relationship %s not found", rid)
		}
		slide, err := loadSlide(p, len(p.slides), target)
		if err != nil {
			return err
		}
		p.slides = append(p.slides, slide)
	}
	return nil
}

// Slides returns the slides in presentation order
func (p *Presentation) Slides() []*Slide {
	return p.slides
}

// Write serializes the deck
func (p *Presentation) Write(w io.Writer) error {
	return p.pkg.write(w)
}

// Save writes the deck to path, creating parent directories
func (p *Presentation) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
