// Package pptxtest assembles minimal decks in memory for tests.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/ppiankov/pulsedeck/internal/pptx"
)

// Shape is a fixture shape. A text shape is written unless NoText or Table
// is set. Zero Width and Height omit the transform so placeholders inherit
// their geometry.
type Shape struct {
	Name   string
	Text   string
	Left   int64
	Top    int64
	Width  int64
	Height int64

	Placeholder    string // ph type, e.g. "title" or "body"; empty for a plain shape
	PlaceholderIdx int

	NoText bool       // a plain rectangle without a text frame
	Table  [][]string // a native table
}

// Deck is a fixture deck: slides of shapes plus the placeholders of its
// single layout and master
type Deck struct {
	Slides [][]Shape
	Layout []Shape
	Master []Shape
}

// Box is a convenience constructor for a positioned text shape
func Box(text string, left, top, width, height int64) Shape {
	return Shape{Text: text, Left: left, Top: top, Width: width, Height: height}
}

// Bytes serializes the deck as a .pptx archive
func (d Deck) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := []struct{ name, body string }{
		{"[Content_Types].xml", d.contentTypes()},
		{"_rels/.rels", rels(rel("rId1", "officeDocument", "ppt/presentation.xml"))},
		{"ppt/presentation.xml", d.presentation()},
		{"ppt/_rels/presentation.xml.rels", d.presentationRels()},
		{"ppt/slideMasters/slideMaster1.xml", master(d.Master)},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", rels(
			rel("rId1", "slideLayout", "../slideLayouts/slideLayout1.xml"),
			rel("rId2", "theme", "../theme/theme1.xml"),
		)},
		{"ppt/slideLayouts/slideLayout1.xml", layout(d.Layout)},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", rels(
			rel("rId1", "slideMaster", "../slideMasters/slideMaster1.xml"),
		)},
		{"ppt/theme/theme1.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<a:theme xmlns:a="` + nsA + `" name="Office"><a:themeElements/></a:theme>`},
	}
	for i, shapes := range d.Slides {
		files = append(files,
			struct{ name, body string }{fmt.Sprintf("ppt/slides/slide%d.xml", i+1), slide(shapes)},
			struct{ name, body string }{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), rels(
				rel("rId1", "slideLayout", "../slideLayouts/slideLayout1.xml"),
			)},
		)
	}

	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(f.body)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Open builds the deck and opens it, failing the test on error
func Open(t testing.TB, d Deck) *pptx.Presentation {
	t.Helper()
	data, err := d.Bytes()
	if err != nil {
		t.Fatalf("build fixture deck: %v", err)
	}
	pres, err := pptx.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open fixture deck: %v", err)
	}
	return pres
}

// Reopen writes a presentation and reads it back, proving the output parses
func Reopen(t testing.TB, pres *pptx.Presentation) *pptx.Presentation {
	t.Helper()
	var buf bytes.Buffer
	if err := pres.Write(&buf); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	again, err := pptx.Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reopen deck: %v", err)
	}
	return again
}

// Find returns the first shape on any slide whose text equals text
func Find(pres *pptx.Presentation, text string) *pptx.Shape {
	for _, s := range pres.Slides() {
		for _, sh := range s.Shapes() {
			if strings.TrimSpace(sh.Text()) == text {
				return sh
			}
		}
	}
	return nil
}

// PNG returns a tiny valid PNG image
func PNG(t testing.TB) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
