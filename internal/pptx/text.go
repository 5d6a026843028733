package pptx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Alignment is a paragraph's horizontal alignment
type Alignment string

const (
	AlignLeft   Alignment = "l"
	AlignCenter Alignment = "ctr"
	AlignRight  Alignment = "r"
)

// TextStyle is applied to every run written by SetText. Zero fields leave
// the template's inherited formatting alone.
type TextStyle struct {
	FontName string
	SizePt   float64
	Bold     bool
	Color    string // RRGGBB
	Align    Alignment
	Lang     string
}

// SetText replaces the shape's text. Each line becomes its own paragraph.
func (s *Shape) SetText(text string, style TextStyle) error {
	if s.removed {
		return ErrRemoved
	}
	if s.kind != KindTextFrame {
		return ErrNoTextFrame
	}

	body := firstChild(s.el, "p:txBody")
	clearParagraphs(body)

	text = strings.ReplaceAll(cleanText(text), "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		writeParagraph(body, line, style)
	}
	return nil
}

// ClearText empties the shape's text, leaving one empty paragraph
func (s *Shape) ClearText() error {
	if s.removed {
		return ErrRemoved
	}
	if s.kind != KindTextFrame {
		return ErrNoTextFrame
	}
	body := firstChild(s.el, "p:txBody")
	clearParagraphs(body)
	sub(body, "a:p")
	return nil
}

func clearParagraphs(body *etree.Element) {
	for _, p := range children(body, "a:p") {
		body.RemoveChild(p)
	}
}

// writeParagraph appends <a:p> with one styled run
func writeParagraph(body *etree.Element, line string, style TextStyle) {
	p := sub(body, "a:p")
	if style.Align != "" {
		sub(p, "a:pPr", "algn", string(style.Align))
	}
	if line == "" {
		runProperties(p, "a:endParaRPr", style)
		return
	}
	r := sub(p, "a:r")
	runProperties(r, "a:rPr", style)
	sub(r, "a:t").SetText(line)
}

// runProperties writes rPr (or endParaRPr) in schema order: attributes,
// fill, latin font
func runProperties(parent *etree.Element, tag string, style TextStyle) *etree.Element {
	lang := style.Lang
	if lang == "" {
		lang = "es-ES"
	}
	rPr := sub(parent, tag, "lang", lang)
	if style.SizePt > 0 {
		rPr.CreateAttr("sz", strconv.Itoa(int(style.SizePt*100)))
	}
	if style.Bold {
		rPr.CreateAttr("b", "1")
	} else {
		rPr.CreateAttr("b", "0")
	}
	rPr.CreateAttr("dirty", "0")

	if style.Color != "" {
		fill := sub(rPr, "a:solidFill")
		sub(fill, "a:srgbClr", "val", strings.ToUpper(strings.TrimPrefix(style.Color, "#")))
	}
	if style.FontName != "" {
		sub(rPr, "a:latin", "typeface", style.FontName)
	}
	return rPr
}
