package inject

import (
	"sort"
	"strings"

	"github.com/ppiankov/pulsedeck/internal/pptx"
)

// Location is the position of a shape at index time
type Location struct {
	Slide int
	Shape int
}

type entry struct {
	text  string
	loc   Location
	shape *pptx.Shape
}

// Index maps trimmed shape text to the shape carrying it. It is built once
// per document; when several shapes carry the same text the last one in
// traversal order wins and the text is reported by Duplicates.
type Index struct {
	exact    map[string]entry
	order    []entry
	dups     map[string]int
	consumed map[*pptx.Shape]struct{}
}

// BuildIndex walks every slide and top-level shape once
func BuildIndex(pres *pptx.Presentation) *Index {
	ix := &Index{
		exact:    make(map[string]entry),
		dups:     make(map[string]int),
		consumed: make(map[*pptx.Shape]struct{}),
	}
	for si, slide := range pres.Slides() {
		for shi, sh := range slide.Shapes() {
			if !sh.HasTextFrame() {
				continue
			}
			text := strings.TrimSpace(sh.Text())
			if text == "" {
				continue
			}
			e := entry{text: text, loc: Location{Slide: si, Shape: shi}, shape: sh}
			if _, seen := ix.exact[text]; seen {
				ix.dups[text]++
			}
			ix.exact[text] = e
			ix.order = append(ix.order, e)
		}
	}
	return ix
}

// Len is the number of indexed shapes
func (ix *Index) Len() int {
	return len(ix.order)
}

// Lookup returns the shape whose trimmed text equals token
func (ix *Index) Lookup(token string) (*pptx.Shape, Location, bool) {
	e, ok := ix.exact[token]
	if !ok || !ix.available(e.shape) {
		return nil, Location{}, false
	}
	return e.shape, e.loc, true
}

// Find is Lookup with a fallback to the last shape whose text contains
// token, for placeholders authored inside longer text
func (ix *Index) Find(token string) (*pptx.Shape, Location, bool) {
	if sh, loc, ok := ix.Lookup(token); ok {
		return sh, loc, true
	}
	if token == "" {
		return nil, Location{}, false
	}
	for i := len(ix.order) - 1; i >= 0; i-- {
		e := ix.order[i]
		if strings.Contains(e.text, token) && ix.available(e.shape) {
			return e.shape, e.loc, true
		}
	}
	return nil, Location{}, false
}

// Duplicates lists texts carried by more than one shape
func (ix *Index) Duplicates() []string {
	out := make([]string, 0, len(ix.dups))
	for text := range ix.dups {
		out = append(out, text)
	}
	sort.Strings(out)
	return out
}

// consume marks a shape as filled so no other token resolves to it
func (ix *Index) consume(sh *pptx.Shape) {
	ix.consumed[sh] = struct{}{}
}

func (ix *Index) available(sh *pptx.Shape) bool {
	if sh.Removed() {
		return false
	}
	_, used := ix.consumed[sh]
	return !used
}
