// Package inject resolves placeholder tokens in a deck and fills them with
// text, pictures, native charts and native tables. Every injector reports
// an Outcome and never aborts the caller.
package inject

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/pulsedeck/internal/model"
	"github.com/ppiankov/pulsedeck/internal/pptx"
)

// Kind names the content an injector writes
type Kind string

const (
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindLineChart Kind = "line_chart"
	KindPieChart  Kind = "pie_chart"
	KindTable     Kind = "table"
)

// Outcome is the result of one injection. Err is nil on success, wraps
// model.ErrPlaceholderMissing when the token was not found, and is a
// *model.InjectionError when the shape was found but could not be filled.
type Outcome struct {
	Token string
	Kind  Kind
	Err   error
}

// OK reports whether the token was filled
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Missing reports whether the token has no shape in the template
func (o Outcome) Missing() bool {
	return errors.Is(o.Err, model.ErrPlaceholderMissing)
}

// errNoGeometry is returned for a placeholder whose bounds cannot be resolved
var errNoGeometry = errors.New("placeholder has no geometry")

func missing(token string, kind Kind) Outcome {
	return Outcome{Token: token, Kind: kind, Err: fmt.Errorf("%s: %w", token, model.ErrPlaceholderMissing)}
}

func failed(token string, kind Kind, err error) Outcome {
	return Outcome{Token: token, Kind: kind, Err: &model.InjectionError{Token: token, Kind: string(kind), Err: err}}
}

// placement returns where new content goes: the placeholder's origin, sized
// to the override when one is set, else to the placeholder itself
func placement(sh *pptx.Shape, size model.Size) (pptx.Geometry, error) {
	g, ok := sh.Geometry()
	if !ok && size.IsZero() {
		return pptx.Geometry{}, errNoGeometry
	}
	if !size.IsZero() {
		g = g.Resize(pptx.Inches(size.WidthIn), pptx.Inches(size.HeightIn))
	}
	return g, nil
}

// Text replaces the token's text and styles it
func Text(ix *Index, token, text string, style pptx.TextStyle) Outcome {
	sh, _, ok := ix.Find(token)
	if !ok {
		return missing(token, KindText)
	}
	if err := sh.SetText(text, style); err != nil {
		return failed(token, KindText, err)
	}
	ix.consume(sh)
	return Outcome{Token: token, Kind: KindText}
}

// Image places a picture at the token's position and clears the token text
func Image(ix *Index, token string, data []byte, size model.Size) Outcome {
	sh, _, ok := ix.Find(token)
	if !ok {
		return missing(token, KindImage)
	}
	if len(data) == 0 {
		return failed(token, KindImage, errors.New("empty image"))
	}
	g, err := placement(sh, size)
	if err != nil {
		return failed(token, KindImage, err)
	}
	if err := placePicture(sh, data, g, token); err != nil {
		return failed(token, KindImage, err)
	}
	ix.consume(sh)
	return Outcome{Token: token, Kind: KindImage}
}

// placePicture adds the picture and clears the placeholder text. When the
// text cannot be cleared the picture is taken off the slide again.
func placePicture(sh *pptx.Shape, data []byte, g pptx.Geometry, name string) error {
	pic, err := sh.Slide().AddPicture(data, g, name)
	if err != nil {
		return err
	}
	if err := sh.ClearText(); err != nil {
		_ = pic.Remove()
		return err
	}
	return nil
}

// LineStyle is the visual policy of the evolution chart
type LineStyle struct {
	SeriesName string
	Color      string
	WidthPt    float64
	Smooth     bool
}

// LineChart replaces the token's shape with an editable line chart, one
// category per point in ascending time order
func LineChart(ix *Index, token string, points []model.SeriesPoint, style LineStyle, size model.Size) Outcome {
	sh, _, ok := ix.Find(token)
	if !ok {
		return missing(token, KindLineChart)
	}
	g, err := placement(sh, size)
	if err != nil {
		return failed(token, KindLineChart, err)
	}

	sorted := append([]model.SeriesPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	chart := pptx.LineChart{
		SeriesName: style.SeriesName,
		Color:      style.Color,
		WidthPt:    style.WidthPt,
		Smooth:     style.Smooth,
	}
	for _, p := range sorted {
		chart.Categories = append(chart.Categories, p.Label)
		chart.Values = append(chart.Values, float64(p.Count))
	}

	if _, err := sh.Slide().AddLineChart(chart, g); err != nil {
		return failed(token, KindLineChart, err)
	}
	return replaced(ix, sh, token, KindLineChart)
}

// canonicalSentiments lead the pie in this order when present
var canonicalSentiments = []string{
	string(model.SentimentPositive),
	string(model.SentimentNeutral),
	string(model.SentimentNegative),
}

// PieOrder puts Positive, Neutral and Negative first, then the remaining
// slices in their given order
func PieOrder(slices []model.SentimentSlice) []model.SentimentSlice {
	out := make([]model.SentimentSlice, 0, len(slices))
	used := make([]bool, len(slices))
	for _, label := range canonicalSentiments {
		for i, s := range slices {
			if !used[i] && s.Label == label {
				out = append(out, s)
				used[i] = true
			}
		}
	}
	for i, s := range slices {
		if !used[i] {
			out = append(out, s)
		}
	}
	return out
}

// PieChart replaces the token's shape with an editable pie chart colored by
// the slices' own palette
func PieChart(ix *Index, token, seriesName string, slices []model.SentimentSlice, size model.Size) Outcome {
	sh, _, ok := ix.Find(token)
	if !ok {
		return missing(token, KindPieChart)
	}
	g, err := placement(sh, size)
	if err != nil {
		return failed(token, KindPieChart, err)
	}

	chart := pptx.PieChart{SeriesName: seriesName}
	for _, s := range PieOrder(slices) {
		chart.Categories = append(chart.Categories, s.Label)
		chart.Values = append(chart.Values, float64(s.Value))
		chart.Colors = append(chart.Colors, s.Color)
	}

	if _, err := sh.Slide().AddPieChart(chart, g); err != nil {
		return failed(token, KindPieChart, err)
	}
	return replaced(ix, sh, token, KindPieChart)
}

// TableStyle is the look of injected tables
type TableStyle struct {
	HeaderFill string
	Header     pptx.TextStyle
	Body       pptx.TextStyle
	Empty      string // rendered for keys a row lacks
}

// Table replaces the token's shape with a native table of len(rows)+1 rows
// and len(headers) columns. Column order follows headers.
func Table(ix *Index, token string, headers []string, rows []map[string]string, style TableStyle, size model.Size) Outcome {
	sh, _, ok := ix.Find(token)
	if !ok {
		return missing(token, KindTable)
	}
	if len(headers) == 0 {
		return failed(token, KindTable, pptx.ErrEmptyTable)
	}
	g, err := placement(sh, size)
	if err != nil {
		return failed(token, KindTable, err)
	}

	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, append([]string(nil), headers...))
	for _, row := range rows {
		line := make([]string, len(headers))
		for i, h := range headers {
			v, ok := row[h]
			if !ok {
				v = style.Empty
			}
			line[i] = v
		}
		cells = append(cells, line)
	}

	spec := pptx.TableSpec{Cells: cells, HeaderFill: style.HeaderFill, Header: style.Header, Body: style.Body}
	if _, err := sh.Slide().AddTable(spec, g); err != nil {
		return failed(token, KindTable, err)
	}
	return replaced(ix, sh, token, KindTable)
}

// replaced removes the placeholder after its replacement was added
func replaced(ix *Index, sh *pptx.Shape, token string, kind Kind) Outcome {
	ix.consume(sh)
	if err := sh.Remove(); err != nil {
		return failed(token, kind, err)
	}
	return Outcome{Token: token, Kind: kind}
}
