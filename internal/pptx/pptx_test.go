package pptx_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/pulsedeck/internal/pptx"
	"github.com/ppiankov/pulsedeck/internal/pptx/pptxtest"
)

func TestRead_SlideOrderAndKinds(t *testing.T) {
	deck := pptxtest.Deck{Slides: [][]pptxtest.Shape{
		{
			pptxtest.Box("FIRST", 0, 0, 100, 100),
			{Name: "rect", NoText: true, Width: 10, Height: 10},
			{Name: "grid", Table: [][]string{{"a", "b"}, {"1", "2"}}, Width: 200, Height: 100},
		},
		{pptxtest.Box("SECOND", 0, 0, 100, 100)},
	}}

	pres := pptxtest.Open(t, deck)
	slides := pres.Slides()
	require.Len(t, slides, 2)
	assert.Equal(t, "FIRST", slides[0].Shapes()[0].Text())
	assert.Equal(t, "SECOND", slides[1].Shapes()[0].Text())

	kinds := []pptx.Kind{}
	for _, sh := range slides[0].Shapes() {
		kinds = append(kinds, sh.Kind())
	}
	assert.Equal(t, []pptx.Kind{pptx.KindTextFrame, pptx.KindOther, pptx.KindTable}, kinds)

	tbl, ok := slides[0].Shapes()[2].Table()
	require.True(t, ok)
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, "2", tbl.Cell(1, 1))
}

func TestRead_NotAPresentation(t *testing.T) {
	_, err := pptx.Read(bytes.NewReader([]byte("plain text")), 10)
	assert.Error(t, err)
}

func TestGeometry_InheritsFromLayoutAndMaster(t *testing.T) {
	deck := pptxtest.Deck{
		Layout: []pptxtest.Shape{
			{Placeholder: "body", PlaceholderIdx: 1, Left: 10, Top: 20, Width: 300, Height: 400},
		},
		Master: []pptxtest.Shape{
			{Placeholder: "title", Left: 1, Top: 2, Width: 3, Height: 4},
		},
		Slides: [][]pptxtest.Shape{{
			{Text: "BODY", PlaceholderIdx: 1},
			{Text: "TITLE", Placeholder: "title"},
			{Text: "ORPHAN", Placeholder: "pic"},
		}},
	}
	pres := pptxtest.Open(t, deck)
	shapes := pres.Slides()[0].Shapes()

	g, ok := shapes[0].Geometry()
	require.True(t, ok)
	assert.Equal(t, pptx.Geometry{Left: 10, Top: 20, Width: 300, Height: 400}, g)

	g, ok = shapes[1].Geometry()
	require.True(t, ok)
	assert.Equal(t, pptx.Geometry{Left: 1, Top: 2, Width: 3, Height: 4}, g)

	_, ok = shapes[2].Geometry()
	assert.False(t, ok)
}

func TestSetText_ParagraphPerLine(t *testing.T) {
	pres := pptxtest.Open(t, pptxtest.Deck{Slides: [][]pptxtest.Shape{{pptxtest.Box("TOKEN", 0, 0, 10, 10)}}})
	sh := pres.Slides()[0].Shapes()[0]

	style := pptx.TextStyle{FontName: "Arial", SizePt: 11, Bold: true, Color: "#ff0000", Align: pptx.AlignCenter}
	require.NoError(t, sh.SetText("uno\n\ndos & <tres>", style))

	again := pptxtest.Reopen(t, pres)
	assert.Equal(t, "uno\n\ndos & <tres>", again.Slides()[0].Shapes()[0].Text())

	rect := pptxtest.Open(t, pptxtest.Deck{Slides: [][]pptxtest.Shape{{{NoText: true, Width: 1, Height: 1}}}})
	assert.ErrorIs(t, rect.Slides()[0].Shapes()[0].SetText("x", style), pptx.ErrNoTextFrame)
}

func TestRemove(t *testing.T) {
	pres := pptxtest.Open(t, pptxtest.Deck{Slides: [][]pptxtest.Shape{{
		pptxtest.Box("KEEP", 0, 0, 10, 10),
		pptxtest.Box("DROP", 0, 0, 10, 10),
	}}})
	slide := pres.Slides()[0]
	drop := slide.Shapes()[1]

	require.NoError(t, drop.Remove())
	assert.ErrorIs(t, drop.Remove(), pptx.ErrRemoved)
	assert.Len(t, slide.Shapes(), 1)

	again := pptxtest.Reopen(t, pres)
	assert.Len(t, again.Slides()[0].Shapes(), 1)
	assert.Nil(t, pptxtest.Find(again, "DROP"))
}

func TestAddPicture(t *testing.T) {
	pres := pptxtest.Open(t, pptxtest.Deck{Slides: [][]pptxtest.Shape{{pptxtest.Box("IMG", 0, 0, 10, 10)}}})
	slide := pres.Slides()[0]
	g := pptx.Geometry{Left: 5, Top: 6, Width: pptx.Inches(2), Height: pptx.Inches(1)}

	pic, err := slide.AddPicture(pptxtest.PNG(t), g, "")
	require.NoError(t, err)
	assert.Equal(t, pptx.KindPicture, pic.Kind())
	assert.Equal(t, 3, pic.ID())

	_, err = slide.AddPicture([]byte("not an image"), g, "")
	assert.ErrorIs(t, err, pptx.ErrUnsupportedImage)

	again := pptxtest.Reopen(t, pres)
	shapes := again.Slides()[0].Shapes()
	require.Len(t, shapes, 2)
	got, ok := shapes[1].Geometry()
	require.True(t, ok)
	assert.Equal(t, g, got)
}

func TestAddLineChart(t *testing.T) {
	pres := pptxtest.Open(t, pptxtest.Deck{Slides: [][]pptxtest.Shape{{}}})
	slide := pres.Slides()[0]

	_, err := slide.AddLineChart(pptx.LineChart{
		SeriesName: "Menciones",
		Categories: []string{"05-Mar", "06-Mar"},
		Values:     []float64{3, 7},
		Color:      "FFA500",
		WidthPt:    5,
		Smooth:     true,
	}, pptx.Geometry{Width: 100, Height: 100})
	require.NoError(t, err)

	_, err = slide.AddLineChart(pptx.LineChart{}, pptx.Geometry{})
	assert.ErrorIs(t, err, pptx.ErrEmptyChart)

	again := pptxtest.Reopen(t, pres)
	chart, ok := again.Slides()[0].Shapes()[0].Chart()
	require.True(t, ok)
	assert.Equal(t, pptx.ChartLine, chart.Kind)
	assert.Equal(t, []string{"05-Mar", "06-Mar"}, chart.Categories)
	assert.Equal(t, []float64{3, 7}, chart.Values)
	assert.True(t, chart.Smooth)
	assert.False(t, chart.Legend)
}

func TestAddPieChart_TwoChartsGetDistinctParts(t *testing.T) {
	pres := pptxtest.Open(t, pptxtest.Deck{Slides: [][]pptxtest.Shape{{}, {}}})

	for i, slide := range pres.Slides() {
		_, err := slide.AddPieChart(pptx.PieChart{
			SeriesName: "Sentimiento",
			Categories: []string{"Positive", "Negative"},
			Values:     []float64{float64(i + 1), 2},
			Colors:     []string{"00B050", "FF0000"},
		}, pptx.Geometry{Width: 100, Height: 100})
		require.NoError(t, err)
	}

	again := pptxtest.Reopen(t, pres)
	first, ok := again.Slides()[0].Shapes()[0].Chart()
	require.True(t, ok)
	second, ok := again.Slides()[1].Shapes()[0].Chart()
	require.True(t, ok)

	assert.Equal(t, pptx.ChartPie, first.Kind)
	assert.True(t, first.Legend)
	assert.Equal(t, []string{"00B050", "FF0000"}, first.Colors)
	assert.Equal(t, 1.0, first.Values[0])
	assert.Equal(t, 2.0, second.Values[0])
}

func TestAddTable(t *testing.T) {
	pres := pptxtest.Open(t, pptxtest.Deck{Slides: [][]pptxtest.Shape{{}}})
	slide := pres.Slides()[0]

	_, err := slide.AddTable(pptx.TableSpec{
		Cells:      [][]string{{"Influencer", "Posts"}, {"@a", "3"}, {"@b"}},
		HeaderFill: "FFC000",
		Header:     pptx.TextStyle{Bold: true, SizePt: 12, Align: pptx.AlignCenter},
		Body:       pptx.TextStyle{SizePt: 10, Align: pptx.AlignCenter},
	}, pptx.Geometry{Width: 1001, Height: 300})
	require.NoError(t, err)

	_, err = slide.AddTable(pptx.TableSpec{}, pptx.Geometry{})
	assert.ErrorIs(t, err, pptx.ErrEmptyTable)

	again := pptxtest.Reopen(t, pres)
	tbl, ok := again.Slides()[0].Shapes()[0].Table()
	require.True(t, ok)
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, 2, tbl.Cols())
	assert.Equal(t, []string{"Influencer", "Posts"}, tbl.Row(0))
	assert.Equal(t, "", tbl.Cell(2, 1))
}
