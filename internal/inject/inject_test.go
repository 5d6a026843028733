package inject

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/pulsedeck/internal/model"
	"github.com/ppiankov/pulsedeck/internal/pptx"
	"github.com/ppiankov/pulsedeck/internal/pptx/pptxtest"
)

func deck(t *testing.T, slides ...[]pptxtest.Shape) *pptx.Presentation {
	t.Helper()
	return pptxtest.Open(t, pptxtest.Deck{Slides: slides})
}

func box(text string) pptxtest.Shape {
	return pptxtest.Box(text, pptx.Inches(1), pptx.Inches(1), pptx.Inches(4), pptx.Inches(2))
}

func TestIndex_LastWinsAndDuplicates(t *testing.T) {
	pres := deck(t,
		[]pptxtest.Shape{box("NUMB_MENTIONS"), box("  REPORT_CLIENT  ")},
		[]pptxtest.Shape{{NoText: true, Width: 1, Height: 1}, box("NUMB_MENTIONS")},
	)
	ix := BuildIndex(pres)

	assert.Equal(t, 3, ix.Len())
	_, loc, ok := ix.Lookup("NUMB_MENTIONS")
	require.True(t, ok)
	assert.Equal(t, Location{Slide: 1, Shape: 1}, loc)
	assert.Equal(t, []string{"NUMB_MENTIONS"}, ix.Duplicates())

	_, loc, ok = ix.Lookup("REPORT_CLIENT")
	require.True(t, ok, "index keys are trimmed")
	assert.Equal(t, Location{Slide: 0, Shape: 1}, loc)

	_, _, ok = ix.Lookup("MISSING")
	assert.False(t, ok)
}

func TestIndex_FindSubstringAndConsume(t *testing.T) {
	pres := deck(t, []pptxtest.Shape{box("Cliente: REPORT_CLIENT"), box("Fecha REPORT_DATE")})
	ix := BuildIndex(pres)

	_, _, ok := ix.Lookup("REPORT_DATE")
	assert.False(t, ok, "Lookup is exact")

	sh, loc, ok := ix.Find("REPORT_DATE")
	require.True(t, ok)
	assert.Equal(t, 1, loc.Shape)

	ix.consume(sh)
	_, _, ok = ix.Find("REPORT_DATE")
	assert.False(t, ok, "a filled shape is not returned twice")
}

func TestText(t *testing.T) {
	pres := deck(t, []pptxtest.Shape{box("REPORT_CLIENT")})
	ix := BuildIndex(pres)

	out := Text(ix, "REPORT_CLIENT", "ACME", pptx.TextStyle{Bold: true, SizePt: 24})
	require.True(t, out.OK(), "%v", out.Err)

	again := pptxtest.Reopen(t, pres)
	assert.NotNil(t, pptxtest.Find(again, "ACME"))

	out = Text(ix, "NUMB_ACTORS", "3", pptx.TextStyle{})
	assert.True(t, out.Missing())
	assert.ErrorIs(t, out.Err, model.ErrPlaceholderMissing)
	assert.Equal(t, KindText, out.Kind)
}

func TestImage(t *testing.T) {
	pres := deck(t, []pptxtest.Shape{box("WORDCLOUD")})
	ix := BuildIndex(pres)

	bad := Image(ix, "WORDCLOUD", []byte("garbage"), model.Size{})
	var injErr *model.InjectionError
	require.True(t, errors.As(bad.Err, &injErr))
	assert.ErrorIs(t, bad.Err, pptx.ErrUnsupportedImage)
	assert.NotNil(t, pptxtest.Find(pres, "WORDCLOUD"), "a failed image leaves the placeholder untouched")

	out := Image(ix, "WORDCLOUD", pptxtest.PNG(t), model.Size{WidthIn: 4.2, HeightIn: 2.66})
	require.True(t, out.OK(), "%v", out.Err)

	shapes := pres.Slides()[0].Shapes()
	require.Len(t, shapes, 2)
	assert.Equal(t, "", shapes[0].Text(), "placeholder text is cleared")
	g, ok := shapes[1].Geometry()
	require.True(t, ok)
	assert.Equal(t, pptx.Inches(1), g.Left)
	assert.Equal(t, pptx.Inches(4.2), g.Width)
}

func TestPlacePicture_ClearFailureLeavesNoPicture(t *testing.T) {
	pres := deck(t, []pptxtest.Shape{box("WORDCLOUD"), box("OTHER")})
	sh := pptxtest.Find(pres, "WORDCLOUD")
	require.NotNil(t, sh)
	g, ok := sh.Geometry()
	require.True(t, ok)
	require.NoError(t, sh.Remove())

	err := placePicture(sh, pptxtest.PNG(t), g, "WORDCLOUD")
	assert.ErrorIs(t, err, pptx.ErrRemoved)

	shapes := pres.Slides()[0].Shapes()
	require.Len(t, shapes, 1, "the picture is withdrawn when the text cannot be cleared")
	assert.Equal(t, "OTHER", shapes[0].Text())
}

func TestLineChart_AscendingCategories(t *testing.T) {
	pres := deck(t, []pptxtest.Shape{box("CONVERSATION_CHART")})
	ix := BuildIndex(pres)
	base := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	points := []model.SeriesPoint{
		{Label: "06-Mar", At: base.AddDate(0, 0, 1), Count: 4},
		{Label: "05-Mar", At: base, Count: 2},
	}
	out := LineChart(ix, "CONVERSATION_CHART", points, LineStyle{SeriesName: "Menciones", Color: "FFA500", WidthPt: 5, Smooth: true}, model.Size{})
	require.True(t, out.OK(), "%v", out.Err)

	again := pptxtest.Reopen(t, pres)
	assert.Nil(t, pptxtest.Find(again, "CONVERSATION_CHART"), "placeholder is removed")
	shapes := again.Slides()[0].Shapes()
	require.Len(t, shapes, 1)
	chart, ok := shapes[0].Chart()
	require.True(t, ok)
	assert.Equal(t, []string{"05-Mar", "06-Mar"}, chart.Categories)
	assert.Equal(t, []float64{2, 4}, chart.Values)
	assert.False(t, chart.Legend)

	g, ok := shapes[0].Geometry()
	require.True(t, ok)
	assert.Equal(t, pptx.Geometry{Left: pptx.Inches(1), Top: pptx.Inches(1), Width: pptx.Inches(4), Height: pptx.Inches(2)}, g)
}

func TestLineChart_EmptySeriesFails(t *testing.T) {
	pres := deck(t, []pptxtest.Shape{box("CONVERSATION_CHART")})
	ix := BuildIndex(pres)

	out := LineChart(ix, "CONVERSATION_CHART", nil, LineStyle{}, model.Size{})
	assert.False(t, out.OK())
	assert.False(t, out.Missing())
	assert.ErrorIs(t, out.Err, pptx.ErrEmptyChart)
	assert.NotNil(t, pptxtest.Find(pres, "CONVERSATION_CHART"))
}

func TestPieOrder(t *testing.T) {
	in := []model.SentimentSlice{
		{Label: "Mixed", Value: 9},
		{Label: "Negative", Value: 5},
		{Label: "Positive", Value: 1},
		{Label: "Other", Value: 2},
	}
	var got []string
	for _, s := range PieOrder(in) {
		got = append(got, s.Label)
	}
	assert.Equal(t, []string{"Positive", "Negative", "Mixed", "Other"}, got)
}

func TestPieChart(t *testing.T) {
	pres := deck(t, []pptxtest.Shape{box("SENTIMENT_PIE")})
	ix := BuildIndex(pres)

	slices := []model.SentimentSlice{
		{Label: "Neutral", Value: 5, Color: "BFBFBF"},
		{Label: "Negative", Value: 3, Color: "FF0000"},
		{Label: "Positive", Value: 2, Color: "00B050"},
	}
	out := PieChart(ix, "SENTIMENT_PIE", "Sentimiento", slices, model.Size{WidthIn: 5.75, HeightIn: 5.09})
	require.True(t, out.OK(), "%v", out.Err)

	again := pptxtest.Reopen(t, pres)
	chart, ok := again.Slides()[0].Shapes()[0].Chart()
	require.True(t, ok)
	assert.Equal(t, []string{"Positive", "Neutral", "Negative"}, chart.Categories)
	assert.Equal(t, []string{"00B050", "BFBFBF", "FF0000"}, chart.Colors)
	assert.True(t, chart.Legend)
}

func TestTable_RowsColumnsAndHeaderOrder(t *testing.T) {
	pres := deck(t, []pptxtest.Shape{box("TOP_INFLUENCERS_PRENSA_TABLE")})
	ix := BuildIndex(pres)

	headers := []string{"Reach", "Influencer", "Posts"}
	rows := []map[string]string{
		{"Influencer": "El Tiempo", "Posts": "4", "Reach": "90,000"},
		{"Influencer": "Semana", "Posts": "2"},
	}
	style := TableStyle{HeaderFill: "FFC000", Empty: "-"}

	out := Table(ix, "TOP_INFLUENCERS_PRENSA_TABLE", headers, rows, style, model.Size{})
	require.True(t, out.OK(), "%v", out.Err)

	again := pptxtest.Reopen(t, pres)
	tbl, ok := again.Slides()[0].Shapes()[0].Table()
	require.True(t, ok)
	assert.Equal(t, len(rows)+1, tbl.Rows())
	assert.Equal(t, len(headers), tbl.Cols())
	assert.Equal(t, headers, tbl.Row(0))
	assert.Equal(t, []string{"90,000", "El Tiempo", "4"}, tbl.Row(1))
	assert.Equal(t, []string{"-", "Semana", "2"}, tbl.Row(2))
}

func TestTable_NoHeadersFails(t *testing.T) {
	pres := deck(t, []pptxtest.Shape{box("CATEGORY_TABLE")})
	ix := BuildIndex(pres)

	out := Table(ix, "CATEGORY_TABLE", nil, nil, TableStyle{}, model.Size{})
	var injErr *model.InjectionError
	require.True(t, errors.As(out.Err, &injErr))
	assert.Equal(t, "table", injErr.Kind)
}

func TestPlaceholderWithoutGeometry(t *testing.T) {
	pres := deck(t, []pptxtest.Shape{{Text: "SENTIMENT_PIE", Placeholder: "body"}})
	ix := BuildIndex(pres)

	out := PieChart(ix, "SENTIMENT_PIE", "", []model.SentimentSlice{{Label: "Positive", Value: 1}}, model.Size{})
	assert.ErrorIs(t, out.Err, errNoGeometry)

	out = PieChart(ix, "SENTIMENT_PIE", "", []model.SentimentSlice{{Label: "Positive", Value: 1}}, model.Size{WidthIn: 2, HeightIn: 2})
	assert.True(t, out.OK(), "%v", out.Err)
}
