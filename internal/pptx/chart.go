package pptx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyChart is returned when a chart has no data points
var ErrEmptyChart = errors.New("chart has no data")

const dataSheet = "Sheet1"

// LineChart describes a single-series line chart
type LineChart struct {
	SeriesName string
	Categories []string
	Values     []float64
	Color      string  // RRGGBB
	WidthPt    float64 // line width
	Smooth     bool
}

// PieChart describes a single-series pie chart with explicit slice colors
type PieChart struct {
	SeriesName string
	Categories []string
	Values     []float64
	Colors     []string // RRGGBB per slice; empty entries keep the theme color
}

// Chart kinds reported by ChartData
const (
	ChartLine = "line"
	ChartPie  = "pie"
)

// ChartData is what Shape.Chart reads back from an embedded chart
type ChartData struct {
	Kind       string
	Categories []string
	Values     []float64
	Colors     []string
	Legend     bool
	Smooth     bool
}

// AddLineChart embeds an editable line chart at g
func (s *Slide) AddLineChart(c LineChart, g Geometry) (*Shape, error) {
	if err := checkSeries(c.Categories, c.Values); err != nil {
		return nil, err
	}
	space := chartSpace()
	chart := sub(space.Root(), "c:chart")
	val(chart, "c:autoTitleDeleted", "1")
	plot := sub(chart, "c:plotArea")
	sub(plot, "c:layout")

	line := sub(plot, "c:lineChart")
	val(line, "c:grouping", "standard")
	val(line, "c:varyColors", "0")

	ser := series(line, c.SeriesName)
	spPr := sub(ser, "c:spPr")
	ln := sub(spPr, "a:ln", "w", strconv.Itoa(int(c.WidthPt*EMUPerPoint)), "cap", "rnd")
	solidFill(ln, c.Color)
	sub(ln, "a:round")
	marker := sub(ser, "c:marker")
	val(marker, "c:symbol", "none")
	categoryRef(ser, c.Categories)
	valueRef(ser, c.Values)
	val(ser, "c:smooth", boolVal(c.Smooth))

	val(line, "c:marker", "1")
	val(line, "c:axId", catAxisID)
	val(line, "c:axId", valAxisID)

	categoryAxis(plot)
	valueAxis(plot)

	// No legend element: the chart shows none
	val(chart, "c:plotVisOnly", "1")
	val(chart, "c:dispBlanksAs", "gap")

	return s.addChart(space, c.SeriesName, c.Categories, c.Values, g, "Line Chart")
}

// AddPieChart embeds an editable pie chart at g with percentage labels
// inside each slice and the legend at the bottom
func (s *Slide) AddPieChart(c PieChart, g Geometry) (*Shape, error) {
	if err := checkSeries(c.Categories, c.Values); err != nil {
		return nil, err
	}
	space := chartSpace()
	chart := sub(space.Root(), "c:chart")
	val(chart, "c:autoTitleDeleted", "1")
	plot := sub(chart, "c:plotArea")
	sub(plot, "c:layout")

	pie := sub(plot, "c:pieChart")
	val(pie, "c:varyColors", "1")

	ser := series(pie, c.SeriesName)
	for i := range c.Categories {
		if i >= len(c.Colors) || c.Colors[i] == "" {
			continue
		}
		dPt := sub(ser, "c:dPt")
		val(dPt, "c:idx", strconv.Itoa(i))
		val(dPt, "c:bubble3D", "0")
		spPr := sub(dPt, "c:spPr")
		solidFill(spPr, c.Colors[i])
	}

	labels := sub(ser, "c:dLbls")
	sub(labels, "c:numFmt", "formatCode", "0.00%", "sourceLinked", "0")
	sub(labels, "c:spPr")
	chartText(labels, 1100, true, "FFFFFF")
	val(labels, "c:dLblPos", "inEnd")
	val(labels, "c:showLegendKey", "0")
	val(labels, "c:showVal", "0")
	val(labels, "c:showCatName", "0")
	val(labels, "c:showSerName", "0")
	val(labels, "c:showPercent", "1")
	val(labels, "c:showBubbleSize", "0")
	val(labels, "c:showLeaderLines", "1")

	categoryRef(ser, c.Categories)
	valueRef(ser, c.Values)
	val(pie, "c:firstSliceAng", "0")

	legend := sub(chart, "c:legend")
	val(legend, "c:legendPos", "b")
	val(legend, "c:overlay", "0")
	val(chart, "c:plotVisOnly", "1")
	val(chart, "c:dispBlanksAs", "gap")

	return s.addChart(space, c.SeriesName, c.Categories, c.Values, g, "Pie Chart")
}

func checkSeries(categories []string, values []float64) error {
	if len(categories) == 0 {
		return ErrEmptyChart
	}
	if len(categories) != len(values) {
		return fmt.Errorf("chart has %d categories but %d values", len(categories), len(values))
	}
	return nil
}

// addChart stores the chart part with its workbook and places a graphic
// frame referencing it on the slide
func (s *Slide) addChart(space *etree.Document, seriesName string, categories []string, values []float64, g Geometry, label string) (*Shape, error) {
	book, err := workbook(seriesName, categories, values)
	if err != nil {
		return nil, fmt.Errorf("build chart workbook: %w", err)
	}

	pkg := s.pres.pkg
	chartPart := pkg.nextName("ppt/charts/chart", ".xml")
	bookPart := pkg.nextName("ppt/embeddings/Microsoft_Excel_Sheet", ".xlsx")

	pkg.putBinary(bookPart, book)
	chartRels, err := pkg.loadRels(chartPart)
	if err != nil {
		return nil, err
	}
	bookID := chartRels.add(relPackage, bookPart)
	external := sub(space.Root(), "c:externalData", "r:id", bookID)
	val(external, "c:autoUpdate", "0")
	pkg.putXML(chartPart, space)

	s.pres.types.ensureDefault("xlsx", ctXLSX)
	s.pres.types.addOverride(chartPart, ctChart)
	rid := s.rels.add(relChart, chartPart)

	id := s.nextShapeID()
	frame := etree.NewElement("p:graphicFrame")
	nv := sub(frame, "p:nvGraphicFramePr")
	sub(nv, "p:cNvPr", "id", strconv.Itoa(id), "name", label+" "+strconv.Itoa(id))
	sub(nv, "p:cNvGraphicFramePr")
	sub(nv, "p:nvPr")
	writeXfrm(frame, "p:xfrm", g)

	data := sub(sub(frame, "a:graphic"), "a:graphicData", "uri", uriChart)
	sub(data, "c:chart", "xmlns:c", nsC, "xmlns:r", nsR, "r:id", rid)

	return s.appendShape(frame, KindOther), nil
}

func chartSpace() *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("c:chartSpace")
	root.CreateAttr("xmlns:c", nsC)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:r", nsR)
	val(root, "c:date1904", "0")
	val(root, "c:roundedCorners", "0")
	return doc
}

// series writes idx, order and the series name reference
func series(parent *etree.Element, name string) *etree.Element {
	ser := sub(parent, "c:ser")
	val(ser, "c:idx", "0")
	val(ser, "c:order", "0")
	tx := sub(sub(ser, "c:tx"), "c:strRef")
	sub(tx, "c:f").SetText(dataSheet + "!$B$1")
	cache := sub(tx, "c:strCache")
	val(cache, "c:ptCount", "1")
	pt := sub(cache, "c:pt", "idx", "0")
	sub(pt, "c:v").SetText(cleanText(name))
	return ser
}

func categoryRef(ser *etree.Element, categories []string) {
	ref := sub(sub(ser, "c:cat"), "c:strRef")
	sub(ref, "c:f").SetText(columnRange("A", len(categories)))
	cache := sub(ref, "c:strCache")
	val(cache, "c:ptCount", strconv.Itoa(len(categories)))
	for i, c := range categories {
		pt := sub(cache, "c:pt", "idx", strconv.Itoa(i))
		sub(pt, "c:v").SetText(cleanText(c))
	}
}

func valueRef(ser *etree.Element, values []float64) {
	ref := sub(sub(ser, "c:val"), "c:numRef")
	sub(ref, "c:f").SetText(columnRange("B", len(values)))
	cache := sub(ref, "c:numCache")
	sub(cache, "c:formatCode").SetText("General")
	val(cache, "c:ptCount", strconv.Itoa(len(values)))
	for i, v := range values {
		pt := sub(cache, "c:pt", "idx", strconv.Itoa(i))
		sub(pt, "c:v").SetText(strconv.FormatFloat(v, 'f', -1, 64))
	}
}

func columnRange(col string, n int) string {
	return fmt.Sprintf("%s!$%s$2:$%s$%d", dataSheet, col, col, n+1)
}

const (
	catAxisID = "500000001"
	valAxisID = "500000002"
)

func categoryAxis(plot *etree.Element) {
	ax := sub(plot, "c:catAx")
	val(ax, "c:axId", catAxisID)
	val(sub(ax, "c:scaling"), "c:orientation", "minMax")
	val(ax, "c:delete", "0")
	val(ax, "c:axPos", "b")
	sub(ax, "c:numFmt", "formatCode", "General", "sourceLinked", "1")
	val(ax, "c:majorTickMark", "out")
	val(ax, "c:minorTickMark", "none")
	val(ax, "c:tickLblPos", "nextTo")
	val(ax, "c:crossAx", valAxisID)
	val(ax, "c:crosses", "autoZero")
	val(ax, "c:auto", "1")
	val(ax, "c:lblAlgn", "ctr")
	val(ax, "c:lblOffset", "100")
	val(ax, "c:noMultiLvlLbl", "0")
}

// valueAxis has no majorGridlines element, so none are drawn
func valueAxis(plot *etree.Element) {
	ax := sub(plot, "c:valAx")
	val(ax, "c:axId", valAxisID)
	val(sub(ax, "c:scaling"), "c:orientation", "minMax")
	val(ax, "c:delete", "0")
	val(ax, "c:axPos", "l")
	sub(ax, "c:numFmt", "formatCode", "General", "sourceLinked", "1")
	val(ax, "c:majorTickMark", "out")
	val(ax, "c:minorTickMark", "none")
	val(ax, "c:tickLblPos", "nextTo")
	val(ax, "c:crossAx", catAxisID)
	val(ax, "c:crosses", "autoZero")
	val(ax, "c:crossBetween", "between")
}

func solidFill(parent *etree.Element, color string) {
	if color == "" {
		return
	}
	fill := sub(parent, "a:solidFill")
	sub(fill, "a:srgbClr", "val", strings.ToUpper(strings.TrimPrefix(color, "#")))
}

// chartText writes a c:txPr with default run properties
func chartText(parent *etree.Element, size int, bold bool, color string) {
	tx := sub(parent, "c:txPr")
	sub(tx, "a:bodyPr")
	sub(tx, "a:lstStyle")
	p := sub(tx, "a:p")
	def := sub(sub(p, "a:pPr"), "a:defRPr", "sz", strconv.Itoa(size), "b", boolVal(bold))
	solidFill(def, color)
	sub(p, "a:endParaRPr", "lang", "es-ES")
}

func boolVal(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// workbook builds the embedded spreadsheet that backs an editable chart:
// categories in column A, values in column B, series name in B1
func workbook(seriesName string, categories []string, values []float64) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetCellValue(dataSheet, "B1", seriesName); err != nil {
		return nil, err
	}
	for i, c := range categories {
		row := strconv.Itoa(i + 2)
		if err := f.SetCellValue(dataSheet, "A"+row, c); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(dataSheet, "B"+row, values[i]); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Chart reads back the chart a graphic frame references
func (s *Shape) Chart() (*ChartData, bool) {
	data := descend(s.el, "a:graphic", "a:graphicData")
	if data == nil || data.SelectAttrValue("uri", "") != uriChart {
		return nil, false
	}
	ref := firstChild(data, "c:chart")
	if ref == nil {
		return nil, false
	}
	part, ok := s.slide.rels.target(ref.SelectAttrValue("r:id", ""))
	if !ok {
		return nil, false
	}
	doc, err := s.slide.pres.pkg.xml(part)
	if err != nil {
		return nil, false
	}

	chart := descend(doc.Root(), "c:chart")
	plot := firstChild(chart, "c:plotArea")
	out := &ChartData{Legend: firstChild(chart, "c:legend") != nil}

	var group *etree.Element
	if group = firstChild(plot, "c:lineChart"); group != nil {
		out.Kind = ChartLine
	} else if group = firstChild(plot, "c:pieChart"); group != nil {
		out.Kind = ChartPie
	} else {
		return out, true
	}

	ser := firstChild(group, "c:ser")
	for _, pt := range children(descend(ser, "c:cat", "c:strRef", "c:strCache"), "c:pt") {
		out.Categories = append(out.Categories, descend(pt, "c:v").Text())
	}
	for _, pt := range children(descend(ser, "c:val", "c:numRef", "c:numCache"), "c:pt") {
		v, _ := strconv.ParseFloat(descend(pt, "c:v").Text(), 64)
		out.Values = append(out.Values, v)
	}
	for _, dPt := range children(ser, "c:dPt") {
		clr := descend(dPt, "c:spPr", "a:solidFill", "a:srgbClr")
		if clr != nil {
			out.Colors = append(out.Colors, clr.SelectAttrValue("val", ""))
		}
	}
	if sm := firstChild(ser, "c:smooth"); sm != nil {
		out.Smooth = sm.SelectAttrValue("val", "") == "1"
	}
	return out, true
}
