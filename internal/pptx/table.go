package pptx

import (
	"errors"
	"strconv"

	"github.com/beevik/etree"
)

// ErrEmptyTable is returned for a table without columns
var ErrEmptyTable = errors.New("table has no columns")

// mediumStyle2Accent1 is PowerPoint's default table style
const mediumStyle2Accent1 = "{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"

// TableSpec is the content and look of a native table. Row 0 of Cells is
// the header row.
type TableSpec struct {
	Cells      [][]string
	HeaderFill string // RRGGBB
	Header     TextStyle
	Body       TextStyle
}

// AddTable adds a native table sized to g, with equal column widths and
// row heights
func (s *Slide) AddTable(t TableSpec, g Geometry) (*Shape, error) {
	if len(t.Cells) == 0 || len(t.Cells[0]) == 0 {
		return nil, ErrEmptyTable
	}
	rows, cols := len(t.Cells), len(t.Cells[0])

	id := s.nextShapeID()
	frame := etree.NewElement("p:graphicFrame")
	nv := sub(frame, "p:nvGraphicFramePr")
	sub(nv, "p:cNvPr", "id", strconv.Itoa(id), "name", "Table "+strconv.Itoa(id))
	locks := sub(nv, "p:cNvGraphicFramePr")
	sub(locks, "a:graphicFrameLocks", "noGrp", "1")
	sub(nv, "p:nvPr")
	writeXfrm(frame, "p:xfrm", g)

	data := sub(sub(frame, "a:graphic"), "a:graphicData", "uri", uriTable)
	tbl := sub(data, "a:tbl")
	props := sub(tbl, "a:tblPr", "firstRow", "1", "bandRow", "1")
	sub(props, "a:tableStyleId").SetText(mediumStyle2Accent1)

	grid := sub(tbl, "a:tblGrid")
	for _, w := range split(g.Width, cols) {
		sub(grid, "a:gridCol", "w", itoa(w))
	}

	heights := split(g.Height, rows)
	for r := 0; r < rows; r++ {
		tr := sub(tbl, "a:tr", "h", itoa(heights[r]))
		for c := 0; c < cols; c++ {
			text := ""
			if c < len(t.Cells[r]) {
				text = t.Cells[r][c]
			}
			if r == 0 {
				tableCell(tr, text, t.Header, t.HeaderFill)
			} else {
				tableCell(tr, text, t.Body, "")
			}
		}
	}

	return s.appendShape(frame, KindTable), nil
}

// split divides total into n parts, giving the remainder to the last one
func split(total int64, n int) []int64 {
	out := make([]int64, n)
	each := total / int64(n)
	for i := range out {
		out[i] = each
	}
	out[n-1] += total - each*int64(n)
	return out
}

func tableCell(tr *etree.Element, text string, style TextStyle, fill string) {
	tc := sub(tr, "a:tc")
	body := sub(tc, "a:txBody")
	sub(body, "a:bodyPr")
	sub(body, "a:lstStyle")
	writeParagraph(body, cleanText(text), style)

	tcPr := sub(tc, "a:tcPr", "anchor", "ctr")
	solidFill(tcPr, fill)
}

// Table is a read-only view of a table shape
type Table struct {
	cells [][]string
}

// Table returns the shape's table, if it is one
func (s *Shape) Table() (*Table, bool) {
	if s.kind != KindTable {
		return nil, false
	}
	tbl := descend(s.el, "a:graphic", "a:graphicData", "a:tbl")
	out := &Table{}
	for _, tr := range children(tbl, "a:tr") {
		var row []string
		for _, tc := range children(tr, "a:tc") {
			row = append(row, bodyText(firstChild(tc, "a:txBody")))
		}
		out.cells = append(out.cells, row)
	}
	return out, true
}

// Rows returns the number of rows, header included
func (t *Table) Rows() int {
	return len(t.cells)
}

// Cols returns the number of columns of the first row
func (t *Table) Cols() int {
	if len(t.cells) == 0 {
		return 0
	}
	return len(t.cells[0])
}

// Cell returns the text at row r, column c
func (t *Table) Cell(r, c int) string {
	if r < 0 || r >= len(t.cells) || c < 0 || c >= len(t.cells[r]) {
		return ""
	}
	return t.cells[r][c]
}

// Row returns a copy of row r
func (t *Table) Row(r int) []string {
	if r < 0 || r >= len(t.cells) {
		return nil
	}
	return append([]string(nil), t.cells[r]...)
}
