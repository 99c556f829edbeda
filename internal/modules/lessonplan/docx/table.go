package docx

import "strings"

// TableGridStyle is the bordered table style defined in styles.xml.
const TableGridStyle = "TableGrid"

type Cell struct {
	Width      Length
	GridSpan   int
	Fill       string // hex RGB without '#', empty for none
	Paragraphs []*Paragraph
}

func newCell(width Length, span int) *Cell {
	return &Cell{Width: width, GridSpan: span, Paragraphs: []*Paragraph{{}}}
}

// Paragraph returns the cell's first paragraph.
func (c *Cell) Paragraph() *Paragraph {
	return c.Paragraphs[0]
}

func (c *Cell) AddParagraph(text string) *Paragraph {
	p := &Paragraph{}
	if text != "" {
		p.AddRun(text)
	}
	c.Paragraphs = append(c.Paragraphs, p)
	return p
}

// Span is the number of grid columns the cell covers.
func (c *Cell) Span() int {
	if c.GridSpan < 1 {
		return 1
	}
	return c.GridSpan
}

// Text joins paragraph texts with newlines.
func (c *Cell) Text() string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text())
	}
	return strings.Join(parts, "\n")
}

type Row struct {
	Cells []*Cell
}

// Merged reports whether a single cell spans the whole row.
func (r *Row) Merged() bool {
	return len(r.Cells) == 1 && r.Cells[0].Span() > 1
}

func (r *Row) Cell(i int) *Cell {
	if i < 0 || i >= len(r.Cells) {
		return nil
	}
	return r.Cells[i]
}

// Table rows are append-only; there is no API to remove or reorder them.
type Table struct {
	Style   string
	Columns []Length

	rows []*Row
}

// AddRow appends a row with one cell per grid column.
func (t *Table) AddRow() *Row {
	row := &Row{Cells: make([]*Cell, len(t.Columns))}
	for i, w := range t.Columns {
		row.Cells[i] = newCell(w, 1)
	}
	t.rows = append(t.rows, row)
	return row
}

// AddMergedRow appends a row made of one cell spanning every grid column.
func (t *Table) AddMergedRow() *Row {
	var total Length
	for _, w := range t.Columns {
		total += w
	}
	row := &Row{Cells: []*Cell{newCell(total, len(t.Columns))}}
	t.rows = append(t.rows, row)
	return row
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Row(i int) *Row {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}

// Rows returns a copy of the row slice.
func (t *Table) Rows() []*Row {
	out := make([]*Row, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *Table) Width() Length {
	var total Length
	for _, w := range t.Columns {
		total += w
	}
	return total
}
