package assembler

import (
	"fmt"
	"strings"

	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/docx"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/markup"
)

// HeaderFill is the background of section header rows.
const HeaderFill = "BDD7EE"

type rowOptions struct {
	plainLabel bool
}

type RowOption func(*rowOptions)

// WithPlainLabel leaves the label cell unbolded.
func WithPlainLabel() RowOption {
	return func(o *rowOptions) { o.plainLabel = true }
}

// NormalizeText flattens row content to the single string the markup parser
// accepts. Lists are joined with newlines; nil is empty.
func NormalizeText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, "\n")
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = NormalizeText(item)
		}
		return strings.Join(parts, "\n")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// WriteMarkup appends the parsed spans of text to p as runs.
func WriteMarkup(p *docx.Paragraph, text string) {
	for _, span := range markup.Parse(text) {
		run := p.AddRun(span.Text)
		switch span.Style {
		case markup.Superscript:
			run.VertAlign = docx.Superscript
		case markup.Subscript:
			run.VertAlign = docx.Subscript
		}
	}
}

func addBoldRun(p *docx.Paragraph, text string) *docx.Run {
	r := p.AddRun(text)
	r.Bold = true
	return r
}

// AddRow appends one label/content row to a two-column table.
func AddRow(t *docx.Table, label string, content any, opts ...RowOption) *docx.Row {
	var o rowOptions
	for _, opt := range opts {
		opt(&o)
	}
	row := t.AddRow()
	lbl := row.Cell(0).Paragraph().AddRun(label)
	lbl.Bold = !o.plainLabel
	WriteMarkup(row.Cell(1).Paragraph(), NormalizeText(content))
	return row
}

// AddSectionHeader appends a merged, shaded, bold row.
func AddSectionHeader(t *docx.Table, text string) *docx.Row {
	row := t.AddMergedRow()
	cell := row.Cell(0)
	cell.Fill = HeaderFill
	addBoldRun(cell.Paragraph(), text)
	return row
}
