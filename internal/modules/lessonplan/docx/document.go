// Package docx builds WordprocessingML documents in memory and serializes them
// to the OOXML zip package format.
//
// The model is deliberately small: body paragraphs, fixed-layout tables whose
// rows can only be appended, runs with bold/size/vertical alignment, and inline
// pictures. Every table cell always holds at least one paragraph.
package docx

import (
	"strings"
	"time"
)

const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// FileExt is the extension of the serialized package, without the dot.
const FileExt = "docx"

type Alignment string

const (
	AlignDefault Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
)

type VertAlign string

const (
	Baseline    VertAlign = ""
	Superscript VertAlign = "superscript"
	Subscript   VertAlign = "subscript"
)

type Run struct {
	Text      string
	Bold      bool
	Size      Length // zero inherits the style size
	VertAlign VertAlign
	Picture   *Picture
}

type Paragraph struct {
	Align Alignment
	Runs  []*Run
}

func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{Text: text}
	p.Runs = append(p.Runs, r)
	return r
}

func (p *Paragraph) AddPicture(pic *Picture) *Run {
	r := &Run{Picture: pic}
	p.Runs = append(p.Runs, r)
	return r
}

// Text concatenates run texts; pictures contribute nothing.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Pictures returns the pictures placed in this paragraph, in order.
func (p *Paragraph) Pictures() []*Picture {
	var out []*Picture
	for _, r := range p.Runs {
		if r.Picture != nil {
			out = append(out, r.Picture)
		}
	}
	return out
}

type CoreProperties struct {
	Title   string
	Subject string
	Creator string
	Created time.Time
}

type block interface {
	isBlock()
}

func (*Paragraph) isBlock() {}
func (*Table) isBlock()     {}

type Document struct {
	Page       PageSetup
	Properties CoreProperties

	body  []block
	media []*Picture
}

func New(page PageSetup) *Document {
	return &Document{Page: page}
}

func (d *Document) AddParagraph(text string) *Paragraph {
	p := &Paragraph{}
	if text != "" {
		p.AddRun(text)
	}
	d.body = append(d.body, p)
	return p
}

// AddTable appends a fixed-layout table with one grid column per width.
func (d *Document) AddTable(style string, widths ...Length) *Table {
	cols := make([]Length, len(widths))
	copy(cols, widths)
	t := &Table{Style: style, Columns: cols}
	d.body = append(d.body, t)
	return t
}

func (d *Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.body {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range d.body {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Pictures lists every picture registered with the document.
func (d *Document) Pictures() []*Picture {
	out := make([]*Picture, len(d.media))
	copy(out, d.media)
	return out
}
