package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	nsPkgRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT      = "http://schemas.openxmlformats.org/package/2006/content-types"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	xmlHeader = `version="1.0" encoding="UTF-8" standalone="yes"`
)

// Bytes serializes the document into a complete .docx package.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the .docx package to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	modified := d.Properties.Created
	if modified.IsZero() {
		modified = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	parts := []struct {
		name string
		doc  *etree.Document
	}{
		{"[Content_Types].xml", d.contentTypesXML()},
		{"_rels/.rels", packageRelsXML()},
		{"docProps/core.xml", d.corePropsXML()},
		{"docProps/app.xml", appPropsXML()},
		{"word/document.xml", d.documentXML()},
		{"word/styles.xml", stylesXML()},
		{"word/_rels/document.xml.rels", d.documentRelsXML()},
	}
	for _, part := range parts {
		if err := writeXMLToZip(zw, part.name, part.doc, modified); err != nil {
			return 0, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	for _, pic := range d.media {
		if err := writeDataToZip(zw, "word/"+pic.target, pic.image.Data, modified); err != nil {
			return 0, fmt.Errorf("write %s: %w", pic.target, err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("close docx package: %w", err)
	}
	return buf.WriteTo(w)
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document, modified time.Time) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes(), modified)
}

func writeDataToZip(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func newXMLDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlHeader)
	return doc
}

// ---- package-level parts ----

func (d *Document) contentTypesXML() *etree.Document {
	doc := newXMLDocument()
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", nsCT)

	addDefault := func(ext, ct string) {
		e := types.CreateElement("Default")
		e.CreateAttr("Extension", ext)
		e.CreateAttr("ContentType", ct)
	}
	addDefault("rels", "application/vnd.openxmlformats-package.relationships+xml")
	addDefault("xml", "application/xml")

	seen := map[string]bool{}
	var exts []string
	for _, pic := range d.media {
		if !seen[pic.image.Format] {
			seen[pic.image.Format] = true
			exts = append(exts, pic.image.Format)
		}
	}
	sort.Strings(exts)
	for _, ext := range exts {
		addDefault(ext, imageContentTypes[ext])
	}

	addOverride := func(part, ct string) {
		e := types.CreateElement("Override")
		e.CreateAttr("PartName", part)
		e.CreateAttr("ContentType", ct)
	}
	addOverride("/word/document.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml")
	addOverride("/word/styles.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml")
	addOverride("/docProps/core.xml", "application/vnd.openxmlformats-package.core-properties+xml")
	addOverride("/docProps/app.xml", "application/vnd.openxmlformats-officedocument.extended-properties+xml")
	return doc
}

func packageRelsXML() *etree.Document {
	doc := newXMLDocument()
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsPkgRels)
	addRelationship(rels, "rId1", relOfficeDocument, "word/document.xml")
	addRelationship(rels, "rId2", relCoreProps, "docProps/core.xml")
	addRelationship(rels, "rId3", relExtendedProps, "docProps/app.xml")
	return doc
}

func (d *Document) documentRelsXML() *etree.Document {
	doc := newXMLDocument()
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsPkgRels)
	addRelationship(rels, "rIdStyles", relStyles, "styles.xml")
	for _, pic := range d.media {
		addRelationship(rels, pic.relID, relImage, pic.target)
	}
	return doc
}

func addRelationship(parent *etree.Element, id, typ, target string) {
	rel := parent.CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", typ)
	rel.CreateAttr("Target", target)
}

func (d *Document) corePropsXML() *etree.Document {
	doc := newXMLDocument()
	cp := doc.CreateElement("cp:coreProperties")
	cp.CreateAttr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties")
	cp.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	cp.CreateAttr("xmlns:dcterms", "http://purl.org/dc/terms/")
	cp.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")

	if v := d.Properties.Title; v != "" {
		cp.CreateElement("dc:title").SetText(v)
	}
	if v := d.Properties.Subject; v != "" {
		cp.CreateElement("dc:subject").SetText(v)
	}
	if v := d.Properties.Creator; v != "" {
		cp.CreateElement("dc:creator").SetText(v)
	}
	if !d.Properties.Created.IsZero() {
		created := cp.CreateElement("dcterms:created")
		created.CreateAttr("xsi:type", "dcterms:W3CDTF")
		created.SetText(d.Properties.Created.UTC().Format(time.RFC3339))
	}
	return doc
}

func appPropsXML() *etree.Document {
	doc := newXMLDocument()
	props := doc.CreateElement("Properties")
	props.CreateAttr("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties")
	props.CreateElement("Application").SetText("dlp-generator")
	return doc
}

// ---- word/document.xml ----

func (d *Document) documentXML() *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateAttr("xmlns:wp", nsWP)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:pic", nsPic)

	body := root.CreateElement("w:body")
	for i, b := range d.body {
		switch v := b.(type) {
		case *Paragraph:
			writeParagraph(body, v)
		case *Table:
			writeTable(body, v)
			// Word merges adjacent tables unless a paragraph separates them.
			if i+1 < len(d.body) {
				if _, next := d.body[i+1].(*Table); next {
					body.CreateElement("w:p")
				}
			}
		}
	}
	writeSectionProperties(body, d.Page)
	return doc
}

func writeSectionProperties(body *etree.Element, page PageSetup) {
	sect := body.CreateElement("w:sectPr")
	sz := sect.CreateElement("w:pgSz")
	setTwips(sz, "w:w", page.Width)
	setTwips(sz, "w:h", page.Height)

	mar := sect.CreateElement("w:pgMar")
	setTwips(mar, "w:top", page.Margins.Top)
	setTwips(mar, "w:right", page.Margins.Right)
	setTwips(mar, "w:bottom", page.Margins.Bottom)
	setTwips(mar, "w:left", page.Margins.Left)
	setTwips(mar, "w:header", Inches(0.5))
	setTwips(mar, "w:footer", Inches(0.5))
	mar.CreateAttr("w:gutter", "0")
}

func setTwips(e *etree.Element, key string, l Length) {
	e.CreateAttr(key, strconv.FormatInt(l.Twips(), 10))
}

func setVal(e *etree.Element, val string) {
	e.CreateAttr("w:val", val)
}

func writeParagraph(parent *etree.Element, p *Paragraph) {
	pe := parent.CreateElement("w:p")
	if p.Align != AlignDefault {
		setVal(pe.CreateElement("w:pPr").CreateElement("w:jc"), string(p.Align))
	}
	for _, r := range p.Runs {
		writeRun(pe, r)
	}
}

func writeRun(parent *etree.Element, r *Run) {
	re := parent.CreateElement("w:r")
	if r.Bold || r.Size > 0 || r.VertAlign != Baseline {
		rpr := re.CreateElement("w:rPr")
		if r.Bold {
			rpr.CreateElement("w:b")
		}
		if r.Size > 0 {
			hp := strconv.FormatInt(r.Size.HalfPoints(), 10)
			setVal(rpr.CreateElement("w:sz"), hp)
			setVal(rpr.CreateElement("w:szCs"), hp)
		}
		if r.VertAlign != Baseline {
			setVal(rpr.CreateElement("w:vertAlign"), string(r.VertAlign))
		}
	}
	if r.Picture != nil {
		writeDrawing(re, r.Picture)
	}
	writeRunText(re, r.Text)
}

// writeRunText maps '\n' to w:br and '\t' to w:tab so free text keeps its layout.
func writeRunText(re *etree.Element, text string) {
	if text == "" {
		return
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var pending strings.Builder
	flush := func() {
		if pending.Len() == 0 {
			return
		}
		t := re.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(pending.String())
		pending.Reset()
	}
	for _, ch := range text {
		switch ch {
		case '\n':
			flush()
			re.CreateElement("w:br")
		case '\t':
			flush()
			re.CreateElement("w:tab")
		default:
			pending.WriteRune(ch)
		}
	}
	flush()
}

func writeTable(parent *etree.Element, t *Table) {
	tbl := parent.CreateElement("w:tbl")

	tblPr := tbl.CreateElement("w:tblPr")
	if t.Style != "" {
		setVal(tblPr.CreateElement("w:tblStyle"), t.Style)
	}
	tblW := tblPr.CreateElement("w:tblW")
	setTwips(tblW, "w:w", t.Width())
	tblW.CreateAttr("w:type", "dxa")
	tblPr.CreateElement("w:tblLayout").CreateAttr("w:type", "fixed")

	grid := tbl.CreateElement("w:tblGrid")
	for _, w := range t.Columns {
		setTwips(grid.CreateElement("w:gridCol"), "w:w", w)
	}

	for _, row := range t.rows {
		tr := tbl.CreateElement("w:tr")
		for _, cell := range row.Cells {
			writeCell(tr, cell)
		}
	}
}

func writeCell(tr *etree.Element, c *Cell) {
	tc := tr.CreateElement("w:tc")
	tcPr := tc.CreateElement("w:tcPr")
	tcW := tcPr.CreateElement("w:tcW")
	setTwips(tcW, "w:w", c.Width)
	tcW.CreateAttr("w:type", "dxa")
	if c.Span() > 1 {
		setVal(tcPr.CreateElement("w:gridSpan"), strconv.Itoa(c.Span()))
	}
	if c.Fill != "" {
		shd := tcPr.CreateElement("w:shd")
		setVal(shd, "clear")
		shd.CreateAttr("w:color", "auto")
		shd.CreateAttr("w:fill", c.Fill)
	}
	for _, p := range c.Paragraphs {
		writeParagraph(tc, p)
	}
}

func writeDrawing(re *etree.Element, pic *Picture) {
	cx := strconv.FormatInt(int64(pic.Width), 10)
	cy := strconv.FormatInt(int64(pic.Height), 10)
	id := strconv.Itoa(pic.id)

	inline := re.CreateElement("w:drawing").CreateElement("wp:inline")
	for _, k := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(k, "0")
	}
	extent := inline.CreateElement("wp:extent")
	extent.CreateAttr("cx", cx)
	extent.CreateAttr("cy", cy)

	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", id)
	docPr.CreateAttr("name", pic.Name())

	inline.CreateElement("wp:cNvGraphicFramePr").
		CreateElement("a:graphicFrameLocks").
		CreateAttr("noChangeAspect", "1")

	graphicData := inline.CreateElement("a:graphic").CreateElement("a:graphicData")
	graphicData.CreateAttr("uri", nsPic)

	p := graphicData.CreateElement("pic:pic")
	nv := p.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", id)
	cNvPr.CreateAttr("name", strings.TrimPrefix(pic.target, "media/"))
	nv.CreateElement("pic:cNvPicPr")

	fill := p.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", pic.relID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := p.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", cx)
	ext.CreateAttr("cy", cy)
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
}
