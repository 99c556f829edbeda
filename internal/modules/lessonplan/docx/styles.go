package docx

import "github.com/beevik/etree"

const (
	defaultFont     = "Calibri"
	defaultFontSize = "22" // half-points
	gridBorderSize  = "4"  // eighths of a point
)

func stylesXML() *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("w:styles")
	root.CreateAttr("xmlns:w", nsW)

	defaults := root.CreateElement("w:docDefaults")
	rpr := defaults.CreateElement("w:rPrDefault").CreateElement("w:rPr")
	fonts := rpr.CreateElement("w:rFonts")
	for _, k := range []string{"w:ascii", "w:hAnsi", "w:cs", "w:eastAsia"} {
		fonts.CreateAttr(k, defaultFont)
	}
	setVal(rpr.CreateElement("w:sz"), defaultFontSize)
	setVal(rpr.CreateElement("w:szCs"), defaultFontSize)
	spacing := defaults.CreateElement("w:pPrDefault").CreateElement("w:pPr").CreateElement("w:spacing")
	spacing.CreateAttr("w:after", "0")
	spacing.CreateAttr("w:line", "240")
	spacing.CreateAttr("w:lineRule", "auto")

	normal := addStyle(root, "paragraph", "Normal", "Normal")
	normal.CreateAttr("w:default", "1")
	normal.CreateElement("w:qFormat")

	tableNormal := addStyle(root, "table", "TableNormal", "Normal Table")
	tableNormal.CreateAttr("w:default", "1")
	tableNormal.CreateElement("w:uiPriority").CreateAttr("w:val", "99")
	tableNormal.CreateElement("w:semiHidden")
	addCellMargins(tableNormal.CreateElement("w:tblPr"))

	grid := addStyle(root, "table", TableGridStyle, "Table Grid")
	setVal(grid.CreateElement("w:basedOn"), "TableNormal")
	tblPr := grid.CreateElement("w:tblPr")
	borders := tblPr.CreateElement("w:tblBorders")
	for _, side := range []string{"w:top", "w:left", "w:bottom", "w:right", "w:insideH", "w:insideV"} {
		b := borders.CreateElement(side)
		setVal(b, "single")
		b.CreateAttr("w:sz", gridBorderSize)
		b.CreateAttr("w:space", "0")
		b.CreateAttr("w:color", "auto")
	}
	addCellMargins(tblPr)
	return doc
}

func addStyle(root *etree.Element, typ, id, name string) *etree.Element {
	s := root.CreateElement("w:style")
	s.CreateAttr("w:type", typ)
	s.CreateAttr("w:styleId", id)
	setVal(s.CreateElement("w:name"), name)
	return s
}

func addCellMargins(tblPr *etree.Element) {
	mar := tblPr.CreateElement("w:tblCellMar")
	for _, side := range []string{"w:left", "w:right"} {
		e := mar.CreateElement(side)
		e.CreateAttr("w:w", "108")
		e.CreateAttr("w:type", "dxa")
	}
}
