package assembler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/content"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/docx"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
)

type fakeImages struct {
	data     []byte
	err      error
	keywords []string
}

func (f *fakeImages) FetchImage(ctx context.Context, keywords string) ([]byte, error) {
	f.keywords = append(f.keywords, keywords)
	return f.data, f.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

var fixedDate = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func sampleRequest() Request {
	return Request{
		Inputs: content.LessonPlanInputs{
			Subject:             "Science",
			GradeLevel:          "Grade 7",
			Quarter:             "2nd Quarter",
			ContentStandard:     "Water is H_2 at rest",
			PerformanceStandard: "Explain E = mc^2",
			LearningCompetency:  "Identify CO_2 sources",
		},
		Content: content.LessonContent{
			Obj1:              "Define matter",
			Obj2:              "Classify x^2",
			Obj3:              "Compare",
			Topic:             "States of Matter",
			IntegrationWithin: "Math",
			IntegrationAcross: "Arts",
			Procedure: content.Procedure{
				PurposeSituation: "Why does ice float?",
				VisualPrompt:     "ice cubes",
				Vocabulary:       "density",
			},
			Evaluation: content.Evaluation{
				AssessQ1: "1. Define X",
				AssessQ2: "What is Y?",
			},
		},
		TeacherName:   "Ana Reyes",
		PrincipalName: "Ben Cruz",
		Date:          fixedDate,
	}
}

func assemble(t *testing.T, a *Assembler, req Request) *docx.Document {
	t.Helper()
	doc, err := a.Assemble(context.Background(), req)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return doc
}

func mainTable(t *testing.T, doc *docx.Document) *docx.Table {
	t.Helper()
	tables := doc.Tables()
	if len(tables) != 3 {
		t.Fatalf("tables: want=3 got=%d", len(tables))
	}
	return tables[1]
}

func purposeCell(t *testing.T, doc *docx.Document) *docx.Cell {
	t.Helper()
	row := mainTable(t, doc).Row(14)
	if got := row.Cell(0).Text(); got != LabelLessonPurpose {
		t.Fatalf("row 14 label: got=%q", got)
	}
	return row.Cell(1)
}

func TestAssembleZeroContentComposesEveryRow(t *testing.T) {
	a := New(logger.NewNop())
	doc := assemble(t, a, Request{Date: fixedDate})

	tbl := mainTable(t, doc)
	if tbl.Len() != 22 {
		t.Fatalf("main table rows: want=22 got=%d", tbl.Len())
	}
	headers := map[int]string{
		0:  SectionCurriculum,
		6:  SectionResources,
		12: SectionProcedure,
		17: SectionEvaluation,
	}
	for i, row := range tbl.Rows() {
		want, isHeader := headers[i]
		if row.Merged() != isHeader {
			t.Fatalf("row %d merged=%v", i, row.Merged())
		}
		if !isHeader {
			continue
		}
		cell := row.Cell(0)
		if cell.Text() != want || cell.Fill != HeaderFill {
			t.Fatalf("row %d header: text=%q fill=%q", i, cell.Text(), cell.Fill)
		}
		if !cell.Paragraph().Runs[0].Bold {
			t.Fatalf("row %d header not bold", i)
		}
	}
}

func TestAssembleLayout(t *testing.T) {
	doc := assemble(t, New(logger.NewNop()), sampleRequest())

	if doc.Page.Width != docx.Mm(210) || doc.Page.Height != docx.Mm(297) {
		t.Fatalf("page is not A4: %+v", doc.Page)
	}
	if doc.Page.Margins != docx.Uniform(docx.Inches(0.5)) {
		t.Fatalf("margins: %+v", doc.Page.Margins)
	}

	title := doc.Paragraphs()[0]
	if title.Align != docx.AlignCenter || title.Text() != Title {
		t.Fatalf("title: align=%q text=%q", title.Align, title.Text())
	}
	if r := title.Runs[0]; !r.Bold || r.Size != docx.Pt(14) {
		t.Fatalf("title run: bold=%v size=%d", r.Bold, r.Size)
	}

	tables := doc.Tables()
	header := tables[0]
	if header.Style != docx.TableGridStyle || len(header.Columns) != 4 || header.Len() != 1 {
		t.Fatalf("header table shape: style=%q cols=%d rows=%d", header.Style, len(header.Columns), header.Len())
	}
	wantHeader := []string{
		"Subject Area:\nScience",
		"Grade Level:\nGrade 7",
		"Quarter:\n2nd Quarter",
		"Date:\nJune 03, 2024",
	}
	for i, want := range wantHeader {
		if got := header.Row(0).Cell(i).Text(); got != want {
			t.Fatalf("header cell %d: want=%q got=%q", i, want, got)
		}
	}
	if header.Width() != docx.Inches(7.3) || tables[1].Width() != docx.Inches(7.3) {
		t.Fatalf("table widths: header=%d main=%d", header.Width(), tables[1].Width())
	}

	sig := tables[2]
	if sig.Style != "" || sig.Len() != 2 {
		t.Fatalf("signatory table: style=%q rows=%d", sig.Style, sig.Len())
	}
	if got := sig.Row(0).Cell(0).Text() + "|" + sig.Row(0).Cell(1).Text(); got != "Prepared by:|Noted by:" {
		t.Fatalf("signatory labels: %q", got)
	}
	name := sig.Row(1).Cell(0).Paragraph().Runs
	if len(name) != 1 || !name[0].Bold || name[0].Text != "\n\nAna Reyes\nTeacher" {
		t.Fatalf("teacher signature: %+v", name)
	}
	if got := sig.Row(1).Cell(1).Text(); got != "\n\nBen Cruz\nPrincipal" {
		t.Fatalf("principal signature: %q", got)
	}
}

func TestAssembleGeometryIgnoresContentLength(t *testing.T) {
	short := assemble(t, New(logger.NewNop()), sampleRequest())

	long := sampleRequest()
	long.Content.Topic = strings.Repeat("very long topic ", 2000)
	long.Inputs.Subject = strings.Repeat("S", 500)
	big := assemble(t, New(logger.NewNop()), long)

	for i, tbl := range short.Tables() {
		other := big.Tables()[i]
		if len(tbl.Columns) != len(other.Columns) {
			t.Fatalf("table %d column count changed", i)
		}
		for j := range tbl.Columns {
			if tbl.Columns[j] != other.Columns[j] {
				t.Fatalf("table %d column %d: %d != %d", i, j, tbl.Columns[j], other.Columns[j])
			}
		}
	}
	if short.Page != big.Page {
		t.Fatalf("page setup changed")
	}
}

func TestAssembleAppliesMarkup(t *testing.T) {
	doc := assemble(t, New(logger.NewNop()), sampleRequest())
	tbl := mainTable(t, doc)

	runs := tbl.Row(1).Cell(1).Paragraph().Runs
	if len(runs) != 3 || runs[1].Text != "2" || runs[1].VertAlign != docx.Subscript {
		t.Fatalf("content standard runs: %+v", runs)
	}
	if strings.Contains(tbl.Row(1).Cell(1).Text(), "_") {
		t.Fatalf("marker leaked into text")
	}

	comp := tbl.Row(3).Cell(1)
	want := "Competency: Identify CO2 sources\n\nObjectives:\n1. Define matter\n2. Classify x2\n3. Compare"
	if got := comp.Text(); got != want {
		t.Fatalf("competency cell: want=%q got=%q", want, got)
	}
	var sup int
	for _, r := range comp.Paragraph().Runs {
		if r.VertAlign == docx.Superscript {
			sup++
		}
	}
	if sup != 1 {
		t.Fatalf("objective superscript runs: want=1 got=%d", sup)
	}

	if got := tbl.Row(5).Cell(1).Text(); got != "Within: Math\nAcross: Arts" {
		t.Fatalf("integration: %q", got)
	}
}

func TestAssessmentNumbering(t *testing.T) {
	doc := assemble(t, New(logger.NewNop()), sampleRequest())
	got := mainTable(t, doc).Row(18).Cell(1).Text()
	want := "1. Define X\n2. What is Y?\n3. \n4. \n5. "
	if got != want {
		t.Fatalf("assessment: want=%q got=%q", want, got)
	}
}

func TestEnsureNumber(t *testing.T) {
	cases := []struct {
		n    int
		in   string
		want string
	}{
		{1, "Define X", "1. Define X"},
		{1, "1. Define X", "1. Define X"},
		{2, "  What?  ", "2. What?"},
		{3, "", "3. "},
		{2, "1. Wrong number", "2. 1. Wrong number"},
	}
	for _, tc := range cases {
		got := EnsureNumber(tc.n, tc.in)
		if got != tc.want {
			t.Fatalf("EnsureNumber(%d, %q): want=%q got=%q", tc.n, tc.in, tc.want, got)
		}
		if again := EnsureNumber(tc.n, got); again != strings.TrimSpace(got) {
			t.Fatalf("EnsureNumber not idempotent for %q: %q", got, again)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{[]string{"a", "b"}, "a\nb"},
		{[]any{"a", 2, nil}, "a\n2\n"},
		{42, "42"},
	}
	for _, tc := range cases {
		if got := NormalizeText(tc.in); got != tc.want {
			t.Fatalf("NormalizeText(%#v): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestImageFetchFailureUsesPlaceholder(t *testing.T) {
	src := &fakeImages{err: errors.New("offline")}
	doc := assemble(t, New(logger.NewNop(), WithImageSource(src)), sampleRequest())

	cell := purposeCell(t, doc)
	if len(cell.Paragraphs) != 3 {
		t.Fatalf("purpose paragraphs: want=3 got=%d", len(cell.Paragraphs))
	}
	if got := cell.Paragraphs[1].Text(); got != PlaceholderNoImage {
		t.Fatalf("placeholder: got=%q", got)
	}
	if got := cell.Paragraphs[2].Text(); got != "\nVocabulary:\ndensity" {
		t.Fatalf("vocabulary paragraph: got=%q", got)
	}
	if len(src.keywords) != 1 || src.keywords[0] != "ice cubes" {
		t.Fatalf("fetch keywords: %v", src.keywords)
	}
	if len(doc.Pictures()) != 0 {
		t.Fatalf("no picture expected")
	}
}

func TestImageWithoutSourceUsesPlaceholder(t *testing.T) {
	doc := assemble(t, New(logger.NewNop()), sampleRequest())
	if got := purposeCell(t, doc).Paragraphs[1].Text(); got != PlaceholderNoImage {
		t.Fatalf("placeholder: got=%q", got)
	}
}

func TestCorruptImageUsesErrorPlaceholder(t *testing.T) {
	req := sampleRequest()
	req.Image = []byte("definitely not an image")
	src := &fakeImages{}
	doc := assemble(t, New(logger.NewNop(), WithImageSource(src)), req)

	if got := purposeCell(t, doc).Paragraphs[1].Text(); got != PlaceholderImageError {
		t.Fatalf("placeholder: got=%q", got)
	}
	if len(src.keywords) != 0 {
		t.Fatalf("provided image must not trigger a fetch")
	}
}

func TestProvidedImageIsEmbedded(t *testing.T) {
	req := sampleRequest()
	req.Image = pngBytes(t, 40, 20)
	doc := assemble(t, New(logger.NewNop()), req)

	p := purposeCell(t, doc).Paragraphs[1]
	pics := p.Pictures()
	if len(pics) != 1 || p.Align != docx.AlignCenter {
		t.Fatalf("picture paragraph: pictures=%d align=%q", len(pics), p.Align)
	}
	if pics[0].Width != PictureWidth || pics[0].Height != PictureWidth/2 {
		t.Fatalf("picture size: %dx%d", pics[0].Width, pics[0].Height)
	}
}

func TestFetchedImageIsDownscaled(t *testing.T) {
	src := &fakeImages{data: pngBytes(t, 80, 40)}
	doc := assemble(t, New(logger.NewNop(), WithImageSource(src), WithMaxImageWidth(20)), sampleRequest())

	pics := doc.Pictures()
	if len(pics) != 1 {
		t.Fatalf("pictures: want=1 got=%d", len(pics))
	}
}

func TestEmbedOutcomeLabel(t *testing.T) {
	cases := map[string]EmbedOutcome{
		"embedded":         {},
		"unavailable":      {Err: ErrImageUnavailable},
		"insertion_failed": {Err: errors.Join(ErrImageInsertion, errors.New("x"))},
	}
	for want, o := range cases {
		if got := o.Label(); got != want {
			t.Fatalf("Label: want=%q got=%q", want, got)
		}
	}
}

func TestAssembleUsesClockWhenDateMissing(t *testing.T) {
	req := sampleRequest()
	req.Date = time.Time{}
	a := New(logger.NewNop(), WithClock(func() time.Time { return time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC) }))
	doc := assemble(t, a, req)
	if got := doc.Tables()[0].Row(0).Cell(3).Text(); got != "Date:\nJanuary 09, 2025" {
		t.Fatalf("date cell: %q", got)
	}
}

func TestAssembleHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(logger.NewNop()).Assemble(ctx, sampleRequest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestRenderProducesPackage(t *testing.T) {
	a := New(logger.NewNop())
	out, err := a.Render(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	found := false
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			found = true
		}
	}
	if !found {
		t.Fatalf("word/document.xml missing")
	}

	again, err := a.Render(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(out, again) {
		t.Fatalf("same request rendered different bytes")
	}
}

func TestOversizedImageUsesErrorPlaceholder(t *testing.T) {
	// PNG header declaring 12000x12000 pixels with no image data behind it
	ihdr := make([]byte, 17)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], 12000)
	binary.BigEndian.PutUint32(ihdr[8:], 12000)
	ihdr[12] = 8
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))

	req := sampleRequest()
	req.Image = buf.Bytes()
	doc := assemble(t, New(logger.NewNop()), req)

	if got := purposeCell(t, doc).Paragraphs[1].Text(); got != PlaceholderImageError {
		t.Fatalf("placeholder: got=%q", got)
	}
	if len(doc.Pictures()) != 0 {
		t.Fatalf("oversized image must not be embedded")
	}
}

func TestRowBuildersAppendInCallOrder(t *testing.T) {
	type call struct {
		header  bool
		label   string
		content any
		plain   bool
	}
	calls := []call{
		{header: true, label: "I. FIRST"},
		{label: "A. Bold label", content: "x^2"},
		{label: "B. Plain label", content: []string{"one", "two", "three"}, plain: true},
		{header: true, label: "II. SECOND"},
		{label: "C. Empty", content: nil},
	}

	tbl := docx.New(docx.A4).AddTable(docx.TableGridStyle, docx.Inches(2), docx.Inches(5.3))
	for _, c := range calls {
		switch {
		case c.header:
			AddSectionHeader(tbl, c.label)
		case c.plain:
			AddRow(tbl, c.label, c.content, WithPlainLabel())
		default:
			AddRow(tbl, c.label, c.content)
		}
	}

	if tbl.Len() != len(calls) {
		t.Fatalf("rows: want=%d got=%d", len(calls), tbl.Len())
	}
	for i, c := range calls {
		row := tbl.Row(i)
		if row.Merged() != c.header {
			t.Fatalf("row %d: merged=%v want %v", i, row.Merged(), c.header)
		}
		if got := row.Cell(0).Text(); got != c.label {
			t.Fatalf("row %d: label=%q want %q", i, got, c.label)
		}
		if c.header {
			if row.Cell(0).Fill != HeaderFill || !row.Cell(0).Paragraph().Runs[0].Bold {
				t.Fatalf("row %d: header must be shaded and bold", i)
			}
			continue
		}
		if bold := row.Cell(0).Paragraph().Runs[0].Bold; bold == c.plain {
			t.Fatalf("row %d: label bold=%v with plain=%v", i, bold, c.plain)
		}
	}

	if got := tbl.Row(2).Cell(1).Text(); got != "one\ntwo\nthree" {
		t.Fatalf("list content: got=%q", got)
	}
	if runs := tbl.Row(1).Cell(1).Paragraph().Runs; len(runs) != 2 || runs[1].VertAlign != docx.Superscript {
		t.Fatalf("markup content runs: %+v", runs)
	}
	if got := tbl.Row(4).Cell(1).Text(); got != "" {
		t.Fatalf("nil content: got=%q", got)
	}
}
