// Package assembler lays a lesson plan out as a DLP template document.
//
// The layout is fixed: an A4 page with half-inch margins, a title, a
// four-column header table, the two-column main table with its four numbered
// sections, and a borderless signatory table. Missing content degrades to
// empty cells or placeholders; only a cancelled context stops assembly.
package assembler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/content"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/docx"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/imaging"
	"github.com/yungbote/dlp-generator/internal/observability"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
)

const (
	Title      = "Daily Lesson Plan (DLP) Template"
	DateLayout = "January 02, 2006"
)

// Page is the hard layout contract for every document.
var Page = docx.PageSetup{
	Width:   docx.A4.Width,
	Height:  docx.A4.Height,
	Margins: docx.Uniform(docx.Inches(0.5)),
}

var (
	headerColumns    = []docx.Length{docx.Inches(2.5), docx.Inches(1.15), docx.Inches(1.15), docx.Inches(2.5)}
	mainColumns      = []docx.Length{docx.Inches(2.0), docx.Inches(5.3)}
	signatoryColumns = []docx.Length{docx.Inches(3.65), docx.Inches(3.65)}
)

type Assembler struct {
	log           *logger.Logger
	images        ImageSource
	maxImageWidth int
	now           func() time.Time
}

type Option func(*Assembler)

// WithImageSource sets where pictures come from when the request has none.
func WithImageSource(src ImageSource) Option {
	return func(a *Assembler) { a.images = src }
}

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func WithMaxImageWidth(px int) Option {
	return func(a *Assembler) { a.maxImageWidth = px }
}

func New(log *logger.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		log:           log.With("service", "Assembler"),
		maxImageWidth: imaging.DefaultMaxWidth,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Request carries everything one document needs. A zero Date means today.
type Request struct {
	Inputs        content.LessonPlanInputs
	Content       content.LessonContent
	TeacherName   string
	PrincipalName string
	Image         []byte
	Date          time.Time
}

func (a *Assembler) Assemble(ctx context.Context, req Request) (*docx.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	date := req.Date
	if date.IsZero() {
		date = a.now()
	}

	doc := docx.New(Page)
	doc.Properties = docx.CoreProperties{
		Title:   Title,
		Subject: req.Inputs.Subject,
		Creator: req.TeacherName,
		Created: date,
	}

	title := doc.AddParagraph("")
	title.Align = docx.AlignCenter
	r := addBoldRun(title, Title)
	r.Size = docx.Pt(14)

	header := doc.AddTable(docx.TableGridStyle, headerColumns...)
	row := header.AddRow()
	fillHeaderCell(row.Cell(0), "Subject Area:", req.Inputs.Subject)
	fillHeaderCell(row.Cell(1), "Grade Level:", req.Inputs.GradeLevel)
	fillHeaderCell(row.Cell(2), "Quarter:", req.Inputs.Quarter)
	fillHeaderCell(row.Cell(3), "Date:", date.Format(DateLayout))

	var outcome EmbedOutcome
	body := doc.AddTable(docx.TableGridStyle, mainColumns...)
	ComposeSections(body, req.Inputs, req.Content, func(cell *docx.Cell) {
		outcome = a.embedImage(ctx, doc, cell, req.Image, req.Content.Procedure.VisualPrompt)
	})
	a.recordImage(outcome)

	doc.AddParagraph("")

	sig := doc.AddTable("", signatoryColumns...)
	labels := sig.AddRow()
	labels.Cell(0).Paragraph().AddRun("Prepared by:")
	labels.Cell(1).Paragraph().AddRun("Noted by:")
	names := sig.AddRow()
	addBoldRun(names.Cell(0).Paragraph(), "\n\n"+req.TeacherName+"\nTeacher")
	addBoldRun(names.Cell(1).Paragraph(), "\n\n"+req.PrincipalName+"\nPrincipal")

	return doc, nil
}

// Render assembles and serializes the document. It never touches the
// filesystem.
func (a *Assembler) Render(ctx context.Context, req Request) (out []byte, err error) {
	ctx, span := observability.StartSpan(ctx, "assembler.render",
		attribute.Bool("image.provided", len(req.Image) > 0),
	)
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	doc, err := a.Assemble(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err = doc.Bytes()
	if err != nil {
		return nil, err
	}
	observability.Current().ObserveRender(time.Since(start), len(out))
	span.SetAttributes(attribute.Int("document.bytes", len(out)))
	return out, nil
}

func fillHeaderCell(cell *docx.Cell, label, value string) {
	p := cell.Paragraph()
	addBoldRun(p, label)
	p.AddRun("\n")
	WriteMarkup(p, value)
}

func (a *Assembler) recordImage(o EmbedOutcome) {
	observability.Current().IncImageOutcome(o.Source, o.Label())
	if o.Err != nil {
		a.log.Warn("lesson image replaced by placeholder", "source", o.Source, "outcome", o.Label(), "error", o.Err)
		return
	}
	a.log.Debug("lesson image embedded", "source", o.Source)
}
