package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/yungbote/dlp-generator/internal/modules/lessonplan"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/assembler"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/content"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/docx"
	"github.com/yungbote/dlp-generator/internal/observability"
	"github.com/yungbote/dlp-generator/internal/platform/ctxutil"
	"github.com/yungbote/dlp-generator/internal/platform/gcp"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
)

var ErrGeneratorUnavailable = errors.New("content generator unavailable: no LLM API key configured")

const (
	ModeGenerate = "generate"
	ModeRender   = "render"
	ModeContent  = "content"
)

// ContentGenerator produces normalized lesson content for one set of inputs.
type ContentGenerator interface {
	Generate(ctx context.Context, in content.LessonPlanInputs) (content.LessonContent, error)
}

// DocumentRenderer turns a complete request into DOCX bytes.
type DocumentRenderer interface {
	Render(ctx context.Context, req assembler.Request) ([]byte, error)
}

type LessonPlanRequest struct {
	Inputs        content.LessonPlanInputs
	TeacherName   string
	PrincipalName string
	Image         []byte
	Date          time.Time
}

type LessonPlanDocument struct {
	FileName   string
	Data       []byte
	Content    content.LessonContent
	ArchiveURL string
}

type LessonPlanService interface {
	// Generate asks the model for content and renders it.
	Generate(ctx context.Context, req LessonPlanRequest) (*LessonPlanDocument, error)
	// Render lays out caller-supplied content without calling the model.
	Render(ctx context.Context, req LessonPlanRequest, lc content.LessonContent) (*LessonPlanDocument, error)
	GenerateContent(ctx context.Context, in content.LessonPlanInputs) (content.LessonContent, error)
}

type LessonPlanServiceConfig struct {
	// MaxConcurrent bounds in-flight generations; <= 0 means unbounded.
	MaxConcurrent int64
}

type lessonPlanService struct {
	log       *logger.Logger
	generator ContentGenerator
	renderer  DocumentRenderer
	archive   gcp.ArchiveStore
	sem       *semaphore.Weighted
	now       func() time.Time
}

// NewLessonPlanService wires the pipeline. generator and archive may be nil:
// without a generator only Render works, without an archive nothing is kept.
func NewLessonPlanService(log *logger.Logger, generator ContentGenerator, renderer DocumentRenderer, archive gcp.ArchiveStore, cfg LessonPlanServiceConfig) LessonPlanService {
	s := &lessonPlanService{
		log:       log.With("service", "LessonPlanService"),
		generator: generator,
		renderer:  renderer,
		archive:   archive,
		now:       time.Now,
	}
	if cfg.MaxConcurrent > 0 {
		s.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return s
}

func (s *lessonPlanService) GenerateContent(ctx context.Context, in content.LessonPlanInputs) (lc content.LessonContent, err error) {
	defer func() { s.count(ModeContent, err) }()

	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return content.LessonContent{}, err
	}
	if s.generator == nil {
		return content.LessonContent{}, ErrGeneratorUnavailable
	}
	release, err := s.acquire(ctx)
	if err != nil {
		return content.LessonContent{}, err
	}
	defer release()
	return s.generator.Generate(ctx, in)
}

func (s *lessonPlanService) Generate(ctx context.Context, req LessonPlanRequest) (doc *LessonPlanDocument, err error) {
	ctx, span := observability.StartSpan(ctx, "lessonplan.generate")
	defer func() {
		observability.EndSpan(span, err)
		s.count(ModeGenerate, err)
	}()

	req = withDefaults(req)
	if err := req.Inputs.Validate(); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, ErrGeneratorUnavailable
	}
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	lc, err := s.generator.Generate(ctx, req.Inputs)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, req, lc)
}

func (s *lessonPlanService) Render(ctx context.Context, req LessonPlanRequest, lc content.LessonContent) (doc *LessonPlanDocument, err error) {
	ctx, span := observability.StartSpan(ctx, "lessonplan.render")
	defer func() {
		observability.EndSpan(span, err)
		s.count(ModeRender, err)
	}()

	req = withDefaults(req)
	if err := req.Inputs.Validate(); err != nil {
		return nil, err
	}
	if lc.Procedure.VisualPrompt == "" {
		lc.Procedure.VisualPrompt = content.DefaultVisualPrompt
	}
	return s.render(ctx, req, lc)
}

func (s *lessonPlanService) render(ctx context.Context, req LessonPlanRequest, lc content.LessonContent) (*LessonPlanDocument, error) {
	data, err := s.renderer.Render(ctx, assembler.Request{
		Inputs:        req.Inputs,
		Content:       lc,
		TeacherName:   req.TeacherName,
		PrincipalName: req.PrincipalName,
		Image:         req.Image,
		Date:          req.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("render lesson plan: %w", err)
	}
	doc := &LessonPlanDocument{
		FileName: lessonplan.FileName(req.Inputs.Subject, req.Inputs.GradeLevel),
		Data:     data,
		Content:  lc,
	}
	doc.ArchiveURL = s.archiveCopy(ctx, doc)
	s.log.Info("lesson plan rendered",
		"file", doc.FileName,
		"bytes", len(data),
		"request_id", ctxutil.RequestID(ctx),
	)
	return doc, nil
}

// archiveCopy uploads the document when an archive is configured. Failures
// are logged and otherwise ignored.
func (s *lessonPlanService) archiveCopy(ctx context.Context, doc *LessonPlanDocument) string {
	if s.archive == nil {
		return ""
	}
	ctx, span := observability.StartSpan(ctx, "lessonplan.archive",
		attribute.String("document.name", doc.FileName),
	)
	key := gcp.ArchiveKey(s.now(), uuid.New().String(), doc.FileName)
	url, err := gcp.UploadBytes(ctx, s.archive, key, doc.Data, docx.MIMEType)
	observability.EndSpan(span, err)
	if err != nil {
		observability.Current().IncArchiveUpload("error")
		s.log.Warn("archive upload failed", "key", key, "error", err)
		return ""
	}
	observability.Current().IncArchiveUpload("ok")
	return url
}

func (s *lessonPlanService) acquire(ctx context.Context) (func(), error) {
	if s.sem == nil {
		return func() {}, nil
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { s.sem.Release(1) }, nil
}

func (s *lessonPlanService) count(mode string, err error) {
	observability.Current().IncGeneration(mode, Outcome(err))
}

// Outcome classifies a pipeline error into a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, content.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrGeneratorUnavailable):
		return "unavailable"
	case errors.Is(err, content.ErrContentGeneration):
		return "generation_failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func withDefaults(req LessonPlanRequest) LessonPlanRequest {
	req.Inputs = req.Inputs.WithDefaults()
	req.TeacherName = lessonplan.OrDefault(req.TeacherName, lessonplan.DefaultTeacherName)
	req.PrincipalName = lessonplan.OrDefault(req.PrincipalName, lessonplan.DefaultPrincipalName)
	return req
}
