package content

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/dlp-generator/internal/observability"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
)

// TextGenerator is the slice of the LLM client the generator needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Generator struct {
	log *logger.Logger
	llm TextGenerator
}

func NewGenerator(log *logger.Logger, llm TextGenerator) *Generator {
	return &Generator{log: log.With("service", "ContentGenerator"), llm: llm}
}

// Generate asks the model for lesson content. Every failure is a
// *GenerationError and matches ErrContentGeneration. There are no retries.
func (g *Generator) Generate(ctx context.Context, in LessonPlanInputs) (lc LessonContent, err error) {
	ctx, span := observability.StartSpan(ctx, "content.generate",
		attribute.String("lesson.subject", in.Subject),
		attribute.String("lesson.grade", in.GradeLevel),
	)
	defer func() { observability.EndSpan(span, err) }()

	user, err := UserPrompt(in)
	if err != nil {
		return LessonContent{}, &GenerationError{Stage: StagePrompt, Err: err}
	}
	reply, err := g.llm.GenerateText(ctx, SystemPrompt, user)
	if err != nil {
		g.log.Warn("content generation request failed", "error", err)
		return LessonContent{}, &GenerationError{Stage: StageRequest, Err: err}
	}
	raw, err := Decode(reply)
	if err != nil {
		g.log.Warn("content generation reply unparseable", "error", err, "reply_chars", len(reply))
		return LessonContent{}, &GenerationError{Stage: StageDecode, Err: err}
	}
	return raw.Normalize(), nil
}
