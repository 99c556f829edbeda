package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/dlp-generator/internal/http/response"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/content"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/docx"
	"github.com/yungbote/dlp-generator/internal/platform/apierr"
	"github.com/yungbote/dlp-generator/internal/platform/httpx"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
	"github.com/yungbote/dlp-generator/internal/services"
)

// DefaultMaxImageBytes bounds an uploaded lesson picture.
const DefaultMaxImageBytes int64 = 10 << 20

const dateLayout = "2006-01-02"

type LessonPlanHandler struct {
	log           *logger.Logger
	svc           services.LessonPlanService
	maxImageBytes int64
}

func NewLessonPlanHandler(log *logger.Logger, svc services.LessonPlanService, maxImageBytes int64) *LessonPlanHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &LessonPlanHandler{
		log:           log.With("handler", "LessonPlanHandler"),
		svc:           svc,
		maxImageBytes: maxImageBytes,
	}
}

// lessonPlanBody is the JSON body, or the multipart "payload" field.
type lessonPlanBody struct {
	content.LessonPlanInputs
	TeacherName   string       `json:"teacher_name"`
	PrincipalName string       `json:"principal_name"`
	Date          string       `json:"date,omitempty"`
	Content       *content.Raw `json:"content,omitempty"`
}

type parsedRequest struct {
	req     services.LessonPlanRequest
	content *content.Raw
}

// POST /api/lesson-plans
func (h *LessonPlanHandler) Generate(c *gin.Context) {
	p, err := h.parse(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	doc, err := h.svc.Generate(c.Request.Context(), p.req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.sendDocument(c, doc)
}

// POST /api/lesson-plans/render
func (h *LessonPlanHandler) Render(c *gin.Context) {
	p, err := h.parse(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if p.content == nil {
		response.RespondError(c, http.StatusBadRequest, "missing_content", errors.New("content is required"))
		return
	}
	doc, err := h.svc.Render(c.Request.Context(), p.req, p.content.Normalize())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.sendDocument(c, doc)
}

// POST /api/lesson-plans/content
func (h *LessonPlanHandler) GenerateContent(c *gin.Context) {
	var in content.LessonPlanInputs
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	lc, err := h.svc.GenerateContent(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": lc})
}

func (h *LessonPlanHandler) parse(c *gin.Context) (parsedRequest, error) {
	var (
		body  lessonPlanBody
		image []byte
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		payload := c.PostForm("payload")
		if payload == "" {
			return parsedRequest{}, apierr.BadRequest("invalid_request", errors.New("multipart request needs a payload field"))
		}
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			return parsedRequest{}, apierr.BadRequest("invalid_request", fmt.Errorf("payload: %w", err))
		}
		fh, err := c.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return parsedRequest{}, apierr.BadRequest("invalid_request", fmt.Errorf("image: %w", err))
		default:
			if image, err = h.readImage(fh); err != nil {
				return parsedRequest{}, err
			}
		}
	} else if err := c.ShouldBindJSON(&body); err != nil {
		return parsedRequest{}, apierr.BadRequest("invalid_request", err)
	}

	req := services.LessonPlanRequest{
		Inputs:        body.LessonPlanInputs,
		TeacherName:   body.TeacherName,
		PrincipalName: body.PrincipalName,
		Image:         image,
	}
	if d := strings.TrimSpace(body.Date); d != "" {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return parsedRequest{}, apierr.BadRequest("invalid_input", fmt.Errorf("date %q: want YYYY-MM-DD", d))
		}
		req.Date = t
	}
	return parsedRequest{req: req, content: body.Content}, nil
}

func (h *LessonPlanHandler) readImage(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > h.maxImageBytes {
		return nil, apierr.New(http.StatusRequestEntityTooLarge, "image_too_large", fmt.Errorf("image exceeds %d bytes", h.maxImageBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apierr.BadRequest("invalid_request", fmt.Errorf("open image: %w", err))
	}
	defer f.Close()
	data, err := httpx.ReadLimited(f, h.maxImageBytes)
	if err != nil {
		return nil, apierr.New(http.StatusRequestEntityTooLarge, "image_too_large", err)
	}
	return data, nil
}

func (h *LessonPlanHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, content.ErrInvalidInput):
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, services.ErrGeneratorUnavailable):
		response.RespondError(c, http.StatusServiceUnavailable, "content_generator_unavailable", err)
	case errors.Is(err, content.ErrContentGeneration):
		h.log.Warn("content generation failed", "error", err)
		response.RespondError(c, http.StatusBadGateway, "content_generation_failed", err)
	default:
		h.log.Error("lesson plan request failed", "error", err)
		response.RespondAPIError(c, err)
	}
}

func (h *LessonPlanHandler) sendDocument(c *gin.Context, doc *services.LessonPlanDocument) {
	if doc.ArchiveURL != "" {
		c.Header("X-Archive-Url", doc.ArchiveURL)
	}
	response.RespondAttachment(c, doc.FileName, docx.MIMEType, doc.Data)
}

