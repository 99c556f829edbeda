package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/dlp-generator/internal/http/handlers"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/assembler"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/docx"
	"github.com/yungbote/dlp-generator/internal/observability"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
	"github.com/yungbote/dlp-generator/internal/services"
)

func newTestEngine(t *testing.T) (*gin.Engine, *observability.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	m := observability.NewMetrics()
	svc := services.NewLessonPlanService(log, nil, assembler.New(log), nil, services.LessonPlanServiceConfig{MaxConcurrent: 2})
	return NewRouter(RouterConfig{
		Log:               log,
		ServiceName:       "dlp-generator-test",
		MaxBodyBytes:      1 << 20,
		Metrics:           m,
		LessonPlanHandler: httpH.NewLessonPlanHandler(log, svc, 0),
		HealthHandler:     httpH.NewHealthHandler("test", false),
	}), m
}

func TestRouterRendersDocumentEndToEnd(t *testing.T) {
	r, _ := newTestEngine(t)
	body := `{"subject":"Math","grade_level":"Grade 4","quarter":"1st Quarter","content":{"topic":"Fractions","obj_1":"Add x^2"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/lesson-plans/render", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != docx.MIMEType {
		t.Fatalf("content type: %q", rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Body.String(), "PK") {
		t.Fatalf("body is not a zip package")
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestRouterWithoutGenerator(t *testing.T) {
	r, _ := newTestEngine(t)
	req := httptest.NewRequest(http.MethodPost, "/api/lesson-plans", strings.NewReader(`{"subject":"Math"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=503 got=%d", rec.Code)
	}
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	r, _ := newTestEngine(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "dlp_api_requests_total") {
		t.Fatalf("metrics: %d\n%s", rec.Code, rec.Body.String())
	}
}

func TestServerShutdownBeforeRun(t *testing.T) {
	s := NewServer(ServerConfig{Addr: "127.0.0.1:0"}, gin.New())
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
