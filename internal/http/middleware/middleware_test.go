package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/dlp-generator/internal/observability"
	"github.com/yungbote/dlp-generator/internal/platform/ctxutil"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
)

func TestTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen != "req-42" || rec.Header().Get("X-Request-Id") != "req-42" {
		t.Fatalf("request id: ctx=%q header=%q", seen, rec.Header().Get("X-Request-Id"))
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("trace id should be generated")
	}
}

func TestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LimitBody(4))
	r.POST("/x", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	for body, want := range map[string]int{"abc": http.StatusOK, "abcdefgh": http.StatusRequestEntityTooLarge} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body)))
		if rec.Code != want {
			t.Fatalf("body %q: want=%d got=%d", body, want, rec.Code)
		}
	}
}

func TestMetricsObservesRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(RequestLogger(logger.NewNop()), Metrics(m))
	r.GET("/healthcheck", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	var out strings.Builder
	if err := m.WritePrometheus(&out); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if !strings.Contains(out.String(), `route="/healthcheck"`) {
		t.Fatalf("route not recorded:\n%s", out.String())
	}
}

func TestTraceContextCleansInboundIDs(t *testing.T) {
	cases := []struct{ in, want string }{
		{"abc-123", "abc-123"},
		{"  spaced  ", "spaced"},
		{"evil\r\nSet-Cookie:x", "evilSet-Cookie:x"},
		{strings.Repeat("a", 300), strings.Repeat("a", maxCorrelationIDLen)},
		{"<<>>", ""},
	}
	for _, tc := range cases {
		if got := cleanCorrelationID(tc.in); got != tc.want {
			t.Fatalf("cleanCorrelationID(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestTraceContextGeneratesWhenHeaderUnusable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "<<>>")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderRequestID); got == "" || got == "<<>>" {
		t.Fatalf("request id should be regenerated, got=%q", got)
	}
}

func TestMetricsLabelsUnmatchedAndSkipsScrape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/metrics", gin.WrapF(m.WriteHTTP))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/12345", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	var out strings.Builder
	if err := m.WritePrometheus(&out); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, `route="unmatched"`) {
		t.Fatalf("unmatched route not labelled:\n%s", text)
	}
	if strings.Contains(text, `route="/nope/12345"`) || strings.Contains(text, `route="/metrics"`) {
		t.Fatalf("unexpected route label:\n%s", text)
	}
}
