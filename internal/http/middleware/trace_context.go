package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/dlp-generator/internal/platform/ctxutil"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"

	maxCorrelationIDLen = 128
)

// AttachTraceContext resolves the request and trace ids, stores them on the
// request context and echoes them back. An active otel span wins over a
// caller-supplied trace id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		sc := span.SpanContext()

		td := &ctxutil.TraceData{
			RequestID: cleanCorrelationID(c.GetHeader(HeaderRequestID)),
			TraceID:   cleanCorrelationID(c.GetHeader(HeaderTraceID)),
		}
		if td.RequestID == "" {
			td.RequestID = uuid.NewString()
		}
		if sc.HasTraceID() {
			td.TraceID = sc.TraceID().String()
		} else if td.TraceID == "" {
			td.TraceID = uuid.NewString()
		}
		if span.IsRecording() {
			span.SetAttributes(attribute.String("http.request_id", td.RequestID))
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set("request_id", td.RequestID)
		c.Set("trace_id", td.TraceID)
		h := c.Writer.Header()
		h.Set(HeaderRequestID, td.RequestID)
		h.Set(HeaderTraceID, td.TraceID)
		c.Next()
	}
}

// cleanCorrelationID keeps only header-safe characters and caps the length;
// anything that ends up empty is treated as absent.
func cleanCorrelationID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range raw {
		if b.Len() >= maxCorrelationIDLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.' || r == ':':
			b.WriteRune(r)
		}
	}
	return b.String()
}
