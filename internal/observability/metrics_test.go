package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Second)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.ObserveLLMRequest("gpt", "200", time.Second)
	m.IncGeneration("generate", "ok")
	m.IncImageOutcome("fetched", "embedded")
	m.ObserveRender(time.Millisecond, 10)
	m.IncArchiveUpload("ok")
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus on nil: %v", err)
	}

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("nil metrics endpoint: want 503 got %d", rec.Code)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.IncGeneration("generate", "ok")
	m.IncGeneration("generate", "ok")
	m.IncImageOutcome("fetched", "unavailable")
	m.ObserveRender(20*time.Millisecond, 2048)
	m.ObserveAPI("POST", "/api/lesson-plans", "200", 3*time.Second)

	if got := m.generations.Value("generate", "ok"); got != 2 {
		t.Fatalf("generations: want=2 got=%v", got)
	}
	if got := m.documentBytes.Value(); got != 2048 {
		t.Fatalf("document bytes: want=2048 got=%v", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# TYPE dlp_generations_total counter",
		`dlp_generations_total{mode="generate",outcome="ok"} 2`,
		`dlp_image_embeds_total{source="fetched",outcome="unavailable"} 1`,
		`dlp_render_duration_seconds_bucket{le="0.025"} 1`,
		`dlp_api_request_duration_seconds_count{method="POST",route="/api/lesson-plans",status="200"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q\n%s", want, out)
		}
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labelString: got=%s", got)
	}
	if withLe("", "1") != `{le="1"}` {
		t.Fatalf("withLe without labels")
	}
}

func TestParseHeaders(t *testing.T) {
	h := ParseHeaders(" api-key = abc , bad, =x ,k=v")
	if len(h) != 2 || h["api-key"] != "abc" || h["k"] != "v" {
		t.Fatalf("ParseHeaders: got=%v", h)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("empty input should return nil")
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := NewHistogramVec("x_seconds", "x", nil, []float64{1, 0.1})
	h.Observe(0.25)
	h.Observe(0.5)
	h.Observe(7)

	var buf bytes.Buffer
	if err := h.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	for _, want := range []string{
		`x_seconds_bucket{le="0.1"} 0`,
		`x_seconds_bucket{le="1"} 2`,
		`x_seconds_bucket{le="+Inf"} 3`,
		`x_seconds_sum 7.75`,
		`x_seconds_count 3`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing %q\n%s", want, buf.String())
		}
	}
}

func TestCounterRejectsNegative(t *testing.T) {
	c := NewCounter("c_total", "c")
	c.Add(3)
	c.Add(-1)
	if c.Value() != 3 {
		t.Fatalf("counter: want=3 got=%v", c.Value())
	}
	g := NewGauge("g", "g")
	g.Inc()
	g.Dec()
	g.Dec()
	if g.Value() != -1 {
		t.Fatalf("gauge: want=-1 got=%v", g.Value())
	}
}
