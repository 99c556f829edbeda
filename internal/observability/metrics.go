package observability

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/dlp-generator/internal/platform/logger"
)

type Metrics struct {
	apiRequests    *CounterVec
	apiLatency     *HistogramVec
	apiInflight    *Gauge
	llmRequests    *CounterVec
	llmLatency     *HistogramVec
	generations    *CounterVec
	imageOutcomes  *CounterVec
	renderLatency  *HistogramVec
	documentBytes  *Counter
	archiveUploads *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process metrics, or nil when metrics are disabled.
// Every Metrics method is safe on a nil receiver.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// NewMetrics builds an unregistered metrics set. Tests use it directly.
func NewMetrics() *Metrics {
	latency := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}
	return &Metrics{
		apiRequests: NewCounterVec("dlp_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("dlp_api_request_duration_seconds", "API request latency in seconds by method/route/status.", []string{"method", "route", "status"}, latency),
		apiInflight: NewGauge("dlp_api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("dlp_llm_requests_total", "Content generation requests by model/status.", []string{"model", "status"}),
		llmLatency: NewHistogramVec("dlp_llm_request_duration_seconds", "Content generation latency in seconds.", []string{"model", "status"},
			[]float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120}),
		generations:    NewCounterVec("dlp_generations_total", "Lesson plan generations by mode/outcome.", []string{"mode", "outcome"}),
		imageOutcomes:  NewCounterVec("dlp_image_embeds_total", "Image embedding outcomes by source/outcome.", []string{"source", "outcome"}),
		renderLatency:  NewHistogramVec("dlp_render_duration_seconds", "Document assembly and serialization latency.", nil, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}),
		documentBytes:  NewCounter("dlp_document_bytes_total", "Bytes of DOCX produced."),
		archiveUploads: NewCounterVec("dlp_archive_uploads_total", "Archive uploads by status.", []string{"status"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency,
		m.generations, m.imageOutcomes, m.renderLatency, m.documentBytes,
		m.archiveUploads,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration) {
	if m == nil {
		return
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.llmRequests.Inc(model, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model, status)
	}
}

func (m *Metrics) IncGeneration(mode, outcome string) {
	if m == nil {
		return
	}
	m.generations.Inc(mode, outcome)
}

func (m *Metrics) IncImageOutcome(source, outcome string) {
	if m == nil {
		return
	}
	m.imageOutcomes.Inc(source, outcome)
}

func (m *Metrics) ObserveRender(dur time.Duration, size int) {
	if m == nil {
		return
	}
	m.renderLatency.Observe(dur.Seconds())
	if size > 0 {
		m.documentBytes.Add(float64(size))
	}
}

func (m *Metrics) IncArchiveUpload(status string) {
	if m == nil {
		return
	}
	m.archiveUploads.Inc(status)
}
