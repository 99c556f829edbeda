package observability

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// series holds one float per label set. It backs counters and gauges.
type series struct {
	name   string
	help   string
	kind   string
	labels []string

	mu   sync.Mutex
	vals map[string]float64
}

func newSeries(name, help, kind string, labels []string) *series {
	return &series{name: name, help: help, kind: kind, labels: labels, vals: map[string]float64{}}
}

func (s *series) add(delta float64, values []string) {
	key := labelString(s.labels, values)
	s.mu.Lock()
	s.vals[key] += delta
	s.mu.Unlock()
}

func (s *series) get(values []string) float64 {
	key := labelString(s.labels, values)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vals[key]
}

func (s *series) write(w io.Writer) error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.vals))
	for k := range s.vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	bw := bufio.NewWriter(w)
	writeHeader(bw, s.name, s.help, s.kind)
	if len(keys) == 0 && len(s.labels) == 0 {
		writeSample(bw, s.name, "", formatFloat(0))
	}
	for _, k := range keys {
		writeSample(bw, s.name, k, formatFloat(s.vals[k]))
	}
	s.mu.Unlock()
	return bw.Flush()
}

type CounterVec struct{ s *series }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{s: newSeries(name, help, "counter", labels)}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

// Add ignores negative deltas; counters only go up.
func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil || v < 0 {
		return
	}
	c.s.add(v, values)
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.s.get(values)
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.s.write(w)
}

type Counter struct{ vec *CounterVec }

func NewCounter(name, help string) *Counter {
	return &Counter{vec: NewCounterVec(name, help, nil)}
}

func (c *Counter) Inc() { c.Add(1) }

func (c *Counter) Add(v float64) {
	if c != nil {
		c.vec.Add(v)
	}
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	return c.vec.Value()
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.vec.WritePrometheus(w)
}

type Gauge struct{ s *series }

func NewGauge(name, help string) *Gauge {
	return &Gauge{s: newSeries(name, help, "gauge", nil)}
}

func (g *Gauge) Inc() {
	if g != nil {
		g.s.add(1, nil)
	}
}

func (g *Gauge) Dec() {
	if g != nil {
		g.s.add(-1, nil)
	}
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.s.get(nil)
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.s.write(w)
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

type HistogramVec struct {
	name    string
	help    string
	labels  []string
	bounds  []float64
	mu      sync.Mutex
	byLabel map[string]*histogram
}

// histogram keeps per-bucket (non-cumulative) counts; the extra last slot
// collects observations above every bound.
type histogram struct {
	buckets []uint64
	sum     float64
	count   uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	bounds := append([]float64(nil), buckets...)
	if len(bounds) == 0 {
		bounds = append(bounds, defaultBuckets...)
	}
	sort.Float64s(bounds)
	return &HistogramVec{name: name, help: help, labels: labels, bounds: bounds, byLabel: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	key := labelString(h.labels, values)
	slot := sort.SearchFloat64s(h.bounds, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	hist := h.byLabel[key]
	if hist == nil {
		hist = &histogram{buckets: make([]uint64, len(h.bounds)+1)}
		h.byLabel[key] = hist
	}
	hist.buckets[slot]++
	hist.sum += v
	hist.count++
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, 0, len(h.byLabel))
	for k := range h.byLabel {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bw := bufio.NewWriter(w)
	writeHeader(bw, h.name, h.help, "histogram")
	for _, k := range keys {
		hist := h.byLabel[k]
		var cumulative uint64
		for i, bound := range h.bounds {
			cumulative += hist.buckets[i]
			writeSample(bw, h.name+"_bucket", withLe(k, formatFloat(bound)), strconv.FormatUint(cumulative, 10))
		}
		writeSample(bw, h.name+"_bucket", withLe(k, "+Inf"), strconv.FormatUint(hist.count, 10))
		writeSample(bw, h.name+"_sum", k, formatFloat(hist.sum))
		writeSample(bw, h.name+"_count", k, strconv.FormatUint(hist.count, 10))
	}
	return bw.Flush()
}

func writeHeader(w *bufio.Writer, name, help, kind string) {
	w.WriteString("# HELP " + name + " " + help + "\n")
	w.WriteString("# TYPE " + name + " " + kind + "\n")
}

func writeSample(w *bufio.Writer, name, labels, value string) {
	w.WriteString(name)
	w.WriteString(labels)
	w.WriteByte(' ')
	w.WriteString(value)
	w.WriteByte('\n')
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// labelString renders {a="x",b="y"}. Missing values render as "unknown".
func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) {
			val = values[i]
		}
		parts[i] = name + `="` + labelEscaper.Replace(val) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func withLe(labels, le string) string {
	pair := `le="` + labelEscaper.Replace(le) + `"`
	if labels == "" {
		return "{" + pair + "}"
	}
	return strings.TrimSuffix(labels, "}") + "," + pair + "}"
}
