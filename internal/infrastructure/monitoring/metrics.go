package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "formwork"

var latencyBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Form pipeline metrics
	Extractions       *prometheus.CounterVec
	ExtractDuration   *prometheus.HistogramVec
	Renders           *prometheus.CounterVec
	RenderDuration    *prometheus.HistogramVec
	Dispatches        *prometheus.CounterVec
	InvalidSubmission *prometheus.CounterVec

	// Document library metrics
	FormsLoaded  prometheus.Gauge
	SeedFailures prometheus.Counter

	registry  *prometheus.Registry
	startTime time.Time

	// Snapshot for the JSON health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current totals for the JSON API.
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	Extractions   int64   `json:"extractions"`
	Renders       int64   `json:"renders"`
	Dispatches    int64   `json:"dispatches"`
	FailedCalls   int64   `json:"failed_calls"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics registers the collectors on reg. A nil reg gets a fresh
// registry, so tests can build as many Metrics as they like.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	auto := promauto.With(reg)
	m := &Metrics{registry: reg, startTime: time.Now()}

	m.RequestsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	m.RequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "route"})
	m.RequestSize = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_size_bytes",
		Help:      "HTTP request size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "route"})
	m.ResponseSize = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "route"})

	m.Extractions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_extractions_total",
		Help:      "Top-level extraction calls",
	}, []string{"form", "status"})
	m.ExtractDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "form_extract_duration_seconds",
		Help:      "Extraction duration in seconds",
		Buckets:   latencyBuckets,
	}, []string{"form"})
	m.Renders = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_renders_total",
		Help:      "Top-level render calls",
	}, []string{"form", "mode", "status"})
	m.RenderDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "form_render_duration_seconds",
		Help:      "Render duration in seconds",
		Buckets:   latencyBuckets,
	}, []string{"form", "mode"})
	m.Dispatches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_action_dispatches_total",
		Help:      "Dispatched form actions",
	}, []string{"action", "status"})
	m.InvalidSubmission = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_invalid_submissions_total",
		Help:      "Submissions rejected by validation",
	}, []string{"form"})

	m.FormsLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "forms_loaded",
		Help:      "Form documents in the library",
	})
	m.SeedFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_seed_failures_total",
		Help:      "Form documents that failed to load",
	})
	auto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Server uptime in seconds",
	}, func() float64 { return time.Since(m.startTime).Seconds() })

	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route string, code int, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, route).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, route).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if code >= 400 {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// ObserveExtract implements form.Observer.
func (m *Metrics) ObserveExtract(path string, d time.Duration, err error) {
	m.Extractions.WithLabelValues(path, status(err)).Inc()
	m.ExtractDuration.WithLabelValues(path).Observe(d.Seconds())
	m.count(&m.snapshot.Extractions, err)
}

// ObserveRender implements form.Observer.
func (m *Metrics) ObserveRender(path string, mode form.Mode, d time.Duration, err error) {
	m.Renders.WithLabelValues(path, string(mode), status(err)).Inc()
	m.RenderDuration.WithLabelValues(path, string(mode)).Observe(d.Seconds())
	m.count(&m.snapshot.Renders, err)
}

// ObserveDispatch implements the controller observer.
func (m *Metrics) ObserveDispatch(path string, err error) {
	m.Dispatches.WithLabelValues(path, status(err)).Inc()
	m.count(&m.snapshot.Dispatches, err)
}

// RecordInvalid counts a submission that failed validation.
func (m *Metrics) RecordInvalid(form string) {
	m.InvalidSubmission.WithLabelValues(form).Inc()
}

// SetFormsLoaded sets the number of documents in the library.
func (m *Metrics) SetFormsLoaded(n int) {
	m.FormsLoaded.Set(float64(n))
}

// AddSeedFailures counts documents that could not be loaded.
func (m *Metrics) AddSeedFailures(n int) {
	m.SeedFailures.Add(float64(n))
}

func (m *Metrics) count(total *int64, err error) {
	m.mu.Lock()
	*total++
	if err != nil {
		m.snapshot.FailedCalls++
	}
	m.mu.Unlock()
}

// Snapshot returns the current totals.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
