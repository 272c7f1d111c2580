package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	ExtractionsTotal    *prometheus.CounterVec
	ExtractorDuration   *prometheus.HistogramVec
	PipelineDuration    prometheus.Histogram
	PredictionsTotal    *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// lookupBuckets cover the lookup deadline range, 100ms to 30s.
var lookupBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// NewMetrics registers the metrics on reg. Pass prometheus.DefaultRegisterer
// to expose them on the global handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ExtractionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "phishguard_extractions_total",
			Help: "Feature extractor runs by feature and outcome.",
		}, []string{"feature", "outcome"}),
		ExtractorDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "phishguard_extractor_duration_seconds",
			Help:    "Duration of a single feature extractor.",
			Buckets: lookupBuckets,
		}, []string{"feature"}),
		PipelineDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "phishguard_extraction_duration_seconds",
			Help:    "Duration of a full feature extraction.",
			Buckets: lookupBuckets,
		}),
		PredictionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "phishguard_predictions_total",
			Help: "Verdicts returned, by result.",
		}, []string{"result"}), // phishing, legitimate, error
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// ObserveExtraction implements features.Observer.
func (m *Metrics) ObserveExtraction(feature, outcome string, d time.Duration) {
	m.ExtractionsTotal.WithLabelValues(feature, outcome).Inc()
	m.ExtractorDuration.WithLabelValues(feature).Observe(d.Seconds())
}

func (m *Metrics) ObservePipeline(d time.Duration) {
	m.PipelineDuration.Observe(d.Seconds())
}

func (m *Metrics) IncPrediction(result string) {
	m.PredictionsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(d.Seconds())
}
