package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Extraction(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveExtraction("asn_ip", "ok", 120*time.Millisecond)
	m.ObserveExtraction("asn_ip", "timeout", 5*time.Second)
	m.ObserveExtraction("asn_ip", "timeout", 5*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("asn_ip", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("asn_ip", "timeout")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ExtractorDuration))
}

func TestMetrics_Predictions(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.IncPrediction("phishing")
	m.IncPrediction("legitimate")
	m.IncPrediction("phishing")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PredictionsTotal.WithLabelValues("phishing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictionsTotal.WithLabelValues("legitimate")))
}

func TestMetrics_HTTP(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveHTTP("POST", "/check_url", 200, 30*time.Millisecond)
	m.ObserveHTTP("POST", "/check_url", 400, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/check_url", "400")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	// Two instances on their own registries must not collide.
	require.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})

	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}
