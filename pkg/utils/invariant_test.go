package utils

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestRaiseInvariant(t *testing.T) {
	invariantsMetric.Reset() // Start from a clean counter.
	RaiseInvariant("invariant", "test", "This is a test invariant violation.")
	assert.Equal(t, 1, GetMetricValue("invariant" /*module*/, "test" /*invariantType*/))
	assert.Equal(t, 0, GetMetricValue("invariant" /*module*/, "other" /*invariantType*/))
}

func TestRaiseInvariantPanicsInTestMode(t *testing.T) {
	IsTestMode = true
	t.Cleanup(func() { IsTestMode = false })
	assert.PanicsWithValue(t, "invariant violated: boom", func() {
		RaiseInvariant("invariant", "boom", "This invariant should panic.")
	})
}

func TestGaugeValue(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "A test gauge."})
	gauge.Set(3)
	gauge.Dec()
	assert.Equal(t, float64(2), GaugeValue(gauge))
}
