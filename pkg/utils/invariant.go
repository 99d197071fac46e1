// Invariants are conditions that must hold unless there is a bug in ringlist itself, e.g. a ring
// whose links no longer agree with each other or a cached size that drifted from the node count.
// Violations are logged, counted on a prometheus counter and, in test builds, turned into panics.
// The caller still has to handle the broken case, typically by returning early.
//
// Do not raise invariants for conditions caused by callers; an out of range index is an error
// for the caller, not an invariant violation.

package utils

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var invariantsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invariants_total",
	Help: "The total number of invariant violations",
}, []string{
	"module", // The module in which this invariant occurred.
	"type",   // The type of the invariant that occurred.
})

// RaiseInvariant records a violated invariant of `invariantType` inside `module`.
func RaiseInvariant(module, invariantType, msg string, args ...any) {
	invariantsMetric.WithLabelValues(module, invariantType).Inc()
	slog.With("invariant", invariantType, "module", module).Error(msg, args...)
	if IsTestMode {
		panic("invariant violated: " + invariantType)
	}
}

// GetMetricValue returns the current value of the invariant counter with labels `module` and `invariantType`.
func GetMetricValue(module, invariantType string) int {
	return int(CounterValue(invariantsMetric.WithLabelValues(module, invariantType)))
}

// CounterValue reads the current value of a single prometheus counter.
func CounterValue(counter prometheus.Counter) float64 {
	var metric = &promclient.Metric{}
	if err := counter.Write(metric); err != nil {
		slog.Error("Failed to read counter value.", "error", err)
		return 0
	}
	return metric.GetCounter().GetValue()
}

// GaugeValue reads the current value of a single prometheus gauge.
func GaugeValue(gauge prometheus.Gauge) float64 {
	var metric = &promclient.Metric{}
	if err := gauge.Write(metric); err != nil {
		slog.Error("Failed to read gauge value.", "error", err)
		return 0
	}
	return metric.GetGauge().GetValue()
}
