// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics is the concrete Metrics backend, grounded on the
// teacher's tools/cmd/scraper metrics wiring (the same
// prometheus.NewCounterVec/NewHistogramVec construction, registered
// against a caller-supplied Registerer rather than the global one so a
// client can be embedded in a larger process without clobbering its
// metrics namespace).
type PrometheusMetrics struct {
	apiCalls        *prometheus.CounterVec
	apiCallDuration *prometheus.HistogramVec
	retries         *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
}

// NewPrometheusMetrics registers its collectors against reg and returns
// a ready-to-use Metrics implementation.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aws_sdk_go_core",
			Name:      "api_calls_total",
			Help:      "Total number of execute() calls, labeled by outcome.",
		}, []string{"service", "operation", "status_code", "outcome"}),
		apiCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aws_sdk_go_core",
			Name:      "api_call_duration_seconds",
			Help:      "Wall-clock duration of execute() calls, including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aws_sdk_go_core",
			Name:      "retries_total",
			Help:      "Total number of retry attempts, labeled by reason.",
		}, []string{"service", "operation", "reason"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "aws_sdk_go_core",
			Name:      "circuit_breaker_state",
			Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"service"}),
	}
	reg.MustRegister(m.apiCalls, m.apiCallDuration, m.retries, m.breakerState)
	return m
}

func (m *PrometheusMetrics) RecordAPICall(serviceName, operation string, statusCode int, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.apiCalls.WithLabelValues(serviceName, operation, strconv.Itoa(statusCode), outcome).Inc()
	m.apiCallDuration.WithLabelValues(serviceName, operation).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordRetry(serviceName, operation string, _ int, reason string) {
	m.retries.WithLabelValues(serviceName, operation, reason).Inc()
}

var breakerStateValues = map[string]float64{
	"closed":    0,
	"half-open": 1,
	"open":      2,
}

func (m *PrometheusMetrics) RecordCircuitBreakerState(serviceName string, state string) {
	m.breakerState.WithLabelValues(serviceName).Set(breakerStateValues[state])
}
