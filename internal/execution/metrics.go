// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import "time"

// Logger is the ambient logging seam. Deliberately minimal — fields are
// passed as a map rather than variadic key/value pairs, matching the
// structured-field style the teacher's zerolog-backed logger uses
// throughout internal/client.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// NopLogger discards everything. Used as the Client default so callers
// never have to nil-check cfg.Logger.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]any) {}
func (NopLogger) Warn(string, map[string]any)  {}
func (NopLogger) Error(string, map[string]any) {}

// Metrics is the ambient observability seam for an execute call. A
// client wires in a concrete implementation (see NewPrometheusMetrics);
// the loop never depends on a specific backend.
type Metrics interface {
	// RecordAPICall is fired exactly once per execute call, after the
	// loop has reached a terminal outcome.
	RecordAPICall(serviceName, operation string, statusCode int, duration time.Duration, err error)
	// RecordRetry is fired each time the loop decides to retry after a
	// failed attempt; following a 307 redirect is not recorded.
	RecordRetry(serviceName, operation string, attempt int, reason string)
	// RecordCircuitBreakerState is fired whenever the breaker wrapping
	// an execute call changes state.
	RecordCircuitBreakerState(serviceName string, state string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordAPICall(string, string, int, time.Duration, error) {}
func (NopMetrics) RecordRetry(string, string, int, string)                 {}
func (NopMetrics) RecordCircuitBreakerState(string, string)                 {}
