// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"context"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMetrics captures every Metrics call, mirroring the teacher's
// mockMetrics fake in internal/client/client_test.go.
type recordingMetrics struct {
	apiCalls      int
	retries       int
	breakerStates []string
}

func (m *recordingMetrics) RecordAPICall(string, string, int, time.Duration, error) { m.apiCalls++ }
func (m *recordingMetrics) RecordRetry(string, string, int, string)                 { m.retries++ }
func (m *recordingMetrics) RecordCircuitBreakerState(_ string, state string) {
	m.breakerStates = append(m.breakerStates, state)
}

// A Client built with WithCircuitBreaker wraps every Execute call in a
// gobreaker.CircuitBreaker and feeds its OnStateChange transitions into
// the Metrics sink, the same way the teacher's doRequest wraps
// doRequestWithRetry in circuitBreaker.Execute (see DESIGN.md).
func TestClient_CircuitBreakerTripsAndRecordsState(t *testing.T) {
	transport := &scriptedTransport{steps: []scriptStep{
		{resp: bodyResponse(500, "")},
		{resp: bodyResponse(500, "")},
		{resp: bodyResponse(500, "")},
	}}
	metrics := &recordingMetrics{}
	client := New("widgets",
		WithTransport(transport),
		WithRetryPolicy(NoRetryPolicy{}),
		WithMetrics(metrics),
		WithCircuitBreaker(gobreaker.Settings{
			MaxRequests: 1,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 2
			},
		}),
	)

	for i := 0; i < 2; i++ {
		_, err := Execute[string](context.Background(), client, newTestRequest(t), &recordingHandler{}, &scriptedErrorHandler{})
		require.Error(t, err)
	}

	// The breaker has now seen two consecutive failures and should be
	// open: a third call fails fast without reaching the transport.
	_, err := Execute[string](context.Background(), client, newTestRequest(t), &recordingHandler{}, &scriptedErrorHandler{})
	require.Error(t, err)
	assert.Equal(t, 2, transport.i, "breaker should short-circuit the third call before it reaches the transport")
	assert.Contains(t, metrics.breakerStates, "open")
}

// Close releases the Client's pooled transport connections without
// panicking, even when no requests were ever made.
func TestClient_Close(t *testing.T) {
	client := New("widgets", WithTransport(&scriptedTransport{}))
	assert.NotPanics(t, func() { client.Close() })
}
