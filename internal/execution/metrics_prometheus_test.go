// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_RecordAPICall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.RecordAPICall("widgets", "/a", 200, 50*time.Millisecond, nil)
	m.RecordAPICall("widgets", "/a", 500, 10*time.Millisecond, errors.New("boom"))

	count, err := testutil.GatherAndCount(reg, "aws_sdk_go_core_api_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPrometheusMetrics_RecordRetryAndBreakerState(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.RecordRetry("widgets", "/a", 1, "service error")
	m.RecordCircuitBreakerState("widgets", "open")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.retries.WithLabelValues("widgets", "/a", "service error")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.breakerState.WithLabelValues("widgets")))
}
