// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"errors"
	"math/rand"
	"time"
)

// RetryPolicy is a pure, shared decision object. Implementations must
// be safe for concurrent use — one policy instance is typically reused
// across every execute call a client makes.
type RetryPolicy interface {
	// MaxErrorRetry is the policy-side retry ceiling.
	MaxErrorRetry() int
	// HonorsClientConfigMaxRetries says whether a non-negative
	// ClientConfig.MaxErrorRetry should override MaxErrorRetry.
	HonorsClientConfigMaxRetries() bool
	// ShouldRetry decides whether err warrants another attempt, given
	// how many retries (zero-based) have already happened.
	ShouldRetry(original *OriginalRequest, err error, retries int) bool
	// Delay returns how long to wait before the next attempt.
	Delay(original *OriginalRequest, prevErr error, retries int) time.Duration
}

// effectiveMaxRetries reconciles the client-config override against the
// policy ceiling per spec.md §4.2: a negative config value, or a policy
// that doesn't honor the override, falls back to the policy's own
// ceiling.
func effectiveMaxRetries(cfg *ClientConfig) int {
	policy := cfg.RetryPolicy
	if cfg.MaxErrorRetry < 0 || !policy.HonorsClientConfigMaxRetries() {
		return policy.MaxErrorRetry()
	}
	return cfg.MaxErrorRetry
}

// DefaultRetryPolicy retries the standard set of transient HTTP status
// codes with exponential backoff and jitter. Grounded on the teacher's
// retryableStatusCodes/calculateBackoff in internal/client/client.go and
// on the Azure SDK's calcDelay jitter formula (±[0.8, 1.3) multiplier,
// capped at MaxDelay) in the pack's policy_retry.go.
type DefaultRetryPolicy struct {
	MaxRetries           int
	HonorsClientMax      bool
	BaseDelay            time.Duration
	MaxDelay             time.Duration
	RetryableStatusCodes map[int]bool
}

// NewDefaultRetryPolicy returns a policy with sane defaults: 3 retries,
// honoring ClientConfig.MaxErrorRetry, 500ms base backoff capped at 20s.
func NewDefaultRetryPolicy() *DefaultRetryPolicy {
	return &DefaultRetryPolicy{
		MaxRetries:      3,
		HonorsClientMax: true,
		BaseDelay:       500 * time.Millisecond,
		MaxDelay:        20 * time.Second,
		RetryableStatusCodes: map[int]bool{
			408: true,
			429: true,
			500: true,
			502: true,
			503: true,
			504: true,
		},
	}
}

func (p *DefaultRetryPolicy) MaxErrorRetry() int                 { return p.MaxRetries }
func (p *DefaultRetryPolicy) HonorsClientConfigMaxRetries() bool { return p.HonorsClientMax }

// ShouldRetry retries any ClientError (a transport-level failure) and
// any ServiceError whose status code is in RetryableStatusCodes.
func (p *DefaultRetryPolicy) ShouldRetry(_ *OriginalRequest, err error, _ int) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return p.RetryableStatusCodes[svcErr.StatusCode]
	}
	var clientErr *ClientError
	return errors.As(err, &clientErr)
}

// Delay computes exponential backoff with jitter, capped at MaxDelay.
func (p *DefaultRetryPolicy) Delay(_ *OriginalRequest, _ error, retries int) time.Duration {
	if retries < 0 {
		retries = 0
	} else if retries > 10 {
		retries = 10 // bound the shift to avoid overflow
	}
	delay := p.BaseDelay * time.Duration(int64(1)<<uint(retries))
	if delay > p.MaxDelay || delay < 0 {
		delay = p.MaxDelay
	}
	jitterMultiplier := 0.8 + rand.Float64()*0.5 // [0.8, 1.3)
	jittered := time.Duration(float64(delay) * jitterMultiplier)
	if jittered > p.MaxDelay {
		jittered = p.MaxDelay
	}
	return jittered
}

// NoRetryPolicy never retries; useful for tests and for callers that
// want strict single-attempt semantics.
type NoRetryPolicy struct{}

func (NoRetryPolicy) MaxErrorRetry() int                               { return 0 }
func (NoRetryPolicy) HonorsClientConfigMaxRetries() bool               { return false }
func (NoRetryPolicy) ShouldRetry(*OriginalRequest, error, int) bool    { return false }
func (NoRetryPolicy) Delay(*OriginalRequest, error, int) time.Duration { return 0 }
