// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// ClientConfig holds everything an execute call needs. Built up via
// functional Options, the same pattern the teacher's client.Option/
// WithBaseURL use in internal/client/client.go.
type ClientConfig struct {
	ServiceName    string
	BaseURL        *url.URL
	Transport      Transport
	SignerResolver SignerResolver
	ClockSkew      *ClockSkew
	Metrics        Metrics
	Logger         Logger
	Interceptors   []Interceptor
	RetryPolicy    RetryPolicy
	// Credentials is handed to the Signer on every attempt and, for any
	// Interceptor implementing CredentialReceiver, pushed to it right
	// before BeforeRequest runs.
	Credentials Credentials
	// MaxErrorRetry overrides RetryPolicy.MaxErrorRetry() when
	// non-negative and the policy honors the override (see
	// effectiveMaxRetries). Negative (the default) means "no override".
	MaxErrorRetry int
	// CircuitBreakerSettings, when non-nil, wraps every execute call in
	// a gobreaker.CircuitBreaker built from these settings.
	CircuitBreakerSettings *gobreaker.Settings
}

// Option mutates a ClientConfig under construction.
type Option func(*ClientConfig)

// WithBaseURL sets the service endpoint.
func WithBaseURL(u *url.URL) Option {
	return func(c *ClientConfig) { c.BaseURL = u }
}

// WithTransport overrides the default HTTPTransport.
func WithTransport(t Transport) Option {
	return func(c *ClientConfig) { c.Transport = t }
}

// WithSignerResolver sets how a Signer is chosen per request.
func WithSignerResolver(r SignerResolver) Option {
	return func(c *ClientConfig) { c.SignerResolver = r }
}

// WithStaticSigner is shorthand for WithSignerResolver(StaticSigner{s}).
func WithStaticSigner(s Signer) Option {
	return func(c *ClientConfig) { c.SignerResolver = StaticSigner{Signer: s} }
}

// WithMetrics overrides the default no-op Metrics.
func WithMetrics(m Metrics) Option {
	return func(c *ClientConfig) { c.Metrics = m }
}

// WithLogger overrides the default no-op Logger.
func WithLogger(l Logger) Option {
	return func(c *ClientConfig) { c.Logger = l }
}

// WithInterceptor appends an Interceptor, run in the order added.
func WithInterceptor(i Interceptor) Option {
	return func(c *ClientConfig) { c.Interceptors = append(c.Interceptors, i) }
}

// WithRetryPolicy overrides the default DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *ClientConfig) { c.RetryPolicy = p }
}

// WithCredentials sets the auth material threaded to the Signer and to
// any CredentialReceiver interceptor.
func WithCredentials(creds Credentials) Option {
	return func(c *ClientConfig) { c.Credentials = creds }
}

// WithMaxErrorRetry caps the number of retries, if the active
// RetryPolicy honors the override.
func WithMaxErrorRetry(n int) Option {
	return func(c *ClientConfig) { c.MaxErrorRetry = n }
}

// WithCircuitBreaker wraps execute calls in a gobreaker.CircuitBreaker
// built from settings.
func WithCircuitBreaker(settings gobreaker.Settings) Option {
	return func(c *ClientConfig) { c.CircuitBreakerSettings = &settings }
}

// Client executes signed, retried, clock-skew-corrected HTTP requests
// against a single service. Construct with New.
type Client struct {
	cfg     ClientConfig
	breaker *gobreaker.CircuitBreaker
}

// New builds a Client. ServiceName is required; every other dependency,
// Transport included, falls back to a sane default.
func New(serviceName string, opts ...Option) *Client {
	cfg := ClientConfig{
		ServiceName:   serviceName,
		ClockSkew:     NewClockSkew(),
		Metrics:       NopMetrics{},
		Logger:        NopLogger{},
		RetryPolicy:   NewDefaultRetryPolicy(),
		MaxErrorRetry: -1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Transport == nil {
		cfg.Transport = NewHTTPTransport(HTTPTransportConfig{})
	}
	if cfg.SignerResolver == nil {
		cfg.SignerResolver = StaticSigner{Signer: NoopSigner{}}
	}

	c := &Client{cfg: cfg}
	if cfg.CircuitBreakerSettings != nil {
		settings := *cfg.CircuitBreakerSettings
		defaults := defaultCircuitBreakerSettings(serviceName)
		if settings.Name == "" {
			settings.Name = serviceName
		}
		if settings.Timeout == 0 {
			settings.Timeout = defaults.Timeout
		}
		if settings.ReadyToTrip == nil {
			settings.ReadyToTrip = defaults.ReadyToTrip
		}
		onStateChange := settings.OnStateChange
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.Metrics.RecordCircuitBreakerState(name, to.String())
			if onStateChange != nil {
				onStateChange(name, from, to)
			}
		}
		c.breaker = gobreaker.NewCircuitBreaker(settings)
	}
	return c
}

// Close releases the Client's pooled connections. Explicit, rather than
// finalizer-driven, so shutdown is deterministic — matching how the
// teacher's client.go expects callers to manage its lifetime.
func (c *Client) Close() {
	c.cfg.Transport.Close()
}

// ClockSkew exposes the Client's clock offset tracker, mainly so tests
// can assert on Client.cfg.ClockSkew.Offset() after a skewed response.
func (c *Client) ClockSkew() *ClockSkew {
	return c.cfg.ClockSkew
}

// defaultCircuitBreakerSettings mirrors gobreaker's own defaults except
// for a shorter open-state timeout, tuned for request-execution-core
// latencies rather than gobreaker's general-purpose default of 60s.
func defaultCircuitBreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}
}
