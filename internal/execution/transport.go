// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Transport sends a fully-built HttpRequest and returns the raw
// HttpResponse. Signing happens in the execute loop before Send is
// called — unlike the teacher's RoundTripper, Transport never injects
// auth itself, since the loop needs to re-sign on every retry with a
// fresh Signer invocation.
type Transport interface {
	Send(ctx context.Context, req *HttpRequest) (*HttpResponse, error)
	Close()
}

// HTTPTransport is the default Transport: a connection-pooled,
// TLS-enforcing *http.Client wrapper. Grounded on the teacher's
// internal/client/transport.go dialer/pool tuning, minus its
// authRoundTripper (the loop now owns signing explicitly).
type HTTPTransport struct {
	client *http.Client
}

// HTTPTransportConfig tunes the pooled transport. Zero values fall back
// to the same defaults the teacher's transport.go uses.
type HTTPTransportConfig struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	DialTimeout         time.Duration
	MinTLSVersion       uint16
	// InsecureSkipVerify should only ever be true in tests against a
	// local httptest.Server.
	InsecureSkipVerify bool
}

func (c HTTPTransportConfig) withDefaults() HTTPTransportConfig {
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 100
	}
	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = 10
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
	if c.TLSHandshakeTimeout == 0 {
		c.TLSHandshakeTimeout = 10 * time.Second
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 30 * time.Second
	}
	if c.MinTLSVersion == 0 {
		c.MinTLSVersion = tls.VersionTLS12
	}
	return c
}

// NewHTTPTransport builds an HTTPTransport from cfg.
func NewHTTPTransport(cfg HTTPTransportConfig) *HTTPTransport {
	cfg = cfg.withDefaults()
	dialer := &net.Dialer{Timeout: cfg.DialTimeout}
	rt := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion:         cfg.MinTLSVersion,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}
	return &HTTPTransport{
		client: &http.Client{
			Transport: rt,
			// Redirects are handled explicitly by the execute loop's
			// classify/redirect step, not by net/http.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// NewHTTPTransportFromClient wraps an already-built *http.Client —
// typically one whose RoundTripper is a go-vcr recorder in tests — in
// the execution core's Transport contract.
func NewHTTPTransportFromClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Send(ctx context.Context, req *HttpRequest) (*HttpResponse, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = req.Body.Stream
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URI.String(), bodyReader)
	if err != nil {
		return nil, &ClientError{Message: "failed to build HTTP request", Cause: err}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &ClientError{Message: fmt.Sprintf("request to %s failed", req.URI.Host), Cause: err}
	}

	return &HttpResponse{
		StatusCode: resp.StatusCode,
		StatusText: reasonPhrase(resp.Status),
		Headers:    resp.Header,
		Body:       resp.Body,
	}, nil
}

// reasonPhrase strips the leading "NNN " status code from net/http's
// combined Status string, leaving just the reason phrase (e.g. "Service
// Unavailable") that the error dispatcher's bodiless-fallback checks
// compare against.
func reasonPhrase(status string) string {
	if i := strings.IndexByte(status, ' '); i >= 0 {
		return strings.TrimSpace(status[i+1:])
	}
	return status
}

func (t *HTTPTransport) Close() {
	t.client.CloseIdleConnections()
}
