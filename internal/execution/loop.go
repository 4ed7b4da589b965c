// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Execute runs req through the full sign/send/retry/classify pipeline
// and unmarshals a successful response with handler. errHandler turns a
// non-2xx response into a *ServiceError. Both handlers may choose to
// leave the connection open (NeedsConnectionLeftOpen); otherwise Execute
// closes the body before returning.
//
// This is the request execution core's single entry point — everything
// else in the package exists to serve one call to Execute.
func Execute[T any](ctx context.Context, c *Client, req *Request, handler ResponseHandler[T], errHandler ErrorResponseHandler) (*Response[T], error) {
	if c.breaker == nil {
		return execute(ctx, c, req, handler, errHandler)
	}
	boxed, err := c.breaker.Execute(func() (interface{}, error) {
		return execute(ctx, c, req, handler, errHandler)
	})
	if boxed == nil {
		return nil, err
	}
	return boxed.(*Response[T]), err
}

func execute[T any](ctx context.Context, c *Client, req *Request, handler ResponseHandler[T], errHandler ErrorResponseHandler) (*Response[T], error) {
	cfg := &c.cfg
	start := time.Now()
	operation := req.Path
	maxRetries := effectiveMaxRetries(cfg)
	requestID := uuid.NewString()

	signer, err := cfg.SignerResolver.ResolveSigner(req)
	if err != nil {
		return nil, &ClientError{Message: "failed to resolve signer", Cause: err}
	}
	for _, ic := range cfg.Interceptors {
		if recv, ok := ic.(CredentialReceiver); ok {
			recv.SetCredentials(cfg.Credentials)
		}
	}

	originalParams := req.Parameters.Snapshot()
	originalHeaders := cloneHeaders(req.Headers)

	var rewinder Rewinder
	var lastResp *HttpResponse
	var lastErr error
	var httpReq *HttpRequest
	var redirectURI *url.URL
	attempt := 0

	finish := func(resp *HttpResponse, needsOpen bool) {
		if resp == nil || resp.Body == nil || needsOpen {
			return
		}
		_ = resp.Body.Close()
	}

	// fail routes every terminal failure through the same epilogue:
	// afterError fires exactly once per failed execute (spec.md §7),
	// regardless of which branch below produced the error.
	fail := func(err error) (*Response[T], error) {
		for _, ic := range cfg.Interceptors {
			_ = ic.AfterError(ctx, httpReq, lastResp, err)
		}
		statusCode := 0
		if lastResp != nil {
			statusCode = lastResp.StatusCode
		}
		cfg.Logger.Error("execution failed", map[string]any{
			"request_id": requestID,
			"service":    cfg.ServiceName,
			"operation":  operation,
			"attempts":   attempt,
			"error":      err.Error(),
		})
		cfg.Metrics.RecordAPICall(cfg.ServiceName, operation, statusCode, time.Since(start), err)
		return nil, err
	}

	// beforeRequest runs once, before the first attempt (spec.md §4.1
	// step 2) — not once per HTTP attempt.
	req.Headers = cloneHeaders(originalHeaders)
	applyUserAgent(req.Headers, req.Original)
	httpReq = &HttpRequest{
		Method:  req.Method,
		URI:     requestURI(req),
		Headers: req.Headers,
		Body:    req.Body,
	}
	for _, ic := range cfg.Interceptors {
		if err := ic.BeforeRequest(ctx, httpReq); err != nil {
			return fail(&ClientError{Message: "interceptor rejected request", Cause: err})
		}
	}

attempts:
	for {
		attempt++
		req.Parameters.Restore(originalParams)
		req.Headers = cloneHeaders(originalHeaders)
		applyUserAgent(req.Headers, req.Original)
		cfg.Logger.Debug("execution attempt starting", map[string]any{
			"request_id": requestID,
			"service":    cfg.ServiceName,
			"operation":  operation,
			"attempt":    attempt,
		})

		uri := requestURI(req)
		if redirectURI != nil {
			uri = redirectURI
		}
		httpReq = &HttpRequest{
			Method:  req.Method,
			URI:     uri,
			Headers: req.Headers,
			Body:    req.Body,
		}

		if signer != nil && cfg.Credentials != nil {
			if err := signer.Sign(ctx, httpReq, cfg.Credentials); err != nil {
				lastErr = &ClientError{Message: "failed to sign request", Cause: err}
				break attempts
			}
		}

		if attempt > 1 {
			delay := cfg.RetryPolicy.Delay(req.Original, lastErr, attempt-2)
			if sleepErr := sleep(ctx, delay); sleepErr != nil {
				lastErr = &ClientError{Message: "backoff interrupted", Cause: sleepErr}
				break attempts
			}
		}

		if rewindErr := rewinder.Rewind(req.Body, attempt == 1, lastErr); rewindErr != nil {
			lastErr = rewindErr
			break attempts
		}

		resp, sendErr := cfg.Transport.Send(ctx, httpReq)
		if sendErr != nil {
			lastErr = sendErr
			if !cfg.RetryPolicy.ShouldRetry(req.Original, lastErr, attempt-1) || attempt-1 >= maxRetries {
				break attempts
			}
			cfg.Metrics.RecordRetry(cfg.ServiceName, operation, attempt, "transport error")
			continue
		}
		lastResp = resp

		switch classify(resp) {
		case classSuccess:
			result, handleErr := handler.Handle(resp)
			finish(resp, handler.NeedsConnectionLeftOpen())
			if handleErr != nil {
				return fail(&ClientError{Message: "failed to unmarshal response", Cause: handleErr})
			}
			out := &Response[T]{Result: result, Raw: resp}
			for _, ic := range cfg.Interceptors {
				_ = ic.AfterResponse(ctx, httpReq, resp)
			}
			cfg.Metrics.RecordAPICall(cfg.ServiceName, operation, resp.StatusCode, time.Since(start), nil)
			return out, nil

		case classRedirect:
			finish(resp, false)
			next, parseErr := url.Parse(resp.Headers.Get(HeaderLocation))
			if parseErr != nil {
				lastErr = &ClientError{Message: "invalid redirect location", Cause: parseErr}
				break attempts
			}
			if next.IsAbs() {
				redirectURI = next
			} else {
				resolved := *httpReq.URI
				resolved.Path = next.Path
				resolved.RawQuery = next.RawQuery
				redirectURI = &resolved
			}
			cfg.Logger.Debug("following temporary redirect", map[string]any{
				"request_id": requestID,
				"service":    cfg.ServiceName,
				"operation":  operation,
				"location":   redirectURI.String(),
			})
			continue

		default:
			svcErr, dispatchErr := dispatchError(req, resp, errHandler)
			finish(resp, errHandler.NeedsConnectionLeftOpen())
			if dispatchErr != nil {
				lastErr = dispatchErr
				if !cfg.RetryPolicy.ShouldRetry(req.Original, lastErr, attempt-1) || attempt-1 >= maxRetries {
					break attempts
				}
				cfg.Metrics.RecordRetry(cfg.ServiceName, operation, attempt, "dispatch error")
				continue
			}
			if svcErr.RequestID == "" {
				svcErr.RequestID = requestID
			}
			if svcErr.IsClockSkew() {
				offset := computeClockSkewOffset(resp, svcErr.Message, start)
				cfg.ClockSkew.Observe(offset)
				cfg.Logger.Warn("clock skew detected, offset corrected", map[string]any{
					"request_id": requestID,
					"service":    cfg.ServiceName,
					"offset":     offset.String(),
				})
			}
			lastErr = svcErr
			if !cfg.RetryPolicy.ShouldRetry(req.Original, lastErr, attempt-1) || attempt-1 >= maxRetries {
				break attempts
			}
			cfg.Metrics.RecordRetry(cfg.ServiceName, operation, attempt, "service error")
			continue
		}
	}

	return fail(lastErr)
}

func requestURI(req *Request) *url.URL {
	u := *req.Endpoint
	u.Path = req.Path
	q := u.Query()
	for _, k := range req.Parameters.Keys() {
		if v, ok := req.Parameters.Get(k); ok {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return &u
}
