// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"errors"
	"io"
	"net/http"
	"testing"
)

func TestDispatchError_HandlerSucceeds(t *testing.T) {
	req := &Request{ServiceName: "widgets"}
	resp := &HttpResponse{StatusCode: 400}
	handler := ErrorResponseHandlerFunc(func(*HttpResponse) (*ServiceError, error) {
		return &ServiceError{ErrorCode: "InvalidParameter", Message: "bad input"}, nil
	})

	svcErr, err := dispatchError(req, resp, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svcErr.StatusCode != 400 || svcErr.ServiceName != "widgets" {
		t.Errorf("expected StatusCode/ServiceName to be filled in, got %+v", svcErr)
	}
}

func TestDispatchError_IOErrorRethrown(t *testing.T) {
	req := &Request{ServiceName: "widgets"}
	resp := &HttpResponse{StatusCode: 400}
	handler := ErrorResponseHandlerFunc(func(*HttpResponse) (*ServiceError, error) {
		return nil, io.ErrUnexpectedEOF
	})

	_, err := dispatchError(req, resp, handler)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF to be rethrown unchanged, got %v", err)
	}
}

func TestDispatchError_413BodilessFallback(t *testing.T) {
	req := &Request{ServiceName: "widgets"}
	resp := &HttpResponse{StatusCode: http.StatusRequestEntityTooLarge}
	handler := ErrorResponseHandlerFunc(func(*HttpResponse) (*ServiceError, error) {
		return nil, errors.New("empty body, nothing to unmarshal")
	})

	svcErr, err := dispatchError(req, resp, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svcErr.ErrorType != ErrorTypeClient {
		t.Errorf("expected synthesized 413 error to be ErrorTypeClient, got %v", svcErr.ErrorType)
	}
}

func TestDispatchError_503ServiceUnavailableBodilessFallback(t *testing.T) {
	req := &Request{ServiceName: "widgets"}
	resp := &HttpResponse{StatusCode: http.StatusServiceUnavailable, StatusText: "Service Unavailable"}
	handler := ErrorResponseHandlerFunc(func(*HttpResponse) (*ServiceError, error) {
		return nil, errors.New("empty body, nothing to unmarshal")
	})

	svcErr, err := dispatchError(req, resp, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svcErr.ErrorType != ErrorTypeService {
		t.Errorf("expected synthesized 503 error to be ErrorTypeService, got %v", svcErr.ErrorType)
	}
}

func TestDispatchError_UnrecognizedFailureWrapsAsClientError(t *testing.T) {
	req := &Request{ServiceName: "widgets"}
	resp := &HttpResponse{StatusCode: 500}
	cause := errors.New("malformed json")
	handler := ErrorResponseHandlerFunc(func(*HttpResponse) (*ServiceError, error) {
		return nil, cause
	})

	_, err := dispatchError(req, resp, handler)
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected a *ClientError, got %T", err)
	}
	if !errors.Is(clientErr, cause) {
		t.Errorf("expected ClientError to wrap the original cause")
	}
}
