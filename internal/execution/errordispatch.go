// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// dispatchError tries the caller-provided error handler first, falling
// back to the synthetic 413/503 cases spec.md §4.7 calls out for bodiless
// responses, and wrapping anything else as a ClientError. The returned
// ServiceError always has StatusCode and ServiceName filled from the
// response/request, regardless of which path produced it.
func dispatchError(req *Request, resp *HttpResponse, handler ErrorResponseHandler) (*ServiceError, error) {
	svcErr, err := handler.Handle(resp)
	if err == nil {
		fillCommon(svcErr, resp, req)
		return svcErr, nil
	}

	if isIOError(err) {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return &ServiceError{
			StatusCode:  http.StatusRequestEntityTooLarge,
			ServiceName: req.ServiceName,
			ErrorCode:   "Request entity too large",
			ErrorType:   ErrorTypeClient,
			Message:     "Request entity too large",
		}, nil
	case resp.StatusCode == http.StatusServiceUnavailable &&
		strings.EqualFold(strings.TrimSpace(resp.StatusText), "Service Unavailable"):
		return &ServiceError{
			StatusCode:  http.StatusServiceUnavailable,
			ServiceName: req.ServiceName,
			ErrorCode:   "Service unavailable",
			ErrorType:   ErrorTypeService,
			Message:     "Service unavailable",
		}, nil
	default:
		return nil, &ClientError{
			Message: fmt.Sprintf("Unable to unmarshall error response (%T): status=%d", handler, resp.StatusCode),
			Cause:   err,
		}
	}
}

func fillCommon(e *ServiceError, resp *HttpResponse, req *Request) {
	if e == nil {
		return
	}
	e.StatusCode = resp.StatusCode
	e.ServiceName = req.ServiceName
}

// isIOError reports whether err represents a failure to read/write the
// underlying stream, as opposed to a semantic unmarshalling failure —
// spec.md §4.7 says I/O errors from the error handler rethrow as-is,
// everything else gets wrapped as a ClientError.
func isIOError(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
