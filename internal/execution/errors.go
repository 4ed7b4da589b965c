// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"fmt"
	"regexp"
)

// ErrorType classifies where a ServiceError originated, per spec.md §7.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeClient
	ErrorTypeService
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeClient:
		return "CLIENT"
	case ErrorTypeService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// clockSkewErrorCode is the error code the retry utility recognizes as
// "the caller's clock is wrong" — modeled on the source SDK's
// RequestTimeTooSkewed family of errors.
const clockSkewErrorCode = "RequestTimeTooSkewed"

// ServiceError is a remote failure: the server was reached and replied
// with a non-2xx response that was successfully unmarshalled (or
// synthesized, for the bodiless 413/503 fallbacks in errordispatch.go).
type ServiceError struct {
	StatusCode  int
	ServiceName string
	ErrorCode   string
	ErrorType   ErrorType
	RequestID   string
	Message     string
}

func (e *ServiceError) Error() string {
	msg := sanitizeMessage(e.Message)
	if e.RequestID != "" {
		return fmt.Sprintf("%s (service: %s; status code: %d; error code: %s; request id: %s)",
			msg, e.ServiceName, e.StatusCode, e.ErrorCode, e.RequestID)
	}
	return fmt.Sprintf("%s (service: %s; status code: %d; error code: %s)",
		msg, e.ServiceName, e.StatusCode, e.ErrorCode)
}

// IsClockSkew reports whether this error is the clock-skew class the
// retry utility recognizes, triggering the §4.8 correction.
func (e *ServiceError) IsClockSkew() bool {
	return e != nil && e.ErrorCode == clockSkewErrorCode
}

// Compiled once; used to keep credentials and bearer tokens out of
// error messages that might be logged, mirroring the teacher's
// sanitizeMessage approach in internal/client/errors.go, generalized
// away from a single API-key prefix since this library isn't tied to
// one service's key format.
var (
	bearerPattern  = regexp.MustCompile(`(?i)Bearer\s+[^\s]+`)
	authHeaderRe   = regexp.MustCompile(`(?i)Authorization:\s*\S+`)
	urlCredPattern = regexp.MustCompile(`://[^\s:/@]+:[^\s@]+@`)
)

func sanitizeMessage(msg string) string {
	msg = authHeaderRe.ReplaceAllString(msg, "Authorization: ***REDACTED***")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ***REDACTED***")
	msg = urlCredPattern.ReplaceAllString(msg, "://***REDACTED***@")
	return msg
}
