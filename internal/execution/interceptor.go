// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import "context"

// Interceptor observes an execute call's lifecycle without participating
// in signing or transport. All three hooks are optional — embed
// NoopInterceptor and override only what's needed.
type Interceptor interface {
	// BeforeRequest runs exactly once per execute call, before the
	// first attempt and before signing — never re-run on a retry.
	BeforeRequest(ctx context.Context, req *HttpRequest) error
	// AfterResponse runs exactly once per execute call, after the
	// loop has reached a terminal 2xx success (never on a 307
	// redirect, which is not a terminal outcome).
	AfterResponse(ctx context.Context, req *HttpRequest, resp *HttpResponse) error
	// AfterError runs once per execute call, when the loop is about to
	// give up and return err to the caller.
	AfterError(ctx context.Context, req *HttpRequest, resp *HttpResponse, err error) error
}

// NoopInterceptor is embeddable by interceptors that only care about one
// hook.
type NoopInterceptor struct{}

func (NoopInterceptor) BeforeRequest(context.Context, *HttpRequest) error { return nil }
func (NoopInterceptor) AfterResponse(context.Context, *HttpRequest, *HttpResponse) error {
	return nil
}
func (NoopInterceptor) AfterError(context.Context, *HttpRequest, *HttpResponse, error) error {
	return nil
}

// CredentialReceiver is a capability interface: an Interceptor that also
// implements it is handed the Credentials used to sign the current
// attempt. This avoids a type-switch over concrete interceptor types —
// the loop does a single `ok` assertion, the same idiom io.ReaderFrom or
// http.Flusher uses to let a type opt into extra behavior without the
// caller knowing its concrete type.
type CredentialReceiver interface {
	SetCredentials(creds Credentials)
}
