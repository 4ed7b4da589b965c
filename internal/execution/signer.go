// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import "context"

// Signer mutates an HttpRequest in place to add whatever authentication
// material a service needs — a header, a query parameter, a signed
// canonical request, whatever the concrete implementation does. It is
// invoked once per HTTP attempt (not once per execute call), since a
// signature is normally tied to a timestamp and a retried request needs
// a fresh one.
//
// Modeled on the OCI Go SDK's HTTPRequestSigner (common/client.go): a
// narrow seam the transport and the loop never need to know the
// concrete auth scheme behind.
type Signer interface {
	Sign(ctx context.Context, req *HttpRequest, creds Credentials) error
}

// SignerResolver picks the Signer for a given Request. Most clients
// have exactly one signer and resolve to it unconditionally, but the
// seam exists for services that sign different operations differently
// (e.g. a presigned-URL path next to a regular signed path).
type SignerResolver interface {
	ResolveSigner(req *Request) (Signer, error)
}

// SignerResolverFunc adapts a plain function to SignerResolver.
type SignerResolverFunc func(req *Request) (Signer, error)

func (f SignerResolverFunc) ResolveSigner(req *Request) (Signer, error) { return f(req) }

// StaticSigner always resolves to the same Signer — the common case.
type StaticSigner struct {
	Signer Signer
}

func (s StaticSigner) ResolveSigner(*Request) (Signer, error) { return s.Signer, nil }

// NoopSigner leaves the request untouched. Useful for unauthenticated
// endpoints and for tests that don't exercise signing.
type NoopSigner struct{}

func (NoopSigner) Sign(context.Context, *HttpRequest, Credentials) error { return nil }
