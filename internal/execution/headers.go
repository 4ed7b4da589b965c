// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

// HTTP header names the loop itself reads or writes. Concrete signers
// and handlers are free to use others; these are the ones the
// execution core cares about directly.
const (
	HeaderUserAgent     = "User-Agent"
	HeaderLocation      = "Location"
	HeaderDate          = "Date"
	HeaderRetryAfter    = "Retry-After"
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
)
