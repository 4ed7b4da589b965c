// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import "strings"

const userAgentBase = "aws-sdk-go-core/1.0"

// applyUserAgent idempotently appends original.UserAgentMarker to the
// request's User-Agent header. Called once per HTTP attempt (the header
// map is rebuilt from Request.Headers every attempt), but guards against
// double-appending in case a caller already set a marker on the
// Request itself — grounded on the teacher's buildUserAgent/
// sanitizeUserAgent helpers, generalized past its Terraform-provider
// marker.
func applyUserAgent(headers map[string]string, original *OriginalRequest) {
	base := headers[HeaderUserAgent]
	if base == "" {
		base = userAgentBase
	}
	if original == nil || original.UserAgentMarker == "" {
		headers[HeaderUserAgent] = base
		return
	}
	if strings.Contains(base, original.UserAgentMarker) {
		headers[HeaderUserAgent] = base
		return
	}
	headers[HeaderUserAgent] = base + " " + original.UserAgentMarker
}
