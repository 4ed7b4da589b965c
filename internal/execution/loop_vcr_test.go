// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexon-aws/aws-sdk-go-core/internal/testutil"
)

// widget is the toy payload the cassette's 200 response carries.
type widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type jsonWidgetHandler struct{}

func (jsonWidgetHandler) Handle(resp *HttpResponse) (widget, error) {
	var w widget
	err := json.NewDecoder(resp.Body).Decode(&w)
	return w, err
}
func (jsonWidgetHandler) NeedsConnectionLeftOpen() bool { return false }

type jsonErrorHandler struct{}

func (jsonErrorHandler) Handle(resp *HttpResponse) (*ServiceError, error) {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return &ServiceError{Message: body.Error, ErrorCode: "ServiceUnavailable"}, nil
}
func (jsonErrorHandler) NeedsConnectionLeftOpen() bool { return false }

// TestExecute_VCR_RetryThenSuccess replays a recorded 503-then-200
// exchange through go-vcr (internal/testutil, adapted from the
// teacher's provider contract tests) and exercises the execution loop
// end to end against it, in place of a live HTTP server.
func TestExecute_VCR_RetryThenSuccess(t *testing.T) {
	_, httpClient := testutil.NewVCRRecorder(t, testutil.VCRConfig{
		CassetteName: "loop_retry_then_success",
		Mode:         testutil.ModeReplay,
	})

	endpoint, err := url.Parse("https://vcr.example.com")
	require.NoError(t, err)

	client := New("widgets",
		WithTransport(NewHTTPTransportFromClient(httpClient)),
		WithRetryPolicy(alwaysRetry{max: 1, shouldRetry: func(err error, _ int) bool {
			var svcErr *ServiceError
			return asServiceError(err, &svcErr) && svcErr.StatusCode == http.StatusServiceUnavailable
		}}),
	)

	req := &Request{
		Endpoint:    endpoint,
		ServiceName: "widgets",
		Method:      http.MethodGet,
		Path:        "/widgets/42",
		Parameters:  NewParams(),
		Headers:     map[string]string{},
		Original:    &OriginalRequest{},
	}

	resp, err := Execute[widget](context.Background(), client, req, jsonWidgetHandler{}, jsonErrorHandler{})
	require.NoError(t, err)
	require.Equal(t, widget{ID: "42", Name: "gizmo"}, resp.Result)
	require.Equal(t, http.StatusOK, resp.Raw.StatusCode)
}
