// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

// Package testutil provides VCR (cassette-based) HTTP recording for
// execution-core tests, adapted from the Hyperping provider's
// testutil.NewVCRRecorder: record real interactions once, replay them
// deterministically afterward.
package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

// VCRMode determines how VCR handles HTTP requests.
type VCRMode int

const (
	// ModeReplay replays from cassette, fails if no recording exists.
	ModeReplay VCRMode = iota
	// ModeRecord always records new interactions.
	ModeRecord
	// ModeAuto replays if a cassette exists, otherwise skips the test.
	ModeAuto
)

// VCRConfig configures VCR recording behavior.
type VCRConfig struct {
	CassetteName string
	Mode         VCRMode
	CassetteDir  string
}

// NewVCRRecorder creates a VCR recorder and an *http.Client backed by
// it, masking Authorization headers on capture. In ModeAuto, a missing
// cassette skips the test rather than hitting the network.
func NewVCRRecorder(t *testing.T, cfg VCRConfig) (*recorder.Recorder, *http.Client) {
	t.Helper()

	if cfg.CassetteDir == "" {
		cfg.CassetteDir = filepath.Join("testdata", "cassettes")
	}
	cassettePath := filepath.Join(cfg.CassetteDir, cfg.CassetteName)

	if err := os.MkdirAll(cfg.CassetteDir, 0o750); err != nil {
		t.Fatalf("failed to create cassette directory: %v", err)
	}

	var mode recorder.Mode
	switch cfg.Mode {
	case ModeReplay:
		mode = recorder.ModeReplayOnly
	case ModeRecord:
		mode = recorder.ModeRecordOnly
	case ModeAuto:
		if _, err := os.Stat(cassettePath + ".yaml"); os.IsNotExist(err) {
			t.Skipf("skipping: no cassette at %s.yaml (set RECORD_MODE=true to record)", cassettePath)
		}
		mode = recorder.ModeReplayOnly
	}

	r, err := recorder.NewWithOptions(&recorder.Options{
		CassetteName:       cassettePath,
		Mode:               mode,
		SkipRequestLatency: true,
	})
	if err != nil {
		t.Fatalf("failed to create VCR recorder: %v", err)
	}

	r.AddHook(func(i *cassette.Interaction) error {
		maskSensitiveHeaders(i)
		return nil
	}, recorder.AfterCaptureHook)

	return r, &http.Client{Transport: r}
}

func maskSensitiveHeaders(i *cassette.Interaction) {
	if auth := i.Request.Headers.Get("Authorization"); auth != "" {
		i.Request.Headers.Set("Authorization", "Bearer [MASKED]")
	}
	if strings.Contains(i.Request.URL, "api_key=") {
		i.Request.URL = strings.ReplaceAll(i.Request.URL, "api_key=", "api_key=[MASKED]")
	}
	if cookie := i.Response.Headers.Get("Set-Cookie"); cookie != "" {
		i.Response.Headers.Set("Set-Cookie", "[MASKED]")
	}
}

// GetRecordMode returns the VCR mode based on environment: RECORD_MODE=true
// enables recording, otherwise replay-if-present.
func GetRecordMode() VCRMode {
	if os.Getenv("RECORD_MODE") == "true" {
		return ModeRecord
	}
	return ModeAuto
}
