// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"strings"
	"sync/atomic"
	"time"
)

// compactISO8601 is the server-time layout used in clock-skew error
// messages: YYYYMMDDTHHMMSSZ.
const compactISO8601 = "20060102T150405Z"

// clockSkewMarkers are the markers the source service embeds in a
// clock-skew error message immediately after the server's timestamp.
// The first marker in this list that occurs in the message delimits
// the end of the timestamp; the last open paren before it delimits the
// start.
var clockSkewMarkers = []string{" + 15", " - 15"}

// ClockSkew tracks a signed offset, in whole seconds, added to "now"
// when signing a request. It is updated whenever a clock-skew service
// error is observed and is never reset. Reads and writes are atomic;
// concurrent writers race on last-write-wins, exactly as spec.md §5
// requires.
//
// Unlike the source SDK's bare process-wide global, ClockSkew here is a
// value owned by whoever wants to share it — typically one instance per
// Client, reused across every execute call issued through it — which
// keeps the same observable last-writer-wins semantics while remaining
// independently constructible in tests.
type ClockSkew struct {
	offsetSeconds atomic.Int64
}

// NewClockSkew returns a zero offset.
func NewClockSkew() *ClockSkew {
	return &ClockSkew{}
}

// Offset returns the currently stored skew.
func (c *ClockSkew) Offset() time.Duration {
	if c == nil {
		return 0
	}
	return time.Duration(c.offsetSeconds.Load()) * time.Second
}

// Observe stores a freshly computed offset, overwriting whatever was
// there before.
func (c *ClockSkew) Observe(offset time.Duration) {
	if c == nil {
		return
	}
	c.offsetSeconds.Store(int64(offset / time.Second))
}

// Now returns the corrected current time: device time plus the stored
// offset. Signers should call this instead of time.Now() for any
// time-bound field.
func (c *ClockSkew) Now() time.Time {
	return time.Now().Add(c.Offset())
}

// computeClockSkewOffset recovers the server's time from either the
// response's Date header (RFC 822 / RFC1123) or, failing that, from the
// compact-ISO-8601 timestamp embedded in the error message, and returns
// deviceNow-serverTime truncated to whole seconds. Any parsing failure
// yields a zero offset rather than raising — spec.md §4.8 treats this as
// a logged, not fatal, condition.
func computeClockSkewOffset(resp *HttpResponse, message string, deviceNow time.Time) time.Duration {
	serverTime, ok := serverTimeFromResponse(resp)
	if !ok {
		serverTime, ok = serverTimeFromMessage(message)
	}
	if !ok {
		return 0
	}
	diffMillis := deviceNow.UnixMilli() - serverTime.UnixMilli()
	return time.Duration(diffMillis/1000) * time.Second
}

func serverTimeFromResponse(resp *HttpResponse) (time.Time, bool) {
	if resp == nil || resp.Headers == nil {
		return time.Time{}, false
	}
	dateHeader := resp.Headers.Get(HeaderDate)
	if dateHeader == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC1123, dateHeader); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC1123Z, dateHeader); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// serverTimeFromMessage extracts the first parenthesized group before
// either clock-skew marker. It never underflows: every index is checked
// for -1 before being used to slice the message (the source SDK this is
// distilled from has an unguarded underflow here; this does not
// replicate it).
func serverTimeFromMessage(message string) (time.Time, bool) {
	markerPos := -1
	for _, marker := range clockSkewMarkers {
		if idx := strings.Index(message, marker); idx >= 0 {
			markerPos = idx
			break
		}
	}
	if markerPos < 0 {
		return time.Time{}, false
	}
	openParen := strings.LastIndex(message[:markerPos], "(")
	if openParen < 0 {
		return time.Time{}, false
	}
	candidate := strings.TrimSpace(message[openParen+1 : markerPos])
	t, err := time.Parse(compactISO8601, candidate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
