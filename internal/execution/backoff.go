// Copyright (c) 2026 Develeap
// SPDX-License-Identifier: MPL-2.0

package execution

import (
	"context"
	"time"
)

// sleep waits for d, or returns ctx.Err() if ctx is cancelled first.
// Factored out of the execute loop so tests can substitute a zero-delay
// policy instead of stubbing time.Sleep.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
