// Package builtin holds the mock data sources behind the declared tools.
// They stand in for a real archive and return canned records after a
// configurable delay.
package builtin

import (
	"context"
	"time"
)

const (
	DefaultRecordLatency        = time.Second
	DefaultVisualizationLatency = 1500 * time.Millisecond
)

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
