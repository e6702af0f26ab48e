// Package clock provides a process-wide synchronized clock. The clock learns
// an offset from an authoritative time source and applies it to the local
// clock, so TOTP derivation stays correct on devices with skewed clocks.
package clock

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/allisson/entrypass/internal/errors"
)

// TimeSource obtains the authoritative current time. Implementations may use
// the network; the clock itself never does.
type TimeSource interface {
	CurrentTime(ctx context.Context) (time.Time, error)
}

// TimeSourceFunc adapts a function to the TimeSource interface.
type TimeSourceFunc func(ctx context.Context) (time.Time, error)

// CurrentTime calls the wrapped function.
func (f TimeSourceFunc) CurrentTime(ctx context.Context) (time.Time, error) {
	return f(ctx)
}

// SyncedClock is a lazily-synchronized clock. It is usable before the first
// sync completes (falling back to local time) and safe for concurrent use:
// the offset is written once per successful sync and read without locking.
type SyncedClock struct {
	source TimeSource
	logger *slog.Logger

	group       singleflight.Group
	offsetNanos atomic.Int64
	synced      atomic.Bool
}

// NewSyncedClock creates a SyncedClock backed by the given time source.
func NewSyncedClock(source TimeSource, logger *slog.Logger) *SyncedClock {
	return &SyncedClock{
		source: source,
		logger: logger,
	}
}

// Now returns the best available approximation of the authoritative time:
// local time adjusted by the learned offset, or plain local time while the
// clock is still unsynced.
func (c *SyncedClock) Now() time.Time {
	if !c.synced.Load() {
		return time.Now()
	}
	return time.Now().Add(time.Duration(c.offsetNanos.Load()))
}

// Synced reports whether a sync has completed successfully.
func (c *SyncedClock) Synced() bool {
	return c.synced.Load()
}

// Offset returns the learned offset. Zero while unsynced.
func (c *SyncedClock) Offset() time.Duration {
	return time.Duration(c.offsetNanos.Load())
}

// Sync fetches the authoritative time and publishes the offset. It is
// idempotent: concurrent calls coalesce into a single round trip, and calls
// after a successful sync return immediately.
func (c *SyncedClock) Sync(ctx context.Context) error {
	if c.synced.Load() {
		return nil
	}

	_, err, _ := c.group.Do("sync", func() (any, error) {
		// A coalesced caller may arrive after the winning call finished.
		if c.synced.Load() {
			return nil, nil
		}

		authoritative, err := c.source.CurrentTime(ctx)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to fetch authoritative time")
		}
		local := time.Now()

		c.offsetNanos.Store(int64(authoritative.Sub(local)))
		c.synced.Store(true)
		return nil, nil
	})
	return err
}

// RequestSync starts a background sync and returns immediately. A failed
// sync only gets a debug log entry, the clock keeps serving local time.
func (c *SyncedClock) RequestSync(ctx context.Context) {
	go func() {
		if err := c.Sync(ctx); err != nil {
			c.logger.Debug("clock sync failed, falling back to local time",
				slog.Any("error", err),
			)
		}
	}()
}
