package clock

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// countingSource records how many times it was called.
type countingSource struct {
	calls atomic.Int32
	now   time.Time
	err   error
	delay time.Duration
}

func (s *countingSource) CurrentTime(ctx context.Context) (time.Time, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return time.Time{}, s.err
	}
	return s.now, nil
}

func TestSyncedClock_UnsyncedFallsBackToLocalTime(t *testing.T) {
	clock := NewSyncedClock(&countingSource{}, discardLogger())

	assert.False(t, clock.Synced())
	assert.Zero(t, clock.Offset())
	assert.WithinDuration(t, time.Now(), clock.Now(), time.Second)
}

func TestSyncedClock_SyncAppliesOffset(t *testing.T) {
	offset := 5 * time.Minute
	source := &countingSource{now: time.Now().Add(offset)}
	clock := NewSyncedClock(source, discardLogger())

	require.NoError(t, clock.Sync(context.Background()))

	assert.True(t, clock.Synced())
	assert.InDelta(t, offset.Seconds(), clock.Offset().Seconds(), 1.0)
	assert.WithinDuration(t, time.Now().Add(offset), clock.Now(), time.Second)
}

func TestSyncedClock_SyncIsIdempotent(t *testing.T) {
	source := &countingSource{now: time.Now()}
	clock := NewSyncedClock(source, discardLogger())

	for range 5 {
		require.NoError(t, clock.Sync(context.Background()))
	}

	assert.Equal(t, int32(1), source.calls.Load())
}

func TestSyncedClock_ConcurrentSyncsCoalesce(t *testing.T) {
	source := &countingSource{now: time.Now(), delay: 50 * time.Millisecond}
	clock := NewSyncedClock(source, discardLogger())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = clock.Sync(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())
	assert.True(t, clock.Synced())
}

func TestSyncedClock_FailureIsSilentAndRetryable(t *testing.T) {
	source := &countingSource{err: context.DeadlineExceeded}
	clock := NewSyncedClock(source, discardLogger())

	err := clock.Sync(context.Background())
	require.Error(t, err)
	assert.False(t, clock.Synced())

	// Still usable on local time.
	assert.WithinDuration(t, time.Now(), clock.Now(), time.Second)

	// A later sync can still succeed and refine the clock.
	source.err = nil
	source.now = time.Now().Add(time.Minute)
	require.NoError(t, clock.Sync(context.Background()))
	assert.True(t, clock.Synced())
}

func TestSyncedClock_RequestSyncIsFireAndForget(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &countingSource{now: time.Now().Add(time.Minute)}
	clock := NewSyncedClock(source, discardLogger())

	clock.RequestSync(context.Background())

	assert.Eventually(t, clock.Synced, time.Second, 10*time.Millisecond)
}

func TestHTTPTimeSource_CurrentTime(t *testing.T) {
	authoritative := time.UnixMilli(1700000000000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"unix_ms":1700000000000}`))
	}))
	defer server.Close()

	source := NewHTTPTimeSource(server.URL)
	got, err := source.CurrentTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, authoritative.UTC(), got.UTC())
}

func TestHTTPTimeSource_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := NewHTTPTimeSource(server.URL)
	_, err := source.CurrentTime(context.Background())
	assert.Error(t, err)
}
