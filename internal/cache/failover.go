package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// maxConsecutiveFailures is how many back-to-back unhealthy probes a
// remote backend tolerates before FailoverStore demotes it to the
// in-memory fallback.
const maxConsecutiveFailures = 5

// reconnectProbeInterval governs how often a demoted remote backend is
// re-probed for recovery.
const reconnectProbeInterval = 15 * time.Second

// FailoverStore wraps a remote Store with an in-memory fallback,
// switching over after maxConsecutiveFailures unhealthy health checks
// and attempting periodic reconnection in the background. Every call is
// routed to whichever backend is currently active; callers never see
// an error, only degraded (fail-open) results while running on memory.
type FailoverStore struct {
	primary  Store
	fallback *MemoryStore
	log      *logrus.Entry

	usingFallback int32 // atomic bool
	failures      int32 // atomic counter, consecutive
	stopCh        chan struct{}
}

// NewFailoverStore starts the probe loop and returns a Store that
// transparently degrades to an in-memory backend when primary becomes
// unreachable.
func NewFailoverStore(primary Store, prefix string, log *logrus.Entry) *FailoverStore {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	f := &FailoverStore{
		primary:  primary,
		fallback: NewMemoryStore(prefix, time.Second),
		log:      log,
		stopCh:   make(chan struct{}),
	}
	go f.probeLoop()
	return f
}

func (f *FailoverStore) active() Store {
	if atomic.LoadInt32(&f.usingFallback) == 1 {
		return f.fallback
	}
	return f.primary
}

func (f *FailoverStore) recordResult(healthy bool) {
	if healthy {
		atomic.StoreInt32(&f.failures, 0)
		if atomic.CompareAndSwapInt32(&f.usingFallback, 1, 0) {
			f.log.Info("cache backend recovered, resuming primary")
		}
		return
	}
	n := atomic.AddInt32(&f.failures, 1)
	if n >= maxConsecutiveFailures && atomic.CompareAndSwapInt32(&f.usingFallback, 0, 1) {
		f.log.WithField("event", "cache.degraded").Warn("cache backend unreachable, degrading to in-memory store")
	}
}

func (f *FailoverStore) probeLoop() {
	ticker := time.NewTicker(reconnectProbeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			healthy, _ := f.primary.HealthCheck(ctx)
			cancel()
			f.recordResult(healthy)
		case <-f.stopCh:
			return
		}
	}
}

func (f *FailoverStore) Incr(ctx context.Context, key string, windowMs int64) (int64, int64) {
	return f.active().Incr(ctx, key, windowMs)
}

func (f *FailoverStore) Get(ctx context.Context, key string) (int64, int64) {
	return f.active().Get(ctx, key)
}

func (f *FailoverStore) Reset(ctx context.Context, key string) {
	f.active().Reset(ctx, key)
}

func (f *FailoverStore) SetCounter(ctx context.Context, name string, delta int64) {
	f.active().SetCounter(ctx, name, delta)
}

func (f *FailoverStore) GetCounter(ctx context.Context, name string) int64 {
	return f.active().GetCounter(ctx, name)
}

func (f *FailoverStore) TrackLastRequest(ctx context.Context, walletAddress string, ts time.Time, windowMs int64) {
	f.active().TrackLastRequest(ctx, walletAddress, ts, windowMs)
}

func (f *FailoverStore) GetLastRequest(ctx context.Context, walletAddress string) (time.Time, bool) {
	return f.active().GetLastRequest(ctx, walletAddress)
}

func (f *FailoverStore) SetKV(ctx context.Context, key string, value string, ttl time.Duration) {
	f.active().SetKV(ctx, key, value, ttl)
}

func (f *FailoverStore) GetKV(ctx context.Context, key string) (string, bool) {
	return f.active().GetKV(ctx, key)
}

func (f *FailoverStore) DeleteKV(ctx context.Context, key string) {
	f.active().DeleteKV(ctx, key)
}

// Flush clears both backends, not just the currently active one, so a
// later failover/recovery never resurfaces stale keys from the side
// that was idle during the flush.
func (f *FailoverStore) Flush(ctx context.Context) error {
	err := f.primary.Flush(ctx)
	if ferr := f.fallback.Flush(ctx); err == nil {
		err = ferr
	}
	return err
}

// HealthCheck probes the primary backend directly (not the currently
// active one) and updates the failure tally, so a caller polling health
// drives the same failover/recovery decisions as the background probe.
func (f *FailoverStore) HealthCheck(ctx context.Context) (bool, time.Duration) {
	healthy, latency := f.primary.HealthCheck(ctx)
	f.recordResult(healthy)
	return healthy, latency
}

// UsingFallback reports whether requests are currently being served by
// the in-memory backend.
func (f *FailoverStore) UsingFallback() bool {
	return atomic.LoadInt32(&f.usingFallback) == 1
}

func (f *FailoverStore) Close() error {
	close(f.stopCh)
	_ = f.fallback.Close()
	return f.primary.Close()
}
