// Package feed keeps a cached snapshot of derived figures fresh. The
// snapshot is rebuilt on a fixed interval and immediately when a change
// notification arrives.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// DefaultPollInterval is used when no interval is configured
const DefaultPollInterval = 3 * time.Second

// LoadFunc computes a fresh snapshot
type LoadFunc[T any] func(ctx context.Context) T

// Poller caches the result of a LoadFunc
type Poller[T any] struct {
	load     LoadFunc[T]
	interval time.Duration
	logger   *logger.Logger

	mu        sync.RWMutex
	snapshot  T
	updatedAt time.Time
	loaded    bool

	refresh chan struct{}
}

// NewPoller creates a poller. A non-positive interval falls back to
// DefaultPollInterval.
func NewPoller[T any](load LoadFunc[T], interval time.Duration, log *logger.Logger) *Poller[T] {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller[T]{
		load:     load,
		interval: interval,
		logger:   log.WithComponent("feed"),
		refresh:  make(chan struct{}, 1),
	}
}

// Run refreshes the snapshot until ctx is done
func (p *Poller[T]) Run(ctx context.Context) {
	p.reload(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.interval).Msg("poller started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("poller stopped")
			return
		case <-ticker.C:
			p.reload(ctx)
		case <-p.refresh:
			p.reload(ctx)
		}
	}
}

// Refresh asks Run to rebuild the snapshot now. Requests made while one is
// already queued are merged.
func (p *Poller[T]) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Snapshot returns the cached value and when it was computed. Before the
// first load it computes the value synchronously.
func (p *Poller[T]) Snapshot(ctx context.Context) (T, time.Time) {
	p.mu.RLock()
	if p.loaded {
		defer p.mu.RUnlock()
		return p.snapshot, p.updatedAt
	}
	p.mu.RUnlock()

	p.reload(ctx)

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot, p.updatedAt
}

func (p *Poller[T]) reload(ctx context.Context) {
	snapshot := p.load(ctx)
	now := time.Now()

	p.mu.Lock()
	p.snapshot = snapshot
	p.updatedAt = now
	p.loaded = true
	p.mu.Unlock()

	p.logger.Debug().Time("updated_at", now).Msg("snapshot refreshed")
}
