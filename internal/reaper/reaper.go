// Package reaper removes expired share grants in the background.
package reaper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/inkpad/inkpad/internal/metrics"
)

// DefaultInterval is the time between sweeps.
const DefaultInterval = time.Hour

// Registry is the grant store slice the reaper needs.
type Registry interface {
	DeleteExpiredGrants(ctx context.Context, now time.Time) (int64, error)
}

// Reaper periodically deletes grants whose expiry has passed. It is a
// cleanliness optimization, not a security boundary: the resolver's
// per-request expiry check keeps unswept grants invalid regardless of
// whether a sweep has run.
type Reaper struct {
	registry Registry
	logger   *slog.Logger
	metrics  metrics.Recorder
	interval time.Duration
	started  bool
}

// New creates a reaper sweeping at the given interval.
func New(registry Registry, interval time.Duration, logger *slog.Logger, recorder metrics.Recorder) *Reaper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Reaper{
		registry: registry,
		logger:   logger.With("component", "reaper"),
		metrics:  recorder,
		interval: interval,
	}
}

// Run starts the sweep loop and blocks until the context is cancelled.
// Cancellation stops the timer; a sweep already in flight runs to
// completion on a detached context before the next loop iteration
// observes the cancellation.
func (r *Reaper) Run(ctx context.Context) error {
	if r.started {
		return errors.New("reaper already started")
	}
	r.started = true

	r.logger.Info("reaper started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopping")
			return ctx.Err()
		case <-ticker.C:
			r.Sweep(context.WithoutCancel(ctx))
		}
	}
}

// Sweep deletes every grant past its expiry in one bulk statement.
// A storage error is logged and the timer continues; sweeps are
// idempotent, so the next one picks up whatever this one missed.
func (r *Reaper) Sweep(ctx context.Context) {
	start := time.Now()
	removed, err := r.registry.DeleteExpiredGrants(ctx, start)
	duration := time.Since(start)

	r.metrics.ObserveSweepDuration(duration)

	if err != nil {
		r.logger.Error("sweep failed", "error", err)
		return
	}

	r.metrics.IncGrantsReaped(removed)
	r.logger.Info("sweep completed",
		"removed", removed,
		"duration_ms", float64(duration.Microseconds())/1000,
	)
}
