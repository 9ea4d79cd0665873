package usecase

import (
	"context"
	"strconv"
	"time"

	drepo "RateSim/internal/domain/repository"
	"RateSim/internal/service/curvecache"
	"RateSim/pkg/logger"
)

// Refresher keeps the curve cache warm by polling every configured source on
// an interval, and forwards each refreshed snapshot to the sink processor.
type Refresher struct {
	cache    *curvecache.Cache
	proc     *SnapshotProcessor
	metrics  drepo.Metrics
	log      *logger.Logger
	interval time.Duration
	cancel   context.CancelFunc
}

// NewRefresher creates a new Refresher instance.
func NewRefresher(cache *curvecache.Cache, proc *SnapshotProcessor, metrics drepo.Metrics, log *logger.Logger, interval time.Duration) *Refresher {
	return &Refresher{
		cache:    cache,
		proc:     proc,
		metrics:  metrics,
		log:      log,
		interval: interval,
	}
}

// Start subscribes the processor to cache refreshes and begins polling.
// Polling is skipped when the interval is zero; sinking still happens on
// demand-driven fetches.
func (r *Refresher) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)

	r.cache.OnRefresh(func(snap curvecache.Snapshot) {
		m := snap.Model()
		if err := r.proc.Process(ctx, m); err != nil {
			r.log.Error("snapshot sink failed",
				logger.String("source", m.SourceID),
				logger.Error(err),
			)
		}
		for _, o := range m.Observations {
			r.metrics.RecordLastRate(m.SourceID, tenorLabel(o.Tenor), o.Rate)
		}
	})

	if r.interval > 0 {
		go r.poll(ctx)
	}
	return nil
}

// Stop cancels polling. In-flight fetches resolve on their own timeouts.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Refresher) poll(ctx context.Context) {
	r.warm(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.warm(ctx)
		}
	}
}

func (r *Refresher) warm(ctx context.Context) {
	for _, id := range r.cache.SourceIDs() {
		if _, err := r.cache.GetOrFetch(ctx, id); err != nil {
			r.metrics.RecordError("refresh")
			r.log.Warn("scheduled refresh failed",
				logger.String("source", id),
				logger.Error(err),
			)
		}
	}
}

func tenorLabel(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}
