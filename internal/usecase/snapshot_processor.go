package usecase

import (
	"context"
	"fmt"
	"time"

	"RateSim/internal/domain/models"
	drepo "RateSim/internal/domain/repository"
)

// SnapshotProcessor routes freshly fetched curve snapshots to the configured
// sink backend. With backend "none" it is a no-op.
type SnapshotProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
}

// NewSnapshotProcessor creates a new SnapshotProcessor instance.
func NewSnapshotProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
) *SnapshotProcessor {
	if backend == "" {
		backend = "none"
	}
	return &SnapshotProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes a single snapshot to the configured backend.
func (p *SnapshotProcessor) Process(ctx context.Context, snap *models.CurveSnapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "none":
		return nil
	case "kafka":
		err = p.pub.Publish(ctx, snap)
	case "clickhouse":
		err = p.store.Store(ctx, snap)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process snapshot: %w", err)
	}

	p.metrics.RecordSnapshotSent(p.backend, snap.SourceID)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *SnapshotProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
