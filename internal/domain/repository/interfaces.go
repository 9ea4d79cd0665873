package repository

import (
	"context"

	"RateSim/internal/domain/models"
)

// FeedSource fetches one feed's raw document. The engine never performs the
// network call itself; it consumes opaque bytes from this collaborator.
type FeedSource interface {
	// ID is the stable source identifier used as the cache key.
	ID() string
	Fetch(ctx context.Context) ([]byte, error)
}

// Publisher pushes curve snapshots to a message backend.
type Publisher interface {
	Publish(ctx context.Context, snap *models.CurveSnapshot) error
	Close() error
}

// Storage persists curve snapshots to a database backend.
type Storage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, snap *models.CurveSnapshot) error
	Query(ctx context.Context, sourceID string, limit int) ([]*models.CurveSnapshot, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordFetch(source, result string)
	RecordSnapshotSent(backend, source string)
	RecordError(kind string)
	RecordLastRate(source, tenor string, rate float64)
	RecordLatency(op string, seconds float64)
}
