package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"RateSim/internal/domain/models"
	"RateSim/internal/domain/repository"
	pkgkafka "RateSim/pkg/kafka"
)

// SchemaStatements returns idempotent DDL for the snapshot table.
func SchemaStatements(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			source LowCardinality(String),
			as_of Date,
			fetched_at DateTime64(3),
			observations String
		) ENGINE = ReplacingMergeTree(fetched_at)
		ORDER BY (source, as_of)`, table),
	}
}

// ClickHouseSnapshotStore implements Storage for ClickHouse.
type ClickHouseSnapshotStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseSnapshotStore creates ClickHouse snapshot storage.
func NewClickHouseSnapshotStore(db *sql.DB, table string) repository.Storage {
	return &ClickHouseSnapshotStore{db: db, table: table}
}

func (s *ClickHouseSnapshotStore) Init(ctx context.Context) error {
	for _, stmt := range SchemaStatements(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseSnapshotStore) Store(ctx context.Context, snap *models.CurveSnapshot) error {
	obs, err := json.Marshal(snap.Observations)
	if err != nil {
		return fmt.Errorf("encode observations: %w", err)
	}

	asOf, err := time.Parse("2006-01-02", snap.AsOf)
	if err != nil {
		// Feed dates are not always ISO; fall back to the fetch day.
		asOf = snap.FetchedAt
	}

	q := fmt.Sprintf("INSERT INTO %s (source, as_of, fetched_at, observations) VALUES (?, ?, ?, ?)", s.table)
	_, err = s.db.ExecContext(ctx, q,
		snap.SourceID,
		asOf,
		snap.FetchedAt,
		string(obs),
	)
	return err
}

func (s *ClickHouseSnapshotStore) Query(ctx context.Context, sourceID string, limit int) ([]*models.CurveSnapshot, error) {
	q := fmt.Sprintf("SELECT source, toString(as_of), fetched_at, observations FROM %s WHERE source = ? ORDER BY fetched_at DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, sourceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*models.CurveSnapshot
	for rows.Next() {
		var snap models.CurveSnapshot
		var obs string
		if err := rows.Scan(&snap.SourceID, &snap.AsOf, &snap.FetchedAt, &obs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(obs), &snap.Observations); err != nil {
			return nil, fmt.Errorf("decode observations: %w", err)
		}
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}

func (s *ClickHouseSnapshotStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSnapshotStore) Close() error {
	return nil // Managed by pkg
}

// KafkaSnapshotPublisher implements Publisher for Kafka.
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSnapshotPublisher creates Kafka publisher.
func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, snap *models.CurveSnapshot) error {
	return p.producer.Publish(ctx, p.topic, []byte(snap.SourceID), map[string]interface{}{
		"source":       snap.SourceID,
		"as_of":        snap.AsOf,
		"fetched_at":   snap.FetchedAt.UnixMilli(),
		"observations": snap.Observations,
	})
}

func (p *KafkaSnapshotPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
