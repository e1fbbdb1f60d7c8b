package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencampsites/ridb-collector/internal/collector"
)

type querier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// ProgressStore persists the collection checkpoint, one row per
// collection type.
type ProgressStore struct {
	pool querier
	now  func() time.Time
}

// NewProgressStore creates a Postgres-backed ProgressStore.
func NewProgressStore(ctx context.Context, dsn string) (*ProgressStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ProgressStore{pool: pool, now: time.Now}, nil
}

// NewProgressStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewProgressStoreWithPool(pool querier) (*ProgressStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &ProgressStore{pool: pool, now: time.Now}, nil
}

// Close releases the underlying pool resources.
func (s *ProgressStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Load fetches the checkpoint for a collection type, or nil when no run has
// ever been recorded.
func (s *ProgressStore) Load(ctx context.Context, collectionType string) (*collector.Progress, error) {
	query := `
		SELECT collection_type, last_processed_facility_id, last_processed_campsite_id,
			total_facilities_processed, total_campsites_processed, last_updated,
			status, error_message
		FROM ridb_collection_progress
		WHERE collection_type = $1;
	`
	var (
		p      collector.Progress
		status string
	)
	err := s.pool.QueryRow(ctx, query, collectionType).Scan(
		&p.CollectionType,
		&p.LastFacilityID,
		&p.LastCampsiteID,
		&p.FacilitiesProcessed,
		&p.CampsitesProcessed,
		&p.LastUpdated,
		&status,
		&p.ErrorMessage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load collection progress: %w", err)
	}
	p.Status = collector.Status(status)
	return &p, nil
}

// Save upserts the checkpoint row, stamping last_updated at write time.
func (s *ProgressStore) Save(ctx context.Context, p collector.Progress) error {
	if p.CollectionType == "" {
		return fmt.Errorf("collection type is required")
	}
	query := `
		INSERT INTO ridb_collection_progress (
			collection_type, last_processed_facility_id, last_processed_campsite_id,
			total_facilities_processed, total_campsites_processed, last_updated,
			status, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (collection_type) DO UPDATE SET
			last_processed_facility_id = EXCLUDED.last_processed_facility_id,
			last_processed_campsite_id = EXCLUDED.last_processed_campsite_id,
			total_facilities_processed = EXCLUDED.total_facilities_processed,
			total_campsites_processed = EXCLUDED.total_campsites_processed,
			last_updated = EXCLUDED.last_updated,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message;
	`
	_, err := s.pool.Exec(ctx, query,
		p.CollectionType,
		p.LastFacilityID,
		p.LastCampsiteID,
		p.FacilitiesProcessed,
		p.CampsitesProcessed,
		s.now(),
		string(p.Status),
		p.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save collection progress: %w", err)
	}
	return nil
}
