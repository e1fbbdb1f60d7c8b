// Package postgres provides Postgres-backed persistence for campsite rows
// and the collection checkpoint.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencampsites/ridb-collector/internal/collector"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DefaultCampsiteTable is the table campsite rows are upserted into.
const DefaultCampsiteTable = "ridb_campsites"

// CampsiteStoreConfig controls the Postgres connection pool used for
// campsite rows.
type CampsiteStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// campsiteColumns lists the upsert columns in argument order. The first
// column is the conflict key and is excluded from the update set.
var campsiteColumns = []string{
	"ridb_campsite_id",
	"name",
	"campsite_type",
	"campsite_use_type",
	"loop",
	"site",
	"site_access",
	"campsite_accessible",
	"campsite_reservable",
	"campsite_booking_url",
	"latitude",
	"longitude",
	"description",
	"created_date",
	"last_updated_date",
	"facility_id",
	"facility_name",
	"facility_type",
	"facility_latitude",
	"facility_longitude",
	"facility_address",
	"facility_city",
	"facility_state",
	"facility_postal_code",
	"facility_reservable",
	"facility_reservation_url",
	"facility_use_fee_description",
	"facility_website_url",
	"facility_phone",
	"facility_email",
	"recarea_id",
	"recarea_name",
	"recarea_latitude",
	"recarea_longitude",
	"organization_id",
	"organization_name",
	"attributes",
	"permitted_equipment",
	"media",
	"entity_media",
	"last_synced_at",
	"data_completeness_score",
}

// CampsiteStore writes campsite records into Postgres with one multi-row
// upsert per batch.
type CampsiteStore struct {
	pool  execCloser
	table string
}

// NewCampsiteStore creates a Postgres-backed CampsiteStore using the
// provided config.
func NewCampsiteStore(ctx context.Context, cfg CampsiteStoreConfig) (*CampsiteStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = DefaultCampsiteTable
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &CampsiteStore{pool: pool, table: table}, nil
}

// NewCampsiteStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewCampsiteStoreWithPool(pool execCloser, table string) (*CampsiteStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = DefaultCampsiteTable
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &CampsiteStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *CampsiteStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// UpsertCampsites writes a batch of records in a single statement. The
// conflict target is ridb_campsite_id, so re-running a batch updates the
// existing rows in place.
func (s *CampsiteStore) UpsertCampsites(ctx context.Context, records []collector.CampsiteRecord) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("campsite store is not configured")
	}
	if len(records) == 0 {
		return nil
	}

	args := make([]any, 0, len(records)*len(campsiteColumns))
	valueRows := make([]string, 0, len(records))
	for i, rec := range records {
		if rec.RIDBCampsiteID == "" || rec.Name == "" {
			return fmt.Errorf("record %d: campsite id and name are required", i)
		}
		attributes, err := marshalJSONB(rec.Attributes)
		if err != nil {
			return fmt.Errorf("record %s attributes: %w", rec.RIDBCampsiteID, err)
		}
		equipment, err := marshalJSONB(rec.PermittedEquipment)
		if err != nil {
			return fmt.Errorf("record %s permitted_equipment: %w", rec.RIDBCampsiteID, err)
		}
		media, err := marshalJSONB(rec.Media)
		if err != nil {
			return fmt.Errorf("record %s media: %w", rec.RIDBCampsiteID, err)
		}
		entityMedia, err := marshalJSONB(rec.EntityMedia)
		if err != nil {
			return fmt.Errorf("record %s entity_media: %w", rec.RIDBCampsiteID, err)
		}

		base := i * len(campsiteColumns)
		placeholders := make([]string, len(campsiteColumns))
		for j := range placeholders {
			placeholders[j] = "$" + strconv.Itoa(base+j+1)
		}
		valueRows = append(valueRows, "("+strings.Join(placeholders, ",")+")")

		args = append(args,
			rec.RIDBCampsiteID,
			rec.Name,
			rec.CampsiteType,
			rec.CampsiteUseType,
			rec.Loop,
			rec.Site,
			rec.SiteAccess,
			rec.CampsiteAccessible,
			rec.CampsiteReservable,
			rec.CampsiteBookingURL,
			rec.Latitude,
			rec.Longitude,
			rec.Description,
			rec.CreatedDate,
			rec.LastUpdatedDate,
			rec.FacilityID,
			rec.FacilityName,
			rec.FacilityType,
			rec.FacilityLatitude,
			rec.FacilityLongitude,
			rec.FacilityAddress,
			rec.FacilityCity,
			rec.FacilityState,
			rec.FacilityPostalCode,
			rec.FacilityReservable,
			rec.FacilityReservationURL,
			rec.FacilityUseFeeDescription,
			rec.FacilityWebsiteURL,
			rec.FacilityPhone,
			rec.FacilityEmail,
			rec.RecAreaID,
			rec.RecAreaName,
			rec.RecAreaLatitude,
			rec.RecAreaLongitude,
			rec.OrganizationID,
			rec.OrganizationName,
			attributes,
			equipment,
			media,
			entityMedia,
			rec.LastSyncedAt,
			rec.DataCompletenessScore,
		)
	}

	updates := make([]string, 0, len(campsiteColumns)-1)
	for _, col := range campsiteColumns[1:] {
		updates = append(updates, col+" = EXCLUDED."+col)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s ON CONFLICT (ridb_campsite_id) DO UPDATE SET %s",
		s.table,
		strings.Join(campsiteColumns, ", "),
		strings.Join(valueRows, ", "),
		strings.Join(updates, ", "),
	)

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %d campsites: %w", len(records), err)
	}
	return nil
}

// marshalJSONB serializes a nested collection for a JSONB column, mapping an
// empty collection to NULL so completeness queries stay simple.
func marshalJSONB[T any](items []T) (any, error) {
	if len(items) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	return b, nil
}
