package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/opencampsites/ridb-collector/internal/collector"
)

func TestProgressStoreLoadMissingRowIsNil(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProgressStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("(?s)SELECT .+ FROM ridb_collection_progress").
		WithArgs("campsites").
		WillReturnError(pgx.ErrNoRows)

	p, err := store.Load(context.Background(), "campsites")
	require.NoError(t, err)
	require.Nil(t, p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressStoreLoadScansRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProgressStoreWithPool(mock)
	require.NoError(t, err)

	updated := time.Unix(1700000000, 0).UTC()
	facilityID := "F1"
	campsiteID := "F1-C25"
	rows := pgxmock.NewRows([]string{
		"collection_type", "last_processed_facility_id", "last_processed_campsite_id",
		"total_facilities_processed", "total_campsites_processed", "last_updated",
		"status", "error_message",
	}).AddRow("campsites", &facilityID, &campsiteID, 3, 25, updated, "in_progress", (*string)(nil))

	mock.ExpectQuery("(?s)SELECT .+ FROM ridb_collection_progress").
		WithArgs("campsites").
		WillReturnRows(rows)

	p, err := store.Load(context.Background(), "campsites")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "campsites", p.CollectionType)
	require.Equal(t, "F1", *p.LastFacilityID)
	require.Equal(t, "F1-C25", *p.LastCampsiteID)
	require.Equal(t, 3, p.FacilitiesProcessed)
	require.Equal(t, 25, p.CampsitesProcessed)
	require.Equal(t, collector.StatusInProgress, p.Status)
	require.Nil(t, p.ErrorMessage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressStoreSaveUpserts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProgressStoreWithPool(mock)
	require.NoError(t, err)
	now := time.Unix(1700000000, 0).UTC()
	store.now = func() time.Time { return now }

	p := collector.NewProgress("campsites").AfterFlush("F1", "F1-C25", 25)

	mock.ExpectExec("(?s)INSERT INTO ridb_collection_progress .+ ON CONFLICT \\(collection_type\\) DO UPDATE SET").
		WithArgs("campsites", p.LastFacilityID, p.LastCampsiteID, 0, 25, now, "in_progress", (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Save(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressStoreSaveRequiresCollectionType(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProgressStoreWithPool(mock)
	require.NoError(t, err)

	require.Error(t, store.Save(context.Background(), collector.Progress{}))
}

func TestProgressStoreSaveWrapsError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewProgressStoreWithPool(mock)
	require.NoError(t, err)

	boom := errors.New("connection refused")
	mock.ExpectExec("INSERT INTO ridb_collection_progress").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(boom)

	err = store.Save(context.Background(), collector.NewProgress("campsites"))
	require.ErrorIs(t, err, boom)
}
