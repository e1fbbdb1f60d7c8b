package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/opencampsites/ridb-collector/internal/collector"
)

func strp(s string) *string { return &s }

func TestUpsertCampsitesBatches(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCampsiteStoreWithPool(mock, "")
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	records := []collector.CampsiteRecord{
		{RIDBCampsiteID: "C1", Name: "A01", CampsiteType: strp("STANDARD"), LastSyncedAt: now},
		{RIDBCampsiteID: "C2", Name: "A02", LastSyncedAt: now},
	}

	// Argument order is covered by the column-list test; here the statement
	// shape and batch size matter.
	anyArgs := make([]interface{}, len(campsiteColumns)*len(records))
	for i := range anyArgs {
		anyArgs[i] = pgxmock.AnyArg()
	}
	mock.ExpectExec("INSERT INTO ridb_campsites .+ ON CONFLICT \\(ridb_campsite_id\\) DO UPDATE SET").
		WithArgs(anyArgs...).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	err = store.UpsertCampsites(context.Background(), records)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCampsitesEmptyBatchIsNoop(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCampsiteStoreWithPool(mock, "ridb_campsites")
	require.NoError(t, err)

	require.NoError(t, store.UpsertCampsites(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCampsitesRejectsMissingID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCampsiteStoreWithPool(mock, "")
	require.NoError(t, err)

	err = store.UpsertCampsites(context.Background(), []collector.CampsiteRecord{{Name: "A01"}})
	require.Error(t, err)
	err = store.UpsertCampsites(context.Background(), []collector.CampsiteRecord{{RIDBCampsiteID: "C1"}})
	require.Error(t, err)
}

func TestNewCampsiteStoreWithPoolValidatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewCampsiteStoreWithPool(mock, "bad;table")
	require.Error(t, err)

	_, err = NewCampsiteStoreWithPool(nil, "ridb_campsites")
	require.Error(t, err)
}

func TestCampsiteColumnsMatchPlaceholderCount(t *testing.T) {
	t.Parallel()

	// One argument per column per record keeps the generated placeholders
	// aligned with the column list.
	require.Equal(t, 42, len(campsiteColumns))
	require.Equal(t, "ridb_campsite_id", campsiteColumns[0])
}

func TestMarshalJSONB(t *testing.T) {
	t.Parallel()

	v, err := marshalJSONB[string](nil)
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = marshalJSONB([]string{"a"})
	require.NoError(t, err)
	require.Equal(t, []byte(`["a"]`), v)
}
