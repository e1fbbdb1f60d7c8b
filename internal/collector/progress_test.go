package collector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressTransitionsArePure(t *testing.T) {
	t.Parallel()

	orig := NewProgress(DefaultCollectionType)
	_ = orig.AfterFlush("F1", "C25", 25)
	_ = orig.Failed("boom")

	require.Nil(t, orig.LastFacilityID)
	require.Equal(t, StatusInProgress, orig.Status)
	require.Nil(t, orig.ErrorMessage)
}

func TestProgress_AfterFlush(t *testing.T) {
	t.Parallel()

	p := NewProgress(DefaultCollectionType).AfterFlush("F1", "C25", 25)
	require.Equal(t, "F1", *p.LastFacilityID)
	require.Equal(t, "C25", *p.LastCampsiteID)
	require.Equal(t, 25, p.CampsitesProcessed)
	require.Equal(t, StatusInProgress, p.Status)
}

func TestProgress_AfterFacilityClearsCampsiteCursor(t *testing.T) {
	t.Parallel()

	p := NewProgress(DefaultCollectionType).
		AfterFlush("F1", "C25", 25).
		AfterFacility("F1", 30)

	require.Equal(t, "F1", *p.LastFacilityID)
	require.Nil(t, p.LastCampsiteID)
	require.Equal(t, 1, p.FacilitiesProcessed)
	require.Equal(t, 30, p.CampsitesProcessed)
}

func TestProgress_FailedKeepsCursor(t *testing.T) {
	t.Parallel()

	p := NewProgress(DefaultCollectionType).
		AfterFlush("F1", "C25", 25).
		Failed("db unavailable")

	require.Equal(t, StatusError, p.Status)
	require.Equal(t, "db unavailable", *p.ErrorMessage)
	require.Equal(t, "F1", *p.LastFacilityID)
	require.Equal(t, "C25", *p.LastCampsiteID)
}

func TestProgress_ResumedClearsError(t *testing.T) {
	t.Parallel()

	p := NewProgress(DefaultCollectionType).
		Failed("db unavailable").
		Resumed()

	require.Equal(t, StatusInProgress, p.Status)
	require.Nil(t, p.ErrorMessage)
}

func TestProgress_CompletedClearsCursor(t *testing.T) {
	t.Parallel()

	p := NewProgress(DefaultCollectionType).
		AfterFlush("F1", "C25", 25).
		Completed()

	require.Equal(t, StatusCompleted, p.Status)
	require.Nil(t, p.LastFacilityID)
	require.Nil(t, p.LastCampsiteID)
	require.Equal(t, 25, p.CampsitesProcessed)
}
