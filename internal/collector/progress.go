package collector

import "time"

// Status is the lifecycle state of a collection run.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPaused     Status = "paused"
	StatusError      Status = "error"
)

// DefaultCollectionType keys the campsite collection's single progress row.
const DefaultCollectionType = "campsites"

// Progress is the durable checkpoint for a collection type. The cursor pair
// (LastFacilityID, LastCampsiteID) points at the last item known to be
// persisted; a nil LastCampsiteID with a non-nil LastFacilityID means that
// facility is fully done.
type Progress struct {
	CollectionType      string     `json:"collection_type"`
	LastFacilityID      *string    `json:"last_processed_facility_id"`
	LastCampsiteID      *string    `json:"last_processed_campsite_id"`
	FacilitiesProcessed int        `json:"total_facilities_processed"`
	CampsitesProcessed  int        `json:"total_campsites_processed"`
	LastUpdated         time.Time  `json:"last_updated"`
	Status              Status     `json:"status"`
	ErrorMessage        *string    `json:"error_message"`
}

// NewProgress starts a fresh checkpoint for the given collection type.
func NewProgress(collectionType string) Progress {
	return Progress{
		CollectionType: collectionType,
		Status:         StatusInProgress,
	}
}

// Transitions below are pure: each returns an updated copy and leaves the
// receiver untouched, so callers control exactly which state gets persisted.

// Resumed marks the checkpoint active again and clears any prior error.
func (p Progress) Resumed() Progress {
	p.Status = StatusInProgress
	p.ErrorMessage = nil
	return p
}

// AfterFlush advances the cursor to the last campsite of a durable batch.
func (p Progress) AfterFlush(facilityID, campsiteID string, campsitesProcessed int) Progress {
	p.LastFacilityID = &facilityID
	p.LastCampsiteID = &campsiteID
	p.CampsitesProcessed = campsitesProcessed
	p.Status = StatusInProgress
	p.ErrorMessage = nil
	return p
}

// AfterFacility records a fully processed facility. The campsite cursor is
// cleared so a resume restarts at the next facility.
func (p Progress) AfterFacility(facilityID string, campsitesProcessed int) Progress {
	p.LastFacilityID = &facilityID
	p.LastCampsiteID = nil
	p.FacilitiesProcessed++
	p.CampsitesProcessed = campsitesProcessed
	p.Status = StatusInProgress
	p.ErrorMessage = nil
	return p
}

// Failed records an error without moving the cursor.
func (p Progress) Failed(msg string) Progress {
	p.Status = StatusError
	p.ErrorMessage = &msg
	return p
}

// Completed marks the run finished and clears the cursor so the next run
// starts from the beginning.
func (p Progress) Completed() Progress {
	p.LastFacilityID = nil
	p.LastCampsiteID = nil
	p.Status = StatusCompleted
	p.ErrorMessage = nil
	return p
}
