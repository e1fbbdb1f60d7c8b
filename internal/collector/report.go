package collector

import (
	"time"

	"github.com/google/uuid"
)

// Failure records one contained error from a run. FacilityID is always set;
// CampsiteID is empty for facility-level failures.
type Failure struct {
	FacilityID string
	CampsiteID string
	Err        error
}

// Report summarizes one collection run. Contained errors land in Failures
// instead of aborting the walk, so a caller sees every outcome at once.
type Report struct {
	RunID               uuid.UUID
	StartedAt           time.Time
	FinishedAt          time.Time
	FacilitiesSeen      int
	FacilitiesProcessed int
	CampsitesProcessed  int
	RecordsFlushed      int
	Failures            []Failure
}

func newReport() *Report {
	return &Report{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}
}

func (r *Report) fail(facilityID, campsiteID string, err error) {
	r.Failures = append(r.Failures, Failure{
		FacilityID: facilityID,
		CampsiteID: campsiteID,
		Err:        err,
	})
}

// Duration is the wall-clock length of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
