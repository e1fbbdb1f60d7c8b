package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/opencampsites/ridb-collector/internal/metrics"
	"github.com/opencampsites/ridb-collector/internal/ridb"
)

// ProgressStore loads and saves the durable checkpoint for a collection type.
type ProgressStore interface {
	// Load returns nil, nil when no checkpoint exists yet.
	Load(ctx context.Context, collectionType string) (*Progress, error)
	Save(ctx context.Context, p Progress) error
}

// Source is the full RIDB read surface the orchestrator walks.
type Source interface {
	Catalog
	Facilities(ctx context.Context, limit, offset int) ([]ridb.Facility, int, error)
	FacilityCampsites(ctx context.Context, facilityID string, limit, offset int) ([]ridb.Campsite, int, error)
}

// DefaultPageSize is the listing page size for facility and campsite walks.
const DefaultPageSize = 50

// errCheckpoint marks a failed checkpoint save. Continuing past one would
// let the cursor and the persisted rows drift apart, so it ends the run.
var errCheckpoint = errors.New("checkpoint save failed")

// OrchestratorConfig wires an Orchestrator's collaborators.
type OrchestratorConfig struct {
	Source         Source
	Filter         FacilityFilter
	Enricher       *Enricher
	Batcher        *Batcher
	Progress       ProgressStore
	PageSize       int
	CollectionType string
	Logger         *zap.Logger
}

// Orchestrator drives a resumable collection run: walk facility pages,
// filter to camping facilities, enrich and batch their campsites, and
// checkpoint after every durable write.
type Orchestrator struct {
	source         Source
	filter         FacilityFilter
	enricher       *Enricher
	batcher        *Batcher
	store          ProgressStore
	pageSize       int
	collectionType string
	logger         *zap.Logger
}

// NewOrchestrator validates the wiring and builds an Orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if cfg.Enricher == nil {
		return nil, fmt.Errorf("enricher is required")
	}
	if cfg.Batcher == nil {
		return nil, fmt.Errorf("batcher is required")
	}
	if cfg.Progress == nil {
		return nil, fmt.Errorf("progress store is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.CollectionType == "" {
		cfg.CollectionType = DefaultCollectionType
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if len(cfg.Filter.keywords) == 0 {
		cfg.Filter = NewFacilityFilter()
	}
	return &Orchestrator{
		source:         cfg.Source,
		filter:         cfg.Filter,
		enricher:       cfg.Enricher,
		batcher:        cfg.Batcher,
		store:          cfg.Progress,
		pageSize:       cfg.PageSize,
		collectionType: cfg.CollectionType,
		logger:         cfg.Logger,
	}, nil
}

// runState carries the mutable walk state so skip mode and the checkpoint
// stay consistent across facility boundaries.
type runState struct {
	prog               Progress
	skipFacility       bool
	skipCampsite       bool
	campsitesProcessed int
}

// Run executes one collection pass. Contained failures are collected into
// the returned Report; a non-nil error means the run stopped early and the
// checkpoint was left at the last durable cursor.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := newReport()
	log := o.logger.With(zap.String("run_id", report.RunID.String()))

	loaded, err := o.store.Load(ctx, o.collectionType)
	if err != nil {
		report.FinishedAt = time.Now()
		return report, fmt.Errorf("load progress: %w", err)
	}

	prog := NewProgress(o.collectionType)
	if loaded != nil {
		prog = loaded.Resumed()
	}

	st := &runState{
		prog:               prog,
		skipFacility:       prog.LastFacilityID != nil,
		skipCampsite:       prog.LastCampsiteID != nil,
		campsitesProcessed: prog.CampsitesProcessed,
	}

	if st.skipFacility {
		log.Info("resuming collection",
			zap.Stringp("last_facility_id", prog.LastFacilityID),
			zap.Stringp("last_campsite_id", prog.LastCampsiteID),
			zap.Int("facilities_processed", prog.FacilitiesProcessed),
			zap.Int("campsites_processed", prog.CampsitesProcessed),
		)
	} else {
		log.Info("starting collection from the beginning")
	}

	if err := o.store.Save(ctx, st.prog); err != nil {
		report.FinishedAt = time.Now()
		return report, fmt.Errorf("%w: %v", errCheckpoint, err)
	}

	walkErr := ridb.WalkPages(ctx, o.pageSize, 0, o.source.Facilities, func(fac ridb.Facility) error {
		if !o.filter.InScope(fac) {
			return nil
		}
		report.FacilitiesSeen++

		if st.skipFacility {
			if fac.FacilityID != *st.prog.LastFacilityID {
				return nil
			}
			st.skipFacility = false
			if !st.skipCampsite {
				// Facility was fully processed before the interruption.
				return nil
			}
		}

		if err := o.processFacility(ctx, log, fac, st, report); err != nil {
			if o.isFatal(ctx, err) {
				return err
			}
			log.Warn("facility failed, continuing",
				zap.String("facility_id", fac.FacilityID),
				zap.String("facility_name", fac.FacilityName),
				zap.Error(err),
			)
			report.fail(fac.FacilityID, "", err)
			st.prog = st.prog.Failed(err.Error())
			if saveErr := o.store.Save(ctx, st.prog); saveErr != nil {
				return fmt.Errorf("%w: %v", errCheckpoint, saveErr)
			}
		}
		return nil
	})
	if walkErr == nil {
		var flushed int
		flushed, walkErr = o.batcher.Flush(ctx)
		report.RecordsFlushed += flushed
	}
	if walkErr != nil {
		return o.finishError(ctx, log, st, report, walkErr)
	}

	if st.skipFacility {
		// The cursor names a facility the source never listed (removed
		// upstream, or no longer matching the keywords), so the whole walk
		// was spent skipping.
		log.Warn("resume cursor facility not found, no campsites processed",
			zap.Stringp("last_facility_id", st.prog.LastFacilityID),
		)
	}

	st.prog = st.prog.Completed()
	if err := o.store.Save(ctx, st.prog); err != nil {
		return o.finishError(ctx, log, st, report, fmt.Errorf("%w: %v", errCheckpoint, err))
	}

	report.FinishedAt = time.Now()
	log.Info("collection complete",
		zap.Int("facilities_processed", report.FacilitiesProcessed),
		zap.Int("campsites_processed", report.CampsitesProcessed),
		zap.Int("records_flushed", report.RecordsFlushed),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("duration", report.Duration()),
	)
	return report, nil
}

// processFacility walks one facility's campsites, enriching and batching
// each. The checkpoint advances only after a successful flush, so the
// cursor never runs ahead of durable rows.
func (o *Orchestrator) processFacility(ctx context.Context, log *zap.Logger, listing ridb.Facility, st *runState, report *Report) error {
	facility := o.enricher.FacilityDetail(ctx, listing)
	orgName := o.enricher.OrganizationName(ctx, facility.OrganizationID)

	log.Info("processing facility",
		zap.String("facility_id", listing.FacilityID),
		zap.String("facility_name", listing.FacilityName),
	)

	fetch := func(ctx context.Context, limit, offset int) ([]ridb.Campsite, int, error) {
		return o.source.FacilityCampsites(ctx, listing.FacilityID, limit, offset)
	}
	err := ridb.WalkPages(ctx, o.pageSize, 0, fetch, func(site ridb.Campsite) error {
		if st.skipCampsite {
			if site.CampsiteID != *st.prog.LastCampsiteID {
				return nil
			}
			// Reprocess the matched campsite; the sink upsert is idempotent.
			st.skipCampsite = false
		}

		rec := o.enricher.Enrich(ctx, site, facility, orgName)
		st.campsitesProcessed++
		report.CampsitesProcessed++
		metrics.ObserveCampsite()

		flushed, err := o.batcher.Add(ctx, rec)
		if err != nil {
			return err
		}
		if flushed > 0 {
			report.RecordsFlushed += flushed
			st.prog = st.prog.AfterFlush(listing.FacilityID, site.CampsiteID, st.campsitesProcessed)
			if err := o.store.Save(ctx, st.prog); err != nil {
				return fmt.Errorf("%w: %v", errCheckpoint, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	// The resume cursor pointed into this facility but no campsite matched;
	// the source may have removed it. Stop skipping either way.
	st.skipCampsite = false

	flushed, err := o.batcher.Flush(ctx)
	if err != nil {
		return err
	}
	report.RecordsFlushed += flushed

	st.prog = st.prog.AfterFacility(listing.FacilityID, st.campsitesProcessed)
	report.FacilitiesProcessed++
	metrics.ObserveFacility()
	if err := o.store.Save(ctx, st.prog); err != nil {
		return fmt.Errorf("%w: %v", errCheckpoint, err)
	}
	return nil
}

// isFatal classifies errors that must end the run: failed flushes and
// checkpoint saves (the cursor would drift from the persisted rows) and a
// dead run context. Fatality is judged by the run context itself, not by
// sentinel presence in the chain: a facility whose listing exhausts its
// retries on per-request timeouts wraps context.DeadlineExceeded, and that
// facility must be contained like any other failed facility.
func (o *Orchestrator) isFatal(ctx context.Context, err error) bool {
	var fe *FlushError
	if errors.As(err, &fe) {
		return true
	}
	if errors.Is(err, errCheckpoint) {
		return true
	}
	return ctx.Err() != nil
}

// finishError records the failure on the checkpoint without moving the
// cursor. The save uses a detached context so a canceled run still leaves
// its status behind.
func (o *Orchestrator) finishError(ctx context.Context, log *zap.Logger, st *runState, report *Report, runErr error) (*Report, error) {
	st.prog = st.prog.Failed(runErr.Error())
	if err := o.store.Save(context.WithoutCancel(ctx), st.prog); err != nil {
		log.Error("failed to record error status", zap.Error(err))
	}
	report.FinishedAt = time.Now()
	log.Error("collection run failed",
		zap.Int("campsites_processed", report.CampsitesProcessed),
		zap.Int("records_flushed", report.RecordsFlushed),
		zap.Error(runErr),
	)
	return report, runErr
}
