package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opencampsites/ridb-collector/internal/ridb"
)

// Catalog is the read side of the RIDB API the enricher depends on.
type Catalog interface {
	Facility(ctx context.Context, id string) (*ridb.Facility, error)
	CampsiteAttributes(ctx context.Context, campsiteID string) ([]ridb.Attribute, error)
	CampsiteMedia(ctx context.Context, campsiteID string) ([]ridb.Media, error)
	RecArea(ctx context.Context, id string) (*ridb.RecArea, error)
	Organization(ctx context.Context, id string) (*ridb.Organization, error)
}

// Enricher joins a campsite with its facility, recreation area, and
// organization context. Facility details and organization names are fetched
// once per run and cached; per-campsite sub-fetch failures degrade to a
// partial record rather than failing the campsite.
type Enricher struct {
	catalog Catalog
	logger  *zap.Logger
	now     func() time.Time

	mu         sync.Mutex
	facilities map[string]*ridb.Facility
	orgNames   map[string]string
}

// NewEnricher builds an Enricher with empty per-run caches.
func NewEnricher(catalog Catalog, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		catalog:    catalog,
		logger:     logger,
		now:        time.Now,
		facilities: make(map[string]*ridb.Facility),
		orgNames:   make(map[string]string),
	}
}

// FacilityDetail returns the fullest facility record available. Listing rows
// often omit the LINK array and fee description, so those trigger one detail
// fetch per facility; the result is cached for the run. A failed fetch falls
// back to the listing row.
func (e *Enricher) FacilityDetail(ctx context.Context, listing ridb.Facility) *ridb.Facility {
	if listing.FacilityID == "" {
		return &listing
	}
	if len(listing.Links) > 0 && listing.FacilityUseFeeDescription != "" {
		return &listing
	}

	e.mu.Lock()
	cached, ok := e.facilities[listing.FacilityID]
	e.mu.Unlock()
	if ok {
		return cached
	}

	full, err := e.catalog.Facility(ctx, listing.FacilityID)
	if err != nil || full == nil {
		if err != nil {
			e.logger.Warn("facility detail fetch failed, using listing row",
				zap.String("facility_id", listing.FacilityID),
				zap.Error(err),
			)
		}
		full = &listing
	}

	e.mu.Lock()
	e.facilities[listing.FacilityID] = full
	e.mu.Unlock()
	return full
}

// OrganizationName resolves an organization ID to its name, cached per run.
// Unknown or failed lookups return the empty string.
func (e *Enricher) OrganizationName(ctx context.Context, orgID string) string {
	if orgID == "" {
		return ""
	}

	e.mu.Lock()
	name, ok := e.orgNames[orgID]
	e.mu.Unlock()
	if ok {
		return name
	}

	org, err := e.catalog.Organization(ctx, orgID)
	if err != nil {
		e.logger.Warn("organization fetch failed",
			zap.String("organization_id", orgID),
			zap.Error(err),
		)
	}
	if org != nil {
		name = org.OrganizationName
	}

	e.mu.Lock()
	e.orgNames[orgID] = name
	e.mu.Unlock()
	return name
}

// Enrich builds the persistable record for one campsite. The attribute,
// media, and recreation area sub-fetches run concurrently. Fields already
// present on the raw campsite win over sub-fetch results, and any sub-fetch
// failure is logged and leaves that slice empty.
func (e *Enricher) Enrich(ctx context.Context, site ridb.Campsite, facility *ridb.Facility, organizationName string) CampsiteRecord {
	var (
		attributes []ridb.Attribute
		media      []ridb.Media
		recArea    *ridb.RecArea
	)

	recAreaID := ""
	if facility != nil {
		recAreaID = facility.RecAreaID
		if recAreaID == "" {
			recAreaID = facility.ParentRecAreaID
		}
	}

	var wg sync.WaitGroup
	if len(site.Attributes) == 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			attributes, err = e.catalog.CampsiteAttributes(ctx, site.CampsiteID)
			if err != nil {
				e.logger.Warn("campsite attributes fetch failed",
					zap.String("campsite_id", site.CampsiteID),
					zap.Error(err),
				)
				attributes = nil
			}
		}()
	}
	if len(site.Media) == 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			media, err = e.catalog.CampsiteMedia(ctx, site.CampsiteID)
			if err != nil {
				e.logger.Warn("campsite media fetch failed",
					zap.String("campsite_id", site.CampsiteID),
					zap.Error(err),
				)
				media = nil
			}
		}()
	}
	if recAreaID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			recArea, err = e.catalog.RecArea(ctx, recAreaID)
			if err != nil {
				e.logger.Warn("recarea fetch failed",
					zap.String("recarea_id", recAreaID),
					zap.Error(err),
				)
				recArea = nil
			}
		}()
	}
	wg.Wait()

	if len(site.Attributes) == 0 {
		site.Attributes = attributes
	}
	if len(site.Media) == 0 {
		site.Media = media
	}

	return BuildRecord(site, facility, recArea, organizationName, e.now())
}
