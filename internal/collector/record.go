package collector

import (
	"strings"
	"time"

	"github.com/opencampsites/ridb-collector/internal/ridb"
)

// BookingURLBase is the public reservation page prefix for a campsite.
const BookingURLBase = "https://www.recreation.gov/camping/campsites/"

// CampsiteRecord is the denormalized row persisted for one campsite. Nullable
// columns are pointers; nested RIDB collections are stored as JSONB.
type CampsiteRecord struct {
	RIDBCampsiteID            string                      `json:"ridb_campsite_id"`
	Name                      string                      `json:"name"`
	CampsiteType              *string                     `json:"campsite_type"`
	CampsiteUseType           *string                     `json:"campsite_use_type"`
	Loop                      *string                     `json:"loop"`
	Site                      *string                     `json:"site"`
	SiteAccess                *string                     `json:"site_access"`
	CampsiteAccessible        *bool                       `json:"campsite_accessible"`
	CampsiteReservable        *bool                       `json:"campsite_reservable"`
	CampsiteBookingURL        *string                     `json:"campsite_booking_url"`
	Latitude                  *float64                    `json:"latitude"`
	Longitude                 *float64                    `json:"longitude"`
	Description               *string                     `json:"description"`
	CreatedDate               *string                     `json:"created_date"`
	LastUpdatedDate           *string                     `json:"last_updated_date"`
	FacilityID                *string                     `json:"facility_id"`
	FacilityName              *string                     `json:"facility_name"`
	FacilityType              *string                     `json:"facility_type"`
	FacilityLatitude          *float64                    `json:"facility_latitude"`
	FacilityLongitude         *float64                    `json:"facility_longitude"`
	FacilityAddress           *string                     `json:"facility_address"`
	FacilityCity              *string                     `json:"facility_city"`
	FacilityState             *string                     `json:"facility_state"`
	FacilityPostalCode        *string                     `json:"facility_postal_code"`
	FacilityReservable        *bool                       `json:"facility_reservable"`
	FacilityReservationURL    *string                     `json:"facility_reservation_url"`
	FacilityUseFeeDescription *string                     `json:"facility_use_fee_description"`
	FacilityWebsiteURL        *string                     `json:"facility_website_url"`
	FacilityPhone             *string                     `json:"facility_phone"`
	FacilityEmail             *string                     `json:"facility_email"`
	RecAreaID                 *string                     `json:"recarea_id"`
	RecAreaName               *string                     `json:"recarea_name"`
	RecAreaLatitude           *float64                    `json:"recarea_latitude"`
	RecAreaLongitude          *float64                    `json:"recarea_longitude"`
	OrganizationID            *string                     `json:"organization_id"`
	OrganizationName          *string                     `json:"organization_name"`
	Attributes                []ridb.Attribute            `json:"attributes"`
	PermittedEquipment        []ridb.PermittedEquipment   `json:"permitted_equipment"`
	Media                     []ridb.Media                `json:"media"`
	EntityMedia               []ridb.EntityMedia          `json:"entity_media"`
	LastSyncedAt              time.Time                   `json:"last_synced_at"`
	DataCompletenessScore     int                         `json:"data_completeness_score"`
}

// BuildRecord flattens a campsite and its parent entities into one record.
// The coordinate pair (0,0) is the source's "no coordinates" sentinel and
// maps to NULL. The completeness score is computed over the finished record.
func BuildRecord(site ridb.Campsite, facility *ridb.Facility, recArea *ridb.RecArea, organizationName string, now time.Time) CampsiteRecord {
	name := site.CampsiteName
	if name == "" {
		name = "Unnamed Campsite"
	}

	rec := CampsiteRecord{
		RIDBCampsiteID:     site.CampsiteID,
		Name:               name,
		CampsiteType:       strPtr(site.CampsiteType),
		CampsiteUseType:    strPtr(site.TypeOfUse),
		Loop:               strPtr(site.Loop),
		Site:               strPtr(site.Site),
		SiteAccess:         strPtr(site.SiteAccess),
		CampsiteAccessible: site.CampsiteAccessible,
		CampsiteReservable: site.CampsiteReservable,
		Latitude:           coordPtr(site.CampsiteLatitude),
		Longitude:          coordPtr(site.CampsiteLongitude),
		CreatedDate:        strPtr(site.CreatedDate),
		LastUpdatedDate:    strPtr(site.LastUpdatedDate),
		FacilityID:         strPtr(site.FacilityID),
		Attributes:         site.Attributes,
		PermittedEquipment: site.PermittedEquipment,
		Media:              site.Media,
		EntityMedia:        site.EntityMedia,
		LastSyncedAt:       now,
		OrganizationName:   strPtr(organizationName),
	}
	if site.CampsiteID != "" {
		rec.CampsiteBookingURL = strPtr(BookingURLBase + site.CampsiteID)
	}

	if facility != nil {
		rec.FacilityName = strPtr(facility.FacilityName)
		rec.FacilityType = strPtr(facility.FacilityTypeDescription)
		rec.FacilityLatitude = coordPtr(facility.FacilityLatitude)
		rec.FacilityLongitude = coordPtr(facility.FacilityLongitude)
		rec.FacilityReservable = facility.Reservable
		rec.FacilityReservationURL = strPtr(facility.FacilityReservationURL)
		rec.FacilityUseFeeDescription = strPtr(facility.FacilityUseFeeDescription)
		rec.FacilityWebsiteURL = websiteURL(facility.Links)
		rec.FacilityPhone = strPtr(facility.FacilityPhone)
		rec.FacilityEmail = strPtr(facility.FacilityEmail)
		rec.OrganizationID = strPtr(facility.OrganizationID)

		if len(facility.FacilityAddresses) > 0 {
			addr := facility.FacilityAddresses[0]
			rec.FacilityAddress = strPtr(addr.FacilityStreetAddress1)
			rec.FacilityCity = strPtr(addr.City)
			rec.FacilityState = strPtr(addr.AddressStateCode)
			rec.FacilityPostalCode = strPtr(addr.PostalCode)
		}

		recAreaID := facility.RecAreaID
		if recAreaID == "" {
			recAreaID = facility.ParentRecAreaID
		}
		rec.RecAreaID = strPtr(recAreaID)

		recAreaName := facility.RecAreaName
		if recAreaName == "" {
			recAreaName = facility.ParentRecAreaName
		}
		rec.RecAreaName = strPtr(recAreaName)
	}

	if recArea != nil {
		if recArea.RecAreaName != "" {
			rec.RecAreaName = strPtr(recArea.RecAreaName)
		}
		rec.RecAreaLatitude = coordPtr(recArea.RecAreaLatitude)
		rec.RecAreaLongitude = coordPtr(recArea.RecAreaLongitude)
	}

	rec.DataCompletenessScore = CompletenessScore(rec)
	return rec
}

// websiteURL picks the first link that looks like an official website.
func websiteURL(links []ridb.Link) *string {
	for _, link := range links {
		kind := strings.ToLower(link.LinkType)
		if strings.Contains(kind, "website") || strings.Contains(kind, "official") {
			return strPtr(link.URL)
		}
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func coordPtr(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
