package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opencampsites/ridb-collector/internal/ridb"
)

func boolPtr(b bool) *bool { return &b }

func testFacility() *ridb.Facility {
	return &ridb.Facility{
		FacilityID:                "F100",
		FacilityName:              "Pine Flats Campground",
		FacilityTypeDescription:   "Campground",
		FacilityPhone:             "555-0100",
		FacilityEmail:             "pineflats@example.gov",
		FacilityReservationURL:    "https://www.recreation.gov/camping/campgrounds/F100",
		FacilityUseFeeDescription: "$20 per night",
		FacilityLatitude:          44.1,
		FacilityLongitude:         -121.5,
		Reservable:                boolPtr(true),
		OrganizationID:            "O1",
		RecAreaID:                 "R5",
		RecAreaName:               "Deschutes National Forest",
		FacilityAddresses: []ridb.FacilityAddress{
			{
				FacilityStreetAddress1: "1 Forest Rd",
				City:                   "Bend",
				AddressStateCode:       "OR",
				PostalCode:             "97701",
			},
		},
		Links: []ridb.Link{
			{LinkType: "Map", URL: "https://example.gov/map.pdf"},
			{LinkType: "Official Website", URL: "https://example.gov/pineflats"},
		},
	}
}

func TestBuildRecord_Flattening(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	site := ridb.Campsite{
		CampsiteID:         "C1",
		FacilityID:         "F100",
		CampsiteName:       "A01",
		CampsiteType:       "STANDARD NONELECTRIC",
		TypeOfUse:          "Overnight",
		Loop:               "Loop A",
		CampsiteAccessible: boolPtr(false),
		CampsiteReservable: boolPtr(true),
		CampsiteLatitude:   44.11,
		CampsiteLongitude:  -121.51,
		Attributes:         []ridb.Attribute{{AttributeName: "Max Num of People", AttributeValue: "6"}},
	}
	recArea := &ridb.RecArea{
		RecAreaID:       "R5",
		RecAreaName:     "Deschutes National Forest",
		RecAreaLatitude: 44.0,
	}

	rec := BuildRecord(site, testFacility(), recArea, "USDA Forest Service", now)

	require.Equal(t, "C1", rec.RIDBCampsiteID)
	require.Equal(t, "A01", rec.Name)
	require.Equal(t, "https://www.recreation.gov/camping/campsites/C1", *rec.CampsiteBookingURL)
	require.Equal(t, 44.11, *rec.Latitude)
	require.Equal(t, "Pine Flats Campground", *rec.FacilityName)
	require.Equal(t, "1 Forest Rd", *rec.FacilityAddress)
	require.Equal(t, "Bend", *rec.FacilityCity)
	require.Equal(t, "OR", *rec.FacilityState)
	require.Equal(t, "https://example.gov/pineflats", *rec.FacilityWebsiteURL)
	require.Equal(t, "R5", *rec.RecAreaID)
	require.Equal(t, "Deschutes National Forest", *rec.RecAreaName)
	require.Equal(t, 44.0, *rec.RecAreaLatitude)
	require.Equal(t, "USDA Forest Service", *rec.OrganizationName)
	require.False(t, *rec.CampsiteAccessible)
	require.Equal(t, now, rec.LastSyncedAt)
	require.Positive(t, rec.DataCompletenessScore)
}

func TestBuildRecord_ZeroCoordinatesAreNull(t *testing.T) {
	t.Parallel()

	site := ridb.Campsite{
		CampsiteID:        "C2",
		CampsiteLatitude:  0,
		CampsiteLongitude: 0,
	}
	rec := BuildRecord(site, nil, nil, "", time.Now())
	require.Nil(t, rec.Latitude)
	require.Nil(t, rec.Longitude)
}

func TestBuildRecord_UnnamedCampsiteGetsPlaceholder(t *testing.T) {
	t.Parallel()

	rec := BuildRecord(ridb.Campsite{CampsiteID: "C3"}, nil, nil, "", time.Now())
	require.Equal(t, "Unnamed Campsite", rec.Name)
}

func TestBuildRecord_ParentRecAreaFallback(t *testing.T) {
	t.Parallel()

	fac := &ridb.Facility{
		FacilityID:        "F200",
		ParentRecAreaID:   "R9",
		ParentRecAreaName: "Olympic National Park",
	}
	rec := BuildRecord(ridb.Campsite{CampsiteID: "C4"}, fac, nil, "", time.Now())
	require.Equal(t, "R9", *rec.RecAreaID)
	require.Equal(t, "Olympic National Park", *rec.RecAreaName)
}

func TestBuildRecord_NoWebsiteLink(t *testing.T) {
	t.Parallel()

	fac := &ridb.Facility{
		FacilityID: "F300",
		Links:      []ridb.Link{{LinkType: "Map", URL: "https://example.gov/map.pdf"}},
	}
	rec := BuildRecord(ridb.Campsite{CampsiteID: "C5"}, fac, nil, "", time.Now())
	require.Nil(t, rec.FacilityWebsiteURL)
}
