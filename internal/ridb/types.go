package ridb

import "encoding/json"

// Envelope is the paginated response wrapper used by every RIDB endpoint.
// RECDATA is kept raw so typed accessors can decode it per resource.
type Envelope struct {
	RecData  json.RawMessage `json:"RECDATA"`
	Metadata Metadata        `json:"METADATA"`
}

// Metadata carries the pagination counters reported by the source.
type Metadata struct {
	Results Results `json:"RESULTS"`
}

// Results holds the per-page and total item counts. TOTAL_COUNT may be
// stale or absent on early pages.
type Results struct {
	CurrentCount int `json:"CURRENT_COUNT"`
	TotalCount   int `json:"TOTAL_COUNT"`
}

// Campsite is a bookable unit beneath a facility. The RIDB API serves some
// nested collections in all-caps field names on certain endpoints;
// encoding/json matches field names case-insensitively, so one set of tags
// covers both spellings.
type Campsite struct {
	CampsiteID         string               `json:"CampsiteID"`
	FacilityID         string               `json:"FacilityID"`
	CampsiteName       string               `json:"CampsiteName"`
	CampsiteType       string               `json:"CampsiteType"`
	TypeOfUse          string               `json:"TypeOfUse"`
	Loop               string               `json:"Loop"`
	Site               string               `json:"Site"`
	SiteAccess         string               `json:"SiteAccess"`
	CampsiteAccessible *bool                `json:"CampsiteAccessible"`
	CampsiteReservable *bool                `json:"CampsiteReservable"`
	CampsiteLatitude   float64              `json:"CampsiteLatitude"`
	CampsiteLongitude  float64              `json:"CampsiteLongitude"`
	CreatedDate        string               `json:"CreatedDate"`
	LastUpdatedDate    string               `json:"LastUpdatedDate"`
	Attributes         []Attribute          `json:"Attributes"`
	PermittedEquipment []PermittedEquipment `json:"PermittedEquipment"`
	Media              []Media              `json:"Media"`
	EntityMedia        []EntityMedia        `json:"EntityMedia"`
}

// Attribute is a key/value descriptor attached to a campsite.
type Attribute struct {
	AttributeID    json.Number `json:"AttributeID"`
	AttributeName  string      `json:"AttributeName"`
	AttributeValue string      `json:"AttributeValue"`
}

// Media is an image or video record attached to an entity.
type Media struct {
	MediaID     string `json:"MediaID"`
	MediaType   string `json:"MediaType"`
	EntityType  string `json:"EntityType"`
	EntityID    string `json:"EntityID"`
	Title       string `json:"Title"`
	Subtitle    string `json:"Subtitle"`
	Description string `json:"Description"`
	Credits     string `json:"Credits"`
	URL         string `json:"URL"`
	Width       int    `json:"Width"`
	Height      int    `json:"Height"`
	EmbedCode   string `json:"EmbedCode"`
}

// EntityMedia mirrors Media through the entity-media association table.
type EntityMedia struct {
	EntityMediaID string `json:"EntityMediaID"`
	MediaID       string `json:"MediaID"`
	EntityType    string `json:"EntityType"`
	EntityID      string `json:"EntityID"`
	Title         string `json:"Title"`
	Subtitle      string `json:"Subtitle"`
	Description   string `json:"Description"`
	Credits       string `json:"Credits"`
	URL           string `json:"URL"`
	Width         int    `json:"Width"`
	Height        int    `json:"Height"`
	EmbedCode     string `json:"EmbedCode"`
}

// PermittedEquipment lists equipment allowed at a campsite.
type PermittedEquipment struct {
	PermittedEquipmentID json.Number `json:"PermittedEquipmentID"`
	EquipmentName        string      `json:"EquipmentName"`
	MaxLength            float64     `json:"MaxLength"`
}

// Facility is the parent container for campsites.
type Facility struct {
	FacilityID                string            `json:"FacilityID"`
	FacilityName              string            `json:"FacilityName"`
	FacilityTypeDescription   string            `json:"FacilityTypeDescription"`
	FacilityDescription       string            `json:"FacilityDescription"`
	FacilityPhone             string            `json:"FacilityPhone"`
	FacilityEmail             string            `json:"FacilityEmail"`
	FacilityReservationURL    string            `json:"FacilityReservationURL"`
	FacilityMapURL            string            `json:"FacilityMapURL"`
	FacilityUseFeeDescription string            `json:"FacilityUseFeeDescription"`
	FacilityLatitude          float64           `json:"FacilityLatitude"`
	FacilityLongitude         float64           `json:"FacilityLongitude"`
	Reservable                *bool             `json:"Reservable"`
	Enabled                   *bool             `json:"Enabled"`
	LastUpdatedDate           string            `json:"LastUpdatedDate"`
	OrganizationID            string            `json:"OrganizationID"`
	ParentRecAreaID           string            `json:"ParentRecAreaID"`
	ParentRecAreaName         string            `json:"ParentRecAreaName"`
	RecAreaID                 string            `json:"RecAreaID"`
	RecAreaName               string            `json:"RecAreaName"`
	FacilityAddresses         []FacilityAddress `json:"FacilityAddresses"`
	Links                     []Link            `json:"LINK"`
}

// FacilityAddress is a postal address attached to a facility.
type FacilityAddress struct {
	FacilityAddressID      string `json:"FacilityAddressID"`
	FacilityID             string `json:"FacilityID"`
	FacilityAddressType    string `json:"FacilityAddressType"`
	FacilityStreetAddress1 string `json:"FacilityStreetAddress1"`
	FacilityStreetAddress2 string `json:"FacilityStreetAddress2"`
	City                   string `json:"City"`
	PostalCode             string `json:"PostalCode"`
	AddressStateCode       string `json:"AddressStateCode"`
	AddressCountryCode     string `json:"AddressCountryCode"`
}

// Link is an external URL attached to a facility, e.g. an official website.
type Link struct {
	EntityLinkID string `json:"EntityLinkID"`
	LinkType     string `json:"LinkType"`
	Title        string `json:"Title"`
	URL          string `json:"URL"`
}

// RecArea is the grandparent recreation area referenced by facilities.
type RecArea struct {
	RecAreaID             string  `json:"RecAreaID"`
	RecAreaName           string  `json:"RecAreaName"`
	RecAreaDescription    string  `json:"RecAreaDescription"`
	RecAreaPhone          string  `json:"RecAreaPhone"`
	RecAreaEmail          string  `json:"RecAreaEmail"`
	RecAreaReservationURL string  `json:"RecAreaReservationURL"`
	RecAreaLatitude       float64 `json:"RecAreaLatitude"`
	RecAreaLongitude      float64 `json:"RecAreaLongitude"`
	LastUpdatedDate       string  `json:"LastUpdatedDate"`
	OrganizationID        string  `json:"OrganizationID"`
}

// Organization is the managing agency for a facility.
type Organization struct {
	OrganizationID     string `json:"OrganizationID"`
	OrganizationName   string `json:"OrganizationName"`
	OrganizationType   string `json:"OrganizationType"`
	OrganizationAbbrev string `json:"OrganizationAbbrevName"`
	OrganizationURL    string `json:"OrganizationURLAddress"`
}
