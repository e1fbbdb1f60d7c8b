// Package collector implements the RIDB campsite collection pipeline:
// facility filtering, campsite enrichment, batched persistence, and the
// resumable orchestration loop that ties them together.
package collector

import (
	"strings"

	"github.com/opencampsites/ridb-collector/internal/ridb"
)

// DefaultCampingKeywords select facilities that host campsites. Matched
// case-insensitively against the facility type description and name.
var DefaultCampingKeywords = []string{
	"campground",
	"camping",
	"rv",
	"tent",
	"campsite",
	"backcountry",
	"primitive",
	"group camp",
}

// FacilityFilter decides whether a facility is in scope for collection.
type FacilityFilter struct {
	keywords []string
}

// NewFacilityFilter builds a filter over the given keywords, falling back to
// DefaultCampingKeywords when none are given. Keywords are lowercased once.
func NewFacilityFilter(keywords ...string) FacilityFilter {
	if len(keywords) == 0 {
		keywords = DefaultCampingKeywords
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return FacilityFilter{keywords: lowered}
}

// InScope reports whether any keyword occurs in the facility's type
// description or name.
func (f FacilityFilter) InScope(fac ridb.Facility) bool {
	facType := strings.ToLower(fac.FacilityTypeDescription)
	facName := strings.ToLower(fac.FacilityName)
	for _, kw := range f.keywords {
		if strings.Contains(facType, kw) || strings.Contains(facName, kw) {
			return true
		}
	}
	return false
}
