package collector

import "math"

// CompletenessScore rates how fully populated a record is, as a rounded
// percentage over a fixed field list. The list is deliberately frozen: adding
// columns to the record must not silently shift historical scores.
func CompletenessScore(r CampsiteRecord) int {
	present := []bool{
		r.Name != "",
		r.CampsiteType != nil,
		r.CampsiteUseType != nil,
		r.Loop != nil,
		r.Site != nil,
		r.CampsiteAccessible != nil,
		r.Latitude != nil,
		r.Longitude != nil,
		r.CreatedDate != nil,
		r.LastUpdatedDate != nil,
		r.FacilityName != nil,
		r.FacilityAddress != nil,
		r.FacilityCity != nil,
		r.FacilityState != nil,
		r.FacilityReservationURL != nil,
		r.FacilityUseFeeDescription != nil,
		r.FacilityWebsiteURL != nil,
		r.CampsiteReservable != nil,
		r.CampsiteBookingURL != nil,
		r.RecAreaName != nil,
		r.OrganizationName != nil,
		len(r.Attributes) > 0,
		len(r.PermittedEquipment) > 0,
		len(r.Media) > 0,
		len(r.EntityMedia) > 0,
	}

	score := 0
	for _, ok := range present {
		if ok {
			score++
		}
	}
	return int(math.Round(float64(score) / float64(len(present)) * 100))
}
