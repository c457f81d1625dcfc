package complaint

import (
	"civicdesk/backend/internal/analysis"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
	"sort"
	"time"
)

// DuplicatePolicy holds the thresholds of the duplicate matcher.
type DuplicatePolicy struct {
	RadiusMeters  float64
	RecencyWindow time.Duration
}

// DefaultDuplicatePolicy uses the 100 m / 30 day thresholds.
var DefaultDuplicatePolicy = DuplicatePolicy{
	RadiusMeters:  config.DuplicateRadiusMeters,
	RecencyWindow: config.DuplicateRecencyWindow,
}

// IsDuplicate reports whether candidate plausibly describes the same problem as target.
func (p DuplicatePolicy) IsDuplicate(target, candidate *models.Complaint) bool {
	if candidate.ID == target.ID {
		return false
	}
	if candidate.Status == models.StatusRejected || candidate.ValidationStatus == models.ValidationRejected {
		return false
	}
	if candidate.Department != target.Department {
		return false
	}

	gap := candidate.CreatedAt.Sub(target.CreatedAt)
	if gap < 0 {
		gap = -gap
	}
	if gap > p.RecencyWindow {
		return false
	}

	return p.sameLocation(target, candidate)
}

func (p DuplicatePolicy) sameLocation(a, b *models.Complaint) bool {
	if a.LocationAddress != nil && b.LocationAddress != nil &&
		analysis.SameAddress(*a.LocationAddress, *b.LocationAddress) {
		return true
	}
	if a.HasCoordinates() && b.HasCoordinates() {
		d := analysis.DistanceMeters(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		return d < p.RadiusMeters
	}
	return false
}

// FindDuplicates filters candidates down to plausible duplicates of target,
// most recently filed first. The result is never nil.
func FindDuplicates(target *models.Complaint, candidates []models.Complaint, policy DuplicatePolicy) []models.Complaint {
	matches := make([]models.Complaint, 0)
	for i := range candidates {
		if policy.IsDuplicate(target, &candidates[i]) {
			matches = append(matches, candidates[i])
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches
}
