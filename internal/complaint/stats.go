package complaint

import (
	"civicdesk/backend/internal/models"
	"math"
	"time"
)

// PriorityUnset is the byPriority key for complaints that were never prioritised.
const PriorityUnset = "UNSET"

type SLAStats struct {
	Met      int `json:"met"`
	Violated int `json:"violated"`
}

// Statistics is a read-only aggregate over a set of complaints.
type Statistics struct {
	Total        int                       `json:"total"`
	ByStatus     map[models.Status]int     `json:"byStatus"`
	ByPriority   map[string]int            `json:"byPriority"`
	ByDepartment map[models.Department]int `json:"byDepartment"`
	Escalated    int                       `json:"escalated"`
	Overdue      int                       `json:"overdue"`
	Reopened     int                       `json:"reopened"`
	SLA          SLAStats                  `json:"sla"`
}

// ComputeStatistics aggregates complaints as of now. Every status key is
// present even when its count is zero.
func ComputeStatistics(complaints []models.Complaint, now time.Time) Statistics {
	stats := Statistics{
		Total:        len(complaints),
		ByStatus:     make(map[models.Status]int, len(models.AllStatuses)),
		ByPriority:   make(map[string]int, len(models.AllPriorities)+1),
		ByDepartment: make(map[models.Department]int),
	}
	for _, s := range models.AllStatuses {
		stats.ByStatus[s] = 0
	}
	for _, p := range models.AllPriorities {
		stats.ByPriority[string(p)] = 0
	}
	stats.ByPriority[PriorityUnset] = 0

	for i := range complaints {
		c := &complaints[i]
		stats.ByStatus[c.Status]++
		if c.Priority == "" {
			stats.ByPriority[PriorityUnset]++
		} else {
			stats.ByPriority[string(c.Priority)]++
		}
		stats.ByDepartment[c.Department]++
		if c.Escalated {
			stats.Escalated++
		}
		if c.Reopened {
			stats.Reopened++
		}
		if IsOverdue(c, now) {
			stats.Overdue++
		}
		if c.Status == models.StatusResolved && c.ResolvedAt != nil && c.Deadline != nil {
			if c.ResolvedAt.After(*c.Deadline) {
				stats.SLA.Violated++
			} else {
				stats.SLA.Met++
			}
		}
	}
	return stats
}

// RatingEntry describes one rated complaint in an officer's rating summary.
type RatingEntry struct {
	ComplaintID string            `json:"complaintId"`
	Rating      int               `json:"rating"`
	Feedback    *string           `json:"feedback,omitempty"`
	Satisfied   bool              `json:"satisfied"`
	RatedAt     *time.Time        `json:"ratedAt,omitempty"`
	Department  models.Department `json:"department"`
}

type OfficerRatingStats struct {
	OfficerID          uint          `json:"officerId"`
	TotalRatings       int           `json:"totalRatings"`
	AverageRating      float64       `json:"averageRating"`
	SatisfactionRate   float64       `json:"satisfactionRate"`
	SatisfiedCount     int           `json:"satisfiedCount"`
	RatingDistribution map[int]int   `json:"ratingDistribution"`
	RecentRatings      []RatingEntry `json:"recentRatings"`
}

const recentRatingsLimit = 10

// ComputeOfficerRatings summarises the rated complaints among the officer's
// complaints. complaints are expected most recent first; averages are rounded
// to two decimals and the satisfaction rate is a percentage.
func ComputeOfficerRatings(officerID uint, complaints []models.Complaint) OfficerRatingStats {
	stats := OfficerRatingStats{
		OfficerID:          officerID,
		RatingDistribution: make(map[int]int),
		RecentRatings:      make([]RatingEntry, 0),
	}

	sum := 0
	for i := range complaints {
		c := &complaints[i]
		if c.Rating == nil {
			continue
		}
		stats.TotalRatings++
		sum += *c.Rating
		stats.RatingDistribution[*c.Rating]++
		if c.Satisfied {
			stats.SatisfiedCount++
		}
		if len(stats.RecentRatings) < recentRatingsLimit {
			stats.RecentRatings = append(stats.RecentRatings, RatingEntry{
				ComplaintID: c.ID,
				Rating:      *c.Rating,
				Feedback:    c.Feedback,
				Satisfied:   c.Satisfied,
				RatedAt:     c.RatedAt,
				Department:  c.Department,
			})
		}
	}

	if stats.TotalRatings > 0 {
		stats.AverageRating = round2(float64(sum) / float64(stats.TotalRatings))
		stats.SatisfactionRate = round2(float64(stats.SatisfiedCount) * 100 / float64(stats.TotalRatings))
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
