package complaint

import (
	"civicdesk/backend/internal/models"
	"sort"
)

// OfficerWorkload is a computed ranking entry. It is never persisted.
type OfficerWorkload struct {
	OfficerID            uint              `json:"officerId"`
	Name                 string            `json:"name"`
	Department           models.Department `json:"department"`
	ActiveComplaintCount int64             `json:"activeComplaintCount"`
	Recommended          bool              `json:"recommended"`
}

// RankOfficers orders officers by active complaint count ascending, breaking
// ties by id, and recommends the first one. Officers missing from counts are
// treated as idle.
func RankOfficers(officers []models.Officer, counts map[uint]int64) []OfficerWorkload {
	ranked := make([]OfficerWorkload, 0, len(officers))
	for _, o := range officers {
		ranked = append(ranked, OfficerWorkload{
			OfficerID:            o.ID,
			Name:                 o.Name,
			Department:           o.Department,
			ActiveComplaintCount: counts[o.ID],
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ActiveComplaintCount != ranked[j].ActiveComplaintCount {
			return ranked[i].ActiveComplaintCount < ranked[j].ActiveComplaintCount
		}
		return ranked[i].OfficerID < ranked[j].OfficerID
	})

	if len(ranked) > 0 {
		ranked[0].Recommended = true
	}
	return ranked
}
