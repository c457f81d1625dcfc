package complaint_test

import (
	"civicdesk/backend/internal/complaint"
	"civicdesk/backend/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestComputeStatistics(t *testing.T) {
	now := t0.Add(10 * 24 * time.Hour)
	pastDeadline := now.Add(-time.Hour)
	futureDeadline := now.Add(time.Hour)
	resolvedEarly := pastDeadline.Add(-time.Hour)
	resolvedLate := pastDeadline.Add(time.Minute)

	complaints := []models.Complaint{
		{Status: models.StatusPending, Department: models.DepartmentRoads},
		{Status: models.StatusInProgress, Department: models.DepartmentRoads, Priority: models.PriorityHigh, Deadline: &pastDeadline, Escalated: true},
		{Status: models.StatusInProgress, Department: models.DepartmentParks, Priority: models.PriorityLow, Deadline: &futureDeadline, Reopened: true},
		{Status: models.StatusResolved, Department: models.DepartmentParks, Priority: models.PriorityHigh, Deadline: &pastDeadline, ResolvedAt: &resolvedEarly},
		{Status: models.StatusResolved, Department: models.DepartmentParks, Priority: models.PriorityMedium, Deadline: &pastDeadline, ResolvedAt: &resolvedLate},
	}

	stats := complaint.ComputeStatistics(complaints, now)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, map[models.Status]int{
		models.StatusPending:    1,
		models.StatusInProgress: 2,
		models.StatusResolved:   2,
		models.StatusRejected:   0,
	}, stats.ByStatus)
	assert.Equal(t, map[string]int{"HIGH": 2, "MEDIUM": 1, "LOW": 1, "UNSET": 1}, stats.ByPriority)
	assert.Equal(t, 2, stats.ByDepartment[models.DepartmentRoads])
	assert.Equal(t, 3, stats.ByDepartment[models.DepartmentParks])
	assert.Equal(t, 1, stats.Escalated)
	assert.Equal(t, 1, stats.Reopened)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, complaint.SLAStats{Met: 1, Violated: 1}, stats.SLA)
}

func TestComputeStatistics_EmptyHasAllStatusKeys(t *testing.T) {
	stats := complaint.ComputeStatistics(nil, t0)

	assert.Equal(t, 0, stats.Total)
	assert.Len(t, stats.ByStatus, 4)
	for _, s := range models.AllStatuses {
		assert.Contains(t, stats.ByStatus, s)
	}
}

func TestComputeOfficerRatings(t *testing.T) {
	complaints := []models.Complaint{
		{ID: "c1", Rating: intPtr(5), Satisfied: true, Feedback: strPtr("great")},
		{ID: "c2", Rating: intPtr(4)},
		{ID: "c3"},
		{ID: "c4", Rating: intPtr(4), Satisfied: true},
	}

	stats := complaint.ComputeOfficerRatings(7, complaints)

	assert.Equal(t, uint(7), stats.OfficerID)
	assert.Equal(t, 3, stats.TotalRatings)
	assert.Equal(t, 4.33, stats.AverageRating)
	assert.Equal(t, 66.67, stats.SatisfactionRate)
	assert.Equal(t, 2, stats.SatisfiedCount)
	assert.Equal(t, map[int]int{5: 1, 4: 2}, stats.RatingDistribution)
	assert.Len(t, stats.RecentRatings, 3)
	assert.Equal(t, "c1", stats.RecentRatings[0].ComplaintID)
}

func TestComputeOfficerRatings_NoRatings(t *testing.T) {
	stats := complaint.ComputeOfficerRatings(3, []models.Complaint{{ID: "c1"}})

	assert.Equal(t, 0, stats.TotalRatings)
	assert.Equal(t, 0.0, stats.AverageRating)
	assert.Equal(t, 0.0, stats.SatisfactionRate)
	assert.NotNil(t, stats.RecentRatings)
}
