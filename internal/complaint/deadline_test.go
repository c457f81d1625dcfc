package complaint_test

import (
	"civicdesk/backend/internal/complaint"
	"civicdesk/backend/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadlineWindow(t *testing.T) {
	tests := []struct {
		priority models.Priority
		want     time.Duration
	}{
		{models.PriorityHigh, 48 * time.Hour},
		{models.PriorityMedium, 96 * time.Hour},
		{models.PriorityLow, 168 * time.Hour},
		{"", 96 * time.Hour},
		{"URGENT", 96 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			assert.Equal(t, tt.want, complaint.DeadlineWindow(tt.priority))
		})
	}
}

func TestComputeDeadline(t *testing.T) {
	at := time.Date(2025, 5, 10, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, at.Add(48*time.Hour), complaint.ComputeDeadline(at, models.PriorityHigh))
	assert.Equal(t, at.Add(168*time.Hour), complaint.ComputeDeadline(at, models.PriorityLow))
}

func TestIsOverdueAndTimeRemaining(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(3 * time.Hour)

	open := &models.Complaint{Status: models.StatusInProgress, Deadline: &past}
	assert.True(t, complaint.IsOverdue(open, now))
	remaining, ok := complaint.TimeRemaining(open, now)
	assert.True(t, ok)
	assert.Equal(t, -time.Hour, remaining)

	onTime := &models.Complaint{Status: models.StatusPending, Deadline: &future}
	assert.False(t, complaint.IsOverdue(onTime, now))
	remaining, ok = complaint.TimeRemaining(onTime, now)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Hour, remaining)

	exactly := &models.Complaint{Status: models.StatusPending, Deadline: &now}
	assert.False(t, complaint.IsOverdue(exactly, now), "deadline itself is not overdue")

	resolved := &models.Complaint{Status: models.StatusResolved, Deadline: &past}
	assert.False(t, complaint.IsOverdue(resolved, now))
	_, ok = complaint.TimeRemaining(resolved, now)
	assert.False(t, ok)

	rejected := &models.Complaint{Status: models.StatusRejected, Deadline: &past}
	assert.False(t, complaint.IsOverdue(rejected, now))

	noDeadline := &models.Complaint{Status: models.StatusPending}
	assert.False(t, complaint.IsOverdue(noDeadline, now))
	_, ok = complaint.TimeRemaining(noDeadline, now)
	assert.False(t, ok)
}
