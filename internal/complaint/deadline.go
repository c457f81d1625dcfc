package complaint

import (
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
	"time"
)

// DeadlineWindow maps a priority to its resolution window. Unset or unknown
// priorities get the MEDIUM window.
func DeadlineWindow(p models.Priority) time.Duration {
	switch p {
	case models.PriorityHigh:
		return config.HighPriorityWindow
	case models.PriorityLow:
		return config.LowPriorityWindow
	default:
		return config.MediumPriorityWindow
	}
}

// ComputeDeadline anchors the priority window at the assignment time.
func ComputeDeadline(assignedAt time.Time, p models.Priority) time.Time {
	return assignedAt.Add(DeadlineWindow(p))
}

// IsOverdue reports whether an open complaint has passed its deadline.
// Closed complaints and complaints without a deadline are never overdue.
func IsOverdue(c *models.Complaint, now time.Time) bool {
	if c == nil || c.Deadline == nil || c.Status.IsTerminal() {
		return false
	}
	return now.After(*c.Deadline)
}

// TimeRemaining returns the time left until the deadline, negative once it
// has passed. ok is false when the question does not apply.
func TimeRemaining(c *models.Complaint, now time.Time) (remaining time.Duration, ok bool) {
	if c == nil || c.Deadline == nil || c.Status.IsTerminal() {
		return 0, false
	}
	return c.Deadline.Sub(now), true
}
