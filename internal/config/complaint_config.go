package config

import "time"

const (
	// Deadline windows by priority
	HighPriorityWindow   = 48 * time.Hour
	MediumPriorityWindow = 96 * time.Hour
	LowPriorityWindow    = 168 * time.Hour

	// Duplicate detection
	DuplicateRadiusMeters  = 100.0
	DuplicateRecencyWindow = 30 * 24 * time.Hour
	EarthRadiusMeters      = 6371000.0

	// Escalation
	DefaultEscalationReason = "Manual escalation by admin"
	AutoEscalationReasonFmt = "Automatic escalation: complaint exceeded deadline of %s"

	// Rating
	MinRating = 1
	MaxRating = 5

	// Locking
	DefaultLockTTL = 10 * time.Second
)

// EventsChannel is the Redis pub/sub channel complaint events are fanned out on.
const EventsChannel = "complaints:events"
