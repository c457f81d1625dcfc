package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the workflow state of a complaint.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusRejected   Status = "REJECTED"
)

// AllStatuses lists every workflow state in lifecycle order.
var AllStatuses = []Status{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

// IsActive reports whether a complaint in this state still counts toward an officer's workload.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}

// IsTerminal reports whether the state closes the complaint (RESOLVED can only leave via reopen).
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// ValidationStatus is the administrative gate in front of assignment.
// The empty value marks legacy complaints filed before validation existed.
type ValidationStatus string

const (
	ValidationPending  ValidationStatus = "PENDING_VALIDATION"
	ValidationApproved ValidationStatus = "VALIDATED"
	ValidationRejected ValidationStatus = "REJECTED_BY_ADMIN"
)

// Priority is the urgency tier driving the resolution deadline. Empty means unset.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// AllPriorities lists the accepted priority tiers.
var AllPriorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known tiers.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Department is the municipal service a complaint is filed against.
type Department string

const (
	DepartmentRoads        Department = "Roads"
	DepartmentSanitation   Department = "Sanitation"
	DepartmentWaterSupply  Department = "Water Supply"
	DepartmentElectricity  Department = "Electricity"
	DepartmentStreetLights Department = "Street Lights"
	DepartmentDrainage     Department = "Drainage"
	DepartmentParks        Department = "Parks"
	DepartmentOther        Department = "Other"
)

// Departments is the fixed set of departments accepted at intake.
var Departments = []Department{
	DepartmentRoads,
	DepartmentSanitation,
	DepartmentWaterSupply,
	DepartmentElectricity,
	DepartmentStreetLights,
	DepartmentDrainage,
	DepartmentParks,
	DepartmentOther,
}

// Valid reports whether d belongs to the fixed department set.
func (d Department) Valid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

// Complaint is a citizen-filed service request tracked through validation,
// assignment and resolution.
//
// Fields set at creation (citizen, department, description, photo, location)
// never change afterwards. Workflow fields are only written by the complaint
// state machine, which also owns UpdatedAt.
type Complaint struct {
	ID              string     `gorm:"primaryKey;type:uuid" json:"id"`
	CitizenID       string     `gorm:"type:text;not null;index" json:"citizenId"`
	Department      Department `gorm:"type:text;not null;index:idx_complaint_department_created" json:"department"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	PhotoRef        *string    `json:"photoRef,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	LocationAddress *string    `gorm:"index" json:"locationAddress,omitempty"`

	Status           Status           `gorm:"type:text;not null;index" json:"status"`
	ValidationStatus ValidationStatus `gorm:"type:text;index" json:"validationStatus,omitempty"`
	ValidatedBy      *string          `json:"validatedBy,omitempty"`
	ValidatedAt      *time.Time       `json:"validatedAt,omitempty"`
	RejectionReason  *string          `gorm:"size:1000" json:"rejectionReason,omitempty"`

	Priority          Priority   `gorm:"type:text" json:"priority,omitempty"`
	AssignedOfficerID *uint      `gorm:"index" json:"assignedOfficerId,omitempty"`
	AssignedAt        *time.Time `json:"assignedAt,omitempty"`
	Deadline          *time.Time `gorm:"index" json:"deadline,omitempty"`

	Escalated        bool       `gorm:"not null;default:false" json:"escalated"`
	EscalatedAt      *time.Time `json:"escalatedAt,omitempty"`
	EscalationReason *string    `gorm:"size:500" json:"escalationReason,omitempty"`

	ProofOfWorkRef        *string    `json:"proofOfWorkRef,omitempty"`
	ProofOfWorkUploadedAt *time.Time `json:"proofOfWorkUploadedAt,omitempty"`

	Rating      *int       `json:"rating,omitempty"`
	Feedback    *string    `gorm:"size:1000" json:"feedback,omitempty"`
	RatedAt     *time.Time `json:"ratedAt,omitempty"`
	Satisfied   bool       `gorm:"not null;default:false" json:"satisfied"`
	SatisfiedAt *time.Time `json:"satisfiedAt,omitempty"`

	Reopened     bool       `gorm:"not null;default:false" json:"reopened"`
	ReopenedAt   *time.Time `json:"reopenedAt,omitempty"`
	ReopenReason *string    `gorm:"size:500" json:"reopenReason,omitempty"`

	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`

	// Version is bumped on every committed transition and used as a
	// compare-and-set guard by the storage layer.
	Version   uint      `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"not null;index:idx_complaint_department_created" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

// BeforeCreate generates the complaint UUID when the caller did not set one.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// HasCoordinates reports whether both GPS coordinates were captured at intake.
func (c *Complaint) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Clone returns a deep copy so callers can hand out snapshots without sharing pointers.
func (c *Complaint) Clone() *Complaint {
	if c == nil {
		return nil
	}
	out := *c
	out.PhotoRef = cloneString(c.PhotoRef)
	out.Latitude = cloneFloat(c.Latitude)
	out.Longitude = cloneFloat(c.Longitude)
	out.LocationAddress = cloneString(c.LocationAddress)
	out.ValidatedBy = cloneString(c.ValidatedBy)
	out.ValidatedAt = cloneTime(c.ValidatedAt)
	out.RejectionReason = cloneString(c.RejectionReason)
	if c.AssignedOfficerID != nil {
		id := *c.AssignedOfficerID
		out.AssignedOfficerID = &id
	}
	out.AssignedAt = cloneTime(c.AssignedAt)
	out.Deadline = cloneTime(c.Deadline)
	out.EscalatedAt = cloneTime(c.EscalatedAt)
	out.EscalationReason = cloneString(c.EscalationReason)
	out.ProofOfWorkRef = cloneString(c.ProofOfWorkRef)
	out.ProofOfWorkUploadedAt = cloneTime(c.ProofOfWorkUploadedAt)
	if c.Rating != nil {
		r := *c.Rating
		out.Rating = &r
	}
	out.Feedback = cloneString(c.Feedback)
	out.RatedAt = cloneTime(c.RatedAt)
	out.SatisfiedAt = cloneTime(c.SatisfiedAt)
	out.ReopenedAt = cloneTime(c.ReopenedAt)
	out.ReopenReason = cloneString(c.ReopenReason)
	out.ResolvedAt = cloneTime(c.ResolvedAt)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
