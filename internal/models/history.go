package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Operation names a complaint lifecycle transition.
type Operation string

const (
	OpFile         Operation = "file"
	OpValidate     Operation = "validate"
	OpReject       Operation = "reject"
	OpAssign       Operation = "assign"
	OpUpdateStatus Operation = "update_status"
	OpEscalate     Operation = "escalate"
	OpUploadProof  Operation = "upload_proof"
	OpRate         Operation = "rate"
	OpReopen       Operation = "reopen"
	OpSatisfy      Operation = "mark_satisfied"
)

// ComplaintHistory is the audit row written in the same transaction as every
// successful transition.
type ComplaintHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID string    `gorm:"type:uuid;not null;index:idx_history_complaint_op" json:"complaintId"`
	Operation   Operation `gorm:"type:text;not null;index:idx_history_complaint_op" json:"operation"`
	FromStatus  Status    `gorm:"type:text" json:"fromStatus"`
	ToStatus    Status    `gorm:"type:text" json:"toStatus"`
	// ChangedFields holds the JSON names of the fields the transition wrote.
	ChangedFields pq.StringArray `gorm:"type:text[]" json:"changedFields"`
	Actor         string         `gorm:"type:text" json:"actor,omitempty"`
	Details       datatypes.JSON `json:"details,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"createdAt"`
}

func (ComplaintHistory) TableName() string {
	return "complaint_history"
}

// ComplaintEvent is published after a transition commits.
type ComplaintEvent struct {
	Type        Operation  `json:"type"`
	ComplaintID string     `json:"complaintId"`
	Department  Department `json:"department"`
	Status      Status     `json:"status"`
	CitizenID   string     `json:"citizenId"`
	OfficerID   *uint      `json:"officerId,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	OccurredAt  time.Time  `json:"occurredAt"`
}

// NewComplaintEvent builds the event describing c right after op was applied.
func NewComplaintEvent(op Operation, c *Complaint, reason string, at time.Time) ComplaintEvent {
	ev := ComplaintEvent{
		Type:        op,
		ComplaintID: c.ID,
		Department:  c.Department,
		Status:      c.Status,
		CitizenID:   c.CitizenID,
		Priority:    c.Priority,
		Reason:      reason,
		OccurredAt:  at,
	}
	if c.AssignedOfficerID != nil {
		id := *c.AssignedOfficerID
		ev.OfficerID = &id
	}
	return ev
}
