package models

import "time"

// OfficerStatus is the approval state of an officer account.
type OfficerStatus string

const (
	OfficerPending  OfficerStatus = "PENDING"
	OfficerApproved OfficerStatus = "APPROVED"
)

// Officer is a department-scoped resolver. Records are managed by the officer
// directory; the complaint workflow only reads them.
type Officer struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	Name       string        `gorm:"type:text;not null" json:"name"`
	Email      string        `gorm:"type:text;uniqueIndex" json:"email"`
	Department Department    `gorm:"type:text;not null;index" json:"department"`
	Status     OfficerStatus `gorm:"type:text;not null;default:'PENDING';index" json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// IsApproved reports whether the officer may receive assignments.
func (o *Officer) IsApproved() bool {
	return o.Status == OfficerApproved
}
