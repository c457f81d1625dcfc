package models

import "strconv"

// Role is the caller role carried in the bearer token.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleOfficer Role = "OFFICER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleOfficer, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller of a request or live connection.
// For officers UserID is the numeric officer id.
type Principal struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// OfficerID returns the officer id of an OFFICER principal.
func (p Principal) OfficerID() (uint, bool) {
	if p.Role != RoleOfficer {
		return 0, false
	}
	id, err := strconv.ParseUint(p.UserID, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// CanSee reports whether the principal may read complaint data: admins see
// everything, officers their assigned complaints, citizens their own.
func (p Principal) CanSee(citizenID string, officerID *uint) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleOfficer:
		id, ok := p.OfficerID()
		return ok && officerID != nil && *officerID == id
	case RoleCitizen:
		return p.UserID != "" && p.UserID == citizenID
	}
	return false
}

// CanSeeComplaint applies CanSee to a stored complaint.
func (p Principal) CanSeeComplaint(c *Complaint) bool {
	return c != nil && p.CanSee(c.CitizenID, c.AssignedOfficerID)
}

// CanSeeEvent applies CanSee to a published event.
func (p Principal) CanSeeEvent(ev ComplaintEvent) bool {
	return p.CanSee(ev.CitizenID, ev.OfficerID)
}
