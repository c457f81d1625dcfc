package handler

import (
	"civicdesk/backend/internal/complaint"
	apperrors "civicdesk/backend/internal/errors"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type fileComplaintRequest struct {
	Department      models.Department `json:"department"`
	Description     string            `json:"description"`
	PhotoRef        *string           `json:"photoRef"`
	Latitude        *float64          `json:"latitude"`
	Longitude       *float64          `json:"longitude"`
	LocationAddress *string           `json:"locationAddress"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type assignRequest struct {
	OfficerID uint            `json:"officerId"`
	Priority  models.Priority `json:"priority"`
	Deadline  *time.Time      `json:"deadline"`
}

type statusRequest struct {
	Status models.Status `json:"status"`
}

type proofRequest struct {
	ProofOfWorkRef string `json:"proofOfWorkRef"`
}

type rateRequest struct {
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback"`
}

type satisfactionRequest struct {
	Satisfied *bool `json:"satisfied"`
}

// FileComplaint creates a complaint owned by the calling citizen.
func (h *Handler) FileComplaint(c *gin.Context) {
	var req fileComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, ctx := caller(c)
	cmp, err := h.Complaints.FileComplaint(ctx, complaint.FileRequest{
		CitizenID:       p.UserID,
		Department:      req.Department,
		Description:     req.Description,
		PhotoRef:        req.PhotoRef,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		LocationAddress: req.LocationAddress,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cmp)
}

// GetComplaint returns one complaint visible to the caller.
func (h *Handler) GetComplaint(c *gin.Context) {
	cmp, _, _ := h.loadVisible(c)
	if cmp == nil {
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// ListMine lists the calling citizen's complaints.
func (h *Handler) ListMine(c *gin.Context) {
	p, ctx := caller(c)
	h.list(c, ctx, storage.ComplaintQuery{CitizenID: p.UserID})
}

// ListAssigned lists complaints assigned to the calling officer.
func (h *Handler) ListAssigned(c *gin.Context) {
	p, ctx := caller(c)
	id, ok := p.OfficerID()
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "token subject is not an officer id"})
		return
	}
	q := storage.ComplaintQuery{OfficerID: &id}
	for _, s := range c.QueryArray("status") {
		q.Statuses = append(q.Statuses, models.Status(strings.ToUpper(s)))
	}
	h.list(c, ctx, q)
}

// ListAll lists every complaint, filtered by the optional query parameters
// department, status (repeatable), citizenId, officerId, escalated and limit.
func (h *Handler) ListAll(c *gin.Context) {
	_, ctx := caller(c)
	q := storage.ComplaintQuery{
		Department: models.Department(c.Query("department")),
		CitizenID:  c.Query("citizenId"),
	}
	if q.Department != "" && !q.Department.Valid() {
		writeError(c, apperrors.NewInvalidArgumentError("department", "unknown department "+strconv.Quote(string(q.Department))))
		return
	}
	for _, s := range c.QueryArray("status") {
		q.Statuses = append(q.Statuses, models.Status(strings.ToUpper(s)))
	}
	if v := c.Query("officerId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(c, apperrors.NewInvalidArgumentError("officerId", "must be a positive integer"))
			return
		}
		officerID := uint(id)
		q.OfficerID = &officerID
	}
	if v := c.Query("escalated"); v != "" {
		escalated, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, apperrors.NewInvalidArgumentError("escalated", "must be true or false"))
			return
		}
		q.Escalated = &escalated
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(c, apperrors.NewInvalidArgumentError("limit", "must be a non-negative integer"))
			return
		}
		q.Limit = limit
	}
	h.list(c, ctx, q)
}

func (h *Handler) list(c *gin.Context, ctx context.Context, q storage.ComplaintQuery) {
	complaints, err := h.Complaints.ListComplaints(ctx, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints, "count": len(complaints)})
}

// Validate approves a complaint at the validation gate.
func (h *Handler) Validate(c *gin.Context) {
	_, ctx := caller(c)
	h.respond(c)(h.Complaints.Validate(ctx, c.Param("id")))
}

// Reject closes a complaint at the validation gate.
func (h *Handler) Reject(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	_, ctx := caller(c)
	h.respond(c)(h.Complaints.Reject(ctx, c.Param("id"), req.Reason))
}

// Assign hands a validated complaint to an officer.
func (h *Handler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	_, ctx := caller(c)
	h.respond(c)(h.Complaints.Assign(ctx, c.Param("id"), complaint.AssignRequest{
		OfficerID: req.OfficerID,
		Priority:  models.Priority(strings.ToUpper(string(req.Priority))),
		Deadline:  req.Deadline,
	}))
}

// Escalate flags a complaint. The body is optional.
func (h *Handler) Escalate(c *gin.Context) {
	var req reasonRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err)
			return
		}
	}
	_, ctx := caller(c)
	h.respond(c)(h.Complaints.Escalate(ctx, c.Param("id"), req.Reason))
}

// UpdateStatus is used by the assigned officer (or an admin) to start or resolve work.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, ok := h.authorizeOwnerOrAdmin(c)
	if !ok {
		return
	}
	h.respond(c)(h.Complaints.UpdateStatus(ctx, c.Param("id"), models.Status(strings.ToUpper(string(req.Status)))))
}

// UploadProof attaches a proof-of-work reference.
func (h *Handler) UploadProof(c *gin.Context) {
	var req proofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, ok := h.authorizeOwnerOrAdmin(c)
	if !ok {
		return
	}
	h.respond(c)(h.Complaints.UploadProof(ctx, c.Param("id"), req.ProofOfWorkRef))
}

// Rate records the citizen's rating of a resolved complaint.
func (h *Handler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, ok := h.authorizeOwnerOrAdmin(c)
	if !ok {
		return
	}
	h.respond(c)(h.Complaints.Rate(ctx, c.Param("id"), req.Rating, req.Feedback))
}

// Reopen sends a resolved complaint back to the officer.
func (h *Handler) Reopen(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, ok := h.authorizeOwnerOrAdmin(c)
	if !ok {
		return
	}
	h.respond(c)(h.Complaints.Reopen(ctx, c.Param("id"), req.Reason))
}

// MarkSatisfied records whether the citizen is happy with the resolution.
func (h *Handler) MarkSatisfied(c *gin.Context) {
	var req satisfactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Satisfied == nil {
		writeError(c, apperrors.NewInvalidArgumentError("satisfied", "must be set"))
		return
	}
	ctx, ok := h.authorizeOwnerOrAdmin(c)
	if !ok {
		return
	}
	h.respond(c)(h.Complaints.MarkSatisfied(ctx, c.Param("id"), *req.Satisfied))
}

// CheckDuplicates lists likely duplicates of a complaint.
func (h *Handler) CheckDuplicates(c *gin.Context) {
	_, ctx := caller(c)
	duplicates, err := h.Complaints.CheckDuplicates(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicates": duplicates, "count": len(duplicates)})
}

// History returns the audit trail of a complaint.
func (h *Handler) History(c *gin.Context) {
	_, ctx := caller(c)
	rows, err := h.Complaints.History(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": rows})
}

// EscalationHistory returns the escalation entries of the audit trail.
func (h *Handler) EscalationHistory(c *gin.Context) {
	_, ctx := caller(c)
	rows, err := h.Complaints.EscalationHistory(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"escalations": rows})
}

func (h *Handler) respond(c *gin.Context) func(*models.Complaint, error) {
	return func(cmp *models.Complaint, err error) {
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cmp)
	}
}
