package handler

import (
	apperrors "civicdesk/backend/internal/errors"
	"civicdesk/backend/internal/models"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// OfficersWorkload ranks approved officers by active complaints. The optional
// department query parameter narrows the list.
func (h *Handler) OfficersWorkload(c *gin.Context) {
	_, ctx := caller(c)
	workload, err := h.Complaints.GetOfficersWorkload(ctx, models.Department(c.Query("department")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"officers": workload})
}

// OfficerRatings returns rating statistics. Officers may only read their own.
func (h *Handler) OfficerRatings(c *gin.Context) {
	p, ctx := caller(c)
	raw, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || raw == 0 {
		writeError(c, apperrors.NewInvalidArgumentError("id", "must be a positive integer"))
		return
	}
	id := uint(raw)
	if own, ok := p.OfficerID(); p.Role == models.RoleOfficer && (!ok || own != id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "officers may only read their own ratings"})
		return
	}

	stats, err := h.Complaints.OfficerRatings(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Statistics returns the dashboard aggregates.
func (h *Handler) Statistics(c *gin.Context) {
	_, ctx := caller(c)
	stats, err := h.Complaints.GetStatistics(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// EscalateOverdue runs one escalation sweep on demand.
func (h *Handler) EscalateOverdue(c *gin.Context) {
	_, ctx := caller(c)
	report, err := h.Complaints.EscalateOverdue(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SchedulerStatus reports the background escalation scheduler state.
func (h *Handler) SchedulerStatus(c *gin.Context) {
	if h.Scheduler == nil {
		c.JSON(http.StatusOK, gin.H{"running": false, "enabled": false})
		return
	}
	status := h.Scheduler.GetStatus()
	status["enabled"] = true
	c.JSON(http.StatusOK, status)
}
