package handler

import (
	"civicdesk/backend/internal/api/middleware"
	"civicdesk/backend/internal/complaint"
	"civicdesk/backend/internal/models"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// caller returns the authenticated principal and a request context carrying
// it as the acting user.
func caller(c *gin.Context) (models.Principal, context.Context) {
	p, _ := middleware.PrincipalFrom(c)
	return p, complaint.WithActor(c.Request.Context(), p.UserID)
}

// loadVisible loads the complaint named by the :id parameter and checks the
// caller may see it. It writes the error response itself and returns nil on failure.
func (h *Handler) loadVisible(c *gin.Context) (*models.Complaint, models.Principal, context.Context) {
	p, ctx := caller(c)
	cmp, err := h.Complaints.GetComplaint(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, p, ctx
	}
	if !p.CanSeeComplaint(cmp) {
		c.JSON(http.StatusForbidden, gin.H{"error": "complaint belongs to another user"})
		return nil, p, ctx
	}
	return cmp, p, ctx
}

// authorizeOwnerOrAdmin passes admins straight through and otherwise checks
// visibility of the target complaint.
func (h *Handler) authorizeOwnerOrAdmin(c *gin.Context) (context.Context, bool) {
	p, ctx := caller(c)
	if p.Role == models.RoleAdmin {
		return ctx, true
	}
	cmp, _, ctx := h.loadVisible(c)
	return ctx, cmp != nil
}
