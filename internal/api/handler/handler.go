// Package handler exposes the complaint workflow over HTTP and websockets.
package handler

import (
	"civicdesk/backend/internal/api/middleware"
	"civicdesk/backend/internal/complaint"
	apperrors "civicdesk/backend/internal/errors"
	"civicdesk/backend/internal/eventhub"
	"civicdesk/backend/internal/models"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SchedulerStatus is implemented by the escalation scheduler.
type SchedulerStatus interface {
	GetStatus() map[string]interface{}
}

// Handler holds the services the HTTP layer dispatches to.
type Handler struct {
	Complaints *complaint.Service
	Hub        *eventhub.ManagerService
	Scheduler  SchedulerStatus
}

func NewHandler(svc *complaint.Service, hub *eventhub.ManagerService, sched SchedulerStatus) *Handler {
	return &Handler{Complaints: svc, Hub: hub, Scheduler: sched}
}

// RegisterRoutes mounts every endpoint on r. All /api routes require a bearer token.
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.AuthMiddleware(jwtSecret))
	api.GET("/ws", h.ServeWebSocket)

	citizen := middleware.RequireRole(models.RoleCitizen)
	officer := middleware.RequireRole(models.RoleOfficer, models.RoleAdmin)
	admin := middleware.RequireRole(models.RoleAdmin)

	complaints := api.Group("/complaints")
	complaints.POST("", citizen, h.FileComplaint)
	complaints.GET("", admin, h.ListAll)
	complaints.GET("/mine", citizen, h.ListMine)
	complaints.GET("/assigned", middleware.RequireRole(models.RoleOfficer), h.ListAssigned)
	complaints.GET("/:id", h.GetComplaint)

	complaints.POST("/:id/validate", admin, h.Validate)
	complaints.POST("/:id/reject", admin, h.Reject)
	complaints.POST("/:id/assign", admin, h.Assign)
	complaints.POST("/:id/escalate", admin, h.Escalate)
	complaints.GET("/:id/duplicates", admin, h.CheckDuplicates)
	complaints.GET("/:id/history", admin, h.History)
	complaints.GET("/:id/escalations", admin, h.EscalationHistory)

	complaints.POST("/:id/status", officer, h.UpdateStatus)
	complaints.POST("/:id/proof", officer, h.UploadProof)

	complaints.POST("/:id/rate", citizen, h.Rate)
	complaints.POST("/:id/reopen", citizen, h.Reopen)
	complaints.POST("/:id/satisfaction", citizen, h.MarkSatisfied)

	officers := api.Group("/officers")
	officers.GET("/workload", admin, h.OfficersWorkload)
	officers.GET("/:id/ratings", officer, h.OfficerRatings)

	adminGroup := api.Group("/admin", admin)
	adminGroup.GET("/stats", h.Statistics)
	adminGroup.POST("/escalate-overdue", h.EscalateOverdue)
	adminGroup.GET("/scheduler", h.SchedulerStatus)
}

// Health reports liveness and the number of connected live clients.
func (h *Handler) Health(c *gin.Context) {
	clients := 0
	if h.Hub != nil {
		clients = h.Hub.ClientCount()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "liveClients": clients})
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var (
		notFound     *apperrors.NotFoundError
		precondition *apperrors.PreconditionError
		invalid      *apperrors.InvalidArgumentError
		conflict     *apperrors.ConflictError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "field": invalid.Field})
	case errors.As(err, &precondition):
		c.JSON(http.StatusConflict, gin.H{"error": precondition.Error(), "rule": precondition.Rule})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error(), "retryable": true})
	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
