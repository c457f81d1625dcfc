// Package complaint implements the complaint lifecycle and assignment engine:
// the state machine, the deadline policy, workload balancing and duplicate
// detection, composed by Service.
package complaint

import (
	"civicdesk/backend/internal/config"
	apperrors "civicdesk/backend/internal/errors"
	"civicdesk/backend/internal/metrics"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// SystemActor is recorded for transitions the engine performs on its own.
const SystemActor = "system"

// Service is the single entry point for complaint operations.
type Service struct {
	Storage  storage.Storage
	Officers storage.OfficerDirectory
	Locker   storage.Locker
	Notifier Notifier
	Now      func() time.Time
	LockTTL  time.Duration
}

// NewService creates a new complaint service. notifier may be nil.
func NewService(s storage.Storage, officers storage.OfficerDirectory, locker storage.Locker, notifier Notifier) *Service {
	return &Service{
		Storage:  s,
		Officers: officers,
		Locker:   locker,
		Notifier: notifier,
		Now:      time.Now,
		LockTTL:  config.DefaultLockTTL,
	}
}

// FileRequest carries the citizen-provided fields of a new complaint.
type FileRequest struct {
	CitizenID       string            `json:"citizenId"`
	Department      models.Department `json:"department"`
	Description     string            `json:"description"`
	PhotoRef        *string           `json:"photoRef,omitempty"`
	Latitude        *float64          `json:"latitude,omitempty"`
	Longitude       *float64          `json:"longitude,omitempty"`
	LocationAddress *string           `json:"locationAddress,omitempty"`
}

func (r FileRequest) validate() error {
	if strings.TrimSpace(r.CitizenID) == "" {
		return apperrors.NewInvalidArgumentError("citizenId", "must not be empty")
	}
	if !r.Department.Valid() {
		return apperrors.NewInvalidArgumentError("department", fmt.Sprintf("unknown department %q", r.Department))
	}
	if strings.TrimSpace(r.Description) == "" {
		return apperrors.NewInvalidArgumentError("description", "must not be empty")
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return apperrors.NewInvalidArgumentError("location", "latitude and longitude must be given together")
	}
	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		return apperrors.NewInvalidArgumentError("latitude", "must be between -90 and 90")
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		return apperrors.NewInvalidArgumentError("longitude", "must be between -180 and 180")
	}
	return nil
}

// FileComplaint records a new complaint in PENDING / PENDING_VALIDATION.
func (s *Service) FileComplaint(ctx context.Context, req FileRequest) (*models.Complaint, error) {
	if err := req.validate(); err != nil {
		s.observe(models.OpFile, err)
		return nil, err
	}

	now := s.now()
	c := &models.Complaint{
		CitizenID:        req.CitizenID,
		Department:       req.Department,
		Description:      strings.TrimSpace(req.Description),
		PhotoRef:         nonEmpty(req.PhotoRef),
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		LocationAddress:  nonEmpty(req.LocationAddress),
		Status:           models.StatusPending,
		ValidationStatus: models.ValidationPending,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	h := &models.ComplaintHistory{
		Operation: models.OpFile,
		ToStatus:  models.StatusPending,
		Actor:     actorOr(ctx, req.CitizenID),
		CreatedAt: now,
	}

	if err := s.Storage.CreateComplaint(ctx, c, h); err != nil {
		s.observe(models.OpFile, err)
		return nil, fmt.Errorf("file complaint: %w", err)
	}
	s.observe(models.OpFile, nil)
	log.Printf("INFO: Complaint %s filed by citizen %s (%s).", c.ID, c.CitizenID, c.Department)

	s.notify(ctx, models.NewComplaintEvent(models.OpFile, c, "", now))
	return c, nil
}

// Validate approves a complaint for assignment.
func (s *Service) Validate(ctx context.Context, id string) (*models.Complaint, error) {
	return s.apply(ctx, id, models.OpValidate, "", nil, validateTransition(ActorFrom(ctx)))
}

// Reject closes a complaint at the validation gate.
func (s *Service) Reject(ctx context.Context, id, reason string) (*models.Complaint, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		err := apperrors.NewInvalidArgumentError("reason", "rejection reason must not be empty")
		s.observe(models.OpReject, err)
		return nil, err
	}
	return s.apply(ctx, id, models.OpReject, reason, map[string]any{"reason": reason}, rejectTransition(ActorFrom(ctx), reason))
}

// AssignRequest carries the assignment parameters. Deadline, when set,
// replaces the computed deadline verbatim.
type AssignRequest struct {
	OfficerID uint            `json:"officerId"`
	Priority  models.Priority `json:"priority"`
	Deadline  *time.Time      `json:"deadline,omitempty"`
}

// Assign gives the complaint to an approved officer and starts its deadline.
func (s *Service) Assign(ctx context.Context, id string, req AssignRequest) (*models.Complaint, error) {
	if !req.Priority.Valid() {
		err := apperrors.NewInvalidArgumentError("priority", fmt.Sprintf("unknown priority %q", req.Priority))
		s.observe(models.OpAssign, err)
		return nil, err
	}
	if req.OfficerID == 0 {
		err := apperrors.NewInvalidArgumentError("officerId", "must be set")
		s.observe(models.OpAssign, err)
		return nil, err
	}

	officer, err := s.Officers.GetOfficer(ctx, req.OfficerID)
	if err != nil {
		s.observe(models.OpAssign, err)
		return nil, fmt.Errorf("assign complaint %s: %w", id, err)
	}
	if !officer.IsApproved() {
		err := apperrors.NewPreconditionError("assign.requires_approved_officer",
			fmt.Sprintf("officer %d is %s", officer.ID, officer.Status))
		s.observe(models.OpAssign, err)
		return nil, err
	}

	details := map[string]any{"officerId": officer.ID, "priority": req.Priority}
	if req.Deadline != nil {
		details["deadlineOverride"] = req.Deadline.UTC().Format(time.RFC3339)
	}
	return s.apply(ctx, id, models.OpAssign, "", details, assignTransition(officer, req.Priority, req.Deadline))
}

// UpdateStatus moves a complaint to IN_PROGRESS or RESOLVED.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Complaint, error) {
	if status != models.StatusInProgress && status != models.StatusResolved {
		err := apperrors.NewInvalidArgumentError("status", fmt.Sprintf("status must be IN_PROGRESS or RESOLVED, got %q", status))
		s.observe(models.OpUpdateStatus, err)
		return nil, err
	}
	return s.apply(ctx, id, models.OpUpdateStatus, "", map[string]any{"status": status}, updateStatusTransition(status))
}

// Escalate flags the complaint for elevated attention. An empty reason uses
// the default manual escalation text.
func (s *Service) Escalate(ctx context.Context, id, reason string) (*models.Complaint, error) {
	reason = defaultEscalationReason(strings.TrimSpace(reason))
	return s.apply(ctx, id, models.OpEscalate, reason, map[string]any{"reason": reason}, escalateTransition(reason))
}

// UploadProof stores a proof-of-work reference.
func (s *Service) UploadProof(ctx context.Context, id, ref string) (*models.Complaint, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		err := apperrors.NewInvalidArgumentError("proofOfWorkRef", "must not be empty")
		s.observe(models.OpUploadProof, err)
		return nil, err
	}
	return s.apply(ctx, id, models.OpUploadProof, "", map[string]any{"ref": ref}, uploadProofTransition(ref))
}

// Rate stores the citizen's rating of a resolved complaint. It can succeed
// only once per complaint.
func (s *Service) Rate(ctx context.Context, id string, rating int, feedback *string) (*models.Complaint, error) {
	if rating < config.MinRating || rating > config.MaxRating {
		err := apperrors.NewInvalidArgumentError("rating",
			fmt.Sprintf("must be between %d and %d, got %d", config.MinRating, config.MaxRating, rating))
		s.observe(models.OpRate, err)
		return nil, err
	}
	return s.apply(ctx, id, models.OpRate, "", map[string]any{"rating": rating}, rateTransition(rating, nonEmpty(feedback)))
}

// Reopen returns a resolved complaint to IN_PROGRESS.
func (s *Service) Reopen(ctx context.Context, id, reason string) (*models.Complaint, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		err := apperrors.NewInvalidArgumentError("reason", "reopen reason must not be empty")
		s.observe(models.OpReopen, err)
		return nil, err
	}
	return s.apply(ctx, id, models.OpReopen, reason, map[string]any{"reason": reason}, reopenTransition(reason))
}

// MarkSatisfied records whether the citizen is satisfied with a rated resolution.
func (s *Service) MarkSatisfied(ctx context.Context, id string, satisfied bool) (*models.Complaint, error) {
	return s.apply(ctx, id, models.OpSatisfy, "", map[string]any{"satisfied": satisfied}, markSatisfiedTransition(satisfied))
}

// apply runs one guarded transition under the per-complaint lock and, once
// committed, publishes the resulting event.
func (s *Service) apply(ctx context.Context, id string, op models.Operation, reason string, details map[string]any, t transition) (*models.Complaint, error) {
	release, err := s.Locker.Acquire(ctx, id, s.LockTTL)
	if err != nil {
		s.observe(op, err)
		return nil, fmt.Errorf("%s complaint %s: %w", op, id, err)
	}

	now := s.now()
	actor := ActorFrom(ctx)
	var from models.Status

	updated, err := s.Storage.UpdateComplaint(ctx, id, func(c *models.Complaint) (*models.ComplaintHistory, error) {
		from = c.Status
		fields, err := t(c, now)
		if err != nil {
			return nil, err
		}
		c.UpdatedAt = now
		return &models.ComplaintHistory{
			Operation:     op,
			FromStatus:    from,
			ToStatus:      c.Status,
			ChangedFields: append(fields, "updatedAt"),
			Actor:         actor,
			Details:       encodeDetails(details),
			CreatedAt:     now,
		}, nil
	})
	release()
	s.observe(op, err)
	if err != nil {
		if apperrors.Kind(err) == "internal" {
			log.Printf("ERROR: Failed to %s complaint %s: %v", op, id, err)
		}
		return nil, fmt.Errorf("%s complaint %s: %w", op, id, err)
	}

	log.Printf("INFO: Complaint %s: %s (%s -> %s).", id, op, from, updated.Status)
	s.notify(ctx, models.NewComplaintEvent(op, updated, reason, now))
	return updated, nil
}

// GetComplaint loads one complaint.
func (s *Service) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	return s.Storage.GetComplaint(ctx, id)
}

// ListComplaints returns complaints matching q, most recent first.
func (s *Service) ListComplaints(ctx context.Context, q storage.ComplaintQuery) ([]models.Complaint, error) {
	return s.Storage.FindComplaints(ctx, q)
}

// CheckDuplicates lists plausible duplicates of a complaint, most recent first.
func (s *Service) CheckDuplicates(ctx context.Context, id string) ([]models.Complaint, error) {
	target, err := s.Storage.GetComplaint(ctx, id)
	if err != nil {
		return nil, err
	}

	policy := DefaultDuplicatePolicy
	after := target.CreatedAt.Add(-policy.RecencyWindow)
	before := target.CreatedAt.Add(policy.RecencyWindow)
	candidates, err := s.Storage.FindComplaints(ctx, storage.ComplaintQuery{
		Department:    target.Department,
		CreatedAfter:  &after,
		CreatedBefore: &before,
	})
	if err != nil {
		return nil, fmt.Errorf("check duplicates of %s: %w", id, err)
	}

	duplicates := FindDuplicates(target, candidates, policy)
	metrics.DuplicateCandidatesTotal.Add(float64(len(duplicates)))
	return duplicates, nil
}

// GetOfficersWorkload ranks approved officers, optionally of one department,
// by their current number of active complaints.
func (s *Service) GetOfficersWorkload(ctx context.Context, department models.Department) ([]OfficerWorkload, error) {
	if department != "" && !department.Valid() {
		return nil, apperrors.NewInvalidArgumentError("department", fmt.Sprintf("unknown department %q", department))
	}

	officers, err := s.Officers.ListApprovedOfficers(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("list officers: %w", err)
	}
	ids := make([]uint, 0, len(officers))
	for _, o := range officers {
		ids = append(ids, o.ID)
	}

	counts, err := s.Storage.CountActiveByOfficer(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count officer workload: %w", err)
	}
	return RankOfficers(officers, counts), nil
}

// GetStatistics aggregates every stored complaint.
func (s *Service) GetStatistics(ctx context.Context) (Statistics, error) {
	all, err := s.Storage.FindComplaints(ctx, storage.ComplaintQuery{})
	if err != nil {
		return Statistics{}, fmt.Errorf("load complaints for statistics: %w", err)
	}
	return ComputeStatistics(all, s.now()), nil
}

// EscalationHistory returns the escalation audit rows of a complaint.
func (s *Service) EscalationHistory(ctx context.Context, id string) ([]models.ComplaintHistory, error) {
	if _, err := s.Storage.GetComplaint(ctx, id); err != nil {
		return nil, err
	}
	return s.Storage.ListHistory(ctx, id, models.OpEscalate)
}

// History returns the full audit trail of a complaint, oldest first.
func (s *Service) History(ctx context.Context, id string) ([]models.ComplaintHistory, error) {
	if _, err := s.Storage.GetComplaint(ctx, id); err != nil {
		return nil, err
	}
	return s.Storage.ListHistory(ctx, id, "")
}

// OfficerRatings summarises the ratings of complaints assigned to an officer.
func (s *Service) OfficerRatings(ctx context.Context, officerID uint) (OfficerRatingStats, error) {
	if _, err := s.Officers.GetOfficer(ctx, officerID); err != nil {
		return OfficerRatingStats{}, err
	}
	complaints, err := s.Storage.FindComplaints(ctx, storage.ComplaintQuery{OfficerID: &officerID})
	if err != nil {
		return OfficerRatingStats{}, fmt.Errorf("load complaints of officer %d: %w", officerID, err)
	}
	return ComputeOfficerRatings(officerID, complaints), nil
}

// EscalationReport summarises one EscalateOverdue run.
type EscalationReport struct {
	Checked   int      `json:"checked"`
	Escalated []string `json:"escalated"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
}

// EscalateOverdue escalates every open, not yet escalated complaint whose
// deadline has passed. Complaints changed concurrently are skipped; other
// failures are counted and logged without stopping the run.
func (s *Service) EscalateOverdue(ctx context.Context) (EscalationReport, error) {
	report := EscalationReport{Escalated: make([]string, 0)}
	now := s.now()
	notEscalated := false

	overdue, err := s.Storage.FindComplaints(ctx, storage.ComplaintQuery{
		Statuses:       []models.Status{models.StatusPending, models.StatusInProgress},
		Escalated:      &notEscalated,
		DeadlineBefore: &now,
	})
	if err != nil {
		return report, fmt.Errorf("find overdue complaints: %w", err)
	}
	report.Checked = len(overdue)
	if len(overdue) > 0 {
		log.Printf("INFO: Found %d overdue complaints to escalate.", len(overdue))
	}

	sysCtx := WithActor(ctx, SystemActor)
	for _, c := range overdue {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		reason := fmt.Sprintf(config.AutoEscalationReasonFmt, c.Deadline.UTC().Format(time.RFC3339))
		_, err := s.Escalate(sysCtx, c.ID, reason)
		switch {
		case err == nil:
			report.Escalated = append(report.Escalated, c.ID)
			metrics.AutoEscalationsTotal.Inc()
		case apperrors.IsConflict(err), apperrors.IsPrecondition(err), apperrors.IsNotFound(err):
			report.Skipped++
		default:
			report.Failed++
			log.Printf("ERROR: Failed to escalate complaint %s: %v", c.ID, err)
		}
	}
	return report, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) notify(ctx context.Context, ev models.ComplaintEvent) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, ev); err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues("complaint").Inc()
		log.Printf("WARNING: Failed to publish %s event for complaint %s: %v", ev.Type, ev.ComplaintID, err)
	}
}

func (s *Service) observe(op models.Operation, err error) {
	metrics.TransitionsTotal.WithLabelValues(string(op), apperrors.Kind(err)).Inc()
}

func encodeDetails(details map[string]any) datatypes.JSON {
	if len(details) == 0 {
		return nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func actorOr(ctx context.Context, fallback string) string {
	if actor := ActorFrom(ctx); actor != "" {
		return actor
	}
	return fallback
}
