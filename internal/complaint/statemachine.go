package complaint

import (
	"civicdesk/backend/internal/config"
	apperrors "civicdesk/backend/internal/errors"
	"civicdesk/backend/internal/models"
	"fmt"
	"log"
	"time"
)

// transition checks its guards against c and, only if all of them hold,
// writes the new state. It returns the JSON names of the fields it wrote.
type transition func(c *models.Complaint, now time.Time) ([]string, error)

func validateTransition(actor string) transition {
	return func(c *models.Complaint, now time.Time) ([]string, error) {
		if c.ValidationStatus != models.ValidationPending {
			return nil, apperrors.NewPreconditionError("validate.requires_pending_validation",
				fmt.Sprintf("complaint validation status is %q", c.ValidationStatus))
		}
		c.ValidationStatus = models.ValidationApproved
		c.ValidatedAt = &now
		fields := []string{"validationStatus", "validatedAt"}
		if actor != "" {
			c.ValidatedBy = &actor
			fields = append(fields, "validatedBy")
		}
		return fields, nil
	}
}

// rejectTransition records the reviewing admin the same way validation does.
func rejectTransition(actor, reason string) transition {
	return func(c *models.Complaint, now time.Time) ([]string, error) {
		if c.ValidationStatus != models.ValidationPending {
			return nil, apperrors.NewPreconditionError("reject.requires_pending_validation",
				fmt.Sprintf("complaint validation status is %q", c.ValidationStatus))
		}
		c.ValidationStatus = models.ValidationRejected
		c.Status = models.StatusRejected
		c.RejectionReason = &reason
		c.ValidatedAt = &now
		fields := []string{"validationStatus", "status", "rejectionReason", "validatedAt"}
		if actor != "" {
			c.ValidatedBy = &actor
			fields = append(fields, "validatedBy")
		}
		return fields, nil
	}
}

func assignTransition(officer *models.Officer, priority models.Priority, override *time.Time) transition {
	return func(c *models.Complaint, now time.Time) ([]string, error) {
		if c.ValidationStatus != models.ValidationApproved && c.ValidationStatus != "" {
			return nil, apperrors.NewPreconditionError("assign.requires_validated",
				fmt.Sprintf("complaint validation status is %q", c.ValidationStatus))
		}
		if !c.Status.IsActive() {
			return nil, apperrors.NewPreconditionError("assign.requires_open_complaint",
				fmt.Sprintf("complaint status is %s", c.Status))
		}
		if officer.Department != c.Department {
			log.Printf("WARNING: Assigning complaint %s (%s) to officer %d from %s.",
				c.ID, c.Department, officer.ID, officer.Department)
		}

		deadline := ComputeDeadline(now, priority)
		if override != nil {
			deadline = *override
		}

		officerID := officer.ID
		c.AssignedOfficerID = &officerID
		c.AssignedAt = &now
		c.Priority = priority
		c.Deadline = &deadline
		return []string{"assignedOfficerId", "assignedAt", "priority", "deadline"}, nil
	}
}

func updateStatusTransition(target models.Status) transition {
	return func(c *models.Complaint, now time.Time) ([]string, error) {
		switch target {
		case models.StatusInProgress:
			if c.Status != models.StatusPending {
				return nil, apperrors.NewPreconditionError("update_status.in_progress_requires_pending",
					fmt.Sprintf("cannot start work on a %s complaint", c.Status))
			}
			if c.AssignedOfficerID == nil {
				return nil, apperrors.NewPreconditionError("update_status.in_progress_requires_officer",
					"complaint has no assigned officer")
			}
			c.Status = models.StatusInProgress
			return []string{"status"}, nil

		case models.StatusResolved:
			if !c.Status.IsActive() {
				return nil, apperrors.NewPreconditionError("update_status.resolved_requires_open",
					fmt.Sprintf("cannot resolve a %s complaint", c.Status))
			}
			c.Status = models.StatusResolved
			c.ResolvedAt = &now
			return []string{"status", "resolvedAt"}, nil
		}
		return nil, apperrors.NewInvalidArgumentError("status", fmt.Sprintf("unsupported target status %q", target))
	}
}

func escalateTransition(reason string) transition {
	return func(c *models.Complaint, now time.Time) ([]string, error) {
		if c.Status.IsTerminal() {
			return nil, apperrors.NewPreconditionError("escalate.requires_open_complaint",
				fmt.Sprintf("cannot escalate a %s complaint", c.Status))
		}
		if c.Escalated {
			return nil, apperrors.NewPreconditionError("escalate.already_escalated",
				"complaint is already escalated")
		}
		c.Escalated = true
		c.EscalatedAt = &now
		c.EscalationReason = &reason
		return []string{"escalated", "escalatedAt", "escalationReason"}, nil
	}
}

func uploadProofTransition(ref string) transition {
	return func(c *models.Complaint, now time.Time) ([]string, error) {
		if c.Status == models.StatusResolved {
			return nil, apperrors.NewPreconditionError("upload_proof.not_after_resolution",
				"proof of work cannot be changed after resolution")
		}
		c.ProofOfWorkRef = &ref
		c.ProofOfWorkUploadedAt = &now
		return []string{"proofOfWorkRef", "proofOfWorkUploadedAt"}, nil
	}
}

func rateTransition(rating int, feedback *string) transition {
	return func(c *models.Complaint, now time.Time) ([]string, error) {
		if c.Status != models.StatusResolved {
			return nil, apperrors.NewPreconditionError("rate.requires_resolved",
				fmt.Sprintf("only resolved complaints can be rated, status is %s", c.Status))
		}
		if c.Rating != nil {
			return nil, apperrors.NewPreconditionError("rate.already_rated", "complaint was already rated")
		}
		c.Rating = &rating
		c.Feedback = feedback
		c.RatedAt = &now
		return []string{"rating", "feedback", "ratedAt"}, nil
	}
}

// reopenTransition keeps rating and feedback; satisfaction is reset because it
// referred to the resolution being reopened.
func reopenTransition(reason string) transition {
	return func(c *models.Complaint, now time.Time) ([]string, error) {
		if c.Status != models.StatusResolved {
			return nil, apperrors.NewPreconditionError("reopen.requires_resolved",
				fmt.Sprintf("only resolved complaints can be reopened, status is %s", c.Status))
		}
		c.Status = models.StatusInProgress
		c.Reopened = true
		c.ReopenedAt = &now
		c.ReopenReason = &reason
		c.ResolvedAt = nil
		c.Satisfied = false
		c.SatisfiedAt = nil
		return []string{"status", "reopened", "reopenedAt", "reopenReason", "resolvedAt", "satisfied", "satisfiedAt"}, nil
	}
}

func markSatisfiedTransition(satisfied bool) transition {
	return func(c *models.Complaint, now time.Time) ([]string, error) {
		if c.Status != models.StatusResolved {
			return nil, apperrors.NewPreconditionError("mark_satisfied.requires_resolved",
				fmt.Sprintf("only resolved complaints can be marked, status is %s", c.Status))
		}
		if c.Rating == nil {
			return nil, apperrors.NewPreconditionError("mark_satisfied.requires_rating",
				"complaint must be rated before marking satisfaction")
		}
		c.Satisfied = satisfied
		if satisfied {
			c.SatisfiedAt = &now
		} else {
			c.SatisfiedAt = nil
		}
		return []string{"satisfied", "satisfiedAt"}, nil
	}
}

func defaultEscalationReason(reason string) string {
	if reason == "" {
		return config.DefaultEscalationReason
	}
	return reason
}
