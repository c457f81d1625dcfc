package storage

import (
	apperrors "civicdesk/backend/internal/errors"
	"civicdesk/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errVersionMismatch = errors.New("version changed during update")

// CreateComplaint inserts the complaint and its filing history row atomically.
func (s *Service) CreateComplaint(ctx context.Context, c *models.Complaint, h *models.ComplaintHistory) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			log.Printf("ERROR: Failed to save complaint for citizen %s: %v", c.CitizenID, err)
			return err
		}
		if h == nil {
			return nil
		}
		h.ComplaintID = c.ID
		return tx.Create(h).Error
	})
}

// GetComplaint loads a complaint by id.
func (s *Service) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("complaint", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateComplaint locks the row with SELECT ... FOR UPDATE, applies mutate and
// writes the result guarded by the version the row was read at.
func (s *Service) UpdateComplaint(ctx context.Context, id string, mutate MutateFunc) (*models.Complaint, error) {
	var updated models.Complaint

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Complaint
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("complaint", id)
		}
		if err != nil {
			return err
		}

		readVersion := current.Version
		h, err := mutate(&current)
		if err != nil {
			return err
		}
		current.Version = readVersion + 1

		res := tx.Model(&current).
			Where("version = ?", readVersion).
			Select("*").
			Omit("id", "created_at").
			Updates(&current)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NewConflictError(id, errVersionMismatch)
		}

		if h != nil {
			h.ComplaintID = id
			if err := tx.Create(h).Error; err != nil {
				return fmt.Errorf("failed to write history: %w", err)
			}
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// FindComplaints runs a filtered query ordered by creation time, newest first.
func (s *Service) FindComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error) {
	tx := s.DB.WithContext(ctx).Model(&models.Complaint{})

	if q.Department != "" {
		tx = tx.Where("department = ?", q.Department)
	}
	if q.CitizenID != "" {
		tx = tx.Where("citizen_id = ?", q.CitizenID)
	}
	if q.OfficerID != nil {
		tx = tx.Where("assigned_officer_id = ?", *q.OfficerID)
	}
	if len(q.Statuses) > 0 {
		tx = tx.Where("status IN ?", q.Statuses)
	}
	if q.CreatedAfter != nil {
		tx = tx.Where("created_at >= ?", *q.CreatedAfter)
	}
	if q.CreatedBefore != nil {
		tx = tx.Where("created_at <= ?", *q.CreatedBefore)
	}
	if q.Escalated != nil {
		tx = tx.Where("escalated = ?", *q.Escalated)
	}
	if q.DeadlineBefore != nil {
		tx = tx.Where("deadline IS NOT NULL AND deadline < ?", *q.DeadlineBefore)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var complaints []models.Complaint
	if err := tx.Order("created_at desc").Order("id").Find(&complaints).Error; err != nil {
		log.Printf("ERROR: Failed to query complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// CountActiveByOfficer aggregates PENDING and IN_PROGRESS complaints per officer in one query.
func (s *Service) CountActiveByOfficer(ctx context.Context, officerIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(officerIDs))
	if len(officerIDs) == 0 {
		return counts, nil
	}
	for _, id := range officerIDs {
		counts[id] = 0
	}

	var rows []struct {
		OfficerID uint
		Total     int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Select("assigned_officer_id AS officer_id, COUNT(*) AS total").
		Where("assigned_officer_id IN ?", officerIDs).
		Where("status IN ?", []models.Status{models.StatusPending, models.StatusInProgress}).
		Group("assigned_officer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.OfficerID] = r.Total
	}
	return counts, nil
}

// ListHistory returns the audit trail of a complaint, oldest first.
func (s *Service) ListHistory(ctx context.Context, complaintID string, op models.Operation) ([]models.ComplaintHistory, error) {
	tx := s.DB.WithContext(ctx).Where("complaint_id = ?", complaintID)
	if op != "" {
		tx = tx.Where("operation = ?", op)
	}

	var history []models.ComplaintHistory
	if err := tx.Order("created_at asc").Order("id asc").Find(&history).Error; err != nil {
		log.Printf("ERROR: Failed to get history for complaint %s: %v", complaintID, err)
		return nil, err
	}
	return history, nil
}
