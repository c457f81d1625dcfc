package storage

import (
	apperrors "civicdesk/backend/internal/errors"
	"civicdesk/backend/internal/models"
	"context"
	"errors"
	"log"
	"strconv"

	"gorm.io/gorm"
)

// ListApprovedOfficers returns approved officers ordered by id, optionally
// restricted to one department.
func (s *Service) ListApprovedOfficers(ctx context.Context, department models.Department) ([]models.Officer, error) {
	tx := s.DB.WithContext(ctx).Where("status = ?", models.OfficerApproved)
	if department != "" {
		tx = tx.Where("department = ?", department)
	}

	var officers []models.Officer
	if err := tx.Order("id asc").Find(&officers).Error; err != nil {
		log.Printf("ERROR: Failed to list approved officers: %v", err)
		return nil, err
	}
	return officers, nil
}

// GetOfficer loads an officer by id.
func (s *Service) GetOfficer(ctx context.Context, id uint) (*models.Officer, error) {
	var officer models.Officer
	err := s.DB.WithContext(ctx).First(&officer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("officer", strconv.FormatUint(uint64(id), 10))
	}
	if err != nil {
		return nil, err
	}
	return &officer, nil
}

// SaveOfficer inserts or updates an officer record. Used by the admin CLI only.
func (s *Service) SaveOfficer(ctx context.Context, officer *models.Officer) error {
	return s.DB.WithContext(ctx).Save(officer).Error
}

// ApproveOfficer marks an officer as eligible for assignments.
func (s *Service) ApproveOfficer(ctx context.Context, id uint) (*models.Officer, error) {
	officer, err := s.GetOfficer(ctx, id)
	if err != nil {
		return nil, err
	}
	officer.Status = models.OfficerApproved
	if err := s.DB.WithContext(ctx).Save(officer).Error; err != nil {
		return nil, err
	}
	log.Printf("INFO: Officer %d (%s) approved for %s.", officer.ID, officer.Name, officer.Department)
	return officer, nil
}
