package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"content-review-cms/models"
	"content-review-cms/repositories"

	"gorm.io/gorm"
)

type StaffService interface {
	AddStaff(ctx context.Context, userID int64, staffType models.StaffType) (*models.Staff, error)
	Deactivate(ctx context.Context, userID int64) (*models.Staff, error)
	ListActive(ctx context.Context, staffType models.StaffType) ([]models.Staff, error)
}

type staffService struct {
	staffRepo repositories.StaffRepository
	userRepo  repositories.UserRepository
	allocator *ReviewerAllocator
	logger    *slog.Logger
}

func NewStaffService(staffRepo repositories.StaffRepository, userRepo repositories.UserRepository, allocator *ReviewerAllocator, logger *slog.Logger) StaffService {
	return &staffService{
		staffRepo: staffRepo,
		userRepo:  userRepo,
		allocator: allocator,
		logger:    logger,
	}
}

// AddStaff enrolls or reactivates a user as staff. Reviewers join the
// allocator at load 0.
func (s *staffService) AddStaff(ctx context.Context, userID int64, staffType models.StaffType) (*models.Staff, error) {
	if _, err := s.userRepo.GetByID(ctx, uint(userID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound(fmt.Sprintf("user %d not found", userID))
		}
		return nil, err
	}

	staff := &models.Staff{UserID: userID, Type: staffType, Active: true}
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, err
	}

	if staffType == models.StaffReviewer {
		if err := s.allocator.OnReviewerAdded(ctx, userID); err != nil {
			return nil, err
		}
	} else if err := s.allocator.OnReviewerRemoved(ctx, userID); err != nil {
		return nil, err
	}

	s.logger.Info("staff added",
		"event", "staff_added",
		"module", "services",
		"user_id", userID,
		"type", staffType,
	)
	return staff, nil
}

// Deactivate stops new assignments to the user. Jobs already assigned stay
// with them.
func (s *staffService) Deactivate(ctx context.Context, userID int64) (*models.Staff, error) {
	staff, err := s.staffRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound(fmt.Sprintf("staff %d not found", userID))
		}
		return nil, err
	}
	staff.Active = false
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, err
	}
	if err := s.allocator.OnReviewerRemoved(ctx, userID); err != nil {
		return nil, err
	}

	s.logger.Info("staff deactivated",
		"event", "staff_deactivated",
		"module", "services",
		"user_id", userID,
	)
	return staff, nil
}

func (s *staffService) ListActive(ctx context.Context, staffType models.StaffType) ([]models.Staff, error) {
	return s.staffRepo.GetActiveByType(ctx, staffType)
}
