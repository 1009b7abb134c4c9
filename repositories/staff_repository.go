package repositories

import (
	"context"

	"content-review-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StaffRepository interface {
	// Save inserts staff or overwrites the type and active flag of an
	// existing row for the same user.
	Save(ctx context.Context, staff *models.Staff) error
	FindByUserID(ctx context.Context, userID int64) (*models.Staff, error)
	GetActiveByType(ctx context.Context, staffType models.StaffType) ([]models.Staff, error)
}

type staffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Save(ctx context.Context, staff *models.Staff) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "active", "updated_at"}),
	}).Create(staff).Error
}

func (r *staffRepository) FindByUserID(ctx context.Context, userID int64) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) GetActiveByType(ctx context.Context, staffType models.StaffType) ([]models.Staff, error) {
	var staff []models.Staff
	err := r.db.WithContext(ctx).
		Where("type = ? AND active = ?", staffType, true).
		Order("user_id asc").
		Find(&staff).Error
	return staff, err
}
