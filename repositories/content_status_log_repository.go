package repositories

import (
	"context"

	"content-review-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentStatusLogRepository interface {
	// Create appends entry. Replaying an event id already logged is a no-op.
	Create(ctx context.Context, entry *models.ContentStatusLog) error
	ListByContent(ctx context.Context, content models.ContentIdentity) ([]models.ContentStatusLog, error)
}

type contentStatusLogRepository struct {
	db *gorm.DB
}

func NewContentStatusLogRepository(db *gorm.DB) ContentStatusLogRepository {
	return &contentStatusLogRepository{db: db}
}

func (r *contentStatusLogRepository) Create(ctx context.Context, entry *models.ContentStatusLog) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
}

func (r *contentStatusLogRepository) ListByContent(ctx context.Context, content models.ContentIdentity) ([]models.ContentStatusLog, error) {
	var entries []models.ContentStatusLog
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND content_type = ?", content.ContentID, content.ContentType).
		Order("occurred_at asc").
		Find(&entries).Error
	return entries, err
}
