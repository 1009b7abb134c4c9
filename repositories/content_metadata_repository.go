package repositories

import (
	"context"

	"content-review-cms/models"

	"gorm.io/gorm"
)

type ContentMetadataRepository interface {
	FindByContent(ctx context.Context, content models.ContentIdentity) (*models.ContentMetadata, error)
	Create(ctx context.Context, metadata *models.ContentMetadata) error
	// UpdateAccess changes how content is protected and leaves its status alone.
	UpdateAccess(ctx context.Context, content models.ContentIdentity, authType models.ContentAccessAuthType, passwordHash string) error
	UpdateStatus(ctx context.Context, content models.ContentIdentity, status models.ContentStatus) error
	// CompareAndSetStatus moves content from one status to another and
	// reports whether the row was still in the expected status.
	CompareAndSetStatus(ctx context.Context, content models.ContentIdentity, from, to models.ContentStatus) (bool, error)
}

type contentMetadataRepository struct {
	db *gorm.DB
}

func NewContentMetadataRepository(db *gorm.DB) ContentMetadataRepository {
	return &contentMetadataRepository{db: db}
}

func (r *contentMetadataRepository) FindByContent(ctx context.Context, content models.ContentIdentity) (*models.ContentMetadata, error) {
	var metadata models.ContentMetadata
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND content_type = ?", content.ContentID, content.ContentType).
		First(&metadata).Error
	if err != nil {
		return nil, err
	}
	return &metadata, nil
}

func (r *contentMetadataRepository) Create(ctx context.Context, metadata *models.ContentMetadata) error {
	err := r.db.WithContext(ctx).Create(metadata).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *contentMetadataRepository) UpdateAccess(ctx context.Context, content models.ContentIdentity, authType models.ContentAccessAuthType, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&models.ContentMetadata{}).
		Where("content_id = ? AND content_type = ?", content.ContentID, content.ContentType).
		Select("access_auth_type", "password_hash").
		Updates(models.ContentMetadata{AccessAuthType: authType, PasswordHash: passwordHash})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contentMetadataRepository) UpdateStatus(ctx context.Context, content models.ContentIdentity, status models.ContentStatus) error {
	res := r.db.WithContext(ctx).Model(&models.ContentMetadata{}).
		Where("content_id = ? AND content_type = ?", content.ContentID, content.ContentType).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contentMetadataRepository) CompareAndSetStatus(ctx context.Context, content models.ContentIdentity, from, to models.ContentStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.ContentMetadata{}).
		Where("content_id = ? AND content_type = ? AND status = ?", content.ContentID, content.ContentType, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
