package repositories

import (
	"context"

	"content-review-cms/models"

	"gorm.io/gorm"
)

type ReviewJobRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ReviewJob, error)
	// FindLatestByContent returns the most recently assigned job for content.
	FindLatestByContent(ctx context.Context, content models.ContentIdentity) (*models.ReviewJob, error)
	FindByReviewer(ctx context.Context, reviewerID int64, statuses ...models.ReviewStatus) ([]models.ReviewJob, error)
	FindByStatus(ctx context.Context, status models.ReviewStatus) ([]models.ReviewJob, error)
	// Create inserts job. It returns ErrDuplicate when content already has a
	// NOT_REVIEWED job.
	Create(ctx context.Context, job *models.ReviewJob) error
	Save(ctx context.Context, job *models.ReviewJob) error
}

type reviewJobRepository struct {
	db *gorm.DB
}

func NewReviewJobRepository(db *gorm.DB) ReviewJobRepository {
	return &reviewJobRepository{db: db}
}

func (r *reviewJobRepository) FindByID(ctx context.Context, id uint) (*models.ReviewJob, error) {
	var job models.ReviewJob
	err := r.db.WithContext(ctx).First(&job, id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *reviewJobRepository) FindLatestByContent(ctx context.Context, content models.ContentIdentity) (*models.ReviewJob, error) {
	var job models.ReviewJob
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND content_type = ?", content.ContentID, content.ContentType).
		Order("assigned_time desc").
		Order("id desc").
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *reviewJobRepository) FindByReviewer(ctx context.Context, reviewerID int64, statuses ...models.ReviewStatus) ([]models.ReviewJob, error) {
	var jobs []models.ReviewJob
	query := r.db.WithContext(ctx).Where("reviewer_id = ?", reviewerID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Order("assigned_time asc").Order("id asc").Find(&jobs).Error
	return jobs, err
}

func (r *reviewJobRepository) FindByStatus(ctx context.Context, status models.ReviewStatus) ([]models.ReviewJob, error) {
	var jobs []models.ReviewJob
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("id asc").Find(&jobs).Error
	return jobs, err
}

func (r *reviewJobRepository) Create(ctx context.Context, job *models.ReviewJob) error {
	err := r.db.WithContext(ctx).Create(job).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *reviewJobRepository) Save(ctx context.Context, job *models.ReviewJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}
