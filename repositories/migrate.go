package repositories

import (
	"content-review-cms/models"

	"gorm.io/gorm"
)

// liveJobIndex keeps at most one NOT_REVIEWED job per content. Partial indexes
// are understood by both postgres and sqlite.
const liveJobIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uq_review_jobs_live
	ON review_jobs (content_id, content_type) WHERE status = 'NOT_REVIEWED'`

// Migrate creates or updates every table the workflow needs.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Article{},
		&models.Staff{},
		&models.ContentMetadata{},
		&models.ReviewJob{},
		&models.ContentStatusLog{},
	); err != nil {
		return err
	}
	return db.Exec(liveJobIndex).Error
}
