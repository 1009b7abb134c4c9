package models

import "time"

// ContentMetadata is the workflow-owned state of one content item. Editors never
// write it directly; it changes only through publish, review and moderation.
type ContentMetadata struct {
	ContentID      int64                 `json:"content_id" gorm:"primaryKey;autoIncrement:false"`
	ContentType    ContentType           `json:"content_type" gorm:"primaryKey;size:40"`
	UserID         int64                 `json:"user_id" gorm:"not null;index"`
	Status         ContentStatus         `json:"status" gorm:"not null;size:40"`
	AccessAuthType ContentAccessAuthType `json:"access_auth_type" gorm:"not null;size:40;default:'PUBLIC'"`
	PasswordHash   string                `json:"-"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func (ContentMetadata) TableName() string {
	return "content_metadata"
}

func (m ContentMetadata) Identity() ContentIdentity {
	return ContentIdentity{ContentID: m.ContentID, ContentType: m.ContentType}
}

// ContentStatusLog is one applied status change, kept for replay and auditing.
type ContentStatusLog struct {
	EventID        string        `json:"event_id" gorm:"primaryKey;size:36"`
	ContentID      int64         `json:"content_id" gorm:"not null;index:idx_status_logs_content"`
	ContentType    ContentType   `json:"content_type" gorm:"not null;size:40;index:idx_status_logs_content"`
	PreviousStatus ContentStatus `json:"previous_status" gorm:"size:40"`
	CurrentStatus  ContentStatus `json:"current_status" gorm:"not null;size:40"`
	OccurredAt     time.Time     `json:"occurred_at" gorm:"not null"`
}
