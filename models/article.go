package models

import (
	"time"

	"gorm.io/gorm"
)

// Article is the ARTICLE content kind. Its visibility lives in ContentMetadata.
type Article struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	AuthorID  uint           `json:"author_id" gorm:"not null;index"`
	Author    User           `json:"author" gorm:"foreignKey:AuthorID"`
	Title     string         `json:"title" gorm:"not null"`
	Content   string         `json:"content" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (a Article) Identity() ContentIdentity {
	return ContentIdentity{ContentID: int64(a.ID), ContentType: ContentTypeArticle}
}

// ArticleView is an article together with its workflow state.
type ArticleView struct {
	Article  Article          `json:"article"`
	Metadata *ContentMetadata `json:"metadata,omitempty"`
}

// ArticleListParams are the query parameters of the article listing.
type ArticleListParams struct {
	Page      int           `form:"page" validate:"gte=0"`
	Limit     int           `form:"limit" validate:"gte=0,lte=100"`
	AuthorID  uint          `form:"author_id"`
	Status    ContentStatus `form:"status" validate:"omitempty,oneof=DRAFT REVIEWING PUBLISHED HIDE FORBIDDEN REVIEW_REJECTED DELETED"`
	SortBy    string        `form:"sort_by" validate:"omitempty,oneof=created_at updated_at title"`
	SortOrder string        `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}
