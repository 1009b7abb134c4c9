package models

import "time"

type StaffType string

const (
	StaffReviewer StaffType = "REVIEWER"
	StaffAdmin    StaffType = "ADMIN"
)

type Staff struct {
	UserID    int64     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Type      StaffType `json:"type" gorm:"not null;size:40;index"`
	Active    bool      `json:"active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Staff) TableName() string {
	return "staff"
}
