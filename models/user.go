package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleWriter UserRole = "writer"
	RoleEditor UserRole = "editor"
	RoleAdmin  UserRole = "admin"
)

// IsStaff reports whether the role may moderate content.
func (r UserRole) IsStaff() bool {
	return r == RoleEditor || r == RoleAdmin
}

type User struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Username  string         `json:"username" gorm:"uniqueIndex;not null"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"not null"`
	Role      UserRole       `json:"role" gorm:"default:'writer'"`
	Disabled  bool           `json:"disabled" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u User) Credential() ResolvedUserCredential {
	return ResolvedUserCredential{
		ID:       int64(u.ID),
		Username: u.Username,
		Role:     u.Role,
		Disabled: u.Disabled,
	}
}
