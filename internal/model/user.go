package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role tags an identity. It grants nothing beyond being recorded.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an authenticated identity in the system.
type User struct {
	ID                uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name              string     `json:"name" gorm:"size:50;not null"`
	Email             string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash      string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Bio               string     `json:"bio" gorm:"size:500"`
	Avatar            string     `json:"avatar" gorm:"size:512"`
	Role              Role       `json:"role" gorm:"type:varchar(10);not null;default:'user'"`
	Active            bool       `json:"active" gorm:"not null;default:true"`
	LastLogin         *time.Time `json:"lastLogin,omitempty"`
	PasswordChangedAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// NormalizeEmail folds an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BeforeCreate sets UUID and defaults before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// BeforeSave keeps the stored email case-folded so the unique index is case-insensitive.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// ChangedPasswordAfter reports whether the password changed after the given
// token issue time. Comparison is at second resolution, matching token timestamps.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}
