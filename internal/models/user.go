package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account identity referenced by every authored entity.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      *string   `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Image     *string   `gorm:"size:512" json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName returns the name when set, falling back to the email address.
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
