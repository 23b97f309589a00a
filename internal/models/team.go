package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team member roles. The owner role cannot be reassigned or removed through
// the member-management surface.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// ValidRole reports whether the role belongs to the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// Team groups users around shared documents, projects and chat.
type Team struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Members []TeamMember `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TeamMember joins a user to a team with a role. The set of members forms
// the roster against which @mentions resolve.
type TeamMember struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID   string    `gorm:"size:36;not null;uniqueIndex:idx_team_user" json:"team_id"`
	UserID   string    `gorm:"size:36;not null;uniqueIndex:idx_team_user" json:"user_id"`
	Role     string    `gorm:"size:16;not null;default:member" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
