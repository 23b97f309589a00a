package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types. Notifications are created only by server-side helpers,
// never directly by a client.
const (
	NotificationMention     = "mention"
	NotificationComment     = "comment"
	NotificationAssignment  = "assignment"
	NotificationInvitation  = "invitation"
	NotificationUpdate      = "update"
	NotificationIssueUpdate = "issue_update"
)

// ValidNotificationType reports whether the type belongs to the closed enum.
func ValidNotificationType(kind string) bool {
	switch kind {
	case NotificationMention, NotificationComment, NotificationAssignment,
		NotificationInvitation, NotificationUpdate, NotificationIssueUpdate:
		return true
	}
	return false
}

// Comment is user-authored text attached to exactly one document or issue.
// Mentions holds the resolved user ids extracted from the content at create
// time, deduplicated and in insertion order.
type Comment struct {
	ID         string                      `gorm:"primaryKey;size:36" json:"id"`
	Content    string                      `gorm:"type:text;not null" json:"content"`
	AuthorID   string                      `gorm:"size:36;index;not null" json:"author_id"`
	DocumentID *string                     `gorm:"size:36;index" json:"document_id"`
	IssueID    *string                     `gorm:"size:36;index" json:"issue_id"`
	ParentID   *string                     `gorm:"size:36;index" json:"parent_id"`
	Mentions   datatypes.JSONSlice[string] `json:"mentions"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`

	Author    User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies   []Comment  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
	Reactions []Reaction `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Message is the team-chat analogue of Comment: always scoped to exactly one
// team, never threaded.
type Message struct {
	ID        string                      `gorm:"primaryKey;size:36" json:"id"`
	TeamID    string                      `gorm:"size:36;index;not null" json:"team_id"`
	Content   string                      `gorm:"type:text;not null" json:"content"`
	AuthorID  string                      `gorm:"size:36;index;not null" json:"author_id"`
	Mentions  datatypes.JSONSlice[string] `json:"mentions"`
	CreatedAt time.Time                   `json:"created_at"`

	Author    User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Reactions []Reaction `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Notification is an in-app notification row owned by its recipient. Read
// only ever transitions false to true.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;index;not null" json:"user_id"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Link      *string   `gorm:"size:512" json:"link"`
	Read      bool      `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// Reaction is a single emoji reaction by one user on exactly one target.
// The composite unique indexes enforce at most one row per (emoji, user,
// target) at the storage layer, so the toggle never races itself.
type Reaction struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Emoji      string    `gorm:"size:32;not null;uniqueIndex:idx_reaction_comment;uniqueIndex:idx_reaction_document;uniqueIndex:idx_reaction_message" json:"emoji"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_reaction_comment;uniqueIndex:idx_reaction_document;uniqueIndex:idx_reaction_message" json:"user_id"`
	CommentID  *string   `gorm:"size:36;index;uniqueIndex:idx_reaction_comment" json:"comment_id"`
	DocumentID *string   `gorm:"size:36;index;uniqueIndex:idx_reaction_document" json:"document_id"`
	MessageID  *string   `gorm:"size:36;index;uniqueIndex:idx_reaction_message" json:"message_id"`
	CreatedAt  time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
