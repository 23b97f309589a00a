package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Issue statuses rendered as Kanban columns.
const (
	IssueStatusTodo       = "todo"
	IssueStatusInProgress = "in_progress"
	IssueStatusInReview   = "in_review"
	IssueStatusDone       = "done"
)

// ValidIssueStatus reports whether the status belongs to the closed status set.
func ValidIssueStatus(status string) bool {
	switch status {
	case IssueStatusTodo, IssueStatusInProgress, IssueStatusInReview, IssueStatusDone:
		return true
	}
	return false
}

// Document is a collaborative text document. Content holds the editor's JSON
// body; the realtime sync layer is external, the persisted state lives here.
type Document struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Content   datatypes.JSON `json:"content"`
	TeamID    string         `gorm:"size:36;index;not null" json:"team_id"`
	AuthorID  string         `gorm:"size:36;index;not null" json:"author_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Comments []Comment         `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Versions []DocumentVersion `gorm:"constraint:OnDelete:CASCADE" json:"versions,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// DocumentVersion is an immutable snapshot of a document body, written just
// before an update overwrites it. Version numbers count up from 1 per
// document.
type DocumentVersion struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	DocumentID string         `gorm:"size:36;not null;uniqueIndex:idx_document_version" json:"document_id"`
	Version    int            `gorm:"not null;uniqueIndex:idx_document_version" json:"version"`
	Content    datatypes.JSON `json:"content"`
	CreatedBy  string         `gorm:"size:36;not null" json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (v *DocumentVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// Project is a container for issues on a team's Kanban board.
type Project struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:32;not null;default:active" json:"status"`
	TeamID      string    `gorm:"size:36;index;not null" json:"team_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Issues []Issue `gorm:"constraint:OnDelete:CASCADE" json:"issues,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Issue is a tracked work item within a project.
type Issue struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:32;not null;default:todo;index" json:"status"`
	Priority    string    `gorm:"size:16;not null;default:medium" json:"priority"`
	Type        string    `gorm:"size:16;not null;default:task" json:"type"`
	ProjectID   string    `gorm:"size:36;index;not null" json:"project_id"`
	TeamID      string    `gorm:"size:36;index;not null" json:"team_id"`
	AssigneeID  *string   `gorm:"size:36;index" json:"assignee_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Comments []Comment `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
