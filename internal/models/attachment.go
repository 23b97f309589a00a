package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment is a metadata row for a file stored in the external object
// store. Exactly one of DocumentID, IssueID, CommentID is set.
type Attachment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	URL        string    `gorm:"size:512;not null" json:"url"`
	Type       string    `gorm:"size:128;not null" json:"type"`
	Size       int64     `gorm:"not null" json:"size"`
	UploadedBy string    `gorm:"size:36;index;not null" json:"uploaded_by"`
	DocumentID *string   `gorm:"size:36;index" json:"document_id"`
	IssueID    *string   `gorm:"size:36;index" json:"issue_id"`
	CommentID  *string   `gorm:"size:36;index" json:"comment_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none was supplied.
func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
