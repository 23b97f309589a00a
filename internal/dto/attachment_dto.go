package dto

import (
	"time"

	"github.com/collabflow/collabflow-api/internal/models"
)

// AttachmentListQuery selects the parent entity whose attachments to list.
type AttachmentListQuery struct {
	DocumentID *string `query:"document_id" validate:"omitempty,max=36"`
	IssueID    *string `query:"issue_id" validate:"omitempty,max=36"`
	CommentID  *string `query:"comment_id" validate:"omitempty,max=36"`
}

// AttachmentResponse is the serialized metadata of an uploaded file.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedBy string    `json:"uploaded_by"`
	DocumentID *string   `json:"document_id,omitempty"`
	IssueID    *string   `json:"issue_id,omitempty"`
	CommentID  *string   `json:"comment_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAttachmentResponse converts an attachment model into a DTO.
func NewAttachmentResponse(attachment models.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         attachment.ID,
		Name:       attachment.Name,
		URL:        attachment.URL,
		Type:       attachment.Type,
		Size:       attachment.Size,
		UploadedBy: attachment.UploadedBy,
		DocumentID: attachment.DocumentID,
		IssueID:    attachment.IssueID,
		CommentID:  attachment.CommentID,
		CreatedAt:  attachment.CreatedAt,
	}
}

// NewAttachmentResponseSlice converts attachment models into DTOs.
func NewAttachmentResponseSlice(items []models.Attachment) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewAttachmentResponse(item))
	}
	return out
}
