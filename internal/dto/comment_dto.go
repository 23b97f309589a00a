package dto

import (
	"time"

	"github.com/collabflow/collabflow-api/internal/models"
)

// CommentCreateRequest is the payload to create a comment on a document or
// issue. Exactly one of DocumentID and IssueID must be set; TeamID only
// scopes the mention roster.
type CommentCreateRequest struct {
	Content    string  `json:"content" validate:"required,min=1,max=5000"`
	DocumentID *string `json:"document_id" validate:"omitempty,max=36"`
	IssueID    *string `json:"issue_id" validate:"omitempty,max=36"`
	ParentID   *string `json:"parent_id" validate:"omitempty,max=36"`
	TeamID     *string `json:"team_id" validate:"omitempty,max=36"`
}

// CommentListQuery filters the comment listing for one target.
type CommentListQuery struct {
	DocumentID *string `query:"document_id" validate:"omitempty,max=36"`
	IssueID    *string `query:"issue_id" validate:"omitempty,max=36"`
	Limit      int     `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset     int     `query:"offset" validate:"omitempty,min=0"`
}

// CommentResponse is the serialized representation of a comment.
type CommentResponse struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	ContentHTML string      `json:"content_html,omitempty"`
	AuthorID    string      `json:"author_id"`
	Author      *UserSummary `json:"author,omitempty"`
	DocumentID  *string     `json:"document_id,omitempty"`
	IssueID     *string     `json:"issue_id,omitempty"`
	ParentID    *string     `json:"parent_id,omitempty"`
	Mentions    []string    `json:"mentions"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewCommentResponse converts a comment model into a DTO.
func NewCommentResponse(comment models.Comment) CommentResponse {
	response := CommentResponse{
		ID:         comment.ID,
		Content:    comment.Content,
		AuthorID:   comment.AuthorID,
		DocumentID: comment.DocumentID,
		IssueID:    comment.IssueID,
		ParentID:   comment.ParentID,
		Mentions:   append([]string(nil), comment.Mentions...),
		CreatedAt:  comment.CreatedAt,
	}
	if comment.Author.ID != "" {
		author := NewUserSummary(comment.Author)
		response.Author = &author
	}
	return response
}

// NewCommentResponseSlice converts a slice of comment models into DTOs.
func NewCommentResponseSlice(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, NewCommentResponse(comment))
	}
	return out
}
