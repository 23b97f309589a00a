package dto

import (
	"time"

	"github.com/collabflow/collabflow-api/internal/models"
)

// IssueCreateRequest is the payload to create an issue on a project board.
type IssueCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	ProjectID   string  `json:"project_id" validate:"required,max=36"`
	TeamID      string  `json:"team_id" validate:"required,max=36"`
	AssigneeID  *string `json:"assignee_id" validate:"omitempty,max=36"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in_progress in_review done"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Type        string  `json:"type" validate:"omitempty,oneof=task bug feature"`
}

// IssueStatusUpdateRequest moves an issue between Kanban columns.
type IssueStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress in_review done"`
}

// IssueAssignRequest reassigns an issue.
type IssueAssignRequest struct {
	AssigneeID *string `json:"assignee_id" validate:"omitempty,max=36"`
}

// IssueResponse is the serialized representation of an issue.
type IssueResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Type        string    `json:"type"`
	ProjectID   string    `json:"project_id"`
	TeamID      string    `json:"team_id"`
	AssigneeID  *string   `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewIssueResponse converts an issue model into a DTO.
func NewIssueResponse(issue models.Issue) IssueResponse {
	return IssueResponse{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Status:      issue.Status,
		Priority:    issue.Priority,
		Type:        issue.Type,
		ProjectID:   issue.ProjectID,
		TeamID:      issue.TeamID,
		AssigneeID:  issue.AssigneeID,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}

// NewIssueResponseSlice converts issue models into DTOs.
func NewIssueResponseSlice(issues []models.Issue) []IssueResponse {
	out := make([]IssueResponse, 0, len(issues))
	for _, issue := range issues {
		out = append(out, NewIssueResponse(issue))
	}
	return out
}
