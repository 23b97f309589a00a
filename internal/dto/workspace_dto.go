package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/collabflow/collabflow-api/internal/models"
)

// DocumentCreateRequest is the payload to create a document.
type DocumentCreateRequest struct {
	Title   string         `json:"title" validate:"required,min=1,max=255"`
	Content datatypes.JSON `json:"content" validate:"omitempty"`
	TeamID  string         `json:"team_id" validate:"required,max=36"`
}

// DocumentUpdateRequest is the payload to update a document's title and body.
type DocumentUpdateRequest struct {
	Title   string         `json:"title" validate:"required,min=1,max=255"`
	Content datatypes.JSON `json:"content" validate:"omitempty"`
}

// DocumentResponse is the serialized representation of a document.
type DocumentResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   datatypes.JSON `json:"content,omitempty"`
	TeamID    string         `json:"team_id"`
	AuthorID  string         `json:"author_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DocumentVersionResponse is one historical snapshot of a document body.
type DocumentVersionResponse struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Version    int            `json:"version"`
	Content    datatypes.JSON `json:"content,omitempty"`
	CreatedBy  string         `json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ProjectCreateRequest is the payload to create a project.
type ProjectCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	TeamID      string  `json:"team_id" validate:"required,max=36"`
}

// ProjectResponse is the serialized representation of a project.
type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	TeamID      string    `json:"team_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDocumentResponse converts a document model into a DTO.
func NewDocumentResponse(doc models.Document) DocumentResponse {
	return DocumentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		TeamID:    doc.TeamID,
		AuthorID:  doc.AuthorID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

// NewDocumentVersionResponse converts a version snapshot into a DTO.
func NewDocumentVersionResponse(version models.DocumentVersion) DocumentVersionResponse {
	return DocumentVersionResponse{
		ID:         version.ID,
		DocumentID: version.DocumentID,
		Version:    version.Version,
		Content:    version.Content,
		CreatedBy:  version.CreatedBy,
		CreatedAt:  version.CreatedAt,
	}
}

// NewDocumentVersionResponseSlice converts version snapshots into DTOs.
func NewDocumentVersionResponseSlice(versions []models.DocumentVersion) []DocumentVersionResponse {
	out := make([]DocumentVersionResponse, 0, len(versions))
	for _, version := range versions {
		out = append(out, NewDocumentVersionResponse(version))
	}
	return out
}

// NewDocumentResponseSlice converts document models into DTOs.
func NewDocumentResponseSlice(docs []models.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, NewDocumentResponse(doc))
	}
	return out
}

// NewProjectResponse converts a project model into a DTO.
func NewProjectResponse(project models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		TeamID:      project.TeamID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// NewProjectResponseSlice converts project models into DTOs.
func NewProjectResponseSlice(projects []models.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		out = append(out, NewProjectResponse(project))
	}
	return out
}
