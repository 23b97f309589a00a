package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/models"
	"github.com/collabflow/collabflow-api/internal/repository"
)

var (
	// ErrDocumentNotFound indicates the document does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrProjectNotFound indicates the project does not exist.
	ErrProjectNotFound = errors.New("project not found")
)

// WorkspaceService manages the document and project containers that
// comments, issues and search operate on.
type WorkspaceService interface {
	CreateDocument(ctx context.Context, authorID string, payload dto.DocumentCreateRequest) (dto.DocumentResponse, error)
	ListDocuments(ctx context.Context, teamID string) ([]dto.DocumentResponse, error)
	UpdateDocument(ctx context.Context, id, userID string, payload dto.DocumentUpdateRequest) (dto.DocumentResponse, error)
	ListDocumentVersions(ctx context.Context, documentID string) ([]dto.DocumentVersionResponse, error)
	DeleteDocument(ctx context.Context, id string) error

	CreateProject(ctx context.Context, payload dto.ProjectCreateRequest) (dto.ProjectResponse, error)
	ListProjects(ctx context.Context, teamID string) ([]dto.ProjectResponse, error)
	DeleteProject(ctx context.Context, id string) error
}

type workspaceService struct {
	documents repository.DocumentRepository
	projects  repository.ProjectRepository
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
}

// NewWorkspaceService constructs a workspace service.
func NewWorkspaceService(documents repository.DocumentRepository, projects repository.ProjectRepository, validate *validator.Validate, logger zerolog.Logger) WorkspaceService {
	return &workspaceService{
		documents: documents,
		projects:  projects,
		validator: validate,
		logger:    logger.With().Str("component", "workspace_service").Logger(),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *workspaceService) CreateDocument(ctx context.Context, authorID string, payload dto.DocumentCreateRequest) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DocumentResponse{}, err
	}

	title := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	if title == "" {
		return dto.DocumentResponse{}, errors.New("document title empty after sanitization")
	}

	doc := models.Document{
		Title:    title,
		Content:  payload.Content,
		TeamID:   payload.TeamID,
		AuthorID: authorID,
	}
	if err := s.documents.Create(ctx, &doc); err != nil {
		return dto.DocumentResponse{}, err
	}

	s.logger.Info().Str("document_id", doc.ID).Str("team_id", doc.TeamID).Msg("document created")

	return dto.NewDocumentResponse(doc), nil
}

func (s *workspaceService) ListDocuments(ctx context.Context, teamID string) ([]dto.DocumentResponse, error) {
	docs, err := s.documents.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return dto.NewDocumentResponseSlice(docs), nil
}

func (s *workspaceService) UpdateDocument(ctx context.Context, id, userID string, payload dto.DocumentUpdateRequest) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DocumentResponse{}, err
	}

	doc, err := s.documents.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.DocumentResponse{}, ErrDocumentNotFound
	}
	if err != nil {
		return dto.DocumentResponse{}, err
	}

	title := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	if title == "" {
		return dto.DocumentResponse{}, errors.New("document title empty after sanitization")
	}

	doc.Title = title
	if payload.Content != nil {
		doc.Content = payload.Content
	}
	if err := s.documents.Update(ctx, doc, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrDocumentNotFound
		}
		return dto.DocumentResponse{}, err
	}

	s.logger.Info().Str("document_id", doc.ID).Str("user_id", userID).Msg("document updated")

	return dto.NewDocumentResponse(*doc), nil
}

func (s *workspaceService) ListDocumentVersions(ctx context.Context, documentID string) ([]dto.DocumentVersionResponse, error) {
	if _, err := s.documents.FindByID(ctx, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	versions, err := s.documents.ListVersions(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return dto.NewDocumentVersionResponseSlice(versions), nil
}

func (s *workspaceService) DeleteDocument(ctx context.Context, id string) error {
	err := s.documents.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDocumentNotFound
	}
	return err
}

func (s *workspaceService) CreateProject(ctx context.Context, payload dto.ProjectCreateRequest) (dto.ProjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, err
	}

	name := strings.TrimSpace(s.sanitizer.Sanitize(payload.Name))
	if name == "" {
		return dto.ProjectResponse{}, errors.New("project name empty after sanitization")
	}

	project := models.Project{
		Name:        name,
		Description: payload.Description,
		TeamID:      payload.TeamID,
	}
	if err := s.projects.Create(ctx, &project); err != nil {
		return dto.ProjectResponse{}, err
	}

	s.logger.Info().Str("project_id", project.ID).Str("team_id", project.TeamID).Msg("project created")

	return dto.NewProjectResponse(project), nil
}

func (s *workspaceService) ListProjects(ctx context.Context, teamID string) ([]dto.ProjectResponse, error) {
	projects, err := s.projects.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return dto.NewProjectResponseSlice(projects), nil
}

func (s *workspaceService) DeleteProject(ctx context.Context, id string) error {
	err := s.projects.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProjectNotFound
	}
	return err
}
