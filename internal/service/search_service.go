package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/repository"
)

// SearchService runs team-scoped substring search across documents,
// projects and issues.
type SearchService interface {
	Search(ctx context.Context, query dto.SearchQuery) ([]dto.SearchResult, error)
}

type searchService struct {
	repo      repository.SearchRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	baseURL   string
}

// NewSearchService constructs a search service.
func NewSearchService(repo repository.SearchRepository, validate *validator.Validate, logger zerolog.Logger, baseURL string) SearchService {
	return &searchService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "search_service").Logger(),
		tracer:    otel.Tracer("github.com/collabflow/collabflow-api/internal/service/search"),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (s *searchService) Search(ctx context.Context, query dto.SearchQuery) ([]dto.SearchResult, error) {
	query.Query = strings.TrimSpace(query.Query)
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	spanCtx, span := s.tracer.Start(ctx, "search.query",
		trace.WithAttributes(attribute.String("search.team_id", query.TeamID)))
	defer span.End()

	results := make([]dto.SearchResult, 0, 30)

	documents, err := s.repo.SearchDocuments(spanCtx, query.TeamID, query.Query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, doc := range documents {
		results = append(results, dto.SearchResult{
			Type:      dto.SearchResultDocument,
			ID:        doc.ID,
			Title:     doc.Title,
			TeamID:    doc.TeamID,
			URL:       s.baseURL + "/documents/" + doc.ID,
			UpdatedAt: doc.UpdatedAt,
		})
	}

	projects, err := s.repo.SearchProjects(spanCtx, query.TeamID, query.Query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, project := range projects {
		results = append(results, dto.SearchResult{
			Type:        dto.SearchResultProject,
			ID:          project.ID,
			Title:       project.Name,
			Description: project.Description,
			TeamID:      project.TeamID,
			URL:         s.baseURL + "/projects/" + project.ID,
			UpdatedAt:   project.UpdatedAt,
		})
	}

	issues, err := s.repo.SearchIssues(spanCtx, query.TeamID, query.Query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, issue := range issues {
		results = append(results, dto.SearchResult{
			Type:        dto.SearchResultIssue,
			ID:          issue.ID,
			Title:       issue.Title,
			Description: issue.Description,
			TeamID:      issue.TeamID,
			URL:         s.baseURL + "/issues/" + issue.ID,
			UpdatedAt:   issue.UpdatedAt,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].UpdatedAt.After(results[j].UpdatedAt)
	})

	return results, nil
}
