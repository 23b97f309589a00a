package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/models"
)

const searchLimitPerKind = 10

// SearchRepository runs case-insensitive substring lookups per content kind,
// each capped at 10 rows ordered newest first.
type SearchRepository interface {
	SearchDocuments(ctx context.Context, teamID, query string) ([]models.Document, error)
	SearchProjects(ctx context.Context, teamID, query string) ([]models.Project, error)
	SearchIssues(ctx context.Context, teamID, query string) ([]models.Issue, error)
}

type searchRepository struct {
	db *gorm.DB
}

// NewSearchRepository constructs a repository backed by GORM.
func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func likePattern(query string) string {
	return "%" + strings.ToLower(query) + "%"
}

func (r *searchRepository) SearchDocuments(ctx context.Context, teamID, query string) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Where("LOWER(title) LIKE ?", likePattern(query)).
		Order("updated_at DESC").
		Limit(searchLimitPerKind).
		Find(&docs).Error
	return docs, err
}

func (r *searchRepository) SearchProjects(ctx context.Context, teamID, query string) ([]models.Project, error) {
	pattern := likePattern(query)
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("updated_at DESC").
		Limit(searchLimitPerKind).
		Find(&projects).Error
	return projects, err
}

func (r *searchRepository) SearchIssues(ctx context.Context, teamID, query string) ([]models.Issue, error) {
	pattern := likePattern(query)
	var issues []models.Issue
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("updated_at DESC").
		Limit(searchLimitPerKind).
		Find(&issues).Error
	return issues, err
}
