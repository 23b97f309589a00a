package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/models"
)

// AnalyticsRepository supplies aggregate counts for team dashboards.
type AnalyticsRepository interface {
	CountDocuments(ctx context.Context, teamID string) (int64, error)
	CountDocumentsSince(ctx context.Context, teamID string, since time.Time) (int64, error)
	CountActiveProjects(ctx context.Context, teamID string) (int64, error)
	CountIssuesByStatus(ctx context.Context, teamID string) (map[string]int64, error)
	CountIssuesSince(ctx context.Context, teamID string, since time.Time) (int64, error)
	CountIssuesCompletedSince(ctx context.Context, teamID string, since time.Time) (int64, error)
	RecentDocuments(ctx context.Context, teamID string, limit int) ([]models.Document, error)
	RecentIssues(ctx context.Context, teamID string, limit int) ([]models.Issue, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository constructs the analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountDocuments(ctx context.Context, teamID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("team_id = ?", teamID).
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountDocumentsSince(ctx context.Context, teamID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("team_id = ? AND created_at >= ?", teamID, since).
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountActiveProjects(ctx context.Context, teamID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("team_id = ? AND status = ?", teamID, "active").
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountIssuesByStatus(ctx context.Context, teamID string) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Select("status, COUNT(*) as count").
		Where("team_id = ?", teamID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *analyticsRepository) CountIssuesSince(ctx context.Context, teamID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("team_id = ? AND created_at >= ?", teamID, since).
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountIssuesCompletedSince(ctx context.Context, teamID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("team_id = ? AND status = ? AND updated_at >= ?", teamID, models.IssueStatusDone, since).
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) RecentDocuments(ctx context.Context, teamID string, limit int) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Select("id, title, created_at").
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Limit(limit).
		Find(&docs).Error
	return docs, err
}

func (r *analyticsRepository) RecentIssues(ctx context.Context, teamID string, limit int) ([]models.Issue, error) {
	var issues []models.Issue
	err := r.db.WithContext(ctx).
		Select("id, title, status, updated_at").
		Where("team_id = ?", teamID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&issues).Error
	return issues, err
}
