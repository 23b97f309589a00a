package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/models"
	"github.com/collabflow/collabflow-api/internal/repository"
)

const (
	recentPerKind       = 5
	recentActivityLimit = 10
)

// AnalyticsService produces aggregated team activity metrics.
type AnalyticsService interface {
	TeamAnalytics(ctx context.Context, teamID string) (dto.TeamAnalyticsResponse, error)
}

type analyticsService struct {
	repo     repository.AnalyticsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAnalyticsService builds the analytics aggregator. cache may be nil;
// every call then recomputes.
func NewAnalyticsService(repo repository.AnalyticsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *analyticsService) TeamAnalytics(ctx context.Context, teamID string) (dto.TeamAnalyticsResponse, error) {
	cacheKey := fmt.Sprintf("analytics:team:%s", teamID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.TeamAnalyticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("team_id", teamID).Msg("analytics cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
		}
	}

	weekAgo := s.now().AddDate(0, 0, -7)

	totalDocs, err := s.repo.CountDocuments(ctx, teamID)
	if err != nil {
		return dto.TeamAnalyticsResponse{}, err
	}
	docsThisWeek, err := s.repo.CountDocumentsSince(ctx, teamID, weekAgo)
	if err != nil {
		return dto.TeamAnalyticsResponse{}, err
	}
	activeProjects, err := s.repo.CountActiveProjects(ctx, teamID)
	if err != nil {
		return dto.TeamAnalyticsResponse{}, err
	}
	byStatus, err := s.repo.CountIssuesByStatus(ctx, teamID)
	if err != nil {
		return dto.TeamAnalyticsResponse{}, err
	}
	issuesThisWeek, err := s.repo.CountIssuesSince(ctx, teamID, weekAgo)
	if err != nil {
		return dto.TeamAnalyticsResponse{}, err
	}
	velocity, err := s.repo.CountIssuesCompletedSince(ctx, teamID, weekAgo)
	if err != nil {
		return dto.TeamAnalyticsResponse{}, err
	}
	activity, err := s.recentActivity(ctx, teamID)
	if err != nil {
		return dto.TeamAnalyticsResponse{}, err
	}

	response := dto.TeamAnalyticsResponse{
		TotalDocuments:    totalDocs,
		DocumentsThisWeek: docsThisWeek,
		ActiveProjects:    activeProjects,
		CompletedIssues:   byStatus[models.IssueStatusDone],
		IssuesThisWeek:    issuesThisWeek,
		TeamVelocity:      velocity,
		IssuesByStatus: dto.IssueStatusCounts{
			Todo:       byStatus[models.IssueStatusTodo],
			InProgress: byStatus[models.IssueStatusInProgress],
			InReview:   byStatus[models.IssueStatusInReview],
			Done:       byStatus[models.IssueStatusDone],
		},
		RecentActivity: activity,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write analytics cache")
			}
		}
	}

	return response, nil
}

// recentActivity merges the newest documents and recently-updated issues into
// one feed, newest first, capped at recentActivityLimit entries.
func (s *analyticsService) recentActivity(ctx context.Context, teamID string) ([]dto.ActivityItem, error) {
	docs, err := s.repo.RecentDocuments(ctx, teamID, recentPerKind)
	if err != nil {
		return nil, err
	}
	issues, err := s.repo.RecentIssues(ctx, teamID, recentPerKind)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ActivityItem, 0, len(docs)+len(issues))
	for _, doc := range docs {
		items = append(items, dto.ActivityItem{
			Type:        "document",
			ID:          doc.ID,
			Title:       doc.Title,
			Description: "created",
			Timestamp:   doc.CreatedAt,
		})
	}
	for _, issue := range issues {
		items = append(items, dto.ActivityItem{
			Type:        "issue",
			ID:          issue.ID,
			Title:       issue.Title,
			Description: "status: " + issue.Status,
			Timestamp:   issue.UpdatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if len(items) > recentActivityLimit {
		items = items[:recentActivityLimit]
	}
	return items, nil
}
