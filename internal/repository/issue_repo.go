package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/models"
)

// IssueRepository persists work items. Status and assignee changes are
// partial updates so concurrent edits to other columns survive.
type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Issue, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateAssignee(ctx context.Context, id string, assigneeID *string) error
	Delete(ctx context.Context, id string) error
}

type issueRepository struct {
	db *gorm.DB
}

// NewIssueRepository constructs a repository backed by GORM.
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) Create(ctx context.Context, issue *models.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

func (r *issueRepository) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	var issue models.Issue
	if err := r.db.WithContext(ctx).First(&issue, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) ListByProject(ctx context.Context, projectID string) ([]models.Issue, error) {
	var issues []models.Issue
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *issueRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.updateColumn(ctx, id, "status", status)
}

func (r *issueRepository) UpdateAssignee(ctx context.Context, id string, assigneeID *string) error {
	return r.updateColumn(ctx, id, "assignee_id", assigneeID)
}

func (r *issueRepository) updateColumn(ctx context.Context, id, column string, value any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *issueRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Issue{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
