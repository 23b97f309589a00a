package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/models"
)

// CommentRepository persists comments attached to documents and issues.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByDocument(ctx context.Context, documentID string, limit, offset int) ([]models.Comment, error)
	ListByIssue(ctx context.Context, issueID string, limit, offset int) ([]models.Comment, error)
	Delete(ctx context.Context, id, authorID string) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository constructs a repository backed by GORM.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

func (r *commentRepository) ListByDocument(ctx context.Context, documentID string, limit, offset int) ([]models.Comment, error) {
	return r.listByColumn(ctx, "document_id", documentID, limit, offset)
}

func (r *commentRepository) ListByIssue(ctx context.Context, issueID string, limit, offset int) ([]models.Comment, error) {
	return r.listByColumn(ctx, "issue_id", issueID, limit, offset)
}

func (r *commentRepository) listByColumn(ctx context.Context, column, value string, limit, offset int) ([]models.Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where(column+" = ?", value).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id, authorID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&models.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
