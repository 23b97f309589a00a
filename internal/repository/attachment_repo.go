package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/models"
)

// AttachmentRepository persists file metadata rows.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	FindByID(ctx context.Context, id string) (*models.Attachment, error)
	ListByParent(ctx context.Context, column, parentID string) ([]models.Attachment, error)
	Delete(ctx context.Context, id, uploadedBy string) error
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository constructs a repository backed by GORM.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) FindByID(ctx context.Context, id string) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// ListByParent lists attachments under one parent column, which must be one
// of document_id, issue_id or comment_id. Callers pass a column from the
// fixed set, never user input.
func (r *attachmentRepository) ListByParent(ctx context.Context, column, parentID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	if err := r.db.WithContext(ctx).
		Where(column+" = ?", parentID).
		Order("created_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id, uploadedBy string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND uploaded_by = ?", id, uploadedBy).
		Delete(&models.Attachment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
