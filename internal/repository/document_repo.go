package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/models"
)

// DocumentRepository stores document rows and their version snapshots.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	ListByTeam(ctx context.Context, teamID string) ([]models.Document, error)
	Update(ctx context.Context, doc *models.Document, snapshotBy string) error
	ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error)
	Delete(ctx context.Context, id string) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository constructs a repository backed by GORM.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByTeam(ctx context.Context, teamID string) ([]models.Document, error) {
	var docs []models.Document
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("updated_at DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Update persists new document fields after snapshotting the stored body as
// the next DocumentVersion row. Snapshot and update run in one transaction so
// the history never skips a state.
func (r *documentRepository) Update(ctx context.Context, doc *models.Document, snapshotBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Document
		if err := tx.First(&current, "id = ?", doc.ID).Error; err != nil {
			return err
		}

		var latest int
		if err := tx.Model(&models.DocumentVersion{}).
			Where("document_id = ?", doc.ID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&latest).Error; err != nil {
			return err
		}

		snapshot := models.DocumentVersion{
			DocumentID: doc.ID,
			Version:    latest + 1,
			Content:    current.Content,
			CreatedBy:  snapshotBy,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		return tx.Model(&models.Document{}).
			Where("id = ?", doc.ID).
			Updates(map[string]interface{}{
				"title":   doc.Title,
				"content": doc.Content,
			}).Error
	})
}

func (r *documentRepository) ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	var versions []models.DocumentVersion
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("version DESC").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
