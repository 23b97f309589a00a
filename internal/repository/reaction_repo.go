package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/models"
)

// ErrNoReactionTarget indicates a reaction operation without any target id.
var ErrNoReactionTarget = errors.New("reaction target required")

// ReactionTarget identifies the single entity a reaction attaches to.
// Exactly one field must be set.
type ReactionTarget struct {
	CommentID  *string
	DocumentID *string
	MessageID  *string
}

// Valid reports whether exactly one target id is set.
func (t ReactionTarget) Valid() bool {
	count := 0
	for _, id := range []*string{t.CommentID, t.DocumentID, t.MessageID} {
		if id != nil && *id != "" {
			count++
		}
	}
	return count == 1
}

// ReactionRepository persists emoji reactions with toggle semantics. The
// delete-then-insert runs inside one transaction against the unique
// composite index, so concurrent toggles of the same triple cannot stack
// duplicate rows.
type ReactionRepository interface {
	Toggle(ctx context.Context, emoji, userID string, target ReactionTarget) (added bool, err error)
	ListByTarget(ctx context.Context, target ReactionTarget) ([]models.Reaction, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository constructs a repository backed by GORM.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Toggle(ctx context.Context, emoji, userID string, target ReactionTarget) (bool, error) {
	if !target.Valid() {
		return false, ErrNoReactionTarget
	}

	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := targetScope(tx, target).
			Where("emoji = ? AND user_id = ?", emoji, userID).
			Delete(&models.Reaction{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		reaction := models.Reaction{
			Emoji:      emoji,
			UserID:     userID,
			CommentID:  target.CommentID,
			DocumentID: target.DocumentID,
			MessageID:  target.MessageID,
		}
		if err := tx.Create(&reaction).Error; err != nil {
			return err
		}
		added = true
		return nil
	})

	return added, err
}

func (r *reactionRepository) ListByTarget(ctx context.Context, target ReactionTarget) ([]models.Reaction, error) {
	if !target.Valid() {
		return nil, ErrNoReactionTarget
	}

	var reactions []models.Reaction
	if err := targetScope(r.db.WithContext(ctx), target).
		Preload("User").
		Order("created_at ASC").
		Find(&reactions).Error; err != nil {
		return nil, err
	}

	return reactions, nil
}

func targetScope(db *gorm.DB, target ReactionTarget) *gorm.DB {
	switch {
	case target.CommentID != nil && *target.CommentID != "":
		return db.Where("comment_id = ?", *target.CommentID)
	case target.DocumentID != nil && *target.DocumentID != "":
		return db.Where("document_id = ?", *target.DocumentID)
	default:
		return db.Where("message_id = ?", *target.MessageID)
	}
}
