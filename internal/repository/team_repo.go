package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/models"
)

// TeamRepository handles persistence for teams and their memberships.
// ListMembers is the roster boundary consumed by mention resolution.
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team, ownerID string) error
	FindByID(ctx context.Context, id string) (models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id string) error
	ListMembers(ctx context.Context, teamID string) ([]models.TeamMember, error)
	FindMember(ctx context.Context, teamID, userID string) (models.TeamMember, error)
	AddMember(ctx context.Context, member *models.TeamMember) error
	UpdateMemberRole(ctx context.Context, memberID, role string) error
	RemoveMember(ctx context.Context, memberID string) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository constructs a repository backed by GORM.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *models.Team, ownerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}

		member := models.TeamMember{
			TeamID: team.ID,
			UserID: ownerID,
			Role:   models.RoleOwner,
		}
		return tx.Create(&member).Error
	})
}

func (r *teamRepository) FindByID(ctx context.Context, id string) (models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).First(&team, "id = ?", id).Error; err != nil {
		return models.Team{}, err
	}
	return team, nil
}

func (r *teamRepository) Update(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Team{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teamRepository) ListMembers(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("team_id = ?", teamID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *teamRepository) FindMember(ctx context.Context, teamID, userID string) (models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return models.TeamMember{}, err
	}
	return member, nil
}

func (r *teamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *teamRepository) UpdateMemberRole(ctx context.Context, memberID, role string) error {
	result := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("id = ?", memberID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teamRepository) RemoveMember(ctx context.Context, memberID string) error {
	result := r.db.WithContext(ctx).Delete(&models.TeamMember{}, "id = ?", memberID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
