package dto

import (
	"time"

	"github.com/collabflow/collabflow-api/internal/models"
)

// TeamCreateRequest is the payload to create a team. The creator becomes
// the owner member.
type TeamCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// TeamUpdateRequest updates team name and description.
type TeamUpdateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// InviteMemberRequest invites a user into a team by email address.
type InviteMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin member viewer"`
}

// UpdateMemberRoleRequest changes an existing member's role. The owner role
// is never assignable through this surface.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member viewer"`
}

// TeamResponse is the serialized representation of a team.
type TeamResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TeamMemberResponse is one roster entry returned to clients.
type TeamMemberResponse struct {
	ID       string      `json:"id"`
	TeamID   string      `json:"team_id"`
	Role     string      `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
	User     UserSummary `json:"user"`
}

// NewTeamResponse converts a team model into a DTO.
func NewTeamResponse(team models.Team) TeamResponse {
	return TeamResponse{
		ID:          team.ID,
		Name:        team.Name,
		Slug:        team.Slug,
		Description: team.Description,
		CreatedAt:   team.CreatedAt,
	}
}

// NewTeamMemberResponse converts a membership model into a DTO.
func NewTeamMemberResponse(member models.TeamMember) TeamMemberResponse {
	return TeamMemberResponse{
		ID:       member.ID,
		TeamID:   member.TeamID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
		User:     NewUserSummary(member.User),
	}
}

// NewTeamMemberResponseSlice converts membership models into DTOs.
func NewTeamMemberResponseSlice(members []models.TeamMember) []TeamMemberResponse {
	out := make([]TeamMemberResponse, 0, len(members))
	for _, member := range members {
		out = append(out, NewTeamMemberResponse(member))
	}
	return out
}
