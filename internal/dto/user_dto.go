package dto

import "github.com/collabflow/collabflow-api/internal/models"

// UserSummary is the public subset of a user embedded in other responses.
type UserSummary struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image,omitempty"`
}

// NewUserSummary converts a user model into its public summary.
func NewUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
	}
}
