package dto

import (
	"time"

	"github.com/collabflow/collabflow-api/internal/models"
)

// MessageCreateRequest is the payload to post a chat message into a team.
type MessageCreateRequest struct {
	TeamID  string `json:"team_id" validate:"required,max=36"`
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// MessageHistoryQuery filters the chat history listing for one team.
type MessageHistoryQuery struct {
	TeamID string     `query:"team_id" validate:"required,max=36"`
	Before *time.Time `query:"before"`
	Limit  int        `query:"limit" validate:"omitempty,min=1,max=100"`
}

// MessageResponse is the serialized representation of a chat message.
type MessageResponse struct {
	ID          string       `json:"id"`
	TeamID      string       `json:"team_id"`
	Content     string       `json:"content"`
	ContentHTML string       `json:"content_html,omitempty"`
	AuthorID    string       `json:"author_id"`
	Author      *UserSummary `json:"author,omitempty"`
	Mentions    []string     `json:"mentions"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewMessageResponse converts a message model into a DTO.
func NewMessageResponse(message models.Message) MessageResponse {
	response := MessageResponse{
		ID:        message.ID,
		TeamID:    message.TeamID,
		Content:   message.Content,
		AuthorID:  message.AuthorID,
		Mentions:  append([]string(nil), message.Mentions...),
		CreatedAt: message.CreatedAt,
	}
	if message.Author.ID != "" {
		author := NewUserSummary(message.Author)
		response.Author = &author
	}
	return response
}

// NewMessageResponseSlice converts a slice of message models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}
