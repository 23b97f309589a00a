package dto

import (
	"time"

	"github.com/collabflow/collabflow-api/internal/models"
)

// NotificationCreateRequest describes the payload to create a notification.
// Only server-side helpers build these; clients never post them directly.
type NotificationCreateRequest struct {
	UserID  string  `json:"user_id" validate:"required,max=36"`
	Type    string  `json:"type" validate:"required,oneof=mention comment assignment invitation update issue_update"`
	Title   string  `json:"title" validate:"required,min=1,max=255"`
	Message string  `json:"message" validate:"required,min=1,max=2000"`
	Link    *string `json:"link" validate:"omitempty,max=512"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      *string   `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationListResponse pairs a page of notifications with the unread
// badge count.
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
}

// NewNotificationResponse converts a notification model to a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Type:      model.Type,
		Title:     model.Title,
		Message:   model.Message,
		Link:      model.Link,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of notification models to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}
