package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/models"
	"github.com/collabflow/collabflow-api/internal/repository"
)

type stubNotificationRepo struct {
	created []models.Notification
	byID    map[string]models.Notification
}

func (s *stubNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = "n1"
	notification.CreatedAt = time.Now()
	s.created = append(s.created, *notification)
	return nil
}

func (s *stubNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range s.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubNotificationRepo) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range s.created {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, id, userID string) (models.Notification, error) {
	if n, ok := s.byID[id]; ok && n.UserID == userID {
		n.Read = true
		return n, nil
	}
	return models.Notification{}, gorm.ErrRecordNotFound
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return int64(len(s.created)), nil
}

func (s *stubNotificationRepo) Delete(ctx context.Context, id, userID string) error {
	if n, ok := s.byID[id]; ok && n.UserID == userID {
		return nil
	}
	return gorm.ErrRecordNotFound
}

var _ repository.NotificationRepository = (*stubNotificationRepo)(nil)

func newTestNotificationService(repo repository.NotificationRepository) NotificationService {
	return NewNotificationService(repo, nil, "", nil, testValidator(), zerolog.Nop())
}

func TestNotificationServicePublishRejectsUnknownType(t *testing.T) {
	svc := newTestNotificationService(&stubNotificationRepo{})

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "u1",
		Type:    "carrier_pigeon",
		Title:   "t",
		Message: "m",
	})
	require.Error(t, err)
}

func TestNotificationServicePublishSanitizesMessage(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := newTestNotificationService(repo)

	response, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "u1",
		Type:    models.NotificationMention,
		Title:   "You were mentioned",
		Message: "<script>alert(1)</script>Alice mentioned you",
	})
	require.NoError(t, err)
	require.Equal(t, "Alice mentioned you", response.Message)
	require.False(t, response.Read)
	require.Len(t, repo.created, 1)
}

func TestNotificationServicePublishDeliversToSubscriber(t *testing.T) {
	svc := newTestNotificationService(&stubNotificationRepo{})

	stream, cancel := svc.Subscribe("u1")
	defer cancel()

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "u1",
		Type:    models.NotificationComment,
		Title:   "New comment",
		Message: "Bob commented on Launch Plan",
	})
	require.NoError(t, err)

	select {
	case got := <-stream:
		require.Equal(t, "u1", got.UserID)
		require.Equal(t, models.NotificationComment, got.Type)
	case <-time.After(time.Second):
		t.Fatal("expected streamed notification")
	}
}

func TestNotificationServicePublishSkipsOtherSubscribers(t *testing.T) {
	svc := newTestNotificationService(&stubNotificationRepo{})

	stream, cancel := svc.Subscribe("u2")
	defer cancel()

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "u1",
		Type:    models.NotificationUpdate,
		Title:   "t",
		Message: "m",
	})
	require.NoError(t, err)

	select {
	case got := <-stream:
		t.Fatalf("unexpected notification for other user: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotificationServiceMarkReadMapsOwnershipToNotFound(t *testing.T) {
	repo := &stubNotificationRepo{byID: map[string]models.Notification{
		"n1": {ID: "n1", UserID: "u1", Type: models.NotificationMention, Title: "t", Message: "m"},
	}}
	svc := newTestNotificationService(repo)

	got, err := svc.MarkRead(context.Background(), "n1", "u1")
	require.NoError(t, err)
	require.True(t, got.Read)

	_, err = svc.MarkRead(context.Background(), "n1", "u2")
	require.ErrorIs(t, err, ErrNotificationNotFound)

	err = svc.Delete(context.Background(), "n1", "u2")
	require.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationServiceListIncludesUnreadCount(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := newTestNotificationService(repo)

	for i := 0; i < 2; i++ {
		_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
			UserID:  "u1",
			Type:    models.NotificationInvitation,
			Title:   "Team invitation",
			Message: "Alice invited you to join Core",
		})
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background(), "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 2)
	require.Equal(t, int64(2), list.UnreadCount)
}

func TestNotificationServiceHelpersUseFixedTemplates(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := newTestNotificationService(repo)

	link := "http://localhost:3000/documents/d1"
	svc.NotifyMention(context.Background(), "u2", "Alice", "Launch Plan", &link)
	svc.NotifyInvitation(context.Background(), "u2", "Alice", "Core Team", nil)

	require.Len(t, repo.created, 2)
	require.Equal(t, "You were mentioned", repo.created[0].Title)
	require.Equal(t, "Alice mentioned you in Launch Plan", repo.created[0].Message)
	require.Equal(t, models.NotificationMention, repo.created[0].Type)
	require.Equal(t, "Team invitation", repo.created[1].Title)
	require.Equal(t, "Alice invited you to join Core Team", repo.created[1].Message)
}
