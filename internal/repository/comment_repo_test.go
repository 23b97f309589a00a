package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/models"
)

func TestCommentRepositoryListByDocumentOrdersOldestFirst(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Comment{})
	repo := NewCommentRepository(db)
	ctx := context.Background()

	now := time.Now()
	first := models.Comment{Content: "first", AuthorID: "u1", DocumentID: strptr("d1"), CreatedAt: now.Add(-2 * time.Minute)}
	second := models.Comment{Content: "second", AuthorID: "u2", DocumentID: strptr("d1"), CreatedAt: now.Add(-time.Minute)}
	elsewhere := models.Comment{Content: "other doc", AuthorID: "u1", DocumentID: strptr("d2"), CreatedAt: now}
	require.NoError(t, repo.Create(ctx, &second))
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &elsewhere))

	list, err := repo.ListByDocument(ctx, "d1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "first", list[0].Content)
	require.Equal(t, "second", list[1].Content)
}

func TestCommentRepositoryFindByIDPreloadsAuthor(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Comment{})
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := models.User{ID: "u1", Email: "alice@example.com"}
	require.NoError(t, db.Create(&author).Error)
	comment := models.Comment{Content: "hi", AuthorID: "u1", IssueID: strptr("i1")}
	require.NoError(t, repo.Create(ctx, &comment))

	found, err := repo.FindByID(ctx, comment.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", found.Author.Email)
}

func TestCommentRepositoryDeleteRequiresAuthorship(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Comment{})
	repo := NewCommentRepository(db)
	ctx := context.Background()

	comment := models.Comment{Content: "mine", AuthorID: "u1", DocumentID: strptr("d1")}
	require.NoError(t, repo.Create(ctx, &comment))

	err := repo.Delete(ctx, comment.ID, "u2")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, comment.ID, "u1"))

	_, err = repo.FindByID(ctx, comment.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMessageRepositoryListByTeamReturnsChronologicalWindow(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Message{})
	repo := NewMessageRepository(db)
	ctx := context.Background()

	now := time.Now()
	for i, content := range []string{"one", "two", "three", "four"} {
		msg := models.Message{TeamID: "t1", AuthorID: "u1", Content: content, CreatedAt: now.Add(time.Duration(i-4) * time.Minute)}
		require.NoError(t, repo.Create(ctx, &msg))
	}

	window, err := repo.ListByTeam(ctx, "t1", now, 2)
	require.NoError(t, err)
	require.Len(t, window, 2)
	require.Equal(t, "three", window[0].Content)
	require.Equal(t, "four", window[1].Content)

	earlier, err := repo.ListByTeam(ctx, "t1", window[0].CreatedAt, 10)
	require.NoError(t, err)
	require.Len(t, earlier, 2)
	require.Equal(t, "one", earlier[0].Content)
	require.Equal(t, "two", earlier[1].Content)
}
