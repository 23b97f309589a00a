package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/models"
)

func TestDocumentRepositoryUpdateSnapshotsPreviousBody(t *testing.T) {
	db := setupTestDB(t, &models.Document{}, &models.DocumentVersion{})
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc := models.Document{
		Title:    "Launch Plan",
		Content:  datatypes.JSON(`{"blocks":["draft"]}`),
		TeamID:   "t1",
		AuthorID: "u1",
	}
	require.NoError(t, repo.Create(ctx, &doc))

	doc.Title = "Launch Plan v2"
	doc.Content = datatypes.JSON(`{"blocks":["rewritten"]}`)
	require.NoError(t, repo.Update(ctx, &doc, "u2"))

	stored, err := repo.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, "Launch Plan v2", stored.Title)
	require.JSONEq(t, `{"blocks":["rewritten"]}`, string(stored.Content))

	versions, err := repo.ListVersions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	require.Equal(t, 1, versions[0].Version)
	require.Equal(t, "u2", versions[0].CreatedBy)
	require.JSONEq(t, `{"blocks":["draft"]}`, string(versions[0].Content))
}

func TestDocumentRepositoryVersionsCountUpNewestFirst(t *testing.T) {
	db := setupTestDB(t, &models.Document{}, &models.DocumentVersion{})
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc := models.Document{Title: "Notes", Content: datatypes.JSON(`{"rev":0}`), TeamID: "t1", AuthorID: "u1"}
	require.NoError(t, repo.Create(ctx, &doc))

	for i := 1; i <= 3; i++ {
		doc.Content = datatypes.JSON(fmt.Sprintf(`{"rev":%d}`, i))
		require.NoError(t, repo.Update(ctx, &doc, "u1"))
	}

	versions, err := repo.ListVersions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	require.Equal(t, 3, versions[0].Version)
	require.Equal(t, 2, versions[1].Version)
	require.Equal(t, 1, versions[2].Version)
	require.JSONEq(t, `{"rev":2}`, string(versions[0].Content), "each snapshot holds the body the update replaced")
}

func TestDocumentRepositoryUpdateMissingDocument(t *testing.T) {
	db := setupTestDB(t, &models.Document{}, &models.DocumentVersion{})
	repo := NewDocumentRepository(db)

	missing := models.Document{ID: "nope", Title: "x"}
	err := repo.Update(context.Background(), &missing, "u1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	versions, listErr := repo.ListVersions(context.Background(), "nope")
	require.NoError(t, listErr)
	require.Empty(t, versions, "failed update must not leave a snapshot behind")
}
