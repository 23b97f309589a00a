package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/models"
)

type stubProjectRepo struct{}

func (s *stubProjectRepo) Create(ctx context.Context, project *models.Project) error {
	project.ID = "p1"
	return nil
}

func (s *stubProjectRepo) FindByID(ctx context.Context, id string) (*models.Project, error) {
	return nil, nil
}

func (s *stubProjectRepo) ListByTeam(ctx context.Context, teamID string) ([]models.Project, error) {
	return nil, nil
}

func (s *stubProjectRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func newTestWorkspaceService(docs *stubDocumentRepo) WorkspaceService {
	return NewWorkspaceService(docs, &stubProjectRepo{}, testValidator(), zerolog.Nop())
}

func TestWorkspaceServiceUpdateDocumentSnapshotsPreviousBody(t *testing.T) {
	docs := &stubDocumentRepo{docs: map[string]models.Document{
		"d1": {ID: "d1", Title: "Launch Plan", Content: datatypes.JSON(`{"blocks":["draft"]}`), TeamID: "t1", AuthorID: "u1"},
	}}
	svc := newTestWorkspaceService(docs)

	updated, err := svc.UpdateDocument(context.Background(), "d1", "u2", dto.DocumentUpdateRequest{
		Title:   "Launch Plan v2",
		Content: datatypes.JSON(`{"blocks":["rewritten"]}`),
	})
	require.NoError(t, err)
	require.Equal(t, "Launch Plan v2", updated.Title)
	require.JSONEq(t, `{"blocks":["rewritten"]}`, string(updated.Content))

	versions, err := svc.ListDocumentVersions(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	require.Equal(t, 1, versions[0].Version)
	require.Equal(t, "u2", versions[0].CreatedBy)
	require.JSONEq(t, `{"blocks":["draft"]}`, string(versions[0].Content))
}

func TestWorkspaceServiceUpdateDocumentKeepsBodyWhenOmitted(t *testing.T) {
	docs := &stubDocumentRepo{docs: map[string]models.Document{
		"d1": {ID: "d1", Title: "Notes", Content: datatypes.JSON(`{"blocks":["keep"]}`), TeamID: "t1", AuthorID: "u1"},
	}}
	svc := newTestWorkspaceService(docs)

	updated, err := svc.UpdateDocument(context.Background(), "d1", "u1", dto.DocumentUpdateRequest{Title: "Renamed"})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.JSONEq(t, `{"blocks":["keep"]}`, string(updated.Content), "title-only update must not blank the body")
}

func TestWorkspaceServiceUpdateDocumentNotFound(t *testing.T) {
	svc := newTestWorkspaceService(&stubDocumentRepo{})

	_, err := svc.UpdateDocument(context.Background(), "missing", "u1", dto.DocumentUpdateRequest{Title: "x"})
	require.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = svc.ListDocumentVersions(context.Background(), "missing")
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestWorkspaceServiceUpdateDocumentSanitizesTitle(t *testing.T) {
	docs := &stubDocumentRepo{docs: map[string]models.Document{
		"d1": {ID: "d1", Title: "Notes", TeamID: "t1", AuthorID: "u1"},
	}}
	svc := newTestWorkspaceService(docs)

	updated, err := svc.UpdateDocument(context.Background(), "d1", "u1", dto.DocumentUpdateRequest{
		Title: "Roadmap <script>alert(1)</script>",
	})
	require.NoError(t, err)
	require.Equal(t, "Roadmap", updated.Title)

	_, err = svc.UpdateDocument(context.Background(), "d1", "u1", dto.DocumentUpdateRequest{
		Title: "<script>only markup</script>",
	})
	require.Error(t, err)
}
