package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/models"
)

func newTestIssueService(issues *stubIssueRepo, users *stubUserRepo, notifier *stubNotifier, mail *stubMailer) IssueService {
	return NewIssueService(issues, users, notifier, mail, testValidator(), zerolog.Nop(), "http://localhost:3000")
}

func issueTestUsers() *stubUserRepo {
	alice := "Alice"
	bob := "bob"
	return &stubUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Name: &alice, Email: "alice@example.com"},
		"u2": {ID: "u2", Name: &bob, Email: "bob@example.com"},
	}}
}

func TestIssueServiceCreateNotifiesAssignee(t *testing.T) {
	notifier := &stubNotifier{}
	mail := &stubMailer{}
	svc := newTestIssueService(&stubIssueRepo{}, issueTestUsers(), notifier, mail)

	assignee := "u2"
	issue, err := svc.Create(context.Background(), "u1", dto.IssueCreateRequest{
		Title:      "Fix login flow",
		ProjectID:  "p1",
		TeamID:     "t1",
		AssigneeID: &assignee,
	})
	require.NoError(t, err)
	require.Equal(t, models.IssueStatusTodo, issue.Status)

	assignments := notifier.byKind("assignment")
	require.Len(t, assignments, 1)
	require.Equal(t, "u2", assignments[0].userID)
	require.Equal(t, "Alice", assignments[0].actor)
	require.Equal(t, "Fix login flow", assignments[0].where)

	emails := mail.byKind("assignment")
	require.Len(t, emails, 1)
	require.Equal(t, "bob@example.com", emails[0].to)
}

func TestIssueServiceCreateSuppressesSelfAssignment(t *testing.T) {
	notifier := &stubNotifier{}
	mail := &stubMailer{}
	svc := newTestIssueService(&stubIssueRepo{}, issueTestUsers(), notifier, mail)

	assignee := "u1"
	_, err := svc.Create(context.Background(), "u1", dto.IssueCreateRequest{
		Title:      "Self task",
		ProjectID:  "p1",
		TeamID:     "t1",
		AssigneeID: &assignee,
	})
	require.NoError(t, err)
	require.Empty(t, notifier.calls)
	require.Empty(t, mail.calls)
}

func TestIssueServiceAssignReassignsAndNotifies(t *testing.T) {
	issues := &stubIssueRepo{issues: map[string]models.Issue{
		"i1": {ID: "i1", Title: "Fix login flow", ProjectID: "p1", TeamID: "t1", Status: models.IssueStatusTodo},
	}}
	notifier := &stubNotifier{}
	svc := newTestIssueService(issues, issueTestUsers(), notifier, &stubMailer{})

	assignee := "u2"
	issue, err := svc.Assign(context.Background(), "i1", "u1", dto.IssueAssignRequest{AssigneeID: &assignee})
	require.NoError(t, err)
	require.Equal(t, "u2", *issue.AssigneeID)
	require.Len(t, notifier.byKind("assignment"), 1)
}

func TestIssueServiceUpdateStatusValidatesEnum(t *testing.T) {
	issues := &stubIssueRepo{issues: map[string]models.Issue{
		"i1": {ID: "i1", Title: "Fix login flow", Status: models.IssueStatusTodo},
	}}
	svc := newTestIssueService(issues, issueTestUsers(), &stubNotifier{}, &stubMailer{})

	_, err := svc.UpdateStatus(context.Background(), "i1", dto.IssueStatusUpdateRequest{Status: "shipped"})
	require.Error(t, err)

	issue, err := svc.UpdateStatus(context.Background(), "i1", dto.IssueStatusUpdateRequest{Status: models.IssueStatusDone})
	require.NoError(t, err)
	require.Equal(t, models.IssueStatusDone, issue.Status)

	_, err = svc.UpdateStatus(context.Background(), "missing", dto.IssueStatusUpdateRequest{Status: models.IssueStatusDone})
	require.ErrorIs(t, err, ErrIssueNotFound)
}
