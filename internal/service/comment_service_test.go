package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/models"
	"github.com/collabflow/collabflow-api/internal/repository"
)

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type stubCommentRepo struct {
	created []models.Comment
	byID    map[string]models.Comment
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = "c" + time.Now().Format("150405.000")
	comment.CreatedAt = time.Now()
	s.created = append(s.created, *comment)
	return nil
}

func (s *stubCommentRepo) FindByID(ctx context.Context, id string) (models.Comment, error) {
	if comment, ok := s.byID[id]; ok {
		return comment, nil
	}
	return models.Comment{}, gorm.ErrRecordNotFound
}

func (s *stubCommentRepo) ListByDocument(ctx context.Context, documentID string, limit, offset int) ([]models.Comment, error) {
	return s.created, nil
}

func (s *stubCommentRepo) ListByIssue(ctx context.Context, issueID string, limit, offset int) ([]models.Comment, error) {
	return s.created, nil
}

func (s *stubCommentRepo) Delete(ctx context.Context, id, authorID string) error {
	return gorm.ErrRecordNotFound
}

type stubDocumentRepo struct {
	docs     map[string]models.Document
	versions map[string][]models.DocumentVersion
}

func (s *stubDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	if s.docs == nil {
		s.docs = map[string]models.Document{}
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (s *stubDocumentRepo) FindByID(ctx context.Context, id string) (*models.Document, error) {
	if doc, ok := s.docs[id]; ok {
		return &doc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDocumentRepo) ListByTeam(ctx context.Context, teamID string) ([]models.Document, error) {
	return nil, nil
}

func (s *stubDocumentRepo) Update(ctx context.Context, doc *models.Document, snapshotBy string) error {
	current, ok := s.docs[doc.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if s.versions == nil {
		s.versions = map[string][]models.DocumentVersion{}
	}
	snapshot := models.DocumentVersion{
		DocumentID: doc.ID,
		Version:    len(s.versions[doc.ID]) + 1,
		Content:    current.Content,
		CreatedBy:  snapshotBy,
	}
	s.versions[doc.ID] = append([]models.DocumentVersion{snapshot}, s.versions[doc.ID]...)
	s.docs[doc.ID] = *doc
	return nil
}

func (s *stubDocumentRepo) ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	return s.versions[documentID], nil
}

func (s *stubDocumentRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type stubIssueRepo struct {
	issues map[string]models.Issue
}

func (s *stubIssueRepo) Create(ctx context.Context, issue *models.Issue) error {
	if s.issues == nil {
		s.issues = map[string]models.Issue{}
	}
	if issue.ID == "" {
		issue.ID = "i1"
	}
	if issue.Status == "" {
		issue.Status = models.IssueStatusTodo
	}
	s.issues[issue.ID] = *issue
	return nil
}

func (s *stubIssueRepo) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	if issue, ok := s.issues[id]; ok {
		return &issue, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubIssueRepo) ListByProject(ctx context.Context, projectID string) ([]models.Issue, error) {
	return nil, nil
}

func (s *stubIssueRepo) UpdateStatus(ctx context.Context, id, status string) error {
	issue, ok := s.issues[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	issue.Status = status
	s.issues[id] = issue
	return nil
}

func (s *stubIssueRepo) UpdateAssignee(ctx context.Context, id string, assigneeID *string) error {
	issue, ok := s.issues[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	issue.AssigneeID = assigneeID
	s.issues[id] = issue
	return nil
}

func (s *stubIssueRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type stubTeamRepo struct {
	team    models.Team
	members []models.TeamMember
	added   []models.TeamMember
}

func (s *stubTeamRepo) Create(ctx context.Context, team *models.Team, ownerID string) error {
	team.ID = "t1"
	s.team = *team
	return nil
}

func (s *stubTeamRepo) FindByID(ctx context.Context, id string) (models.Team, error) {
	if s.team.ID == "" {
		return models.Team{}, gorm.ErrRecordNotFound
	}
	return s.team, nil
}

func (s *stubTeamRepo) Update(ctx context.Context, team *models.Team) error {
	s.team = *team
	return nil
}

func (s *stubTeamRepo) Delete(ctx context.Context, id string) error { return nil }

func (s *stubTeamRepo) ListMembers(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	return s.members, nil
}

func (s *stubTeamRepo) FindMember(ctx context.Context, teamID, userID string) (models.TeamMember, error) {
	for _, member := range s.members {
		if member.UserID == userID {
			return member, nil
		}
	}
	return models.TeamMember{}, gorm.ErrRecordNotFound
}

func (s *stubTeamRepo) AddMember(ctx context.Context, member *models.TeamMember) error {
	member.ID = "m-new"
	s.added = append(s.added, *member)
	s.members = append(s.members, *member)
	return nil
}

func (s *stubTeamRepo) UpdateMemberRole(ctx context.Context, memberID, role string) error { return nil }

func (s *stubTeamRepo) RemoveMember(ctx context.Context, memberID string) error { return nil }

type stubUserRepo struct {
	users map[string]models.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (s *stubUserRepo) FindByID(ctx context.Context, id string) (models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

type notifierCall struct {
	kind   string
	userID string
	actor  string
	where  string
}

type stubNotifier struct {
	mu    sync.Mutex
	calls []notifierCall
}

func (s *stubNotifier) record(call notifierCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubNotifier) NotifyMention(ctx context.Context, userID, mentionedBy, where string, link *string) {
	s.record(notifierCall{kind: "mention", userID: userID, actor: mentionedBy, where: where})
}

func (s *stubNotifier) NotifyComment(ctx context.Context, userID, commenter, where string, link *string) {
	s.record(notifierCall{kind: "comment", userID: userID, actor: commenter, where: where})
}

func (s *stubNotifier) NotifyAssignment(ctx context.Context, userID, assignedBy, issueTitle string, link *string) {
	s.record(notifierCall{kind: "assignment", userID: userID, actor: assignedBy, where: issueTitle})
}

func (s *stubNotifier) NotifyInvitation(ctx context.Context, userID, invitedBy, teamName string, link *string) {
	s.record(notifierCall{kind: "invitation", userID: userID, actor: invitedBy, where: teamName})
}

func (s *stubNotifier) byKind(kind string) []notifierCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []notifierCall{}
	for _, call := range s.calls {
		if call.kind == kind {
			out = append(out, call)
		}
	}
	return out
}

type mailCall struct {
	kind    string
	to      string
	preview string
}

type stubMailer struct {
	mu    sync.Mutex
	fail  error
	calls []mailCall
}

func (s *stubMailer) record(call mailCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	return s.fail
}

func (s *stubMailer) Send(ctx context.Context, to, subject, html string) error {
	return s.record(mailCall{kind: "raw", to: to})
}

func (s *stubMailer) SendMentionEmail(ctx context.Context, to, mentionedBy, where, link string) error {
	return s.record(mailCall{kind: "mention", to: to})
}

func (s *stubMailer) SendCommentEmail(ctx context.Context, to, commenter, where, preview, link string) error {
	return s.record(mailCall{kind: "comment", to: to, preview: preview})
}

func (s *stubMailer) SendAssignmentEmail(ctx context.Context, to, assignedBy, issueTitle, link string) error {
	return s.record(mailCall{kind: "assignment", to: to})
}

func (s *stubMailer) SendInvitationEmail(ctx context.Context, to, inviter, teamName, link string) error {
	return s.record(mailCall{kind: "invitation", to: to})
}

func (s *stubMailer) byKind(kind string) []mailCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []mailCall{}
	for _, call := range s.calls {
		if call.kind == kind {
			out = append(out, call)
		}
	}
	return out
}

func rosterMembers() []models.TeamMember {
	alice := "Alice"
	bob := "bob"
	carol := "Carol"
	return []models.TeamMember{
		{ID: "m1", TeamID: "t1", UserID: "u1", Role: models.RoleOwner, User: models.User{ID: "u1", Name: &alice, Email: "alice@example.com"}},
		{ID: "m2", TeamID: "t1", UserID: "u2", Role: models.RoleMember, User: models.User{ID: "u2", Name: &bob, Email: "bob@example.com"}},
		{ID: "m3", TeamID: "t1", UserID: "u3", Role: models.RoleMember, User: models.User{ID: "u3", Name: &carol, Email: "carol@example.com"}},
	}
}

func newTestCommentService(comments *stubCommentRepo, docs *stubDocumentRepo, teams *stubTeamRepo, notifier *stubNotifier, mail *stubMailer) CommentService {
	carol := "Carol"
	users := &stubUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "alice@example.com"},
		"u3": {ID: "u3", Name: &carol, Email: "carol@example.com"},
	}}
	return NewCommentService(comments, docs, &stubIssueRepo{}, teams, users, notifier, mail,
		testValidator(), zerolog.Nop(), "http://localhost:3000", 4)
}

func TestCommentServiceCreateResolvesMentionsAndFansOut(t *testing.T) {
	comments := &stubCommentRepo{}
	docs := &stubDocumentRepo{docs: map[string]models.Document{
		"d1": {ID: "d1", Title: "Launch Plan", TeamID: "t1", AuthorID: "u1"},
	}}
	teams := &stubTeamRepo{members: rosterMembers()}
	notifier := &stubNotifier{}
	mail := &stubMailer{}
	svc := newTestCommentService(comments, docs, teams, notifier, mail)

	docID := "d1"
	teamID := "t1"
	response, err := svc.Create(context.Background(), "u3", dto.CommentCreateRequest{
		Content:    "Thanks @Alice and @bob for the review!",
		DocumentID: &docID,
		TeamID:     &teamID,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, response.Mentions)
	require.Contains(t, response.ContentHTML, `data-user-id="u1"`)
	require.Contains(t, response.ContentHTML, `data-user-id="u2"`)

	mentions := notifier.byKind("mention")
	require.Len(t, mentions, 2)
	for _, call := range mentions {
		require.Equal(t, "Carol", call.actor)
		require.Equal(t, "Launch Plan", call.where)
	}
	require.Len(t, mail.byKind("mention"), 2)
}

func TestCommentServiceCreateNotifiesDocumentOwnerWithPreview(t *testing.T) {
	comments := &stubCommentRepo{}
	docs := &stubDocumentRepo{docs: map[string]models.Document{
		"d1": {ID: "d1", Title: "Launch Plan", TeamID: "t1", AuthorID: "u1"},
	}}
	teams := &stubTeamRepo{members: rosterMembers()}
	notifier := &stubNotifier{}
	mail := &stubMailer{}
	svc := newTestCommentService(comments, docs, teams, notifier, mail)

	long := ""
	for i := 0; i < 30; i++ {
		long += "0123456789"
	}

	docID := "d1"
	teamID := "t1"
	_, err := svc.Create(context.Background(), "u3", dto.CommentCreateRequest{
		Content:    long,
		DocumentID: &docID,
		TeamID:     &teamID,
	})
	require.NoError(t, err)

	ownerCalls := notifier.byKind("comment")
	require.Len(t, ownerCalls, 1)
	require.Equal(t, "u1", ownerCalls[0].userID)

	emails := mail.byKind("comment")
	require.Len(t, emails, 1)
	require.Len(t, emails[0].preview, 100)
}

func TestCommentServiceCreatePreviewKeepsRunesIntact(t *testing.T) {
	comments := &stubCommentRepo{}
	docs := &stubDocumentRepo{docs: map[string]models.Document{
		"d1": {ID: "d1", Title: "Launch Plan", TeamID: "t1", AuthorID: "u1"},
	}}
	teams := &stubTeamRepo{members: rosterMembers()}
	notifier := &stubNotifier{}
	mail := &stubMailer{}
	svc := newTestCommentService(comments, docs, teams, notifier, mail)

	// Place a multi-byte rune straddling the 100-byte cut point.
	long := strings.Repeat("x", 99) + strings.Repeat("é", 20)

	docID := "d1"
	teamID := "t1"
	_, err := svc.Create(context.Background(), "u3", dto.CommentCreateRequest{
		Content:    long,
		DocumentID: &docID,
		TeamID:     &teamID,
	})
	require.NoError(t, err)

	emails := mail.byKind("comment")
	require.Len(t, emails, 1)
	require.True(t, utf8.ValidString(emails[0].preview))
	require.LessOrEqual(t, len(emails[0].preview), 100)
	require.Equal(t, strings.Repeat("x", 99), emails[0].preview)
}

func TestCommentServiceCreateSkipsOwnerWhenMentioned(t *testing.T) {
	comments := &stubCommentRepo{}
	docs := &stubDocumentRepo{docs: map[string]models.Document{
		"d1": {ID: "d1", Title: "Launch Plan", TeamID: "t1", AuthorID: "u1"},
	}}
	teams := &stubTeamRepo{members: rosterMembers()}
	notifier := &stubNotifier{}
	mail := &stubMailer{}
	svc := newTestCommentService(comments, docs, teams, notifier, mail)

	docID := "d1"
	teamID := "t1"
	_, err := svc.Create(context.Background(), "u3", dto.CommentCreateRequest{
		Content:    "ping @Alice",
		DocumentID: &docID,
		TeamID:     &teamID,
	})
	require.NoError(t, err)

	require.Len(t, notifier.byKind("mention"), 1)
	require.Empty(t, notifier.byKind("comment"), "owner already reached via mention")
}

func TestCommentServiceCreateSuppressesSelfNotification(t *testing.T) {
	comments := &stubCommentRepo{}
	docs := &stubDocumentRepo{docs: map[string]models.Document{
		"d1": {ID: "d1", Title: "Launch Plan", TeamID: "t1", AuthorID: "u3"},
	}}
	teams := &stubTeamRepo{members: rosterMembers()}
	notifier := &stubNotifier{}
	mail := &stubMailer{}
	svc := newTestCommentService(comments, docs, teams, notifier, mail)

	docID := "d1"
	teamID := "t1"
	response, err := svc.Create(context.Background(), "u3", dto.CommentCreateRequest{
		Content:    "note to self @Carol",
		DocumentID: &docID,
		TeamID:     &teamID,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"u3"}, response.Mentions, "self-mention is recorded")
	require.Empty(t, notifier.calls, "but never notified")
}

func TestCommentServiceCreateRequiresExactlyOneTarget(t *testing.T) {
	svc := newTestCommentService(&stubCommentRepo{}, &stubDocumentRepo{}, &stubTeamRepo{}, &stubNotifier{}, &stubMailer{})

	_, err := svc.Create(context.Background(), "u1", dto.CommentCreateRequest{Content: "hello"})
	require.ErrorIs(t, err, ErrCommentTargetRequired)

	docID := "d1"
	issueID := "i1"
	_, err = svc.Create(context.Background(), "u1", dto.CommentCreateRequest{
		Content:    "hello",
		DocumentID: &docID,
		IssueID:    &issueID,
	})
	require.ErrorIs(t, err, ErrCommentTargetRequired)
}

func TestCommentServiceCreateSurvivesEmailFailure(t *testing.T) {
	comments := &stubCommentRepo{}
	docs := &stubDocumentRepo{docs: map[string]models.Document{
		"d1": {ID: "d1", Title: "Launch Plan", TeamID: "t1", AuthorID: "u1"},
	}}
	teams := &stubTeamRepo{members: rosterMembers()}
	notifier := &stubNotifier{}
	mail := &stubMailer{fail: errSMTPDown}
	svc := newTestCommentService(comments, docs, teams, notifier, mail)

	docID := "d1"
	teamID := "t1"
	_, err := svc.Create(context.Background(), "u3", dto.CommentCreateRequest{
		Content:    "hey @Alice and @bob",
		DocumentID: &docID,
		TeamID:     &teamID,
	})
	require.NoError(t, err)
	require.Len(t, notifier.byKind("mention"), 2, "notifications still delivered")
}

var errSMTPDown = errTest("smtp down")

type errTest string

func (e errTest) Error() string { return string(e) }

var _ repository.CommentRepository = (*stubCommentRepo)(nil)
var _ repository.DocumentRepository = (*stubDocumentRepo)(nil)
var _ repository.IssueRepository = (*stubIssueRepo)(nil)
var _ repository.TeamRepository = (*stubTeamRepo)(nil)
var _ repository.UserRepository = (*stubUserRepo)(nil)
