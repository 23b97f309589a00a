package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/mailer"
	"github.com/collabflow/collabflow-api/internal/mention"
	"github.com/collabflow/collabflow-api/internal/models"
	"github.com/collabflow/collabflow-api/internal/repository"
)

const commentPreviewLength = 100

// ErrCommentTargetRequired indicates the payload did not name exactly one of
// document_id and issue_id.
var ErrCommentTargetRequired = errors.New("exactly one of document_id or issue_id must be set")

// ErrCommentNotFound covers both a missing comment and one owned by another
// author.
var ErrCommentNotFound = errors.New("comment not found")

// Notifier is the subset of the notification service the content-create
// paths depend on.
type Notifier interface {
	NotifyMention(ctx context.Context, userID, mentionedBy, where string, link *string)
	NotifyComment(ctx context.Context, userID, commenter, where string, link *string)
}

// CommentService creates, lists and deletes comments, resolving mentions and
// fanning out notifications and best-effort emails.
type CommentService interface {
	Create(ctx context.Context, authorID string, payload dto.CommentCreateRequest) (dto.CommentResponse, error)
	List(ctx context.Context, query dto.CommentListQuery) ([]dto.CommentResponse, error)
	Delete(ctx context.Context, id, authorID string) error
}

type commentService struct {
	comments  repository.CommentRepository
	documents repository.DocumentRepository
	issues    repository.IssueRepository
	teams     repository.TeamRepository
	users     repository.UserRepository
	notifier  Notifier
	mail      mailer.Mailer
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	baseURL   string
	workers   int
}

// NewCommentService constructs a comment service. workers bounds the
// notification fan-out pool.
func NewCommentService(
	comments repository.CommentRepository,
	documents repository.DocumentRepository,
	issues repository.IssueRepository,
	teams repository.TeamRepository,
	users repository.UserRepository,
	notifier Notifier,
	mail mailer.Mailer,
	validate *validator.Validate,
	logger zerolog.Logger,
	baseURL string,
	workers int,
) CommentService {
	if workers <= 0 {
		workers = 4
	}

	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &commentService{
		comments:  comments,
		documents: documents,
		issues:    issues,
		teams:     teams,
		users:     users,
		notifier:  notifier,
		mail:      mail,
		validator: validate,
		logger:    logger.With().Str("component", "comment_service").Logger(),
		tracer:    otel.Tracer("github.com/collabflow/collabflow-api/internal/service/comment"),
		sanitizer: policy,
		baseURL:   strings.TrimRight(baseURL, "/"),
		workers:   workers,
	}
}

func (s *commentService) Create(ctx context.Context, authorID string, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}
	if !exactlyOne(payload.DocumentID, payload.IssueID) {
		return dto.CommentResponse{}, ErrCommentTargetRequired
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.CommentResponse{}, errors.New("comment content empty after sanitization")
	}

	spanCtx, span := s.tracer.Start(ctx, "comments.create",
		trace.WithAttributes(attribute.String("comment.author_id", authorID)))
	defer span.End()

	roster, err := s.loadRoster(spanCtx, payload.TeamID)
	if err != nil {
		span.RecordError(err)
		return dto.CommentResponse{}, err
	}

	mentioned := mention.ResolveIDs(content, roster)

	comment := models.Comment{
		Content:    content,
		AuthorID:   authorID,
		DocumentID: payload.DocumentID,
		IssueID:    payload.IssueID,
		ParentID:   payload.ParentID,
		Mentions:   datatypes.NewJSONSlice(mentioned),
	}

	if err := s.comments.Create(spanCtx, &comment); err != nil {
		span.RecordError(err)
		return dto.CommentResponse{}, err
	}

	s.logger.Info().
		Str("comment_id", comment.ID).
		Str("author_id", authorID).
		Int("mentions", len(mentioned)).
		Msg("comment created")

	s.dispatch(spanCtx, comment, roster)

	response := dto.NewCommentResponse(comment)
	response.ContentHTML = mention.Format(content, roster)
	return response, nil
}

func (s *commentService) List(ctx context.Context, query dto.CommentListQuery) ([]dto.CommentResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}
	if !exactlyOne(query.DocumentID, query.IssueID) {
		return nil, ErrCommentTargetRequired
	}

	var (
		comments []models.Comment
		err      error
	)
	if query.DocumentID != nil {
		comments, err = s.comments.ListByDocument(ctx, *query.DocumentID, query.Limit, query.Offset)
	} else {
		comments, err = s.comments.ListByIssue(ctx, *query.IssueID, query.Limit, query.Offset)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewCommentResponseSlice(comments), nil
}

func (s *commentService) Delete(ctx context.Context, id, authorID string) error {
	err := s.comments.Delete(ctx, id, authorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCommentNotFound
	}
	return err
}

// loadRoster returns the mention roster for the given team, or an empty
// roster when no team scopes the comment.
func (s *commentService) loadRoster(ctx context.Context, teamID *string) ([]mention.RosterEntry, error) {
	if teamID == nil || *teamID == "" {
		return nil, nil
	}

	members, err := s.teams.ListMembers(ctx, *teamID)
	if err != nil {
		return nil, err
	}

	roster := make([]mention.RosterEntry, 0, len(members))
	for _, member := range members {
		name := ""
		if member.User.Name != nil {
			name = *member.User.Name
		}
		roster = append(roster, mention.RosterEntry{
			ID:    member.UserID,
			Name:  name,
			Email: member.User.Email,
		})
	}
	return roster, nil
}

// dispatch fans out mention notifications plus the document-owner comment
// notification. It runs synchronously on a bounded pool; individual
// recipient failures are isolated and never fail the comment write.
func (s *commentService) dispatch(ctx context.Context, comment models.Comment, roster []mention.RosterEntry) {
	author, err := s.users.FindByID(ctx, comment.AuthorID)
	if err != nil {
		s.logger.Warn().Err(err).Str("author_id", comment.AuthorID).Msg("comment author lookup failed, skipping fan-out")
		return
	}
	authorName := author.DisplayName()

	where, link := s.describeTarget(ctx, comment)

	byID := make(map[string]mention.RosterEntry, len(roster))
	for _, entry := range roster {
		byID[entry.ID] = entry
	}

	recipients := make([]string, 0, len(comment.Mentions))
	for _, userID := range comment.Mentions {
		if userID == comment.AuthorID {
			continue
		}
		recipients = append(recipients, userID)
	}

	fanOut(ctx, s.workers, recipients, func(ctx context.Context, userID string) {
		s.notifier.NotifyMention(ctx, userID, authorName, where, &link)
		entry, ok := byID[userID]
		if !ok || entry.Email == "" {
			return
		}
		if err := s.mail.SendMentionEmail(ctx, entry.Email, authorName, where, link); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("mention email delivery failed")
		}
	})

	s.notifyDocumentOwner(ctx, comment, authorName, where, link)
}

func (s *commentService) notifyDocumentOwner(ctx context.Context, comment models.Comment, authorName, where, link string) {
	if comment.DocumentID == nil {
		return
	}

	doc, err := s.documents.FindByID(ctx, *comment.DocumentID)
	if err != nil {
		s.logger.Warn().Err(err).Str("document_id", *comment.DocumentID).Msg("document lookup failed, skipping owner notification")
		return
	}
	if doc.AuthorID == comment.AuthorID {
		return
	}
	for _, mentionedID := range comment.Mentions {
		if mentionedID == doc.AuthorID {
			// Already notified through the mention path.
			return
		}
	}

	s.notifier.NotifyComment(ctx, doc.AuthorID, authorName, where, &link)

	owner, err := s.users.FindByID(ctx, doc.AuthorID)
	if err != nil || owner.Email == "" {
		return
	}
	preview := truncatePreview(comment.Content, commentPreviewLength)
	if err := s.mail.SendCommentEmail(ctx, owner.Email, authorName, where, preview, link); err != nil {
		s.logger.Warn().Err(err).Str("user_id", doc.AuthorID).Msg("comment email delivery failed")
	}
}

func (s *commentService) describeTarget(ctx context.Context, comment models.Comment) (where, link string) {
	switch {
	case comment.DocumentID != nil:
		link = s.baseURL + "/documents/" + *comment.DocumentID
		where = "a document"
		if doc, err := s.documents.FindByID(ctx, *comment.DocumentID); err == nil {
			where = doc.Title
		}
	case comment.IssueID != nil:
		link = s.baseURL + "/issues/" + *comment.IssueID
		where = "an issue"
		if issue, err := s.issues.FindByID(ctx, *comment.IssueID); err == nil {
			where = issue.Title
		}
	}
	return where, link
}

// truncatePreview shortens text to at most max bytes, backing up to the
// nearest rune boundary so the cut never produces invalid UTF-8.
func truncatePreview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// fanOut runs deliver for every recipient on at most workers goroutines and
// waits for completion.
func fanOut(ctx context.Context, workers int, recipients []string, deliver func(context.Context, string)) {
	if len(recipients) == 0 {
		return
	}

	if workers <= 0 {
		workers = 1
	}
	if workers > len(recipients) {
		workers = len(recipients)
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for userID := range jobs {
				deliver(ctx, userID)
			}
		}()
	}

	for _, userID := range recipients {
		jobs <- userID
	}
	close(jobs)
	wg.Wait()
}

func exactlyOne(a, b *string) bool {
	set := 0
	if a != nil && *a != "" {
		set++
	}
	if b != nil && *b != "" {
		set++
	}
	return set == 1
}
