package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/mailer"
	"github.com/collabflow/collabflow-api/internal/models"
	"github.com/collabflow/collabflow-api/internal/repository"
)

// ErrIssueNotFound indicates the issue does not exist.
var ErrIssueNotFound = errors.New("issue not found")

// AssignmentNotifier is the subset of the notification service the issue
// paths depend on.
type AssignmentNotifier interface {
	NotifyAssignment(ctx context.Context, userID, assignedBy, issueTitle string, link *string)
}

// IssueService manages work items and their assignment notifications.
type IssueService interface {
	Create(ctx context.Context, actorID string, payload dto.IssueCreateRequest) (dto.IssueResponse, error)
	Get(ctx context.Context, id string) (dto.IssueResponse, error)
	ListByProject(ctx context.Context, projectID string) ([]dto.IssueResponse, error)
	UpdateStatus(ctx context.Context, id string, payload dto.IssueStatusUpdateRequest) (dto.IssueResponse, error)
	Assign(ctx context.Context, id, actorID string, payload dto.IssueAssignRequest) (dto.IssueResponse, error)
	Delete(ctx context.Context, id string) error
}

type issueService struct {
	issues    repository.IssueRepository
	users     repository.UserRepository
	notifier  AssignmentNotifier
	mail      mailer.Mailer
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	baseURL   string
}

// NewIssueService constructs an issue service.
func NewIssueService(
	issues repository.IssueRepository,
	users repository.UserRepository,
	notifier AssignmentNotifier,
	mail mailer.Mailer,
	validate *validator.Validate,
	logger zerolog.Logger,
	baseURL string,
) IssueService {
	return &issueService{
		issues:    issues,
		users:     users,
		notifier:  notifier,
		mail:      mail,
		validator: validate,
		logger:    logger.With().Str("component", "issue_service").Logger(),
		tracer:    otel.Tracer("github.com/collabflow/collabflow-api/internal/service/issue"),
		sanitizer: bluemonday.StrictPolicy(),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (s *issueService) Create(ctx context.Context, actorID string, payload dto.IssueCreateRequest) (dto.IssueResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.IssueResponse{}, err
	}

	title := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	if title == "" {
		return dto.IssueResponse{}, errors.New("issue title empty after sanitization")
	}

	spanCtx, span := s.tracer.Start(ctx, "issues.create",
		trace.WithAttributes(attribute.String("issue.project_id", payload.ProjectID)))
	defer span.End()

	issue := models.Issue{
		Title:       title,
		Description: payload.Description,
		ProjectID:   payload.ProjectID,
		TeamID:      payload.TeamID,
		AssigneeID:  payload.AssigneeID,
	}
	if payload.Status != "" {
		issue.Status = payload.Status
	}
	if payload.Priority != "" {
		issue.Priority = payload.Priority
	}
	if payload.Type != "" {
		issue.Type = payload.Type
	}

	if err := s.issues.Create(spanCtx, &issue); err != nil {
		span.RecordError(err)
		return dto.IssueResponse{}, err
	}

	s.logger.Info().Str("issue_id", issue.ID).Str("project_id", issue.ProjectID).Msg("issue created")

	s.notifyAssignee(spanCtx, issue, actorID)

	return dto.NewIssueResponse(issue), nil
}

func (s *issueService) Get(ctx context.Context, id string) (dto.IssueResponse, error) {
	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.IssueResponse{}, ErrIssueNotFound
		}
		return dto.IssueResponse{}, err
	}
	return dto.NewIssueResponse(*issue), nil
}

func (s *issueService) ListByProject(ctx context.Context, projectID string) ([]dto.IssueResponse, error) {
	issues, err := s.issues.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return dto.NewIssueResponseSlice(issues), nil
}

func (s *issueService) UpdateStatus(ctx context.Context, id string, payload dto.IssueStatusUpdateRequest) (dto.IssueResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.IssueResponse{}, err
	}

	if err := s.issues.UpdateStatus(ctx, id, payload.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.IssueResponse{}, ErrIssueNotFound
		}
		return dto.IssueResponse{}, err
	}

	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return dto.IssueResponse{}, err
	}
	return dto.NewIssueResponse(*issue), nil
}

func (s *issueService) Assign(ctx context.Context, id, actorID string, payload dto.IssueAssignRequest) (dto.IssueResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.IssueResponse{}, err
	}

	if err := s.issues.UpdateAssignee(ctx, id, payload.AssigneeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.IssueResponse{}, ErrIssueNotFound
		}
		return dto.IssueResponse{}, err
	}

	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return dto.IssueResponse{}, err
	}

	s.notifyAssignee(ctx, *issue, actorID)

	return dto.NewIssueResponse(*issue), nil
}

func (s *issueService) Delete(ctx context.Context, id string) error {
	err := s.issues.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrIssueNotFound
	}
	return err
}

// notifyAssignee tells the assignee about the assignment. Self-assignment
// is suppressed; email delivery is best effort.
func (s *issueService) notifyAssignee(ctx context.Context, issue models.Issue, actorID string) {
	if issue.AssigneeID == nil || *issue.AssigneeID == "" || *issue.AssigneeID == actorID {
		return
	}

	actorName := actorID
	if actor, err := s.users.FindByID(ctx, actorID); err == nil {
		actorName = actor.DisplayName()
	}

	link := s.baseURL + "/issues/" + issue.ID
	s.notifier.NotifyAssignment(ctx, *issue.AssigneeID, actorName, issue.Title, &link)

	assignee, err := s.users.FindByID(ctx, *issue.AssigneeID)
	if err != nil || assignee.Email == "" {
		return
	}
	if err := s.mail.SendAssignmentEmail(ctx, assignee.Email, actorName, issue.Title, link); err != nil {
		s.logger.Warn().Err(err).Str("user_id", *issue.AssigneeID).Msg("assignment email delivery failed")
	}
}
