package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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

var (
	// ErrTeamNotFound indicates the team does not exist.
	ErrTeamNotFound = errors.New("team not found")
	// ErrTeamForbidden indicates the actor lacks the role for the operation.
	ErrTeamForbidden = errors.New("insufficient role for team operation")
	// ErrUserNotFound indicates no account exists for the invited email.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyMember indicates the invitee already belongs to the team.
	ErrAlreadyMember = errors.New("user is already a team member")
	// ErrMemberNotFound indicates the membership row does not exist.
	ErrMemberNotFound = errors.New("team member not found")
	// ErrOwnerImmutable rejects role changes and removal for the owner.
	ErrOwnerImmutable = errors.New("owner membership cannot be changed")
)

// TeamNotifier is the subset of the notification service the team paths
// depend on.
type TeamNotifier interface {
	NotifyInvitation(ctx context.Context, userID, invitedBy, teamName string, link *string)
}

// TeamService manages teams and their member rosters.
type TeamService interface {
	Create(ctx context.Context, ownerID string, payload dto.TeamCreateRequest) (dto.TeamResponse, error)
	Get(ctx context.Context, id string) (dto.TeamResponse, error)
	Update(ctx context.Context, id, actorID string, payload dto.TeamUpdateRequest) (dto.TeamResponse, error)
	Delete(ctx context.Context, id, actorID string) error
	ListMembers(ctx context.Context, teamID string) ([]dto.TeamMemberResponse, error)
	InviteMember(ctx context.Context, teamID, inviterID string, payload dto.InviteMemberRequest) (dto.TeamMemberResponse, error)
	UpdateMemberRole(ctx context.Context, teamID, memberID, actorID string, payload dto.UpdateMemberRoleRequest) error
	RemoveMember(ctx context.Context, teamID, memberID, actorID string) error
}

type teamService struct {
	teams     repository.TeamRepository
	users     repository.UserRepository
	notifier  TeamNotifier
	mail      mailer.Mailer
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	baseURL   string
}

// NewTeamService constructs a team service.
func NewTeamService(
	teams repository.TeamRepository,
	users repository.UserRepository,
	notifier TeamNotifier,
	mail mailer.Mailer,
	validate *validator.Validate,
	logger zerolog.Logger,
	baseURL string,
) TeamService {
	return &teamService{
		teams:     teams,
		users:     users,
		notifier:  notifier,
		mail:      mail,
		validator: validate,
		logger:    logger.With().Str("component", "team_service").Logger(),
		tracer:    otel.Tracer("github.com/collabflow/collabflow-api/internal/service/team"),
		sanitizer: bluemonday.StrictPolicy(),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (s *teamService) Create(ctx context.Context, ownerID string, payload dto.TeamCreateRequest) (dto.TeamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeamResponse{}, err
	}

	name := strings.TrimSpace(s.sanitizer.Sanitize(payload.Name))
	if name == "" {
		return dto.TeamResponse{}, errors.New("team name empty after sanitization")
	}

	spanCtx, span := s.tracer.Start(ctx, "teams.create",
		trace.WithAttributes(attribute.String("team.owner_id", ownerID)))
	defer span.End()

	team := models.Team{
		Name:        name,
		Slug:        slugify(name),
		Description: payload.Description,
	}

	if err := s.teams.Create(spanCtx, &team, ownerID); err != nil {
		span.RecordError(err)
		return dto.TeamResponse{}, err
	}

	s.logger.Info().Str("team_id", team.ID).Str("owner_id", ownerID).Msg("team created")

	return dto.NewTeamResponse(team), nil
}

func (s *teamService) Get(ctx context.Context, id string) (dto.TeamResponse, error) {
	team, err := s.teams.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeamResponse{}, ErrTeamNotFound
		}
		return dto.TeamResponse{}, err
	}
	return dto.NewTeamResponse(team), nil
}

func (s *teamService) Update(ctx context.Context, id, actorID string, payload dto.TeamUpdateRequest) (dto.TeamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeamResponse{}, err
	}

	if err := s.requireRole(ctx, id, actorID, models.RoleOwner, models.RoleAdmin); err != nil {
		return dto.TeamResponse{}, err
	}

	team, err := s.teams.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeamResponse{}, ErrTeamNotFound
		}
		return dto.TeamResponse{}, err
	}

	name := strings.TrimSpace(s.sanitizer.Sanitize(payload.Name))
	if name == "" {
		return dto.TeamResponse{}, errors.New("team name empty after sanitization")
	}
	team.Name = name
	team.Description = payload.Description

	if err := s.teams.Update(ctx, &team); err != nil {
		return dto.TeamResponse{}, err
	}

	return dto.NewTeamResponse(team), nil
}

func (s *teamService) Delete(ctx context.Context, id, actorID string) error {
	if err := s.requireRole(ctx, id, actorID, models.RoleOwner); err != nil {
		return err
	}

	err := s.teams.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTeamNotFound
	}
	return err
}

func (s *teamService) ListMembers(ctx context.Context, teamID string) ([]dto.TeamMemberResponse, error) {
	members, err := s.teams.ListMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return dto.NewTeamMemberResponseSlice(members), nil
}

func (s *teamService) InviteMember(ctx context.Context, teamID, inviterID string, payload dto.InviteMemberRequest) (dto.TeamMemberResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeamMemberResponse{}, err
	}

	if err := s.requireRole(ctx, teamID, inviterID, models.RoleOwner, models.RoleAdmin); err != nil {
		return dto.TeamMemberResponse{}, err
	}

	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeamMemberResponse{}, ErrTeamNotFound
		}
		return dto.TeamMemberResponse{}, err
	}

	invitee, err := s.users.FindByEmail(ctx, strings.ToLower(payload.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeamMemberResponse{}, ErrUserNotFound
		}
		return dto.TeamMemberResponse{}, err
	}

	if _, err := s.teams.FindMember(ctx, teamID, invitee.ID); err == nil {
		return dto.TeamMemberResponse{}, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.TeamMemberResponse{}, err
	}

	role := payload.Role
	if role == "" {
		role = models.RoleMember
	}

	member := models.TeamMember{
		TeamID: teamID,
		UserID: invitee.ID,
		Role:   role,
	}
	if err := s.teams.AddMember(ctx, &member); err != nil {
		return dto.TeamMemberResponse{}, err
	}
	member.User = invitee

	inviter, err := s.users.FindByID(ctx, inviterID)
	inviterName := inviterID
	if err == nil {
		inviterName = inviter.DisplayName()
	}

	link := s.baseURL + "/teams/" + teamID
	s.notifier.NotifyInvitation(ctx, invitee.ID, inviterName, team.Name, &link)
	if err := s.mail.SendInvitationEmail(ctx, invitee.Email, inviterName, team.Name, link); err != nil {
		s.logger.Warn().Err(err).Str("user_id", invitee.ID).Msg("invitation email delivery failed")
	}

	s.logger.Info().
		Str("team_id", teamID).
		Str("user_id", invitee.ID).
		Str("role", role).
		Msg("team member invited")

	return dto.NewTeamMemberResponse(member), nil
}

func (s *teamService) UpdateMemberRole(ctx context.Context, teamID, memberID, actorID string, payload dto.UpdateMemberRoleRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if err := s.requireRole(ctx, teamID, actorID, models.RoleOwner, models.RoleAdmin); err != nil {
		return err
	}

	member, err := s.findMemberByID(ctx, teamID, memberID)
	if err != nil {
		return err
	}
	if member.Role == models.RoleOwner {
		return ErrOwnerImmutable
	}

	return s.teams.UpdateMemberRole(ctx, memberID, payload.Role)
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, memberID, actorID string) error {
	if err := s.requireRole(ctx, teamID, actorID, models.RoleOwner, models.RoleAdmin); err != nil {
		return err
	}

	member, err := s.findMemberByID(ctx, teamID, memberID)
	if err != nil {
		return err
	}
	if member.Role == models.RoleOwner {
		return ErrOwnerImmutable
	}

	return s.teams.RemoveMember(ctx, memberID)
}

// requireRole resolves the actor's membership and checks it against the
// allowed roles.
func (s *teamService) requireRole(ctx context.Context, teamID, actorID string, roles ...string) error {
	member, err := s.teams.FindMember(ctx, teamID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamForbidden
		}
		return err
	}
	for _, role := range roles {
		if member.Role == role {
			return nil
		}
	}
	return ErrTeamForbidden
}

func (s *teamService) findMemberByID(ctx context.Context, teamID, memberID string) (models.TeamMember, error) {
	members, err := s.teams.ListMembers(ctx, teamID)
	if err != nil {
		return models.TeamMember{}, err
	}
	for _, member := range members {
		if member.ID == memberID {
			return member, nil
		}
	}
	return models.TeamMember{}, ErrMemberNotFound
}

// slugify lowercases the name, collapses everything outside [a-z0-9] into
// single dashes and appends a short random suffix to keep slugs unique.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	suffix := strings.Split(uuid.NewString(), "-")[0]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
