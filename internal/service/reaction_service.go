package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/repository"
)

// ErrReactionTargetRequired indicates the payload did not name exactly one
// reaction target.
var ErrReactionTargetRequired = errors.New("exactly one of comment_id, document_id or message_id must be set")

// ReactionService toggles and aggregates emoji reactions.
type ReactionService interface {
	Toggle(ctx context.Context, userID string, payload dto.ReactionToggleRequest) (added bool, err error)
	List(ctx context.Context, query dto.ReactionListQuery) ([]dto.ReactionGroup, error)
}

type reactionService struct {
	repo      repository.ReactionRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewReactionService constructs a reaction service.
func NewReactionService(repo repository.ReactionRepository, validate *validator.Validate, logger zerolog.Logger) ReactionService {
	return &reactionService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "reaction_service").Logger(),
		tracer:    otel.Tracer("github.com/collabflow/collabflow-api/internal/service/reaction"),
	}
}

func (s *reactionService) Toggle(ctx context.Context, userID string, payload dto.ReactionToggleRequest) (bool, error) {
	if err := s.validator.Struct(payload); err != nil {
		return false, err
	}

	target := repository.ReactionTarget{
		CommentID:  payload.CommentID,
		DocumentID: payload.DocumentID,
		MessageID:  payload.MessageID,
	}
	if !target.Valid() {
		return false, ErrReactionTargetRequired
	}

	spanCtx, span := s.tracer.Start(ctx, "reactions.toggle",
		trace.WithAttributes(
			attribute.String("reaction.user_id", userID),
			attribute.String("reaction.emoji", payload.Emoji),
		))
	defer span.End()

	added, err := s.repo.Toggle(spanCtx, payload.Emoji, userID, target)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("emoji", payload.Emoji).
		Bool("added", added).
		Msg("reaction toggled")

	return added, nil
}

func (s *reactionService) List(ctx context.Context, query dto.ReactionListQuery) ([]dto.ReactionGroup, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	target := repository.ReactionTarget{
		CommentID:  query.CommentID,
		DocumentID: query.DocumentID,
		MessageID:  query.MessageID,
	}
	if !target.Valid() {
		return nil, ErrReactionTargetRequired
	}

	reactions, err := s.repo.ListByTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	return dto.GroupReactions(reactions), nil
}
