package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/service"
	"github.com/collabflow/collabflow-api/internal/utils"
)

// ReactionHandler exposes emoji reaction toggling and aggregation.
type ReactionHandler struct {
	service service.ReactionService
	logger  zerolog.Logger
}

// NewReactionHandler constructs a handler instance.
func NewReactionHandler(service service.ReactionService, logger zerolog.Logger) *ReactionHandler {
	return &ReactionHandler{
		service: service,
		logger:  logger.With().Str("component", "reaction_handler").Logger(),
	}
}

// Register binds the reaction routes.
func (h *ReactionHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/toggle", h.toggle)
}

func (h *ReactionHandler) toggle(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.ReactionToggleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	added, err := h.service.Toggle(withRequestContext(c), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "reaction toggled", fiber.Map{"added": added})
}

func (h *ReactionHandler) list(c *fiber.Ctx) error {
	query := dto.ReactionListQuery{
		CommentID:  optionalQuery(c, "comment_id"),
		DocumentID: optionalQuery(c, "document_id"),
		MessageID:  optionalQuery(c, "message_id"),
	}

	groups, err := h.service.List(withRequestContext(c), query)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "reactions", groups)
}
