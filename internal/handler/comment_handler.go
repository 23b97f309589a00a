package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/service"
	"github.com/collabflow/collabflow-api/internal/utils"
)

// CommentHandler provides HTTP endpoints for comments on documents and issues.
type CommentHandler struct {
	service service.CommentService
	logger  zerolog.Logger
}

// NewCommentHandler constructs a handler instance.
func NewCommentHandler(service service.CommentService, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		logger:  logger.With().Str("component", "comment_handler").Logger(),
	}
}

// Register binds the comment routes.
func (h *CommentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Delete("/:id", h.delete)
}

func (h *CommentHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Create(withRequestContext(c), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment created", response)
}

func (h *CommentHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	query := dto.CommentListQuery{
		DocumentID: optionalQuery(c, "document_id"),
		IssueID:    optionalQuery(c, "issue_id"),
		Limit:      limit,
		Offset:     offset,
	}

	comments, err := h.service.List(withRequestContext(c), query)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "comments", comments)
}

func (h *CommentHandler) delete(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id := c.Params("id")
	if id == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "comment id required")
	}

	if err := h.service.Delete(withRequestContext(c), id, userID); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "comment deleted", nil)
}
