package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/service"
	"github.com/collabflow/collabflow-api/internal/utils"
)

// IssueHandler provides HTTP endpoints for issue tracking.
type IssueHandler struct {
	service service.IssueService
	logger  zerolog.Logger
}

// NewIssueHandler constructs a handler instance.
func NewIssueHandler(service service.IssueService, logger zerolog.Logger) *IssueHandler {
	return &IssueHandler{
		service: service,
		logger:  logger.With().Str("component", "issue_handler").Logger(),
	}
}

// Register binds the issue routes.
func (h *IssueHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id/status", h.updateStatus)
	router.Patch("/:id/assignee", h.assign)
	router.Delete("/:id", h.delete)
}

func (h *IssueHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.IssueCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Create(withRequestContext(c), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "issue created", response)
}

func (h *IssueHandler) get(c *fiber.Ctx) error {
	response, err := h.service.Get(withRequestContext(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "issue", response)
}

func (h *IssueHandler) list(c *fiber.Ctx) error {
	projectID := c.Query("project_id")
	if projectID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "project_id required")
	}

	issues, err := h.service.ListByProject(withRequestContext(c), projectID)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "issues", issues)
}

func (h *IssueHandler) updateStatus(c *fiber.Ctx) error {
	var payload dto.IssueStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.UpdateStatus(withRequestContext(c), c.Params("id"), payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "issue status updated", response)
}

func (h *IssueHandler) assign(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.IssueAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Assign(withRequestContext(c), c.Params("id"), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "issue assigned", response)
}

func (h *IssueHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(withRequestContext(c), c.Params("id")); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "issue deleted", nil)
}
