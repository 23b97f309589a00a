package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/service"
	"github.com/collabflow/collabflow-api/internal/utils"
)

// TeamHandler provides HTTP endpoints for teams and membership management.
type TeamHandler struct {
	service service.TeamService
	logger  zerolog.Logger
}

// NewTeamHandler constructs a handler instance.
func NewTeamHandler(service service.TeamService, logger zerolog.Logger) *TeamHandler {
	return &TeamHandler{
		service: service,
		logger:  logger.With().Str("component", "team_handler").Logger(),
	}
}

// Register binds the team routes.
func (h *TeamHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)

	router.Get("/:id/members", h.listMembers)
	router.Post("/:id/members", h.inviteMember)
	router.Patch("/:id/members/:memberId", h.updateMemberRole)
	router.Delete("/:id/members/:memberId", h.removeMember)
}

func (h *TeamHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.TeamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Create(withRequestContext(c), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "team created", response)
}

func (h *TeamHandler) get(c *fiber.Ctx) error {
	response, err := h.service.Get(withRequestContext(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "team", response)
}

func (h *TeamHandler) update(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.TeamUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Update(withRequestContext(c), c.Params("id"), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "team updated", response)
}

func (h *TeamHandler) delete(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	if err := h.service.Delete(withRequestContext(c), c.Params("id"), userID); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "team deleted", nil)
}

func (h *TeamHandler) listMembers(c *fiber.Ctx) error {
	members, err := h.service.ListMembers(withRequestContext(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "team members", members)
}

func (h *TeamHandler) inviteMember(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.InviteMemberRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	member, err := h.service.InviteMember(withRequestContext(c), c.Params("id"), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "member invited", member)
}

func (h *TeamHandler) updateMemberRole(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.UpdateMemberRoleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.UpdateMemberRole(withRequestContext(c), c.Params("id"), c.Params("memberId"), userID, payload); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "member role updated", nil)
}

func (h *TeamHandler) removeMember(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	if err := h.service.RemoveMember(withRequestContext(c), c.Params("id"), c.Params("memberId"), userID); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "member removed", nil)
}
