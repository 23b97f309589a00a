package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/service"
	"github.com/collabflow/collabflow-api/internal/utils"
)

// WorkspaceHandler provides HTTP endpoints for documents and projects.
type WorkspaceHandler struct {
	service service.WorkspaceService
	logger  zerolog.Logger
}

// NewWorkspaceHandler constructs a handler instance.
func NewWorkspaceHandler(service service.WorkspaceService, logger zerolog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		service: service,
		logger:  logger.With().Str("component", "workspace_handler").Logger(),
	}
}

// Register binds document and project routes.
func (h *WorkspaceHandler) Register(router fiber.Router) {
	router.Get("/documents", h.listDocuments)
	router.Post("/documents", h.createDocument)
	router.Put("/documents/:id", h.updateDocument)
	router.Get("/documents/:id/versions", h.listDocumentVersions)
	router.Delete("/documents/:id", h.deleteDocument)

	router.Get("/projects", h.listProjects)
	router.Post("/projects", h.createProject)
	router.Delete("/projects/:id", h.deleteProject)
}

func (h *WorkspaceHandler) createDocument(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.DocumentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.CreateDocument(withRequestContext(c), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document created", response)
}

func (h *WorkspaceHandler) listDocuments(c *fiber.Ctx) error {
	teamID := c.Query("team_id")
	if teamID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "team_id required")
	}

	documents, err := h.service.ListDocuments(withRequestContext(c), teamID)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "documents", documents)
}

func (h *WorkspaceHandler) updateDocument(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.DocumentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.UpdateDocument(withRequestContext(c), c.Params("id"), userID, payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "document updated", response)
}

func (h *WorkspaceHandler) listDocumentVersions(c *fiber.Ctx) error {
	versions, err := h.service.ListDocumentVersions(withRequestContext(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "document versions", versions)
}

func (h *WorkspaceHandler) deleteDocument(c *fiber.Ctx) error {
	if err := h.service.DeleteDocument(withRequestContext(c), c.Params("id")); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "document deleted", nil)
}

func (h *WorkspaceHandler) createProject(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.ProjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.CreateProject(withRequestContext(c), payload)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "project created", response)
}

func (h *WorkspaceHandler) listProjects(c *fiber.Ctx) error {
	teamID := c.Query("team_id")
	if teamID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "team_id required")
	}

	projects, err := h.service.ListProjects(withRequestContext(c), teamID)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "projects", projects)
}

func (h *WorkspaceHandler) deleteProject(c *fiber.Ctx) error {
	if err := h.service.DeleteProject(withRequestContext(c), c.Params("id")); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "project deleted", nil)
}
