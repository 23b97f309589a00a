package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/service"
	"github.com/collabflow/collabflow-api/internal/utils"
)

// AttachmentHandler handles file uploads attached to documents, issues and comments.
type AttachmentHandler struct {
	service service.AttachmentService
	logger  zerolog.Logger
}

// NewAttachmentHandler constructs an attachment handler.
func NewAttachmentHandler(service service.AttachmentService, logger zerolog.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		service: service,
		logger:  logger.With().Str("component", "attachment_handler").Logger(),
	}
}

// Register wires attachment routes.
func (h *AttachmentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.upload)
	router.Delete("/:id", h.delete)
}

func (h *AttachmentHandler) upload(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	parent := service.AttachmentParent{
		DocumentID: optionalForm(c, "document_id"),
		IssueID:    optionalForm(c, "issue_id"),
		CommentID:  optionalForm(c, "comment_id"),
	}

	result, err := h.service.Upload(withRequestContext(c), file, userID, parent)
	if err != nil {
		if shouldLogUploadFailure(err) {
			h.logger.Error().Err(err).Msg("upload failed")
		}
		return handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "upload successful", result)
}

func (h *AttachmentHandler) list(c *fiber.Ctx) error {
	query := dto.AttachmentListQuery{
		DocumentID: optionalQuery(c, "document_id"),
		IssueID:    optionalQuery(c, "issue_id"),
		CommentID:  optionalQuery(c, "comment_id"),
	}

	attachments, err := h.service.List(withRequestContext(c), query)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "attachments", attachments)
}

func (h *AttachmentHandler) delete(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	if err := h.service.Delete(withRequestContext(c), c.Params("id"), userID); err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "attachment deleted", nil)
}

func optionalForm(c *fiber.Ctx, key string) *string {
	value := c.FormValue(key)
	if value == "" {
		return nil
	}
	return &value
}

func shouldLogUploadFailure(err error) bool {
	switch err {
	case service.ErrUploadTooLarge, service.ErrUploadTypeNotAllowed, service.ErrAttachmentParentRequired:
		return false
	default:
		return true
	}
}
