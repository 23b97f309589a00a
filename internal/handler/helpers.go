package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/middleware"
	"github.com/collabflow/collabflow-api/internal/service"
	"github.com/collabflow/collabflow-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(string); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}

func withRequestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

// handleError converts service errors to the matching HTTP response. Unmapped
// errors become a 500 with a generic message so internals never leak.
func handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendValidationError(c, validationErrors)
	}

	switch {
	case errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrIssueNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrAttachmentNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTeamForbidden),
		errors.Is(err, service.ErrNotTeamMember),
		errors.Is(err, service.ErrOwnerImmutable):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCommentTargetRequired),
		errors.Is(err, service.ErrReactionTargetRequired),
		errors.Is(err, service.ErrAttachmentParentRequired),
		errors.Is(err, service.ErrUnknownNotificationType),
		errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	default:
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
