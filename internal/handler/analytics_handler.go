package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collabflow/collabflow-api/internal/service"
	"github.com/collabflow/collabflow-api/internal/utils"
)

// AnalyticsHandler exposes aggregated team activity metrics.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs a handler instance.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register binds the analytics route.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/teams/:id", h.teamAnalytics)
}

func (h *AnalyticsHandler) teamAnalytics(c *fiber.Ctx) error {
	teamID := c.Params("id")
	if teamID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "team id required")
	}

	response, err := h.service.TeamAnalytics(withRequestContext(c), teamID)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "team analytics", response)
}
