package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/service"
	"github.com/collabflow/collabflow-api/internal/utils"
)

// SearchHandler exposes cross-entity team search.
type SearchHandler struct {
	service service.SearchService
	logger  zerolog.Logger
}

// NewSearchHandler constructs a handler instance.
func NewSearchHandler(service service.SearchService, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger.With().Str("component", "search_handler").Logger(),
	}
}

// Register binds the search route.
func (h *SearchHandler) Register(router fiber.Router) {
	router.Get("/", h.search)
}

func (h *SearchHandler) search(c *fiber.Ctx) error {
	query := dto.SearchQuery{
		TeamID: c.Query("team_id"),
		Query:  c.Query("q"),
	}

	results, err := h.service.Search(withRequestContext(c), query)
	if err != nil {
		return handleError(c, err)
	}

	return utils.SendSuccess(c, "search results", results)
}
