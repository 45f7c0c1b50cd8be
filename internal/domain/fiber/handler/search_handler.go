package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"talent-graph/internal/dto"
	"talent-graph/internal/middleware"
	"talent-graph/internal/usecase"
	"talent-graph/internal/util"
)

type SearchHandler struct {
	uc *usecase.SearchUsecase
}

func NewSearchHandler(uc *usecase.SearchUsecase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

func (h *SearchHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/search", middleware.RateLimiter(30, time.Minute), h.Search)
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "query parameter q is required",
		}, util.NewFormError("query parameter q is required", map[string]string{"q": "required"}))
	}
	topK := c.QueryInt("top_k", 0)
	minThreshold := c.QueryFloat("min_threshold", 0)
	withRationale := c.QueryBool("explain", false)

	results, err := h.uc.Search(c.Context(), query, topK, minThreshold)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    errorStatus(err),
			Message: "failed to search candidates",
		}, err)
	}

	if len(results) == 0 {
		return util.SuccessResponse(c, util.SuccessResponseFormat{
			Message: "no candidates match the query",
			Data:    []dto.RetrievalResult{},
		})
	}

	if withRationale {
		results = h.uc.Explain(c.Context(), results, query)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success search candidates",
		Data:    results,
		Meta:    fiber.Map{"count": len(results), "explained": withRationale},
	})
}
