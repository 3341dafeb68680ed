package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/pkg/models"
)

type SearchHandler struct {
	searcher SearchService
	logger   *logrus.Logger
}

func NewSearchHandler(searcher SearchService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		logger:   logger,
	}
}

type searchQuery struct {
	Query  string `form:"q"`
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
	SortBy string `form:"sort" validate:"omitempty,oneof=comprehensive relevance quality freshness popularity created_at"`
}

// Get ranks the corpus against the query. An empty q browses by quality
// and freshness.
// GET /api/v1/search
func (h *SearchHandler) Get(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "INVALID_QUERY", "Invalid query parameters")
		return
	}
	if err := validate.Struct(&q); err != nil {
		badRequest(c, "INVALID_QUERY", err.Error())
		return
	}

	page, err := h.searcher.Search(c.Request.Context(), q.Query, models.SearchOptions{
		Page:   q.Page,
		Limit:  q.Limit,
		SortBy: models.SortKey(q.SortBy),
	})
	if err != nil {
		h.logger.WithError(err).Error("Search failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "SEARCH_FAILED",
				"message": "Failed to run search",
			},
		})
		return
	}

	c.JSON(http.StatusOK, page)
}
