package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/pkg/models"
)

var validate = validator.New()

type FeedHandler struct {
	recommender RecommendationService
	logger      *logrus.Logger
}

func NewFeedHandler(recommender RecommendationService, logger *logrus.Logger) *FeedHandler {
	return &FeedHandler{
		recommender: recommender,
		logger:      logger,
	}
}

type feedQuery struct {
	Limit     int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	Tags      string `form:"tags"`
	Exclude   string `form:"exclude"`
	Diversity bool   `form:"diversity"`
	ColdStart bool   `form:"cold_start"`
	Social    bool   `form:"social"`
	Reasons   bool   `form:"reasons"`
	NoCache   bool   `form:"no_cache"`
}

// Get serves a personalized mixed feed page.
// GET /api/v1/feed/:userId
func (h *FeedHandler) Get(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	h.serve(c, &userID)
}

// GetAnonymous serves the cold-start feed for callers without an account.
// GET /api/v1/feed
func (h *FeedHandler) GetAnonymous(c *gin.Context) {
	h.serve(c, nil)
}

func (h *FeedHandler) serve(c *gin.Context, userID *uuid.UUID) {
	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "INVALID_QUERY", "Invalid query parameters")
		return
	}
	if err := validate.Struct(&q); err != nil {
		badRequest(c, "INVALID_QUERY", err.Error())
		return
	}

	opts := models.RecommendationOptions{
		Limit:                    q.Limit,
		Page:                     q.Page,
		Tags:                     splitCSV(q.Tags),
		ExcludeIDs:               parseUUIDList(q.Exclude),
		IncludeDiversity:         q.Diversity,
		IncludeColdStartAnalysis: q.ColdStart,
		IncludeSocialScores:      q.Social,
		IncludeReasons:           q.Reasons,
		UseCache:                 !q.NoCache,
	}

	result, err := h.recommender.GetMixedRecommendations(c.Request.Context(), userID, opts)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate feed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "FEED_GENERATION_FAILED",
				"message": "Failed to generate feed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Scroll serves the infinite-scroll variant: already-seen ids come back as
// exclusions and the page number is always 1.
// GET /api/v1/feed/:userId/scroll
func (h *FeedHandler) Scroll(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "INVALID_QUERY", "Invalid query parameters")
		return
	}
	if err := validate.Struct(&q); err != nil {
		badRequest(c, "INVALID_QUERY", err.Error())
		return
	}

	result, err := h.recommender.GetInfiniteScrollRecommendations(c.Request.Context(), &userID,
		q.Limit, parseUUIDList(q.Exclude), splitCSV(q.Tags))
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate scroll feed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "FEED_GENERATION_FAILED",
				"message": "Failed to generate feed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		badRequest(c, "INVALID_USER_ID", "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseUUIDList(s string) []uuid.UUID {
	var ids []uuid.UUID
	for _, part := range splitCSV(s) {
		if id, err := uuid.Parse(part); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
