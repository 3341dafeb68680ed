package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CacheHandler struct {
	recommender RecommendationService
	logger      *logrus.Logger
}

func NewCacheHandler(recommender RecommendationService, logger *logrus.Logger) *CacheHandler {
	return &CacheHandler{
		recommender: recommender,
		logger:      logger,
	}
}

// Invalidate drops every cached ranking artifact for one user. Used by
// operators and by the interaction consumer's HTTP fallback.
// POST /api/v1/cache/invalidate/:userId
func (h *CacheHandler) Invalidate(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.recommender.InvalidateUser(c.Request.Context(), userID); err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Cache invalidation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INVALIDATION_FAILED",
				"message": "Failed to invalidate cached entries",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "invalidated",
		"user_id": userID,
	})
}
