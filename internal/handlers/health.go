package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/veltra/mixfeed/internal/database"
)

type HealthHandler struct {
	db     *database.Database
	logger *logrus.Logger
}

func NewHealthHandler(db *database.Database, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// Check pings every backing store. The service stays "degraded" rather
// than unhealthy when only the graph or cache is down, because the feed
// can still rank from Postgres alone.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := gin.H{}
	critical := true
	degraded := false

	start := time.Now()
	if err := h.db.PG.Ping(ctx); err != nil {
		components["postgres"] = gin.H{"status": "down", "error": err.Error()}
		critical = false
	} else {
		components["postgres"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
	}

	start = time.Now()
	if err := h.db.Redis.Ping(ctx).Err(); err != nil {
		components["redis"] = gin.H{"status": "down", "error": err.Error()}
		degraded = true
	} else {
		components["redis"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
	}

	start = time.Now()
	if err := h.db.Neo4j.VerifyConnectivity(ctx); err != nil {
		components["neo4j"] = gin.H{"status": "down", "error": err.Error()}
		degraded = true
	} else {
		components["neo4j"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case !critical:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case degraded:
		status = "degraded"
	}

	c.JSON(httpStatus, gin.H{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC(),
	})
}
