package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/turtacn/crs/pkg/logger"
)

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	db    *gorm.DB
	redis *goredis.Client
	log   logger.Logger
}

// NewHealthHandler creates a HealthHandler. redis may be nil when caching is
// disabled.
func NewHealthHandler(db *gorm.DB, redis *goredis.Client, log logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, log: log}
}

// Live handles GET /health/live. The process is up; nothing else is checked.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// Ready handles GET /health/ready, probing the dependencies the serving path
// needs.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
	}
	status := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			// Cache loss degrades latency, not correctness.
			checks["redis"] = "unreachable"
			h.log.Warn(ctx, "redis unreachable during readiness probe", logger.Error(err))
		}
	}

	c.JSON(status, gin.H{
		"status":    statusWord(status),
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ready"
	}
	return "not_ready"
}
