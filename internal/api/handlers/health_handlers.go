package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/treviro/treviro_service/pkg/health"
	"github.com/treviro/treviro_service/pkg/logger"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	checker   *health.HealthChecker
	readiness *health.HealthChecker
	logger    *logger.Logger
}

// NewHealthHandler creates a health handler. Readiness gates on the
// database only; a degraded cache must not take the service out of
// rotation.
func NewHealthHandler(db *sqlx.DB, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	checker := health.NewHealthChecker(10 * time.Second)
	checker.Register(health.NewDatabaseChecker(db.DB, 5*time.Second))
	checker.Register(health.NewRedisChecker(redisClient, 3*time.Second))

	readiness := health.NewHealthChecker(5 * time.Second)
	readiness.Register(health.NewDatabaseChecker(db.DB, 5*time.Second))

	return &HealthHandler{
		checker:   checker,
		readiness: readiness,
		logger:    log,
	}
}

var startTime = time.Now()

// Health reports the status of every dependency.
func (h *HealthHandler) Health(c *gin.Context) {
	status, checks := h.checker.Check(c.Request.Context())

	statusCode := http.StatusOK
	if status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}

// Ready checks if the application is ready to serve traffic.
func (h *HealthHandler) Ready(c *gin.Context) {
	status, checks := h.readiness.Check(c.Request.Context())

	ready := status == health.StatusHealthy
	statusText := "ready"
	statusCode := http.StatusOK
	if !ready {
		statusText = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    statusText,
		"timestamp": time.Now(),
		"checks":    checks,
	})
}

// Live is a simple liveness check for container orchestration.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime),
	})
}
