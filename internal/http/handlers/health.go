package handlers

import (
	"context"
	"net/http"
	"time"

	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
)

// Pinger is implemented by *db.Gateway.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SchemaChecker is implemented by *service.TaskService.
type SchemaChecker interface {
	Ready(ctx context.Context) error
}

// HealthHandler serves the probes. schema may be nil, which skips the
// tasks table check.
type HealthHandler struct {
	db        Pinger
	schema    SchemaChecker
	startTime time.Time
	version   string
}

func NewHealthHandler(db Pinger, schema SchemaChecker, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		schema:    schema,
		startTime: time.Now(),
		version:   version,
	}
}

type ReadinessResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports ready only when the store answers and the tasks table
// is there.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true
	record := func(name string, err error) {
		if err != nil {
			logger.FromContext(ctx).Warn("readiness check failed", "check", name, "error", err)
			checks[name] = "fail: " + err.Error()
			ready = false
			return
		}
		checks[name] = "ok"
	}

	record("database", h.db.Ping(ctx))
	if h.schema != nil && ready {
		record("tasks_schema", h.schema.Ready(ctx))
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, ReadinessResponse{
		Status:  status,
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Checks:  checks,
	})
}

// Health is the quick combined probe: a store ping only.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}
