package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models/dto"
)

// Pinger is any backend whose liveness the health endpoint reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports the state of the storage backend and optional dependencies
type HealthController struct {
	checks map[string]Pinger
	logger zerolog.Logger
}

// NewHealthController creates a new HealthController. checks maps a component name to its pinger.
func NewHealthController(checks map[string]Pinger, logger zerolog.Logger) *HealthController {
	return &HealthController{checks: checks, logger: logger}
}

// HealthResponse lists the status of each checked component
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health pings every registered component
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=HealthResponse} "All components healthy"
// @Failure 503 {object} dto.APIResponse{data=HealthResponse} "A component is unavailable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Components: make(map[string]string, len(c.checks))}
	status := http.StatusOK
	for name, check := range c.checks {
		if err := check.Ping(reqCtx); err != nil {
			c.logger.Warn().Err(err).Str("component", name).Msg("Health check failed")
			resp.Components[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "ok"
	}

	ctx.JSON(status, dto.NewSuccessResponse(resp))
}
