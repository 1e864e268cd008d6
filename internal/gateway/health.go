package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/models"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health is the liveness probe
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "healthy"})
}

// Ready returns a readiness probe that pings the catalog backend
func Ready(p Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, models.HealthResponse{
				Status: "not ready",
				Error:  "catalog backend unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, models.HealthResponse{Status: "ready"})
	}
}
