package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yanun0323/logs"
)

const readyTimeout = 2 * time.Second

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

// readiness fails while the server is starting or draining, or when ping fails.
func readiness(ready func() bool, ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now().UTC()
		if ready != nil && !ready() {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "not_ready", Timestamp: now, Reason: "server is not serving"})
			return
		}
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				logs.Warnf("readiness ping, err: %+v", err)
				c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "not_ready", Timestamp: now, Reason: "dependency unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, HealthResponse{Status: "ready", Timestamp: now})
	}
}
