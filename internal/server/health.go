package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/blogapi/internal/logger"
	"go.uber.org/zap"
)

const readinessTimeout = 5 * time.Second

type readinessCheck struct {
	component string
	ping      func(context.Context) error
}

func readinessChecks(deps Dependencies) []readinessCheck {
	var checks []readinessCheck
	if deps.DB != nil {
		checks = append(checks, readinessCheck{component: "postgres", ping: deps.DB.Ping})
	}
	if deps.Redis != nil {
		client := deps.Redis
		checks = append(checks, readinessCheck{
			component: "redis",
			ping: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
		})
	}
	return checks
}

func registerHealthRoutes(router *gin.Engine, checks []readinessCheck) {
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		for _, check := range checks {
			if err := check.ping(ctx); err != nil {
				logger.FromContext(c).Warn("readiness check failed",
					zap.String("component", check.component), zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "degraded",
					"component": check.component,
					"error":     err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
