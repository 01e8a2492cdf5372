package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/inkwell/blogapi/internal/logger"
	"go.uber.org/zap"
)

const corsMaxAge = 10 * time.Minute

// corsConfig maps ALLOWED_ORIGINS onto gin-contrib/cors. "*" allows any
// origin. ok is false when no origins are configured.
func corsConfig(allowed []string) (cfg cors.Config, ok bool) {
	if len(allowed) == 0 {
		return cors.Config{}, false
	}

	cfg = cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:  []string{"Authorization", "Content-Type", logger.CorrelationIDHeader},
		ExposeHeaders: []string{logger.CorrelationIDHeader},
		MaxAge:        corsMaxAge,
	}
	if slices.Contains(allowed, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowed
	}
	return cfg, true
}

func registerCORS(router *gin.Engine, allowed []string) {
	cfg, ok := corsConfig(allowed)
	if !ok {
		return
	}
	if err := cfg.Validate(); err != nil {
		zap.L().Warn("CORS disabled: invalid ALLOWED_ORIGINS", zap.Strings("origins", allowed), zap.Error(err))
		return
	}
	router.Use(cors.New(cfg))
}
