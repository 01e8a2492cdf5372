package server

import (
	"github.com/gin-gonic/gin"
	"github.com/inkwell/blogapi/internal/auth"
	"github.com/inkwell/blogapi/internal/comment"
	"github.com/inkwell/blogapi/internal/config"
	"github.com/inkwell/blogapi/internal/logger"
	"github.com/inkwell/blogapi/internal/metrics"
	"github.com/inkwell/blogapi/internal/post"
	"github.com/inkwell/blogapi/internal/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config         config.Config
	DB             *pgxpool.Pool
	Redis          *redis.Client
	AuthService    *auth.Service
	UserService    *user.Service
	PostService    *post.Service
	CommentService *comment.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	metrics.InitMetrics()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())
	registerCORS(router, deps.Config.CORS.AllowedOrigins)

	registerHealthRoutes(router, readinessChecks(deps))
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.AuthService == nil {
		return router
	}

	auth.RegisterRoutes(api, deps.AuthService)
	if deps.UserService != nil {
		user.RegisterRoutes(api, deps.UserService, deps.AuthService)
	}
	if deps.PostService != nil {
		post.RegisterRoutes(api, deps.PostService, deps.AuthService)
	}
	if deps.CommentService != nil {
		comment.RegisterRoutes(api, deps.CommentService, deps.AuthService)
	}

	return router
}
