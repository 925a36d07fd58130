package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"energydocs-backend/internal/analyses"
	"energydocs-backend/internal/shared/config"
	"energydocs-backend/internal/shared/metrics"
	"energydocs-backend/internal/shared/server/middleware"
	"energydocs-backend/internal/shared/server/respond"
)

// RouterDeps carries the wired handlers the router mounts.
type RouterDeps struct {
	Analyses *analyses.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, deps RouterDeps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	deps.Analyses.RegisterRoutes(api)

	// Status polling gets its own bucket so tight poll loops cannot starve
	// uploads from the same client.
	tasks := api.Group("")
	tasks.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"STATUS_POLL": {Rate: 5, Burst: 10},
		},
		GroupFor: func(*gin.Context) string { return "STATUS_POLL" },
	}))
	deps.Analyses.RegisterTaskRoutes(tasks)

	r.GET("/metrics", metrics.Handler())

	return r
}

// Addr normalizes a port value into a listen address.
func Addr(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
