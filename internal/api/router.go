// Package api wires together all HTTP routes.
//
// Route grouping:
//   - POST /auth/login is public but carries a strict per-client rate limit,
//     since every attempt costs a bcrypt comparison.
//   - Everything under /tasks and /audit-log requires a bearer token; write
//     operations additionally require a role from the operation table below.
//   - /health is public for liveness probes. Prometheus metrics are served on
//     a separate port by cmd/server and never through this router.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/taskboard/taskboard/internal/config"
	"github.com/taskboard/taskboard/internal/db/models"
	"github.com/taskboard/taskboard/internal/db/repositories"
	"github.com/taskboard/taskboard/internal/middleware"
)

// requiredRoles is the single source of truth for role-level gating: each
// guarded operation maps to the roles allowed to perform it. Route
// registration reads this table instead of hardcoding roles per route.
// Ownership checks on individual tasks are separate and live in the handlers.
var requiredRoles = map[string][]models.Role{
	"tasks.create": {models.RoleOwner, models.RoleAdmin},
	"tasks.update": {models.RoleOwner, models.RoleAdmin},
	"tasks.delete": {models.RoleOwner, models.RoleAdmin},
	"audit.view":   {models.RoleOwner, models.RoleAdmin},
}

func requireOperation(op string) gin.HandlerFunc {
	roles, ok := requiredRoles[op]
	if !ok {
		// An unregistered operation is a programming error; deny everything
		// rather than fail open.
		return middleware.RequireRoles()
	}
	return middleware.RequireRoles(roles...)
}

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) calls Shutdown after the HTTP server has
// drained in-flight requests.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines.
func (bg *BackgroundServices) Shutdown() {
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("background services stopped")
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg *config.Config, database *sqlx.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	userRepo := repositories.NewUserRepository(database)
	taskRepo := repositories.NewTaskRepository(database)
	auditRepo := repositories.NewAuditRepository(database)

	authHandlers := NewAuthHandlers(cfg, userRepo, auditRepo)
	taskHandlers := NewTaskHandlers(taskRepo, auditRepo)
	auditHandlers := NewAuditHandlers(auditRepo)

	generalRateLimiter := middleware.NewRateLimiter(generalRateLimitConfig(cfg))
	authRateLimiter := middleware.NewRateLimiter(middleware.AuthRateLimitConfig())

	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))
	if cfg.Security.RateLimiting.Enabled {
		router.Use(middleware.RateLimitMiddleware(generalRateLimiter))
	}
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware())

	router.GET("/health", healthCheckHandler(database))

	// Login is public; the stricter limiter stacks on top of the general one.
	authGroup := router.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(authRateLimiter))
	{
		authGroup.POST("/login", authHandlers.Login)
	}

	authenticated := router.Group("")
	authenticated.Use(middleware.AuthMiddleware(cfg, userRepo))
	{
		tasks := authenticated.Group("/tasks")
		{
			tasks.GET("", taskHandlers.List)
			tasks.GET("/:id", taskHandlers.Get)
			tasks.POST("", requireOperation("tasks.create"), taskHandlers.Create)
			tasks.PATCH("/:id", requireOperation("tasks.update"), taskHandlers.Update)
			tasks.DELETE("/:id", requireOperation("tasks.delete"), taskHandlers.Delete)
		}

		authenticated.GET("/audit-log", requireOperation("audit.view"), auditHandlers.List)
	}

	bg := &BackgroundServices{
		rateLimiters: []*middleware.RateLimiter{generalRateLimiter, authRateLimiter},
	}

	return router, bg
}

func generalRateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rlc := middleware.DefaultRateLimitConfig()
	if cfg.Security.RateLimiting.RequestsPerMinute > 0 {
		rlc.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
	}
	if cfg.Security.RateLimiting.Burst > 0 {
		rlc.BurstSize = cfg.Security.RateLimiting.Burst
	}
	return rlc
}

// healthCheckHandler returns the health status of the service, including
// database connectivity.
func healthCheckHandler(database *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// LoggerMiddleware emits one structured slog record per request. Text vs JSON
// output follows the global handler installed by telemetry.SetupLogger.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		requestID := c.GetString(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", requestID),
		)
	}
}
