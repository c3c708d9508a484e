// Package middleware provides Gin HTTP middleware for authentication,
// role checks, rate limiting, security headers, request IDs, and metrics.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RateLimit → RequestID → Metrics → Auth → RequireRoles → Handler
//
// Security headers run first so they appear on all responses including
// errors. Rate limiting runs before auth to absorb brute-force traffic
// before any signature or database work. Auth populates the actor identity;
// RequireRoles reads from that context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/taskboard/internal/auth"
	"github.com/taskboard/taskboard/internal/config"
	"github.com/taskboard/taskboard/internal/db/models"
	"github.com/taskboard/taskboard/internal/db/repositories"
)

const (
	// UserKey is the gin.Context key under which the authenticated *models.User
	// is stored by AuthMiddleware.
	UserKey = "user"

	// UserIDKey holds the authenticated user's int64 ID, used by the rate
	// limiter for per-user keying.
	UserIDKey = "user_id"
)

// CurrentUser returns the authenticated user stored by AuthMiddleware, or
// false when the request is unauthenticated.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok && user != nil
}

// AuthMiddleware validates the bearer token and resolves the actor.
//
// The token carries only {sub, username, role}; the user row is re-fetched on
// every request so organization membership and role changes take effect
// immediately instead of surviving until token expiry. A token whose subject
// no longer resolves to a user row is rejected, which also revokes tokens of
// deleted accounts.
func AuthMiddleware(cfg *config.Config, userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		claims, err := auth.ValidateToken(token, cfg.Auth.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		user, err := userRepo.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load user",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "User not found",
			})
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)

		c.Next()
	}
}
