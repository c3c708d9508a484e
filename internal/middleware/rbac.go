// rbac.go implements role-based route guards.
//
// Roles are checked against the freshly loaded user row rather than the token
// claims: a demotion takes effect on the user's next request without needing
// to invalidate or reissue their token. Route guards express only the
// role-level requirement; ownership checks on individual tasks live in the
// authz package and run inside the handlers.

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/taskboard/internal/db/models"
)

// RequireRoles rejects the request with 403 unless the authenticated user's
// role is one of the allowed roles. It must be registered after
// AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "User not authenticated",
			})
			return
		}

		if !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			return
		}

		c.Next()
	}
}
