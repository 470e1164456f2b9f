// internal/middleware/permissions.go

package middleware

import (
	"net/http"

	"relief-hub/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireRole gates an endpoint on a minimum role. Assumes
// AuthMiddleware ran earlier on the chain.
func RequireRole(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := roleFromContext(c)
		if !ok {
			return
		}

		requiredRole := models.UserRole(minRole)
		if !requiredRole.IsValid() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Invalid role",
			})
			c.Abort()
			return
		}

		if !userRole.IsHigherOrEqual(requiredRole) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":         "Insufficient permissions",
				"required_role": minRole,
				"user_role":     userRole.String(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAnyRole gates an endpoint on membership in a role set.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := roleFromContext(c)
		if !ok {
			return
		}

		for _, allowed := range roles {
			if userRole == models.UserRole(allowed) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":          "Insufficient permissions",
			"required_roles": roles,
			"user_role":      userRole.String(),
		})
		c.Abort()
	}
}

func roleFromContext(c *gin.Context) (models.UserRole, bool) {
	roleValue, exists := c.Get(ContextUserRole)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		c.Abort()
		return "", false
	}

	roleStr, ok := roleValue.(string)
	if !ok || roleStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid user role",
		})
		c.Abort()
		return "", false
	}

	userRole := models.UserRole(roleStr)
	if !userRole.IsValid() {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Invalid role",
		})
		c.Abort()
		return "", false
	}

	return userRole, true
}
