package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// SuperuserOnlyMiddleware lets only the configured superuser through. It must run after JWTAuthMiddleware.
func SuperuserOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, exists := PrincipalFrom(c) // Get principal from context
		// Check if principal exists in context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}
		// Authenticated but not the superuser
		if !p.IsSuperuser() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next() // Superuser, proceed to the next handler
	}
}
