package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework

	"bookkeeping/internal/auth" // Token validation and principals
)

// PrincipalKey is the gin context key holding the authenticated auth.Principal
const PrincipalKey = "principal"

// JWTAuthMiddleware validates bearer tokens and stores the resolved principal in the context
func JWTAuthMiddleware(creds *auth.Credentials, superuserUsername string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		claims, err := creds.ValidateToken(tokenStr)          // Verify signature, algorithm and expiry
		if err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypePrivate) // Keep the reason for the request log
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}
		c.Set(PrincipalKey, auth.NewPrincipal(claims, superuserUsername)) // Store principal in context
		c.Next()                                                          // Proceed to the next handler
	}
}

// PrincipalFrom returns the principal stored by JWTAuthMiddleware
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
