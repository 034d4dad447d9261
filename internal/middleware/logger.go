package middleware

import (
	"time" // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// Logger writes one structured line per request once the handler chain is done
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now() // Request start time
		c.Next()            // Run the rest of the chain

		fields := logrus.Fields{
			"method":  c.Request.Method,  // HTTP method
			"path":    c.FullPath(),      // Route pattern, not the raw URL
			"status":  c.Writer.Status(), // Response status code
			"latency": time.Since(start), // Handler time
			"ip":      c.ClientIP(),      // Client address after trusted proxies
			"size":    c.Writer.Size(),   // Response body size
		}
		if p, ok := PrincipalFrom(c); ok {
			fields["user"] = p.Username // Authenticated caller
		}
		entry := log.WithFields(fields)
		if len(c.Errors) > 0 {
			entry = entry.WithField("error", c.Errors.String()) // Private errors recorded by handlers
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
