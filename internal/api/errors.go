package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging

	"bookkeeping/internal/auth"       // Principal type
	"bookkeeping/internal/domain"     // Error kinds
	"bookkeeping/internal/middleware" // Principal lookup
)

// respondError maps a service error onto a status code and an {"error": msg}
// body. resource names the thing a NotFound refers to.
func respondError(c *gin.Context, log logrus.FieldLogger, err error, resource string) {
	var verr *domain.ValidationError
	var ferr *domain.ForbiddenError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
	case errors.As(err, &ferr):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ferr.Reason})
	case errors.Is(err, domain.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
	case errors.Is(err, domain.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": resource + " already exists"})
	default:
		_ = c.Error(err).SetType(gin.ErrorTypePrivate) // Picked up by the request logger
		log.WithFields(logrus.Fields{"path": c.FullPath(), "error": err.Error()}).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// badRequest answers a body that could not be decoded
func badRequest(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}

// principal returns the caller set by the auth middleware, answering 401 when
// it is missing
func principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
	}
	return p, ok
}
