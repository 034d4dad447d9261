package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// ListUsersHandler returns every registered user
func ListUsersHandler(users UserDirectory, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		list, err := users.List(c.Request.Context(), p)
		if err != nil {
			respondError(c, log, err, "User")
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": list, "count": len(list)})
	}
}

// DeleteUserHandler removes a user together with the accounts it owns
func DeleteUserHandler(users UserDirectory, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		user, err := users.Delete(c.Request.Context(), p, c.Param("id"))
		if err != nil {
			respondError(c, log, err, "User")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User " + user.Username + " deleted successfully"})
	}
}

// StatsHandler returns row counts for the admin overview
func StatsHandler(users UserDirectory, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		stats, err := users.Stats(c.Request.Context(), p)
		if err != nil {
			respondError(c, log, err, "Stats")
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
