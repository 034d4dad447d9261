package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging

	"bookkeeping/internal/service" // Service inputs
)

// LoginForm is the OAuth2 password form posted to /user/token
type LoginForm struct {
	Username string `form:"username" binding:"required"` // Username must be provided
	Password string `form:"password" binding:"required"` // Password must be provided
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"` // Signed JWT
	TokenType   string `json:"token_type"`   // Always "bearer"
}

// RegisterHandler creates a user from a JSON {username, password} body
func RegisterHandler(users UserDirectory, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RegisterInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err) // Malformed body
			return
		}
		user, err := users.Register(c.Request.Context(), req) // Length rules and uniqueness are checked by the service
		if err != nil {
			respondError(c, log, err, "Username")
			return
		}
		log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
		c.JSON(http.StatusCreated, gin.H{"data": "User created successfully", "id": user.ID})
	}
}

// LoginHandler exchanges form credentials for a bearer token
func LoginHandler(users UserDirectory, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form LoginForm // Bind form fields to struct
		if err := c.ShouldBind(&form); err != nil {
			badRequest(c, err)
			return
		}
		token, p, err := users.Login(c.Request.Context(), form.Username, form.Password)
		if err != nil {
			// Unknown user and wrong password look the same to the client
			respondError(c, log, err, "User")
			return
		}
		log.WithFields(logrus.Fields{"username": p.Username, "kind": p.Kind.String()}).Info("token issued")
		c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

// ProfileHandler echoes the identity carried by the bearer token
func ProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"User": gin.H{"username": p.Username, "id": p.ID}})
	}
}
