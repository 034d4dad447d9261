package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging

	"bookkeeping/internal/service" // Service inputs
)

// CreateAccountHandler opens an account for the caller
func CreateAccountHandler(accounts AccountLedger, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var req service.AccountInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		acc, err := accounts.Create(c.Request.Context(), p, req)
		if err != nil {
			respondError(c, log, err, "Account")
			return
		}
		log.WithFields(logrus.Fields{"account_id": acc.ID, "owner_id": acc.OwnerID}).Info("account created")
		c.JSON(http.StatusCreated, gin.H{"data": "Account created successfully", "id": acc.ID})
	}
}

// ListMyAccountsHandler returns the caller's accounts with their orders
func ListMyAccountsHandler(accounts AccountLedger, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		list, err := accounts.ListMine(c.Request.Context(), p)
		if err != nil {
			respondError(c, log, err, "Account")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// ListAllAccountsHandler returns every account
func ListAllAccountsHandler(accounts AccountLedger, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		list, err := accounts.ListAll(c.Request.Context(), p)
		if err != nil {
			respondError(c, log, err, "Account")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// ListUserAccountsHandler returns the accounts of the user in the path
func ListUserAccountsHandler(accounts AccountLedger, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		userID := c.Param("user_id")
		list, err := accounts.ListByOwner(c.Request.Context(), p, userID)
		if err != nil {
			respondError(c, log, err, "User")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "accounts": list, "count": len(list)})
	}
}

// GetAccountHandler returns one account with its orders
func GetAccountHandler(accounts AccountLedger, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		acc, err := accounts.Get(c.Request.Context(), p, c.Param("id"))
		if err != nil {
			respondError(c, log, err, "Account")
			return
		}
		c.JSON(http.StatusOK, acc)
	}
}

// UpdateAccountHandler replaces name, currency and money
func UpdateAccountHandler(accounts AccountLedger, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var req service.AccountInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		acc, err := accounts.Update(c.Request.Context(), p, c.Param("id"), req)
		if err != nil {
			respondError(c, log, err, "Account")
			return
		}
		log.WithFields(logrus.Fields{"account_id": acc.ID, "money": acc.Money}).Info("account updated")
		c.JSON(http.StatusOK, gin.H{"data": "Account updated"})
	}
}

// ResetAccountHandler drops every order of the account and zeroes its balance
func ResetAccountHandler(accounts AccountLedger, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		acc, err := accounts.Reset(c.Request.Context(), p, c.Param("id"))
		if err != nil {
			respondError(c, log, err, "Account")
			return
		}
		log.WithField("account_id", acc.ID).Info("account reset")
		c.JSON(http.StatusOK, acc)
	}
}

// DeleteAccountHandler removes the account and its orders
func DeleteAccountHandler(accounts AccountLedger, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id := c.Param("id")
		if err := accounts.Delete(c.Request.Context(), p, id); err != nil {
			respondError(c, log, err, "Account")
			return
		}
		log.WithField("account_id", id).Info("account deleted")
		c.JSON(http.StatusOK, gin.H{"data": "Account deleted successfully"})
	}
}
