package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging

	"bookkeeping/internal/service" // Service inputs
)

// CreateOrderHandler records an order and moves the account balance by its amount
func CreateOrderHandler(orders OrderJournal, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var req service.OrderInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		order, err := orders.Create(c.Request.Context(), p, req)
		if err != nil {
			respondError(c, log, err, "Account")
			return
		}
		log.WithFields(logrus.Fields{
			"order_id":   order.ID,        // New order
			"account_id": order.AccountID, // Account whose balance moved
			"amount":     order.Amount,    // Signed amount applied
		}).Info("order created")
		c.JSON(http.StatusCreated, gin.H{"data": "Order created successfully", "id": order.ID})
	}
}

// ListMyOrdersHandler returns the orders the caller created
func ListMyOrdersHandler(orders OrderJournal, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		list, err := orders.ListMine(c.Request.Context(), p)
		if err != nil {
			respondError(c, log, err, "Order")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// ListAllOrdersHandler returns every order
func ListAllOrdersHandler(orders OrderJournal, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		list, err := orders.ListAll(c.Request.Context(), p)
		if err != nil {
			respondError(c, log, err, "Order")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// ListAccountOrdersHandler returns the orders of the account in the path
func ListAccountOrdersHandler(orders OrderJournal, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		accountID := c.Param("account_id")
		list, err := orders.ListByAccount(c.Request.Context(), p, accountID)
		if err != nil {
			respondError(c, log, err, "Account")
			return
		}
		c.JSON(http.StatusOK, gin.H{"account_id": accountID, "orders": list, "count": len(list)})
	}
}

// GetOrderHandler returns one order
func GetOrderHandler(orders OrderJournal, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		order, err := orders.Get(c.Request.Context(), p, c.Param("id"))
		if err != nil {
			respondError(c, log, err, "Order")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderHandler replaces the order fields without touching any balance
func UpdateOrderHandler(orders OrderJournal, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var req service.OrderInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		order, err := orders.Update(c.Request.Context(), p, c.Param("id"), req)
		if err != nil {
			respondError(c, log, err, "Order")
			return
		}
		log.WithField("order_id", order.ID).Info("order updated")
		c.JSON(http.StatusOK, order)
	}
}

// DeleteOrderHandler removes an order; the balance keeps its amount
func DeleteOrderHandler(orders OrderJournal, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id := c.Param("id")
		if err := orders.Delete(c.Request.Context(), p, id); err != nil {
			respondError(c, log, err, "Order")
			return
		}
		log.WithField("order_id", id).Info("order deleted")
		c.JSON(http.StatusOK, gin.H{"data": "Order deleted successfully"})
	}
}
