package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/kendall-kelly/restaurant-pos/services"
	"github.com/kendall-kelly/restaurant-pos/utils"
)

func receiptJSON(receipt *models.Receipt) gin.H {
	return gin.H{
		"order_id":         receipt.OrderID,
		"table_number":     receipt.TableNumber,
		"customer_name":    receipt.CustomerName,
		"payment_method":   receipt.PaymentMethod,
		"items":            receipt.Items,
		"total":            receipt.Total,
		"tendered":         receipt.Tendered,
		"change":           receipt.Change,
		"total_display":    utils.FormatPrice(receipt.Total),
		"tendered_display": utils.FormatPrice(receipt.Tendered),
		"change_display":   utils.FormatPrice(receipt.Change),
		"card_last_four":   receipt.CardLastFour,
		"ordered_at":       receipt.OrderedAt,
		"paid_at":          receipt.PaidAt,
		"archive_url":      receipt.ArchiveURL,
	}
}

// PayOrder handles POST /api/v1/orders/:id/payment - completes payment of an
// order awaiting it and returns the receipt
func PayOrder(c *gin.Context) {
	id, ok := orderIDParam(c, "id")
	if !ok {
		return
	}

	var req services.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	client := backendClient(c)
	order, err := services.NewOrderService(client).GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	payments := services.NewPaymentService(client, services.GetReceiptService(), services.GetPublisher())
	receipt, err := payments.Process(c.Request.Context(), order, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    receiptJSON(receipt),
	})
}

// GetReceipt handles GET /api/v1/receipts/:order_id - reprints a journaled receipt
func GetReceipt(c *gin.Context) {
	id, ok := orderIDParam(c, "order_id")
	if !ok {
		return
	}

	receipt, err := services.GetReceiptService().GetByOrderID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    receiptJSON(receipt),
	})
}
