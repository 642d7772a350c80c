package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/kendall-kelly/restaurant-pos/services"
	"github.com/kendall-kelly/restaurant-pos/utils"
)

// OrderItemRequest is one line of an order update
type OrderItemRequest struct {
	ID         uint   `json:"id"`
	MenuItemID uint   `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	Notes      string `json:"notes"`
}

// UpdateOrderRequest represents the request body for replacing an order's items
type UpdateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,dive"`
}

// ActionRequest optionally narrows a kitchen action to one order item
type ActionRequest struct {
	ItemID uint `json:"item_id"`
}

// orderJSON adds the locally computed total so dashboards can flag drift
func orderJSON(order *models.Order) gin.H {
	computed, ok := services.CheckTotal(order)
	total := services.OrderTotal(order)
	return gin.H{
		"id":             order.ID,
		"table_number":   order.TableNumber,
		"customer_name":  order.CustomerName,
		"ordered_at":     order.OrderedAt,
		"status":         order.Status,
		"items":          order.Items,
		"total":          total,
		"total_display":  utils.FormatPrice(total),
		"computed_total": computed,
		"total_mismatch": !ok,
		"version":        order.Version,
	}
}

// ListOrders handles GET /api/v1/orders - optionally filtered with ?status=
func ListOrders(c *gin.Context) {
	status := models.StatusUnknown
	if raw := c.Query("status"); raw != "" {
		status = models.ParseStatus(raw)
		if status == models.StatusUnknown {
			errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown order status: "+raw, gin.H{"field": "status"})
			return
		}
	}

	orders, err := services.NewOrderService(backendClient(c)).ListOrders(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]gin.H, 0, len(orders))
	for i := range orders {
		data = append(data, orderJSON(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := orderIDParam(c, "id")
	if !ok {
		return
	}

	order, err := services.NewOrderService(backendClient(c)).GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderJSON(order),
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id - replaces the items of a pending order
func UpdateOrder(c *gin.Context) {
	id, ok := orderIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	lines := make([]models.OrderLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, models.OrderLineItem{
			OrderItemID: item.ID,
			MenuItemID:  item.MenuItemID,
			Quantity:    item.Quantity,
			Notes:       strings.TrimSpace(item.Notes),
		})
	}

	order, err := services.NewOrderService(backendClient(c)).UpdateOrderItems(c.Request.Context(), id, lines)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderJSON(order),
	})
}

// OrderAction handles POST /api/v1/orders/:id/actions/:action - waiter actions
func OrderAction(c *gin.Context) {
	applyAction(c, false)
}

// KitchenAction handles POST /api/v1/kitchen/orders/:id/actions/:action - chef actions
func KitchenAction(c *gin.Context) {
	applyAction(c, true)
}

// applyAction loads the current order and asks the lifecycle to apply the
// action. Kitchen routes accept only kitchen actions and vice versa;
// payment completion goes through the payment endpoint.
func applyAction(c *gin.Context, kitchen bool) {
	id, ok := orderIDParam(c, "id")
	if !ok {
		return
	}

	action, known := models.ParseAction(c.Param("action"))
	if !known {
		errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown action: "+c.Param("action"), gin.H{"field": "action"})
		return
	}
	if action == models.ActionCompletePayment {
		errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Use the payment endpoint to complete payment", gin.H{"field": "action"})
		return
	}
	if action.IsChefAction() != kitchen {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "This action is not available from this dashboard", nil)
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	client := backendClient(c)
	order, err := services.NewOrderService(client).GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	lifecycle := services.NewLifecycle(client, services.GetPublisher())
	updated, err := lifecycle.Apply(c.Request.Context(), order, action, services.TransitionOptions{ItemID: req.ItemID})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderJSON(updated),
	})
}
