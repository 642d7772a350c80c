package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/kendall-kelly/restaurant-pos/services"
	"github.com/kendall-kelly/restaurant-pos/utils"
)

// AddDraftItemRequest represents the request body for adding a menu item to a draft
type AddDraftItemRequest struct {
	MenuItemID uint   `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"omitempty,gt=0,lte=999"`
	Notes      string `json:"notes"`
}

// UpdateDraftItemRequest represents the request body for editing a draft line.
// A quantity of zero removes the line.
type UpdateDraftItemRequest struct {
	Quantity *int    `json:"quantity" binding:"omitempty,gte=0,lte=999"`
	Notes    *string `json:"notes"`
}

// UpdateDraftRequest represents the request body for editing draft details
type UpdateDraftRequest struct {
	CustomerName string `json:"customer_name" binding:"max=100"`
}

func draftJSON(draft *models.Draft) gin.H {
	total := services.ComputeTotal(draft.Lines)
	return gin.H{
		"table_number":  draft.TableNumber,
		"customer_name": draft.CustomerName,
		"lines":         draft.Lines,
		"total":         total,
		"total_display": utils.FormatPrice(total),
		"updated_at":    draft.UpdatedAt,
	}
}

func respondDraft(c *gin.Context, draft *models.Draft) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    draftJSON(draft),
	})
}

// GetDraft handles GET /api/v1/tables/:number/draft
func GetDraft(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	draft, err := services.GetDraftService().Get(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// UpdateDraft handles PATCH /api/v1/tables/:number/draft - sets the customer label
func UpdateDraft(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	draft, err := services.GetDraftService().SetCustomer(c.Request.Context(), number, req.CustomerName)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// DiscardDraft handles DELETE /api/v1/tables/:number/draft
func DiscardDraft(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	if err := services.GetDraftService().Discard(c.Request.Context(), number); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Draft discarded",
	})
}

// AddDraftItem handles POST /api/v1/tables/:number/draft/items.
// The name and price are snapshotted from the current menu.
func AddDraftItem(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	var req AddDraftItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := services.NewMenuService(backendClient(c)).FindMenuItem(c.Request.Context(), req.MenuItemID)
	if err != nil {
		respondError(c, err)
		return
	}

	draft, err := services.GetDraftService().AddMenuItem(c.Request.Context(), number, *item, req.Quantity, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// UpdateDraftItem handles PATCH /api/v1/tables/:number/draft/items/:line_id
func UpdateDraftItem(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	var req UpdateDraftItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	draft, err := services.GetDraftService().EditLine(c.Request.Context(), number, c.Param("line_id"), req.Quantity, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// RemoveDraftItem handles DELETE /api/v1/tables/:number/draft/items/:line_id
func RemoveDraftItem(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	draft, err := services.GetDraftService().RemoveLine(c.Request.Context(), number, c.Param("line_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondDraft(c, draft)
}

// SubmitDraft handles POST /api/v1/tables/:number/draft/submit - creates the
// backend order from the draft. The draft is kept if submission fails.
func SubmitDraft(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	orders := services.NewOrderService(backendClient(c))
	order, err := services.GetDraftService().Submit(c.Request.Context(), orders, number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    orderJSON(order),
	})
}
