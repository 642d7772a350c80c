package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/config"
	"github.com/kendall-kelly/restaurant-pos/middleware"
)

// RegisterRoutes mounts the dashboard API on v1 behind auth.
// Each route is gated to the dashboard roles that use it.
func RegisterRoutes(v1 *gin.RouterGroup, cfg *config.Config, auth gin.HandlerFunc) {
	waiter := middleware.RequireRole(middleware.RoleWaiter)
	floor := middleware.RequireRole(middleware.RoleWaiter, middleware.RoleAdmin)
	chef := middleware.RequireRole(middleware.RoleChef)
	admin := middleware.RequireRole(middleware.RoleAdmin)

	api := v1.Group("", auth)
	{
		api.GET("/me", GetSession)

		// Menu is shown on every dashboard
		api.GET("/menu", GetMenu)

		api.GET("/tables", floor, ListTables)
		api.GET("/tables/:number", floor, GetTable)

		draft := api.Group("/tables/:number/draft", waiter)
		{
			draft.GET("", GetDraft)
			draft.PATCH("", UpdateDraft)
			draft.DELETE("", DiscardDraft)
			draft.POST("/items", AddDraftItem)
			draft.PATCH("/items/:line_id", UpdateDraftItem)
			draft.DELETE("/items/:line_id", RemoveDraftItem)
			draft.POST("/submit", SubmitDraft)
		}

		api.GET("/orders", ListOrders)
		api.GET("/orders/:id", GetOrder)
		api.PUT("/orders/:id", waiter, UpdateOrder)
		api.POST("/orders/:id/actions/:action", waiter, OrderAction)
		api.POST("/orders/:id/payment", floor, PayOrder)
		api.POST("/kitchen/orders/:id/actions/:action", chef, KitchenAction)

		api.GET("/receipts/:order_id", floor, GetReceipt)

		reports := api.Group("/admin/reports", admin)
		if cfg != nil && cfg.AuthEnabled() {
			reports.Use(middleware.RequireScope("read:reports"))
		}
		reports.GET("/sales", SalesReport)
	}
}
