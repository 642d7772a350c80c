package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/kendall-kelly/restaurant-pos/services"
)

// GetMenu handles GET /api/v1/menu - available menu items grouped by category.
// When the catalog cannot be fetched the dashboards still render: the
// response is an empty menu with a warning.
func GetMenu(c *gin.Context) {
	items, err := services.NewMenuService(backendClient(c)).GetMenuItems(c.Request.Context())
	if err != nil {
		log.Printf("Serving empty menu: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"categories": []services.CategoryGroup{},
				"items":      []models.MenuItem{},
			},
			"warning": "Menu is temporarily unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"categories": services.GroupByCategory(items),
			"items":      items,
		},
	})
}
