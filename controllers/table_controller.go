package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/services"
)

// ListTables handles GET /api/v1/tables - the floor plan
func ListTables(c *gin.Context) {
	tables, err := services.NewTableService(backendClient(c)).ListTables(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tables,
	})
}

// GetTable handles GET /api/v1/tables/:number - one table with its active order
func GetTable(c *gin.Context) {
	number, ok := tableNumberParam(c)
	if !ok {
		return
	}

	table, err := services.NewTableService(backendClient(c)).GetTable(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    table,
	})
}
