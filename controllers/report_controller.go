package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/services"
	"github.com/kendall-kelly/restaurant-pos/utils"
)

// parseReportTime accepts RFC 3339 timestamps or plain dates (UTC midnight)
func parseReportTime(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// SalesReport handles GET /api/v1/admin/reports/sales?from=&to= - totals of
// journaled payments. Without a range it covers the current UTC day.
func SalesReport(c *gin.Context) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)

	if raw := c.Query("from"); raw != "" {
		t, ok := parseReportTime(raw)
		if !ok {
			errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "from must be a date or RFC 3339 timestamp", gin.H{"field": "from"})
			return
		}
		from = t
		if c.Query("to") == "" {
			to = from.Add(24 * time.Hour)
		}
	}
	if raw := c.Query("to"); raw != "" {
		t, ok := parseReportTime(raw)
		if !ok {
			errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "to must be a date or RFC 3339 timestamp", gin.H{"field": "to"})
			return
		}
		to = t
	}

	report, err := services.GetReceiptService().SalesReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	byMethod := gin.H{}
	for method, amount := range report.ByMethod {
		byMethod[method] = gin.H{"amount": amount, "display": utils.FormatPrice(amount)}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"from":          report.From,
			"to":            report.To,
			"count":         report.Count,
			"gross":         report.Gross,
			"gross_display": utils.FormatPrice(report.Gross),
			"by_method":     byMethod,
		},
	})
}
