package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/config"
	"github.com/kendall-kelly/restaurant-pos/middleware"
	"github.com/kendall-kelly/restaurant-pos/services"
)

// GetSession handles GET /api/v1/me - who is signed in and which dashboard they get.
// Name and email come from Auth0 when it is configured; a failed lookup
// still returns the session.
func GetSession(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user ID from token",
			},
		})
		return
	}
	role, _ := middleware.GetRole(c)

	data := gin.H{
		"user_id": userID,
		"role":    role,
		"name":    "",
		"email":   "",
	}

	cfg := config.GetConfig()
	token := middleware.GetAccessToken(c)
	if cfg != nil && cfg.AuthEnabled() && token != "" {
		profile, err := services.NewAuth0Service(cfg.Auth0Domain, cfg.BackendTimeout).GetProfile(c.Request.Context(), token)
		if err != nil {
			log.Printf("warning: no Auth0 profile for %s: %v", userID, err)
		} else {
			data["name"] = profile.Name
			data["email"] = profile.Email
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
