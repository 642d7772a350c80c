package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer, role string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Role:  role,
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID, role, token string, scopes []string) {
	claims := MockValidatedClaims(userID, "https://test.auth0.com/", role, scopes)
	c.Set(middleware.ContextUserID, userID)
	c.Set(middleware.ContextClaims, claims)
	c.Set(middleware.ContextRole, role)
	c.Set(middleware.ContextAccessToken, token)
}

// MockAuthMiddleware authenticates every request as role with the given backend token
func MockAuthMiddleware(role, token string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, "auth0|"+role, role, token, scopes)
		c.Next()
	}
}
