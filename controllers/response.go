package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/middleware"
	"github.com/kendall-kelly/restaurant-pos/services"
)

// errorResponse writes the standard error envelope
func errorResponse(c *gin.Context, status int, code, message string, extra gin.H) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondError maps the service error taxonomy to an HTTP response
func respondError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		transitionErr *services.InvalidTransitionError
		notFoundErr   *services.NotFoundError
		paymentErr    *services.PaymentError
		backendErr    *services.BackendError
		transportErr  *services.TransportError
	)

	switch {
	case errors.As(err, &validationErr):
		errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message, gin.H{"field": validationErr.Field})
	case errors.As(err, &transitionErr):
		extra := gin.H{}
		if transitionErr.Latest != nil {
			extra["latest"] = transitionErr.Latest
		}
		errorResponse(c, http.StatusConflict, "INVALID_TRANSITION", transitionErr.Error(), extra)
	case errors.As(err, &notFoundErr):
		errorResponse(c, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error(), nil)
	case errors.As(err, &paymentErr):
		errorResponse(c, http.StatusUnprocessableEntity, "PAYMENT_FAILED", paymentErr.Message, nil)
	case errors.As(err, &backendErr) && backendErr.StatusCode == http.StatusUnauthorized:
		errorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "The backend rejected the session", nil)
	case errors.As(err, &backendErr) && backendErr.StatusCode == http.StatusForbidden:
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "The backend denied access for this session", nil)
	case errors.As(err, &transportErr):
		log.Printf("Backend unreachable: %v", err)
		errorResponse(c, http.StatusBadGateway, "BACKEND_UNAVAILABLE", "The restaurant backend could not be reached", nil)
	case errors.As(err, &backendErr):
		log.Printf("Backend error: %v", err)
		message := backendErr.Message
		if message == "" {
			message = "The restaurant backend returned an error"
		}
		errorResponse(c, http.StatusBadGateway, "BACKEND_UNAVAILABLE", message, nil)
	default:
		log.Printf("Unexpected error: %v", err)
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}

// bindError reports a malformed request body
func bindError(c *gin.Context, err error) {
	errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", gin.H{"details": err.Error()})
}

// backendClient returns the shared backend client bound to the caller's token
func backendClient(c *gin.Context) *services.BackendClient {
	return services.GetBackendClient().WithSession(services.Session{Token: middleware.GetAccessToken(c)})
}

// orderIDParam parses :name as an order id, writing a 400 on failure
func orderIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Order ID must be a positive integer", nil)
		return 0, false
	}
	return uint(id), true
}

// tableNumberParam parses :number as a table number, writing a 400 on failure
func tableNumberParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil || n <= 0 {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Table number must be a positive integer", nil)
		return 0, false
	}
	return n, true
}
