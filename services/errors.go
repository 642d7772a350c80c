package services

import (
	"fmt"

	"github.com/kendall-kelly/restaurant-pos/models"
)

// TransportError means the backend could not be reached or the request was abandoned
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackendError is a non-2xx backend response that has no more specific meaning
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// ValidationError reports the first input field that failed a precondition
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidTransitionError means the order cannot take the requested action.
// Latest holds the re-fetched order when the backend rejected the call.
type InvalidTransitionError struct {
	OrderID uint
	From    models.Status
	Action  models.Action
	Message string
	Latest  *models.Order
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("order %d: change rejected", e.OrderID)
	if e.Action != "" {
		msg = fmt.Sprintf("order %d: cannot %s from %s", e.OrderID, e.Action, e.From)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// NotFoundError means the referenced order, table or menu item no longer exists
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// CatalogFetchError wraps a failure to load the menu
type CatalogFetchError struct {
	Err error
}

func (e *CatalogFetchError) Error() string {
	return fmt.Sprintf("failed to fetch menu catalog: %v", e.Err)
}

func (e *CatalogFetchError) Unwrap() error {
	return e.Err
}
