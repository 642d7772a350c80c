package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kendall-kelly/restaurant-pos/models"
)

// TransitionOptions narrows a kitchen action to a single order item
type TransitionOptions struct {
	ItemID uint
}

// Lifecycle walks orders through their status machine. The backend is the
// source of truth: every successful call is followed by a re-fetch and the
// caller receives the fetched order. The caller's order is never modified.
type Lifecycle struct {
	client    *BackendClient
	orders    *OrderService
	publisher StatusPublisher
	now       func() time.Time
}

// NewLifecycle creates a lifecycle controller
func NewLifecycle(client *BackendClient, publisher StatusPublisher) *Lifecycle {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Lifecycle{
		client:    client,
		orders:    NewOrderService(client),
		publisher: publisher,
		now:       time.Now,
	}
}

type waiterTransitionBody struct {
	Action string `json:"action"`
}

type chefTransitionBody struct {
	Status string `json:"status"`
	ItemID uint   `json:"item_id,omitempty"`
}

// Apply requests action on order and returns the backend's resulting order.
//
// Completed orders and unknown actions are rejected without a request.
// A backend rejection yields an InvalidTransitionError whose Latest field
// carries a fresh copy of the order for resynchronization.
func (l *Lifecycle) Apply(ctx context.Context, order *models.Order, action models.Action, opts TransitionOptions) (*models.Order, error) {
	if order == nil {
		return nil, &ValidationError{Field: "order", Message: "order is required"}
	}
	parsed, ok := models.ParseAction(string(action))
	if !ok {
		return nil, &InvalidTransitionError{OrderID: order.ID, From: order.Status, Action: action, Message: "unknown action"}
	}
	action = parsed
	if order.Status.IsTerminal() {
		return nil, &InvalidTransitionError{OrderID: order.ID, From: order.Status, Action: action, Message: "order is already completed"}
	}

	id := orderIDString(order.ID)
	var mutated models.Order
	var err error
	if action.IsChefAction() {
		body := chefTransitionBody{Status: action.Target().String(), ItemID: opts.ItemID}
		err = l.client.do(ctx, "PATCH", "/chef/order/"+id+"/status", body, &mutated)
	} else {
		body := waiterTransitionBody{Action: string(action)}
		err = l.client.do(ctx, "PATCH", "/orders/"+id+"/status", body, &mutated)
	}

	if err != nil {
		return nil, l.classify(ctx, order, action, err)
	}

	fetched, err := l.orders.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("order %d changed but could not be reloaded: %w", order.ID, err)
	}
	if mutated.Version > 0 && fetched.Version > 0 && mutated.Version > fetched.Version {
		// the read hit a replica that has not caught up yet
		mutated.Items = EnsureLineIDs(mutated.Items)
		fetched = &mutated
	}

	log.Printf("Order %d: %s -> %s via %s", order.ID, order.Status, fetched.Status, action)
	publishQuietly(ctx, l.publisher, StatusEvent{
		OrderID: fetched.ID,
		Status:  fetched.Status.String(),
		Action:  string(action),
		At:      l.now().UTC(),
	})
	return fetched, nil
}

// classify turns a failed transition call into the error taxonomy and
// re-fetches the order when the backend rejected the transition.
func (l *Lifecycle) classify(ctx context.Context, order *models.Order, action models.Action, err error) error {
	id := orderIDString(order.ID)
	if !isRejection(err) {
		return notFoundOr(err, "order", id)
	}

	rejected := &InvalidTransitionError{
		OrderID: order.ID,
		From:    order.Status,
		Action:  action,
		Message: backendMessage(err),
	}
	latest, fetchErr := l.orders.GetOrder(ctx, order.ID)
	if fetchErr != nil {
		log.Printf("warning: order %d could not be resynchronized after rejection: %v", order.ID, fetchErr)
		return rejected
	}
	rejected.Latest = latest
	return rejected
}
