package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/kendall-kelly/restaurant-pos/utils"
	"github.com/shopspring/decimal"
)

// OrderService reads and writes orders on the backend
type OrderService struct {
	client *BackendClient
}

// NewOrderService creates an order accessor on top of a session-bound client
func NewOrderService(client *BackendClient) *OrderService {
	return &OrderService{client: client}
}

// NewOrderInput is what a waiter submits from a composed line list
type NewOrderInput struct {
	TableNumber  int
	CustomerName string
	Lines        []models.OrderLineItem
}

type orderItemPayload struct {
	ID         uint   `json:"id,omitempty"`
	MenuItemID uint   `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes,omitempty"`
}

type orderPayload struct {
	TableNumber  int                `json:"table_number,omitempty"`
	CustomerName string             `json:"customer_name,omitempty"`
	Items        []orderItemPayload `json:"items"`
}

func itemsPayload(lines []models.OrderLineItem) []orderItemPayload {
	items := make([]orderItemPayload, 0, len(lines))
	for _, line := range lines {
		items = append(items, orderItemPayload{
			ID:         line.OrderItemID,
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			Notes:      line.Notes,
		})
	}
	return items
}

func orderIDString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ListOrders returns backend orders, optionally filtered by status
func (s *OrderService) ListOrders(ctx context.Context, status models.Status) ([]models.Order, error) {
	path := "/orders"
	if status != models.StatusUnknown {
		path += "?status=" + url.QueryEscape(status.String())
	}

	var orders []models.Order
	if err := s.client.do(ctx, "GET", path, nil, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = EnsureLineIDs(orders[i].Items)
	}
	return orders, nil
}

// GetOrder fetches the authoritative copy of an order
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.client.do(ctx, "GET", "/orders/"+orderIDString(id), nil, &order); err != nil {
		return nil, notFoundOr(err, "order", orderIDString(id))
	}
	if order.ID == 0 {
		order.ID = id
	}
	order.Items = EnsureLineIDs(order.Items)
	return &order, nil
}

// CreateOrder submits a composed order and returns the backend's copy of it.
// An empty line list is rejected before any request is made.
func (s *OrderService) CreateOrder(ctx context.Context, in NewOrderInput) (*models.Order, error) {
	if err := ValidateForSubmission(in.Lines); err != nil {
		return nil, err
	}

	customer := strings.TrimSpace(in.CustomerName)
	if customer == "" {
		customer = models.DefaultCustomerName
	}

	var created models.Order
	payload := orderPayload{
		TableNumber:  in.TableNumber,
		CustomerName: customer,
		Items:        itemsPayload(in.Lines),
	}
	if err := s.client.do(ctx, "POST", "/orders", payload, &created); err != nil {
		return nil, err
	}
	if created.ID == 0 {
		return nil, &BackendError{StatusCode: http.StatusCreated, Message: "backend did not return an order id"}
	}

	return s.GetOrder(ctx, created.ID)
}

// UpdateOrderItems replaces the line items of an existing order
func (s *OrderService) UpdateOrderItems(ctx context.Context, id uint, lines []models.OrderLineItem) (*models.Order, error) {
	if err := ValidateForSubmission(lines); err != nil {
		return nil, err
	}

	payload := orderPayload{Items: itemsPayload(lines)}
	if err := s.client.do(ctx, "PUT", "/orders/"+orderIDString(id), payload, nil); err != nil {
		if isRejection(err) {
			return nil, &InvalidTransitionError{OrderID: id, Message: backendMessage(err)}
		}
		return nil, notFoundOr(err, "order", orderIDString(id))
	}

	return s.GetOrder(ctx, id)
}

// CheckTotal compares the backend total with the sum of the order's lines.
// A mismatch means the gateway and the backend disagree on pricing.
func CheckTotal(order *models.Order) (decimal.Decimal, bool) {
	computed := ComputeTotal(order.Items)
	if len(order.Items) == 0 {
		return computed, true
	}
	ok := computed.Equal(utils.RoundMoney(order.Total))
	if !ok {
		log.Printf("warning: order %d total drift: backend %s, computed %s",
			order.ID, utils.FormatPrice(order.Total), utils.FormatPrice(computed))
	}
	return computed, ok
}

// OrderTotal is the amount due for an order: the backend total, or the
// computed total when the backend sent none.
func OrderTotal(order *models.Order) decimal.Decimal {
	if !order.Total.IsZero() {
		return utils.RoundMoney(order.Total)
	}
	return ComputeTotal(order.Items)
}

func backendMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

// isRejection reports whether the backend refused a state change
func isRejection(err error) bool {
	switch statusOf(err) {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}
