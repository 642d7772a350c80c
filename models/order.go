package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/kendall-kelly/restaurant-pos/utils"
	"github.com/shopspring/decimal"
)

// DefaultCustomerName is used when an order carries no customer label
const DefaultCustomerName = "Walk-in"

// OrderLineItem is one menu item with quantity and notes inside an order.
// Name and Price are snapshots taken when the item was added.
type OrderLineItem struct {
	LineID      string          `json:"line_id"`           // local identifier, never persisted by the backend
	OrderItemID uint            `json:"id,omitempty"`      // backend order item id, zero for unsaved lines
	MenuItemID  uint            `json:"menu_item_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Notes       string          `json:"notes"`
	Status      *Status         `json:"status,omitempty"` // per-item kitchen status when the backend tracks it
}

type orderLineItemWire struct {
	LineID      string      `json:"line_id"`
	OrderItemID uint        `json:"id"`
	MenuItemID  uint        `json:"menu_item_id"`
	Name        string      `json:"name"`
	Price       interface{} `json:"price"`
	Quantity    int         `json:"quantity"`
	Notes       string      `json:"notes"`
	Status      *Status     `json:"status"`
	MenuItem    *struct {
		ID    uint        `json:"id"`
		Name  string      `json:"name"`
		Price interface{} `json:"price"`
	} `json:"menu_item"`
}

// UnmarshalJSON accepts items with a flat price/name or a nested menu_item
func (l *OrderLineItem) UnmarshalJSON(data []byte) error {
	var w orderLineItemWire
	if err := decodeNumbers(data, &w); err != nil {
		return err
	}

	line := OrderLineItem{
		LineID:      w.LineID,
		OrderItemID: w.OrderItemID,
		MenuItemID:  w.MenuItemID,
		Name:        w.Name,
		Price:       utils.ParsePrice(w.Price),
		Quantity:    w.Quantity,
		Notes:       w.Notes,
		Status:      w.Status,
	}
	if w.MenuItem != nil {
		if line.MenuItemID == 0 {
			line.MenuItemID = w.MenuItem.ID
		}
		if line.Name == "" {
			line.Name = w.MenuItem.Name
		}
		if w.Price == nil {
			line.Price = utils.ParsePrice(w.MenuItem.Price)
		}
	}

	*l = line
	return nil
}

// Subtotal is price times quantity, rounded to the currency minor unit
func (l OrderLineItem) Subtotal() decimal.Decimal {
	return utils.RoundMoney(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// Order is the gateway's view of a backend order
type Order struct {
	ID           uint            `json:"id"`
	TableNumber  int             `json:"table_number"`
	CustomerName string          `json:"customer_name"`
	OrderedAt    time.Time       `json:"ordered_at"`
	Items        []OrderLineItem `json:"items"`
	Status       Status          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	Version      int64           `json:"version,omitempty"` // zero when the backend does not version orders
}

type orderWire struct {
	ID           uint            `json:"id"`
	TableNumber  *int            `json:"table_number"`
	TableID      *int            `json:"table_id"`
	CustomerName string          `json:"customer_name"`
	OrderedAt    *time.Time      `json:"ordered_at"`
	CreatedAt    *time.Time      `json:"created_at"`
	Items        []OrderLineItem `json:"items"`
	OrderItems   []OrderLineItem `json:"order_items"`
	Status       Status          `json:"status"`
	Total        interface{}     `json:"total"`
	TotalAmount  interface{}     `json:"total_amount"`
	Version      int64           `json:"version"`
}

// UnmarshalJSON tolerates the field spellings used by different backend endpoints
func (o *Order) UnmarshalJSON(data []byte) error {
	var w orderWire
	if err := decodeNumbers(data, &w); err != nil {
		return err
	}

	order := Order{
		ID:           w.ID,
		CustomerName: strings.TrimSpace(w.CustomerName),
		Items:        w.Items,
		Status:       w.Status,
		Total:        utils.ParsePrice(w.Total),
		Version:      w.Version,
	}
	switch {
	case w.TableNumber != nil:
		order.TableNumber = *w.TableNumber
	case w.TableID != nil:
		order.TableNumber = *w.TableID
	}
	switch {
	case w.OrderedAt != nil:
		order.OrderedAt = *w.OrderedAt
	case w.CreatedAt != nil:
		order.OrderedAt = *w.CreatedAt
	}
	if order.Items == nil {
		order.Items = w.OrderItems
	}
	if w.Total == nil && w.TotalAmount != nil {
		order.Total = utils.ParsePrice(w.TotalAmount)
	}
	if order.CustomerName == "" {
		order.CustomerName = DefaultCustomerName
	}

	*o = order
	return nil
}

func decodeNumbers(data []byte, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	return dec.Decode(v)
}
