package models

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm/schema"
)

func init() {
	schema.RegisterSerializer("line_items", LineItemsSerializer{})
}

// Draft is an order being composed for a table, kept so a waiter can
// resume it from another terminal before submitting.
type Draft struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	TableNumber  int             `gorm:"not null;uniqueIndex" json:"table_number"`
	CustomerName string          `json:"customer_name"`
	Lines        []OrderLineItem `gorm:"type:text;serializer:line_items" json:"lines"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Draft model
func (Draft) TableName() string {
	return "drafts"
}

// storedLine is the column form of a line item. Prices are bare JSON
// numbers so reading them back never goes through the price string parser.
type storedLine struct {
	LineID      string      `json:"line_id"`
	OrderItemID uint        `json:"id,omitempty"`
	MenuItemID  uint        `json:"menu_item_id"`
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Quantity    int         `json:"quantity"`
	Notes       string      `json:"notes"`
	Status      *Status     `json:"status,omitempty"`
}

// LineItemsSerializer stores a draft's lines as a JSON column
type LineItemsSerializer struct{}

// Scan decodes the column into the field
func (LineItemsSerializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue interface{}) error {
	lines := []OrderLineItem{}
	if dbValue != nil {
		var raw []byte
		switch v := dbValue.(type) {
		case []byte:
			raw = v
		case string:
			raw = []byte(v)
		default:
			return fmt.Errorf("unsupported line items column value %T", dbValue)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &lines); err != nil {
				return fmt.Errorf("failed to decode draft lines: %w", err)
			}
		}
	}
	field.ReflectValueOf(ctx, dst).Set(reflect.ValueOf(lines))
	return nil
}

// Value encodes the field for storage
func (LineItemsSerializer) Value(ctx context.Context, field *schema.Field, dst reflect.Value, fieldValue interface{}) (interface{}, error) {
	lines, _ := fieldValue.([]OrderLineItem)
	stored := make([]storedLine, len(lines))
	for i, line := range lines {
		stored[i] = storedLine{
			LineID:      line.LineID,
			OrderItemID: line.OrderItemID,
			MenuItemID:  line.MenuItemID,
			Name:        line.Name,
			Price:       json.Number(line.Price.String()),
			Quantity:    line.Quantity,
			Notes:       line.Notes,
			Status:      line.Status,
		}
	}
	out, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	return string(out), nil
}
