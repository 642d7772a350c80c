package models

import (
	"strings"

	"github.com/kendall-kelly/restaurant-pos/utils"
	"github.com/shopspring/decimal"
)

// MenuItem is a read-only copy of a backend catalog entry
type MenuItem struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Available   bool            `json:"available"`
}

// menuItemWire is the loosely typed shape the backend sends
type menuItemWire struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       interface{} `json:"price"`
	Description string      `json:"description"`
	Status      *string     `json:"status"`
	IsAvailable *bool       `json:"is_available"`
	Available   *bool       `json:"available"`
}

var availableStatuses = map[string]bool{
	"available": true,
	"active":    true,
	"ready":     true,
}

// UnmarshalJSON normalizes price to a decimal and derives availability
// from either the status label or an explicit flag.
func (m *MenuItem) UnmarshalJSON(data []byte) error {
	var w menuItemWire
	if err := decodeNumbers(data, &w); err != nil {
		return err
	}

	available := true
	switch {
	case w.IsAvailable != nil:
		available = *w.IsAvailable
	case w.Available != nil:
		available = *w.Available
	case w.Status != nil:
		available = availableStatuses[strings.ToLower(strings.TrimSpace(*w.Status))]
	}

	*m = MenuItem{
		ID:          w.ID,
		Name:        w.Name,
		Category:    strings.TrimSpace(w.Category),
		Price:       utils.ParsePrice(w.Price),
		Description: w.Description,
		Available:   available,
	}
	return nil
}
