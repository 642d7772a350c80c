package services

import (
	"github.com/google/uuid"
	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/kendall-kelly/restaurant-pos/utils"
	"github.com/shopspring/decimal"
)

// The functions below never modify their input slice; each returns a new
// line list. Every line they produce has quantity >= 1.

// newLineID generates the local identifier of a line; overridden in tests
var newLineID = func() string {
	return uuid.NewString()
}

func copyLines(lines []models.OrderLineItem) []models.OrderLineItem {
	out := make([]models.OrderLineItem, len(lines))
	copy(out, lines)
	return out
}

// AddItem increments the line already referencing item, or appends a new
// line with quantity 1 and the item's current name and price.
func AddItem(lines []models.OrderLineItem, item models.MenuItem) []models.OrderLineItem {
	out := copyLines(lines)
	for i := range out {
		if out[i].MenuItemID == item.ID {
			out[i].Quantity++
			return out
		}
	}
	return append(out, models.OrderLineItem{
		LineID:     newLineID(),
		MenuItemID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   1,
	})
}

// SetQuantity replaces a line's quantity; zero or less removes the line
func SetQuantity(lines []models.OrderLineItem, lineID string, quantity int) []models.OrderLineItem {
	if quantity <= 0 {
		return RemoveItem(lines, lineID)
	}
	out := copyLines(lines)
	for i := range out {
		if out[i].LineID == lineID {
			out[i].Quantity = quantity
		}
	}
	return out
}

// SetNotes replaces a line's free-text notes
func SetNotes(lines []models.OrderLineItem, lineID, notes string) []models.OrderLineItem {
	out := copyLines(lines)
	for i := range out {
		if out[i].LineID == lineID {
			out[i].Notes = notes
		}
	}
	return out
}

// RemoveItem drops the matching line; unknown ids leave the list as is
func RemoveItem(lines []models.OrderLineItem, lineID string) []models.OrderLineItem {
	out := make([]models.OrderLineItem, 0, len(lines))
	for _, line := range lines {
		if line.LineID != lineID {
			out = append(out, line)
		}
	}
	return out
}

// FindLine reports whether a line with the given id exists
func FindLine(lines []models.OrderLineItem, lineID string) (models.OrderLineItem, bool) {
	for _, line := range lines {
		if line.LineID == lineID {
			return line, true
		}
	}
	return models.OrderLineItem{}, false
}

// ComputeTotal sums price * quantity over all lines in exact decimal
// arithmetic and rounds the result to cents.
func ComputeTotal(lines []models.OrderLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return utils.RoundMoney(total)
}

// ValidateForSubmission rejects orders that cannot be sent to the backend
func ValidateForSubmission(lines []models.OrderLineItem) error {
	if len(lines) == 0 {
		return &ValidationError{Field: "items", Message: "an order must contain at least one item"}
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return &ValidationError{Field: "items", Message: "every item must have a quantity of at least 1"}
		}
	}
	return nil
}

// EnsureLineIDs assigns local ids to lines that came from the backend without one
func EnsureLineIDs(lines []models.OrderLineItem) []models.OrderLineItem {
	out := copyLines(lines)
	for i := range out {
		if out[i].LineID == "" {
			out[i].LineID = newLineID()
		}
	}
	return out
}
