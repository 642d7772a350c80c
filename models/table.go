package models

import "strings"

// TableStatus is the floor-plan state of a table
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// ParseTableStatus normalizes backend casing; unknown values count as available
func ParseTableStatus(raw string) TableStatus {
	switch TableStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case TableOccupied:
		return TableOccupied
	case TableReserved:
		return TableReserved
	default:
		return TableAvailable
	}
}

// Table is a dining table and its active order, if any
type Table struct {
	Number      int         `json:"number"`
	Status      TableStatus `json:"status"`
	Capacity    int         `json:"capacity,omitempty"`
	ActiveOrder *Order      `json:"active_order,omitempty"`
}

type tableWire struct {
	ID           *int    `json:"id"`
	Number       *int    `json:"number"`
	TableNumber  *int    `json:"table_number"`
	Status       string  `json:"status"`
	Capacity     int     `json:"capacity"`
	ActiveOrder  *Order  `json:"active_order"`
	CurrentOrder *Order  `json:"current_order"`
	Orders       []Order `json:"orders"`
}

func (t *Table) UnmarshalJSON(data []byte) error {
	var w tableWire
	if err := decodeNumbers(data, &w); err != nil {
		return err
	}

	table := Table{
		Status:      ParseTableStatus(w.Status),
		Capacity:    w.Capacity,
		ActiveOrder: w.ActiveOrder,
	}
	switch {
	case w.TableNumber != nil:
		table.Number = *w.TableNumber
	case w.Number != nil:
		table.Number = *w.Number
	case w.ID != nil:
		table.Number = *w.ID
	}
	if table.ActiveOrder == nil {
		table.ActiveOrder = w.CurrentOrder
	}
	if table.ActiveOrder == nil {
		// table detail endpoints list orders; the active one is the first not yet completed
		for i := range w.Orders {
			if !w.Orders[i].Status.IsTerminal() {
				table.ActiveOrder = &w.Orders[i]
				break
			}
		}
	}

	*t = table
	return nil
}
