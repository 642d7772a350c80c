package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/kendall-kelly/restaurant-pos/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DraftService keeps the line list being composed for each table.
// Line edits go through the pure line-item functions and the result
// replaces the stored list.
type DraftService struct {
	db *gorm.DB
}

// NewDraftService creates a draft store
func NewDraftService(db *gorm.DB) *DraftService {
	return &DraftService{db: db}
}

// Get returns the table's draft, or an empty one if none is stored
func (s *DraftService) Get(ctx context.Context, tableNumber int) (*models.Draft, error) {
	var draft models.Draft
	err := s.db.WithContext(ctx).Where("table_number = ?", tableNumber).First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Draft{TableNumber: tableNumber, Lines: []models.OrderLineItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if draft.Lines == nil {
		draft.Lines = []models.OrderLineItem{}
	}
	return &draft, nil
}

// Update applies edit to the table's current lines and stores the result
func (s *DraftService) Update(ctx context.Context, tableNumber int, edit func(*models.Draft) error) (*models.Draft, error) {
	var result *models.Draft
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var draft models.Draft
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("table_number = ?", tableNumber).First(&draft).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			draft = models.Draft{TableNumber: tableNumber}
		} else if err != nil {
			return fmt.Errorf("failed to load draft: %w", err)
		}

		if err := edit(&draft); err != nil {
			return err
		}
		if draft.Lines == nil {
			draft.Lines = []models.OrderLineItem{}
		}
		if err := tx.Save(&draft).Error; err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
		result = &draft
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MaxLineQuantity caps the quantity of a single draft line
const MaxLineQuantity = 999

// AddMenuItem adds quantity units of item to the table's draft, merging
// with the line that already references it. Non-empty notes replace the
// line's notes.
func (s *DraftService) AddMenuItem(ctx context.Context, tableNumber int, item models.MenuItem, quantity int, notes string) (*models.Draft, error) {
	if quantity < 1 {
		quantity = 1
	}
	if quantity > MaxLineQuantity {
		return nil, quantityTooLarge()
	}
	return s.Update(ctx, tableNumber, func(d *models.Draft) error {
		d.Lines = AddItem(d.Lines, item)
		var added models.OrderLineItem
		for _, line := range d.Lines {
			if line.MenuItemID == item.ID {
				added = line
				break
			}
		}
		total := added.Quantity + quantity - 1
		if total > MaxLineQuantity {
			return quantityTooLarge()
		}
		d.Lines = SetQuantity(d.Lines, added.LineID, total)
		if notes != "" {
			d.Lines = SetNotes(d.Lines, added.LineID, notes)
		}
		return nil
	})
}

// EditLine changes quantity and/or notes of one line. A quantity of zero
// or less removes the line.
func (s *DraftService) EditLine(ctx context.Context, tableNumber int, lineID string, quantity *int, notes *string) (*models.Draft, error) {
	if quantity != nil && *quantity > MaxLineQuantity {
		return nil, quantityTooLarge()
	}
	return s.Update(ctx, tableNumber, func(d *models.Draft) error {
		if _, ok := FindLine(d.Lines, lineID); !ok {
			return &NotFoundError{Resource: "line", ID: lineID}
		}
		if notes != nil {
			d.Lines = SetNotes(d.Lines, lineID, *notes)
		}
		if quantity != nil {
			d.Lines = SetQuantity(d.Lines, lineID, *quantity)
		}
		return nil
	})
}

func quantityTooLarge() error {
	return &ValidationError{Field: "quantity", Message: fmt.Sprintf("quantity cannot exceed %d", MaxLineQuantity)}
}

// RemoveLine drops a line from the draft
func (s *DraftService) RemoveLine(ctx context.Context, tableNumber int, lineID string) (*models.Draft, error) {
	return s.Update(ctx, tableNumber, func(d *models.Draft) error {
		d.Lines = RemoveItem(d.Lines, lineID)
		return nil
	})
}

// SetCustomer sets the customer label used at submission
func (s *DraftService) SetCustomer(ctx context.Context, tableNumber int, name string) (*models.Draft, error) {
	return s.Update(ctx, tableNumber, func(d *models.Draft) error {
		d.CustomerName = name
		return nil
	})
}

// Discard deletes the table's draft
func (s *DraftService) Discard(ctx context.Context, tableNumber int) error {
	err := s.db.WithContext(ctx).Where("table_number = ?", tableNumber).Delete(&models.Draft{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete draft for table %d: %w", tableNumber, err)
	}
	return nil
}

// Submit creates the backend order from the draft and discards the draft.
// An empty draft fails validation without a backend call; a failed
// submission keeps the draft.
func (s *DraftService) Submit(ctx context.Context, orders *OrderService, tableNumber int) (*models.Order, error) {
	draft, err := s.Get(ctx, tableNumber)
	if err != nil {
		return nil, err
	}

	order, err := orders.CreateOrder(ctx, NewOrderInput{
		TableNumber:  tableNumber,
		CustomerName: draft.CustomerName,
		Lines:        draft.Lines,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Discard(ctx, tableNumber); err != nil {
		log.Printf("warning: order %d created but draft for table %d kept: %v", order.ID, tableNumber, err)
	}
	return order, nil
}

var draftServiceInstance *DraftService

// InitDraftService creates the shared draft store
func InitDraftService(db *gorm.DB) *DraftService {
	draftServiceInstance = NewDraftService(db)
	return draftServiceInstance
}

// GetDraftService returns the shared draft store
func GetDraftService() *DraftService {
	return draftServiceInstance
}

// SetDraftService sets the shared draft store (primarily for testing)
func SetDraftService(s *DraftService) {
	draftServiceInstance = s
}
