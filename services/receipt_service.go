package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptService is the local journal of completed payments
type ReceiptService struct {
	db      *gorm.DB
	archive ReceiptArchive
}

// NewReceiptService creates a journal; archive may be nil
func NewReceiptService(db *gorm.DB, archive ReceiptArchive) *ReceiptService {
	return &ReceiptService{db: db, archive: archive}
}

// Record stores a receipt and archives it when an archive is configured.
// A failed upload leaves the journal row without an archive key.
func (s *ReceiptService) Record(ctx context.Context, receipt *models.Receipt) error {
	if err := s.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return fmt.Errorf("failed to store receipt: %w", err)
	}

	if s.archive == nil {
		return nil
	}
	key, err := s.archive.UploadReceipt(ctx, receipt)
	if err != nil {
		log.Printf("warning: receipt for order %d not archived: %v", receipt.OrderID, err)
		return nil
	}
	receipt.ArchiveKey = &key
	if err := s.db.WithContext(ctx).Model(receipt).Update("archive_key", key).Error; err != nil {
		return fmt.Errorf("failed to save archive key: %w", err)
	}
	return nil
}

// GetByOrderID returns the receipt of an order with a fresh archive URL
func (s *ReceiptService) GetByOrderID(ctx context.Context, orderID uint) (*models.Receipt, error) {
	var receipt models.Receipt
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "receipt", ID: orderIDString(orderID)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}

	if s.archive != nil && receipt.ArchiveKey != nil {
		url, err := s.archive.GetPresignedURL(ctx, *receipt.ArchiveKey)
		if err != nil {
			log.Printf("warning: no archive URL for order %d: %v", orderID, err)
		} else {
			receipt.ArchiveURL = &url
		}
	}
	return &receipt, nil
}

// SalesReport summarizes receipts paid in [From, To)
type SalesReport struct {
	From     time.Time                  `json:"from"`
	To       time.Time                  `json:"to"`
	Count    int                        `json:"count"`
	Gross    decimal.Decimal            `json:"gross"`
	ByMethod map[string]decimal.Decimal `json:"by_method"`
}

// SalesReport aggregates the journal over a time range
func (s *ReceiptService) SalesReport(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if !to.After(from) {
		return nil, &ValidationError{Field: "to", Message: "end of range must be after its start"}
	}

	from, to = from.UTC(), to.UTC()

	var receipts []models.Receipt
	err := s.db.WithContext(ctx).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Order("paid_at").
		Find(&receipts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts: %w", err)
	}

	report := &SalesReport{
		From:     from,
		To:       to,
		Count:    len(receipts),
		Gross:    decimal.Zero,
		ByMethod: map[string]decimal.Decimal{},
	}
	for _, r := range receipts {
		report.Gross = report.Gross.Add(r.Total)
		report.ByMethod[r.PaymentMethod] = report.ByMethod[r.PaymentMethod].Add(r.Total)
	}
	return report, nil
}

var receiptServiceInstance *ReceiptService

// InitReceiptService creates the shared journal
func InitReceiptService(db *gorm.DB, archive ReceiptArchive) *ReceiptService {
	receiptServiceInstance = NewReceiptService(db, archive)
	return receiptServiceInstance
}

// GetReceiptService returns the shared journal
func GetReceiptService() *ReceiptService {
	return receiptServiceInstance
}

// SetReceiptService sets the shared journal (primarily for testing)
func SetReceiptService(s *ReceiptService) {
	receiptServiceInstance = s
}
