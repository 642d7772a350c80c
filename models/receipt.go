package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment method tags as sent to the backend
const (
	PaymentCash = "CASH"
	PaymentCard = "CARD"
	PaymentQR   = "QR"
)

// Receipt is the read-only projection of a completed payment.
// Rows form the local receipt journal used for reprints and sales reports.
type Receipt struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	TableNumber   int             `gorm:"not null" json:"table_number"`
	CustomerName  string          `gorm:"not null" json:"customer_name"`
	PaymentMethod string          `gorm:"not null;index" json:"payment_method"` // CASH, CARD or QR
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Tendered      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tendered"`
	Change        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"change"`
	CardLastFour  string          `json:"card_last_four,omitempty"`
	Items         []OrderLineItem `gorm:"serializer:json" json:"items"`
	OrderedAt     time.Time       `json:"ordered_at"`
	PaidAt        time.Time       `gorm:"not null;index" json:"paid_at"`
	ArchiveKey    *string         `json:"archive_key,omitempty"`           // nullable, S3 key of the archived receipt
	ArchiveURL    *string         `gorm:"-" json:"archive_url,omitempty"` // computed field, presigned URL
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Receipt model
func (Receipt) TableName() string {
	return "receipts"
}
