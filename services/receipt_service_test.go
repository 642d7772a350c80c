package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt(orderID uint, method, total string, at time.Time) *models.Receipt {
	amount := decimal.RequireFromString(total)
	return &models.Receipt{
		OrderID:       orderID,
		TableNumber:   1,
		CustomerName:  "Walk-in",
		PaymentMethod: method,
		Total:         amount,
		Tendered:      amount,
		Change:        decimal.Zero,
		Items:         AddItem(nil, burger),
		PaidAt:        at,
	}
}

func TestReceiptService_RecordAndGet(t *testing.T) {
	svc := NewReceiptService(setupTestDB(t), nil)

	require.NoError(t, svc.Record(context.Background(), sampleReceipt(11, models.PaymentCash, "12.99", paidAt)))

	got, err := svc.GetByOrderID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, "12.99", got.Total.StringFixed(2))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Burger", got.Items[0].Name)
	assert.NotEmpty(t, got.Items[0].LineID)
	assert.Nil(t, got.ArchiveKey)
	assert.Nil(t, got.ArchiveURL)
}

func TestReceiptService_DuplicateOrderRejected(t *testing.T) {
	svc := NewReceiptService(setupTestDB(t), nil)

	require.NoError(t, svc.Record(context.Background(), sampleReceipt(11, models.PaymentCash, "12.99", paidAt)))
	assert.Error(t, svc.Record(context.Background(), sampleReceipt(11, models.PaymentCash, "12.99", paidAt)))
}

func TestReceiptService_NotFound(t *testing.T) {
	svc := NewReceiptService(setupTestDB(t), nil)

	_, err := svc.GetByOrderID(context.Background(), 77)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "receipt", nf.Resource)
}

func TestReceiptService_Archive(t *testing.T) {
	archive := NewMockReceiptArchive()
	svc := NewReceiptService(setupTestDB(t), archive)

	receipt := sampleReceipt(12, models.PaymentQR, "8.00", paidAt)
	require.NoError(t, svc.Record(context.Background(), receipt))
	require.NotNil(t, receipt.ArchiveKey)
	assert.True(t, archive.Exists(*receipt.ArchiveKey))

	got, err := svc.GetByOrderID(context.Background(), 12)
	require.NoError(t, err)
	require.NotNil(t, got.ArchiveURL)
	assert.Contains(t, *got.ArchiveURL, "receipts/mock_12.json")
}

func TestReceiptService_ArchiveFailureKeepsJournal(t *testing.T) {
	archive := NewMockReceiptArchive()
	archive.UploadErr = errors.New("s3 unavailable")
	svc := NewReceiptService(setupTestDB(t), archive)

	receipt := sampleReceipt(13, models.PaymentCard, "5.00", paidAt)
	require.NoError(t, svc.Record(context.Background(), receipt))
	assert.Nil(t, receipt.ArchiveKey)

	got, err := svc.GetByOrderID(context.Background(), 13)
	require.NoError(t, err)
	assert.Nil(t, got.ArchiveURL)
}

func TestReceiptService_SalesReport(t *testing.T) {
	svc := NewReceiptService(setupTestDB(t), nil)
	ctx := context.Background()
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Record(ctx, sampleReceipt(1, models.PaymentCash, "24.00", day.Add(9*time.Hour))))
	require.NoError(t, svc.Record(ctx, sampleReceipt(2, models.PaymentCard, "10.50", day.Add(13*time.Hour))))
	require.NoError(t, svc.Record(ctx, sampleReceipt(3, models.PaymentCash, "6.25", day.Add(20*time.Hour))))
	require.NoError(t, svc.Record(ctx, sampleReceipt(4, models.PaymentCash, "99.00", day.Add(30*time.Hour))))

	report, err := svc.SalesReport(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Count)
	assert.Equal(t, "40.75", report.Gross.StringFixed(2))
	assert.Equal(t, "30.25", report.ByMethod[models.PaymentCash].StringFixed(2))
	assert.Equal(t, "10.50", report.ByMethod[models.PaymentCard].StringFixed(2))
}

func TestReceiptService_SalesReportRange(t *testing.T) {
	svc := NewReceiptService(setupTestDB(t), nil)

	_, err := svc.SalesReport(context.Background(), paidAt, paidAt)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "to", ve.Field)
}

func TestReceiptService_EmptyReport(t *testing.T) {
	svc := NewReceiptService(setupTestDB(t), nil)

	report, err := svc.SalesReport(context.Background(), paidAt.Add(-time.Hour), paidAt)
	require.NoError(t, err)
	assert.Zero(t, report.Count)
	assert.True(t, report.Gross.IsZero())
	assert.NotNil(t, report.ByMethod)
}
