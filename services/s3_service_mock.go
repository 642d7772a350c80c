package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kendall-kelly/restaurant-pos/models"
)

// MockReceiptArchive is an in-memory ReceiptArchive for testing
type MockReceiptArchive struct {
	objects   map[string][]byte // map of key to receipt JSON
	UploadErr error
	mu        sync.RWMutex
}

// NewMockReceiptArchive creates a new mock archive
func NewMockReceiptArchive() *MockReceiptArchive {
	return &MockReceiptArchive{
		objects: make(map[string][]byte),
	}
}

// UploadReceipt stores the receipt JSON under a key derived from the order
func (m *MockReceiptArchive) UploadReceipt(_ context.Context, receipt *models.Receipt) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}

	content, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("failed to encode receipt: %w", err)
	}

	key := fmt.Sprintf("receipts/mock_%d.json", receipt.OrderID)

	m.mu.Lock()
	m.objects[key] = content
	m.mu.Unlock()

	return key, nil
}

// GetPresignedURL returns a fake URL for stored keys
func (m *MockReceiptArchive) GetPresignedURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("receipt not found in mock archive: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// DeleteReceipt removes a stored receipt
func (m *MockReceiptArchive) DeleteReceipt(_ context.Context, key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()

	return nil
}

// Exists checks if a receipt exists in mock storage
func (m *MockReceiptArchive) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[key]
	return exists
}

// Clear removes all receipts from mock storage
func (m *MockReceiptArchive) Clear() {
	m.mu.Lock()
	m.objects = make(map[string][]byte)
	m.mu.Unlock()
}
