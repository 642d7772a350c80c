package services

import (
	"context"
	"testing"
	"time"

	"github.com/kendall-kelly/restaurant-pos/tests/testutil"
	"gorm.io/gorm"
)

const testToken = "test-token"

// setupBackend starts a fake backend and returns a client bound to a test session
func setupBackend(t *testing.T) (*testutil.FakeBackend, *BackendClient) {
	t.Helper()
	fb := testutil.NewFakeBackend()
	t.Cleanup(fb.Close)
	client := NewBackendClient(fb.URL(), 2*time.Second).WithSession(Session{Token: testToken})
	return fb, client
}

// setupTestDB opens an in-memory journal database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewTestDB(t)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	events []StatusEvent
	err    error
}

func (p *recordingPublisher) PublishStatusChange(_ context.Context, e StatusEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func burgerItem(qty int) testutil.FakeItem {
	return testutil.FakeItem{MenuItemID: 1, Name: "Burger", Price: "12.99", Quantity: qty}
}
