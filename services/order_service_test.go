package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_CreateOrder(t *testing.T) {
	fb, client := setupBackend(t)
	svc := NewOrderService(client)

	lines := AddItem(nil, burger)
	lines = AddItem(lines, burger)
	lines = SetNotes(lines, lines[0].LineID, "no onions")

	order, err := svc.CreateOrder(context.Background(), NewOrderInput{TableNumber: 1, Lines: lines})
	require.NoError(t, err)

	assert.NotZero(t, order.ID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.DefaultCustomerName, order.CustomerName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "no onions", order.Items[0].Notes)
	assert.NotEmpty(t, order.Items[0].LineID)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("25.98")))

	assert.Equal(t, 1, fb.CountRequests("POST", "/orders"))
	assert.Equal(t, 1, fb.CountRequests("GET", "/orders/"), "created order is re-fetched")

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(fb.Requests()[0].Body, &sent))
	assert.Equal(t, "Walk-in", sent["customer_name"])
}

func TestOrderService_CreateEmptyOrderMakesNoRequest(t *testing.T) {
	fb, client := setupBackend(t)

	_, err := NewOrderService(client).CreateOrder(context.Background(), NewOrderInput{TableNumber: 1})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "items", ve.Field)
	assert.Empty(t, fb.Requests())
}

func TestOrderService_GetOrderNotFound(t *testing.T) {
	_, client := setupBackend(t)

	_, err := NewOrderService(client).GetOrder(context.Background(), 999)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "order", nf.Resource)
	assert.Equal(t, "999", nf.ID)
}

func TestOrderService_ListOrdersByStatus(t *testing.T) {
	fb, client := setupBackend(t)
	fb.SeedOrder(1, "PENDING", burgerItem(1))
	ready := fb.SeedOrder(2, "READY", burgerItem(2))
	svc := NewOrderService(client)

	all, err := svc.ListOrders(context.Background(), models.StatusUnknown)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListOrders(context.Background(), models.StatusReady)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, ready, filtered[0].ID)
}

func TestOrderService_UpdateOrderItems(t *testing.T) {
	fb, client := setupBackend(t)
	id := fb.SeedOrder(1, "PENDING", burgerItem(1))
	svc := NewOrderService(client)

	order, err := svc.GetOrder(context.Background(), id)
	require.NoError(t, err)

	lines := SetQuantity(order.Items, order.Items[0].LineID, 3)
	updated, err := svc.UpdateOrderItems(context.Background(), id, lines)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Items[0].Quantity)
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("38.97")))
}

func TestOrderService_UpdateRejectedAfterKitchen(t *testing.T) {
	fb, client := setupBackend(t)
	id := fb.SeedOrder(1, "IN_QUEUE", burgerItem(1))
	svc := NewOrderService(client)

	order, err := svc.GetOrder(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.UpdateOrderItems(context.Background(), id, order.Items)

	var ite *InvalidTransitionError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, "only pending orders can be edited", ite.Message)
}

func TestOrderService_BackendErrorPassesThrough(t *testing.T) {
	fb, client := setupBackend(t)
	fb.FailNext(http.StatusInternalServerError, "boom")

	_, err := NewOrderService(client).ListOrders(context.Background(), models.StatusUnknown)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "boom", be.Message)
}

func TestCheckTotal(t *testing.T) {
	lines := AddItem(nil, burger)
	lines = AddItem(lines, fries)

	matching := &models.Order{ID: 1, Items: lines, Total: decimal.RequireFromString("17.09")}
	computed, ok := CheckTotal(matching)
	assert.True(t, ok)
	assert.True(t, computed.Equal(decimal.RequireFromString("17.09")))

	drifted := &models.Order{ID: 2, Items: lines, Total: decimal.RequireFromString("18.00")}
	_, ok = CheckTotal(drifted)
	assert.False(t, ok)
}

func TestOrderTotal(t *testing.T) {
	lines := AddItem(nil, burger)

	assert.True(t, OrderTotal(&models.Order{Items: lines}).Equal(decimal.RequireFromString("12.99")))
	assert.True(t, OrderTotal(&models.Order{Items: lines, Total: decimal.RequireFromString("13.00")}).Equal(decimal.RequireFromString("13.00")))
}
