package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/kendall-kelly/restaurant-pos/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuService_GetMenuItemsFiltersUnavailable(t *testing.T) {
	_, client := setupBackend(t)

	items, err := NewMenuService(client).GetMenuItems(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Burger", "Fries", "Lemonade"}, names)
	assert.True(t, items[1].Price.Equal(decimal.RequireFromString("4.50")), "currency prefix is stripped")
}

func TestMenuService_FailureIsCatalogFetchError(t *testing.T) {
	fb, client := setupBackend(t)
	fb.FailNext(http.StatusInternalServerError, "database down")

	_, err := NewMenuService(client).GetMenuItems(context.Background())

	var cfe *CatalogFetchError
	require.True(t, errors.As(err, &cfe))
	var be *BackendError
	assert.True(t, errors.As(err, &be))
}

func TestMenuService_FindMenuItem(t *testing.T) {
	_, client := setupBackend(t)
	svc := NewMenuService(client)

	item, err := svc.FindMenuItem(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Lemonade", item.Name)

	// sold out items cannot be added
	_, err = svc.FindMenuItem(context.Background(), 3)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "menu item", nf.Resource)
}

func TestGroupByCategory(t *testing.T) {
	items := []models.MenuItem{
		{ID: 1, Name: "Burger", Category: "Mains"},
		{ID: 2, Name: "Cola", Category: "Drinks"},
		{ID: 3, Name: "Pasta", Category: "Mains"},
		{ID: 4, Name: "Mystery"},
		{ID: 5, Name: "Tea", Category: "Drinks"},
	}

	groups := GroupByCategory(items)

	require.Len(t, groups, 3)
	assert.Equal(t, "Mains", groups[0].Category)
	assert.Equal(t, "Drinks", groups[1].Category)
	assert.Equal(t, UncategorizedLabel, groups[2].Category)
	assert.Equal(t, "Burger", groups[0].Items[0].Name)
	assert.Equal(t, "Pasta", groups[0].Items[1].Name)
	assert.Equal(t, "Tea", groups[1].Items[1].Name)

	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}
	assert.Equal(t, len(items), total)
}

func TestGroupByCategory_Empty(t *testing.T) {
	groups := GroupByCategory(nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestTableService(t *testing.T) {
	fb, client := setupBackend(t)
	id := fb.SeedOrder(2, "IN_QUEUE", burgerItem(1))
	svc := NewTableService(client)

	tables, err := svc.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, models.TableReserved, tables[2].Status)

	table, err := svc.GetTable(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, table.Status)
	require.NotNil(t, table.ActiveOrder)
	assert.Equal(t, id, table.ActiveOrder.ID)

	_, err = svc.GetTable(context.Background(), 42)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "table", nf.Resource)
}
