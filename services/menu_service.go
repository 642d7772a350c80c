package services

import (
	"context"
	"strconv"

	"github.com/kendall-kelly/restaurant-pos/models"
)

// UncategorizedLabel groups menu items that carry no category
const UncategorizedLabel = "Uncategorized"

// CategoryGroup is one category of the menu with its items in catalog order
type CategoryGroup struct {
	Category string            `json:"category"`
	Items    []models.MenuItem `json:"items"`
}

// MenuService reads the backend menu catalog
type MenuService struct {
	client *BackendClient
}

// NewMenuService creates a menu accessor on top of a session-bound client
func NewMenuService(client *BackendClient) *MenuService {
	return &MenuService{client: client}
}

// GetMenuItems returns the available menu items in backend order
func (s *MenuService) GetMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.client.do(ctx, "GET", "/menu/public/items", nil, &items); err != nil {
		return nil, &CatalogFetchError{Err: err}
	}

	available := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if item.Available {
			available = append(available, item)
		}
	}
	return available, nil
}

// FindMenuItem returns the available menu item with the given id
func (s *MenuService) FindMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	items, err := s.GetMenuItems(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, &NotFoundError{Resource: "menu item", ID: strconv.FormatUint(uint64(id), 10)}
}

// GroupByCategory partitions items by category, keeping first-seen
// category order and the relative order of items.
func GroupByCategory(items []models.MenuItem) []CategoryGroup {
	groups := []CategoryGroup{}
	index := make(map[string]int)

	for _, item := range items {
		category := item.Category
		if category == "" {
			category = UncategorizedLabel
		}
		i, ok := index[category]
		if !ok {
			i = len(groups)
			index[category] = i
			groups = append(groups, CategoryGroup{Category: category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
