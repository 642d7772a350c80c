package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kendall-kelly/restaurant-pos/models"
)

// TableService reads the floor plan from the backend
type TableService struct {
	client *BackendClient
}

// NewTableService creates a table accessor on top of a session-bound client
func NewTableService(client *BackendClient) *TableService {
	return &TableService{client: client}
}

// ListTables returns every table known to the backend
func (s *TableService) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := s.client.do(ctx, "GET", "/waiter/tables", nil, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// GetTable returns one table with its active order, if any
func (s *TableService) GetTable(ctx context.Context, number int) (*models.Table, error) {
	var table models.Table
	path := fmt.Sprintf("/waiter/table/%d", number)
	if err := s.client.do(ctx, "GET", path, nil, &table); err != nil {
		return nil, notFoundOr(err, "table", strconv.Itoa(number))
	}
	if table.Number == 0 {
		table.Number = number
	}
	return &table, nil
}
