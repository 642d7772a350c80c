package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// RecordedRequest is one call received by the FakeBackend
type RecordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

// FakeMenuItem is a catalog entry served by the FakeBackend
type FakeMenuItem struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Status   string `json:"status"`
}

// FakeTable is a floor-plan entry served by the FakeBackend
type FakeTable struct {
	Number int    `json:"table_number"`
	Status string `json:"status"`
}

// FakeItem is an order item held by the FakeBackend
type FakeItem struct {
	ID         uint   `json:"id"`
	MenuItemID uint   `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

// FakeOrder is an order held by the FakeBackend
type FakeOrder struct {
	ID           uint       `json:"id"`
	TableNumber  int        `json:"table_number"`
	CustomerName string     `json:"customer_name"`
	Status       string     `json:"status"`
	Items        []FakeItem `json:"items"`
	Total        string     `json:"total"`
	CreatedAt    time.Time  `json:"created_at"`
	Version      int64      `json:"version"`
	PaidWith     string     `json:"-"`
	AmountPaid   string     `json:"-"`
}

type injectedFailure struct {
	method  string
	prefix  string
	status  int
	message string
}

func (f injectedFailure) matches(r *http.Request) bool {
	return (f.method == "" || f.method == r.Method) && strings.HasPrefix(r.URL.Path, f.prefix)
}

// FakeBackend is an in-memory stand-in for the restaurant REST API.
// It enforces the order status machine the way the real backend does.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	menu     []FakeMenuItem
	tables   []FakeTable
	orders   map[uint]*FakeOrder
	nextID   uint
	nextItem uint
	requests []RecordedRequest
	failures []injectedFailure
}

// waiterActions maps waiter actions to their source and target status
var waiterActions = map[string][2]string{
	"send_to_kitchen":  {"PENDING", "IN_QUEUE"},
	"served":           {"READY", "SERVED"},
	"proceed_payment":  {"SERVED", "PENDING_PAYMENT"},
	"complete_payment": {"PENDING_PAYMENT", "COMPLETED"},
}

// chefTargets maps kitchen target statuses to their source status
var chefTargets = map[string]string{
	"IN_PROCESS": "IN_QUEUE",
	"READY":      "IN_PROCESS",
}

// NewFakeBackend starts a server with a small default menu and floor plan
func NewFakeBackend() *FakeBackend {
	fb := &FakeBackend{
		menu: []FakeMenuItem{
			{ID: 1, Name: "Burger", Category: "Mains", Price: "12.99", Status: "available"},
			{ID: 2, Name: "Fries", Category: "Sides", Price: "$4.50", Status: "available"},
			{ID: 3, Name: "Steak", Category: "Mains", Price: "24.00", Status: "sold_out"},
			{ID: 4, Name: "Lemonade", Category: "Drinks", Price: "3.25", Status: "available"},
		},
		tables: []FakeTable{
			{Number: 1, Status: "available"},
			{Number: 2, Status: "occupied"},
			{Number: 3, Status: "reserved"},
		},
		orders: make(map[uint]*FakeOrder),
		nextID: 100,
	}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	return fb
}

// URL is the base URL of the fake API
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

// Close shuts the server down; further calls fail at the transport level
func (fb *FakeBackend) Close() {
	fb.Server.Close()
}

// FailNext makes the next request answer with status and message
func (fb *FakeBackend) FailNext(status int, message string) {
	fb.FailOn("", "", status, message)
}

// FailOn makes the next request with method (any if empty) under prefix
// answer with status and message
func (fb *FakeBackend) FailOn(method, prefix string, status int, message string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures = append(fb.failures, injectedFailure{method: method, prefix: prefix, status: status, message: message})
}

// SeedOrder stores an order directly and returns its id
func (fb *FakeBackend) SeedOrder(table int, status string, items ...FakeItem) uint {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	for i := range items {
		fb.nextItem++
		items[i].ID = fb.nextItem
	}
	o := &FakeOrder{
		ID:           fb.nextID,
		TableNumber:  table,
		CustomerName: "Walk-in",
		Status:       status,
		Items:        items,
		CreatedAt:    time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Version:      1,
	}
	o.Total = totalOf(o.Items)
	fb.orders[o.ID] = o
	return o.ID
}

// SetStatus changes an order's status as if another terminal had acted
func (fb *FakeBackend) SetStatus(id uint, status string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if o, ok := fb.orders[id]; ok {
		o.Status = status
		o.Version++
	}
}

// Order returns a copy of a stored order
func (fb *FakeBackend) Order(id uint) (FakeOrder, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	o, ok := fb.orders[id]
	if !ok {
		return FakeOrder{}, false
	}
	return *o, true
}

// Requests returns every request received so far
func (fb *FakeBackend) Requests() []RecordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]RecordedRequest, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// CountRequests counts requests with the method whose path starts with prefix
func (fb *FakeBackend) CountRequests(method, prefix string) int {
	n := 0
	for _, r := range fb.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

func totalOf(items []FakeItem) string {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.RequireFromString(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.StringFixed(2)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	fb.mu.Lock()
	defer fb.mu.Unlock()

	fb.requests = append(fb.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})

	for i, f := range fb.failures {
		if !f.matches(r) {
			continue
		}
		fb.failures = append(fb.failures[:i], fb.failures[i+1:]...)
		if f.message == "" {
			w.WriteHeader(f.status)
			return
		}
		writeError(w, f.status, f.message)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/menu/public/items":
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": fb.menu})
	case r.Method == http.MethodGet && r.URL.Path == "/waiter/tables":
		writeJSON(w, http.StatusOK, fb.tables)
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "waiter" && parts[1] == "table":
		fb.serveTable(w, parts[2])
	case r.Method == http.MethodGet && r.URL.Path == "/orders":
		fb.serveOrderList(w, r.URL.Query().Get("status"))
	case r.Method == http.MethodPost && r.URL.Path == "/orders":
		fb.serveCreate(w, body)
	case len(parts) == 2 && parts[0] == "orders":
		fb.serveOrder(w, r.Method, parts[1], body)
	case r.Method == http.MethodPatch && len(parts) == 3 && parts[0] == "orders" && parts[2] == "status":
		fb.serveWaiterTransition(w, parts[1], body)
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "orders" && parts[2] == "payment":
		fb.servePayment(w, parts[1], body)
	case r.Method == http.MethodPatch && len(parts) == 4 && parts[0] == "chef" && parts[1] == "order" && parts[3] == "status":
		fb.serveChefTransition(w, parts[2], body)
	default:
		writeError(w, http.StatusNotFound, "route not found")
	}
}

func (fb *FakeBackend) lookup(w http.ResponseWriter, rawID string) (*FakeOrder, bool) {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return nil, false
	}
	o, ok := fb.orders[uint(id)]
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return nil, false
	}
	return o, true
}

func (fb *FakeBackend) serveTable(w http.ResponseWriter, rawNumber string) {
	n, _ := strconv.Atoi(rawNumber)
	for _, t := range fb.tables {
		if t.Number != n {
			continue
		}
		var orders []FakeOrder
		for _, o := range fb.orders {
			if o.TableNumber == n && o.Status != "COMPLETED" {
				orders = append(orders, *o)
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"table_number": t.Number,
			"status":       t.Status,
			"orders":       orders,
		})
		return
	}
	writeError(w, http.StatusNotFound, "table not found")
}

func (fb *FakeBackend) serveOrderList(w http.ResponseWriter, status string) {
	out := []FakeOrder{}
	for id := uint(0); id <= fb.nextID; id++ {
		o, ok := fb.orders[id]
		if !ok || (status != "" && o.Status != status) {
			continue
		}
		out = append(out, *o)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

type createBody struct {
	TableNumber  int    `json:"table_number"`
	CustomerName string `json:"customer_name"`
	Items        []struct {
		ID         uint   `json:"id"`
		MenuItemID uint   `json:"menu_item_id"`
		Quantity   int    `json:"quantity"`
		Notes      string `json:"notes"`
	} `json:"items"`
}

func (fb *FakeBackend) buildItems(w http.ResponseWriter, req createBody) ([]FakeItem, bool) {
	if len(req.Items) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "order has no items")
		return nil, false
	}
	items := make([]FakeItem, 0, len(req.Items))
	for _, in := range req.Items {
		var found *FakeMenuItem
		for i := range fb.menu {
			if fb.menu[i].ID == in.MenuItemID {
				found = &fb.menu[i]
			}
		}
		if found == nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("menu item %d does not exist", in.MenuItemID))
			return nil, false
		}
		fb.nextItem++
		items = append(items, FakeItem{
			ID:         fb.nextItem,
			MenuItemID: found.ID,
			Name:       found.Name,
			Price:      strings.TrimPrefix(found.Price, "$"),
			Quantity:   in.Quantity,
			Notes:      in.Notes,
		})
	}
	return items, true
}

func (fb *FakeBackend) serveCreate(w http.ResponseWriter, body []byte) {
	var req createBody
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	items, ok := fb.buildItems(w, req)
	if !ok {
		return
	}
	fb.nextID++
	o := &FakeOrder{
		ID:           fb.nextID,
		TableNumber:  req.TableNumber,
		CustomerName: req.CustomerName,
		Status:       "PENDING",
		Items:        items,
		CreatedAt:    time.Now().UTC(),
		Version:      1,
	}
	o.Total = totalOf(items)
	fb.orders[o.ID] = o
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": o})
}

func (fb *FakeBackend) serveOrder(w http.ResponseWriter, method, rawID string, body []byte) {
	o, ok := fb.lookup(w, rawID)
	if !ok {
		return
	}
	switch method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, o)
	case http.MethodPut:
		if o.Status != "PENDING" {
			writeError(w, http.StatusConflict, "only pending orders can be edited")
			return
		}
		var req createBody
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		items, ok := fb.buildItems(w, req)
		if !ok {
			return
		}
		o.Items = items
		o.Total = totalOf(items)
		o.Version++
		writeJSON(w, http.StatusOK, o)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (fb *FakeBackend) serveWaiterTransition(w http.ResponseWriter, rawID string, body []byte) {
	o, ok := fb.lookup(w, rawID)
	if !ok {
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	_ = json.Unmarshal(body, &req)
	move, known := waiterActions[req.Action]
	if !known {
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}
	if o.Status != move[0] {
		writeError(w, http.StatusConflict, fmt.Sprintf("order is %s", o.Status))
		return
	}
	o.Status = move[1]
	o.Version++
	writeJSON(w, http.StatusOK, o)
}

func (fb *FakeBackend) serveChefTransition(w http.ResponseWriter, rawID string, body []byte) {
	o, ok := fb.lookup(w, rawID)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &req)
	from, known := chefTargets[req.Status]
	if !known {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	if o.Status != from {
		writeError(w, http.StatusConflict, fmt.Sprintf("order is %s", o.Status))
		return
	}
	o.Status = req.Status
	o.Version++
	writeJSON(w, http.StatusOK, o)
}

func (fb *FakeBackend) servePayment(w http.ResponseWriter, rawID string, body []byte) {
	o, ok := fb.lookup(w, rawID)
	if !ok {
		return
	}
	var req struct {
		PaymentMethod string      `json:"payment_method"`
		AmountPaid    json.Number `json:"amount_paid"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if o.Status != "PENDING_PAYMENT" {
		writeError(w, http.StatusConflict, "order is not awaiting payment")
		return
	}
	o.Status = "COMPLETED"
	o.PaidWith = req.PaymentMethod
	o.AmountPaid = req.AmountPaid.String()
	o.Version++
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "payment completed"})
}
