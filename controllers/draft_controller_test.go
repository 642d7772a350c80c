package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/middleware"
	"github.com/kendall-kelly/restaurant-pos/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDraftRouter() *gin.Engine {
	router := setupTestRouter()
	tables := router.Group("/tables/:number", testutil.MockAuthMiddleware(middleware.RoleWaiter, testToken))
	tables.GET("/draft", GetDraft)
	tables.PATCH("/draft", UpdateDraft)
	tables.DELETE("/draft", DiscardDraft)
	tables.POST("/draft/items", AddDraftItem)
	tables.PATCH("/draft/items/:line_id", UpdateDraftItem)
	tables.DELETE("/draft/items/:line_id", RemoveDraftItem)
	tables.POST("/draft/submit", SubmitDraft)
	return router
}

func draftLines(t *testing.T, response map[string]interface{}) []interface{} {
	t.Helper()
	data := response["data"].(map[string]interface{})
	return data["lines"].([]interface{})
}

func TestDraft_ComposeAndSubmit(t *testing.T) {
	fb := setupBackend(t)
	setupTestDB(t)
	router := setupDraftRouter()

	w, response := performRequest(t, router, http.MethodPost, "/tables/1/draft/items", gin.H{"menu_item_id": 1, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	_, response = performRequest(t, router, http.MethodPost, "/tables/1/draft/items", gin.H{"menu_item_id": 2, "notes": "extra salt"})

	lines := draftLines(t, response)
	require.Len(t, lines, 2)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "30.48", data["total"])
	assert.Equal(t, "$30.48", data["total_display"])

	fries := lines[1].(map[string]interface{})
	assert.Equal(t, "extra salt", fries["notes"])

	_, response = performRequest(t, router, http.MethodPatch, "/tables/1/draft", gin.H{"customer_name": "Grace"})
	assert.Equal(t, "Grace", response["data"].(map[string]interface{})["customer_name"])

	w, response = performRequest(t, router, http.MethodPost, "/tables/1/draft/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	order := response["data"].(map[string]interface{})
	assert.Equal(t, "PENDING", order["status"])
	assert.Equal(t, "Grace", order["customer_name"])
	assert.Equal(t, 1, fb.CountRequests(http.MethodPost, "/orders"))

	_, response = performRequest(t, router, http.MethodGet, "/tables/1/draft", nil)
	assert.Empty(t, draftLines(t, response))
}

func TestDraft_EditAndRemoveLines(t *testing.T) {
	setupBackend(t)
	setupTestDB(t)
	router := setupDraftRouter()

	_, response := performRequest(t, router, http.MethodPost, "/tables/4/draft/items", gin.H{"menu_item_id": 1})
	lineID := draftLines(t, response)[0].(map[string]interface{})["line_id"].(string)

	_, response = performRequest(t, router, http.MethodPatch, "/tables/4/draft/items/"+lineID, gin.H{"quantity": 3, "notes": "rare"})
	line := draftLines(t, response)[0].(map[string]interface{})
	assert.Equal(t, float64(3), line["quantity"])
	assert.Equal(t, "rare", line["notes"])

	_, response = performRequest(t, router, http.MethodPatch, "/tables/4/draft/items/"+lineID, gin.H{"quantity": 0})
	assert.Empty(t, draftLines(t, response))

	_, response = performRequest(t, router, http.MethodPost, "/tables/4/draft/items", gin.H{"menu_item_id": 4})
	lineID = draftLines(t, response)[0].(map[string]interface{})["line_id"].(string)
	_, response = performRequest(t, router, http.MethodDelete, "/tables/4/draft/items/"+lineID, nil)
	assert.Empty(t, draftLines(t, response))
}

func TestDraft_Errors(t *testing.T) {
	fb := setupBackend(t)
	setupTestDB(t)
	router := setupDraftRouter()

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
		expectedError  string
	}{
		{"missing menu item id", http.MethodPost, "/tables/1/draft/items", gin.H{"quantity": 1}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"negative quantity", http.MethodPost, "/tables/1/draft/items", gin.H{"menu_item_id": 1, "quantity": -1}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"sold out menu item", http.MethodPost, "/tables/1/draft/items", gin.H{"menu_item_id": 3}, http.StatusNotFound, "NOT_FOUND"},
		{"unknown line", http.MethodPatch, "/tables/1/draft/items/nope", gin.H{"quantity": 2}, http.StatusNotFound, "NOT_FOUND"},
		{"submit empty draft", http.MethodPost, "/tables/1/draft/submit", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad table number", http.MethodGet, "/tables/0/draft", nil, http.StatusBadRequest, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performRequest(t, router, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.False(t, response["success"].(bool))
			assert.Equal(t, tt.expectedError, errorCode(response))
		})
	}

	assert.Equal(t, 0, fb.CountRequests(http.MethodPost, "/orders"), "empty drafts never reach the backend")
}

func TestDraft_SubmitFailureKeepsDraft(t *testing.T) {
	fb := setupBackend(t)
	setupTestDB(t)
	router := setupDraftRouter()

	_, _ = performRequest(t, router, http.MethodPost, "/tables/2/draft/items", gin.H{"menu_item_id": 1})
	fb.Close()

	w, response := performRequest(t, router, http.MethodPost, "/tables/2/draft/submit", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "BACKEND_UNAVAILABLE", errorCode(response))

	_, response = performRequest(t, router, http.MethodGet, "/tables/2/draft", nil)
	assert.Len(t, draftLines(t, response), 1)
}

func TestDraft_Discard(t *testing.T) {
	setupBackend(t)
	setupTestDB(t)
	router := setupDraftRouter()

	_, _ = performRequest(t, router, http.MethodPost, "/tables/3/draft/items", gin.H{"menu_item_id": 1})
	w, _ := performRequest(t, router, http.MethodDelete, "/tables/3/draft", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, response := performRequest(t, router, http.MethodGet, "/tables/3/draft", nil)
	assert.Empty(t, draftLines(t, response))
}

func TestDraft_QuantityLimit(t *testing.T) {
	fb := setupBackend(t)
	setupTestDB(t)
	router := setupDraftRouter()

	w, response := performRequest(t, router, http.MethodPost, "/tables/5/draft/items", gin.H{"menu_item_id": 1, "quantity": 20000000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(response))
	assert.Equal(t, 0, fb.CountRequests(http.MethodGet, "/menu"))

	_, response = performRequest(t, router, http.MethodPost, "/tables/5/draft/items", gin.H{"menu_item_id": 1, "quantity": 999})
	lineID := draftLines(t, response)[0].(map[string]interface{})["line_id"].(string)

	w, response = performRequest(t, router, http.MethodPost, "/tables/5/draft/items", gin.H{"menu_item_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "quantity", response["error"].(map[string]interface{})["field"])

	w, _ = performRequest(t, router, http.MethodPatch, "/tables/5/draft/items/"+lineID, gin.H{"quantity": 1000})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, response = performRequest(t, router, http.MethodGet, "/tables/5/draft", nil)
	line := draftLines(t, response)[0].(map[string]interface{})
	assert.Equal(t, float64(999), line["quantity"])
}
