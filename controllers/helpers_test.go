package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/services"
	"github.com/kendall-kelly/restaurant-pos/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testToken = "waiter-token"

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupBackend points the shared backend client at a fresh fake backend
func setupBackend(t *testing.T) *testutil.FakeBackend {
	t.Helper()
	fb := testutil.NewFakeBackend()
	t.Cleanup(fb.Close)

	services.SetBackendClient(services.NewBackendClient(fb.URL(), 2*time.Second))
	services.SetPublisher(services.NoopPublisher{})
	t.Cleanup(func() { services.SetBackendClient(nil) })
	return fb
}

// setupTestDB installs draft and receipt services backed by in-memory sqlite
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.NewTestDB(t)
	services.SetDraftService(services.NewDraftService(db))
	services.SetReceiptService(services.NewReceiptService(db, nil))
	return db
}

// performRequest sends body as JSON (when non-nil) and decodes the response
func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w, response
}

func errorCode(response map[string]interface{}) string {
	errorData, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errorData["code"].(string)
	return code
}

func burgerItem(qty int) testutil.FakeItem {
	return testutil.FakeItem{MenuItemID: 1, Name: "Burger", Price: "12.99", Quantity: qty}
}
