package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-pos/config"
	"github.com/kendall-kelly/restaurant-pos/controllers"
	"github.com/kendall-kelly/restaurant-pos/middleware"
	"github.com/kendall-kelly/restaurant-pos/services"
	"github.com/kendall-kelly/restaurant-pos/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// OrderIntegrationTestSuite defines the test suite for order integration tests
type OrderIntegrationTestSuite struct {
	suite.Suite
	router  *gin.Engine
	backend *testutil.FakeBackend
	cfg     *config.Config
	archive *services.MockReceiptArchive
}

// SetupSuite runs once before all tests
func (suite *OrderIntegrationTestSuite) SetupSuite() {
	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
	testutil.MustSetTestEnvironment(suite.T())

	// Set test environment variables; each test points the client at its own backend
	os.Setenv("BACKEND_API_URL", "http://backend.test")
	os.Setenv("PORT", "8080")

	// Load configuration
	cfg, err := config.Load()
	suite.Require().NoError(err)
	suite.Require().False(cfg.AuthEnabled())
	suite.cfg = cfg
}

// TearDownSuite runs once after all tests
func (suite *OrderIntegrationTestSuite) TearDownSuite() {
	os.Unsetenv("BACKEND_API_URL")
}

// SetupTest runs before each test
func (suite *OrderIntegrationTestSuite) SetupTest() {
	suite.backend = testutil.NewFakeBackend()
	suite.archive = services.NewMockReceiptArchive()

	db := testutil.NewTestDB(suite.T())
	services.SetBackendClient(services.NewBackendClient(suite.backend.URL(), suite.cfg.BackendTimeout))
	services.SetPublisher(services.NoopPublisher{})
	services.SetDraftService(services.NewDraftService(db))
	services.SetReceiptService(services.NewReceiptService(db, suite.archive))

	// Create a new router for each test
	suite.router = gin.New()
	v1 := suite.router.Group("/api/v1")
	controllers.RegisterRoutes(v1, suite.cfg, middleware.DevSession())
}

// TearDownTest runs after each test
func (suite *OrderIntegrationTestSuite) TearDownTest() {
	suite.backend.Close()
}

// request sends body as JSON with the given dashboard role
func (suite *OrderIntegrationTestSuite) request(role, method, path string, body interface{}) (int, map[string]interface{}) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		suite.Require().NoError(err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+role+"-token")
	req.Header.Set(middleware.DevRoleHeader, role)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w.Code, response
}

func burger(qty int) testutil.FakeItem {
	return testutil.FakeItem{MenuItemID: 1, Name: "Burger", Price: "12.99", Quantity: qty}
}

// TestKitchenQueue tests that the kitchen sees only the orders waiting for it
func (suite *OrderIntegrationTestSuite) TestKitchenQueue() {
	queued := suite.backend.SeedOrder(1, "IN_QUEUE", burger(1))
	suite.backend.SeedOrder(2, "PENDING", burger(2))
	cooking := suite.backend.SeedOrder(3, "IN_PROCESS", burger(1))

	status, response := suite.request(middleware.RoleChef, http.MethodGet, "/api/v1/orders?status=in_queue", nil)
	suite.Require().Equal(http.StatusOK, status)
	orders := response["data"].([]interface{})
	suite.Require().Len(orders, 1)
	assert.EqualValues(suite.T(), queued, orders[0].(map[string]interface{})["id"])

	status, response = suite.request(middleware.RoleChef, http.MethodGet, "/api/v1/orders?status=IN_PROCESS", nil)
	suite.Require().Equal(http.StatusOK, status)
	orders = response["data"].([]interface{})
	suite.Require().Len(orders, 1)
	assert.EqualValues(suite.T(), cooking, orders[0].(map[string]interface{})["id"])

	status, _ = suite.request(middleware.RoleChef, http.MethodGet, "/api/v1/orders?status=burnt", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, status)
}

// TestEditOrderUntilSentToKitchen tests that items can change only while pending
func (suite *OrderIntegrationTestSuite) TestEditOrderUntilSentToKitchen() {
	id := suite.backend.SeedOrder(4, "PENDING", burger(1))
	path := fmt.Sprintf("/api/v1/orders/%d", id)

	status, response := suite.request(middleware.RoleWaiter, http.MethodPut, path, gin.H{
		"items": []gin.H{{"menu_item_id": 1, "quantity": 1}, {"menu_item_id": 4, "quantity": 2, "notes": "no ice"}},
	})
	suite.Require().Equal(http.StatusOK, status, response)
	assert.Equal(suite.T(), "19.49", response["data"].(map[string]interface{})["total"])

	status, _ = suite.request(middleware.RoleWaiter, http.MethodPost, path+"/actions/send_to_kitchen", nil)
	suite.Require().Equal(http.StatusOK, status)

	status, response = suite.request(middleware.RoleWaiter, http.MethodPut, path, gin.H{
		"items": []gin.H{{"menu_item_id": 1, "quantity": 5}},
	})
	assert.Equal(suite.T(), http.StatusConflict, status)
	assert.Equal(suite.T(), "INVALID_TRANSITION", response["error"].(map[string]interface{})["code"])

	stored, _ := suite.backend.Order(id)
	assert.Equal(suite.T(), "IN_QUEUE", stored.Status)
	assert.Len(suite.T(), stored.Items, 2)
}

// TestKitchenActionForOneItem tests that an item id is passed through to the kitchen endpoint
func (suite *OrderIntegrationTestSuite) TestKitchenActionForOneItem() {
	id := suite.backend.SeedOrder(5, "IN_QUEUE", burger(1))

	status, response := suite.request(middleware.RoleChef, http.MethodPost,
		fmt.Sprintf("/api/v1/kitchen/orders/%d/actions/start_cooking", id), gin.H{"item_id": 7})
	suite.Require().Equal(http.StatusOK, status, response)
	assert.Equal(suite.T(), "IN_PROCESS", response["data"].(map[string]interface{})["status"])

	var patched []testutil.RecordedRequest
	for _, r := range suite.backend.Requests() {
		if r.Method == http.MethodPatch && strings.HasPrefix(r.Path, "/chef/order/") {
			patched = append(patched, r)
		}
	}
	suite.Require().Len(patched, 1)
	assert.JSONEq(suite.T(), `{"status":"IN_PROCESS","item_id":7}`, string(patched[0].Body))
}

// TestCardPaymentArchivesReceipt tests card validation and the archived receipt
func (suite *OrderIntegrationTestSuite) TestCardPaymentArchivesReceipt() {
	id := suite.backend.SeedOrder(6, "PENDING_PAYMENT", burger(2))
	path := fmt.Sprintf("/api/v1/orders/%d/payment", id)

	status, response := suite.request(middleware.RoleWaiter, http.MethodPost, path, gin.H{
		"payment_method": "card",
		"card":           gin.H{"card_number": "4111 1111 1111", "card_holder": "A Diner", "expiry": "12/29", "cvv": "123"},
	})
	suite.Require().Equal(http.StatusBadRequest, status)
	assert.Equal(suite.T(), "card_number", response["error"].(map[string]interface{})["field"])

	stored, _ := suite.backend.Order(id)
	suite.Require().Equal("PENDING_PAYMENT", stored.Status, "an invalid card is never sent")

	status, response = suite.request(middleware.RoleWaiter, http.MethodPost, path, gin.H{
		"payment_method": "Card",
		"card":           gin.H{"card_number": "4111 1111 1111 1111", "card_holder": "A Diner", "expiry": "12/29", "cvv": "123"},
	})
	suite.Require().Equal(http.StatusCreated, status, response)
	receipt := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "CARD", receipt["payment_method"])
	assert.Equal(suite.T(), "1111", receipt["card_last_four"])
	assert.Equal(suite.T(), "$25.98", receipt["total_display"])
	assert.True(suite.T(), suite.archive.Exists(fmt.Sprintf("receipts/mock_%d.json", id)))

	stored, _ = suite.backend.Order(id)
	assert.Equal(suite.T(), "COMPLETED", stored.Status)

	// reprints link to the archived copy
	status, response = suite.request(middleware.RoleWaiter, http.MethodGet, fmt.Sprintf("/api/v1/receipts/%d", id), nil)
	suite.Require().Equal(http.StatusOK, status)
	assert.NotEmpty(suite.T(), response["data"].(map[string]interface{})["archive_url"])
}

// TestBackendUnavailable tests the 502 envelope when the backend is down
func (suite *OrderIntegrationTestSuite) TestBackendUnavailable() {
	suite.backend.Close()

	status, response := suite.request(middleware.RoleWaiter, http.MethodGet, "/api/v1/orders/1", nil)
	assert.Equal(suite.T(), http.StatusBadGateway, status)
	assert.Equal(suite.T(), "BACKEND_UNAVAILABLE", response["error"].(map[string]interface{})["code"])

	// the menu degrades instead of failing
	status, response = suite.request(middleware.RoleWaiter, http.MethodGet, "/api/v1/menu", nil)
	assert.Equal(suite.T(), http.StatusOK, status)
	assert.NotEmpty(suite.T(), response["warning"])
}

// TestOrderIntegrationTestSuite runs the test suite
func TestOrderIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderIntegrationTestSuite))
}
