package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-packet-inventory/internal/events"
	"go-packet-inventory/internal/handler"
	"go-packet-inventory/internal/idempotency"
	"go-packet-inventory/internal/middleware"
	"go-packet-inventory/internal/repository"
	"go-packet-inventory/internal/service"
	"go-packet-inventory/pkg/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ownerHeader = "X-Test-Owner"

// fakeAuth trusts the owner id in a test header.
func fakeAuth(c *fiber.Ctx) error {
	if id, err := uuid.Parse(c.Get(ownerHeader)); err == nil {
		c.Locals(middleware.LocalOwnerID, id)
	}
	return c.Next()
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.ConnectSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := zap.NewNop()
	products := repository.NewProductRepo(db)
	transactions := repository.NewTransactionRepo(db)
	expenses := repository.NewExpenseRepo(db)
	users := repository.NewUserRepo(db)
	store := repository.NewInventoryStore(db, products, transactions)

	invService := service.NewInventoryService(products, transactions, store, events.Nop{}, log)
	expService := service.NewExpenseService(expenses, events.Nop{}, log)

	app := fiber.New()
	routes := &handler.Routes{
		Auth:        handler.NewAuthHandler(service.NewAuthService(users, log)),
		Inventory:   handler.NewInventoryHandler(invService, idempotency.NewStore(rdb, 0), log),
		Expense:     handler.NewExpenseHandler(expService),
		Financial:   handler.NewFinancialHandler(service.NewFinancialService(products, transactions, expenses, 5)),
		Report:      handler.NewReportHandler(invService, expService),
		Profile:     handler.NewProfileHandler(service.NewProfileService(users)),
		RequireAuth: fakeAuth,
	}
	routes.Mount(app)
	return app
}

type call struct {
	method string
	path   string
	owner  uuid.UUID
	body   interface{}
	header map[string]string
}

func do(t *testing.T, app *fiber.App, c call) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.owner != uuid.Nil {
		req.Header.Set(ownerHeader, c.owner.String())
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func createProduct(t *testing.T, app *fiber.App, owner uuid.UUID) string {
	t.Helper()
	resp, body := do(t, app, call{method: "POST", path: "/api/v1/products", owner: owner,
		body: map[string]interface{}{"name": "Pepper", "default_unit_grams": 250}})
	require.Equal(t, 201, resp.StatusCode, body)
	return body["data"].(map[string]interface{})["id"].(string)
}

func record(t *testing.T, app *fiber.App, owner uuid.UUID, productID, txType string, size, count int) (*http.Response, map[string]interface{}) {
	return do(t, app, call{method: "POST", path: "/api/v1/transactions", owner: owner, body: map[string]interface{}{
		"product_id": productID, "txn_type": txType, "packet_size_grams": size, "count_packets": count, "unit_price": "12.50",
	}})
}

func TestTransactionFlow(t *testing.T) {
	app := newApp(t)
	owner := uuid.New()
	productID := createProduct(t, app, owner)

	resp, body := record(t, app, owner, productID, "purchase", 250, 2)
	require.Equal(t, 201, resp.StatusCode, body)
	purchaseID := body["id"].(string)

	resp, body = record(t, app, owner, productID, "sale", 250, 3)
	assert.Equal(t, 409, resp.StatusCode)
	assert.EqualValues(t, 2, body["available"])
	assert.EqualValues(t, 3, body["requested"])

	resp, body = do(t, app, call{method: "GET", path: "/api/v1/products/" + productID, owner: owner})
	require.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 2, body["stock_packets_250"])

	resp, body = do(t, app, call{method: "GET", path: "/api/v1/transactions/" + purchaseID, owner: owner})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "25", body["total_price"])

	resp, _ = do(t, app, call{method: "DELETE", path: "/api/v1/transactions/" + purchaseID, owner: owner})
	assert.Equal(t, 200, resp.StatusCode)

	resp, body = do(t, app, call{method: "GET", path: "/api/v1/products/" + productID, owner: owner})
	require.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 0, body["stock_packets_250"])
}

func TestConvertAndMarkPaid(t *testing.T) {
	app := newApp(t)
	owner := uuid.New()
	productID := createProduct(t, app, owner)

	resp, _ := record(t, app, owner, productID, "purchase", 500, 4)
	require.Equal(t, 201, resp.StatusCode)

	resp, body := do(t, app, call{method: "POST", path: "/api/v1/products/" + productID + "/convert", owner: owner,
		body: map[string]interface{}{"direction": "500to250", "conversions": 1}})
	require.Equal(t, 200, resp.StatusCode, body)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["stock_packets_500"])
	assert.EqualValues(t, 2, data["stock_packets_250"])

	resp, body = do(t, app, call{method: "POST", path: "/api/v1/transactions", owner: owner, body: map[string]interface{}{
		"product_id": productID, "txn_type": "sale", "packet_size_grams": 250, "count_packets": 1,
		"unit_price": "30", "payment_method": "lend", "customer_name": "Ravi",
	}})
	require.Equal(t, 201, resp.StatusCode, body)
	saleID := body["id"].(string)

	for i := 0; i < 2; i++ {
		resp, body = do(t, app, call{method: "POST", path: "/api/v1/transactions/" + saleID + "/paid", owner: owner})
		require.Equal(t, 200, resp.StatusCode, body)
		assert.Equal(t, "paid", body["data"].(map[string]interface{})["payment_status"])
	}
}

func TestErrorMapping(t *testing.T) {
	app := newApp(t)
	owner, other := uuid.New(), uuid.New()
	productID := createProduct(t, app, owner)
	resp, body := record(t, app, owner, productID, "purchase", 250, 1)
	require.Equal(t, 201, resp.StatusCode)
	txnID := body["id"].(string)

	cases := []struct {
		name   string
		call   call
		status int
	}{
		{"no owner", call{method: "GET", path: "/api/v1/products"}, 401},
		{"foreign delete", call{method: "DELETE", path: "/api/v1/transactions/" + txnID, owner: other}, 403},
		{"foreign read", call{method: "GET", path: "/api/v1/transactions/" + txnID, owner: other}, 404},
		{"missing product", call{method: "GET", path: "/api/v1/products/" + uuid.NewString(), owner: owner}, 404},
		{"bad id", call{method: "GET", path: "/api/v1/products/nope", owner: owner}, 400},
		{"bad size", call{method: "POST", path: "/api/v1/transactions", owner: owner, body: map[string]interface{}{
			"product_id": productID, "txn_type": "sale", "packet_size_grams": 100, "count_packets": 1, "unit_price": "1",
		}}, 400},
		{"bad direction", call{method: "POST", path: "/api/v1/products/" + productID + "/convert", owner: owner,
			body: map[string]interface{}{"direction": "up", "conversions": 1}}, 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, app, tc.call)
			assert.Equal(t, tc.status, resp.StatusCode, body)
		})
	}
}

func TestInvalidJSON(t *testing.T) {
	app := newApp(t)
	req := httptest.NewRequest("POST", "/api/v1/products", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ownerHeader, uuid.NewString())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestIdempotencyKeyReplaysResult(t *testing.T) {
	app := newApp(t)
	owner := uuid.New()
	productID := createProduct(t, app, owner)
	body := map[string]interface{}{
		"product_id": productID, "txn_type": "purchase", "packet_size_grams": 500, "count_packets": 2, "unit_price": "40",
	}
	headers := map[string]string{"Idempotency-Key": "order-17"}

	resp, first := do(t, app, call{method: "POST", path: "/api/v1/transactions", owner: owner, body: body, header: headers})
	require.Equal(t, 201, resp.StatusCode, first)

	resp, second := do(t, app, call{method: "POST", path: "/api/v1/transactions", owner: owner, body: body, header: headers})
	require.Equal(t, 200, resp.StatusCode, second)
	assert.Equal(t, "true", resp.Header.Get("Idempotent-Replayed"))
	assert.Equal(t, first["id"], second["id"])

	_, product := do(t, app, call{method: "GET", path: "/api/v1/products/" + productID, owner: owner})
	assert.EqualValues(t, 2, product["stock_packets_500"])

	// a failed request frees its key
	failing := map[string]interface{}{
		"product_id": productID, "txn_type": "sale", "packet_size_grams": 250, "count_packets": 1, "unit_price": "40",
	}
	retry := map[string]string{"Idempotency-Key": "order-18"}
	resp, _ = do(t, app, call{method: "POST", path: "/api/v1/transactions", owner: owner, body: failing, header: retry})
	require.Equal(t, 409, resp.StatusCode)
	resp, _ = do(t, app, call{method: "POST", path: "/api/v1/transactions", owner: owner, body: body, header: retry})
	assert.Equal(t, 201, resp.StatusCode)
}

func TestExpensesAndSummary(t *testing.T) {
	app := newApp(t)
	owner := uuid.New()
	productID := createProduct(t, app, owner)

	resp, _ := record(t, app, owner, productID, "purchase", 250, 4)
	require.Equal(t, 201, resp.StatusCode)
	resp, _ = record(t, app, owner, productID, "sale", 250, 2)
	require.Equal(t, 201, resp.StatusCode)

	resp, body := do(t, app, call{method: "POST", path: "/api/v1/expenses", owner: owner,
		body: map[string]interface{}{"category": "packaging", "amount": "5"}})
	require.Equal(t, 201, resp.StatusCode, body)
	expenseID := body["data"].(map[string]interface{})["id"].(string)

	resp, body = do(t, app, call{method: "GET", path: "/api/v1/financials/summary", owner: owner})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "25", body["revenue"])
	assert.Equal(t, "50", body["cost"])
	assert.Equal(t, "5", body["expenses"])
	assert.Equal(t, "-30", body["profit"])

	resp, _ = do(t, app, call{method: "DELETE", path: "/api/v1/expenses/" + expenseID, owner: uuid.New()})
	assert.Equal(t, 403, resp.StatusCode)
	resp, _ = do(t, app, call{method: "DELETE", path: "/api/v1/expenses/" + expenseID, owner: owner})
	assert.Equal(t, 200, resp.StatusCode)

	resp, body = do(t, app, call{method: "GET", path: "/api/v1/dashboard/stats", owner: owner})
	require.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 1, body["total_products"])
	assert.EqualValues(t, 1, body["low_stock_count"])
	assert.EqualValues(t, 500, body["total_grams"])

	resp, body = do(t, app, call{method: "GET", path: "/api/v1/dashboard/stock-movement?days=3", owner: owner})
	require.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 3, body["period"])
	assert.Len(t, body["data"], 3)
}

func TestLedgerWorkbook(t *testing.T) {
	app := newApp(t)
	owner := uuid.New()
	productID := createProduct(t, app, owner)
	resp, _ := record(t, app, owner, productID, "purchase", 250, 1)
	require.Equal(t, 201, resp.StatusCode)

	req := httptest.NewRequest("GET", "/api/v1/reports/ledger.xlsx", nil)
	req.Header.Set(ownerHeader, owner.String())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ledger-")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(raw[:2]), "xlsx is a zip archive")
}
